// Package network implements value function approximators using
// Gorgonia
package network

import (
	G "gorgonia.org/gorgonia"
)

// NeuralNet implements a neural network function approximator over
// (stacked-frame state, position) inputs
type NeuralNet interface {
	Graph() *G.ExprGraph
	CloneWithBatch(int) (NeuralNet, error)
	BatchSize() int

	// Features returns the number of features in a single flattened
	// stacked-frame state
	Features() int

	// PositionFeatures returns the number of position features
	PositionFeatures() int

	// Outputs returns the number of action values predicted
	Outputs() int

	// SetInput sets the state and position input nodes before running
	// the network's computational graph
	SetInput(states, positions []float64) error

	// Set sets the weights of the network to those of another network
	Set(NeuralNet) error

	Learnables() G.Nodes
	Model() []G.ValueGrad

	// Output returns the value of the prediction node after the last
	// run of the computational graph
	Output() G.Value

	// Prediction returns the node of the computational graph that
	// stores the network's prediction
	Prediction() *G.Node
}
