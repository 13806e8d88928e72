package network

import (
	"fmt"

	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

// multiHeadMLP implements a multi-layered perceptron with multiple
// output nodes, one for each action value that should be predicted.
//
// The network has two input nodes, one for a batch of flattened
// stacked-frame states and one for a batch of position vectors. The
// two are concatenated along the feature dimension before the first
// fully connected layer.
type multiHeadMLP struct {
	g      *G.ExprGraph
	layers []Layer

	stateInput    *G.Node
	positionInput *G.Node

	numOutputs       int
	stateFeatures    int
	positionFeatures int
	batchSize        int

	hiddenSizes []int
	biases      []bool
	activations []*Activation

	learnables G.Nodes
	model      []G.ValueGrad

	prediction *G.Node
	predVal    G.Value
}

// NewMultiHeadMLP creates and returns a new multi-layered perceptron
// predicting one value per action. The number of output nodes is equal
// to outputs. The graph parameter g is populated with the MLP.
//
// The MLP has number of layers equal to len(hiddenSizes) + 1. A final
// linear layer with a bias unit and no activation is always added so
// that the output of the network equals outputs. For index i,
// hiddenSizes[i] is the number of nodes in hidden layer i; biases[i]
// is true if hidden layer i contains a bias unit; and activations[i]
// is the activation function of hidden layer i. The parameter init
// determines the weight initialization scheme.
func NewMultiHeadMLP(stateFeatures, positionFeatures, batch, outputs int,
	g *G.ExprGraph, hiddenSizes []int, biases []bool, init G.InitWFn,
	activations []*Activation) (NeuralNet, error) {
	// Ensure we have one activation per layer
	if len(hiddenSizes) != len(activations) {
		msg := "newmultiheadmlp: invalid number of activations" +
			"\n\twant(%d)\n\thave(%d)"
		return nil, fmt.Errorf(msg, len(hiddenSizes), len(activations))
	}

	// Ensure one bias bool per layer
	if len(hiddenSizes) != len(biases) {
		msg := "newmultiheadmlp: invalid number of biases\n\twant(%d)" +
			"\n\thave(%d)"
		return nil, fmt.Errorf(msg, len(hiddenSizes), len(biases))
	}

	// Set up the input nodes
	stateInput := G.NewMatrix(g, tensor.Float64,
		G.WithShape(batch, stateFeatures), G.WithName("state"),
		G.WithInit(G.Zeroes()))
	positionInput := G.NewMatrix(g, tensor.Float64,
		G.WithShape(batch, positionFeatures), G.WithName("position"),
		G.WithInit(G.Zeroes()))

	// A final linear layer is always added so that the network
	// predicts one value per action
	hiddenSizes = append(hiddenSizes, outputs)
	biases = append(biases, true)
	activations = append(activations, Identity())

	layers := addfcLayers(g, hiddenSizes, biases, activations, init,
		stateFeatures+positionFeatures)

	network := multiHeadMLP{
		g:                g,
		layers:           layers,
		stateInput:       stateInput,
		positionInput:    positionInput,
		numOutputs:       outputs,
		stateFeatures:    stateFeatures,
		positionFeatures: positionFeatures,
		batchSize:        batch,
		hiddenSizes:      hiddenSizes,
		biases:           biases,
		activations:      activations,
	}
	err := network.fwd()
	if err != nil {
		msg := "newmultiheadmlp: could not compute forward pass: %v"
		return &multiHeadMLP{}, fmt.Errorf(msg, err)
	}

	return &network, nil
}

// Graph returns the computational graph of the multiHeadMLP.
func (e *multiHeadMLP) Graph() *G.ExprGraph {
	return e.g
}

// CloneWithBatch clones a multiHeadMLP with a new input batch size.
// The cloned network shares no nodes with its source, but its layer
// weights are initialized to the values of the source's weights.
func (e *multiHeadMLP) CloneWithBatch(batchSize int) (NeuralNet, error) {
	graph := G.NewGraph()

	stateInput := G.NewMatrix(graph, tensor.Float64,
		G.WithShape(batchSize, e.stateFeatures), G.WithName("state"),
		G.WithInit(G.Zeroes()))
	positionInput := G.NewMatrix(graph, tensor.Float64,
		G.WithShape(batchSize, e.positionFeatures), G.WithName("position"),
		G.WithInit(G.Zeroes()))

	// Copy fully connected layers
	l := make([]Layer, len(e.layers))
	for i := range e.layers {
		l[i] = e.layers[i].CloneTo(graph)
	}

	network := multiHeadMLP{
		g:                graph,
		layers:           l,
		stateInput:       stateInput,
		positionInput:    positionInput,
		numOutputs:       e.numOutputs,
		stateFeatures:    e.stateFeatures,
		positionFeatures: e.positionFeatures,
		batchSize:        batchSize,
		hiddenSizes:      e.hiddenSizes,
		biases:           e.biases,
		activations:      e.activations,
	}
	err := network.fwd()
	if err != nil {
		return nil, fmt.Errorf("clonewithbatch: could not clone: %v", err)
	}

	return &network, nil
}

// BatchSize returns the batch size of inputs to the network
func (e *multiHeadMLP) BatchSize() int {
	return e.batchSize
}

// Features returns the number of features in a single flattened
// stacked-frame state that the network takes as input.
func (e *multiHeadMLP) Features() int {
	return e.stateFeatures
}

// PositionFeatures returns the number of position features that the
// network takes as input.
func (e *multiHeadMLP) PositionFeatures() int {
	return e.positionFeatures
}

// Outputs returns the number of outputs from the network
func (e *multiHeadMLP) Outputs() int {
	return e.numOutputs
}

// SetInput sets the values of the state and position input nodes
// before running the forward pass.
func (e *multiHeadMLP) SetInput(states, positions []float64) error {
	if len(states) != e.stateFeatures*e.batchSize {
		return fmt.Errorf("setinput: invalid number of state inputs"+
			"\n\twant(%v)\n\thave(%v)", e.stateFeatures*e.batchSize,
			len(states))
	}
	if len(positions) != e.positionFeatures*e.batchSize {
		return fmt.Errorf("setinput: invalid number of position inputs"+
			"\n\twant(%v)\n\thave(%v)", e.positionFeatures*e.batchSize,
			len(positions))
	}

	stateTensor := tensor.New(
		tensor.WithBacking(states),
		tensor.WithShape(e.stateInput.Shape()...),
	)
	err := G.Let(e.stateInput, stateTensor)
	if err != nil {
		return fmt.Errorf("setinput: could not set state input: %v", err)
	}

	positionTensor := tensor.New(
		tensor.WithBacking(positions),
		tensor.WithShape(e.positionInput.Shape()...),
	)
	return G.Let(e.positionInput, positionTensor)
}

// Set sets the weights of a multiHeadMLP to be equal to the
// weights of another multiHeadMLP
func (dest *multiHeadMLP) Set(source NeuralNet) error {
	sourceNodes := source.Learnables()
	nodes := dest.Learnables()
	for i, destLearnable := range nodes {
		sourceLearnable := sourceNodes[i].Clone()
		err := G.Let(destLearnable, sourceLearnable.(*G.Node).Value())
		if err != nil {
			return err
		}
	}
	return nil
}

// Learnables returns the learnable nodes in a multiHeadMLP
func (m *multiHeadMLP) Learnables() G.Nodes {
	// Lazy instantiation
	if m.learnables == nil {
		m.learnables = m.computeLearnables()
	}
	return m.learnables
}

// computeLearnables computes all the learnables for the network
func (e *multiHeadMLP) computeLearnables() G.Nodes {
	learnables := make([]*G.Node, 0, 2*len(e.layers))

	for i := range e.layers {
		learnables = append(learnables, e.layers[i].Weights())
		if bias := e.layers[i].Bias(); bias != nil {
			learnables = append(learnables, bias)
		}
	}
	return G.Nodes(learnables)
}

// Model returns the learnable nodes with their gradients.
func (m *multiHeadMLP) Model() []G.ValueGrad {
	// Lazy instantiation
	if m.model == nil {
		m.model = m.computeModel()
	}
	return m.model
}

// computeModel computes the model for the network
func (e *multiHeadMLP) computeModel() []G.ValueGrad {
	model := make([]G.ValueGrad, 0, 2*len(e.layers))
	for _, node := range e.Learnables() {
		model = append(model, node)
	}
	return model
}

// fwd performs the forward pass of the multiHeadMLP on the input
// nodes
func (e *multiHeadMLP) fwd() error {
	pred := G.Must(G.Concat(1, e.stateInput, e.positionInput))

	var err error
	for i, l := range e.layers {
		if pred, err = l.fwd(pred); err != nil {
			msg := "fwd: could not compute forward pass of layer %v: %v"
			return fmt.Errorf(msg, i, err)
		}
	}

	e.prediction = pred

	G.Read(e.prediction, &e.predVal)

	return nil
}

// Output returns the output of the multiHeadMLP.
func (e *multiHeadMLP) Output() G.Value {
	return e.predVal
}

// Prediction returns the node of the computational graph that stores
// the output of the multiHeadMLP
func (e *multiHeadMLP) Prediction() *G.Node {
	return e.prediction
}
