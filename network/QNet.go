package network

import (
	"encoding/gob"
	"fmt"
	"os"

	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

// QNet is an action value function approximator. It uses a
// multiHeadMLP to predict the value of each action in a given state,
// where a state consists of a flattened stack of preprocessed frames
// together with a position vector.
//
// A QNet maintains three copies of the same network: a training
// network on which gradients are computed, the batch evaluation
// network used to predict the action values of a batch of next
// states, and the behaviour network used to predict the action values
// of a single state for action selection. After every training step
// the weights of the evaluation and behaviour networks are set equal
// to those of the training network, so the three copies always
// compute the same function.
type QNet struct {
	behaviour NeuralNet
	evalNet   NeuralNet
	trainNet  NeuralNet

	vmBehaviour G.VM
	vmEval      G.VM
	vmTrain     G.VM

	solver G.Solver

	targets    *G.Node
	actionMask *G.Node
	lossVal    G.Value

	numActions   int
	stateSize    int
	positionSize int
	batchSize    int
}

// NewQNet creates and returns a new QNet. The parameters hiddenSizes,
// biases, activations, and init determine the architecture and weight
// initialization of the underlying multiHeadMLP. The solver sol
// determines how weights are updated from gradients. The parameter
// huberDelta is the threshold at which the Huber loss switches from
// quadratic to linear.
func NewQNet(stateSize, positionSize, numActions, batchSize int,
	hiddenSizes []int, biases []bool, activations []*Activation,
	init G.InitWFn, sol G.Solver, huberDelta float64) (*QNet, error) {
	if batchSize < 1 {
		return nil, fmt.Errorf("newqnet: batch size must be positive"+
			"\n\thave(%v)", batchSize)
	}
	if huberDelta <= 0 {
		return nil, fmt.Errorf("newqnet: huber delta must be positive"+
			"\n\thave(%v)", huberDelta)
	}

	trainNet, err := NewMultiHeadMLP(stateSize, positionSize, batchSize,
		numActions, G.NewGraph(), hiddenSizes, biases, init, activations)
	if err != nil {
		return nil, fmt.Errorf("newqnet: could not create training "+
			"network: %v", err)
	}

	evalNet, err := trainNet.CloneWithBatch(batchSize)
	if err != nil {
		return nil, fmt.Errorf("newqnet: could not create evaluation "+
			"network: %v", err)
	}

	behaviour, err := trainNet.CloneWithBatch(1)
	if err != nil {
		return nil, fmt.Errorf("newqnet: could not create behaviour "+
			"network: %v", err)
	}

	q := &QNet{
		behaviour:    behaviour,
		evalNet:      evalNet,
		trainNet:     trainNet,
		solver:       sol,
		numActions:   numActions,
		stateSize:    stateSize,
		positionSize: positionSize,
		batchSize:    batchSize,
	}

	err = q.addLoss(huberDelta)
	if err != nil {
		return nil, fmt.Errorf("newqnet: could not construct loss: %v",
			err)
	}

	q.vmBehaviour = G.NewTapeMachine(behaviour.Graph())
	q.vmEval = G.NewTapeMachine(evalNet.Graph())
	q.vmTrain = G.NewTapeMachine(trainNet.Graph(),
		G.BindDualValues(trainNet.Learnables()...))

	return q, nil
}

// addLoss adds the Huber loss and its gradient to the computational
// graph of the training network. The loss is computed on the predicted
// value of the action actually taken on each transition, selected
// from the network output by an action mask with a single nonzero
// entry per row.
func (q *QNet) addLoss(huberDelta float64) error {
	graph := q.trainNet.Graph()

	q.targets = G.NewVector(graph, tensor.Float64,
		G.WithShape(q.batchSize), G.WithName("targets"),
		G.WithInit(G.Zeroes()))
	q.actionMask = G.NewMatrix(graph, tensor.Float64,
		G.WithShape(q.batchSize, q.numActions), G.WithName("actionMask"),
		G.WithInit(G.Zeroes()))

	// Predicted value of the action taken on each transition
	prediction := G.Must(G.HadamardProd(q.trainNet.Prediction(),
		q.actionMask))
	prediction = G.Must(G.Sum(prediction, 1))

	delta := G.NewConstant(huberDelta)
	half := G.NewConstant(0.5)
	one := G.NewConstant(1.0)

	diff := G.Must(G.Sub(q.targets, prediction))
	absDiff := G.Must(G.Abs(diff))

	// Elementwise indicator of |diff| < delta, computed with the same
	// dtype as diff so it can gate the two branches of the loss
	isSmall, err := G.Lt(absDiff, delta, true)
	if err != nil {
		return fmt.Errorf("addloss: could not compute loss branch "+
			"indicator: %v", err)
	}

	quadratic := G.Must(G.Mul(half, G.Must(G.Square(diff))))
	linear := G.Must(G.Sub(
		G.Must(G.Mul(delta, absDiff)),
		G.Must(G.Mul(half, G.Must(G.Square(delta)))),
	))

	losses := G.Must(G.Add(
		G.Must(G.HadamardProd(isSmall, quadratic)),
		G.Must(G.HadamardProd(G.Must(G.Sub(one, isSmall)), linear)),
	))
	loss := G.Must(G.Mean(losses))

	G.Read(loss, &q.lossVal)

	_, err = G.Grad(loss, q.trainNet.Learnables()...)
	if err != nil {
		return fmt.Errorf("addloss: could not compute gradient: %v", err)
	}
	return nil
}

// Predict returns the predicted value of each action in the argument
// state.
func (q *QNet) Predict(state, position []float64) ([]float64, error) {
	err := q.behaviour.SetInput(state, position)
	if err != nil {
		return nil, fmt.Errorf("predict: could not set input: %v", err)
	}

	err = q.vmBehaviour.RunAll()
	if err != nil {
		return nil, fmt.Errorf("predict: could not run behaviour "+
			"network: %v", err)
	}

	values := q.behaviour.Output().Data().([]float64)
	actionValues := make([]float64, q.numActions)
	copy(actionValues, values)

	q.vmBehaviour.Reset()
	return actionValues, nil
}

// PredictBatch returns the predicted value of each action in each
// state of the argument batch. The returned slice has length
// BatchSize() * NumActions(), with the values of each state's actions
// stored contiguously.
func (q *QNet) PredictBatch(states, positions []float64) ([]float64,
	error) {
	err := q.evalNet.SetInput(states, positions)
	if err != nil {
		return nil, fmt.Errorf("predictbatch: could not set input: %v",
			err)
	}

	err = q.vmEval.RunAll()
	if err != nil {
		return nil, fmt.Errorf("predictbatch: could not run evaluation "+
			"network: %v", err)
	}

	values := q.evalNet.Output().Data().([]float64)
	actionValues := make([]float64, q.batchSize*q.numActions)
	copy(actionValues, values)

	q.vmEval.Reset()
	return actionValues, nil
}

// TrainStep performs a single gradient descent step on the Huber loss
// between targets and the predicted values of the actions selected by
// actionMasks. After the weight update, the evaluation and behaviour
// networks are set equal to the updated training network. The loss
// before the update is returned.
func (q *QNet) TrainStep(states, positions, targets,
	actionMasks []float64) (float64, error) {
	if len(targets) != q.batchSize {
		return 0, fmt.Errorf("trainstep: invalid number of targets"+
			"\n\twant(%v)\n\thave(%v)", q.batchSize, len(targets))
	}
	if len(actionMasks) != q.batchSize*q.numActions {
		return 0, fmt.Errorf("trainstep: invalid action mask size"+
			"\n\twant(%v)\n\thave(%v)", q.batchSize*q.numActions,
			len(actionMasks))
	}

	err := q.trainNet.SetInput(states, positions)
	if err != nil {
		return 0, fmt.Errorf("trainstep: could not set input: %v", err)
	}

	targetsTensor := tensor.New(
		tensor.WithBacking(targets),
		tensor.WithShape(q.batchSize),
	)
	err = G.Let(q.targets, targetsTensor)
	if err != nil {
		return 0, fmt.Errorf("trainstep: could not set targets: %v", err)
	}

	maskTensor := tensor.New(
		tensor.WithBacking(actionMasks),
		tensor.WithShape(q.batchSize, q.numActions),
	)
	err = G.Let(q.actionMask, maskTensor)
	if err != nil {
		return 0, fmt.Errorf("trainstep: could not set action mask: %v",
			err)
	}

	err = q.vmTrain.RunAll()
	if err != nil {
		return 0, fmt.Errorf("trainstep: could not run training "+
			"network: %v", err)
	}

	loss := q.lossVal.Data().(float64)

	err = q.solver.Step(q.trainNet.Model())
	if err != nil {
		return 0, fmt.Errorf("trainstep: could not step solver: %v", err)
	}
	q.vmTrain.Reset()

	// Keep all three copies of the network computing the same function
	err = q.evalNet.Set(q.trainNet)
	if err != nil {
		return 0, fmt.Errorf("trainstep: could not update evaluation "+
			"network: %v", err)
	}
	err = q.behaviour.Set(q.trainNet)
	if err != nil {
		return 0, fmt.Errorf("trainstep: could not update behaviour "+
			"network: %v", err)
	}

	return loss, nil
}

// BatchSize returns the number of transitions the QNet trains on at a
// time.
func (q *QNet) BatchSize() int {
	return q.batchSize
}

// NumActions returns the number of actions the QNet predicts values
// for.
func (q *QNet) NumActions() int {
	return q.numActions
}

// StateSize returns the number of features in a flattened
// stacked-frame state.
func (q *QNet) StateSize() int {
	return q.stateSize
}

// PositionSize returns the number of features in a position vector.
func (q *QNet) PositionSize() int {
	return q.positionSize
}

// Save serializes the QNet's weights to the file at path.
func (q *QNet) Save(path string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("save: could not create file: %v", err)
	}
	defer file.Close()

	weights := make([]*tensor.Dense, 0,
		len(q.trainNet.Learnables()))
	for _, learnable := range q.trainNet.Learnables() {
		weights = append(weights, learnable.Value().(*tensor.Dense))
	}

	enc := gob.NewEncoder(file)
	err = enc.Encode(weights)
	if err != nil {
		return fmt.Errorf("save: could not encode weights: %v", err)
	}
	return nil
}

// Load restores the QNet's weights from a file previously written by
// Save. The architecture of the saved network must match that of the
// QNet.
func (q *QNet) Load(path string) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("load: could not open file: %v", err)
	}
	defer file.Close()

	var weights []*tensor.Dense
	dec := gob.NewDecoder(file)
	err = dec.Decode(&weights)
	if err != nil {
		return fmt.Errorf("load: could not decode weights: %v", err)
	}

	learnables := q.trainNet.Learnables()
	if len(weights) != len(learnables) {
		return fmt.Errorf("load: invalid number of weight tensors"+
			"\n\twant(%v)\n\thave(%v)", len(learnables), len(weights))
	}
	for i, learnable := range learnables {
		if err := G.Let(learnable, weights[i]); err != nil {
			return fmt.Errorf("load: could not set weights: %v", err)
		}
	}

	if err := q.evalNet.Set(q.trainNet); err != nil {
		return fmt.Errorf("load: could not update evaluation "+
			"network: %v", err)
	}
	if err := q.behaviour.Set(q.trainNet); err != nil {
		return fmt.Errorf("load: could not update behaviour "+
			"network: %v", err)
	}
	return nil
}
