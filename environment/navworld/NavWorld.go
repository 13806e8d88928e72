// Package navworld provides a continuous 2D navigation environment
// with image observations.
//
// The world is a walled planar arena containing static box obstacles
// and a goal region. The agent is a small dynamic box which moves in
// one of the four cardinal directions each step. Observations are a
// top-down RGB rendering of the arena paired with the agent's
// normalized position.
package navworld

import (
	"fmt"
	"image/color"

	"github.com/ByteArena/box2d"
	"github.com/fogleman/gg"
	"gonum.org/v1/gonum/mat"
	"gorgonia.org/tensor"
	"sfneuman.com/gonav/environment"
	"sfneuman.com/gonav/timestep"
)

const (
	FPS float64 = 50

	// Scale converts world coordinates to pixels
	Scale float64 = 8.0

	ViewportW float64 = 64
	ViewportH float64 = 64

	// Channels per rendered pixel
	FrameChannels int = 3

	XGravity float64 = 0.0
	YGravity float64 = 0.0

	// Half side length of the agent's box in world coordinates
	AgentHalfWidth float64 = 0.25

	// Speed at which the agent moves, in world units per second
	MoveSpeed float64 = 2.0

	// Actions
	MinDiscreteAction int = 0
	MaxDiscreteAction int = 3
)

// Available actions
const (
	MoveLeft int = iota
	MoveRight
	MoveDown
	MoveUp
)

// obstaclePoly holds the static box obstacles of the arena as
// (x, y, halfWidth, halfHeight) in world coordinates
var obstaclePoly = [][4]float64{
	{2.0, 5.5, 0.4, 1.5},
	{5.0, 2.5, 1.2, 0.4},
	{6.0, 6.0, 0.5, 0.5},
}

// WorldToPixelCoord converts world coordinates to pixel coordinates in
// rendered frames
func WorldToPixelCoord(coords [2]float64) [2]float64 {
	x, y := coords[0], coords[1]

	pixelX := Scale * x
	pixelY := ViewportH - Scale*y

	return [2]float64{pixelX, pixelY}
}

// contactDetector listens for contacts between the agent and any
// other body in the world
type contactDetector struct {
	env *navWorld
}

func newContactDetector(e *navWorld) *contactDetector {
	return &contactDetector{e}
}

// BeginContact records a collision when the agent touches any other
// body. Collisions are terminal, so the flag is never cleared within
// an episode.
func (c *contactDetector) BeginContact(contact box2d.B2ContactInterface) {
	if c.env.agent == contact.GetFixtureA().GetBody() ||
		c.env.agent == contact.GetFixtureB().GetBody() {
		c.env.collided = true
	}
}

func (c *contactDetector) EndContact(contact box2d.B2ContactInterface) {}

func (c *contactDetector) PreSolve(contact box2d.B2ContactInterface,
	oldManifold box2d.B2Manifold) {
}

func (c *contactDetector) PostSolve(contact box2d.B2ContactInterface,
	impulse *box2d.B2ContactImpulse) {
}

// goalTask is a Task with a renderable goal region
type goalTask interface {
	Goal() mat.Vector
	GoalRadius() float64
}

type navWorld struct {
	environment.Task

	world box2d.B2World

	boundary       []*box2d.B2Body
	boundaryColour color.Color

	obstacles      []*box2d.B2Body
	obstacleColour color.Color

	agent        *box2d.B2Body
	agentColour  color.Color
	groundColour color.Color
	goalColour   color.Color

	collided bool

	discount float64
	prevStep timestep.TimeStep
}

// New creates and returns a new navWorld with the argument task,
// along with the first timestep of its first episode
func New(t environment.Task, discount float64) (environment.Environment,
	timestep.TimeStep, error) {
	n := navWorld{}
	n.world = box2d.MakeB2World(box2d.B2Vec2{X: XGravity, Y: YGravity})

	n.boundaryColour = color.RGBA{R: 64, G: 64, B: 64, A: 255}
	n.obstacleColour = color.RGBA{R: 192, G: 64, B: 64, A: 255}
	n.agentColour = color.RGBA{R: 64, G: 96, B: 224, A: 255}
	n.goalColour = color.RGBA{R: 64, G: 192, B: 64, A: 255}
	n.groundColour = color.RGBA{R: 240, G: 240, B: 240, A: 255}

	n.discount = discount

	task, ok := t.(Task)
	if ok {
		task.registerEnv(&n)
		n.Task = task
	} else {
		n.Task = t
	}

	step, err := n.Reset()
	if err != nil {
		return nil, timestep.TimeStep{}, fmt.Errorf("new: %v", err)
	}

	return &n, step, nil
}

// destroy removes every body from the world between episodes
func (n *navWorld) destroy() {
	if n.agent == nil {
		return
	}
	n.world.SetContactListener(nil)

	n.world.DestroyBody(n.agent)
	n.agent = nil

	for _, obstacle := range n.obstacles {
		n.world.DestroyBody(obstacle)
	}
	n.obstacles = nil

	for _, bound := range n.boundary {
		n.world.DestroyBody(bound)
	}
	n.boundary = nil
}

// Reset resets the environment, rebuilding the world with the agent
// at a freshly sampled starting position, and returns the first
// timestep of the new episode
func (n *navWorld) Reset() (timestep.TimeStep, error) {
	n.destroy()
	n.world.SetContactListener(newContactDetector(n))
	n.collided = false

	// Width and height of the Box2D world
	W := ViewportW / Scale
	H := ViewportH / Scale

	// Boundary walls
	n.boundary = make([]*box2d.B2Body, 4)
	for i := 0; i < 4; i++ {
		boundsDef := box2d.NewB2BodyDef()
		boundsDef.Type = 0 // Static body
		n.boundary[i] = n.world.CreateBody(boundsDef)
		boundsShape := box2d.NewB2EdgeShape()
		if i == 0 {
			boundsShape.Set(box2d.MakeB2Vec2(0.0, 0.0),
				box2d.MakeB2Vec2(0.0, H))
		} else if i == 1 {
			boundsShape.Set(box2d.MakeB2Vec2(0.0, H),
				box2d.MakeB2Vec2(W, H))
		} else if i == 2 {
			boundsShape.Set(box2d.MakeB2Vec2(W, H),
				box2d.MakeB2Vec2(W, 0.0))
		} else {
			boundsShape.Set(box2d.MakeB2Vec2(W, 0.0),
				box2d.MakeB2Vec2(0.0, 0.0))
		}
		boundsFix := box2d.MakeB2FixtureDef()
		boundsFix.Shape = boundsShape
		n.boundary[i].CreateFixtureFromDef(&boundsFix)
	}

	// Obstacles
	n.obstacles = make([]*box2d.B2Body, 0, len(obstaclePoly))
	for _, poly := range obstaclePoly {
		obstacleDef := box2d.NewB2BodyDef()
		obstacleDef.Type = 0
		obstacleDef.Position = box2d.MakeB2Vec2(poly[0], poly[1])

		obstacle := n.world.CreateBody(obstacleDef)
		n.obstacles = append(n.obstacles, obstacle)

		obstacleShape := box2d.NewB2PolygonShape()
		obstacleShape.SetAsBox(poly[2], poly[3])

		obstacleFix := box2d.MakeB2FixtureDef()
		obstacleFix.Shape = obstacleShape
		obstacleFix.Friction = 0.1
		obstacle.CreateFixtureFromDef(&obstacleFix)
	}

	// Starting position, sampled in normalized coordinates
	start := n.Start()
	if err := validateStart(start); err != nil {
		return timestep.TimeStep{}, fmt.Errorf("reset: %v", err)
	}
	initialX := start.AtVec(0) * W
	initialY := start.AtVec(1) * H

	// Agent body
	agentDef := box2d.MakeB2BodyDef()
	agentDef.Type = 2 // Dynamic body
	agentDef.Position = box2d.MakeB2Vec2(initialX, initialY)
	agentDef.FixedRotation = true

	agentBody := n.world.CreateBody(&agentDef)
	n.agent = agentBody

	agentShape := box2d.NewB2PolygonShape()
	agentShape.SetAsBox(AgentHalfWidth, AgentHalfWidth)

	agentFix := box2d.MakeB2FixtureDef()
	agentFix.Shape = agentShape
	agentFix.Density = 1.0
	agentFix.Friction = 0.1
	agentFix.Restitution = 0.0
	agentBody.CreateFixtureFromDef(&agentFix)

	position := n.position()
	step := timestep.New(timestep.First, 0.0, n.discount, n.Render(),
		position, 0)

	n.prevStep = step
	return step, nil
}

// Step takes one environmental step given a discrete action, moving
// the agent in the corresponding cardinal direction
func (n *navWorld) Step(action int) (timestep.TimeStep, bool, error) {
	var velocity box2d.B2Vec2
	switch action {
	case MoveLeft:
		velocity = box2d.MakeB2Vec2(-MoveSpeed, 0.0)
	case MoveRight:
		velocity = box2d.MakeB2Vec2(MoveSpeed, 0.0)
	case MoveDown:
		velocity = box2d.MakeB2Vec2(0.0, -MoveSpeed)
	case MoveUp:
		velocity = box2d.MakeB2Vec2(0.0, MoveSpeed)
	default:
		return timestep.TimeStep{}, true, fmt.Errorf("step: action out "+
			"of range [%v, %v] \n\thave(%v)", MinDiscreteAction,
			MaxDiscreteAction, action)
	}

	n.agent.SetLinearVelocity(velocity)
	n.world.Step(1.0/FPS, 6*int(Scale), 2*int(Scale))

	position := n.position()
	reward := n.GetReward(position, n.collided)

	t := timestep.New(timestep.Mid, reward, n.discount, n.Render(),
		position, n.prevStep.Number+1)
	n.End(&t)

	n.prevStep = t
	return t, t.Last(), nil
}

// position returns the agent's position normalized to [0, 1] in each
// dimension
func (n *navWorld) position() *mat.VecDense {
	pos := n.agent.GetPosition()

	return mat.NewVecDense(2, []float64{
		pos.X / (ViewportW / Scale),
		pos.Y / (ViewportH / Scale),
	})
}

// Render draws the world into an RGB frame of shape
// (ViewportH, ViewportW, FrameChannels), with pixel values in
// [0, 255]
func (n *navWorld) Render() *tensor.Dense {
	dc := gg.NewContext(int(ViewportW), int(ViewportH))
	dc.SetColor(n.groundColour)
	dc.Clear()

	// Goal region
	if task, ok := n.Task.(goalTask); ok {
		goal := WorldToPixelCoord([2]float64{
			task.Goal().AtVec(0) * ViewportW / Scale,
			task.Goal().AtVec(1) * ViewportH / Scale,
		})
		dc.SetColor(n.goalColour)
		dc.DrawCircle(goal[0], goal[1], task.GoalRadius()*ViewportW)
		dc.Fill()
	}

	// Obstacles
	dc.SetColor(n.obstacleColour)
	for _, obstacle := range n.obstacles {
		fix := obstacle.GetFixtureList()
		for fix != nil {
			shape := fix.M_shape.(*box2d.B2PolygonShape)

			dc.ClearPath()
			for i, vertex := range shape.M_vertices {
				if i >= shape.M_count {
					break
				}
				trans := fix.M_body.M_xf
				vertex = box2d.B2TransformVec2Mul(trans, vertex)

				pixelCoords := WorldToPixelCoord([2]float64{vertex.X,
					vertex.Y})
				dc.LineTo(pixelCoords[0], pixelCoords[1])
			}
			dc.Fill()
			fix = fix.M_next
		}
	}

	// Boundary walls
	dc.ClearPath()
	dc.SetColor(n.boundaryColour)
	dc.SetLineWidth(2.0)
	for i := range n.boundary {
		fix := n.boundary[i].GetFixtureList()
		sh := fix.M_shape.(*box2d.B2EdgeShape)

		pixelCoords1 := WorldToPixelCoord([2]float64{sh.M_vertex1.X,
			sh.M_vertex1.Y})
		pixelCoords2 := WorldToPixelCoord([2]float64{sh.M_vertex2.X,
			sh.M_vertex2.Y})

		dc.DrawLine(pixelCoords1[0], pixelCoords1[1], pixelCoords2[0],
			pixelCoords2[1])
	}
	dc.Stroke()

	// Agent
	agentFix := n.agent.GetFixtureList()
	dc.SetColor(n.agentColour)
	for agentFix != nil {
		shape := agentFix.M_shape.(*box2d.B2PolygonShape)

		dc.ClearPath()
		for i, vertex := range shape.M_vertices {
			if i >= shape.M_count {
				break
			}
			trans := agentFix.M_body.M_xf
			vertex = box2d.B2TransformVec2Mul(trans, vertex)

			pixelCoords := WorldToPixelCoord([2]float64{vertex.X, vertex.Y})
			dc.LineTo(pixelCoords[0], pixelCoords[1])
		}
		dc.Fill()
		agentFix = agentFix.M_next
	}

	// Copy the rendering into a (rows, cols, channels) tensor
	img := dc.Image()
	rows, cols := int(ViewportH), int(ViewportW)
	backing := make([]float64, rows*cols*FrameChannels)
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			base := (y*cols + x) * FrameChannels
			backing[base] = float64(r >> 8)
			backing[base+1] = float64(g >> 8)
			backing[base+2] = float64(b >> 8)
		}
	}

	return tensor.New(
		tensor.WithShape(rows, cols, FrameChannels),
		tensor.WithBacking(backing),
	)
}

// CurrentTimeStep returns the environment's most recent timestep
func (n *navWorld) CurrentTimeStep() timestep.TimeStep {
	return n.prevStep
}

// DiscountSpec returns the discount specification of the environment
func (n *navWorld) DiscountSpec() environment.Spec {
	shape := mat.NewVecDense(1, nil)
	bound := mat.NewVecDense(1, []float64{n.discount})

	return environment.NewSpec(shape, environment.Discount, bound, bound,
		environment.Continuous)
}

// ObservationSpec returns the specification of the environment's
// rendered frames
func (n *navWorld) ObservationSpec() environment.Spec {
	shape := mat.NewVecDense(3, []float64{
		ViewportH,
		ViewportW,
		float64(FrameChannels),
	})
	lowerBound := mat.NewVecDense(3, nil)
	upperBound := mat.NewVecDense(3, []float64{255.0, 255.0, 255.0})

	return environment.NewSpec(shape, environment.Observation, lowerBound,
		upperBound, environment.Continuous)
}

// PositionSpec returns the specification of the environment's
// normalized positions
func (n *navWorld) PositionSpec() environment.Spec {
	shape := mat.NewVecDense(2, nil)
	lowerBound := mat.NewVecDense(2, nil)
	upperBound := mat.NewVecDense(2, []float64{1.0, 1.0})

	return environment.NewSpec(shape, environment.Position, lowerBound,
		upperBound, environment.Continuous)
}

// ActionSpec returns the action specification of the environment
func (n *navWorld) ActionSpec() environment.Spec {
	shape := mat.NewVecDense(1, nil)
	lowerBound := mat.NewVecDense(1, []float64{float64(MinDiscreteAction)})
	upperBound := mat.NewVecDense(1, []float64{float64(MaxDiscreteAction)})

	return environment.NewSpec(shape, environment.Action, lowerBound,
		upperBound, environment.Discrete)
}

// validateStart checks that a sampled starting position is a valid
// normalized position
func validateStart(start *mat.VecDense) error {
	if start.Len() != 2 {
		return fmt.Errorf("starting positions should be 2-dimensional")
	}

	for i := 0; i < start.Len(); i++ {
		if start.AtVec(i) < 0.0 || start.AtVec(i) > 1.0 {
			return fmt.Errorf("starting position out of bounds, expected "+
				"coordinates in [0, 1] but got %v", start.AtVec(i))
		}
	}

	return nil
}
