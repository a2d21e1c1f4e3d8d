package game_object

import (
	"sync"
	"sync/atomic"

	"github.com/Carmen-Shannon/oxy-tutorial/common"
	"github.com/Carmen-Shannon/oxy-tutorial/engine/model"
	"github.com/Carmen-Shannon/oxy-tutorial/engine/renderer"
	"github.com/Carmen-Shannon/oxy-tutorial/engine/renderer/shader"
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// fullTurn is 360 degrees in radians.
const fullTurn = 2 * math32.Pi

type gameObject struct {
	mu *sync.Mutex

	id       uint64
	enabled  atomic.Bool
	mesh     model.Mesh
	program  shader.Program
	textures []renderer.Handle

	position      common.Vec3
	scale         common.Vec3
	rotation      common.Vec3
	rotationSpeed common.Vec3
}

// GameObject is one mesh drawn with one program and its textures at a position, rotation
// and scale. Rotation is in radians as (pitch, yaw, roll) and advances by RotationSpeed every
// nominal frame. The object references its mesh, program and textures but does not own them.
type GameObject interface {
	// ID returns the object's identifier, 0 until a scene assigns one.
	ID() uint64

	// SetID sets the object's identifier.
	//
	// Parameters:
	//   - id: the ID to assign
	SetID(id uint64)

	// Enabled returns whether the object is drawn.
	Enabled() bool

	// SetEnabled sets whether the object is drawn.
	//
	// Parameters:
	//   - enabled: true to draw the object
	SetEnabled(enabled bool)

	// Mesh returns the mesh the object draws.
	Mesh() model.Mesh

	// Program returns the program the object draws with.
	Program() shader.Program

	// Textures returns the texture handles bound for the object, in slot order.
	Textures() []renderer.Handle

	// Position returns the translation of the object.
	Position() common.Vec3

	// SetPosition sets the translation of the object.
	//
	// Parameters:
	//   - x, y, z: the new position
	SetPosition(x, y, z float32)

	// Rotation returns the rotation in radians as (pitch, yaw, roll).
	Rotation() common.Vec3

	// SetRotation sets the rotation in radians. Each angle is wrapped into [-2π, 2π].
	//
	// Parameters:
	//   - x, y, z: pitch, yaw and roll
	SetRotation(x, y, z float32)

	// RotationSpeed returns the rotation added per nominal frame in radians.
	RotationSpeed() common.Vec3

	// SetRotationSpeed sets the rotation added per nominal frame in radians.
	//
	// Parameters:
	//   - x, y, z: pitch, yaw and roll speed
	SetRotationSpeed(x, y, z float32)

	// Scale returns the scale of the object.
	Scale() common.Vec3

	// SetScale sets the scale of the object.
	//
	// Parameters:
	//   - x, y, z: the new scale
	SetScale(x, y, z float32)

	// Advance adds RotationSpeed scaled by frames to the rotation, wrapping each angle into
	// [-2π, 2π].
	//
	// Parameters:
	//   - frames: the number of nominal frames elapsed, may be fractional
	Advance(frames float32)

	// World returns scale, then rotation, then translation, followed by base.
	//
	// Parameters:
	//   - base: the world matrix of the device context
	//
	// Returns:
	//   - common.Mat4: the world matrix of the object, row-vector convention
	World(base common.Mat4) common.Mat4

	// Draw binds the mesh, sets the program parameters with the object's world matrix and
	// textures substituted into params and issues the draw.
	//
	// Parameters:
	//   - params: the view, projection, light and camera values of this frame; World is the base
	//     world matrix
	//
	// Returns:
	//   - error: a dropped-frame error from any of the three steps
	Draw(params shader.Parameters) error
}

var _ GameObject = &gameObject{}

// NewGameObject creates an enabled object at the origin with unit scale and no rotation.
//
// Parameters:
//   - mesh: the mesh to draw
//   - program: the program to draw with
//   - options: functional options applied after defaults
//
// Returns:
//   - GameObject: the new object
func NewGameObject(mesh model.Mesh, program shader.Program, options ...GameObjectBuilderOption) GameObject {
	obj := &gameObject{
		mu:      &sync.Mutex{},
		mesh:    mesh,
		program: program,
		scale:   common.Vec3{1, 1, 1},
	}
	obj.enabled.Store(true)
	for _, option := range options {
		option(obj)
	}
	obj.rotation = wrapAngles(obj.rotation)
	return obj
}

// wrapAngle brings a into (-2π, 2π) by whole turns. Non-finite angles reset to 0.
func wrapAngle(a float32) float32 {
	if math32.IsNaN(a) || math32.IsInf(a, 0) {
		return 0
	}
	return math32.Mod(a, fullTurn)
}

func wrapAngles(v common.Vec3) common.Vec3 {
	return common.Vec3{wrapAngle(v.X()), wrapAngle(v.Y()), wrapAngle(v.Z())}
}

func (g *gameObject) ID() uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.id
}

func (g *gameObject) SetID(id uint64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.id = id
}

func (g *gameObject) Enabled() bool {
	return g.enabled.Load()
}

func (g *gameObject) SetEnabled(enabled bool) {
	g.enabled.Store(enabled)
}

func (g *gameObject) Mesh() model.Mesh {
	return g.mesh
}

func (g *gameObject) Program() shader.Program {
	return g.program
}

func (g *gameObject) Textures() []renderer.Handle {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]renderer.Handle(nil), g.textures...)
}

func (g *gameObject) Position() common.Vec3 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.position
}

func (g *gameObject) SetPosition(x, y, z float32) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.position = common.Vec3{x, y, z}
}

func (g *gameObject) Rotation() common.Vec3 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.rotation
}

func (g *gameObject) SetRotation(x, y, z float32) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.rotation = wrapAngles(common.Vec3{x, y, z})
}

func (g *gameObject) RotationSpeed() common.Vec3 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.rotationSpeed
}

func (g *gameObject) SetRotationSpeed(x, y, z float32) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.rotationSpeed = common.Vec3{x, y, z}
}

func (g *gameObject) Scale() common.Vec3 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.scale
}

func (g *gameObject) SetScale(x, y, z float32) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.scale = common.Vec3{x, y, z}
}

func (g *gameObject) Advance(frames float32) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.rotation = wrapAngles(g.rotation.Add(g.rotationSpeed.Mul(frames)))
}

func (g *gameObject) World(base common.Mat4) common.Mat4 {
	g.mu.Lock()
	defer g.mu.Unlock()

	s := mgl32.Scale3D(g.scale.X(), g.scale.Y(), g.scale.Z())
	r := common.RotationYawPitchRoll(g.rotation.Y(), g.rotation.X(), g.rotation.Z())
	t := common.Translation(g.position.X(), g.position.Y(), g.position.Z())
	return s.Mul4(r).Mul4(t).Mul4(base)
}

func (g *gameObject) Draw(params shader.Parameters) error {
	if g.mesh == nil || g.program == nil {
		return common.Dropped(nil, "draw object %d: no mesh or program", g.ID())
	}
	if err := g.mesh.Bind(); err != nil {
		return err
	}
	params.World = g.World(params.World)
	params.Textures = g.Textures()
	if err := g.program.SetParameters(params); err != nil {
		return err
	}
	return g.program.Draw(uint32(g.mesh.IndexCount()))
}
