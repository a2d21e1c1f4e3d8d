package scene

import (
	"io/fs"
	"log"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-tutorial/common"
	"github.com/Carmen-Shannon/oxy-tutorial/engine/camera"
	"github.com/Carmen-Shannon/oxy-tutorial/engine/game_object"
	"github.com/Carmen-Shannon/oxy-tutorial/engine/light"
	"github.com/Carmen-Shannon/oxy-tutorial/engine/model"
	"github.com/Carmen-Shannon/oxy-tutorial/engine/renderer"
	"github.com/Carmen-Shannon/oxy-tutorial/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-tutorial/engine/texture"
	"github.com/chewxy/math32"
	"github.com/cockroachdb/errors"
)

const (
	// NominalFrameRate is the frame rate animation speeds are expressed against.
	NominalFrameRate = 60

	// DefaultRotationSpeed is the yaw added to the main object every nominal frame, in radians.
	DefaultRotationSpeed = math32.Pi / 100

	// DefaultTranslationSpeed is the texture translation added every nominal frame.
	DefaultTranslationSpeed = 0.01
)

// DefaultCameraPosition is where the camera starts, looking down +Z at the origin.
var DefaultCameraPosition = common.Vec3{0, 0, -10}

// Assets names the files a scene loads. Paths are used as given.
type Assets struct {
	// Mesh is a text mesh or a .obj file. Empty selects a built-in primitive for the technique.
	Mesh string

	// Textures are bound to the technique's texture slots in order. The count must equal the
	// technique's TextureCount.
	Textures []string

	// Overlay, when set, is drawn as a 2D bitmap before the 3D pass.
	Overlay *Overlay
}

// Overlay places a bitmap on the screen.
type Overlay struct {
	// Texture is the image drawn.
	Texture string

	// Width and Height are the bitmap size in pixels. Zero uses the image size.
	Width, Height int

	// X and Y are the top-left corner in pixels, y growing downwards.
	X, Y int
}

type overlayState struct {
	program shader.Program
	bitmap  model.Bitmap
	texture texture.Texture
	x, y    int
}

type sceneImpl struct {
	mu *sync.Mutex

	ctx                 renderer.DeviceContext
	technique           shader.Technique
	clearColor          [4]float32
	sources             fs.FS
	diagnosticsPath     string
	ringSize            int
	loadWorkers         int
	maxTextureDimension int
	cameraPosition      common.Vec3
	rotationSpeed       float32
	translationSpeed    float32
	lgt                 light.Light

	cam         camera.Camera
	pool        worker.DynamicWorkerPool
	programs    []shader.Program
	textures    []texture.Texture
	arrays      []texture.TextureArray
	meshes      []model.Mesh
	overlay     *overlayState
	objects     []game_object.GameObject
	nextID      uint64
	translation float32

	dropped     uint64
	initialized bool
	shutdown    bool
}

// Scene owns the DeviceContext and every resource drawn on it: the camera, meshes, textures,
// programs and the optional light and overlay. It advances animation once per frame and
// records every object in the order it was added.
type Scene interface {
	// Initialize builds the camera, the main mesh, its textures and program, the light of lit
	// techniques and the optional overlay. On failure everything created so far is released.
	//
	// Parameters:
	//   - assets: the files to load
	//
	// Returns:
	//   - error: a fatal startup error
	Initialize(assets Assets) error

	// Frame advances animation by dt and renders one frame.
	//
	// Parameters:
	//   - dt: time since the previous frame; zero or negative counts as one nominal frame
	//
	// Returns:
	//   - error: a dropped-frame error if the frame could not be completed
	Frame(dt time.Duration) error

	// Render draws the overlay with depth testing off, then every enabled object, between
	// BeginFrame and EndFrame. EndFrame runs even when a draw fails.
	//
	// Returns:
	//   - error: a dropped-frame error if the frame could not be completed
	Render() error

	// Add appends obj to the draw list and assigns it the next ID. The caller keeps ownership
	// of the object's mesh, program and textures.
	//
	// Parameters:
	//   - obj: the object to draw
	//
	// Returns:
	//   - uint64: the assigned ID
	Add(obj game_object.GameObject) uint64

	// Get returns the object with the given ID, or nil.
	Get(id uint64) game_object.GameObject

	// Remove takes the object with the given ID out of the draw list.
	Remove(id uint64)

	// Objects returns the draw list in draw order.
	Objects() []game_object.GameObject

	// Camera returns the scene camera, nil before Initialize.
	Camera() camera.Camera

	// Light returns the light of lit techniques, nil otherwise.
	Light() light.Light

	// Technique returns the technique of the main object.
	Technique() shader.Technique

	// DeviceContext returns the device context the scene draws on.
	DeviceContext() renderer.DeviceContext

	// Rotation returns the yaw of the main object in radians.
	Rotation() float32

	// TextureTranslation returns the texture translation in [0, 1).
	TextureTranslation() float32

	// DroppedFrames returns the number of frames that returned an error.
	DroppedFrames() uint64

	// Shutdown releases programs, textures and meshes, then shuts the DeviceContext down.
	// Calling it again does nothing.
	Shutdown()
}

var _ Scene = &sceneImpl{}

// NewScene creates a scene that takes ownership of ctx. Nothing is loaded until Initialize.
//
// Parameters:
//   - ctx: the device context to draw on
//   - options: functional options applied after defaults
//
// Returns:
//   - Scene: the new scene
//   - error: a fatal startup error if ctx is nil
func NewScene(ctx renderer.DeviceContext, options ...SceneBuilderOption) (Scene, error) {
	if ctx == nil {
		return nil, common.Fatal(nil, "scene: device context is nil")
	}
	s := &sceneImpl{
		mu:               &sync.Mutex{},
		ctx:              ctx,
		technique:        shader.TextureTechnique,
		clearColor:       [4]float32{0, 0, 0, 1},
		sources:          shader.DefaultSources(),
		loadWorkers:      3,
		cameraPosition:   DefaultCameraPosition,
		rotationSpeed:    DefaultRotationSpeed,
		translationSpeed: DefaultTranslationSpeed,
		nextID:           1,
	}
	for _, option := range options {
		option(s)
	}
	return s, nil
}

// usesLight reports whether t reads a light constant buffer.
func usesLight(t shader.Technique) bool {
	return slices.ContainsFunc(t.ConstantBuffers, func(cb shader.ConstantBuffer) bool {
		return cb.Name == shader.LightBuffer.Name
	})
}

// vertexFormat returns the mesh vertex format whose stride matches the technique's attributes.
func vertexFormat(t shader.Technique) (model.VertexFormat, error) {
	for _, f := range []model.VertexFormat{
		model.FormatPositionColor,
		model.FormatPositionTexture,
		model.FormatPositionTextureNormal,
		model.FormatPositionTextureNormalTangent,
	} {
		if f.Stride() == t.Stride() {
			return f, nil
		}
	}
	return 0, errors.Newf("technique %s: no vertex format with stride %d", t.Name, t.Stride())
}

// defaultMesh is the geometry drawn when no mesh file is given.
func defaultMesh(t shader.Technique) model.MeshData {
	switch t.Name {
	case shader.ColorTechnique.Name:
		return model.ColorTriangle(common.Vec4{0, 1, 0, 1})
	case shader.TextureTechnique.Name:
		return model.Triangle()
	default:
		return model.Quad()
	}
}

func loadMesh(path string, format model.VertexFormat) (model.MeshData, error) {
	if strings.EqualFold(filepath.Ext(path), ".obj") {
		return model.LoadOBJFile(path, format)
	}
	return model.LoadMeshFile(path, format)
}

func (s *sceneImpl) programOptions() []shader.ProgramBuilderOption {
	opts := []shader.ProgramBuilderOption{shader.WithSources(s.sources)}
	if s.diagnosticsPath != "" {
		opts = append(opts, shader.WithDiagnosticsPath(s.diagnosticsPath))
	}
	if s.ringSize > 0 {
		opts = append(opts, shader.WithRingSize(s.ringSize))
	}
	return opts
}

func (s *sceneImpl) textureOptions() []texture.TextureBuilderOption {
	var opts []texture.TextureBuilderOption
	if s.maxTextureDimension > 0 {
		opts = append(opts, texture.WithMaxDimension(s.maxTextureDimension))
	}
	return opts
}

func (s *sceneImpl) Initialize(assets Assets) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.shutdown {
		return common.Fatal(nil, "scene: initialize after shutdown")
	}
	if s.initialized {
		return common.Fatal(nil, "scene: already initialized")
	}
	if err := s.initialize(assets); err != nil {
		s.releaseResources()
		return err
	}
	s.initialized = true
	log.Printf("scene: initialized %s technique, %d object(s)", s.technique.Name, len(s.objects))
	return nil
}

func (s *sceneImpl) initialize(assets Assets) error {
	t := s.technique
	s.cam = camera.NewCamera(camera.WithPosition(s.cameraPosition.X(), s.cameraPosition.Y(), s.cameraPosition.Z()))
	s.cam.Render()
	s.cam.RenderBaseViewMatrix()

	format, err := vertexFormat(t)
	if err != nil {
		return common.Fatal(err, "scene")
	}
	data := defaultMesh(t).Convert(format)
	label := t.Name
	if assets.Mesh != "" {
		if data, err = loadMesh(assets.Mesh, format); err != nil {
			return common.Fatal(err, "scene: could not initialize the model object")
		}
		label = filepath.Base(assets.Mesh)
	}
	mesh, err := model.NewMesh(s.ctx, data, model.WithLabel(label))
	if err != nil {
		return errors.Wrap(err, "scene: could not initialize the model object")
	}
	s.meshes = append(s.meshes, mesh)

	handles, err := s.loadTextures(t, assets.Textures)
	if err != nil {
		return err
	}

	program, err := shader.NewProgram(s.ctx, t, s.programOptions()...)
	if err != nil {
		return errors.Wrapf(err, "scene: could not initialize the %s shader object", t.Name)
	}
	s.programs = append(s.programs, program)

	if usesLight(t) && s.lgt == nil {
		s.lgt = light.NewLight(
			light.WithAmbientColor(0.15, 0.15, 0.15, 1),
			light.WithDiffuseColor(1, 1, 1, 1),
			light.WithDirection(0, 0, 1),
			light.WithSpecularColor(1, 1, 1, 1),
			light.WithSpecularPower(32),
		)
	}

	if assets.Overlay != nil {
		if err := s.loadOverlay(*assets.Overlay); err != nil {
			return err
		}
	}

	s.add(game_object.NewGameObject(mesh, program,
		game_object.WithTextures(handles...),
		game_object.WithRotationSpeed(0, s.rotationSpeed, 0),
	))
	return nil
}

// loadTextures loads paths in slot order. A single texture is loaded directly; two or more
// are decoded in parallel on the scene's load pool.
func (s *sceneImpl) loadTextures(t shader.Technique, paths []string) ([]renderer.Handle, error) {
	if len(paths) != t.TextureCount {
		return nil, common.Fatal(nil, "scene: technique %s needs %d texture(s), got %d", t.Name, t.TextureCount, len(paths))
	}
	switch len(paths) {
	case 0:
		return nil, nil
	case 1:
		tex, err := texture.NewTexture(s.ctx, paths[0], s.textureOptions()...)
		if err != nil {
			return nil, errors.Wrap(err, "scene: could not initialize the texture object")
		}
		s.textures = append(s.textures, tex)
		return []renderer.Handle{tex.Handle()}, nil
	default:
		if s.pool == nil {
			s.pool = worker.NewDynamicWorkerPool(s.loadWorkers, len(paths), time.Second)
		}
		opts := append(s.textureOptions(), texture.WithWorkerPool(s.pool), texture.WithLabel(t.Name))
		arr, err := texture.NewTextureArray(s.ctx, paths, opts...)
		if err != nil {
			return nil, errors.Wrap(err, "scene: could not initialize the texture array object")
		}
		s.arrays = append(s.arrays, arr)
		return arr.Handles(), nil
	}
}

func (s *sceneImpl) loadOverlay(o Overlay) error {
	tex, err := texture.NewTexture(s.ctx, o.Texture, s.textureOptions()...)
	if err != nil {
		return errors.Wrap(err, "scene: could not initialize the overlay texture")
	}
	s.textures = append(s.textures, tex)

	w, h := o.Width, o.Height
	if w == 0 || h == 0 {
		w, h = tex.Size()
	}
	bitmap, err := model.NewBitmap(s.ctx, w, h, model.WithBitmapLabel("overlay"))
	if err != nil {
		return errors.Wrap(err, "scene: could not initialize the bitmap object")
	}
	program, err := shader.NewProgram(s.ctx, shader.TextureTechnique, s.programOptions()...)
	if err != nil {
		bitmap.Release()
		return errors.Wrap(err, "scene: could not initialize the overlay shader object")
	}
	s.programs = append(s.programs, program)
	s.overlay = &overlayState{program: program, bitmap: bitmap, texture: tex, x: o.X, y: o.Y}
	return nil
}

func (s *sceneImpl) Frame(dt time.Duration) error {
	frames := float32(dt.Seconds() * NominalFrameRate)
	if dt <= 0 {
		frames = 1
	}

	s.mu.Lock()
	for _, obj := range s.objects {
		obj.Advance(frames)
	}
	s.translation += s.translationSpeed * frames
	s.translation -= math32.Floor(s.translation)
	s.mu.Unlock()

	return s.Render()
}

func (s *sceneImpl) Render() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.render()
	if err != nil {
		s.dropped++
	}
	return err
}

func (s *sceneImpl) render() error {
	if !s.initialized || s.shutdown {
		return common.Dropped(nil, "scene: render without initialized resources")
	}
	c := s.clearColor
	if err := s.ctx.BeginFrame(c[0], c[1], c[2], c[3]); err != nil {
		return err
	}
	err := s.draw()
	if endErr := s.ctx.EndFrame(); endErr != nil {
		err = errors.CombineErrors(err, endErr)
	}
	return err
}

func (s *sceneImpl) draw() error {
	s.cam.Render()
	view := s.cam.ViewMatrix()

	if s.overlay != nil {
		s.ctx.SetDepthTestEnabled(false)
		err := s.drawOverlay()
		s.ctx.SetDepthTestEnabled(true)
		if err != nil {
			return err
		}
	}

	params := shader.Parameters{
		World:              s.ctx.World(),
		View:               view,
		Projection:         s.ctx.Projection(),
		CameraPosition:     s.cam.Position(),
		TextureTranslation: s.translation,
	}
	if s.lgt != nil {
		params.Light = s.lgt.ShaderParameters()
	}
	for _, obj := range s.objects {
		if !obj.Enabled() {
			continue
		}
		if err := obj.Draw(params); err != nil {
			return common.Dropped(err, "scene: draw object %d", obj.ID())
		}
	}
	return nil
}

func (s *sceneImpl) drawOverlay() error {
	o := s.overlay
	if err := o.bitmap.Render(o.x, o.y); err != nil {
		return err
	}
	err := o.program.SetParameters(shader.Parameters{
		World:      s.ctx.World(),
		View:       s.cam.BaseViewMatrix(),
		Projection: s.ctx.Ortho(),
		Textures:   []renderer.Handle{o.texture.Handle()},
	})
	if err != nil {
		return common.Dropped(err, "scene: overlay parameters")
	}
	if err := o.program.Draw(uint32(o.bitmap.IndexCount())); err != nil {
		return common.Dropped(err, "scene: draw overlay")
	}
	return nil
}

func (s *sceneImpl) Add(obj game_object.GameObject) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.add(obj)
}

func (s *sceneImpl) add(obj game_object.GameObject) uint64 {
	id := s.nextID
	s.nextID++
	obj.SetID(id)
	s.objects = append(s.objects, obj)
	return id
}

func (s *sceneImpl) Get(id uint64) game_object.GameObject {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, obj := range s.objects {
		if obj.ID() == id {
			return obj
		}
	}
	return nil
}

func (s *sceneImpl) Remove(id uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects = slices.DeleteFunc(s.objects, func(obj game_object.GameObject) bool {
		return obj.ID() == id
	})
}

func (s *sceneImpl) Objects() []game_object.GameObject {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.objects)
}

func (s *sceneImpl) Camera() camera.Camera {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cam
}

func (s *sceneImpl) Light() light.Light {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lgt
}

func (s *sceneImpl) Technique() shader.Technique {
	return s.technique
}

func (s *sceneImpl) DeviceContext() renderer.DeviceContext {
	return s.ctx
}

func (s *sceneImpl) Rotation() float32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.objects) == 0 {
		return 0
	}
	return s.objects[0].Rotation().Y()
}

func (s *sceneImpl) TextureTranslation() float32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.translation
}

func (s *sceneImpl) DroppedFrames() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dropped
}

func (s *sceneImpl) Shutdown() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.shutdown {
		return
	}
	s.releaseResources()
	s.ctx.Shutdown()
	s.shutdown = true
	log.Printf("scene: shut down after %d frame(s), %d dropped", s.ctx.Frame(), s.dropped)
}

// releaseResources releases programs, then textures, then meshes, each in reverse creation
// order, and stops the load pool. Caller must hold the mutex.
func (s *sceneImpl) releaseResources() {
	for i := len(s.programs) - 1; i >= 0; i-- {
		s.programs[i].Release()
	}
	for i := len(s.arrays) - 1; i >= 0; i-- {
		s.arrays[i].Release()
	}
	for i := len(s.textures) - 1; i >= 0; i-- {
		s.textures[i].Release()
	}
	if s.overlay != nil {
		s.overlay.bitmap.Release()
	}
	for i := len(s.meshes) - 1; i >= 0; i-- {
		s.meshes[i].Release()
	}
	if s.pool != nil {
		s.pool.Stop()
		s.pool = nil
	}
	s.programs, s.arrays, s.textures, s.meshes = nil, nil, nil, nil
	s.overlay = nil
	s.objects = nil
	s.initialized = false
}
