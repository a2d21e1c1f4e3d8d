package shader

import (
	"github.com/Carmen-Shannon/oxy-tutorial/common"
	"github.com/Carmen-Shannon/oxy-tutorial/engine/renderer"
)

// Attribute is one per-vertex input in the order the vertex struct lays it out.
type Attribute struct {
	Semantic string
	Format   renderer.VertexFormat
}

// ConstantBuffer describes one constant buffer of a technique. Encode must write all Size
// bytes from the parameters of a single draw; matrices it receives are already transposed.
type ConstantBuffer struct {
	Name   string
	Stage  renderer.ShaderStage
	Size   uint64
	Encode func(dst []byte, p *Parameters)
}

// Technique declares everything a Program needs to build a pipeline: the two stage sources,
// the vertex struct, the constant buffers and the number of texture slots.
type Technique struct {
	Name            string
	VertexSource    string
	PixelSource     string
	Attributes      []Attribute
	ConstantBuffers []ConstantBuffer
	TextureCount    int
	Sampler         bool
	AlphaBlend      bool
}

// Stride returns the byte size of one vertex.
func (t Technique) Stride() uint64 {
	var stride uint64
	for _, a := range t.Attributes {
		stride += a.Format.Size()
	}
	return stride
}

// InputLayout returns the input layout of the technique: attribute i is read from location i
// at the packed offset of the attributes before it.
func (t Technique) InputLayout() []renderer.VertexAttribute {
	layout := make([]renderer.VertexAttribute, len(t.Attributes))
	var offset uint64
	for i, a := range t.Attributes {
		layout[i] = renderer.VertexAttribute{
			Semantic: a.Semantic,
			Format:   a.Format,
			Offset:   offset,
			Location: uint32(i),
		}
		offset += a.Format.Size()
	}
	return layout
}

// LightParameters are the light values a lighting technique uploads.
type LightParameters struct {
	AmbientColor  common.Vec4
	DiffuseColor  common.Vec4
	SpecularColor common.Vec4
	SpecularPower float32
	Direction     common.Vec3
}

// Parameters are the inputs of one SetParameters call. Matrices are in row-vector convention.
type Parameters struct {
	World          common.Mat4
	View           common.Mat4
	Projection     common.Mat4
	Textures       []renderer.Handle
	Light          LightParameters
	CameraPosition common.Vec3
	// TextureTranslation is the horizontal texture coordinate offset of the Translate technique.
	TextureTranslation float32
}

var (
	attrPosition = Attribute{Semantic: "POSITION", Format: renderer.FormatFloat32x3}
	attrColor    = Attribute{Semantic: "COLOR", Format: renderer.FormatFloat32x4}
	attrTexCoord = Attribute{Semantic: "TEXCOORD", Format: renderer.FormatFloat32x2}
	attrNormal   = Attribute{Semantic: "NORMAL", Format: renderer.FormatFloat32x3}
	attrTangent  = Attribute{Semantic: "TANGENT", Format: renderer.FormatFloat32x3}
	attrBinormal = Attribute{Semantic: "BINORMAL", Format: renderer.FormatFloat32x3}
)

// MatrixBuffer holds world, view and projection for the vertex stage.
var MatrixBuffer = ConstantBuffer{
	Name:  "MatrixBuffer",
	Stage: renderer.StageVertex,
	Size:  192,
	Encode: func(dst []byte, p *Parameters) {
		common.PutMatrix(dst[0:], p.World)
		common.PutMatrix(dst[64:], p.View)
		common.PutMatrix(dst[128:], p.Projection)
	},
}

// CameraBuffer holds the camera position for specular highlights.
var CameraBuffer = ConstantBuffer{
	Name:  "CameraBuffer",
	Stage: renderer.StageVertex,
	Size:  16,
	Encode: func(dst []byte, p *Parameters) {
		common.PutVec(dst, p.CameraPosition.X(), p.CameraPosition.Y(), p.CameraPosition.Z(), 0)
	},
}

// LightBuffer holds the full Phong light for the pixel stage.
var LightBuffer = ConstantBuffer{
	Name:  "LightBuffer",
	Stage: renderer.StagePixel,
	Size:  64,
	Encode: func(dst []byte, p *Parameters) {
		l := p.Light
		common.PutVec(dst[0:], l.AmbientColor[:]...)
		common.PutVec(dst[16:], l.DiffuseColor[:]...)
		common.PutVec(dst[32:], l.Direction.X(), l.Direction.Y(), l.Direction.Z(), l.SpecularPower)
		common.PutVec(dst[48:], l.SpecularColor[:]...)
	},
}

// DiffuseLightBuffer holds the diffuse colour and direction used by bump mapping.
var DiffuseLightBuffer = ConstantBuffer{
	Name:  "LightBuffer",
	Stage: renderer.StagePixel,
	Size:  32,
	Encode: func(dst []byte, p *Parameters) {
		l := p.Light
		common.PutVec(dst[0:], l.DiffuseColor[:]...)
		common.PutVec(dst[16:], l.Direction.X(), l.Direction.Y(), l.Direction.Z(), 0)
	},
}

// TranslationBuffer holds the texture translation for the pixel stage.
var TranslationBuffer = ConstantBuffer{
	Name:  "TranslationBuffer",
	Stage: renderer.StagePixel,
	Size:  16,
	Encode: func(dst []byte, p *Parameters) {
		common.PutVec(dst, p.TextureTranslation, 0, 0, 0)
	},
}

// Built-in techniques. Sources are read from the program's shader file system.
var (
	ColorTechnique = Technique{
		Name:            "color",
		VertexSource:    "color.vs.wgsl",
		PixelSource:     "color.ps.wgsl",
		Attributes:      []Attribute{attrPosition, attrColor},
		ConstantBuffers: []ConstantBuffer{MatrixBuffer},
	}

	TextureTechnique = Technique{
		Name:            "texture",
		VertexSource:    "texture.vs.wgsl",
		PixelSource:     "texture.ps.wgsl",
		Attributes:      []Attribute{attrPosition, attrTexCoord},
		ConstantBuffers: []ConstantBuffer{MatrixBuffer},
		TextureCount:    1,
		Sampler:         true,
	}

	LightTechnique = Technique{
		Name:            "light",
		VertexSource:    "light.vs.wgsl",
		PixelSource:     "light.ps.wgsl",
		Attributes:      []Attribute{attrPosition, attrTexCoord, attrNormal},
		ConstantBuffers: []ConstantBuffer{MatrixBuffer, CameraBuffer, LightBuffer},
		TextureCount:    1,
		Sampler:         true,
	}

	SpecularTechnique = Technique{
		Name:            "specular",
		VertexSource:    "light.vs.wgsl",
		PixelSource:     "specular.ps.wgsl",
		Attributes:      []Attribute{attrPosition, attrTexCoord, attrNormal},
		ConstantBuffers: []ConstantBuffer{MatrixBuffer, CameraBuffer, LightBuffer},
		TextureCount:    1,
		Sampler:         true,
	}

	LightMapTechnique = Technique{
		Name:            "lightmap",
		VertexSource:    "texture.vs.wgsl",
		PixelSource:     "lightmap.ps.wgsl",
		Attributes:      []Attribute{attrPosition, attrTexCoord},
		ConstantBuffers: []ConstantBuffer{MatrixBuffer},
		TextureCount:    2,
		Sampler:         true,
	}

	AlphaMapTechnique = Technique{
		Name:            "alphamap",
		VertexSource:    "texture.vs.wgsl",
		PixelSource:     "alphamap.ps.wgsl",
		Attributes:      []Attribute{attrPosition, attrTexCoord},
		ConstantBuffers: []ConstantBuffer{MatrixBuffer},
		TextureCount:    3,
		Sampler:         true,
	}

	MultiTextureTechnique = Technique{
		Name:            "multitexture",
		VertexSource:    "texture.vs.wgsl",
		PixelSource:     "multitexture.ps.wgsl",
		Attributes:      []Attribute{attrPosition, attrTexCoord},
		ConstantBuffers: []ConstantBuffer{MatrixBuffer},
		TextureCount:    2,
		Sampler:         true,
	}

	BumpMapTechnique = Technique{
		Name:            "bumpmap",
		VertexSource:    "bumpmap.vs.wgsl",
		PixelSource:     "bumpmap.ps.wgsl",
		Attributes:      []Attribute{attrPosition, attrTexCoord, attrNormal, attrTangent, attrBinormal},
		ConstantBuffers: []ConstantBuffer{MatrixBuffer, DiffuseLightBuffer},
		TextureCount:    2,
		Sampler:         true,
	}

	TranslateTechnique = Technique{
		Name:            "translate",
		VertexSource:    "texture.vs.wgsl",
		PixelSource:     "translate.ps.wgsl",
		Attributes:      []Attribute{attrPosition, attrTexCoord},
		ConstantBuffers: []ConstantBuffer{MatrixBuffer, TranslationBuffer},
		TextureCount:    1,
		Sampler:         true,
	}
)

var techniquesByName = map[string]Technique{
	ColorTechnique.Name:        ColorTechnique,
	TextureTechnique.Name:      TextureTechnique,
	LightTechnique.Name:        LightTechnique,
	SpecularTechnique.Name:     SpecularTechnique,
	LightMapTechnique.Name:     LightMapTechnique,
	AlphaMapTechnique.Name:     AlphaMapTechnique,
	MultiTextureTechnique.Name: MultiTextureTechnique,
	BumpMapTechnique.Name:      BumpMapTechnique,
	TranslateTechnique.Name:    TranslateTechnique,
}

// TechniqueByName returns the built-in technique with the given name.
//
// Parameters:
//   - name: the technique name, e.g. "light"
//
// Returns:
//   - Technique: the technique
//   - bool: false if no built-in technique has that name
func TechniqueByName(name string) (Technique, bool) {
	t, ok := techniquesByName[name]
	return t, ok
}
