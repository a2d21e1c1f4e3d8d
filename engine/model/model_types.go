package model

import (
	"github.com/Carmen-Shannon/oxy-tutorial/common"
)

// VertexFormat selects which Vertex fields are packed into a vertex buffer, and in what order.
type VertexFormat int

const (
	// FormatPositionColor packs position.xyz and color.rgba. Stride 28.
	FormatPositionColor VertexFormat = iota

	// FormatPositionTexture packs position.xyz and texcoord.uv. Stride 20.
	FormatPositionTexture

	// FormatPositionTextureNormal packs position.xyz, texcoord.uv and normal.xyz. Stride 32.
	FormatPositionTextureNormal

	// FormatPositionTextureNormalTangent packs position.xyz, texcoord.uv, normal.xyz,
	// tangent.xyz and binormal.xyz. Stride 56.
	FormatPositionTextureNormalTangent
)

var vertexFormatNames = map[VertexFormat]string{
	FormatPositionColor:                "position-color",
	FormatPositionTexture:              "position-texture",
	FormatPositionTextureNormal:        "position-texture-normal",
	FormatPositionTextureNormalTangent: "position-texture-normal-tangent",
}

func (f VertexFormat) String() string {
	if name, ok := vertexFormatNames[f]; ok {
		return name
	}
	return "unknown"
}

// Stride returns the byte size of one packed vertex.
//
// Returns:
//   - uint64: the vertex stride in bytes
func (f VertexFormat) Stride() uint64 {
	return uint64(f.floats()) * 4
}

func (f VertexFormat) floats() int {
	switch f {
	case FormatPositionColor:
		return 7
	case FormatPositionTexture:
		return 5
	case FormatPositionTextureNormal:
		return 8
	case FormatPositionTextureNormalTangent:
		return 14
	default:
		return 0
	}
}

// Vertex is the union of every attribute a mesh vertex can carry. Only the fields named by a
// VertexFormat are uploaded.
type Vertex struct {
	Position common.Vec3
	TexCoord common.Vec2
	Normal   common.Vec3
	Tangent  common.Vec3
	Binormal common.Vec3
	Color    common.Vec4
}

// put appends the fields of v selected by format to dst as float32 values.
func (v Vertex) put(dst []float32, format VertexFormat) []float32 {
	dst = append(dst, v.Position[:]...)
	switch format {
	case FormatPositionColor:
		return append(dst, v.Color[:]...)
	case FormatPositionTexture:
		return append(dst, v.TexCoord[:]...)
	case FormatPositionTextureNormal:
		dst = append(dst, v.TexCoord[:]...)
		return append(dst, v.Normal[:]...)
	case FormatPositionTextureNormalTangent:
		dst = append(dst, v.TexCoord[:]...)
		dst = append(dst, v.Normal[:]...)
		dst = append(dst, v.Tangent[:]...)
		return append(dst, v.Binormal[:]...)
	default:
		return dst
	}
}

// MeshData is CPU-side mesh geometry. Vertices are unindexed triangle lists: every three
// vertices form one triangle and the index buffer is the sequence 0..N-1.
type MeshData struct {
	Format   VertexFormat
	Vertices []Vertex
}

// VertexCount returns the number of vertices.
func (m MeshData) VertexCount() int {
	return len(m.Vertices)
}

// Indices returns the trivial index list 0..N-1.
//
// Returns:
//   - []uint32: one index per vertex, in order
func (m MeshData) Indices() []uint32 {
	indices := make([]uint32, len(m.Vertices))
	for i := range indices {
		indices[i] = uint32(i)
	}
	return indices
}

// VertexBytes packs the vertices in m.Format.
//
// Returns:
//   - []byte: VertexCount * Format.Stride() bytes
func (m MeshData) VertexBytes() []byte {
	floats := make([]float32, 0, len(m.Vertices)*m.Format.floats())
	for _, v := range m.Vertices {
		floats = v.put(floats, m.Format)
	}
	out := make([]byte, len(floats)*4)
	common.PutVec(out, floats...)
	return out
}

// IndexBytes returns Indices as uint32 values in host byte order, which is the order the GPU
// reads them in.
func (m MeshData) IndexBytes() []byte {
	return common.SliceToBytes(m.Indices())
}

// Convert returns m repacked as format. Converting a mesh without a tangent basis to
// FormatPositionTextureNormalTangent computes one with ComputeTangentsAndBinormals.
//
// Parameters:
//   - format: the target vertex format
//
// Returns:
//   - MeshData: a copy of m in the target format
func (m MeshData) Convert(format VertexFormat) MeshData {
	out := MeshData{Format: format, Vertices: append([]Vertex(nil), m.Vertices...)}
	if format == FormatPositionTextureNormalTangent && m.Format != FormatPositionTextureNormalTangent {
		ComputeTangentsAndBinormals(out.Vertices)
	}
	return out
}
