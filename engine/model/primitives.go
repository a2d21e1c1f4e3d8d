package model

import (
	"github.com/Carmen-Shannon/oxy-tutorial/common"
)

var (
	bottomLeft  = common.Vec3{-1, -1, 0}
	topLeft     = common.Vec3{-1, 1, 0}
	topMiddle   = common.Vec3{0, 1, 0}
	topRight    = common.Vec3{1, 1, 0}
	bottomRight = common.Vec3{1, -1, 0}
	towardsEye  = common.Vec3{0, 0, -1}
	white       = common.Vec4{1, 1, 1, 1}
)

// Triangle returns the unit triangle facing -z with clockwise winding, textured so the
// apex samples the top centre of the image.
//
// Returns:
//   - MeshData: three vertices in FormatPositionTexture
func Triangle() MeshData {
	return MeshData{
		Format: FormatPositionTexture,
		Vertices: []Vertex{
			{Position: bottomLeft, TexCoord: common.Vec2{0, 1}, Normal: towardsEye, Color: white},
			{Position: topMiddle, TexCoord: common.Vec2{0.5, 0}, Normal: towardsEye, Color: white},
			{Position: bottomRight, TexCoord: common.Vec2{1, 1}, Normal: towardsEye, Color: white},
		},
	}
}

// ColorTriangle returns the Triangle geometry with every vertex coloured.
//
// Parameters:
//   - color: the vertex colour
//
// Returns:
//   - MeshData: three vertices in FormatPositionColor
func ColorTriangle(color common.Vec4) MeshData {
	data := Triangle()
	data.Format = FormatPositionColor
	for i := range data.Vertices {
		data.Vertices[i].Color = color
	}
	return data
}

// Quad returns a 2x2 square facing -z as two clockwise triangles, textured with the full image.
//
// Returns:
//   - MeshData: six vertices in FormatPositionTexture
func Quad() MeshData {
	corner := func(p common.Vec3, u, v float32) Vertex {
		return Vertex{Position: p, TexCoord: common.Vec2{u, v}, Normal: towardsEye, Color: white}
	}
	return MeshData{
		Format: FormatPositionTexture,
		Vertices: []Vertex{
			corner(bottomLeft, 0, 1),
			corner(topLeft, 0, 0),
			corner(topRight, 1, 0),
			corner(bottomLeft, 0, 1),
			corner(topRight, 1, 0),
			corner(bottomRight, 1, 1),
		},
	}
}
