package model

import (
	"github.com/Carmen-Shannon/oxy-tutorial/common"
	"github.com/chewxy/math32"
)

// degenerateUV is the smallest UV-space triangle area treated as non-degenerate.
const degenerateUV = 1e-8

// ComputeTangentsAndBinormals derives a texture-space basis for every triangle in vertices
// from the UV gradient of its three corners and writes it to all three. The basis is per
// face: vertices shared by two triangles are not averaged. The normal of each corner is
// replaced by tangent × binormal. A triangle whose UVs are collinear keeps its normal and
// gets an arbitrary tangent perpendicular to it. A trailing partial triangle is left as is.
//
// Parameters:
//   - vertices: an unindexed triangle list, updated in place
func ComputeTangentsAndBinormals(vertices []Vertex) {
	for i := 0; i+2 < len(vertices); i += 3 {
		tri := vertices[i : i+3]
		tangent, binormal, normal := faceBasis(tri[0], tri[1], tri[2])
		for j := range tri {
			tri[j].Tangent = tangent
			tri[j].Binormal = binormal
			tri[j].Normal = normal
		}
	}
}

func faceBasis(v1, v2, v3 Vertex) (tangent, binormal, normal common.Vec3) {
	edge1 := v2.Position.Sub(v1.Position)
	edge2 := v3.Position.Sub(v1.Position)

	tu1, tv1 := v2.TexCoord[0]-v1.TexCoord[0], v2.TexCoord[1]-v1.TexCoord[1]
	tu2, tv2 := v3.TexCoord[0]-v1.TexCoord[0], v3.TexCoord[1]-v1.TexCoord[1]

	det := tu1*tv2 - tu2*tv1
	if math32.Abs(det) < degenerateUV {
		return fallbackBasis(v1.Normal, edge1, edge2)
	}
	inv := 1 / det

	tangent = edge1.Mul(tv2).Sub(edge2.Mul(tv1)).Mul(inv)
	binormal = edge2.Mul(tu1).Sub(edge1.Mul(tu2)).Mul(inv)
	tangent = normalizeOr(tangent, common.Vec3{1, 0, 0})
	binormal = normalizeOr(binormal, common.Vec3{0, 1, 0})
	normal = normalizeOr(tangent.Cross(binormal), v1.Normal)
	return tangent, binormal, normal
}

func fallbackBasis(n, edge1, edge2 common.Vec3) (tangent, binormal, normal common.Vec3) {
	normal = normalizeOr(n, normalizeOr(edge1.Cross(edge2), common.Vec3{0, 0, -1}))

	axis := common.Vec3{1, 0, 0}
	if math32.Abs(normal[0]) > 0.9 {
		axis = common.Vec3{0, 1, 0}
	}
	tangent = axis.Cross(normal).Normalize()
	binormal = normal.Cross(tangent)
	return tangent, binormal, normal
}

func normalizeOr(v, fallback common.Vec3) common.Vec3 {
	if v.Len() < degenerateUV {
		return fallback
	}
	return v.Normalize()
}
