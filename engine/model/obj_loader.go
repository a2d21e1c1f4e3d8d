package model

import (
	"io"
	"os"
	"strings"

	"github.com/Carmen-Shannon/oxy-tutorial/common"
	"github.com/cockroachdb/errors"
	"github.com/g3n/engine/loader/obj"
)

// LoadOBJ reads a Wavefront OBJ mesh and converts it from the right-handed OBJ convention to
// the left-handed one the renderer uses: z of every position and normal is negated, v is
// flipped and triangle winding is reversed. Polygons are fan triangulated and the result is
// unindexed, in FormatPositionTextureNormal. Material libraries are ignored.
//
// Parameters:
//   - r: the OBJ source
//
// Returns:
//   - MeshData: the triangle list
//   - error: an ErrMalformedData error when the source cannot be decoded or references missing data
func LoadOBJ(r io.Reader) (MeshData, error) {
	decoder, err := obj.DecodeReader(r, strings.NewReader(""))
	if err != nil {
		return MeshData{}, errors.Mark(errors.Wrap(err, "decode obj"), common.ErrMalformedData)
	}

	data := MeshData{Format: FormatPositionTextureNormal}
	for _, object := range decoder.Objects {
		for _, face := range object.Faces {
			for i := 2; i < len(face.Vertices); i++ {
				for _, corner := range [3]int{i, i - 1, 0} {
					v, err := objVertex(decoder, face, corner)
					if err != nil {
						return MeshData{}, errors.Wrapf(err, "object %q", object.Name)
					}
					data.Vertices = append(data.Vertices, v)
				}
			}
		}
	}
	if len(data.Vertices) == 0 {
		return MeshData{}, common.Malformed("obj: no triangles")
	}
	return data, nil
}

// LoadOBJFile reads an OBJ mesh from path and converts it to format.
//
// Parameters:
//   - path: the .obj file
//   - format: the vertex format the mesh will be drawn with
//
// Returns:
//   - MeshData: the loaded mesh
//   - error: ErrNotFound when the file cannot be opened, ErrMalformedData when it cannot be parsed
func LoadOBJFile(path string, format VertexFormat) (MeshData, error) {
	f, err := os.Open(path)
	if err != nil {
		return MeshData{}, common.NotFound(err, path)
	}
	defer f.Close()

	data, err := LoadOBJ(f)
	if err != nil {
		return MeshData{}, errors.Wrapf(err, "load mesh %s", path)
	}
	return data.Convert(format), nil
}

func objVertex(decoder *obj.Decoder, face obj.Face, corner int) (Vertex, error) {
	v := Vertex{Color: common.Vec4{1, 1, 1, 1}}

	p := face.Vertices[corner]
	if p < 0 || p*3+2 >= len(decoder.Vertices) {
		return v, common.Malformed("obj: position index %d out of range", p)
	}
	v.Position = common.Vec3{decoder.Vertices[p*3], decoder.Vertices[p*3+1], -decoder.Vertices[p*3+2]}

	if corner < len(face.Uvs) {
		if t := face.Uvs[corner]; t >= 0 && t*2+1 < len(decoder.Uvs) {
			v.TexCoord = common.Vec2{decoder.Uvs[t*2], 1 - decoder.Uvs[t*2+1]}
		}
	}
	if corner < len(face.Normals) {
		if n := face.Normals[corner]; n >= 0 && n*3+2 < len(decoder.Normals) {
			v.Normal = common.Vec3{decoder.Normals[n*3], decoder.Normals[n*3+1], -decoder.Normals[n*3+2]}
		}
	}
	return v, nil
}
