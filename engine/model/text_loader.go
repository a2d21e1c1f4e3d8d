package model

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/Carmen-Shannon/oxy-tutorial/common"
	"github.com/cockroachdb/errors"
)

const (
	// columnsBasic is position.xyz, texcoord.uv and normal.xyz.
	columnsBasic = 8

	// columnsTangent adds tangent.xyz and binormal.xyz.
	columnsTangent = 14
)

// LoadMeshText parses a text mesh:
//
//	Vertex Count: 3
//
//	Data:
//
//	-1.0 -1.0 0.0 0.0 1.0 0.0 0.0 -1.0
//	...
//
// Each vertex is 8 values (position, texcoord, normal) or 14 values (adding tangent and
// binormal). The row width is derived from the value count. The result has
// FormatPositionTextureNormal or FormatPositionTextureNormalTangent respectively.
//
// Parameters:
//   - r: the text source
//
// Returns:
//   - MeshData: the parsed vertices
//   - error: an ErrMalformedData error describing the first problem found
func LoadMeshText(r io.Reader) (MeshData, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return MeshData{}, errors.Wrap(err, "read mesh text")
	}
	text := string(raw)

	header := strings.IndexByte(text, ':')
	if header < 0 {
		return MeshData{}, common.Malformed("mesh text: missing vertex count header")
	}
	rest := text[header+1:]
	marker := strings.IndexByte(rest, ':')
	if marker < 0 {
		return MeshData{}, common.Malformed("mesh text: missing Data: marker")
	}

	countFields := strings.Fields(rest[:marker])
	if len(countFields) == 0 {
		return MeshData{}, common.Malformed("mesh text: vertex count is empty")
	}
	count, err := strconv.Atoi(countFields[0])
	if err != nil {
		return MeshData{}, common.Malformed("mesh text: vertex count %q is not an integer", countFields[0])
	}
	if count <= 0 {
		return MeshData{}, common.Malformed("mesh text: vertex count %d must be positive", count)
	}

	values := strings.Fields(rest[marker+1:])
	var columns int
	switch len(values) {
	case count * columnsBasic:
		columns = columnsBasic
	case count * columnsTangent:
		columns = columnsTangent
	default:
		return MeshData{}, common.Malformed("mesh text: %d values for %d vertices, want %d or %d",
			len(values), count, count*columnsBasic, count*columnsTangent)
	}

	floats := make([]float32, len(values))
	for i, field := range values {
		f, err := strconv.ParseFloat(field, 32)
		if err != nil {
			return MeshData{}, common.Malformed("mesh text: vertex %d value %d: %q is not a number", i/columns, i%columns, field)
		}
		floats[i] = float32(f)
	}

	data := MeshData{Format: FormatPositionTextureNormal, Vertices: make([]Vertex, count)}
	if columns == columnsTangent {
		data.Format = FormatPositionTextureNormalTangent
	}
	for i := range data.Vertices {
		row := floats[i*columns : (i+1)*columns]
		v := Vertex{
			Position: common.Vec3{row[0], row[1], row[2]},
			TexCoord: common.Vec2{row[3], row[4]},
			Normal:   common.Vec3{row[5], row[6], row[7]},
			Color:    common.Vec4{1, 1, 1, 1},
		}
		if columns == columnsTangent {
			v.Tangent = common.Vec3{row[8], row[9], row[10]}
			v.Binormal = common.Vec3{row[11], row[12], row[13]}
		}
		data.Vertices[i] = v
	}
	return data, nil
}

// LoadMeshFile reads a text mesh from path and converts it to format.
//
// Parameters:
//   - path: the mesh file
//   - format: the vertex format the mesh will be drawn with
//
// Returns:
//   - MeshData: the loaded mesh
//   - error: ErrNotFound when the file cannot be opened, ErrMalformedData when it cannot be parsed
func LoadMeshFile(path string, format VertexFormat) (MeshData, error) {
	f, err := os.Open(path)
	if err != nil {
		return MeshData{}, common.NotFound(err, path)
	}
	defer f.Close()

	data, err := LoadMeshText(f)
	if err != nil {
		return MeshData{}, errors.Wrapf(err, "load mesh %s", path)
	}
	return data.Convert(format), nil
}

// WriteMeshText writes data in the format LoadMeshText reads. Meshes in
// FormatPositionTextureNormalTangent are written with 14 values per row, all others with 8.
//
// Parameters:
//   - w: the destination
//   - data: the mesh to write
//
// Returns:
//   - error: the first write error
func WriteMeshText(w io.Writer, data MeshData) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "Vertex Count: %d\n\nData:\n\n", len(data.Vertices))
	for _, v := range data.Vertices {
		row := []float32{
			v.Position[0], v.Position[1], v.Position[2],
			v.TexCoord[0], v.TexCoord[1],
			v.Normal[0], v.Normal[1], v.Normal[2],
		}
		if data.Format == FormatPositionTextureNormalTangent {
			row = append(row, v.Tangent[:]...)
			row = append(row, v.Binormal[:]...)
		}
		for i, f := range row {
			if i > 0 {
				bw.WriteByte(' ')
			}
			bw.WriteString(strconv.FormatFloat(float64(f), 'g', -1, 32))
		}
		bw.WriteByte('\n')
	}
	return bw.Flush()
}
