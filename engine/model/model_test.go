package model

import (
	"bytes"
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Carmen-Shannon/oxy-tutorial/common"
	"github.com/Carmen-Shannon/oxy-tutorial/engine/renderer"
	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const cubeFace = `Vertex Count: 6

Data:

-1.0  1.0 -1.0 0.0 0.0  0.0  0.0 -1.0
 1.0  1.0 -1.0 1.0 0.0  0.0  0.0 -1.0
-1.0 -1.0 -1.0 0.0 1.0  0.0  0.0 -1.0
-1.0 -1.0 -1.0 0.0 1.0  0.0  0.0 -1.0
 1.0  1.0 -1.0 1.0 0.0  0.0  0.0 -1.0
 1.0 -1.0 -1.0 1.0 1.0  0.0  0.0 -1.0
`

func newTestContext(t *testing.T) (renderer.DeviceContext, renderer.HeadlessBackend) {
	t.Helper()
	backend := renderer.NewHeadlessBackend()
	ctx, err := renderer.NewDeviceContext(backend)
	require.NoError(t, err)
	t.Cleanup(ctx.Shutdown)
	return ctx, backend
}

func TestMeshTextRoundTrip(t *testing.T) {
	ctx, _ := newTestContext(t)

	for _, k := range []int{1, 3, 36} {
		src := MeshData{Format: FormatPositionTextureNormal}
		for i := 0; i < k; i++ {
			f := float32(i)
			src.Vertices = append(src.Vertices, Vertex{
				Position: common.Vec3{f, -f, f * 0.5},
				TexCoord: common.Vec2{f / 100, 1 - f/100},
				Normal:   common.Vec3{0, 0, -1},
				Color:    common.Vec4{1, 1, 1, 1},
			})
		}

		path := filepath.Join(t.TempDir(), "mesh.txt")
		var buf bytes.Buffer
		require.NoError(t, WriteMeshText(&buf, src))
		require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))

		data, err := LoadMeshFile(path, FormatPositionTextureNormal)
		require.NoError(t, err)
		assert.Equal(t, src, data)

		mesh, err := NewMesh(ctx, data)
		require.NoError(t, err)
		assert.Equal(t, k, mesh.VertexCount())
		assert.Equal(t, k, mesh.IndexCount())

		want := make([]uint32, k)
		for i := range want {
			want[i] = uint32(i)
		}
		assert.Equal(t, want, mesh.Indices())
		mesh.Release()
	}
}

func TestLoadMeshText(t *testing.T) {
	data, err := LoadMeshText(strings.NewReader(cubeFace))
	require.NoError(t, err)

	assert.Equal(t, FormatPositionTextureNormal, data.Format)
	require.Len(t, data.Vertices, 6)
	assert.Equal(t, common.Vec3{1, -1, -1}, data.Vertices[5].Position)
	assert.Equal(t, common.Vec2{1, 1}, data.Vertices[5].TexCoord)
	assert.Equal(t, common.Vec3{0, 0, -1}, data.Vertices[5].Normal)
}

func TestLoadMeshTextWithTangents(t *testing.T) {
	src := Quad().Convert(FormatPositionTextureNormalTangent)
	var buf bytes.Buffer
	require.NoError(t, WriteMeshText(&buf, src))

	data, err := LoadMeshText(&buf)
	require.NoError(t, err)
	assert.Equal(t, FormatPositionTextureNormalTangent, data.Format)
	for i, v := range data.Vertices {
		assert.Equal(t, src.Vertices[i].Tangent, v.Tangent)
		assert.Equal(t, src.Vertices[i].Binormal, v.Binormal)
	}
}

func TestLoadMeshTextMalformed(t *testing.T) {
	tests := map[string]string{
		"no header":      "3 0 0 0",
		"no data marker": "Vertex Count: 1\n0 0 0 0 0 0 0 0",
		"bad count":      "Vertex Count: three\nData:\n",
		"zero count":     "Vertex Count: 0\nData:\n",
		"short row":      "Vertex Count: 1\nData:\n0 0 0 0 0 0 0",
		"extra values":   "Vertex Count: 1\nData:\n0 0 0 0 0 0 0 0 0",
		"not a number":   "Vertex Count: 1\nData:\n0 0 0 0 x 0 0 0",
	}
	for name, text := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := LoadMeshText(strings.NewReader(text))
			require.Error(t, err)
			assert.True(t, errors.Is(err, common.ErrMalformedData))
			assert.Equal(t, common.ClassData, common.Classify(err))
		})
	}
}

func TestLoadMeshFileNotFound(t *testing.T) {
	_, err := LoadMeshFile(filepath.Join(t.TempDir(), "missing.txt"), FormatPositionTextureNormal)
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrNotFound))
	assert.False(t, errors.Is(err, common.ErrMalformedData))
}

func TestVertexFormatPacking(t *testing.T) {
	v := Vertex{
		Position: common.Vec3{1, 2, 3},
		TexCoord: common.Vec2{4, 5},
		Normal:   common.Vec3{6, 7, 8},
		Tangent:  common.Vec3{9, 10, 11},
		Binormal: common.Vec3{12, 13, 14},
		Color:    common.Vec4{15, 16, 17, 18},
	}
	tests := []struct {
		format VertexFormat
		stride uint64
		want   []float32
	}{
		{FormatPositionColor, 28, []float32{1, 2, 3, 15, 16, 17, 18}},
		{FormatPositionTexture, 20, []float32{1, 2, 3, 4, 5}},
		{FormatPositionTextureNormal, 32, []float32{1, 2, 3, 4, 5, 6, 7, 8}},
		{FormatPositionTextureNormalTangent, 56, []float32{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14}},
	}
	for _, tc := range tests {
		t.Run(tc.format.String(), func(t *testing.T) {
			assert.Equal(t, tc.stride, tc.format.Stride())
			raw := MeshData{Format: tc.format, Vertices: []Vertex{v}}.VertexBytes()
			require.Len(t, raw, int(tc.stride))
			for i, f := range tc.want {
				assert.Equal(t, f, math.Float32frombits(binary.LittleEndian.Uint32(raw[i*4:])))
			}
		})
	}
}

func TestComputeTangentsAndBinormals(t *testing.T) {
	data := Quad().Convert(FormatPositionTextureNormalTangent)

	for _, v := range data.Vertices {
		assert.InDeltaSlice(t, []float32{1, 0, 0}, v.Tangent[:], 1e-5)
		assert.InDeltaSlice(t, []float32{0, -1, 0}, v.Binormal[:], 1e-5)
		assert.InDeltaSlice(t, []float32{0, 0, -1}, v.Normal[:], 1e-5)
	}
}

func TestComputeTangentsDegenerateUV(t *testing.T) {
	data := Quad()
	for i := range data.Vertices {
		data.Vertices[i].TexCoord = common.Vec2{0.5, 0.5}
	}
	ComputeTangentsAndBinormals(data.Vertices)

	for _, v := range data.Vertices {
		assert.InDelta(t, 1, v.Tangent.Len(), 1e-5)
		assert.InDelta(t, 1, v.Binormal.Len(), 1e-5)
		assert.InDelta(t, 0, v.Tangent.Dot(v.Normal), 1e-5)
		assert.InDeltaSlice(t, []float32{0, 0, -1}, v.Normal[:], 1e-5)
	}
}

func TestLoadOBJ(t *testing.T) {
	src := `o square
v -1.0 -1.0 1.0
v 1.0 -1.0 1.0
v 1.0 1.0 1.0
v -1.0 1.0 1.0
vt 0.0 0.0
vt 1.0 0.0
vt 1.0 1.0
vt 0.0 1.0
vn 0.0 0.0 1.0
f 1/1/1 2/2/1 3/3/1 4/4/1
`
	data, err := LoadOBJ(strings.NewReader(src))
	require.NoError(t, err)
	assert.Equal(t, FormatPositionTextureNormal, data.Format)
	require.Len(t, data.Vertices, 6)

	first := data.Vertices[0]
	assert.Equal(t, common.Vec3{1, 1, -1}, first.Position)
	assert.Equal(t, common.Vec2{1, 0}, first.TexCoord)
	assert.Equal(t, common.Vec3{0, 0, -1}, first.Normal)
	assert.Equal(t, common.Vec3{-1, -1, -1}, data.Vertices[2].Position)
}

func TestPrimitives(t *testing.T) {
	tri := Triangle()
	require.Len(t, tri.Vertices, 3)
	assert.Equal(t, common.Vec3{-1, -1, 0}, tri.Vertices[0].Position)
	assert.Equal(t, common.Vec3{0, 1, 0}, tri.Vertices[1].Position)
	assert.Equal(t, common.Vec3{1, -1, 0}, tri.Vertices[2].Position)
	assert.Equal(t, common.Vec2{0.5, 0}, tri.Vertices[1].TexCoord)

	green := common.Vec4{0, 1, 0, 1}
	colored := ColorTriangle(green)
	assert.Equal(t, FormatPositionColor, colored.Format)
	for _, v := range colored.Vertices {
		assert.Equal(t, green, v.Color)
	}

	assert.Len(t, Quad().Vertices, 6)
}

func TestMeshBindAndRelease(t *testing.T) {
	ctx, backend := newTestContext(t)

	mesh, err := NewMesh(ctx, Triangle(), WithLabel("triangle"))
	require.NoError(t, err)
	assert.Equal(t, "triangle", mesh.Label())
	assert.Equal(t, 2, backend.LiveObjects()[renderer.KindBuffer])

	require.NoError(t, mesh.Bind())
	vb, stride, ib := ctx.InputBuffers()
	assert.False(t, vb.IsNull())
	assert.False(t, ib.IsNull())
	assert.Equal(t, uint64(20), stride)

	_, label, ok := backend.Object(vb)
	require.True(t, ok)
	assert.Equal(t, "triangle Vertex Buffer", label)

	mesh.Release()
	mesh.Release()
	assert.Zero(t, backend.LiveObjects()[renderer.KindBuffer])
	vb, _, ib = ctx.InputBuffers()
	assert.True(t, vb.IsNull())
	assert.True(t, ib.IsNull())

	err = mesh.Bind()
	require.Error(t, err)
	assert.Equal(t, common.ClassFrameDropped, common.Classify(err))
}

func TestNewMeshFailures(t *testing.T) {
	ctx, backend := newTestContext(t)

	_, err := NewMesh(ctx, MeshData{Format: FormatPositionTexture})
	require.Error(t, err)
	assert.Equal(t, common.ClassFatalStartup, common.Classify(err))

	backend.FailOn(renderer.KindBuffer)
	_, err = NewMesh(ctx, Triangle())
	require.Error(t, err)
	assert.Equal(t, common.ClassFatalStartup, common.Classify(err))
	assert.Zero(t, backend.LiveObjects()[renderer.KindBuffer])
}
