package loader

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Carmen-Shannon/oxy-xr/common"
	"github.com/Carmen-Shannon/oxy-xr/engine/node"
)

// triangleBuffer holds three VEC3 positions followed by three uint16 indices, padded to 44 bytes.
func triangleBuffer() []byte {
	var buf bytes.Buffer
	for _, f := range []float32{0, 0, 0, 1, 0, 0, 0, 1, 0} {
		_ = binary.Write(&buf, binary.LittleEndian, math.Float32bits(f))
	}
	for _, i := range []uint16{0, 1, 2, 0} {
		_ = binary.Write(&buf, binary.LittleEndian, i)
	}
	return buf.Bytes()
}

// triangleDocument returns a document with a translated parent and a rotated child holding
// one red triangle. uri is the buffer URI; empty for GLB.
func triangleDocument(uri string) map[string]any {
	buffer := map[string]any{"byteLength": 44}
	if uri != "" {
		buffer["uri"] = uri
	}
	half := math.Sqrt2 / 2
	return map[string]any{
		"asset":  map[string]any{"version": "2.0"},
		"scene":  0,
		"scenes": []any{map[string]any{"nodes": []int{0}}},
		"nodes": []any{
			map[string]any{"name": "Body", "translation": []float64{1, 2, 3}, "children": []int{1}},
			map[string]any{"name": "Wing", "mesh": 0, "rotation": []float64{0, half, 0, half}},
		},
		"meshes": []any{map[string]any{"name": "Tri", "primitives": []any{
			map[string]any{"attributes": map[string]int{"POSITION": 0}, "indices": 1, "material": 0},
		}}},
		"materials": []any{map[string]any{"pbrMetallicRoughness": map[string]any{"baseColorFactor": []float64{1, 0, 0, 1}}}},
		"accessors": []any{
			map[string]any{"bufferView": 0, "componentType": gltfComponentTypeFloat, "count": 3, "type": "VEC3"},
			map[string]any{"bufferView": 1, "componentType": gltfComponentTypeUnsignedShort, "count": 3, "type": "SCALAR"},
		},
		"bufferViews": []any{
			map[string]any{"buffer": 0, "byteOffset": 0, "byteLength": 36},
			map[string]any{"buffer": 0, "byteOffset": 36, "byteLength": 6},
		},
		"buffers": []any{buffer},
	}
}

func encodeGLTF(t *testing.T, doc map[string]any) []byte {
	t.Helper()
	data, err := json.Marshal(doc)
	require.NoError(t, err)
	return data
}

func encodeGLB(t *testing.T, doc map[string]any, bin []byte) []byte {
	t.Helper()
	jsonData := encodeGLTF(t, doc)
	for len(jsonData)%4 != 0 {
		jsonData = append(jsonData, ' ')
	}
	for len(bin)%4 != 0 {
		bin = append(bin, 0)
	}

	var out bytes.Buffer
	total := 12 + 8 + len(jsonData) + 8 + len(bin)
	require.NoError(t, binary.Write(&out, binary.LittleEndian, gltfGLBHeader{Magic: gltfGLBMagic, Version: gltfGLBVersion, Length: uint32(total)}))
	require.NoError(t, binary.Write(&out, binary.LittleEndian, gltfGLBChunkHeader{ChunkLength: uint32(len(jsonData)), ChunkType: gltfGLBChunkJSON}))
	out.Write(jsonData)
	require.NoError(t, binary.Write(&out, binary.LittleEndian, gltfGLBChunkHeader{ChunkLength: uint32(len(bin)), ChunkType: gltfGLBChunkBIN}))
	out.Write(bin)
	return out.Bytes()
}

func dataURI(b []byte) string {
	return "data:application/octet-stream;base64," + base64.StdEncoding.EncodeToString(b)
}

func assertTriangleModel(t *testing.T, root node.Node) {
	t.Helper()
	body := root.GetObjectByName("Body")
	require.NotNil(t, body)
	world := body.WorldMatrix()
	assert.Equal(t, common.Vec3{1, 2, 3}, common.MatrixPosition(world[:]))

	wing := root.GetObjectByName("Wing")
	require.NotNil(t, wing)
	wingWorld := wing.WorldMatrix()
	dir := common.TransformDirection(wingWorld[:], common.Vec3{1, 0, 0})
	assert.InDelta(t, 0, dir[0], 1e-5)
	assert.InDelta(t, 0, dir[1], 1e-5)
	assert.InDelta(t, -1, dir[2], 1e-5)

	tri := root.GetObjectByName("Tri")
	require.NotNil(t, tri)
	require.NotNil(t, tri.Shape())
	require.Len(t, tri.Shape().Triangles(), 1)
	assert.Equal(t, [3]common.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}}, tri.Shape().Triangles()[0])
	assert.Equal(t, [4]float32{1, 0, 0, 1}, tri.Material().Color())
}

func TestLoadGLTFWithDataURI(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tri.gltf")
	require.NoError(t, os.WriteFile(path, encodeGLTF(t, triangleDocument(dataURI(triangleBuffer()))), 0o600))

	l := NewLoader()
	root, err := l.Load(context.Background(), path)
	require.NoError(t, err)
	assertTriangleModel(t, root)

	again, err := l.Load(context.Background(), path)
	require.NoError(t, err)
	assert.Same(t, root, again)
	assert.Equal(t, root, l.Get(path))
}

func TestLoadGLTFWithExternalBuffer(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tri.bin"), triangleBuffer(), 0o600))
	path := filepath.Join(dir, "tri.gltf")
	require.NoError(t, os.WriteFile(path, encodeGLTF(t, triangleDocument("tri.bin")), 0o600))

	root, err := NewLoader().Load(context.Background(), path)
	require.NoError(t, err)
	assertTriangleModel(t, root)
}

func TestLoadGLB(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tri.glb")
	require.NoError(t, os.WriteFile(path, encodeGLB(t, triangleDocument(""), triangleBuffer()), 0o600))

	root, err := NewLoader().Load(context.Background(), path)
	require.NoError(t, err)
	assertTriangleModel(t, root)
}

func TestLoadReaderCachesByName(t *testing.T) {
	l := NewLoader()
	root, err := l.LoadReader("stream", bytes.NewReader(encodeGLB(t, triangleDocument(""), triangleBuffer())), true)
	require.NoError(t, err)
	assertTriangleModel(t, root)

	// A cached name never reads the stream.
	again, err := l.LoadReader("stream", strings.NewReader("not a model"), false)
	require.NoError(t, err)
	assert.Same(t, root, again)
	assert.Len(t, l.Models(), 1)
}

func TestLoadBuiltinPrimitives(t *testing.T) {
	l := NewLoader()

	cube, err := l.Load(context.Background(), BuiltinPrefix+PrimitiveCube)
	require.NoError(t, err)
	mesh := cube.GetObjectByName(PrimitiveCube)
	require.NotNil(t, mesh)
	assert.Len(t, mesh.Shape().Triangles(), 12)

	pyramid, err := l.Load(context.Background(), BuiltinPrefix+PrimitivePyramid)
	require.NoError(t, err)
	assert.Len(t, pyramid.GetObjectByName(PrimitivePyramid).Shape().Triangles(), 6)

	_, err = l.Load(context.Background(), BuiltinPrefix+"teapot")
	assert.ErrorIs(t, err, errUnknownPrimitive)
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()

	t.Run("unsupported format", func(t *testing.T) {
		_, err := NewLoader().Load(context.Background(), filepath.Join(dir, "model.obj"))
		assert.ErrorContains(t, err, "unsupported model format")
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := NewLoader().Load(context.Background(), filepath.Join(dir, "missing.gltf"))
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("wrong version", func(t *testing.T) {
		doc := triangleDocument(dataURI(triangleBuffer()))
		doc["asset"] = map[string]any{"version": "1.0"}
		_, err := NewLoader().LoadReader("v1", bytes.NewReader(encodeGLTF(t, doc)), false)
		assert.ErrorIs(t, err, errInvalidGLTFVersion)
	})

	t.Run("no geometry", func(t *testing.T) {
		doc := map[string]any{
			"asset": map[string]any{"version": "2.0"},
			"nodes": []any{map[string]any{"name": "Empty"}},
		}
		_, err := NewLoader().LoadReader("empty", bytes.NewReader(encodeGLTF(t, doc)), false)
		assert.ErrorIs(t, err, errNoGeometry)
	})

	t.Run("bad magic", func(t *testing.T) {
		_, err := NewLoader().LoadReader("magic", bytes.NewReader(make([]byte, 20)), true)
		assert.ErrorIs(t, err, errInvalidGLBMagic)
	})

	t.Run("short buffer", func(t *testing.T) {
		_, err := NewLoader().LoadReader("short", bytes.NewReader(encodeGLTF(t, triangleDocument(dataURI(triangleBuffer()[:20])))), false)
		assert.ErrorIs(t, err, errBufferSizeMismatch)
	})

	t.Run("cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := NewLoader().Load(ctx, BuiltinPrefix+PrimitiveCube)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestWithModelPrepopulatesCache(t *testing.T) {
	model := node.NewGroup("preloaded")
	l := NewLoader(WithModel("custom", model), WithModel("nil", nil))

	got, err := l.Load(context.Background(), "custom")
	require.NoError(t, err)
	assert.Same(t, model, got)
	assert.Nil(t, l.Get("nil"))
}

func TestSceneRootsWithoutScenes(t *testing.T) {
	doc := &gltfDocument{Nodes: []gltfNode{{Children: []int{2}}, {}, {}}}
	assert.Equal(t, []int{0, 1}, sceneRoots(doc))
}

func TestComposeTRSIdentity(t *testing.T) {
	var m, id [16]float32
	common.ComposeTRS(m[:], [3]float32{}, [4]float32{0, 0, 0, 1}, [3]float32{1, 1, 1})
	common.Identity(id[:])
	assert.Equal(t, id, m)
}
