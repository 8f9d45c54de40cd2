package renderer

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Carmen-Shannon/oxy-xr/common"
	"github.com/Carmen-Shannon/oxy-xr/engine/camera"
	"github.com/Carmen-Shannon/oxy-xr/engine/node"
	"github.com/Carmen-Shannon/oxy-xr/engine/scene"
)

type fakeBackend struct {
	clear    [4]float32
	draws    map[Topology]int
	calls    []string
	beginErr error
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{draws: make(map[Topology]int)}
}

func (f *fakeBackend) ConfigureSurface(width, height int) { f.calls = append(f.calls, "configure") }
func (f *fakeBackend) SetPresentMode(mode PresentMode)    {}
func (f *fakeBackend) BeginFrame(clearColor [4]float32) error {
	if f.beginErr != nil {
		return f.beginErr
	}
	f.clear = clearColor
	f.calls = append(f.calls, "begin")
	return nil
}
func (f *fakeBackend) Draw(topology Topology, vertices []float32) {
	f.draws[topology] += len(vertices) / floatsPerVertex
}
func (f *fakeBackend) EndFrame() { f.calls = append(f.calls, "end") }
func (f *fakeBackend) Present()  { f.calls = append(f.calls, "present") }
func (f *fakeBackend) Release()  { f.calls = append(f.calls, "release") }

func newTestRenderer(b RendererBackend) *renderer {
	return &renderer{mu: &sync.Mutex{}, backend: b}
}

func newTestScene(options ...scene.SceneBuilderOption) scene.Scene {
	cam := camera.NewCamera(camera.WithController(camera.NewOrbitController(
		camera.WithRadius(4), camera.WithAzimuth(0), camera.WithElevation(0),
	)))
	return scene.NewScene("render", cam, options...)
}

func TestRenderClearsToBackgroundAndPresents(t *testing.T) {
	fb := newFakeBackend()
	r := newTestRenderer(fb)
	bg := scene.Background{Color: [4]float32{0.1, 0.2, 0.3, 1}}
	s := newTestScene(scene.WithBackground(bg))

	require.NoError(t, r.Render(s, nil))
	assert.Equal(t, bg.Color, fb.clear)
	assert.Equal(t, []string{"begin", "end", "present"}, fb.calls)
	assert.Equal(t, uint64(1), r.Frames())
}

func TestRenderSkipsInvisibleSubtrees(t *testing.T) {
	fb := newFakeBackend()
	r := newTestRenderer(fb)

	quad := node.NewPolygonShape([][2]float32{{-1, -1}, {1, -1}, {1, 1}, {-1, 1}})
	visible := node.NewNode(node.WithShape(quad))
	hiddenChild := node.NewNode(node.WithShape(quad))
	hidden := node.NewGroup("hidden", node.WithVisible(false), node.WithChildren(hiddenChild))
	line := node.NewNode(node.WithShape(node.NewLineShape(common.Vec3{}, common.Vec3{0, 0, -1})))

	s := newTestScene(scene.WithNodes(visible, hidden, line))
	s.SetHotspotsVisibility(false)

	require.NoError(t, r.Render(s, s.Camera()))
	assert.Equal(t, 6, fb.draws[TopologyTriangles])
	assert.Equal(t, 2, fb.draws[TopologyLines])
}

func TestRenderDrawsFacingHotspots(t *testing.T) {
	fb := newFakeBackend()
	r := newTestRenderer(fb)
	s := newTestScene(scene.WithHotspots(
		scene.Hotspot{Name: "front", Position: common.Vec3{0, 0, 0.5}, Normal: common.Vec3{0, 0, 1}},
		scene.Hotspot{Name: "back", Position: common.Vec3{0, 0, -0.5}, Normal: common.Vec3{0, 0, -1}},
	))
	s.UpdateHotspots()

	require.NoError(t, r.Render(s, nil))
	assert.Equal(t, 4, fb.draws[TopologyLines])
}

func TestRenderPropagatesBackendError(t *testing.T) {
	fb := newFakeBackend()
	fb.beginErr = errors.New("surface lost")
	r := newTestRenderer(fb)

	err := r.Render(newTestScene(), nil)
	assert.EqualError(t, err, "surface lost")
	assert.Equal(t, uint64(0), r.Frames())
	assert.ErrorIs(t, r.Render(nil, nil), ErrNoScene)
}

func TestShadedColorAddsEmissiveWhileHighlighted(t *testing.T) {
	m := node.NewMaterial(node.WithColor(0.5, 0.5, 0.5, 1), node.WithEmissive(1, 0, 0))
	assert.Equal(t, [4]float32{0.5, 0.5, 0.5, 1}, shadedColor(m))

	m.SetHighlighted(true)
	assert.Equal(t, [4]float32{1, 0.5, 0.5, 1}, shadedColor(m))
	assert.Equal(t, [4]float32{1, 1, 1, 1}, shadedColor(nil))
}

func TestAppendVertexAppliesMatrix(t *testing.T) {
	var m [16]float32
	common.Identity(m[:])
	m[12] = 2

	out := appendVertex(nil, m, common.Vec3{1, 2, 3}, [4]float32{0, 0, 0, 1})
	assert.Equal(t, []float32{3, 2, 3, 1, 0, 0, 0, 1}, out)
}
