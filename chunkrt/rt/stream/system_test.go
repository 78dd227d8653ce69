package stream

import (
	"testing"
	"time"

	"github.com/gekko3d/voxstream/chunkrt/rt/core"
	"github.com/gekko3d/voxstream/chunkrt/rt/loader"
	"github.com/gekko3d/voxstream/chunkrt/rt/mesher"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingLoader struct {
	loads     []core.ChunkCoord
	unloads   []core.ChunkCoord
	processed int
	meshes    []loader.GpuMesh
	closed    bool
}

func (r *recordingLoader) QueueLoad(c core.ChunkCoord)   { r.loads = append(r.loads, c) }
func (r *recordingLoader) QueueUnload(c core.ChunkCoord) { r.unloads = append(r.unloads, c) }
func (r *recordingLoader) Process()                      { r.processed++ }
func (r *recordingLoader) Meshes() []loader.GpuMesh      { return r.meshes }
func (r *recordingLoader) Stats() loader.Stats           { return loader.Stats{} }
func (r *recordingLoader) Close()                        { r.closed = true }

func (r *recordingLoader) reset() {
	r.loads, r.unloads = nil, nil
}

type mesh struct{ count uint32 }

func (m mesh) IndexCount() uint32 { return m.count }
func (m mesh) Release()           {}

type recordingSink struct {
	calls []string
	draws []uint32
}

func (s *recordingSink) SetPipeline()                   { s.calls = append(s.calls, "pipeline") }
func (s *recordingSink) SetVertexBuffer(loader.GpuMesh) { s.calls = append(s.calls, "vertex") }
func (s *recordingSink) SetIndexBuffer(loader.GpuMesh)  { s.calls = append(s.calls, "index") }

func (s *recordingSink) DrawIndexed(n uint32) {
	s.calls = append(s.calls, "draw")
	s.draws = append(s.draws, n)
}

func TestRegion(t *testing.T) {
	r := Region(core.ChunkCoord{}, 2)
	require.Len(t, r, 16)
	assert.Contains(t, r, core.ChunkCoord{X: -2, Z: -2})
	assert.Contains(t, r, core.ChunkCoord{X: 1, Z: 1})
	assert.NotContains(t, r, core.ChunkCoord{X: 2, Z: 0})
	assert.Empty(t, Region(core.ChunkCoord{}, 0))
}

func TestDiff_MoveOneChunkEast(t *testing.T) {
	unload, load := Diff(core.ChunkCoord{X: 0, Z: 0}, core.ChunkCoord{X: 1, Z: 0}, 2)

	assert.Equal(t, []core.ChunkCoord{{X: -2, Z: -2}, {X: -2, Z: -1}, {X: -2, Z: 0}, {X: -2, Z: 1}}, unload)
	assert.ElementsMatch(t, []core.ChunkCoord{{X: 2, Z: -2}, {X: 2, Z: -1}, {X: 2, Z: 0}, {X: 2, Z: 1}}, load)

	for _, u := range unload {
		assert.NotContains(t, load, u)
	}
}

func TestDiff_NoMovement(t *testing.T) {
	unload, load := Diff(core.ChunkCoord{X: 3, Z: 3}, core.ChunkCoord{X: 3, Z: 3}, 4)
	assert.Empty(t, unload)
	assert.Empty(t, load)
}

func TestDiff_JumpFarAway(t *testing.T) {
	unload, load := Diff(core.ChunkCoord{}, core.ChunkCoord{X: 100}, 2)
	assert.Len(t, unload, 16)
	assert.Len(t, load, 16)
	// nearest to the new center comes first
	assert.Equal(t, core.ChunkCoord{X: 100}, load[0])
}

func TestSystem_StartAndMove(t *testing.T) {
	l := &recordingLoader{}
	s := New(l, 2, nil)

	assert.True(t, s.UpdatePosition(8, 8))
	assert.Len(t, l.loads, 16)
	assert.Equal(t, core.ChunkCoord{}, l.loads[0])
	l.reset()

	// same chunk: nothing issued
	assert.False(t, s.UpdatePosition(15, 1))
	assert.Empty(t, l.loads)
	assert.Empty(t, l.unloads)

	assert.True(t, s.UpdatePosition(17, 3))
	assert.Equal(t, core.ChunkCoord{X: 1}, s.Center())
	assert.ElementsMatch(t, []core.ChunkCoord{{X: -2, Z: -2}, {X: -2, Z: -1}, {X: -2, Z: 0}, {X: -2, Z: 1}}, l.unloads)
	assert.ElementsMatch(t, []core.ChunkCoord{{X: 2, Z: -2}, {X: 2, Z: -1}, {X: 2, Z: 0}, {X: 2, Z: 1}}, l.loads)
}

func TestSystem_SetRadius(t *testing.T) {
	l := &recordingLoader{}
	s := New(l, 1, nil)
	s.Start(core.ChunkCoord{})
	require.Len(t, l.loads, 4)
	l.reset()

	s.SetRadius(2)
	assert.Len(t, l.loads, 12)
	assert.Empty(t, l.unloads)
	l.reset()

	s.SetRadius(1)
	assert.Len(t, l.unloads, 12)
	assert.Empty(t, l.loads)
	assert.Equal(t, int32(1), s.Radius())
}

func TestSystem_FrameAndDraw(t *testing.T) {
	l := &recordingLoader{meshes: []loader.GpuMesh{mesh{36}, mesh{0}, nil, mesh{12}}}
	s := New(l, 2, nil)
	s.Start(core.ChunkCoord{})

	s.Frame()
	assert.Equal(t, 1, l.processed)

	sink := &recordingSink{}
	assert.Equal(t, 2, s.Draw(sink))
	assert.Equal(t, []string{"pipeline", "vertex", "index", "draw", "vertex", "index", "draw"}, sink.calls)
	assert.Equal(t, []uint32{36, 12}, sink.draws)

	s.Close()
	assert.True(t, l.closed)
}

// The coordinator driving a real threaded loader over a small window.
func TestSystem_StreamsWithThreadedLoader(t *testing.T) {
	l := loader.NewThreaded(loader.Options{Workers: 2, Uploader: countingUploader{}})
	s := New(l, 1, nil)
	defer s.Close()

	s.UpdatePosition(0, 0)
	deadline := time.Now().Add(5 * time.Second)
	for len(s.Meshes()) < 4 && time.Now().Before(deadline) {
		s.Frame()
		time.Sleep(time.Millisecond)
	}
	require.Len(t, s.Meshes(), 4)

	s.UpdatePosition(40, 0)
	s.Frame()
	assert.Equal(t, core.ChunkCoord{X: 2}, s.Center())
	for _, c := range []core.ChunkCoord{{X: -1, Z: -1}, {X: -1, Z: 0}, {X: 0, Z: -1}, {X: 0, Z: 0}} {
		assert.False(t, l.Resident(c), "chunk %v should have been unloaded", c)
	}
}

type countingUploader struct{}

func (countingUploader) Upload(label string, m *mesher.CpuMesh) (loader.GpuMesh, error) {
	return mesh{uint32(len(m.Indices))}, nil
}

type limitedLoader struct {
	recordingLoader
	capacity int
}

func (l *limitedLoader) Capacity() int { return l.capacity }

func TestSystem_CapacityLimitedLoadsFarthestFirst(t *testing.T) {
	l := &limitedLoader{capacity: 100}
	s := New(l, 2, nil)
	s.Start(core.ChunkCoord{})

	require.Len(t, l.loads, 16)
	assert.Equal(t, core.ChunkCoord{}, l.loads[15])
	assert.Equal(t, core.ChunkCoord{X: -2, Z: -2}, l.loads[0])

	s.SetRadius(9)
	assert.Equal(t, int32(5), s.Radius())
}

func TestSystem_BoundedKeepsViewerChunk(t *testing.T) {
	b, err := loader.NewBounded(loader.BoundedOptions{Capacity: 4, Uploader: countingUploader{}})
	require.NoError(t, err)
	s := New(b, 2, nil)
	defer s.Close()

	assert.Equal(t, int32(1), s.Radius())
	s.Start(core.ChunkCoord{})
	assert.True(t, b.Contains(core.ChunkCoord{}))
	assert.Equal(t, 4, b.Stats().Voxels)
	assert.Zero(t, b.Stats().Evictions)
}

func TestSystem_BoundedBelowWindowKeepsViewerChunk(t *testing.T) {
	b, err := loader.NewBounded(loader.BoundedOptions{Capacity: 3, Uploader: countingUploader{}})
	require.NoError(t, err)
	s := New(b, 1, nil)
	defer s.Close()

	s.Start(core.ChunkCoord{X: 5, Z: 5})
	keys := b.Keys()
	require.Len(t, keys, 3)
	assert.Equal(t, core.ChunkCoord{X: 5, Z: 5}, keys[2])
}
