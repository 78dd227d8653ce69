package loader

import (
	"testing"

	"github.com/gekko3d/voxstream/chunkrt/rt/core"
	"github.com/gekko3d/voxstream/chunkrt/rt/mesher"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLoader(t *testing.T, gen func(core.ChunkCoord) *core.VoxelData) (*ThreadedLoader, *fakeUploader) {
	t.Helper()
	up := &fakeUploader{}
	l := NewThreaded(Options{Workers: 2, Generate: gen, Uploader: up})
	t.Cleanup(l.Close)
	return l, up
}

// resident fakes a finished generation for c.
func resident(l *ThreadedLoader, c core.ChunkCoord) uuid.UUID {
	epoch := uuid.New()
	l.voxels[c] = floorChunk(c)
	l.epochs[c] = epoch
	return epoch
}

func cubeMesh() mesher.CpuMesh {
	v := core.NewVoxelData(core.ChunkCoord{}, func(x, y, z int) core.BlockType {
		if x == 0 && y == 0 && z == 0 {
			return core.Solid
		}
		return core.Air
	})
	return mesher.Mesh(v, mesher.Neighbors{})
}

func TestThreaded_LoadsRegionToFullPriority(t *testing.T) {
	l, _ := newTestLoader(t, floorChunk)

	for x := int32(-1); x <= 1; x++ {
		for z := int32(-1); z <= 1; z++ {
			l.QueueLoad(core.ChunkCoord{X: x, Z: z})
		}
	}
	assert.Equal(t, 9, l.Stats().Pending)

	center := core.ChunkCoord{}
	processUntil(t, l, func() bool {
		p, ok := l.Priority(center)
		return l.Stats().Voxels == 9 && len(l.Meshes()) == 9 && ok && p == 4
	})

	assert.Equal(t, 0, l.Stats().Pending)
	assert.Equal(t, 0, l.Stats().InFlight)

	corner, ok := l.Priority(core.ChunkCoord{X: 1, Z: 1})
	require.True(t, ok)
	assert.LessOrEqual(t, corner, 2)
}

func TestThreaded_DispatchesInBatches(t *testing.T) {
	block := make(chan struct{})
	l, _ := newTestLoader(t, func(c core.ChunkCoord) *core.VoxelData {
		<-block
		return floorChunk(c)
	})
	defer close(block)

	for i := int32(0); i < 10; i++ {
		l.QueueLoad(core.ChunkCoord{X: i})
	}
	l.Process()
	assert.Equal(t, DefaultBatchSize, l.Stats().InFlight)
	assert.Equal(t, 10-DefaultBatchSize, l.Stats().Pending)
}

func TestThreaded_QueueLoadIsIdempotent(t *testing.T) {
	l, _ := newTestLoader(t, floorChunk)
	c := core.ChunkCoord{X: 3, Z: 3}

	l.QueueLoad(c)
	l.QueueLoad(c)
	assert.Equal(t, 1, l.Stats().Pending)

	processUntil(t, l, func() bool { return l.Resident(c) })
	l.QueueLoad(c)
	assert.Equal(t, 0, l.Stats().Pending)
}

func TestThreaded_PriorityNeverDecreases(t *testing.T) {
	l, up := newTestLoader(t, floorChunk)
	c := core.ChunkCoord{X: 5, Z: 5}
	epoch := resident(l, c)

	accepted := []bool{}
	for _, p := range []int{2, 4, 1, 3} {
		accepted = append(accepted, l.acceptMesh(meshResult{coord: c, epoch: epoch, mesh: cubeMesh(), priority: p}))
	}
	assert.Equal(t, []bool{true, true, false, false}, accepted)

	p, ok := l.Priority(c)
	require.True(t, ok)
	assert.Equal(t, 4, p)

	meshes := l.Meshes()
	require.Len(t, meshes, 1)
	// only priorities 2 and 4 were uploaded; the second upload is stored
	require.Equal(t, 2, up.count())
	assert.Equal(t, 2, meshes[0].(*fakeMesh).id)
	assert.True(t, up.uploads[0].released, "replaced mesh must be released")
	assert.Equal(t, int64(2), l.Stats().Superseded)
}

func TestThreaded_EqualPriorityReplaces(t *testing.T) {
	l, up := newTestLoader(t, floorChunk)
	c := core.ChunkCoord{X: 1}
	epoch := resident(l, c)

	require.True(t, l.acceptMesh(meshResult{coord: c, epoch: epoch, mesh: cubeMesh(), priority: 3}))
	require.True(t, l.acceptMesh(meshResult{coord: c, epoch: epoch, mesh: cubeMesh(), priority: 3}))
	assert.Equal(t, 2, l.Meshes()[0].(*fakeMesh).id)
	assert.Equal(t, 2, up.count())
}

func TestThreaded_ResultForUnloadedChunkIsDropped(t *testing.T) {
	l, up := newTestLoader(t, floorChunk)
	c := core.ChunkCoord{X: -2, Z: 7}
	epoch := resident(l, c)

	l.QueueUnload(c)
	assert.False(t, l.acceptMesh(meshResult{coord: c, epoch: epoch, mesh: cubeMesh(), priority: 4}))
	assert.Empty(t, l.Meshes())
	assert.Equal(t, 0, up.count())

	// reloaded under a new epoch: the old result still does not apply
	resident(l, c)
	assert.False(t, l.acceptMesh(meshResult{coord: c, epoch: epoch, mesh: cubeMesh(), priority: 4}))
	assert.Empty(t, l.Meshes())
	assert.Equal(t, int64(2), l.Stats().Stale)
}

func TestThreaded_UnloadDuringGeneration(t *testing.T) {
	block := make(chan struct{})
	l, _ := newTestLoader(t, func(c core.ChunkCoord) *core.VoxelData {
		<-block
		return floorChunk(c)
	})
	c := core.ChunkCoord{X: 9, Z: 9}

	l.QueueLoad(c)
	l.Process()
	require.Equal(t, 1, l.Stats().InFlight)

	l.QueueUnload(c)
	close(block)

	processUntil(t, l, func() bool { return l.Stats().Stale == 1 })
	assert.False(t, l.Resident(c))
	assert.Empty(t, l.Meshes())
	assert.Equal(t, 0, l.Stats().Dirty)
}

func TestThreaded_UnloadReleasesMesh(t *testing.T) {
	l, _ := newTestLoader(t, floorChunk)
	c := core.ChunkCoord{}
	l.QueueLoad(c)
	processUntil(t, l, func() bool { return len(l.Meshes()) == 1 })

	m := l.Meshes()[0].(*fakeMesh)
	l.QueueUnload(c)
	l.QueueUnload(c)

	assert.True(t, m.released)
	assert.False(t, l.Resident(c))
	_, ok := l.Priority(c)
	assert.False(t, ok)
	assert.Empty(t, l.Meshes())
}

func TestThreaded_EmptyChunkIsNeverUploaded(t *testing.T) {
	l, up := newTestLoader(t, airChunk)
	c := core.ChunkCoord{X: 4}
	l.QueueLoad(c)

	processUntil(t, l, func() bool {
		_, ok := l.Priority(c)
		return ok
	})
	assert.True(t, l.Resident(c))
	assert.Empty(t, l.Meshes())
	assert.Equal(t, 0, up.count())
}

func TestThreaded_StallsAfterClose(t *testing.T) {
	l, _ := newTestLoader(t, floorChunk)
	l.Close()

	c := core.ChunkCoord{X: 1, Z: 1}
	l.QueueLoad(c)
	assert.NotPanics(t, func() {
		l.Process()
		l.Process()
	})
	assert.Equal(t, 1, l.Stats().Pending)
	assert.Equal(t, 0, l.Stats().InFlight)
}
