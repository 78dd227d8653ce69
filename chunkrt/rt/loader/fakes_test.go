package loader

import (
	"sync"
	"testing"
	"time"

	"github.com/gekko3d/voxstream/chunkrt/rt/core"
	"github.com/gekko3d/voxstream/chunkrt/rt/mesher"
)

type fakeMesh struct {
	id         int
	label      string
	indexCount uint32
	released   bool
}

func (m *fakeMesh) IndexCount() uint32 { return m.indexCount }
func (m *fakeMesh) Release()           { m.released = true }

type fakeUploader struct {
	mu      sync.Mutex
	uploads []*fakeMesh
	err     error
}

func (u *fakeUploader) Upload(label string, m *mesher.CpuMesh) (GpuMesh, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.err != nil {
		return nil, u.err
	}
	fm := &fakeMesh{id: len(u.uploads) + 1, label: label, indexCount: uint32(len(m.Indices))}
	u.uploads = append(u.uploads, fm)
	return fm, nil
}

func (u *fakeUploader) count() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return len(u.uploads)
}

func airChunk(c core.ChunkCoord) *core.VoxelData {
	return core.NewVoxelData(c, nil)
}

func floorChunk(c core.ChunkCoord) *core.VoxelData {
	return core.NewVoxelData(c, func(x, y, z int) core.BlockType {
		if y == 0 {
			return core.Solid
		}
		return core.Air
	})
}

// processUntil pumps Process on the test goroutine until cond holds.
func processUntil(t *testing.T, l Loader, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		l.Process()
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("condition not reached, stats: %v", l.Stats())
}
