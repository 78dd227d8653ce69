package loader

import (
	"fmt"

	"github.com/gekko3d/voxstream/chunkrt/rt/core"
	"github.com/gekko3d/voxstream/chunkrt/rt/mesher"
)

// Loader keeps chunks resident on request and exposes their meshes.
// All methods must be called from the goroutine that owns the GPU context.
type Loader interface {
	QueueLoad(c core.ChunkCoord)
	QueueUnload(c core.ChunkCoord)
	// Process advances background work. Called once per frame; never blocks.
	Process()
	Meshes() []GpuMesh
	Stats() Stats
	Close()
}

// GpuMesh is an uploaded vertex/index buffer pair.
type GpuMesh interface {
	IndexCount() uint32
	Release()
}

// Uploader allocates GPU buffers for a CPU mesh.
type Uploader interface {
	Upload(label string, m *mesher.CpuMesh) (GpuMesh, error)
}

// Upload hands m to u unless it is empty. An empty mesh yields (nil, nil).
func Upload(u Uploader, label string, m *mesher.CpuMesh) (GpuMesh, error) {
	if m.Empty() || u == nil {
		return nil, nil
	}
	g, err := u.Upload(label, m)
	if err != nil {
		return nil, fmt.Errorf("upload %s: %w", label, err)
	}
	return g, nil
}

type Stats struct {
	Voxels   int
	Meshes   int
	Pending  int
	InFlight int
	Dirty    int

	// Results dropped because their chunk was unloaded or reloaded.
	Stale int64
	// Mesh results dropped because a more complete mesh was already stored.
	Superseded int64
	Evictions  int64
}

func (s Stats) String() string {
	return fmt.Sprintf("voxels=%d meshes=%d pending=%d inflight=%d dirty=%d stale=%d superseded=%d evictions=%d",
		s.Voxels, s.Meshes, s.Pending, s.InFlight, s.Dirty, s.Stale, s.Superseded, s.Evictions)
}

func meshLabel(c core.ChunkCoord) string {
	return "chunk " + c.String()
}
