package loader

import (
	"errors"
	"fmt"

	"github.com/gekko3d/voxstream/chunkrt/rt/core"
	"github.com/gekko3d/voxstream/chunkrt/rt/mesher"
	"github.com/gekko3d/voxstream/chunkrt/rt/terrain"

	"github.com/hashicorp/golang-lru/v2/simplelru"
)

var ErrInvalidCapacity = errors.New("loader: cache capacity must be positive")

type BoundedOptions struct {
	Capacity int
	Generate terrain.Func
	Uploader Uploader
	Logger   core.Logger
}

type cacheSlot struct {
	coord  core.ChunkCoord
	voxels *core.VoxelData
	mesh   GpuMesh
}

// BoundedCache generates, meshes and uploads chunks synchronously and keeps
// at most Capacity of them, evicting the least recently loaded.
// Storage lives in fixed slots; an evicted chunk's slot is reused by the
// chunk that displaced it.
type BoundedCache struct {
	capacity int
	recency  *simplelru.LRU[core.ChunkCoord, int]
	slots    []cacheSlot
	free     []int

	generate terrain.Func
	uploader Uploader
	logger   core.Logger

	generated int64
	evictions int64
}

func NewBounded(opts BoundedOptions) (*BoundedCache, error) {
	if opts.Capacity <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidCapacity, opts.Capacity)
	}
	if opts.Generate == nil {
		opts.Generate = terrain.Generate
	}
	if opts.Logger == nil {
		opts.Logger = core.NopLogger()
	}

	b := &BoundedCache{
		capacity: opts.Capacity,
		slots:    make([]cacheSlot, 0, opts.Capacity),
		generate: opts.Generate,
		uploader: opts.Uploader,
		logger:   opts.Logger,
	}
	recency, err := simplelru.NewLRU[core.ChunkCoord, int](opts.Capacity, b.evicted)
	if err != nil {
		return nil, fmt.Errorf("bounded cache: %w", err)
	}
	b.recency = recency
	return b, nil
}

func (b *BoundedCache) evicted(c core.ChunkCoord, slot int) {
	s := &b.slots[slot]
	if s.mesh != nil {
		s.mesh.Release()
	}
	*s = cacheSlot{}
	b.free = append(b.free, slot)
	b.logger.Debugf("chunk cache: released %v from slot %d", c, slot)
}

func (b *BoundedCache) allocSlot() int {
	if n := len(b.free); n > 0 {
		slot := b.free[n-1]
		b.free = b.free[:n-1]
		return slot
	}
	b.slots = append(b.slots, cacheSlot{})
	return len(b.slots) - 1
}

func (b *BoundedCache) peek(c core.ChunkCoord) *core.VoxelData {
	slot, ok := b.recency.Peek(c)
	if !ok {
		return nil
	}
	return b.slots[slot].voxels
}

// Load makes c resident. A resident c only becomes most recently used.
// The least recently used chunk is evicted only once the new mesh is on
// the GPU, so a failed upload leaves the resident set as it was.
func (b *BoundedCache) Load(c core.ChunkCoord) error {
	if _, ok := b.recency.Get(c); ok {
		return nil
	}

	data := b.generate(c)
	b.generated++
	m := mesher.Mesh(data, mesher.Gather(c, b.peek))
	handle, err := Upload(b.uploader, meshLabel(c), &m)
	if err != nil {
		return err
	}

	if b.recency.Len() >= b.capacity {
		if _, _, ok := b.recency.RemoveOldest(); ok {
			b.evictions++
		}
	}
	slot := b.allocSlot()
	b.slots[slot] = cacheSlot{coord: c, voxels: data, mesh: handle}
	b.recency.Add(c, slot)
	return nil
}

// Capacity is the most chunks the cache keeps resident.
func (b *BoundedCache) Capacity() int {
	return b.capacity
}

func (b *BoundedCache) QueueLoad(c core.ChunkCoord) {
	if err := b.Load(c); err != nil {
		b.logger.Errorf("chunk cache: load %v: %v", c, err)
	}
}

func (b *BoundedCache) QueueUnload(c core.ChunkCoord) {
	b.recency.Remove(c)
}

func (b *BoundedCache) Process() {}

func (b *BoundedCache) Contains(c core.ChunkCoord) bool {
	return b.recency.Contains(c)
}

// Keys lists resident chunks from least to most recently used.
func (b *BoundedCache) Keys() []core.ChunkCoord {
	return b.recency.Keys()
}

// Slot reports which storage slot holds c.
func (b *BoundedCache) Slot(c core.ChunkCoord) (int, bool) {
	return b.recency.Peek(c)
}

func (b *BoundedCache) Generated() int64 {
	return b.generated
}

func (b *BoundedCache) Meshes() []GpuMesh {
	out := make([]GpuMesh, 0, b.recency.Len())
	for _, c := range b.recency.Keys() {
		slot, _ := b.recency.Peek(c)
		if m := b.slots[slot].mesh; m != nil {
			out = append(out, m)
		}
	}
	return out
}

func (b *BoundedCache) Stats() Stats {
	meshes := 0
	for _, s := range b.slots {
		if s.mesh != nil {
			meshes++
		}
	}
	return Stats{
		Voxels:    b.recency.Len(),
		Meshes:    meshes,
		Evictions: b.evictions,
	}
}

func (b *BoundedCache) Close() {
	b.recency.Purge()
}
