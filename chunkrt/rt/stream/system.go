package stream

import (
	"math"
	"slices"

	"github.com/gekko3d/voxstream/chunkrt/rt/core"
	"github.com/gekko3d/voxstream/chunkrt/rt/loader"
)

const DefaultRadius = 16

// DrawSink receives the draw calls for the chunk pass. Index buffers hold
// 32-bit indices.
type DrawSink interface {
	SetPipeline()
	SetVertexBuffer(m loader.GpuMesh)
	SetIndexBuffer(m loader.GpuMesh)
	DrawIndexed(indexCount uint32)
}

// capacityLimited loaders load synchronously and evict the least recently
// loaded chunk once Capacity chunks are resident.
type capacityLimited interface {
	Capacity() int
}

// System keeps the loader's resident set equal to the window of chunks
// around the viewer and issues the draw calls for their meshes.
type System struct {
	loader  loader.Loader
	logger  core.Logger
	radius  int32
	center  core.ChunkCoord
	started bool

	meshes []loader.GpuMesh
	frames uint64
}

func New(l loader.Loader, radius int32, logger core.Logger) *System {
	if radius <= 0 {
		radius = DefaultRadius
	}
	if logger == nil {
		logger = core.NopLogger()
	}
	s := &System{loader: l, logger: logger}
	s.radius = s.fitRadius(radius)
	return s
}

// fitRadius shrinks r until the window fits a capacity-limited loader.
func (s *System) fitRadius(r int32) int32 {
	lim, ok := s.loader.(capacityLimited)
	if !ok {
		return r
	}
	maxR := max(int32(math.Sqrt(float64(lim.Capacity())))/2, 1)
	if r > maxR {
		s.logger.Warnf("radius %d needs %d chunks but the cache holds %d; using radius %d",
			r, 4*int(r)*int(r), lim.Capacity(), maxR)
		return maxR
	}
	return r
}

// queueLoads requests cs, given nearest first. A capacity-limited loader
// gets them farthest first so the chunks around the viewer are the last
// to be evicted.
func (s *System) queueLoads(cs []core.ChunkCoord) {
	if _, ok := s.loader.(capacityLimited); ok {
		cs = slices.Clone(cs)
		slices.Reverse(cs)
	}
	for _, c := range cs {
		s.loader.QueueLoad(c)
	}
}

func (s *System) Center() core.ChunkCoord { return s.center }
func (s *System) Radius() int32           { return s.radius }
func (s *System) Loader() loader.Loader   { return s.loader }

// Start queues the whole window around center. Later calls are ignored.
func (s *System) Start(center core.ChunkCoord) {
	if s.started {
		return
	}
	s.started = true
	s.center = center

	region := Region(center, s.radius)
	sortNearest(region, center)
	s.queueLoads(region)
	s.logger.Infof("chunk streaming started at %v, radius %d (%d chunks)", center, s.radius, len(region))
}

// UpdatePosition moves the window when the world position lies in another
// chunk. It reports whether the center changed.
func (s *System) UpdatePosition(x, z float32) bool {
	next := core.ChunkCoordFromWorld(x, z)
	if !s.started {
		s.Start(next)
		return true
	}
	if next == s.center {
		return false
	}

	unload, load := Diff(s.center, next, s.radius)
	s.apply(unload, load)
	s.logger.Debugf("chunk center %v -> %v: -%d +%d", s.center, next, len(unload), len(load))
	s.center = next
	return true
}

// SetRadius grows or shrinks the window around the current center.
func (s *System) SetRadius(r int32) {
	if r <= 0 {
		return
	}
	r = s.fitRadius(r)
	if r == s.radius {
		return
	}
	if s.started {
		unload, load := diffRegions(s.center, s.radius, s.center, r)
		s.apply(unload, load)
	}
	s.radius = r
}

func (s *System) apply(unload, load []core.ChunkCoord) {
	for _, c := range unload {
		s.loader.QueueUnload(c)
	}
	s.queueLoads(load)
}

// Frame runs the loader once and snapshots the drawable meshes.
func (s *System) Frame() {
	s.loader.Process()
	s.meshes = s.loader.Meshes()
	s.frames++
	if s.frames%600 == 0 {
		s.logger.Debugf("chunk loader: %v", s.loader.Stats())
	}
}

func (s *System) Meshes() []loader.GpuMesh {
	return s.meshes
}

// Draw binds the chunk pipeline once and issues one indexed draw per mesh.
func (s *System) Draw(sink DrawSink) int {
	sink.SetPipeline()
	drawn := 0
	for _, m := range s.meshes {
		if m == nil || m.IndexCount() == 0 {
			continue
		}
		sink.SetVertexBuffer(m)
		sink.SetIndexBuffer(m)
		sink.DrawIndexed(m.IndexCount())
		drawn++
	}
	return drawn
}

func (s *System) Close() {
	s.meshes = nil
	s.loader.Close()
}
