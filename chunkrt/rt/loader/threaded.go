package loader

import (
	"time"

	"github.com/gekko3d/voxstream/chunkrt/rt/core"
	"github.com/gekko3d/voxstream/chunkrt/rt/mesher"
	"github.com/gekko3d/voxstream/chunkrt/rt/terrain"
	"github.com/gekko3d/voxstream/chunkrt/rt/workers"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

const (
	DefaultBatchSize    = 4
	DefaultResultBuffer = 256
)

type Options struct {
	Workers      int // <= 0 uses the hardware parallelism
	BatchSize    int
	ResultBuffer int
	Generate     terrain.Func
	Uploader     Uploader
	Logger       core.Logger
}

type voxelResult struct {
	coord core.ChunkCoord
	epoch uuid.UUID
	data  *core.VoxelData
}

type meshResult struct {
	coord    core.ChunkCoord
	epoch    uuid.UUID
	mesh     mesher.CpuMesh
	priority int
}

// ThreadedLoader generates and meshes chunks on a worker pool and uploads
// finished meshes on the calling goroutine.
//
// Every load request gets an epoch. Results carrying an epoch other than
// the coordinate's current one belong to an unloaded (or since reloaded)
// chunk and are dropped.
type ThreadedLoader struct {
	pool      *workers.Pool
	generate  terrain.Func
	uploader  Uploader
	logger    core.Logger
	batchSize int

	voxels     map[core.ChunkCoord]*core.VoxelData
	meshes     map[core.ChunkCoord]GpuMesh
	priorities map[core.ChunkCoord]int
	epochs     map[core.ChunkCoord]uuid.UUID

	pending    []core.ChunkCoord
	pendingSet map[core.ChunkCoord]struct{}
	inFlight   map[core.ChunkCoord]struct{}
	dirty      map[core.ChunkCoord]struct{}

	voxelResults chan voxelResult
	meshResults  chan meshResult

	stale      int64
	superseded int64

	warnLimiter *rate.Limiter
	closed      bool
}

func NewThreaded(opts Options) *ThreadedLoader {
	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultBatchSize
	}
	if opts.ResultBuffer <= 0 {
		opts.ResultBuffer = DefaultResultBuffer
	}
	if opts.Generate == nil {
		opts.Generate = terrain.Generate
	}
	if opts.Logger == nil {
		opts.Logger = core.NopLogger()
	}

	return &ThreadedLoader{
		pool:      workers.New(opts.Workers),
		generate:  opts.Generate,
		uploader:  opts.Uploader,
		logger:    opts.Logger,
		batchSize: opts.BatchSize,

		voxels:     make(map[core.ChunkCoord]*core.VoxelData),
		meshes:     make(map[core.ChunkCoord]GpuMesh),
		priorities: make(map[core.ChunkCoord]int),
		epochs:     make(map[core.ChunkCoord]uuid.UUID),

		pendingSet: make(map[core.ChunkCoord]struct{}),
		inFlight:   make(map[core.ChunkCoord]struct{}),
		dirty:      make(map[core.ChunkCoord]struct{}),

		voxelResults: make(chan voxelResult, opts.ResultBuffer),
		meshResults:  make(chan meshResult, opts.ResultBuffer),

		warnLimiter: rate.NewLimiter(rate.Every(5*time.Second), 1),
	}
}

func (l *ThreadedLoader) Workers() int {
	return l.pool.Size()
}

func (l *ThreadedLoader) QueueLoad(c core.ChunkCoord) {
	if _, ok := l.voxels[c]; ok {
		return
	}
	if _, ok := l.inFlight[c]; ok {
		return
	}
	if _, ok := l.pendingSet[c]; ok {
		return
	}
	l.pendingSet[c] = struct{}{}
	l.pending = append(l.pending, c)
}

// QueueUnload forgets c at once. Jobs already running for c finish and
// their results are dropped.
func (l *ThreadedLoader) QueueUnload(c core.ChunkCoord) {
	if m, ok := l.meshes[c]; ok {
		m.Release()
	}
	delete(l.meshes, c)
	delete(l.voxels, c)
	delete(l.priorities, c)
	delete(l.epochs, c)
	delete(l.pendingSet, c)
	delete(l.inFlight, c)
	delete(l.dirty, c)
}

func (l *ThreadedLoader) Process() {
	l.dispatchGeneration()
	l.drainVoxels()
	l.dispatchMeshing()
	l.drainMeshes()
}

func (l *ThreadedLoader) dispatchGeneration() {
	dispatched := 0
	for len(l.pending) > 0 && dispatched < l.batchSize {
		c := l.pending[0]
		if _, ok := l.pendingSet[c]; !ok {
			// unloaded or dispatched through a duplicate entry
			l.pending = l.pending[1:]
			continue
		}

		epoch := uuid.New()
		generate, out := l.generate, l.voxelResults
		err := l.pool.Run(func() {
			out <- voxelResult{coord: c, epoch: epoch, data: generate(c)}
		})
		if err != nil {
			l.warnStalled("generation", err)
			return
		}

		l.pending = l.pending[1:]
		delete(l.pendingSet, c)
		l.inFlight[c] = struct{}{}
		l.epochs[c] = epoch
		dispatched++
	}
}

func (l *ThreadedLoader) drainVoxels() {
	for {
		select {
		case r := <-l.voxelResults:
			l.acceptVoxels(r)
		default:
			return
		}
	}
}

func (l *ThreadedLoader) acceptVoxels(r voxelResult) bool {
	if _, ok := l.inFlight[r.coord]; !ok || l.epochs[r.coord] != r.epoch {
		l.stale++
		return false
	}
	delete(l.inFlight, r.coord)
	l.voxels[r.coord] = r.data

	// a new chunk changes the boundary faces of its neighbors too
	l.dirty[r.coord] = struct{}{}
	for _, n := range r.coord.Neighbors() {
		l.dirty[n] = struct{}{}
	}
	return true
}

func (l *ThreadedLoader) lookup(c core.ChunkCoord) *core.VoxelData {
	return l.voxels[c]
}

func (l *ThreadedLoader) dispatchMeshing() {
	for c := range l.dirty {
		data, ok := l.voxels[c]
		if !ok {
			delete(l.dirty, c)
			continue
		}

		neighbors := mesher.Gather(c, l.lookup)
		priority := neighbors.Count()
		epoch := l.epochs[c]
		out := l.meshResults
		err := l.pool.Run(func() {
			out <- meshResult{
				coord:    c,
				epoch:    epoch,
				mesh:     mesher.Mesh(data, neighbors),
				priority: priority,
			}
		})
		if err != nil {
			// stays dirty for the next frame
			l.warnStalled("meshing", err)
			return
		}
		delete(l.dirty, c)
	}
}

func (l *ThreadedLoader) drainMeshes() {
	for {
		select {
		case r := <-l.meshResults:
			l.acceptMesh(r)
		default:
			return
		}
	}
}

// acceptMesh stores r if its chunk is still resident under the same epoch
// and r is at least as complete as the stored mesh.
func (l *ThreadedLoader) acceptMesh(r meshResult) bool {
	if _, ok := l.voxels[r.coord]; !ok || l.epochs[r.coord] != r.epoch {
		l.stale++
		return false
	}
	if prev, ok := l.priorities[r.coord]; ok && r.priority < prev {
		l.superseded++
		return false
	}

	handle, err := Upload(l.uploader, meshLabel(r.coord), &r.mesh)
	if err != nil {
		l.logger.Errorf("chunk %v: %v", r.coord, err)
		return false
	}

	if old, ok := l.meshes[r.coord]; ok {
		old.Release()
	}
	if handle != nil {
		l.meshes[r.coord] = handle
	} else {
		delete(l.meshes, r.coord)
	}
	l.priorities[r.coord] = r.priority
	return true
}

func (l *ThreadedLoader) warnStalled(stage string, err error) {
	if l.warnLimiter.Allow() {
		l.logger.Warnf("chunk loader stalled: %s dispatch failed: %v (pending=%d dirty=%d)",
			stage, err, len(l.pendingSet), len(l.dirty))
	}
}

// Priority returns the completeness score of the stored mesh for c.
func (l *ThreadedLoader) Priority(c core.ChunkCoord) (int, bool) {
	p, ok := l.priorities[c]
	return p, ok
}

func (l *ThreadedLoader) Resident(c core.ChunkCoord) bool {
	_, ok := l.voxels[c]
	return ok
}

func (l *ThreadedLoader) Meshes() []GpuMesh {
	out := make([]GpuMesh, 0, len(l.meshes))
	for _, m := range l.meshes {
		out = append(out, m)
	}
	return out
}

func (l *ThreadedLoader) Stats() Stats {
	return Stats{
		Voxels:     len(l.voxels),
		Meshes:     len(l.meshes),
		Pending:    len(l.pendingSet),
		InFlight:   len(l.inFlight),
		Dirty:      len(l.dirty),
		Stale:      l.stale,
		Superseded: l.superseded,
	}
}

// Close stops the workers and releases every uploaded mesh. Workers blocked
// on a full result channel are drained so shutdown cannot deadlock.
func (l *ThreadedLoader) Close() {
	if l.closed {
		return
	}
	l.closed = true

	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-l.voxelResults:
			case <-l.meshResults:
			case <-done:
				return
			}
		}
	}()
	l.pool.Shutdown()
	close(done)

	for c, m := range l.meshes {
		m.Release()
		delete(l.meshes, c)
	}
	l.pending = l.pending[:0]
	clear(l.pendingSet)
	clear(l.voxels)
	clear(l.priorities)
	clear(l.epochs)
	clear(l.inFlight)
	clear(l.dirty)
}
