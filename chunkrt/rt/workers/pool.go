package workers

import (
	"errors"
	"runtime"
	"sync/atomic"

	"github.com/alitto/pond/v2"
)

var ErrStopped = errors.New("workers: pool stopped")

// Pool runs closures on a fixed number of goroutines fed from an unbounded
// FIFO queue.
type Pool struct {
	pool     pond.Pool
	size     int
	stopping atomic.Bool
	dropped  atomic.Int64
}

// DefaultSize is the available hardware parallelism, at least 1.
func DefaultSize() int {
	n := runtime.NumCPU()
	if n < 1 {
		return 1
	}
	return n
}

func New(size int) *Pool {
	if size <= 0 {
		size = DefaultSize()
	}
	return &Pool{
		pool: pond.NewPool(size),
		size: size,
	}
}

func (p *Pool) Size() int {
	return p.size
}

// Run enqueues job and returns immediately.
func (p *Pool) Run(job func()) error {
	if p.stopping.Load() {
		return ErrStopped
	}
	err := p.pool.Go(func() {
		if p.stopping.Load() {
			p.dropped.Add(1)
			return
		}
		job()
	})
	if err != nil {
		return ErrStopped
	}
	return nil
}

// Shutdown drops jobs that have not started, waits for running ones and
// stops every worker. Safe to call more than once.
func (p *Pool) Shutdown() {
	if p.stopping.Swap(true) {
		return
	}
	p.pool.StopAndWait()
}

func (p *Pool) Stopped() bool {
	return p.stopping.Load()
}

// Pending is the number of queued jobs not yet picked up by a worker.
func (p *Pool) Pending() uint64 {
	return p.pool.WaitingTasks()
}

// Dropped counts jobs discarded by Shutdown before they started.
func (p *Pool) Dropped() int64 {
	return p.dropped.Load()
}
