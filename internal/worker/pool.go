package worker

import (
	"log/slog"
	"sync"

	"github.com/baharkarakas/ledger-core/internal/metrics"
)

type task func()

// Pool runs submitted tasks on a fixed set of goroutines. A task that
// panics is logged and does not take its worker down.
type Pool struct {
	wg   sync.WaitGroup
	jobs chan task
}

func NewPool(n, queue int) *Pool {
	if n <= 0 {
		n = 1
	}
	if queue <= 0 {
		queue = 1024
	}
	p := &Pool{jobs: make(chan task, queue)}
	for i := 0; i < n; i++ {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			for job := range p.jobs {
				metrics.WorkerQueueDepth.Dec()
				run(job)
			}
		}()
	}
	return p
}

func run(job task) {
	defer func() {
		if rec := recover(); rec != nil {
			slog.Error("worker task panic", "err", rec)
		}
	}()
	job()
}

// Submit queues f, blocking while the queue is full.
func (p *Pool) Submit(f task) {
	metrics.WorkerQueueDepth.Inc()
	p.jobs <- f
}

// Stop waits for queued tasks to finish. Submit must not be called after Stop.
func (p *Pool) Stop() { close(p.jobs); p.wg.Wait() }
