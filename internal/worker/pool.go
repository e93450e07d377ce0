package worker

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/civicpulse/request-notifier/internal/queue"
	"github.com/civicpulse/request-notifier/internal/repository"
)

// Pool manages the lifecycle of all workers.
// All workers share the same queue; events are independent, so any worker
// may take any event.
type Pool struct {
	workers []*Worker
	wg      sync.WaitGroup
}

func NewPool(
	size int,
	q *queue.EventQueue,
	events repository.EventRepository,
	handler EventHandler,
	logger *zap.Logger,
) *Pool {
	workers := make([]*Worker, size)
	for i := range workers {
		workers[i] = NewWorker(i, q, events, handler, logger.With(zap.Int("worker_id", i)))
	}
	return &Pool{workers: workers}
}

// Start launches all workers as goroutines.
// The provided ctx is forwarded to every worker; cancelling it
// triggers a graceful shutdown of the entire pool.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		p.wg.Add(1)
		go func(w *Worker) {
			defer p.wg.Done()
			w.Run(ctx)
		}(w)
	}
}

// Wait blocks until every worker has returned after ctx is cancelled.
// Call this after cancelling the context to ensure in-flight events finish.
func (p *Pool) Wait() {
	p.wg.Wait()
}
