package infrastructure

import (
	"context"
	"errors"
	"sync"
)

// ErrPoolStopped est retourné par Submit après Stop ou Wait
var ErrPoolStopped = errors.New("worker pool is stopped")

// Task représente une tâche à exécuter
type Task func(ctx context.Context) error

// WorkerPool exécute des tâches en parallèle avec un nombre fixe de workers.
// Toutes les erreurs des tâches sont conservées et retournées par Wait.
type WorkerPool struct {
	workerCount int
	tasks       chan Task
	wg          sync.WaitGroup
	ctx         context.Context
	cancel      context.CancelFunc

	mu   sync.Mutex
	errs []error

	submitMu sync.Mutex
	closed   bool
}

// NewWorkerPool crée un nouveau pool de workers rattaché à ctx
func NewWorkerPool(ctx context.Context, workerCount int) *WorkerPool {
	if workerCount < 1 {
		workerCount = 1
	}
	ctx, cancel := context.WithCancel(ctx)
	return &WorkerPool{
		workerCount: workerCount,
		tasks:       make(chan Task, workerCount*2),
		ctx:         ctx,
		cancel:      cancel,
	}
}

func (wp *WorkerPool) worker() {
	defer wp.wg.Done()

	for {
		select {
		case <-wp.ctx.Done():
			return
		case task, ok := <-wp.tasks:
			if !ok {
				return
			}
			if err := task(wp.ctx); err != nil {
				wp.mu.Lock()
				wp.errs = append(wp.errs, err)
				wp.mu.Unlock()
			}
		}
	}
}

// Start démarre les workers
func (wp *WorkerPool) Start() {
	for i := 0; i < wp.workerCount; i++ {
		wp.wg.Add(1)
		go wp.worker()
	}
}

// Submit soumet une tâche au pool; bloque si la file est pleine
func (wp *WorkerPool) Submit(task Task) error {
	wp.submitMu.Lock()
	defer wp.submitMu.Unlock()
	if wp.closed {
		return ErrPoolStopped
	}

	select {
	case <-wp.ctx.Done():
		return ErrPoolStopped
	case wp.tasks <- task:
		return nil
	}
}

// Wait ferme la file, attend la fin des tâches et retourne leurs erreurs jointes
func (wp *WorkerPool) Wait() error {
	wp.submitMu.Lock()
	if !wp.closed {
		wp.closed = true
		close(wp.tasks)
	}
	wp.submitMu.Unlock()

	wp.wg.Wait()
	interrupted := wp.ctx.Err()
	wp.cancel()

	wp.mu.Lock()
	defer wp.mu.Unlock()
	if interrupted != nil {
		return errors.Join(append(wp.errs, interrupted)...)
	}
	return errors.Join(wp.errs...)
}

// Stop arrête le pool sans attendre les tâches en file
func (wp *WorkerPool) Stop() {
	wp.cancel()
	wp.wg.Wait()
}
