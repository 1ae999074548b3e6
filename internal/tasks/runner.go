package tasks

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"petradar/internal/platform/logger"
)

var (
	ErrQueueFull = errors.New("task queue full")
	ErrStopped   = errors.New("task runner stopped")
)

// Status del task de background.
// @Enum queued, running, completed, failed
type Status string

const (
	StatusQueued    Status = "queued"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Info es el estado consultable de un task (GET /tasks/{id}).
type Info struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Status      Status     `json:"status"`
	Error       string     `json:"error,omitempty"`
	Result      any        `json:"result,omitempty"`
	EnqueuedAt  time.Time  `json:"enqueued_at"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// Func es la unidad de trabajo. El result se expone en Info al completar.
type Func func(ctx context.Context) (any, error)

type job struct {
	id string
	fn Func
}

// Runner es una cola in-process con worker pool acotado y registro de
// estado por task. El request encola y retorna; el estado avanza fuera
// de banda y el caller hace polling.
type Runner struct {
	queue   chan job
	workers int
	log     logger.Logger
	now     func() time.Time

	mu      sync.RWMutex
	info    map[string]*Info
	stopped bool

	wg     sync.WaitGroup
	cancel context.CancelFunc
}

func NewRunner(workers, buffer int, log logger.Logger) *Runner {
	if workers <= 0 {
		workers = 4
	}
	if buffer <= 0 {
		buffer = 64
	}
	return &Runner{
		queue:   make(chan job, buffer),
		workers: workers,
		log:     log,
		now:     time.Now,
		info:    make(map[string]*Info),
	}
}

// Start levanta los workers. El ctx del runner gobierna todos los tasks.
func (r *Runner) Start(ctx context.Context) {
	ctx, r.cancel = context.WithCancel(ctx)

	for i := 0; i < r.workers; i++ {
		r.wg.Add(1)
		go r.worker(ctx)
	}
}

// Stop drena y espera los tasks en vuelo.
func (r *Runner) Stop() {
	r.mu.Lock()
	if r.stopped {
		r.mu.Unlock()
		return
	}
	r.stopped = true
	r.mu.Unlock()

	close(r.queue)
	r.wg.Wait()
	if r.cancel != nil {
		r.cancel()
	}
}

// Enqueue registra el task y lo encola. Nunca bloquea: cola llena es error.
func (r *Runner) Enqueue(name string, fn Func) (string, error) {
	r.mu.Lock()
	if r.stopped {
		r.mu.Unlock()
		return "", ErrStopped
	}
	id := uuid.NewString()
	r.info[id] = &Info{
		ID:         id,
		Name:       name,
		Status:     StatusQueued,
		EnqueuedAt: r.now(),
	}
	r.mu.Unlock()

	select {
	case r.queue <- job{id: id, fn: fn}:
		return id, nil
	default:
		r.setStatus(id, StatusFailed, nil, ErrQueueFull)
		return "", ErrQueueFull
	}
}

// Get devuelve el estado de un task.
func (r *Runner) Get(id string) (Info, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	in, ok := r.info[id]
	if !ok {
		return Info{}, false
	}
	return *in, true
}

func (r *Runner) worker(ctx context.Context) {
	defer r.wg.Done()

	for j := range r.queue {
		if ctx.Err() != nil {
			r.setStatus(j.id, StatusFailed, nil, ctx.Err())
			continue
		}

		r.markRunning(j.id)
		result, err := j.fn(ctx)
		if err != nil {
			if r.log != nil {
				r.log.Error("task failed", map[string]any{"task_id": j.id, "error": err.Error()})
			}
			r.setStatus(j.id, StatusFailed, nil, err)
			continue
		}
		r.setStatus(j.id, StatusCompleted, result, nil)
	}
}

func (r *Runner) markRunning(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if in, ok := r.info[id]; ok {
		now := r.now()
		in.Status = StatusRunning
		in.StartedAt = &now
	}
}

func (r *Runner) setStatus(id string, st Status, result any, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	in, ok := r.info[id]
	if !ok {
		return
	}
	now := r.now()
	in.Status = st
	in.CompletedAt = &now
	in.Result = result
	if err != nil {
		in.Error = err.Error()
	}
}
