package worker

import (
	"context"
	"sync"
)

// Job represents a unit of work to be executed
type Job interface {
	Execute(ctx context.Context) Result
}

// Result represents the result of a job execution
type Result interface {
	GetError() error
}

type indexedJob struct {
	index int
	job   Job
}

// Pool runs jobs on a fixed number of goroutines. Wait returns results in
// submission order.
type Pool struct {
	workers    int
	submitted  int
	jobQueue   chan indexedJob
	mu         sync.Mutex
	results    map[int]Result
	wg         sync.WaitGroup
	ctx        context.Context
	cancelFunc context.CancelFunc
	closeOnce  sync.Once
}

// NewPool creates a pool bound to ctx; cancelling ctx stops the workers
func NewPool(ctx context.Context, workers int) *Pool {
	if workers <= 0 {
		workers = 1
	}

	ctx, cancel := context.WithCancel(ctx)

	return &Pool{
		workers:    workers,
		jobQueue:   make(chan indexedJob, workers*2), // Buffered to prevent blocking
		results:    make(map[int]Result),
		ctx:        ctx,
		cancelFunc: cancel,
	}
}

// Start starts the worker goroutines
func (p *Pool) Start() {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
}

func (p *Pool) worker() {
	defer p.wg.Done()

	for {
		select {
		case <-p.ctx.Done():
			return
		case job, ok := <-p.jobQueue:
			if !ok {
				return
			}
			result := job.job.Execute(p.ctx)
			p.mu.Lock()
			p.results[job.index] = result
			p.mu.Unlock()
		}
	}
}

// Submit queues a job. It returns false if the pool was shut down.
// Submit is meant to be called from a single goroutine.
func (p *Pool) Submit(job Job) bool {
	if p.ctx.Err() != nil {
		return false
	}
	select {
	case <-p.ctx.Done():
		return false
	case p.jobQueue <- indexedJob{index: p.submitted, job: job}:
		p.submitted++
		return true
	}
}

// Wait closes the queue, waits for the workers and returns one result per
// submitted job in submission order. Jobs dropped by a shutdown are nil.
func (p *Pool) Wait() []Result {
	p.closeQueue()
	p.wg.Wait()
	p.cancelFunc()

	p.mu.Lock()
	defer p.mu.Unlock()
	ordered := make([]Result, p.submitted)
	for idx, r := range p.results {
		ordered[idx] = r
	}
	return ordered
}

// Shutdown stops the pool immediately
func (p *Pool) Shutdown() {
	p.cancelFunc()
	p.wg.Wait()
}

func (p *Pool) closeQueue() {
	p.closeOnce.Do(func() {
		close(p.jobQueue)
	})
}

// Run executes jobs with the given concurrency and returns their results in order
func Run(ctx context.Context, workers int, jobs []Job) []Result {
	if len(jobs) == 0 {
		return []Result{}
	}
	if workers > len(jobs) {
		workers = len(jobs)
	}

	pool := NewPool(ctx, workers)
	pool.Start()
	for _, job := range jobs {
		if !pool.Submit(job) {
			break
		}
	}
	return pool.Wait()
}
