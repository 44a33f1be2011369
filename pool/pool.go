// Package pool implements the fixed-size worker pool the scheduler uses for
// parallel stage execution.
package pool

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// Task is a unit of work submitted to the pool.
type Task func()

// Pool runs tasks on a fixed set of worker goroutines sharing one queue.
// Tasks may be submitted from any goroutine; WaitAll may only be called from
// the coordinator, never from inside a task.
type Pool struct {
	tasks   chan Task
	pending atomic.Int64
	workers int
	wg      sync.WaitGroup
}

// New starts a pool with the given number of workers. Sizes below one are
// clamped to one.
func New(workers int) *Pool {
	if workers < 1 {
		workers = 1
	}
	p := &Pool{
		tasks:   make(chan Task, workers*4),
		workers: workers,
	}
	p.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go p.worker()
	}
	return p
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for task := range p.tasks {
		if task == nil {
			return
		}
		task()
		p.pending.Add(-1)
	}
}

// Workers returns the pool size.
func (p *Pool) Workers() int {
	return p.workers
}

// Submit enqueues a task. It blocks when the queue is full, which bounds the
// backlog a stage can build up.
func (p *Pool) Submit(task Task) {
	p.pending.Add(1)
	p.tasks <- task
}

// WaitAll blocks until every submitted task has finished. The pool stays
// usable afterwards.
func (p *Pool) WaitAll() {
	for p.pending.Load() > 0 {
		runtime.Gosched()
	}
}

// Terminate stops the workers and joins them. Outstanding tasks submitted
// before Terminate still run; submitting after Terminate panics.
func (p *Pool) Terminate() {
	for i := 0; i < p.workers; i++ {
		p.tasks <- nil
	}
	p.wg.Wait()
	close(p.tasks)
}
