// Package pool runs tasks on a fixed number of workers that live for the
// whole run and are shared by every phase.
package pool

import (
	"errors"
	"fmt"
	"runtime/debug"
	"sync"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

var ErrClosed = errors.New("worker pool is closed")

// Pool is a task queue drained by a fixed set of workers.
type Pool struct {
	size  int
	tasks chan func()
	g     errgroup.Group

	mu     sync.RWMutex
	closed bool
}

// New starts size workers. Sizes below one are raised to one.
func New(size int) *Pool {
	if size < 1 {
		size = 1
	}

	p := &Pool{
		size:  size,
		tasks: make(chan func()),
	}

	for i := 0; i < size; i++ {
		workerID := i + 1
		p.g.Go(func() error {
			for task := range p.tasks {
				runTask(workerID, task)
			}
			return nil
		})
	}

	log.Debugf("🚀 Started worker pool with %d workers", size)
	return p
}

func (p *Pool) Size() int {
	return p.size
}

// Submit blocks until a worker picks the task up.
func (p *Pool) Submit(task func()) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return ErrClosed
	}
	p.tasks <- task
	return nil
}

// Close stops accepting tasks and waits for in-flight tasks to finish.
// It is safe to call more than once.
func (p *Pool) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.tasks)
	p.mu.Unlock()

	err := p.g.Wait()
	log.Debugf("🛑 Worker pool with %d workers stopped", p.size)
	return err
}

// Group returns a handle to wait for one batch of tasks.
func (p *Pool) Group() *Group {
	return &Group{pool: p}
}

// runTask keeps a panicking task from taking its worker down.
func runTask(workerID int, task func()) {
	defer func() {
		if r := recover(); r != nil {
			log.Errorf("❌ Worker %d recovered from panic: %v\n%s", workerID, r, debug.Stack())
		}
	}()
	task()
}

// Group tracks the tasks of one phase.
type Group struct {
	pool *Pool
	wg   sync.WaitGroup
}

// Go submits task to the pool as part of the group.
func (g *Group) Go(task func()) error {
	g.wg.Add(1)
	err := g.pool.Submit(func() {
		defer g.wg.Done()
		task()
	})
	if err != nil {
		g.wg.Done()
		return fmt.Errorf("failed to submit task: %w", err)
	}
	return nil
}

// Wait blocks until every task submitted through the group has finished.
func (g *Group) Wait() {
	g.wg.Wait()
}
