// Package pool runs the per-step star update on a fixed set of long-lived
// workers.
//
// The driver hands each worker exactly one chunk per round over the
// worker's own channel and waits for one completion per worker before it
// returns. A worker is never reassigned before its completion has been
// received, so at most one assignment per worker is in flight.
package pool

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
)

// ErrStopped is returned when dispatching on a stopped pool.
var ErrStopped = errors.New("pool: stopped")

// State is the lifecycle of one chunk slot.
type State int32

const (
	Idle      State = 0
	Assigned  State = 1
	Completed State = 2
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Assigned:
		return "assigned"
	case Completed:
		return "completed"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// Task processes the stars of one chunk.
type Task func(c Chunk)

type assignment struct {
	chunk Chunk
	task  Task
}

type Pool struct {
	assign []chan assignment
	done   chan int
	slots  []atomic.Int32

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	rounds atomic.Int64

	mu sync.Mutex
}

// New starts n workers. n is raised to 1 if smaller.
func New(n int) *Pool {
	if n < 1 {
		n = 1
	}
	ctx, cancel := context.WithCancel(context.Background())
	p := &Pool{
		assign: make([]chan assignment, n),
		done:   make(chan int, n),
		slots:  make([]atomic.Int32, n),
		ctx:    ctx,
		cancel: cancel,
	}
	for i := 0; i < n; i++ {
		p.assign[i] = make(chan assignment, 1)
		p.wg.Add(1)
		go p.work(i)
	}
	return p
}

func (p *Pool) Workers() int { return len(p.assign) }

// Rounds is the number of dispatches that reached the barrier.
func (p *Pool) Rounds() int64 { return p.rounds.Load() }

func (p *Pool) work(slot int) {
	defer p.wg.Done()
	for {
		select {
		case <-p.ctx.Done():
			return
		case a := <-p.assign[slot]:
			a.task(a.chunk)
			p.slots[slot].Store(int32(Completed))
			select {
			case p.done <- slot:
			case <-p.ctx.Done():
				return
			}
		}
	}
}

// Dispatch splits [0, total) into one chunk per worker, runs task on every
// chunk and returns once all of them completed. It is the step barrier:
// when it returns, no worker is touching the data anymore. ctx is only
// checked before the round starts; a round that started always runs to
// completion. If the pool is stopped mid-round, Dispatch waits for the
// workers to exit and returns ErrStopped.
func (p *Pool) Dispatch(ctx context.Context, total int, task Task) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.ctx.Err() != nil {
		return ErrStopped
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	chunks := Partition(total, len(p.assign))
	for i, c := range chunks {
		if !p.slots[i].CompareAndSwap(int32(Idle), int32(Assigned)) &&
			!p.slots[i].CompareAndSwap(int32(Completed), int32(Assigned)) {
			panic(fmt.Sprintf("pool: slot %d reassigned while %s", i, State(p.slots[i].Load())))
		}
		p.assign[i] <- assignment{chunk: c, task: task}
	}

	for range chunks {
		select {
		case <-p.done:
		case <-p.ctx.Done():
			p.wg.Wait()
			return ErrStopped
		}
	}
	p.rounds.Add(1)
	return nil
}

// States returns a snapshot of every slot's state.
func (p *Pool) States() []State {
	out := make([]State, len(p.slots))
	for i := range p.slots {
		out[i] = State(p.slots[i].Load())
	}
	return out
}

// Stop signals every worker to exit and waits for them. A worker in the
// middle of a chunk finishes it first. Stop is safe to call more than once.
func (p *Pool) Stop() {
	p.cancel()
	p.wg.Wait()
}
