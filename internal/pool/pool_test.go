package pool_test

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/galaxysim/internal/pool"
)

var _ = Describe("Pool", func() {
	var p *pool.Pool

	BeforeEach(func() {
		p = pool.New(4)
	})

	AfterEach(func() {
		p.Stop()
	})

	It("starts with every slot idle", func() {
		Expect(p.Workers()).To(Equal(4))
		Expect(p.States()).To(HaveEach(pool.Idle))
	})

	It("visits every index exactly once per round", func() {
		const total = 1003
		hits := make([]int32, total)

		for round := 0; round < 5; round++ {
			err := p.Dispatch(context.Background(), total, func(c pool.Chunk) {
				for i := c.Start; i < c.End; i++ {
					atomic.AddInt32(&hits[i], 1)
				}
			})
			Expect(err).NotTo(HaveOccurred())
		}

		for i := range hits {
			Expect(hits[i]).To(Equal(int32(5)), "index %d", i)
		}
		Expect(p.Rounds()).To(Equal(int64(5)))
		Expect(p.States()).To(HaveEach(pool.Completed))
	})

	It("does not return before every chunk finished", func() {
		var finished atomic.Int32
		err := p.Dispatch(context.Background(), 8, func(c pool.Chunk) {
			time.Sleep(time.Duration(c.Start) * time.Millisecond)
			finished.Add(1)
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(finished.Load()).To(Equal(int32(4)))
	})

	It("hands each worker one chunk at a time", func() {
		var mu sync.Mutex
		seen := map[pool.Chunk]int{}
		for round := 0; round < 3; round++ {
			Expect(p.Dispatch(context.Background(), 12, func(c pool.Chunk) {
				mu.Lock()
				seen[c]++
				mu.Unlock()
			})).To(Succeed())
		}
		Expect(seen).To(HaveLen(4))
		for _, n := range seen {
			Expect(n).To(Equal(3))
		}
	})

	It("runs empty chunks when there are fewer stars than workers", func() {
		var calls atomic.Int32
		Expect(p.Dispatch(context.Background(), 2, func(c pool.Chunk) {
			calls.Add(1)
		})).To(Succeed())
		Expect(calls.Load()).To(Equal(int32(4)))
	})

	It("finishes a started round even when its context is canceled", func() {
		release := make(chan struct{})
		started := make(chan struct{}, 4)
		ctx, cancel := context.WithCancel(context.Background())
		var finished atomic.Int32

		errc := make(chan error, 1)
		go func() {
			errc <- p.Dispatch(ctx, 4, func(c pool.Chunk) {
				started <- struct{}{}
				<-release
				finished.Add(1)
			})
		}()
		Eventually(started).Should(Receive())
		cancel()
		Consistently(errc, 50*time.Millisecond).ShouldNot(Receive())

		close(release)
		Eventually(errc).Should(Receive(BeNil()))
		Expect(finished.Load()).To(Equal(int32(4)))
		Expect(p.States()).To(HaveEach(pool.Completed))
	})

	It("does not start a round on a canceled context", func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		err := p.Dispatch(ctx, 4, func(pool.Chunk) {
			Fail("task must not run on a canceled context")
		})
		Expect(err).To(MatchError(context.Canceled))
		Expect(p.States()).To(HaveEach(pool.Idle))

		var calls atomic.Int32
		Expect(p.Dispatch(context.Background(), 4, func(c pool.Chunk) {
			calls.Add(1)
		})).To(Succeed())
		Expect(calls.Load()).To(Equal(int32(4)))
	})
})

var _ = Describe("Stop", func() {
	It("terminates idle workers promptly", func() {
		p := pool.New(8)
		done := make(chan struct{})
		go func() {
			p.Stop()
			close(done)
		}()
		Eventually(done, time.Second).Should(BeClosed())
	})

	It("lets a running chunk finish before the worker exits", func() {
		p := pool.New(2)
		started := make(chan struct{}, 2)
		var finished atomic.Int32

		errc := make(chan error, 1)
		go func() {
			errc <- p.Dispatch(context.Background(), 2, func(c pool.Chunk) {
				started <- struct{}{}
				time.Sleep(20 * time.Millisecond)
				finished.Add(1)
			})
		}()
		Eventually(started).Should(Receive())

		stopped := make(chan struct{})
		go func() {
			p.Stop()
			close(stopped)
		}()
		Eventually(stopped, time.Second).Should(BeClosed())
		Expect(finished.Load()).To(BeNumerically(">=", 1))

		// the round either completed before the stop or reports it, never
		// while a chunk is still running
		var err error
		Eventually(errc, time.Second).Should(Receive(&err))
		if err != nil {
			Expect(err).To(MatchError(pool.ErrStopped))
		}
		Expect(finished.Load()).To(BeNumerically(">=", 1))
	})

	It("rejects work after stopping and tolerates a second stop", func() {
		p := pool.New(3)
		p.Stop()
		p.Stop()

		err := p.Dispatch(context.Background(), 10, func(pool.Chunk) {
			Fail("task must not run on a stopped pool")
		})
		Expect(err).To(MatchError(pool.ErrStopped))
	})
})

var _ = Describe("State", func() {
	It("has readable names", func() {
		Expect(pool.Idle.String()).To(Equal("idle"))
		Expect(pool.Assigned.String()).To(Equal("assigned"))
		Expect(pool.Completed.String()).To(Equal("completed"))
		Expect(pool.State(9).String()).To(Equal("state(9)"))
	})
})
