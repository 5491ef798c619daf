package pool_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/galaxysim/internal/pool"
)

var _ = Describe("Partition", func() {
	It("covers every index exactly once for any size and worker count", func() {
		for total := 0; total <= 130; total++ {
			for n := 1; n <= 9; n++ {
				chunks := pool.Partition(total, n)
				Expect(chunks).To(HaveLen(n))
				Expect(chunks[0].Start).To(Equal(0))
				Expect(chunks[n-1].End).To(Equal(total))

				sum := 0
				for i, c := range chunks {
					Expect(c.Len()).To(BeNumerically(">=", 0))
					if i > 0 {
						Expect(c.Start).To(Equal(chunks[i-1].End), "gap or overlap at chunk %d", i)
					}
					sum += c.Len()
				}
				Expect(sum).To(Equal(total))
			}
		}
	})

	It("gives the remainder to the last chunk", func() {
		chunks := pool.Partition(10, 4)
		Expect(chunks).To(Equal([]pool.Chunk{{0, 2}, {2, 4}, {4, 6}, {6, 10}}))
	})

	It("clamps degenerate arguments", func() {
		Expect(pool.Partition(5, 0)).To(Equal([]pool.Chunk{{0, 5}}))
		Expect(pool.Partition(-3, 2)).To(Equal([]pool.Chunk{{0, 0}, {0, 0}}))
	})
})
