package cachemodel_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/memfoot/analysis"
	"github.com/sarchlab/memfoot/cachemodel"
	"github.com/sarchlab/memfoot/footprint"
)

var _ = Describe("Replayer", func() {
	var replayer *cachemodel.Replayer

	BeforeEach(func() {
		l2 := cachemodel.Config{
			Size:          16 * 1024,
			Associativity: 4,
			BlockSize:     64,
			HitLatency:    5,
			MissLatency:   50,
		}
		replayer = cachemodel.NewReplayer(smallConfig(), l2)
	})

	iteration := func(index uint64, io uint64, addrs ...uint64) *analysis.IterationResult {
		return &analysis.IterationResult{
			Index:      index,
			WorkingSet: footprint.WorkingSet{Addrs: addrs, IO: io},
		}
	}

	It("should replay a cold iteration through both levels", func() {
		replayer.ObserveIteration(iteration(1, 2, 0x1000, 0x1008, 0x1040))

		stats := replayer.Iterations()
		Expect(stats).To(HaveLen(1))
		Expect(stats[0].Accesses).To(Equal(uint64(3)))
		Expect(stats[0].L1Misses).To(Equal(uint64(2)))
		Expect(stats[0].L2Misses).To(Equal(uint64(2)))
		// L1 miss latency plus L2 miss latency for each cold block
		Expect(stats[0].Cycles).To(Equal(uint64(10 + 50 + 1 + 10 + 50)))
		Expect(stats[0].Unaddressable).To(Equal(uint64(2)))
	})

	It("should hit in L1 when an iteration reuses its predecessor's blocks", func() {
		replayer.ObserveIteration(iteration(1, 0, 0x1000, 0x1008, 0x1040))
		replayer.ObserveIteration(iteration(2, 0, 0x1000, 0x1008, 0x1040))

		stats := replayer.Iterations()
		Expect(stats[1].L1Misses).To(BeZero())
		Expect(stats[1].Cycles).To(Equal(uint64(3)))

		replayer.ObserveReport(&analysis.Report{})
		summary := replayer.Summary()
		Expect(summary.Iterations).To(Equal(uint64(2)))
		Expect(summary.Accesses).To(Equal(uint64(6)))
		Expect(summary.L1.Misses).To(Equal(uint64(2)))
		Expect(summary.L2.Reads).To(Equal(uint64(2)))
		Expect(summary.Cycles).To(Equal(uint64(124)))
	})

	It("should fall back to L2 after an L1 eviction", func() {
		h := replayer.Hierarchy()
		for _, addr := range []uint64{0x0000, 0x0400, 0x0800, 0x0C00, 0x1000} {
			h.Read(addr)
		}

		Expect(h.L1.Contains(0x0000)).To(BeFalse())
		Expect(h.Read(0x0000)).To(Equal(uint64(10 + 5)))
	})

	It("should replay store-first words as writes", func() {
		replayer.ObserveIteration(&analysis.IterationResult{
			Index: 1,
			WorkingSet: footprint.WorkingSet{
				Addrs:  []uint64{0x1000},
				Stores: []uint64{0x2000, 0x2008},
			},
		})

		stats := replayer.Iterations()[0]
		Expect(stats.Accesses).To(Equal(uint64(3)))
		Expect(stats.Stores).To(Equal(uint64(2)))

		summary := replayer.Summary()
		Expect(summary.Stores).To(Equal(uint64(2)))
		Expect(summary.L1.Reads).To(Equal(uint64(1)))
		Expect(summary.L1.Writes).To(Equal(uint64(2)))
		// 0x2008 shares the block 0x2000 allocated.
		Expect(summary.L1.Misses).To(Equal(uint64(2)))
	})

	It("should write dirty L1 victims back to L2", func() {
		h := replayer.Hierarchy()
		for _, addr := range []uint64{0x0000, 0x0400, 0x0800, 0x0C00} {
			h.Write(addr)
		}
		Expect(h.L2.Stats().Writes).To(BeZero())

		// Evicts the dirty block at 0x0000, which L2 already holds.
		Expect(h.Read(0x1000)).To(Equal(uint64(10 + 50)))
		Expect(h.L1.Stats().Writebacks).To(Equal(uint64(1)))
		Expect(h.L2.Stats().Writes).To(Equal(uint64(1)))
		Expect(h.L2.Stats().Hits).To(Equal(uint64(1)))
	})
})
