package footprint_test

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/memfoot/footprint"
)

func byteRange(lo, hi uint64) []uint64 {
	var addrs []uint64
	for a := lo; a <= hi; a++ {
		addrs = append(addrs, a)
	}
	return addrs
}

var _ = Describe("ArrayRange", func() {
	expand := func(r footprint.ArrayRange) ([]uint64, error) {
		var marked []uint64
		err := r.Expand(footprint.DefaultMaxRangeBytes, func(addr uint64) {
			marked = append(marked, addr)
		})
		return marked, err
	}

	closed := func(begin, end uint64, length uint32, stride int32) footprint.ArrayRange {
		return footprint.ArrayRange{
			SiteID:        1,
			Begin:         begin,
			End:           end,
			ElementLength: length,
			Stride:        stride,
			State:         footprint.RangeClosed,
		}
	}

	It("should touch each element and skip the stride gap", func() {
		marked, err := expand(closed(0, 23, 8, 2))
		Expect(err).NotTo(HaveOccurred())
		Expect(marked).To(Equal(append(byteRange(0, 7), byteRange(16, 23)...)))
	})

	It("should produce the same set for the mirrored negative stride", func() {
		marked, err := expand(closed(16, 0, 8, -2))
		Expect(err).NotTo(HaveOccurred())
		Expect(marked).To(Equal(append(byteRange(0, 7), byteRange(16, 23)...)))
	})

	It("should cover a dense traversal contiguously", func() {
		marked, err := expand(closed(0x1000, 0x1018, 8, 1))
		Expect(err).NotTo(HaveOccurred())
		Expect(marked).To(Equal(byteRange(0x1000, 0x101F)))
	})

	DescribeTable("invalid ranges",
		func(r footprint.ArrayRange) {
			marked, err := expand(r)
			var formatErr *footprint.FormatError
			Expect(errors.As(err, &formatErr)).To(BeTrue())
			Expect(marked).To(BeEmpty())
		},
		Entry("zero stride", closed(0, 64, 8, 0)),
		Entry("zero element length", closed(0, 64, 0, 1)),
		Entry("empty span", closed(64, 64, 8, 1)),
		Entry("span shorter than one stride", closed(0, 1, 8, 2)),
		Entry("direction disagrees with stride", closed(64, 0, 8, 1)),
	)

	It("should refuse a span above the limit", func() {
		r := closed(0, 1<<20, 8, 1)
		called := false
		err := r.Expand(1<<10, func(uint64) { called = true })
		Expect(err).To(HaveOccurred())
		Expect(called).To(BeFalse())
	})

	It("should count element length against the limit", func() {
		r := closed(0x1000, 0x1010, 1<<20, 1)
		marks := 0
		err := r.Expand(1<<10, func(uint64) { marks++ })
		var formatErr *footprint.FormatError
		Expect(errors.As(err, &formatErr)).To(BeTrue())
		Expect(marks).To(BeZero())
	})

	It("should refuse a 4 GiB element without walking it", func() {
		r := closed(0x1000, 0x1010, 0xFFFFFFFF, 1)
		marks := 0
		err := r.Expand(footprint.DefaultMaxRangeBytes, func(uint64) { marks++ })
		Expect(err).To(HaveOccurred())
		Expect(marks).To(BeZero())
	})

	It("should accept a range that exactly fills the limit", func() {
		r := closed(0, 24, 8, 1)
		marks := 0
		Expect(r.Expand(32, func(uint64) { marks++ })).To(Succeed())
		Expect(marks).To(Equal(32))
	})

	It("should not expand a range that was only opened", func() {
		r := footprint.ArrayRange{SiteID: 1, Begin: 0, ElementLength: 8, State: footprint.RangeOpened}
		marked, err := expand(r)
		Expect(err).NotTo(HaveOccurred())
		Expect(marked).To(BeEmpty())
	})
})
