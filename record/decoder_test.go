package record_test

import (
	"errors"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/memfoot/record"
)

type strideTable map[int32]int32

func (t strideTable) Stride(site int32) (int32, bool) {
	s, ok := t[site]
	return s, ok
}

var _ = Describe("Decoder", func() {
	var decoder *record.Decoder

	BeforeEach(func() {
		decoder = record.NewDecoder(strideTable{7: 2, 9: -1})
	})

	decode := func(rec record.Record) *record.Event {
		ev, err := decoder.Decode(rec)
		Expect(err).NotTo(HaveOccurred())
		return ev
	}

	It("should decode id 0 as a terminator", func() {
		ev := decode(record.Terminator(42))
		Expect(ev.Kind).To(Equal(record.KindTerminator))
		Expect(ev.Address).To(Equal(uint64(42)))
	})

	It("should decode MaxInt32 as a delimiter", func() {
		ev := decode(record.Record{ID: math.MaxInt32})
		Expect(ev.Kind).To(Equal(record.KindDelimiter))
	})

	It("should decode a positive id as a load", func() {
		ev := decode(record.Load(0x1000, 8, 3))
		Expect(ev.Kind).To(Equal(record.KindLoad))
		Expect(ev.SiteID).To(Equal(int32(3)))
		Expect(ev.Length).To(Equal(uint32(8)))
	})

	It("should decode a negative id as a store with a positive site", func() {
		ev := decode(record.Store(0x1000, 4, 3))
		Expect(ev.Kind).To(Equal(record.KindStore))
		Expect(ev.SiteID).To(Equal(int32(3)))
	})

	Context("with a strided site", func() {
		It("should decode a read of the site as indvar", func() {
			ev := decode(record.Load(0x2000, 8, 7))
			Expect(ev.Kind).To(Equal(record.KindIndvar))
			Expect(ev.SiteID).To(Equal(int32(7)))
			Expect(ev.Stride).To(Equal(int32(2)))
		})

		It("should decode a write of the site as indvar too", func() {
			ev := decode(record.Store(0x2000, 8, 9))
			Expect(ev.Kind).To(Equal(record.KindIndvar))
			Expect(ev.SiteID).To(Equal(int32(9)))
			Expect(ev.Stride).To(Equal(int32(-1)))
		})
	})

	It("should treat every site as scalar without a stride table", func() {
		ev, err := record.NewDecoder(nil).Decode(record.Load(0x2000, 8, 7))
		Expect(err).NotTo(HaveOccurred())
		Expect(ev.Kind).To(Equal(record.KindLoad))
	})

	DescribeTable("reserved ids",
		func(id int32) {
			_, err := decoder.Decode(record.Record{Address: 1, Length: 8, ID: id})
			var decodeErr *record.DecodeError
			Expect(errors.As(err, &decodeErr)).To(BeTrue())
			Expect(decodeErr.Record.ID).To(Equal(id))
		},
		Entry("MaxInt32-1", int32(math.MaxInt32-1)),
		Entry("MaxInt32-2", int32(math.MaxInt32-2)),
		Entry("-(MaxInt32-1)", int32(-(math.MaxInt32 - 1))),
		Entry("-MaxInt32", int32(-math.MaxInt32)),
		Entry("MinInt32", int32(math.MinInt32)),
	)

	It("should accept the largest assignable site", func() {
		ev := decode(record.Record{Address: 8, Length: 8, ID: record.MaxSiteID})
		Expect(ev.Kind).To(Equal(record.KindLoad))
		ev = decode(record.Record{Address: 8, Length: 8, ID: -record.MaxSiteID})
		Expect(ev.Kind).To(Equal(record.KindStore))
	})

	It("should name its kinds", func() {
		Expect(record.KindIndvar.String()).To(Equal("indvar"))
		Expect(record.Kind(99).String()).To(Equal("kind(99)"))
	})
})
