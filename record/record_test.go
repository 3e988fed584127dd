package record_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/memfoot/record"
)

var _ = Describe("Record", func() {
	It("should encode to 16 little-endian bytes", func() {
		rec := record.Record{Address: 0x1122334455667788, Length: 8, ID: -3}

		buf, err := rec.MarshalBinary()
		Expect(err).NotTo(HaveOccurred())
		Expect(buf).To(HaveLen(record.Size))
		Expect(buf[0]).To(Equal(byte(0x88)))
		Expect(buf[7]).To(Equal(byte(0x11)))
		Expect(buf[8]).To(Equal(byte(8)))
		// -3 as a two's complement int32
		Expect(buf[12:16]).To(Equal([]byte{0xFD, 0xFF, 0xFF, 0xFF}))
	})

	It("should decode what it encodes", func() {
		rec := record.Store(0x7FFF0000, 16, 12)

		decoded, err := record.Unmarshal(rec.AppendBinary(nil))
		Expect(err).NotTo(HaveOccurred())
		Expect(decoded).To(Equal(rec))
		Expect(decoded.ID).To(Equal(int32(-12)))
	})

	It("should reject a short buffer", func() {
		_, err := record.Unmarshal(make([]byte, 15))
		Expect(err).To(HaveOccurred())
	})

	It("should format as address, length, id", func() {
		Expect(record.Load(4096, 8, 2).String()).To(Equal("4096, 8, 2"))
	})

	It("should carry the cost in a terminator's address", func() {
		rec := record.Terminator(42)
		Expect(rec.Address).To(Equal(uint64(42)))
		Expect(rec.Length).To(BeZero())
		Expect(rec.ID).To(Equal(record.TerminatorID))
	})
})
