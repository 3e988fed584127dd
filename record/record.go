// Package record provides the trace record wire format and decoding.
package record

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Size is the size in bytes of one encoded record.
const Size = 16

// Reserved site identifiers.
const (
	// TerminatorID ends the stream. Its address field carries the loop cost.
	TerminatorID int32 = 0
	// DelimiterID separates two loop iterations.
	DelimiterID int32 = math.MaxInt32
	// MaxSiteID is the largest magnitude assigned to an access site.
	MaxSiteID int32 = math.MaxInt32 - 3
)

// Record is one fixed-size trace entry written by the instrumented program.
type Record struct {
	Address uint64 // Accessed address, or the loop cost for a terminator
	Length  uint32 // Access length in bytes
	ID      int32  // Site identity; the sign encodes read (+) or write (-)
}

// Unmarshal decodes a record from the first Size bytes of buf.
func Unmarshal(buf []byte) (Record, error) {
	if len(buf) < Size {
		return Record{}, fmt.Errorf("short record: got %d bytes, expected %d", len(buf), Size)
	}

	return Record{
		Address: binary.LittleEndian.Uint64(buf[0:8]),
		Length:  binary.LittleEndian.Uint32(buf[8:12]),
		ID:      int32(binary.LittleEndian.Uint32(buf[12:16])),
	}, nil
}

// AppendBinary appends the little-endian encoding of r to buf.
func (r Record) AppendBinary(buf []byte) []byte {
	buf = binary.LittleEndian.AppendUint64(buf, r.Address)
	buf = binary.LittleEndian.AppendUint32(buf, r.Length)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(r.ID))
	return buf
}

// MarshalBinary returns the 16-byte encoding of r.
func (r Record) MarshalBinary() ([]byte, error) {
	return r.AppendBinary(make([]byte, 0, Size)), nil
}

// String formats the record the way the debug echo prints it.
func (r Record) String() string {
	return fmt.Sprintf("%d, %d, %d", r.Address, r.Length, r.ID)
}

// Terminator returns a terminator record carrying the given loop cost.
func Terminator(cost uint64) Record {
	return Record{Address: cost, ID: TerminatorID}
}

// Delimiter returns an iteration delimiter record.
func Delimiter() Record {
	return Record{ID: DelimiterID}
}

// Load returns a read record for the given site.
func Load(addr uint64, length uint32, site int32) Record {
	return Record{Address: addr, Length: length, ID: site}
}

// Store returns a write record for the given site.
func Store(addr uint64, length uint32, site int32) Record {
	return Record{Address: addr, Length: length, ID: -site}
}
