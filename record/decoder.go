package record

import (
	"fmt"
	"math"
)

// Kind identifies what a decoded record means to the analyzer.
type Kind uint8

// Event kinds.
const (
	KindUnknown Kind = iota
	KindTerminator
	KindDelimiter
	KindIndvar // Begin or end observation of a strided traversal
	KindLoad
	KindStore
)

var kindNames = [...]string{
	KindUnknown:    "unknown",
	KindTerminator: "terminator",
	KindDelimiter:  "delimiter",
	KindIndvar:     "indvar",
	KindLoad:       "load",
	KindStore:      "store",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// Event is a decoded record.
type Event struct {
	Kind    Kind
	SiteID  int32  // Unsigned site identity (always > 0 for accesses)
	Address uint64 // Accessed address, or the cost for a terminator
	Length  uint32 // Access length in bytes
	Stride  int32  // Stride of an indvar site, in elements
	Raw     Record // The record this event was decoded from
}

// StrideTable reports the stride of strided traversal sites.
type StrideTable interface {
	Stride(site int32) (int32, bool)
}

// DecodeError reports a record whose site identity is outside the
// assignable range.
type DecodeError struct {
	Record Record
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("reserved site id %d in record {%s}", e.Record.ID, e.Record)
}

// Decoder turns records into events.
type Decoder struct {
	strides StrideTable
}

// NewDecoder creates a decoder. A nil table means no site is strided.
func NewDecoder(strides StrideTable) *Decoder {
	return &Decoder{strides: strides}
}

// Decode decodes a single record. The first matching rule wins: terminator,
// delimiter, indvar site, load, store.
func (d *Decoder) Decode(rec Record) (*Event, error) {
	ev := &Event{
		Address: rec.Address,
		Length:  rec.Length,
		Raw:     rec,
	}

	switch {
	case rec.ID == TerminatorID:
		ev.Kind = KindTerminator
		return ev, nil
	case rec.ID == DelimiterID:
		ev.Kind = KindDelimiter
		return ev, nil
	case !isSiteID(rec.ID):
		return nil, &DecodeError{Record: rec}
	}

	site := rec.ID
	if site < 0 {
		site = -site
	}
	ev.SiteID = site

	if d.strides != nil {
		if stride, ok := d.strides.Stride(site); ok {
			ev.Kind = KindIndvar
			ev.Stride = stride
			return ev, nil
		}
	}

	if rec.ID > 0 {
		ev.Kind = KindLoad
	} else {
		ev.Kind = KindStore
	}
	return ev, nil
}

// isSiteID checks that id has a magnitude in [1, MaxSiteID].
// MinInt32 has no positive counterpart and is rejected first.
func isSiteID(id int32) bool {
	if id == math.MinInt32 {
		return false
	}
	if id < 0 {
		id = -id
	}
	return id >= 1 && id <= MaxSiteID
}
