package footprint

import "fmt"

// RangeState is the pairing state of an indvar site within one iteration.
type RangeState uint8

// Range states. A site moves Empty -> Opened on its first observation and
// Opened -> Closed on the second.
const (
	RangeEmpty RangeState = iota
	RangeOpened
	RangeClosed
	RangeInconsistent
)

// DefaultMaxRangeBytes bounds the span a single range may expand to.
const DefaultMaxRangeBytes uint64 = 1 << 28

// ArrayRange is a strided traversal bracketed by a begin and an end
// observation of the same site.
type ArrayRange struct {
	SiteID        int32
	Begin         uint64
	End           uint64
	ElementLength uint32
	Stride        int32 // In elements; the sign gives the walk direction
	State         RangeState
}

// observe feeds one observation of the site into the state machine.
func (r *ArrayRange) observe(addr uint64, length uint32, stride int32) error {
	switch r.State {
	case RangeEmpty:
		r.Begin = addr
		r.ElementLength = length
		r.State = RangeOpened
	case RangeOpened:
		if length != r.ElementLength {
			r.State = RangeInconsistent
			return &InconsistentRangeError{
				SiteID:      r.SiteID,
				BeginLength: r.ElementLength,
				EndLength:   length,
			}
		}
		r.End = addr
		r.Stride = stride
		r.State = RangeClosed
	case RangeClosed:
		// At most begin and end are expected per iteration; keep the latest end.
		r.End = addr
	}
	return nil
}

// Expand calls mark for every byte covered by the traversal, from the lowest
// address upwards. Each element covers ElementLength bytes and consecutive
// elements start ElementLength*|Stride| bytes apart. A range that is not
// closed, or whose span is invalid or would mark more than maxBytes bytes, is
// not expanded and a FormatError is returned.
func (r *ArrayRange) Expand(maxBytes uint64, mark func(addr uint64)) error {
	if r.State != RangeClosed {
		return nil
	}
	if r.Stride == 0 {
		return &FormatError{Reason: fmt.Sprintf("site %d: zero stride", r.SiteID)}
	}
	if r.ElementLength == 0 {
		return &FormatError{Reason: fmt.Sprintf("site %d: zero element length", r.SiteID)}
	}

	begin, end, stride := r.Begin, r.End, int64(r.Stride)
	if int64(end-begin)/stride <= 0 {
		return &FormatError{Reason: fmt.Sprintf(
			"site %d: non-positive span from 0x%x to 0x%x with stride %d",
			r.SiteID, r.Begin, r.End, r.Stride)}
	}
	if stride < 0 {
		begin, end, stride = end, begin, -stride
	}
	elemLen := uint64(r.ElementLength)
	// The last element starts at or before end, so the walk marks at most
	// end-begin+elemLen bytes.
	span := end - begin + elemLen
	if end-begin > maxBytes || span > maxBytes || span < elemLen {
		return &FormatError{Reason: fmt.Sprintf(
			"site %d: span of %d bytes with %d-byte elements exceeds limit %d",
			r.SiteID, end-begin, elemLen, maxBytes)}
	}

	step := elemLen * uint64(stride)
	for start := begin; start <= end; start += step {
		for off := uint64(0); off < elemLen; off++ {
			mark(start + off)
		}
		if start+step < start {
			break
		}
	}
	return nil
}
