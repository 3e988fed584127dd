package footprint

import "fmt"

// FormatError reports input that does not follow the trace encoding. The
// analyzer recovers from it locally.
type FormatError struct {
	Reason string
}

func (e *FormatError) Error() string {
	return "format error: " + e.Reason
}

// InconsistentRangeError reports begin and end observations of an indvar
// site that disagree on the element length.
type InconsistentRangeError struct {
	SiteID      int32
	BeginLength uint32
	EndLength   uint32
}

func (e *InconsistentRangeError) Error() string {
	return fmt.Sprintf("inconsistent range for site %d: begin length %d, end length %d",
		e.SiteID, e.BeginLength, e.EndLength)
}
