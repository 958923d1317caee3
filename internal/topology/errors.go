package topology

import (
	"errors"
	"fmt"
)

// ErrMalformedTopology matches every MalformedTopologyError via errors.Is
var ErrMalformedTopology = errors.New("malformed topology")

var errMissingField = errors.New("missing required field")

// MalformedTopologyError reports a map dataset that does not have the shape
// needed to derive stations and routes. Segment is -1 when the document
// itself is not a list of segments.
type MalformedTopologyError struct {
	Segment int
	Field   string
	Err     error
}

func (e *MalformedTopologyError) Error() string {
	switch {
	case e.Segment < 0:
		return fmt.Sprintf("malformed topology: %v", e.Err)
	case e.Field == "":
		return fmt.Sprintf("malformed topology: segment %d: %v", e.Segment, e.Err)
	default:
		return fmt.Sprintf("malformed topology: segment %d: %s: %v", e.Segment, e.Field, e.Err)
	}
}

func (e *MalformedTopologyError) Unwrap() error {
	return e.Err
}

func (e *MalformedTopologyError) Is(target error) bool {
	return target == ErrMalformedTopology
}

func malformed(segment int, field string, err error) error {
	return &MalformedTopologyError{Segment: segment, Field: field, Err: err}
}
