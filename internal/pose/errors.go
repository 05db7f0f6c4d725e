package pose

import (
	"errors"
	"fmt"
)

// ErrNoJointPositions is returned when geometry is requested from a frame in
// which the detector found no body.
var ErrNoJointPositions = errors.New("no joint positions to generate angles from")

// LandmarkValidationError reports a landmark record missing a coordinate or
// image dimension key.
type LandmarkValidationError struct {
	Joint string
	Key   string
}

func (e *LandmarkValidationError) Error() string {
	return fmt.Sprintf("landmark %s: %s is missing from landmark data", e.Joint, e.Key)
}

// FrameValidationError reports a malformed frame record. Joint and Key are set
// when the failure is attributable to them.
type FrameValidationError struct {
	FrameNumber int
	Joint       string
	Key         string
	Reason      string
	Err         error
}

func (e *FrameValidationError) Error() string {
	prefix := "frame"
	if e.FrameNumber > 0 {
		prefix = fmt.Sprintf("frame %d", e.FrameNumber)
	}
	switch {
	case e.Joint != "" && e.Key != "":
		return fmt.Sprintf("%s: %s missing from %s position data", prefix, e.Key, e.Joint)
	case e.Joint != "":
		return fmt.Sprintf("%s: %s missing from joint positions", prefix, e.Joint)
	case e.Key != "":
		return fmt.Sprintf("%s: %s is missing from frame data", prefix, e.Key)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", prefix, e.Err)
	}
	return fmt.Sprintf("%s: %s", prefix, e.Reason)
}

func (e *FrameValidationError) Unwrap() error { return e.Err }

// SequenceValidationError wraps the first invalid entry of a sequence with its
// position. Index is 0-based into the input list.
type SequenceValidationError struct {
	Index int
	Key   string
	Joint string
	Err   error
}

func (e *SequenceValidationError) Error() string {
	switch {
	case e.Err != nil:
		return fmt.Sprintf("sequence entry %d: validation error - %v", e.Index, e.Err)
	case e.Joint != "":
		return fmt.Sprintf("sequence entry %d: validation error - %s is missing from joint position data", e.Index, e.Joint)
	}
	return fmt.Sprintf("sequence entry %d: validation error - %s is missing from frame data", e.Index, e.Key)
}

func (e *SequenceValidationError) Unwrap() error { return e.Err }
