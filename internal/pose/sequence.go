package pose

import (
	"fmt"

	"github.com/andresmejia3/poseparser/internal/types"
)

// Sequence is the ordered, validated set of frame records for one capture
// run. The input order is the temporal order.
//
// A Sequence is not safe for concurrent use; give each instance to a single
// goroutine. The frames it produces are immutable and may be shared.
type Sequence struct {
	records []record
	angles  []AngleDefinition
	frames  []*Frame
}

// NewSequence validates every entry before anything is materialized. The
// first invalid entry fails the whole sequence with a *SequenceValidationError.
// Frame numbers must be strictly increasing.
func NewSequence(data []types.RawFrame, opts ...Option) (*Sequence, error) {
	cfg := newConfig(opts)
	if err := validateDefinitions(cfg.angles); err != nil {
		return nil, err
	}

	records := make([]record, 0, len(data))
	prev := 0
	for i, raw := range data {
		rec, ferr := parseRecord(raw)
		if ferr != nil {
			return nil, &SequenceValidationError{Index: i, Key: ferr.Key, Joint: ferr.Joint, Err: ferr}
		}
		if rec.frameNumber <= prev {
			return nil, &SequenceValidationError{
				Index: i,
				Key:   "frame_number",
				Err: &FrameValidationError{
					FrameNumber: rec.frameNumber,
					Reason:      fmt.Sprintf("frame_number %d does not follow %d", rec.frameNumber, prev),
				},
			}
		}
		prev = rec.frameNumber
		records = append(records, rec)
	}
	return &Sequence{records: records, angles: cfg.angles}, nil
}

// Len returns the number of validated entries.
func (s *Sequence) Len() int { return len(s.records) }

// GenerateFrames materializes one Frame per validated entry, in order. Entries
// are not validated again. Once frames exist, later calls return them as-is.
func (s *Sequence) GenerateFrames() []*Frame {
	if len(s.frames) == 0 && len(s.records) > 0 {
		s.frames = make([]*Frame, 0, len(s.records))
		for _, rec := range s.records {
			s.frames = append(s.frames, buildFrame(rec, s.angles))
		}
	}
	return s.Frames()
}

// Frames returns the frames produced by GenerateFrames, or nil before it runs.
func (s *Sequence) Frames() []*Frame {
	if s.frames == nil {
		return nil
	}
	return append([]*Frame(nil), s.frames...)
}

// Detected counts the entries in which a body was found.
func (s *Sequence) Detected() int {
	n := 0
	for _, rec := range s.records {
		if rec.landmarks != nil {
			n++
		}
	}
	return n
}
