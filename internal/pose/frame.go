package pose

import (
	"fmt"

	"github.com/andresmejia3/poseparser/internal/types"
	"gonum.org/v1/gonum/spatial/r3"
)

// Frame is the detection state for one video instant. A frame either carries
// a full Pose or none at all; a frame without a pose records that the
// detector found no body, which is not an error.
type Frame struct {
	frameNumber int
	sequenceID  int64
	source      string
	dims        Dimensions
	pose        *Pose
}

// Pose is the complete set of landmarks for a detected body together with the
// geometry derived from them.
type Pose struct {
	landmarks       [NumJoints]Landmark
	plumbLine       Segment
	plumbLineScaled Segment
	angles          []Angle
}

// record is a raw frame that passed validation.
type record struct {
	frameNumber int
	sequenceID  int64
	source      string
	dims        Dimensions
	landmarks   *[NumJoints]Landmark
}

// NewFrame validates a single raw frame and builds it, deriving angles when
// the frame has joint positions.
func NewFrame(raw types.RawFrame, opts ...Option) (*Frame, error) {
	cfg := newConfig(opts)
	if err := validateDefinitions(cfg.angles); err != nil {
		return nil, err
	}
	rec, ferr := parseRecord(raw)
	if ferr != nil {
		return nil, ferr
	}
	return buildFrame(rec, cfg.angles), nil
}

// FrameNumber is the 1-based position of the frame in its capture run.
func (f *Frame) FrameNumber() int { return f.frameNumber }

// SequenceID identifies the capture run.
func (f *Frame) SequenceID() int64 { return f.sequenceID }

// SequenceSource names the detector that produced the frame.
func (f *Frame) SequenceSource() string { return f.source }

// ImageDimensions is the pixel size of the source image.
func (f *Frame) ImageDimensions() Dimensions { return f.dims }

// HasJointPositions reports whether the detector found a body in this frame.
func (f *Frame) HasJointPositions() bool { return f.pose != nil }

// Pose returns the detected pose, if any.
func (f *Frame) Pose() (*Pose, bool) { return f.pose, f.pose != nil }

// Joints returns the landmarks keyed by joint. It is empty for a frame
// without joint positions.
func (f *Frame) Joints() map[Joint]Landmark {
	out := make(map[Joint]Landmark)
	if f.pose == nil {
		return out
	}
	for _, l := range f.pose.landmarks {
		out[l.Joint] = l
	}
	return out
}

// Angles returns the derived angles keyed by name. It is empty for a frame
// without joint positions.
func (f *Frame) Angles() map[string]Angle {
	out := make(map[string]Angle)
	if f.pose == nil {
		return out
	}
	for _, a := range f.pose.angles {
		out[a.Name] = a
	}
	return out
}

// GenerateAngles derives the given angle set from this frame's landmarks
// without changing the frame.
func (f *Frame) GenerateAngles(defs []AngleDefinition) ([]Angle, error) {
	if f.pose == nil {
		return nil, &FrameValidationError{FrameNumber: f.frameNumber, Err: ErrNoJointPositions}
	}
	if err := validateDefinitions(defs); err != nil {
		return nil, err
	}
	return f.pose.measure(defs), nil
}

// Landmark returns the landmark for j.
func (p *Pose) Landmark(j Joint) Landmark { return p.landmarks[j] }

// Landmarks returns every landmark in vocabulary order.
func (p *Pose) Landmarks() []Landmark {
	out := make([]Landmark, NumJoints)
	copy(out, p.landmarks[:])
	return out
}

// Angle looks up a derived angle by name.
func (p *Pose) Angle(name string) (Angle, bool) {
	for _, a := range p.angles {
		if a.Name == name {
			return a, true
		}
	}
	return Angle{}, false
}

// Angles returns the derived angles in definition order.
func (p *Pose) Angles() []Angle {
	return append([]Angle(nil), p.angles...)
}

// Segment returns the directed segment a -> b in camera space and in image
// space.
func (p *Pose) Segment(a, b Joint) (raw, scaled Segment) {
	la, lb := p.landmarks[a], p.landmarks[b]
	raw = Segment{From: la.Position(), To: lb.Position()}
	scaled = Segment{From: la.Scaled(), To: lb.Scaled()}
	return raw, scaled
}

// PlumbLine returns the body reference axis running from the shoulder
// midpoint to the hip midpoint, in camera space and in image space.
func (p *Pose) PlumbLine() (raw, scaled Segment) {
	return p.plumbLine, p.plumbLineScaled
}

func (p *Pose) measure(defs []AngleDefinition) []Angle {
	out := make([]Angle, 0, len(defs))
	for _, d := range defs {
		var first, second Segment
		switch d.Kind {
		case KindJoint:
			_, first = p.Segment(d.Vertex, d.A)
			_, second = p.Segment(d.Vertex, d.C)
		case KindPlumbLine:
			_, first = p.Segment(d.From, d.To)
			second = p.plumbLineScaled
		}
		// Direction is undefined for coincident points; such angles are left out.
		if first.Degenerate() || second.Degenerate() {
			continue
		}
		out = append(out, NewAngle(d.Name, first, second))
	}
	return out
}

func midpoint(a, b r3.Vec) r3.Vec {
	return r3.Scale(0.5, r3.Add(a, b))
}

func newPose(landmarks *[NumJoints]Landmark, defs []AngleDefinition) *Pose {
	p := &Pose{landmarks: *landmarks}
	ls, rs := p.landmarks[LeftShoulder], p.landmarks[RightShoulder]
	lh, rh := p.landmarks[LeftHip], p.landmarks[RightHip]
	p.plumbLine = Segment{
		From: midpoint(ls.Position(), rs.Position()),
		To:   midpoint(lh.Position(), rh.Position()),
	}
	p.plumbLineScaled = Segment{
		From: midpoint(ls.Scaled(), rs.Scaled()),
		To:   midpoint(lh.Scaled(), rh.Scaled()),
	}
	p.angles = p.measure(defs)
	return p
}

func buildFrame(rec record, defs []AngleDefinition) *Frame {
	f := &Frame{
		frameNumber: rec.frameNumber,
		sequenceID:  rec.sequenceID,
		source:      rec.source,
		dims:        rec.dims,
	}
	if rec.landmarks != nil {
		f.pose = newPose(rec.landmarks, defs)
	}
	return f
}

// parseRecord checks the top-level schema and, when joint positions are
// present, the full vocabulary with every coordinate key.
func parseRecord(raw types.RawFrame) (record, *FrameValidationError) {
	var rec record
	if raw.FrameNumber != nil {
		rec.frameNumber = *raw.FrameNumber
	}
	switch {
	case raw.SequenceID == nil:
		return rec, &FrameValidationError{FrameNumber: rec.frameNumber, Key: "sequence_id"}
	case raw.SequenceSource == nil:
		return rec, &FrameValidationError{FrameNumber: rec.frameNumber, Key: "sequence_source"}
	case raw.FrameNumber == nil:
		return rec, &FrameValidationError{Key: "frame_number"}
	}
	if key := missingDimension(raw.ImageDimensions); key != "" {
		return rec, &FrameValidationError{FrameNumber: rec.frameNumber, Key: key}
	}
	if raw.JointPositions == nil {
		return rec, &FrameValidationError{FrameNumber: rec.frameNumber, Key: "joint_positions"}
	}

	rec.sequenceID = *raw.SequenceID
	rec.source = *raw.SequenceSource
	rec.dims = Dimensions{Height: *raw.ImageDimensions.Height, Width: *raw.ImageDimensions.Width}

	if rec.frameNumber < 1 {
		return rec, &FrameValidationError{
			FrameNumber: rec.frameNumber,
			Reason:      fmt.Sprintf("frame_number must be >= 1, got %d", rec.frameNumber),
		}
	}
	if rec.dims.Height <= 0 || rec.dims.Width <= 0 {
		return rec, &FrameValidationError{
			FrameNumber: rec.frameNumber,
			Reason:      fmt.Sprintf("image_dimensions must be positive, got %dx%d", rec.dims.Width, rec.dims.Height),
		}
	}

	if len(raw.JointPositions) == 0 {
		return rec, nil
	}

	var landmarks [NumJoints]Landmark
	for _, j := range Joints() {
		rj, ok := lookupJoint(raw.JointPositions, j)
		if !ok {
			return rec, &FrameValidationError{FrameNumber: rec.frameNumber, Joint: j.String()}
		}
		l, err := NewLandmark(j, LandmarkRecord{RawJoint: rj, ImageDimensions: raw.ImageDimensions})
		if err != nil {
			lerr := err.(*LandmarkValidationError)
			return rec, &FrameValidationError{FrameNumber: rec.frameNumber, Joint: lerr.Joint, Key: lerr.Key, Err: lerr}
		}
		landmarks[j] = l
	}
	rec.landmarks = &landmarks
	return rec, nil
}

func lookupJoint(positions map[string]types.RawJoint, j Joint) (types.RawJoint, bool) {
	if rj, ok := positions[j.String()]; ok {
		return rj, true
	}
	for _, alias := range aliasesOf(j) {
		if rj, ok := positions[alias]; ok {
			return rj, true
		}
	}
	return types.RawJoint{}, false
}

func validateDefinitions(defs []AngleDefinition) error {
	seen := make(map[string]bool, len(defs))
	for _, d := range defs {
		if err := d.Validate(); err != nil {
			return err
		}
		if seen[d.Name] {
			return fmt.Errorf("angle %s is defined more than once", d.Name)
		}
		seen[d.Name] = true
	}
	return nil
}
