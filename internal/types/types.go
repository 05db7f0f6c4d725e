package types

import "encoding/json"

// FrameTask represents a single decoded video frame sent to a worker for processing
type FrameTask struct {
	Index int
	Data  []byte
}

// ImageDimensions is the pixel size of the frame a detection came from.
// Pointer fields let validation tell a missing key apart from a zero value.
type ImageDimensions struct {
	Height *int `json:"height"`
	Width  *int `json:"width"`
}

// RawJoint is one landmark as written by the detector.
type RawJoint struct {
	X           *float64 `json:"x"`
	Y           *float64 `json:"y"`
	Z           *float64 `json:"z"`
	XNormalized *float64 `json:"x_normalized"`
	YNormalized *float64 `json:"y_normalized"`
	ZNormalized *float64 `json:"z_normalized"`
}

// RawFrame is the per-frame record produced by the detector/decoder.
// An empty (non-nil) JointPositions map means no body was found in the frame;
// a nil map means the key was absent. A joint_positions key that is present
// but null decodes to an empty map.
type RawFrame struct {
	SequenceID      *int64              `json:"sequence_id"`
	SequenceSource  *string             `json:"sequence_source"`
	FrameNumber     *int                `json:"frame_number"`
	ImageDimensions *ImageDimensions    `json:"image_dimensions"`
	JointPositions  map[string]RawJoint `json:"joint_positions"`
}

// UnmarshalJSON decodes a frame record, keeping a present null joint_positions
// apart from an absent one.
func (f *RawFrame) UnmarshalJSON(data []byte) error {
	type plain RawFrame
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	if p.JointPositions == nil {
		var keys map[string]json.RawMessage
		if err := json.Unmarshal(data, &keys); err != nil {
			return err
		}
		if _, ok := keys["joint_positions"]; ok {
			p.JointPositions = map[string]RawJoint{}
		}
	}
	*f = RawFrame(p)
	return nil
}

// Point holds the camera-space output of the pose model for one landmark (0-1 range)
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// DetectionResult matches the JSON structure coming back from the Python pose worker
type DetectionResult struct {
	Height    int     `json:"height"`
	Width     int     `json:"width"`
	Landmarks []Point `json:"landmarks"` // empty when no body was found
}

// ErrorResult captures the error object returned by Python on failure
type ErrorResult struct {
	Error string `json:"error"`
}

// NewDimensions builds a fully populated ImageDimensions.
func NewDimensions(height, width int) *ImageDimensions {
	return &ImageDimensions{Height: &height, Width: &width}
}

// NewRawJoint builds a fully populated RawJoint.
func NewRawJoint(x, y, z, xn, yn, zn float64) RawJoint {
	return RawJoint{X: &x, Y: &y, Z: &z, XNormalized: &xn, YNormalized: &yn, ZNormalized: &zn}
}

// NewRawFrame builds a RawFrame with every top-level key present.
// A nil joints map is replaced by an empty one (no detection).
func NewRawFrame(sequenceID int64, source string, frameNumber, height, width int, joints map[string]RawJoint) RawFrame {
	if joints == nil {
		joints = map[string]RawJoint{}
	}
	return RawFrame{
		SequenceID:      &sequenceID,
		SequenceSource:  &source,
		FrameNumber:     &frameNumber,
		ImageDimensions: NewDimensions(height, width),
		JointPositions:  joints,
	}
}
