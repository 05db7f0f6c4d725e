package pose

import (
	"github.com/andresmejia3/poseparser/internal/types"
	"gonum.org/v1/gonum/spatial/r3"
)

// Dimensions is the pixel size of the source image.
type Dimensions struct {
	Height int `json:"height"`
	Width  int `json:"width"`
}

// LandmarkRecord is the input to NewLandmark: one raw joint plus the image
// dimensions of its frame.
type LandmarkRecord struct {
	types.RawJoint
	ImageDimensions *types.ImageDimensions
}

// Landmark is one named anatomical point for one frame. X, Y and Z are the
// detector's normalized camera-space values; the *Normalized fields are the
// same point rescaled to image pixels.
type Landmark struct {
	Joint           Joint
	X               float64
	Y               float64
	Z               float64
	XNormalized     float64
	YNormalized     float64
	ZNormalized     float64
	ImageDimensions Dimensions
}

// coordinateKeys lists the keys every joint record must carry, in check order.
var coordinateKeys = [...]string{"x", "y", "z", "x_normalized", "y_normalized", "z_normalized"}

// missingCoordinate returns the first absent coordinate key of j, or "".
func missingCoordinate(j types.RawJoint) string {
	for i, v := range [...]*float64{j.X, j.Y, j.Z, j.XNormalized, j.YNormalized, j.ZNormalized} {
		if v == nil {
			return coordinateKeys[i]
		}
	}
	return ""
}

// missingDimension returns the first absent image dimension key, or "".
func missingDimension(d *types.ImageDimensions) string {
	switch {
	case d == nil:
		return "image_dimensions"
	case d.Height == nil:
		return "image_dimensions.height"
	case d.Width == nil:
		return "image_dimensions.width"
	}
	return ""
}

// NewLandmark validates rec and builds the landmark for joint. Coordinate
// magnitudes are not range checked.
func NewLandmark(joint Joint, rec LandmarkRecord) (Landmark, error) {
	if key := missingCoordinate(rec.RawJoint); key != "" {
		return Landmark{}, &LandmarkValidationError{Joint: joint.String(), Key: key}
	}
	if key := missingDimension(rec.ImageDimensions); key != "" {
		return Landmark{}, &LandmarkValidationError{Joint: joint.String(), Key: key}
	}
	return Landmark{
		Joint:       joint,
		X:           *rec.X,
		Y:           *rec.Y,
		Z:           *rec.Z,
		XNormalized: *rec.XNormalized,
		YNormalized: *rec.YNormalized,
		ZNormalized: *rec.ZNormalized,
		ImageDimensions: Dimensions{
			Height: *rec.ImageDimensions.Height,
			Width:  *rec.ImageDimensions.Width,
		},
	}, nil
}

// Name returns the vocabulary name of the landmark.
func (l Landmark) Name() string { return l.Joint.String() }

// Position returns the camera-space coordinates.
func (l Landmark) Position() r3.Vec { return r3.Vec{X: l.X, Y: l.Y, Z: l.Z} }

// Scaled returns the image-scaled coordinates.
func (l Landmark) Scaled() r3.Vec {
	return r3.Vec{X: l.XNormalized, Y: l.YNormalized, Z: l.ZNormalized}
}
