package worker

import (
	"fmt"

	"github.com/andresmejia3/poseparser/internal/pose"
	"github.com/andresmejia3/poseparser/internal/types"
)

// ToRawFrame converts one worker detection into the per-frame record the pose
// package validates. Landmarks are matched to the vocabulary by index. The
// image-scaled coordinates are x*width, y*height and z*width, since the model
// reports z on roughly the same scale as x.
func ToRawFrame(res types.DetectionResult, sequenceID int64, source string, frameNumber int) (types.RawFrame, error) {
	if res.Height <= 0 || res.Width <= 0 {
		return types.RawFrame{}, fmt.Errorf("frame %d: invalid image dimensions %dx%d", frameNumber, res.Width, res.Height)
	}

	joints := make(map[string]types.RawJoint, len(res.Landmarks))
	if len(res.Landmarks) > 0 {
		if len(res.Landmarks) != pose.NumJoints {
			return types.RawFrame{}, fmt.Errorf("frame %d: expected %d landmarks, got %d", frameNumber, pose.NumJoints, len(res.Landmarks))
		}
		w, h := float64(res.Width), float64(res.Height)
		for i, name := range pose.Vocabulary() {
			p := res.Landmarks[i]
			joints[name] = types.NewRawJoint(p.X, p.Y, p.Z, p.X*w, p.Y*h, p.Z*w)
		}
	}

	return types.NewRawFrame(sequenceID, source, frameNumber, res.Height, res.Width, joints), nil
}
