// Package testutil provides synthetic detector output for tests.
package testutil

import (
	"github.com/andresmejia3/poseparser/internal/types"
)

const (
	// Width and Height of the synthetic image. Square so image-scaled and
	// camera-space angles agree.
	Width  = 1000
	Height = 1000
)

// upright places the torso and limbs of a symmetric standing body, arms
// hanging straight down. Values are (x, y) in camera space, z is 0.
var upright = map[string][2]float64{
	"left_shoulder":  {0.60, 0.30},
	"right_shoulder": {0.40, 0.30},
	"left_elbow":     {0.60, 0.45},
	"right_elbow":    {0.40, 0.45},
	"left_wrist":     {0.60, 0.60},
	"right_wrist":    {0.40, 0.60},
	"left_hip":       {0.58, 0.60},
	"right_hip":      {0.42, 0.60},
	"left_knee":      {0.58, 0.80},
	"right_knee":     {0.42, 0.80},
	"left_ankle":     {0.58, 0.95},
	"right_ankle":    {0.42, 0.95},
}

// Joint builds a raw joint at camera-space (x, y, z) scaled to the synthetic image.
func Joint(x, y, z float64) types.RawJoint {
	return types.NewRawJoint(x, y, z, x*Width, y*Height, z*Width)
}

// UprightJoints returns a complete joint_positions map for every name in
// vocabulary. Joints outside the torso and limbs get distinct filler points.
func UprightJoints(vocabulary []string) map[string]types.RawJoint {
	out := make(map[string]types.RawJoint, len(vocabulary))
	for i, name := range vocabulary {
		if p, ok := upright[name]; ok {
			out[name] = Joint(p[0], p[1], 0)
			continue
		}
		out[name] = Joint(0.2+0.01*float64(i), 0.05+0.005*float64(i), 0)
	}
	return out
}

// Frame returns a raw frame with every top-level key present. A nil joints
// map produces a frame without detections.
func Frame(sequenceID int64, frameNumber int, joints map[string]types.RawJoint) types.RawFrame {
	return types.NewRawFrame(sequenceID, "mediapipe", frameNumber, Height, Width, joints)
}

// Sequence returns n frames numbered from 1. Every frame whose number is in
// empty has no detections; all others carry an upright body.
func Sequence(sequenceID int64, n int, vocabulary []string, empty ...int) []types.RawFrame {
	skip := make(map[int]bool, len(empty))
	for _, e := range empty {
		skip[e] = true
	}
	out := make([]types.RawFrame, 0, n)
	for i := 1; i <= n; i++ {
		if skip[i] {
			out = append(out, Frame(sequenceID, i, nil))
			continue
		}
		out = append(out, Frame(sequenceID, i, UprightJoints(vocabulary)))
	}
	return out
}

// Without returns a copy of joints lacking name.
func Without(joints map[string]types.RawJoint, name string) map[string]types.RawJoint {
	out := make(map[string]types.RawJoint, len(joints))
	for k, v := range joints {
		if k != name {
			out[k] = v
		}
	}
	return out
}
