package cmd

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/andresmejia3/poseparser/internal/keypoints"
	"github.com/andresmejia3/poseparser/internal/pose"
	"github.com/andresmejia3/poseparser/internal/testutil"
)

func TestLoadFramesAndSummary(t *testing.T) {
	dir := keypoints.SequenceDir(t.TempDir(), "squat", 3)
	if err := keypoints.WriteSequence(dir, testutil.Sequence(3, 4, pose.Vocabulary(), 2)); err != nil {
		t.Fatal(err)
	}

	frames, err := loadFrames(dir, "default")
	if err != nil {
		t.Fatalf("loadFrames() error = %v", err)
	}
	if len(frames) != 4 {
		t.Fatalf("Expected 4 frames, got %d", len(frames))
	}

	stats := summariseAngles(frames)
	if len(stats) != len(pose.DefaultAngleDefinitions()) {
		t.Fatalf("Expected one row per default angle, got %d", len(stats))
	}
	for _, s := range stats {
		if s.Count != 3 {
			t.Errorf("%s: expected 3 samples, got %d", s.Name, s.Count)
		}
		// Every detected frame holds the same upright body
		if math.Abs(s.Max-s.Min) > 1e-9 {
			t.Errorf("%s: expected a constant angle, got %v..%v", s.Name, s.Min, s.Max)
		}
	}

	var out bytes.Buffer
	printSummary(&out, frames)
	if !strings.Contains(out.String(), "4 frames, 3 with joint positions") {
		t.Errorf("Unexpected summary header:\n%s", out.String())
	}
	if !strings.Contains(out.String(), "left_elbow") {
		t.Errorf("Summary is missing angle rows:\n%s", out.String())
	}
}

func TestLoadFramesRejects(t *testing.T) {
	if _, err := loadFrames(t.TempDir(), "default"); err == nil {
		t.Error("Expected an error for an empty directory")
	}

	dir := t.TempDir()
	raws := testutil.Sequence(1, 2, pose.Vocabulary())
	raws[1].JointPositions = testutil.Without(raws[1].JointPositions, "left_heel")
	if err := keypoints.WriteSequence(dir, raws); err != nil {
		t.Fatal(err)
	}
	_, err := loadFrames(dir, "default")
	if err == nil || !strings.Contains(err.Error(), "left_heel") {
		t.Errorf("Expected a left_heel validation error, got %v", err)
	}

	if _, err := loadFrames(dir, "bogus"); err == nil {
		t.Error("Expected an error for an unknown angle set")
	}
}
