package dataset

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/andresmejia3/poseparser/internal/utils"
)

// Annotation labels the time range [Start, End] of a video, in seconds.
type Annotation struct {
	Label string  `json:"label"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// AnnotationFile holds every annotation made for one video.
type AnnotationFile struct {
	Filename    string       `json:"filename"`
	FPS         float64      `json:"fps"`
	Annotations []Annotation `json:"annotations"`
}

// Stem is the video stem used to match keypoint directories.
func (a *AnnotationFile) Stem() string {
	return utils.VideoStem(a.Filename)
}

// FrameTime returns the timestamp of a 1-based frame number.
func (a *AnnotationFile) FrameTime(frameNumber int) float64 {
	return float64(frameNumber-1) / a.FPS
}

// LabelAt returns the label of the first annotation containing t.
func (a *AnnotationFile) LabelAt(t float64) (string, bool) {
	for _, an := range a.Annotations {
		if t >= an.Start && t <= an.End {
			return an.Label, true
		}
	}
	return "", false
}

func (a *AnnotationFile) validate() error {
	if a.Filename == "" {
		return fmt.Errorf("filename is missing")
	}
	if a.FPS <= 0 {
		return fmt.Errorf("fps must be positive, got %v", a.FPS)
	}
	for i, an := range a.Annotations {
		if an.Label == "" {
			return fmt.Errorf("annotation %d has no label", i)
		}
		if an.End < an.Start {
			return fmt.Errorf("annotation %d (%s) ends before it starts", i, an.Label)
		}
	}
	return nil
}

// LoadAnnotations reads one annotation file.
func LoadAnnotations(path string) (*AnnotationFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var a AnnotationFile
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	if err := a.validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &a, nil
}

// LoadAnnotationDir reads every *.json file in dir, keyed by video stem.
func LoadAnnotationDir(dir string) (map[string]*AnnotationFile, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, err
	}
	out := make(map[string]*AnnotationFile, len(paths))
	for _, p := range paths {
		a, err := LoadAnnotations(p)
		if err != nil {
			return nil, err
		}
		if prev, ok := out[a.Stem()]; ok {
			return nil, fmt.Errorf("annotations for %s appear in both %s and %s", a.Stem(), prev.Filename, a.Filename)
		}
		out[a.Stem()] = a
	}
	return out, nil
}

var sequenceDirRe = regexp.MustCompile(`^(.+)-\d+$`)

// StemOf recovers the video stem from a keypoints directory named <stem>-<id>.
func StemOf(dir string) string {
	base := filepath.Base(dir)
	if m := sequenceDirRe.FindStringSubmatch(base); m != nil {
		return m[1]
	}
	return base
}
