// Package keypoints stores raw detector output as one JSON file per frame.
package keypoints

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"

	"github.com/andresmejia3/poseparser/internal/types"
)

var fileRe = regexp.MustCompile(`^keypoints-(\d+)\.json$`)

// FileName returns the file name used for frameNumber.
func FileName(frameNumber int) string {
	return fmt.Sprintf("keypoints-%04d.json", frameNumber)
}

// SequenceDir returns the output directory for one video: <root>/<stem>-<sequenceID>.
func SequenceDir(root, stem string, sequenceID int64) string {
	return filepath.Join(root, fmt.Sprintf("%s-%d", stem, sequenceID))
}

// WriteFrame writes one raw frame into dir.
func WriteFrame(dir string, raw types.RawFrame) error {
	if raw.FrameNumber == nil {
		return fmt.Errorf("cannot write frame without frame_number")
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return fmt.Errorf("failed to encode frame %d: %w", *raw.FrameNumber, err)
	}
	path := filepath.Join(dir, FileName(*raw.FrameNumber))
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// WriteSequence creates dir and writes every frame into it.
func WriteSequence(dir string, frames []types.RawFrame) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	for _, f := range frames {
		if err := WriteFrame(dir, f); err != nil {
			return err
		}
	}
	return nil
}

// ReadSequenceDir loads every keypoints file in dir ordered by the frame number
// in its file name. Other files are ignored.
func ReadSequenceDir(dir string) ([]types.RawFrame, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	type indexed struct {
		n    int
		path string
	}
	var files []indexed
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		m := fileRe.FindStringSubmatch(e.Name())
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			return nil, fmt.Errorf("bad keypoints file name %s: %w", e.Name(), err)
		}
		files = append(files, indexed{n: n, path: filepath.Join(dir, e.Name())})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].n < files[j].n })

	frames := make([]types.RawFrame, 0, len(files))
	for _, f := range files {
		data, err := os.ReadFile(f.path)
		if err != nil {
			return nil, err
		}
		var raw types.RawFrame
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("failed to decode %s: %w", f.path, err)
		}
		frames = append(frames, raw)
	}
	return frames, nil
}

// ListSequenceDirs returns the sub-directories of root that hold keypoints files.
func ListSequenceDirs(root string) ([]string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, err
	}
	var dirs []string
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		matches, err := filepath.Glob(filepath.Join(root, e.Name(), "keypoints-*.json"))
		if err != nil {
			return nil, err
		}
		if len(matches) > 0 {
			dirs = append(dirs, filepath.Join(root, e.Name()))
		}
	}
	sort.Strings(dirs)
	return dirs, nil
}
