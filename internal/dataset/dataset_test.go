package dataset

import (
	"bytes"
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"testing"

	"github.com/andresmejia3/poseparser/internal/keypoints"
	"github.com/andresmejia3/poseparser/internal/pose"
	"github.com/andresmejia3/poseparser/internal/testutil"
	"github.com/cyclopcam/logs"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func squatAnnotations() *AnnotationFile {
	return &AnnotationFile{
		Filename: "videos/squat.mp4",
		FPS:      10,
		Annotations: []Annotation{
			{Label: "descent", Start: 0, End: 0.25},
			{Label: "bottom", Start: 0.2, End: 0.4},
		},
	}
}

func TestLabelAt(t *testing.T) {
	a := squatAnnotations()
	tests := []struct {
		frame int
		label string
		ok    bool
	}{
		{1, "descent", true}, // t = 0
		{3, "descent", true}, // t = 0.2, first match wins
		{4, "bottom", true},  // t = 0.3
		{5, "bottom", true},  // t = 0.4, inclusive end
		{6, "", false},
	}
	for _, tt := range tests {
		label, ok := a.LabelAt(a.FrameTime(tt.frame))
		assert.Equal(t, tt.ok, ok, "frame %d", tt.frame)
		assert.Equal(t, tt.label, label, "frame %d", tt.frame)
	}
}

func TestStemOf(t *testing.T) {
	assert.Equal(t, "squat", StemOf("/out/squat-1700000000"))
	assert.Equal(t, "front-squat", StemOf("front-squat-12"))
	assert.Equal(t, "plain", StemOf("plain"))
}

func TestLoadAnnotationDir(t *testing.T) {
	dir := t.TempDir()
	body := `{"filename": "squat.mp4", "fps": 30, "annotations": [{"label": "up", "start": 0, "end": 1.5}]}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "squat.json"), []byte(body), 0644))

	got, err := LoadAnnotationDir(dir)
	require.NoError(t, err)
	want := map[string]*AnnotationFile{
		"squat": {Filename: "squat.mp4", FPS: 30, Annotations: []Annotation{{Label: "up", Start: 0, End: 1.5}}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("LoadAnnotationDir() mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadAnnotationsRejectsBadFiles(t *testing.T) {
	tests := map[string]string{
		"no fps":       `{"filename": "a.mp4", "annotations": []}`,
		"no filename":  `{"fps": 30}`,
		"backwards":    `{"filename": "a.mp4", "fps": 30, "annotations": [{"label": "x", "start": 2, "end": 1}]}`,
		"empty label":  `{"filename": "a.mp4", "fps": 30, "annotations": [{"start": 0, "end": 1}]}`,
		"invalid json": `{"filename":`,
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "a.json")
			require.NoError(t, os.WriteFile(path, []byte(body), 0644))
			_, err := LoadAnnotations(path)
			assert.Error(t, err)
		})
	}
}

func TestRecord(t *testing.T) {
	defs := pose.DefaultAngleDefinitions()
	seq, err := pose.NewSequence(testutil.Sequence(9, 2, pose.Vocabulary(), 2))
	require.NoError(t, err)
	frames := seq.GenerateFrames()
	header := Header(defs)
	col := make(map[string]int, len(header))
	for i, h := range header {
		col[h] = i
	}

	rec, labelled := Record(frames[0], squatAnnotations(), defs)
	require.Len(t, rec, len(header))
	assert.True(t, labelled)
	assert.Equal(t, "9", rec[col["sequence_id"]])
	assert.Equal(t, "0", rec[col["time"]])
	assert.Equal(t, "descent", rec[col["label"]])
	assert.Equal(t, "true", rec[col["has_joint_positions"]])
	elbow, err := strconv.ParseFloat(rec[col["left_elbow_2d_degrees"]], 64)
	require.NoError(t, err)
	assert.InDelta(t, 180, elbow, 1e-6)
	assert.NotEmpty(t, rec[col["right_ankle_x"]])

	rec, labelled = Record(frames[1], nil, defs)
	require.Len(t, rec, len(header))
	assert.False(t, labelled)
	assert.Equal(t, "false", rec[col["has_joint_positions"]])
	assert.Empty(t, rec[col["time"]])
	assert.Empty(t, rec[col["nose_x"]])
	assert.Empty(t, rec[col["left_knee_3d_degrees"]])
}

func TestBuild(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, keypoints.WriteSequence(keypoints.SequenceDir(root, "squat", 1), testutil.Sequence(1, 8, pose.Vocabulary(), 2)))
	require.NoError(t, keypoints.WriteSequence(keypoints.SequenceDir(root, "lunge", 2), testutil.Sequence(2, 3, pose.Vocabulary())))
	// A frame without image_dimensions rejects the whole directory.
	broken := testutil.Sequence(3, 2, pose.Vocabulary())
	broken[1].ImageDimensions = nil
	require.NoError(t, keypoints.WriteSequence(keypoints.SequenceDir(root, "broken", 3), broken))

	dirs, err := keypoints.ListSequenceDirs(root)
	require.NoError(t, err)
	require.Len(t, dirs, 3)

	var seen []string
	b := &Builder{
		Log:         logs.NewTestingLog(t),
		Workers:     3,
		Definitions: pose.DefaultAngleDefinitions(),
		Annotations: map[string]*AnnotationFile{"squat": squatAnnotations()},
		OnSequence:  func(dir string) { seen = append(seen, dir) },
	}

	var buf bytes.Buffer
	stats, err := b.Build(context.Background(), dirs, &buf)
	require.NoError(t, err)
	assert.Equal(t, Stats{Sequences: 2, Skipped: 1, Rows: 11, Labelled: 5}, stats)
	assert.Equal(t, dirs, seen)

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 12)
	// broken-3 sorts first and is skipped, then lunge-2, then squat-1.
	assert.Equal(t, "2", rows[1][0])
	assert.Equal(t, "1", rows[4][0])
	assert.Equal(t, "descent", rows[4][4])

	b.LabelledOnly = true
	buf.Reset()
	stats, err = b.Build(context.Background(), dirs, &buf)
	require.NoError(t, err)
	assert.Equal(t, 5, stats.Rows)
}

func TestFileName(t *testing.T) {
	assert.Regexp(t, regexp.MustCompile(`^dataset_[0-9a-f-]{36}\.csv$`), FileName())
	assert.NotEqual(t, FileName(), FileName())
}
