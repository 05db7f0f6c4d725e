package store

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/andresmejia3/poseparser/internal/pose"
	"github.com/andresmejia3/poseparser/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// TestStoreIntegration runs a full integration test against a real Postgres container.
// It requires Docker to be running.
func TestStoreIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := context.Background()

	// Explicitly check for Docker availability and fail hard if missing
	// We wrap this in a function to recover from panics inside testcontainers (e.g. socket not found)
	err := func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("testcontainers panicked: %v", r)
			}
		}()
		_, err = testcontainers.NewDockerClientWithOpts(ctx)
		return
	}()
	if err != nil {
		t.Fatalf("Docker not available, cannot run integration test: %v", err)
	}

	pgContainer, err := postgres.Run(ctx, "postgres:16-alpine",
		postgres.WithDatabase("poseparser_test"),
		postgres.WithUsername("user"),
		postgres.WithPassword("password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
		testcontainers.WithLogger(noopLogger{}),
	)
	if err != nil {
		t.Fatalf("Failed to start postgres container: %v", err)
	}
	defer func() {
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Fatalf("Failed to terminate container: %v", err)
		}
	}()

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	// Initialize Store (runs migrations)
	s, err := New(ctx, connStr)
	require.NoError(t, err)
	defer s.Close(ctx)

	// --- Test Scenarios ---

	// Frame 3 has no detection.
	seq, err := pose.NewSequence(testutil.Sequence(42, 5, pose.Vocabulary(), 3))
	require.NoError(t, err)
	frames := seq.GenerateFrames()

	require.NoError(t, s.SaveSequence(ctx, "squat", frames))
	// Saving again replaces rather than duplicates.
	require.NoError(t, s.SaveSequence(ctx, "squat", frames))

	list, err := s.ListSequences(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, int64(42), list[0].ID)
	assert.Equal(t, "squat", list[0].Name)
	assert.Equal(t, "mediapipe", list[0].Source)
	assert.Equal(t, 5, list[0].Frames)
	assert.Equal(t, 4, list[0].Detected)
	assert.Empty(t, list[0].Label)

	// Loaded frames validate again and measure the same angles.
	raws, err := s.LoadSequence(ctx, 42)
	require.NoError(t, err)
	require.Len(t, raws, 5)
	reloaded, err := pose.NewSequence(raws)
	require.NoError(t, err)
	again := reloaded.GenerateFrames()
	assert.False(t, again[2].HasJointPositions())
	for i := range frames {
		assert.Equal(t, frames[i].FrameNumber(), again[i].FrameNumber())
		for name, want := range frames[i].Angles() {
			got, ok := again[i].Angles()[name]
			require.True(t, ok, "angle %s on frame %d", name, frames[i].FrameNumber())
			assert.InDelta(t, want.Angle2DDegrees, got.Angle2DDegrees, 1e-9)
		}
	}

	series, err := s.AngleSeries(ctx, 42, "left_elbow")
	require.NoError(t, err)
	assert.Len(t, series, 4)
	assert.InDelta(t, 180, series[1], 1e-6)

	require.NoError(t, s.LabelSequence(ctx, 42, "squat_good"))
	list, err = s.ListSequences(ctx)
	require.NoError(t, err)
	assert.Equal(t, "squat_good", list[0].Label)

	assert.True(t, errors.Is(s.LabelSequence(ctx, 7, "x"), ErrNotFound))
	_, err = s.LoadSequence(ctx, 7)
	assert.ErrorIs(t, err, ErrNotFound)

	mixed := append([]*pose.Frame{}, frames[0])
	other, err := pose.NewSequence(testutil.Sequence(43, 2, pose.Vocabulary()))
	require.NoError(t, err)
	mixed = append(mixed, other.GenerateFrames()[1])
	assert.Error(t, s.SaveSequence(ctx, "mixed", mixed))
	assert.Error(t, s.SaveSequence(ctx, "empty", nil))

	require.NoError(t, s.Reset(ctx))
}

type noopLogger struct{}

func (n noopLogger) Printf(format string, v ...interface{}) {}
