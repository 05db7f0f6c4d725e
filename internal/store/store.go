package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/andresmejia3/poseparser/internal/pose"
	"github.com/andresmejia3/poseparser/internal/types"
	"github.com/jackc/pgx/v5"
)

// ErrNotFound is returned when a sequence id is not stored.
var ErrNotFound = errors.New("sequence not found")

// Store manages the PostgreSQL connection for pose sequences.
type Store struct {
	conn *pgx.Conn
}

// SequenceSummary describes one stored capture run.
type SequenceSummary struct {
	ID       int64
	Name     string
	Source   string
	Label    string
	Frames   int
	Detected int
	StoredAt time.Time
}

// New establishes a connection to the database and ensures the schema is initialized.
func New(ctx context.Context, connString string) (*Store, error) {
	conn, err := pgx.Connect(ctx, connString)
	if err != nil {
		return nil, err
	}

	// Initialize schema (Auto-Migration)
	if err := initSchema(ctx, conn); err != nil {
		conn.Close(ctx)
		return nil, fmt.Errorf("failed to initialize database schema: %w", err)
	}

	return &Store{conn: conn}, nil
}

// initSchema creates the necessary tables if they don't exist (Auto-Migration).
func initSchema(ctx context.Context, conn *pgx.Conn) error {
	query := `
		CREATE TABLE IF NOT EXISTS pose_sequences (
			id BIGINT PRIMARY KEY,
			name TEXT NOT NULL,
			source TEXT NOT NULL,
			label TEXT NOT NULL DEFAULT '',
			frame_count INT NOT NULL,
			detected_count INT NOT NULL,
			stored_at TIMESTAMPTZ DEFAULT NOW()
		);
		CREATE TABLE IF NOT EXISTS pose_frames (
			sequence_id BIGINT REFERENCES pose_sequences(id) ON DELETE CASCADE,
			frame_number INT NOT NULL,
			height INT NOT NULL,
			width INT NOT NULL,
			has_joint_positions BOOLEAN NOT NULL,
			joints JSONB NOT NULL,
			PRIMARY KEY (sequence_id, frame_number)
		);
		CREATE TABLE IF NOT EXISTS pose_angles (
			sequence_id BIGINT NOT NULL,
			frame_number INT NOT NULL,
			name TEXT NOT NULL,
			angle_2d DOUBLE PRECISION NOT NULL,
			angle_3d DOUBLE PRECISION NOT NULL,
			angle_2d_degrees DOUBLE PRECISION NOT NULL,
			angle_3d_degrees DOUBLE PRECISION NOT NULL,
			PRIMARY KEY (sequence_id, frame_number, name),
			FOREIGN KEY (sequence_id, frame_number) REFERENCES pose_frames(sequence_id, frame_number) ON DELETE CASCADE
		);
		CREATE INDEX IF NOT EXISTS pose_angles_name_idx ON pose_angles (name);
	`
	_, err := conn.Exec(ctx, query)
	return err
}

// Close terminates the database connection.
func (s *Store) Close(ctx context.Context) {
	s.conn.Close(ctx)
}

// jointsJSON encodes a frame's landmarks in the raw joint_positions shape so a
// stored sequence can be validated again on load.
func jointsJSON(f *pose.Frame) ([]byte, error) {
	out := make(map[string]types.RawJoint)
	if p, ok := f.Pose(); ok {
		for _, l := range p.Landmarks() {
			out[l.Name()] = types.NewRawJoint(l.X, l.Y, l.Z, l.XNormalized, l.YNormalized, l.ZNormalized)
		}
	}
	return json.Marshal(out)
}

// SaveSequence stores the frames of one capture run, replacing any earlier
// copy of the same sequence id. All frames must share a sequence id.
func (s *Store) SaveSequence(ctx context.Context, name string, frames []*pose.Frame) error {
	if len(frames) == 0 {
		return fmt.Errorf("refusing to store an empty sequence")
	}
	id, source := frames[0].SequenceID(), frames[0].SequenceSource()
	detected := 0
	for _, f := range frames {
		if f.SequenceID() != id {
			return fmt.Errorf("frame %d belongs to sequence %d, expected %d", f.FrameNumber(), f.SequenceID(), id)
		}
		if f.HasJointPositions() {
			detected++
		}
	}

	tx, err := s.conn.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	// 1. Clean up old data to ensure idempotency (frames and angles cascade)
	if _, err := tx.Exec(ctx, "DELETE FROM pose_sequences WHERE id = $1", id); err != nil {
		return err
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO pose_sequences (id, name, source, frame_count, detected_count, stored_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
	`, id, name, source, len(frames), detected)
	if err != nil {
		return err
	}

	// 2. Frames and their angles go out in one batch
	batch := &pgx.Batch{}
	for _, f := range frames {
		joints, err := jointsJSON(f)
		if err != nil {
			return fmt.Errorf("failed to encode frame %d: %w", f.FrameNumber(), err)
		}
		batch.Queue(`
			INSERT INTO pose_frames (sequence_id, frame_number, height, width, has_joint_positions, joints)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, id, f.FrameNumber(), f.ImageDimensions().Height, f.ImageDimensions().Width, f.HasJointPositions(), joints)

		p, ok := f.Pose()
		if !ok {
			continue
		}
		for _, a := range p.Angles() {
			batch.Queue(`
				INSERT INTO pose_angles (sequence_id, frame_number, name, angle_2d, angle_3d, angle_2d_degrees, angle_3d_degrees)
				VALUES ($1, $2, $3, $4, $5, $6, $7)
			`, id, f.FrameNumber(), a.Name, a.Angle2D, a.Angle3D, a.Angle2DDegrees, a.Angle3DDegrees)
		}
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// LoadSequence returns the stored raw frames of a sequence in frame order.
func (s *Store) LoadSequence(ctx context.Context, id int64) ([]types.RawFrame, error) {
	var source string
	err := s.conn.QueryRow(ctx, "SELECT source FROM pose_sequences WHERE id = $1", id).Scan(&source)
	if err == pgx.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	rows, err := s.conn.Query(ctx, `
		SELECT frame_number, height, width, joints
		FROM pose_frames WHERE sequence_id = $1 ORDER BY frame_number ASC
	`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var frames []types.RawFrame
	for rows.Next() {
		var frameNumber, height, width int
		var jointsData []byte
		if err := rows.Scan(&frameNumber, &height, &width, &jointsData); err != nil {
			return nil, err
		}
		joints := map[string]types.RawJoint{}
		if err := json.Unmarshal(jointsData, &joints); err != nil {
			return nil, fmt.Errorf("frame %d: %w", frameNumber, err)
		}
		frames = append(frames, types.NewRawFrame(id, source, frameNumber, height, width, joints))
	}
	return frames, rows.Err()
}

// ListSequences returns all stored sequences, newest first.
func (s *Store) ListSequences(ctx context.Context) ([]SequenceSummary, error) {
	rows, err := s.conn.Query(ctx, `
		SELECT id, name, source, label, frame_count, detected_count, stored_at
		FROM pose_sequences ORDER BY stored_at DESC, id DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []SequenceSummary
	for rows.Next() {
		var ss SequenceSummary
		if err := rows.Scan(&ss.ID, &ss.Name, &ss.Source, &ss.Label, &ss.Frames, &ss.Detected, &ss.StoredAt); err != nil {
			return nil, err
		}
		out = append(out, ss)
	}
	return out, rows.Err()
}

// AngleSeries returns one named angle (2D degrees) for every frame of a
// sequence that has it, keyed by frame number.
func (s *Store) AngleSeries(ctx context.Context, id int64, name string) (map[int]float64, error) {
	rows, err := s.conn.Query(ctx, `
		SELECT frame_number, angle_2d_degrees FROM pose_angles
		WHERE sequence_id = $1 AND name = $2
	`, id, name)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[int]float64)
	for rows.Next() {
		var n int
		var deg float64
		if err := rows.Scan(&n, &deg); err != nil {
			return nil, err
		}
		out[n] = deg
	}
	return out, rows.Err()
}

// LabelSequence sets the label of a stored sequence.
func (s *Store) LabelSequence(ctx context.Context, id int64, label string) error {
	tag, err := s.conn.Exec(ctx, "UPDATE pose_sequences SET label = $1 WHERE id = $2", label, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Reset drops all application tables to clear the database state.
// This is useful for development to force a schema refresh without migrations.
func (s *Store) Reset(ctx context.Context) error {
	_, err := s.conn.Exec(ctx, `
		DROP TABLE IF EXISTS pose_angles CASCADE;
		DROP TABLE IF EXISTS pose_frames CASCADE;
		DROP TABLE IF EXISTS pose_sequences CASCADE;
	`)
	return err
}
