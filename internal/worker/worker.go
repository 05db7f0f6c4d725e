package worker

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/andresmejia3/poseparser/internal/types"
	"github.com/andresmejia3/poseparser/internal/utils"
	"github.com/cyclopcam/logs"
)

// DefaultScript is the pose worker entry point, relative to the working directory.
const DefaultScript = "python/pose_worker.py"

// Config holds the detector settings forwarded to the Python worker.
type Config struct {
	Script                 string
	MinDetectionConfidence float64
	MinTrackingConfidence  float64
	ReadTimeout            time.Duration
	// StaticImageMode runs detection on every frame without tracking. Needed
	// when a worker sees interleaved rather than consecutive frames.
	StaticImageMode bool
}

// Args returns the python3 command line for the worker.
func (c Config) Args() []string {
	script := c.Script
	if script == "" {
		script = DefaultScript
	}
	args := []string{"-u", script,
		"--min-detection-confidence", strconv.FormatFloat(c.MinDetectionConfidence, 'f', -1, 64),
		"--min-tracking-confidence", strconv.FormatFloat(c.MinTrackingConfidence, 'f', -1, 64),
	}
	if c.StaticImageMode {
		args = append(args, "--static-image-mode")
	}
	return args
}

// PoseWorker owns one Python pose-estimation process.
type PoseWorker struct {
	ID          int
	Cmd         *utils.SafeCommand
	Stdin       io.WriteCloser
	DataPipe    io.ReadCloser
	ReadTimeout time.Duration
	Log         logs.Log
}

// NewPoseWorker starts the Python process. The process is killed when ctx is cancelled.
func NewPoseWorker(ctx context.Context, id int, cfg Config, log logs.Log) (*PoseWorker, error) {
	py := utils.NewSafeCommand(ctx, "python3", cfg.Args()...)

	// Create a side-channel pipe (FD 3) for clean data transfer
	r, w, err := os.Pipe()
	if err != nil {
		return nil, fmt.Errorf("failed to create pipe: %w", err)
	}
	// Pass the write-end to the child process. It will appear as FD 3.
	py.Cmd.ExtraFiles = []*os.File{w}

	stdin, err := py.StdinPipe()
	if err != nil {
		w.Close()
		r.Close()
		return nil, fmt.Errorf("failed to create stdin pipe: %w", err)
	}

	if err := py.Start(); err != nil {
		w.Close()
		r.Close()
		return nil, fmt.Errorf("worker %d failed to start: %w", id, err)
	}

	// Close the write-end in the parent so only the child holds it
	w.Close()

	log.Debugf("Pose worker %d started (pid %d)", id, py.Process.Pid)

	return &PoseWorker{
		ID:          id,
		Cmd:         py,
		Stdin:       stdin,
		DataPipe:    r,
		ReadTimeout: cfg.ReadTimeout,
		Log:         log,
	}, nil
}

// deadliner is implemented by *os.File.
type deadliner interface {
	SetReadDeadline(t time.Time) error
}

// Communicate sends one length-prefixed request and returns the raw response body.
func (w *PoseWorker) Communicate(data []byte) ([]byte, error) {
	// Protocol: [Length][Data]
	if err := binary.Write(w.Stdin, binary.BigEndian, uint32(len(data))); err != nil {
		return nil, err
	}
	if _, err := w.Stdin.Write(data); err != nil {
		return nil, err
	}

	if d, ok := w.DataPipe.(deadliner); ok && w.ReadTimeout > 0 {
		if err := d.SetReadDeadline(time.Now().Add(w.ReadTimeout)); err != nil {
			return nil, err
		}
	}

	header := make([]byte, 4)
	if _, err := io.ReadFull(w.DataPipe, header); err != nil {
		return nil, err // This is where we catch the "ModuleNotFoundError" crash
	}

	respLen := binary.BigEndian.Uint32(header)
	respBody := make([]byte, respLen)
	_, err := io.ReadFull(w.DataPipe, respBody)
	return respBody, err
}

// ProcessFrame runs pose estimation on one JPEG frame.
//
// Response protocol: [Status:1 byte] then
// status 0: JSON DetectionResult; status 1: [MsgLen uint32][Msg].
func (w *PoseWorker) ProcessFrame(jpeg []byte) (types.DetectionResult, error) {
	var res types.DetectionResult

	resp, err := w.Communicate(jpeg)
	if err != nil {
		return res, err
	}
	if len(resp) == 0 {
		return res, fmt.Errorf("python worker returned an empty response")
	}

	switch resp[0] {
	case 0:
		// Logic errors arrive as {"error": "..."} with an OK status
		var errorResult types.ErrorResult
		if json.Unmarshal(resp[1:], &errorResult) == nil && errorResult.Error != "" {
			return res, fmt.Errorf("python worker error: %s", errorResult.Error)
		}
		if err := json.Unmarshal(resp[1:], &res); err != nil {
			return res, fmt.Errorf("malformed worker response: %w", err)
		}
		return res, nil
	case 1:
		body := resp[1:]
		if len(body) < 4 {
			return res, fmt.Errorf("truncated worker error response")
		}
		msgLen := binary.BigEndian.Uint32(body[:4])
		if int(msgLen) > len(body)-4 {
			return res, fmt.Errorf("truncated worker error response")
		}
		return res, fmt.Errorf("python worker error: %s", body[4:4+msgLen])
	}
	return res, fmt.Errorf("unknown worker status byte %d", resp[0])
}

// Close shuts down the worker and waits for the process to exit.
func (w *PoseWorker) Close() {
	w.Stdin.Close()
	w.DataPipe.Close()
	if w.Cmd != nil {
		if err := w.Cmd.Wait(); err != nil && w.Log != nil {
			w.Log.Warnf("Pose worker %d exited: %v", w.ID, err)
		}
	}
}
