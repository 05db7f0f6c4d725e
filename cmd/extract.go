package cmd

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/andresmejia3/poseparser/internal/keypoints"
	"github.com/andresmejia3/poseparser/internal/types"
	"github.com/andresmejia3/poseparser/internal/utils"
	"github.com/andresmejia3/poseparser/internal/worker"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const megabyte = 1024 * 1024

// sourceMediaPipe tags every frame produced by the Python worker.
const sourceMediaPipe = "mediapipe"

var extractOpts Options

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract pose keypoints from a video with parallel workers",
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		if err := runExtract(cmd.Context(), extractOpts); err != nil {
			utils.ShowError("Extraction failed", err, nil)
			return err
		}
		return nil
	},
}

func init() {
	extractCmd.Flags().StringVarP(&extractOpts.InputPath, "input", "i", "", "Path to video")
	extractCmd.Flags().StringVarP(&extractOpts.OutputDir, "output", "o", "keypoints", "Root directory for keypoint files")
	extractCmd.Flags().IntVarP(&extractOpts.NumWorkers, "workers", "w", 1, "Number of parallel pose workers")
	extractCmd.Flags().IntVarP(&extractOpts.Limit, "limit", "l", 0, "Stop after this many frames (0 = whole video)")
	extractCmd.Flags().Int64Var(&extractOpts.SequenceID, "sequence-id", 0, "Sequence id to assign (default: current time in nanoseconds)")
	extractCmd.Flags().StringVar(&extractOpts.Script, "script", worker.DefaultScript, "Path to the Python pose worker")
	extractCmd.Flags().Float64Var(&extractOpts.MinDetection, "min-detection-confidence", 0.5, "Minimum pose detection confidence")
	extractCmd.Flags().Float64Var(&extractOpts.MinTracking, "min-tracking-confidence", 0.5, "Minimum landmark tracking confidence")
	extractCmd.Flags().StringVar(&extractOpts.WorkerTimeout, "worker-timeout", "30s", "Maximum time to wait for a worker to answer one frame")

	extractCmd.MarkFlagRequired("input")
	rootCmd.AddCommand(extractCmd)
}

// Buffer pool to reduce GC pressure during extraction
var frameBufferPool = sync.Pool{
	New: func() interface{} { return make([]byte, 0, megabyte) },
}

// extractResult wraps the output from a worker to be sent to the aggregator
type extractResult struct {
	Index int
	Frame types.RawFrame
}

// runExtract orchestrates extraction: worker pool, FFmpeg streaming, ordered writing and progress.
func runExtract(ctx context.Context, opts Options) error {
	if err := validateExtractFlags(&opts); err != nil {
		return err
	}
	timeout, _ := time.ParseDuration(opts.WorkerTimeout)

	seqID := opts.SequenceID
	if seqID == 0 {
		seqID = utils.NewSequenceID()
	}
	outDir := keypoints.SequenceDir(opts.OutputDir, utils.VideoStem(opts.InputPath), seqID)
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	fmt.Fprintf(os.Stderr, "📼 Sequence %d -> %s\n", seqID, outDir)
	fmt.Fprintf(os.Stderr, "⚙️  Spawning %d Pose Workers...\n", opts.NumWorkers)

	totalVideoFrames := utils.GetTotalFrames(ctx, opts.InputPath)
	if opts.Limit > 0 && (totalVideoFrames <= 0 || opts.Limit < totalVideoFrames) {
		totalVideoFrames = opts.Limit
	}
	if totalVideoFrames <= 0 {
		// Fallback to a spinner or unknown total if ffprobe fails
		totalVideoFrames = -1
	}

	bar := progressbar.NewOptions(totalVideoFrames,
		progressbar.OptionSetDescription("🕺 Extracting Poses"),
		progressbar.OptionSetWriter(os.Stderr), // Write bar to Stderr
		progressbar.OptionShowCount(),
	)

	cfg := workerConfig(opts, timeout)

	g, gctx := errgroup.WithContext(ctx)
	taskChan := make(chan types.FrameTask, opts.NumWorkers)
	resultsChan := make(chan extractResult, opts.NumWorkers*2)

	// Start Aggregator (Consumer)
	// Must run concurrently to prevent deadlock on resultsChan
	var written, detected int
	var writeErr error
	aggDone := make(chan struct{})
	go func() {
		defer close(aggDone)
		written, detected, writeErr = writeResults(resultsChan, outDir, bar)
	}()

	// Spawn the Worker Pool
	for i := 0; i < opts.NumWorkers; i++ {
		id := i
		g.Go(func() error {
			return startWorker(gctx, id, cfg, seqID, taskChan, resultsChan)
		})
	}

	// FFmpeg reader and frame splitter
	var sentFrames int
	g.Go(func() error {
		defer close(taskChan)
		n, err := streamFrames(gctx, opts, taskChan)
		sentFrames = n
		return err
	})

	err := g.Wait()
	close(resultsChan)
	<-aggDone

	if err != nil {
		return err
	}
	if writeErr != nil {
		return writeErr
	}

	bar.Finish()
	fmt.Fprintf(os.Stderr, "\n🏁 Extraction Complete. Wrote %d of %d frames (%d with a detected pose).\n", written, sentFrames, detected)
	Logger.Infof("Sequence %d: %d frames written to %s", seqID, written, outDir)
	return nil
}

// workerConfig builds the detector settings. Frames are dealt round-robin, so
// with more than one worker no process sees consecutive frames and tracking is
// turned off.
func workerConfig(opts Options, timeout time.Duration) worker.Config {
	return worker.Config{
		Script:                 opts.Script,
		MinDetectionConfidence: opts.MinDetection,
		MinTrackingConfidence:  opts.MinTracking,
		ReadTimeout:            timeout,
		StaticImageMode:        opts.NumWorkers > 1,
	}
}

// streamFrames decodes the video with FFmpeg and feeds numbered JPEG frames
// (starting at 1) into tasks. It stops early once opts.Limit frames were sent.
func streamFrames(ctx context.Context, opts Options, tasks chan<- types.FrameTask) (int, error) {
	ffCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	ffmpeg := utils.NewFFmpegCmd(ffCtx, opts.InputPath)
	var stderrBuf bytes.Buffer
	ffmpeg.Stderr = &stderrBuf

	ffmpegOut, err := ffmpeg.StdoutPipe()
	if err != nil {
		return 0, fmt.Errorf("failed to create FFmpeg stdout pipe: %w", err)
	}
	if err := ffmpeg.Start(); err != nil {
		return 0, fmt.Errorf("failed to start FFmpeg: %w", err)
	}

	scanner := bufio.NewScanner(ffmpegOut)
	scanner.Buffer(make([]byte, megabyte), 64*megabyte)
	scanner.Split(utils.SplitJpeg)

	sent := 0
	limited := false
	for scanner.Scan() {
		// Get buffer from pool
		buf := frameBufferPool.Get().([]byte)
		if cap(buf) < len(scanner.Bytes()) {
			buf = make([]byte, len(scanner.Bytes()))
		}
		buf = buf[:len(scanner.Bytes())]
		copy(buf, scanner.Bytes())

		select {
		case tasks <- types.FrameTask{Index: sent + 1, Data: buf}:
			sent++
		case <-ctx.Done():
			ffmpeg.Wait()
			return sent, ctx.Err()
		}

		if opts.Limit > 0 && sent >= opts.Limit {
			limited = true
			break
		}
	}

	if limited {
		// Stop decoding; the killed process exit status is expected
		cancel()
		ffmpeg.Wait()
		return sent, nil
	}

	// Check for scanner errors (e.g. token too long, unexpected EOF)
	if err := scanner.Err(); err != nil {
		ffmpeg.Wait()
		return sent, fmt.Errorf("frame scanner failed: %w", err)
	}
	if err := ffmpeg.Wait(); err != nil {
		if stderrBuf.Len() > 0 {
			fmt.Fprintf(os.Stderr, "\nFFmpeg Logs:\n%s\n", stderrBuf.String())
		}
		return sent, fmt.Errorf("FFmpeg execution failed: %w", err)
	}
	return sent, nil
}

// startWorker manages the lifecycle of a single Python worker process.
// It reads tasks from the channel, runs pose estimation and forwards raw frames to the aggregator.
func startWorker(ctx context.Context, id int, cfg worker.Config, seqID int64, tasks <-chan types.FrameTask, results chan<- extractResult) error {
	w, err := worker.NewPoseWorker(ctx, id, cfg, Logger)
	if err != nil {
		return fmt.Errorf("worker startup failed: %w", err)
	}
	defer w.Close()

	for task := range tasks {
		det, err := w.ProcessFrame(task.Data)

		// Return buffer to pool immediately after sending
		frameBufferPool.Put(task.Data[:0])

		if err != nil {
			// DRAIN: Wait for process to exit and capture final stderr logs
			w.Close()
			utils.ShowError(fmt.Sprintf("Pose worker %d failed on frame %d", id, task.Index), err, w.Cmd)
			return err
		}

		raw, err := worker.ToRawFrame(det, seqID, sourceMediaPipe, task.Index)
		if err != nil {
			return fmt.Errorf("frame %d: %w", task.Index, err)
		}
		results <- extractResult{Index: task.Index, Frame: raw}
	}
	return nil
}

// writeResults persists frames in strict frame order as they arrive.
func writeResults(results <-chan extractResult, outDir string, bar *progressbar.ProgressBar) (written, detected int, err error) {
	// Buffer for re-ordering frames (Worker 2 might finish before Worker 1)
	buffer := make(map[int]extractResult)
	nextFrame := 1

	for res := range results {
		buffer[res.Index] = res

		for {
			frame, ok := buffer[nextFrame]
			if !ok {
				break
			}
			delete(buffer, nextFrame)
			nextFrame++

			// Keep draining after a failure so workers never block
			if err != nil {
				continue
			}
			if werr := keypoints.WriteFrame(outDir, frame.Frame); werr != nil {
				err = werr
				continue
			}
			written++
			if len(frame.Frame.JointPositions) > 0 {
				detected++
			}
			bar.Add(1)
		}
	}
	return written, detected, err
}

// validateExtractFlags ensures all CLI arguments are valid before starting heavy processes.
func validateExtractFlags(opts *Options) error {
	info, err := os.Stat(opts.InputPath)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("input file does not exist: %w", err)
		}
		return fmt.Errorf("unable to access input file: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("input path is a directory, expected a video file")
	}
	if opts.NumWorkers < 1 {
		opts.NumWorkers = 1
	}
	if opts.Limit < 0 {
		return fmt.Errorf("limit must be >= 0, got %d", opts.Limit)
	}
	if opts.SequenceID < 0 {
		return fmt.Errorf("sequence id must be positive, got %d", opts.SequenceID)
	}
	for name, v := range map[string]float64{"min-detection-confidence": opts.MinDetection, "min-tracking-confidence": opts.MinTracking} {
		if v < 0 || v > 1 {
			return fmt.Errorf("%s must be between 0.0 and 1.0, got %f", name, v)
		}
	}
	if _, err := time.ParseDuration(opts.WorkerTimeout); err != nil {
		return fmt.Errorf("invalid worker-timeout format (use '30s', '500ms'): %w", err)
	}
	return nil
}
