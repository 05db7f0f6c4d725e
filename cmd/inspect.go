package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/andresmejia3/poseparser/internal/keypoints"
	"github.com/andresmejia3/poseparser/internal/pose"
	"github.com/andresmejia3/poseparser/internal/types"
	"github.com/andresmejia3/poseparser/internal/utils"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

var inspectOpts Options

var inspectCmd = &cobra.Command{
	Use:   "inspect [dir]",
	Short: "Validate a keypoints directory or a stored sequence and summarise its angles",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		var frames []*pose.Frame
		var err error
		switch {
		case len(args) == 1 && inspectOpts.SequenceID == 0:
			frames, err = loadFrames(args[0], inspectOpts.Angles)
		case len(args) == 0 && inspectOpts.SequenceID != 0:
			frames, err = loadStoredFrames(cmd.Context(), inspectOpts.SequenceID, inspectOpts.Angles)
		default:
			err = fmt.Errorf("give either a keypoints directory or --sequence, not both")
		}
		if err != nil {
			utils.ShowError("Sequence failed validation", err, nil)
			return err
		}
		printSummary(os.Stdout, frames)
		return nil
	},
}

func init() {
	inspectCmd.Flags().StringVar(&inspectOpts.Angles, "angles", "default", anglesUsage)
	inspectCmd.Flags().Int64Var(&inspectOpts.SequenceID, "sequence", 0, "Inspect a stored sequence by id instead of a directory")
	rootCmd.AddCommand(inspectCmd)
}

// loadFrames reads and validates one keypoints directory.
func loadFrames(dir, angleSet string) ([]*pose.Frame, error) {
	raws, err := keypoints.ReadSequenceDir(dir)
	if err != nil {
		return nil, err
	}
	if len(raws) == 0 {
		return nil, fmt.Errorf("no keypoints files in %s", dir)
	}
	return buildFrames(dir, raws, angleSet)
}

// loadStoredFrames loads a sequence from the database and validates it again.
func loadStoredFrames(ctx context.Context, id int64, angleSet string) ([]*pose.Frame, error) {
	if err := openDB(ctx); err != nil {
		return nil, err
	}
	raws, err := DB.LoadSequence(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("sequence %d: %w", id, err)
	}
	if len(raws) == 0 {
		return nil, fmt.Errorf("sequence %d has no frames", id)
	}
	return buildFrames(fmt.Sprintf("sequence %d", id), raws, angleSet)
}

func buildFrames(origin string, raws []types.RawFrame, angleSet string) ([]*pose.Frame, error) {
	defs, err := angleDefinitions(angleSet)
	if err != nil {
		return nil, err
	}
	seq, err := pose.NewSequence(raws, pose.WithAngles(defs...))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", origin, err)
	}
	return seq.GenerateFrames(), nil
}

// angleStats is the 2D-degree distribution of one named angle.
type angleStats struct {
	Name           string
	Count          int
	Min, Mean, Max float64
}

func summariseAngles(frames []*pose.Frame) []angleStats {
	var order []string
	values := make(map[string][]float64)
	for _, f := range frames {
		p, ok := f.Pose()
		if !ok {
			continue
		}
		for _, a := range p.Angles() {
			if _, seen := values[a.Name]; !seen {
				order = append(order, a.Name)
			}
			values[a.Name] = append(values[a.Name], a.Angle2DDegrees)
		}
	}

	out := make([]angleStats, 0, len(order))
	for _, name := range order {
		v := values[name]
		out = append(out, angleStats{
			Name:  name,
			Count: len(v),
			Min:   floats.Min(v),
			Mean:  stat.Mean(v, nil),
			Max:   floats.Max(v),
		})
	}
	return out
}

func printSummary(out io.Writer, frames []*pose.Frame) {
	detected := 0
	for _, f := range frames {
		if f.HasJointPositions() {
			detected++
		}
	}
	first := frames[0]
	fmt.Fprintf(out, "Sequence %d (%s): %d frames, %d with joint positions, frames %d..%d\n\n",
		first.SequenceID(), first.SequenceSource(), len(frames), detected, first.FrameNumber(), frames[len(frames)-1].FrameNumber())

	w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "ANGLE\tFRAMES\tMIN\tMEAN\tMAX")
	fmt.Fprintln(w, "-----\t------\t---\t----\t---")
	for _, s := range summariseAngles(frames) {
		fmt.Fprintf(w, "%s\t%d\t%.1f\t%.1f\t%.1f\n", s.Name, s.Count, s.Min, s.Mean, s.Max)
	}
	w.Flush()
}
