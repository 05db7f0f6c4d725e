package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/andresmejia3/poseparser/internal/dataset"
	"github.com/andresmejia3/poseparser/internal/keypoints"
	"github.com/andresmejia3/poseparser/internal/utils"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

var datasetOpts Options

var datasetCmd = &cobra.Command{
	Use:   "dataset",
	Short: "Merge keypoint sequences with annotations into a CSV dataset",
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		path, err := runDataset(cmd, datasetOpts)
		if err != nil {
			utils.ShowError("Dataset build failed", err, nil)
			return err
		}
		fmt.Println(path)
		return nil
	},
}

func init() {
	datasetCmd.Flags().StringVarP(&datasetOpts.InputPath, "input", "i", "keypoints", "Root directory of extracted keypoint sequences")
	datasetCmd.Flags().StringVarP(&datasetOpts.AnnotationsDir, "annotations", "a", "", "Directory of annotation JSON files")
	datasetCmd.Flags().StringVarP(&datasetOpts.OutputDir, "output", "o", ".", "Directory for the dataset CSV")
	datasetCmd.Flags().IntVarP(&datasetOpts.NumWorkers, "workers", "w", 4, "Number of sequences processed in parallel")
	datasetCmd.Flags().BoolVar(&datasetOpts.LabelledOnly, "labelled-only", false, "Drop frames without a label")
	datasetCmd.Flags().StringVar(&datasetOpts.Angles, "angles", "default", anglesUsage)
	rootCmd.AddCommand(datasetCmd)
}

func runDataset(cmd *cobra.Command, opts Options) (string, error) {
	defs, err := angleDefinitions(opts.Angles)
	if err != nil {
		return "", err
	}

	annotations := map[string]*dataset.AnnotationFile{}
	if opts.AnnotationsDir != "" {
		if annotations, err = dataset.LoadAnnotationDir(opts.AnnotationsDir); err != nil {
			return "", err
		}
	} else if opts.LabelledOnly {
		return "", fmt.Errorf("--labelled-only needs --annotations")
	}

	dirs, err := keypoints.ListSequenceDirs(opts.InputPath)
	if err != nil {
		return "", err
	}
	if len(dirs) == 0 {
		return "", fmt.Errorf("no keypoint sequences under %s", opts.InputPath)
	}
	fmt.Fprintf(os.Stderr, "📂 Found %d sequences, %d annotation files\n", len(dirs), len(annotations))

	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return "", err
	}
	path := filepath.Join(opts.OutputDir, dataset.FileName())
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	bar := progressbar.NewOptions(len(dirs),
		progressbar.OptionSetDescription("🧮 Building Dataset"),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowCount(),
	)

	b := &dataset.Builder{
		Log:          Logger,
		Workers:      opts.NumWorkers,
		LabelledOnly: opts.LabelledOnly,
		Definitions:  defs,
		Annotations:  annotations,
		OnSequence:   func(string) { bar.Add(1) },
	}
	stats, err := b.Build(cmd.Context(), dirs, f)
	if err != nil {
		os.Remove(path)
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", err
	}

	bar.Finish()
	fmt.Fprintf(os.Stderr, "\n🏁 Dataset Complete. %d rows (%d labelled) from %d sequences, %d skipped.\n",
		stats.Rows, stats.Labelled, stats.Sequences, stats.Skipped)
	return path, nil
}
