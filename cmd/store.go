package cmd

import (
	"fmt"

	"github.com/andresmejia3/poseparser/internal/dataset"
	"github.com/andresmejia3/poseparser/internal/utils"
	"github.com/spf13/cobra"
)

var storeOpts Options

var storeCmd = &cobra.Command{
	Use:         "store <dir>",
	Short:       "Validate a keypoints directory and save it to the database",
	Args:        cobra.ExactArgs(1),
	Annotations: needsDB(),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		dir := args[0]

		frames, err := loadFrames(dir, storeOpts.Angles)
		if err != nil {
			utils.ShowError("Sequence failed validation", err, nil)
			return err
		}

		name := storeOpts.Name
		if name == "" {
			name = dataset.StemOf(dir)
		}
		if err := DB.SaveSequence(cmd.Context(), name, frames); err != nil {
			utils.ShowError("Failed to store sequence", err, nil)
			return err
		}

		Logger.Infof("Stored sequence %d (%d frames) from %s", frames[0].SequenceID(), len(frames), dir)
		fmt.Printf("✅ Sequence %d stored as '%s'\n", frames[0].SequenceID(), name)
		return nil
	},
}

func init() {
	storeCmd.Flags().StringVar(&storeOpts.Name, "name", "", "Display name (default: video stem from the directory name)")
	storeCmd.Flags().StringVar(&storeOpts.Angles, "angles", "default", anglesUsage)
	rootCmd.AddCommand(storeCmd)
}
