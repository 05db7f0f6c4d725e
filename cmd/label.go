package cmd

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/andresmejia3/poseparser/internal/store"
	"github.com/andresmejia3/poseparser/internal/utils"
	"github.com/spf13/cobra"
)

var labelCmd = &cobra.Command{
	Use:         "label <sequence_id> <label>",
	Short:       "Assign a label to a stored sequence",
	Args:        cobra.ExactArgs(2),
	Annotations: needsDB(),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			utils.ShowError("Invalid sequence ID", err, nil)
			return err
		}
		label := args[1]

		if err := DB.LabelSequence(cmd.Context(), id, label); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				err = fmt.Errorf("sequence %d: %w", id, err)
			}
			utils.ShowError("Failed to label sequence", err, nil)
			return err
		}

		fmt.Printf("✅ Sequence %d labeled as '%s'\n", id, label)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(labelCmd)
}
