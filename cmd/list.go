package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/andresmejia3/poseparser/internal/utils"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:         "list",
	Short:       "List all stored pose sequences",
	Annotations: needsDB(),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		sequences, err := DB.ListSequences(cmd.Context())
		if err != nil {
			utils.ShowError("Failed to list sequences", err, nil)
			return err
		}

		if len(sequences) == 0 {
			fmt.Println("No sequences found in database.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tLABEL\tFRAMES\tDETECTED\tSTORED")
		fmt.Fprintln(w, "--\t----\t-----\t------\t--------\t------")

		for _, s := range sequences {
			label := s.Label
			if label == "" {
				label = "-"
			}
			fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%d\t%s\n", s.ID, s.Name, label, s.Frames, s.Detected, s.StoredAt.Local().Format("2006-01-02 15:04"))
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
}
