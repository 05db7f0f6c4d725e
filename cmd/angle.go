package cmd

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"text/tabwriter"

	"github.com/andresmejia3/poseparser/internal/utils"
	"github.com/spf13/cobra"
)

var angleCmd = &cobra.Command{
	Use:         "angle <sequence_id> <angle_name>",
	Short:       "Print one stored angle (2D degrees) for every frame of a sequence",
	Args:        cobra.ExactArgs(2),
	Annotations: needsDB(),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			utils.ShowError("Invalid sequence ID", err, nil)
			return err
		}

		series, err := DB.AngleSeries(cmd.Context(), id, args[1])
		if err != nil {
			utils.ShowError("Failed to load angle series", err, nil)
			return err
		}
		if len(series) == 0 {
			fmt.Printf("No values for angle '%s' in sequence %d.\n", args[1], id)
			return nil
		}

		frames := make([]int, 0, len(series))
		for n := range series {
			frames = append(frames, n)
		}
		sort.Ints(frames)

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "FRAME\tDEGREES")
		for _, n := range frames {
			fmt.Fprintf(w, "%d\t%.2f\n", n, series[n])
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(angleCmd)
}
