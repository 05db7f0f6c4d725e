package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/andresmejia3/poseparser/internal/utils"
	"github.com/spf13/cobra"
)

var (
	resetDB       bool
	resetFiles    bool
	resetFilesDir string
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Reset system state (Database, Keypoint Files)",
	Long:  "Clears all data. By default, it resets everything. Use flags to clear specific components.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		// If no flags are set, default to clearing EVERYTHING
		if !resetDB && !resetFiles {
			resetDB = true
			resetFiles = true
		}

		reader := bufio.NewReader(os.Stdin)

		if resetDB {
			if confirm(reader, "⚠️  Are you sure you want to DROP all database tables?") {
				fmt.Println("🗑️  Clearing Database...")
				if err := resetDatabase(cmd); err != nil {
					utils.ShowError("Failed to reset database", err, nil)
					return err
				}
			}
		}

		if resetFiles {
			if confirm(reader, fmt.Sprintf("⚠️  Are you sure you want to delete all keypoint files under %s?", resetFilesDir)) {
				fmt.Println("🗑️  Clearing Keypoint Files...")
				removeDir(resetFilesDir)
			}
		}

		fmt.Println("✨ System Reset Complete.")
		return nil
	},
}

func init() {
	resetCmd.Flags().BoolVar(&resetDB, "database", false, "Clear PostgreSQL database")
	resetCmd.Flags().BoolVar(&resetFiles, "files", false, "Clear extracted keypoint files")
	resetCmd.Flags().StringVar(&resetFilesDir, "keypoints-dir", "keypoints", "Keypoint root removed by --files")
	rootCmd.AddCommand(resetCmd)
}

// resetDatabase connects only when the database is actually being cleared.
func resetDatabase(cmd *cobra.Command) error {
	if err := openDB(cmd.Context()); err != nil {
		return err
	}
	return DB.Reset(cmd.Context())
}

func confirm(r *bufio.Reader, prompt string) bool {
	fmt.Printf("%s [y/N]: ", prompt)
	res, _ := r.ReadString('\n')
	res = strings.TrimSpace(strings.ToLower(res))
	return res == "y" || res == "yes"
}

func removeDir(path string) {
	if err := os.RemoveAll(path); err != nil {
		fmt.Fprintf(os.Stderr, "⚠️  Failed to remove %s: %v\n", path, err)
	}
}
