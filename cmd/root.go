package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/andresmejia3/poseparser/internal/pose"
	"github.com/andresmejia3/poseparser/internal/store"
	"github.com/cyclopcam/logs"
	"github.com/spf13/cobra"
)

// Options holds shared configuration for extract, inspect, store and dataset commands
type Options struct {
	InputPath      string
	OutputDir      string
	NumWorkers     int
	Limit          int
	SequenceID     int64
	Script         string
	MinDetection   float64
	MinTracking    float64
	WorkerTimeout  string
	Angles         string
	AnnotationsDir string
	LabelledOnly   bool
	Name           string
}

var (
	// DB is the global database connection shared by subcommands that need one
	DB *store.Store
	// Logger is the process-wide structured logger
	Logger logs.Log
	// dbURL is the connection string
	dbURL string
)

// Version is the application version.
const Version = "0.1.0"

// needsDB returns the annotations marking a subcommand that opens the
// database in PersistentPreRunE.
func needsDB() map[string]string {
	return map[string]string{"db": "true"}
}

var rootCmd = &cobra.Command{
	Use:     "poseparser",
	Short:   "Pose keypoint extraction, validation and dataset tooling",
	Version: Version, // This enables the --version flag
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if Logger == nil {
			l, err := logs.NewLog()
			if err != nil {
				return fmt.Errorf("failed to create logger: %w", err)
			}
			Logger = l
		}

		if cmd.Annotations["db"] != "true" {
			return nil
		}

		return openDB(cmd.Context())
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if DB != nil {
			// Use Background here because the main context might be cancelled already (due to Ctrl+C)
			// and we still need to send the "Close" command to the DB.
			DB.Close(context.Background())
		}
	},
}

// openDB connects the shared store once. The connection is closed in
// PersistentPostRun.
func openDB(ctx context.Context) error {
	if DB != nil {
		return nil
	}
	var err error
	DB, err = store.New(ctx, resolveDBURL())
	if err != nil {
		DB = nil
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	return nil
}

// resolveDBURL returns --db, else a URL built from POSTGRES_* variables, else the local default.
func resolveDBURL() string {
	if dbURL != "" {
		return dbURL
	}
	if host := os.Getenv("POSTGRES_HOST"); host != "" {
		user := os.Getenv("POSTGRES_USER")
		pass := os.Getenv("POSTGRES_PASSWORD")
		name := os.Getenv("POSTGRES_DB")
		port := os.Getenv("POSTGRES_PORT")
		if port == "" {
			port = "5432"
		}
		return fmt.Sprintf("postgres://%s:%s@%s:%s/%s", user, pass, host, port, name)
	}
	// Fallback to local default if no env vars are present
	return "postgres://localhost:5432/poseparser"
}

// anglesUsage documents the --angles flag shared by several commands.
const anglesUsage = "Angles to derive: default, none, or ';'-separated name=joint,joint[,joint] definitions (may include default)"

// angleDefinitions maps the --angles flag to a definition set.
func angleDefinitions(set string) ([]pose.AngleDefinition, error) {
	switch strings.TrimSpace(set) {
	case "", "default":
		return pose.DefaultAngleDefinitions(), nil
	case "none":
		return nil, nil
	}

	var defs []pose.AngleDefinition
	for _, part := range strings.Split(set, ";") {
		part = strings.TrimSpace(part)
		switch part {
		case "":
			continue
		case "default":
			defs = append(defs, pose.DefaultAngleDefinitions()...)
			continue
		}
		d, err := pose.ParseAngleDefinition(part)
		if err != nil {
			return nil, err
		}
		defs = append(defs, d)
	}
	if len(defs) == 0 {
		return nil, fmt.Errorf("angle set %q defines no angles", set)
	}
	return defs, nil
}

func Execute() {
	// Create a context that listens for Ctrl+C (SIGINT) or Kill (SIGTERM)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// This tells Cobra not to print the version in the help text, which is cleaner.
	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbURL, "db", "", "PostgreSQL connection string (default: postgres://localhost:5432/poseparser)")
}
