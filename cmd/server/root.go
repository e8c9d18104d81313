package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/iliyamo/notebook-api/internal/config"
	"github.com/iliyamo/notebook-api/internal/logging"
)

var (
	envFile string
	cfg     config.Config
	logger  *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:           "notebook-api",
	Short:         "Multi-user notes API",
	Long:          `HTTP API for registering users and managing their private notes.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loadLocalEnv(envFile)

		c, err := config.Load()
		if err != nil {
			return err
		}
		cfg = c
		logger = logging.New(cfg.Env, os.Stdout)
		slog.SetDefault(logger)
		return nil
	},
	// serving is the default action
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file to load before reading the environment")
}

// Execute runs the root command and reports a failure on stderr.
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return err
	}
	return nil
}

// loadLocalEnv fills unset variables from a dotenv file. A missing file is
// not an error; real deployments use the environment directly.
func loadLocalEnv(path string) {
	if path == "" {
		return
	}
	if err := godotenv.Load(path); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "warning: could not read %s: %v\n", path, err)
	}
}
