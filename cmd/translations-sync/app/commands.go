// Package app provides the command line interface of translations-sync.
package app

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/stacklok/translations-sync/internal/config"
	"github.com/stacklok/translations-sync/internal/logging"
	"github.com/stacklok/translations-sync/internal/versions"
)

const defaultEnvFile = ".env"

// NewRootCmd creates the root command with its subcommands
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:               "translations-sync",
		DisableAutoGenTag: true,
		SilenceUsage:      true,
		Short:             "Synchronize translations from a spreadsheet into a local JSON store",
		Long: `translations-sync periodically fetches a translations spreadsheet, keeps the
keys matching the configured tags and rewrites the local store only when the
content changed.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().String("env-file", defaultEnvFile,
		"Path to a dotenv file seeding the environment (ignored when missing)")

	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newSyncCmd())
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

// loadConfig reads the configuration from the environment and the env file flag
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	envFile, err := cmd.Flags().GetString("env-file")
	if err != nil {
		return nil, fmt.Errorf("failed to read env-file flag: %w", err)
	}

	var opts []config.Option
	if envFile != "" {
		opts = append(opts, config.WithEnvFile(envFile))
	}

	cfg, err := config.LoadConfig(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}

func newVersionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(cmd *cobra.Command, _ []string) error {
			info := versions.GetVersionInfo()
			format, err := cmd.Flags().GetString("format")
			if err != nil {
				return fmt.Errorf("failed to read format flag: %w", err)
			}

			if format == "json" {
				output, err := json.MarshalIndent(info, "", "  ")
				if err != nil {
					return fmt.Errorf("failed to format version info as JSON: %w", err)
				}
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), string(output))
				return nil
			}

			logger, err := logging.New(config.DefaultLogLevel, logging.WithWriter(cmd.ErrOrStderr()))
			if err != nil {
				return err
			}
			logger.Info("translations-sync version",
				"version", info.Version,
				"commit", info.Commit,
				"built", info.BuildDate,
				"go", info.GoVersion,
				"platform", info.Platform)
			return nil
		},
	}

	cmd.Flags().String("format", "", "Output format (json)")
	return cmd
}
