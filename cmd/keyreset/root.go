package main

import (
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/zx06/keyreset/internal/config"
	"github.com/zx06/keyreset/internal/errors"
	"github.com/zx06/keyreset/internal/log"
)

// Build-time variables (set by goreleaser)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// Config holds the resolved configuration
type Config struct {
	FormatStr   string
	ConfigStr   string
	LogLevelStr string
	Resolved    config.Resolved
	Logger      *slog.Logger
}

// GlobalConfig holds the global configuration state
var GlobalConfig = &Config{}

// NewRootCommand creates the root command. Logs go to logOut.
func NewRootCommand(logOut io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:           "keyreset",
		Short:         "Back up, clear and restore daemon account keys in the OS secret store",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				return errors.New(errors.CodeCfgInvalid, "unknown command", map[string]any{"command": args[0]})
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.PrintErr(cmd.UsageString())
			return errors.New(errors.CodeCfgInvalid, "missing command", nil)
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// CLI > ENV > Config
			configSet := cmd.Flags().Changed("config")
			if configSet && GlobalConfig.ConfigStr == "" {
				return errors.New(errors.CodeCfgInvalid, "config path is empty", nil)
			}
			configPath := GlobalConfig.ConfigStr
			if !configSet {
				configPath = os.Getenv("KEYRESET_CONFIG")
			}

			r, xe := config.Resolve(config.Options{
				ConfigPath:     configPath,
				CLIFormat:      GlobalConfig.FormatStr,
				CLIFormatSet:   cmd.Flags().Changed("format"),
				CLILogLevel:    GlobalConfig.LogLevelStr,
				CLILogLevelSet: cmd.Flags().Changed("log-level"),
				EnvFormat:      os.Getenv("KEYRESET_FORMAT"),
				EnvLogLevel:    os.Getenv("KEYRESET_LOG_LEVEL"),
				EnvBackupDir:   os.Getenv("KEYRESET_BACKUP_DIR"),
				EnvMCPToken:    os.Getenv("KEYRESET_MCP_AUTH_TOKEN"),
			})
			if xe != nil {
				return xe
			}
			level, xe := log.ParseLevel(r.LogLevel)
			if xe != nil {
				return xe
			}
			GlobalConfig.Resolved = r
			GlobalConfig.FormatStr = r.Format
			GlobalConfig.LogLevelStr = r.LogLevel
			GlobalConfig.Logger = log.New(logOut, level)
			GlobalConfig.Logger.Debug("config resolved", "config", r.ConfigPath, "backup_dir", r.BackupDir, "secrets", len(r.Identifiers))
			return nil
		},
	}
	root.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return errors.Wrap(errors.CodeCfgInvalid, "invalid flag", nil, err)
	})

	root.PersistentFlags().StringVar(&GlobalConfig.ConfigStr, "config", "", "Config file path (YAML); default: ./keyreset.yaml or $XDG_CONFIG_HOME/keyreset/keyreset.yaml")
	root.PersistentFlags().StringVarP(&GlobalConfig.FormatStr, "format", "f", "auto", "Output format: json|yaml|table|csv|auto")
	root.PersistentFlags().StringVar(&GlobalConfig.LogLevelStr, "log-level", "info", "Log level on stderr: debug|info|warn|error")

	return root
}
