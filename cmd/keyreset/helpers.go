package main

import (
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/zx06/keyreset/internal/errors"
	"github.com/zx06/keyreset/internal/output"
)

// parseOutputFormat parses and validates the output format string
func parseOutputFormat(s string) (output.Format, error) {
	f, ok := output.ParseFormat(s)
	if !ok {
		return "", errors.New(errors.CodeCfgInvalid, "invalid output format", map[string]any{"format": s})
	}
	return resolveAuto(f), nil
}

// resolveFormatForError resolves the format for error output
func resolveFormatForError(s string) output.Format {
	f, ok := output.ParseFormat(s)
	if !ok {
		f = output.FormatAuto
	}
	return resolveAuto(f)
}

// resolveAuto resolves "auto" format to appropriate format based on TTY
func resolveAuto(f output.Format) output.Format {
	if f != output.FormatAuto {
		return f
	}
	if term.IsTerminal(int(os.Stdout.Fd())) {
		return output.FormatTable
	}
	return output.FormatJSON
}

// normalizeErr normalizes any error to XError
func normalizeErr(err error) *errors.XError {
	if xe, ok := errors.As(err); ok {
		return xe
	}
	// Preserve original error message
	return errors.Wrap(errors.CodeInternal, err.Error(), nil, err)
}

// dirArg accepts at most one positional backup directory.
func dirArg(cmd *cobra.Command, args []string) error {
	if len(args) > 1 {
		return errors.New(errors.CodeCfgInvalid, "too many arguments", map[string]any{"command": cmd.Name(), "args": args})
	}
	return nil
}

// noArgs rejects positional arguments.
func noArgs(cmd *cobra.Command, args []string) error {
	if len(args) > 0 {
		return errors.New(errors.CodeCfgInvalid, "command takes no arguments", map[string]any{"command": cmd.Name(), "args": args})
	}
	return nil
}

// backupDir returns the positional dir, else the resolved backup_dir.
func backupDir(args []string) string {
	if len(args) > 0 && args[0] != "" {
		return args[0]
	}
	return GlobalConfig.Resolved.BackupDir
}
