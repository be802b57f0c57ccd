package main

import (
	"io"
	"os"

	"github.com/zx06/keyreset/internal/app"
	"github.com/zx06/keyreset/internal/errors"
	"github.com/zx06/keyreset/internal/output"
)

func main() {
	exit := run(os.Args[1:], os.Stdout, os.Stderr)
	os.Exit(exit)
}

// run is the main entry point
func run(args []string, stdout, stderr io.Writer) int {
	// Initialize application
	a := app.New(version, commit, date)
	w := output.New(stdout, stderr)

	// Create root command
	root := NewRootCommand(stderr)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	// Add subcommands
	root.AddCommand(NewBackupCommand(&w))
	root.AddCommand(NewClearCommand(&w))
	root.AddCommand(NewRestoreCommand(&w))
	root.AddCommand(NewVerifyCommand(&w))
	root.AddCommand(NewListCommand(&w))
	root.AddCommand(NewSpecCommand(&a, &w))
	root.AddCommand(NewVersionCommand(&a, &w))
	root.AddCommand(NewMCPCommand())

	// Execute and handle errors
	if err := root.Execute(); err != nil {
		xe := normalizeErr(err)
		format := resolveFormatForError(GlobalConfig.FormatStr)
		_ = w.WriteError(format, xe)
		return int(errors.ExitCodeFor(xe.Code))
	}

	return int(errors.ExitOK)
}
