package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/zx06/keyreset/internal/errors"
	"github.com/zx06/keyreset/internal/output"
	"github.com/zx06/keyreset/internal/reset"
	"github.com/zx06/keyreset/internal/secret"
)

// Swapped out in tests.
var (
	openStore       secret.Opener = secret.Open
	newDaemonReader               = secret.NewDaemonReader
	confirm                       = confirmInteractive
)

// MutateFlags are shared by clear and restore.
type MutateFlags struct {
	Yes    bool
	DryRun bool
}

func addMutateFlags(cmd *cobra.Command, f *MutateFlags) {
	cmd.Flags().BoolVarP(&f.Yes, "yes", "y", false, "Skip the confirmation prompt")
	cmd.Flags().BoolVar(&f.DryRun, "dry-run", false, "Report what would change without touching the secret store")
}

// NewBackupCommand creates the backup command
func NewBackupCommand(w *output.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "backup [dir]",
		Short: "Copy the configured secrets into the backup file in dir",
		Args:  dirArg,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := backupDir(args)
			return runOperation(w, func(r *reset.Runner) (reset.Report, *errors.XError) {
				return r.Backup(dir)
			})
		},
	}
}

// NewClearCommand creates the clear command
func NewClearCommand(w *output.Writer) *cobra.Command {
	flags := &MutateFlags{}
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete the configured secrets from the secret store",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := confirmMutation(flags, fmt.Sprintf("Delete %d secret(s) from the %s?", len(GlobalConfig.Resolved.Identifiers), secret.PlatformKind())); err != nil {
				return err
			}
			return runOperation(w, func(r *reset.Runner) (reset.Report, *errors.XError) {
				return r.Clear(reset.Options{DryRun: flags.DryRun})
			})
		},
	}
	addMutateFlags(cmd, flags)
	return cmd
}

// NewRestoreCommand creates the restore command
func NewRestoreCommand(w *output.Writer) *cobra.Command {
	flags := &MutateFlags{}
	cmd := &cobra.Command{
		Use:   "restore [dir]",
		Short: "Write the secrets from the backup file in dir back into the secret store",
		Args:  dirArg,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := backupDir(args)
			if err := confirmMutation(flags, fmt.Sprintf("Overwrite the configured secrets in the %s from %s?", secret.PlatformKind(), dir)); err != nil {
				return err
			}
			return runOperation(w, func(r *reset.Runner) (reset.Report, *errors.XError) {
				return r.Restore(dir, reset.Options{DryRun: flags.DryRun})
			})
		},
	}
	addMutateFlags(cmd, flags)
	return cmd
}

// NewVerifyCommand creates the verify command
func NewVerifyCommand(w *output.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "verify [dir]",
		Short: "Compare the secret store with the daemon view and the backup file",
		Args:  dirArg,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := backupDir(args)
			return runOperation(w, func(r *reset.Runner) (reset.Report, *errors.XError) {
				r.Daemon = newDaemonReader()
				return r.Verify(dir)
			})
		},
	}
}

// NewListCommand creates the list command
func NewListCommand(w *output.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the configured secrets and the backup file",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := parseOutputFormat(GlobalConfig.FormatStr)
			if err != nil {
				return err
			}
			r := GlobalConfig.Resolved
			return w.WriteOK(format, reset.NewListing(secret.PlatformKind(), r.Identifiers, r.BackupDir))
		},
	}
}

// runOperation opens the platform store for one operation and writes its report.
func runOperation(w *output.Writer, fn func(r *reset.Runner) (reset.Report, *errors.XError)) error {
	format, err := parseOutputFormat(GlobalConfig.FormatStr)
	if err != nil {
		return err
	}
	store, err := openStore()
	if err != nil {
		return errors.Wrap(errors.CodeStoreUnavailable, "failed to open secret store", map[string]any{"backend": string(secret.PlatformKind())}, err)
	}
	defer store.Close()

	r, xe := reset.New(store, GlobalConfig.Resolved.Identifiers, GlobalConfig.Logger)
	if xe != nil {
		return xe
	}
	rep, xe := fn(r)
	if xe != nil {
		return xe
	}
	return w.WriteOK(format, rep)
}

// confirmMutation asks before clear / restore unless --yes or --dry-run.
func confirmMutation(f *MutateFlags, title string) error {
	if f.Yes || f.DryRun {
		return nil
	}
	ok, err := confirm(title)
	if err != nil {
		return errors.Wrap(errors.CodeAborted, "confirmation failed", nil, err)
	}
	if !ok {
		return errors.New(errors.CodeAborted, "aborted by user", nil)
	}
	return nil
}

// confirmInteractive prompts only when both stdin and stdout are terminals.
// Non-interactive runs proceed without a prompt.
func confirmInteractive(title string) (bool, error) {
	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		return true, nil
	}
	var ok bool
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(title).
				Affirmative("Yes").
				Negative("No").
				Value(&ok),
		),
	).Run()
	if err != nil {
		return false, err
	}
	return ok, nil
}
