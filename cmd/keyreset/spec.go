package main

import (
	"github.com/spf13/cobra"

	"github.com/zx06/keyreset/internal/app"
	"github.com/zx06/keyreset/internal/output"
	"github.com/zx06/keyreset/internal/secret"
)

// NewSpecCommand creates the spec command
func NewSpecCommand(a *app.App, w *output.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "spec",
		Short: "Export tool spec for AI/agents",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := parseOutputFormat(GlobalConfig.FormatStr)
			if err != nil {
				return err
			}
			return w.WriteOK(format, a.BuildSpec(secret.PlatformKind()))
		},
	}
}
