package mcp

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/zx06/keyreset/internal/errors"
	"github.com/zx06/keyreset/internal/output"
	"github.com/zx06/keyreset/internal/reset"
	"github.com/zx06/keyreset/internal/secret"
)

// DirInput is the input of the tools that read or write the backup file.
type DirInput struct {
	Dir string `json:"dir,omitempty" jsonschema:"Backup directory; defaults to the configured backup_dir"`
}

// ClearInput is the input of keychain_clear.
type ClearInput struct {
	DryRun bool `json:"dry_run,omitempty" jsonschema:"Report what would be cleared without deleting"`
}

// RestoreInput is the input of keychain_restore.
type RestoreInput struct {
	Dir    string `json:"dir,omitempty" jsonschema:"Backup directory; defaults to the configured backup_dir"`
	DryRun bool   `json:"dry_run,omitempty" jsonschema:"Report what would be restored without writing"`
}

// Options configures the tools exposed by the server.
type Options struct {
	Open        secret.Opener
	Identifiers []secret.Identifier
	Daemon      secret.DaemonReader
	BackupDir   string
	Logger      *slog.Logger

	// AllowWrite enables clear and restore outside dry-run.
	AllowWrite bool
}

// ToolHandler manages MCP tools
type ToolHandler struct {
	opts Options
}

// NewToolHandler creates a new tool handler
func NewToolHandler(opts Options) *ToolHandler {
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	return &ToolHandler{opts: opts}
}

// RegisterTools registers all tools with the MCP server
func (h *ToolHandler) RegisterTools(server *mcp.Server) {
	mcp.AddTool[DirInput, any](server, &mcp.Tool{
		Name:        "keychain_backup",
		Description: "Copy the configured secrets into the backup file (overwrites it)",
	}, h.Backup)

	mcp.AddTool[ClearInput, any](server, &mcp.Tool{
		Name:        "keychain_clear",
		Description: "Delete the configured secrets from the OS secret store",
	}, h.Clear)

	mcp.AddTool[RestoreInput, any](server, &mcp.Tool{
		Name:        "keychain_restore",
		Description: "Delete then rewrite the configured secrets from the backup file",
	}, h.Restore)

	mcp.AddTool[DirInput, any](server, &mcp.Tool{
		Name:        "keychain_verify",
		Description: "Compare the secret store with the daemon view and the backup file",
	}, h.Verify)

	mcp.AddTool[struct{}, any](server, &mcp.Tool{
		Name:        "keychain_list",
		Description: "List the configured secrets, the store backend and the backup file",
	}, h.List)
}

// withRunner opens the secret store for the duration of one tool call.
func (h *ToolHandler) withRunner(fn func(r *reset.Runner) (reset.Report, *errors.XError)) (*mcp.CallToolResult, any, error) {
	store, err := h.opts.Open()
	if err != nil {
		return h.errorResult(errors.Wrap(errors.CodeStoreUnavailable, "failed to open secret store", nil, err)), nil, nil
	}
	defer store.Close()

	r, xe := reset.New(store, h.opts.Identifiers, h.opts.Logger)
	if xe != nil {
		return h.errorResult(xe), nil, nil
	}
	r.Daemon = h.opts.Daemon
	rep, xe := fn(r)
	if xe != nil {
		return h.errorResult(xe), nil, nil
	}
	return h.okResult(rep), nil, nil
}

func (h *ToolHandler) dir(in string) string {
	if in != "" {
		return in
	}
	return h.opts.BackupDir
}

func (h *ToolHandler) requireWrite(tool string) *errors.XError {
	if h.opts.AllowWrite {
		return nil
	}
	return errors.New(errors.CodeAborted, "tool modifies the secret store; start the server with --yes or use dry_run", map[string]any{"tool": tool})
}

// Backup runs keychain_backup.
func (h *ToolHandler) Backup(ctx context.Context, req *mcp.CallToolRequest, input DirInput) (*mcp.CallToolResult, any, error) {
	dir := h.dir(input.Dir)
	return h.withRunner(func(r *reset.Runner) (reset.Report, *errors.XError) {
		return r.Backup(dir)
	})
}

// Clear runs keychain_clear.
func (h *ToolHandler) Clear(ctx context.Context, req *mcp.CallToolRequest, input ClearInput) (*mcp.CallToolResult, any, error) {
	if !input.DryRun {
		if xe := h.requireWrite("keychain_clear"); xe != nil {
			return h.errorResult(xe), nil, nil
		}
	}
	return h.withRunner(func(r *reset.Runner) (reset.Report, *errors.XError) {
		return r.Clear(reset.Options{DryRun: input.DryRun})
	})
}

// Restore runs keychain_restore.
func (h *ToolHandler) Restore(ctx context.Context, req *mcp.CallToolRequest, input RestoreInput) (*mcp.CallToolResult, any, error) {
	if !input.DryRun {
		if xe := h.requireWrite("keychain_restore"); xe != nil {
			return h.errorResult(xe), nil, nil
		}
	}
	dir := h.dir(input.Dir)
	return h.withRunner(func(r *reset.Runner) (reset.Report, *errors.XError) {
		return r.Restore(dir, reset.Options{DryRun: input.DryRun})
	})
}

// Verify runs keychain_verify.
func (h *ToolHandler) Verify(ctx context.Context, req *mcp.CallToolRequest, input DirInput) (*mcp.CallToolResult, any, error) {
	dir := h.dir(input.Dir)
	return h.withRunner(func(r *reset.Runner) (reset.Report, *errors.XError) {
		return r.Verify(dir)
	})
}

// List runs keychain_list. It does not touch the secret store.
func (h *ToolHandler) List(ctx context.Context, req *mcp.CallToolRequest, input struct{}) (*mcp.CallToolResult, any, error) {
	return h.okResult(reset.NewListing(secret.PlatformKind(), h.opts.Identifiers, h.opts.BackupDir)), nil, nil
}

func (h *ToolHandler) okResult(data any) *mcp.CallToolResult {
	env := output.Envelope{OK: true, SchemaVersion: output.SchemaVersion, Data: data}
	jsonData, err := json.MarshalIndent(env, "", "  ")
	if err != nil {
		return h.errorResult(errors.Wrap(errors.CodeInternal, "failed to marshal result", nil, err))
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: string(jsonData)},
		},
	}
}

func (h *ToolHandler) errorResult(err error) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{
			&mcp.TextContent{Text: h.formatError(err)},
		},
	}
}

// formatError formats an error as JSON
func (h *ToolHandler) formatError(err error) string {
	var xe *errors.XError
	if err != nil {
		xe = errors.AsOrWrap(err)
	} else {
		xe = errors.New(errors.CodeInternal, "unknown error", nil)
	}
	env := output.Envelope{
		OK:            false,
		SchemaVersion: output.SchemaVersion,
		Error:         &output.ErrorObject{Code: xe.Code, Message: xe.Message, Details: xe.Details},
	}
	jsonData, _ := json.MarshalIndent(env, "", "  ")
	return string(jsonData)
}

// CreateServer creates a new MCP server
func CreateServer(version string, opts Options) (*mcp.Server, error) {
	if opts.Open == nil {
		return nil, errors.New(errors.CodeInternal, "secret store opener is nil", nil)
	}
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "keyreset",
		Version: version,
	}, nil)

	handler := NewToolHandler(opts)
	handler.RegisterTools(server)

	return server, nil
}
