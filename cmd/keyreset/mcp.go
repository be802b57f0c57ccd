package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	"github.com/zx06/keyreset/internal/config"
	"github.com/zx06/keyreset/internal/errors"
	mcp_pkg "github.com/zx06/keyreset/internal/mcp"
)

// NewMCPCommand creates the MCP command group
func NewMCPCommand() *cobra.Command {
	mcpCmd := &cobra.Command{
		Use:   "mcp",
		Short: "MCP (Model Context Protocol) server commands",
	}

	mcpCmd.AddCommand(newMCPServerCommand())

	return mcpCmd
}

// newMCPServerCommand creates the MCP server command
func newMCPServerCommand() *cobra.Command {
	opts := &mcpServerOptions{}
	cmd := &cobra.Command{
		Use:   "server",
		Short: "Start MCP server exposing the keychain_* tools",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.transportSet = cmd.Flags().Changed("transport")
			opts.httpAddrSet = cmd.Flags().Changed("http-addr")
			opts.httpAuthTokenSet = cmd.Flags().Changed("http-auth-token")
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runMCPServer(ctx, opts)
		},
	}
	cmd.Flags().StringVar(&opts.transport, "transport", config.TransportStdio, "MCP transport: stdio|streamable_http")
	cmd.Flags().StringVar(&opts.httpAddr, "http-addr", config.DefaultMCPHTTPAddr, "Streamable HTTP listen address")
	cmd.Flags().StringVar(&opts.httpAuthToken, "http-auth-token", "", "Streamable HTTP auth token (required for streamable_http)")
	cmd.Flags().BoolVar(&opts.allowWrite, "yes", false, "Allow keychain_clear and keychain_restore to modify the secret store")
	return cmd
}

// runMCPServer runs the MCP server
func runMCPServer(ctx context.Context, opts *mcpServerOptions) error {
	resolved, xe := resolveMCPServerOptions(opts, GlobalConfig.Resolved.MCP)
	if xe != nil {
		return xe
	}

	logger := GlobalConfig.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	server, err := mcp_pkg.CreateServer(version, mcp_pkg.Options{
		Open:        openStore,
		Identifiers: GlobalConfig.Resolved.Identifiers,
		Daemon:      newDaemonReader(),
		BackupDir:   GlobalConfig.Resolved.BackupDir,
		Logger:      logger,
		AllowWrite:  opts.allowWrite,
	})
	if err != nil {
		return errors.AsOrWrap(err)
	}

	switch resolved.transport {
	case config.TransportStdio:
		return server.Run(ctx, &mcp.StdioTransport{})
	case config.TransportStreamableHTTP:
		handler, err := mcp_pkg.NewStreamableHTTPHandler(server, resolved.httpAuthToken)
		if err != nil {
			return errors.AsOrWrap(err)
		}
		return mcp_pkg.ServeHTTP(ctx, resolved.httpAddr, handler, logger)
	default:
		return errors.New(errors.CodeCfgInvalid, "unsupported mcp transport", map[string]any{"transport": resolved.transport})
	}
}

type mcpServerOptions struct {
	transport        string
	transportSet     bool
	httpAddr         string
	httpAddrSet      bool
	httpAuthToken    string
	httpAuthTokenSet bool
	allowWrite       bool
}

type mcpServerResolved struct {
	transport     string
	httpAddr      string
	httpAuthToken string
}

// resolveMCPServerOptions merges flag > ENV > config. The config value already
// carries KEYRESET_MCP_AUTH_TOKEN.
func resolveMCPServerOptions(opts *mcpServerOptions, cfg config.MCPConfig) (mcpServerResolved, *errors.XError) {
	if opts == nil {
		opts = &mcpServerOptions{}
	}

	transport := firstNonEmpty(
		valueIfSet(opts.transportSet, opts.transport),
		os.Getenv("KEYRESET_MCP_TRANSPORT"),
		cfg.Transport,
		config.TransportStdio,
	)
	if transport != config.TransportStdio && transport != config.TransportStreamableHTTP {
		return mcpServerResolved{}, errors.New(errors.CodeCfgInvalid, "invalid mcp transport", map[string]any{"transport": transport})
	}

	httpAddr := firstNonEmpty(
		valueIfSet(opts.httpAddrSet, opts.httpAddr),
		os.Getenv("KEYRESET_MCP_HTTP_ADDR"),
		cfg.HTTP.Addr,
		config.DefaultMCPHTTPAddr,
	)

	authToken := firstNonEmpty(
		valueIfSet(opts.httpAuthTokenSet, opts.httpAuthToken),
		cfg.HTTP.AuthToken,
	)
	if transport == config.TransportStreamableHTTP && authToken == "" {
		return mcpServerResolved{}, errors.New(errors.CodeCfgInvalid, "streamable http transport requires auth token", nil)
	}

	return mcpServerResolved{
		transport:     transport,
		httpAddr:      httpAddr,
		httpAuthToken: authToken,
	}, nil
}

func valueIfSet(set bool, value string) string {
	if !set {
		return ""
	}
	return value
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if value != "" {
			return value
		}
	}
	return ""
}
