package config

import (
	"github.com/zx06/keyreset/internal/errors"
	"github.com/zx06/keyreset/internal/secret"
)

// Resolve 合并配置：CLI > ENV > Config > 默认值，并校验 secrets 列表。
func Resolve(opts Options) (Resolved, *errors.XError) {
	opts.fill()

	cfg, cfgPath, xe := LoadConfig(opts)
	if xe != nil {
		return Resolved{}, xe
	}

	// format：--format > KEYRESET_FORMAT > format > auto
	format := "auto"
	if cfg.Format != "" {
		format = cfg.Format
	}
	if opts.EnvFormat != "" {
		format = opts.EnvFormat
	}
	if opts.CLIFormatSet {
		format = opts.CLIFormat
	}

	// log level：--log-level > KEYRESET_LOG_LEVEL > log_level > info
	level := "info"
	if cfg.LogLevel != "" {
		level = cfg.LogLevel
	}
	if opts.EnvLogLevel != "" {
		level = opts.EnvLogLevel
	}
	if opts.CLILogLevelSet {
		level = opts.CLILogLevel
	}

	// backup dir：KEYRESET_BACKUP_DIR > backup_dir > $XDG_STATE_HOME/keyreset
	// 命令行位置参数 <dir> 由 cmd 层处理，优先于这里的结果。
	dir := DefaultBackupDir(opts.StateHome)
	if cfg.BackupDir != "" {
		dir = cfg.BackupDir
	}
	if opts.EnvBackupDir != "" {
		dir = opts.EnvBackupDir
	}

	ids, xe := resolveIdentifiers(cfg.Secrets, cfgPath)
	if xe != nil {
		return Resolved{}, xe
	}

	mcp, xe := resolveMCP(cfg.MCP, opts.EnvMCPToken, cfgPath)
	if xe != nil {
		return Resolved{}, xe
	}

	return Resolved{
		ConfigPath:  cfgPath,
		Format:      format,
		LogLevel:    level,
		BackupDir:   dir,
		Identifiers: ids,
		MCP:         mcp,
	}, nil
}

func resolveIdentifiers(list []secret.Identifier, cfgPath string) ([]secret.Identifier, *errors.XError) {
	if len(list) == 0 {
		return secret.DefaultIdentifiers(), nil
	}
	seen := make(map[secret.Identifier]bool, len(list))
	out := make([]secret.Identifier, 0, len(list))
	for i, id := range list {
		if err := id.Validate(); err != nil {
			return nil, errors.Wrap(errors.CodeCfgInvalid, "invalid entry in secrets", map[string]any{"path": cfgPath, "index": i}, err)
		}
		if seen[id] {
			return nil, errors.New(errors.CodeCfgInvalid, "duplicate entry in secrets", map[string]any{"path": cfgPath, "id": id.String()})
		}
		seen[id] = true
		out = append(out, id)
	}
	return out, nil
}

func resolveMCP(m MCPConfig, envToken, cfgPath string) (MCPConfig, *errors.XError) {
	switch m.Transport {
	case "":
		m.Transport = TransportStdio
	case TransportStdio, TransportStreamableHTTP:
	default:
		return MCPConfig{}, errors.New(errors.CodeCfgInvalid, "invalid mcp transport", map[string]any{"path": cfgPath, "transport": m.Transport})
	}
	if m.HTTP.Addr == "" {
		m.HTTP.Addr = DefaultMCPHTTPAddr
	}
	if envToken != "" {
		m.HTTP.AuthToken = envToken
	}
	return m, nil
}
