package app

import (
	"encoding/json"

	"github.com/zx06/keyreset/internal/backup"
	"github.com/zx06/keyreset/internal/errors"
	"github.com/zx06/keyreset/internal/output"
	"github.com/zx06/keyreset/internal/secret"
	"github.com/zx06/keyreset/internal/spec"
)

type App struct {
	Version string
	Commit  string
	Date    string
}

func New(version, commit, date string) App {
	return App{Version: version, Commit: commit, Date: date}
}

// BuildSpec 导出命令、错误码与备份文件 schema；backend 为当前平台的 store 形态（可为空）。
func (a App) BuildSpec(backend secret.Kind) spec.Spec {
	globalFlags := []spec.FlagSpec{
		{Name: "config", Env: "KEYRESET_CONFIG", Default: "", Description: "Config file path (YAML); default: ./keyreset.yaml or $XDG_CONFIG_HOME/keyreset/keyreset.yaml"},
		{Name: "format", Shorthand: "f", Env: "KEYRESET_FORMAT", Default: "auto", Description: "Output format: json|yaml|table|csv|auto"},
		{Name: "log-level", Env: "KEYRESET_LOG_LEVEL", Default: "info", Description: "Log level on stderr: debug|info|warn|error"},
	}
	with := func(extra ...spec.FlagSpec) []spec.FlagSpec {
		out := append([]spec.FlagSpec{}, globalFlags...)
		return append(out, extra...)
	}
	yes := spec.FlagSpec{Name: "yes", Shorthand: "y", Default: "false", Description: "Skip the confirmation prompt"}
	dryRun := spec.FlagSpec{Name: "dry-run", Default: "false", Description: "Report what would change without touching the secret store"}
	dirArg := "[dir]"

	return spec.Spec{
		SchemaVersion: output.SchemaVersion,
		Backend:       string(backend),
		Commands: []spec.CommandSpec{
			{Name: "backup", Args: dirArg, Description: "Copy the configured secrets into the backup file in dir", Flags: with()},
			{Name: "clear", Description: "Delete the configured secrets from the secret store", Flags: with(yes, dryRun)},
			{Name: "restore", Args: dirArg, Description: "Write the secrets from the backup file in dir back into the secret store", Flags: with(yes, dryRun)},
			{Name: "verify", Args: dirArg, Description: "Compare the secret store with the daemon view and the backup file", Flags: with()},
			{Name: "list", Description: "List the configured secrets and the backup file name", Flags: with()},
			{Name: "mcp server", Description: "Serve the operations as MCP tools", Flags: with(
				spec.FlagSpec{Name: "transport", Env: "KEYRESET_MCP_TRANSPORT", Default: "stdio", Description: "stdio|streamable_http"},
				spec.FlagSpec{Name: "http-addr", Default: "127.0.0.1:8787", Description: "Listen address for streamable_http"},
				spec.FlagSpec{Name: "http-auth-token", Env: "KEYRESET_MCP_AUTH_TOKEN", Description: "Bearer token for streamable_http"},
				spec.FlagSpec{Name: "yes", Default: "false", Description: "Allow the clear and restore tools"},
			)},
			{Name: "spec", Description: "Export tool spec for AI/agents", Flags: with()},
			{Name: "version", Description: "Print version information", Flags: with()},
		},
		BackupFiles: backupFiles(),
		ErrorCodes:  errors.AllCodes(),
	}
}

func backupFiles() []spec.BackupFileSpec {
	kinds := []secret.Kind{secret.KindCollection, secret.KindCredential}
	out := make([]spec.BackupFileSpec, 0, len(kinds))
	for _, k := range kinds {
		c, err := backup.ForKind(k)
		if err != nil {
			continue
		}
		out = append(out, spec.BackupFileSpec{Backend: string(k), Name: c.FileName(), Schema: schemaDoc(c)})
	}
	return out
}

// schemaDoc 经由 JSON 把 schema 转为普通 map，yaml 输出与 json 保持一致。
func schemaDoc(c backup.Codec) map[string]any {
	b, err := json.Marshal(c.Schema())
	if err != nil {
		return nil
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return nil
	}
	return m
}

type VersionInfo struct {
	Version string `json:"version" yaml:"version"`
	Commit  string `json:"commit" yaml:"commit"`
	Date    string `json:"date" yaml:"date"`
}

func (a App) VersionInfo() VersionInfo {
	return VersionInfo{Version: a.Version, Commit: a.Commit, Date: a.Date}
}
