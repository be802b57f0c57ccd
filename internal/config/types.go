package config

import "github.com/zx06/keyreset/internal/secret"

// File 表示 keyreset.yaml 的配置结构。
// 约束：配置优先级为 CLI > ENV > Config > 默认值。
type File struct {
	Format    string `yaml:"format"`
	LogLevel  string `yaml:"log_level"`
	BackupDir string `yaml:"backup_dir"`

	// Secrets 是受管的 identifier 列表；为空时使用 secret.DefaultIdentifiers()。
	Secrets []secret.Identifier `yaml:"secrets"`

	MCP MCPConfig `yaml:"mcp"`
}

type MCPConfig struct {
	Transport string        `yaml:"transport"` // stdio | streamable_http
	HTTP      MCPHTTPConfig `yaml:"http"`
}

type MCPHTTPConfig struct {
	Addr      string `yaml:"addr"`
	AuthToken string `yaml:"auth_token"`
}

const (
	TransportStdio          = "stdio"
	TransportStreamableHTTP = "streamable_http"

	DefaultMCPHTTPAddr = "127.0.0.1:8787"
)

type Resolved struct {
	ConfigPath  string
	Format      string
	LogLevel    string
	BackupDir   string
	Identifiers []secret.Identifier
	MCP         MCPConfig
}

type Options struct {
	// ConfigPath: 若非空，则只读取该文件（不存在报错）。
	ConfigPath string

	// CLI
	CLIFormat      string
	CLIFormatSet   bool
	CLILogLevel    string
	CLILogLevelSet bool

	// ENV（由调用方注入，便于测试）
	EnvFormat    string
	EnvLogLevel  string
	EnvBackupDir string
	EnvMCPToken  string

	// WorkDir 用于默认路径（为空则使用进程当前工作目录）。
	WorkDir string

	// ConfigHome / StateHome 为空时取 XDG 目录。
	ConfigHome string
	StateHome  string
}
