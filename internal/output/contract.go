// Package output 定义 keyreset 的输出契约：所有命令（含 mcp tool）都输出同一个 Envelope。
package output

import (
	"strings"

	"github.com/zx06/keyreset/internal/errors"
)

// SchemaVersion 在 Envelope 或 Report 结构出现不兼容变化时递增。
const SchemaVersion = 1

type Format string

const (
	FormatAuto  Format = "auto"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
	FormatTable Format = "table"
	FormatCSV   Format = "csv"
)

// Formats 返回全部可选格式，顺序与 --format 帮助一致。
func Formats() []Format {
	return []Format{FormatAuto, FormatJSON, FormatYAML, FormatTable, FormatCSV}
}

// ParseFormat 不区分大小写；未知格式返回 false。
func ParseFormat(s string) (Format, bool) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Formats() {
		if f == known {
			return f, true
		}
	}
	return "", false
}

type ErrorObject struct {
	Code    errors.Code    `json:"code" yaml:"code"`
	Message string         `json:"message" yaml:"message"`
	Details map[string]any `json:"details,omitempty" yaml:"details,omitempty"`
}

// Envelope: {ok, schema_version, data | error}
type Envelope struct {
	OK            bool         `json:"ok" yaml:"ok"`
	SchemaVersion int          `json:"schema_version" yaml:"schema_version"`
	Error         *ErrorObject `json:"error,omitempty" yaml:"error,omitempty"`
	Data          any          `json:"data,omitempty" yaml:"data,omitempty"`
}
