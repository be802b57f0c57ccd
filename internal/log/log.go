package log

import (
	"io"
	"log/slog"
	"strings"

	"github.com/zx06/keyreset/internal/errors"
)

// New 返回写入到 w 的 slog.Logger。
// 注意：stdout=数据，日志应始终写 stderr（由调用方传入）。
// secret 内容从不进入日志，只记录 identifier 与字节数。
func New(w io.Writer, level slog.Level) *slog.Logger {
	h := slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	return slog.New(h)
}

// ParseLevel 解析 debug|info|warn|error（大小写不敏感，空串视为 info）。
func ParseLevel(s string) (slog.Level, *errors.XError) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, errors.New(errors.CodeCfgInvalid, "invalid log level", map[string]any{"log_level": s})
	}
}
