package backup

import (
	"os"
	"path/filepath"

	"github.com/zx06/keyreset/internal/errors"
)

// Path 返回 dir 下该 Codec 的备份文件路径。
func Path(dir string, c Codec) string {
	return filepath.Join(dir, c.FileName())
}

// WriteFile 编码 snap 并整体覆盖写入 dir 下的备份文件；dir 不存在时创建。
func WriteFile(dir string, c Codec, snap Snapshot) (string, *errors.XError) {
	path := Path(dir, c)
	data, err := c.Encode(snap)
	if err != nil {
		return path, errors.Wrap(errors.CodeInternal, "failed to encode backup", map[string]any{"path": path}, err)
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return path, errors.Wrap(errors.CodeBackupWriteFailed, "failed to create backup directory", map[string]any{"dir": dir}, err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return path, errors.Wrap(errors.CodeBackupWriteFailed, "failed to write backup file", map[string]any{"path": path}, err)
	}
	return path, nil
}

// ReadFile 读取并解码 dir 下的备份文件。
// 文件不存在时返回 CodeBackupNotFound，调用方视为"没有备份"而非失败。
func ReadFile(dir string, c Codec) (Snapshot, string, *errors.XError) {
	path := Path(dir, c)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, path, errors.New(errors.CodeBackupNotFound, "backup file not found", map[string]any{"path": path})
		}
		return nil, path, errors.Wrap(errors.CodeBackupInvalid, "failed to read backup file", map[string]any{"path": path}, err)
	}
	snap, xe := c.Decode(data)
	if xe != nil {
		return nil, path, xe.WithDetail("path", path)
	}
	return snap, path, nil
}
