// Package reset 按配置的 identifier 列表编排 backup / clear / restore / verify。
//
// 每个操作顺序处理 identifier；不存在（item 缺失、备份文件缺失）从不是错误，
// 而第一个 OS 级错误会中止本次调用，已完成部分的报告随错误一起返回。
package reset

import (
	"bytes"
	"log/slog"

	"github.com/zx06/keyreset/internal/backup"
	"github.com/zx06/keyreset/internal/errors"
	"github.com/zx06/keyreset/internal/secret"
)

const (
	ActionBackup  = "backup"
	ActionClear   = "clear"
	ActionRestore = "restore"
	ActionVerify  = "verify"
)

// Options 控制会修改 store 的操作。
type Options struct {
	DryRun bool
}

// Runner 持有一次调用所需的全部协作者。
type Runner struct {
	Store secret.Store
	Codec backup.Codec
	IDs   []secret.Identifier

	// Daemon 为 nil 时 verify 跳过 daemon 视角的比对。
	Daemon secret.DaemonReader
	Logger *slog.Logger
}

// New 根据 store 的形态选择 Codec，并检查 ids 在该形态下不会互相覆盖。
func New(store secret.Store, ids []secret.Identifier, logger *slog.Logger) (*Runner, *errors.XError) {
	codec, err := backup.ForKind(store.Kind())
	if err != nil {
		return nil, errors.Wrap(errors.CodeStoreUnavailable, "unsupported secret store", map[string]any{"backend": string(store.Kind())}, err)
	}
	seen := make(map[string]secret.Identifier, len(ids))
	for _, id := range ids {
		if err := id.Validate(); err != nil {
			return nil, errors.Wrap(errors.CodeCfgInvalid, "invalid secret identifier", nil, err)
		}
		key := codec.Key(id)
		if prev, dup := seen[key]; dup {
			return nil, errors.New(errors.CodeCfgInvalid, "secret identifiers share a backup key",
				map[string]any{"key": key, "first": prev.String(), "second": id.String()})
		}
		seen[key] = id
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Runner{Store: store, Codec: codec, IDs: ids, Logger: logger}, nil
}

func (r *Runner) report(action string) Report {
	return Report{Action: action, Backend: r.Store.Kind(), Items: []Item{}}
}

// fail 把已完成部分的报告挂到错误上，并记录失败的 identifier。
func (r *Runner) fail(rep Report, id secret.Identifier, code errors.Code, msg string, err error) (Report, *errors.XError) {
	rep.add(id.String(), StatusFailed, 0)
	r.Logger.Error(msg, "action", rep.Action, "id", id.String(), "err", err)
	return rep, errors.Wrap(code, msg, map[string]any{"id": id.String(), "report": rep}, err)
}

// Backup 读取每个 identifier 并把存在的写入 dir 下的备份文件（整体覆盖）。
func (r *Runner) Backup(dir string) (Report, *errors.XError) {
	rep := r.report(ActionBackup)
	rep.File = backup.Path(dir, r.Codec)
	snap := backup.Snapshot{}
	for _, id := range r.IDs {
		rec, ok, err := r.Store.Read(id)
		if err != nil {
			return r.fail(rep, id, errors.CodeStoreReadFailed, "failed to read secret", err)
		}
		if !ok {
			r.Logger.Info("secret not found, skipped", "id", id.String())
			rep.add(id.String(), StatusNotFound, 0)
			continue
		}
		snap[r.Codec.Key(id)] = rec
		r.Logger.Info("secret backed up", "id", id.String(), "bytes", len(rec.Blob))
		rep.add(id.String(), StatusBackedUp, len(rec.Blob))
	}
	path, xe := backup.WriteFile(dir, r.Codec, snap)
	if xe != nil {
		return rep, xe.WithDetail("report", rep)
	}
	rep.File = path
	return rep, nil
}

// Clear 删除每个 identifier；从不触碰列表以外的 secret。
func (r *Runner) Clear(opts Options) (Report, *errors.XError) {
	rep := r.report(ActionClear)
	rep.DryRun = opts.DryRun
	for _, id := range r.IDs {
		if opts.DryRun {
			rec, ok, err := r.Store.Read(id)
			if err != nil {
				return r.fail(rep, id, errors.CodeStoreReadFailed, "failed to read secret", err)
			}
			if ok {
				rep.add(id.String(), StatusWouldClear, len(rec.Blob))
			} else {
				rep.add(id.String(), StatusNotFound, 0)
			}
			continue
		}
		removed, err := r.Store.Delete(id)
		if err != nil {
			return r.fail(rep, id, errors.CodeStoreDeleteFailed, "failed to delete secret", err)
		}
		if removed {
			r.Logger.Info("secret cleared", "id", id.String())
			rep.add(id.String(), StatusCleared, 0)
		} else {
			r.Logger.Info("secret not found, nothing to clear", "id", id.String())
			rep.add(id.String(), StatusNotFound, 0)
		}
	}
	return rep, nil
}

// Restore 读取 dir 下的备份文件，对其中每个已配置的 identifier 先删除再写入。
// 备份文件不存在时不做任何修改，报告 NoBackup。
// 备份中不在配置列表里的条目不会写入，报告为 ignored。
func (r *Runner) Restore(dir string, opts Options) (Report, *errors.XError) {
	rep := r.report(ActionRestore)
	rep.DryRun = opts.DryRun
	snap, path, xe := backup.ReadFile(dir, r.Codec)
	rep.File = path
	if xe != nil {
		if xe.Code == errors.CodeBackupNotFound {
			r.Logger.Info("no backup found, skipping restore", "file", path)
			rep.NoBackup = true
			for _, id := range r.IDs {
				rep.add(id.String(), StatusNoBackup, 0)
			}
			return rep, nil
		}
		return rep, xe
	}

	configured := make(map[string]bool, len(r.IDs))
	for _, id := range r.IDs {
		key := r.Codec.Key(id)
		configured[key] = true
		rec, ok := snap[key]
		if !ok {
			rep.add(id.String(), StatusNotFound, 0)
			continue
		}
		if opts.DryRun {
			rep.add(id.String(), StatusWouldRestore, len(rec.Blob))
			continue
		}
		if _, err := r.Store.Delete(id); err != nil {
			return r.fail(rep, id, errors.CodeStoreDeleteFailed, "failed to delete secret before restore", err)
		}
		if err := r.Store.Write(id, rec); err != nil {
			return r.fail(rep, id, errors.CodeStoreWriteFailed, "failed to write secret", err)
		}
		r.Logger.Info("secret restored", "id", id.String(), "bytes", len(rec.Blob))
		rep.add(id.String(), StatusRestored, len(rec.Blob))
	}
	for _, key := range snap.Keys() {
		if configured[key] {
			continue
		}
		r.Logger.Warn("backup entry is not a configured secret, ignored", "key", key)
		rep.add(key, StatusIgnored, len(snap[key].Blob))
	}
	return rep, nil
}

// Verify 只读：比对 store 原始字节、daemon 视角读到的字节与备份文件中的字节。
// 任一 identifier 不一致时，返回完整报告与 CodeVerifyMismatch。
func (r *Runner) Verify(dir string) (Report, *errors.XError) {
	rep := r.report(ActionVerify)
	snap, path, xe := backup.ReadFile(dir, r.Codec)
	rep.File = path
	if xe != nil {
		if xe.Code != errors.CodeBackupNotFound {
			return rep, xe
		}
		rep.NoBackup = true
		snap = nil
	}

	mismatched := 0
	for _, id := range r.IDs {
		rec, ok, err := r.Store.Read(id)
		if err != nil {
			return r.fail(rep, id, errors.CodeStoreReadFailed, "failed to read secret", err)
		}
		status := r.verifyOne(id, rec, ok, snap)
		if status.Mismatch() {
			mismatched++
			r.Logger.Warn("secret verification failed", "id", id.String(), "status", string(status))
		}
		rep.add(id.String(), status, len(rec.Blob))
	}
	if mismatched > 0 {
		return rep, errors.New(errors.CodeVerifyMismatch, "secret verification failed",
			map[string]any{"mismatched": mismatched, "report": rep})
	}
	return rep, nil
}

func (r *Runner) verifyOne(id secret.Identifier, rec secret.Record, ok bool, snap backup.Snapshot) Status {
	saved, inBackup := snap[r.Codec.Key(id)]
	if !ok {
		if inBackup {
			return StatusBackupMismatch
		}
		return StatusAbsent
	}
	if r.Daemon != nil {
		blob, found, err := r.Daemon.Get(id)
		if err != nil || !found {
			if err != nil {
				r.Logger.Debug("daemon view read failed", "id", id.String(), "err", err)
			}
			return StatusDaemonUnreadable
		}
		if !bytes.Equal(blob, rec.Blob) {
			return StatusDaemonMismatch
		}
	}
	if snap != nil && (!inBackup || !bytes.Equal(saved.Blob, rec.Blob)) {
		return StatusBackupMismatch
	}
	return StatusOK
}
