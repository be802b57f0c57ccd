package reset

import "github.com/zx06/keyreset/internal/secret"

// Status 是单个 identifier 在一次操作中的结果。
type Status string

const (
	StatusBackedUp     Status = "backed-up"
	StatusNotFound     Status = "not-found"
	StatusCleared      Status = "cleared"
	StatusRestored     Status = "restored"
	StatusIgnored      Status = "ignored"
	StatusNoBackup     Status = "no-backup"
	StatusWouldClear   Status = "would-clear"
	StatusWouldRestore Status = "would-restore"
	StatusFailed       Status = "failed"

	// verify
	StatusOK               Status = "ok"
	StatusAbsent           Status = "absent"
	StatusDaemonMismatch   Status = "daemon-mismatch"
	StatusBackupMismatch   Status = "backup-mismatch"
	StatusDaemonUnreadable Status = "daemon-unreadable"
)

// Mismatch 报告 verify 状态是否表示不一致。
func (s Status) Mismatch() bool {
	switch s {
	case StatusDaemonMismatch, StatusBackupMismatch, StatusDaemonUnreadable:
		return true
	default:
		return false
	}
}

// Item 是报告中的一行。Bytes 只是长度，secret 内容从不进入报告。
type Item struct {
	ID     string `json:"id" yaml:"id"`
	Status Status `json:"status" yaml:"status"`
	Bytes  int    `json:"bytes" yaml:"bytes"`
}

// Report 是 backup / clear / restore / verify 的输出。
type Report struct {
	Action   string      `json:"action" yaml:"action"`
	Backend  secret.Kind `json:"backend" yaml:"backend"`
	File     string      `json:"file,omitempty" yaml:"file,omitempty"`
	DryRun   bool        `json:"dry_run,omitempty" yaml:"dry_run,omitempty"`
	NoBackup bool        `json:"no_backup,omitempty" yaml:"no_backup,omitempty"`
	Items    []Item      `json:"items" yaml:"items"`
}

func (r *Report) add(id string, status Status, n int) {
	r.Items = append(r.Items, Item{ID: id, Status: status, Bytes: n})
}

// Status 返回 id 对应的状态；不存在时返回空串。
func (r Report) Status(id string) Status {
	for _, it := range r.Items {
		if it.ID == id {
			return it.Status
		}
	}
	return ""
}

// ToTableData 实现 output.TableFormatter：每个 identifier 一行。
func (r Report) ToTableData() ([]string, []map[string]any, bool) {
	rows := make([]map[string]any, 0, len(r.Items))
	for _, it := range r.Items {
		rows = append(rows, map[string]any{
			"id":     it.ID,
			"status": string(it.Status),
			"bytes":  it.Bytes,
		})
	}
	return []string{"id", "status", "bytes"}, rows, true
}
