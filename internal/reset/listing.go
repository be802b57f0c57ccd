package reset

import (
	"github.com/zx06/keyreset/internal/backup"
	"github.com/zx06/keyreset/internal/secret"
)

// Listing 描述受管的 identifier、store 形态与备份文件位置；不访问 store。
type Listing struct {
	Backend    string   `json:"backend" yaml:"backend"`
	BackupFile string   `json:"backup_file,omitempty" yaml:"backup_file,omitempty"`
	Secrets    []string `json:"secrets" yaml:"secrets"`
}

func NewListing(kind secret.Kind, ids []secret.Identifier, dir string) Listing {
	l := Listing{Backend: string(kind), Secrets: make([]string, 0, len(ids))}
	if c, err := backup.ForKind(kind); err == nil {
		l.BackupFile = backup.Path(dir, c)
	}
	for _, id := range ids {
		l.Secrets = append(l.Secrets, id.String())
	}
	return l
}

func (l Listing) ToTableData() ([]string, []map[string]any, bool) {
	rows := make([]map[string]any, 0, len(l.Secrets))
	for _, s := range l.Secrets {
		rows = append(rows, map[string]any{"id": s, "backend": l.Backend, "backup_file": l.BackupFile})
	}
	return []string{"id", "backend", "backup_file"}, rows, true
}
