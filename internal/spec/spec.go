package spec

import "github.com/zx06/keyreset/internal/errors"

type FlagSpec struct {
	Name        string `json:"name" yaml:"name"`
	Shorthand   string `json:"shorthand,omitempty" yaml:"shorthand,omitempty"`
	Env         string `json:"env,omitempty" yaml:"env,omitempty"`
	Default     string `json:"default,omitempty" yaml:"default,omitempty"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

type CommandSpec struct {
	Name        string     `json:"name" yaml:"name"`
	Args        string     `json:"args,omitempty" yaml:"args,omitempty"`
	Description string     `json:"description,omitempty" yaml:"description,omitempty"`
	Flags       []FlagSpec `json:"flags,omitempty" yaml:"flags,omitempty"`
}

// BackupFileSpec 描述一种 store 形态的备份文件；Schema 为 JSON Schema 文档。
type BackupFileSpec struct {
	Backend string         `json:"backend" yaml:"backend"`
	Name    string         `json:"name" yaml:"name"`
	Schema  map[string]any `json:"schema" yaml:"schema"`
}

type Spec struct {
	SchemaVersion int              `json:"schema_version" yaml:"schema_version"`
	Backend       string           `json:"backend,omitempty" yaml:"backend,omitempty"`
	Commands      []CommandSpec    `json:"commands" yaml:"commands"`
	BackupFiles   []BackupFileSpec `json:"backup_files" yaml:"backup_files"`
	ErrorCodes    []errors.Code    `json:"error_codes" yaml:"error_codes"`
}
