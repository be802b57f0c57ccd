package app

import (
	"testing"

	"github.com/zx06/keyreset/internal/secret"
)

func TestBuildSpecHasSchemaVersion(t *testing.T) {
	a := New("dev", "abc123", "2024-01-01")
	s := a.BuildSpec(secret.KindCollection)
	if s.SchemaVersion != 1 {
		t.Fatalf("schema_version=%d want 1", s.SchemaVersion)
	}
	if len(s.ErrorCodes) == 0 {
		t.Fatalf("expected error codes")
	}
	if s.Backend != "secret-service" {
		t.Fatalf("backend=%q", s.Backend)
	}
	if len(s.Commands) == 0 || len(s.Commands[0].Flags) == 0 {
		t.Fatalf("expected commands/flags")
	}
	seenFormat := false
	for _, f := range s.Commands[0].Flags {
		if f.Name == "format" && f.Env == "KEYRESET_FORMAT" {
			seenFormat = true
		}
	}
	if !seenFormat {
		t.Fatalf("expected format flag in spec")
	}
}

func TestBuildSpecCommands(t *testing.T) {
	s := New("dev", "", "").BuildSpec("")
	want := map[string]bool{"backup": false, "clear": false, "restore": false, "verify": false, "list": false}
	for _, c := range s.Commands {
		if _, ok := want[c.Name]; ok {
			want[c.Name] = true
		}
		if c.Name == "clear" {
			names := map[string]bool{}
			for _, f := range c.Flags {
				names[f.Name] = true
			}
			if !names["yes"] || !names["dry-run"] {
				t.Errorf("clear flags missing yes/dry-run: %+v", c.Flags)
			}
		}
	}
	for name, seen := range want {
		if !seen {
			t.Errorf("command %q missing from spec", name)
		}
	}
	// 全局 flag 切片不应被各命令的 append 共享
	for _, c := range s.Commands {
		if c.Name == "backup" {
			for _, f := range c.Flags {
				if f.Name == "yes" {
					t.Fatal("backup should not inherit clear's flags")
				}
			}
		}
	}
}

func TestBuildSpecBackupFiles(t *testing.T) {
	s := New("dev", "", "").BuildSpec(secret.KindCredential)
	if len(s.BackupFiles) != 2 {
		t.Fatalf("backup files=%d", len(s.BackupFiles))
	}
	names := map[string]string{}
	for _, f := range s.BackupFiles {
		names[f.Backend] = f.Name
		if f.Schema["type"] != "object" {
			t.Errorf("%s schema type=%v", f.Backend, f.Schema["type"])
		}
	}
	if names["credential-manager"] != "keychain-win-backup.json" || names["secret-service"] != "keychain-backup.json" {
		t.Fatalf("names=%v", names)
	}
}

func TestVersionInfo(t *testing.T) {
	a := New("v1.0.0", "abc123", "2024-01-01")
	v := a.VersionInfo()
	if v.Version != "v1.0.0" {
		t.Errorf("version=%s want v1.0.0", v.Version)
	}
	if v.Commit != "abc123" {
		t.Errorf("commit=%s want abc123", v.Commit)
	}
	if v.Date != "2024-01-01" {
		t.Errorf("date=%s want 2024-01-01", v.Date)
	}
}
