package config

import (
	"path/filepath"
	"testing"

	"github.com/zx06/keyreset/internal/errors"
	"github.com/zx06/keyreset/internal/secret"
)

func baseOpts(t *testing.T) Options {
	tmp := t.TempDir()
	return Options{WorkDir: tmp, ConfigHome: tmp, StateHome: filepath.Join(tmp, "state")}
}

func TestResolve_Defaults(t *testing.T) {
	opts := baseOpts(t)
	got, xe := Resolve(opts)
	if xe != nil {
		t.Fatalf("unexpected err: %v", xe)
	}
	if got.ConfigPath != "" {
		t.Fatalf("expected empty config path")
	}
	if got.Format != "auto" || got.LogLevel != "info" {
		t.Fatalf("format=%q level=%q", got.Format, got.LogLevel)
	}
	if got.BackupDir != filepath.Join(opts.StateHome, "keyreset") {
		t.Fatalf("backup dir=%q", got.BackupDir)
	}
	want := secret.DefaultIdentifiers()
	if len(got.Identifiers) != len(want) || got.Identifiers[0] != want[0] || got.Identifiers[1] != want[1] {
		t.Fatalf("identifiers=%v", got.Identifiers)
	}
	if got.MCP.Transport != TransportStdio || got.MCP.HTTP.Addr != DefaultMCPHTTPAddr {
		t.Fatalf("mcp=%+v", got.MCP)
	}
}

func TestResolve_ExplicitConfigMissingIsError(t *testing.T) {
	opts := baseOpts(t)
	opts.ConfigPath = "no_such.yaml"
	_, xe := Resolve(opts)
	if xe == nil || xe.Code != errors.CodeCfgNotFound {
		t.Fatalf("expected CodeCfgNotFound, got %v", xe)
	}
}

func TestResolve_Precedence(t *testing.T) {
	opts := baseOpts(t)
	writeConfig(t, filepath.Join(opts.WorkDir, "keyreset.yaml"), "format: yaml\nlog_level: warn\nbackup_dir: /from/config\n")

	got, xe := Resolve(opts)
	if xe != nil {
		t.Fatal(xe)
	}
	if got.Format != "yaml" || got.LogLevel != "warn" || got.BackupDir != "/from/config" {
		t.Fatalf("config values not applied: %+v", got)
	}

	opts.EnvFormat = "json"
	opts.EnvLogLevel = "debug"
	opts.EnvBackupDir = "/from/env"
	got, xe = Resolve(opts)
	if xe != nil {
		t.Fatal(xe)
	}
	if got.Format != "json" || got.LogLevel != "debug" || got.BackupDir != "/from/env" {
		t.Fatalf("env should override config: %+v", got)
	}

	opts.CLIFormat, opts.CLIFormatSet = "csv", true
	opts.CLILogLevel, opts.CLILogLevelSet = "error", true
	got, xe = Resolve(opts)
	if xe != nil {
		t.Fatal(xe)
	}
	if got.Format != "csv" || got.LogLevel != "error" {
		t.Fatalf("cli should override env: %+v", got)
	}
}

func TestResolve_Secrets(t *testing.T) {
	cases := []struct {
		name    string
		yaml    string
		wantErr bool
		wantN   int
	}{
		{"custom list", "secrets:\n  - {service: a, account: x}\n  - {service: b, account: x}\n  - {service: c, account: y}\n", false, 3},
		{"empty service", "secrets:\n  - {service: '', account: x}\n", true, 0},
		{"empty account", "secrets:\n  - {service: a}\n", true, 0},
		{"duplicate", "secrets:\n  - {service: a, account: x}\n  - {service: a, account: x}\n", true, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			opts := baseOpts(t)
			writeConfig(t, filepath.Join(opts.WorkDir, "keyreset.yaml"), tc.yaml)
			got, xe := Resolve(opts)
			if tc.wantErr {
				if xe == nil || xe.Code != errors.CodeCfgInvalid {
					t.Fatalf("expected CodeCfgInvalid, got %v", xe)
				}
				return
			}
			if xe != nil {
				t.Fatal(xe)
			}
			if len(got.Identifiers) != tc.wantN {
				t.Fatalf("identifiers=%v", got.Identifiers)
			}
		})
	}
}

func TestResolve_MCP(t *testing.T) {
	opts := baseOpts(t)
	writeConfig(t, filepath.Join(opts.WorkDir, "keyreset.yaml"), `mcp:
  transport: streamable_http
  http:
    addr: 127.0.0.1:9000
    auth_token: from-file
`)
	got, xe := Resolve(opts)
	if xe != nil {
		t.Fatal(xe)
	}
	if got.MCP.Transport != TransportStreamableHTTP || got.MCP.HTTP.Addr != "127.0.0.1:9000" || got.MCP.HTTP.AuthToken != "from-file" {
		t.Fatalf("mcp=%+v", got.MCP)
	}

	opts.EnvMCPToken = "from-env"
	got, xe = Resolve(opts)
	if xe != nil {
		t.Fatal(xe)
	}
	if got.MCP.HTTP.AuthToken != "from-env" {
		t.Fatalf("token=%q", got.MCP.HTTP.AuthToken)
	}
}

func TestResolve_InvalidTransport(t *testing.T) {
	opts := baseOpts(t)
	writeConfig(t, filepath.Join(opts.WorkDir, "keyreset.yaml"), "mcp:\n  transport: sse\n")
	if _, xe := Resolve(opts); xe == nil || xe.Code != errors.CodeCfgInvalid {
		t.Fatalf("expected CodeCfgInvalid, got %v", xe)
	}
}
