package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/zx06/keyreset/internal/errors"
	"github.com/zx06/keyreset/internal/reset"
	"github.com/zx06/keyreset/internal/secret"
)

var (
	mainID = secret.Identifier{Service: "seed-daemon-main", Account: secret.DefaultAccount}
	devID  = secret.Identifier{Service: "seed-daemon-dev", Account: secret.DefaultAccount}
)

func testOptions(t *testing.T, store *secret.MemoryStore) Options {
	t.Helper()
	if store == nil {
		store = secret.NewMemoryStore(secret.KindCollection)
	}
	return Options{
		Open:        func() (secret.Store, error) { return store, nil },
		Identifiers: []secret.Identifier{mainID, devID},
		BackupDir:   t.TempDir(),
	}
}

type envelope struct {
	OK    bool            `json:"ok"`
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code    errors.Code    `json:"code"`
		Details map[string]any `json:"details"`
	} `json:"error"`
}

type report struct {
	Action   string `json:"action"`
	NoBackup bool   `json:"no_backup"`
	Items    []struct {
		ID     string `json:"id"`
		Status string `json:"status"`
		Bytes  int    `json:"bytes"`
	} `json:"items"`
}

func decode(t *testing.T, res *mcp.CallToolResult) envelope {
	t.Helper()
	if res == nil || len(res.Content) != 1 {
		t.Fatalf("unexpected result: %+v", res)
	}
	text, ok := res.Content[0].(*mcp.TextContent)
	if !ok {
		t.Fatalf("expected TextContent, got %T", res.Content[0])
	}
	var env envelope
	if err := json.Unmarshal([]byte(text.Text), &env); err != nil {
		t.Fatalf("invalid envelope %q: %v", text.Text, err)
	}
	if env.OK == res.IsError {
		t.Fatalf("IsError=%v disagrees with ok=%v", res.IsError, env.OK)
	}
	return env
}

func decodeReport(t *testing.T, env envelope) report {
	t.Helper()
	var r report
	if err := json.Unmarshal(env.Data, &r); err != nil {
		t.Fatal(err)
	}
	return r
}

func statusOf(r report, id string) string {
	for _, it := range r.Items {
		if it.ID == id {
			return it.Status
		}
	}
	return ""
}

func TestCreateServer(t *testing.T) {
	server, err := CreateServer("test", testOptions(t, nil))
	if err != nil {
		t.Fatalf("CreateServer failed: %v", err)
	}
	if server == nil {
		t.Fatal("server is nil")
	}

	if _, err := CreateServer("test", Options{}); err == nil {
		t.Fatal("expected error without an opener")
	}
}

func TestBackupRestoreThroughTools(t *testing.T) {
	store := secret.NewMemoryStore(secret.KindCollection)
	_ = store.Write(mainID, secret.Record{Blob: []byte{0xDE, 0xAD, 0xBE, 0xEF}, Label: "main"})
	opts := testOptions(t, store)
	opts.AllowWrite = true
	h := NewToolHandler(opts)
	ctx := context.Background()

	res, _, err := h.Backup(ctx, nil, DirInput{})
	if err != nil {
		t.Fatal(err)
	}
	r := decodeReport(t, decode(t, res))
	if statusOf(r, mainID.String()) != "backed-up" || statusOf(r, devID.String()) != "not-found" {
		t.Fatalf("backup report: %+v", r)
	}

	res, _, _ = h.Clear(ctx, nil, ClearInput{})
	r = decodeReport(t, decode(t, res))
	if statusOf(r, mainID.String()) != "cleared" {
		t.Fatalf("clear report: %+v", r)
	}
	if store.Len() != 0 {
		t.Fatal("store should be empty after clear")
	}

	res, _, _ = h.Restore(ctx, nil, RestoreInput{})
	r = decodeReport(t, decode(t, res))
	if statusOf(r, mainID.String()) != "restored" {
		t.Fatalf("restore report: %+v", r)
	}
	rec, ok, _ := store.Read(mainID)
	if !ok || !bytes.Equal(rec.Blob, []byte{0xDE, 0xAD, 0xBE, 0xEF}) {
		t.Fatalf("restored blob=%x", rec.Blob)
	}

	res, _, _ = h.Verify(ctx, nil, DirInput{})
	r = decodeReport(t, decode(t, res))
	if statusOf(r, mainID.String()) != "ok" {
		t.Fatalf("verify report: %+v", r)
	}
}

func TestMutatingToolsRequireWrite(t *testing.T) {
	store := secret.NewMemoryStore(secret.KindCredential)
	_ = store.Write(mainID, secret.Record{Blob: []byte("k")})
	h := NewToolHandler(testOptions(t, store))
	ctx := context.Background()

	res, _, _ := h.Clear(ctx, nil, ClearInput{})
	env := decode(t, res)
	if env.Error == nil || env.Error.Code != errors.CodeAborted {
		t.Fatalf("expected CodeAborted, got %+v", env)
	}
	if store.Len() != 1 {
		t.Fatal("clear without AllowWrite must not delete")
	}

	res, _, _ = h.Restore(ctx, nil, RestoreInput{})
	if env := decode(t, res); env.Error == nil || env.Error.Code != errors.CodeAborted {
		t.Fatalf("expected CodeAborted, got %+v", env)
	}

	res, _, _ = h.Clear(ctx, nil, ClearInput{DryRun: true})
	r := decodeReport(t, decode(t, res))
	if statusOf(r, mainID.String()) != "would-clear" {
		t.Fatalf("dry-run report: %+v", r)
	}
}

func TestRestore_NoBackup(t *testing.T) {
	opts := testOptions(t, nil)
	opts.AllowWrite = true
	h := NewToolHandler(opts)
	res, _, _ := h.Restore(context.Background(), nil, RestoreInput{Dir: t.TempDir()})
	r := decodeReport(t, decode(t, res))
	if !r.NoBackup {
		t.Fatalf("expected no_backup, got %+v", r)
	}
}

func TestStoreOpenFailure(t *testing.T) {
	opts := testOptions(t, nil)
	opts.Open = func() (secret.Store, error) { return nil, stderrors.New("no session bus") }
	h := NewToolHandler(opts)
	res, _, _ := h.Backup(context.Background(), nil, DirInput{})
	env := decode(t, res)
	if env.Error == nil || env.Error.Code != errors.CodeStoreUnavailable {
		t.Fatalf("expected CodeStoreUnavailable, got %+v", env)
	}
}

func TestStoreFailureCarriesReport(t *testing.T) {
	store := secret.NewMemoryStore(secret.KindCredential)
	store.FailOn[devID] = stderrors.New("access denied")
	_ = store.Write(mainID, secret.Record{Blob: []byte("k")})
	opts := testOptions(t, store)
	opts.AllowWrite = true
	h := NewToolHandler(opts)

	res, _, _ := h.Clear(context.Background(), nil, ClearInput{})
	env := decode(t, res)
	if env.Error == nil || env.Error.Code != errors.CodeStoreDeleteFailed {
		t.Fatalf("expected CodeStoreDeleteFailed, got %+v", env)
	}
	if _, ok := env.Error.Details["report"]; !ok {
		t.Fatalf("error should carry the partial report: %+v", env.Error.Details)
	}
}

func TestList(t *testing.T) {
	opts := testOptions(t, nil)
	h := NewToolHandler(opts)
	res, _, _ := h.List(context.Background(), nil, struct{}{})
	env := decode(t, res)
	var l reset.Listing
	if err := json.Unmarshal(env.Data, &l); err != nil {
		t.Fatal(err)
	}
	if len(l.Secrets) != 2 || l.Secrets[0] != mainID.String() {
		t.Fatalf("listing=%+v", l)
	}
}

func TestFormatError_WithGenericError(t *testing.T) {
	h := NewToolHandler(testOptions(t, nil))
	var env envelope
	if err := json.Unmarshal([]byte(h.formatError(stderrors.New("boom"))), &env); err != nil {
		t.Fatal(err)
	}
	if env.OK || env.Error == nil || env.Error.Code != errors.CodeInternal {
		t.Fatalf("env=%+v", env)
	}
}
