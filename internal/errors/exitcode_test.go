package errors

import (
	stderrors "errors"
	"fmt"
	"testing"
)

func TestExitCodeFor(t *testing.T) {
	cases := []struct {
		code Code
		want ExitCode
	}{
		{CodeCfgNotFound, ExitConfig},
		{CodeCfgInvalid, ExitConfig},
		{CodeStoreUnavailable, ExitStore},
		{CodeStoreReadFailed, ExitStore},
		{CodeStoreWriteFailed, ExitStore},
		{CodeStoreDeleteFailed, ExitStore},
		{CodeBackupNotFound, ExitBackup},
		{CodeBackupInvalid, ExitBackup},
		{CodeBackupWriteFailed, ExitBackup},
		{CodeVerifyMismatch, ExitVerify},
		{CodeAborted, ExitAborted},
		{CodeInternal, ExitInternal},
		{Code("UNKNOWN_CODE"), ExitInternal}, // unknown code
	}
	for _, tc := range cases {
		if got := ExitCodeFor(tc.code); got != tc.want {
			t.Errorf("ExitCodeFor(%s)=%d want %d", tc.code, got, tc.want)
		}
	}
}

func TestXError_Error(t *testing.T) {
	// Without cause
	xe := New(CodeCfgInvalid, "test message", nil)
	expected := "KEYRESET_CFG_INVALID: test message"
	if xe.Error() != expected {
		t.Errorf("Error()=%q, want %q", xe.Error(), expected)
	}

	// With cause
	cause := stderrors.New("underlying error")
	xe = Wrap(CodeStoreWriteFailed, "write failed", nil, cause)
	expected = "KEYRESET_STORE_WRITE_FAILED: write failed: underlying error"
	if xe.Error() != expected {
		t.Errorf("Error()=%q, want %q", xe.Error(), expected)
	}

	// Nil error
	var nilErr *XError
	if nilErr.Error() != "" {
		t.Errorf("nil XError.Error() should return empty string")
	}
}

func TestXError_Unwrap(t *testing.T) {
	cause := stderrors.New("cause")
	xe := Wrap(CodeStoreReadFailed, "msg", nil, cause)
	if xe.Unwrap() != cause {
		t.Error("Unwrap should return cause")
	}

	xe2 := New(CodeCfgInvalid, "msg", nil)
	if xe2.Unwrap() != nil {
		t.Error("Unwrap should return nil when no cause")
	}
}

func TestXError_WithDetail(t *testing.T) {
	xe := New(CodeBackupInvalid, "msg", nil).WithDetail("path", "/tmp/x")
	if xe.Details["path"] != "/tmp/x" {
		t.Errorf("Details[path]=%v", xe.Details["path"])
	}
	xe.WithDetail("count", 2)
	if len(xe.Details) != 2 {
		t.Errorf("expected 2 details, got %d", len(xe.Details))
	}
}

func TestAs(t *testing.T) {
	xe := New(CodeCfgInvalid, "test", nil)
	got, ok := As(xe)
	if !ok || got != xe {
		t.Error("As should return XError")
	}

	// Wrapped error
	wrapped := fmt.Errorf("prefix: %w", xe)
	got, ok = As(wrapped)
	if !ok || got != xe {
		t.Error("As should unwrap to find XError")
	}

	// Non-XError
	_, ok = As(stderrors.New("plain error"))
	if ok {
		t.Error("As should return false for non-XError")
	}
}

func TestIs(t *testing.T) {
	xe := New(CodeBackupNotFound, "missing", nil)
	if !Is(xe, CodeBackupNotFound) {
		t.Error("Is should match own code")
	}
	if Is(xe, CodeBackupInvalid) {
		t.Error("Is should not match other code")
	}
	if Is(stderrors.New("plain"), CodeBackupNotFound) {
		t.Error("Is should be false for plain errors")
	}
}

func TestAsOrWrap(t *testing.T) {
	plain := stderrors.New("boom")
	xe := AsOrWrap(plain)
	if xe.Code != CodeInternal {
		t.Errorf("expected CodeInternal, got %s", xe.Code)
	}
	if !stderrors.Is(xe, plain) {
		t.Error("wrapped XError should unwrap to cause")
	}
}

func TestAllCodes(t *testing.T) {
	codes := AllCodes()
	if len(codes) != 12 {
		t.Errorf("AllCodes() should return 12 codes, got %d", len(codes))
	}

	// Check for duplicates
	seen := make(map[Code]bool)
	for _, c := range codes {
		if seen[c] {
			t.Errorf("Duplicate code: %s", c)
		}
		seen[c] = true
	}
}
