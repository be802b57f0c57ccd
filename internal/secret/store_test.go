package secret

import (
	"bytes"
	"fmt"
	"testing"
)

func TestIdentifier_Target(t *testing.T) {
	id := Identifier{Service: "seed-daemon-main", Account: "parentCollection"}
	if got := id.Target(); got != "seed-daemon-main:parentCollection" {
		t.Fatalf("Target()=%q", got)
	}
	if id.String() != id.Target() {
		t.Fatalf("String() should equal Target()")
	}
}

func TestIdentifier_Validate(t *testing.T) {
	tests := []struct {
		name    string
		id      Identifier
		wantErr bool
	}{
		{"ok", Identifier{Service: "svc", Account: "acc"}, false},
		{"empty service", Identifier{Account: "acc"}, true},
		{"empty account", Identifier{Service: "svc"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.id.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate()=%v, wantErr=%v", err, tt.wantErr)
			}
		})
	}
}

func TestDefaultIdentifiers(t *testing.T) {
	ids := DefaultIdentifiers()
	if len(ids) != 2 {
		t.Fatalf("expected 2 identifiers, got %d", len(ids))
	}
	want := []string{"seed-daemon-main:parentCollection", "seed-daemon-dev:parentCollection"}
	for i, id := range ids {
		if id.Target() != want[i] {
			t.Errorf("ids[%d]=%q, want %q", i, id.Target(), want[i])
		}
		if err := id.Validate(); err != nil {
			t.Errorf("default identifier invalid: %v", err)
		}
	}
}

func TestMemoryStore_ReadWriteDelete(t *testing.T) {
	s := NewMemoryStore(KindCredential)
	id := Identifier{Service: "svc-a", Account: DefaultAccount}

	if _, ok, err := s.Read(id); err != nil || ok {
		t.Fatalf("Read on empty store: ok=%v err=%v", ok, err)
	}
	deleted, err := s.Delete(id)
	if err != nil || deleted {
		t.Fatalf("Delete on empty store: deleted=%v err=%v", deleted, err)
	}

	blob := []byte{0xDE, 0xAD, 0xBE, 0xEF}
	if err := s.Write(id, Record{Blob: blob, UserName: "u"}); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	blob[0] = 0x00 // store must have its own copy

	rec, ok, err := s.Read(id)
	if err != nil || !ok {
		t.Fatalf("Read after Write: ok=%v err=%v", ok, err)
	}
	if !bytes.Equal(rec.Blob, []byte{0xDE, 0xAD, 0xBE, 0xEF}) {
		t.Fatalf("Blob=%x", rec.Blob)
	}
	if rec.UserName != "u" {
		t.Fatalf("UserName=%q", rec.UserName)
	}

	deleted, err = s.Delete(id)
	if err != nil || !deleted {
		t.Fatalf("Delete: deleted=%v err=%v", deleted, err)
	}
	if _, ok, _ := s.Read(id); ok {
		t.Fatal("expected absence after Delete")
	}
}

func TestMemoryStore_FailOn(t *testing.T) {
	s := NewMemoryStore(KindCollection)
	id := Identifier{Service: "svc", Account: "acc"}
	s.FailOn[id] = fmt.Errorf("permission denied")

	if _, _, err := s.Read(id); err == nil {
		t.Error("Read should fail")
	}
	if err := s.Write(id, Record{}); err == nil {
		t.Error("Write should fail")
	}
	if _, err := s.Delete(id); err == nil {
		t.Error("Delete should fail")
	}
}

func TestPlatformKind(t *testing.T) {
	switch PlatformKind() {
	case KindCollection, KindCredential, "":
	default:
		t.Fatalf("unexpected platform kind %q", PlatformKind())
	}
}
