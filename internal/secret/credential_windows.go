//go:build windows

package secret

import (
	stderrors "errors"
	"fmt"

	"github.com/danieljoos/wincred"
)

// credentialStore 通过 CredReadW / CredWriteW / CredDeleteW 访问 Credential Manager。
// CredentialBlob 按字节读写，go-keyring 写入的 UTF-8 内容不会被转成 UTF-16。
type credentialStore struct{}

func (credentialStore) Kind() Kind { return KindCredential }

func (credentialStore) Read(id Identifier) (Record, bool, error) {
	cred, err := wincred.GetGenericCredential(id.Target())
	if err != nil {
		if stderrors.Is(err, wincred.ErrElementNotFound) {
			return Record{}, false, nil
		}
		return Record{}, false, fmt.Errorf("CredRead %s: %w", id.Target(), err)
	}
	blob := make([]byte, len(cred.CredentialBlob))
	copy(blob, cred.CredentialBlob)
	return Record{Blob: blob, UserName: cred.UserName}, true, nil
}

func (credentialStore) Write(id Identifier, rec Record) error {
	cred := wincred.NewGenericCredential(id.Target())
	cred.CredentialBlob = rec.Blob
	cred.UserName = rec.UserName
	cred.Persist = wincred.PersistLocalMachine
	if err := cred.Write(); err != nil {
		return fmt.Errorf("CredWrite %s: %w", id.Target(), err)
	}
	return nil
}

func (credentialStore) Delete(id Identifier) (bool, error) {
	cred, err := wincred.GetGenericCredential(id.Target())
	if err != nil {
		if stderrors.Is(err, wincred.ErrElementNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("CredRead %s: %w", id.Target(), err)
	}
	if err := cred.Delete(); err != nil {
		if stderrors.Is(err, wincred.ErrElementNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("CredDelete %s: %w", id.Target(), err)
	}
	return true, nil
}

func (credentialStore) Close() error { return nil }
