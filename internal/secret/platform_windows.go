//go:build windows

package secret

const platformKind = KindCredential

// Open 返回 Credential Manager 实现；无需建立连接。
func Open() (Store, error) {
	return credentialStore{}, nil
}
