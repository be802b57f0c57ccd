//go:build linux

package secret

const platformKind = KindCollection

// Open 连接 session bus 上的 Secret Service。
func Open() (Store, error) {
	s, err := openCollectionStore()
	if err != nil {
		return nil, err
	}
	return s, nil
}
