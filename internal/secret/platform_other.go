//go:build !linux && !windows

package secret

const platformKind Kind = ""

func Open() (Store, error) {
	return nil, ErrUnsupportedPlatform
}
