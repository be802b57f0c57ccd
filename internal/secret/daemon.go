package secret

import (
	stderrors "errors"

	"github.com/zalando/go-keyring"
)

// DaemonReader 以 daemon 自身的方式（go-keyring）读取 secret，
// 用于确认恢复后的字节 daemon 能原样拿到。
type DaemonReader interface {
	Get(id Identifier) (blob []byte, ok bool, err error)
}

type keyringReader struct{}

// NewDaemonReader 返回基于 go-keyring 的 DaemonReader。
// 测试中可配合 keyring.MockInit() 使用。
func NewDaemonReader() DaemonReader {
	return keyringReader{}
}

func (keyringReader) Get(id Identifier) ([]byte, bool, error) {
	v, err := keyring.Get(id.Service, id.Account)
	if err != nil {
		if stderrors.Is(err, keyring.ErrNotFound) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return []byte(v), true, nil
}
