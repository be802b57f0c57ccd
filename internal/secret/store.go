package secret

import (
	stderrors "errors"
	"fmt"
)

// DefaultAccount 是 daemon 写入 keyring 时固定使用的 username。
const DefaultAccount = "parentCollection"

// Kind 标识 OS secret store 的形态。
type Kind string

const (
	// KindCollection 是带属性的 collection（Linux Secret Service）。
	KindCollection Kind = "secret-service"
	// KindCredential 是扁平的 key/value 凭据库（Windows Credential Manager）。
	KindCredential Kind = "credential-manager"
)

// ErrUnsupportedPlatform 表示当前平台没有可用的 Store 实现。
var ErrUnsupportedPlatform = stderrors.New("no secret store backend for this platform")

// Identifier 定位一个 secret 槽位。
// Credential Manager 只用 Target()；Secret Service 用 service + username 两个属性匹配。
type Identifier struct {
	Service string `json:"service" yaml:"service"`
	Account string `json:"account" yaml:"account"`
}

// Target 返回 go-keyring 在 Windows 上使用的 TargetName："<service>:<account>"。
func (id Identifier) Target() string {
	return id.Service + ":" + id.Account
}

func (id Identifier) String() string { return id.Target() }

func (id Identifier) Validate() error {
	if id.Service == "" {
		return fmt.Errorf("secret identifier has empty service (account %q)", id.Account)
	}
	if id.Account == "" {
		return fmt.Errorf("secret identifier %q has empty account", id.Service)
	}
	return nil
}

// DefaultIdentifiers 是 seed daemon 两个实例（main / dev）的账户密钥槽位。
// Electron safeStorage 的加密 key 故意不在列表中。
func DefaultIdentifiers() []Identifier {
	return []Identifier{
		{Service: "seed-daemon-main", Account: DefaultAccount},
		{Service: "seed-daemon-dev", Account: DefaultAccount},
	}
}

// Record 是一条 secret 的完整内容。Blob 必须原样传递，不做任何编码转换。
type Record struct {
	Blob []byte

	// UserName 仅 Credential Manager 使用。
	UserName string

	// Label / Attributes 仅 Secret Service 使用。
	Label      string
	Attributes map[string]string
}

// Store 是对单个平台 secret store 的最小抽象。
// 不存在不是错误：Read 返回 ok=false，Delete 返回 false。
type Store interface {
	Kind() Kind
	Read(id Identifier) (rec Record, ok bool, err error)
	Write(id Identifier, rec Record) error
	Delete(id Identifier) (bool, error)
	Close() error
}

// Opener 打开当前平台的 Store；cmd 与 mcp 通过它注入测试替身。
type Opener func() (Store, error)
