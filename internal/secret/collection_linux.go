//go:build linux

package secret

import (
	stderrors "errors"
	"fmt"

	"github.com/godbus/dbus/v5"
)

// Secret Service D-Bus API（freedesktop.org）。
const (
	ssName            = "org.freedesktop.secrets"
	ssPath            = dbus.ObjectPath("/org/freedesktop/secrets")
	ssLoginCollection = dbus.ObjectPath("/org/freedesktop/secrets/collection/login")
	ssNoPath          = dbus.ObjectPath("/")

	ssServiceIface    = "org.freedesktop.Secret.Service"
	ssCollectionIface = "org.freedesktop.Secret.Collection"
	ssItemIface       = "org.freedesktop.Secret.Item"
	ssSessionIface    = "org.freedesktop.Secret.Session"
	ssPromptIface     = "org.freedesktop.Secret.Prompt"

	// 与 go-keyring 写入时一致
	ssContentType = "text/plain; charset=utf8"
)

var errPromptDismissed = stderrors.New("secret service prompt dismissed")

// ssSecret 对应 D-Bus 结构 (oayays)。
type ssSecret struct {
	Session     dbus.ObjectPath
	Parameters  []byte
	Value       []byte
	ContentType string
}

// collectionStore 直接通过 session bus 访问 Secret Service。
// 使用 "plain" 会话：secret 以原始字节传输，不经过任何文本解码。
type collectionStore struct {
	conn       *dbus.Conn
	service    dbus.BusObject
	session    dbus.ObjectPath
	collection dbus.BusObject
}

func openCollectionStore() (*collectionStore, error) {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return nil, fmt.Errorf("connect session bus: %w", err)
	}
	s := &collectionStore{conn: conn, service: conn.Object(ssName, ssPath)}
	if err := s.openSession(); err != nil {
		_ = conn.Close()
		return nil, err
	}
	if err := s.openCollection(); err != nil {
		_ = s.Close()
		return nil, err
	}
	return s, nil
}

func (s *collectionStore) Kind() Kind { return KindCollection }

func (s *collectionStore) openSession() error {
	var output dbus.Variant
	var path dbus.ObjectPath
	err := s.service.Call(ssServiceIface+".OpenSession", 0, "plain", dbus.MakeVariant("")).Store(&output, &path)
	if err != nil {
		return fmt.Errorf("open secret service session: %w", err)
	}
	s.session = path
	return nil
}

// openCollection 打开 default alias 指向的 collection，未设置 alias 时退回 login。
func (s *collectionStore) openCollection() error {
	var path dbus.ObjectPath
	if err := s.service.Call(ssServiceIface+".ReadAlias", 0, "default").Store(&path); err != nil {
		return fmt.Errorf("read default collection alias: %w", err)
	}
	if path == ssNoPath || path == "" {
		path = ssLoginCollection
	}
	s.collection = s.conn.Object(ssName, path)

	var unlocked []dbus.ObjectPath
	var prompt dbus.ObjectPath
	if err := s.service.Call(ssServiceIface+".Unlock", 0, []dbus.ObjectPath{path}).Store(&unlocked, &prompt); err != nil {
		return fmt.Errorf("unlock collection %s: %w", path, err)
	}
	return s.prompt(prompt)
}

// prompt 执行 Secret Service 返回的 prompt 并阻塞等待 Completed 信号。
func (s *collectionStore) prompt(path dbus.ObjectPath) error {
	if path == ssNoPath || path == "" {
		return nil
	}
	opts := []dbus.MatchOption{
		dbus.WithMatchObjectPath(path),
		dbus.WithMatchInterface(ssPromptIface),
		dbus.WithMatchMember("Completed"),
	}
	if err := s.conn.AddMatchSignal(opts...); err != nil {
		return fmt.Errorf("subscribe prompt %s: %w", path, err)
	}
	defer func() { _ = s.conn.RemoveMatchSignal(opts...) }()

	signals := make(chan *dbus.Signal, 4)
	s.conn.Signal(signals)
	defer s.conn.RemoveSignal(signals)

	if err := s.conn.Object(ssName, path).Call(ssPromptIface+".Prompt", 0, "").Err; err != nil {
		return fmt.Errorf("run prompt %s: %w", path, err)
	}
	for sig := range signals {
		if sig.Path != path || sig.Name != ssPromptIface+".Completed" {
			continue
		}
		if len(sig.Body) > 0 {
			if dismissed, _ := sig.Body[0].(bool); dismissed {
				return errPromptDismissed
			}
		}
		return nil
	}
	return errPromptDismissed
}

// find 线性扫描 collection 的全部 item，返回第一个匹配 id 的 item。
func (s *collectionStore) find(id Identifier) (dbus.BusObject, map[string]string, error) {
	v, err := s.collection.GetProperty(ssCollectionIface + ".Items")
	if err != nil {
		return nil, nil, fmt.Errorf("list collection items: %w", err)
	}
	paths, _ := v.Value().([]dbus.ObjectPath)
	for _, p := range paths {
		item := s.conn.Object(ssName, p)
		av, err := item.GetProperty(ssItemIface + ".Attributes")
		if err != nil {
			return nil, nil, fmt.Errorf("read attributes of %s: %w", p, err)
		}
		attrs, _ := av.Value().(map[string]string)
		if matchItem(attrs, id) {
			return item, attrs, nil
		}
	}
	return nil, nil, nil
}

func (s *collectionStore) Read(id Identifier) (Record, bool, error) {
	item, attrs, err := s.find(id)
	if err != nil || item == nil {
		return Record{}, false, err
	}
	var sec ssSecret
	if err := item.Call(ssItemIface+".GetSecret", 0, s.session).Store(&sec); err != nil {
		return Record{}, false, fmt.Errorf("get secret %s: %w", item.Path(), err)
	}
	lv, err := item.GetProperty(ssItemIface + ".Label")
	if err != nil {
		return Record{}, false, fmt.Errorf("read label of %s: %w", item.Path(), err)
	}
	label, _ := lv.Value().(string)
	blob := sec.Value
	if blob == nil {
		blob = []byte{}
	}
	return Record{Blob: blob, Label: label, Attributes: attrs}, true, nil
}

func (s *collectionStore) Write(id Identifier, rec Record) error {
	value := rec.Blob
	if value == nil {
		value = []byte{}
	}
	props := map[string]dbus.Variant{
		ssItemIface + ".Label":      dbus.MakeVariant(itemLabel(id, rec)),
		ssItemIface + ".Attributes": dbus.MakeVariant(itemAttributes(id, rec)),
	}
	sec := ssSecret{
		Session:     s.session,
		Parameters:  []byte{},
		Value:       value,
		ContentType: ssContentType,
	}
	var item, prompt dbus.ObjectPath
	err := s.collection.Call(ssCollectionIface+".CreateItem", 0, props, sec, true).Store(&item, &prompt)
	if err != nil {
		return fmt.Errorf("create item for %s: %w", id, err)
	}
	return s.prompt(prompt)
}

func (s *collectionStore) Delete(id Identifier) (bool, error) {
	item, _, err := s.find(id)
	if err != nil || item == nil {
		return false, err
	}
	var prompt dbus.ObjectPath
	if err := item.Call(ssItemIface+".Delete", 0).Store(&prompt); err != nil {
		return false, fmt.Errorf("delete item %s: %w", item.Path(), err)
	}
	if err := s.prompt(prompt); err != nil {
		return false, err
	}
	return true, nil
}

func (s *collectionStore) Close() error {
	if s.session != "" && s.session != ssNoPath {
		_ = s.conn.Object(ssName, s.session).Call(ssSessionIface+".Close", 0).Err
	}
	return s.conn.Close()
}
