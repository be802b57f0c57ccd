package secret

import "sync"

// MemoryStore 是进程内的 Store 实现，语义与真实 store 一致
// （不存在不报错、Delete 返回是否删除）。供测试与 dry-run 演示使用。
type MemoryStore struct {
	mu    sync.Mutex
	kind  Kind
	items map[Identifier]Record

	// FailOn 中的 id 在任何操作上都返回该错误。
	FailOn map[Identifier]error
}

func NewMemoryStore(kind Kind) *MemoryStore {
	return &MemoryStore{kind: kind, items: map[Identifier]Record{}, FailOn: map[Identifier]error{}}
}

func (m *MemoryStore) Kind() Kind { return m.kind }

func (m *MemoryStore) Read(id Identifier) (Record, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.FailOn[id]; err != nil {
		return Record{}, false, err
	}
	rec, ok := m.items[id]
	if !ok {
		return Record{}, false, nil
	}
	return cloneRecord(rec), true, nil
}

func (m *MemoryStore) Write(id Identifier, rec Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.FailOn[id]; err != nil {
		return err
	}
	m.items[id] = cloneRecord(rec)
	return nil
}

func (m *MemoryStore) Delete(id Identifier) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.FailOn[id]; err != nil {
		return false, err
	}
	if _, ok := m.items[id]; !ok {
		return false, nil
	}
	delete(m.items, id)
	return true, nil
}

func (m *MemoryStore) Close() error { return nil }

// Len 返回当前条目数。
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}

func cloneRecord(rec Record) Record {
	out := Record{UserName: rec.UserName, Label: rec.Label}
	if rec.Blob != nil {
		out.Blob = append([]byte{}, rec.Blob...)
	}
	if rec.Attributes != nil {
		out.Attributes = make(map[string]string, len(rec.Attributes))
		for k, v := range rec.Attributes {
			out.Attributes[k] = v
		}
	}
	return out
}
