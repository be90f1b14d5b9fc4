package sink

import "sync"

// Sink receives derived values for display. Writes for distinct ids are
// independent: a failed write for one id says nothing about any other, and
// callers are expected to keep going when a write fails.
//
// Absent values are never written. A caller that could not derive a value
// simply does not call the sink, so existing content is never cleared.
type Sink interface {
	// SetText sets the text content of the row identified by id.
	SetText(id, text string) error

	// SetAttr sets a named attribute on the row identified by id.
	SetAttr(id, attr, value string) error
}

// Memory is a Sink that records writes in maps. It is the test double and
// the dry-run target.
type Memory struct {
	mu    sync.Mutex
	texts map[string]string
	attrs map[string]map[string]string
}

// NewMemory creates an empty in-memory sink.
func NewMemory() *Memory {
	return &Memory{
		texts: make(map[string]string),
		attrs: make(map[string]map[string]string),
	}
}

func (m *Memory) SetText(id, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.texts[id] = text
	return nil
}

func (m *Memory) SetAttr(id, attr, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.attrs[id] == nil {
		m.attrs[id] = make(map[string]string)
	}
	m.attrs[id][attr] = value
	return nil
}

// Text returns the recorded text for id.
func (m *Memory) Text(id string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	text, ok := m.texts[id]
	return text, ok
}

// Attr returns the recorded attribute value for id.
func (m *Memory) Attr(id, attr string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	value, ok := m.attrs[id][attr]
	return value, ok
}

// Len reports how many distinct ids have received a text write.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.texts)
}

var _ Sink = (*Memory)(nil)
