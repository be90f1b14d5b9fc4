package sink

import "testing"

func TestMemoryRecordsWrites(t *testing.T) {
	m := NewMemory()

	if err := m.SetText("a", "v1.0.0"); err != nil {
		t.Fatalf("SetText() error: %v", err)
	}
	if err := m.SetAttr("a", "href", "https://example.com"); err != nil {
		t.Fatalf("SetAttr() error: %v", err)
	}

	if text, ok := m.Text("a"); !ok || text != "v1.0.0" {
		t.Errorf("Text(a) = %q, %v", text, ok)
	}
	if value, ok := m.Attr("a", "href"); !ok || value != "https://example.com" {
		t.Errorf("Attr(a, href) = %q, %v", value, ok)
	}
	if _, ok := m.Text("missing"); ok {
		t.Error("Text(missing) should report absent")
	}
	if _, ok := m.Attr("a", "missing"); ok {
		t.Error("Attr(a, missing) should report absent")
	}
}

func TestMemoryOverwrite(t *testing.T) {
	m := NewMemory()
	m.SetText("a", "v1")
	m.SetText("a", "v2")

	if text, _ := m.Text("a"); text != "v2" {
		t.Errorf("Text(a) = %q, want v2", text)
	}
	if m.Len() != 1 {
		t.Errorf("Len() = %d, want 1", m.Len())
	}
}
