package backends

import (
	"context"
	"strings"
	"testing"
)

// mockBackend is a configurable mock for testing
type mockBackend struct {
	name      string
	available bool
	partials  map[Category]*Partial
	errs      map[Category]error
	panics    map[Category]bool
	calls     chan Category
}

func (m *mockBackend) Name() string      { return m.name }
func (m *mockBackend) IsAvailable() bool { return m.available }
func (m *mockBackend) Search(ctx context.Context, category Category, q CategoryQuery) (*Partial, error) {
	if m.calls != nil {
		m.calls <- category
	}
	if m.panics[category] {
		panic("boom")
	}
	if err := m.errs[category]; err != nil {
		return nil, err
	}
	if p, ok := m.partials[category]; ok {
		return p, nil
	}
	return &Partial{}, nil
}

func TestRegistry_RegisterAndGet(t *testing.T) {
	reg := NewRegistry(&mockBackend{name: "mock1", available: true})

	b, ok := reg.Get("MOCK1")
	if !ok || b == nil {
		t.Fatal("expected to find registered backend case-insensitively")
	}

	if _, ok := reg.Get("nonexistent"); ok {
		t.Error("expected false for unregistered backend")
	}
}

func TestRegistry_RegisterNil(t *testing.T) {
	reg := NewRegistry(nil)
	if len(reg.Names()) != 0 {
		t.Errorf("nil backend should be ignored, got %v", reg.Names())
	}
}

func TestRegistry_Select(t *testing.T) {
	reg := NewRegistry(&mockBackend{name: "b"}, &mockBackend{name: "a"})

	if _, err := reg.Select("a"); err != nil {
		t.Errorf("Select failed: %v", err)
	}

	_, err := reg.Select("zzz")
	if err == nil {
		t.Fatal("Select should fail for unknown backend")
	}
	if !strings.Contains(err.Error(), "available: a, b") {
		t.Errorf("error should list available backends: %v", err)
	}
}

func TestRegistry_Configured(t *testing.T) {
	reg := NewRegistry(
		&mockBackend{name: "available", available: true},
		&mockBackend{name: "unavailable", available: false},
	)

	configured := reg.Configured()
	if len(configured) != 1 || configured[0] != "available" {
		t.Errorf("expected [available], got %v", configured)
	}

	names := reg.Names()
	if len(names) != 2 || names[0] != "available" || names[1] != "unavailable" {
		t.Errorf("expected sorted names, got %v", names)
	}
}
