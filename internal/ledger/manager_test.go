package ledger

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestManager_AcquireReturnsSameStore(t *testing.T) {
	m := NewManager(newFakePersister(), 0)

	s1, err := m.Acquire(1)
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	s2, err := m.Acquire(1)
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	if s1 != s2 {
		t.Error("Acquire should return the same live store for one session")
	}
}

func TestManager_StoresAreIsolatedPerUser(t *testing.T) {
	m := NewManager(newFakePersister(), 0)

	s1, _ := m.Acquire(1)
	s2, _ := m.Acquire(2)
	if s1 == s2 {
		t.Fatal("different users must get different stores")
	}

	s1.AddItem(SignCredit)
	if len(s2.Items()) != 0 {
		t.Error("mutation leaked across user stores")
	}
}

func TestManager_ReleaseDropsTheStore(t *testing.T) {
	m := NewManager(newFakePersister(), 0)

	s1, _ := m.Acquire(1)
	m.Release(1)
	s2, err := m.Acquire(1)
	if err != nil {
		t.Fatalf("Acquire after Release: %v", err)
	}
	if s1 == s2 {
		t.Error("Release should tear the store down; next Acquire loads fresh")
	}
}

func TestManager_ReleaseFlushesPendingWrite(t *testing.T) {
	p := newFakePersister()
	m := NewManager(p, 0)

	s, _ := m.Acquire(1)
	s.AddItem(SignDebit)
	m.Release(1)

	doc, ok := p.document(1)
	if !ok || len(doc.Items) != 1 {
		t.Error("Release must flush the pending snapshot before teardown")
	}
}

func TestManager_AcquireSurfacesLoadError(t *testing.T) {
	p := newFakePersister()
	p.getErr = errors.New("timeout")
	m := NewManager(p, 0)

	if _, err := m.Acquire(1); err == nil {
		t.Fatal("a load failure must surface from Acquire")
	}
}

func TestManager_ReloadPicksUpStoredChanges(t *testing.T) {
	p := newFakePersister()
	m := NewManager(p, 0)

	s, _ := m.Acquire(1)
	if len(s.Items()) != 0 {
		t.Fatal("expected empty start")
	}

	p.mu.Lock()
	p.docs[1] = json.RawMessage(`{"items":[{"description":"restaurado","amount":3,"sign":"+","checked":false}]}`)
	p.mu.Unlock()

	if err := m.Reload(1); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	items := s.Items()
	if len(items) != 1 || items[0].Description != "restaurado" {
		t.Errorf("reloaded items = %+v", items)
	}
}
