package ledger

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
)

// fakePersister is an in-memory document store for tests.
type fakePersister struct {
	mu     sync.Mutex
	docs   map[uint]json.RawMessage
	getErr error
	putErr error
	puts   int
}

func newFakePersister() *fakePersister {
	return &fakePersister{docs: make(map[uint]json.RawMessage)}
}

func (p *fakePersister) Get(userID uint) (json.RawMessage, bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.getErr != nil {
		return nil, false, p.getErr
	}
	raw, ok := p.docs[userID]
	return raw, ok, nil
}

func (p *fakePersister) Put(userID uint, raw json.RawMessage) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.puts++
	if p.putErr != nil {
		return p.putErr
	}
	p.docs[userID] = append(json.RawMessage(nil), raw...)
	return nil
}

func (p *fakePersister) document(userID uint) (document, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	raw, ok := p.docs[userID]
	if !ok {
		return document{}, false
	}
	var doc document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return document{}, false
	}
	return doc, true
}

func TestStore_PersistsAfterMutation(t *testing.T) {
	p := newFakePersister()
	s := NewStore(7, p, 0)
	if err := s.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}

	item, _ := s.AddItem(SignCredit)
	s.UpdateField(item.ID, "amount", "12.5")
	s.UpdateField(item.ID, "description", "salário")
	s.Close() // flushes the pending snapshot

	doc, ok := p.document(7)
	if !ok {
		t.Fatal("no document persisted")
	}
	if len(doc.Items) != 1 {
		t.Fatalf("persisted %d items, want 1", len(doc.Items))
	}
	got := doc.Items[0]
	if got.Amount != 12.5 || got.Description != "salário" || got.Sign != SignCredit {
		t.Errorf("persisted item = %+v", got)
	}

	if unsaved, err := s.Unsaved(); unsaved || err != nil {
		t.Errorf("after a successful flush unsaved = %v, err = %v", unsaved, err)
	}
}

func TestStore_PersistedShapeHasNoID(t *testing.T) {
	p := newFakePersister()
	s := NewStore(7, p, 0)
	_ = s.Load()
	s.AddItem(SignDebit)
	s.Close()

	p.mu.Lock()
	raw := p.docs[7]
	p.mu.Unlock()

	var generic map[string][]map[string]interface{}
	if err := json.Unmarshal(raw, &generic); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	row := generic["items"][0]
	for _, key := range []string{"description", "amount", "sign", "checked"} {
		if _, ok := row[key]; !ok {
			t.Errorf("persisted row missing %q", key)
		}
	}
	if _, ok := row["id"]; ok {
		t.Error("item identity must not be persisted")
	}
	if len(row) != 4 {
		t.Errorf("persisted row has %d keys, want exactly 4", len(row))
	}
}

func TestStore_LoadAbsentGivesEmptyLedger(t *testing.T) {
	p := newFakePersister()
	s := NewStore(7, p, 0)
	if err := s.Load(); err != nil {
		t.Fatalf("Load with no document should succeed, got %v", err)
	}
	if len(s.Items()) != 0 {
		t.Error("fresh account should start with an empty ledger")
	}
}

func TestStore_LoadErrorIsNotAnEmptyLedger(t *testing.T) {
	p := newFakePersister()
	p.getErr = errors.New("connection reset")

	s := NewStore(7, p, 0)
	if err := s.Load(); err == nil {
		t.Fatal("a read failure must surface, not masquerade as a fresh account")
	}
}

func TestStore_LoadCoercesStoredState(t *testing.T) {
	p := newFakePersister()
	long := ""
	for i := 0; i < 150; i++ {
		long += "x"
	}
	p.docs[7] = json.RawMessage(fmt.Sprintf(
		`{"items":[{"description":%q,"amount":-5,"sign":"?","checked":true}]}`, long))

	s := NewStore(7, p, 0)
	if err := s.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}
	items := s.Items()
	if len(items) != 1 {
		t.Fatalf("len = %d, want 1", len(items))
	}
	if items[0].Amount != 0 {
		t.Errorf("negative stored amount = %v, want coerced 0", items[0].Amount)
	}
	if n := len(items[0].Description); n != 100 {
		t.Errorf("stored description len = %d, want truncated 100", n)
	}
	if !items[0].Sign.Valid() {
		t.Error("unknown stored sign should be coerced to a valid one")
	}
	if items[0].ID == "" {
		t.Error("loaded items must get an identity")
	}
}

func TestStore_SaveErrorSetsUnsaved(t *testing.T) {
	p := newFakePersister()
	p.putErr = errors.New("disk full")

	s := NewStore(7, p, 0)
	_ = s.Load()
	s.AddItem(SignCredit)
	s.Close()

	unsaved, err := s.Unsaved()
	if !unsaved {
		t.Error("a failed write must leave the store marked unsaved")
	}
	if err == nil {
		t.Error("the last save error should be surfaced")
	}
}

func TestStore_MutationAfterCloseIsSafe(t *testing.T) {
	p := newFakePersister()
	s := NewStore(7, p, 0)
	if err := s.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}
	item, _ := s.AddItem(SignCredit)
	s.Close()

	// a handler can hold a store handle while logout tears the session
	// down; mutations on the stale handle must not panic
	if _, ok := s.AddItem(SignDebit); !ok {
		t.Fatal("AddItem on a closed store should still mutate memory")
	}
	s.UpdateField(item.ID, "amount", "3")
	s.CycleSort()
	s.Close() // double close is a no-op

	doc, ok := p.document(7)
	if !ok {
		t.Fatal("snapshot from before Close should have been flushed")
	}
	if len(doc.Items) != 1 {
		t.Errorf("persisted %d items, want the 1 from before Close", len(doc.Items))
	}
}

// gatedPersister blocks each Put until released, to pin down queue behavior.
type gatedPersister struct {
	started chan struct{}
	release chan struct{}
	mu      sync.Mutex
	saved   []json.RawMessage
}

func (p *gatedPersister) Get(uint) (json.RawMessage, bool, error) { return nil, false, nil }

func (p *gatedPersister) Put(_ uint, raw json.RawMessage) error {
	p.started <- struct{}{}
	<-p.release
	p.mu.Lock()
	defer p.mu.Unlock()
	p.saved = append(p.saved, append(json.RawMessage(nil), raw...))
	return nil
}

func TestSaver_LatestSnapshotWins(t *testing.T) {
	p := &gatedPersister{
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
	w := newSaver(p, 7)

	r1 := json.RawMessage(`{"items":[1]}`)
	r2 := json.RawMessage(`{"items":[2]}`)
	r3 := json.RawMessage(`{"items":[3]}`)

	w.enqueue(r1)
	<-p.started // writer is now inside Put(r1)

	w.enqueue(r2) // queued
	w.enqueue(r3) // replaces r2

	p.release <- struct{}{} // finish r1
	<-p.started             // writer picked the queued snapshot
	p.release <- struct{}{} // finish it
	w.close()

	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.saved) != 2 {
		t.Fatalf("puts = %d, want 2 (intermediate snapshot dropped)", len(p.saved))
	}
	if string(p.saved[0]) != string(r1) || string(p.saved[1]) != string(r3) {
		t.Errorf("saved = [%s, %s], want [r1, r3]", p.saved[0], p.saved[1])
	}
}
