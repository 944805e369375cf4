package ledger

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// SortMode cycles original -> ascending -> descending -> original.
type SortMode int

const (
	SortOriginal SortMode = iota
	SortAsc
	SortDesc
)

func (m SortMode) String() string {
	switch m {
	case SortAsc:
		return "asc"
	case SortDesc:
		return "desc"
	default:
		return "original"
	}
}

// FilterState cycles all -> checked -> unchecked -> all. Filtering only
// changes the displayed subset, never the ledger itself.
type FilterState int

const (
	FilterAll FilterState = iota
	FilterChecked
	FilterUnchecked
)

func (f FilterState) String() string {
	switch f {
	case FilterChecked:
		return "checked"
	case FilterUnchecked:
		return "unchecked"
	default:
		return "all"
	}
}

// document is the persisted shape: {"items":[...]}, nothing else.
type document struct {
	Items []LineItem `json:"items"`
}

// Store is the single source of truth for one user's ledger. Every
// mutation leaves items and totals consistent before it returns, then
// hands a snapshot to the background saver (optimistic write).
type Store struct {
	userID  uint
	maxDesc int
	persist Persister
	saver   *saver

	mu            sync.Mutex
	items         []LineItem // current order; affected by sort
	originalOrder []string   // item ids in pre-sort order
	sortMode      SortMode
	filter        FilterState
	selectedID    string
	totals        Totals
}

// NewStore builds a store for userID. persist may be nil, in which case
// nothing is saved (used by tests of the pure state machine).
func NewStore(userID uint, persist Persister, maxDesc int) *Store {
	if maxDesc <= 0 {
		maxDesc = DefaultMaxDescription
	}
	s := &Store{
		userID:  userID,
		maxDesc: maxDesc,
		persist: persist,
	}
	if persist != nil {
		s.saver = newSaver(persist, userID)
	}
	return s
}

// UserID returns the owning account id.
func (s *Store) UserID() uint { return s.userID }

// Load replaces the ledger with stored state, or with an empty ledger when
// the user has no document yet. A read failure is returned as an error and
// is never mistaken for a fresh account. Safe to call again (restore).
func (s *Store) Load() error {
	var items []LineItem
	if s.persist != nil {
		raw, found, err := s.persist.Get(s.userID)
		if err != nil {
			return fmt.Errorf("load ledger: %w", err)
		}
		if found {
			var doc document
			if err := json.Unmarshal(raw, &doc); err != nil {
				return fmt.Errorf("decode ledger document: %w", err)
			}
			items = doc.Items
		}
	}

	// re-establish invariants on whatever was stored
	for i := range items {
		items[i].ID = uuid.NewString()
		items[i].Description = SanitizeDescription(items[i].Description, s.maxDesc)
		if items[i].Amount < 0 || math.IsNaN(items[i].Amount) || math.IsInf(items[i].Amount, 0) {
			items[i].Amount = 0
		}
		if !items[i].Sign.Valid() {
			items[i].Sign = SignDebit
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = items
	s.snapshotOrderLocked()
	s.sortMode = SortOriginal
	s.filter = FilterAll
	s.selectedID = ""
	s.totals = computeTotals(s.items)
	return nil
}

// AddItem appends a blank item with the given sign. The new item is last
// in both the ledger and the original order.
func (s *Store) AddItem(sign Sign) (LineItem, bool) {
	if !sign.Valid() {
		return LineItem{}, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	item := newLineItem(sign)
	s.items = append(s.items, item)
	s.originalOrder = append(s.originalOrder, item.ID)
	s.refreshLocked()
	return item, true
}

// RemoveItem deletes exactly the item with the given id; a miss is a
// silent no-op.
func (s *Store) RemoveItem(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOfLocked(id)
	if i < 0 {
		return false
	}
	s.items = append(s.items[:i], s.items[i+1:]...)
	for j, oid := range s.originalOrder {
		if oid == id {
			s.originalOrder = append(s.originalOrder[:j], s.originalOrder[j+1:]...)
			break
		}
	}
	if s.selectedID == id {
		s.selectedID = ""
	}
	s.refreshLocked()
	return true
}

// RemoveAt deletes the row at the given position of the currently
// displayed (filtered) order. The position is resolved to the item's
// identity first, so hidden rows are never touched.
func (s *Store) RemoveAt(displayed int) bool {
	id, ok := s.idAtDisplayed(displayed)
	if !ok {
		return false
	}
	return s.RemoveItem(id)
}

// UpdateField writes a coerced value into one field of the item with the
// given id. Amounts parse to a finite non-negative number (0 on failure),
// descriptions are sanitized and truncated, checked toggles regardless of
// value, sign must be "+" or "-".
func (s *Store) UpdateField(id, field, value string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOfLocked(id)
	if i < 0 {
		return false
	}
	it := &s.items[i]
	switch field {
	case "description":
		it.Description = SanitizeDescription(value, s.maxDesc)
	case "amount":
		it.Amount = CoerceAmount(value)
	case "checked":
		it.Checked = !it.Checked
	case "sign":
		sign := Sign(value)
		if !sign.Valid() {
			return false
		}
		it.Sign = sign
	default:
		return false
	}
	s.refreshLocked()
	return true
}

// UpdateFieldAt is UpdateField addressed by displayed position.
func (s *Store) UpdateFieldAt(displayed int, field, value string) bool {
	id, ok := s.idAtDisplayed(displayed)
	if !ok {
		return false
	}
	return s.UpdateField(id, field, value)
}

// Select marks the item with the given id as selected; an empty id clears
// the selection.
func (s *Store) Select(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id == "" {
		s.selectedID = ""
		return true
	}
	if s.indexOfLocked(id) < 0 {
		return false
	}
	s.selectedID = id
	return true
}

// MoveUp swaps the selected item with its upper neighbour. No-op at the
// top or when nothing is selected.
func (s *Store) MoveUp() bool {
	return s.move(-1)
}

// MoveDown swaps the selected item with its lower neighbour. No-op at the
// bottom or when nothing is selected.
func (s *Store) MoveDown() bool {
	return s.move(+1)
}

func (s *Store) move(delta int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.selectedID == "" {
		return false
	}
	i := s.indexOfLocked(s.selectedID)
	j := i + delta
	if i < 0 || j < 0 || j >= len(s.items) {
		return false
	}
	s.items[i], s.items[j] = s.items[j], s.items[i]
	if s.sortMode == SortOriginal {
		// items are the original order right now, keep the snapshot true
		s.snapshotOrderLocked()
	}
	s.refreshLocked()
	return true
}

// CycleSort advances original -> asc -> desc -> original. Sorting is by
// amount only and stable, so ties keep their relative order; cycling back
// restores the exact pre-sort sequence.
func (s *Store) CycleSort() SortMode {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.sortMode {
	case SortOriginal:
		sort.SliceStable(s.items, func(i, j int) bool {
			return s.items[i].Amount < s.items[j].Amount
		})
		s.sortMode = SortAsc
	case SortAsc:
		sort.SliceStable(s.items, func(i, j int) bool {
			return s.items[i].Amount > s.items[j].Amount
		})
		s.sortMode = SortDesc
	default:
		s.restoreOrderLocked()
		s.sortMode = SortOriginal
	}
	s.refreshLocked()
	return s.sortMode
}

// CycleFilter advances all -> checked -> unchecked -> all. Only the
// displayed subset changes; nothing is persisted.
func (s *Store) CycleFilter() FilterState {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filter = (s.filter + 1) % 3
	return s.filter
}

// Visible returns a copy of the currently displayed (filtered) rows.
func (s *Store) Visible() []LineItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.visibleLocked()
}

// Items returns a copy of the full, unfiltered ledger in current order.
func (s *Store) Items() []LineItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]LineItem, len(s.items))
	copy(out, s.items)
	return out
}

// Totals returns the aggregates of the full, unfiltered ledger.
func (s *Store) Totals() Totals {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.totals
}

// State is a consistent snapshot for rendering.
type State struct {
	Items      []LineItem // displayed (filtered) order
	All        []LineItem // full ledger, current order
	Totals     Totals
	SortMode   SortMode
	Filter     FilterState
	SelectedID string
	Unsaved    bool
	SaveErr    error
}

// State returns everything a view needs under one lock acquisition.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	all := make([]LineItem, len(s.items))
	copy(all, s.items)
	st := State{
		Items:      s.visibleLocked(),
		All:        all,
		Totals:     s.totals,
		SortMode:   s.sortMode,
		Filter:     s.filter,
		SelectedID: s.selectedID,
	}
	if s.saver != nil {
		st.Unsaved, st.SaveErr = s.saver.unsaved()
	}
	return st
}

// Unsaved reports divergence between memory and stored state.
func (s *Store) Unsaved() (bool, error) {
	if s.saver == nil {
		return false, nil
	}
	return s.saver.unsaved()
}

// Close flushes the pending snapshot, if any, and stops the saver.
func (s *Store) Close() {
	if s.saver != nil {
		s.saver.close()
	}
}

// ----------------- internals (call with s.mu held) -----------------

func (s *Store) indexOfLocked(id string) int {
	for i := range s.items {
		if s.items[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) idAtDisplayed(displayed int) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	visible := s.visibleLocked()
	if displayed < 0 || displayed >= len(visible) {
		return "", false
	}
	return visible[displayed].ID, true
}

func (s *Store) visibleLocked() []LineItem {
	out := make([]LineItem, 0, len(s.items))
	for _, it := range s.items {
		switch s.filter {
		case FilterChecked:
			if !it.Checked {
				continue
			}
		case FilterUnchecked:
			if it.Checked {
				continue
			}
		}
		out = append(out, it)
	}
	return out
}

func (s *Store) snapshotOrderLocked() {
	s.originalOrder = make([]string, len(s.items))
	for i := range s.items {
		s.originalOrder[i] = s.items[i].ID
	}
}

func (s *Store) restoreOrderLocked() {
	byID := make(map[string]LineItem, len(s.items))
	for _, it := range s.items {
		byID[it.ID] = it
	}
	restored := make([]LineItem, 0, len(s.items))
	for _, id := range s.originalOrder {
		if it, ok := byID[id]; ok {
			restored = append(restored, it)
			delete(byID, id)
		}
	}
	// anything not in the snapshot keeps its current relative position at the end
	for _, it := range s.items {
		if _, ok := byID[it.ID]; ok {
			restored = append(restored, it)
		}
	}
	s.items = restored
}

// refreshLocked recomputes aggregates and hands the new snapshot to the
// saver. Memory is updated before the write is issued; the caller never
// waits on the round trip.
func (s *Store) refreshLocked() {
	s.totals = computeTotals(s.items)
	if s.saver == nil {
		return
	}
	items := s.items
	if items == nil {
		items = []LineItem{} // persist {"items":[]}, not null
	}
	raw, err := json.Marshal(document{Items: items})
	if err != nil {
		return
	}
	s.saver.enqueue(raw)
}
