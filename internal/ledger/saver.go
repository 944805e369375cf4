package ledger

import (
	"encoding/json"
	"log"
	"sync"
)

// Persister is the document-store contract the ledger depends on.
// Get must distinguish "no document yet" (found == false, nil error)
// from a real read failure.
type Persister interface {
	Get(userID uint) (json.RawMessage, bool, error)
	Put(userID uint, raw json.RawMessage) error
}

// saver writes snapshots in the background so mutations never wait on the
// store. The queue has depth one and keeps only the newest snapshot:
// delivery is at-most-once, a failed write is not retried, and divergence
// from stored state is visible through unsaved().
type saver struct {
	persist Persister
	userID  uint
	ch      chan snapshot
	done    chan struct{}

	mu       sync.Mutex
	closed   bool
	enqSeq   uint64
	savedSeq uint64
	lastErr  error
}

type snapshot struct {
	seq uint64
	raw json.RawMessage
}

func newSaver(p Persister, userID uint) *saver {
	w := &saver{
		persist: p,
		userID:  userID,
		ch:      make(chan snapshot, 1),
		done:    make(chan struct{}),
	}
	go w.run()
	return w
}

// enqueue queues a snapshot for writing; an older queued snapshot that has
// not been picked up yet is replaced by the newer one. After close it is a
// no-op, so a store handle that outlives its session cannot send on the
// closed channel.
func (w *saver) enqueue(raw json.RawMessage) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	w.enqSeq++
	snap := snapshot{seq: w.enqSeq, raw: raw}

	for {
		select {
		case w.ch <- snap:
			return
		default:
			// drop the stale queued snapshot, then try again
			select {
			case <-w.ch:
			default:
			}
		}
	}
}

func (w *saver) run() {
	defer close(w.done)
	for snap := range w.ch {
		err := w.persist.Put(w.userID, snap.raw)

		w.mu.Lock()
		if err != nil {
			w.lastErr = err
		} else {
			w.lastErr = nil
			if snap.seq > w.savedSeq {
				w.savedSeq = snap.seq
			}
		}
		w.mu.Unlock()

		if err != nil {
			log.Printf("ledger: save user %d: %v", w.userID, err)
		}
	}
}

// unsaved reports whether the in-memory ledger has diverged from stored
// state, and the error of the last failed write if any.
func (w *saver) unsaved() (bool, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.enqSeq != w.savedSeq || w.lastErr != nil, w.lastErr
}

// close flushes any queued snapshot and stops the background writer.
// Safe to call more than once.
func (w *saver) close() {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	w.closed = true
	w.mu.Unlock()

	close(w.ch)
	<-w.done
}
