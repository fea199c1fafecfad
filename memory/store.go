// Package memrepo implements the repository engine over a shared
// in-memory document store. It exists for prototyping and tests: the
// whole store sits behind one reader/writer lock, and a transaction
// holds the exclusive lock for its entire unit of work. That yields
// serializability by construction at the cost of concurrency between
// transactions — a documented trade-off, not a defect.
package memrepo

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/meowmeowcode/orlok"
)

// Store holds every collection of records. Records are never mutated in
// place once stored, so transaction snapshots only need to copy the map
// and its slices.
type Store struct {
	mu     sync.RWMutex
	data   map[string][]*orlok.Record
	logger *zap.Logger
}

// StoreOption configures a store.
type StoreOption func(*Store)

// WithLogger sets the logger used for operation-level debug logging.
func WithLogger(logger *zap.Logger) StoreOption {
	return func(s *Store) {
		s.logger = logger
	}
}

// NewStore creates an empty store.
func NewStore(opts ...StoreOption) *Store {
	s := &Store{
		data:   make(map[string][]*orlok.Record),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Ensure Store acts as a transaction coordinator.
var _ orlok.Transactor = (*Store)(nil)

type txContextKey struct{}

// InTransaction reports whether the context carries an active unit of
// work on this store.
func (s *Store) InTransaction(ctx context.Context) bool {
	owner, ok := ctx.Value(txContextKey{}).(*Store)
	return ok && owner == s
}

// WithTx executes fn as one unit of work. The exclusive lock is held for
// the whole closure, so concurrent transactions queue rather than
// interleave, and non-transactional access stalls until the unit of
// work ends. The store is snapshotted first; an error or panic restores
// the snapshot before returning, and the closure's error is returned
// unchanged. Nesting fails with ErrNestedTransaction.
func (s *Store) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if s.InTransaction(ctx) {
		return orlok.ErrNestedTransaction
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.snapshotLocked()
	s.logger.Debug("transaction started")

	done := false
	defer func() {
		if !done {
			s.data = snapshot
			s.logger.Debug("transaction rolled back on panic")
		}
	}()

	if err := fn(context.WithValue(ctx, txContextKey{}, s)); err != nil {
		done = true
		s.data = snapshot
		s.logger.Debug("transaction rolled back", zap.Error(err))
		return err
	}
	done = true
	s.logger.Debug("transaction committed")
	return nil
}

// read runs fn with at least shared access to the data.
func (s *Store) read(ctx context.Context, fn func(data map[string][]*orlok.Record) error) error {
	if s.InTransaction(ctx) {
		return fn(s.data)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(s.data)
}

// write runs fn with exclusive access to the data. Outside a
// transaction each write is atomic on its own: a failing fn leaves the
// store as it was.
func (s *Store) write(ctx context.Context, fn func(data map[string][]*orlok.Record) error) error {
	if s.InTransaction(ctx) {
		// The transaction's snapshot already covers rollback.
		return fn(s.data)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.snapshotLocked()
	if err := fn(s.data); err != nil {
		s.data = snapshot
		return err
	}
	return nil
}

// snapshotLocked copies the collection map and its slices. Callers must
// hold the exclusive lock.
func (s *Store) snapshotLocked() map[string][]*orlok.Record {
	snapshot := make(map[string][]*orlok.Record, len(s.data))
	for key, records := range s.data {
		copied := make([]*orlok.Record, len(records))
		copy(copied, records)
		snapshot[key] = copied
	}
	return snapshot
}
