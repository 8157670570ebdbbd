package audit

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/suite"
)

// RecorderSuite tests fire-and-forget recording semantics.
//
// Justification: the recorder's contract is that audit failures never
// interrupt business operations and that drops are accounted for, not
// silent. Both are compliance-relevant behaviors.
type RecorderSuite struct {
	suite.Suite
}

func TestRecorderSuite(t *testing.T) {
	suite.Run(t, new(RecorderSuite))
}

func (s *RecorderSuite) TestSyncRecordPersistsImmediately() {
	store := NewInMemoryStore()
	recorder := NewRecorder(store)

	recorder.Record(context.Background(), Entry{
		Action:       ActionUpdate,
		ResourceType: "claims",
		ResourceID:   "CLM-123",
		OldValues:    map[string]any{"status": "pending"},
		NewValues:    map[string]any{"status": "approved"},
	})

	entries, err := store.Query(context.Background(), Filter{ResourceID: "CLM-123"})
	s.Require().NoError(err)
	s.Require().Len(entries, 1)
	s.Equal("pending", entries[0].OldValues["status"])
	s.Equal("approved", entries[0].NewValues["status"])
}

func (s *RecorderSuite) TestAsyncVisibilityIsEventual() {
	store := NewInMemoryStore()
	recorder := NewRecorder(store, WithBuffer(16))

	recorder.Record(context.Background(), Entry{
		Action:       ActionUpdate,
		ResourceType: "claims",
		ResourceID:   "CLM-123",
		OldValues:    map[string]any{"status": "pending"},
		NewValues:    map[string]any{"status": "approved"},
	})

	// An immediate read may or may not see the entry; both are valid.
	// What is never valid is an entry with swapped old/new values.
	immediate, err := store.Query(context.Background(), Filter{ResourceID: "CLM-123"})
	s.Require().NoError(err)
	s.LessOrEqual(len(immediate), 1)
	for _, e := range immediate {
		s.Equal("pending", e.OldValues["status"])
		s.Equal("approved", e.NewValues["status"])
	}

	// Close drains the queue; afterwards the entry must be visible.
	recorder.Close()
	drained, err := store.Query(context.Background(), Filter{ResourceID: "CLM-123"})
	s.Require().NoError(err)
	s.Require().Len(drained, 1)
	s.Equal("pending", drained[0].OldValues["status"])
	s.Equal("approved", drained[0].NewValues["status"])
}

func (s *RecorderSuite) TestInsertFailureNeverPropagates() {
	recorder := NewRecorder(&failingStore{})

	// Must not panic, block, or surface the failure in any way.
	recorder.Record(context.Background(), Entry{
		Action:       ActionDelete,
		ResourceType: "patients",
	})
}

func (s *RecorderSuite) TestFullQueueDropsInsteadOfBlocking() {
	store := &blockedStore{release: make(chan struct{})}
	recorder := NewRecorder(store, WithBuffer(1))

	// First entry occupies the worker, second fills the queue, the rest
	// must be dropped without blocking the caller.
	for i := 0; i < 10; i++ {
		recorder.Record(context.Background(), Entry{
			Action:       ActionCreate,
			ResourceType: "claims",
		})
	}

	close(store.release)
	recorder.Close()
	s.LessOrEqual(store.count(), 2, "at most worker-held plus queued entries persist")
}

type failingStore struct{}

func (f *failingStore) Insert(context.Context, Entry) error {
	return errors.New("log store unreachable")
}

func (f *failingStore) Query(context.Context, Filter) ([]Entry, error) {
	return nil, errors.New("log store unreachable")
}

// blockedStore parks inserts until released so tests can fill the queue.
type blockedStore struct {
	release  chan struct{}
	mu       sync.Mutex
	inserted int
}

func (b *blockedStore) Insert(context.Context, Entry) error {
	<-b.release
	b.mu.Lock()
	defer b.mu.Unlock()
	b.inserted++
	return nil
}

func (b *blockedStore) Query(context.Context, Filter) ([]Entry, error) {
	return nil, nil
}

func (b *blockedStore) count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.inserted
}
