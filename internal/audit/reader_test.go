package audit

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/suite"

	"meridian/internal/notify"
	dErrors "meridian/pkg/domain-errors"
)

// ReaderSuite tests read-path degradation and export delivery.
//
// Justification: the audit view must stay usable when the log store is
// down, and an export must either deliver a complete file or nothing.
type ReaderSuite struct {
	suite.Suite
	store    *InMemoryStore
	notifier *spyNotifier
	reader   *Reader
}

func TestReaderSuite(t *testing.T) {
	suite.Run(t, new(ReaderSuite))
}

func (s *ReaderSuite) SetupTest() {
	s.store = NewInMemoryStore()
	s.notifier = &spyNotifier{}
	s.reader = NewReader(s.store, s.notifier)
}

func (s *ReaderSuite) TestListReturnsMatchingEntries() {
	s.store.Insert(context.Background(), Entry{Action: ActionCreate, ResourceType: "claims", ResourceID: "CLM-1"})
	s.store.Insert(context.Background(), Entry{Action: ActionUpdate, ResourceType: "patients", ResourceID: "PAT-1"})

	entries := s.reader.List(context.Background(), Filter{ResourceType: "claims"})
	s.Require().Len(entries, 1)
	s.Equal("CLM-1", entries[0].ResourceID)
	s.Empty(s.notifier.received())
}

func (s *ReaderSuite) TestListDegradesToEmptyOnStoreError() {
	reader := NewReader(&failingStore{}, s.notifier)

	entries := reader.List(context.Background(), Filter{})

	s.Require().NotNil(entries, "callers must get an empty slice, not nil")
	s.Empty(entries)
	notifications := s.notifier.received()
	s.Require().Len(notifications, 1)
	s.Equal("Failed to fetch audit logs", notifications[0].Description)
	s.Equal(notify.SeverityError, notifications[0].Severity)
}

func (s *ReaderSuite) TestListCapsMisbehavingStore() {
	entries := make([]Entry, QueryLimit+40)
	for i := range entries {
		entries[i] = Entry{Action: ActionCreate, ResourceType: "claims"}
	}
	reader := NewReader(&uncappedStore{entries: entries}, s.notifier)

	got := reader.List(context.Background(), Filter{})
	s.Len(got, QueryLimit)
}

func (s *ReaderSuite) TestExportDeliversCompleteFile() {
	s.store.Insert(context.Background(), Entry{Action: ActionUpdate, ResourceType: "profiles", ResourceID: "user-7"})

	sink := &captureSink{}
	err := s.reader.Export(context.Background(), Filter{}, sink)

	s.Require().NoError(err)
	s.Equal(ExportFilename, sink.filename)
	s.Contains(string(sink.data), `"profiles"`)
	notifications := s.notifier.received()
	s.Require().Len(notifications, 1)
	s.Equal("Audit logs exported successfully", notifications[0].Description)
	s.Equal(notify.SeverityInfo, notifications[0].Severity)
}

func (s *ReaderSuite) TestExportQueryFailure() {
	reader := NewReader(&failingStore{}, s.notifier)

	sink := &captureSink{}
	err := reader.Export(context.Background(), Filter{}, sink)

	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeUnavailable))
	s.Nil(sink.data, "nothing may be delivered on query failure")
	notifications := s.notifier.received()
	s.Require().Len(notifications, 1)
	s.Equal("Failed to export audit logs", notifications[0].Description)
}

func (s *ReaderSuite) TestExportDeliveryFailure() {
	s.store.Insert(context.Background(), Entry{Action: ActionCreate, ResourceType: "claims"})

	err := s.reader.Export(context.Background(), Filter{}, &failingSink{})

	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeInternal))
	notifications := s.notifier.received()
	s.Require().Len(notifications, 1)
	s.Equal("Failed to export audit logs", notifications[0].Description)
}

type spyNotifier struct {
	mu            sync.Mutex
	notifications []notify.Notification
}

func (s *spyNotifier) Notify(_ context.Context, n notify.Notification) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifications = append(s.notifications, n)
}

func (s *spyNotifier) received() []notify.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]notify.Notification(nil), s.notifications...)
}

type captureSink struct {
	filename string
	data     []byte
}

func (c *captureSink) Deliver(_ context.Context, filename string, data []byte) error {
	c.filename = filename
	c.data = data
	return nil
}

type failingSink struct{}

func (f *failingSink) Deliver(context.Context, string, []byte) error {
	return dErrors.New(dErrors.CodeInternal, "download channel closed")
}

// uncappedStore ignores the query limit contract on purpose.
type uncappedStore struct {
	entries []Entry
}

func (u *uncappedStore) Insert(context.Context, Entry) error {
	return nil
}

func (u *uncappedStore) Query(context.Context, Filter) ([]Entry, error) {
	return u.entries, nil
}
