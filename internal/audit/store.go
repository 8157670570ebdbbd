package audit

import "context"

// QueryLimit caps every audit query. Callers needing more must narrow the
// filter; there is no pagination cursor.
const QueryLimit = 100

// Store persists audit entries. Implementations assign ID and Timestamp on
// insert and must return entries from Query ordered by Timestamp descending,
// capped at QueryLimit.
type Store interface {
	Insert(ctx context.Context, entry Entry) error
	Query(ctx context.Context, filter Filter) ([]Entry, error)
}
