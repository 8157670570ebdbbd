package audit

import "time"

// Entry is one immutable record of a state-changing or security-relevant
// operation. Entries are created exactly once and never updated or deleted;
// ID and Timestamp are assigned by the log store on insert.
type Entry struct {
	ID           string         `json:"id"`
	UserID       string         `json:"user_id,omitempty"` // empty for system-initiated actions
	Action       string         `json:"action"`            // by convention create|update|delete, not constrained
	ResourceType string         `json:"resource_type"`
	ResourceID   string         `json:"resource_id,omitempty"`
	OldValues    map[string]any `json:"old_values,omitempty"`
	NewValues    map[string]any `json:"new_values,omitempty"`
	IPAddress    string         `json:"ip_address,omitempty"` // populated at the network edge, never by clients
	UserAgent    string         `json:"user_agent,omitempty"` // client-reported, not trusted for security decisions
	Timestamp    time.Time      `json:"timestamp"`
}

// Conventional action tags. Action is free-form; these cover the common cases.
const (
	ActionCreate = "create"
	ActionUpdate = "update"
	ActionDelete = "delete"
)

// Filter narrows an audit query. All fields are optional and conjunctive.
// Start and End bound Timestamp inclusively.
type Filter struct {
	ResourceType string
	ResourceID   string
	Start        time.Time
	End          time.Time
}

// Matches reports whether the entry satisfies every set filter field.
func (f Filter) Matches(e Entry) bool {
	if f.ResourceType != "" && e.ResourceType != f.ResourceType {
		return false
	}
	if f.ResourceID != "" && e.ResourceID != f.ResourceID {
		return false
	}
	if !f.Start.IsZero() && e.Timestamp.Before(f.Start) {
		return false
	}
	if !f.End.IsZero() && e.Timestamp.After(f.End) {
		return false
	}
	return true
}
