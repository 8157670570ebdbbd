package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// PostgresStore persists audit entries in PostgreSQL. The audit_logs table
// assigns id and timestamp server-side; see migrations/0002_audit_logs.sql.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed audit store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Insert(ctx context.Context, entry Entry) error {
	oldValues, err := marshalValues(entry.OldValues)
	if err != nil {
		return fmt.Errorf("marshal old values: %w", err)
	}
	newValues, err := marshalValues(entry.NewValues)
	if err != nil {
		return fmt.Errorf("marshal new values: %w", err)
	}

	const q = `
INSERT INTO audit_logs (user_id, action, resource_type, resource_id, old_values, new_values, ip_address, user_agent)
VALUES ($1, $2, $3, $4, $5::jsonb, $6::jsonb, $7, $8)
`
	_, err = s.db.ExecContext(ctx, q,
		nullString(entry.UserID),
		entry.Action,
		entry.ResourceType,
		nullString(entry.ResourceID),
		oldValues,
		newValues,
		nullString(entry.IPAddress),
		nullString(entry.UserAgent),
	)
	if err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}
	return nil
}

func (s *PostgresStore) Query(ctx context.Context, filter Filter) ([]Entry, error) {
	var (
		conds []string
		args  []any
	)
	if filter.ResourceType != "" {
		args = append(args, filter.ResourceType)
		conds = append(conds, "resource_type = $"+strconv.Itoa(len(args)))
	}
	if filter.ResourceID != "" {
		args = append(args, filter.ResourceID)
		conds = append(conds, "resource_id = $"+strconv.Itoa(len(args)))
	}
	if !filter.Start.IsZero() {
		args = append(args, filter.Start)
		conds = append(conds, "timestamp >= $"+strconv.Itoa(len(args)))
	}
	if !filter.End.IsZero() {
		args = append(args, filter.End)
		conds = append(conds, "timestamp <= $"+strconv.Itoa(len(args)))
	}

	q := `
SELECT id, user_id, action, resource_type, resource_id, old_values, new_values, ip_address, user_agent, timestamp
FROM audit_logs
`
	if len(conds) > 0 {
		q += "WHERE " + strings.Join(conds, " AND ") + "\n"
	}
	q += "ORDER BY timestamp DESC\nLIMIT " + strconv.Itoa(QueryLimit)

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query audit entries: %w", err)
	}
	defer rows.Close() //nolint:errcheck // read-only cursor

	entries := make([]Entry, 0)
	for rows.Next() {
		var (
			e                          Entry
			userID, resourceID         sql.NullString
			ipAddress, userAgent       sql.NullString
			oldValuesRaw, newValuesRaw []byte
		)
		if err := rows.Scan(&e.ID, &userID, &e.Action, &e.ResourceType, &resourceID,
			&oldValuesRaw, &newValuesRaw, &ipAddress, &userAgent, &e.Timestamp); err != nil {
			return nil, fmt.Errorf("scan audit entry: %w", err)
		}
		e.UserID = userID.String
		e.ResourceID = resourceID.String
		e.IPAddress = ipAddress.String
		e.UserAgent = userAgent.String
		if e.OldValues, err = unmarshalValues(oldValuesRaw); err != nil {
			return nil, fmt.Errorf("decode old values: %w", err)
		}
		if e.NewValues, err = unmarshalValues(newValuesRaw); err != nil {
			return nil, fmt.Errorf("decode new values: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit entries: %w", err)
	}
	return entries, nil
}

func marshalValues(values map[string]any) (any, error) {
	if values == nil {
		return nil, nil
	}
	b, err := json.Marshal(values)
	if err != nil {
		return nil, err
	}
	return b, nil
}

func unmarshalValues(raw []byte) (map[string]any, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var values map[string]any
	if err := json.Unmarshal(raw, &values); err != nil {
		return nil, err
	}
	return values, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
