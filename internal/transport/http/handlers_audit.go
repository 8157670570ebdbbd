package httptransport

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"meridian/internal/access"
	"meridian/internal/audit"
	"meridian/internal/platform/middleware"
	httpErrors "meridian/pkg/http-errors"
)

type recordEventRequest struct {
	Action       string         `json:"action"`
	ResourceType string         `json:"resource_type"`
	ResourceID   string         `json:"resource_id"`
	OldValues    map[string]any `json:"old_values"`
	NewValues    map[string]any `json:"new_values"`
}

// handleRecordEvent accepts an audit entry and returns 202 immediately.
// Identity, client IP and user agent come from the authenticated request,
// never from the body: clients cannot spoof who did what from where.
func (h *Handler) handleRecordEvent(w http.ResponseWriter, r *http.Request) {
	var req recordEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, httpErrors.New(httpErrors.CodeInvalidInput, "invalid request body"))
		return
	}
	if req.Action == "" || req.ResourceType == "" {
		writeError(w, httpErrors.New(httpErrors.CodeInvalidInput, "action and resource_type are required"))
		return
	}

	ctx := r.Context()
	h.recorder.Record(ctx, audit.Entry{
		UserID:       middleware.GetUserID(ctx),
		Action:       req.Action,
		ResourceType: req.ResourceType,
		ResourceID:   req.ResourceID,
		OldValues:    req.OldValues,
		NewValues:    req.NewValues,
		IPAddress:    middleware.GetClientIP(ctx),
		UserAgent:    middleware.GetUserAgent(ctx),
	})

	w.WriteHeader(http.StatusAccepted)
}

type auditLogEntry struct {
	ID           string         `json:"id"`
	UserID       string         `json:"user_id,omitempty"`
	Action       string         `json:"action"`
	ResourceType string         `json:"resource_type"`
	ResourceID   string         `json:"resource_id,omitempty"`
	OldValues    map[string]any `json:"old_values,omitempty"`
	NewValues    map[string]any `json:"new_values,omitempty"`
	IPAddress    string         `json:"ip_address,omitempty"`
	Device       string         `json:"device"`
	Timestamp    time.Time      `json:"timestamp"`
}

type listLogsResponse struct {
	Entries []auditLogEntry `json:"entries"`
}

// handleListLogs serves the audit view: filtered, newest first, capped.
// Manager-gated like the rest of the security panel.
func (h *Handler) handleListLogs(w http.ResponseWriter, r *http.Request) {
	role := middleware.GetRole(r.Context())
	if !access.IsManager(role) {
		writeError(w, httpErrors.New(httpErrors.CodeForbidden, "insufficient permissions to view audit logs"))
		return
	}

	filter, err := filterFromQuery(r)
	if err != nil {
		writeError(w, err)
		return
	}

	entries := h.reader.List(r.Context(), filter)
	out := make([]auditLogEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, auditLogEntry{
			ID:           e.ID,
			UserID:       e.UserID,
			Action:       e.Action,
			ResourceType: e.ResourceType,
			ResourceID:   e.ResourceID,
			OldValues:    e.OldValues,
			NewValues:    e.NewValues,
			IPAddress:    e.IPAddress,
			Device:       audit.DeviceName(e.UserAgent),
			Timestamp:    e.Timestamp,
		})
	}
	writeJSON(w, http.StatusOK, listLogsResponse{Entries: out})
}

// handleExportLogs streams the CSV export as a browser download.
func (h *Handler) handleExportLogs(w http.ResponseWriter, r *http.Request) {
	role := middleware.GetRole(r.Context())
	if !access.IsManager(role) {
		writeError(w, httpErrors.New(httpErrors.CodeForbidden, "insufficient permissions to export audit logs"))
		return
	}

	filter, err := filterFromQuery(r)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.reader.Export(r.Context(), filter, &attachmentSink{w: w}); err != nil {
		writeError(w, err)
		return
	}
}

func filterFromQuery(r *http.Request) (audit.Filter, error) {
	q := r.URL.Query()
	filter := audit.Filter{
		ResourceType: q.Get("resource_type"),
		ResourceID:   q.Get("resource_id"),
	}
	if s := q.Get("start"); s != "" {
		start, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return audit.Filter{}, httpErrors.New(httpErrors.CodeInvalidInput, "start must be RFC 3339")
		}
		filter.Start = start
	}
	if s := q.Get("end"); s != "" {
		end, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return audit.Filter{}, httpErrors.New(httpErrors.CodeInvalidInput, "end must be RFC 3339")
		}
		filter.End = end
	}
	return filter, nil
}

// attachmentSink delivers a complete in-memory file as an HTTP download.
// Export buffers the whole CSV before Deliver runs, so headers are only
// written once the payload is known good.
type attachmentSink struct {
	w http.ResponseWriter
}

func (s *attachmentSink) Deliver(_ context.Context, filename string, data []byte) error {
	s.w.Header().Set("Content-Type", "text/csv")
	s.w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	s.w.WriteHeader(http.StatusOK)
	_, err := s.w.Write(data)
	return err
}
