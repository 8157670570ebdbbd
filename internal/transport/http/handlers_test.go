package httptransport

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"meridian/internal/access"
	"meridian/internal/audit"
	"meridian/internal/jwtauth"
	"meridian/internal/notify"
	"meridian/internal/platform/logger"
	"meridian/internal/profile"
	"meridian/internal/security"
)

// HandlerSuite exercises the full router with real services over in-memory
// stores, using real signed tokens.
//
// Justification: the role gates live across middleware, services and
// handlers; only a request-level test proves they compose into the right
// status codes.
type HandlerSuite struct {
	suite.Suite
	tokens   *jwtauth.Service
	profiles *profile.InMemoryStore
	store    *audit.InMemoryStore
	router   http.Handler
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) SetupTest() {
	log := logger.New()
	s.tokens = jwtauth.NewService("test-signing-key", "test-issuer", "test-audience", time.Hour)
	s.profiles = profile.NewInMemoryStore()
	s.profiles.Seed("admin-1", "admin")
	s.profiles.Seed("manager-1", "manager")
	s.profiles.Seed("staff-1", "staff")

	s.store = audit.NewInMemoryStore()
	recorder := audit.NewRecorder(s.store) // sync keeps assertions deterministic
	reader := audit.NewReader(s.store, notify.NewSlog(log))
	accessSvc := access.New(s.profiles, recorder)
	securitySvc := security.New(s.store)

	h := NewHandler(accessSvc, recorder, reader, securitySvc, nil, log)
	s.router = NewRouter(h, s.tokens, accessSvc, log)
}

func (s *HandlerSuite) request(method, path, userID, body string) *httptest.ResponseRecorder {
	var reqBody *strings.Reader
	if body == "" {
		reqBody = strings.NewReader("")
	} else {
		reqBody = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reqBody)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if userID != "" {
		token, err := s.tokens.GenerateAccessToken(userID)
		s.Require().NoError(err)
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *HandlerSuite) TestHealthz() {
	w := s.request(http.MethodGet, "/healthz", "", "")
	s.Equal(http.StatusOK, w.Code)
	s.Contains(w.Body.String(), `"ok"`)
}

func (s *HandlerSuite) TestMissingTokenIsUnauthorized() {
	for _, path := range []string{"/access/permissions", "/audit/logs", "/security/overview"} {
		s.Run(path, func() {
			w := s.request(http.MethodGet, path, "", "")
			s.Equal(http.StatusUnauthorized, w.Code)
		})
	}
}

func (s *HandlerSuite) TestAccessCheck() {
	s.Run("staff may create claims", func() {
		w := s.request(http.MethodPost, "/access/check", "staff-1", `{"resource":"claims","action":"create"}`)
		s.Require().Equal(http.StatusOK, w.Code)

		var resp checkResponse
		s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
		s.True(resp.Allowed)
		s.Equal("staff", resp.Role)
	})

	s.Run("staff may not delete claims", func() {
		w := s.request(http.MethodPost, "/access/check", "staff-1", `{"resource":"claims","action":"delete"}`)
		s.Require().Equal(http.StatusOK, w.Code)

		var resp checkResponse
		s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
		s.False(resp.Allowed)
	})

	s.Run("unknown resource rejected at boundary", func() {
		w := s.request(http.MethodPost, "/access/check", "admin-1", `{"resource":"invoices","action":"read"}`)
		s.Equal(http.StatusBadRequest, w.Code)
	})

	s.Run("wildcard not requestable", func() {
		w := s.request(http.MethodPost, "/access/check", "admin-1", `{"resource":"*","action":"read"}`)
		s.Equal(http.StatusBadRequest, w.Code)
	})

	s.Run("unknown identity checks as readonly", func() {
		w := s.request(http.MethodPost, "/access/check", "ghost", `{"resource":"claims","action":"read"}`)
		s.Require().Equal(http.StatusOK, w.Code)

		var resp checkResponse
		s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
		s.Equal("readonly", resp.Role)
		s.True(resp.Allowed, "readonly may still read")
	})
}

func (s *HandlerSuite) TestAccessPermissions() {
	w := s.request(http.MethodGet, "/access/permissions", "manager-1", "")
	s.Require().Equal(http.StatusOK, w.Code)

	var resp permissionsResponse
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	s.Equal("manager-1", resp.UserID)
	s.Equal("manager", resp.Role)
	s.NotEmpty(resp.Permissions)
	for _, p := range resp.Permissions {
		s.NotEqual("delete", p.Action, "managers hold no delete grants")
	}
}

func (s *HandlerSuite) TestUpdateUserRole() {
	s.Run("admin promotes staff", func() {
		w := s.request(http.MethodPut, "/admin/users/staff-1/role", "admin-1", `{"role":"manager"}`)
		s.Require().Equal(http.StatusOK, w.Code)

		role, err := s.profiles.FindRole(context.Background(), "staff-1")
		s.Require().NoError(err)
		s.Equal("manager", role)

		entries, err := s.store.Query(context.Background(), audit.Filter{ResourceType: "profiles"})
		s.Require().NoError(err)
		s.Require().Len(entries, 1)
		s.Equal("admin-1", entries[0].UserID)
		s.Equal("staff-1", entries[0].ResourceID)
	})

	s.Run("manager refused", func() {
		w := s.request(http.MethodPut, "/admin/users/staff-1/role", "manager-1", `{"role":"admin"}`)
		s.Equal(http.StatusForbidden, w.Code)
	})

	s.Run("unknown role rejected", func() {
		w := s.request(http.MethodPut, "/admin/users/staff-1/role", "admin-1", `{"role":"superuser"}`)
		s.Equal(http.StatusBadRequest, w.Code)
	})

	s.Run("unknown target", func() {
		w := s.request(http.MethodPut, "/admin/users/ghost/role", "admin-1", `{"role":"staff"}`)
		s.Equal(http.StatusNotFound, w.Code)
	})
}

func (s *HandlerSuite) TestRecordEventAndList() {
	w := s.request(http.MethodPost, "/audit/events", "staff-1",
		`{"action":"update","resource_type":"claims","resource_id":"CLM-7","old_values":{"status":"pending"},"new_values":{"status":"submitted"}}`)
	s.Require().Equal(http.StatusAccepted, w.Code)

	w = s.request(http.MethodGet, "/audit/logs?resource_type=claims", "manager-1", "")
	s.Require().Equal(http.StatusOK, w.Code)

	var resp listLogsResponse
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	s.Require().Len(resp.Entries, 1)
	s.Equal("staff-1", resp.Entries[0].UserID, "identity comes from the token, not the body")
	s.Equal("CLM-7", resp.Entries[0].ResourceID)
	s.Equal("pending", resp.Entries[0].OldValues["status"])
	s.NotEmpty(resp.Entries[0].Device)
	s.NotEmpty(resp.Entries[0].IPAddress)
}

func (s *HandlerSuite) TestRecordEventValidation() {
	w := s.request(http.MethodPost, "/audit/events", "staff-1", `{"resource_id":"CLM-7"}`)
	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *HandlerSuite) TestListLogsGate() {
	w := s.request(http.MethodGet, "/audit/logs", "staff-1", "")
	s.Equal(http.StatusForbidden, w.Code)
}

func (s *HandlerSuite) TestListLogsBadDateFilter() {
	w := s.request(http.MethodGet, "/audit/logs?start=yesterday", "manager-1", "")
	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *HandlerSuite) TestExportLogs() {
	s.request(http.MethodPost, "/audit/events", "staff-1",
		`{"action":"create","resource_type":"patients","resource_id":"PAT-1"}`)

	w := s.request(http.MethodGet, "/audit/logs/export", "manager-1", "")
	s.Require().Equal(http.StatusOK, w.Code)
	s.Equal("text/csv", w.Header().Get("Content-Type"))
	s.Contains(w.Header().Get("Content-Disposition"), `filename="audit-logs.csv"`)
	s.Contains(w.Body.String(), `"patients"`)

	s.Run("staff refused", func() {
		w := s.request(http.MethodGet, "/audit/logs/export", "staff-1", "")
		s.Equal(http.StatusForbidden, w.Code)
	})
}

func (s *HandlerSuite) TestSecurityOverview() {
	s.request(http.MethodPost, "/audit/events", "staff-1",
		`{"action":"create","resource_type":"claims"}`)

	w := s.request(http.MethodGet, "/security/overview", "manager-1", "")
	s.Require().Equal(http.StatusOK, w.Code)

	var overview security.Overview
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &overview))
	s.Equal(1, overview.Activity["claims"]["create"])

	s.Run("staff refused", func() {
		w := s.request(http.MethodGet, "/security/overview", "staff-1", "")
		s.Equal(http.StatusForbidden, w.Code)
	})
}
