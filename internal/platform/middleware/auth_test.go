package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"meridian/internal/access"
	"meridian/internal/jwtauth"
	dErrors "meridian/pkg/domain-errors"
)

// MockTokenValidator is a testify mock for TokenValidator
type MockTokenValidator struct {
	mock.Mock
}

func (m *MockTokenValidator) ValidateToken(tokenString string) (*jwtauth.AccessTokenClaims, error) {
	args := m.Called(tokenString)
	if claims := args.Get(0); claims != nil {
		return claims.(*jwtauth.AccessTokenClaims), args.Error(1)
	}
	return nil, args.Error(1)
}

// MockRoleResolver is a testify mock for RoleResolver
type MockRoleResolver struct {
	mock.Mock
}

func (m *MockRoleResolver) ResolveRole(ctx context.Context, userID string) access.Role {
	args := m.Called(ctx, userID)
	return args.Get(0).(access.Role)
}

// mockHandler captures whether it was called and the request context
type mockHandler struct {
	called  bool
	context context.Context
}

func (m *mockHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	m.called = true
	m.context = r.Context()
	w.WriteHeader(http.StatusOK)
}

type AuthMiddlewareTestSuite struct {
	suite.Suite
	validator   *MockTokenValidator
	roles       *MockRoleResolver
	nextHandler *mockHandler
	middleware  func(http.Handler) http.Handler
}

func TestAuthMiddlewareTestSuite(t *testing.T) {
	suite.Run(t, new(AuthMiddlewareTestSuite))
}

func (s *AuthMiddlewareTestSuite) SetupTest() {
	s.validator = new(MockTokenValidator)
	s.roles = new(MockRoleResolver)
	s.nextHandler = &mockHandler{}
	s.middleware = RequireAuth(s.validator, s.roles, slog.Default())
}

func (s *AuthMiddlewareTestSuite) TearDownTest() {
	s.validator.AssertExpectations(s.T())
	s.roles.AssertExpectations(s.T())
}

func (s *AuthMiddlewareTestSuite) makeRequest(authHeader string) *httptest.ResponseRecorder {
	handler := s.middleware(s.nextHandler)
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("User-Agent", "test-agent/1.0")
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	return w
}

func (s *AuthMiddlewareTestSuite) TestValidToken() {
	claims := &jwtauth.AccessTokenClaims{
		UserID:           "user-123",
		RegisteredClaims: jwt.RegisteredClaims{Subject: "user-123"},
	}
	s.validator.On("ValidateToken", "valid-token").Return(claims, nil)
	s.roles.On("ResolveRole", mock.Anything, "user-123").Return(access.RoleManager)

	w := s.makeRequest("Bearer valid-token")

	require.True(s.T(), s.nextHandler.called, "next handler should be called")
	assert.Equal(s.T(), http.StatusOK, w.Code)
	assert.Equal(s.T(), "user-123", GetUserID(s.nextHandler.context))
	assert.Equal(s.T(), access.RoleManager, GetRole(s.nextHandler.context))
	assert.Equal(s.T(), "test-agent/1.0", GetUserAgent(s.nextHandler.context))
	assert.NotEmpty(s.T(), GetClientIP(s.nextHandler.context))

	caller := GetCaller(s.nextHandler.context)
	assert.Equal(s.T(), "user-123", caller.UserID)
	assert.Equal(s.T(), access.RoleManager, caller.Role)
}

func (s *AuthMiddlewareTestSuite) TestMissingAuthorizationHeader() {
	w := s.makeRequest("")

	assert.False(s.T(), s.nextHandler.called)
	assert.Equal(s.T(), http.StatusUnauthorized, w.Code)
	assert.Contains(s.T(), w.Body.String(), "Missing or invalid Authorization header")
}

func (s *AuthMiddlewareTestSuite) TestMalformedAuthorizationHeader() {
	w := s.makeRequest("Basic dXNlcjpwYXNz")

	assert.False(s.T(), s.nextHandler.called)
	assert.Equal(s.T(), http.StatusUnauthorized, w.Code)
}

func (s *AuthMiddlewareTestSuite) TestInvalidToken() {
	s.validator.On("ValidateToken", "bad-token").
		Return(nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token"))

	w := s.makeRequest("Bearer bad-token")

	assert.False(s.T(), s.nextHandler.called)
	assert.Equal(s.T(), http.StatusUnauthorized, w.Code)
	assert.Contains(s.T(), w.Body.String(), "Invalid or expired token")
}

func (s *AuthMiddlewareTestSuite) TestRoleResolvedPerRequest() {
	claims := &jwtauth.AccessTokenClaims{UserID: "user-123"}
	s.validator.On("ValidateToken", "valid-token").Return(claims, nil).Twice()
	s.roles.On("ResolveRole", mock.Anything, "user-123").Return(access.RoleStaff).Once()
	s.roles.On("ResolveRole", mock.Anything, "user-123").Return(access.RoleReadonly).Once()

	s.makeRequest("Bearer valid-token")
	first := GetRole(s.nextHandler.context)

	s.makeRequest("Bearer valid-token")
	second := GetRole(s.nextHandler.context)

	assert.Equal(s.T(), access.RoleStaff, first)
	assert.Equal(s.T(), access.RoleReadonly, second, "a role change must apply on the next request")
}

func TestGettersOnBareContext(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, GetUserID(ctx))
	assert.Equal(t, access.RoleReadonly, GetRole(ctx), "missing auth context must degrade to the most restricted role")
	assert.Empty(t, GetUserAgent(ctx))
	assert.Empty(t, GetClientIP(ctx))
}
