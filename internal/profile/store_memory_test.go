package profile

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/suite"

	"meridian/internal/sentinel"
)

type InMemoryStoreSuite struct {
	suite.Suite
	store *InMemoryStore
}

func TestInMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(InMemoryStoreSuite))
}

func (s *InMemoryStoreSuite) SetupTest() {
	s.store = NewInMemoryStore()
}

func (s *InMemoryStoreSuite) TestFindRole() {
	s.store.Seed("user-1", "manager")

	role, err := s.store.FindRole(context.Background(), "user-1")
	s.Require().NoError(err)
	s.Equal("manager", role)
}

func (s *InMemoryStoreSuite) TestFindRoleUnknownUser() {
	_, err := s.store.FindRole(context.Background(), "ghost")
	s.Require().Error(err)
	s.True(errors.Is(err, sentinel.ErrNotFound))
}

func (s *InMemoryStoreSuite) TestUpdateRole() {
	s.store.Seed("user-1", "staff")

	err := s.store.UpdateRole(context.Background(), "user-1", "manager")
	s.Require().NoError(err)

	role, err := s.store.FindRole(context.Background(), "user-1")
	s.Require().NoError(err)
	s.Equal("manager", role)
}

func (s *InMemoryStoreSuite) TestUpdateRoleUnknownUser() {
	err := s.store.UpdateRole(context.Background(), "ghost", "admin")
	s.Require().Error(err)
	s.True(errors.Is(err, sentinel.ErrNotFound))
}
