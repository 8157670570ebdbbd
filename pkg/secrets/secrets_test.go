package secrets

import (
	"testing"

	"github.com/stretchr/testify/suite"

	dErrors "meridian/pkg/domain-errors"
)

type SecretsSuite struct {
	suite.Suite
}

func TestSecretsSuite(t *testing.T) {
	suite.Run(t, new(SecretsSuite))
}

func (s *SecretsSuite) TestGenerateProducesUniqueSecrets() {
	a, err := Generate()
	s.Require().NoError(err)
	b, err := Generate()
	s.Require().NoError(err)

	s.NotEmpty(a)
	s.NotEqual(a, b)
}

func (s *SecretsSuite) TestHashAndVerify() {
	secret, err := Generate()
	s.Require().NoError(err)

	hash, err := Hash(secret)
	s.Require().NoError(err)
	s.NotEqual(secret, hash)

	s.NoError(Verify(secret, hash))
	s.Error(Verify("wrong-secret", hash))
}

func (s *SecretsSuite) TestHashRejectsEmptySecret() {
	_, err := Hash("")
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))
}
