package auth

import (
	"context"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"expense-dashboard/internal/apperr"
	"expense-dashboard/internal/models"
	"expense-dashboard/internal/storage"
)

type AuthServiceTestSuite struct {
	suite.Suite
	db  *storage.DB
	svc *Service
	ctx context.Context
}

func (s *AuthServiceTestSuite) SetupTest() {
	db, err := storage.NewDB(":memory:")
	require.NoError(s.T(), err)
	s.db = db
	s.ctx = context.Background()

	log := logrus.New()
	log.SetOutput(io.Discard)
	s.svc = NewService(db, log)
}

func (s *AuthServiceTestSuite) TearDownTest() {
	s.db.Close()
}

func (s *AuthServiceTestSuite) TestRegisterAndAuthenticate() {
	user, err := s.svc.Register(s.ctx, " alice@example.com ", "Alice", "s3cret")
	s.Require().NoError(err)
	s.Equal("alice@example.com", user.Email)
	s.Equal("Alice", user.Username)
	s.NotEqual("s3cret", user.PasswordHash, "passwords are stored hashed")

	got, err := s.svc.Authenticate(s.ctx, "alice@example.com", "s3cret")
	s.Require().NoError(err)
	s.Equal(user.ID, got.ID)
}

func (s *AuthServiceTestSuite) TestRegisterDuplicateEmail() {
	_, err := s.svc.Register(s.ctx, "alice@example.com", "Alice", "one")
	s.Require().NoError(err)

	_, err = s.svc.Register(s.ctx, "alice@example.com", "Other Alice", "two")
	s.ErrorIs(err, apperr.ErrConflict)
	s.ErrorIs(err, ErrEmailTaken)

	count, err := s.db.UserCount(s.ctx)
	s.Require().NoError(err)
	s.Equal(1, count, "duplicate registration must not add a row")
}

func (s *AuthServiceTestSuite) TestRegisterRequiresFields() {
	tests := []struct {
		name                      string
		email, username, password string
	}{
		{"missing email", "", "alice", "pw"},
		{"blank email", "   ", "alice", "pw"},
		{"missing username", "a@example.com", "", "pw"},
		{"missing password", "a@example.com", "alice", ""},
	}
	for _, tt := range tests {
		s.Run(tt.name, func() {
			_, err := s.svc.Register(s.ctx, tt.email, tt.username, tt.password)
			s.ErrorIs(err, apperr.ErrValidation)
		})
	}
}

func (s *AuthServiceTestSuite) TestRegisterAcceptsAnyEmailFormat() {
	_, err := s.svc.Register(s.ctx, "not-an-email", "bob", "x")
	s.NoError(err)
}

func (s *AuthServiceTestSuite) TestAuthenticateFailuresAreIndistinguishable() {
	_, err := s.svc.Register(s.ctx, "alice@example.com", "Alice", "s3cret")
	s.Require().NoError(err)

	_, wrongPassword := s.svc.Authenticate(s.ctx, "alice@example.com", "nope")
	_, unknownEmail := s.svc.Authenticate(s.ctx, "bob@example.com", "s3cret")
	_, emptyPassword := s.svc.Authenticate(s.ctx, "alice@example.com", "")

	for _, err := range []error{wrongPassword, unknownEmail, emptyPassword} {
		s.ErrorIs(err, apperr.ErrAuthFailure)
	}
	s.Equal(wrongPassword.Error(), unknownEmail.Error())
	s.Equal(wrongPassword.Error(), emptyPassword.Error())
}

func TestAuthServiceSuite(t *testing.T) {
	suite.Run(t, new(AuthServiceTestSuite))
}

type failingStore struct {
	err error
}

func (f failingStore) CreateUser(context.Context, string, string, string) (*models.User, error) {
	return nil, f.err
}

func (f failingStore) GetUserByEmail(context.Context, string) (*models.User, error) {
	return nil, f.err
}

func TestAuthenticateStoreErrorIsNotAuthFailure(t *testing.T) {
	log := logrus.New()
	log.SetOutput(io.Discard)
	svc := NewService(failingStore{err: assert.AnError}, log)

	_, err := svc.Authenticate(context.Background(), "a@example.com", "pw")
	require.Error(t, err)
	assert.ErrorIs(t, err, assert.AnError)
	assert.NotErrorIs(t, err, apperr.ErrAuthFailure)
}
