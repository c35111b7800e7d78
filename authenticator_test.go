package landmark_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	landmark "github.com/nurlan1717/landmark-backend"
)

func verifiedUser(t *testing.T, password string) *landmark.User {
	t.Helper()
	hash, err := landmark.HashPassword(password, 4)
	require.NoError(t, err)
	return &landmark.User{
		ID:            uuid.New(),
		Role:          landmark.RoleUser,
		Email:         "user@example.com",
		PasswordHash:  hash,
		EmailVerified: true,
	}
}

func TestLoginSuccess(t *testing.T) {
	ctx := context.Background()
	repo := &MockRepositoryManager{}
	users := &MockUsers{}
	user := verifiedUser(t, "secret-password")

	repo.On("Users").Return(users)
	users.On("GetByEmail", mock.Anything, "user@example.com").Return(user, nil).Once()

	auther := landmark.NewAuthenticator(repo, newTestTokenService()).WithLogger(testLogger{})

	token, got, err := auther.Login(ctx, "user@example.com", "secret-password")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, user.ID, got.ID)

	claims, err := auther.SessionFromToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID.String(), claims.UserID())

	users.AssertExpectations(t)
}

func TestLoginFailureIsUniform(t *testing.T) {
	ctx := context.Background()
	user := verifiedUser(t, "secret-password")

	tests := []struct {
		name     string
		email    string
		password string
		setup    func(*MockUsers)
	}{
		{
			name:     "unknown email",
			email:    "nobody@example.com",
			password: "secret-password",
			setup: func(users *MockUsers) {
				users.On("GetByEmail", mock.Anything, "nobody@example.com").
					Return(nil, repository.NewRecordNotFound()).Once()
			},
		},
		{
			name:     "wrong password",
			email:    "user@example.com",
			password: "wrong-password",
			setup: func(users *MockUsers) {
				users.On("GetByEmail", mock.Anything, "user@example.com").
					Return(user, nil).Once()
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &MockRepositoryManager{}
			users := &MockUsers{}
			repo.On("Users").Return(users)
			tt.setup(users)

			auther := landmark.NewAuthenticator(repo, newTestTokenService()).WithLogger(testLogger{})

			_, _, err := auther.Login(ctx, tt.email, tt.password)
			require.Error(t, err)
			// Both failure modes must be indistinguishable.
			assert.ErrorIs(t, err, landmark.ErrInvalidCredentials)
			users.AssertExpectations(t)
		})
	}
}

func TestLoginRejectsUnverifiedEmail(t *testing.T) {
	ctx := context.Background()
	repo := &MockRepositoryManager{}
	users := &MockUsers{}

	user := verifiedUser(t, "secret-password")
	user.EmailVerified = false

	repo.On("Users").Return(users)
	users.On("GetByEmail", mock.Anything, "user@example.com").Return(user, nil).Once()

	auther := landmark.NewAuthenticator(repo, newTestTokenService()).WithLogger(testLogger{})

	_, _, err := auther.Login(ctx, "user@example.com", "secret-password")
	require.Error(t, err)
	assert.ErrorIs(t, err, landmark.ErrEmailNotVerified)
}

func TestUserFromClaims(t *testing.T) {
	ctx := context.Background()
	repo := &MockRepositoryManager{}
	users := &MockUsers{}
	user := verifiedUser(t, "secret-password")

	repo.On("Users").Return(users)
	users.On("GetByUUID", mock.Anything, user.ID).Return(user, nil).Once()

	svc := newTestTokenService()
	auther := landmark.NewAuthenticator(repo, svc).WithLogger(testLogger{})

	token, err := svc.Generate(user)
	require.NoError(t, err)
	claims, err := svc.Validate(token)
	require.NoError(t, err)

	got, err := auther.UserFromClaims(ctx, claims)
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
}

func TestUserFromClaimsUserGone(t *testing.T) {
	ctx := context.Background()
	repo := &MockRepositoryManager{}
	users := &MockUsers{}
	user := verifiedUser(t, "secret-password")

	repo.On("Users").Return(users)
	users.On("GetByUUID", mock.Anything, user.ID).
		Return(nil, repository.NewRecordNotFound()).Once()

	svc := newTestTokenService()
	auther := landmark.NewAuthenticator(repo, svc).WithLogger(testLogger{})

	token, err := svc.Generate(user)
	require.NoError(t, err)
	claims, err := svc.Validate(token)
	require.NoError(t, err)

	_, err = auther.UserFromClaims(ctx, claims)
	require.Error(t, err)
	assert.ErrorIs(t, err, landmark.ErrUserGone)
}

func TestUserFromClaimsStaleSession(t *testing.T) {
	ctx := context.Background()
	repo := &MockRepositoryManager{}
	users := &MockUsers{}
	user := verifiedUser(t, "secret-password")

	issued := time.Now().Add(-time.Hour)
	changed := time.Now().Add(-time.Minute)
	user.PasswordChangedAt = &changed

	repo.On("Users").Return(users)
	users.On("GetByUUID", mock.Anything, user.ID).Return(user, nil).Once()

	claims := &landmark.JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			IssuedAt:  jwt.NewNumericDate(issued),
			ExpiresAt: jwt.NewNumericDate(issued.Add(24 * time.Hour)),
		},
		UID: user.ID.String(),
	}

	auther := landmark.NewAuthenticator(repo, newTestTokenService()).WithLogger(testLogger{})

	_, err := auther.UserFromClaims(ctx, claims)
	require.Error(t, err)
	assert.ErrorIs(t, err, landmark.ErrStaleSession)
}

type recordingLogger struct {
	entries []string
}

func (l *recordingLogger) Debug(format string, args ...any) { l.record(format, args...) }
func (l *recordingLogger) Info(format string, args ...any)  { l.record(format, args...) }
func (l *recordingLogger) Warn(format string, args ...any)  { l.record(format, args...) }
func (l *recordingLogger) Error(format string, args ...any) { l.record(format, args...) }

func (l *recordingLogger) record(format string, args ...any) {
	l.entries = append(l.entries, fmt.Sprintf(format, args...))
}

func TestLoginLookupFailureLogsCause(t *testing.T) {
	ctx := context.Background()
	repo := &MockRepositoryManager{}
	users := &MockUsers{}

	repo.On("Users").Return(users)
	users.On("GetByEmail", mock.Anything, "user@example.com").
		Return(nil, errors.New("connection refused")).Once()

	logger := &recordingLogger{}
	auther := landmark.NewAuthenticator(repo, newTestTokenService()).WithLogger(logger)

	_, _, err := auther.Login(ctx, "user@example.com", "secret-password")
	require.Error(t, err)

	require.NotEmpty(t, logger.entries)
	assert.Contains(t, logger.entries[0], "connection refused")
	// A format string and its arguments out of step would leave fmt error
	// markers in the output.
	assert.NotContains(t, logger.entries[0], "%!")
}
