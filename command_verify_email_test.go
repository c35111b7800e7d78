package landmark_test

import (
	"context"
	"testing"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	landmark "github.com/nurlan1717/landmark-backend"
)

func TestVerifyEmailSuccess(t *testing.T) {
	ctx := context.Background()
	repo := &MockRepositoryManager{}
	users := &MockUsers{}

	plaintext := "aaaabbbbccccddddeeeeffff0000111122223333444455556666777788889999"
	user := &landmark.User{ID: uuid.New(), Email: "shopper@example.com"}
	verified := &landmark.User{ID: user.ID, Email: user.Email, EmailVerified: true}

	repo.On("Users").Return(users)
	// The lookup happens on the hash, never the plaintext.
	users.On("GetByVerificationToken", mock.Anything, landmark.HashOneTimeToken(plaintext)).
		Return(user, nil).Once()
	users.On("MarkEmailVerified", mock.Anything, user.ID).
		Return(verified, nil).Once()

	handler := landmark.NewVerifyEmailHandler(repo).WithLogger(testLogger{})

	got, err := handler.Execute(ctx, landmark.VerifyEmailMessage{Token: plaintext})
	require.NoError(t, err)
	assert.True(t, got.EmailVerified)

	users.AssertExpectations(t)
}

func TestVerifyEmailUnknownOrExpiredToken(t *testing.T) {
	ctx := context.Background()
	repo := &MockRepositoryManager{}
	users := &MockUsers{}

	repo.On("Users").Return(users)
	users.On("GetByVerificationToken", mock.Anything, mock.Anything).
		Return(nil, repository.NewRecordNotFound()).Once()

	handler := landmark.NewVerifyEmailHandler(repo).WithLogger(testLogger{})

	_, err := handler.Execute(ctx, landmark.VerifyEmailMessage{Token: "no-such-token"})
	require.Error(t, err)
	assert.ErrorIs(t, err, landmark.ErrOneTimeTokenInvalid)
}

func TestResendVerificationOverwritesPendingToken(t *testing.T) {
	ctx := context.Background()
	repo := &MockRepositoryManager{}
	users := &MockUsers{}
	mailer := &MockMailer{}

	user := &landmark.User{ID: uuid.New(), Email: "shopper@example.com"}

	repo.On("Users").Return(users)
	users.On("GetByEmail", mock.Anything, "shopper@example.com").Return(user, nil).Once()
	users.On("SetVerificationToken", mock.Anything, user.ID, mock.Anything, mock.Anything).
		Return(user, nil).Once()
	mailer.On("Send", mock.Anything, mock.Anything).Return(nil).Once()

	handler := landmark.NewResendVerificationHandler(repo, mailer, testConfig()).WithLogger(testLogger{})

	err := handler.Execute(ctx, landmark.ResendVerificationMessage{
		Email:         "shopper@example.com",
		VerifyURLBase: "http://localhost:3000/api/users/verify-email",
	})
	require.NoError(t, err)

	users.AssertExpectations(t)
	mailer.AssertExpectations(t)
}

func TestResendVerificationRejectsVerifiedUser(t *testing.T) {
	ctx := context.Background()
	repo := &MockRepositoryManager{}
	users := &MockUsers{}
	mailer := &MockMailer{}

	user := &landmark.User{ID: uuid.New(), Email: "shopper@example.com", EmailVerified: true}

	repo.On("Users").Return(users)
	users.On("GetByEmail", mock.Anything, "shopper@example.com").Return(user, nil).Once()

	handler := landmark.NewResendVerificationHandler(repo, mailer, testConfig()).WithLogger(testLogger{})

	err := handler.Execute(ctx, landmark.ResendVerificationMessage{Email: "shopper@example.com"})
	require.Error(t, err)
	mailer.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
}
