package landmark_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	landmark "github.com/nurlan1717/landmark-backend"
)

func TestUpdatePasswordSuccess(t *testing.T) {
	ctx := context.Background()
	repo := &MockRepositoryManager{}
	users := &MockUsers{}

	hash, err := landmark.HashPassword("current-password", 4)
	require.NoError(t, err)

	user := &landmark.User{ID: uuid.New(), PasswordHash: hash}
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	repo.On("Users").Return(users)
	users.On("GetByUUID", mock.Anything, user.ID).Return(user, nil).Once()
	users.On("SetPassword", mock.Anything, user.ID, mock.Anything, now.Add(-time.Second)).
		Run(func(args mock.Arguments) {
			require.NoError(t, landmark.ComparePasswordAndHash("brand-new-password", args.String(2)))
		}).
		Return(user, nil).Once()

	handler := landmark.NewUpdatePasswordHandler(repo, testConfig()).
		WithLogger(testLogger{}).
		WithClock(func() time.Time { return now })

	_, err = handler.Execute(ctx, landmark.UpdatePasswordMessage{
		UserID:          user.ID,
		CurrentPassword: "current-password",
		Password:        "brand-new-password",
	})
	require.NoError(t, err)

	users.AssertExpectations(t)
}

func TestUpdatePasswordWrongCurrentPassword(t *testing.T) {
	ctx := context.Background()
	repo := &MockRepositoryManager{}
	users := &MockUsers{}

	hash, err := landmark.HashPassword("current-password", 4)
	require.NoError(t, err)

	user := &landmark.User{ID: uuid.New(), PasswordHash: hash}

	repo.On("Users").Return(users)
	users.On("GetByUUID", mock.Anything, user.ID).Return(user, nil).Once()

	handler := landmark.NewUpdatePasswordHandler(repo, testConfig()).WithLogger(testLogger{})

	_, err = handler.Execute(ctx, landmark.UpdatePasswordMessage{
		UserID:          user.ID,
		CurrentPassword: "not-the-current-password",
		Password:        "brand-new-password",
	})
	require.Error(t, err)
	users.AssertNotCalled(t, "SetPassword", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	assert.NotErrorIs(t, err, landmark.ErrMismatchedHashAndPassword)
}
