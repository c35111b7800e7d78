package landmark

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
)

type UpdatePasswordMessage struct {
	UserID          uuid.UUID `json:"-"`
	CurrentPassword string    `json:"password_current"`
	Password        string    `json:"password"`
}

func (p UpdatePasswordMessage) Type() string { return "user.password_update" }

// UpdatePasswordHandler changes the password of an authenticated user after
// re-verifying the current one.
type UpdatePasswordHandler struct {
	repo   RepositoryManager
	cfg    Config
	logger Logger
	now    func() time.Time
}

func NewUpdatePasswordHandler(repo RepositoryManager, cfg Config) *UpdatePasswordHandler {
	return &UpdatePasswordHandler{
		repo:   repo,
		cfg:    cfg,
		logger: defLogger{},
		now:    time.Now,
	}
}

func (h *UpdatePasswordHandler) WithLogger(logger Logger) *UpdatePasswordHandler {
	h.logger = logger
	return h
}

// WithClock injects a custom clock (useful for tests).
func (h *UpdatePasswordHandler) WithClock(clock func() time.Time) *UpdatePasswordHandler {
	if clock != nil {
		h.now = clock
	}
	return h
}

func (h *UpdatePasswordHandler) Execute(ctx context.Context, event UpdatePasswordMessage) (*User, error) {
	select {
	case <-ctx.Done():
		return nil, goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during password update",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *UpdatePasswordHandler) execute(ctx context.Context, event UpdatePasswordMessage) (*User, error) {
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	user, err := h.repo.Users().GetByUUID(ctx, event.UserID)
	if err != nil {
		if IsNotFound(err) {
			return nil, ErrUserGone
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve user for password update")
	}

	if err := ComparePasswordAndHash(event.CurrentPassword, user.PasswordHash); err != nil {
		if goerrors.Is(err, ErrMismatchedHashAndPassword) {
			return nil, goerrors.New("current password is wrong", goerrors.CategoryAuth).
				WithCode(goerrors.CodeUnauthorized)
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to verify current password")
	}

	hash, err := HashPassword(event.Password, h.cfg.GetBcryptCost())
	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return nil, goerrors.Wrap(richErr, goerrors.CategoryValidation, "invalid password provided")
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to hash password")
	}

	changedAt := h.now().Add(-time.Second)

	user, err = h.repo.Users().SetPassword(ctx, user.ID, hash, changedAt)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to update password")
	}

	return user, nil
}
