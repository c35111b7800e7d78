package landmark

import (
	"context"
	"fmt"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/uptrace/bun"
)

type RegisterUserMessage struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	// VerifyURLBase is the absolute prefix the plaintext token is appended
	// to when building the emailed verification link.
	VerifyURLBase string `json:"-"`
}

func (e RegisterUserMessage) Type() string { return "user.register" }

type RegisterUserHandler struct {
	repo   RepositoryManager
	mailer Mailer
	cfg    Config
	logger Logger
}

func NewRegisterUserHandler(repo RepositoryManager, mailer Mailer, cfg Config) *RegisterUserHandler {
	return &RegisterUserHandler{
		repo:   repo,
		mailer: mailer,
		cfg:    cfg,
		logger: defLogger{},
	}
}

func (h *RegisterUserHandler) WithLogger(logger Logger) *RegisterUserHandler {
	h.logger = logger
	return h
}

func (h *RegisterUserHandler) Execute(ctx context.Context, event RegisterUserMessage) (*User, error) {
	select {
	case <-ctx.Done():
		return nil, goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during user registration",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *RegisterUserHandler) execute(ctx context.Context, event RegisterUserMessage) (*User, error) {
	user := &User{}
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	token, err := MintOneTimeToken(h.cfg.GetVerificationTokenTTL())
	if err != nil {
		return nil, err
	}

	err = h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		hash, err := HashPassword(event.Password, h.cfg.GetBcryptCost())
		if err != nil {
			var richErr *goerrors.Error
			if goerrors.As(err, &richErr) {
				return goerrors.Wrap(richErr, goerrors.CategoryValidation, "invalid password provided")
			}
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to hash password")
		}

		user.PasswordHash = hash
		user.Email = event.Email
		user.FirstName = event.FirstName
		user.LastName = event.LastName
		user.Role = RoleUser
		user.EmailVerified = false
		user.VerificationTokenHash = token.Hash
		user.VerificationExpiresAt = &token.ExpiresAt

		if user, err = h.repo.Users().RegisterTx(ctx, tx, user); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryConflict, "could not create user").
				WithCode(goerrors.CodeConflict)
		}

		return nil
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return nil, richErr
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "user registration transaction failed")
	}

	if err := h.deliverVerification(ctx, user, token, event.VerifyURLBase); err != nil {
		// No stale token may survive a failed send.
		if clearErr := h.repo.Users().ClearVerificationToken(ctx, user.ID); clearErr != nil {
			h.logger.Error("failed to clear verification token after delivery failure: %v", clearErr)
		}
		return nil, err
	}

	return user, nil
}

func (h *RegisterUserHandler) deliverVerification(ctx context.Context, user *User, token OneTimeToken, urlBase string) error {
	link := fmt.Sprintf("%s/%s", urlBase, token.Plaintext)

	return h.mailer.Send(ctx, Email{
		To:      user.Email,
		Subject: "Verify your email address",
		Message: fmt.Sprintf("Welcome! Please verify your email address by following this link: %s", link),
	})
}
