package landmark

import (
	"context"
	"fmt"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

type VerifyEmailMessage struct {
	Token string `json:"token"`
}

func (e VerifyEmailMessage) Type() string { return "user.verify_email" }

type VerifyEmailHandler struct {
	repo   RepositoryManager
	logger Logger
}

func NewVerifyEmailHandler(repo RepositoryManager) *VerifyEmailHandler {
	return &VerifyEmailHandler{
		repo:   repo,
		logger: defLogger{},
	}
}

func (h *VerifyEmailHandler) WithLogger(logger Logger) *VerifyEmailHandler {
	h.logger = logger
	return h
}

func (h *VerifyEmailHandler) Execute(ctx context.Context, event VerifyEmailMessage) (*User, error) {
	select {
	case <-ctx.Done():
		return nil, goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during email verification",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *VerifyEmailHandler) execute(ctx context.Context, event VerifyEmailMessage) (*User, error) {
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	user, err := h.repo.Users().GetByVerificationToken(ctx, HashOneTimeToken(event.Token))
	if err != nil {
		if IsNotFound(err) {
			return nil, ErrOneTimeTokenInvalid
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve verification request")
	}

	// Success clears the token fields, so a second use of the same
	// plaintext resolves to nothing.
	user, err = h.repo.Users().MarkEmailVerified(ctx, user.ID)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to mark email verified")
	}

	return user, nil
}

type ResendVerificationMessage struct {
	Email         string `json:"email"`
	VerifyURLBase string `json:"-"`
}

func (e ResendVerificationMessage) Type() string { return "user.resend_verification" }

type ResendVerificationHandler struct {
	repo   RepositoryManager
	mailer Mailer
	cfg    Config
	logger Logger
}

func NewResendVerificationHandler(repo RepositoryManager, mailer Mailer, cfg Config) *ResendVerificationHandler {
	return &ResendVerificationHandler{
		repo:   repo,
		mailer: mailer,
		cfg:    cfg,
		logger: defLogger{},
	}
}

func (h *ResendVerificationHandler) WithLogger(logger Logger) *ResendVerificationHandler {
	h.logger = logger
	return h
}

func (h *ResendVerificationHandler) Execute(ctx context.Context, event ResendVerificationMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during verification resend",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *ResendVerificationHandler) execute(ctx context.Context, event ResendVerificationMessage) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	user, err := h.repo.Users().GetByEmail(ctx, event.Email)
	if err != nil {
		if IsNotFound(err) {
			return goerrors.New("there is no user with the provided email", goerrors.CategoryNotFound).
				WithCode(goerrors.CodeNotFound)
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve user for verification resend")
	}

	if user.EmailVerified {
		return goerrors.New("email address is already verified", goerrors.CategoryValidation).
			WithCode(goerrors.CodeBadRequest)
	}

	token, err := MintOneTimeToken(h.cfg.GetVerificationTokenTTL())
	if err != nil {
		return err
	}

	// Overwrites any previous pending token.
	if _, err := h.repo.Users().SetVerificationToken(ctx, user.ID, token.Hash, token.ExpiresAt); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to persist verification token")
	}

	link := fmt.Sprintf("%s/%s", event.VerifyURLBase, token.Plaintext)
	err = h.mailer.Send(ctx, Email{
		To:      user.Email,
		Subject: "Verify your email address",
		Message: fmt.Sprintf("Please verify your email address by following this link: %s", link),
	})

	if err != nil {
		if clearErr := h.repo.Users().ClearVerificationToken(ctx, user.ID); clearErr != nil {
			h.logger.Error("failed to clear verification token after delivery failure: %v", clearErr)
		}
		return err
	}

	return nil
}
