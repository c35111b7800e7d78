package landmark

import (
	"context"
	"fmt"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

type InitializePasswordResetMessage struct {
	Email string `json:"email"`
	// ResetURLBase is the absolute prefix the plaintext token is appended
	// to when building the emailed reset link.
	ResetURLBase string `json:"-"`
}

func (p InitializePasswordResetMessage) Type() string { return "user.password_reset" }

type InitializePasswordResetHandler struct {
	repo   RepositoryManager
	mailer Mailer
	cfg    Config
	logger Logger
}

func NewInitializePasswordResetHandler(repo RepositoryManager, mailer Mailer, cfg Config) *InitializePasswordResetHandler {
	return &InitializePasswordResetHandler{
		repo:   repo,
		mailer: mailer,
		cfg:    cfg,
		logger: defLogger{},
	}
}

func (h *InitializePasswordResetHandler) WithLogger(logger Logger) *InitializePasswordResetHandler {
	h.logger = logger
	return h
}

func (h *InitializePasswordResetHandler) Execute(ctx context.Context, event InitializePasswordResetMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during password reset initialization",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *InitializePasswordResetHandler) execute(ctx context.Context, event InitializePasswordResetMessage) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	user, err := h.repo.Users().GetByEmail(ctx, event.Email)
	if err != nil {
		if IsNotFound(err) {
			return goerrors.New("there is no user with the provided email", goerrors.CategoryNotFound).
				WithCode(goerrors.CodeNotFound)
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve user for password reset")
	}

	token, err := MintOneTimeToken(h.cfg.GetResetTokenTTL())
	if err != nil {
		return err
	}

	if _, err := h.repo.Users().SetResetToken(ctx, user.ID, token.Hash, token.ExpiresAt); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to persist reset token")
	}

	link := fmt.Sprintf("%s/%s", event.ResetURLBase, token.Plaintext)
	err = h.mailer.Send(ctx, Email{
		To:      user.Email,
		Subject: "Password Reset Token",
		Message: fmt.Sprintf("Forgot your password? Link: %s\nIf you didn't request this, ignore this email.", link),
	})

	if err != nil {
		// The account stays untouched apart from dropping the token.
		if clearErr := h.repo.Users().ClearResetToken(ctx, user.ID); clearErr != nil {
			h.logger.Error("failed to clear reset token after delivery failure: %v", clearErr)
		}
		return err
	}

	return nil
}
