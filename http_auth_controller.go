package landmark

import (
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/gofiber/fiber/v2"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
)

// AuthController owns the account lifecycle routes: signup, verification,
// login, password recovery, and the self-service profile endpoints.
type AuthController struct {
	Repo   RepositoryManager
	Auther Authenticator
	Tokens TokenService
	Guard  *RouteGuard
	Logger Logger

	register *RegisterUserHandler
	verify   *VerifyEmailHandler
	resend   *ResendVerificationHandler
	forgot   *InitializePasswordResetHandler
	reset    *FinalizePasswordResetHandler
	pwchange *UpdatePasswordHandler

	cfg Config
}

func NewAuthController(repo RepositoryManager, auther Authenticator, tokens TokenService, guard *RouteGuard, mailer Mailer, cfg Config, logger Logger) *AuthController {
	if logger == nil {
		logger = defLogger{}
	}

	return &AuthController{
		Repo:     repo,
		Auther:   auther,
		Tokens:   tokens,
		Guard:    guard,
		Logger:   logger,
		cfg:      cfg,
		register: NewRegisterUserHandler(repo, mailer, cfg).WithLogger(logger),
		verify:   NewVerifyEmailHandler(repo).WithLogger(logger),
		resend:   NewResendVerificationHandler(repo, mailer, cfg).WithLogger(logger),
		forgot:   NewInitializePasswordResetHandler(repo, mailer, cfg).WithLogger(logger),
		reset:    NewFinalizePasswordResetHandler(repo, cfg).WithLogger(logger),
		pwchange: NewUpdatePasswordHandler(repo, cfg).WithLogger(logger),
	}
}

// SignupRequest payload
type SignupRequest struct {
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"password_confirm"`
}

// Validate will run validation rules
func (r SignupRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.FirstName, validation.Required),
		validation.Field(&r.LastName, validation.Required),
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Password, validation.Required, validation.Length(8, 72)),
		validation.Field(&r.PasswordConfirm,
			validation.Required,
			validation.In(r.Password).Error("passwords do not match"),
		),
	)
}

func (a *AuthController) Signup(c *fiber.Ctx) error {
	payload := new(SignupRequest)
	if err := c.BodyParser(payload); err != nil {
		return NewValidationError(err)
	}
	if err := payload.Validate(); err != nil {
		return NewValidationError(err)
	}

	user, err := a.register.Execute(c.UserContext(), RegisterUserMessage{
		FirstName:     payload.FirstName,
		LastName:      payload.LastName,
		Email:         payload.Email,
		Password:      payload.Password,
		VerifyURLBase: fmt.Sprintf("%s/api/users/verify-email", c.BaseURL()),
	})
	if err != nil {
		return err
	}

	return respond(c, fiber.StatusCreated, SuccessEnvelope{
		Data:    user,
		Message: "verification email sent",
	})
}

func (a *AuthController) VerifyEmail(c *fiber.Ctx) error {
	user, err := a.verify.Execute(c.UserContext(), VerifyEmailMessage{
		Token: c.Params("token"),
	})
	if err != nil {
		return err
	}

	// A freshly verified user may proceed without logging in again.
	token, err := a.Tokens.Generate(user)
	if err != nil {
		return err
	}

	a.Guard.SetSessionCookie(c, token)
	return RespondToken(c, fiber.StatusOK, token, user)
}

// EmailRequest payload for the endpoints keyed only on an email address.
type EmailRequest struct {
	Email string `json:"email"`
}

// Validate will run validation rules
func (r EmailRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
	)
}

func (a *AuthController) ResendVerification(c *fiber.Ctx) error {
	payload := new(EmailRequest)
	if err := c.BodyParser(payload); err != nil {
		return NewValidationError(err)
	}
	if err := payload.Validate(); err != nil {
		return NewValidationError(err)
	}

	err := a.resend.Execute(c.UserContext(), ResendVerificationMessage{
		Email:         payload.Email,
		VerifyURLBase: fmt.Sprintf("%s/api/users/verify-email", c.BaseURL()),
	})
	if err != nil {
		return err
	}

	return RespondMessage(c, fiber.StatusOK, "verification email sent")
}

// LoginRequest payload
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate will run validation rules
func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Password, validation.Required),
	)
}

func (a *AuthController) Login(c *fiber.Ctx) error {
	payload := new(LoginRequest)
	if err := c.BodyParser(payload); err != nil {
		return NewValidationError(err)
	}
	if err := payload.Validate(); err != nil {
		return NewValidationError(err)
	}

	token, user, err := a.Auther.Login(c.UserContext(), payload.Email, payload.Password)
	if err != nil {
		return err
	}

	a.Guard.SetSessionCookie(c, token)
	return RespondToken(c, fiber.StatusOK, token, user)
}

func (a *AuthController) ForgotPassword(c *fiber.Ctx) error {
	payload := new(EmailRequest)
	if err := c.BodyParser(payload); err != nil {
		return NewValidationError(err)
	}
	if err := payload.Validate(); err != nil {
		return NewValidationError(err)
	}

	err := a.forgot.Execute(c.UserContext(), InitializePasswordResetMessage{
		Email:        payload.Email,
		ResetURLBase: fmt.Sprintf("%s/api/users/reset-password", c.BaseURL()),
	})
	if err != nil {
		return err
	}

	return RespondMessage(c, fiber.StatusOK, "token sent to email")
}

// PasswordRequest payload for setting a new password.
type PasswordRequest struct {
	Password        string `json:"password"`
	PasswordConfirm string `json:"password_confirm"`
}

// Validate will run validation rules
func (r PasswordRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Password, validation.Required, validation.Length(8, 72)),
		validation.Field(&r.PasswordConfirm,
			validation.Required,
			validation.In(r.Password).Error("passwords do not match"),
		),
	)
}

func (a *AuthController) ResetPassword(c *fiber.Ctx) error {
	payload := new(PasswordRequest)
	if err := c.BodyParser(payload); err != nil {
		return NewValidationError(err)
	}
	if err := payload.Validate(); err != nil {
		return NewValidationError(err)
	}

	user, err := a.reset.Execute(c.UserContext(), FinalizePasswordResetMessage{
		Token:    c.Params("token"),
		Password: payload.Password,
	})
	if err != nil {
		return err
	}

	token, err := a.Tokens.Generate(user)
	if err != nil {
		return err
	}

	a.Guard.SetSessionCookie(c, token)
	return RespondToken(c, fiber.StatusOK, token, user)
}

// UpdatePasswordRequest payload
type UpdatePasswordRequest struct {
	PasswordCurrent string `json:"password_current"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"password_confirm"`
}

// Validate will run validation rules
func (r UpdatePasswordRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.PasswordCurrent, validation.Required),
		validation.Field(&r.Password, validation.Required, validation.Length(8, 72)),
		validation.Field(&r.PasswordConfirm,
			validation.Required,
			validation.In(r.Password).Error("passwords do not match"),
		),
	)
}

func (a *AuthController) UpdatePassword(c *fiber.Ctx) error {
	user, err := CurrentUser(c, a.cfg.GetContextKey())
	if err != nil {
		return err
	}

	payload := new(UpdatePasswordRequest)
	if err := c.BodyParser(payload); err != nil {
		return NewValidationError(err)
	}
	if err := payload.Validate(); err != nil {
		return NewValidationError(err)
	}

	updated, err := a.pwchange.Execute(c.UserContext(), UpdatePasswordMessage{
		UserID:          user.ID,
		CurrentPassword: payload.PasswordCurrent,
		Password:        payload.Password,
	})
	if err != nil {
		return err
	}

	token, err := a.Tokens.Generate(updated)
	if err != nil {
		return err
	}

	a.Guard.SetSessionCookie(c, token)
	return RespondToken(c, fiber.StatusOK, token, updated)
}

// UpdateMeRequest payload. Password changes have their own endpoint; a
// password field here is rejected outright.
type UpdateMeRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

// Validate will run validation rules
func (r UpdateMeRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, is.Email),
		validation.Field(&r.Password,
			validation.In("").Error("this route is not for password updates, use /update-password"),
		),
	)
}

func (a *AuthController) UpdateMe(c *fiber.Ctx) error {
	user, err := CurrentUser(c, a.cfg.GetContextKey())
	if err != nil {
		return err
	}

	payload := new(UpdateMeRequest)
	if err := c.BodyParser(payload); err != nil {
		return NewValidationError(err)
	}
	if err := payload.Validate(); err != nil {
		return NewValidationError(err)
	}

	if payload.FirstName != "" {
		user.FirstName = payload.FirstName
	}
	if payload.LastName != "" {
		user.LastName = payload.LastName
	}
	if payload.Email != "" {
		user.Email = payload.Email
		user.NormalizeEmail()
	}

	updated, err := a.Repo.Users().Update(c.UserContext(), user, repository.UpdateByID(user.ID.String()))
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to update profile")
	}

	return RespondData(c, fiber.StatusOK, updated)
}

func (a *AuthController) DeleteMe(c *fiber.Ctx) error {
	user, err := CurrentUser(c, a.cfg.GetContextKey())
	if err != nil {
		return err
	}

	if err := a.Repo.Users().Deactivate(c.UserContext(), user.ID); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to deactivate account")
	}

	a.Guard.ClearSessionCookie(c)
	return c.SendStatus(fiber.StatusNoContent)
}

// Me returns the authenticated user's own record.
func (a *AuthController) Me(c *fiber.Ctx) error {
	user, err := CurrentUser(c, a.cfg.GetContextKey())
	if err != nil {
		return err
	}
	return RespondData(c, fiber.StatusOK, user)
}
