package landmark

import (
	"context"

	"github.com/goliatone/go-errors"
)

// Authenticator holds methods to deal with authentication
type Authenticator interface {
	Login(ctx context.Context, email, password string) (string, *User, error)
	SessionFromToken(raw string) (AuthClaims, error)
	UserFromClaims(ctx context.Context, claims AuthClaims) (*User, error)
}

type Auther struct {
	repo         RepositoryManager
	tokenService TokenService
	logger       Logger
}

// NewAuthenticator returns a new Authenticator
func NewAuthenticator(repo RepositoryManager, tokenService TokenService) *Auther {
	return &Auther{
		repo:         repo,
		tokenService: tokenService,
		logger:       defLogger{},
	}
}

func (s *Auther) WithLogger(logger Logger) *Auther {
	s.logger = logger
	return s
}

// Login verifies the credential pair and issues a session token. Unknown
// emails, wrong passwords, and deactivated accounts all surface the same
// uniform error so callers cannot probe which accounts exist.
func (s *Auther) Login(ctx context.Context, email, password string) (string, *User, error) {
	user, err := s.repo.Users().GetByEmail(ctx, email)
	if err != nil {
		if IsNotFound(err) {
			return "", nil, ErrInvalidCredentials
		}
		s.logger.Error("Login lookup error: %v", err)
		return "", nil, errors.Wrap(err, errors.CategoryInternal, "failed to retrieve user during login")
	}

	if err := ComparePasswordAndHash(password, user.PasswordHash); err != nil {
		if errors.Is(err, ErrMismatchedHashAndPassword) {
			return "", nil, ErrInvalidCredentials
		}
		s.logger.Error("Login compare error: %v", err)
		return "", nil, errors.Wrap(err, errors.CategoryInternal, "failed to verify credentials")
	}

	if !user.EmailVerified {
		return "", nil, ErrEmailNotVerified
	}

	token, err := s.tokenService.Generate(user)
	if err != nil {
		s.logger.Error("Login token generation error: %v", err)
		return "", nil, err
	}

	return token, user, nil
}

// SessionFromToken validates a raw token and returns its claims.
func (s *Auther) SessionFromToken(raw string) (AuthClaims, error) {
	claims, err := s.tokenService.Validate(raw)
	if err != nil {
		s.logger.Debug("SessionFromToken validation failed: %v", err)
		return nil, err
	}
	return claims, nil
}

// UserFromClaims resolves the acting identity for validated claims, failing
// closed when the user is gone, deactivated, or changed their password after
// the token was issued.
func (s *Auther) UserFromClaims(ctx context.Context, claims AuthClaims) (*User, error) {
	id, err := claims.UserUUID()
	if err != nil {
		return nil, ErrTokenMalformed
	}

	user, err := s.repo.Users().GetByUUID(ctx, id)
	if err != nil {
		if IsNotFound(err) {
			return nil, ErrUserGone
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to resolve session user")
	}

	if user.PasswordChangedAfter(claims.IssuedAt()) {
		return nil, ErrStaleSession
	}

	return user, nil
}

var _ Authenticator = (*Auther)(nil)
