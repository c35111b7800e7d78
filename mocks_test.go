package landmark_test

import (
	"context"
	"database/sql"
	"time"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/uptrace/bun"

	landmark "github.com/nurlan1717/landmark-backend"
)

// MockUsers implements landmark.Users. The embedded interface covers the
// generic repository surface; only the methods tests stub are overridden, a
// call to anything else panics loudly.
type MockUsers struct {
	landmark.Users
	mock.Mock
}

func userArg(args mock.Arguments, i int) *landmark.User {
	if u, ok := args.Get(i).(*landmark.User); ok {
		return u
	}
	return nil
}

func (m *MockUsers) Register(ctx context.Context, user *landmark.User) (*landmark.User, error) {
	args := m.Called(ctx, user)
	return userArg(args, 0), args.Error(1)
}

func (m *MockUsers) RegisterTx(ctx context.Context, tx bun.IDB, user *landmark.User) (*landmark.User, error) {
	args := m.Called(ctx, tx, user)
	return userArg(args, 0), args.Error(1)
}

func (m *MockUsers) GetByEmail(ctx context.Context, email string, criteria ...repository.SelectCriteria) (*landmark.User, error) {
	args := m.Called(ctx, email)
	return userArg(args, 0), args.Error(1)
}

func (m *MockUsers) GetByUUID(ctx context.Context, id uuid.UUID, criteria ...repository.SelectCriteria) (*landmark.User, error) {
	args := m.Called(ctx, id)
	return userArg(args, 0), args.Error(1)
}

func (m *MockUsers) GetByVerificationToken(ctx context.Context, tokenHash string) (*landmark.User, error) {
	args := m.Called(ctx, tokenHash)
	return userArg(args, 0), args.Error(1)
}

func (m *MockUsers) GetByResetToken(ctx context.Context, tokenHash string) (*landmark.User, error) {
	args := m.Called(ctx, tokenHash)
	return userArg(args, 0), args.Error(1)
}

func (m *MockUsers) SetPassword(ctx context.Context, id uuid.UUID, passwordHash string, changedAt time.Time) (*landmark.User, error) {
	args := m.Called(ctx, id, passwordHash, changedAt)
	return userArg(args, 0), args.Error(1)
}

func (m *MockUsers) SetVerificationToken(ctx context.Context, id uuid.UUID, tokenHash string, expiresAt time.Time) (*landmark.User, error) {
	args := m.Called(ctx, id, tokenHash, expiresAt)
	return userArg(args, 0), args.Error(1)
}

func (m *MockUsers) ClearVerificationToken(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockUsers) MarkEmailVerified(ctx context.Context, id uuid.UUID) (*landmark.User, error) {
	args := m.Called(ctx, id)
	return userArg(args, 0), args.Error(1)
}

func (m *MockUsers) SetResetToken(ctx context.Context, id uuid.UUID, tokenHash string, expiresAt time.Time) (*landmark.User, error) {
	args := m.Called(ctx, id, tokenHash, expiresAt)
	return userArg(args, 0), args.Error(1)
}

func (m *MockUsers) ClearResetToken(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockUsers) Deactivate(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockUsers) Update(ctx context.Context, record *landmark.User, criteria ...repository.UpdateCriteria) (*landmark.User, error) {
	args := m.Called(ctx, record)
	return userArg(args, 0), args.Error(1)
}

func (m *MockUsers) ListAll(ctx context.Context, criteria ...repository.SelectCriteria) ([]*landmark.User, error) {
	args := m.Called(ctx, criteria)
	if users, ok := args.Get(0).([]*landmark.User); ok {
		return users, args.Error(1)
	}
	return nil, args.Error(1)
}

// MockProducts implements landmark.Products.
type MockProducts struct {
	landmark.Products
	mock.Mock
}

func productArg(args mock.Arguments, i int) *landmark.Product {
	if p, ok := args.Get(i).(*landmark.Product); ok {
		return p
	}
	return nil
}

func (m *MockProducts) GetByUUID(ctx context.Context, id uuid.UUID) (*landmark.Product, error) {
	args := m.Called(ctx, id)
	return productArg(args, 0), args.Error(1)
}

func (m *MockProducts) Find(ctx context.Context, query landmark.ProductListQuery) ([]*landmark.Product, error) {
	args := m.Called(ctx, query)
	if records, ok := args.Get(0).([]*landmark.Product); ok {
		return records, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockProducts) Create(ctx context.Context, record *landmark.Product, criteria ...repository.InsertCriteria) (*landmark.Product, error) {
	args := m.Called(ctx, record)
	return productArg(args, 0), args.Error(1)
}

func (m *MockProducts) Save(ctx context.Context, record *landmark.Product) (*landmark.Product, error) {
	args := m.Called(ctx, record)
	return productArg(args, 0), args.Error(1)
}

func (m *MockProducts) DeleteByUUID(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockBaskets implements landmark.Baskets.
type MockBaskets struct {
	landmark.Baskets
	mock.Mock
}

func basketArg(args mock.Arguments, i int) *landmark.Basket {
	if b, ok := args.Get(i).(*landmark.Basket); ok {
		return b
	}
	return nil
}

func (m *MockBaskets) GetOrCreateForUser(ctx context.Context, userID uuid.UUID) (*landmark.Basket, error) {
	args := m.Called(ctx, userID)
	return basketArg(args, 0), args.Error(1)
}

func (m *MockBaskets) AddItem(ctx context.Context, userID, productID uuid.UUID, quantity int) (*landmark.Basket, error) {
	args := m.Called(ctx, userID, productID, quantity)
	return basketArg(args, 0), args.Error(1)
}

func (m *MockBaskets) UpdateItemQuantity(ctx context.Context, userID, productID uuid.UUID, quantity int) (*landmark.Basket, error) {
	args := m.Called(ctx, userID, productID, quantity)
	return basketArg(args, 0), args.Error(1)
}

func (m *MockBaskets) RemoveItem(ctx context.Context, userID, productID uuid.UUID) (*landmark.Basket, error) {
	args := m.Called(ctx, userID, productID)
	return basketArg(args, 0), args.Error(1)
}

func (m *MockBaskets) Clear(ctx context.Context, userID uuid.UUID) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

// MockRepositoryManager implements landmark.RepositoryManager
type MockRepositoryManager struct {
	mock.Mock
}

func (m *MockRepositoryManager) Validate() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockRepositoryManager) MustValidate() {
	m.Called()
}

func (m *MockRepositoryManager) RunInTx(ctx context.Context, opts *sql.TxOptions, f func(ctx context.Context, tx bun.Tx) error) error {
	args := m.Called(ctx, opts, f)
	return args.Error(0)
}

func (m *MockRepositoryManager) Users() landmark.Users {
	args := m.Called()
	return args.Get(0).(landmark.Users)
}

func (m *MockRepositoryManager) Products() landmark.Products {
	args := m.Called()
	return args.Get(0).(landmark.Products)
}

func (m *MockRepositoryManager) Baskets() landmark.Baskets {
	args := m.Called()
	return args.Get(0).(landmark.Baskets)
}

// MockMailer implements landmark.Mailer
type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) Send(ctx context.Context, email landmark.Email) error {
	args := m.Called(ctx, email)
	return args.Error(0)
}

// MockTokenService implements landmark.TokenService
type MockTokenService struct {
	mock.Mock
}

func (m *MockTokenService) Generate(user *landmark.User) (string, error) {
	args := m.Called(user)
	return args.String(0), args.Error(1)
}

func (m *MockTokenService) SignClaims(claims *landmark.JWTClaims) (string, error) {
	args := m.Called(claims)
	return args.String(0), args.Error(1)
}

func (m *MockTokenService) Validate(tokenString string) (landmark.AuthClaims, error) {
	args := m.Called(tokenString)
	if claims, ok := args.Get(0).(landmark.AuthClaims); ok {
		return claims, args.Error(1)
	}
	return nil, args.Error(1)
}

func testConfig() *landmark.AppConfig {
	return &landmark.AppConfig{
		ServerAddress:        ":0",
		SigningKey:           "test-signing-key-of-sufficient-length",
		TokenExpiration:      24,
		Issuer:               "test-issuer",
		ContextKey:           "user",
		CookieName:           "jwt",
		BcryptCost:           4,
		ResetTokenTTL:        10 * time.Minute,
		VerificationTokenTTL: 24 * time.Hour,
		Debug:                true,
	}
}

type testLogger struct{}

func (testLogger) Debug(string, ...any) {}
func (testLogger) Info(string, ...any)  {}
func (testLogger) Warn(string, ...any)  {}
func (testLogger) Error(string, ...any) {}
