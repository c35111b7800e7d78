package landmark_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	landmark "github.com/nurlan1717/landmark-backend"
)

func TestNormalizeEmail(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"User@Example.COM", "user@example.com"},
		{"  padded@example.com  ", "padded@example.com"},
		{"already@example.com", "already@example.com"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, landmark.NormalizeEmail(tt.input))
	}

	user := &landmark.User{Email: " Mixed@Case.Org "}
	user.NormalizeEmail()
	assert.Equal(t, "mixed@case.org", user.Email)
}

func TestPasswordChangedAfter(t *testing.T) {
	issued := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		changedAt *time.Time
		want      bool
	}{
		{"never changed", nil, false},
		{"changed before issuance", timePtr(issued.Add(-time.Hour)), false},
		{"changed after issuance", timePtr(issued.Add(time.Hour)), true},
		{"changed same second, later nanos", timePtr(issued.Add(500 * time.Millisecond)), false},
		{"changed one second later", timePtr(issued.Add(time.Second)), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user := &landmark.User{PasswordChangedAt: tt.changedAt}
			assert.Equal(t, tt.want, user.PasswordChangedAfter(issued))
		})
	}
}

func timePtr(t time.Time) *time.Time { return &t }

func TestBasketMergeItem(t *testing.T) {
	basket := &landmark.Basket{ID: uuid.New()}
	productID := uuid.New()

	first := basket.MergeItem(productID, 2)
	require.Len(t, basket.Items, 1)
	assert.Equal(t, 2, first.Quantity)

	second := basket.MergeItem(productID, 3)
	require.Len(t, basket.Items, 1)
	assert.Same(t, first, second)
	assert.Equal(t, 5, second.Quantity)

	other := basket.MergeItem(uuid.New(), 1)
	require.Len(t, basket.Items, 2)
	assert.Equal(t, 1, other.Quantity)
}

func TestBasketRecalculateTotal(t *testing.T) {
	cheap := &landmark.Product{ID: uuid.New(), Price: 2.5}
	pricey := &landmark.Product{ID: uuid.New(), Price: 100}

	basket := &landmark.Basket{
		Items: []*landmark.BasketItem{
			{ProductID: cheap.ID, Product: cheap, Quantity: 4},
			{ProductID: pricey.ID, Product: pricey, Quantity: 1},
			{ProductID: uuid.New(), Quantity: 7}, // product not loaded
		},
	}

	basket.RecalculateTotal()
	assert.InDelta(t, 110.0, basket.TotalPrice, 0.0001)
}

func TestBasketFindItem(t *testing.T) {
	productID := uuid.New()
	basket := &landmark.Basket{
		Items: []*landmark.BasketItem{
			{ProductID: productID, Quantity: 1},
		},
	}

	require.NotNil(t, basket.FindItem(productID))
	assert.Nil(t, basket.FindItem(uuid.New()))
}

func TestUserClearTokenHelpers(t *testing.T) {
	now := time.Now()
	user := &landmark.User{
		VerificationTokenHash: "abc",
		VerificationExpiresAt: &now,
		ResetTokenHash:        "def",
		ResetExpiresAt:        &now,
	}

	user.ClearVerificationToken()
	assert.Empty(t, user.VerificationTokenHash)
	assert.Nil(t, user.VerificationExpiresAt)

	user.ClearResetToken()
	assert.Empty(t, user.ResetTokenHash)
	assert.Nil(t, user.ResetExpiresAt)
}
