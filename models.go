package landmark

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// User is the account model. Credential and token fields are kept out of
// JSON responses; soft deletion doubles as account deactivation.
type User struct {
	bun.BaseModel `bun:"table:users,alias:usr"`

	ID        uuid.UUID `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Role      UserRole  `bun:"user_role,notnull" json:"user_role,omitempty"`
	FirstName string    `bun:"first_name,notnull" json:"first_name,omitempty"`
	LastName  string    `bun:"last_name,notnull" json:"last_name,omitempty"`
	Email     string    `bun:"email,notnull,unique" json:"email,omitempty"`

	PasswordHash      string     `bun:"password_hash" json:"-"`
	PasswordChangedAt *time.Time `bun:"password_changed_at,nullzero" json:"-"`

	EmailVerified         bool       `bun:"is_email_verified" json:"is_email_verified"`
	VerificationTokenHash string     `bun:"verification_token_hash,nullzero" json:"-"`
	VerificationExpiresAt *time.Time `bun:"verification_expires_at,nullzero" json:"-"`

	ResetTokenHash string     `bun:"reset_token_hash,nullzero" json:"-"`
	ResetExpiresAt *time.Time `bun:"reset_expires_at,nullzero" json:"-"`

	CreatedAt *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
	DeletedAt *time.Time `bun:"deleted_at,soft_delete,nullzero" json:"-"`
}

// NormalizeEmail lowercases and trims the stored email. Lookups and unique
// checks rely on this happening before every persistence call.
func (u *User) NormalizeEmail() {
	u.Email = NormalizeEmail(u.Email)
}

// Active reports whether the account has not been soft deactivated.
func (u *User) Active() bool {
	return u.DeletedAt == nil
}

// PasswordChangedAfter reports whether the password changed after the given
// token issuance time. Both sides are truncated to whole seconds to tolerate
// the one second granularity of JWT issued-at claims.
func (u *User) PasswordChangedAfter(issuedAt time.Time) bool {
	if u.PasswordChangedAt == nil {
		return false
	}
	return u.PasswordChangedAt.Truncate(time.Second).After(issuedAt.Truncate(time.Second))
}

// ClearVerificationToken drops the pending verification token fields.
func (u *User) ClearVerificationToken() {
	u.VerificationTokenHash = ""
	u.VerificationExpiresAt = nil
}

// ClearResetToken drops the pending password reset token fields.
func (u *User) ClearResetToken() {
	u.ResetTokenHash = ""
	u.ResetExpiresAt = nil
}

// NormalizeEmail is the canonical email form used for storage and lookups.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Product is a catalog entry owned by a seller.
type Product struct {
	bun.BaseModel `bun:"table:products,alias:prd"`

	ID          uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Name        string     `bun:"name,notnull" json:"name"`
	Description string     `bun:"description,notnull" json:"description"`
	Images      []string   `bun:"images,type:json" json:"images"`
	Price       float64    `bun:"price,notnull" json:"price"`
	SellerID    uuid.UUID  `bun:"seller_id,notnull,type:uuid" json:"seller_id"`
	Seller      *User      `bun:"rel:belongs-to,join:seller_id=id" json:"seller,omitempty"`
	CreatedAt   *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt   *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}

// Basket is the per-user shopping basket. One row per user, created lazily
// on first access.
type Basket struct {
	bun.BaseModel `bun:"table:baskets,alias:bsk"`

	ID        uuid.UUID     `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	UserID    uuid.UUID     `bun:"user_id,notnull,unique,type:uuid" json:"user_id"`
	Items     []*BasketItem `bun:"rel:has-many,join:id=basket_id" json:"items"`
	CreatedAt *time.Time    `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt *time.Time    `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`

	// TotalPrice is derived from the loaded items, never stored.
	TotalPrice float64 `bun:"-" json:"total_price"`
}

// BasketItem is a single (product, quantity) line in a basket.
type BasketItem struct {
	bun.BaseModel `bun:"table:basket_items,alias:bit"`

	ID        uuid.UUID `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	BasketID  uuid.UUID `bun:"basket_id,notnull,type:uuid" json:"basket_id"`
	ProductID uuid.UUID `bun:"product_id,notnull,type:uuid" json:"product_id"`
	Product   *Product  `bun:"rel:belongs-to,join:product_id=id" json:"product,omitempty"`
	Quantity  int       `bun:"quantity,notnull" json:"quantity"`
}

// RecalculateTotal recomputes the derived total from the loaded items.
// Items without a loaded product contribute nothing.
func (b *Basket) RecalculateTotal() {
	total := 0.0
	for _, item := range b.Items {
		if item == nil || item.Product == nil {
			continue
		}
		total += item.Product.Price * float64(item.Quantity)
	}
	b.TotalPrice = total
}

// FindItem returns the line for the given product, or nil.
func (b *Basket) FindItem(productID uuid.UUID) *BasketItem {
	for _, item := range b.Items {
		if item != nil && item.ProductID == productID {
			return item
		}
	}
	return nil
}

// MergeItem adds quantity to an existing line for the product or appends a
// new one. Returns the affected line.
func (b *Basket) MergeItem(productID uuid.UUID, quantity int) *BasketItem {
	if item := b.FindItem(productID); item != nil {
		item.Quantity += quantity
		return item
	}
	item := &BasketItem{
		BasketID:  b.ID,
		ProductID: productID,
		Quantity:  quantity,
	}
	b.Items = append(b.Items, item)
	return item
}
