package landmark

import (
	"context"
	"time"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// SetUserPasswordSQL updates the credential in one statement so the hash,
// the changed-at stamp, and the reset token cleanup land atomically.
var SetUserPasswordSQL = `UPDATE "users" AS "usr"
SET
	"password_hash" = ?,
	"password_changed_at" = ?,
	"reset_token_hash" = NULL,
	"reset_expires_at" = NULL
WHERE
	"usr"."deleted_at" IS NULL
AND (
	"usr"."id" = ?
) RETURNING *;`

var setVerificationTokenSQL = `UPDATE "users" AS "usr"
SET
	"verification_token_hash" = ?,
	"verification_expires_at" = ?
WHERE
	"usr"."deleted_at" IS NULL
AND (
	"usr"."id" = ?
) RETURNING *;`

var clearVerificationTokenSQL = `UPDATE "users" AS "usr"
SET
	"verification_token_hash" = NULL,
	"verification_expires_at" = NULL
WHERE
	"usr"."deleted_at" IS NULL
AND (
	"usr"."id" = ?
) RETURNING *;`

var markEmailVerifiedSQL = `UPDATE "users" AS "usr"
SET
	"is_email_verified" = TRUE,
	"verification_token_hash" = NULL,
	"verification_expires_at" = NULL
WHERE
	"usr"."deleted_at" IS NULL
AND (
	"usr"."id" = ?
) RETURNING *;`

var setResetTokenSQL = `UPDATE "users" AS "usr"
SET
	"reset_token_hash" = ?,
	"reset_expires_at" = ?
WHERE
	"usr"."deleted_at" IS NULL
AND (
	"usr"."id" = ?
) RETURNING *;`

var clearResetTokenSQL = `UPDATE "users" AS "usr"
SET
	"reset_token_hash" = NULL,
	"reset_expires_at" = NULL
WHERE
	"usr"."deleted_at" IS NULL
AND (
	"usr"."id" = ?
) RETURNING *;`

// Users is the credential store. Deactivated accounts are excluded from every
// lookup unless the IncludeDeactivated criteria is applied explicitly.
type Users interface {
	repository.Repository[*User]

	Register(ctx context.Context, user *User) (*User, error)
	RegisterTx(ctx context.Context, tx bun.IDB, user *User) (*User, error)

	GetByEmail(ctx context.Context, email string, criteria ...repository.SelectCriteria) (*User, error)
	GetByEmailTx(ctx context.Context, tx bun.IDB, email string, criteria ...repository.SelectCriteria) (*User, error)
	GetByUUID(ctx context.Context, id uuid.UUID, criteria ...repository.SelectCriteria) (*User, error)
	GetByVerificationToken(ctx context.Context, tokenHash string) (*User, error)
	GetByResetToken(ctx context.Context, tokenHash string) (*User, error)

	SetPassword(ctx context.Context, id uuid.UUID, passwordHash string, changedAt time.Time) (*User, error)
	SetPasswordTx(ctx context.Context, tx bun.IDB, id uuid.UUID, passwordHash string, changedAt time.Time) (*User, error)

	SetVerificationToken(ctx context.Context, id uuid.UUID, tokenHash string, expiresAt time.Time) (*User, error)
	ClearVerificationToken(ctx context.Context, id uuid.UUID) error
	MarkEmailVerified(ctx context.Context, id uuid.UUID) (*User, error)
	SetResetToken(ctx context.Context, id uuid.UUID, tokenHash string, expiresAt time.Time) (*User, error)
	ClearResetToken(ctx context.Context, id uuid.UUID) error

	Deactivate(ctx context.Context, id uuid.UUID) error

	ListAll(ctx context.Context, criteria ...repository.SelectCriteria) ([]*User, error)
}

type users struct {
	repository.Repository[*User]
	db *bun.DB
}

var (
	_ Users                        = (*users)(nil)
	_ repository.Repository[*User] = (*users)(nil)
)

func NewUsersRepository(db *bun.DB) Users {
	repo := repository.NewRepository[*User](db, repository.ModelHandlers[*User]{
		NewRecord: func() *User { return &User{} },
		GetID: func(u *User) uuid.UUID {
			if u == nil {
				return uuid.Nil
			}
			return u.ID
		},
		SetID: func(u *User, id uuid.UUID) {
			if u != nil {
				u.ID = id
			}
		},
		GetIdentifier: func() string {
			return "email"
		},
	})

	return &users{
		Repository: repo,
		db:         db,
	}
}

// IncludeDeactivated reverses the default exclusion of soft-deactivated
// accounts for a single lookup.
func IncludeDeactivated() repository.SelectCriteria {
	return func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.WhereAllWithDeleted()
	}
}

func (a *users) Register(ctx context.Context, user *User) (*User, error) {
	return a.RegisterTx(ctx, a.db, user)
}

func (a *users) RegisterTx(ctx context.Context, tx bun.IDB, user *User) (*User, error) {
	user.NormalizeEmail()
	if user.Role == "" {
		user.Role = RoleUser
	}
	return a.Repository.CreateTx(ctx, tx, user)
}

func (a *users) GetByEmail(ctx context.Context, email string, criteria ...repository.SelectCriteria) (*User, error) {
	return a.GetByEmailTx(ctx, a.db, email, criteria...)
}

func (a *users) GetByEmailTx(ctx context.Context, tx bun.IDB, email string, criteria ...repository.SelectCriteria) (*User, error) {
	record := &User{}
	q := tx.NewSelect().Model(record)

	for _, c := range criteria {
		q.Apply(c)
	}

	err := q.
		Where("?TableAlias.email = ?", NormalizeEmail(email)).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, repository.NewRecordNotFound().
				WithMetadata(map[string]any{"email": NormalizeEmail(email)})
		}
		return nil, err
	}

	return record, nil
}

func (a *users) GetByUUID(ctx context.Context, id uuid.UUID, criteria ...repository.SelectCriteria) (*User, error) {
	record := &User{}
	q := a.db.NewSelect().Model(record)

	for _, c := range criteria {
		q.Apply(c)
	}

	err := q.
		Where("?TableAlias.id = ?", id).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, repository.NewRecordNotFound().
				WithMetadata(map[string]any{"id": id.String()})
		}
		return nil, err
	}

	return record, nil
}

func (a *users) GetByVerificationToken(ctx context.Context, tokenHash string) (*User, error) {
	return a.getByTokenHash(ctx, "verification_token_hash", "verification_expires_at", tokenHash)
}

func (a *users) GetByResetToken(ctx context.Context, tokenHash string) (*User, error) {
	return a.getByTokenHash(ctx, "reset_token_hash", "reset_expires_at", tokenHash)
}

// getByTokenHash resolves a user holding an unexpired one-time token. An
// expired or already cleared token behaves exactly like an unknown one.
func (a *users) getByTokenHash(ctx context.Context, hashColumn, expiryColumn, tokenHash string) (*User, error) {
	record := &User{}

	err := a.db.NewSelect().Model(record).
		Where("?TableAlias."+hashColumn+" = ?", tokenHash).
		Where("?TableAlias."+expiryColumn+" > ?", time.Now()).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, repository.NewRecordNotFound()
		}
		return nil, err
	}

	return record, nil
}

func (a *users) SetPassword(ctx context.Context, id uuid.UUID, passwordHash string, changedAt time.Time) (*User, error) {
	return a.SetPasswordTx(ctx, a.db, id, passwordHash, changedAt)
}

func (a *users) SetPasswordTx(ctx context.Context, tx bun.IDB, id uuid.UUID, passwordHash string, changedAt time.Time) (*User, error) {
	res, err := a.Repository.RawTx(ctx, tx, SetUserPasswordSQL, passwordHash, changedAt, id.String())
	if err != nil {
		return nil, err
	}

	if len(res) == 0 {
		return nil, repository.NewRecordNotFound().
			WithMetadata(map[string]any{"id": id.String()})
	}

	return res[0], nil
}

func (a *users) SetVerificationToken(ctx context.Context, id uuid.UUID, tokenHash string, expiresAt time.Time) (*User, error) {
	return a.execTokenUpdate(ctx, setVerificationTokenSQL, tokenHash, expiresAt, id.String())
}

func (a *users) ClearVerificationToken(ctx context.Context, id uuid.UUID) error {
	_, err := a.execTokenUpdate(ctx, clearVerificationTokenSQL, id.String())
	return err
}

func (a *users) MarkEmailVerified(ctx context.Context, id uuid.UUID) (*User, error) {
	return a.execTokenUpdate(ctx, markEmailVerifiedSQL, id.String())
}

func (a *users) SetResetToken(ctx context.Context, id uuid.UUID, tokenHash string, expiresAt time.Time) (*User, error) {
	return a.execTokenUpdate(ctx, setResetTokenSQL, tokenHash, expiresAt, id.String())
}

func (a *users) ClearResetToken(ctx context.Context, id uuid.UUID) error {
	_, err := a.execTokenUpdate(ctx, clearResetTokenSQL, id.String())
	return err
}

func (a *users) execTokenUpdate(ctx context.Context, query string, args ...any) (*User, error) {
	res, err := a.Repository.Raw(ctx, query, args...)
	if err != nil {
		return nil, err
	}

	if len(res) == 0 {
		return nil, repository.NewRecordNotFound()
	}

	return res[0], nil
}

func (a *users) Deactivate(ctx context.Context, id uuid.UUID) error {
	// The soft delete column makes this invisible to default reads.
	_, err := a.db.NewDelete().
		Model((*User)(nil)).
		Where("?TableAlias.id = ?", id).
		Exec(ctx)
	return err
}

func (a *users) ListAll(ctx context.Context, criteria ...repository.SelectCriteria) ([]*User, error) {
	var records []*User
	q := a.db.NewSelect().Model(&records)

	for _, c := range criteria {
		q.Apply(c)
	}

	if err := q.Order("created_at DESC").Scan(ctx); err != nil {
		return nil, err
	}

	return records, nil
}
