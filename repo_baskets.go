package landmark

import (
	"context"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Baskets manages per-user baskets. A basket comes into existence on first
// access; item writes happen inside a transaction so the read-merge-write of
// a line lands as one unit.
type Baskets interface {
	repository.Repository[*Basket]

	GetOrCreateForUser(ctx context.Context, userID uuid.UUID) (*Basket, error)
	AddItem(ctx context.Context, userID, productID uuid.UUID, quantity int) (*Basket, error)
	UpdateItemQuantity(ctx context.Context, userID, productID uuid.UUID, quantity int) (*Basket, error)
	RemoveItem(ctx context.Context, userID, productID uuid.UUID) (*Basket, error)
	Clear(ctx context.Context, userID uuid.UUID) error
}

type baskets struct {
	repository.Repository[*Basket]
	db *bun.DB
}

var _ Baskets = (*baskets)(nil)

func NewBasketsRepository(db *bun.DB) Baskets {
	repo := repository.NewRepository[*Basket](db, repository.ModelHandlers[*Basket]{
		NewRecord: func() *Basket { return &Basket{} },
		GetID: func(b *Basket) uuid.UUID {
			if b == nil {
				return uuid.Nil
			}
			return b.ID
		},
		SetID: func(b *Basket, id uuid.UUID) {
			if b != nil {
				b.ID = id
			}
		},
	})

	return &baskets{
		Repository: repo,
		db:         db,
	}
}

func (a *baskets) GetOrCreateForUser(ctx context.Context, userID uuid.UUID) (*Basket, error) {
	basket, err := a.loadForUser(ctx, a.db, userID)
	if err == nil {
		return basket, nil
	}

	if !repository.IsRecordNotFound(err) {
		return nil, err
	}

	created, err := a.Repository.Create(ctx, &Basket{UserID: userID})
	if err != nil {
		return nil, err
	}

	created.Items = []*BasketItem{}
	created.RecalculateTotal()
	return created, nil
}

func (a *baskets) AddItem(ctx context.Context, userID, productID uuid.UUID, quantity int) (*Basket, error) {
	err := a.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		basket, err := a.loadForUser(ctx, tx, userID)
		if err != nil {
			if !repository.IsRecordNotFound(err) {
				return err
			}
			basket, err = a.Repository.CreateTx(ctx, tx, &Basket{UserID: userID})
			if err != nil {
				return err
			}
		}

		if existing := basket.FindItem(productID); existing != nil {
			existing.Quantity += quantity
			_, err = tx.NewUpdate().Model(existing).
				Column("quantity").
				WherePK().
				Exec(ctx)
			return err
		}

		item := &BasketItem{
			ID:        uuid.New(),
			BasketID:  basket.ID,
			ProductID: productID,
			Quantity:  quantity,
		}
		_, err = tx.NewInsert().Model(item).Exec(ctx)
		return err
	})

	if err != nil {
		return nil, err
	}

	return a.loadForUser(ctx, a.db, userID)
}

func (a *baskets) UpdateItemQuantity(ctx context.Context, userID, productID uuid.UUID, quantity int) (*Basket, error) {
	err := a.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		basket, err := a.loadForUser(ctx, tx, userID)
		if err != nil {
			return err
		}

		item := basket.FindItem(productID)
		if item == nil {
			return repository.NewRecordNotFound().
				WithMetadata(map[string]any{"product_id": productID.String()})
		}

		item.Quantity = quantity
		_, err = tx.NewUpdate().Model(item).
			Column("quantity").
			WherePK().
			Exec(ctx)
		return err
	})

	if err != nil {
		return nil, err
	}

	return a.loadForUser(ctx, a.db, userID)
}

func (a *baskets) RemoveItem(ctx context.Context, userID, productID uuid.UUID) (*Basket, error) {
	err := a.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		basket, err := a.loadForUser(ctx, tx, userID)
		if err != nil {
			return err
		}

		_, err = tx.NewDelete().Model((*BasketItem)(nil)).
			Where("?TableAlias.basket_id = ?", basket.ID).
			Where("?TableAlias.product_id = ?", productID).
			Exec(ctx)
		return err
	})

	if err != nil {
		return nil, err
	}

	return a.loadForUser(ctx, a.db, userID)
}

func (a *baskets) Clear(ctx context.Context, userID uuid.UUID) error {
	return a.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		basket, err := a.loadForUser(ctx, tx, userID)
		if err != nil {
			return err
		}

		_, err = tx.NewDelete().Model((*BasketItem)(nil)).
			Where("?TableAlias.basket_id = ?", basket.ID).
			Exec(ctx)
		return err
	})
}

func (a *baskets) loadForUser(ctx context.Context, idb bun.IDB, userID uuid.UUID) (*Basket, error) {
	record := &Basket{}

	err := idb.NewSelect().Model(record).
		Relation("Items").
		Relation("Items.Product").
		Where("?TableAlias.user_id = ?", userID).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, repository.NewRecordNotFound().
				WithMetadata(map[string]any{"user_id": userID.String()})
		}
		return nil, err
	}

	record.RecalculateTotal()
	return record, nil
}
