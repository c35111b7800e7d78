package landmark

import (
	"context"
	"strings"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

const (
	productListDefaultLimit = 50
	productListMaxLimit     = 200
)

// ProductListQuery carries the catalog listing features: filtering, search,
// sorting, sparse fieldsets, and pagination.
type ProductListQuery struct {
	Search   string
	Sort     []string
	Fields   []string
	Page     int
	Limit    int
	PriceMin *float64
	PriceMax *float64
	SellerID *uuid.UUID
}

// Products is the catalog store.
type Products interface {
	repository.Repository[*Product]

	GetByUUID(ctx context.Context, id uuid.UUID) (*Product, error)
	Find(ctx context.Context, query ProductListQuery) ([]*Product, error)
	Save(ctx context.Context, record *Product) (*Product, error)
	DeleteByUUID(ctx context.Context, id uuid.UUID) error
}

type products struct {
	repository.Repository[*Product]
	db *bun.DB
}

var _ Products = (*products)(nil)

func NewProductsRepository(db *bun.DB) Products {
	repo := repository.NewRepository[*Product](db, repository.ModelHandlers[*Product]{
		NewRecord: func() *Product { return &Product{} },
		GetID: func(p *Product) uuid.UUID {
			if p == nil {
				return uuid.Nil
			}
			return p.ID
		},
		SetID: func(p *Product, id uuid.UUID) {
			if p != nil {
				p.ID = id
			}
		},
	})

	return &products{
		Repository: repo,
		db:         db,
	}
}

func (a *products) GetByUUID(ctx context.Context, id uuid.UUID) (*Product, error) {
	record := &Product{}

	err := a.db.NewSelect().Model(record).
		Relation("Seller").
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

func (a *products) Find(ctx context.Context, query ProductListQuery) ([]*Product, error) {
	var records []*Product
	q := a.db.NewSelect().Model(&records)

	if cols := sanitizeProductColumns(query.Fields); len(cols) > 0 {
		q.Column(cols...)
	}

	if query.Search != "" {
		q.Where("lower(?TableAlias.name) LIKE ?", "%"+strings.ToLower(query.Search)+"%")
	}

	if query.PriceMin != nil {
		q.Where("?TableAlias.price >= ?", *query.PriceMin)
	}
	if query.PriceMax != nil {
		q.Where("?TableAlias.price <= ?", *query.PriceMax)
	}
	if query.SellerID != nil {
		q.Where("?TableAlias.seller_id = ?", *query.SellerID)
	}

	ordered := false
	for _, field := range query.Sort {
		column, dir := parseSortField(field)
		if column == "" {
			continue
		}
		q.Order(column + " " + dir)
		ordered = true
	}
	if !ordered {
		q.Order("created_at DESC")
	}

	limit := query.Limit
	if limit <= 0 {
		limit = productListDefaultLimit
	}
	if limit > productListMaxLimit {
		limit = productListMaxLimit
	}
	q.Limit(limit)

	if query.Page > 1 {
		q.Offset((query.Page - 1) * limit)
	}

	if err := q.Scan(ctx); err != nil {
		return nil, err
	}

	return records, nil
}

func (a *products) Save(ctx context.Context, record *Product) (*Product, error) {
	return a.Repository.Update(ctx, record, repository.UpdateByID(record.ID.String()))
}

func (a *products) DeleteByUUID(ctx context.Context, id uuid.UUID) error {
	res, err := a.db.NewDelete().
		Model((*Product)(nil)).
		Where("?TableAlias.id = ?", id).
		Exec(ctx)
	if err != nil {
		return err
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return repository.NewRecordNotFound().
			WithMetadata(map[string]any{"id": id.String()})
	}

	return nil
}

// sortable/selectable column allow-list; unknown names are dropped rather
// than interpolated into SQL.
var productColumns = map[string]bool{
	"id":          true,
	"name":        true,
	"description": true,
	"images":      true,
	"price":       true,
	"seller_id":   true,
	"created_at":  true,
	"updated_at":  true,
}

func sanitizeProductColumns(fields []string) []string {
	var cols []string
	for _, f := range fields {
		f = strings.TrimSpace(f)
		if productColumns[f] {
			cols = append(cols, f)
		}
	}
	return cols
}

func parseSortField(field string) (string, string) {
	field = strings.TrimSpace(field)
	dir := "ASC"
	if strings.HasPrefix(field, "-") {
		dir = "DESC"
		field = field[1:]
	}
	if !productColumns[field] {
		return "", ""
	}
	return field, dir
}
