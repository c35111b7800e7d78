package landmark

import (
	"strconv"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/gofiber/fiber/v2"
	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
)

// ProductController owns the catalog routes.
type ProductController struct {
	Repo   RepositoryManager
	Logger Logger
	cfg    Config
}

func NewProductController(repo RepositoryManager, cfg Config, logger Logger) *ProductController {
	if logger == nil {
		logger = defLogger{}
	}
	return &ProductController{Repo: repo, cfg: cfg, Logger: logger}
}

// parseListQuery maps the supported query string features onto a
// ProductListQuery: price[gte]/price[lte] filters, name search, comma
// separated sort and field selection, page/limit pagination.
func parseListQuery(c *fiber.Ctx) (ProductListQuery, error) {
	query := ProductListQuery{
		Search: c.Query("search"),
		Page:   c.QueryInt("page"),
		Limit:  c.QueryInt("limit"),
	}

	if raw := c.Query("sort"); raw != "" {
		query.Sort = strings.Split(raw, ",")
	}
	if raw := c.Query("fields"); raw != "" {
		query.Fields = strings.Split(raw, ",")
	}

	if raw := c.Query("price[gte]"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return query, goerrors.New("price[gte] must be a number", goerrors.CategoryBadInput).
				WithCode(goerrors.CodeBadRequest)
		}
		query.PriceMin = &v
	}
	if raw := c.Query("price[lte]"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return query, goerrors.New("price[lte] must be a number", goerrors.CategoryBadInput).
				WithCode(goerrors.CodeBadRequest)
		}
		query.PriceMax = &v
	}

	if raw := c.Query("seller_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return query, goerrors.New("seller_id must be a valid uuid", goerrors.CategoryBadInput).
				WithCode(goerrors.CodeBadRequest)
		}
		query.SellerID = &id
	}

	return query, nil
}

func (a *ProductController) List(c *fiber.Ctx) error {
	query, err := parseListQuery(c)
	if err != nil {
		return err
	}

	records, err := a.Repo.Products().Find(c.UserContext(), query)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to list products")
	}

	return RespondCollection(c, fiber.StatusOK, len(records), records)
}

// ProductCreateRequest payload
type ProductCreateRequest struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Images      []string `json:"images"`
	Price       *float64 `json:"price"`
	SellerID    string   `json:"seller_id"`
}

// Validate will run validation rules
func (r ProductCreateRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required),
		validation.Field(&r.Description, validation.Required),
		validation.Field(&r.Images, validation.Required, validation.Length(1, 0)),
		validation.Field(&r.Price, validation.NotNil, validation.Min(0.0)),
	)
}

func (a *ProductController) Create(c *fiber.Ctx) error {
	user, err := CurrentUser(c, a.cfg.GetContextKey())
	if err != nil {
		return err
	}

	payload := new(ProductCreateRequest)
	if err := c.BodyParser(payload); err != nil {
		return NewValidationError(err)
	}
	if err := payload.Validate(); err != nil {
		return NewValidationError(err)
	}

	// Sellers always own what they create; only an administrator may
	// assign the entry to someone else.
	sellerID := user.ID
	if payload.SellerID != "" {
		if user.Role != RoleAdministrator {
			return ErrForbiddenRole
		}
		id, err := uuid.Parse(payload.SellerID)
		if err != nil {
			return NewValidationError(err)
		}
		if _, err := a.Repo.Users().GetByUUID(c.UserContext(), id); err != nil {
			if IsNotFound(err) {
				return goerrors.New("seller not found", goerrors.CategoryNotFound).
					WithCode(goerrors.CodeNotFound)
			}
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to resolve seller")
		}
		sellerID = id
	}

	record := &Product{
		ID:          uuid.New(),
		Name:        payload.Name,
		Description: payload.Description,
		Images:      payload.Images,
		Price:       *payload.Price,
		SellerID:    sellerID,
	}

	created, err := a.Repo.Products().Create(c.UserContext(), record)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to create product")
	}

	return RespondData(c, fiber.StatusCreated, created)
}

func (a *ProductController) Get(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return goerrors.New("product id must be a valid uuid", goerrors.CategoryBadInput).
			WithCode(goerrors.CodeBadRequest)
	}

	record, err := a.Repo.Products().GetByUUID(c.UserContext(), id)
	if err != nil {
		if IsNotFound(err) {
			return goerrors.New("no product found with that id", goerrors.CategoryNotFound).
				WithCode(goerrors.CodeNotFound)
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve product")
	}

	return RespondData(c, fiber.StatusOK, record)
}

// ProductUpdateRequest payload; absent fields keep their stored value.
type ProductUpdateRequest struct {
	Name        *string   `json:"name"`
	Description *string   `json:"description"`
	Images      *[]string `json:"images"`
	Price       *float64  `json:"price"`
}

// Validate will run validation rules. Absent fields are fine, but a field
// that is present may not blank out a value the model requires.
func (r ProductUpdateRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.NilOrNotEmpty),
		validation.Field(&r.Description, validation.NilOrNotEmpty),
		validation.Field(&r.Images, validation.NilOrNotEmpty),
		validation.Field(&r.Price, validation.Min(0.0)),
	)
}

func (a *ProductController) Update(c *fiber.Ctx) error {
	user, err := CurrentUser(c, a.cfg.GetContextKey())
	if err != nil {
		return err
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return goerrors.New("product id must be a valid uuid", goerrors.CategoryBadInput).
			WithCode(goerrors.CodeBadRequest)
	}

	record, err := a.Repo.Products().GetByUUID(c.UserContext(), id)
	if err != nil {
		if IsNotFound(err) {
			return goerrors.New("no product found with that id", goerrors.CategoryNotFound).
				WithCode(goerrors.CodeNotFound)
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve product")
	}

	if !CanManageProduct(user, record) {
		return ErrForbiddenRole
	}

	payload := new(ProductUpdateRequest)
	if err := c.BodyParser(payload); err != nil {
		return NewValidationError(err)
	}
	if err := payload.Validate(); err != nil {
		return NewValidationError(err)
	}

	if payload.Name != nil {
		record.Name = *payload.Name
	}
	if payload.Description != nil {
		record.Description = *payload.Description
	}
	if payload.Images != nil {
		record.Images = *payload.Images
	}
	if payload.Price != nil {
		record.Price = *payload.Price
	}

	updated, err := a.Repo.Products().Save(c.UserContext(), record)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to update product")
	}

	return RespondData(c, fiber.StatusOK, updated)
}

func (a *ProductController) Delete(c *fiber.Ctx) error {
	user, err := CurrentUser(c, a.cfg.GetContextKey())
	if err != nil {
		return err
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return goerrors.New("product id must be a valid uuid", goerrors.CategoryBadInput).
			WithCode(goerrors.CodeBadRequest)
	}

	record, err := a.Repo.Products().GetByUUID(c.UserContext(), id)
	if err != nil {
		if IsNotFound(err) {
			return goerrors.New("no product found with that id", goerrors.CategoryNotFound).
				WithCode(goerrors.CodeNotFound)
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve product")
	}

	if !CanManageProduct(user, record) {
		return ErrForbiddenRole
	}

	if err := a.Repo.Products().DeleteByUUID(c.UserContext(), id); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to delete product")
	}

	return c.SendStatus(fiber.StatusNoContent)
}
