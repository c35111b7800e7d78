package landmark

import (
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/gofiber/fiber/v2"
	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
)

// BasketController owns the per-user basket routes. Every route runs behind
// the verified-session guard, so the acting user is always present.
type BasketController struct {
	Repo   RepositoryManager
	Logger Logger
	cfg    Config
}

func NewBasketController(repo RepositoryManager, cfg Config, logger Logger) *BasketController {
	if logger == nil {
		logger = defLogger{}
	}
	return &BasketController{Repo: repo, cfg: cfg, Logger: logger}
}

func (a *BasketController) Get(c *fiber.Ctx) error {
	user, err := CurrentUser(c, a.cfg.GetContextKey())
	if err != nil {
		return err
	}

	basket, err := a.Repo.Baskets().GetOrCreateForUser(c.UserContext(), user.ID)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to load basket")
	}

	return RespondData(c, fiber.StatusOK, basket)
}

// BasketItemRequest payload. Quantity is a pointer so a missing field is
// distinguishable from an explicit zero; both are rejected.
type BasketItemRequest struct {
	ProductID string `json:"product_id"`
	Quantity  *int   `json:"quantity"`
}

// Validate will run validation rules
func (r BasketItemRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.ProductID, validation.Required),
		validation.Field(&r.Quantity, validation.Required, validation.Min(1)),
	)
}

func (a *BasketController) AddItem(c *fiber.Ctx) error {
	user, err := CurrentUser(c, a.cfg.GetContextKey())
	if err != nil {
		return err
	}

	payload := new(BasketItemRequest)
	if err := c.BodyParser(payload); err != nil {
		return NewValidationError(err)
	}
	if err := payload.Validate(); err != nil {
		return NewValidationError(err)
	}

	productID, err := uuid.Parse(payload.ProductID)
	if err != nil {
		return goerrors.New("product_id must be a valid uuid", goerrors.CategoryBadInput).
			WithCode(goerrors.CodeBadRequest)
	}

	// The product has to exist before a line referencing it is created.
	if _, err := a.Repo.Products().GetByUUID(c.UserContext(), productID); err != nil {
		if IsNotFound(err) {
			return goerrors.New("no product found with that id", goerrors.CategoryNotFound).
				WithCode(goerrors.CodeNotFound)
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to resolve product")
	}

	basket, err := a.Repo.Baskets().AddItem(c.UserContext(), user.ID, productID, *payload.Quantity)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to add basket item")
	}

	return RespondData(c, fiber.StatusOK, basket)
}

// BasketQuantityRequest payload
type BasketQuantityRequest struct {
	Quantity int `json:"quantity"`
}

// Validate will run validation rules
func (r BasketQuantityRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Quantity, validation.Required, validation.Min(1)),
	)
}

func (a *BasketController) UpdateItem(c *fiber.Ctx) error {
	user, err := CurrentUser(c, a.cfg.GetContextKey())
	if err != nil {
		return err
	}

	productID, err := uuid.Parse(c.Params("productId"))
	if err != nil {
		return goerrors.New("product id must be a valid uuid", goerrors.CategoryBadInput).
			WithCode(goerrors.CodeBadRequest)
	}

	payload := new(BasketQuantityRequest)
	if err := c.BodyParser(payload); err != nil {
		return NewValidationError(err)
	}
	if err := payload.Validate(); err != nil {
		return NewValidationError(err)
	}

	basket, err := a.Repo.Baskets().UpdateItemQuantity(c.UserContext(), user.ID, productID, payload.Quantity)
	if err != nil {
		if IsNotFound(err) {
			return goerrors.New("no basket item found for that product", goerrors.CategoryNotFound).
				WithCode(goerrors.CodeNotFound)
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to update basket item")
	}

	return RespondData(c, fiber.StatusOK, basket)
}

func (a *BasketController) RemoveItem(c *fiber.Ctx) error {
	user, err := CurrentUser(c, a.cfg.GetContextKey())
	if err != nil {
		return err
	}

	productID, err := uuid.Parse(c.Params("productId"))
	if err != nil {
		return goerrors.New("product id must be a valid uuid", goerrors.CategoryBadInput).
			WithCode(goerrors.CodeBadRequest)
	}

	basket, err := a.Repo.Baskets().RemoveItem(c.UserContext(), user.ID, productID)
	if err != nil {
		if IsNotFound(err) {
			return goerrors.New("no basket found", goerrors.CategoryNotFound).
				WithCode(goerrors.CodeNotFound)
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to remove basket item")
	}

	return RespondData(c, fiber.StatusOK, basket)
}

func (a *BasketController) Clear(c *fiber.Ctx) error {
	user, err := CurrentUser(c, a.cfg.GetContextKey())
	if err != nil {
		return err
	}

	if err := a.Repo.Baskets().Clear(c.UserContext(), user.ID); err != nil {
		if IsNotFound(err) {
			// Clearing a basket that never existed is a no-op.
			return c.SendStatus(fiber.StatusNoContent)
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to clear basket")
	}

	return c.SendStatus(fiber.StatusNoContent)
}
