package landmark

import (
	"github.com/gofiber/fiber/v2"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
)

// UserController exposes the administrative account listing.
type UserController struct {
	Repo   RepositoryManager
	Logger Logger
}

func NewUserController(repo RepositoryManager, logger Logger) *UserController {
	if logger == nil {
		logger = defLogger{}
	}
	return &UserController{Repo: repo, Logger: logger}
}

func (a *UserController) List(c *fiber.Ctx) error {
	var criteria []repository.SelectCriteria
	// Deactivated accounts are hidden everywhere else; administrators may
	// opt in to seeing them here.
	if c.QueryBool("include_deactivated") {
		criteria = append(criteria, IncludeDeactivated())
	}

	users, err := a.Repo.Users().ListAll(c.UserContext(), criteria...)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to list users")
	}

	return RespondCollection(c, fiber.StatusOK, len(users), users)
}
