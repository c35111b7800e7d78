package landmark

import (
	"github.com/gofiber/fiber/v2"
)

// RegisterRoutes mounts the full HTTP surface under /api.
func RegisterRoutes(app *fiber.App, repo RepositoryManager, auther Authenticator, tokens TokenService, mailer Mailer, cfg Config, logger Logger) {
	guard := NewRouteGuard(auther, cfg).WithLogger(logger)

	authCtrl := NewAuthController(repo, auther, tokens, guard, mailer, cfg, logger)
	userCtrl := NewUserController(repo, logger)
	productCtrl := NewProductController(repo, cfg, logger)
	basketCtrl := NewBasketController(repo, cfg, logger)

	api := app.Group("/api")

	users := api.Group("/users")
	users.Post("/signup", authCtrl.Signup)
	users.Get("/verify-email/:token", authCtrl.VerifyEmail)
	users.Post("/resend-verification", authCtrl.ResendVerification)
	users.Post("/login", authCtrl.Login)
	users.Post("/forgot-password", authCtrl.ForgotPassword)
	users.Patch("/reset-password/:token", authCtrl.ResetPassword)

	users.Get("/me", guard.Protected(), authCtrl.Me)
	users.Patch("/update-password", guard.Protected(), authCtrl.UpdatePassword)
	users.Patch("/update-me", guard.Protected(), authCtrl.UpdateMe)
	users.Patch("/delete-me", guard.Protected(), authCtrl.DeleteMe)

	users.Get("/", guard.Protected(), guard.RestrictTo(RoleAdministrator), userCtrl.List)

	products := api.Group("/products")
	products.Get("/", guard.Optional(), productCtrl.List)
	products.Post("/", guard.Protected(), guard.RestrictTo(RoleSeller, RoleAdministrator), productCtrl.Create)
	products.Get("/:id", guard.Optional(), productCtrl.Get)
	products.Patch("/:id", guard.Protected(), guard.RestrictTo(RoleSeller, RoleAdministrator), productCtrl.Update)
	products.Delete("/:id", guard.Protected(), guard.RestrictTo(RoleSeller, RoleAdministrator), productCtrl.Delete)

	basket := api.Group("/basket", guard.Protected(), guard.RequireVerified())
	basket.Get("/", basketCtrl.Get)
	basket.Delete("/", basketCtrl.Clear)
	basket.Post("/items", basketCtrl.AddItem)
	basket.Patch("/items/:productId", basketCtrl.UpdateItem)
	basket.Delete("/items/:productId", basketCtrl.RemoveItem)
}
