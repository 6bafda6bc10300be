package routes

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/inkhaven/blog-backend/internal/config"
	"github.com/inkhaven/blog-backend/internal/handlers"
	"github.com/inkhaven/blog-backend/internal/middleware"
	"github.com/inkhaven/blog-backend/internal/models"
	"github.com/inkhaven/blog-backend/internal/store"
)

func Setup(
	app *fiber.App,
	cfg *config.Config,
	users store.UserStore,
	authHandler *handlers.AuthHandler,
	postHandler *handlers.PostHandler,
	userHandler *handlers.UserHandler,
	healthHandler *handlers.HealthHandler,
) {
	api := app.Group("/api")

	// General API rate limiter: 60 req/min per IP
	api.Use(limiter.New(limiter.Config{
		Max:               60,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))

	api.Get("/health", healthHandler.Check)

	// Auth routes are public but get a stricter limit since they mint tokens
	// and send email.
	auth := api.Group("/auth")
	auth.Use(limiter.New(limiter.Config{
		Max:               10,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)
	auth.Post("/magic-link/request", authHandler.RequestMagicLink)
	auth.Get("/magic-link/verify", authHandler.VerifyMagicLink)
	auth.Post("/password-reset/request", authHandler.RequestPasswordReset)
	auth.Post("/password-reset", authHandler.ResetPassword)
	auth.Get("/google", authHandler.GoogleLogin)
	auth.Get("/google/callback", authHandler.GoogleCallback)
	auth.Post("/refresh", authHandler.Refresh)
	auth.Post("/logout", authHandler.Logout)

	// Public blog reads. The featured route must precede the slug catch-all.
	api.Get("/posts/featured", postHandler.Featured)
	api.Get("/posts", postHandler.ListPublished)
	api.Get("/posts/:slug", postHandler.GetBySlug)
	api.Post("/posts/:slug/views", postHandler.TrackView)

	// Editorial routes: admins and managers manage content.
	editor := api.Group("/admin/posts",
		middleware.JWTProtected(cfg),
		middleware.RequireRole(users, models.RoleAdmin, models.RoleManager),
	)
	editor.Get("/", postHandler.List)
	editor.Post("/", postHandler.Create)
	editor.Patch("/:id", postHandler.Update)
	editor.Delete("/:id", postHandler.Delete)

	// User management is admin only.
	admin := api.Group("/admin/users",
		middleware.JWTProtected(cfg),
		middleware.RequireRole(users, models.RoleAdmin),
	)
	admin.Get("/", userHandler.List)
	admin.Patch("/:id/role", userHandler.UpdateRole)
	admin.Delete("/:id", userHandler.Delete)
}
