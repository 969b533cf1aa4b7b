package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/phrazzld/blog-api/internal/api/middleware"
)

// Handlers groups the resource handlers mounted by NewRouter.
type Handlers struct {
	Auth       *AuthHandler
	Categories *CategoryHandler
	Tags       *TagHandler
	Posts      *PostHandler
	Media      *MediaHandler
	Users      *UserHandler
	Profiles   *ProfileHandler
	Health     *HealthHandler
}

// RouterOptions configures the middleware chain.
type RouterOptions struct {
	Authenticator      middleware.Authenticator
	CORSAllowedOrigins []string
	CSRFEnforce        bool
	LoginRatePerMinute int
	Logger             *slog.Logger
}

// NewRouter mounts every route. Trailing slashes are optional.
func NewRouter(h Handlers, opts RouterOptions) http.Handler {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	authMiddleware := middleware.NewAuthMiddleware(opts.Authenticator, log)
	loginLimiter := middleware.NewRateLimiter(opts.LoginRatePerMinute)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.StripSlashes)
	r.Use(middleware.NewTraceMiddleware(log))
	r.Use(middleware.RequestLogger)
	r.Use(middleware.Recover)
	r.Use(middleware.CORS(opts.CORSAllowedOrigins))
	r.Use(authMiddleware.Authenticate)
	r.Use(middleware.CSRF(opts.CSRFEnforce))

	r.NotFound(middleware.NotFound)
	r.MethodNotAllowed(middleware.MethodNotAllowed)

	admin := func(r chi.Router) chi.Router {
		return r.With(middleware.LoginRequired, middleware.AdminRequired)
	}
	staff := func(r chi.Router) chi.Router {
		return r.With(middleware.LoginRequired, middleware.AdminOrAuthorRequired)
	}

	r.Get("/health", h.Health.Check)

	r.Route("/auth", func(r chi.Router) {
		r.With(loginLimiter.Limit).Post("/login", h.Auth.Login)
		r.Post("/logout", h.Auth.Logout)
		r.Get("/csrf-token", h.Auth.CSRFToken)
	})

	r.Route("/categories", func(r chi.Router) {
		r.Get("/", h.Categories.List)
		admin(r).Post("/", h.Categories.Create)
		r.Get("/{slug}", h.Categories.Get)
		admin(r).Patch("/{slug}", h.Categories.Update)
		admin(r).Delete("/{slug}", h.Categories.Delete)
	})

	r.Route("/tags", func(r chi.Router) {
		r.Get("/", h.Tags.List)
		admin(r).Post("/", h.Tags.Create)
		r.Get("/{slug}", h.Tags.Get)
		admin(r).Patch("/{slug}", h.Tags.Update)
		admin(r).Delete("/{slug}", h.Tags.Delete)
	})

	r.Route("/posts", func(r chi.Router) {
		r.Get("/", h.Posts.List)
		staff(r).Post("/", h.Posts.Create)
		r.Get("/{slug}", h.Posts.Get)
		staff(r).Patch("/{slug}", h.Posts.Update)
		staff(r).Delete("/{slug}", h.Posts.Delete)

		r.Get("/{slug}/media", h.Media.ListForPost)
		staff(r).Post("/{slug}/media", h.Media.Upload)
		r.Get("/{slug}/media/{id}", h.Media.GetForPost)
		staff(r).Delete("/{slug}/media/{id}", h.Media.Delete)
	})

	r.Route("/media", func(r chi.Router) {
		admin(r).Get("/", h.Media.List)
		admin(r).Get("/{id}", h.Media.Get)
	})

	r.Route("/users", func(r chi.Router) {
		admin(r).Get("/", h.Users.List)
		admin(r).Post("/", h.Users.Create)
		staff(r).Get("/{id}", h.Users.Get)
		staff(r).Patch("/{id}", h.Users.Update)
		staff(r).Delete("/{id}", h.Users.Delete)

		staff(r).Patch("/{id}/profile", h.Profiles.UpdateProfile)
		staff(r).Post("/{id}/social-accounts", h.Profiles.CreateSocialAccount)
		staff(r).Patch("/{id}/social-accounts/{sid}", h.Profiles.UpdateSocialAccount)
		staff(r).Delete("/{id}/social-accounts/{sid}", h.Profiles.DeleteSocialAccount)
	})

	return r
}
