package main

import (
	"net/http"

	"github.com/phrazzld/blog-api/internal/api"
	"github.com/phrazzld/blog-api/internal/serializer"
)

// setupRouter builds the handlers over the application services and mounts
// them.
func (app *application) setupRouter() http.Handler {
	s := serializer.New(app.blobs)
	maxUpload := app.config.Server.MaxUploadMB

	return api.NewRouter(api.Handlers{
		Auth:       api.NewAuthHandler(app.authService, &app.config.Auth, app.logger),
		Categories: api.NewCategoryHandler(app.categoryService, s, app.logger),
		Tags:       api.NewTagHandler(app.tagService, s, app.logger),
		Posts:      api.NewPostHandler(app.postService, s, app.logger),
		Media:      api.NewMediaHandler(app.mediaService, s, maxUpload, app.logger),
		Users:      api.NewUserHandler(app.userService, s, app.logger),
		Profiles:   api.NewProfileHandler(app.profileService, s, maxUpload, app.logger),
		Health:     api.NewHealthHandler(app.db, app.config.Server.Version, app.config.Server.Environment, app.logger),
	}, api.RouterOptions{
		Authenticator:      app.authService,
		CORSAllowedOrigins: app.config.Server.CORSAllowedOrigins,
		CSRFEnforce:        app.config.Auth.CSRFEnforce,
		LoginRatePerMinute: app.config.Auth.LoginRatePerMinute,
		Logger:             app.logger,
	})
}
