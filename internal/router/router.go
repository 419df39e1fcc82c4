package router

import (
	"net/http"
	"path/filepath"
	"strings"

	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"

	"kali/internal/auth"
	"kali/internal/authz"
	"kali/internal/handler"
	"kali/internal/storage"
)

// Options configures route registration.
type Options struct {
	JWT *auth.JWTService
	// AssetRoot is the local asset store root served under /user_images.
	// Empty when assets are stored remotely.
	AssetRoot string
	// Health reports readiness of the backing stores for /healthz.
	Health func(c echo.Context) error
}

// Register wires routes and middleware.
func Register(
	e *echo.Echo,
	opts Options,
	authHandler *handler.AuthHandler,
	userHandler *handler.UserHandler,
) {
	e.Use(middleware.RequestID())
	e.Use(requestContext())
	e.Use(requestLogger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(middleware.BodyLimit("12M"))
	e.Use(middleware.SecureWithConfig(middleware.SecureConfig{
		XSSProtection:      "1; mode=block",
		ContentTypeNosniff: "nosniff",
		XFrameOptions:      "SAMEORIGIN",
	}))
	// Uploaded files are user content; never let them run as a document.
	e.Use(middleware.SecureWithConfig(middleware.SecureConfig{
		Skipper: func(c echo.Context) bool {
			return !strings.HasPrefix(c.Request().URL.Path, "/"+storage.AssetDir+"/")
		},
		ContentSecurityPolicy: "default-src 'none'; sandbox",
	}))

	e.Validator = NewValidator()

	e.GET("/healthz", func(c echo.Context) error {
		if opts.Health != nil {
			if err := opts.Health(c); err != nil {
				return c.String(http.StatusServiceUnavailable, "unavailable")
			}
		}
		return c.String(http.StatusOK, "ok")
	})

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	if opts.AssetRoot != "" {
		e.Static("/"+storage.AssetDir, filepath.Join(opts.AssetRoot, storage.AssetDir))
	}

	users := e.Group("/api/users")

	// Public routes
	users.POST("/register", authHandler.Register)
	users.POST("/login", authHandler.Login)

	// Secured routes (require a verified session token)
	secured := users.Group("", echojwt.WithConfig(echojwt.Config{
		TokenLookup:    "header:" + echo.HeaderAuthorization + ":Bearer ",
		ContextKey:     handler.PrincipalKey,
		ParseTokenFunc: parseToken(opts.JWT),
		SuccessHandler: attachUser,
		ErrorHandler:   tokenError,
	}))

	secured.GET("", userHandler.ListUsers)
	secured.GET("/:id", userHandler.GetUser)
	secured.PUT("/:id", userHandler.UpdateUser)
	secured.DELETE("/:id", userHandler.DeleteUser)
	secured.POST("/:id/upload-profile-picture", userHandler.UploadProfilePicture)
	secured.POST("/:id/make-admin", userHandler.MakeAdmin, RequireAction(authz.ActionMakeAdmin))
}
