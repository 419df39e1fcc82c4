package router

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"kali/internal/auth"
	"kali/internal/authz"
	apperrors "kali/internal/errors"
	"kali/internal/handler"
	"kali/internal/logger"
)

// parseToken verifies a bearer token and yields the auth.Principal stored
// under handler.PrincipalKey.
func parseToken(jwtService *auth.JWTService) func(c echo.Context, token string) (interface{}, error) {
	return func(_ echo.Context, token string) (interface{}, error) {
		p, err := jwtService.Verify(token)
		if err != nil {
			return nil, err
		}
		return p, nil
	}
}

func attachUser(c echo.Context) {
	p, _ := c.Get(handler.PrincipalKey).(auth.Principal)
	req := c.Request()
	c.SetRequest(req.WithContext(logger.WithUserID(req.Context(), p.UserID)))
}

// tokenError reports verification failures by kind. A missing or unreadable
// Authorization header is reported as unauthenticated.
func tokenError(_ echo.Context, err error) error {
	switch {
	case errors.Is(err, apperrors.ErrTokenExpired),
		errors.Is(err, apperrors.ErrTokenBadSignature),
		errors.Is(err, apperrors.ErrTokenMalformed):
	default:
		err = apperrors.ErrUnauthenticated
	}
	mapped := apperrors.MapErrorToHTTP(err)
	return echo.NewHTTPError(mapped.StatusCode, mapped.ToErrorResponse())
}

// RequireAction rejects requests whose principal may not perform action on
// the record named by the :id path parameter. The handler is not invoked on
// denial.
func RequireAction(action authz.Action) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			p, _ := c.Get(handler.PrincipalKey).(auth.Principal)
			if authz.Authorize(p, c.Param("id"), action) == authz.Deny {
				err := apperrors.ErrForbidden
				if !p.Authenticated() {
					err = apperrors.ErrUnauthenticated
				}
				logger.WarnContext(c.Request().Context(), "action denied", "action", string(action), "target", c.Param("id"))
				mapped := apperrors.MapErrorToHTTP(err)
				return echo.NewHTTPError(mapped.StatusCode, mapped.ToErrorResponse())
			}
			return next(c)
		}
	}
}

// requestContext copies the request id into the request context for logging.
func requestContext() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id := c.Response().Header().Get(echo.HeaderXRequestID)
			if id != "" {
				req := c.Request()
				c.SetRequest(req.WithContext(logger.WithRequestID(req.Context(), id)))
			}
			return next(c)
		}
	}
}

func requestLogger() echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:   true,
		LogURI:      true,
		LogStatus:   true,
		LogLatency:  true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			ctx := c.Request().Context()
			attrs := []any{"method", v.Method, "uri", v.URI, "status", v.Status, "latency", v.Latency.String()}
			if v.Error != nil && v.Status >= http.StatusInternalServerError {
				logger.ErrorContext(ctx, "request", append(attrs, "error", v.Error)...)
				return nil
			}
			logger.InfoContext(ctx, "request", attrs...)
			return nil
		},
	})
}
