// Package handler contains the HTTP handlers for the user account API.
package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"kali/internal/auth"
	"kali/internal/errors"
	"kali/internal/logger"
)

// PrincipalKey is the echo context key the auth middleware stores the
// verified requester under.
const PrincipalKey = "principal"

// principal returns the verified requester, or the zero Principal when the
// request carried none.
func principal(c echo.Context) auth.Principal {
	p, _ := c.Get(PrincipalKey).(auth.Principal)
	return p
}

// handleError converts a service error into an echo HTTP error carrying an
// ErrorResponse body. Infrastructure failures are logged and reported opaquely.
func handleError(c echo.Context, err error) *echo.HTTPError {
	mapped := errors.MapErrorToHTTP(err)
	if mapped.StatusCode == http.StatusInternalServerError {
		logger.ErrorContext(c.Request().Context(), "request failed",
			"method", c.Request().Method, "path", c.Path(), "error", err)
	}
	return echo.NewHTTPError(mapped.StatusCode, mapped.ToErrorResponse())
}

func badRequest(msg string) *echo.HTTPError {
	return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
		Error: msg,
		Code:  "INVALID_REQUEST",
	})
}
