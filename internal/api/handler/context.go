package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/civicreporter/civic-reporter-api/internal/core/domain"
)

// PrincipalKey is the echo context key under which the auth middleware stores
// the verified principal.
const PrincipalKey = "principal"

// ctxPrincipal extracts the principal injected by the Auth middleware. Its
// presence proves the middleware ran; a handler reaching this on an
// unprotected route is a wiring bug, answered with 401 rather than a panic.
func ctxPrincipal(c echo.Context) (domain.Principal, error) {
	principal, ok := c.Get(PrincipalKey).(domain.Principal)
	if !ok || principal.ID == "" {
		return domain.Principal{}, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication")
	}
	return principal, nil
}
