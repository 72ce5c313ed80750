package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/taskboard/taskboard/internal/identity"
	"github.com/taskboard/taskboard/internal/taskerr"
)

const principalKey = "principal"

// Identity resolves the caller from the Authorization header and stores the
// principal on the request context. Requests without a resolvable principal
// are rejected before reaching any handler.
func Identity(resolver identity.Resolver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			credential := strings.TrimPrefix(c.Request().Header.Get("Authorization"), "Bearer ")

			p, err := resolver.Resolve(c.Request().Context(), credential)
			if err != nil {
				return echo.NewHTTPError(taskerr.StatusCode(err), err.Error())
			}

			c.Set(principalKey, p)
			return next(c)
		}
	}
}

// Principal returns the caller resolved by the Identity middleware.
func Principal(c echo.Context) identity.Principal {
	p, _ := c.Get(principalKey).(identity.Principal)
	return p
}
