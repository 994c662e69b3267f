package handler

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/notely/notes-api/internal/api/middleware"
	"github.com/notely/notes-api/internal/core/domain"
	"github.com/notely/notes-api/internal/core/ports"
)

// ctxIdentity extracts the identity injected by the Auth middleware. An empty
// user id means the middleware never ran on this route.
func ctxIdentity(c echo.Context) (ports.Identity, error) {
	userID, _ := c.Get(middleware.ContextUserID).(string)
	if userID == "" {
		return ports.Identity{}, domain.ErrUnauthenticated
	}
	role, _ := c.Get(middleware.ContextRole).(domain.Role)
	return ports.Identity{UserID: userID, Role: role}, nil
}

// clientMeta captures the caller's network context for audit records. The
// first X-Forwarded-For entry wins when a proxy sits in front.
func clientMeta(c echo.Context) ports.RequestMeta {
	ip := c.RealIP()
	if fwd := c.Request().Header.Get("X-Forwarded-For"); fwd != "" {
		if first, _, found := strings.Cut(fwd, ","); found || first != "" {
			ip = strings.TrimSpace(first)
		}
	}
	return ports.RequestMeta{
		IP:        ip,
		UserAgent: c.Request().UserAgent(),
	}
}
