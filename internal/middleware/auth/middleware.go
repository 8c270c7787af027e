package auth

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/storefront/backend/internal/session"
)

const (
	CookieName  = "session"
	identityKey = "identity"
)

// Identity is the resolved caller, passed explicitly through the echo
// context instead of handlers re-reading cookies.
type Identity struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	IsStaff  bool   `json:"is_staff"`
}

type Middleware struct {
	Sessions *session.Store
}

func CurrentIdentity(c echo.Context) (Identity, bool) {
	id, ok := c.Get(identityKey).(Identity)
	return id, ok
}

func (m *Middleware) resolve(c echo.Context) (Identity, error) {
	cookie, err := c.Cookie(CookieName)
	if err != nil {
		return Identity{}, session.ErrInvalidSession
	}

	user, err := m.Sessions.Resolve(cookie.Value)
	if err != nil {
		return Identity{}, err
	}

	return Identity{ID: user.ID, Username: user.Username, IsStaff: user.IsStaff}, nil
}

// RequireSession rejects unauthenticated callers with 401.
func (m *Middleware) RequireSession(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		identity, err := m.resolve(c)
		if err != nil {
			if errors.Is(err, session.ErrInvalidSession) {
				return echo.NewHTTPError(http.StatusUnauthorized, "Not authenticated")
			}
			return err
		}
		c.Set(identityKey, identity)
		return next(c)
	}
}

// StaffOnly rejects non-staff and unauthenticated callers alike with 403.
func (m *Middleware) StaffOnly(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		identity, err := m.resolve(c)
		if err != nil {
			if errors.Is(err, session.ErrInvalidSession) {
				return echo.NewHTTPError(http.StatusForbidden, "Not authorized")
			}
			return err
		}
		if !identity.IsStaff {
			return echo.NewHTTPError(http.StatusForbidden, "Not authorized")
		}
		c.Set(identityKey, identity)
		return next(c)
	}
}
