package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/labstack/echo/v4"

	"github.com/storefront/backend/internal/hash"
	authmw "github.com/storefront/backend/internal/middleware/auth"
	"github.com/storefront/backend/internal/models"
	"github.com/storefront/backend/internal/session"
)

func newAuthHandler(t *testing.T) (*AuthHandler, *gorm.DB) {
	db := newTestDB(t)
	sessions := &session.Store{DB: db, Secret: []byte("test-secret")}
	return &AuthHandler{DB: db, Sessions: sessions}, db
}

func createUser(t *testing.T, db *gorm.DB, username, password string, isStaff bool) models.User {
	t.Helper()
	passwordHash, err := hash.HashPassword(password)
	require.NoError(t, err)
	user := models.User{Username: username, PasswordHash: passwordHash, IsStaff: isStaff}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func sessionCookie(rec interface{ Result() *http.Response }) *http.Cookie {
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == authmw.CookieName {
			return ck
		}
	}
	return nil
}

func TestLogin(t *testing.T) {
	h, db := newAuthHandler(t)
	e := echo.New()

	user := createUser(t, db, "ana", "secret123", true)

	rec, c := doJSONRequest(t, e, http.MethodPost, "/auth/login", map[string]string{
		"username": " ana ",
		"password": "secret123",
	})
	require.NoError(t, h.Login(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp authmw.Identity
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, user.ID, resp.ID)
	require.Equal(t, "ana", resp.Username)
	require.True(t, resp.IsStaff)

	ck := sessionCookie(rec)
	require.NotNil(t, ck)
	require.NotEmpty(t, ck.Value)
	require.True(t, ck.HttpOnly)

	var count int64
	require.NoError(t, db.Model(&models.Session{}).Count(&count).Error)
	require.Equal(t, int64(1), count)
}

func TestLoginRejections(t *testing.T) {
	h, db := newAuthHandler(t)
	e := echo.New()

	createUser(t, db, "ana", "secret123", false)

	_, c := doJSONRequest(t, e, http.MethodPost, "/auth/login", map[string]string{
		"username": "ana",
		"password": "  ",
	})
	requireHTTPError(t, h.Login(c), http.StatusBadRequest, "Username and password are required")

	// same message whether the user or the password is wrong
	_, c = doJSONRequest(t, e, http.MethodPost, "/auth/login", map[string]string{
		"username": "ana",
		"password": "wrong",
	})
	requireHTTPError(t, h.Login(c), http.StatusUnauthorized, "Invalid credentials")

	_, c = doJSONRequest(t, e, http.MethodPost, "/auth/login", map[string]string{
		"username": "nobody",
		"password": "secret123",
	})
	requireHTTPError(t, h.Login(c), http.StatusUnauthorized, "Invalid credentials")
}

func TestLogoutIsIdempotent(t *testing.T) {
	h, db := newAuthHandler(t)
	e := echo.New()

	user := createUser(t, db, "ana", "secret123", false)
	token, _, err := h.Sessions.Issue(user.ID)
	require.NoError(t, err)

	rec, c := doJSONRequest(t, e, http.MethodPost, "/auth/logout", nil)
	c.Request().AddCookie(&http.Cookie{Name: authmw.CookieName, Value: token})
	require.NoError(t, h.Logout(c))
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"detail":"Logged out"}`, rec.Body.String())

	_, err = h.Sessions.Resolve(token)
	require.ErrorIs(t, err, session.ErrInvalidSession)

	// no cookie at all still succeeds
	rec, c = doJSONRequest(t, e, http.MethodPost, "/auth/logout", nil)
	require.NoError(t, h.Logout(c))
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestMeThroughMiddleware(t *testing.T) {
	h, db := newAuthHandler(t)
	e := echo.New()

	user := createUser(t, db, "ana", "secret123", false)
	token, _, err := h.Sessions.Issue(user.ID)
	require.NoError(t, err)

	mw := &authmw.Middleware{Sessions: h.Sessions}
	wrapped := mw.RequireSession(h.Me)

	rec, c := doJSONRequest(t, e, http.MethodGet, "/auth/me", nil)
	c.Request().AddCookie(&http.Cookie{Name: authmw.CookieName, Value: token})
	require.NoError(t, wrapped(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp authmw.Identity
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, user.ID, resp.ID)
	require.False(t, resp.IsStaff)

	_, c = doJSONRequest(t, e, http.MethodGet, "/auth/me", nil)
	requireHTTPError(t, wrapped(c), http.StatusUnauthorized, "Not authenticated")

	require.NoError(t, h.Sessions.Revoke(token))
	_, c = doJSONRequest(t, e, http.MethodGet, "/auth/me", nil)
	c.Request().AddCookie(&http.Cookie{Name: authmw.CookieName, Value: token})
	requireHTTPError(t, wrapped(c), http.StatusUnauthorized, "Not authenticated")
}
