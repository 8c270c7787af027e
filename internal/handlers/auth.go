package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/storefront/backend/internal/hash"
	authmw "github.com/storefront/backend/internal/middleware/auth"
	"github.com/storefront/backend/internal/models"
	"github.com/storefront/backend/internal/mykafka"
	"github.com/storefront/backend/internal/session"
)

type AuthHandler struct {
	DB       *gorm.DB
	Sessions *session.Store
	Producer *mykafka.Producer
}

func CreateCookie(name string, value string, path string, expTime time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     path,
		Expires:  expTime,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	}
}

func (h *AuthHandler) publish(c echo.Context, event map[string]any) {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Producer.PublishEvent(ctx, "user_events", fmt.Sprint(event["userID"]), event); err != nil {
		c.Logger().Errorf("Kafka publish error: %v", err)
	}
}

// Login never reveals which of the two fields was wrong.
func (h *AuthHandler) Login(c echo.Context) error {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := bindJSON(c, &req); err != nil {
		return err
	}

	username := strings.TrimSpace(req.Username)
	password := strings.TrimSpace(req.Password)
	if username == "" || password == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Username and password are required")
	}

	var user models.User
	if err := h.DB.Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusUnauthorized, "Invalid credentials")
		}
		return err
	}
	if !hash.CheckPassword(user.PasswordHash, password) {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid credentials")
	}

	token, exp, err := h.Sessions.Issue(user.ID)
	if err != nil {
		return err
	}
	c.SetCookie(CreateCookie(authmw.CookieName, token, "/", exp))

	h.publish(c, map[string]any{
		"type":     "user_logged_in",
		"userID":   user.ID,
		"username": user.Username,
	})

	return c.JSON(http.StatusOK, authmw.Identity{
		ID:       user.ID,
		Username: user.Username,
		IsStaff:  user.IsStaff,
	})
}

// Logout succeeds with or without an active session.
func (h *AuthHandler) Logout(c echo.Context) error {
	if cookie, err := c.Cookie(authmw.CookieName); err == nil {
		if err := h.Sessions.Revoke(cookie.Value); err != nil {
			return err
		}
		expired := time.Now().Add(-1 * time.Hour)
		c.SetCookie(CreateCookie(authmw.CookieName, "", "/", expired))
	}

	return c.JSON(http.StatusOK, map[string]string{"detail": "Logged out"})
}

func (h *AuthHandler) Me(c echo.Context) error {
	identity, ok := authmw.CurrentIdentity(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Not authenticated")
	}
	return c.JSON(http.StatusOK, identity)
}
