package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"

	"github.com/storefront/backend/internal/models"
)

const TTL = 7 * 24 * time.Hour

var ErrInvalidSession = errors.New("invalid session")

// Store issues signed session tokens and keeps one row per session so a
// token can be revoked server-side before its signature expires.
type Store struct {
	DB     *gorm.DB
	Secret []byte
}

func (s *Store) Issue(userID uint) (string, time.Time, error) {
	exp := time.Now().Add(TTL)
	claims := jwt.MapClaims{
		"sub": userID,
		"exp": exp.Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	token, err := t.SignedString(s.Secret)
	if err != nil {
		return "", time.Time{}, err
	}

	record := models.Session{
		Token:     token,
		UserID:    userID,
		ExpiresAt: exp,
		Revoked:   false,
	}
	if err := s.DB.Create(&record).Error; err != nil {
		return "", time.Time{}, fmt.Errorf("db error: %w", err)
	}

	return token, exp, nil
}

// Resolve returns the session's user, or ErrInvalidSession for anything a
// caller should treat as "not logged in" (bad signature, unknown token,
// revoked, expired).
func (s *Store) Resolve(rawToken string) (*models.User, error) {
	if rawToken == "" {
		return nil, ErrInvalidSession
	}

	t, err := jwt.Parse(rawToken, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.Secret, nil
	})
	if err != nil || !t.Valid {
		return nil, ErrInvalidSession
	}

	var stored models.Session
	if err := s.DB.Where("token = ?", rawToken).First(&stored).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidSession
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	if stored.Revoked || time.Now().After(stored.ExpiresAt) {
		return nil, ErrInvalidSession
	}

	var user models.User
	if err := s.DB.First(&user, stored.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidSession
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return &user, nil
}

// Revoke is idempotent: unknown tokens are not an error.
func (s *Store) Revoke(rawToken string) error {
	if rawToken == "" {
		return nil
	}
	result := s.DB.Model(&models.Session{}).
		Where("token = ?", rawToken).
		Update("revoked", true)
	return result.Error
}
