package session

import (
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/storefront/backend/internal/models"
)

func newStore(t *testing.T) (*Store, *gorm.DB) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Session{}))
	return &Store{DB: db, Secret: []byte("test-secret")}, db
}

func TestIssueAndResolve(t *testing.T) {
	store, db := newStore(t)

	user := models.User{Username: "ana", PasswordHash: "x", IsStaff: true}
	require.NoError(t, db.Create(&user).Error)

	token, exp, err := store.Issue(user.ID)
	require.NoError(t, err)
	require.NotEmpty(t, token)
	require.True(t, exp.After(time.Now()))

	resolved, err := store.Resolve(token)
	require.NoError(t, err)
	require.Equal(t, user.ID, resolved.ID)
	require.Equal(t, "ana", resolved.Username)
	require.True(t, resolved.IsStaff)
}

func TestResolveRejectsBadTokens(t *testing.T) {
	store, db := newStore(t)

	user := models.User{Username: "ana", PasswordHash: "x"}
	require.NoError(t, db.Create(&user).Error)

	token, _, err := store.Issue(user.ID)
	require.NoError(t, err)

	_, err = store.Resolve("")
	require.ErrorIs(t, err, ErrInvalidSession)

	_, err = store.Resolve("not-a-token")
	require.ErrorIs(t, err, ErrInvalidSession)

	// valid signature from a different secret
	other := &Store{DB: db, Secret: []byte("other-secret")}
	otherToken, _, err := other.Issue(user.ID)
	require.NoError(t, err)
	_, err = store.Resolve(otherToken)
	require.ErrorIs(t, err, ErrInvalidSession)

	// server-side expiry wins even while the signature is valid
	require.NoError(t, db.Model(&models.Session{}).
		Where("token = ?", token).
		Update("expires_at", time.Now().Add(-time.Minute)).Error)
	_, err = store.Resolve(token)
	require.ErrorIs(t, err, ErrInvalidSession)
}

func TestRevoke(t *testing.T) {
	store, db := newStore(t)

	user := models.User{Username: "ana", PasswordHash: "x"}
	require.NoError(t, db.Create(&user).Error)

	token, _, err := store.Issue(user.ID)
	require.NoError(t, err)

	require.NoError(t, store.Revoke(token))
	_, err = store.Resolve(token)
	require.ErrorIs(t, err, ErrInvalidSession)

	// revoking again, or revoking garbage, is not an error
	require.NoError(t, store.Revoke(token))
	require.NoError(t, store.Revoke("unknown"))
	require.NoError(t, store.Revoke(""))
}
