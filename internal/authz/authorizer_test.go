package authz

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/MoxiumTech/EcoReactAdmin-sub001/pkg/config"
	"github.com/MoxiumTech/EcoReactAdmin-sub001/pkg/db/models"
	apperrors "github.com/MoxiumTech/EcoReactAdmin-sub001/pkg/errors"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:authz_" + uuid.NewString() + "?mode=memory&cache=shared"
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&models.StoreRole{}))
	return conn
}

func TestRoleAuthorizer(t *testing.T) {
	conn := newTestDB(t)
	auth := NewRoleAuthorizer(conn)
	ctx := context.Background()

	storeID := uuid.New()
	owner := uuid.New()
	staff := uuid.New()
	stranger := uuid.New()

	require.NoError(t, conn.Create(&models.StoreRole{
		StoreID: storeID, UserID: owner, IsOwner: true,
	}).Error)
	require.NoError(t, conn.Create(&models.StoreRole{
		StoreID: storeID, UserID: staff, Permissions: "orders:view, stock:view",
	}).Error)

	assert.NoError(t, auth.Authorize(ctx, owner, storeID, PermOrdersManage))
	assert.NoError(t, auth.Authorize(ctx, staff, storeID, PermOrdersView))
	assert.NoError(t, auth.Authorize(ctx, staff, storeID, PermStockView))

	err := auth.Authorize(ctx, staff, storeID, PermOrdersManage)
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeForbidden, apperrors.As(err).Code())

	err = auth.Authorize(ctx, stranger, storeID, PermOrdersView)
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeForbidden, apperrors.As(err).Code())

	err = auth.Authorize(ctx, owner, uuid.New(), PermOrdersView)
	require.Error(t, err, "roles are scoped per store")
}

type countingAuthorizer struct {
	calls  atomic.Int64
	result error
}

func (c *countingAuthorizer) Authorize(context.Context, uuid.UUID, uuid.UUID, string) error {
	c.calls.Add(1)
	return c.result
}

func TestCachedAuthorizerExpiry(t *testing.T) {
	delegate := &countingAuthorizer{}
	clock := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	auth, err := NewCachedAuthorizer(delegate, config.AuthzConfig{CacheTTL: 5 * time.Minute}, func() time.Time { return clock })
	require.NoError(t, err)

	ctx := context.Background()
	actor, store := uuid.New(), uuid.New()

	require.NoError(t, auth.Authorize(ctx, actor, store, PermOrdersView))
	require.NoError(t, auth.Authorize(ctx, actor, store, PermOrdersView))
	assert.Equal(t, int64(1), delegate.calls.Load(), "second check served from cache")

	// A different permission is a different cache key.
	require.NoError(t, auth.Authorize(ctx, actor, store, PermStockView))
	assert.Equal(t, int64(2), delegate.calls.Load())

	clock = clock.Add(5*time.Minute + time.Second)
	require.NoError(t, auth.Authorize(ctx, actor, store, PermOrdersView))
	assert.Equal(t, int64(3), delegate.calls.Load(), "expired entry refreshes")
}

func TestCachedAuthorizerCachesDenials(t *testing.T) {
	delegate := &countingAuthorizer{result: apperrors.New(apperrors.CodeForbidden, "nope")}
	clock := time.Now()
	auth, err := NewCachedAuthorizer(delegate, config.AuthzConfig{CacheTTL: time.Minute}, func() time.Time { return clock })
	require.NoError(t, err)

	ctx := context.Background()
	actor, store := uuid.New(), uuid.New()

	require.Error(t, auth.Authorize(ctx, actor, store, PermOrdersView))
	require.Error(t, auth.Authorize(ctx, actor, store, PermOrdersView))
	assert.Equal(t, int64(1), delegate.calls.Load())
}

func TestCachedAuthorizerSkipsTransientErrors(t *testing.T) {
	delegate := &countingAuthorizer{result: apperrors.New(apperrors.CodeInternal, "db down")}
	auth, err := NewCachedAuthorizer(delegate, config.AuthzConfig{CacheTTL: time.Minute}, nil)
	require.NoError(t, err)

	ctx := context.Background()
	actor, store := uuid.New(), uuid.New()

	require.Error(t, auth.Authorize(ctx, actor, store, PermOrdersView))
	require.Error(t, auth.Authorize(ctx, actor, store, PermOrdersView))
	assert.Equal(t, int64(2), delegate.calls.Load(), "failures are re-checked every time")
}

func TestCachedAuthorizerZeroTTLPassesThrough(t *testing.T) {
	delegate := &countingAuthorizer{}
	auth, err := NewCachedAuthorizer(delegate, config.AuthzConfig{}, nil)
	require.NoError(t, err)
	assert.Equal(t, Authorizer(delegate), auth)
}
