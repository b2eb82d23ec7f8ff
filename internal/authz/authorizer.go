package authz

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/MoxiumTech/EcoReactAdmin-sub001/pkg/config"
	"github.com/MoxiumTech/EcoReactAdmin-sub001/pkg/db/models"
	"github.com/MoxiumTech/EcoReactAdmin-sub001/pkg/errors"
)

// Permissions checked by the order and stock surfaces.
const (
	PermOrdersView   = "orders:view"
	PermOrdersManage = "orders:manage"
	PermStockView    = "stock:view"
	PermStockManage  = "stock:manage"
)

// Authorizer answers whether an actor holds a permission within a store.
// Implementations return a FORBIDDEN error on denial and nil on grant.
type Authorizer interface {
	Authorize(ctx context.Context, actorID, storeID uuid.UUID, permission string) error
}

type roleAuthorizer struct {
	db *gorm.DB
}

// NewRoleAuthorizer answers permission checks from store_roles rows. Owners
// hold every permission; everyone else holds the comma-separated set on
// their role row.
func NewRoleAuthorizer(db *gorm.DB) Authorizer {
	return &roleAuthorizer{db: db}
}

func (a *roleAuthorizer) Authorize(ctx context.Context, actorID, storeID uuid.UUID, permission string) error {
	var role models.StoreRole
	err := a.db.WithContext(ctx).
		Where("user_id = ? AND store_id = ?", actorID, storeID).
		First(&role).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errors.New(errors.CodeForbidden, "no role in this store")
		}
		return errors.Wrap(errors.CodeInternal, err, "authz: failed to load store role")
	}

	if role.IsOwner {
		return nil
	}
	for _, granted := range strings.Split(role.Permissions, ",") {
		if strings.TrimSpace(granted) == permission {
			return nil
		}
	}
	return errors.New(errors.CodeForbidden, "permission not granted")
}

type cacheEntry struct {
	err       error
	expiresAt time.Time
}

type cachedAuthorizer struct {
	next Authorizer
	ttl  time.Duration
	now  func() time.Time

	mu      sync.Mutex
	entries map[string]cacheEntry
}

// NewCachedAuthorizer memoizes decisions from next for cfg.CacheTTL. Both
// grants and denials are cached, so role changes take up to one TTL to be
// observed. The clock is injectable; nil falls back to time.Now.
func NewCachedAuthorizer(next Authorizer, cfg config.AuthzConfig, now func() time.Time) (Authorizer, error) {
	if next == nil {
		return nil, errors.New(errors.CodeInternal, "authz: delegate authorizer is required")
	}
	if cfg.CacheTTL <= 0 {
		return next, nil
	}
	if now == nil {
		now = time.Now
	}
	return &cachedAuthorizer{
		next:    next,
		ttl:     cfg.CacheTTL,
		now:     now,
		entries: make(map[string]cacheEntry),
	}, nil
}

func (a *cachedAuthorizer) Authorize(ctx context.Context, actorID, storeID uuid.UUID, permission string) error {
	key := actorID.String() + "|" + storeID.String() + "|" + permission
	current := a.now()

	a.mu.Lock()
	entry, ok := a.entries[key]
	a.mu.Unlock()
	if ok && current.Before(entry.expiresAt) {
		return entry.err
	}

	err := a.next.Authorize(ctx, actorID, storeID, permission)
	// Transient failures are not decisions and stay out of the cache.
	if appErr := errors.As(err); err != nil && (appErr == nil || appErr.Code() != errors.CodeForbidden) {
		return err
	}

	a.mu.Lock()
	a.entries[key] = cacheEntry{err: err, expiresAt: current.Add(a.ttl)}
	a.mu.Unlock()
	return err
}
