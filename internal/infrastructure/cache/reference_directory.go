package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rental/backend/internal/domain/contract"
	"go.uber.org/zap"
)

const (
	clientsKey   = "reference:clients"
	productsKey  = "reference:products"
	eventsKey    = "reference:events"
	locationsKey = "reference:locations"
)

// CachedDirectory serves reference listings from a Store, loading them from
// the wrapped directory on a miss. Cache failures fall through to the
// wrapped directory.
type CachedDirectory struct {
	next   contract.ReferenceDirectory
	store  Store
	ttl    time.Duration
	logger *zap.Logger
}

// NewCachedDirectory wraps next with a cache whose entries live for ttl
func NewCachedDirectory(next contract.ReferenceDirectory, store Store, ttl time.Duration, logger *zap.Logger) *CachedDirectory {
	return &CachedDirectory{next: next, store: store, ttl: ttl, logger: logger}
}

func cached[T any](ctx context.Context, d *CachedDirectory, key string, load func(context.Context) ([]T, error)) ([]T, error) {
	if data, ok, err := d.store.Get(ctx, key); err != nil {
		d.logger.Warn("Reference cache read failed", zap.String("key", key), zap.Error(err))
	} else if ok {
		var out []T
		if err := json.Unmarshal(data, &out); err == nil {
			return out, nil
		}
		d.logger.Warn("Discarding corrupted reference cache entry", zap.String("key", key))
		_ = d.store.Delete(ctx, key)
	}

	out, err := load(ctx)
	if err != nil {
		return nil, err
	}
	data, err := json.Marshal(out)
	if err == nil {
		err = d.store.Set(ctx, key, data, d.ttl)
	}
	if err != nil {
		d.logger.Warn("Reference cache write failed", zap.String("key", key), zap.Error(err))
	}
	return out, nil
}

// ListClients implements contract.ReferenceDirectory
func (d *CachedDirectory) ListClients(ctx context.Context) ([]contract.Client, error) {
	return cached(ctx, d, clientsKey, d.next.ListClients)
}

// ListProducts implements contract.ReferenceDirectory
func (d *CachedDirectory) ListProducts(ctx context.Context) ([]contract.Product, error) {
	return cached(ctx, d, productsKey, d.next.ListProducts)
}

// ListEvents implements contract.ReferenceDirectory
func (d *CachedDirectory) ListEvents(ctx context.Context) ([]contract.Event, error) {
	return cached(ctx, d, eventsKey, d.next.ListEvents)
}

// ListLocations implements contract.ReferenceDirectory
func (d *CachedDirectory) ListLocations(ctx context.Context) ([]contract.Location, error) {
	return cached(ctx, d, locationsKey, d.next.ListLocations)
}

// InvalidateProducts drops the cached catalog. Submitting a contract changes
// which products are attached, so the next session must see fresh statuses.
func (d *CachedDirectory) InvalidateProducts(ctx context.Context) error {
	return d.store.Delete(ctx, productsKey)
}

// Invalidate drops every cached listing
func (d *CachedDirectory) Invalidate(ctx context.Context) error {
	return d.store.Delete(ctx, clientsKey, productsKey, eventsKey, locationsKey)
}
