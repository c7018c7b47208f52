package memory

import (
	"context"
	"sync"

	"github.com/Apurer/go-stock-gateway/internal/domains/inventory/domain"
	"github.com/Apurer/go-stock-gateway/internal/domains/inventory/ports"
)

var _ ports.SnapshotCache = (*SnapshotCache)(nil)

// SnapshotCache keeps one warehouse stock observation per product for the
// process lifetime. The external fetch runs outside the lock, so racing
// first-time readers may each call the warehouse; the first result stored
// wins and later racers discard their own. No eviction, no refresh: the
// cache is cleared only by process restart.
type SnapshotCache struct {
	warehouse ports.StockOfRecord

	mu        sync.RWMutex
	snapshots map[int64]domain.StockSnapshot
}

// NewSnapshotCache wires an empty cache over the warehouse fetch port.
func NewSnapshotCache(warehouse ports.StockOfRecord) *SnapshotCache {
	return &SnapshotCache{
		warehouse: warehouse,
		snapshots: make(map[int64]domain.StockSnapshot),
	}
}

// GetOrFetch returns the stored snapshot value, fetching it from the
// warehouse on first sight of the product. Fetch errors propagate to the
// caller and leave the cache untouched.
func (c *SnapshotCache) GetOrFetch(ctx context.Context, productID int64) (int64, error) {
	c.mu.RLock()
	snapshot, ok := c.snapshots[productID]
	c.mu.RUnlock()
	if ok {
		return snapshot.Stock, nil
	}

	stock, err := c.warehouse.Fetch(ctx, productID)
	if err != nil {
		return 0, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if existing, ok := c.snapshots[productID]; ok {
		return existing.Stock, nil
	}
	c.snapshots[productID] = domain.StockSnapshot{ProductID: productID, Stock: stock}
	return stock, nil
}

// Len reports how many products have been snapshotted.
func (c *SnapshotCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.snapshots)
}
