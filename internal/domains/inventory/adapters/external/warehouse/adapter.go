package warehouse

import (
	"context"
	"errors"

	warehouseclient "github.com/Apurer/go-stock-gateway/internal/clients/http/warehouse"
	"github.com/Apurer/go-stock-gateway/internal/domains/inventory/ports"
)

var _ ports.StockOfRecord = (*Adapter)(nil)

// Adapter implements the stock-of-record port over the warehouse HTTP
// client.
type Adapter struct {
	client *warehouseclient.Client
}

// NewAdapter wires the warehouse HTTP client into the port.
func NewAdapter(client *warehouseclient.Client) *Adapter {
	return &Adapter{client: client}
}

// Fetch reads the authoritative stock level for the product.
func (a *Adapter) Fetch(ctx context.Context, productID int64) (int64, error) {
	if a == nil || a.client == nil {
		return 0, errors.New("warehouse adapter not configured")
	}
	return a.client.Fetch(ctx, productID)
}

// Commit writes the new absolute stock level for the product.
func (a *Adapter) Commit(ctx context.Context, productID, newStock int64) error {
	if a == nil || a.client == nil {
		return errors.New("warehouse adapter not configured")
	}
	return a.client.Commit(ctx, productID, newStock)
}
