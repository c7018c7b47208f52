package ports

import (
	"context"

	invtypes "github.com/Apurer/go-stock-gateway/internal/domains/inventory/application/types"
)

// Service is the inbound port of the inventory bounded context.
type Service interface {
	// EffectiveStock reports the snapshot value plus the counted ledger
	// overlay for the product.
	EffectiveStock(ctx context.Context, input invtypes.ProductIdentifier) (int64, error)

	// Retrieve accepts a stock withdrawal when effective stock covers it,
	// records the delta, and dispatches the warehouse commit.
	Retrieve(ctx context.Context, input invtypes.MovementInput) (*invtypes.MovementResult, error)

	// Restock accepts a stock addition unconditionally.
	Restock(ctx context.Context, input invtypes.MovementInput) (*invtypes.MovementResult, error)
}
