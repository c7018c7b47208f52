package ports

import "context"

// StockOfRecord is the authoritative external warehouse system. Fetch
// failures propagate to the request that triggered them; Commit failures
// are recorded on the originating ledger operation instead of being
// surfaced to the caller.
type StockOfRecord interface {
	Fetch(ctx context.Context, productID int64) (int64, error)
	Commit(ctx context.Context, productID, newStock int64) error
}
