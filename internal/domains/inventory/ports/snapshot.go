package ports

import "context"

// SnapshotCache holds one authoritative stock observation per product for
// the process lifetime. Population is first-writer-wins: concurrent
// callers racing on an unseen product may each fetch, but all of them end
// up agreeing on the single stored snapshot. There is no eviction and no
// refresh; the cache disappears with the process.
type SnapshotCache interface {
	GetOrFetch(ctx context.Context, productID int64) (int64, error)
}
