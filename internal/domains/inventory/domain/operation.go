package domain

import "time"

// Operation is a single accepted stock-changing request recorded in the
// ledger. A negative Action is a retrieval, a positive one a restock.
//
// Operations are immutable once written except for two one-way flags:
// Ok becomes false when the asynchronous warehouse commit for this
// operation fails, and InCache becomes false when the process shuts down
// and the accumulated overlay is retired. Operations are never deleted;
// records with either flag cleared stay in the ledger for audit.
type Operation struct {
	ID        string
	Time      time.Time
	ProductID int64
	Action    int64
	Ok        bool
	InCache   bool
}

// Counted reports whether the operation currently contributes to
// effective stock.
func (o Operation) Counted() bool {
	return o.Ok && o.InCache
}

// StockSnapshot is the stock level observed from the warehouse on the
// first read of a product in this process lifetime. The value is never
// refreshed; all later movement is represented by the ledger overlay.
type StockSnapshot struct {
	ProductID int64
	Stock     int64
}
