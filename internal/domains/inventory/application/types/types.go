// Package types carries the transport-agnostic inputs and outputs of the
// inventory application service.
package types

// ProductIdentifier addresses a single product.
type ProductIdentifier struct {
	ProductID int64
}

// MovementInput is a retrieve or restock request.
type MovementInput struct {
	ProductID int64
	Amount    int64
}

// MovementResult reports the accepted movement: the ledger operation that
// records it and the effective stock after applying it.
type MovementResult struct {
	OperationID    string
	ProductID      int64
	EffectiveStock int64
}
