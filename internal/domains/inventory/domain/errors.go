package domain

import "errors"

var (
	// ErrInsufficientStock rejects a retrieval larger than effective stock.
	ErrInsufficientStock = errors.New("not enough stock")
	// ErrInvalidAmount rejects zero or negative retrieve/restock amounts.
	ErrInvalidAmount = errors.New("amount must be positive")
	// ErrInvalidProduct rejects non-positive product identifiers.
	ErrInvalidProduct = errors.New("product id must be positive")
)
