package application

import (
	"errors"
	"fmt"

	"github.com/Apurer/go-stock-gateway/internal/domains/inventory/domain"
)

// ErrInvalidInput signals the request violated a domain invariant.
var ErrInvalidInput = errors.New("invalid stock movement input")

// ErrRejected signals a retrieval was refused for insufficient stock.
var ErrRejected = errors.New("stock movement rejected")

func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, domain.ErrInvalidAmount) || errors.Is(err, domain.ErrInvalidProduct) {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	if errors.Is(err, domain.ErrInsufficientStock) {
		return fmt.Errorf("%w: %w", ErrRejected, err)
	}
	return err
}
