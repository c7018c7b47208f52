// Package mapper translates between HTTP payloads and application types.
package mapper

import (
	invtypes "github.com/Apurer/go-stock-gateway/internal/domains/inventory/application/types"
)

// MovementRequest is the body of retrieve and restock calls.
type MovementRequest struct {
	ProductID int64 `json:"productId" binding:"required"`
	Amount    int64 `json:"amount" binding:"required"`
}

// MovementResponse acknowledges an accepted movement.
type MovementResponse struct {
	ProductID   int64  `json:"productId"`
	OperationID string `json:"operationId"`
	Stock       int64  `json:"stock"`
}

// ToMovementInput converts the HTTP payload into the application input.
func ToMovementInput(req MovementRequest) invtypes.MovementInput {
	return invtypes.MovementInput{ProductID: req.ProductID, Amount: req.Amount}
}

// FromMovementResult converts the application result into the response body.
func FromMovementResult(result *invtypes.MovementResult) MovementResponse {
	if result == nil {
		return MovementResponse{}
	}
	return MovementResponse{
		ProductID:   result.ProductID,
		OperationID: result.OperationID,
		Stock:       result.EffectiveStock,
	}
}
