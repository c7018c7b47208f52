package stockgatewayserver

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	stockhttpmapper "github.com/Apurer/go-stock-gateway/internal/domains/inventory/adapters/http/mapper"
	invtypes "github.com/Apurer/go-stock-gateway/internal/domains/inventory/application/types"
	invports "github.com/Apurer/go-stock-gateway/internal/domains/inventory/ports"
)

// StockAPI wires HTTP transport with the inventory bounded context service.
type StockAPI struct {
	service invports.Service
}

// NewStockAPI creates a StockAPI backed by the provided service.
func NewStockAPI(service invports.Service) StockAPI {
	return StockAPI{service: service}
}

// Get /stock/:productId
// Report effective stock for a product
func (api *StockAPI) GetStock(c *gin.Context) {
	id, ok := parseIDParam(c, "productId")
	if !ok {
		return
	}
	stock, err := api.service.EffectiveStock(c.Request.Context(), invtypes.ProductIdentifier{ProductID: id})
	if err != nil {
		respondStockServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, stock)
}

// Post /stock/retrieve
// Withdraw stock when effective stock covers the amount
func (api *StockAPI) RetrieveStock(c *gin.Context) {
	var payload stockhttpmapper.MovementRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}
	result, err := api.service.Retrieve(c.Request.Context(), stockhttpmapper.ToMovementInput(payload))
	if err != nil {
		respondStockServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, stockhttpmapper.FromMovementResult(result))
}

// Post /stock/restock
// Add stock unconditionally
func (api *StockAPI) Restock(c *gin.Context) {
	var payload stockhttpmapper.MovementRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}
	result, err := api.service.Restock(c.Request.Context(), stockhttpmapper.ToMovementInput(payload))
	if err != nil {
		respondStockServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, stockhttpmapper.FromMovementResult(result))
}

func parseIDParam(c *gin.Context, name string) (int64, bool) {
	raw := c.Param(name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		respondError(c, http.StatusBadRequest, errInvalidID(name, raw))
		return 0, false
	}
	return id, true
}
