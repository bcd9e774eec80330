package handler

import (
	inventoryapp "github.com/erp/ledger/internal/application/inventory"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StockHandler handles stock ledger reads and manual adjustments
type StockHandler struct {
	BaseHandler
	adjustments AdjustmentService
	queries     StockQueryService
}

// NewStockHandler creates a new StockHandler
func NewStockHandler(adjustments AdjustmentService, queries StockQueryService) *StockHandler {
	return &StockHandler{adjustments: adjustments, queries: queries}
}

// AdjustStockRequest represents a manual correction of one batch key
// @Description Positive quantity credits the batch, negative debits it
type AdjustStockRequest struct {
	ProductID         string          `json:"product_id" binding:"required,uuid" example:"550e8400-e29b-41d4-a716-446655440002"`
	LocationID        string          `json:"location_id" binding:"required,uuid" example:"550e8400-e29b-41d4-a716-446655440001"`
	ExpirationDate    *string         `json:"expiration_date" binding:"omitempty,datetime=2006-01-02" example:"2027-03-31"`
	ManufacturingDate *string         `json:"manufacturing_date" binding:"omitempty,datetime=2006-01-02"`
	Quantity          decimal.Decimal `json:"quantity" binding:"dscale=4" swaggertype:"string" example:"-2"`
	Reason            string          `json:"reason" binding:"required,max=500" example:"Damaged in storage"`
}

// StockQueryRequest holds the stock listing query parameters
type StockQueryRequest struct {
	ProductID  string `form:"product_id" binding:"omitempty,uuid"`
	LocationID string `form:"location_id" binding:"omitempty,uuid"`
	WithEmpty  bool   `form:"with_empty"`
}

// Adjust godoc
// @ID           adjustStock
// @Summary      Adjust a stock batch
// @Tags         stock
// @Accept       json
// @Produce      json
// @Param        request body AdjustStockRequest true "Adjustment"
// @Success      200 {object} APIResponse[inventoryapp.AdjustmentResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /inventory/adjustments [post]
func (h *StockHandler) Adjust(c *gin.Context) {
	tenantID, userID, ok := h.identity(c)
	if !ok {
		return
	}
	var req AdjustStockRequest
	if !h.bindJSON(c, &req) {
		return
	}

	result, err := h.adjustments.Adjust(c.Request.Context(), tenantID, userID, inventoryapp.AdjustStockRequest{
		ProductID:         uuid.MustParse(req.ProductID),
		LocationID:        uuid.MustParse(req.LocationID),
		ExpirationDate:    parseDate(req.ExpirationDate),
		ManufacturingDate: parseDate(req.ManufacturingDate),
		Quantity:          req.Quantity,
		Reason:            req.Reason,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// GetStock godoc
// @ID           getStock
// @Summary      Read stock
// @Description  With both product_id and location_id returns the aggregated level and its batches in consumption order; otherwise lists matching batches
// @Tags         stock
// @Produce      json
// @Param        product_id query string false "Product ID" format(uuid)
// @Param        location_id query string false "Location ID" format(uuid)
// @Param        with_empty query bool false "Include empty batches in listings"
// @Success      200 {object} APIResponse[inventoryapp.StockLevelResponse]
// @Success      200 {object} APIResponse[[]inventoryapp.BatchResponse]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /inventory/stock [get]
func (h *StockHandler) GetStock(c *gin.Context) {
	tenantID, _, ok := h.identity(c)
	if !ok {
		return
	}
	var req StockQueryRequest
	if !h.bindQuery(c, &req) {
		return
	}
	productID := parseOptionalUUID(&req.ProductID)
	locationID := parseOptionalUUID(&req.LocationID)

	if productID != nil && locationID != nil {
		level, err := h.queries.GetStockLevel(c.Request.Context(), tenantID, *productID, *locationID)
		if err != nil {
			h.HandleError(c, err)
			return
		}
		h.Success(c, level)
		return
	}

	batches, err := h.queries.ListBatches(c.Request.Context(), tenantID, inventoryapp.StockQuery{
		ProductID:  productID,
		LocationID: locationID,
		WithEmpty:  req.WithEmpty,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, batches)
}
