package handler

import (
	tradeapp "github.com/erp/ledger/internal/application/trade"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ReceivingHandler books purchase order deliveries
type ReceivingHandler struct {
	BaseHandler
	receiving ReceivingService
}

// NewReceivingHandler creates a new ReceivingHandler
func NewReceivingHandler(receiving ReceivingService) *ReceivingHandler {
	return &ReceivingHandler{receiving: receiving}
}

// ReceiptLineRequest is one delivered product
// @Description Delivered quantity of one product, optionally with batch dates
type ReceiptLineRequest struct {
	ProductID         string          `json:"product_id" binding:"required,uuid" example:"550e8400-e29b-41d4-a716-446655440002"`
	Quantity          decimal.Decimal `json:"quantity" binding:"dgt0,dscale=4" swaggertype:"string" example:"40"`
	ExpirationDate    *string         `json:"expiration_date" binding:"omitempty,datetime=2006-01-02" example:"2027-03-31"`
	ManufacturingDate *string         `json:"manufacturing_date" binding:"omitempty,datetime=2006-01-02" example:"2026-09-30"`
}

// ReceivePurchaseOrderRequest represents a delivery against a purchase order
// @Description Request body for receiving a purchase order
type ReceivePurchaseOrderRequest struct {
	Items []ReceiptLineRequest `json:"items" binding:"required,min=1,dive"`
	Notes string               `json:"notes" binding:"max=500"`
}

// Receive godoc
// @ID           receivePurchaseOrder
// @Summary      Receive a purchase order
// @Description  Credits each delivered line into the stock ledger and books the inventory expense
// @Tags         purchase-orders
// @Accept       json
// @Produce      json
// @Param        id path string true "Purchase order ID" format(uuid)
// @Param        request body ReceivePurchaseOrderRequest true "Delivered lines"
// @Success      200 {object} APIResponse[tradeapp.ReceivingResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /trade/purchase-orders/{id}/receive [post]
func (h *ReceivingHandler) Receive(c *gin.Context) {
	tenantID, userID, ok := h.identity(c)
	if !ok {
		return
	}
	poID, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req ReceivePurchaseOrderRequest
	if !h.bindJSON(c, &req) {
		return
	}

	appReq := tradeapp.ReceivePurchaseOrderRequest{
		Items: make([]tradeapp.ReceiptLineInput, 0, len(req.Items)),
		Notes: req.Notes,
	}
	for _, line := range req.Items {
		appReq.Items = append(appReq.Items, tradeapp.ReceiptLineInput{
			ProductID:         uuid.MustParse(line.ProductID),
			Quantity:          line.Quantity,
			ExpirationDate:    parseDate(line.ExpirationDate),
			ManufacturingDate: parseDate(line.ManufacturingDate),
		})
	}

	result, err := h.receiving.Receive(c.Request.Context(), tenantID, userID, poID, appReq)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}
