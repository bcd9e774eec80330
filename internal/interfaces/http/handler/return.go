package handler

import (
	tradeapp "github.com/erp/ledger/internal/application/trade"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ReturnHandler handles customer return endpoints
type ReturnHandler struct {
	BaseHandler
	returns ReturnService
}

// NewReturnHandler creates a new ReturnHandler
func NewReturnHandler(returns ReturnService) *ReturnHandler {
	return &ReturnHandler{returns: returns}
}

// ReturnLineRequest is one returned line
// @Description Returned quantity. sale_item_id picks the line when a product was sold on several lines.
type ReturnLineRequest struct {
	SaleItemID  *string         `json:"sale_item_id" binding:"omitempty,uuid"`
	ProductID   string          `json:"product_id" binding:"required,uuid" example:"550e8400-e29b-41d4-a716-446655440002"`
	Quantity    decimal.Decimal `json:"quantity" binding:"dgt0,dscale=4" swaggertype:"string" example:"1"`
	Condition   string          `json:"condition" binding:"required,oneof=GOOD OPENED DAMAGED DEFECTIVE EXPIRED" example:"GOOD"`
	Disposition string          `json:"disposition" binding:"omitempty,oneof=RETURN_TO_STOCK DISCARD" example:"RETURN_TO_STOCK"`
}

// ProcessReturnRequest represents a return against a sale
// @Description Request body for processing a return
type ProcessReturnRequest struct {
	SaleID string              `json:"sale_id" binding:"required,uuid" example:"550e8400-e29b-41d4-a716-446655440010"`
	Items  []ReturnLineRequest `json:"items" binding:"required,min=1,dive"`
	Reason string              `json:"reason" binding:"required,max=500" example:"Wrong size"`
}

// Create godoc
// @ID           processReturn
// @Summary      Process a return
// @Description  Restocks or discards returned goods and refunds cash or credit in one transaction
// @Tags         returns
// @Accept       json
// @Produce      json
// @Param        request body ProcessReturnRequest true "Return request"
// @Success      201 {object} APIResponse[tradeapp.ReturnResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /trade/returns [post]
func (h *ReturnHandler) Create(c *gin.Context) {
	tenantID, userID, ok := h.identity(c)
	if !ok {
		return
	}
	var req ProcessReturnRequest
	if !h.bindJSON(c, &req) {
		return
	}

	appReq := tradeapp.ProcessReturnRequest{
		SaleID: uuid.MustParse(req.SaleID),
		Items:  make([]tradeapp.ReturnLineInput, 0, len(req.Items)),
		Reason: req.Reason,
	}
	for _, line := range req.Items {
		appReq.Items = append(appReq.Items, tradeapp.ReturnLineInput{
			SaleItemID:  parseOptionalUUID(line.SaleItemID),
			ProductID:   uuid.MustParse(line.ProductID),
			Quantity:    line.Quantity,
			Condition:   line.Condition,
			Disposition: line.Disposition,
		})
	}

	ret, err := h.returns.ProcessReturn(c.Request.Context(), tenantID, userID, appReq)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, ret)
}
