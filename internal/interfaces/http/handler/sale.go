package handler

import (
	tradeapp "github.com/erp/ledger/internal/application/trade"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SaleHandler handles point-of-sale endpoints
type SaleHandler struct {
	BaseHandler
	sales SaleService
}

// NewSaleHandler creates a new SaleHandler
func NewSaleHandler(sales SaleService) *SaleHandler {
	return &SaleHandler{sales: sales}
}

// SaleLineRequest is one requested line of a sale
// @Description Sale line. Omitting unit_price uses the catalog selling price.
type SaleLineRequest struct {
	ProductID string           `json:"product_id" binding:"required,uuid" example:"550e8400-e29b-41d4-a716-446655440002"`
	Quantity  decimal.Decimal  `json:"quantity" binding:"dgt0,dscale=4" swaggertype:"string" example:"2"`
	UnitPrice *decimal.Decimal `json:"unit_price" binding:"omitempty,dgte0,dscale=4" swaggertype:"string" example:"19.99"`
	Discount  decimal.Decimal  `json:"discount" binding:"dgte0,dscale=4" swaggertype:"string" example:"0"`
}

// ProcessSaleRequest represents a request to book a sale
// @Description Request body for processing a sale
type ProcessSaleRequest struct {
	LocationID    string            `json:"location_id" binding:"required,uuid" example:"550e8400-e29b-41d4-a716-446655440001"`
	CustomerID    *string           `json:"customer_id" binding:"omitempty,uuid" example:"550e8400-e29b-41d4-a716-446655440000"`
	Items         []SaleLineRequest `json:"items" binding:"required,min=1,dive"`
	PaymentMethod string            `json:"payment_method" binding:"required,oneof=CASH CARD BANK_TRANSFER E_WALLET" example:"CASH"`
	AmountPaid    decimal.Decimal   `json:"amount_paid" binding:"dgte0,dscale=4" swaggertype:"string" example:"50"`
	IsCredit      bool              `json:"is_credit" example:"false"`
	Notes         string            `json:"notes" binding:"max=500"`
}

func (r ProcessSaleRequest) toApp() tradeapp.ProcessSaleRequest {
	out := tradeapp.ProcessSaleRequest{
		LocationID:    uuid.MustParse(r.LocationID),
		CustomerID:    parseOptionalUUID(r.CustomerID),
		Items:         make([]tradeapp.SaleLineInput, 0, len(r.Items)),
		PaymentMethod: r.PaymentMethod,
		AmountPaid:    r.AmountPaid,
		IsCredit:      r.IsCredit,
		Notes:         r.Notes,
	}
	for _, line := range r.Items {
		out.Items = append(out.Items, tradeapp.SaleLineInput{
			ProductID: uuid.MustParse(line.ProductID),
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice,
			Discount:  line.Discount,
		})
	}
	return out
}

// Create godoc
// @ID           processSale
// @Summary      Process a sale
// @Description  Prices the lines, consumes stock FIFO, books credit and drawer cash in one transaction
// @Tags         sales
// @Accept       json
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID when no bearer token is sent"
// @Param        X-User-ID header string false "User ID when no bearer token is sent"
// @Param        request body ProcessSaleRequest true "Sale request"
// @Success      201 {object} APIResponse[tradeapp.SaleResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Failure      504 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /trade/sales [post]
func (h *SaleHandler) Create(c *gin.Context) {
	tenantID, userID, ok := h.identity(c)
	if !ok {
		return
	}
	var req ProcessSaleRequest
	if !h.bindJSON(c, &req) {
		return
	}

	sale, err := h.sales.ProcessSale(c.Request.Context(), tenantID, userID, req.toApp())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, sale)
}

// Get godoc
// @ID           getSale
// @Summary      Get a sale
// @Tags         sales
// @Produce      json
// @Param        id path string true "Sale ID" format(uuid)
// @Success      200 {object} APIResponse[tradeapp.SaleResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /trade/sales/{id} [get]
func (h *SaleHandler) Get(c *gin.Context) {
	tenantID, _, ok := h.identity(c)
	if !ok {
		return
	}
	saleID, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	sale, err := h.sales.GetSale(c.Request.Context(), tenantID, saleID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, sale)
}
