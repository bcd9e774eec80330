package handler

import (
	financeapp "github.com/erp/ledger/internal/application/finance"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// CreditHandler handles customer credit endpoints
type CreditHandler struct {
	BaseHandler
	credit CreditService
}

// NewCreditHandler creates a new CreditHandler
func NewCreditHandler(credit CreditService) *CreditHandler {
	return &CreditHandler{credit: credit}
}

// RecordPaymentRequest represents a payment against a credit balance
type RecordPaymentRequest struct {
	Amount decimal.Decimal `json:"amount" binding:"dgt0,dscale=4" swaggertype:"string" example:"120"`
	Note   string          `json:"note" binding:"max=500"`
}

// RecordPayment godoc
// @ID           recordCreditPayment
// @Summary      Record a credit payment
// @Tags         credit
// @Accept       json
// @Produce      json
// @Param        customer_id path string true "Customer ID" format(uuid)
// @Param        request body RecordPaymentRequest true "Payment"
// @Success      200 {object} APIResponse[financeapp.CreditAccountResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /finance/credit/{customer_id}/payments [post]
func (h *CreditHandler) RecordPayment(c *gin.Context) {
	tenantID, userID, ok := h.identity(c)
	if !ok {
		return
	}
	customerID, ok := h.pathID(c, "customer_id")
	if !ok {
		return
	}
	var req RecordPaymentRequest
	if !h.bindJSON(c, &req) {
		return
	}
	account, err := h.credit.RecordPayment(c.Request.Context(), tenantID, userID, customerID, financeapp.RecordPaymentRequest{
		Amount: req.Amount,
		Note:   req.Note,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, account)
}

// GetAccount godoc
// @ID           getCreditAccount
// @Summary      Get a customer's credit account
// @Tags         credit
// @Produce      json
// @Param        customer_id path string true "Customer ID" format(uuid)
// @Success      200 {object} APIResponse[financeapp.CreditAccountResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /finance/credit/{customer_id} [get]
func (h *CreditHandler) GetAccount(c *gin.Context) {
	tenantID, _, ok := h.identity(c)
	if !ok {
		return
	}
	customerID, ok := h.pathID(c, "customer_id")
	if !ok {
		return
	}
	account, err := h.credit.GetAccount(c.Request.Context(), tenantID, customerID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, account)
}
