package handler

import (
	financeapp "github.com/erp/ledger/internal/application/finance"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CashDrawerHandler handles cash session endpoints
type CashDrawerHandler struct {
	BaseHandler
	drawers CashDrawerService
}

// NewCashDrawerHandler creates a new CashDrawerHandler
func NewCashDrawerHandler(drawers CashDrawerService) *CashDrawerHandler {
	return &CashDrawerHandler{drawers: drawers}
}

// OpenDrawerRequest represents a request to open a cash drawer
type OpenDrawerRequest struct {
	LocationID     string          `json:"location_id" binding:"required,uuid" example:"550e8400-e29b-41d4-a716-446655440001"`
	OpeningBalance decimal.Decimal `json:"opening_balance" binding:"dgte0,dscale=4" swaggertype:"string" example:"200"`
}

// CloseDrawerRequest represents the counted cash at closing
type CloseDrawerRequest struct {
	ActualCounted decimal.Decimal `json:"actual_counted" binding:"dgte0,dscale=4" swaggertype:"string" example:"451.50"`
	Notes         string          `json:"notes" binding:"max=500"`
}

// DrawerMovementRequest represents cash added to or removed from a drawer
type DrawerMovementRequest struct {
	Type   string          `json:"type" binding:"required,oneof=CASH_IN CASH_OUT" example:"CASH_OUT"`
	Amount decimal.Decimal `json:"amount" binding:"dgt0,dscale=4" swaggertype:"string" example:"50"`
	Note   string          `json:"note" binding:"max=500" example:"Bank deposit"`
}

// Open godoc
// @ID           openCashDrawer
// @Summary      Open a cash drawer
// @Tags         cash-drawers
// @Accept       json
// @Produce      json
// @Param        request body OpenDrawerRequest true "Opening balance"
// @Success      201 {object} APIResponse[financeapp.CashDrawerResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /finance/cash-drawers [post]
func (h *CashDrawerHandler) Open(c *gin.Context) {
	tenantID, userID, ok := h.identity(c)
	if !ok {
		return
	}
	var req OpenDrawerRequest
	if !h.bindJSON(c, &req) {
		return
	}
	drawer, err := h.drawers.Open(c.Request.Context(), tenantID, userID, financeapp.OpenDrawerRequest{
		LocationID:     uuid.MustParse(req.LocationID),
		OpeningBalance: req.OpeningBalance,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, drawer)
}

// Close godoc
// @ID           closeCashDrawer
// @Summary      Close a cash drawer
// @Description  Records the counted cash and the discrepancy against the expected balance
// @Tags         cash-drawers
// @Accept       json
// @Produce      json
// @Param        id path string true "Drawer ID" format(uuid)
// @Param        request body CloseDrawerRequest true "Counted cash"
// @Success      200 {object} APIResponse[financeapp.CashDrawerResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /finance/cash-drawers/{id}/close [post]
func (h *CashDrawerHandler) Close(c *gin.Context) {
	tenantID, userID, ok := h.identity(c)
	if !ok {
		return
	}
	drawerID, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req CloseDrawerRequest
	if !h.bindJSON(c, &req) {
		return
	}
	drawer, err := h.drawers.Close(c.Request.Context(), tenantID, userID, drawerID, financeapp.CloseDrawerRequest{
		ActualCounted: req.ActualCounted,
		Notes:         req.Notes,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, drawer)
}

// RecordMovement godoc
// @ID           recordDrawerMovement
// @Summary      Add or remove cash
// @Tags         cash-drawers
// @Accept       json
// @Produce      json
// @Param        id path string true "Drawer ID" format(uuid)
// @Param        request body DrawerMovementRequest true "Movement"
// @Success      201 {object} APIResponse[financeapp.CashTransactionResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /finance/cash-drawers/{id}/movements [post]
func (h *CashDrawerHandler) RecordMovement(c *gin.Context) {
	tenantID, userID, ok := h.identity(c)
	if !ok {
		return
	}
	drawerID, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req DrawerMovementRequest
	if !h.bindJSON(c, &req) {
		return
	}
	tx, err := h.drawers.RecordMovement(c.Request.Context(), tenantID, userID, drawerID, financeapp.DrawerMovementRequest{
		Type:   req.Type,
		Amount: req.Amount,
		Note:   req.Note,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, tx)
}

// Get godoc
// @ID           getCashDrawer
// @Summary      Get a cash drawer
// @Tags         cash-drawers
// @Produce      json
// @Param        id path string true "Drawer ID" format(uuid)
// @Success      200 {object} APIResponse[financeapp.CashDrawerResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /finance/cash-drawers/{id} [get]
func (h *CashDrawerHandler) Get(c *gin.Context) {
	tenantID, _, ok := h.identity(c)
	if !ok {
		return
	}
	drawerID, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	drawer, err := h.drawers.Get(c.Request.Context(), tenantID, drawerID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, drawer)
}
