package handler

import (
	"context"

	inventoryapp "github.com/erp/ledger/internal/application/inventory"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransferHandler handles stock transfer endpoints
type TransferHandler struct {
	BaseHandler
	transfers TransferService
}

// NewTransferHandler creates a new TransferHandler
func NewTransferHandler(transfers TransferService) *TransferHandler {
	return &TransferHandler{transfers: transfers}
}

// TransferLineRequest is one requested product of a transfer
type TransferLineRequest struct {
	ProductID string          `json:"product_id" binding:"required,uuid" example:"550e8400-e29b-41d4-a716-446655440002"`
	Quantity  decimal.Decimal `json:"quantity" binding:"dgt0,dscale=4" swaggertype:"string" example:"5"`
}

// CreateTransferRequest represents a request to create a DRAFT transfer
// @Description Request body for creating a stock transfer
type CreateTransferRequest struct {
	SourceLocationID      string                `json:"source_location_id" binding:"required,uuid" example:"550e8400-e29b-41d4-a716-446655440001"`
	DestinationLocationID string                `json:"destination_location_id" binding:"required,uuid,nefield=SourceLocationID" example:"550e8400-e29b-41d4-a716-446655440003"`
	Items                 []TransferLineRequest `json:"items" binding:"required,min=1,dive"`
	Notes                 string                `json:"notes" binding:"max=500"`
}

// CancelTransferRequest represents a request to cancel a transfer
type CancelTransferRequest struct {
	Reason string `json:"reason" binding:"required,max=500" example:"Destination closed"`
}

// Create godoc
// @ID           createTransfer
// @Summary      Create a stock transfer
// @Tags         transfers
// @Accept       json
// @Produce      json
// @Param        request body CreateTransferRequest true "Transfer request"
// @Success      201 {object} APIResponse[inventoryapp.TransferResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /inventory/transfers [post]
func (h *TransferHandler) Create(c *gin.Context) {
	tenantID, userID, ok := h.identity(c)
	if !ok {
		return
	}
	var req CreateTransferRequest
	if !h.bindJSON(c, &req) {
		return
	}

	appReq := inventoryapp.CreateTransferRequest{
		SourceLocationID:      uuid.MustParse(req.SourceLocationID),
		DestinationLocationID: uuid.MustParse(req.DestinationLocationID),
		Items:                 make([]inventoryapp.TransferLineInput, 0, len(req.Items)),
		Notes:                 req.Notes,
	}
	for _, line := range req.Items {
		appReq.Items = append(appReq.Items, inventoryapp.TransferLineInput{
			ProductID: uuid.MustParse(line.ProductID),
			Quantity:  line.Quantity,
		})
	}

	transfer, err := h.transfers.Create(c.Request.Context(), tenantID, userID, appReq)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, transfer)
}

// Get godoc
// @ID           getTransfer
// @Summary      Get a stock transfer
// @Tags         transfers
// @Produce      json
// @Param        id path string true "Transfer ID" format(uuid)
// @Success      200 {object} APIResponse[inventoryapp.TransferResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /inventory/transfers/{id} [get]
func (h *TransferHandler) Get(c *gin.Context) {
	tenantID, _, ok := h.identity(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	transfer, err := h.transfers.Get(c.Request.Context(), tenantID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, transfer)
}

type transferStep func(ctx context.Context, tenantID, userID, transferID uuid.UUID) (*inventoryapp.TransferResponse, error)

func (h *TransferHandler) advance(c *gin.Context, step transferStep) {
	tenantID, userID, ok := h.identity(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	transfer, err := step(c.Request.Context(), tenantID, userID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, transfer)
}

// Submit godoc
// @ID           submitTransfer
// @Summary      Submit a draft transfer for approval
// @Tags         transfers
// @Produce      json
// @Param        id path string true "Transfer ID" format(uuid)
// @Success      200 {object} APIResponse[inventoryapp.TransferResponse]
// @Failure      409 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /inventory/transfers/{id}/submit [post]
func (h *TransferHandler) Submit(c *gin.Context) {
	h.advance(c, h.transfers.Submit)
}

// Approve godoc
// @ID           approveTransfer
// @Summary      Approve a pending transfer
// @Tags         transfers
// @Produce      json
// @Param        id path string true "Transfer ID" format(uuid)
// @Success      200 {object} APIResponse[inventoryapp.TransferResponse]
// @Failure      409 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /inventory/transfers/{id}/approve [post]
func (h *TransferHandler) Approve(c *gin.Context) {
	h.advance(c, h.transfers.Approve)
}

// Ship godoc
// @ID           shipTransfer
// @Summary      Ship an approved transfer
// @Description  Deducts the requested quantities FIFO from the source location
// @Tags         transfers
// @Produce      json
// @Param        id path string true "Transfer ID" format(uuid)
// @Success      200 {object} APIResponse[inventoryapp.TransferResponse]
// @Failure      409 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /inventory/transfers/{id}/ship [post]
func (h *TransferHandler) Ship(c *gin.Context) {
	h.advance(c, h.transfers.Ship)
}

// Receive godoc
// @ID           receiveTransfer
// @Summary      Receive a shipped transfer
// @Description  Credits the shipped batches at the destination location
// @Tags         transfers
// @Produce      json
// @Param        id path string true "Transfer ID" format(uuid)
// @Success      200 {object} APIResponse[inventoryapp.TransferResponse]
// @Failure      409 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /inventory/transfers/{id}/receive [post]
func (h *TransferHandler) Receive(c *gin.Context) {
	h.advance(c, h.transfers.Receive)
}

// Cancel godoc
// @ID           cancelTransfer
// @Summary      Cancel a transfer
// @Description  Shipped transfers are restocked at the source
// @Tags         transfers
// @Accept       json
// @Produce      json
// @Param        id path string true "Transfer ID" format(uuid)
// @Param        request body CancelTransferRequest true "Cancel reason"
// @Success      200 {object} APIResponse[inventoryapp.TransferResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /inventory/transfers/{id}/cancel [post]
func (h *TransferHandler) Cancel(c *gin.Context) {
	tenantID, userID, ok := h.identity(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req CancelTransferRequest
	if !h.bindJSON(c, &req) {
		return
	}
	transfer, err := h.transfers.Cancel(c.Request.Context(), tenantID, userID, id, inventoryapp.CancelTransferRequest{Reason: req.Reason})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, transfer)
}
