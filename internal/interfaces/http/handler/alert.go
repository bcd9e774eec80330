package handler

import (
	"time"

	inventoryapp "github.com/erp/ledger/internal/application/inventory"
	"github.com/erp/ledger/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// AlertHandler handles stock alert endpoints
type AlertHandler struct {
	BaseHandler
	alerts AlertService
}

// NewAlertHandler creates a new AlertHandler
func NewAlertHandler(alerts AlertService) *AlertHandler {
	return &AlertHandler{alerts: alerts}
}

// AlertListQuery holds the alert listing query parameters
type AlertListQuery struct {
	Status     string `form:"status" binding:"omitempty,oneof=ACTIVE SNOOZED RESOLVED"`
	AlertType  string `form:"alert_type" binding:"omitempty,oneof=LOW_STOCK OUT_OF_STOCK EXPIRING_SOON"`
	ProductID  string `form:"product_id" binding:"omitempty,uuid"`
	LocationID string `form:"location_id" binding:"omitempty,uuid"`
	Page       int    `form:"page" binding:"omitempty,min=1"`
	PageSize   int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy    string `form:"order_by" binding:"omitempty,oneof=created_at updated_at current_quantity"`
	OrderDir   string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// SnoozeAlertRequest represents a request to snooze an alert
type SnoozeAlertRequest struct {
	Until time.Time `json:"until" binding:"required" example:"2026-11-01T09:00:00Z"`
}

// List godoc
// @ID           listAlerts
// @Summary      List stock alerts
// @Tags         alerts
// @Produce      json
// @Param        status query string false "Alert status" Enums(ACTIVE, SNOOZED, RESOLVED)
// @Param        alert_type query string false "Alert type" Enums(LOW_STOCK, OUT_OF_STOCK, EXPIRING_SOON)
// @Param        product_id query string false "Product ID" format(uuid)
// @Param        location_id query string false "Location ID" format(uuid)
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Param        order_by query string false "Sort field" Enums(created_at, updated_at, current_quantity)
// @Param        order_dir query string false "Sort direction" Enums(asc, desc)
// @Success      200 {object} APIResponse[[]inventoryapp.AlertResponse]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /inventory/alerts [get]
func (h *AlertHandler) List(c *gin.Context) {
	tenantID, _, ok := h.identity(c)
	if !ok {
		return
	}
	var q AlertListQuery
	if !h.bindQuery(c, &q) {
		return
	}
	if q.Page == 0 {
		q.Page = dto.DefaultPage
	}
	if q.PageSize == 0 {
		q.PageSize = dto.DefaultPageSize
	}

	alerts, total, err := h.alerts.List(c.Request.Context(), tenantID, inventoryapp.AlertListFilter{
		Status:     q.Status,
		AlertType:  q.AlertType,
		ProductID:  parseOptionalUUID(&q.ProductID),
		LocationID: parseOptionalUUID(&q.LocationID),
		Page:       q.Page,
		PageSize:   q.PageSize,
		OrderBy:    q.OrderBy,
		OrderDir:   q.OrderDir,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, alerts, total, q.Page, q.PageSize)
}

// Snooze godoc
// @ID           snoozeAlert
// @Summary      Snooze an alert
// @Description  The alert stays quiet until the given time; the next scan after that wakes it
// @Tags         alerts
// @Accept       json
// @Produce      json
// @Param        id path string true "Alert ID" format(uuid)
// @Param        request body SnoozeAlertRequest true "Snooze until"
// @Success      200 {object} APIResponse[inventoryapp.AlertResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /inventory/alerts/{id}/snooze [post]
func (h *AlertHandler) Snooze(c *gin.Context) {
	tenantID, userID, ok := h.identity(c)
	if !ok {
		return
	}
	alertID, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req SnoozeAlertRequest
	if !h.bindJSON(c, &req) {
		return
	}

	alert, err := h.alerts.Snooze(c.Request.Context(), tenantID, userID, alertID, inventoryapp.SnoozeAlertRequest{Until: req.Until})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, alert)
}

// Scan godoc
// @ID           scanAlerts
// @Summary      Run an alert scan for the tenant
// @Description  Skipped when another scan for the tenant holds the lease
// @Tags         alerts
// @Produce      json
// @Success      200 {object} APIResponse[inventoryapp.ScanResult]
// @Failure      504 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /inventory/alerts/scan [post]
func (h *AlertHandler) Scan(c *gin.Context) {
	tenantID, _, ok := h.identity(c)
	if !ok {
		return
	}
	result, err := h.alerts.Scan(c.Request.Context(), tenantID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}
