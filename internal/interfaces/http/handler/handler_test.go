package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	financeapp "github.com/erp/ledger/internal/application/finance"
	inventoryapp "github.com/erp/ledger/internal/application/inventory"
	tradeapp "github.com/erp/ledger/internal/application/trade"
	"github.com/erp/ledger/internal/domain/shared"
	"github.com/erp/ledger/internal/interfaces/http/dto"
	"github.com/erp/ledger/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()
}

var (
	testTenantID = uuid.MustParse("11111111-1111-1111-1111-111111111111")
	testUserID   = uuid.MustParse("22222222-2222-2222-2222-222222222222")
)

func newTestEngine() *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Identity(middleware.IdentityConfig{AllowHeaders: true}))
	return r
}

func doJSON(r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			_ = json.NewEncoder(&buf).Encode(b)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(middleware.TenantIDHeader, testTenantID.String())
	req.Header.Set(middleware.UserIDHeader, testUserID.String())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	body := decodeResponse(t, w)
	errInfo, ok := body["error"].(map[string]any)
	require.True(t, ok, "response has no error: %s", w.Body.String())
	return errInfo["code"].(string)
}

type mockSaleService struct {
	mock.Mock
}

func (m *mockSaleService) ProcessSale(ctx context.Context, tenantID, userID uuid.UUID, req tradeapp.ProcessSaleRequest) (*tradeapp.SaleResponse, error) {
	args := m.Called(ctx, tenantID, userID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tradeapp.SaleResponse), args.Error(1)
}

func (m *mockSaleService) GetSale(ctx context.Context, tenantID, saleID uuid.UUID) (*tradeapp.SaleResponse, error) {
	args := m.Called(ctx, tenantID, saleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tradeapp.SaleResponse), args.Error(1)
}

func saleEngine(svc SaleService) *gin.Engine {
	r := newTestEngine()
	h := NewSaleHandler(svc)
	r.POST("/trade/sales", h.Create)
	r.GET("/trade/sales/:id", h.Get)
	return r
}

func TestSaleHandler_Create(t *testing.T) {
	locationID, productID := uuid.New(), uuid.New()
	body := map[string]any{
		"location_id":    locationID.String(),
		"payment_method": "CASH",
		"amount_paid":    "50",
		"items": []map[string]any{
			{"product_id": productID.String(), "quantity": "2", "discount": "0"},
		},
	}

	t.Run("books the sale", func(t *testing.T) {
		svc := new(mockSaleService)
		svc.On("ProcessSale", mock.Anything, testTenantID, testUserID, mock.MatchedBy(func(req tradeapp.ProcessSaleRequest) bool {
			return req.LocationID == locationID &&
				len(req.Items) == 1 &&
				req.Items[0].ProductID == productID &&
				req.Items[0].Quantity.Equal(decimal.NewFromInt(2)) &&
				req.Items[0].UnitPrice == nil &&
				req.AmountPaid.Equal(decimal.NewFromInt(50)) &&
				req.CustomerID == nil
		})).Return(&tradeapp.SaleResponse{ID: uuid.New(), SaleNumber: "SO-20261018-0001"}, nil)

		w := doJSON(saleEngine(svc), http.MethodPost, "/trade/sales", body)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		data := decodeResponse(t, w)["data"].(map[string]any)
		assert.Equal(t, "SO-20261018-0001", data["sale_number"])
		svc.AssertExpectations(t)
	})

	t.Run("insufficient stock maps to 422", func(t *testing.T) {
		svc := new(mockSaleService)
		svc.On("ProcessSale", mock.Anything, testTenantID, testUserID, mock.Anything).
			Return(nil, shared.InsufficientStock("Widget", decimal.NewFromInt(1)))

		w := doJSON(saleEngine(svc), http.MethodPost, "/trade/sales", body)
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Equal(t, dto.ErrCodeInsufficientStock, errorCode(t, w))
	})

	t.Run("concurrent modification maps to 409", func(t *testing.T) {
		svc := new(mockSaleService)
		svc.On("ProcessSale", mock.Anything, testTenantID, testUserID, mock.Anything).
			Return(nil, fmt.Errorf("consume: %w", shared.ErrConcurrentModification))

		w := doJSON(saleEngine(svc), http.MethodPost, "/trade/sales", body)
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, dto.ErrCodeConcurrentModification, errorCode(t, w))
	})

	t.Run("rejects non-positive quantity", func(t *testing.T) {
		svc := new(mockSaleService)
		bad := map[string]any{
			"location_id":    locationID.String(),
			"payment_method": "CASH",
			"items":          []map[string]any{{"product_id": productID.String(), "quantity": "0"}},
		}
		w := doJSON(saleEngine(svc), http.MethodPost, "/trade/sales", bad)
		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, dto.ErrCodeValidation, errorCode(t, w))
		assert.Contains(t, w.Body.String(), "items[0].quantity")
		svc.AssertNotCalled(t, "ProcessSale", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("rejects unknown payment method", func(t *testing.T) {
		bad := map[string]any{
			"location_id":    locationID.String(),
			"payment_method": "BARTER",
			"items":          []map[string]any{{"product_id": productID.String(), "quantity": "1"}},
		}
		w := doJSON(saleEngine(new(mockSaleService)), http.MethodPost, "/trade/sales", bad)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "payment_method")
	})

	t.Run("malformed body", func(t *testing.T) {
		w := doJSON(saleEngine(new(mockSaleService)), http.MethodPost, "/trade/sales", `{"items":`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, dto.ErrCodeBadRequest, errorCode(t, w))
	})

	t.Run("unknown error is internal", func(t *testing.T) {
		svc := new(mockSaleService)
		svc.On("ProcessSale", mock.Anything, testTenantID, testUserID, mock.Anything).
			Return(nil, errors.New("connection reset"))

		w := doJSON(saleEngine(svc), http.MethodPost, "/trade/sales", body)
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.NotContains(t, w.Body.String(), "connection reset")
	})

	t.Run("escaped deadline is a timeout", func(t *testing.T) {
		svc := new(mockSaleService)
		svc.On("ProcessSale", mock.Anything, testTenantID, testUserID, mock.Anything).
			Return(nil, context.DeadlineExceeded)

		w := doJSON(saleEngine(svc), http.MethodPost, "/trade/sales", body)
		assert.Equal(t, http.StatusGatewayTimeout, w.Code)
		assert.Equal(t, dto.ErrCodeTransactionTimeout, errorCode(t, w))
	})
}

func TestSaleHandler_Get(t *testing.T) {
	saleID := uuid.New()
	svc := new(mockSaleService)
	svc.On("GetSale", mock.Anything, testTenantID, saleID).Return(&tradeapp.SaleResponse{ID: saleID}, nil)
	svc.On("GetSale", mock.Anything, testTenantID, mock.Anything).Return(nil, shared.ErrNotFound)
	r := saleEngine(svc)

	w := doJSON(r, http.MethodGet, "/trade/sales/"+saleID.String(), nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(r, http.MethodGet, "/trade/sales/"+uuid.NewString(), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(r, http.MethodGet, "/trade/sales/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSaleHandler_RequiresIdentity(t *testing.T) {
	r := saleEngine(new(mockSaleService))
	req := httptest.NewRequest(http.MethodGet, "/trade/sales/"+uuid.NewString(), nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

type mockTransferService struct {
	mock.Mock
}

func (m *mockTransferService) result(args mock.Arguments) (*inventoryapp.TransferResponse, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inventoryapp.TransferResponse), args.Error(1)
}

func (m *mockTransferService) Create(ctx context.Context, tenantID, userID uuid.UUID, req inventoryapp.CreateTransferRequest) (*inventoryapp.TransferResponse, error) {
	return m.result(m.Called(ctx, tenantID, userID, req))
}

func (m *mockTransferService) Submit(ctx context.Context, tenantID, userID, id uuid.UUID) (*inventoryapp.TransferResponse, error) {
	return m.result(m.Called(ctx, tenantID, userID, id))
}

func (m *mockTransferService) Approve(ctx context.Context, tenantID, userID, id uuid.UUID) (*inventoryapp.TransferResponse, error) {
	return m.result(m.Called(ctx, tenantID, userID, id))
}

func (m *mockTransferService) Ship(ctx context.Context, tenantID, userID, id uuid.UUID) (*inventoryapp.TransferResponse, error) {
	return m.result(m.Called(ctx, tenantID, userID, id))
}

func (m *mockTransferService) Receive(ctx context.Context, tenantID, userID, id uuid.UUID) (*inventoryapp.TransferResponse, error) {
	return m.result(m.Called(ctx, tenantID, userID, id))
}

func (m *mockTransferService) Cancel(ctx context.Context, tenantID, userID, id uuid.UUID, req inventoryapp.CancelTransferRequest) (*inventoryapp.TransferResponse, error) {
	return m.result(m.Called(ctx, tenantID, userID, id, req))
}

func (m *mockTransferService) Get(ctx context.Context, tenantID, id uuid.UUID) (*inventoryapp.TransferResponse, error) {
	return m.result(m.Called(ctx, tenantID, id))
}

func transferEngine(svc TransferService) *gin.Engine {
	r := newTestEngine()
	h := NewTransferHandler(svc)
	r.POST("/inventory/transfers", h.Create)
	r.GET("/inventory/transfers/:id", h.Get)
	r.POST("/inventory/transfers/:id/submit", h.Submit)
	r.POST("/inventory/transfers/:id/approve", h.Approve)
	r.POST("/inventory/transfers/:id/ship", h.Ship)
	r.POST("/inventory/transfers/:id/receive", h.Receive)
	r.POST("/inventory/transfers/:id/cancel", h.Cancel)
	return r
}

func TestTransferHandler(t *testing.T) {
	transferID := uuid.New()

	t.Run("create rejects same source and destination", func(t *testing.T) {
		loc := uuid.NewString()
		w := doJSON(transferEngine(new(mockTransferService)), http.MethodPost, "/inventory/transfers", map[string]any{
			"source_location_id":      loc,
			"destination_location_id": loc,
			"items":                   []map[string]any{{"product_id": uuid.NewString(), "quantity": "1"}},
		})
		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "destination_location_id")
	})

	t.Run("create", func(t *testing.T) {
		svc := new(mockTransferService)
		src, dst := uuid.New(), uuid.New()
		svc.On("Create", mock.Anything, testTenantID, testUserID, mock.MatchedBy(func(req inventoryapp.CreateTransferRequest) bool {
			return req.SourceLocationID == src && req.DestinationLocationID == dst && len(req.Items) == 1
		})).Return(&inventoryapp.TransferResponse{ID: transferID, Status: "DRAFT"}, nil)

		w := doJSON(transferEngine(svc), http.MethodPost, "/inventory/transfers", map[string]any{
			"source_location_id":      src.String(),
			"destination_location_id": dst.String(),
			"items":                   []map[string]any{{"product_id": uuid.NewString(), "quantity": "3.5"}},
		})
		assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		svc.AssertExpectations(t)
	})

	steps := []struct {
		action string
		status string
	}{
		{"submit", "PENDING"},
		{"approve", "APPROVED"},
		{"ship", "IN_TRANSIT"},
		{"receive", "RECEIVED"},
	}
	for _, step := range steps {
		t.Run(step.action, func(t *testing.T) {
			svc := new(mockTransferService)
			method := map[string]string{"submit": "Submit", "approve": "Approve", "ship": "Ship", "receive": "Receive"}[step.action]
			svc.On(method, mock.Anything, testTenantID, testUserID, transferID).
				Return(&inventoryapp.TransferResponse{ID: transferID, Status: step.status}, nil)

			w := doJSON(transferEngine(svc), http.MethodPost, "/inventory/transfers/"+transferID.String()+"/"+step.action, nil)
			require.Equal(t, http.StatusOK, w.Code, w.Body.String())
			data := decodeResponse(t, w)["data"].(map[string]any)
			assert.Equal(t, step.status, data["status"])
		})
	}

	t.Run("invalid transition maps to 422", func(t *testing.T) {
		svc := new(mockTransferService)
		svc.On("Ship", mock.Anything, testTenantID, testUserID, transferID).
			Return(nil, shared.InvalidTransition("transfer", "DRAFT", "IN_TRANSIT"))

		w := doJSON(transferEngine(svc), http.MethodPost, "/inventory/transfers/"+transferID.String()+"/ship", nil)
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Equal(t, dto.ErrCodeInvalidStatusTransition, errorCode(t, w))
	})

	t.Run("cancel requires a reason", func(t *testing.T) {
		w := doJSON(transferEngine(new(mockTransferService)), http.MethodPost, "/inventory/transfers/"+transferID.String()+"/cancel", map[string]any{})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("cancel", func(t *testing.T) {
		svc := new(mockTransferService)
		svc.On("Cancel", mock.Anything, testTenantID, testUserID, transferID, inventoryapp.CancelTransferRequest{Reason: "closed"}).
			Return(&inventoryapp.TransferResponse{ID: transferID, Status: "CANCELLED"}, nil)

		w := doJSON(transferEngine(svc), http.MethodPost, "/inventory/transfers/"+transferID.String()+"/cancel", map[string]any{"reason": "closed"})
		assert.Equal(t, http.StatusOK, w.Code)
		svc.AssertExpectations(t)
	})
}

type mockAlertService struct {
	mock.Mock
}

func (m *mockAlertService) Scan(ctx context.Context, tenantID uuid.UUID) (*inventoryapp.ScanResult, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inventoryapp.ScanResult), args.Error(1)
}

func (m *mockAlertService) Snooze(ctx context.Context, tenantID, userID, alertID uuid.UUID, req inventoryapp.SnoozeAlertRequest) (*inventoryapp.AlertResponse, error) {
	args := m.Called(ctx, tenantID, userID, alertID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inventoryapp.AlertResponse), args.Error(1)
}

func (m *mockAlertService) List(ctx context.Context, tenantID uuid.UUID, filter inventoryapp.AlertListFilter) ([]inventoryapp.AlertResponse, int64, error) {
	args := m.Called(ctx, tenantID, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]inventoryapp.AlertResponse), args.Get(1).(int64), args.Error(2)
}

func alertEngine(svc AlertService) *gin.Engine {
	r := newTestEngine()
	h := NewAlertHandler(svc)
	r.GET("/inventory/alerts", h.List)
	r.POST("/inventory/alerts/scan", h.Scan)
	r.POST("/inventory/alerts/:id/snooze", h.Snooze)
	return r
}

func TestAlertHandler(t *testing.T) {
	t.Run("list applies paging defaults", func(t *testing.T) {
		svc := new(mockAlertService)
		productID := uuid.New()
		svc.On("List", mock.Anything, testTenantID, mock.MatchedBy(func(f inventoryapp.AlertListFilter) bool {
			return f.Status == "ACTIVE" && f.Page == 1 && f.PageSize == 20 &&
				f.ProductID != nil && *f.ProductID == productID && f.LocationID == nil
		})).Return([]inventoryapp.AlertResponse{{ID: uuid.New(), AlertType: "LOW_STOCK"}}, int64(45), nil)

		w := doJSON(alertEngine(svc), http.MethodGet, "/inventory/alerts?status=ACTIVE&product_id="+productID.String(), nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		meta := decodeResponse(t, w)["meta"].(map[string]any)
		assert.Equal(t, float64(45), meta["total"])
		assert.Equal(t, float64(3), meta["total_pages"])
		svc.AssertExpectations(t)
	})

	t.Run("list rejects unknown status", func(t *testing.T) {
		w := doJSON(alertEngine(new(mockAlertService)), http.MethodGet, "/inventory/alerts?status=LOUD", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("snooze", func(t *testing.T) {
		svc := new(mockAlertService)
		alertID := uuid.New()
		until := time.Date(2026, 11, 1, 9, 0, 0, 0, time.UTC)
		svc.On("Snooze", mock.Anything, testTenantID, testUserID, alertID, mock.MatchedBy(func(req inventoryapp.SnoozeAlertRequest) bool {
			return req.Until.Equal(until)
		})).Return(&inventoryapp.AlertResponse{ID: alertID, Status: "SNOOZED", SnoozedUntil: &until}, nil)

		w := doJSON(alertEngine(svc), http.MethodPost, "/inventory/alerts/"+alertID.String()+"/snooze", map[string]any{"until": until.Format(time.RFC3339)})
		assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
		svc.AssertExpectations(t)
	})

	t.Run("snooze requires until", func(t *testing.T) {
		w := doJSON(alertEngine(new(mockAlertService)), http.MethodPost, "/inventory/alerts/"+uuid.NewString()+"/snooze", map[string]any{})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("scan", func(t *testing.T) {
		svc := new(mockAlertService)
		svc.On("Scan", mock.Anything, testTenantID).Return(&inventoryapp.ScanResult{TenantID: testTenantID, Created: 2}, nil)

		w := doJSON(alertEngine(svc), http.MethodPost, "/inventory/alerts/scan", nil)
		require.Equal(t, http.StatusOK, w.Code)
		data := decodeResponse(t, w)["data"].(map[string]any)
		assert.Equal(t, float64(2), data["created"])
	})
}

type mockDrawerService struct {
	mock.Mock
}

func (m *mockDrawerService) drawer(args mock.Arguments) (*financeapp.CashDrawerResponse, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*financeapp.CashDrawerResponse), args.Error(1)
}

func (m *mockDrawerService) Open(ctx context.Context, tenantID, userID uuid.UUID, req financeapp.OpenDrawerRequest) (*financeapp.CashDrawerResponse, error) {
	return m.drawer(m.Called(ctx, tenantID, userID, req))
}

func (m *mockDrawerService) Close(ctx context.Context, tenantID, userID, drawerID uuid.UUID, req financeapp.CloseDrawerRequest) (*financeapp.CashDrawerResponse, error) {
	return m.drawer(m.Called(ctx, tenantID, userID, drawerID, req))
}

func (m *mockDrawerService) RecordMovement(ctx context.Context, tenantID, userID, drawerID uuid.UUID, req financeapp.DrawerMovementRequest) (*financeapp.CashTransactionResponse, error) {
	args := m.Called(ctx, tenantID, userID, drawerID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*financeapp.CashTransactionResponse), args.Error(1)
}

func (m *mockDrawerService) Get(ctx context.Context, tenantID, drawerID uuid.UUID) (*financeapp.CashDrawerResponse, error) {
	return m.drawer(m.Called(ctx, tenantID, drawerID))
}

func TestCashDrawerHandler(t *testing.T) {
	newEngine := func(svc CashDrawerService) *gin.Engine {
		r := newTestEngine()
		h := NewCashDrawerHandler(svc)
		r.POST("/finance/cash-drawers", h.Open)
		r.POST("/finance/cash-drawers/:id/close", h.Close)
		r.POST("/finance/cash-drawers/:id/movements", h.RecordMovement)
		return r
	}

	t.Run("second open conflicts", func(t *testing.T) {
		svc := new(mockDrawerService)
		svc.On("Open", mock.Anything, testTenantID, testUserID, mock.Anything).Return(nil, shared.ErrCashDrawerAlreadyOpen)

		w := doJSON(newEngine(svc), http.MethodPost, "/finance/cash-drawers", map[string]any{
			"location_id":     uuid.NewString(),
			"opening_balance": "100",
		})
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, dto.ErrCodeCashDrawerAlreadyOpen, errorCode(t, w))
	})

	t.Run("close passes the counted amount", func(t *testing.T) {
		svc := new(mockDrawerService)
		drawerID := uuid.New()
		svc.On("Close", mock.Anything, testTenantID, testUserID, drawerID, mock.MatchedBy(func(req financeapp.CloseDrawerRequest) bool {
			return req.ActualCounted.Equal(decimal.RequireFromString("451.5"))
		})).Return(&financeapp.CashDrawerResponse{ID: drawerID, Status: "CLOSED"}, nil)

		w := doJSON(newEngine(svc), http.MethodPost, "/finance/cash-drawers/"+drawerID.String()+"/close", map[string]any{"actual_counted": "451.50"})
		assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
		svc.AssertExpectations(t)
	})

	t.Run("movement type is validated", func(t *testing.T) {
		w := doJSON(newEngine(new(mockDrawerService)), http.MethodPost, "/finance/cash-drawers/"+uuid.NewString()+"/movements", map[string]any{
			"type":   "REFUND",
			"amount": "10",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

type stubPinger struct{ err error }

func (p stubPinger) Ping(context.Context) error { return p.err }

func TestSystemHandler_Health(t *testing.T) {
	serve := func(checks map[string]Pinger) *httptest.ResponseRecorder {
		r := gin.New()
		r.GET("/health", NewSystemHandler("inventory-ledger", "test", checks).Health)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
		return w
	}

	w := serve(map[string]Pinger{"database": stubPinger{}})
	assert.Equal(t, http.StatusOK, w.Code)

	w = serve(map[string]Pinger{"database": stubPinger{}, "redis": stubPinger{err: errors.New("dial tcp: refused")}})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	data := decodeResponse(t, w)["data"].(map[string]any)
	assert.Equal(t, "degraded", data["status"])
}
