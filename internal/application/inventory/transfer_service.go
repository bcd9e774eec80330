package inventory

import (
	"context"
	"time"

	"github.com/erp/ledger/internal/application/ledger"
	"github.com/erp/ledger/internal/domain/audit"
	"github.com/erp/ledger/internal/domain/inventory"
	"github.com/erp/ledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const entityTransfer = "StockTransfer"

// TransferService moves stock between locations. Stock is deducted from the
// source when the transfer ships and credited at the destination, under the
// same batch keys, when it is received.
type TransferService struct {
	exec  *ledger.Executor
	stock *inventory.StockLedger
}

// NewTransferService creates a new TransferService
func NewTransferService(exec *ledger.Executor, stock *inventory.StockLedger) *TransferService {
	if stock == nil {
		stock = inventory.NewStockLedger(nil)
	}
	return &TransferService{exec: exec, stock: stock}
}

// Create records a DRAFT transfer after a soft availability check at the
// source. Ship re-checks availability.
func (s *TransferService) Create(ctx context.Context, tenantID, userID uuid.UUID, req CreateTransferRequest) (*TransferResponse, error) {
	lines := make([]inventory.TransferLine, 0, len(req.Items))
	for _, item := range req.Items {
		lines = append(lines, inventory.TransferLine{ProductID: item.ProductID, Quantity: item.Quantity})
	}
	transfer, err := inventory.NewStockTransfer(tenantID, req.SourceLocationID, req.DestinationLocationID, lines, req.Notes)
	if err != nil {
		return nil, err
	}
	transfer.SetCreatedBy(userID)

	err = s.exec.Run(ctx, tenantID, "transfer.create", func(ctx context.Context, repos ledger.Repositories) error {
		if err := s.checkAvailability(ctx, repos, transfer); err != nil {
			return err
		}
		number, err := repos.Transfers().NextNumber(ctx, tenantID, time.Now())
		if err != nil {
			return err
		}
		transfer.TransferNumber = number
		if err := repos.Transfers().Create(ctx, transfer); err != nil {
			return err
		}
		return s.audit(ctx, repos, transfer, userID, audit.ActionTransferCreated, nil)
	})
	if err != nil {
		return nil, err
	}
	return ToTransferResponse(transfer), nil
}

func (s *TransferService) checkAvailability(ctx context.Context, repos ledger.Repositories, transfer *inventory.StockTransfer) error {
	ids := make([]uuid.UUID, 0, len(transfer.Items))
	for _, item := range transfer.Items {
		ids = append(ids, item.ProductID)
	}
	products, err := repos.Products().FindByIDs(ctx, transfer.TenantID, ids)
	if err != nil {
		return err
	}
	for _, item := range transfer.Items {
		product, ok := products[item.ProductID]
		if !ok {
			return shared.Errorf(shared.CodeNotFound, "Product %s not found", item.ProductID)
		}
		available, err := s.stock.Available(ctx, repos.Batches(), transfer.TenantID, item.ProductID, transfer.SourceLocationID)
		if err != nil {
			return err
		}
		if available.LessThan(item.RequestedQuantity) {
			return shared.InsufficientStock(product.Name, available)
		}
	}
	return nil
}

// Submit moves DRAFT to PENDING
func (s *TransferService) Submit(ctx context.Context, tenantID, userID, transferID uuid.UUID) (*TransferResponse, error) {
	return s.transition(ctx, tenantID, userID, transferID, "transfer.submit", audit.ActionTransferSubmitted,
		func(ctx context.Context, repos ledger.Repositories, t *inventory.StockTransfer) error {
			return t.Submit()
		})
}

// Approve moves PENDING to APPROVED
func (s *TransferService) Approve(ctx context.Context, tenantID, userID, transferID uuid.UUID) (*TransferResponse, error) {
	return s.transition(ctx, tenantID, userID, transferID, "transfer.approve", audit.ActionTransferApproved,
		func(ctx context.Context, repos ledger.Repositories, t *inventory.StockTransfer) error {
			return t.Approve()
		})
}

// Ship consumes every item's requested quantity at the source in FIFO order
// and records the batch keys taken.
func (s *TransferService) Ship(ctx context.Context, tenantID, userID, transferID uuid.UUID) (*TransferResponse, error) {
	resp, err := s.transition(ctx, tenantID, userID, transferID, "transfer.ship", audit.ActionTransferShipped,
		func(ctx context.Context, repos ledger.Repositories, t *inventory.StockTransfer) error {
			if !t.Status.CanTransitionTo(inventory.TransferStatusInTransit) {
				return shared.InvalidTransition("transfer", string(t.Status), string(inventory.TransferStatusInTransit))
			}
			takes := make(map[uuid.UUID][]inventory.BatchConsumption, len(t.Items))
			for _, item := range t.Items {
				consumed, err := s.stock.Consume(ctx, repos.Batches(), tenantID, item.ProductID, t.SourceLocationID, item.RequestedQuantity)
				if err != nil {
					return err
				}
				takes[item.ID] = consumed
			}
			return t.Ship(takes)
		})
	if err != nil {
		return nil, err
	}
	s.publishMoved(ctx, tenantID, resp, "transfer_shipped", resp.SourceLocationID)
	return resp, nil
}

// Receive credits the shipped batch keys at the destination
func (s *TransferService) Receive(ctx context.Context, tenantID, userID, transferID uuid.UUID) (*TransferResponse, error) {
	resp, err := s.transition(ctx, tenantID, userID, transferID, "transfer.receive", audit.ActionTransferReceived,
		func(ctx context.Context, repos ledger.Repositories, t *inventory.StockTransfer) error {
			if err := t.Receive(); err != nil {
				return err
			}
			return s.creditBatches(ctx, repos, t, t.DestinationLocationID)
		})
	if err != nil {
		return nil, err
	}
	s.publishMoved(ctx, tenantID, resp, "transfer_received", resp.DestinationLocationID)
	return resp, nil
}

// Cancel cancels a non-terminal transfer. A transfer already in transit has
// its shipped batches restored at the source.
func (s *TransferService) Cancel(ctx context.Context, tenantID, userID, transferID uuid.UUID, req CancelTransferRequest) (*TransferResponse, error) {
	restocked := false
	resp, err := s.transition(ctx, tenantID, userID, transferID, "transfer.cancel", audit.ActionTransferCancelled,
		func(ctx context.Context, repos ledger.Repositories, t *inventory.StockTransfer) error {
			restock, err := t.Cancel(req.Reason)
			if err != nil {
				return err
			}
			if !restock {
				return nil
			}
			restocked = true
			return s.creditBatches(ctx, repos, t, t.SourceLocationID)
		})
	if err != nil {
		return nil, err
	}
	if restocked {
		s.publishMoved(ctx, tenantID, resp, "transfer_cancelled", resp.SourceLocationID)
	}
	return resp, nil
}

// Get returns a transfer
func (s *TransferService) Get(ctx context.Context, tenantID, transferID uuid.UUID) (*TransferResponse, error) {
	var resp *TransferResponse
	err := s.exec.Query(ctx, func(ctx context.Context, repos ledger.Repositories) error {
		t, err := repos.Transfers().FindByID(ctx, tenantID, transferID)
		if err != nil {
			return err
		}
		resp = ToTransferResponse(t)
		return nil
	})
	return resp, err
}

func (s *TransferService) creditBatches(ctx context.Context, repos ledger.Repositories, t *inventory.StockTransfer, locationID uuid.UUID) error {
	for _, item := range t.Items {
		for _, b := range item.Batches {
			key := inventory.NewBatchKey(item.ProductID, locationID, b.ExpirationDate)
			if err := s.stock.Credit(ctx, repos.Batches(), t.TenantID, key, b.ManufacturingDate, b.Quantity); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *TransferService) transition(
	ctx context.Context,
	tenantID, userID, transferID uuid.UUID,
	operation, action string,
	apply func(ctx context.Context, repos ledger.Repositories, t *inventory.StockTransfer) error,
) (*TransferResponse, error) {
	var resp *TransferResponse
	err := s.exec.Run(ctx, tenantID, operation, func(ctx context.Context, repos ledger.Repositories) error {
		t, err := repos.Transfers().FindByID(ctx, tenantID, transferID)
		if err != nil {
			return err
		}
		before := transferSummary(t)
		if err := apply(ctx, repos, t); err != nil {
			return err
		}
		if err := repos.Transfers().SaveWithLock(ctx, t); err != nil {
			return err
		}
		if err := s.audit(ctx, repos, t, userID, action, before); err != nil {
			return err
		}
		resp = ToTransferResponse(t)
		return nil
	})
	return resp, err
}

func (s *TransferService) audit(ctx context.Context, repos ledger.Repositories, t *inventory.StockTransfer, userID uuid.UUID, action string, before any) error {
	return audit.Log(ctx, repos.Audit(), t.TenantID, userID, audit.Entry{
		Action:     action,
		EntityType: entityTransfer,
		EntityID:   t.ID,
		EntityName: t.TransferNumber,
		Before:     before,
		After:      transferSummary(t),
	})
}

func (s *TransferService) publishMoved(ctx context.Context, tenantID uuid.UUID, resp *TransferResponse, reason string, locationID uuid.UUID) {
	products := make([]uuid.UUID, 0, len(resp.Items))
	for _, item := range resp.Items {
		products = append(products, item.ProductID)
	}
	s.exec.Publish(ctx, inventory.NewStockChangedEvent(tenantID, resp.ID, reason, products, []uuid.UUID{locationID}))
}

type transferAuditSummary struct {
	Status  string                     `json:"status"`
	Shipped map[string]decimal.Decimal `json:"shipped,omitempty"`
}

func transferSummary(t *inventory.StockTransfer) transferAuditSummary {
	sum := transferAuditSummary{Status: string(t.Status)}
	for _, item := range t.Items {
		if item.ShippedQuantity.IsPositive() {
			if sum.Shipped == nil {
				sum.Shipped = make(map[string]decimal.Decimal, len(t.Items))
			}
			sum.Shipped[item.ProductID.String()] = item.ShippedQuantity
		}
	}
	return sum
}
