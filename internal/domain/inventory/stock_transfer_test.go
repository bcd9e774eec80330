package inventory

import (
	"testing"

	"github.com/erp/ledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTransfer(t *testing.T, qty int64) *StockTransfer {
	t.Helper()
	transfer, err := NewStockTransfer(uuid.New(), uuid.New(), uuid.New(),
		[]TransferLine{{ProductID: uuid.New(), Quantity: decimal.NewFromInt(qty)}}, "")
	require.NoError(t, err)
	return transfer
}

func TestNewStockTransfer(t *testing.T) {
	loc := uuid.New()
	product := uuid.New()

	t.Run("rejects same source and destination", func(t *testing.T) {
		_, err := NewStockTransfer(uuid.New(), loc, loc, []TransferLine{{ProductID: product, Quantity: decimal.NewFromInt(1)}}, "")
		assert.ErrorIs(t, err, shared.ErrInvalidInput)
	})

	t.Run("rejects empty items", func(t *testing.T) {
		_, err := NewStockTransfer(uuid.New(), loc, uuid.New(), nil, "")
		assert.ErrorIs(t, err, shared.ErrInvalidInput)
	})

	t.Run("merges duplicate products", func(t *testing.T) {
		transfer, err := NewStockTransfer(uuid.New(), loc, uuid.New(), []TransferLine{
			{ProductID: product, Quantity: decimal.NewFromInt(2)},
			{ProductID: product, Quantity: decimal.NewFromInt(3)},
		}, "")
		require.NoError(t, err)
		require.Len(t, transfer.Items, 1)
		assert.True(t, transfer.Items[0].RequestedQuantity.Equal(decimal.NewFromInt(5)))
		assert.Equal(t, TransferStatusDraft, transfer.Status)
	})
}

func TestStockTransfer_Lifecycle(t *testing.T) {
	transfer := newTestTransfer(t, 5)
	item := transfer.Items[0]

	require.NoError(t, transfer.Submit())
	require.NoError(t, transfer.Approve())

	takes := map[uuid.UUID][]BatchConsumption{
		item.ID: {
			{BatchID: uuid.New(), ExpirationDate: datePtr(2026, 2, 1), Quantity: decimal.NewFromInt(3)},
			{BatchID: uuid.New(), Quantity: decimal.NewFromInt(2)},
		},
	}
	require.NoError(t, transfer.Ship(takes))
	assert.Equal(t, TransferStatusInTransit, transfer.Status)
	assert.True(t, transfer.Items[0].ShippedQuantity.Equal(decimal.NewFromInt(5)))
	require.Len(t, transfer.Items[0].Batches, 2)
	assert.Nil(t, transfer.Items[0].Batches[1].ExpirationDate)

	require.NoError(t, transfer.Receive())
	assert.Equal(t, TransferStatusReceived, transfer.Status)
	assert.True(t, transfer.Items[0].ReceivedQuantity.Equal(decimal.NewFromInt(5)))
	assert.NotNil(t, transfer.ReceivedAt)

	_, err := transfer.Cancel("too late")
	assert.ErrorIs(t, err, shared.ErrInvalidStatusTransition)
}

func TestStockTransfer_InvalidTransitions(t *testing.T) {
	transfer := newTestTransfer(t, 1)

	assert.ErrorIs(t, transfer.Approve(), shared.ErrInvalidStatusTransition)
	assert.ErrorIs(t, transfer.Receive(), shared.ErrInvalidStatusTransition)
	assert.ErrorIs(t, transfer.Ship(nil), shared.ErrInvalidStatusTransition)
}

func TestStockTransfer_ShipRequiresFullCoverage(t *testing.T) {
	transfer := newTestTransfer(t, 4)
	require.NoError(t, transfer.Submit())
	require.NoError(t, transfer.Approve())

	err := transfer.Ship(map[uuid.UUID][]BatchConsumption{
		transfer.Items[0].ID: {{BatchID: uuid.New(), Quantity: decimal.NewFromInt(3)}},
	})
	assert.ErrorIs(t, err, shared.ErrInvalidState)
}

func TestStockTransfer_Cancel(t *testing.T) {
	t.Run("draft cancel needs no restock", func(t *testing.T) {
		transfer := newTestTransfer(t, 1)
		restock, err := transfer.Cancel("changed plan")
		require.NoError(t, err)
		assert.False(t, restock)
		assert.Equal(t, TransferStatusCancelled, transfer.Status)
		assert.Equal(t, "changed plan", transfer.CancelReason)
	})

	t.Run("in transit cancel restocks", func(t *testing.T) {
		transfer := newTestTransfer(t, 1)
		require.NoError(t, transfer.Submit())
		require.NoError(t, transfer.Approve())
		require.NoError(t, transfer.Ship(map[uuid.UUID][]BatchConsumption{
			transfer.Items[0].ID: {{BatchID: uuid.New(), Quantity: decimal.NewFromInt(1)}},
		}))
		restock, err := transfer.Cancel("lost truck")
		require.NoError(t, err)
		assert.True(t, restock)
	})
}

func TestTransferStatus_CanTransitionTo(t *testing.T) {
	assert.True(t, TransferStatusDraft.CanTransitionTo(TransferStatusPending))
	assert.True(t, TransferStatusApproved.CanTransitionTo(TransferStatusCancelled))
	assert.False(t, TransferStatusDraft.CanTransitionTo(TransferStatusApproved))
	assert.False(t, TransferStatusCancelled.CanTransitionTo(TransferStatusCancelled))
	assert.False(t, TransferStatusReceived.CanTransitionTo(TransferStatusCancelled))
}
