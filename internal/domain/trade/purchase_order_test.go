package trade

import (
	"testing"

	"github.com/erp/ledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSentOrder(t *testing.T, lines ...PurchaseOrderLine) *PurchaseOrder {
	t.Helper()
	po, err := NewPurchaseOrder(uuid.New(), uuid.New(), uuid.New(), lines)
	require.NoError(t, err)
	require.NoError(t, po.Send())
	return po
}

func TestPurchaseOrder_ReceiveInSteps(t *testing.T) {
	productID := uuid.New()
	po := newSentOrder(t, PurchaseOrderLine{ProductID: productID, Quantity: dec("100"), UnitCost: dec("2")})

	received, err := po.Receive([]ReceiptLine{{ProductID: productID, Quantity: dec("40")}})
	require.NoError(t, err)
	require.Len(t, received, 1)
	assert.Equal(t, PurchaseOrderStatusPartial, po.Status)
	assert.True(t, po.Items[0].ReceivedQuantity.Equal(dec("40")))
	assert.True(t, received[0].Cost().Equal(dec("80")))

	_, err = po.Receive([]ReceiptLine{{ProductID: productID, Quantity: dec("60")}})
	require.NoError(t, err)
	assert.Equal(t, PurchaseOrderStatusReceived, po.Status)
	assert.True(t, po.Items[0].ReceivedQuantity.Equal(dec("100")))
	assert.NotNil(t, po.ReceivedAt)

	_, err = po.Receive([]ReceiptLine{{ProductID: productID, Quantity: dec("10")}})
	assert.ErrorIs(t, err, shared.ErrInvalidState)
	assert.True(t, po.Items[0].ReceivedQuantity.Equal(dec("100")))
}

func TestPurchaseOrder_ReceiveCapsExcess(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	po := newSentOrder(t,
		PurchaseOrderLine{ProductID: a, Quantity: dec("10"), UnitCost: dec("1")},
		PurchaseOrderLine{ProductID: b, Quantity: dec("5"), UnitCost: dec("1")},
	)

	received, err := po.Receive([]ReceiptLine{{ProductID: a, Quantity: dec("25")}})
	require.NoError(t, err)
	require.Len(t, received, 1)
	assert.True(t, received[0].Quantity.Equal(dec("10")))
	assert.Equal(t, PurchaseOrderStatusPartial, po.Status)

	received, err = po.Receive([]ReceiptLine{{ProductID: a, Quantity: dec("3")}})
	require.NoError(t, err)
	assert.Empty(t, received)
	assert.Equal(t, PurchaseOrderStatusPartial, po.Status)
}

func TestPurchaseOrder_ReceiveRequiresSent(t *testing.T) {
	productID := uuid.New()
	po, err := NewPurchaseOrder(uuid.New(), uuid.New(), uuid.New(),
		[]PurchaseOrderLine{{ProductID: productID, Quantity: dec("1"), UnitCost: dec("1")}})
	require.NoError(t, err)

	_, err = po.Receive([]ReceiptLine{{ProductID: productID, Quantity: dec("1")}})
	assert.ErrorIs(t, err, shared.ErrInvalidState)
}

func TestNewReceivingRecord(t *testing.T) {
	productID := uuid.New()
	po := newSentOrder(t, PurchaseOrderLine{ProductID: productID, Quantity: dec("4"), UnitCost: dec("2.5")})
	received, err := po.Receive([]ReceiptLine{{ProductID: productID, Quantity: dec("4")}})
	require.NoError(t, err)

	record := NewReceivingRecord(po, uuid.New(), received, "dock 2")
	assert.True(t, record.TotalCost.Equal(dec("10")))
	assert.Equal(t, po.LocationID, record.LocationID)
	assert.Equal(t, po.ID, record.PurchaseOrderID)
}
