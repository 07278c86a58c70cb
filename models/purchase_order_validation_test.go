package models

import (
	"testing"

	"bitbucket.org/mmdatafocus/facility_backend/utils"
	"github.com/shopspring/decimal"
)

func TestReceiptStatusFor(t *testing.T) {
	if got := receiptStatusFor(d("10"), d("10")); got != PurchaseOrderStatusReceived {
		t.Fatalf("full receipt: got %s; want RECEIVED", got)
	}
	if got := receiptStatusFor(d("10"), d("4")); got != PurchaseOrderStatusPartiallyReceived {
		t.Fatalf("partial receipt: got %s; want PARTIALLY_RECEIVED", got)
	}
	// over-receipt can only arrive here when the limit check is bypassed
	// upstream; status still resolves to RECEIVED
	if got := receiptStatusFor(d("10"), d("11")); got != PurchaseOrderStatusReceived {
		t.Fatalf("over receipt: got %s; want RECEIVED", got)
	}
}

func TestValidateReceiptLines(t *testing.T) {
	orderItems := []*PurchaseOrderItem{
		{ItemId: 1, Qty: d("10")},
		{ItemId: 2, Qty: d("5")},
	}
	prior := []*GoodsReceipt{
		{Items: []*GoodsReceiptItem{{ItemId: 1, Qty: d("6")}}},
	}

	t.Run("within remaining passes", func(t *testing.T) {
		incoming := []*NewGoodsReceiptItem{{ItemId: 1, Qty: d("4")}, {ItemId: 2, Qty: d("5")}}
		if err := validateReceiptLines(orderItems, prior, incoming); err != nil {
			t.Fatalf("expected pass; got %v", err)
		}
	})

	t.Run("over remaining is over-delivery", func(t *testing.T) {
		incoming := []*NewGoodsReceiptItem{{ItemId: 1, Qty: d("4.0001")}}
		err := validateReceiptLines(orderItems, prior, incoming)
		if utils.KindOf(err) != utils.ErrorKindOverDelivery {
			t.Fatalf("expected OverDelivery; got %v", err)
		}
	})

	t.Run("duplicate lines accumulate", func(t *testing.T) {
		// two lines of 3 against a remaining of 4 must fail together
		incoming := []*NewGoodsReceiptItem{
			{ItemId: 1, Qty: d("3")},
			{ItemId: 1, Qty: d("3")},
		}
		err := validateReceiptLines(orderItems, prior, incoming)
		if utils.KindOf(err) != utils.ErrorKindOverDelivery {
			t.Fatalf("expected OverDelivery for split lines; got %v", err)
		}
	})

	t.Run("item outside the order", func(t *testing.T) {
		incoming := []*NewGoodsReceiptItem{{ItemId: 99, Qty: d("1")}}
		err := validateReceiptLines(orderItems, prior, incoming)
		if utils.KindOf(err) != utils.ErrorKindInvalidState {
			t.Fatalf("expected InvalidState; got %v", err)
		}
	})

	t.Run("zero quantity rejected", func(t *testing.T) {
		incoming := []*NewGoodsReceiptItem{{ItemId: 1, Qty: decimal.Zero}}
		err := validateReceiptLines(orderItems, prior, incoming)
		if utils.KindOf(err) != utils.ErrorKindValidation {
			t.Fatalf("expected ValidationError; got %v", err)
		}
	})

	t.Run("no prior receipts", func(t *testing.T) {
		incoming := []*NewGoodsReceiptItem{{ItemId: 1, Qty: d("10")}}
		if err := validateReceiptLines(orderItems, nil, incoming); err != nil {
			t.Fatalf("expected pass; got %v", err)
		}
	})
}

func TestPurchaseOrderStatusReceivable(t *testing.T) {
	receivable := map[PurchaseOrderStatus]bool{
		PurchaseOrderStatusDraft:             false,
		PurchaseOrderStatusIssued:            true,
		PurchaseOrderStatusPartiallyReceived: true,
		PurchaseOrderStatusReceived:          false,
		PurchaseOrderStatusClosed:            false,
		PurchaseOrderStatusCancelled:         false,
	}
	for status, want := range receivable {
		if got := status.Receivable(); got != want {
			t.Fatalf("%s.Receivable() = %v; want %v", status, got, want)
		}
	}
}
