package models

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bitbucket.org/mmdatafocus/facility_backend/config"
	"bitbucket.org/mmdatafocus/facility_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PurchaseOrder struct {
	ID          int                  `gorm:"primary_key" json:"id"`
	SequenceNo  int64                `gorm:"index;not null" json:"sequence_no"`
	Code        string               `gorm:"size:50;uniqueIndex;not null" json:"code"`
	SupplierId  int                  `gorm:"index;not null" json:"supplier_id"`
	Supplier    *Company             `gorm:"foreignKey:SupplierId" json:"supplier,omitempty"`
	Status      PurchaseOrderStatus  `gorm:"type:enum('DRAFT','ISSUED','PARTIALLY_RECEIVED','RECEIVED','CLOSED','CANCELLED');default:DRAFT" json:"status"`
	OrderDate   time.Time            `gorm:"not null" json:"order_date"`
	TotalAmount decimal.Decimal      `gorm:"type:decimal(20,4);default:0" json:"total_amount"`
	Notes       string               `gorm:"type:text" json:"notes"`
	Items       []*PurchaseOrderItem `gorm:"foreignKey:PurchaseOrderId" json:"items,omitempty"`
	Receipts    []*GoodsReceipt      `gorm:"foreignKey:PurchaseOrderId" json:"receipts,omitempty"`
	CreatedAt   time.Time            `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time            `gorm:"autoUpdateTime" json:"updated_at"`
}

type PurchaseOrderItem struct {
	ID              int             `gorm:"primary_key" json:"id"`
	PurchaseOrderId int             `gorm:"index;not null" json:"purchase_order_id"`
	ItemId          int             `gorm:"index;not null" json:"item_id"`
	Qty             decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"qty"`
	Cost            decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"cost"`
	CreatedAt       time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type GoodsReceipt struct {
	ID              int                 `gorm:"primary_key" json:"id"`
	SequenceNo      int64               `gorm:"index;not null" json:"sequence_no"`
	Code            string              `gorm:"size:50;uniqueIndex;not null" json:"code"`
	PurchaseOrderId int                 `gorm:"index;not null" json:"purchase_order_id"`
	WarehouseId     int                 `gorm:"index;not null" json:"warehouse_id"`
	ReceiverId      int                 `gorm:"index;not null" json:"receiver_id"`
	CompanyId       int                 `gorm:"index;not null" json:"company_id"`
	ReceiptDate     time.Time           `gorm:"not null" json:"receipt_date"`
	Items           []*GoodsReceiptItem `gorm:"foreignKey:GoodsReceiptId" json:"items,omitempty"`
	CreatedAt       time.Time           `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time           `gorm:"autoUpdateTime" json:"updated_at"`
}

type GoodsReceiptItem struct {
	ID             int             `gorm:"primary_key" json:"id"`
	GoodsReceiptId int             `gorm:"index;not null" json:"goods_receipt_id"`
	ItemId         int             `gorm:"index;not null" json:"item_id"`
	Qty            decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"qty"`
	Cost           decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"cost"`
	CreatedAt      time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

type NewPurchaseOrderItem struct {
	ItemId int             `json:"item_id" binding:"required"`
	Qty    decimal.Decimal `json:"qty" binding:"required"`
	Cost   decimal.Decimal `json:"cost"`
}

type NewPurchaseOrder struct {
	SupplierId int                     `json:"supplier_id" binding:"required"`
	OrderDate  *time.Time              `json:"order_date"`
	Notes      string                  `json:"notes"`
	Items      []*NewPurchaseOrderItem `json:"items" binding:"required,min=1,dive"`
}

type NewGoodsReceiptItem struct {
	ItemId int             `json:"item_id" binding:"required"`
	Qty    decimal.Decimal `json:"qty" binding:"required"`
	Cost   decimal.Decimal `json:"cost"`
}

type NewGoodsReceipt struct {
	WarehouseId int                    `json:"warehouse_id" binding:"required"`
	ReceiverId  int                    `json:"receiver_id" binding:"required"`
	CompanyId   int                    `json:"company_id" binding:"required"`
	Items       []*NewGoodsReceiptItem `json:"items" binding:"required,min=1,dive"`
}

func (input *NewPurchaseOrder) validate(ctx context.Context) error {
	if err := utils.ValidateResourceId[Company](ctx, input.SupplierId); err != nil {
		return utils.NewNotFoundError("supplier not found")
	}
	itemIds := make([]int, 0, len(input.Items))
	for _, line := range input.Items {
		if !line.Qty.IsPositive() {
			return utils.NewValidationError("ordered quantity must be positive")
		}
		if line.Cost.IsNegative() {
			return utils.NewValidationError("cost cannot be negative")
		}
		itemIds = append(itemIds, line.ItemId)
	}
	if len(utils.UniqueSlice(itemIds)) != len(itemIds) {
		return utils.NewValidationError("duplicate item in order lines")
	}
	if err := utils.ValidateResourcesId[Item](ctx, itemIds); err != nil {
		return utils.NewNotFoundError("item not found")
	}
	return nil
}

func CreatePurchaseOrder(ctx context.Context, input *NewPurchaseOrder) (*PurchaseOrder, error) {

	if err := input.validate(ctx); err != nil {
		return nil, err
	}

	seq, err := utils.GetSequence[PurchaseOrder](ctx)
	if err != nil {
		return nil, err
	}

	orderDate := time.Now()
	if input.OrderDate != nil {
		orderDate = *input.OrderDate
	}

	order := PurchaseOrder{
		SequenceNo: seq,
		Code:       fmt.Sprintf("PO-%06d", seq),
		SupplierId: input.SupplierId,
		Status:     PurchaseOrderStatusDraft,
		OrderDate:  orderDate,
		Notes:      input.Notes,
	}
	for _, line := range input.Items {
		order.Items = append(order.Items, &PurchaseOrderItem{
			ItemId: line.ItemId,
			Qty:    line.Qty,
			Cost:   line.Cost,
		})
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

// IssuePurchaseOrder moves a draft order into the receivable lifecycle.
func IssuePurchaseOrder(ctx context.Context, id int) (*PurchaseOrder, error) {

	order, err := utils.FetchModel[PurchaseOrder](ctx, id)
	if err != nil {
		return nil, utils.NewNotFoundError("purchase order not found")
	}
	if order.Status != PurchaseOrderStatusDraft {
		return nil, utils.NewInvalidStateError("only draft orders can be issued")
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Model(order).
		Update("Status", PurchaseOrderStatusIssued).Error; err != nil {
		return nil, err
	}
	return order, nil
}

func GetPurchaseOrder(ctx context.Context, id int) (*PurchaseOrder, error) {
	return utils.FetchModel[PurchaseOrder](ctx, id, "Supplier", "Items", "Receipts", "Receipts.Items")
}

func ListPurchaseOrders(ctx context.Context, status *PurchaseOrderStatus) ([]*PurchaseOrder, error) {

	db := config.GetDB()
	var results []*PurchaseOrder

	dbCtx := db.WithContext(ctx).Preload("Items")
	if status != nil && *status != "" {
		dbCtx = dbCtx.Where("status = ?", *status)
	}
	if err := dbCtx.Order("id desc").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// receiptStatusFor computes the post-receipt order status.
func receiptStatusFor(totalOrdered decimal.Decimal, totalReceived decimal.Decimal) PurchaseOrderStatus {
	if totalReceived.GreaterThanOrEqual(totalOrdered) {
		return PurchaseOrderStatusReceived
	}
	return PurchaseOrderStatusPartiallyReceived
}

// validateReceiptLines checks every incoming line against the order and prior
// receipts before any write. An item outside the order is InvalidState; a
// quantity above the remaining balance is OverDelivery.
func validateReceiptLines(orderItems []*PurchaseOrderItem, priorReceipts []*GoodsReceipt, incoming []*NewGoodsReceiptItem) error {

	ordered := make(map[int]decimal.Decimal, len(orderItems))
	for _, line := range orderItems {
		ordered[line.ItemId] = line.Qty
	}

	received := make(map[int]decimal.Decimal)
	for _, receipt := range priorReceipts {
		for _, line := range receipt.Items {
			received[line.ItemId] = received[line.ItemId].Add(line.Qty)
		}
	}

	pending := make(map[int]decimal.Decimal)
	for _, line := range incoming {
		if !line.Qty.IsPositive() {
			return utils.NewValidationError("received quantity must be positive")
		}
		orderedQty, ok := ordered[line.ItemId]
		if !ok {
			return utils.NewInvalidStateError(
				fmt.Sprintf("item %d is not part of the order", line.ItemId))
		}
		pending[line.ItemId] = pending[line.ItemId].Add(line.Qty)
		remaining := orderedQty.Sub(received[line.ItemId])
		if pending[line.ItemId].GreaterThan(remaining) {
			return utils.NewOverDeliveryError(
				fmt.Sprintf("item %d: remaining %s, received %s",
					line.ItemId, remaining.String(), pending[line.ItemId].String()))
		}
	}
	return nil
}

// ReceiveGoods applies a goods receipt against a purchase order as a single
// atomic transaction: validate every line, create the receipt, append LOAD
// movements, recompute the order status and increment its total amount. Any
// failure rolls back all of it.
func ReceiveGoods(ctx context.Context, purchaseOrderId int, input *NewGoodsReceipt) (*GoodsReceipt, error) {

	if err := utils.ValidateResourceId[Warehouse](ctx, input.WarehouseId); err != nil {
		return nil, utils.NewNotFoundError("warehouse not found")
	}
	if err := utils.ValidateResourceId[Employee](ctx, input.ReceiverId); err != nil {
		return nil, utils.NewNotFoundError("receiver not found")
	}
	if err := utils.ValidateResourceId[Company](ctx, input.CompanyId); err != nil {
		return nil, utils.NewNotFoundError("company not found")
	}

	seq, err := utils.GetSequence[GoodsReceipt](ctx)
	if err != nil {
		return nil, err
	}

	var receipt *GoodsReceipt
	db := config.GetDB()
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {

		// lock the order row so concurrent receipts serialize
		var order PurchaseOrder
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&order, purchaseOrderId).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NewNotFoundError("purchase order not found")
		}
		if err != nil {
			return err
		}
		if !order.Status.Receivable() {
			return utils.NewInvalidStateError(
				fmt.Sprintf("order status %s is not receivable", order.Status))
		}

		if err := tx.Where("purchase_order_id = ?", order.ID).
			Find(&order.Items).Error; err != nil {
			return err
		}
		if err := tx.Preload("Items").
			Where("purchase_order_id = ?", order.ID).
			Find(&order.Receipts).Error; err != nil {
			return err
		}

		// whole-request validation pass before any write
		if err := validateReceiptLines(order.Items, order.Receipts, input.Items); err != nil {
			return err
		}

		receipt = &GoodsReceipt{
			SequenceNo:      seq,
			Code:            fmt.Sprintf("GR-%06d", seq),
			PurchaseOrderId: order.ID,
			WarehouseId:     input.WarehouseId,
			ReceiverId:      input.ReceiverId,
			CompanyId:       input.CompanyId,
			ReceiptDate:     time.Now(),
		}
		for _, line := range input.Items {
			receipt.Items = append(receipt.Items, &GoodsReceiptItem{
				ItemId: line.ItemId,
				Qty:    line.Qty,
				Cost:   line.Cost,
			})
		}
		if err := tx.Create(receipt).Error; err != nil {
			return err
		}

		receiptAmount := decimal.Zero
		for _, line := range input.Items {
			if _, err := RecordStockMovement(tx, &NewStockMovement{
				Type:          StockMovementTypeLoad,
				ItemId:        line.ItemId,
				WarehouseId:   input.WarehouseId,
				Qty:           line.Qty,
				ReferenceType: StockReferenceTypePurchaseOrder,
				ReferenceID:   order.ID,
			}); err != nil {
				return err
			}
			receiptAmount = receiptAmount.Add(line.Qty.Mul(line.Cost))
		}

		totalOrdered := decimal.Zero
		for _, line := range order.Items {
			totalOrdered = totalOrdered.Add(line.Qty)
		}
		totalReceived := decimal.Zero
		for _, prior := range order.Receipts {
			for _, line := range prior.Items {
				totalReceived = totalReceived.Add(line.Qty)
			}
		}
		for _, line := range input.Items {
			totalReceived = totalReceived.Add(line.Qty)
		}

		return tx.Model(&order).Updates(map[string]interface{}{
			"status":       receiptStatusFor(totalOrdered, totalReceived),
			"total_amount": gorm.Expr("total_amount + ?", receiptAmount),
		}).Error
	})
	if err != nil {
		return nil, err
	}
	return receipt, nil
}
