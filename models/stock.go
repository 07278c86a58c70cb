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

// StockMovement is an append-only ledger entry. Qty is always positive;
// direction is encoded by Type. Current stock for (item, warehouse) is the
// signed sum of movements (LOAD positive, UNLOAD negative).
type StockMovement struct {
	ID            int                `gorm:"primary_key" json:"id"`
	Type          StockMovementType  `gorm:"type:enum('LOAD','UNLOAD','TRANSFER');not null" json:"type"`
	ItemId        int                `gorm:"index:idx_stock_item_warehouse;not null" json:"item_id"`
	WarehouseId   int                `gorm:"index:idx_stock_item_warehouse;not null" json:"warehouse_id"`
	Qty           decimal.Decimal    `gorm:"type:decimal(20,4);not null" json:"qty"`
	ReferenceType StockReferenceType `gorm:"type:enum('PURCHASE_ORDER','MAINTENANCE','MANUAL');not null" json:"reference_type"`
	ReferenceID   int                `gorm:"index" json:"reference_id"`
	Notes         string             `gorm:"type:text" json:"notes"`
	MovementDate  time.Time          `gorm:"index;not null" json:"movement_date"`
	CreatedAt     time.Time          `gorm:"autoCreateTime" json:"created_at"`
}

// StockSummary is the derived current-quantity view per (item, warehouse),
// maintained in the same transaction as each movement insert.
type StockSummary struct {
	ID          int             `gorm:"primary_key" json:"id"`
	ItemId      int             `gorm:"index:idx_summary_item_warehouse,unique;not null" json:"item_id"`
	WarehouseId int             `gorm:"index:idx_summary_item_warehouse,unique;not null" json:"warehouse_id"`
	CurrentQty  decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"current_qty"`
	CreatedAt   time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewStockMovement struct {
	Type              StockMovementType  `json:"type" binding:"required"`
	ItemId            int                `json:"item_id" binding:"required"`
	WarehouseId       int                `json:"warehouse_id" binding:"required"`
	TargetWarehouseId *int               `json:"target_warehouse_id"`
	Qty               decimal.Decimal    `json:"qty" binding:"required"`
	ReferenceType     StockReferenceType `json:"-"`
	ReferenceID       int                `json:"-"`
	Notes             string             `json:"notes"`
}

// RecordStockMovement appends a ledger entry and adjusts the summary row in
// the caller's transaction. UNLOAD locks the summary row FOR UPDATE and fails
// with InsufficientStock, without writes, when on-hand is short. TRANSFER
// expands to UNLOAD at the source plus LOAD at the target.
func RecordStockMovement(tx *gorm.DB, input *NewStockMovement) (*StockMovement, error) {

	if !input.Type.Valid() {
		return nil, utils.NewValidationError("invalid movement type")
	}
	if !input.Qty.IsPositive() {
		return nil, utils.NewValidationError("quantity must be positive")
	}

	if input.Type == StockMovementTypeTransfer {
		if input.TargetWarehouseId == nil {
			return nil, utils.NewValidationError("target warehouse is required for transfer")
		}
		if *input.TargetWarehouseId == input.WarehouseId {
			return nil, utils.NewValidationError("target warehouse must differ from source")
		}
		out, err := RecordStockMovement(tx, &NewStockMovement{
			Type:          StockMovementTypeUnload,
			ItemId:        input.ItemId,
			WarehouseId:   input.WarehouseId,
			Qty:           input.Qty,
			ReferenceType: input.ReferenceType,
			ReferenceID:   input.ReferenceID,
			Notes:         fmt.Sprintf("transfer to warehouse %d", *input.TargetWarehouseId),
		})
		if err != nil {
			return nil, err
		}
		_, err = RecordStockMovement(tx, &NewStockMovement{
			Type:          StockMovementTypeLoad,
			ItemId:        input.ItemId,
			WarehouseId:   *input.TargetWarehouseId,
			Qty:           input.Qty,
			ReferenceType: input.ReferenceType,
			ReferenceID:   input.ReferenceID,
			Notes:         fmt.Sprintf("transfer from warehouse %d", input.WarehouseId),
		})
		if err != nil {
			return nil, err
		}
		return out, nil
	}

	refType := input.ReferenceType
	if refType == "" {
		refType = StockReferenceTypeManual
	}

	if err := adjustStockSummary(tx, input.ItemId, input.WarehouseId, input.Type, input.Qty); err != nil {
		return nil, err
	}

	movement := StockMovement{
		Type:          input.Type,
		ItemId:        input.ItemId,
		WarehouseId:   input.WarehouseId,
		Qty:           input.Qty,
		ReferenceType: refType,
		ReferenceID:   input.ReferenceID,
		Notes:         input.Notes,
		MovementDate:  time.Now(),
	}
	if err := tx.Create(&movement).Error; err != nil {
		return nil, err
	}
	return &movement, nil
}

// adjustStockSummary serializes concurrent movements on the same
// (item, warehouse) pair through a row lock so the on-hand check is race-free.
func adjustStockSummary(tx *gorm.DB, itemId int, warehouseId int, movementType StockMovementType, qty decimal.Decimal) error {

	var summary StockSummary
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("item_id = ? AND warehouse_id = ?", itemId, warehouseId).
		First(&summary).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		if movementType == StockMovementTypeUnload {
			return utils.NewInsufficientStockError("no stock on hand")
		}
		summary = StockSummary{
			ItemId:      itemId,
			WarehouseId: warehouseId,
			CurrentQty:  qty,
		}
		return tx.Create(&summary).Error
	}
	if err != nil {
		return err
	}

	if movementType == StockMovementTypeUnload {
		if summary.CurrentQty.LessThan(qty) {
			return utils.NewInsufficientStockError(
				fmt.Sprintf("on hand %s, requested %s", summary.CurrentQty.String(), qty.String()))
		}
		return tx.Model(&summary).
			Update("current_qty", gorm.Expr("current_qty - ?", qty)).Error
	}
	return tx.Model(&summary).
		Update("current_qty", gorm.Expr("current_qty + ?", qty)).Error
}

// CreateManualStockMovement records an operator adjustment in its own
// transaction.
func CreateManualStockMovement(ctx context.Context, input *NewStockMovement) (*StockMovement, error) {

	if err := utils.ValidateResourceId[Item](ctx, input.ItemId); err != nil {
		return nil, utils.NewNotFoundError("item not found")
	}
	if err := utils.ValidateResourceId[Warehouse](ctx, input.WarehouseId); err != nil {
		return nil, utils.NewNotFoundError("warehouse not found")
	}
	if input.TargetWarehouseId != nil {
		if err := utils.ValidateResourceId[Warehouse](ctx, *input.TargetWarehouseId); err != nil {
			return nil, utils.NewNotFoundError("target warehouse not found")
		}
	}

	input.ReferenceType = StockReferenceTypeManual

	var movement *StockMovement
	db := config.GetDB()
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		movement, err = RecordStockMovement(tx, input)
		return err
	})
	if err != nil {
		return nil, err
	}
	return movement, nil
}

// CurrentStock returns the on-hand quantity for (item, warehouse).
// Missing summary rows read as zero.
func CurrentStock(ctx context.Context, itemId int, warehouseId int) (decimal.Decimal, error) {

	db := config.GetDB()
	var summary StockSummary
	err := db.WithContext(ctx).
		Where("item_id = ? AND warehouse_id = ?", itemId, warehouseId).
		First(&summary).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return decimal.Zero, nil
	}
	if err != nil {
		return decimal.Zero, err
	}
	return summary.CurrentQty, nil
}

func ListStockSummaries(ctx context.Context, warehouseId *int) ([]*StockSummary, error) {

	db := config.GetDB()
	var results []*StockSummary

	dbCtx := db.WithContext(ctx)
	if warehouseId != nil {
		dbCtx = dbCtx.Where("warehouse_id = ?", *warehouseId)
	}
	if err := dbCtx.Order("item_id").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func ListStockMovements(ctx context.Context, itemId *int, warehouseId *int) ([]*StockMovement, error) {

	db := config.GetDB()
	var results []*StockMovement

	dbCtx := db.WithContext(ctx)
	if itemId != nil {
		dbCtx = dbCtx.Where("item_id = ?", *itemId)
	}
	if warehouseId != nil {
		dbCtx = dbCtx.Where("warehouse_id = ?", *warehouseId)
	}
	if err := dbCtx.Order("id desc").Limit(500).Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// RebuildStockSummaries recomputes every summary row from the movement
// ledger. Used by cmd/stock-rebuild after manual data repair.
func RebuildStockSummaries(ctx context.Context) error {

	db := config.GetDB()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {

		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).
			Delete(&StockSummary{}).Error; err != nil {
			return err
		}

		type balance struct {
			ItemId      int
			WarehouseId int
			Qty         decimal.Decimal
		}
		var balances []balance
		err := tx.Model(&StockMovement{}).
			Select("item_id, warehouse_id, SUM(CASE WHEN type = 'UNLOAD' THEN -qty ELSE qty END) AS qty").
			Group("item_id, warehouse_id").
			Scan(&balances).Error
		if err != nil {
			return err
		}

		for _, b := range balances {
			summary := StockSummary{
				ItemId:      b.ItemId,
				WarehouseId: b.WarehouseId,
				CurrentQty:  b.Qty,
			}
			if err := tx.Create(&summary).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
