package models

import (
	"context"
	"errors"
	"time"

	"bitbucket.org/mmdatafocus/facility_backend/config"
	"bitbucket.org/mmdatafocus/facility_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// MaintenanceItem links consumed spare parts to a work order. Repeated
// consumption of the same item accumulates on one row.
type MaintenanceItem struct {
	ID            int             `gorm:"primary_key" json:"id"`
	MaintenanceId int             `gorm:"index:idx_maintenance_item,unique;not null" json:"maintenance_id"`
	ItemId        int             `gorm:"index:idx_maintenance_item,unique;not null" json:"item_id"`
	Qty           decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"qty"`
	CreatedAt     time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewMaintenanceItem struct {
	ItemId      int             `json:"item_id" binding:"required"`
	WarehouseId int             `json:"warehouse_id" binding:"required"`
	Qty         decimal.Decimal `json:"qty" binding:"required"`
}

// ConsumeMaintenanceItem draws a spare part from stock for a work order:
// one UNLOAD movement plus the consumption link, atomically. Insufficient
// stock rolls back both.
func ConsumeMaintenanceItem(ctx context.Context, maintenanceId int, input *NewMaintenanceItem) (*MaintenanceItem, error) {

	maintenance, err := utils.FetchModel[Maintenance](ctx, maintenanceId)
	if err != nil {
		return nil, utils.NewNotFoundError("maintenance not found")
	}
	if maintenance.Status == ProcessStatusCompleted {
		return nil, utils.NewInvalidStateError("completed work orders cannot consume items")
	}
	if err := utils.ValidateResourceId[Item](ctx, input.ItemId); err != nil {
		return nil, utils.NewNotFoundError("item not found")
	}
	if err := utils.ValidateResourceId[Warehouse](ctx, input.WarehouseId); err != nil {
		return nil, utils.NewNotFoundError("warehouse not found")
	}
	if !input.Qty.IsPositive() {
		return nil, utils.NewValidationError("quantity must be positive")
	}

	var link MaintenanceItem
	db := config.GetDB()
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {

		if _, err := RecordStockMovement(tx, &NewStockMovement{
			Type:          StockMovementTypeUnload,
			ItemId:        input.ItemId,
			WarehouseId:   input.WarehouseId,
			Qty:           input.Qty,
			ReferenceType: StockReferenceTypeMaintenance,
			ReferenceID:   maintenanceId,
		}); err != nil {
			return err
		}

		// upsert the consumption link
		err := tx.Where("maintenance_id = ? AND item_id = ?", maintenanceId, input.ItemId).
			First(&link).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			link = MaintenanceItem{
				MaintenanceId: maintenanceId,
				ItemId:        input.ItemId,
				Qty:           input.Qty,
			}
			return tx.Create(&link).Error
		}
		if err != nil {
			return err
		}
		return tx.Model(&link).
			Update("qty", gorm.Expr("qty + ?", input.Qty)).Error
	})
	if err != nil {
		return nil, err
	}
	return &link, nil
}

func ListMaintenanceItems(ctx context.Context, maintenanceId int) ([]*MaintenanceItem, error) {

	db := config.GetDB()
	var results []*MaintenanceItem
	err := db.WithContext(ctx).
		Where("maintenance_id = ?", maintenanceId).
		Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}
