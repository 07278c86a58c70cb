package models

import (
	"context"
	"errors"
	"time"

	"bitbucket.org/mmdatafocus/facility_backend/config"
	"bitbucket.org/mmdatafocus/facility_backend/utils"
	"github.com/shopspring/decimal"
)

type Item struct {
	ID            int             `gorm:"primary_key" json:"id"`
	Code          string          `gorm:"size:50;uniqueIndex;not null" json:"code"`
	Name          string          `gorm:"size:100;not null" json:"name"`
	Category      string          `gorm:"size:100" json:"category"`
	UnitOfMeasure string          `gorm:"size:50;not null" json:"unit_of_measure"`
	Cost          decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"cost"`
	IsActive      *bool           `gorm:"not null;default:true" json:"is_active"`
	CreatedAt     time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewItem struct {
	Code          string          `json:"code" binding:"required"`
	Name          string          `json:"name" binding:"required"`
	Category      string          `json:"category"`
	UnitOfMeasure string          `json:"unit_of_measure" binding:"required"`
	Cost          decimal.Decimal `json:"cost"`
}

func (input *NewItem) validate(ctx context.Context, id int) error {
	if err := utils.ValidateUnique[Item](ctx, "code", input.Code, id); err != nil {
		return err
	}
	if input.Cost.IsNegative() {
		return errors.New("cost cannot be negative")
	}
	return nil
}

func CreateItem(ctx context.Context, input *NewItem) (*Item, error) {

	if err := input.validate(ctx, 0); err != nil {
		return nil, err
	}

	item := Item{
		Code:          input.Code,
		Name:          input.Name,
		Category:      input.Category,
		UnitOfMeasure: input.UnitOfMeasure,
		Cost:          input.Cost,
		IsActive:      utils.NewTrue(),
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func UpdateItem(ctx context.Context, id int, input *NewItem) (*Item, error) {

	if err := input.validate(ctx, id); err != nil {
		return nil, err
	}

	item, err := utils.FetchModel[Item](ctx, id)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	err = db.WithContext(ctx).Model(item).Updates(map[string]interface{}{
		"Code":          input.Code,
		"Name":          input.Name,
		"Category":      input.Category,
		"UnitOfMeasure": input.UnitOfMeasure,
		"Cost":          input.Cost,
	}).Error
	if err != nil {
		return nil, err
	}
	EvictResource[Item](id)
	return item, nil
}

func GetItem(ctx context.Context, id int) (*Item, error) {
	return GetResource[Item](ctx, id)
}

func ListItems(ctx context.Context, name *string) ([]*Item, error) {

	db := config.GetDB()
	var results []*Item

	dbCtx := db.WithContext(ctx)
	if name != nil && len(*name) > 0 {
		dbCtx = dbCtx.Where("name LIKE ?", "%"+*name+"%")
	}
	if err := dbCtx.Order("name").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func ToggleActiveItem(ctx context.Context, id int, isActive bool) (*Item, error) {
	return ToggleActiveModel[Item](ctx, id, isActive)
}
