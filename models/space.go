package models

import (
	"context"
	"errors"
	"time"

	"bitbucket.org/mmdatafocus/facility_backend/config"
	"bitbucket.org/mmdatafocus/facility_backend/utils"
	"github.com/shopspring/decimal"
)

type Space struct {
	ID        int             `gorm:"primary_key" json:"id"`
	FloorId   int             `gorm:"index;not null" json:"floor_id"`
	ZoneId    *int            `gorm:"index" json:"zone_id"`
	Name      string          `gorm:"size:100;not null" json:"name"`
	Area      decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"area"`
	IsActive  *bool           `gorm:"not null;default:true" json:"is_active"`
	CreatedAt time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewSpace struct {
	FloorId int             `json:"floor_id" binding:"required"`
	ZoneId  *int            `json:"zone_id"`
	Name    string          `json:"name" binding:"required"`
	Area    decimal.Decimal `json:"area"`
}

func CreateSpace(ctx context.Context, input *NewSpace) (*Space, error) {

	if err := utils.ValidateResourceId[Floor](ctx, input.FloorId); err != nil {
		return nil, errors.New("floor not found")
	}
	if input.ZoneId != nil {
		if err := utils.ValidateResourceId[Zone](ctx, *input.ZoneId); err != nil {
			return nil, errors.New("zone not found")
		}
	}

	space := Space{
		FloorId:  input.FloorId,
		ZoneId:   input.ZoneId,
		Name:     input.Name,
		Area:     input.Area,
		IsActive: utils.NewTrue(),
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&space).Error; err != nil {
		return nil, err
	}
	return &space, nil
}

func GetSpace(ctx context.Context, id int) (*Space, error) {
	return GetResource[Space](ctx, id)
}

func ListSpaces(ctx context.Context, floorId *int) ([]*Space, error) {

	db := config.GetDB()
	var results []*Space

	dbCtx := db.WithContext(ctx)
	if floorId != nil {
		dbCtx = dbCtx.Where("floor_id = ?", *floorId)
	}
	if err := dbCtx.Order("name").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
