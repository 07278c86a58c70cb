package models

import (
	"context"
	"errors"
	"time"

	"bitbucket.org/mmdatafocus/facility_backend/config"
	"bitbucket.org/mmdatafocus/facility_backend/utils"
)

type Zone struct {
	ID        int       `gorm:"primary_key" json:"id"`
	FloorId   int       `gorm:"index;not null" json:"floor_id"`
	Name      string    `gorm:"size:100;not null" json:"name"`
	IsActive  *bool     `gorm:"not null;default:true" json:"is_active"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewZone struct {
	FloorId int    `json:"floor_id" binding:"required"`
	Name    string `json:"name" binding:"required"`
}

func CreateZone(ctx context.Context, input *NewZone) (*Zone, error) {

	if err := utils.ValidateResourceId[Floor](ctx, input.FloorId); err != nil {
		return nil, errors.New("floor not found")
	}

	zone := Zone{
		FloorId:  input.FloorId,
		Name:     input.Name,
		IsActive: utils.NewTrue(),
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&zone).Error; err != nil {
		return nil, err
	}
	return &zone, nil
}

func GetZone(ctx context.Context, id int) (*Zone, error) {
	return GetResource[Zone](ctx, id)
}

func ListZones(ctx context.Context, floorId *int) ([]*Zone, error) {

	db := config.GetDB()
	var results []*Zone

	dbCtx := db.WithContext(ctx)
	if floorId != nil {
		dbCtx = dbCtx.Where("floor_id = ?", *floorId)
	}
	if err := dbCtx.Order("name").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
