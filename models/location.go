package models

import (
	"context"
	"errors"
	"time"

	"bitbucket.org/mmdatafocus/facility_backend/config"
	"bitbucket.org/mmdatafocus/facility_backend/utils"
)

/* Location hierarchy: Site > Building > Floor (> Zone/Space) */

type Site struct {
	ID        int       `gorm:"primary_key" json:"id"`
	Code      string    `gorm:"size:50;uniqueIndex;not null" json:"code"`
	Name      string    `gorm:"size:100;not null" json:"name"`
	Address   string    `gorm:"type:text" json:"address"`
	IsActive  *bool     `gorm:"not null;default:true" json:"is_active"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type Building struct {
	ID        int       `gorm:"primary_key" json:"id"`
	SiteId    int       `gorm:"index;not null" json:"site_id"`
	Code      string    `gorm:"size:50;uniqueIndex;not null" json:"code"`
	Name      string    `gorm:"size:100;not null" json:"name"`
	IsActive  *bool     `gorm:"not null;default:true" json:"is_active"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type Floor struct {
	ID         int       `gorm:"primary_key" json:"id"`
	BuildingId int       `gorm:"index;not null" json:"building_id"`
	Name       string    `gorm:"size:100;not null" json:"name"`
	Level      int       `json:"level"`
	IsActive   *bool     `gorm:"not null;default:true" json:"is_active"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewSite struct {
	Code    string `json:"code" binding:"required"`
	Name    string `json:"name" binding:"required"`
	Address string `json:"address"`
}

type NewBuilding struct {
	SiteId int    `json:"site_id" binding:"required"`
	Code   string `json:"code" binding:"required"`
	Name   string `json:"name" binding:"required"`
}

type NewFloor struct {
	BuildingId int    `json:"building_id" binding:"required"`
	Name       string `json:"name" binding:"required"`
	Level      int    `json:"level"`
}

func CreateSite(ctx context.Context, input *NewSite) (*Site, error) {

	if err := utils.ValidateUnique[Site](ctx, "code", input.Code, 0); err != nil {
		return nil, err
	}

	site := Site{
		Code:     input.Code,
		Name:     input.Name,
		Address:  input.Address,
		IsActive: utils.NewTrue(),
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&site).Error; err != nil {
		return nil, err
	}
	return &site, nil
}

func GetSite(ctx context.Context, id int) (*Site, error) {
	return GetResource[Site](ctx, id)
}

func ListSites(ctx context.Context) ([]*Site, error) {
	return utils.FetchAllModels[Site](ctx)
}

func CreateBuilding(ctx context.Context, input *NewBuilding) (*Building, error) {

	if err := utils.ValidateResourceId[Site](ctx, input.SiteId); err != nil {
		return nil, errors.New("site not found")
	}
	if err := utils.ValidateUnique[Building](ctx, "code", input.Code, 0); err != nil {
		return nil, err
	}

	building := Building{
		SiteId:   input.SiteId,
		Code:     input.Code,
		Name:     input.Name,
		IsActive: utils.NewTrue(),
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&building).Error; err != nil {
		return nil, err
	}
	return &building, nil
}

func GetBuilding(ctx context.Context, id int) (*Building, error) {
	return GetResource[Building](ctx, id)
}

func ListBuildings(ctx context.Context, siteId *int) ([]*Building, error) {

	db := config.GetDB()
	var results []*Building

	dbCtx := db.WithContext(ctx)
	if siteId != nil {
		dbCtx = dbCtx.Where("site_id = ?", *siteId)
	}
	if err := dbCtx.Order("name").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func CreateFloor(ctx context.Context, input *NewFloor) (*Floor, error) {

	if err := utils.ValidateResourceId[Building](ctx, input.BuildingId); err != nil {
		return nil, errors.New("building not found")
	}

	floor := Floor{
		BuildingId: input.BuildingId,
		Name:       input.Name,
		Level:      input.Level,
		IsActive:   utils.NewTrue(),
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&floor).Error; err != nil {
		return nil, err
	}
	return &floor, nil
}

func ListFloors(ctx context.Context, buildingId *int) ([]*Floor, error) {

	db := config.GetDB()
	var results []*Floor

	dbCtx := db.WithContext(ctx)
	if buildingId != nil {
		dbCtx = dbCtx.Where("building_id = ?", *buildingId)
	}
	if err := dbCtx.Order("level").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
