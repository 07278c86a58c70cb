package models

import (
	"context"
	"errors"
	"time"

	"bitbucket.org/mmdatafocus/facility_backend/config"
	"bitbucket.org/mmdatafocus/facility_backend/utils"
)

type Asset struct {
	ID         int       `gorm:"primary_key" json:"id"`
	Code       string    `gorm:"size:50;uniqueIndex;not null" json:"code"`
	Name       string    `gorm:"size:100;not null" json:"name"`
	Category   string    `gorm:"size:100" json:"category"`
	SiteId     *int      `gorm:"index" json:"site_id"`
	BuildingId *int      `gorm:"index" json:"building_id"`
	SpaceId    *int      `gorm:"index" json:"space_id"`
	IsActive   *bool     `gorm:"not null;default:true" json:"is_active"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewAsset struct {
	Code       string `json:"code" binding:"required"`
	Name       string `json:"name" binding:"required"`
	Category   string `json:"category"`
	SiteId     *int   `json:"site_id"`
	BuildingId *int   `json:"building_id"`
	SpaceId    *int   `json:"space_id"`
}

func (input *NewAsset) validate(ctx context.Context, id int) error {
	if err := utils.ValidateUnique[Asset](ctx, "code", input.Code, id); err != nil {
		return err
	}
	if input.SiteId != nil {
		if err := utils.ValidateResourceId[Site](ctx, *input.SiteId); err != nil {
			return errors.New("site not found")
		}
	}
	if input.BuildingId != nil {
		if err := utils.ValidateResourceId[Building](ctx, *input.BuildingId); err != nil {
			return errors.New("building not found")
		}
	}
	if input.SpaceId != nil {
		if err := utils.ValidateResourceId[Space](ctx, *input.SpaceId); err != nil {
			return errors.New("space not found")
		}
	}
	return nil
}

func CreateAsset(ctx context.Context, input *NewAsset) (*Asset, error) {

	if err := input.validate(ctx, 0); err != nil {
		return nil, err
	}

	asset := Asset{
		Code:       input.Code,
		Name:       input.Name,
		Category:   input.Category,
		SiteId:     input.SiteId,
		BuildingId: input.BuildingId,
		SpaceId:    input.SpaceId,
		IsActive:   utils.NewTrue(),
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&asset).Error; err != nil {
		return nil, err
	}
	return &asset, nil
}

func UpdateAsset(ctx context.Context, id int, input *NewAsset) (*Asset, error) {

	if err := input.validate(ctx, id); err != nil {
		return nil, err
	}

	asset, err := utils.FetchModel[Asset](ctx, id)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	err = db.WithContext(ctx).Model(asset).Updates(map[string]interface{}{
		"Code":       input.Code,
		"Name":       input.Name,
		"Category":   input.Category,
		"SiteId":     input.SiteId,
		"BuildingId": input.BuildingId,
		"SpaceId":    input.SpaceId,
	}).Error
	if err != nil {
		return nil, err
	}
	EvictResource[Asset](id)
	return asset, nil
}

func GetAsset(ctx context.Context, id int) (*Asset, error) {
	return GetResource[Asset](ctx, id)
}

func ListAssets(ctx context.Context, category *string) ([]*Asset, error) {

	db := config.GetDB()
	var results []*Asset

	dbCtx := db.WithContext(ctx)
	if category != nil && *category != "" {
		dbCtx = dbCtx.Where("category = ?", *category)
	}
	if err := dbCtx.Order("name").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func ToggleActiveAsset(ctx context.Context, id int, isActive bool) (*Asset, error) {
	return ToggleActiveModel[Asset](ctx, id, isActive)
}
