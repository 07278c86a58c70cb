package models

import (
	"context"
	"errors"
	"time"

	"bitbucket.org/mmdatafocus/facility_backend/config"
	"bitbucket.org/mmdatafocus/facility_backend/utils"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Meter is a measurement point. It attaches to exactly one of
// asset/building/zone/space.
type Meter struct {
	ID         int       `gorm:"primary_key" json:"id"`
	Name       string    `gorm:"size:100;not null" json:"name"`
	Type       MeterType `gorm:"type:enum('CUMULATIVE','GAUGE');not null" json:"type"`
	Unit       string    `gorm:"size:50" json:"unit"`
	DeviceId   string    `gorm:"size:100;uniqueIndex;not null" json:"device_id"`
	AssetId    *int      `gorm:"index" json:"asset_id"`
	BuildingId *int      `gorm:"index" json:"building_id"`
	ZoneId     *int      `gorm:"index" json:"zone_id"`
	SpaceId    *int      `gorm:"index" json:"space_id"`
	IsActive   *bool     `gorm:"not null;default:true" json:"is_active"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewMeter struct {
	Name       string    `json:"name" binding:"required"`
	Type       MeterType `json:"type" binding:"required"`
	Unit       string    `json:"unit"`
	DeviceId   string    `json:"device_id"`
	AssetId    *int      `json:"asset_id"`
	BuildingId *int      `json:"building_id"`
	ZoneId     *int      `json:"zone_id"`
	SpaceId    *int      `json:"space_id"`
}

func (input *NewMeter) validate(ctx context.Context, id int) error {
	if !input.Type.Valid() {
		return utils.NewValidationError("invalid meter type")
	}

	// exactly one attachment
	attachments := 0
	if input.AssetId != nil {
		attachments++
		if err := utils.ValidateResourceId[Asset](ctx, *input.AssetId); err != nil {
			return utils.NewNotFoundError("asset not found")
		}
	}
	if input.BuildingId != nil {
		attachments++
		if err := utils.ValidateResourceId[Building](ctx, *input.BuildingId); err != nil {
			return utils.NewNotFoundError("building not found")
		}
	}
	if input.ZoneId != nil {
		attachments++
		if err := utils.ValidateResourceId[Zone](ctx, *input.ZoneId); err != nil {
			return utils.NewNotFoundError("zone not found")
		}
	}
	if input.SpaceId != nil {
		attachments++
		if err := utils.ValidateResourceId[Space](ctx, *input.SpaceId); err != nil {
			return utils.NewNotFoundError("space not found")
		}
	}
	if attachments != 1 {
		return utils.NewValidationError("meter must attach to exactly one of asset, building, zone, space")
	}

	if input.DeviceId != "" {
		if err := utils.ValidateUnique[Meter](ctx, "device_id", input.DeviceId, id); err != nil {
			return err
		}
	}
	return nil
}

func CreateMeter(ctx context.Context, input *NewMeter) (*Meter, error) {

	if err := input.validate(ctx, 0); err != nil {
		return nil, err
	}

	deviceId := input.DeviceId
	if deviceId == "" {
		deviceId = uuid.NewString()
	}

	meter := Meter{
		Name:       input.Name,
		Type:       input.Type,
		Unit:       input.Unit,
		DeviceId:   deviceId,
		AssetId:    input.AssetId,
		BuildingId: input.BuildingId,
		ZoneId:     input.ZoneId,
		SpaceId:    input.SpaceId,
		IsActive:   utils.NewTrue(),
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&meter).Error; err != nil {
		return nil, err
	}
	return &meter, nil
}

func UpdateMeter(ctx context.Context, id int, input *NewMeter) (*Meter, error) {

	meter, err := utils.FetchModel[Meter](ctx, id)
	if err != nil {
		return nil, utils.NewNotFoundError("meter not found")
	}
	if input.Type != meter.Type {
		// triggers are bound to the type's semantics
		return nil, utils.NewInvalidStateError("meter type cannot change")
	}
	if err := input.validate(ctx, id); err != nil {
		return nil, err
	}

	db := config.GetDB()
	err = db.WithContext(ctx).Model(meter).Updates(map[string]interface{}{
		"Name":       input.Name,
		"Unit":       input.Unit,
		"AssetId":    input.AssetId,
		"BuildingId": input.BuildingId,
		"ZoneId":     input.ZoneId,
		"SpaceId":    input.SpaceId,
	}).Error
	if err != nil {
		return nil, err
	}
	EvictResource[Meter](id)
	return meter, nil
}

func GetMeter(ctx context.Context, id int) (*Meter, error) {
	return GetResource[Meter](ctx, id)
}

// GetMeterByDeviceId resolves a telemetry device to its meter.
func GetMeterByDeviceId(ctx context.Context, deviceId string) (*Meter, error) {

	db := config.GetDB()
	var meter Meter
	err := db.WithContext(ctx).
		Where("device_id = ?", deviceId).First(&meter).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.NewNotFoundError("meter not found for device")
	}
	if err != nil {
		return nil, err
	}
	return &meter, nil
}

func ListMeters(ctx context.Context, meterType *MeterType) ([]*Meter, error) {

	db := config.GetDB()
	var results []*Meter

	dbCtx := db.WithContext(ctx)
	if meterType != nil && *meterType != "" {
		dbCtx = dbCtx.Where("type = ?", *meterType)
	}
	if err := dbCtx.Order("name").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func ToggleActiveMeter(ctx context.Context, id int, isActive bool) (*Meter, error) {
	return ToggleActiveModel[Meter](ctx, id, isActive)
}
