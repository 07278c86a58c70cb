package models

import (
	"context"
	"fmt"
	"time"

	"bitbucket.org/mmdatafocus/facility_backend/config"
	"bitbucket.org/mmdatafocus/facility_backend/utils"
)

// Preventive is a reusable maintenance template. The scheduler fires it when
// NextRun elapses; meter triggers fire it on threshold crossings. NextRun is
// advanced by the scheduler in the same transaction as each spawn.
type Preventive struct {
	ID              int        `gorm:"primary_key" json:"id"`
	SequenceNo      int64      `gorm:"index;not null" json:"sequence_no"`
	Code            string     `gorm:"size:50;uniqueIndex;not null" json:"code"`
	Description     string     `gorm:"type:text;not null" json:"description"`
	Priority        Priority   `gorm:"type:enum('LOW','MEDIUM','HIGH');default:MEDIUM" json:"priority"`
	Frequency       *Frequency `gorm:"type:enum('DAILY','WEEKLY','MONTHLY','YEARLY','CUSTOM')" json:"frequency"`
	IntervalDays    int        `gorm:"default:0" json:"interval_days"`
	NextRun         *time.Time `gorm:"index" json:"next_run"`
	DurationMinutes int        `gorm:"default:60" json:"duration_minutes"`
	SiteId          *int       `gorm:"index" json:"site_id"`
	BuildingId      *int       `gorm:"index" json:"building_id"`
	FloorId         *int       `gorm:"index" json:"floor_id"`
	ZoneId          *int       `gorm:"index" json:"zone_id"`
	SpaceId         *int       `gorm:"index" json:"space_id"`
	AssetId         *int       `gorm:"index" json:"asset_id"`
	TeamId          *int       `gorm:"index" json:"team_id"`
	IsActive        *bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt       time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewPreventive struct {
	Description     string     `json:"description" binding:"required"`
	Priority        Priority   `json:"priority"`
	Frequency       *Frequency `json:"frequency"`
	IntervalDays    int        `json:"interval_days"`
	NextRun         *time.Time `json:"next_run"`
	DurationMinutes int        `json:"duration_minutes"`
	SiteId          *int       `json:"site_id"`
	BuildingId      *int       `json:"building_id"`
	FloorId         *int       `json:"floor_id"`
	ZoneId          *int       `json:"zone_id"`
	SpaceId         *int       `json:"space_id"`
	AssetId         *int       `json:"asset_id"`
	TeamId          *int       `json:"team_id"`
}

func (input *NewPreventive) validate(ctx context.Context) error {
	if input.Priority != "" && !input.Priority.Valid() {
		return utils.NewValidationError("invalid priority")
	}
	if input.Frequency != nil {
		if !input.Frequency.Valid() {
			return utils.NewValidationError("invalid frequency")
		}
		if input.NextRun == nil {
			return utils.NewValidationError("next_run is required with a frequency")
		}
		if *input.Frequency == FrequencyCustom && input.IntervalDays <= 0 {
			return utils.NewValidationError("interval_days is required for custom frequency")
		}
	}
	if input.AssetId != nil {
		if err := utils.ValidateResourceId[Asset](ctx, *input.AssetId); err != nil {
			return utils.NewNotFoundError("asset not found")
		}
	}
	if input.TeamId != nil {
		if err := utils.ValidateResourceId[Team](ctx, *input.TeamId); err != nil {
			return utils.NewNotFoundError("team not found")
		}
	}
	return nil
}

func CreatePreventive(ctx context.Context, input *NewPreventive) (*Preventive, error) {

	if err := input.validate(ctx); err != nil {
		return nil, err
	}

	seq, err := utils.GetSequence[Preventive](ctx)
	if err != nil {
		return nil, err
	}

	priority := input.Priority
	if priority == "" {
		priority = PriorityMedium
	}
	duration := input.DurationMinutes
	if duration <= 0 {
		duration = 60
	}

	preventive := Preventive{
		SequenceNo:      seq,
		Code:            fmt.Sprintf("PM-%06d", seq),
		Description:     input.Description,
		Priority:        priority,
		Frequency:       input.Frequency,
		IntervalDays:    input.IntervalDays,
		NextRun:         input.NextRun,
		DurationMinutes: duration,
		SiteId:          input.SiteId,
		BuildingId:      input.BuildingId,
		FloorId:         input.FloorId,
		ZoneId:          input.ZoneId,
		SpaceId:         input.SpaceId,
		AssetId:         input.AssetId,
		TeamId:          input.TeamId,
		IsActive:        utils.NewTrue(),
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&preventive).Error; err != nil {
		return nil, err
	}
	return &preventive, nil
}

func UpdatePreventive(ctx context.Context, id int, input *NewPreventive) (*Preventive, error) {

	if err := input.validate(ctx); err != nil {
		return nil, err
	}

	preventive, err := utils.FetchModel[Preventive](ctx, id)
	if err != nil {
		return nil, utils.NewNotFoundError("preventive not found")
	}

	db := config.GetDB()
	err = db.WithContext(ctx).Model(preventive).Updates(map[string]interface{}{
		"Description":     input.Description,
		"Priority":        input.Priority,
		"Frequency":       input.Frequency,
		"IntervalDays":    input.IntervalDays,
		"NextRun":         input.NextRun,
		"DurationMinutes": input.DurationMinutes,
		"SiteId":          input.SiteId,
		"BuildingId":      input.BuildingId,
		"FloorId":         input.FloorId,
		"ZoneId":          input.ZoneId,
		"SpaceId":         input.SpaceId,
		"AssetId":         input.AssetId,
		"TeamId":          input.TeamId,
	}).Error
	if err != nil {
		return nil, err
	}
	EvictResource[Preventive](id)
	return preventive, nil
}

func GetPreventive(ctx context.Context, id int) (*Preventive, error) {
	return GetResource[Preventive](ctx, id)
}

func ListPreventives(ctx context.Context) ([]*Preventive, error) {
	return utils.FetchAllModels[Preventive](ctx)
}

func ToggleActivePreventive(ctx context.Context, id int, isActive bool) (*Preventive, error) {
	return ToggleActiveModel[Preventive](ctx, id, isActive)
}

// NextOccurrence advances a fire time by one period. CUSTOM uses
// intervalDays, treating values below one day as one day.
func NextOccurrence(from time.Time, frequency Frequency, intervalDays int) time.Time {
	switch frequency {
	case FrequencyDaily:
		return from.AddDate(0, 0, 1)
	case FrequencyWeekly:
		return from.AddDate(0, 0, 7)
	case FrequencyMonthly:
		return from.AddDate(0, 1, 0)
	case FrequencyYearly:
		return from.AddDate(1, 0, 0)
	case FrequencyCustom:
		days := intervalDays
		if days < 1 {
			days = 1
		}
		return from.AddDate(0, 0, days)
	}
	return from.AddDate(0, 0, 1)
}
