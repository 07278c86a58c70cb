package models

import (
	"context"
	"time"

	"bitbucket.org/mmdatafocus/facility_backend/config"
	"bitbucket.org/mmdatafocus/facility_backend/utils"
	"github.com/shopspring/decimal"
)

// MeterReading is an immutable fact: one observation of one meter.
type MeterReading struct {
	ID        int             `gorm:"primary_key" json:"id"`
	MeterId   int             `gorm:"index;not null" json:"meter_id"`
	Value     decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"value"`
	Timestamp time.Time       `gorm:"index;not null" json:"timestamp"`
	CreatedAt time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

type NewMeterReading struct {
	MeterId   int             `json:"meter_id"`
	DeviceId  string          `json:"device_id"`
	Value     decimal.Decimal `json:"value" binding:"required"`
	Timestamp *time.Time      `json:"timestamp"`
}

// RecordReading persists a reading then evaluates the meter's triggers before
// returning. Trigger evaluation never fails the ingestion: evaluation errors
// are logged per trigger inside the evaluator.
func RecordReading(ctx context.Context, input *NewMeterReading) (*MeterReading, error) {

	var meter *Meter
	var err error
	switch {
	case input.MeterId != 0:
		meter, err = utils.FetchModel[Meter](ctx, input.MeterId)
		if err != nil {
			return nil, utils.NewNotFoundError("meter not found")
		}
	case input.DeviceId != "":
		meter, err = GetMeterByDeviceId(ctx, input.DeviceId)
		if err != nil {
			return nil, err
		}
	default:
		return nil, utils.NewValidationError("meter_id or device_id is required")
	}

	if meter.IsActive != nil && !*meter.IsActive {
		return nil, utils.NewInvalidStateError("meter is inactive")
	}

	timestamp := time.Now()
	if input.Timestamp != nil {
		timestamp = *input.Timestamp
	}

	reading := MeterReading{
		MeterId:   meter.ID,
		Value:     input.Value,
		Timestamp: timestamp,
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&reading).Error; err != nil {
		return nil, err
	}

	EvaluateTriggersForReading(ctx, meter, &reading)

	return &reading, nil
}

func ListReadings(ctx context.Context, meterId int, limit int) ([]*MeterReading, error) {

	if limit <= 0 || limit > 1000 {
		limit = 100
	}

	db := config.GetDB()
	var results []*MeterReading
	err := db.WithContext(ctx).
		Where("meter_id = ?", meterId).
		Order("timestamp desc").Limit(limit).
		Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}
