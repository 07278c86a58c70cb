package models

import (
	"context"
	"time"

	"bitbucket.org/mmdatafocus/facility_backend/config"
	"bitbucket.org/mmdatafocus/facility_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MeterMaintenanceTrigger binds a preventive template to a meter.
// LastTriggerReading is cumulative-only state: the meter value at which the
// trigger last fired. It only moves forward.
type MeterMaintenanceTrigger struct {
	ID                 int              `gorm:"primary_key" json:"id"`
	MeterId            int              `gorm:"index;not null" json:"meter_id"`
	PreventiveId       int              `gorm:"index;not null" json:"preventive_id"`
	Preventive         *Preventive      `gorm:"foreignKey:PreventiveId" json:"preventive,omitempty"`
	Condition          TriggerCondition `gorm:"type:enum('EVERY_X_UNITS','ABOVE_THRESHOLD','BELOW_THRESHOLD');not null" json:"condition"`
	TriggerValue       decimal.Decimal  `gorm:"type:decimal(20,4);not null" json:"trigger_value"`
	LastTriggerReading *decimal.Decimal `gorm:"type:decimal(20,4)" json:"last_trigger_reading"`
	IsActive           *bool            `gorm:"not null;default:true" json:"is_active"`
	CreatedAt          time.Time        `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt          time.Time        `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewMeterMaintenanceTrigger struct {
	PreventiveId int              `json:"preventive_id" binding:"required"`
	Condition    TriggerCondition `json:"condition" binding:"required"`
	TriggerValue decimal.Decimal  `json:"trigger_value" binding:"required"`
}

func (input *NewMeterMaintenanceTrigger) validate(ctx context.Context, meter *Meter) error {
	if !input.Condition.Valid() {
		return utils.NewValidationError("invalid trigger condition")
	}
	// condition must match the meter type
	switch meter.Type {
	case MeterTypeCumulative:
		if input.Condition != TriggerConditionEveryXUnits {
			return utils.NewValidationError("cumulative meters only support EVERY_X_UNITS")
		}
		if !input.TriggerValue.IsPositive() {
			return utils.NewValidationError("trigger value must be positive")
		}
	case MeterTypeGauge:
		if input.Condition == TriggerConditionEveryXUnits {
			return utils.NewValidationError("gauge meters do not support EVERY_X_UNITS")
		}
	}
	if err := utils.ValidateResourceId[Preventive](ctx, input.PreventiveId); err != nil {
		return utils.NewNotFoundError("preventive not found")
	}
	return nil
}

func CreateTrigger(ctx context.Context, meterId int, input *NewMeterMaintenanceTrigger) (*MeterMaintenanceTrigger, error) {

	meter, err := utils.FetchModel[Meter](ctx, meterId)
	if err != nil {
		return nil, utils.NewNotFoundError("meter not found")
	}
	if err := input.validate(ctx, meter); err != nil {
		return nil, err
	}

	trigger := MeterMaintenanceTrigger{
		MeterId:      meterId,
		PreventiveId: input.PreventiveId,
		Condition:    input.Condition,
		TriggerValue: input.TriggerValue,
		IsActive:     utils.NewTrue(),
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&trigger).Error; err != nil {
		return nil, err
	}
	return &trigger, nil
}

func ListTriggers(ctx context.Context, meterId int) ([]*MeterMaintenanceTrigger, error) {

	db := config.GetDB()
	var results []*MeterMaintenanceTrigger
	err := db.WithContext(ctx).Preload("Preventive").
		Where("meter_id = ?", meterId).
		Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

func DeleteTrigger(ctx context.Context, id int) (*MeterMaintenanceTrigger, error) {

	trigger, err := utils.FetchModel[MeterMaintenanceTrigger](ctx, id)
	if err != nil {
		return nil, utils.NewNotFoundError("trigger not found")
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Delete(trigger).Error; err != nil {
		return nil, err
	}
	return trigger, nil
}

// cumulativeTriggerDue fires when the distance travelled since the last fire
// reaches the threshold. Unset last readings count from zero; exactly equal
// fires.
func cumulativeTriggerDue(value decimal.Decimal, lastTriggerReading *decimal.Decimal, triggerValue decimal.Decimal) bool {
	last := decimal.Zero
	if lastTriggerReading != nil {
		last = *lastTriggerReading
	}
	return value.Sub(last).GreaterThanOrEqual(triggerValue)
}

// gaugeTriggerDue uses strict comparisons: a reading exactly at the threshold
// does not fire.
func gaugeTriggerDue(condition TriggerCondition, value decimal.Decimal, triggerValue decimal.Decimal) bool {
	switch condition {
	case TriggerConditionAboveThreshold:
		return value.GreaterThan(triggerValue)
	case TriggerConditionBelowThreshold:
		return value.LessThan(triggerValue)
	}
	return false
}

// EvaluateTriggersForReading runs every active trigger for a meter against a
// new reading. Each trigger is an independent unit of work: its failure is
// logged and the siblings still run.
func EvaluateTriggersForReading(ctx context.Context, meter *Meter, reading *MeterReading) {

	logger := config.GetLogger()

	triggers, err := ListTriggers(ctx, meter.ID)
	if err != nil {
		config.LogError(logger, "Trigger", "EvaluateTriggersForReading",
			"load triggers", meter.ID, err)
		return
	}

	for _, trigger := range triggers {
		if trigger.IsActive != nil && !*trigger.IsActive {
			continue
		}
		var err error
		switch meter.Type {
		case MeterTypeCumulative:
			if trigger.Condition == TriggerConditionEveryXUnits {
				err = evaluateCumulativeTrigger(ctx, meter, trigger, reading)
			}
		case MeterTypeGauge:
			err = evaluateGaugeTrigger(ctx, meter, trigger, reading)
		}
		if err != nil {
			config.LogError(logger, "Trigger", "EvaluateTriggersForReading",
				"evaluate trigger", trigger.ID, err)
		}
	}
}

// evaluateCumulativeTrigger serializes per trigger row: two readings racing
// on the same trigger must not both fire on stale state. The fire and the
// lastTriggerReading advance commit together.
func evaluateCumulativeTrigger(ctx context.Context, meter *Meter, trigger *MeterMaintenanceTrigger, reading *MeterReading) error {

	requesterId, err := GetSystemEmployeeId(ctx)
	if err != nil {
		return err
	}

	var spawned *Maintenance
	db := config.GetDB()
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {

		var locked MeterMaintenanceTrigger
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Preload("Preventive").
			First(&locked, trigger.ID).Error
		if err != nil {
			return err
		}
		if locked.Preventive == nil {
			return utils.NewNotFoundError("preventive template missing")
		}

		if !cumulativeTriggerDue(reading.Value, locked.LastTriggerReading, locked.TriggerValue) {
			return nil
		}

		spawned, err = SpawnMaintenanceFromPreventive(tx, ctx, locked.Preventive,
			MaintenanceTypePredictive, requesterId)
		if err != nil {
			return err
		}

		return tx.Model(&locked).
			Update("last_trigger_reading", reading.Value).Error
	})
	if err != nil {
		return err
	}
	if spawned != nil {
		PublishSpawnEvent(ctx, spawned, meter.ID, trigger.ID)
	}
	return nil
}

// evaluateGaugeTrigger serializes per trigger row like the cumulative path:
// two over-threshold readings racing on the same trigger must not both pass
// the debounce check.
func evaluateGaugeTrigger(ctx context.Context, meter *Meter, trigger *MeterMaintenanceTrigger, reading *MeterReading) error {

	if !gaugeTriggerDue(trigger.Condition, reading.Value, trigger.TriggerValue) {
		return nil
	}

	requesterId, err := GetSystemEmployeeId(ctx)
	if err != nil {
		return err
	}

	var spawned *Maintenance
	db := config.GetDB()
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {

		var locked MeterMaintenanceTrigger
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Preload("Preventive").
			First(&locked, trigger.ID).Error
		if err != nil {
			return err
		}
		if locked.Preventive == nil {
			return utils.NewNotFoundError("preventive template missing")
		}

		// suppress repeat fires while an open work order exists
		if config.GaugeTriggerDebounce() {
			open, err := HasOpenAutoSpawned(tx, locked.PreventiveId)
			if err != nil {
				return err
			}
			if open {
				return nil
			}
		}

		spawned, err = SpawnMaintenanceFromPreventive(tx, ctx, locked.Preventive,
			MaintenanceTypePredictive, requesterId)
		return err
	})
	if err != nil {
		return err
	}
	if spawned != nil {
		PublishSpawnEvent(ctx, spawned, meter.ID, trigger.ID)
	}
	return nil
}
