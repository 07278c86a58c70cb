package models_test

import (
	"context"
	"sync"
	"testing"

	"bitbucket.org/mmdatafocus/facility_backend/config"
	"bitbucket.org/mmdatafocus/facility_backend/models"
	"github.com/shopspring/decimal"
)

func seedMeterFixtures(t *testing.T, ctx context.Context, meterType models.MeterType) (*models.Meter, *models.Preventive) {
	t.Helper()

	// background spawns act as the System employee
	if _, err := models.CreateEmployee(ctx, &models.NewEmployee{
		Code: models.SystemEmployeeCode,
		Name: "System",
		Type: models.EmployeeTypeSystem,
	}); err != nil {
		t.Fatalf("seed system employee: %v", err)
	}

	asset, err := models.CreateAsset(ctx, &models.NewAsset{
		Code: "AHU-001",
		Name: "Air Handling Unit",
	})
	if err != nil {
		t.Fatalf("CreateAsset: %v", err)
	}
	preventive, err := models.CreatePreventive(ctx, &models.NewPreventive{
		Description: "Replace filter",
		Priority:    models.PriorityHigh,
		AssetId:     &asset.ID,
	})
	if err != nil {
		t.Fatalf("CreatePreventive: %v", err)
	}
	meter, err := models.CreateMeter(ctx, &models.NewMeter{
		Name:    "Runtime Hours",
		Type:    meterType,
		Unit:    "h",
		AssetId: &asset.ID,
	})
	if err != nil {
		t.Fatalf("CreateMeter: %v", err)
	}
	return meter, preventive
}

func countSpawned(t *testing.T, ctx context.Context, preventiveId int) int64 {
	t.Helper()
	var count int64
	err := config.GetDB().WithContext(ctx).Model(&models.Maintenance{}).
		Where("prev_maintenance_config_id = ?", preventiveId).
		Count(&count).Error
	if err != nil {
		t.Fatalf("count spawned: %v", err)
	}
	return count
}

func TestCumulativeTriggerFiresOncePerInterval(t *testing.T) {
	ctx := setupIntegration(t)
	meter, preventive := seedMeterFixtures(t, ctx, models.MeterTypeCumulative)

	trigger, err := models.CreateTrigger(ctx, meter.ID, &models.NewMeterMaintenanceTrigger{
		PreventiveId: preventive.ID,
		Condition:    models.TriggerConditionEveryXUnits,
		TriggerValue: decimal.NewFromInt(1000),
	})
	if err != nil {
		t.Fatalf("CreateTrigger: %v", err)
	}

	record := func(value int64) {
		t.Helper()
		if _, err := models.RecordReading(ctx, &models.NewMeterReading{
			MeterId: meter.ID,
			Value:   decimal.NewFromInt(value),
		}); err != nil {
			t.Fatalf("RecordReading(%d): %v", value, err)
		}
	}

	record(500)
	if got := countSpawned(t, ctx, preventive.ID); got != 0 {
		t.Fatalf("below threshold: spawned %d; want 0", got)
	}

	record(1000)
	if got := countSpawned(t, ctx, preventive.ID); got != 1 {
		t.Fatalf("at threshold: spawned %d; want 1", got)
	}

	// fire state must have advanced to 1000: 1500 is only half an interval
	record(1500)
	if got := countSpawned(t, ctx, preventive.ID); got != 1 {
		t.Fatalf("half interval: spawned %d; want still 1", got)
	}

	record(2100)
	if got := countSpawned(t, ctx, preventive.ID); got != 2 {
		t.Fatalf("next interval: spawned %d; want 2", got)
	}

	var persisted models.MeterMaintenanceTrigger
	if err := config.GetDB().WithContext(ctx).First(&persisted, trigger.ID).Error; err != nil {
		t.Fatalf("reload trigger: %v", err)
	}
	if persisted.LastTriggerReading == nil || persisted.LastTriggerReading.Cmp(decimal.NewFromInt(2100)) != 0 {
		t.Fatalf("last_trigger_reading = %v; want 2100", persisted.LastTriggerReading)
	}
}

func TestGaugeTriggerDebouncesWhileWorkOrderOpen(t *testing.T) {
	ctx := setupIntegration(t)
	meter, preventive := seedMeterFixtures(t, ctx, models.MeterTypeGauge)

	if _, err := models.CreateTrigger(ctx, meter.ID, &models.NewMeterMaintenanceTrigger{
		PreventiveId: preventive.ID,
		Condition:    models.TriggerConditionAboveThreshold,
		TriggerValue: decimal.NewFromInt(80),
	}); err != nil {
		t.Fatalf("CreateTrigger: %v", err)
	}

	record := func(value string) {
		t.Helper()
		v, err := decimal.NewFromString(value)
		if err != nil {
			t.Fatalf("parse %q: %v", value, err)
		}
		if _, err := models.RecordReading(ctx, &models.NewMeterReading{
			MeterId: meter.ID,
			Value:   v,
		}); err != nil {
			t.Fatalf("RecordReading(%s): %v", value, err)
		}
	}

	// exactly at the threshold never fires
	record("80")
	if got := countSpawned(t, ctx, preventive.ID); got != 0 {
		t.Fatalf("at threshold: spawned %d; want 0", got)
	}

	record("80.01")
	if got := countSpawned(t, ctx, preventive.ID); got != 1 {
		t.Fatalf("over threshold: spawned %d; want 1", got)
	}

	// still over threshold but the work order is open: debounced
	record("85")
	if got := countSpawned(t, ctx, preventive.ID); got != 1 {
		t.Fatalf("debounce: spawned %d; want still 1", got)
	}

	// complete the open work order, then the next crossing fires again
	var open models.Maintenance
	err := config.GetDB().WithContext(ctx).
		Where("prev_maintenance_config_id = ?", preventive.ID).
		First(&open).Error
	if err != nil {
		t.Fatalf("load spawned work order: %v", err)
	}
	if open.Type != models.MaintenanceTypePredictive {
		t.Fatalf("spawned type = %s; want PREDICTIVE", open.Type)
	}
	if _, err := models.TransitionMaintenanceStatus(ctx, open.ID, models.ProcessStatusInProgress); err != nil {
		t.Fatalf("transition to IN_PROGRESS: %v", err)
	}
	if _, err := models.TransitionMaintenanceStatus(ctx, open.ID, models.ProcessStatusCompleted); err != nil {
		t.Fatalf("transition to COMPLETED: %v", err)
	}

	record("86")
	if got := countSpawned(t, ctx, preventive.ID); got != 2 {
		t.Fatalf("after completion: spawned %d; want 2", got)
	}
}

func TestGaugeTriggerConcurrentReadingsSpawnOnce(t *testing.T) {
	ctx := setupIntegration(t)
	meter, preventive := seedMeterFixtures(t, ctx, models.MeterTypeGauge)

	if _, err := models.CreateTrigger(ctx, meter.ID, &models.NewMeterMaintenanceTrigger{
		PreventiveId: preventive.ID,
		Condition:    models.TriggerConditionAboveThreshold,
		TriggerValue: decimal.NewFromInt(80),
	}); err != nil {
		t.Fatalf("CreateTrigger: %v", err)
	}

	// two over-threshold readings racing on the same trigger: the row lock
	// serializes them, so the loser sees the winner's open work order
	errs := make(chan error, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := models.RecordReading(ctx, &models.NewMeterReading{
				MeterId: meter.ID,
				Value:   decimal.NewFromInt(90),
			})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("RecordReading: %v", err)
		}
	}

	if got := countSpawned(t, ctx, preventive.ID); got != 1 {
		t.Fatalf("concurrent readings: spawned %d; want 1", got)
	}
}
