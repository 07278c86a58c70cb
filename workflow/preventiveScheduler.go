package workflow

import (
	"context"
	"errors"
	"time"

	"bitbucket.org/mmdatafocus/facility_backend/config"
	"bitbucket.org/mmdatafocus/facility_backend/models"
	"bitbucket.org/mmdatafocus/facility_backend/utils"
	"github.com/bsm/redislock"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const schedulerLockKey = "PreventiveScheduler:sweep"

// PreventiveScheduler fires preventive templates whose next_run has elapsed.
// One sweep per tick; sweeps never overlap (single goroutine per process, a
// redis lock across replicas, SKIP LOCKED row claims underneath both).
type PreventiveScheduler struct {
	DB       *gorm.DB
	Logger   *logrus.Logger
	WorkerID string
	Interval time.Duration
	LockTTL  time.Duration
}

func NewPreventiveScheduler(db *gorm.DB, logger *logrus.Logger) *PreventiveScheduler {
	return &PreventiveScheduler{
		DB:       db,
		Logger:   logger,
		WorkerID: "scheduler-" + time.Now().Format("20060102-150405.000"),
		Interval: time.Minute,
		LockTTL:  50 * time.Second,
	}
}

func (s *PreventiveScheduler) Run(ctx context.Context) {
	if s == nil || s.DB == nil {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		s.Sweep(ctx)
		select {
		case <-ctx.Done():
			return
		case <-time.After(s.Interval):
		}
	}
}

// Sweep fires every due template once. Templates are processed independently:
// one failure is logged and the rest still fire.
func (s *PreventiveScheduler) Sweep(ctx context.Context) {

	// best-effort cross-replica guard; row locks still protect correctness
	locker := config.GetRedisLock()
	if locker != nil {
		lock, err := locker.Obtain(ctx, schedulerLockKey, s.LockTTL, nil)
		if err != nil {
			if !errors.Is(err, redislock.ErrNotObtained) && s.Logger != nil {
				config.LogError(s.Logger, "PreventiveScheduler", "Sweep",
					"obtain sweep lock", s.WorkerID, err)
			}
			return
		}
		defer lock.Release(context.Background())
	}

	procCtx := utils.SetUserIdInContext(ctx, 0)
	procCtx = utils.SetUserNameInContext(procCtx, "System")

	requesterId, err := models.GetSystemEmployeeId(procCtx)
	if err != nil {
		config.LogError(s.Logger, "PreventiveScheduler", "Sweep",
			"resolve system employee", s.WorkerID, err)
		return
	}

	now := time.Now()
	var dueIds []int
	err = s.DB.WithContext(procCtx).Model(&models.Preventive{}).
		Where("next_run IS NOT NULL AND next_run <= ?", now).
		Where("frequency IS NOT NULL").
		Where("is_active = ?", true).
		Order("next_run ASC").
		Pluck("id", &dueIds).Error
	if err != nil {
		config.LogError(s.Logger, "PreventiveScheduler", "Sweep",
			"query due templates", s.WorkerID, err)
		return
	}

	for _, id := range dueIds {
		if err := s.fireOne(procCtx, id, requesterId, now); err != nil {
			config.LogError(s.Logger, "PreventiveScheduler", "Sweep",
				"fire template", id, err)
		}
	}
}

// fireOne spawns the work order and advances next_run in one transaction, so
// a template can never fire again on the next tick without having been
// rescheduled.
func (s *PreventiveScheduler) fireOne(ctx context.Context, preventiveId int, requesterId int, now time.Time) error {

	var spawned *models.Maintenance
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {

		var preventive models.Preventive
		err := tx.Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"}).
			First(&preventive, preventiveId).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// claimed by another worker
			return nil
		}
		if err != nil {
			return err
		}

		// re-check under lock
		if preventive.NextRun == nil || preventive.NextRun.After(now) || preventive.Frequency == nil {
			return nil
		}
		if preventive.IsActive != nil && !*preventive.IsActive {
			return nil
		}

		spawned, err = models.SpawnMaintenanceFromPreventive(tx, ctx, &preventive,
			models.MaintenanceTypePreventive, requesterId)
		if err != nil {
			return err
		}

		duration := preventive.DurationMinutes
		if duration <= 0 {
			duration = 60
		}
		endDate := now.Add(time.Duration(duration) * time.Minute)
		if err := tx.Model(spawned).Updates(map[string]interface{}{
			"StartDate": now,
			"EndDate":   endDate,
		}).Error; err != nil {
			return err
		}

		nextRun := models.NextOccurrence(now, *preventive.Frequency, preventive.IntervalDays)
		return tx.Model(&preventive).Update("next_run", nextRun).Error
	})
	if err != nil {
		return err
	}
	if spawned != nil {
		models.PublishSpawnEvent(ctx, spawned, 0, 0)
	}
	return nil
}
