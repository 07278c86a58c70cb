package models

import (
	"context"
	"fmt"
	"time"

	"bitbucket.org/mmdatafocus/facility_backend/config"
	"bitbucket.org/mmdatafocus/facility_backend/utils"
	"gorm.io/gorm"
)

type Maintenance struct {
	ID                      int             `gorm:"primary_key" json:"id"`
	SequenceNo              int64           `gorm:"index;not null" json:"sequence_no"`
	Code                    string          `gorm:"size:50;uniqueIndex;not null" json:"code"`
	Type                    MaintenanceType `gorm:"type:enum('CORRECTIVE','PREVENTIVE','PREDICTIVE','INSPECTION');not null" json:"type"`
	Description             string          `gorm:"type:text;not null" json:"description"`
	Priority                Priority        `gorm:"type:enum('LOW','MEDIUM','HIGH');default:MEDIUM" json:"priority"`
	Status                  ProcessStatus   `gorm:"type:enum('PENDING','IN_PROGRESS','COMPLETED');default:PENDING" json:"status"`
	RequesterId             int             `gorm:"index;not null" json:"requester_id"`
	AssigneeId              *int            `gorm:"index" json:"assignee_id"`
	TeamId                  *int            `gorm:"index" json:"team_id"`
	SiteId                  *int            `gorm:"index" json:"site_id"`
	BuildingId              *int            `gorm:"index" json:"building_id"`
	FloorId                 *int            `gorm:"index" json:"floor_id"`
	ZoneId                  *int            `gorm:"index" json:"zone_id"`
	SpaceId                 *int            `gorm:"index" json:"space_id"`
	AssetId                 *int            `gorm:"index" json:"asset_id"`
	PrevMaintenanceConfigId *int            `gorm:"index" json:"prev_maintenance_config_id"`
	StartDate               *time.Time      `json:"start_date"`
	EndDate                 *time.Time      `json:"end_date"`
	CompletedAt             *time.Time      `json:"completed_at"`
	CreatedAt               time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt               time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewMaintenance struct {
	Type        MaintenanceType `json:"type" binding:"required"`
	Description string          `json:"description" binding:"required"`
	Priority    Priority        `json:"priority"`
	RequesterId int             `json:"requester_id" binding:"required"`
	AssigneeId  *int            `json:"assignee_id"`
	TeamId      *int            `json:"team_id"`
	SiteId      *int            `json:"site_id"`
	BuildingId  *int            `json:"building_id"`
	FloorId     *int            `json:"floor_id"`
	ZoneId      *int            `json:"zone_id"`
	SpaceId     *int            `json:"space_id"`
	AssetId     *int            `json:"asset_id"`
	StartDate   *time.Time      `json:"start_date"`
	EndDate     *time.Time      `json:"end_date"`
}

func (input *NewMaintenance) validate(ctx context.Context) error {
	if !input.Type.Valid() {
		return utils.NewValidationError("invalid maintenance type")
	}
	if input.Priority != "" && !input.Priority.Valid() {
		return utils.NewValidationError("invalid priority")
	}
	if err := utils.ValidateResourceId[Employee](ctx, input.RequesterId); err != nil {
		return utils.NewNotFoundError("requester not found")
	}
	if input.AssigneeId != nil {
		if err := utils.ValidateResourceId[Employee](ctx, *input.AssigneeId); err != nil {
			return utils.NewNotFoundError("assignee not found")
		}
	}
	if input.AssetId != nil {
		if err := utils.ValidateResourceId[Asset](ctx, *input.AssetId); err != nil {
			return utils.NewNotFoundError("asset not found")
		}
	}
	return nil
}

// CreateMaintenance records a manually requested work order.
func CreateMaintenance(ctx context.Context, input *NewMaintenance) (*Maintenance, error) {

	if err := input.validate(ctx); err != nil {
		return nil, err
	}

	seq, err := utils.GetSequence[Maintenance](ctx)
	if err != nil {
		return nil, err
	}

	priority := input.Priority
	if priority == "" {
		priority = PriorityMedium
	}

	maintenance := Maintenance{
		SequenceNo:  seq,
		Code:        fmt.Sprintf("WO-%06d", seq),
		Type:        input.Type,
		Description: input.Description,
		Priority:    priority,
		Status:      ProcessStatusPending,
		RequesterId: input.RequesterId,
		AssigneeId:  input.AssigneeId,
		TeamId:      input.TeamId,
		SiteId:      input.SiteId,
		BuildingId:  input.BuildingId,
		FloorId:     input.FloorId,
		ZoneId:      input.ZoneId,
		SpaceId:     input.SpaceId,
		AssetId:     input.AssetId,
		StartDate:   input.StartDate,
		EndDate:     input.EndDate,
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&maintenance).Error; err != nil {
		return nil, err
	}
	return &maintenance, nil
}

// SpawnMaintenanceFromPreventive materializes a work order from a template
// inside the caller's transaction. Every binding present on the template is
// copied through; missing optional bindings pass as nil. The template itself
// is not touched (callers advance their own fire-state).
func SpawnMaintenanceFromPreventive(tx *gorm.DB, ctx context.Context, preventive *Preventive, mType MaintenanceType, requesterId int) (*Maintenance, error) {

	seq, err := utils.GetSequence[Maintenance](ctx)
	if err != nil {
		return nil, err
	}

	prevId := preventive.ID
	maintenance := Maintenance{
		SequenceNo:              seq,
		Code:                    fmt.Sprintf("WO-%06d", seq),
		Type:                    mType,
		Description:             preventive.Description,
		Priority:                preventive.Priority,
		Status:                  ProcessStatusPending,
		RequesterId:             requesterId,
		TeamId:                  preventive.TeamId,
		SiteId:                  preventive.SiteId,
		BuildingId:              preventive.BuildingId,
		FloorId:                 preventive.FloorId,
		ZoneId:                  preventive.ZoneId,
		SpaceId:                 preventive.SpaceId,
		AssetId:                 preventive.AssetId,
		PrevMaintenanceConfigId: &prevId,
	}

	if err := tx.Create(&maintenance).Error; err != nil {
		return nil, err
	}
	return &maintenance, nil
}

// PublishSpawnEvent emits the maintenance.spawned event after commit.
// Best-effort: failures are logged, never returned.
func PublishSpawnEvent(ctx context.Context, maintenance *Maintenance, meterId int, triggerId int) {

	logger := config.GetLogger()
	correlationId, _ := utils.GetCorrelationIdFromContext(ctx)

	event := config.MaintenanceEvent{
		MaintenanceId: maintenance.ID,
		Code:          maintenance.Code,
		Type:          string(maintenance.Type),
		PreventiveId:  utils.DereferencePtr(maintenance.PrevMaintenanceConfigId),
		MeterId:       meterId,
		TriggerId:     triggerId,
		SpawnedAt:     time.Now(),
		CorrelationId: correlationId,
	}
	if _, err := config.PublishMaintenanceEvent(ctx, event); err != nil {
		config.LogError(logger, "Maintenance", "PublishSpawnEvent",
			maintenance.Code, event, err)
	}
}

// HasOpenAutoSpawned reports whether a not-yet-completed auto-spawned work
// order exists for the template. Used to debounce gauge triggers.
func HasOpenAutoSpawned(tx *gorm.DB, preventiveId int) (bool, error) {

	var count int64
	err := tx.Model(&Maintenance{}).
		Where("prev_maintenance_config_id = ? AND status <> ? AND type IN ?",
			preventiveId, ProcessStatusCompleted,
			[]MaintenanceType{MaintenanceTypePreventive, MaintenanceTypePredictive}).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func GetMaintenance(ctx context.Context, id int) (*Maintenance, error) {
	return utils.FetchModel[Maintenance](ctx, id)
}

func ListMaintenances(ctx context.Context, status *ProcessStatus, mType *MaintenanceType) ([]*Maintenance, error) {

	db := config.GetDB()
	var results []*Maintenance

	dbCtx := db.WithContext(ctx)
	if status != nil && *status != "" {
		dbCtx = dbCtx.Where("status = ?", *status)
	}
	if mType != nil && *mType != "" {
		dbCtx = dbCtx.Where("type = ?", *mType)
	}
	if err := dbCtx.Order("id desc").Limit(500).Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// TransitionMaintenanceStatus enforces PENDING -> IN_PROGRESS -> COMPLETED.
func TransitionMaintenanceStatus(ctx context.Context, id int, next ProcessStatus) (*Maintenance, error) {

	maintenance, err := utils.FetchModel[Maintenance](ctx, id)
	if err != nil {
		return nil, utils.NewNotFoundError("maintenance not found")
	}
	if !maintenance.Status.CanTransitionTo(next) {
		return nil, utils.NewInvalidStateError(
			fmt.Sprintf("cannot transition from %s to %s", maintenance.Status, next))
	}

	updates := map[string]interface{}{"Status": next}
	now := time.Now()
	switch next {
	case ProcessStatusInProgress:
		if maintenance.StartDate == nil {
			updates["StartDate"] = now
		}
	case ProcessStatusCompleted:
		updates["CompletedAt"] = now
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Model(maintenance).Updates(updates).Error; err != nil {
		return nil, err
	}
	return maintenance, nil
}

func AssignMaintenance(ctx context.Context, id int, assigneeId *int, teamId *int) (*Maintenance, error) {

	maintenance, err := utils.FetchModel[Maintenance](ctx, id)
	if err != nil {
		return nil, utils.NewNotFoundError("maintenance not found")
	}
	if maintenance.Status == ProcessStatusCompleted {
		return nil, utils.NewInvalidStateError("completed work orders cannot be reassigned")
	}
	if assigneeId != nil {
		if err := utils.ValidateResourceId[Employee](ctx, *assigneeId); err != nil {
			return nil, utils.NewNotFoundError("assignee not found")
		}
	}
	if teamId != nil {
		if err := utils.ValidateResourceId[Team](ctx, *teamId); err != nil {
			return nil, utils.NewNotFoundError("team not found")
		}
	}

	db := config.GetDB()
	err = db.WithContext(ctx).Model(maintenance).Updates(map[string]interface{}{
		"AssigneeId": assigneeId,
		"TeamId":     teamId,
	}).Error
	if err != nil {
		return nil, err
	}
	return maintenance, nil
}
