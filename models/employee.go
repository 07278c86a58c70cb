package models

import (
	"context"
	"errors"
	"time"

	"bitbucket.org/mmdatafocus/facility_backend/config"
	"bitbucket.org/mmdatafocus/facility_backend/utils"
)

// SystemEmployeeCode is the acting identity for auto-spawned work orders
// (scheduler and meter triggers). Seeded by cmd/seed-admin.
const SystemEmployeeCode = "EMP-SYSTEM"

type Employee struct {
	ID        int          `gorm:"primary_key" json:"id"`
	Code      string       `gorm:"size:50;uniqueIndex;not null" json:"code"`
	Name      string       `gorm:"size:100;not null" json:"name"`
	Type      EmployeeType `gorm:"type:enum('STAFF','CONTRACTOR','SYSTEM');default:STAFF" json:"type"`
	Phone     string       `gorm:"size:20" json:"phone"`
	Email     string       `gorm:"size:100" json:"email"`
	UserId    *int         `gorm:"index" json:"user_id"`
	TeamId    *int         `gorm:"index" json:"team_id"`
	Team      *Team        `gorm:"foreignKey:TeamId" json:"team,omitempty"`
	IsActive  *bool        `gorm:"not null;default:true" json:"is_active"`
	CreatedAt time.Time    `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time    `gorm:"autoUpdateTime" json:"updated_at"`
}

type Team struct {
	ID        int       `gorm:"primary_key" json:"id"`
	Name      string    `gorm:"size:100;uniqueIndex;not null" json:"name"`
	IsActive  *bool     `gorm:"not null;default:true" json:"is_active"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewEmployee struct {
	Code   string       `json:"code" binding:"required"`
	Name   string       `json:"name" binding:"required"`
	Type   EmployeeType `json:"type"`
	Phone  string       `json:"phone"`
	Email  string       `json:"email"`
	UserId *int         `json:"user_id"`
	TeamId *int         `json:"team_id"`
}

type NewTeam struct {
	Name string `json:"name" binding:"required"`
}

func (input *NewEmployee) validate(ctx context.Context, id int) error {
	if err := utils.ValidateUnique[Employee](ctx, "code", input.Code, id); err != nil {
		return err
	}
	if input.UserId != nil {
		if err := utils.ValidateResourceId[User](ctx, *input.UserId); err != nil {
			return errors.New("user not found")
		}
	}
	if input.TeamId != nil {
		if err := utils.ValidateResourceId[Team](ctx, *input.TeamId); err != nil {
			return errors.New("team not found")
		}
	}
	return nil
}

func CreateEmployee(ctx context.Context, input *NewEmployee) (*Employee, error) {

	if err := input.validate(ctx, 0); err != nil {
		return nil, err
	}

	empType := input.Type
	if empType == "" {
		empType = EmployeeTypeStaff
	}

	employee := Employee{
		Code:     input.Code,
		Name:     input.Name,
		Type:     empType,
		Phone:    input.Phone,
		Email:    input.Email,
		UserId:   input.UserId,
		TeamId:   input.TeamId,
		IsActive: utils.NewTrue(),
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&employee).Error; err != nil {
		return nil, err
	}
	return &employee, nil
}

func UpdateEmployee(ctx context.Context, id int, input *NewEmployee) (*Employee, error) {

	if err := input.validate(ctx, id); err != nil {
		return nil, err
	}

	employee, err := utils.FetchModel[Employee](ctx, id)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	err = db.WithContext(ctx).Model(employee).Updates(map[string]interface{}{
		"Code":   input.Code,
		"Name":   input.Name,
		"Phone":  input.Phone,
		"Email":  input.Email,
		"UserId": input.UserId,
		"TeamId": input.TeamId,
	}).Error
	if err != nil {
		return nil, err
	}
	EvictResource[Employee](id)
	return employee, nil
}

func GetEmployee(ctx context.Context, id int) (*Employee, error) {
	return GetResource[Employee](ctx, id)
}

func ListEmployees(ctx context.Context) ([]*Employee, error) {
	return utils.FetchAllModels[Employee](ctx, "Team")
}

func CreateTeam(ctx context.Context, input *NewTeam) (*Team, error) {

	if err := utils.ValidateUnique[Team](ctx, "name", input.Name, 0); err != nil {
		return nil, err
	}

	team := Team{
		Name:     input.Name,
		IsActive: utils.NewTrue(),
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&team).Error; err != nil {
		return nil, err
	}
	return &team, nil
}

func ListTeams(ctx context.Context) ([]*Team, error) {
	return utils.FetchAllModels[Team](ctx)
}

// GetSystemEmployeeId resolves the seeded System employee used as requester
// for background spawns.
func GetSystemEmployeeId(ctx context.Context) (int, error) {

	db := config.GetDB()
	var employee Employee
	err := db.WithContext(ctx).
		Where("code = ?", SystemEmployeeCode).First(&employee).Error
	if err != nil {
		return 0, errors.New("system employee not seeded")
	}
	return employee.ID, nil
}
