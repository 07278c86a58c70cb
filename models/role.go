package models

import (
	"context"
	"errors"
	"time"

	"bitbucket.org/mmdatafocus/facility_backend/config"
	"bitbucket.org/mmdatafocus/facility_backend/utils"
	"gorm.io/gorm"
)

type Role struct {
	ID          int           `gorm:"primary_key" json:"id"`
	Name        string        `gorm:"size:100;uniqueIndex;not null" json:"name"`
	Description string        `gorm:"type:text" json:"description"`
	IsAdmin     *bool         `gorm:"not null;default:false" json:"is_admin"`
	Permissions []*Permission `gorm:"foreignKey:RoleId" json:"permissions,omitempty"`
	CreatedAt   time.Time     `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time     `gorm:"autoUpdateTime" json:"updated_at"`
}

// Permission grants a role an access level on one resource group
// (e.g. "maintenance", "logistics").
type Permission struct {
	ID          int         `gorm:"primary_key" json:"id"`
	RoleId      int         `gorm:"index:idx_role_resource,unique;not null" json:"role_id"`
	Resource    string      `gorm:"index:idx_role_resource,unique;size:100;not null" json:"resource"`
	AccessLevel AccessLevel `gorm:"type:enum('READ','WRITE');not null" json:"access_level"`
	CreatedAt   time.Time   `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time   `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewRole struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	IsAdmin     bool   `json:"is_admin"`
}

type NewPermission struct {
	Resource    string      `json:"resource" binding:"required"`
	AccessLevel AccessLevel `json:"access_level" binding:"required"`
}

func (input *NewRole) validate(ctx context.Context, id int) error {
	if err := utils.ValidateUnique[Role](ctx, "name", input.Name, id); err != nil {
		return err
	}
	return nil
}

func CreateRole(ctx context.Context, input *NewRole) (*Role, error) {

	if err := input.validate(ctx, 0); err != nil {
		return nil, err
	}

	role := Role{
		Name:        input.Name,
		Description: input.Description,
		IsAdmin:     &input.IsAdmin,
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&role).Error; err != nil {
		return nil, err
	}
	return &role, nil
}

func UpdateRole(ctx context.Context, id int, input *NewRole) (*Role, error) {

	if err := input.validate(ctx, id); err != nil {
		return nil, err
	}

	role, err := utils.FetchModel[Role](ctx, id)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	err = db.WithContext(ctx).Model(role).Updates(map[string]interface{}{
		"Name":        input.Name,
		"Description": input.Description,
		"IsAdmin":     input.IsAdmin,
	}).Error
	if err != nil {
		return nil, err
	}
	EvictResource[Role](id)
	return role, nil
}

func GetRole(ctx context.Context, id int) (*Role, error) {
	return GetResource[Role](ctx, id, "Permissions")
}

func ListRoles(ctx context.Context) ([]*Role, error) {
	return utils.FetchAllModels[Role](ctx, "Permissions")
}

func DeleteRole(ctx context.Context, id int) (*Role, error) {

	role, err := utils.FetchModel[Role](ctx, id)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	// check if role is used
	var count int64
	if err := db.WithContext(ctx).Model(&User{}).
		Where("role_id = ?", id).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, errors.New("role has users")
	}

	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("role_id = ?", id).Delete(&Permission{}).Error; err != nil {
			return err
		}
		return tx.Delete(role).Error
	})
	if err != nil {
		return nil, err
	}
	EvictResource[Role](id)
	return role, nil
}

// SetPermissions replaces a role's permission set.
func SetPermissions(ctx context.Context, roleId int, inputs []*NewPermission) (*Role, error) {

	if err := utils.ValidateResourceId[Role](ctx, roleId); err != nil {
		return nil, utils.NewNotFoundError("role not found")
	}
	for _, input := range inputs {
		if !input.AccessLevel.Valid() {
			return nil, utils.NewValidationError("invalid access level")
		}
	}

	db := config.GetDB()
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("role_id = ?", roleId).Delete(&Permission{}).Error; err != nil {
			return err
		}
		for _, input := range inputs {
			permission := Permission{
				RoleId:      roleId,
				Resource:    input.Resource,
				AccessLevel: input.AccessLevel,
			}
			if err := tx.Create(&permission).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	EvictResource[Role](roleId)
	return GetRole(ctx, roleId)
}

// HasPermission reports whether the role may act on the resource at the level.
// Admin roles pass every check.
func HasPermission(ctx context.Context, roleId int, resource string, level AccessLevel) (bool, error) {

	role, err := GetRole(ctx, roleId)
	if err != nil {
		return false, err
	}
	if role.IsAdmin != nil && *role.IsAdmin {
		return true, nil
	}
	for _, p := range role.Permissions {
		if p.Resource != resource {
			continue
		}
		if p.AccessLevel == AccessLevelWrite || p.AccessLevel == level {
			return true, nil
		}
	}
	return false, nil
}
