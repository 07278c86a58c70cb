package models

import (
	"context"
	"errors"
	"time"

	"bitbucket.org/mmdatafocus/facility_backend/config"
	"bitbucket.org/mmdatafocus/facility_backend/utils"
)

type User struct {
	ID        int        `gorm:"primary_key" json:"id"`
	Name      string     `gorm:"size:100;not null" json:"name"`
	Email     string     `gorm:"size:100;uniqueIndex;not null" json:"email"`
	Password  string     `gorm:"size:100;not null" json:"-"`
	RoleId    int        `gorm:"index;not null" json:"role_id"`
	Role      *Role      `gorm:"foreignKey:RoleId" json:"role,omitempty"`
	Status    UserStatus `gorm:"type:enum('ACTIVE','INACTIVE');default:ACTIVE" json:"status"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewUser struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	RoleId   int    `json:"role_id" binding:"required"`
}

// validate input for both create & update. (id = 0 for create)
func (input *NewUser) validate(ctx context.Context, id int) error {
	if err := utils.ValidateUnique[User](ctx, "email", input.Email, id); err != nil {
		return err
	}
	if err := utils.ValidateResourceId[Role](ctx, input.RoleId); err != nil {
		return errors.New("role not found")
	}
	return nil
}

func CreateUser(ctx context.Context, input *NewUser) (*User, error) {

	if err := input.validate(ctx, 0); err != nil {
		return nil, err
	}

	hashed, err := utils.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	user := User{
		Name:     input.Name,
		Email:    input.Email,
		Password: string(hashed),
		RoleId:   input.RoleId,
		Status:   UserStatusActive,
	}

	// db action
	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func UpdateUser(ctx context.Context, id int, input *NewUser) (*User, error) {

	if err := input.validate(ctx, id); err != nil {
		return nil, err
	}

	user, err := utils.FetchModel[User](ctx, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{
		"Name":   input.Name,
		"Email":  input.Email,
		"RoleId": input.RoleId,
	}
	if input.Password != "" {
		hashed, err := utils.HashPassword(input.Password)
		if err != nil {
			return nil, err
		}
		updates["Password"] = string(hashed)
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Model(user).Updates(updates).Error; err != nil {
		return nil, err
	}
	EvictResource[User](id)
	return user, nil
}

func GetUser(ctx context.Context, id int) (*User, error) {
	return GetResource[User](ctx, id)
}

func ListUsers(ctx context.Context) ([]*User, error) {
	return utils.FetchAllModels[User](ctx, "Role")
}

func DeactivateUser(ctx context.Context, id int) (*User, error) {

	user, err := utils.FetchModel[User](ctx, id)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Model(user).
		Update("Status", UserStatusInactive).Error; err != nil {
		return nil, err
	}
	EvictResource[User](id)
	return user, nil
}

// Authenticate verifies credentials and returns the user with role preloaded.
func Authenticate(ctx context.Context, email string, password string) (*User, error) {

	db := config.GetDB()
	var user User
	err := db.WithContext(ctx).Preload("Role").
		Where("email = ?", email).First(&user).Error
	if err != nil {
		return nil, errors.New("invalid credentials")
	}
	if user.Status != UserStatusActive {
		return nil, errors.New("user is inactive")
	}
	if err := utils.ComparePassword(user.Password, password); err != nil {
		return nil, errors.New("invalid credentials")
	}
	return &user, nil
}
