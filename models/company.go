package models

import (
	"context"
	"errors"
	"time"

	"bitbucket.org/mmdatafocus/facility_backend/config"
	"bitbucket.org/mmdatafocus/facility_backend/utils"
)

type Company struct {
	ID        int         `gorm:"primary_key" json:"id"`
	Code      string      `gorm:"size:50;uniqueIndex;not null" json:"code"`
	Name      string      `gorm:"size:100;not null" json:"name"`
	Type      CompanyType `gorm:"type:enum('CORPORATE_GROUP','CUSTOMER','SUPPLIER');not null" json:"type"`
	Phone     string      `gorm:"size:20" json:"phone"`
	Email     string      `gorm:"size:100" json:"email"`
	Address   string      `gorm:"type:text" json:"address"`
	IsActive  *bool       `gorm:"not null;default:true" json:"is_active"`
	CreatedAt time.Time   `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time   `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewCompany struct {
	Code    string      `json:"code" binding:"required"`
	Name    string      `json:"name" binding:"required"`
	Type    CompanyType `json:"type" binding:"required"`
	Phone   string      `json:"phone"`
	Email   string      `json:"email"`
	Address string      `json:"address"`
}

func (input *NewCompany) validate(ctx context.Context, id int) error {
	if !input.Type.Valid() {
		return errors.New("invalid company type")
	}
	if err := utils.ValidateUnique[Company](ctx, "code", input.Code, id); err != nil {
		return err
	}
	return nil
}

func CreateCompany(ctx context.Context, input *NewCompany) (*Company, error) {

	if err := input.validate(ctx, 0); err != nil {
		return nil, err
	}

	company := Company{
		Code:     input.Code,
		Name:     input.Name,
		Type:     input.Type,
		Phone:    input.Phone,
		Email:    input.Email,
		Address:  input.Address,
		IsActive: utils.NewTrue(),
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&company).Error; err != nil {
		return nil, err
	}
	return &company, nil
}

func UpdateCompany(ctx context.Context, id int, input *NewCompany) (*Company, error) {

	if err := input.validate(ctx, id); err != nil {
		return nil, err
	}

	company, err := utils.FetchModel[Company](ctx, id)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	err = db.WithContext(ctx).Model(company).Updates(map[string]interface{}{
		"Code":    input.Code,
		"Name":    input.Name,
		"Type":    input.Type,
		"Phone":   input.Phone,
		"Email":   input.Email,
		"Address": input.Address,
	}).Error
	if err != nil {
		return nil, err
	}
	EvictResource[Company](id)
	return company, nil
}

func GetCompany(ctx context.Context, id int) (*Company, error) {
	return GetResource[Company](ctx, id)
}

func ListCompanies(ctx context.Context, companyType *CompanyType) ([]*Company, error) {

	db := config.GetDB()
	var results []*Company

	dbCtx := db.WithContext(ctx)
	if companyType != nil && *companyType != "" {
		dbCtx = dbCtx.Where("type = ?", *companyType)
	}
	if err := dbCtx.Order("name").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
