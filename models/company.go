package models

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/buildtrack/matstock_backend/config"
	"github.com/buildtrack/matstock_backend/utils"
)

// Company is a supplier that purchase bills are raised against.
type Company struct {
	ID            int       `gorm:"primary_key" json:"id"`
	Name          string    `gorm:"size:100;not null;uniqueIndex" json:"name" binding:"required"`
	Address       string    `gorm:"type:text" json:"address"`
	ContactPerson string    `gorm:"size:100" json:"contact_person"`
	Phone         string    `gorm:"size:20" json:"phone"`
	Email         string    `gorm:"size:100" json:"email"`
	GstNumber     string    `gorm:"size:30" json:"gst_number"`
	IsActive      *bool     `gorm:"not null;default:true" json:"is_active"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewCompany struct {
	Name          string `json:"name" binding:"required"`
	Address       string `json:"address"`
	ContactPerson string `json:"contact_person"`
	Phone         string `json:"phone"`
	Email         string `json:"email"`
	GstNumber     string `json:"gst_number"`
}

func (input *NewCompany) validate(ctx context.Context, id int) error {
	// name
	if err := utils.ValidateUnique[Company](ctx, "name", input.Name, id); err != nil {
		return err
	}
	// phone
	if len(strings.TrimSpace(input.Phone)) > 0 {
		if err := utils.ValidatePhoneNumber(input.Phone, utils.CountryCode); err != nil {
			return err
		}
	}
	// email
	if len(strings.TrimSpace(input.Email)) > 0 {
		if !utils.IsValidEmail(input.Email) {
			return errors.New("invalid email")
		}
	}
	return nil
}

func CreateCompany(ctx context.Context, input *NewCompany) (*Company, error) {

	if err := input.validate(ctx, 0); err != nil {
		return nil, err
	}

	company := Company{
		Name:          input.Name,
		Address:       input.Address,
		ContactPerson: input.ContactPerson,
		Phone:         input.Phone,
		Email:         input.Email,
		GstNumber:     input.GstNumber,
		IsActive:      utils.NewTrue(),
	}

	// db action
	db := config.GetDB()
	err := db.WithContext(ctx).Create(&company).Error
	if err != nil {
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

	// db action
	db := config.GetDB()
	err = db.WithContext(ctx).Model(&company).Updates(map[string]interface{}{
		"Name":          input.Name,
		"Address":       input.Address,
		"ContactPerson": input.ContactPerson,
		"Phone":         input.Phone,
		"Email":         input.Email,
		"GstNumber":     input.GstNumber,
	}).Error
	if err != nil {
		return nil, err
	}

	return company, nil
}

func DeleteCompany(ctx context.Context, id int) (*Company, error) {

	db := config.GetDB()
	result, err := utils.FetchModel[Company](ctx, id)
	if err != nil {
		return nil, err
	}

	// check if company has bills
	var count int64
	if err := db.WithContext(ctx).Model(&PurchaseBill{}).
		Where("company_id = ?", id).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, errors.New("company has purchase bills")
	}

	// db action
	err = db.WithContext(ctx).Delete(&result).Error
	if err != nil {
		return nil, err
	}
	return result, nil
}

func GetCompany(ctx context.Context, id int) (*Company, error) {
	return utils.FetchModel[Company](ctx, id)
}

func ListCompany(ctx context.Context, name *string) ([]*Company, error) {

	db := config.GetDB()
	var results []*Company

	dbCtx := db.WithContext(ctx)
	if name != nil && len(*name) > 0 {
		dbCtx = dbCtx.Where("name LIKE ?", "%"+*name+"%")
	}
	// db query
	err := dbCtx.Order("name").Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

func ToggleActiveCompany(ctx context.Context, id int, isActive bool) (*Company, error) {
	return ToggleActiveModel[Company](ctx, id, isActive)
}
