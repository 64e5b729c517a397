package models

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/buildtrack/matstock_backend/config"
	"github.com/buildtrack/matstock_backend/utils"
)

// Site is a construction site. Sites consume stock: material issued to a site
// leaves the inventory and is accounted for in reports only.
type Site struct {
	ID              int       `gorm:"primary_key" json:"id"`
	Name            string    `gorm:"size:100;not null;uniqueIndex" json:"name" binding:"required"`
	Address         string    `gorm:"type:text" json:"address"`
	SupervisorName  string    `gorm:"size:100" json:"supervisor_name"`
	SupervisorPhone string    `gorm:"size:20" json:"supervisor_phone"`
	IsActive        *bool     `gorm:"not null;default:true" json:"is_active"`
	CreatedAt       time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewSite struct {
	Name            string `json:"name" binding:"required"`
	Address         string `json:"address"`
	SupervisorName  string `json:"supervisor_name"`
	SupervisorPhone string `json:"supervisor_phone"`
}

func (input *NewSite) validate(ctx context.Context, id int) error {
	if err := utils.ValidateUnique[Site](ctx, "name", input.Name, id); err != nil {
		return err
	}
	if len(strings.TrimSpace(input.SupervisorPhone)) > 0 {
		if err := utils.ValidatePhoneNumber(input.SupervisorPhone, utils.CountryCode); err != nil {
			return err
		}
	}
	return nil
}

func CreateSite(ctx context.Context, input *NewSite) (*Site, error) {

	if err := input.validate(ctx, 0); err != nil {
		return nil, err
	}

	site := Site{
		Name:            input.Name,
		Address:         input.Address,
		SupervisorName:  input.SupervisorName,
		SupervisorPhone: input.SupervisorPhone,
		IsActive:        utils.NewTrue(),
	}

	// db action
	db := config.GetDB()
	err := db.WithContext(ctx).Create(&site).Error
	if err != nil {
		return nil, err
	}
	return &site, nil
}

func UpdateSite(ctx context.Context, id int, input *NewSite) (*Site, error) {

	if err := input.validate(ctx, id); err != nil {
		return nil, err
	}

	site, err := utils.FetchModel[Site](ctx, id)
	if err != nil {
		return nil, err
	}

	// db action
	db := config.GetDB()
	err = db.WithContext(ctx).Model(&site).Updates(map[string]interface{}{
		"Name":            input.Name,
		"Address":         input.Address,
		"SupervisorName":  input.SupervisorName,
		"SupervisorPhone": input.SupervisorPhone,
	}).Error
	if err != nil {
		return nil, err
	}

	return site, nil
}

func DeleteSite(ctx context.Context, id int) (*Site, error) {

	db := config.GetDB()
	result, err := utils.FetchModel[Site](ctx, id)
	if err != nil {
		return nil, err
	}

	// check if site appears in any ledger entry
	var count int64
	if err := db.WithContext(ctx).Model(&StockTransaction{}).
		Where("site_id = ?", id).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, errors.New("site has stock transactions")
	}

	// db action
	err = db.WithContext(ctx).Delete(&result).Error
	if err != nil {
		return nil, err
	}
	return result, nil
}

func GetSite(ctx context.Context, id int) (*Site, error) {
	return utils.FetchModel[Site](ctx, id)
}

func ListSite(ctx context.Context, name *string) ([]*Site, error) {

	db := config.GetDB()
	var results []*Site

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

func ToggleActiveSite(ctx context.Context, id int, isActive bool) (*Site, error) {
	return ToggleActiveModel[Site](ctx, id, isActive)
}
