package models

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/buildtrack/matstock_backend/config"
	"github.com/buildtrack/matstock_backend/utils"
)

type Godown struct {
	ID            int       `gorm:"primary_key" json:"id"`
	Name          string    `gorm:"size:100;not null;uniqueIndex" json:"name" binding:"required"`
	Address       string    `gorm:"type:text" json:"address"`
	InchargeName  string    `gorm:"size:100" json:"incharge_name"`
	InchargePhone string    `gorm:"size:20" json:"incharge_phone"`
	IsActive      *bool     `gorm:"not null;default:true" json:"is_active"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewGodown struct {
	Name          string `json:"name" binding:"required"`
	Address       string `json:"address"`
	InchargeName  string `json:"incharge_name"`
	InchargePhone string `json:"incharge_phone"`
}

// validate input for both create & update. (id = 0 for create)

func (input *NewGodown) validate(ctx context.Context, id int) error {
	// name
	if err := utils.ValidateUnique[Godown](ctx, "name", input.Name, id); err != nil {
		return err
	}
	// phone
	if len(strings.TrimSpace(input.InchargePhone)) > 0 {
		if err := utils.ValidatePhoneNumber(input.InchargePhone, utils.CountryCode); err != nil {
			return err
		}
	}
	return nil
}

func CreateGodown(ctx context.Context, input *NewGodown) (*Godown, error) {

	if err := input.validate(ctx, 0); err != nil {
		return nil, err
	}

	godown := Godown{
		Name:          input.Name,
		Address:       input.Address,
		InchargeName:  input.InchargeName,
		InchargePhone: input.InchargePhone,
		IsActive:      utils.NewTrue(),
	}

	// db action
	db := config.GetDB()
	err := db.WithContext(ctx).Create(&godown).Error
	if err != nil {
		return nil, err
	}
	return &godown, nil
}

func UpdateGodown(ctx context.Context, id int, input *NewGodown) (*Godown, error) {

	if err := input.validate(ctx, id); err != nil {
		return nil, err
	}

	godown, err := utils.FetchModel[Godown](ctx, id)
	if err != nil {
		return nil, err
	}

	// db action
	db := config.GetDB()
	err = db.WithContext(ctx).Model(&godown).Updates(map[string]interface{}{
		"Name":          input.Name,
		"Address":       input.Address,
		"InchargeName":  input.InchargeName,
		"InchargePhone": input.InchargePhone,
	}).Error
	if err != nil {
		return nil, err
	}

	return godown, nil
}

func DeleteGodown(ctx context.Context, id int) (*Godown, error) {

	db := config.GetDB()
	result, err := utils.FetchModel[Godown](ctx, id)
	if err != nil {
		return nil, err
	}

	// check if godown holds or ever held stock
	var count int64
	if err := db.WithContext(ctx).Model(&StockTransaction{}).
		Where("godown_id = ?", id).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, errors.New("godown has stock transactions")
	}

	// db action
	err = db.WithContext(ctx).Delete(&result).Error
	if err != nil {
		return nil, err
	}
	return result, nil
}

func GetGodown(ctx context.Context, id int) (*Godown, error) {
	return utils.FetchModel[Godown](ctx, id)
}

func ListGodown(ctx context.Context, name *string) ([]*Godown, error) {

	db := config.GetDB()
	var results []*Godown

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

func ToggleActiveGodown(ctx context.Context, id int, isActive bool) (*Godown, error) {
	return ToggleActiveModel[Godown](ctx, id, isActive)
}
