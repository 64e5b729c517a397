package models

import (
	"context"
	"errors"
	"time"

	"github.com/buildtrack/matstock_backend/config"
	"github.com/buildtrack/matstock_backend/utils"
)

type Material struct {
	ID        int       `gorm:"primary_key" json:"id"`
	Name      string    `gorm:"size:100;not null;uniqueIndex" json:"name" binding:"required"`
	Unit      string    `gorm:"size:20;not null" json:"unit" binding:"required"`
	Category  string    `gorm:"size:100;index" json:"category"`
	IsActive  *bool     `gorm:"not null;default:true" json:"is_active"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewMaterial struct {
	Name     string `json:"name" binding:"required"`
	Unit     string `json:"unit" binding:"required"`
	Category string `json:"category"`
}

// validate input for both create & update. (id = 0 for create)

func (input *NewMaterial) validate(ctx context.Context, id int) error {
	if err := utils.ValidateUnique[Material](ctx, "name", input.Name, id); err != nil {
		return err
	}
	return nil
}

func CreateMaterial(ctx context.Context, input *NewMaterial) (*Material, error) {

	if err := input.validate(ctx, 0); err != nil {
		return nil, err
	}

	material := Material{
		Name:     input.Name,
		Unit:     input.Unit,
		Category: input.Category,
		IsActive: utils.NewTrue(),
	}

	// db action
	db := config.GetDB()
	err := db.WithContext(ctx).Create(&material).Error
	if err != nil {
		return nil, err
	}
	return &material, nil
}

func UpdateMaterial(ctx context.Context, id int, input *NewMaterial) (*Material, error) {

	if err := input.validate(ctx, id); err != nil {
		return nil, err
	}

	material, err := utils.FetchModel[Material](ctx, id)
	if err != nil {
		return nil, err
	}

	// db action
	db := config.GetDB()
	err = db.WithContext(ctx).Model(&material).Updates(map[string]interface{}{
		"Name":     input.Name,
		"Unit":     input.Unit,
		"Category": input.Category,
	}).Error
	if err != nil {
		return nil, err
	}

	return material, nil
}

func DeleteMaterial(ctx context.Context, id int) (*Material, error) {

	db := config.GetDB()
	result, err := utils.FetchModel[Material](ctx, id)
	if err != nil {
		return nil, err
	}

	// check if material has ledger movements
	var count int64
	if err := db.WithContext(ctx).Model(&StockTransaction{}).
		Where("material_id = ?", id).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, errors.New("material has stock transactions")
	}

	// db action
	err = db.WithContext(ctx).Delete(&result).Error
	if err != nil {
		return nil, err
	}
	return result, nil
}

func GetMaterial(ctx context.Context, id int) (*Material, error) {
	return utils.FetchModel[Material](ctx, id)
}

func ListMaterial(ctx context.Context, name *string) ([]*Material, error) {

	db := config.GetDB()
	var results []*Material

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

func ToggleActiveMaterial(ctx context.Context, id int, isActive bool) (*Material, error) {
	return ToggleActiveModel[Material](ctx, id, isActive)
}
