package models

import (
	"context"
	"errors"

	"github.com/buildtrack/matstock_backend/config"
)

// ValidateActiveResourceId checks that the referenced row exists and is still
// active. New documents may only reference active materials, godowns and sites.
func ValidateActiveResourceId[T any](ctx context.Context, id int) error {
	if id <= 0 {
		return errors.New("invalid id")
	}
	db := config.GetDB()
	var count int64
	var model T
	err := db.WithContext(ctx).Model(&model).
		Where("id = ? AND is_active = ?", id, true).Count(&count).Error
	if err != nil {
		return err
	}
	if count == 0 {
		return errors.New("record not found or inactive")
	}
	return nil
}

// ToggleActiveModel flips the is_active flag of a reference-data row.
// Inactive rows stay readable and keep their ledger history; they only stop
// being valid targets for new documents.
func ToggleActiveModel[T any](ctx context.Context, id int, isActive bool) (*T, error) {

	var result *T
	db := config.GetDB()

	// fetch model before updating
	err := db.WithContext(ctx).First(&result, id).Error
	if err != nil {
		return nil, err
	}

	// update db
	err = db.WithContext(ctx).Model(&result).
		UpdateColumn("IsActive", isActive).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}
