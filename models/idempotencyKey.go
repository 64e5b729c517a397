package models

import (
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"
)

var ErrDuplicateRequest = errors.New("duplicate request")

// IdempotencyKey makes stock-affecting POSTs safe to retry. The row is written
// inside the same transaction as the document it protects, so a replayed
// request hits the unique index and is rejected before any ledger entry lands.
type IdempotencyKey struct {
	ID          int       `gorm:"primary_key" json:"id"`
	HandlerName string    `gorm:"size:100;not null;index:uniq_idem,unique" json:"handler_name"`
	RequestKey  string    `gorm:"size:255;not null;index:uniq_idem,unique" json:"request_key"`
	ReferenceId int       `json:"reference_id"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// claimIdempotencyKey reserves the key for this handler inside tx. A nil or
// blank key means the client opted out and the request is always processed.
func claimIdempotencyKey(tx *gorm.DB, handlerName string, requestKey *string, referenceId int) error {
	if requestKey == nil || strings.TrimSpace(*requestKey) == "" {
		return nil
	}
	record := IdempotencyKey{
		HandlerName: handlerName,
		RequestKey:  strings.TrimSpace(*requestKey),
		ReferenceId: referenceId,
	}
	if err := tx.Create(&record).Error; err != nil {
		if strings.Contains(err.Error(), "Duplicate entry") {
			return ErrDuplicateRequest
		}
		return err
	}
	return nil
}
