package models

import (
	"context"
	"errors"
	"time"

	"github.com/buildtrack/matstock_backend/config"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// StockTransaction is the append-only movement ledger. Rows are only ever
// created by posting a purchase bill or a material issue and only ever removed
// by deleting the owning document; nothing updates a row in place.
//
// GodownId is nil for movements that bypass godowns (direct-to-site purchases
// and direct issues); those rows share the "direct" balance pair.
type StockTransaction struct {
	ID              int                `gorm:"primary_key" json:"id"`
	MaterialId      int                `gorm:"index;not null" json:"material_id"`
	Material        *Material          `gorm:"foreignKey:MaterialId" json:"material,omitempty"`
	GodownId        *int               `gorm:"index" json:"godown_id"`
	Godown          *Godown            `gorm:"foreignKey:GodownId" json:"godown,omitempty"`
	SiteId          *int               `gorm:"index" json:"site_id"`
	Site            *Site              `gorm:"foreignKey:SiteId" json:"site,omitempty"`
	TxType          StockTxType        `gorm:"type:enum('IN','OUT');not null" json:"tx_type"`
	ReferenceType   StockReferenceType `gorm:"type:enum('PB','MI');not null;index" json:"reference_type"`
	ReferenceId     int                `gorm:"index;not null" json:"reference_id"`
	ReferenceItemId int                `json:"reference_item_id"`
	Qty             decimal.Decimal    `gorm:"type:decimal(20,4);not null" json:"qty"`
	Rate            decimal.Decimal    `gorm:"type:decimal(20,4);default:0" json:"rate"`
	BalanceAfter    decimal.Decimal    `gorm:"type:decimal(20,4);default:0" json:"balance_after"`
	TransactionDate time.Time          `gorm:"index;not null" json:"transaction_date"`
	CreatedBy       int                `json:"created_by"`
	CreatedAt       time.Time          `gorm:"autoCreateTime" json:"created_at"`
}

// appendStockTransaction posts one ledger entry inside the caller's
// transaction. It locks the pair's balance row, stamps BalanceAfter with the
// running total the entry produces, then writes the entry and rolls the cached
// totals forward. Every write path goes through here so BalanceAfter carries
// the same meaning on every row.
func appendStockTransaction(tx *gorm.DB, entry *StockTransaction) error {
	if !entry.Qty.IsPositive() {
		return errors.New("qty must be positive")
	}

	stockBalance, err := FirstOrCreateStockBalance(tx, entry.MaterialId, godownKey(entry.GodownId))
	if err != nil {
		return err
	}

	deltaQty := entry.Qty
	deltaValue := entry.Qty.Mul(entry.Rate)
	var inQty, outQty decimal.Decimal
	switch entry.TxType {
	case StockTxTypeIn:
		inQty = entry.Qty
	case StockTxTypeOut:
		outQty = entry.Qty
		deltaQty = deltaQty.Neg()
		deltaValue = deltaValue.Neg()
	default:
		return errors.New("invalid tx type")
	}

	entry.BalanceAfter = stockBalance.CurrentQty.Add(deltaQty)

	if err := tx.Create(entry).Error; err != nil {
		return err
	}

	if err := tx.Exec(
		"UPDATE stock_balances SET in_qty = in_qty + ?, out_qty = out_qty + ?, current_qty = current_qty + ?, total_value = total_value + ? WHERE id = ?",
		inQty, outQty, deltaQty, deltaValue, stockBalance.ID).Error; err != nil {
		return err
	}

	return nil
}

// removeStockTransactions reverses the cached balances for a document's ledger
// entries and deletes the rows. Used only by document deletion.
func removeStockTransactions(tx *gorm.DB, referenceType StockReferenceType, referenceId int) error {
	var entries []StockTransaction
	if err := tx.Where("reference_type = ? AND reference_id = ?", referenceType, referenceId).
		Find(&entries).Error; err != nil {
		return err
	}

	for _, entry := range entries {
		stockBalance, err := FirstOrCreateStockBalance(tx, entry.MaterialId, godownKey(entry.GodownId))
		if err != nil {
			return err
		}

		deltaQty := entry.Qty
		deltaValue := entry.Qty.Mul(entry.Rate)
		var inQty, outQty decimal.Decimal
		if entry.TxType == StockTxTypeIn {
			inQty = entry.Qty.Neg()
			deltaQty = deltaQty.Neg()
			deltaValue = deltaValue.Neg()
		} else {
			outQty = entry.Qty.Neg()
		}

		if err := tx.Exec(
			"UPDATE stock_balances SET in_qty = in_qty + ?, out_qty = out_qty + ?, current_qty = current_qty + ?, total_value = total_value + ? WHERE id = ?",
			inQty, outQty, deltaQty, deltaValue, stockBalance.ID).Error; err != nil {
			return err
		}
	}

	if err := tx.Where("reference_type = ? AND reference_id = ?", referenceType, referenceId).
		Delete(&StockTransaction{}).Error; err != nil {
		return err
	}
	return nil
}

type StockTransactionFilter struct {
	MaterialId    *int
	GodownId      *int
	DirectOnly    bool
	SiteId        *int
	TxType        *StockTxType
	ReferenceType *StockReferenceType
	FromDate      *time.Time
	ToDate        *time.Time
	Limit         int
	Offset        int
}

// ListStockTransaction returns a filtered page of ledger entries, newest
// first, along with the total row count for the filter.
func ListStockTransaction(ctx context.Context, filter *StockTransactionFilter) ([]*StockTransaction, int64, error) {

	db := config.GetDB()
	dbCtx := db.WithContext(ctx).Model(&StockTransaction{})

	if filter.MaterialId != nil {
		dbCtx = dbCtx.Where("material_id = ?", *filter.MaterialId)
	}
	if filter.DirectOnly {
		dbCtx = dbCtx.Where("godown_id IS NULL")
	} else if filter.GodownId != nil {
		dbCtx = dbCtx.Where("godown_id = ?", *filter.GodownId)
	}
	if filter.SiteId != nil {
		dbCtx = dbCtx.Where("site_id = ?", *filter.SiteId)
	}
	if filter.TxType != nil {
		dbCtx = dbCtx.Where("tx_type = ?", *filter.TxType)
	}
	if filter.ReferenceType != nil {
		dbCtx = dbCtx.Where("reference_type = ?", *filter.ReferenceType)
	}
	if filter.FromDate != nil {
		dbCtx = dbCtx.Where("transaction_date >= ?", *filter.FromDate)
	}
	if filter.ToDate != nil {
		dbCtx = dbCtx.Where("transaction_date <= ?", *filter.ToDate)
	}

	var total int64
	if err := dbCtx.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}

	var results []*StockTransaction
	err := dbCtx.Preload("Material").Preload("Godown").Preload("Site").
		Order("id DESC").Limit(limit).Offset(filter.Offset).
		Find(&results).Error
	if err != nil {
		return nil, 0, err
	}
	return results, total, nil
}

// GetStockTransaction fetches one ledger entry with its references resolved.
func GetStockTransaction(ctx context.Context, id int) (*StockTransaction, error) {
	db := config.GetDB()
	var result StockTransaction
	err := db.WithContext(ctx).
		Preload("Material").Preload("Godown").Preload("Site").
		First(&result, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("stock transaction not found")
		}
		return nil, err
	}
	return &result, nil
}
