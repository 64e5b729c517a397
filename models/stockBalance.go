package models

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/buildtrack/matstock_backend/config"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// StockBalance is a materialized running total per (material, godown) pair.
// GodownId 0 keys direct movements that never touch a godown. The ledger in
// stock_transactions stays the source of truth: every row here must equal the
// fold of that pair's ledger entries, and RebuildStockBalances can restore the
// table from scratch.
type StockBalance struct {
	ID         int             `gorm:"primary_key" json:"id"`
	MaterialId int             `gorm:"not null;uniqueIndex:uniq_stock_balance" json:"material_id"`
	GodownId   int             `gorm:"not null;default:0;uniqueIndex:uniq_stock_balance" json:"godown_id"`
	InQty      decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"in_qty"`
	OutQty     decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"out_qty"`
	CurrentQty decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"current_qty"`
	TotalValue decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"total_value"`
	CreatedAt  time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

// BalanceResult is the outcome of folding a ledger slice.
// Negative quantities are reported as-is so that data problems stay visible.
type BalanceResult struct {
	Qty        decimal.Decimal `json:"qty"`
	TotalValue decimal.Decimal `json:"total_value"`
}

func (b BalanceResult) IsNegative() bool {
	return b.Qty.IsNegative()
}

// ComputeBalance folds ledger entries into a balance. IN entries add quantity
// and value, OUT entries subtract both. The fold is order-insensitive for the
// final result; entries must all belong to one (material, godown) pair.
func ComputeBalance(entries []StockTransaction) BalanceResult {
	var result BalanceResult
	for _, entry := range entries {
		value := entry.Qty.Mul(entry.Rate)
		switch entry.TxType {
		case StockTxTypeIn:
			result.Qty = result.Qty.Add(entry.Qty)
			result.TotalValue = result.TotalValue.Add(value)
		case StockTxTypeOut:
			result.Qty = result.Qty.Sub(entry.Qty)
			result.TotalValue = result.TotalValue.Sub(value)
		}
	}
	return result
}

// InsufficientStockError reports a rejected outgoing movement along with how
// much stock the pair actually holds.
type InsufficientStockError struct {
	MaterialId int
	GodownId   int
	Requested  decimal.Decimal
	Available  decimal.Decimal
}

var ErrInsufficientStock = errors.New("insufficient stock")

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for material %d: requested %s, available %s",
		e.MaterialId, e.Requested.String(), e.Available.String())
}

func (e *InsufficientStockError) Is(target error) bool {
	return target == ErrInsufficientStock
}

func godownKey(godownId *int) int {
	if godownId == nil {
		return DirectGodownKey
	}
	return *godownId
}

// FirstOrCreateStockBalance locks the pair's balance row for the rest of the
// transaction. Concurrent movements on the same pair serialize here, which is
// what makes the availability check and BalanceAfter assignment safe.
func FirstOrCreateStockBalance(tx *gorm.DB, materialId int, godownId int) (*StockBalance, error) {
	stockBalance := StockBalance{
		MaterialId: materialId,
		GodownId:   godownId,
	}
	result := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("material_id = ? AND godown_id = ?", materialId, godownId).
		FirstOrCreate(&stockBalance)
	if result.Error != nil {
		return nil, result.Error
	}
	return &stockBalance, nil
}

// GetBalance replays the pair's ledger and returns the folded balance.
// A nil godownId addresses the direct pair.
func GetBalance(ctx context.Context, materialId int, godownId *int) (BalanceResult, error) {
	db := config.GetDB()
	entries, err := fetchLedgerEntries(db.WithContext(ctx), materialId, godownKey(godownId))
	if err != nil {
		return BalanceResult{}, err
	}
	return ComputeBalance(entries), nil
}

func fetchLedgerEntries(db *gorm.DB, materialId int, godownId int) ([]StockTransaction, error) {
	var entries []StockTransaction
	dbCtx := db.Where("material_id = ?", materialId)
	if godownId == DirectGodownKey {
		dbCtx = dbCtx.Where("godown_id IS NULL")
	} else {
		dbCtx = dbCtx.Where("godown_id = ?", godownId)
	}
	if err := dbCtx.Order("id").Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// CheckAvailability answers "can qty leave this pair right now". It reads the
// cached balance without locking, so it is advisory only; the binding check
// happens again inside the issue transaction with the row locked.
func CheckAvailability(ctx context.Context, materialId int, godownId *int, qty decimal.Decimal) (bool, BalanceResult, error) {
	db := config.GetDB()

	var stockBalance StockBalance
	err := db.WithContext(ctx).
		Where("material_id = ? AND godown_id = ?", materialId, godownKey(godownId)).
		First(&stockBalance).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return qty.LessThanOrEqual(decimal.Zero), BalanceResult{}, nil
		}
		return false, BalanceResult{}, err
	}
	balance := BalanceResult{Qty: stockBalance.CurrentQty, TotalValue: stockBalance.TotalValue}
	return qty.LessThanOrEqual(balance.Qty), balance, nil
}

// RebuildStockBalances drops the cache, refills it from the ledger, and
// restamps BalanceAfter on every ledger row with the running total at that
// point. Document deletion leaves later rows with stale snapshots; the
// rebuild walk repairs them. Run offline after manual data repair; normal
// operation never needs it.
func RebuildStockBalances(ctx context.Context) error {
	db := config.GetDB()

	tx := db.WithContext(ctx).Begin()
	defer func() { _ = tx.Rollback().Error }()

	if err := tx.Exec("DELETE FROM stock_balances").Error; err != nil {
		return err
	}

	type pair struct {
		MaterialId int
		GodownId   *int
	}
	var pairs []pair
	if err := tx.Model(&StockTransaction{}).
		Distinct("material_id", "godown_id").Find(&pairs).Error; err != nil {
		return err
	}

	for _, p := range pairs {
		entries, err := fetchLedgerEntries(tx, p.MaterialId, godownKey(p.GodownId))
		if err != nil {
			return err
		}

		var inQty, outQty, runningQty decimal.Decimal
		for _, entry := range entries {
			if entry.TxType == StockTxTypeIn {
				inQty = inQty.Add(entry.Qty)
				runningQty = runningQty.Add(entry.Qty)
			} else {
				outQty = outQty.Add(entry.Qty)
				runningQty = runningQty.Sub(entry.Qty)
			}
			if !entry.BalanceAfter.Equal(runningQty) {
				if err := tx.Model(&StockTransaction{}).Where("id = ?", entry.ID).
					UpdateColumn("balance_after", runningQty).Error; err != nil {
					return err
				}
			}
		}
		balance := ComputeBalance(entries)

		stockBalance := StockBalance{
			MaterialId: p.MaterialId,
			GodownId:   godownKey(p.GodownId),
			InQty:      inQty,
			OutQty:     outQty,
			CurrentQty: balance.Qty,
			TotalValue: balance.TotalValue,
		}
		if err := tx.Create(&stockBalance).Error; err != nil {
			return err
		}
	}

	return tx.Commit().Error
}
