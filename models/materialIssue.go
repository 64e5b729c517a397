package models

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/buildtrack/matstock_backend/config"
	"github.com/buildtrack/matstock_backend/utils"
	"github.com/shopspring/decimal"
)

// MaterialIssue sends materials to a construction site. A godown issue pulls
// from that godown's stock; a direct issue (nil godown) pulls from the direct
// pair, which only holds stock when receipts were posted without a godown.
// Each issue gets a generated MI-<n> number.
type MaterialIssue struct {
	ID          int                 `gorm:"primary_key" json:"id"`
	IssueNumber string              `gorm:"size:30;not null;uniqueIndex" json:"issue_number"`
	SequenceNo  int64               `gorm:"not null;uniqueIndex" json:"sequence_no"`
	SiteId      int                 `gorm:"index;not null" json:"site_id"`
	Site        *Site               `gorm:"foreignKey:SiteId" json:"site,omitempty"`
	GodownId    *int                `gorm:"index" json:"godown_id"`
	Godown      *Godown             `gorm:"foreignKey:GodownId" json:"godown,omitempty"`
	IssueDate   time.Time           `gorm:"index;not null" json:"issue_date"`
	TotalValue  decimal.Decimal     `gorm:"type:decimal(20,4);default:0" json:"total_value"`
	Remarks     string              `gorm:"type:text" json:"remarks"`
	Items       []MaterialIssueItem `gorm:"foreignKey:MaterialIssueId" json:"items"`
	CreatedBy   int                 `json:"created_by"`
	CreatedAt   time.Time           `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time           `gorm:"autoUpdateTime" json:"updated_at"`
}

type MaterialIssueItem struct {
	ID              int             `gorm:"primary_key" json:"id"`
	MaterialIssueId int             `gorm:"index;not null" json:"material_issue_id"`
	MaterialId      int             `gorm:"index;not null" json:"material_id"`
	Material        *Material       `gorm:"foreignKey:MaterialId" json:"material,omitempty"`
	Qty             decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"qty"`
	Rate            decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"rate"`
	Amount          decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"amount"`
	CreatedAt       time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

type NewMaterialIssue struct {
	SiteId         int                   `json:"site_id" binding:"required"`
	GodownId       *int                  `json:"godown_id"`
	IssueDate      time.Time             `json:"issue_date" binding:"required"`
	Remarks        string                `json:"remarks"`
	Items          []NewMaterialIssueItem `json:"items" binding:"required,min=1,dive"`
	IdempotencyKey *string               `json:"-"`
}

type NewMaterialIssueItem struct {
	MaterialId int             `json:"material_id" binding:"required"`
	Qty        decimal.Decimal `json:"qty" binding:"required"`
}

func (input *NewMaterialIssue) validate(ctx context.Context) error {
	// site
	if err := ValidateActiveResourceId[Site](ctx, input.SiteId); err != nil {
		return errors.New("site not found or inactive")
	}
	// godown (nil means direct issue)
	if input.GodownId != nil {
		if err := ValidateActiveResourceId[Godown](ctx, *input.GodownId); err != nil {
			return errors.New("godown not found or inactive")
		}
	}
	// items
	for _, item := range input.Items {
		if err := ValidateActiveResourceId[Material](ctx, item.MaterialId); err != nil {
			return errors.New("material not found or inactive")
		}
		if !item.Qty.IsPositive() {
			return errors.New("item qty must be positive")
		}
	}
	return nil
}

// CreateMaterialIssue posts an issue. Every item is checked against the locked
// balance of its (material, godown) pair inside the transaction; a single short
// item rejects the whole issue and nothing is written. Items are valued at the
// pair's average cost at the moment of issue.
func CreateMaterialIssue(ctx context.Context, input *NewMaterialIssue) (*MaterialIssue, error) {

	if err := input.validate(ctx); err != nil {
		return nil, err
	}

	userId, _ := utils.GetUserIdFromContext(ctx)

	lock, err := utils.StockLock(ctx, fmt.Sprintf("issue:%d", godownKey(input.GodownId)), "models", "CreateMaterialIssue")
	if err != nil {
		return nil, err
	}
	defer utils.ReleaseStockLock(ctx, lock)

	seqNo, err := utils.GetSequence[MaterialIssue](ctx)
	if err != nil {
		return nil, err
	}

	issue := MaterialIssue{
		IssueNumber: fmt.Sprintf("MI-%d", seqNo),
		SequenceNo:  seqNo,
		SiteId:      input.SiteId,
		GodownId:    input.GodownId,
		IssueDate:   input.IssueDate,
		Remarks:     input.Remarks,
		CreatedBy:   userId,
	}

	db := config.GetDB()
	tx := db.WithContext(ctx).Begin()
	defer func() {
		if r := recover(); r != nil {
			_ = tx.Rollback().Error
			panic(r)
		}
	}()
	defer func() { _ = tx.Rollback().Error }()

	if err := tx.Create(&issue).Error; err != nil {
		return nil, err
	}

	if err := claimIdempotencyKey(tx, "material_issue.create", input.IdempotencyKey, issue.ID); err != nil {
		return nil, err
	}

	var totalValue decimal.Decimal
	for _, item := range input.Items {

		stockBalance, err := FirstOrCreateStockBalance(tx, item.MaterialId, godownKey(input.GodownId))
		if err != nil {
			return nil, err
		}
		if item.Qty.GreaterThan(stockBalance.CurrentQty) {
			return nil, &InsufficientStockError{
				MaterialId: item.MaterialId,
				GodownId:   stockBalance.GodownId,
				Requested:  item.Qty,
				Available:  stockBalance.CurrentQty,
			}
		}

		// average cost of what the pair currently holds
		rate := decimal.Zero
		if stockBalance.CurrentQty.IsPositive() {
			rate = stockBalance.TotalValue.Div(stockBalance.CurrentQty).Round(4)
		}

		issueItem := MaterialIssueItem{
			MaterialIssueId: issue.ID,
			MaterialId:      item.MaterialId,
			Qty:             item.Qty,
			Rate:            rate,
			Amount:          item.Qty.Mul(rate),
		}
		if err := tx.Create(&issueItem).Error; err != nil {
			return nil, err
		}
		totalValue = totalValue.Add(issueItem.Amount)

		entry := StockTransaction{
			MaterialId:      item.MaterialId,
			GodownId:        input.GodownId,
			SiteId:          &issue.SiteId,
			TxType:          StockTxTypeOut,
			ReferenceType:   StockReferenceTypeMaterialIssue,
			ReferenceId:     issue.ID,
			ReferenceItemId: issueItem.ID,
			Qty:             item.Qty,
			Rate:            rate,
			TransactionDate: issue.IssueDate,
			CreatedBy:       userId,
		}
		if err := appendStockTransaction(tx, &entry); err != nil {
			return nil, err
		}
	}

	if err := tx.Model(&MaterialIssue{}).Where("id = ?", issue.ID).
		UpdateColumn("total_value", totalValue).Error; err != nil {
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	return GetMaterialIssue(ctx, issue.ID)
}

// DeleteMaterialIssue removes the issue and its ledger entries, returning the
// issued quantities to the source pair.
func DeleteMaterialIssue(ctx context.Context, id int) (*MaterialIssue, error) {

	result, err := GetMaterialIssue(ctx, id)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	tx := db.WithContext(ctx).Begin()
	defer func() { _ = tx.Rollback().Error }()

	if err := removeStockTransactions(tx, StockReferenceTypeMaterialIssue, id); err != nil {
		return nil, err
	}
	if err := tx.Where("material_issue_id = ?", id).Delete(&MaterialIssueItem{}).Error; err != nil {
		return nil, err
	}
	if err := tx.Delete(&MaterialIssue{}, id).Error; err != nil {
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	return result, nil
}

func GetMaterialIssue(ctx context.Context, id int) (*MaterialIssue, error) {
	return utils.FetchModel[MaterialIssue](ctx, id, "Items", "Items.Material", "Site", "Godown")
}

type MaterialIssueFilter struct {
	SiteId      *int
	GodownId    *int
	DirectOnly  bool
	IssueNumber *string
	FromDate    *time.Time
	ToDate      *time.Time
	Limit       int
	Offset      int
}

func ListMaterialIssue(ctx context.Context, filter *MaterialIssueFilter) ([]*MaterialIssue, int64, error) {

	db := config.GetDB()
	dbCtx := db.WithContext(ctx).Model(&MaterialIssue{})

	if filter.SiteId != nil {
		dbCtx = dbCtx.Where("site_id = ?", *filter.SiteId)
	}
	if filter.DirectOnly {
		dbCtx = dbCtx.Where("godown_id IS NULL")
	} else if filter.GodownId != nil {
		dbCtx = dbCtx.Where("godown_id = ?", *filter.GodownId)
	}
	if filter.IssueNumber != nil && len(*filter.IssueNumber) > 0 {
		dbCtx = dbCtx.Where("issue_number LIKE ?", "%"+*filter.IssueNumber+"%")
	}
	if filter.FromDate != nil {
		dbCtx = dbCtx.Where("issue_date >= ?", *filter.FromDate)
	}
	if filter.ToDate != nil {
		dbCtx = dbCtx.Where("issue_date <= ?", *filter.ToDate)
	}

	var total int64
	if err := dbCtx.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}

	var results []*MaterialIssue
	err := dbCtx.Preload("Items").Preload("Items.Material").
		Preload("Site").Preload("Godown").
		Order("issue_date DESC, id DESC").Limit(limit).Offset(filter.Offset).
		Find(&results).Error
	if err != nil {
		return nil, 0, err
	}
	return results, total, nil
}
