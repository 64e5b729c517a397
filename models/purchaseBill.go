package models

import (
	"context"
	"errors"
	"time"

	"github.com/buildtrack/matstock_backend/config"
	"github.com/buildtrack/matstock_backend/utils"
	"github.com/shopspring/decimal"
)

// PurchaseBill records materials bought from a supplier. Posting a bill writes
// IN ledger entries; a bill delivered straight to a site additionally writes a
// paired OUT entry per item so the stock never accumulates anywhere.
// Bills are immutable once posted: corrections go through delete and re-entry.
type PurchaseBill struct {
	ID          int                `gorm:"primary_key" json:"id"`
	BillNumber  string             `gorm:"size:100;not null;uniqueIndex:uniq_bill_number" json:"bill_number" binding:"required"`
	CompanyId   int                `gorm:"not null;index;uniqueIndex:uniq_bill_number" json:"company_id"`
	Company     *Company           `gorm:"foreignKey:CompanyId" json:"company,omitempty"`
	BillDate    time.Time          `gorm:"index;not null" json:"bill_date"`
	DeliveredTo DeliveredToType    `gorm:"type:enum('GODOWN','SITE');not null" json:"delivered_to"`
	GodownId    *int               `gorm:"index" json:"godown_id"`
	Godown      *Godown            `gorm:"foreignKey:GodownId" json:"godown,omitempty"`
	SiteId      *int               `gorm:"index" json:"site_id"`
	Site        *Site              `gorm:"foreignKey:SiteId" json:"site,omitempty"`
	TotalAmount decimal.Decimal    `gorm:"type:decimal(20,4);default:0" json:"total_amount"`
	Remarks     string             `gorm:"type:text" json:"remarks"`
	Items       []PurchaseBillItem `gorm:"foreignKey:PurchaseBillId" json:"items"`
	CreatedBy   int                `json:"created_by"`
	CreatedAt   time.Time          `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time          `gorm:"autoUpdateTime" json:"updated_at"`
}

type PurchaseBillItem struct {
	ID             int             `gorm:"primary_key" json:"id"`
	PurchaseBillId int             `gorm:"index;not null" json:"purchase_bill_id"`
	MaterialId     int             `gorm:"index;not null" json:"material_id"`
	Material       *Material       `gorm:"foreignKey:MaterialId" json:"material,omitempty"`
	Qty            decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"qty"`
	Rate           decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"rate"`
	Amount         decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"amount"`
	CreatedAt      time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

type NewPurchaseBill struct {
	BillNumber     string               `json:"bill_number" binding:"required"`
	CompanyId      int                  `json:"company_id" binding:"required"`
	BillDate       time.Time            `json:"bill_date" binding:"required"`
	DeliveredTo    DeliveredToType      `json:"delivered_to" binding:"required,oneof=GODOWN SITE"`
	GodownId       *int                 `json:"godown_id"`
	SiteId         *int                 `json:"site_id"`
	Remarks        string               `json:"remarks"`
	Items          []NewPurchaseBillItem `json:"items" binding:"required,min=1,dive"`
	IdempotencyKey *string              `json:"-"`
}

type NewPurchaseBillItem struct {
	MaterialId int             `json:"material_id" binding:"required"`
	Qty        decimal.Decimal `json:"qty" binding:"required"`
	Rate       decimal.Decimal `json:"rate" binding:"required"`
}

func (input *NewPurchaseBill) validate(ctx context.Context) error {
	// company
	if err := ValidateActiveResourceId[Company](ctx, input.CompanyId); err != nil {
		return errors.New("company not found or inactive")
	}
	// destination
	switch input.DeliveredTo {
	case DeliveredToGodown:
		if input.GodownId == nil {
			return errors.New("godown_id is required when delivered to godown")
		}
		if input.SiteId != nil {
			return errors.New("site_id must be empty when delivered to godown")
		}
		if err := ValidateActiveResourceId[Godown](ctx, *input.GodownId); err != nil {
			return errors.New("godown not found or inactive")
		}
	case DeliveredToSite:
		if input.SiteId == nil {
			return errors.New("site_id is required when delivered to site")
		}
		if input.GodownId != nil {
			return errors.New("godown_id must be empty when delivered to site")
		}
		if err := ValidateActiveResourceId[Site](ctx, *input.SiteId); err != nil {
			return errors.New("site not found or inactive")
		}
	default:
		return errors.New("invalid delivered_to")
	}
	// bill number unique per company
	count, err := utils.ResourceCountWhere[PurchaseBill](ctx,
		"company_id = ? AND bill_number = ?", input.CompanyId, input.BillNumber)
	if err != nil {
		return err
	}
	if count > 0 {
		return errors.New("duplicate bill_number for this company")
	}
	// items
	for _, item := range input.Items {
		if err := ValidateActiveResourceId[Material](ctx, item.MaterialId); err != nil {
			return errors.New("material not found or inactive")
		}
		if !item.Qty.IsPositive() {
			return errors.New("item qty must be positive")
		}
		if item.Rate.IsNegative() {
			return errors.New("item rate must not be negative")
		}
	}
	return nil
}

func CreatePurchaseBill(ctx context.Context, input *NewPurchaseBill) (*PurchaseBill, error) {

	if err := input.validate(ctx); err != nil {
		return nil, err
	}

	userId, _ := utils.GetUserIdFromContext(ctx)

	var billItems []PurchaseBillItem
	var totalAmount decimal.Decimal
	for _, item := range input.Items {
		amount := item.Qty.Mul(item.Rate)
		billItems = append(billItems, PurchaseBillItem{
			MaterialId: item.MaterialId,
			Qty:        item.Qty,
			Rate:       item.Rate,
			Amount:     amount,
		})
		totalAmount = totalAmount.Add(amount)
	}

	bill := PurchaseBill{
		BillNumber:  input.BillNumber,
		CompanyId:   input.CompanyId,
		BillDate:    input.BillDate,
		DeliveredTo: input.DeliveredTo,
		GodownId:    input.GodownId,
		SiteId:      input.SiteId,
		TotalAmount: totalAmount,
		Remarks:     input.Remarks,
		Items:       billItems,
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

	if err := tx.Create(&bill).Error; err != nil {
		return nil, err
	}

	if err := claimIdempotencyKey(tx, "purchase_bill.create", input.IdempotencyKey, bill.ID); err != nil {
		return nil, err
	}

	for _, item := range bill.Items {
		entry := StockTransaction{
			MaterialId:      item.MaterialId,
			GodownId:        bill.GodownId,
			SiteId:          bill.SiteId,
			TxType:          StockTxTypeIn,
			ReferenceType:   StockReferenceTypePurchaseBill,
			ReferenceId:     bill.ID,
			ReferenceItemId: item.ID,
			Qty:             item.Qty,
			Rate:            item.Rate,
			TransactionDate: bill.BillDate,
			CreatedBy:       userId,
		}
		if err := appendStockTransaction(tx, &entry); err != nil {
			return nil, err
		}

		// a site delivery never rests in stock, post the matching consumption
		if bill.DeliveredTo == DeliveredToSite {
			outEntry := StockTransaction{
				MaterialId:      item.MaterialId,
				SiteId:          bill.SiteId,
				TxType:          StockTxTypeOut,
				ReferenceType:   StockReferenceTypePurchaseBill,
				ReferenceId:     bill.ID,
				ReferenceItemId: item.ID,
				Qty:             item.Qty,
				Rate:            item.Rate,
				TransactionDate: bill.BillDate,
				CreatedBy:       userId,
			}
			if err := appendStockTransaction(tx, &outEntry); err != nil {
				return nil, err
			}
		}
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	return GetPurchaseBill(ctx, bill.ID)
}

// DeletePurchaseBill removes the bill, its items and its ledger entries, and
// reverses the cached balances. Removing receipts that were already issued out
// can drive a pair negative; the balance is reported as-is rather than blocked.
func DeletePurchaseBill(ctx context.Context, id int) (*PurchaseBill, error) {

	result, err := GetPurchaseBill(ctx, id)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	tx := db.WithContext(ctx).Begin()
	defer func() { _ = tx.Rollback().Error }()

	if err := removeStockTransactions(tx, StockReferenceTypePurchaseBill, id); err != nil {
		return nil, err
	}
	if err := tx.Where("purchase_bill_id = ?", id).Delete(&PurchaseBillItem{}).Error; err != nil {
		return nil, err
	}
	if err := tx.Delete(&PurchaseBill{}, id).Error; err != nil {
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	return result, nil
}

func GetPurchaseBill(ctx context.Context, id int) (*PurchaseBill, error) {
	return utils.FetchModel[PurchaseBill](ctx, id, "Items", "Items.Material", "Company", "Godown", "Site")
}

type PurchaseBillFilter struct {
	CompanyId  *int
	GodownId   *int
	SiteId     *int
	BillNumber *string
	FromDate   *time.Time
	ToDate     *time.Time
	Limit      int
	Offset     int
}

func ListPurchaseBill(ctx context.Context, filter *PurchaseBillFilter) ([]*PurchaseBill, int64, error) {

	db := config.GetDB()
	dbCtx := db.WithContext(ctx).Model(&PurchaseBill{})

	if filter.CompanyId != nil {
		dbCtx = dbCtx.Where("company_id = ?", *filter.CompanyId)
	}
	if filter.GodownId != nil {
		dbCtx = dbCtx.Where("godown_id = ?", *filter.GodownId)
	}
	if filter.SiteId != nil {
		dbCtx = dbCtx.Where("site_id = ?", *filter.SiteId)
	}
	if filter.BillNumber != nil && len(*filter.BillNumber) > 0 {
		dbCtx = dbCtx.Where("bill_number LIKE ?", "%"+*filter.BillNumber+"%")
	}
	if filter.FromDate != nil {
		dbCtx = dbCtx.Where("bill_date >= ?", *filter.FromDate)
	}
	if filter.ToDate != nil {
		dbCtx = dbCtx.Where("bill_date <= ?", *filter.ToDate)
	}

	var total int64
	if err := dbCtx.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}

	var results []*PurchaseBill
	err := dbCtx.Preload("Items").Preload("Items.Material").
		Preload("Company").Preload("Godown").Preload("Site").
		Order("bill_date DESC, id DESC").Limit(limit).Offset(filter.Offset).
		Find(&results).Error
	if err != nil {
		return nil, 0, err
	}
	return results, total, nil
}
