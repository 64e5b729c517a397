package models

import (
	"context"
	"sort"
	"time"

	"github.com/buildtrack/matstock_backend/config"
	"github.com/shopspring/decimal"
)

// InventoryRow is one (material, godown) pair with stock on hand.
type InventoryRow struct {
	MaterialId   int             `json:"material_id"`
	MaterialName string          `json:"material_name"`
	Unit         string          `json:"unit"`
	GodownId     *int            `json:"godown_id"`
	GodownName   string          `json:"godown_name"`
	Qty          decimal.Decimal `json:"qty"`
	TotalValue   decimal.Decimal `json:"total_value"`
	LastUpdated  time.Time       `json:"last_updated"`
}

type inventoryKey struct {
	materialId int
	godownId   int
}

// BuildInventoryRows folds ledger entries into per-pair stock rows. Pairs that
// net out to zero or negative are dropped; the view answers "what is on hand",
// negative pairs belong to the consistency report instead.
func BuildInventoryRows(entries []StockTransaction) []InventoryRow {

	type acc struct {
		entries     []StockTransaction
		lastUpdated time.Time
	}
	groups := make(map[inventoryKey]*acc)
	for _, entry := range entries {
		key := inventoryKey{materialId: entry.MaterialId, godownId: godownKey(entry.GodownId)}
		group, ok := groups[key]
		if !ok {
			group = &acc{}
			groups[key] = group
		}
		group.entries = append(group.entries, entry)
		// lastUpdated reflects when the ledger last moved, not the document
		// date; backdated documents still bump it.
		if entry.CreatedAt.After(group.lastUpdated) {
			group.lastUpdated = entry.CreatedAt
		}
	}

	var rows []InventoryRow
	for key, group := range groups {
		balance := ComputeBalance(group.entries)
		if !balance.Qty.IsPositive() {
			continue
		}
		row := InventoryRow{
			MaterialId:  key.materialId,
			Qty:         balance.Qty,
			TotalValue:  balance.TotalValue,
			LastUpdated: group.lastUpdated,
		}
		if key.godownId != DirectGodownKey {
			godownId := key.godownId
			row.GodownId = &godownId
		}
		rows = append(rows, row)
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].MaterialId != rows[j].MaterialId {
			return rows[i].MaterialId < rows[j].MaterialId
		}
		return godownKey(rows[i].GodownId) < godownKey(rows[j].GodownId)
	})
	return rows
}

type InventoryFilter struct {
	MaterialId *int
	GodownId   *int
	DirectOnly bool
}

// GetCurrentInventory replays the ledger and returns stock on hand per
// (material, godown) pair, with names resolved.
func GetCurrentInventory(ctx context.Context, filter *InventoryFilter) ([]InventoryRow, error) {

	db := config.GetDB()
	dbCtx := db.WithContext(ctx)

	if filter != nil {
		if filter.MaterialId != nil {
			dbCtx = dbCtx.Where("material_id = ?", *filter.MaterialId)
		}
		if filter.DirectOnly {
			dbCtx = dbCtx.Where("godown_id IS NULL")
		} else if filter.GodownId != nil {
			dbCtx = dbCtx.Where("godown_id = ?", *filter.GodownId)
		}
	}

	var entries []StockTransaction
	if err := dbCtx.Order("id").Find(&entries).Error; err != nil {
		return nil, err
	}

	rows := BuildInventoryRows(entries)
	if len(rows) == 0 {
		return rows, nil
	}

	// resolve names
	materialIds := make([]int, 0, len(rows))
	godownIds := make([]int, 0, len(rows))
	for _, row := range rows {
		materialIds = append(materialIds, row.MaterialId)
		if row.GodownId != nil {
			godownIds = append(godownIds, *row.GodownId)
		}
	}

	var materials []Material
	if err := db.WithContext(ctx).Where("id IN (?)", materialIds).Find(&materials).Error; err != nil {
		return nil, err
	}
	materialsById := make(map[int]Material, len(materials))
	for _, material := range materials {
		materialsById[material.ID] = material
	}

	godownsById := make(map[int]Godown)
	if len(godownIds) > 0 {
		var godowns []Godown
		if err := db.WithContext(ctx).Where("id IN (?)", godownIds).Find(&godowns).Error; err != nil {
			return nil, err
		}
		for _, godown := range godowns {
			godownsById[godown.ID] = godown
		}
	}

	for i := range rows {
		if material, ok := materialsById[rows[i].MaterialId]; ok {
			rows[i].MaterialName = material.Name
			rows[i].Unit = material.Unit
		}
		if rows[i].GodownId != nil {
			if godown, ok := godownsById[*rows[i].GodownId]; ok {
				rows[i].GodownName = godown.Name
			}
		}
	}

	return rows, nil
}
