package models_test

import (
	"testing"
	"time"

	"github.com/buildtrack/matstock_backend/models"
	"github.com/shopspring/decimal"
)

func ledgerEntry(materialId int, godownId *int, txType models.StockTxType, qty int64, date time.Time) models.StockTransaction {
	return models.StockTransaction{
		MaterialId:      materialId,
		GodownId:        godownId,
		TxType:          txType,
		Qty:             decimal.NewFromInt(qty),
		Rate:            decimal.NewFromInt(100),
		TransactionDate: date,
		CreatedAt:       date,
	}
}

func intPtr(v int) *int { return &v }

func TestBuildInventoryRows_GroupsByMaterialAndGodown(t *testing.T) {
	day := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	entries := []models.StockTransaction{
		ledgerEntry(1, intPtr(10), models.StockTxTypeIn, 100, day),
		ledgerEntry(1, intPtr(10), models.StockTxTypeOut, 30, day.AddDate(0, 0, 1)),
		ledgerEntry(1, intPtr(11), models.StockTxTypeIn, 40, day),
		ledgerEntry(2, intPtr(10), models.StockTxTypeIn, 5, day),
	}

	rows := models.BuildInventoryRows(entries)
	if len(rows) != 3 {
		t.Fatalf("rows = %d, want 3", len(rows))
	}

	first := rows[0]
	if first.MaterialId != 1 || first.GodownId == nil || *first.GodownId != 10 {
		t.Fatalf("unexpected first row: %+v", first)
	}
	if want := decimal.NewFromInt(70); !first.Qty.Equal(want) {
		t.Fatalf("qty = %s, want %s", first.Qty, want)
	}
	if !first.LastUpdated.Equal(day.AddDate(0, 0, 1)) {
		t.Fatalf("last updated = %s, want the newest movement date", first.LastUpdated)
	}
}

func TestBuildInventoryRows_BackdatedEntryStillBumpsLastUpdated(t *testing.T) {
	entered := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	backdated := ledgerEntry(1, intPtr(10), models.StockTxTypeIn, 100, time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC))
	backdated.CreatedAt = entered

	rows := models.BuildInventoryRows([]models.StockTransaction{backdated})
	if len(rows) != 1 {
		t.Fatalf("rows = %d, want 1", len(rows))
	}
	if !rows[0].LastUpdated.Equal(entered) {
		t.Fatalf("last updated = %s, want entry time %s", rows[0].LastUpdated, entered)
	}
}

func TestBuildInventoryRows_DropsZeroedPairs(t *testing.T) {
	day := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	// a site-delivered purchase posts IN then OUT on the direct pair
	entries := []models.StockTransaction{
		ledgerEntry(1, nil, models.StockTxTypeIn, 50, day),
		ledgerEntry(1, nil, models.StockTxTypeOut, 50, day),
		ledgerEntry(2, intPtr(10), models.StockTxTypeIn, 5, day),
	}

	rows := models.BuildInventoryRows(entries)
	if len(rows) != 1 {
		t.Fatalf("rows = %d, want 1 (zeroed direct pair must be dropped)", len(rows))
	}
	if rows[0].MaterialId != 2 {
		t.Fatalf("surviving row material = %d, want 2", rows[0].MaterialId)
	}
}

func TestBuildInventoryRows_DirectPairKeyedSeparately(t *testing.T) {
	day := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	entries := []models.StockTransaction{
		ledgerEntry(1, intPtr(10), models.StockTxTypeIn, 20, day),
		ledgerEntry(1, nil, models.StockTxTypeIn, 7, day),
	}

	rows := models.BuildInventoryRows(entries)
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2 (direct and godown pairs are distinct)", len(rows))
	}
	// direct pair sorts before godown 10 for the same material
	if rows[0].GodownId != nil {
		t.Fatalf("first row should be the direct pair: %+v", rows[0])
	}
	if want := decimal.NewFromInt(7); !rows[0].Qty.Equal(want) {
		t.Fatalf("direct qty = %s, want %s", rows[0].Qty, want)
	}
}

func TestBuildInventoryRows_NegativePairExcluded(t *testing.T) {
	day := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	entries := []models.StockTransaction{
		ledgerEntry(1, intPtr(10), models.StockTxTypeIn, 10, day),
		ledgerEntry(1, intPtr(10), models.StockTxTypeOut, 25, day),
	}

	rows := models.BuildInventoryRows(entries)
	if len(rows) != 0 {
		t.Fatalf("rows = %d, want 0 (negative pairs belong to the consistency report)", len(rows))
	}
}
