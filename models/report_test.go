package models_test

import (
	"testing"

	"github.com/buildtrack/matstock_backend/models"
	"github.com/shopspring/decimal"
)

func sourceRow(materialId int, materialName string, siteId int, siteName string, qty, amount int64) models.ReportSourceRow {
	return models.ReportSourceRow{
		MaterialId:   materialId,
		MaterialName: materialName,
		Unit:         "bag",
		SiteId:       siteId,
		SiteName:     siteName,
		Qty:          decimal.NewFromInt(qty),
		Amount:       decimal.NewFromInt(amount),
	}
}

func TestAggregateSiteWise_GroupsAndTotals(t *testing.T) {
	rows := []models.ReportSourceRow{
		sourceRow(1, "Cement", 5, "Tower A", 100, 35000),
		sourceRow(1, "Cement", 5, "Tower A", 50, 17500),
		sourceRow(2, "Sand", 5, "Tower A", 10, 8000),
		sourceRow(1, "Cement", 6, "Tower B", 20, 7000),
	}

	reports := models.AggregateSiteWise(rows)
	if len(reports) != 2 {
		t.Fatalf("sites = %d, want 2", len(reports))
	}

	towerA := reports[0]
	if towerA.SiteName != "Tower A" {
		t.Fatalf("sites must sort by name, got %q first", towerA.SiteName)
	}
	if len(towerA.Materials) != 2 {
		t.Fatalf("Tower A materials = %d, want 2", len(towerA.Materials))
	}
	cement := towerA.Materials[0]
	if cement.MaterialName != "Cement" {
		t.Fatalf("materials must sort by name, got %q first", cement.MaterialName)
	}
	if want := decimal.NewFromInt(150); !cement.Qty.Equal(want) {
		t.Fatalf("cement qty = %s, want %s", cement.Qty, want)
	}
	if want := decimal.NewFromInt(60500); !towerA.TotalAmount.Equal(want) {
		t.Fatalf("Tower A total = %s, want %s", towerA.TotalAmount, want)
	}
}

func TestAggregateSiteWise_Empty(t *testing.T) {
	if reports := models.AggregateSiteWise(nil); len(reports) != 0 {
		t.Fatalf("reports = %d, want 0", len(reports))
	}
}

func TestAggregateMaterialWise_RemainingAndBreakdown(t *testing.T) {
	added := []models.ReportSourceRow{
		sourceRow(1, "Cement", 0, "", 200, 70000),
		sourceRow(1, "Cement", 0, "", 100, 36000),
		sourceRow(2, "Sand", 0, "", 30, 24000),
	}
	distributed := []models.ReportSourceRow{
		sourceRow(1, "Cement", 5, "Tower A", 120, 42000),
		sourceRow(1, "Cement", 6, "Tower B", 60, 21000),
	}

	reports := models.AggregateMaterialWise(added, distributed)
	if len(reports) != 2 {
		t.Fatalf("materials = %d, want 2", len(reports))
	}

	cement := reports[0]
	if cement.MaterialName != "Cement" {
		t.Fatalf("materials must sort by name, got %q first", cement.MaterialName)
	}
	if want := decimal.NewFromInt(300); !cement.TotalAdded.Equal(want) {
		t.Fatalf("added = %s, want %s", cement.TotalAdded, want)
	}
	if want := decimal.NewFromInt(180); !cement.TotalDistributed.Equal(want) {
		t.Fatalf("distributed = %s, want %s", cement.TotalDistributed, want)
	}
	if want := decimal.NewFromInt(120); !cement.Remaining.Equal(want) {
		t.Fatalf("remaining = %s, want %s", cement.Remaining, want)
	}
	if len(cement.Sites) != 2 {
		t.Fatalf("cement site breakdown = %d, want 2", len(cement.Sites))
	}
	if cement.Sites[0].SiteName != "Tower A" {
		t.Fatalf("site breakdown must sort by name, got %q", cement.Sites[0].SiteName)
	}

	sand := reports[1]
	if len(sand.Sites) != 0 {
		t.Fatalf("sand has no distribution, breakdown = %d", len(sand.Sites))
	}
	if want := decimal.NewFromInt(30); !sand.Remaining.Equal(want) {
		t.Fatalf("sand remaining = %s, want %s", sand.Remaining, want)
	}
}

func TestAggregateMaterialWise_OverDistributionShowsNegative(t *testing.T) {
	added := []models.ReportSourceRow{sourceRow(1, "Cement", 0, "", 10, 3500)}
	distributed := []models.ReportSourceRow{sourceRow(1, "Cement", 5, "Tower A", 25, 8750)}

	reports := models.AggregateMaterialWise(added, distributed)
	if len(reports) != 1 {
		t.Fatalf("materials = %d, want 1", len(reports))
	}
	if want := decimal.NewFromInt(-15); !reports[0].Remaining.Equal(want) {
		t.Fatalf("remaining = %s, want %s (negatives are surfaced)", reports[0].Remaining, want)
	}
}
