package models_test

import (
	"errors"
	"testing"

	"github.com/buildtrack/matstock_backend/models"
	"github.com/shopspring/decimal"
)

func inEntry(qty, rate int64) models.StockTransaction {
	return models.StockTransaction{
		TxType: models.StockTxTypeIn,
		Qty:    decimal.NewFromInt(qty),
		Rate:   decimal.NewFromInt(rate),
	}
}

func outEntry(qty, rate int64) models.StockTransaction {
	return models.StockTransaction{
		TxType: models.StockTxTypeOut,
		Qty:    decimal.NewFromInt(qty),
		Rate:   decimal.NewFromInt(rate),
	}
}

func TestComputeBalance_Empty(t *testing.T) {
	result := models.ComputeBalance(nil)
	if !result.Qty.IsZero() {
		t.Fatalf("empty ledger qty = %s, want 0", result.Qty)
	}
	if !result.TotalValue.IsZero() {
		t.Fatalf("empty ledger value = %s, want 0", result.TotalValue)
	}
	if result.IsNegative() {
		t.Fatal("empty ledger must not report negative")
	}
}

func TestComputeBalance_InAndOut(t *testing.T) {
	entries := []models.StockTransaction{
		inEntry(100, 350),
		inEntry(50, 360),
		outEntry(80, 350),
	}
	result := models.ComputeBalance(entries)

	if want := decimal.NewFromInt(70); !result.Qty.Equal(want) {
		t.Fatalf("qty = %s, want %s", result.Qty, want)
	}
	// 100*350 + 50*360 - 80*350 = 25000
	if want := decimal.NewFromInt(25000); !result.TotalValue.Equal(want) {
		t.Fatalf("value = %s, want %s", result.TotalValue, want)
	}
}

func TestComputeBalance_RoundTripToZero(t *testing.T) {
	entries := []models.StockTransaction{
		inEntry(50, 420),
		outEntry(50, 420),
	}
	result := models.ComputeBalance(entries)
	if !result.Qty.IsZero() {
		t.Fatalf("round trip qty = %s, want 0", result.Qty)
	}
	if !result.TotalValue.IsZero() {
		t.Fatalf("round trip value = %s, want 0", result.TotalValue)
	}
}

func TestComputeBalance_NegativePreserved(t *testing.T) {
	entries := []models.StockTransaction{
		inEntry(10, 100),
		outEntry(25, 100),
	}
	result := models.ComputeBalance(entries)
	if want := decimal.NewFromInt(-15); !result.Qty.Equal(want) {
		t.Fatalf("qty = %s, want %s", result.Qty, want)
	}
	if !result.IsNegative() {
		t.Fatal("negative balance must be reported as negative, not clamped")
	}
}

func TestComputeBalance_OrderInsensitive(t *testing.T) {
	forward := []models.StockTransaction{
		inEntry(100, 350),
		outEntry(30, 350),
		inEntry(20, 400),
	}
	backward := []models.StockTransaction{
		forward[2], forward[1], forward[0],
	}
	a := models.ComputeBalance(forward)
	b := models.ComputeBalance(backward)
	if !a.Qty.Equal(b.Qty) || !a.TotalValue.Equal(b.TotalValue) {
		t.Fatalf("fold depends on order: %+v vs %+v", a, b)
	}
}

func TestComputeBalance_FractionalQty(t *testing.T) {
	half := decimal.RequireFromString("0.5")
	entries := []models.StockTransaction{
		{TxType: models.StockTxTypeIn, Qty: decimal.RequireFromString("2.5"), Rate: decimal.NewFromInt(100)},
		{TxType: models.StockTxTypeOut, Qty: decimal.NewFromInt(2), Rate: decimal.NewFromInt(100)},
	}
	result := models.ComputeBalance(entries)
	if !result.Qty.Equal(half) {
		t.Fatalf("qty = %s, want %s", result.Qty, half)
	}
}

func TestInsufficientStockError_Matching(t *testing.T) {
	err := error(&models.InsufficientStockError{
		MaterialId: 3,
		Requested:  decimal.NewFromInt(80),
		Available:  decimal.NewFromInt(20),
	})
	if !errors.Is(err, models.ErrInsufficientStock) {
		t.Fatal("InsufficientStockError must match ErrInsufficientStock")
	}

	var detailed *models.InsufficientStockError
	if !errors.As(err, &detailed) {
		t.Fatal("errors.As must recover the detailed error")
	}
	if !detailed.Available.Equal(decimal.NewFromInt(20)) {
		t.Fatalf("available = %s, want 20", detailed.Available)
	}
}
