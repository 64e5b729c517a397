package controllers

import (
	"net/http"

	"github.com/buildtrack/matstock_backend/models"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

func ListStockTransactions(c *gin.Context) {
	filter := models.StockTransactionFilter{
		DirectOnly: queryBool(c, "direct_only"),
		Limit:      queryIntDefault(c, "limit", 50),
		Offset:     queryIntDefault(c, "offset", 0),
	}
	var ok bool
	if filter.MaterialId, ok = queryInt(c, "material_id"); !ok {
		return
	}
	if filter.GodownId, ok = queryInt(c, "godown_id"); !ok {
		return
	}
	if filter.SiteId, ok = queryInt(c, "site_id"); !ok {
		return
	}
	if filter.FromDate, ok = queryDate(c, "from_date"); !ok {
		return
	}
	if filter.ToDate, ok = queryDate(c, "to_date"); !ok {
		return
	}
	if txType := c.Query("tx_type"); txType != "" {
		if txType != string(models.StockTxTypeIn) && txType != string(models.StockTxTypeOut) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid tx_type"})
			return
		}
		value := models.StockTxType(txType)
		filter.TxType = &value
	}
	if referenceType := c.Query("reference_type"); referenceType != "" {
		if referenceType != string(models.StockReferenceTypePurchaseBill) &&
			referenceType != string(models.StockReferenceTypeMaterialIssue) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid reference_type"})
			return
		}
		value := models.StockReferenceType(referenceType)
		filter.ReferenceType = &value
	}

	entries, total, err := models.ListStockTransaction(c.Request.Context(), &filter)
	if err != nil {
		handleError(c, "controllers", "ListStockTransactions", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": entries, "total": total})
}

func GetStockTransaction(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	entry, err := models.GetStockTransaction(c.Request.Context(), id)
	if err != nil {
		handleError(c, "controllers", "GetStockTransaction", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": entry})
}

func GetInventory(c *gin.Context) {
	filter := models.InventoryFilter{
		DirectOnly: queryBool(c, "direct_only"),
	}
	var ok bool
	if filter.MaterialId, ok = queryInt(c, "material_id"); !ok {
		return
	}
	if filter.GodownId, ok = queryInt(c, "godown_id"); !ok {
		return
	}

	rows, err := models.GetCurrentInventory(c.Request.Context(), &filter)
	if err != nil {
		handleError(c, "controllers", "GetInventory", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": rows})
}

// CheckAvailability answers whether qty of a material can be issued from a
// godown (or the direct pool) right now. Advisory: the posting transaction
// re-checks under lock.
func CheckAvailability(c *gin.Context) {
	materialId, ok := queryInt(c, "material_id")
	if !ok {
		return
	}
	if materialId == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "material_id is required"})
		return
	}
	godownId, ok := queryInt(c, "godown_id")
	if !ok {
		return
	}
	qtyParam := c.Query("qty")
	if qtyParam == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "qty is required"})
		return
	}
	qty, err := decimal.NewFromString(qtyParam)
	if err != nil || !qty.IsPositive() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid qty"})
		return
	}

	available, balance, err := models.CheckAvailability(c.Request.Context(), *materialId, godownId, qty)
	if err != nil {
		handleError(c, "controllers", "CheckAvailability", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": gin.H{
		"available":   available,
		"current_qty": balance.Qty.String(),
		"requested":   qty.String(),
	}})
}

// GetBalance returns the replayed ledger balance for one (material, godown)
// pair, negative values included.
func GetBalance(c *gin.Context) {
	materialId, ok := queryInt(c, "material_id")
	if !ok {
		return
	}
	if materialId == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "material_id is required"})
		return
	}
	godownId, ok := queryInt(c, "godown_id")
	if !ok {
		return
	}

	balance, err := models.GetBalance(c.Request.Context(), *materialId, godownId)
	if err != nil {
		handleError(c, "controllers", "GetBalance", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": gin.H{
		"qty":         balance.Qty.String(),
		"total_value": balance.TotalValue.String(),
		"negative":    balance.IsNegative(),
	}})
}
