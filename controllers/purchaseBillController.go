package controllers

import (
	"net/http"

	"github.com/buildtrack/matstock_backend/models"
	"github.com/gin-gonic/gin"
)

func CreatePurchaseBill(c *gin.Context) {
	var input models.NewPurchaseBill
	if !bindJSON(c, &input) {
		return
	}
	input.IdempotencyKey = idempotencyKeyHeader(c)

	bill, err := models.CreatePurchaseBill(c.Request.Context(), &input)
	if err != nil {
		handleError(c, "controllers", "CreatePurchaseBill", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": bill})
}

func GetPurchaseBill(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	bill, err := models.GetPurchaseBill(c.Request.Context(), id)
	if err != nil {
		handleError(c, "controllers", "GetPurchaseBill", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": bill})
}

func ListPurchaseBills(c *gin.Context) {
	filter := models.PurchaseBillFilter{
		BillNumber: queryString(c, "bill_number"),
		Limit:      queryIntDefault(c, "limit", 50),
		Offset:     queryIntDefault(c, "offset", 0),
	}
	var ok bool
	if filter.CompanyId, ok = queryInt(c, "company_id"); !ok {
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

	bills, total, err := models.ListPurchaseBill(c.Request.Context(), &filter)
	if err != nil {
		handleError(c, "controllers", "ListPurchaseBills", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": bills, "total": total})
}

func DeletePurchaseBill(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	bill, err := models.DeletePurchaseBill(c.Request.Context(), id)
	if err != nil {
		handleError(c, "controllers", "DeletePurchaseBill", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": bill})
}
