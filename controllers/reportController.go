package controllers

import (
	"net/http"
	"time"

	"github.com/buildtrack/matstock_backend/models"
	"github.com/gin-gonic/gin"
)

func SiteWiseReport(c *gin.Context) {
	siteId, ok := queryInt(c, "site_id")
	if !ok {
		return
	}
	fromDate, ok := queryDate(c, "from_date")
	if !ok {
		return
	}
	toDate, ok := queryDate(c, "to_date")
	if !ok {
		return
	}

	reports, err := models.SiteWiseReportQuery(c.Request.Context(), siteId, fromDate, toDate)
	if err != nil {
		handleError(c, "controllers", "SiteWiseReport", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": reports})
}

func MaterialWiseReport(c *gin.Context) {
	materialId, ok := queryInt(c, "material_id")
	if !ok {
		return
	}
	fromDate, ok := queryDate(c, "from_date")
	if !ok {
		return
	}
	toDate, ok := queryDate(c, "to_date")
	if !ok {
		return
	}

	reports, err := models.MaterialWiseReportQuery(c.Request.Context(), materialId, fromDate, toDate)
	if err != nil {
		handleError(c, "controllers", "MaterialWiseReport", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": reports})
}

func MaterialWiseReportExcel(c *gin.Context) {
	materialId, ok := queryInt(c, "material_id")
	if !ok {
		return
	}
	fromDate, ok := queryDate(c, "from_date")
	if !ok {
		return
	}
	toDate, ok := queryDate(c, "to_date")
	if !ok {
		return
	}

	file, err := models.ExportMaterialWiseReportExcel(c.Request.Context(), materialId, fromDate, toDate)
	if err != nil {
		handleError(c, "controllers", "MaterialWiseReportExcel", err)
		return
	}
	defer file.Close()

	c.Header("Content-Disposition", "attachment; filename="+models.ExcelReportFileName(time.Now()))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	if err := file.Write(c.Writer); err != nil {
		handleError(c, "controllers", "MaterialWiseReportExcel", err)
		return
	}
}

// LedgerConsistencyReport cross-checks document totals against the movement
// ledger. Admin only; an empty list means the two agree.
func LedgerConsistencyReport(c *gin.Context) {
	issues, err := models.CheckLedgerDocumentConsistency(c.Request.Context())
	if err != nil {
		handleError(c, "controllers", "LedgerConsistencyReport", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": issues, "consistent": len(issues) == 0})
}
