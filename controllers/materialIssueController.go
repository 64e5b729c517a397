package controllers

import (
	"net/http"

	"github.com/buildtrack/matstock_backend/models"
	"github.com/gin-gonic/gin"
)

func CreateMaterialIssue(c *gin.Context) {
	var input models.NewMaterialIssue
	if !bindJSON(c, &input) {
		return
	}
	input.IdempotencyKey = idempotencyKeyHeader(c)

	issue, err := models.CreateMaterialIssue(c.Request.Context(), &input)
	if err != nil {
		handleError(c, "controllers", "CreateMaterialIssue", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": issue})
}

func GetMaterialIssue(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	issue, err := models.GetMaterialIssue(c.Request.Context(), id)
	if err != nil {
		handleError(c, "controllers", "GetMaterialIssue", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": issue})
}

func ListMaterialIssues(c *gin.Context) {
	filter := models.MaterialIssueFilter{
		IssueNumber: queryString(c, "issue_number"),
		DirectOnly:  queryBool(c, "direct_only"),
		Limit:       queryIntDefault(c, "limit", 50),
		Offset:      queryIntDefault(c, "offset", 0),
	}
	var ok bool
	if filter.SiteId, ok = queryInt(c, "site_id"); !ok {
		return
	}
	if filter.GodownId, ok = queryInt(c, "godown_id"); !ok {
		return
	}
	if filter.FromDate, ok = queryDate(c, "from_date"); !ok {
		return
	}
	if filter.ToDate, ok = queryDate(c, "to_date"); !ok {
		return
	}

	issues, total, err := models.ListMaterialIssue(c.Request.Context(), &filter)
	if err != nil {
		handleError(c, "controllers", "ListMaterialIssues", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": issues, "total": total})
}

func DeleteMaterialIssue(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	issue, err := models.DeleteMaterialIssue(c.Request.Context(), id)
	if err != nil {
		handleError(c, "controllers", "DeleteMaterialIssue", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": issue})
}
