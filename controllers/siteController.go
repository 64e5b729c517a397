package controllers

import (
	"net/http"

	"github.com/buildtrack/matstock_backend/models"
	"github.com/gin-gonic/gin"
)

func CreateSite(c *gin.Context) {
	var input models.NewSite
	if !bindJSON(c, &input) {
		return
	}
	site, err := models.CreateSite(c.Request.Context(), &input)
	if err != nil {
		handleError(c, "controllers", "CreateSite", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": site})
}

func UpdateSite(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var input models.NewSite
	if !bindJSON(c, &input) {
		return
	}
	site, err := models.UpdateSite(c.Request.Context(), id, &input)
	if err != nil {
		handleError(c, "controllers", "UpdateSite", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": site})
}

func DeleteSite(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	site, err := models.DeleteSite(c.Request.Context(), id)
	if err != nil {
		handleError(c, "controllers", "DeleteSite", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": site})
}

func GetSite(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	site, err := models.GetSite(c.Request.Context(), id)
	if err != nil {
		handleError(c, "controllers", "GetSite", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": site})
}

func ListSites(c *gin.Context) {
	sites, err := models.ListSite(c.Request.Context(), queryString(c, "name"))
	if err != nil {
		handleError(c, "controllers", "ListSites", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": sites})
}

func ToggleActiveSite(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var input struct {
		IsActive *bool `json:"is_active" binding:"required"`
	}
	if !bindJSON(c, &input) {
		return
	}
	site, err := models.ToggleActiveSite(c.Request.Context(), id, *input.IsActive)
	if err != nil {
		handleError(c, "controllers", "ToggleActiveSite", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": site})
}
