package controllers

import (
	"net/http"

	"github.com/buildtrack/matstock_backend/models"
	"github.com/gin-gonic/gin"
)

func CreateCompany(c *gin.Context) {
	var input models.NewCompany
	if !bindJSON(c, &input) {
		return
	}
	company, err := models.CreateCompany(c.Request.Context(), &input)
	if err != nil {
		handleError(c, "controllers", "CreateCompany", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": company})
}

func UpdateCompany(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var input models.NewCompany
	if !bindJSON(c, &input) {
		return
	}
	company, err := models.UpdateCompany(c.Request.Context(), id, &input)
	if err != nil {
		handleError(c, "controllers", "UpdateCompany", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": company})
}

func DeleteCompany(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	company, err := models.DeleteCompany(c.Request.Context(), id)
	if err != nil {
		handleError(c, "controllers", "DeleteCompany", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": company})
}

func GetCompany(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	company, err := models.GetCompany(c.Request.Context(), id)
	if err != nil {
		handleError(c, "controllers", "GetCompany", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": company})
}

func ListCompanies(c *gin.Context) {
	companies, err := models.ListCompany(c.Request.Context(), queryString(c, "name"))
	if err != nil {
		handleError(c, "controllers", "ListCompanies", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": companies})
}

func ToggleActiveCompany(c *gin.Context) {
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
	company, err := models.ToggleActiveCompany(c.Request.Context(), id, *input.IsActive)
	if err != nil {
		handleError(c, "controllers", "ToggleActiveCompany", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": company})
}
