package controllers

import (
	"net/http"

	"github.com/buildtrack/matstock_backend/models"
	"github.com/gin-gonic/gin"
)

func CreateMaterial(c *gin.Context) {
	var input models.NewMaterial
	if !bindJSON(c, &input) {
		return
	}
	material, err := models.CreateMaterial(c.Request.Context(), &input)
	if err != nil {
		handleError(c, "controllers", "CreateMaterial", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": material})
}

func UpdateMaterial(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var input models.NewMaterial
	if !bindJSON(c, &input) {
		return
	}
	material, err := models.UpdateMaterial(c.Request.Context(), id, &input)
	if err != nil {
		handleError(c, "controllers", "UpdateMaterial", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": material})
}

func DeleteMaterial(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	material, err := models.DeleteMaterial(c.Request.Context(), id)
	if err != nil {
		handleError(c, "controllers", "DeleteMaterial", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": material})
}

func GetMaterial(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	material, err := models.GetMaterial(c.Request.Context(), id)
	if err != nil {
		handleError(c, "controllers", "GetMaterial", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": material})
}

func ListMaterials(c *gin.Context) {
	materials, err := models.ListMaterial(c.Request.Context(), queryString(c, "name"))
	if err != nil {
		handleError(c, "controllers", "ListMaterials", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": materials})
}

func ToggleActiveMaterial(c *gin.Context) {
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
	material, err := models.ToggleActiveMaterial(c.Request.Context(), id, *input.IsActive)
	if err != nil {
		handleError(c, "controllers", "ToggleActiveMaterial", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": material})
}
