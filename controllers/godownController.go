package controllers

import (
	"net/http"

	"github.com/buildtrack/matstock_backend/models"
	"github.com/gin-gonic/gin"
)

func CreateGodown(c *gin.Context) {
	var input models.NewGodown
	if !bindJSON(c, &input) {
		return
	}
	godown, err := models.CreateGodown(c.Request.Context(), &input)
	if err != nil {
		handleError(c, "controllers", "CreateGodown", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": godown})
}

func UpdateGodown(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var input models.NewGodown
	if !bindJSON(c, &input) {
		return
	}
	godown, err := models.UpdateGodown(c.Request.Context(), id, &input)
	if err != nil {
		handleError(c, "controllers", "UpdateGodown", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": godown})
}

func DeleteGodown(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	godown, err := models.DeleteGodown(c.Request.Context(), id)
	if err != nil {
		handleError(c, "controllers", "DeleteGodown", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": godown})
}

func GetGodown(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	godown, err := models.GetGodown(c.Request.Context(), id)
	if err != nil {
		handleError(c, "controllers", "GetGodown", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": godown})
}

func ListGodowns(c *gin.Context) {
	godowns, err := models.ListGodown(c.Request.Context(), queryString(c, "name"))
	if err != nil {
		handleError(c, "controllers", "ListGodowns", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": godowns})
}

func ToggleActiveGodown(c *gin.Context) {
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
	godown, err := models.ToggleActiveGodown(c.Request.Context(), id, *input.IsActive)
	if err != nil {
		handleError(c, "controllers", "ToggleActiveGodown", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": godown})
}
