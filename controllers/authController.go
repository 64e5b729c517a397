package controllers

import (
	"net/http"

	"github.com/buildtrack/matstock_backend/models"
	"github.com/buildtrack/matstock_backend/utils"
	"github.com/gin-gonic/gin"
)

func Login(c *gin.Context) {
	var input models.LoginInput
	if !bindJSON(c, &input) {
		return
	}
	info, err := models.Login(c.Request.Context(), &input)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": info})
}

// RegisterUser creates a user account. Admin only.
func RegisterUser(c *gin.Context) {
	var input models.NewUser
	if !bindJSON(c, &input) {
		return
	}
	user, err := models.CreateUser(c.Request.Context(), &input)
	if err != nil {
		handleError(c, "controllers", "RegisterUser", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": user})
}

func GetProfile(c *gin.Context) {
	userId, ok := utils.GetUserIdFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	user, err := models.GetUser(c.Request.Context(), userId)
	if err != nil {
		handleError(c, "controllers", "GetProfile", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": user})
}

func ListUsers(c *gin.Context) {
	users, err := models.ListUser(c.Request.Context(), queryString(c, "name"))
	if err != nil {
		handleError(c, "controllers", "ListUsers", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": users})
}

func ToggleActiveUser(c *gin.Context) {
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
	user, err := models.ToggleActiveUser(c.Request.Context(), id, *input.IsActive)
	if err != nil {
		handleError(c, "controllers", "ToggleActiveUser", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": user})
}
