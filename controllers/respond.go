package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/buildtrack/matstock_backend/config"
	"github.com/buildtrack/matstock_backend/models"
	"github.com/buildtrack/matstock_backend/utils"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// handleError maps domain errors onto HTTP statuses. Unknown errors are
// logged with the request correlation id and reported as 500.
func handleError(c *gin.Context, moduleName string, funcName string, err error) {

	var insufficient *models.InsufficientStockError
	if errors.As(err, &insufficient) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":       "insufficient stock",
			"material_id": insufficient.MaterialId,
			"godown_id":   insufficient.GodownId,
			"requested":   insufficient.Requested.String(),
			"available":   insufficient.Available.String(),
		})
		return
	}
	if errors.Is(err, models.ErrDuplicateRequest) {
		c.JSON(http.StatusConflict, gin.H{"error": "duplicate request"})
		return
	}
	if errors.Is(err, utils.ErrorRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "record not found"})
		return
	}

	message := err.Error()
	if strings.Contains(message, "duplicate") {
		c.JSON(http.StatusConflict, gin.H{"error": message})
		return
	}
	switch {
	case strings.Contains(message, "not found"),
		strings.Contains(message, "inactive"),
		strings.Contains(message, "required"),
		strings.Contains(message, "invalid"),
		strings.Contains(message, "must"):
		c.JSON(http.StatusBadRequest, gin.H{"error": message})
		return
	}

	correlationId, _ := utils.GetCorrelationIdFromContext(c.Request.Context())
	config.LogError(config.GetLogger(), moduleName, funcName, correlationId, c.Request.URL.Path, err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
}

// bindJSON binds the body and turns validator errors into a field map.
func bindJSON(c *gin.Context, input interface{}) bool {
	if err := c.ShouldBindJSON(input); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "validation failed", "fields": utils.ProcessValidationErrors(err)})
			return false
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return false
	}
	return true
}

func idParam(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}

func queryString(c *gin.Context, key string) *string {
	value := c.Query(key)
	if value == "" {
		return nil
	}
	return &value
}

func queryInt(c *gin.Context, key string) (*int, bool) {
	value := c.Query(key)
	if value == "" {
		return nil, true
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + key})
		return nil, false
	}
	return &parsed, true
}

func queryIntDefault(c *gin.Context, key string, def int) int {
	value := c.Query(key)
	if value == "" {
		return def
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return def
	}
	return parsed
}

func queryDate(c *gin.Context, key string) (*time.Time, bool) {
	value := c.Query(key)
	if value == "" {
		return nil, true
	}
	parsed, err := time.Parse("2006-01-02", value)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + key + ", expected YYYY-MM-DD"})
		return nil, false
	}
	return &parsed, true
}

func queryBool(c *gin.Context, key string) bool {
	value := strings.ToLower(c.Query(key))
	return value == "true" || value == "1"
}

func idempotencyKeyHeader(c *gin.Context) *string {
	key := strings.TrimSpace(c.GetHeader("Idempotency-Key"))
	if key == "" {
		return nil
	}
	return &key
}
