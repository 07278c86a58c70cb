package main

import (
	"errors"
	"net/http"
	"strconv"

	"bitbucket.org/mmdatafocus/facility_backend/utils"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// httpStatusForError maps the error taxonomy to a status code.
func httpStatusForError(err error) int {
	switch utils.KindOf(err) {
	case utils.ErrorKindNotFound:
		return http.StatusNotFound
	case utils.ErrorKindForbidden:
		return http.StatusForbidden
	default:
		return http.StatusBadRequest
	}
}

func respondError(c *gin.Context, err error) {
	c.JSON(httpStatusForError(err), gin.H{
		"error": err.Error(),
		"kind":  utils.KindOf(err),
	})
}

func respondBindingError(c *gin.Context, err error) {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":  "validation failed",
			"kind":   utils.ErrorKindValidation,
			"fields": utils.ProcessValidationErrors(err),
		})
		return
	}
	c.JSON(http.StatusBadRequest, gin.H{
		"error": "invalid request",
		"kind":  utils.ErrorKindValidation,
	})
}

func idParam(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}

func intQuery(c *gin.Context, name string) *int {
	v := c.Query(name)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return nil
	}
	return &n
}

func stringQuery(c *gin.Context, name string) *string {
	v := c.Query(name)
	if v == "" {
		return nil
	}
	return &v
}

// requireAuth aborts with 401 when the session middleware did not resolve a
// user.
func requireAuth(c *gin.Context) bool {
	if _, ok := utils.GetUsernameFromContext(c.Request.Context()); !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		c.Abort()
		return false
	}
	return true
}

func requireAdmin(c *gin.Context) bool {
	if !requireAuth(c) {
		return false
	}
	isAdmin, ok := utils.GetIsAdminFromContext(c.Request.Context())
	if !ok || !isAdmin {
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		c.Abort()
		return false
	}
	return true
}
