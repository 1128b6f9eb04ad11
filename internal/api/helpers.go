package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"kalita/internal/store"
)

// fail - ошибка в формате {"error": ..., "details": ...}; err попадает и в лог запроса.
func fail(c *gin.Context, status int, msg string, err error) {
	body := gin.H{"error": msg}
	if err != nil {
		_ = c.Error(err)
		body["details"] = err.Error()
	}
	c.AbortWithStatusJSON(status, body)
}

// statusForErrors: 409, если есть конфликтные ошибки (unique/ref).
func statusForErrors(errs []store.FieldError) int {
	for _, e := range errs {
		if e.Code == store.CodeUniqueViolation || e.Code == store.CodeRefNotFound {
			return http.StatusConflict
		}
	}
	return http.StatusBadRequest
}
