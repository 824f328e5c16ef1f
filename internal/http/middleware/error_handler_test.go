package middleware

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/reachbase/reachbase-backend/internal/repository"
	"github.com/reachbase/reachbase-backend/internal/validation"
)

func setupErrorHandlerRouter(err error) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(ErrorHandler())
	r.GET("/test", func(c *gin.Context) {
		c.Error(err)
	})
	return r
}

func TestErrorHandler_ValidationError(t *testing.T) {
	r := setupErrorHandlerRouter(
		fmt.Errorf("template service: %w", validation.Errorf("название шаблона обязательно")))

	req, _ := http.NewRequest("GET", "/test", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"название шаблона обязательно"}`, w.Body.String())
}

func TestErrorHandler_ValidationErrorWithoutWrapping(t *testing.T) {
	r := setupErrorHandlerRouter(validation.Errorf("тег не может быть пустым"))

	req, _ := http.NewRequest("GET", "/test", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"тег не может быть пустым"}`, w.Body.String())
}

func TestErrorHandler_RepositorySentinel(t *testing.T) {
	r := setupErrorHandlerRouter(
		fmt.Errorf("template service: %w", repository.ErrTemplateNotFound))

	req, _ := http.NewRequest("GET", "/test", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"шаблон не найден"}`, w.Body.String())
}

func TestErrorHandler_InternalErrorMasked(t *testing.T) {
	r := setupErrorHandlerRouter(fmt.Errorf("sql: connection refused"))

	req, _ := http.NewRequest("GET", "/test", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"внутренняя ошибка сервера"}`, w.Body.String())
}
