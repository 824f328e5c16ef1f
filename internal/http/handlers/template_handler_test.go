package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/reachbase/reachbase-backend/internal/http/middleware"
)

// withAuthContext подкладывает идентификаторы в контекст, как это делает AuthMiddleware.
func withAuthContext(c *gin.Context) {
	c.Set(middleware.ContextUserIDKey, uuid.New())
	c.Set(middleware.ContextWorkspaceIDKey, uuid.New())
	c.Next()
}

func TestTemplateHandler_List_Unauthorized(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handler := &TemplateHandler{templates: nil}
	r.GET("/templates", handler.List)

	req, _ := http.NewRequest("GET", "/templates", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestTemplateHandler_Get_InvalidID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handler := &TemplateHandler{templates: nil}
	r.GET("/templates/:id", withAuthContext, handler.Get)

	req, _ := http.NewRequest("GET", "/templates/invalid-uuid", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTemplateHandler_List_BadReplyRateFilter(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handler := &TemplateHandler{templates: nil}
	r.GET("/templates", withAuthContext, handler.List)

	req, _ := http.NewRequest("GET", "/templates?reply_rate_min=abc", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTemplateHandler_List_BadCollectionID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handler := &TemplateHandler{templates: nil}
	r.GET("/templates", withAuthContext, handler.List)

	req, _ := http.NewRequest("GET", "/templates?collection_id=not-a-uuid", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTemplateHandler_Create_Unauthorized(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handler := &TemplateHandler{templates: nil}
	r.POST("/templates", handler.Create)

	req, _ := http.NewRequest("POST", "/templates", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestTemplateHandler_AddFavorite_InvalidID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handler := &TemplateHandler{templates: nil}
	r.POST("/templates/:id/favorite", withAuthContext, handler.AddFavorite)

	req, _ := http.NewRequest("POST", "/templates/not-a-uuid/favorite", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDealHandler_Create_BadCloseDate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handler := &DealHandler{deals: nil}
	r.POST("/deals", withAuthContext, handler.Create)

	body := `{"name": "Пилот для Acme", "expected_close_at": "31-12-2026"}`
	req, _ := http.NewRequest("POST", "/deals", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
