package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestSequenceHandler_PauseEnrollment_Unauthorized(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handler := &SequenceHandler{sequences: nil}
	r.POST("/enrollments/:id/pause", handler.PauseEnrollment)

	req, _ := http.NewRequest("POST", "/enrollments/"+uuid.NewString()+"/pause", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSequenceHandler_ResumeEnrollment_Unauthorized(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handler := &SequenceHandler{sequences: nil}
	r.POST("/enrollments/:id/resume", handler.ResumeEnrollment)

	req, _ := http.NewRequest("POST", "/enrollments/"+uuid.NewString()+"/resume", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSequenceHandler_PauseEnrollment_InvalidID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handler := &SequenceHandler{sequences: nil}
	r.POST("/enrollments/:id/pause", withAuthContext, handler.PauseEnrollment)

	req, _ := http.NewRequest("POST", "/enrollments/not-a-uuid/pause", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
