package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/reachbase/reachbase-backend/internal/http/handlers/common"
	"github.com/reachbase/reachbase-backend/internal/service"
)

// statsCacheTTL ограничивает частоту пересчёта агрегатов.
const statsCacheTTL = 30 * time.Second

// StatsHandler отвечает за сводную статистику воркспейса.
type StatsHandler struct {
	templates *service.TemplateService
	deals     *service.DealService
	cache     *service.CacheService
}

// NewStatsHandler создаёт экземпляр.
func NewStatsHandler(templates *service.TemplateService, deals *service.DealService, cache *service.CacheService) *StatsHandler {
	return &StatsHandler{
		templates: templates,
		deals:     deals,
		cache:     cache,
	}
}

// GetWorkspaceStats возвращает сводку по библиотеке шаблонов и пайплайну сделок.
func (h *StatsHandler) GetWorkspaceStats(c *gin.Context) {
	workspaceID, err := common.CurrentWorkspaceID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	stats, err := h.cache.GetOrSet(
		c.Request.Context(),
		service.WorkspaceStatsCacheKey(workspaceID),
		statsCacheTTL,
		func() (interface{}, error) {
			// Статистика по шаблонам: всего, по статусам, использования
			templateStats, err := h.templates.GetWorkspaceStats(c.Request.Context(), workspaceID)
			if err != nil {
				return nil, err
			}

			// Сводка пайплайна по стадиям
			pipeline, err := h.deals.GetPipelineSummary(c.Request.Context(), workspaceID)
			if err != nil {
				return nil, err
			}

			return gin.H{
				"templates": templateStats,
				"pipeline":  pipeline,
			}, nil
		},
	)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "не удалось получить статистику воркспейса"})
		return
	}

	c.JSON(http.StatusOK, stats)
}
