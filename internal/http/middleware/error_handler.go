package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/reachbase/reachbase-backend/internal/logger"
	"github.com/reachbase/reachbase-backend/internal/repository"
	"github.com/reachbase/reachbase-backend/internal/repository/common"
	"github.com/reachbase/reachbase-backend/internal/validation"
)

// ErrorHandler обрабатывает ошибки централизованно.
// Маскирует внутренние ошибки и возвращает понятные сообщения клиенту.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		// Проверяем, не был ли уже отправлен ответ
		if c.Writer.Written() {
			return
		}

		if len(c.Errors) > 0 {
			err := c.Errors.Last()

			// Определяем тип ошибки и статус код
			statusCode := http.StatusInternalServerError
			message := "внутренняя ошибка сервера"

			// Логируем ошибку
			if logger.Log != nil {
				logger.Log.WithFields(logrus.Fields{
					"error":  err.Error(),
					"path":   c.Request.URL.Path,
					"method": c.Request.Method,
				}).Error("Request error")
			}

			// Обрабатываем известные типы ошибок
			var validationErr *validation.Error
			switch {
			case errors.As(err.Err, &validationErr):
				statusCode = http.StatusBadRequest
				message = validationErr.Error()
			case errors.Is(err.Err, repository.ErrUserNotFound):
				statusCode = http.StatusNotFound
				message = "пользователь не найден"
			case errors.Is(err.Err, repository.ErrTemplateNotFound):
				statusCode = http.StatusNotFound
				message = "шаблон не найден"
			case errors.Is(err.Err, repository.ErrCollectionNotFound):
				statusCode = http.StatusNotFound
				message = "подборка не найдена"
			case errors.Is(err.Err, repository.ErrContactNotFound):
				statusCode = http.StatusNotFound
				message = "контакт не найден"
			case errors.Is(err.Err, repository.ErrAccountNotFound):
				statusCode = http.StatusNotFound
				message = "компания не найдена"
			case errors.Is(err.Err, repository.ErrSequenceNotFound):
				statusCode = http.StatusNotFound
				message = "последовательность не найдена"
			case errors.Is(err.Err, repository.ErrEnrollmentNotFound):
				statusCode = http.StatusNotFound
				message = "запись участника не найдена"
			case errors.Is(err.Err, repository.ErrDealNotFound):
				statusCode = http.StatusNotFound
				message = "сделка не найдена"
			case errors.Is(err.Err, common.ErrNoFieldsToUpdate):
				statusCode = http.StatusBadRequest
				message = "нет полей для обновления"
			default:
				if err.Error() != "" {
					// Если ошибка содержит понятное сообщение, используем его
					// Но только если это не внутренняя ошибка
					errStr := err.Error()
					if !containsInternalKeywords(errStr) {
						message = errStr
						// Для некоторых ошибок меняем статус код
						if contains(errStr, "неверный") || contains(errStr, "невалид") || contains(errStr, "недопустим") {
							statusCode = http.StatusBadRequest
						} else if contains(errStr, "нет прав") || contains(errStr, "не авторизован") {
							statusCode = http.StatusForbidden
						}
					}
				}
			}

			c.JSON(statusCode, gin.H{"error": message})
		}
	}
}

// containsInternalKeywords проверяет, содержит ли строка ключевые слова внутренних ошибок.
func containsInternalKeywords(s string) bool {
	keywords := []string{
		"sql:",
		"database",
		"connection",
		"timeout",
		"internal",
		"panic",
		"runtime",
	}

	for _, keyword := range keywords {
		if contains(s, keyword) {
			return true
		}
	}
	return false
}

// contains проверяет, содержит ли строка подстроку (case-insensitive).
func contains(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
