package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/reachbase/reachbase-backend/internal/config"
	"github.com/reachbase/reachbase-backend/internal/db"
	httpHandlers "github.com/reachbase/reachbase-backend/internal/http/handlers"
	httpRouter "github.com/reachbase/reachbase-backend/internal/http/router"
	"github.com/reachbase/reachbase-backend/internal/logger"
	"github.com/reachbase/reachbase-backend/internal/metrics"
	"github.com/reachbase/reachbase-backend/internal/repository"
	"github.com/reachbase/reachbase-backend/internal/service"
)

func main() {
	// Готовим контекст для graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("main: ошибка загрузки конфигурации: %v", err)
	}

	// Инициализация логгера
	logLevel := "info"
	if cfg.Env == "development" {
		logLevel = "debug"
		logger.Init(logLevel)
		logger.SetTextFormatter()
	} else {
		logger.Init(logLevel)
	}

	// Подключение к базе и миграции.
	dbConn, err := db.NewPostgres(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("main: ошибка подключения к базе: %v", err)
	}
	defer safeClose(dbConn)

	if err := db.RunMigrations(ctx, dbConn, cfg.MigrationsPath); err != nil {
		log.Fatalf("main: ошибка миграций: %v", err)
	}

	// Метрики.
	m := metrics.New()
	metrics.SetGlobal(m)

	// Вспомогательные сервисы.
	tokenManager := service.NewTokenManager(cfg.JWTSecret, cfg.RefreshSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)

	// Репозитории.
	userRepo := repository.NewUserRepository(dbConn)
	templateRepo := repository.NewTemplateRepository(dbConn)
	contactRepo := repository.NewContactRepository(dbConn)
	accountRepo := repository.NewAccountRepository(dbConn)
	sequenceRepo := repository.NewSequenceRepository(dbConn)
	dealRepo := repository.NewDealRepository(dbConn)

	// Сервисы.
	authService := service.NewAuthService(userRepo, tokenManager)
	workspaceService := service.NewWorkspaceService(userRepo)
	templateService := service.NewTemplateService(templateRepo)
	contactService := service.NewContactService(contactRepo)
	accountService := service.NewAccountService(accountRepo)
	sequenceService := service.NewSequenceService(sequenceRepo, contactRepo)
	dealService := service.NewDealService(dealRepo)
	cacheService := service.NewCacheService()

	// HTTP хэндлеры.
	authHandler := httpHandlers.NewAuthHandler(authService)
	workspaceHandler := httpHandlers.NewWorkspaceHandler(workspaceService)
	templateHandler := httpHandlers.NewTemplateHandler(templateService)
	contactHandler := httpHandlers.NewContactHandler(contactService)
	accountHandler := httpHandlers.NewAccountHandler(accountService)
	sequenceHandler := httpHandlers.NewSequenceHandler(sequenceService)
	dealHandler := httpHandlers.NewDealHandler(dealService)
	statsHandler := httpHandlers.NewStatsHandler(templateService, dealService, cacheService)
	healthHandler := httpHandlers.NewHealthHandler(dbConn)

	// Роутер.
	engine := httpRouter.SetupRouter(
		cfg,
		authHandler,
		workspaceHandler,
		templateHandler,
		contactHandler,
		accountHandler,
		sequenceHandler,
		dealHandler,
		statsHandler,
		healthHandler,
		tokenManager,
		m,
	)

	server := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: engine,
	}

	// Завершаем сервер при получении сигнала.
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("main: ошибка остановки http сервера: %v", err)
		}
	}()

	log.Printf("main: HTTP сервер запущен на порту %s", cfg.HTTPPort)

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("main: сервер завершился с ошибкой: %v", err)
	}
}

// safeClose закрывает соединение с базой.
func safeClose(db *sqlx.DB) {
	if err := db.Close(); err != nil {
		log.Printf("main: ошибка закрытия базы: %v", err)
	}
}
