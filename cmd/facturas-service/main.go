package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/afc-labs/facturas-service/internal/api"
	"github.com/afc-labs/facturas-service/internal/config"
	"github.com/afc-labs/facturas-service/internal/database"
	"github.com/afc-labs/facturas-service/internal/email"
	"github.com/afc-labs/facturas-service/internal/services"
	"github.com/afc-labs/facturas-service/internal/session"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

func main() {
	// Cargar configuración
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Error loading configuration: %v", err)
	}

	// Configurar logging
	logger := setupLogger(cfg)
	logger.Info("Starting Facturas Service...")

	if cfg.Auth.Password == "" {
		logger.Fatal("APP_PASSWORD not configured, refusing to start without a login password")
	}

	// Configurar modo de Gin
	if cfg.IsDevelopment() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	// Almacén de sesiones: Redis con respaldo en memoria
	var sessions session.Store
	redisStore, err := session.NewRedisStore(cfg, logger)
	if err != nil {
		logger.Warnf("Error connecting to Redis, using in-memory sessions: %v", err)
		sessions = session.NewMemoryStore(cfg.Auth.SessionTTL)
	} else {
		defer redisStore.Close()
		sessions = redisStore
	}

	// Bitácora de reportes en PostgreSQL (opcional)
	var db *database.DB
	var reportLogRepo *database.ReportLogRepository
	if cfg.Database.Host != "" {
		db, err = database.Connect(cfg)
		if err != nil {
			logger.Warnf("Error connecting to database, report log disabled: %v", err)
			db = nil
		} else {
			defer db.Close()
			reportLogRepo = database.NewReportLogRepository(db, logger)
		}
	} else {
		logger.Warn("PGHOST not provided, report log disabled")
	}

	// Servicio de correo (opcional)
	var resendService *email.ResendService
	if cfg.Email.ResendAPIKey != "" {
		resendService = email.NewResendService(cfg.Email.ResendAPIKey, cfg.Email.FromEmail, logger)
		logger.Info("Resend service initialized successfully")
	} else {
		logger.Warn("Resend API key not provided, email service will not be available")
	}

	// Inicializar servicios
	reportService := services.NewReportService(reportLogRepo, resendService, cfg.Report.DownloadName, logger)

	// Inicializar API
	apiHandler := api.NewAPI(reportService, sessions, db, cfg, logger)

	// Configurar router
	router := setupRouter(apiHandler)

	// Crear servidor HTTP
	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Canal para señales de terminación
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	// Iniciar servidor en goroutine
	go func() {
		logger.Infof("Server starting on %s:%s", cfg.Server.Host, cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Error starting server: %v", err)
		}
	}()

	// Esperar señal de terminación
	<-quit
	logger.Info("Shutting down server...")

	// Contexto con timeout para shutdown graceful
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Shutdown graceful del servidor
	if err := server.Shutdown(ctx); err != nil {
		logger.Errorf("Server forced to shutdown: %v", err)
	}

	logger.Info("Server exited")
}

// setupLogger configura el logger según la configuración
func setupLogger(cfg *config.Config) *logrus.Logger {
	logger := logrus.New()

	// Configurar nivel de log
	level, err := logrus.ParseLevel(cfg.Logging.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	// Configurar formato
	if cfg.Logging.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	}

	return logger
}

// setupRouter configura el router principal
func setupRouter(apiHandler *api.API) *gin.Engine {
	router := gin.New()

	// Middleware global
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	router.LoadHTMLGlob("templates/*")

	// Health check
	router.GET("/health", apiHandler.Health)

	// Rutas públicas
	router.GET("/login", apiHandler.LoginPage)
	router.POST("/login", apiHandler.Login)
	router.GET("/logout", apiHandler.Logout)

	// Rutas protegidas por sesión
	protected := router.Group("")
	protected.Use(apiHandler.AuthMiddleware())
	{
		protected.GET("/", apiHandler.Index)
		protected.POST("/upload", apiHandler.Upload)
		protected.GET("/historial", apiHandler.History)
	}

	return router
}
