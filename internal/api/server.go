package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/ksred/ironforge/internal/config"
	"github.com/ksred/ironforge/internal/database"
	"github.com/ksred/ironforge/internal/mcp"
	"github.com/ksred/ironforge/internal/services"
)

type Server struct {
	router      *gin.Engine
	config      *config.Config
	db          *database.Database
	migrations  *services.MigrationService
	seeds       *services.SeedService
	mcp         *mcp.Handler
	authService *AuthService
	logger      zerolog.Logger
	httpServer  *http.Server
}

func NewServer(cfg *config.Config, db *database.Database, migrations *services.MigrationService, seeds *services.SeedService, logger zerolog.Logger) (*Server, error) {
	if migrations == nil || seeds == nil {
		return nil, fmt.Errorf("migration and seed services are required")
	}

	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(LoggerMiddleware(logger))

	corsConfig := cors.DefaultConfig()
	if len(cfg.HTTP.AllowOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.HTTP.AllowOrigins
	} else {
		corsConfig.AllowOrigins = []string{"http://localhost:3000", "http://localhost:5173", "http://127.0.0.1:3000", "http://127.0.0.1:5173"}
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization", "X-API-Key", "X-Requested-With"}
	corsConfig.ExposeHeaders = []string{"Content-Length", "Content-Type"}
	corsConfig.AllowCredentials = true
	corsConfig.MaxAge = 12 * time.Hour

	router.Use(cors.New(corsConfig))

	server := &Server{
		router:      router,
		config:      cfg,
		db:          db,
		migrations:  migrations,
		seeds:       seeds,
		mcp:         mcp.NewHandler(migrations, seeds, logger),
		authService: NewAuthService(cfg, logger),
		logger:      logger,
	}

	server.setupRoutes()

	return server, nil
}

// Router exposes the gin engine, mainly for tests
func (s *Server) Router() http.Handler {
	return s.router
}

func (s *Server) setupRoutes() {
	s.router.GET("/health", s.healthHandler)

	s.router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1 := s.router.Group("/api/v1")
	{
		auth := v1.Group("/auth")
		{
			auth.POST("/token", s.tokenHandler)
		}

		protected := v1.Group("")
		protected.Use(s.authMiddleware())
		{
			protected.GET("/auth/me", s.whoAmIHandler)

			migrations := protected.Group("/migrations")
			{
				migrations.GET("", s.listMigrationsHandler)
				migrations.GET("/pending", s.pendingMigrationsHandler)
				migrations.POST("/:mode", s.runMigrationsHandler)
			}

			protected.POST("/seed", s.seedHandler)
		}

		// MCP protocol endpoint
		protected.POST("/mcp", s.HandleMCP)
	}
}

func (s *Server) Start(port int) error {
	addr := fmt.Sprintf(":%d", port)
	s.httpServer = &http.Server{
		Addr:           addr,
		Handler:        s.router,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   60 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	s.logger.Info().Str("address", addr).Msg("Starting HTTP server")
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

func LoggerMiddleware(logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)
		clientIP := c.ClientIP()
		method := c.Request.Method
		statusCode := c.Writer.Status()
		errorMessage := c.Errors.ByType(gin.ErrorTypePrivate).String()

		if raw != "" {
			path = path + "?" + raw
		}

		logger.Info().
			Str("client_ip", clientIP).
			Str("method", method).
			Str("path", path).
			Int("status", statusCode).
			Dur("latency", latency).
			Str("error", errorMessage).
			Msg("HTTP request")
	}
}

// @title Ironforge Admin API
// @version 1.0
// @description Admin API for running schema migrations and seeding example data

// @contact.name API Support
// @contact.email support@example.com

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8082
// @BasePath /api/v1

// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-API-Key

// healthHandler godoc
// @Summary Health check
// @Description Check if the service and its database are healthy
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 503 {object} map[string]interface{}
// @Router /health [get]
func (s *Server) healthHandler(c *gin.Context) {
	ctx := c.Request.Context()

	dbHealthy := true
	var dbError string
	if err := s.db.Health(ctx); err != nil {
		dbHealthy = false
		dbError = err.Error()
	}

	status := "healthy"
	if !dbHealthy {
		status = "unhealthy"
	}

	response := gin.H{
		"status":    status,
		"timestamp": time.Now().UTC(),
		"database": gin.H{
			"driver":  s.db.Dialect(),
			"healthy": dbHealthy,
			"error":   dbError,
		},
	}

	if !dbHealthy {
		c.JSON(http.StatusServiceUnavailable, response)
		return
	}

	c.JSON(http.StatusOK, response)
}
