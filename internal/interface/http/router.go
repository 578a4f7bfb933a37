package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"

	"github.com/yanqian/faqbot/internal/infra/config"
)

// NewRouter wires up the HTTP handlers and returns a configured server.
func NewRouter(cfg *config.Config, handler *Handler) *http.Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(
		gin.Recovery(),
		requestLogger(handler.logger),
		corsMiddleware(cfg.HTTP.AllowedOrigins),
	)
	// gzip wraps the writer, so it must sit outside the error envelope.
	if cfg.HTTP.Gzip {
		router.Use(gzip.Gzip(gzip.DefaultCompression))
	}
	router.Use(errorHandlingMiddleware(handler.logger))

	router.GET("/", handler.Welcome)
	router.GET("/healthz", handler.Health)
	router.POST("/send_message", rateLimitMiddleware(cfg.HTTP.RateLimit, handler.logger), handler.SendMessage)

	api := router.Group("/api/v1")
	{
		api.GET("/stats", handler.Stats)

		adminGroup := api.Group("/admin")
		adminGroup.POST("/login", rateLimitMiddleware(cfg.HTTP.RateLimit, handler.logger), handler.AdminLogin)

		protected := adminGroup.Group("")
		protected.Use(authMiddleware(handler.adminSvc))
		protected.POST("/catalog/reload", handler.ReloadCatalog)
		protected.POST("/cache/clear", handler.ClearCache)
	}

	return &http.Server{
		Addr:           cfg.HTTP.Address,
		Handler:        router,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		MaxHeaderBytes: 1 << 20,
	}
}

func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		logger.Info("http request", "method", c.Request.Method, "path", c.Request.URL.Path, "status", c.Writer.Status(), "latency_ms", latency.Milliseconds())
	}
}
