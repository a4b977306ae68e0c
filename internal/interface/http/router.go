package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/swing-coach/internal/infra/config"
)

// NewRouter wires up the HTTP handlers and returns a configured server.
func NewRouter(cfg *config.Config, handler *Handler) *http.Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(
		gin.Recovery(),
		requestLogger(handler.logger),
		errorHandlingMiddleware(handler.logger),
		rateLimitMiddleware(cfg.HTTP.RateLimit, handler.logger),
		corsMiddleware(cfg.HTTP.AllowedOrigins),
	)

	api := router.Group("/api/v1")
	{
		if handler.authSvc != nil {
			authGroup := api.Group("/auth")
			authGroup.POST("/register", handler.Register)
			authGroup.POST("/login", handler.Login)
			authGroup.POST("/refresh", handler.Refresh)
			authGroup.GET("/profile", authMiddleware(handler.authSvc), handler.Profile)
		}

		coaching := api.Group("")
		if cfg.Auth.Enabled && handler.authSvc != nil {
			coaching.Use(authMiddleware(handler.authSvc))
		}
		coaching.POST("/coach/chat", handler.CoachChat)
		coaching.POST("/coach/chat/stream", handler.CoachChatStream)
		coaching.POST("/reports", handler.SynthesizeReport)
		coaching.GET("/reports/latest", handler.LatestReport)
		coaching.GET("/reports/:id", handler.GetReport)
		coaching.POST("/reports/qa", handler.AnswerReportQuestion)
		coaching.GET("/reports/questions/trending", handler.TrendingQuestions)
		coaching.POST("/transcriptions", handler.Transcribe)
	}

	return &http.Server{
		Addr:           cfg.HTTP.Address,
		Handler:        withRetry(router, cfg.HTTP.Retry, handler.logger),
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
