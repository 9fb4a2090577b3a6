package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"badge-radar/internal/db"
	"badge-radar/internal/redis"
	"badge-radar/internal/scan"
	"badge-radar/internal/security"
)

type Server struct {
	log      *slog.Logger
	scanner  *scan.Scanner
	recorder *scan.Recorder
	db       *db.DB
	redis    *redis.Client
	limiter  *security.LimiterStore
	router   *gin.Engine
}

// NewServer monta o router de status. db e redis podem ser nil quando o
// scanner roda sem persistência; matches caem no ring em memória do recorder.
func NewServer(log *slog.Logger, scanner *scan.Scanner, recorder *scan.Recorder, dbConn *db.DB, redisClient *redis.Client) *Server {
	s := &Server{
		log:      log,
		scanner:  scanner,
		recorder: recorder,
		db:       dbConn,
		redis:    redisClient,
		limiter:  security.NewLimiterStore(rate.Limit(1), 60, 10*time.Minute),
		router:   gin.New(),
	}

	gin.SetMode(gin.ReleaseMode)
	r := s.router
	r.Use(gin.Recovery())
	r.Use(s.loggingMiddleware())
	r.Use(s.rateLimitMiddleware())

	v1 := r.Group("/api/v1")
	{
		v1.GET("/health", s.health)
		v1.GET("/status", s.status)
		v1.GET("/matches", s.matches)
	}

	r.GET("/healthz", func(c *gin.Context) { c.JSON(200, gin.H{"ok": true}) })

	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) ctx(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), 10*time.Second)
}

func (s *Server) loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()
		clientIP := c.ClientIP()

		s.log.Info("http_request",
			"method", method,
			"path", path,
			"status", status,
			"latency_ms", latency.Milliseconds(),
			"client_ip", clientIP,
		)
	}
}

func (s *Server) rateLimitMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !s.limiter.Allow(c.ClientIP()) {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error": gin.H{
					"code":    "rate_limited",
					"message": "too many requests",
				},
			})
			c.Abort()
			return
		}
		c.Next()
	}
}
