package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"badge-radar/internal/db"
)

func (s *Server) health(c *gin.Context) {
	ctx, cancel := s.ctx(c)
	defer cancel()

	status := "healthy"

	dbStatus := "disabled"
	if s.db != nil {
		dbStatus = "connected"
		if err := s.db.Pool.Ping(ctx); err != nil {
			dbStatus = "disconnected"
			status = "unhealthy"
		}
	}

	redisStatus := "disabled"
	if s.redis != nil {
		redisStatus = "connected"
		if err := s.redis.RDB().Ping(ctx).Err(); err != nil {
			redisStatus = "disconnected"
			status = "unhealthy"
		}
	}

	progress := s.scanner.Progress()

	response := gin.H{
		"status":     status,
		"database":   dbStatus,
		"redis":      redisStatus,
		"scan_state": progress.State,
	}

	if status == "unhealthy" {
		c.JSON(http.StatusServiceUnavailable, response)
		return
	}

	c.JSON(http.StatusOK, response)
}

func (s *Server) status(c *gin.Context) {
	c.JSON(http.StatusOK, s.scanner.Progress())
}

func (s *Server) matches(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "25"))

	// sem banco, cair no ring em memória do processo
	if s.db == nil {
		var matches []db.Match
		if s.recorder != nil {
			matches = s.recorder.Recent(limit)
		}
		c.JSON(http.StatusOK, gin.H{"matches": matches, "count": len(matches), "source": "memory"})
		return
	}

	ctx, cancel := s.ctx(c)
	defer cancel()

	matches, err := s.db.RecentMatches(ctx, limit)
	if err != nil {
		s.log.Error("recent_matches_failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": gin.H{
				"code":    "query_failed",
				"message": "falha ao consultar matches",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"matches": matches, "count": len(matches), "source": "db"})
}
