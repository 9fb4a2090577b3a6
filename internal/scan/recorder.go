package scan

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"badge-radar/internal/db"
	"badge-radar/internal/models"
	"badge-radar/internal/redis"
	"badge-radar/internal/storage"
)

// recentCap limita o ring de matches em memória servido pela API quando
// não há Postgres configurado.
const recentCap = 50

// Recorder arquiva matches nos backends opcionais: avatar no bucket,
// linha no Postgres, espelho no Redis. Qualquer campo pode ser nil;
// tudo é best-effort. Um ring em memória guarda os matches recentes
// para a API de status independente de backend.
type Recorder struct {
	logger  *slog.Logger
	db      *db.DB
	avatars storage.ArchiveClient
	mirror  *redis.Client

	mu     sync.RWMutex
	recent []db.Match
}

func NewRecorder(logger *slog.Logger, dbConn *db.DB, avatars storage.ArchiveClient, mirror *redis.Client) *Recorder {
	return &Recorder{
		logger:  logger,
		db:      dbConn,
		avatars: avatars,
		mirror:  mirror,
	}
}

// Recent devolve os matches deste processo, mais novos primeiro.
func (r *Recorder) Recent(limit int) []db.Match {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if limit <= 0 || limit > len(r.recent) {
		limit = len(r.recent)
	}
	out := make([]db.Match, 0, limit)
	for i := len(r.recent) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, r.recent[i])
	}
	return out
}

func (r *Recorder) remember(m db.Match) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.recent = append(r.recent, m)
	if len(r.recent) > recentCap {
		r.recent = r.recent[len(r.recent)-recentCap:]
	}
}

func (r *Recorder) RecordMatch(ctx context.Context, guildID string, p *models.CanonicalProfile, reasons []string) {
	avatarURL := ""
	if r.avatars != nil && p.Avatar != "" {
		url, err := r.avatars.ArchiveAvatar(p.UserID, p.Avatar)
		if err != nil {
			r.logger.Warn("avatar_archive_failed", "user_id", p.UserID, "error", err)
		} else {
			avatarURL = url
		}
	}

	if r.db != nil {
		if err := r.db.SaveMatch(ctx, guildID, p, reasons, avatarURL); err != nil {
			r.logger.Warn("match_save_failed", "user_id", p.UserID, "error", err)
		}
	}

	if r.mirror != nil {
		if err := r.mirror.MarkNotified(ctx, p.UserID); err != nil {
			r.logger.Debug("redis_mirror_failed", "user_id", p.UserID, "error", err)
		}
	}

	r.remember(db.Match{
		UserID:     p.UserID,
		Username:   p.Username,
		GlobalName: p.GlobalName,
		GuildID:    guildID,
		Badges:     p.Badges,
		Reasons:    reasons,
		AvatarURL:  avatarURL,
		NotifiedAt: time.Now(),
	})
}
