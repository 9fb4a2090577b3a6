package db

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"badge-radar/internal/models"
)

// Match é uma linha do arquivo de matches: o perfil canônico no momento em
// que a notificação foi enviada, mais os motivos.
type Match struct {
	UserID     string    `json:"user_id"`
	Username   string    `json:"username"`
	GlobalName string    `json:"global_name"`
	GuildID    string    `json:"guild_id"`
	Badges     []string  `json:"badges"`
	Reasons    []string  `json:"reasons"`
	AvatarURL  string    `json:"avatar_url,omitempty"`
	NotifiedAt time.Time `json:"notified_at"`
}

// EnsureSchema cria a tabela de matches se ainda não existir.
func (d *DB) EnsureSchema(ctx context.Context) error {
	_, err := d.Pool.Exec(ctx,
		`CREATE TABLE IF NOT EXISTS matches (
			user_id TEXT NOT NULL,
			guild_id TEXT NOT NULL,
			username TEXT,
			global_name TEXT,
			badges JSONB,
			reasons JSONB,
			profile JSONB,
			avatar_url TEXT,
			notified_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			PRIMARY KEY (user_id, guild_id)
		)`,
	)
	if err != nil {
		return fmt.Errorf("failed_to_ensure_schema: %w", err)
	}
	return nil
}

// SaveMatch grava (ou atualiza) o match de um membro para uma guild.
func (d *DB) SaveMatch(ctx context.Context, guildID string, p *models.CanonicalProfile, reasons []string, avatarURL string) error {
	badgesJSON, _ := json.Marshal(p.Badges)
	reasonsJSON, _ := json.Marshal(reasons)
	profileJSON, _ := json.Marshal(p)

	_, err := d.Pool.Exec(ctx,
		`INSERT INTO matches (user_id, guild_id, username, global_name, badges, reasons, profile, avatar_url, notified_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
		 ON CONFLICT (user_id, guild_id) DO UPDATE SET
			username = EXCLUDED.username,
			global_name = EXCLUDED.global_name,
			badges = EXCLUDED.badges,
			reasons = EXCLUDED.reasons,
			profile = EXCLUDED.profile,
			avatar_url = COALESCE(NULLIF(EXCLUDED.avatar_url, ''), matches.avatar_url),
			notified_at = NOW()`,
		p.UserID, guildID, p.Username, p.GlobalName, badgesJSON, reasonsJSON, profileJSON, avatarURL,
	)
	if err != nil {
		return fmt.Errorf("failed_to_save_match: %w", err)
	}
	return nil
}

// RecentMatches lista os matches mais recentes para a API de status.
func (d *DB) RecentMatches(ctx context.Context, limit int) ([]Match, error) {
	if limit <= 0 || limit > 100 {
		limit = 25
	}

	rows, err := d.Pool.Query(ctx,
		`SELECT user_id, guild_id, username, COALESCE(global_name, ''), badges, reasons, COALESCE(avatar_url, ''), notified_at
		 FROM matches
		 ORDER BY notified_at DESC
		 LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed_to_query_matches: %w", err)
	}
	defer rows.Close()

	var matches []Match
	for rows.Next() {
		var m Match
		var badgesJSON, reasonsJSON []byte
		if err := rows.Scan(&m.UserID, &m.GuildID, &m.Username, &m.GlobalName, &badgesJSON, &reasonsJSON, &m.AvatarURL, &m.NotifiedAt); err != nil {
			continue
		}
		_ = json.Unmarshal(badgesJSON, &m.Badges)
		_ = json.Unmarshal(reasonsJSON, &m.Reasons)
		matches = append(matches, m)
	}
	return matches, rows.Err()
}
