package discord

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
)

// ServerInvite é o contexto de origem anexado às notificações.
// URL vazio significa "sem convite disponível".
type ServerInvite struct {
	GuildID   string
	GuildName string
	URL       string
}

// InviteSource tenta obter um convite permanente para a guild de origem:
// primeiro criando um convite num canal de texto, senão caindo na vanity URL.
// Tudo aqui é best-effort; sem convite não é erro.
type InviteSource struct {
	token      string
	httpClient *http.Client
	logger     *slog.Logger
}

func NewInviteSource(logger *slog.Logger, httpClient *http.Client, token string) *InviteSource {
	return &InviteSource{
		token:      token,
		httpClient: httpClient,
		logger:     logger,
	}
}

// Resolve monta o ServerInvite para a guild. Tenta criar convite nos
// primeiros canais de texto; qualquer recusa (sem permissão, etc.) é
// silenciosa e o próximo canal é tentado.
func (is *InviteSource) Resolve(ctx context.Context, guild GuildMeta) ServerInvite {
	invite := ServerInvite{GuildID: guild.ID, GuildName: guild.Name}

	tried := 0
	for _, ch := range guild.Channels {
		if ch.Type != 0 {
			continue
		}
		if tried >= 3 {
			break
		}
		tried++

		code, err := is.createInvite(ctx, ch.ID)
		if err != nil {
			is.logger.Debug("invite_create_failed", "guild_id", guild.ID, "channel_id", ch.ID, "error", err)
			continue
		}
		invite.URL = "https://discord.gg/" + code
		return invite
	}

	if guild.VanityURLCode != "" {
		invite.URL = "https://discord.gg/" + guild.VanityURLCode
	}
	return invite
}

func (is *InviteSource) createInvite(ctx context.Context, channelID string) (string, error) {
	url := fmt.Sprintf("%s/channels/%s/invites", apiBase, channelID)
	body := strings.NewReader(`{"max_age":0,"max_uses":0}`)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return "", fmt.Errorf("failed_to_create_request: %w", err)
	}
	req.Header.Set("Authorization", is.token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", defaultUserAgent)

	resp, err := is.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("request_failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("invite_api_error: status=%d", resp.StatusCode)
	}

	var out struct {
		Code string `json:"code"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("failed_to_decode_response: %w", err)
	}
	if out.Code == "" {
		return "", fmt.Errorf("empty_invite_code")
	}
	return out.Code, nil
}
