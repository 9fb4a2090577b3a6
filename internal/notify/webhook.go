package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"badge-radar/internal/badge"
	"badge-radar/internal/discord"
	"badge-radar/internal/models"
)

const embedColor = 0x2b2d31

// estruturas de payload do webhook
type webhookPayload struct {
	Embeds     []embed     `json:"embeds"`
	Components []actionRow `json:"components,omitempty"`
}

type embed struct {
	Author    *embedAuthor `json:"author,omitempty"`
	Thumbnail *embedMedia  `json:"thumbnail,omitempty"`
	Color     int          `json:"color"`
	Fields    []embedField `json:"fields,omitempty"`
}

type embedAuthor struct {
	Name    string `json:"name"`
	IconURL string `json:"icon_url,omitempty"`
}

type embedMedia struct {
	URL string `json:"url"`
}

type embedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

type actionRow struct {
	Type       int          `json:"type"` // 1 = action row
	Components []linkButton `json:"components"`
}

type linkButton struct {
	Type  int    `json:"type"`  // 2 = button
	Style int    `json:"style"` // 5 = link
	Label string `json:"label"`
	URL   string `json:"url"`
}

// WebhookSender entrega notificações de perfis raros num webhook.
type WebhookSender struct {
	url        string
	httpClient *http.Client
	logger     *slog.Logger
	retry      discord.RetryConfig
}

func NewWebhookSender(logger *slog.Logger, httpClient *http.Client, url string) *WebhookSender {
	return &WebhookSender{
		url:        url,
		httpClient: httpClient,
		logger:     logger,
		retry:      discord.DefaultRetryConfig(),
	}
}

// AvatarURL monta a URL de CDN do avatar; hashes "a_" são gif animado.
// Sem avatar, cai no default derivado do discriminator.
func AvatarURL(p *models.CanonicalProfile) string {
	if p.Avatar != "" {
		ext := "png"
		if strings.HasPrefix(p.Avatar, "a_") {
			ext = "gif"
		}
		return fmt.Sprintf("https://cdn.discordapp.com/avatars/%s/%s.%s?size=4096", p.UserID, p.Avatar, ext)
	}
	idx := 0
	if n, err := strconv.Atoi(p.Discriminator); err == nil {
		idx = n % 5
	}
	return fmt.Sprintf("https://cdn.discordapp.com/embed/avatars/%d.png", idx)
}

// displayBadges aplica as regras de exibição por cima da sequência canônica:
// marcador 2c/3c para username raro, regra Nitro x tenure, boost ativo,
// tudo reordenado no final.
func displayBadges(p *models.CanonicalProfile) []string {
	badges := make([]string, 0, len(p.Badges)+2)

	if badge.RareUsername(p.Username) {
		switch len(p.Username) {
		case 2:
			badges = append(badges, "2c")
		case 3:
			badges = append(badges, "3c")
		}
	}
	badges = append(badges, p.Badges...)

	hasTenure := badge.HasTenureBadge(badges)
	if hasTenure {
		filtered := badges[:0]
		for _, b := range badges {
			if b != "Nitro" {
				filtered = append(filtered, b)
			}
		}
		badges = filtered
	}
	if p.PremiumType != "" && !hasTenure && !contains(badges, "Nitro") {
		badges = append(badges, "Nitro")
	}
	if p.Boost != nil && p.Boost.Level != "" && !contains(badges, p.Boost.Level) {
		badges = append(badges, p.Boost.Level)
	}

	badge.SortCanonical(badges)
	return badges
}

func contains(list []string, name string) bool {
	for _, v := range list {
		if v == name {
			return true
		}
	}
	return false
}

func emojiLine(badges []string) string {
	var sb strings.Builder
	for _, b := range badges {
		sb.WriteString(Emoji(b))
	}
	if sb.Len() == 0 {
		return "None"
	}
	return sb.String()
}

func relativeTimestamp(t time.Time) string {
	return fmt.Sprintf("<t:%d:R>", t.Unix())
}

// BuildMessage monta o payload do webhook para um perfil raro.
func BuildMessage(p *models.CanonicalProfile, invite discord.ServerInvite) webhookPayload {
	globalName := p.GlobalName
	if globalName == "" {
		globalName = p.Username
	}
	avatarURL := AvatarURL(p)

	inviteValue := "*No Invite*"
	if invite.URL != "" {
		inviteValue = fmt.Sprintf("[%s](%s)\n[`%s`]", invite.GuildName, invite.URL, invite.GuildID)
	}

	creation := "N/A"
	if !p.CreatedAt.IsZero() {
		creation = relativeTimestamp(p.CreatedAt)
	}

	e := embed{
		Author: &embedAuthor{
			Name:    fmt.Sprintf("%s (@%s)", globalName, p.Username),
			IconURL: avatarURL,
		},
		Thumbnail: &embedMedia{URL: avatarURL},
		Color:     embedColor,
		Fields: []embedField{
			{Name: "Badges:", Value: emojiLine(displayBadges(p)), Inline: true},
			{Name: "Creation:", Value: creation, Inline: true},
			{Name: "From Server:", Value: inviteValue, Inline: false},
		},
	}

	if p.Boost != nil {
		currentEmoji := Emoji(p.Boost.Level)
		if currentEmoji == "" {
			currentEmoji = p.Boost.Level
		}
		e.Fields = append(e.Fields, embedField{
			Name:   "Boosting:",
			Value:  fmt.Sprintf("%s %s", currentEmoji, relativeTimestamp(p.Boost.Date)),
			Inline: true,
		})

		if p.Boost.Level != "BoostLevel9" && p.Boost.NextDate != nil {
			nextEmoji := Emoji(p.Boost.NextLevel)
			if nextEmoji == "" {
				nextEmoji = p.Boost.NextLevel
			}
			e.Fields = append(e.Fields, embedField{
				Name:   "Next Up:",
				Value:  fmt.Sprintf("%s %s", nextEmoji, relativeTimestamp(*p.Boost.NextDate)),
				Inline: true,
			})
		}
	}

	buttons := []linkButton{
		{Type: 2, Style: 5, Label: "Ver Perfil", URL: "https://discord.com/users/" + p.UserID},
	}
	if invite.URL != "" {
		buttons = append(buttons, linkButton{Type: 2, Style: 5, Label: "Servidor", URL: invite.URL})
	}

	return webhookPayload{
		Embeds:     []embed{e},
		Components: []actionRow{{Type: 1, Components: buttons}},
	}
}

// Send entrega a notificação, honrando 429 do webhook com backoff.
func (ws *WebhookSender) Send(ctx context.Context, p *models.CanonicalProfile, invite discord.ServerInvite) error {
	payload := BuildMessage(p, invite)
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed_to_marshal_webhook_payload: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt <= ws.retry.MaxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, ws.url, bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("failed_to_create_request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := ws.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("webhook_request_failed: %w", err)
			continue
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			retryAfter := time.Duration(0)
			if ra := resp.Header.Get("Retry-After"); ra != "" {
				if secs, parseErr := strconv.ParseFloat(ra, 64); parseErr == nil {
					retryAfter = time.Duration(secs * float64(time.Second))
				}
			}
			resp.Body.Close()
			ws.logger.Warn("webhook_rate_limited", "user_id", p.UserID, "retry_after", retryAfter, "attempt", attempt+1)

			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(discord.CalculateBackoff(ws.retry, attempt, retryAfter)):
			}
			lastErr = fmt.Errorf("webhook_rate_limited")
			continue
		}

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			resp.Body.Close()
			ws.logger.Info("notification_sent", "user_id", p.UserID, "username", p.Username)
			return nil
		}

		bodyBytes, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		return fmt.Errorf("webhook_error: status=%d body=%s", resp.StatusCode, string(bodyBytes))
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("webhook_send_exhausted")
	}
	return lastErr
}
