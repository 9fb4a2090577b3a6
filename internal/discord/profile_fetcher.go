package discord

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"badge-radar/internal/models"
)

const (
	apiBase          = "https://discord.com/api/v10"
	defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) discord/1.0.9032 Chrome/120.0.6099.291 Electron/28.2.10 Safari/537.36"

	// fallback quando o 429 vem sem Retry-After
	defaultRetryAfter = 5 * time.Second
)

// RateLimitError sinaliza HTTP 429 com a espera aconselhada pelo servidor.
// O scan loop trata esse erro com retry-in-place, sem avançar o cursor.
type RateLimitError struct {
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate_limited: retry after %s", e.RetryAfter)
}

// ErrUnauthorized indica credencial inválida. Fatal: aborta o scan inteiro.
var ErrUnauthorized = errors.New("token_unauthorized")

// ErrNotFound indica profile inexistente; o scan trata como skip.
var ErrNotFound = errors.New("profile_not_found")

// ProfileFetcher busca o payload completo de profile de um membro.
type ProfileFetcher struct {
	token      string
	httpClient *http.Client
	logger     *slog.Logger
	baseURL    string
}

func NewProfileFetcher(logger *slog.Logger, httpClient *http.Client, token string) *ProfileFetcher {
	return &ProfileFetcher{
		token:      token,
		httpClient: httpClient,
		logger:     logger,
		baseURL:    apiBase,
	}
}

// Fetch faz GET no endpoint de profile do membro. 429 vira *RateLimitError,
// 401/403 vira ErrUnauthorized, 404 vira ErrNotFound; o resto é falha de
// transporte comum.
func (pf *ProfileFetcher) Fetch(ctx context.Context, userID string) (*models.RawProfile, error) {
	url := fmt.Sprintf("%s/users/%s/profile", pf.baseURL, userID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed_to_create_request: %w", err)
	}

	req.Header.Set("Authorization", pf.token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", defaultUserAgent)

	resp, err := pf.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request_failed: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		// segue

	case http.StatusTooManyRequests:
		retryAfter := defaultRetryAfter
		if ra := resp.Header.Get("Retry-After"); ra != "" {
			if secs, parseErr := strconv.ParseFloat(ra, 64); parseErr == nil && secs > 0 {
				retryAfter = time.Duration(secs * float64(time.Second))
			}
		}
		pf.logger.Warn("rate_limited", "user_id", userID, "retry_after", retryAfter)
		return nil, &RateLimitError{RetryAfter: retryAfter}

	case http.StatusUnauthorized, http.StatusForbidden:
		return nil, ErrUnauthorized

	case http.StatusNotFound:
		return nil, ErrNotFound

	default:
		bodyBytes, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("profile_api_error: status=%d body=%s", resp.StatusCode, string(bodyBytes))
	}

	var profile models.RawProfile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return nil, fmt.Errorf("failed_to_decode_response: %w", err)
	}

	pf.logger.Debug("profile_fetched",
		"user_id", userID,
		"username", profile.User.Username,
		"badges", len(profile.Badges),
	)

	return &profile, nil
}

// CheckToken valida a credencial antes do scan começar (GET /users/@me).
func (pf *ProfileFetcher) CheckToken(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pf.baseURL+"/users/@me", nil)
	if err != nil {
		return fmt.Errorf("failed_to_create_request: %w", err)
	}

	req.Header.Set("Authorization", pf.token)
	req.Header.Set("User-Agent", defaultUserAgent)

	resp, err := pf.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request_failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return ErrUnauthorized
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("auth_check_failed: status=%d", resp.StatusCode)
	}
	return nil
}
