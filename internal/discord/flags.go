package discord

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// userFlagBits mapeia os bits de public_flags para os nomes de flag no
// vocabulário do cliente. Ordem crescente de bit.
var userFlagBits = []struct {
	Bit  uint64
	Name string
}{
	{1 << 0, "Staff"},
	{1 << 1, "Partner"},
	{1 << 2, "Hypesquad"},
	{1 << 3, "BugHunterLevel1"},
	{1 << 6, "HypeSquadOnlineHouse1"},
	{1 << 7, "HypeSquadOnlineHouse2"},
	{1 << 8, "HypeSquadOnlineHouse3"},
	{1 << 9, "PremiumEarlySupporter"},
	{1 << 10, "TeamPseudoUser"},
	{1 << 14, "BugHunterLevel2"},
	{1 << 16, "VerifiedBot"},
	{1 << 17, "VerifiedDeveloper"},
	{1 << 18, "CertifiedModerator"},
	{1 << 19, "BotHTTPInteractions"},
	{1 << 22, "ActiveDeveloper"},
}

// FlagNames converte o bitfield de public_flags na lista de nomes de flag.
func FlagNames(flags uint64) []string {
	var names []string
	for _, f := range userFlagBits {
		if flags&f.Bit != 0 {
			names = append(names, f.Name)
		}
	}
	return names
}

// FlagSource é o lookup secundário de badges: busca o usuário no endpoint
// público e converte public_flags para nomes. Falha aqui nunca aborta o
// item do scan; degrada para lista vazia.
type FlagSource struct {
	token      string
	httpClient *http.Client
	logger     *slog.Logger
	retry      RetryConfig
	breaker    *CircuitBreaker
	baseURL    string
}

func NewFlagSource(logger *slog.Logger, httpClient *http.Client, token string) *FlagSource {
	return &FlagSource{
		token:      token,
		httpClient: httpClient,
		logger:     logger,
		retry:      DefaultRetryConfig(),
		breaker:    NewCircuitBreaker(),
		baseURL:    apiBase,
	}
}

// Flags busca os nomes de flag do membro. Qualquer falha retorna lista vazia.
func (fs *FlagSource) Flags(ctx context.Context, userID string) []string {
	if !fs.breaker.Allow() {
		fs.logger.Debug("flag_lookup_skipped", "user_id", userID, "breaker", fs.breaker.StateString())
		return nil
	}

	for attempt := 0; attempt <= fs.retry.MaxRetries; attempt++ {
		names, retryAfter, err := fs.fetchOnce(ctx, userID)
		if err == nil {
			fs.breaker.RecordSuccess()
			return names
		}
		if retryAfter <= 0 {
			fs.breaker.RecordFailure()
			fs.logger.Debug("flag_lookup_failed", "user_id", userID, "error", err)
			return nil
		}
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(CalculateBackoff(fs.retry, attempt, retryAfter)):
		}
	}

	fs.breaker.RecordFailure()
	fs.logger.Debug("flag_lookup_exhausted", "user_id", userID)
	return nil
}

func (fs *FlagSource) fetchOnce(ctx context.Context, userID string) ([]string, time.Duration, error) {
	url := fmt.Sprintf("%s/users/%s", fs.baseURL, userID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("failed_to_create_request: %w", err)
	}

	req.Header.Set("Authorization", fs.token)
	req.Header.Set("User-Agent", defaultUserAgent)

	resp, err := fs.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("request_failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		retryAfter := defaultRetryAfter
		if ra := resp.Header.Get("Retry-After"); ra != "" {
			if parsed, parseErr := time.ParseDuration(ra + "s"); parseErr == nil {
				retryAfter = parsed
			}
		}
		return nil, retryAfter, fmt.Errorf("flag_lookup_rate_limited")
	}

	if resp.StatusCode != http.StatusOK {
		return nil, 0, fmt.Errorf("flag_lookup_error: status=%d", resp.StatusCode)
	}

	var user struct {
		PublicFlags uint64 `json:"public_flags"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return nil, 0, fmt.Errorf("failed_to_decode_response: %w", err)
	}

	return FlagNames(user.PublicFlags), 0, nil
}
