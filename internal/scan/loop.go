// Package scan implementa o loop sequencial de varredura: um membro por
// vez, fetch → montagem → classificação → notificação, com retomada
// idempotente via checkpoint e pacing configurável.
package scan

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"badge-radar/internal/badge"
	"badge-radar/internal/checkpoint"
	"badge-radar/internal/discord"
	"badge-radar/internal/models"
	"badge-radar/internal/profile"
)

// ProfileSource é o transporte de profile (implementado por discord.ProfileFetcher).
type ProfileSource interface {
	Fetch(ctx context.Context, userID string) (*models.RawProfile, error)
}

// FlagLister é o lookup secundário de flags (implementado por discord.FlagSource).
type FlagLister interface {
	Flags(ctx context.Context, userID string) []string
}

// Notifier entrega a notificação de um match (implementado por notify.WebhookSender).
type Notifier interface {
	Send(ctx context.Context, p *models.CanonicalProfile, invite discord.ServerInvite) error
}

// MatchRecorder arquiva matches (banco, avatar, espelho redis). Best-effort:
// falha aqui nunca derruba o scan.
type MatchRecorder interface {
	RecordMatch(ctx context.Context, guildID string, p *models.CanonicalProfile, reasons []string)
}

// Options controla o pacing e a política de retry do loop.
type Options struct {
	// espera entre itens
	Delay time.Duration
	// a cada ExtraDelayEvery itens entra ExtraDelay adicional (suavização
	// grosseira de rate limit)
	ExtraDelayEvery int
	ExtraDelay      time.Duration
	// 0 = retry sem teto em rate limit (comportamento herdado); >0 limita
	// e trata estouro como skip
	RateLimitMaxRetries int
}

func (o *Options) fill() {
	if o.Delay <= 0 {
		o.Delay = 10 * time.Second
	}
	if o.ExtraDelayEvery <= 0 {
		o.ExtraDelayEvery = 360
	}
	if o.ExtraDelay <= 0 {
		o.ExtraDelay = 5 * time.Second
	}
}

// Progress é o snapshot exposto pela API de status.
type Progress struct {
	GuildID       string    `json:"guild_id"`
	State         string    `json:"state"`
	Total         int       `json:"total"`
	Scanned       int       `json:"scanned"`
	Notified      int       `json:"notified"`
	Skipped       int       `json:"skipped"`
	Failed        int       `json:"failed"`
	RateLimitHits int       `json:"rate_limit_hits"`
	CurrentID     string    `json:"current_id,omitempty"`
	StartedAt     time.Time `json:"started_at"`
}

// Scanner executa uma varredura completa sobre a lista de membros.
type Scanner struct {
	profiles ProfileSource
	flags    FlagLister
	notifier Notifier
	recorder MatchRecorder
	log      *checkpoint.ProcessedLog
	invite   discord.ServerInvite
	logger   *slog.Logger
	opts     Options

	now func() time.Time

	mu       sync.RWMutex
	progress Progress
}

func NewScanner(logger *slog.Logger, profiles ProfileSource, flags FlagLister, notifier Notifier, recorder MatchRecorder, log *checkpoint.ProcessedLog, invite discord.ServerInvite, opts Options) *Scanner {
	opts.fill()
	return &Scanner{
		profiles: profiles,
		flags:    flags,
		notifier: notifier,
		recorder: recorder,
		log:      log,
		invite:   invite,
		logger:   logger,
		opts:     opts,
		now:      time.Now,
	}
}

// Progress devolve o snapshot atual do scan.
func (s *Scanner) Progress() Progress {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.progress
}

func (s *Scanner) setProgress(update func(*Progress)) {
	s.mu.Lock()
	update(&s.progress)
	s.mu.Unlock()
}

// Run varre a lista inteira, na ordem dada, pulando IDs já notificados.
// As notificações saem na mesma ordem da lista de entrada. O único erro
// fatal é credencial inválida; o resto degrada por item.
func (s *Scanner) Run(ctx context.Context, guildID string, memberIDs []string) (Progress, error) {
	s.setProgress(func(p *Progress) {
		*p = Progress{
			GuildID:   guildID,
			State:     "running",
			Total:     len(memberIDs),
			StartedAt: s.now(),
		}
	})

	limiter := rate.NewLimiter(rate.Every(s.opts.Delay), 1)
	// consome o primeiro token para o delay valer desde o primeiro item
	_ = limiter.Allow()

	iteration := 0
	for _, memberID := range memberIDs {
		if err := ctx.Err(); err != nil {
			s.setProgress(func(p *Progress) { p.State = "cancelled" })
			return s.Progress(), err
		}

		if memberID == "" {
			continue
		}

		if s.log.Contains(memberID) {
			// já notificado em um run anterior: nem fetch acontece
			s.setProgress(func(p *Progress) { p.Skipped++ })
			continue
		}

		iteration++
		s.setProgress(func(p *Progress) { p.CurrentID = memberID })

		if err := s.scanOne(ctx, guildID, memberID); err != nil {
			if errors.Is(err, discord.ErrUnauthorized) {
				s.setProgress(func(p *Progress) { p.State = "aborted" })
				return s.Progress(), fmt.Errorf("scan_aborted: %w", err)
			}
			if ctx.Err() != nil {
				s.setProgress(func(p *Progress) { p.State = "cancelled" })
				return s.Progress(), ctx.Err()
			}
			if errors.Is(err, discord.ErrNotFound) {
				s.logger.Debug("member_profile_not_found", "user_id", memberID)
				s.setProgress(func(p *Progress) { p.Skipped++ })
			} else {
				s.logger.Warn("member_scan_failed", "user_id", memberID, "error", err)
				s.setProgress(func(p *Progress) { p.Failed++ })
			}
		}

		s.setProgress(func(p *Progress) { p.Scanned++; p.CurrentID = "" })

		if err := limiter.Wait(ctx); err != nil {
			s.setProgress(func(p *Progress) { p.State = "cancelled" })
			return s.Progress(), err
		}
		if iteration%s.opts.ExtraDelayEvery == 0 {
			select {
			case <-ctx.Done():
				s.setProgress(func(p *Progress) { p.State = "cancelled" })
				return s.Progress(), ctx.Err()
			case <-time.After(s.opts.ExtraDelay):
			}
		}
	}

	s.setProgress(func(p *Progress) { p.State = "done" })
	final := s.Progress()

	s.logger.Info("scan_completed",
		"guild_id", guildID,
		"scanned", final.Scanned,
		"notified", final.Notified,
		"skipped", final.Skipped,
		"failed", final.Failed,
	)

	return final, nil
}

// scanOne processa um membro: fetch (com retry-in-place em rate limit),
// montagem, classificação e, se raro, notificação + checkpoint.
func (s *Scanner) scanOne(ctx context.Context, guildID, memberID string) error {
	raw, err := s.fetchWithRetry(ctx, memberID)
	if err != nil {
		return err
	}

	flags := s.flags.Flags(ctx, memberID)
	canonical := profile.Assemble(raw, flags, s.now())

	if !badge.ShouldNotify(canonical) {
		// sem match: NÃO entra no processed log; será re-visto em runs
		// futuros
		s.logger.Debug("member_not_rare", "user_id", memberID, "username", canonical.Username)
		return nil
	}

	reasons := badge.Reasons(canonical)
	s.logger.Info("rare_member_found",
		"user_id", memberID,
		"username", canonical.Username,
		"badges", canonical.Badges,
		"reasons", reasons,
	)

	if err := s.notifier.Send(ctx, canonical, s.invite); err != nil {
		return fmt.Errorf("notification_failed: %w", err)
	}

	if s.recorder != nil {
		s.recorder.RecordMatch(ctx, guildID, canonical, reasons)
	}

	if err := s.log.Append(memberID); err != nil {
		// a notificação já saiu; registrar a falha mas não derrubar o run
		s.logger.Error("processed_log_append_failed", "user_id", memberID, "error", err)
	}

	s.setProgress(func(p *Progress) { p.Notified++ })
	return nil
}

// fetchWithRetry implementa o retry-in-place de rate limit: dorme o
// Retry-After do servidor e tenta o MESMO ID de novo, sem avançar o cursor.
func (s *Scanner) fetchWithRetry(ctx context.Context, memberID string) (*models.RawProfile, error) {
	attempt := 0
	for {
		raw, err := s.profiles.Fetch(ctx, memberID)
		if err == nil {
			return raw, nil
		}

		var rle *discord.RateLimitError
		if !errors.As(err, &rle) {
			return nil, err
		}

		attempt++
		s.setProgress(func(p *Progress) { p.RateLimitHits++ })
		if s.opts.RateLimitMaxRetries > 0 && attempt > s.opts.RateLimitMaxRetries {
			return nil, fmt.Errorf("rate_limit_retries_exhausted: %w", err)
		}

		s.logger.Warn("rate_limited_waiting",
			"user_id", memberID,
			"retry_after", rle.RetryAfter,
			"attempt", attempt,
		)

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(rle.RetryAfter):
		}
	}
}
