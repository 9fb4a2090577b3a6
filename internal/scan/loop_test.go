package scan

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"reflect"
	"testing"
	"time"

	"badge-radar/internal/checkpoint"
	"badge-radar/internal/discord"
	"badge-radar/internal/models"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeProfiles devolve respostas roteirizadas por ID, na ordem das chamadas.
type fakeProfiles struct {
	responses map[string][]fetchResult
	calls     []string
}

type fetchResult struct {
	profile *models.RawProfile
	err     error
}

func (f *fakeProfiles) Fetch(ctx context.Context, userID string) (*models.RawProfile, error) {
	f.calls = append(f.calls, userID)
	queue := f.responses[userID]
	if len(queue) == 0 {
		return nil, errors.New("no scripted response")
	}
	result := queue[0]
	f.responses[userID] = queue[1:]
	return result.profile, result.err
}

type fakeFlags struct{}

func (fakeFlags) Flags(ctx context.Context, userID string) []string { return nil }

type fakeNotifier struct {
	sent []string
	err  error
}

func (f *fakeNotifier) Send(ctx context.Context, p *models.CanonicalProfile, invite discord.ServerInvite) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, p.UserID)
	return nil
}

type fakeRecorder struct {
	recorded []string
}

func (f *fakeRecorder) RecordMatch(ctx context.Context, guildID string, p *models.CanonicalProfile, reasons []string) {
	f.recorded = append(f.recorded, p.UserID)
}

func rareProfile(id string) *models.RawProfile {
	return &models.RawProfile{User: models.RawUser{ID: id, Username: "ab"}}
}

func plainProfile(id string) *models.RawProfile {
	return &models.RawProfile{User: models.RawUser{ID: id, Username: "longname"}}
}

func ok(p *models.RawProfile) fetchResult { return fetchResult{profile: p} }
func fail(err error) fetchResult          { return fetchResult{err: err} }

func newProcessedLog(t *testing.T) *checkpoint.ProcessedLog {
	t.Helper()
	store, err := checkpoint.NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	log, err := store.OpenProcessedLog()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	t.Cleanup(func() { log.Close() })
	return log
}

func testOptions() Options {
	return Options{
		Delay:           time.Millisecond,
		ExtraDelayEvery: 10000,
		ExtraDelay:      time.Millisecond,
	}
}

func newTestScanner(t *testing.T, profiles *fakeProfiles, notifier *fakeNotifier, log *checkpoint.ProcessedLog, opts Options) *Scanner {
	t.Helper()
	if log == nil {
		log = newProcessedLog(t)
	}
	return NewScanner(testLogger(), profiles, fakeFlags{}, notifier, nil, log, discord.ServerInvite{}, opts)
}

func TestScanner_ProcessedIDSkippedWithoutFetch(t *testing.T) {
	log := newProcessedLog(t)
	if err := log.Append("100"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	profiles := &fakeProfiles{responses: map[string][]fetchResult{
		"200": {ok(plainProfile("200"))},
	}}
	notifier := &fakeNotifier{}
	s := newTestScanner(t, profiles, notifier, log, testOptions())

	progress, err := s.Run(context.Background(), "guild", []string{"100", "200"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !reflect.DeepEqual(profiles.calls, []string{"200"}) {
		t.Errorf("expected fetch only for 200, got %v", profiles.calls)
	}
	if progress.Skipped != 1 || progress.Scanned != 1 {
		t.Errorf("unexpected progress: %+v", progress)
	}
}

func TestScanner_RateLimitRetriesSameID(t *testing.T) {
	profiles := &fakeProfiles{responses: map[string][]fetchResult{
		"100": {
			fail(&discord.RateLimitError{RetryAfter: time.Millisecond}),
			ok(rareProfile("100")),
		},
	}}
	notifier := &fakeNotifier{}
	s := newTestScanner(t, profiles, notifier, nil, testOptions())

	progress, err := s.Run(context.Background(), "guild", []string{"100"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !reflect.DeepEqual(profiles.calls, []string{"100", "100"}) {
		t.Errorf("expected retry on same id, got %v", profiles.calls)
	}
	if progress.RateLimitHits != 1 {
		t.Errorf("expected 1 rate limit hit, got %d", progress.RateLimitHits)
	}
	if !reflect.DeepEqual(notifier.sent, []string{"100"}) {
		t.Errorf("expected notification after retry, got %v", notifier.sent)
	}
}

func TestScanner_RateLimitRetriesBounded(t *testing.T) {
	profiles := &fakeProfiles{responses: map[string][]fetchResult{
		"100": {
			fail(&discord.RateLimitError{RetryAfter: time.Millisecond}),
			fail(&discord.RateLimitError{RetryAfter: time.Millisecond}),
		},
		"200": {ok(rareProfile("200"))},
	}}
	notifier := &fakeNotifier{}
	opts := testOptions()
	opts.RateLimitMaxRetries = 1
	s := newTestScanner(t, profiles, notifier, nil, opts)

	progress, err := s.Run(context.Background(), "guild", []string{"100", "200"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// 100 estoura o teto e o cursor avança pro 200
	if progress.Failed != 1 {
		t.Errorf("expected 1 failed, got %d", progress.Failed)
	}
	if !reflect.DeepEqual(notifier.sent, []string{"200"}) {
		t.Errorf("expected 200 notified, got %v", notifier.sent)
	}
}

func TestScanner_UnauthorizedAbortsRun(t *testing.T) {
	profiles := &fakeProfiles{responses: map[string][]fetchResult{
		"100": {fail(discord.ErrUnauthorized)},
	}}
	notifier := &fakeNotifier{}
	s := newTestScanner(t, profiles, notifier, nil, testOptions())

	progress, err := s.Run(context.Background(), "guild", []string{"100", "200"})
	if !errors.Is(err, discord.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if progress.State != "aborted" {
		t.Errorf("expected aborted state, got %s", progress.State)
	}
	if !reflect.DeepEqual(profiles.calls, []string{"100"}) {
		t.Errorf("expected run to stop at first id, got %v", profiles.calls)
	}
}

func TestScanner_NotFoundCountsAsSkip(t *testing.T) {
	profiles := &fakeProfiles{responses: map[string][]fetchResult{
		"100": {fail(discord.ErrNotFound)},
	}}
	notifier := &fakeNotifier{}
	s := newTestScanner(t, profiles, notifier, nil, testOptions())

	progress, err := s.Run(context.Background(), "guild", []string{"100"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if progress.Skipped != 1 || progress.Failed != 0 {
		t.Errorf("unexpected progress: %+v", progress)
	}
}

func TestScanner_ProcessedMeansNotified(t *testing.T) {
	log := newProcessedLog(t)
	profiles := &fakeProfiles{responses: map[string][]fetchResult{
		"100": {ok(plainProfile("100"))},
		"200": {ok(rareProfile("200"))},
	}}
	notifier := &fakeNotifier{}
	s := newTestScanner(t, profiles, notifier, log, testOptions())

	if _, err := s.Run(context.Background(), "guild", []string{"100", "200"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// só o membro notificado entra no checkpoint; o comum será re-visto
	if log.Contains("100") {
		t.Error("non-notified member must not enter the processed log")
	}
	if !log.Contains("200") {
		t.Error("notified member must enter the processed log")
	}
}

func TestScanner_NotificationFailureLeavesIDUnprocessed(t *testing.T) {
	log := newProcessedLog(t)
	profiles := &fakeProfiles{responses: map[string][]fetchResult{
		"100": {ok(rareProfile("100"))},
	}}
	notifier := &fakeNotifier{err: errors.New("webhook down")}
	s := newTestScanner(t, profiles, notifier, log, testOptions())

	progress, err := s.Run(context.Background(), "guild", []string{"100"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if progress.Failed != 1 || progress.Notified != 0 {
		t.Errorf("unexpected progress: %+v", progress)
	}
	if log.Contains("100") {
		t.Error("id must stay unprocessed after failed notification")
	}
}

func TestScanner_NotificationOrderFollowsInput(t *testing.T) {
	profiles := &fakeProfiles{responses: map[string][]fetchResult{
		"300": {ok(rareProfile("300"))},
		"100": {ok(rareProfile("100"))},
		"200": {ok(plainProfile("200"))},
	}}
	notifier := &fakeNotifier{}
	s := newTestScanner(t, profiles, notifier, nil, testOptions())

	if _, err := s.Run(context.Background(), "guild", []string{"300", "200", "100"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"300", "100"}
	if !reflect.DeepEqual(notifier.sent, want) {
		t.Errorf("expected notifications in input order %v, got %v", want, notifier.sent)
	}
}

func TestScanner_RecorderReceivesMatches(t *testing.T) {
	profiles := &fakeProfiles{responses: map[string][]fetchResult{
		"100": {ok(rareProfile("100"))},
	}}
	notifier := &fakeNotifier{}
	recorder := &fakeRecorder{}
	s := NewScanner(testLogger(), profiles, fakeFlags{}, notifier, recorder, newProcessedLog(t), discord.ServerInvite{}, testOptions())

	if _, err := s.Run(context.Background(), "guild", []string{"100"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(recorder.recorded, []string{"100"}) {
		t.Errorf("expected recorder call for 100, got %v", recorder.recorded)
	}
}

func TestScanner_CancelledContextStopsRun(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	profiles := &fakeProfiles{responses: map[string][]fetchResult{}}
	s := newTestScanner(t, profiles, &fakeNotifier{}, nil, testOptions())

	progress, err := s.Run(ctx, "guild", []string{"100"})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if progress.State != "cancelled" {
		t.Errorf("expected cancelled state, got %s", progress.State)
	}
	if len(profiles.calls) != 0 {
		t.Errorf("expected no fetches, got %v", profiles.calls)
	}
}
