package discord

import (
	"context"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
)

func TestFlagNames(t *testing.T) {
	cases := []struct {
		flags uint64
		want  []string
	}{
		{0, nil},
		{1 << 0, []string{"Staff"}},
		{1<<6 | 1<<22, []string{"HypeSquadOnlineHouse1", "ActiveDeveloper"}},
		{1<<1 | 1<<9 | 1<<14, []string{"Partner", "PremiumEarlySupporter", "BugHunterLevel2"}},
	}

	for _, tc := range cases {
		got := FlagNames(tc.flags)
		if !reflect.DeepEqual(got, tc.want) {
			t.Errorf("FlagNames(%d): expected %v, got %v", tc.flags, tc.want, got)
		}
	}
}

func testFlagSource(serverURL string) *FlagSource {
	fs := NewFlagSource(testLogger(), http.DefaultClient, "test-token")
	fs.baseURL = serverURL
	return fs
}

func TestFlagSource_DecodesPublicFlags(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/users/123" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"id": "123", "public_flags": 4194368}`))
	}))
	defer srv.Close()

	// 1<<6 | 1<<22
	got := testFlagSource(srv.URL).Flags(context.Background(), "123")
	want := []string{"HypeSquadOnlineHouse1", "ActiveDeveloper"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestFlagSource_FailureDegradesToEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	if got := testFlagSource(srv.URL).Flags(context.Background(), "123"); got != nil {
		t.Errorf("expected nil on failure, got %v", got)
	}
}

func TestFlagSource_OpenBreakerSkipsLookup(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	fs := testFlagSource(srv.URL)
	fs.breaker = NewCircuitBreakerWithConfig(1, 0, 1)
	fs.breaker.RecordFailure() // abre o circuito

	got := fs.Flags(context.Background(), "123")
	if got != nil {
		t.Errorf("expected nil with open breaker, got %v", got)
	}
	if calls != 0 {
		t.Errorf("expected no HTTP calls with open breaker, got %d", calls)
	}
}
