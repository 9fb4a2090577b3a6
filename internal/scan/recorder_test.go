package scan

import (
	"context"
	"fmt"
	"testing"

	"badge-radar/internal/models"
)

func TestRecorder_RecentNewestFirst(t *testing.T) {
	r := NewRecorder(testLogger(), nil, nil, nil)

	for i := 0; i < 3; i++ {
		p := &models.CanonicalProfile{UserID: fmt.Sprintf("%d", i), Username: "ab"}
		r.RecordMatch(context.Background(), "guild", p, []string{"rare username (2 chars)"})
	}

	recent := r.Recent(10)
	if len(recent) != 3 {
		t.Fatalf("expected 3 matches, got %d", len(recent))
	}
	if recent[0].UserID != "2" || recent[2].UserID != "0" {
		t.Errorf("expected newest first, got %+v", recent)
	}
	if recent[0].GuildID != "guild" {
		t.Errorf("expected guild id, got %q", recent[0].GuildID)
	}
}

func TestRecorder_RingCapped(t *testing.T) {
	r := NewRecorder(testLogger(), nil, nil, nil)

	for i := 0; i < recentCap+10; i++ {
		p := &models.CanonicalProfile{UserID: fmt.Sprintf("%d", i), Username: "ab"}
		r.RecordMatch(context.Background(), "guild", p, nil)
	}

	recent := r.Recent(0)
	if len(recent) != recentCap {
		t.Fatalf("expected %d matches, got %d", recentCap, len(recent))
	}
	if recent[0].UserID != fmt.Sprintf("%d", recentCap+9) {
		t.Errorf("expected newest kept, got %s", recent[0].UserID)
	}
}

func TestRecorder_RecentLimit(t *testing.T) {
	r := NewRecorder(testLogger(), nil, nil, nil)

	for i := 0; i < 5; i++ {
		p := &models.CanonicalProfile{UserID: fmt.Sprintf("%d", i), Username: "ab"}
		r.RecordMatch(context.Background(), "guild", p, nil)
	}

	if got := r.Recent(2); len(got) != 2 {
		t.Errorf("expected 2 matches, got %d", len(got))
	}
}
