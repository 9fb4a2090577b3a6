package models

import (
	"encoding/json"
	"testing"
)

func TestBadgeEntry_UnmarshalBareString(t *testing.T) {
	var entry BadgeEntry
	if err := json.Unmarshal([]byte(`"staff"`), &entry); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if entry.ID != "staff" {
		t.Errorf("expected id %q, got %q", "staff", entry.ID)
	}
}

func TestBadgeEntry_UnmarshalObject(t *testing.T) {
	raw := `{"id":"hypesquad_balance","description":"HypeSquad Balance","icon":"abc123"}`

	var entry BadgeEntry
	if err := json.Unmarshal([]byte(raw), &entry); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if entry.ID != "hypesquad_balance" {
		t.Errorf("expected id %q, got %q", "hypesquad_balance", entry.ID)
	}
	if entry.Description != "HypeSquad Balance" {
		t.Errorf("expected description, got %q", entry.Description)
	}
	if entry.Icon != "abc123" {
		t.Errorf("expected icon, got %q", entry.Icon)
	}
}

func TestBadgeEntry_UnknownShapeDoesNotFailDecode(t *testing.T) {
	raw := `{"user":{"id":"123"},"badges":["staff", 42, {"id":"partner"}]}`

	var profile RawProfile
	if err := json.Unmarshal([]byte(raw), &profile); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(profile.Badges) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(profile.Badges))
	}
	if profile.Badges[0].ID != "staff" {
		t.Errorf("expected first id staff, got %q", profile.Badges[0].ID)
	}
	if profile.Badges[1].ID != "" {
		t.Errorf("expected malformed entry to have empty id, got %q", profile.Badges[1].ID)
	}
	if profile.Badges[2].ID != "partner" {
		t.Errorf("expected third id partner, got %q", profile.Badges[2].ID)
	}
}
