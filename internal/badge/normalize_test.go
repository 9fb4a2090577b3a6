package badge

import (
	"reflect"
	"testing"
	"time"

	"badge-radar/internal/models"
)

func TestNormalize_MergesFlagsAndPayload(t *testing.T) {
	entries := []models.BadgeEntry{
		{ID: "hypesquad_balance"},
		{ID: "quest_completed"},
	}

	got := Normalize(nil, entries, 0, nil)
	want := []string{"HypeSquadOnlineHouse1", "Quest"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestNormalize_DeduplicatesAcrossSources(t *testing.T) {
	flags := []string{"HypeSquadOnlineHouse1", "ActiveDeveloper"}
	entries := []models.BadgeEntry{
		{ID: "hypesquad_balance"},
		{ID: "active_developer"},
	}

	got := Normalize(flags, entries, 0, nil)
	want := []string{"HypeSquadOnlineHouse1", "ActiveDeveloper"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestNormalize_UnmappedCodePassesThrough(t *testing.T) {
	entries := []models.BadgeEntry{{ID: "some_future_badge"}}

	got := Normalize(nil, entries, 0, nil)
	want := []string{"some_future_badge"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestNormalize_MalformedEntryDropped(t *testing.T) {
	entries := []models.BadgeEntry{
		{ID: ""},
		{ID: "staff"},
	}

	got := Normalize(nil, entries, 0, nil)
	want := []string{"Staff"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestNormalize_TenureSupersedesNitro(t *testing.T) {
	entries := []models.BadgeEntry{
		{ID: "premium_tenure_12_month_v2"},
	}

	// premiumType ativo, mas o tenure específico elimina o Nitro genérico
	got := Normalize([]string{"Nitro"}, entries, 2, nil)
	for _, b := range got {
		if b == "Nitro" {
			t.Errorf("expected generic Nitro to be removed, got %v", got)
		}
	}
	if got[0] != "premium_tenure_12_month_v2" {
		t.Errorf("expected tenure badge first, got %v", got)
	}
}

func TestNormalize_PremiumTypeAddsNitro(t *testing.T) {
	got := Normalize(nil, nil, 2, nil)
	want := []string{"Nitro"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}

	if got := Normalize(nil, nil, 0, nil); len(got) != 0 {
		t.Errorf("expected no badges without premium, got %v", got)
	}
}

func TestNormalize_BoostLevelAppended(t *testing.T) {
	start := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	boost := &models.BoostInfo{Level: "BoostLevel4", Date: start}

	got := Normalize([]string{"Staff"}, nil, 0, boost)
	want := []string{"BoostLevel4", "Staff"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestNormalize_GuildBoosterRewrite(t *testing.T) {
	entries := []models.BadgeEntry{{ID: "guild_booster_lvl7"}}

	got := Normalize(nil, entries, 0, nil)
	want := []string{"BoostLevel7"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	entries := []models.BadgeEntry{
		{ID: "hypesquad_bravery"},
		{ID: "premium_tenure_24_month_v2"},
	}

	first := Normalize([]string{"ActiveDeveloper"}, entries, 2, nil)

	// rodar a saída de volta como flags tem que ser estável
	second := Normalize(first, nil, 2, nil)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("expected idempotent output, got %v then %v", first, second)
	}
}

func TestSortCanonical_PriorityAndStability(t *testing.T) {
	badges := []string{"zzz_unknown", "Quest", "aaa_unknown", "Staff", "Nitro"}
	SortCanonical(badges)

	want := []string{"Nitro", "Staff", "Quest", "zzz_unknown", "aaa_unknown"}
	if !reflect.DeepEqual(badges, want) {
		t.Errorf("expected %v, got %v", want, badges)
	}
}

func TestHasTenureBadge(t *testing.T) {
	if !HasTenureBadge([]string{"Staff", "premium_tenure_6_month_v2"}) {
		t.Error("expected tenure badge to be detected")
	}
	if HasTenureBadge([]string{"Staff", "Nitro"}) {
		t.Error("expected no tenure badge")
	}
}
