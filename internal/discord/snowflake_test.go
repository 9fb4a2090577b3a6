package discord

import (
	"testing"
	"time"
)

func TestParseSnowflake(t *testing.T) {
	cases := []struct {
		in      string
		want    uint64
		wantErr bool
	}{
		{"175928847299117063", 175928847299117063, false},
		{"1", 1, false},
		{"", 0, true},
		{"abc", 0, true},
		{"12a4", 0, true},
		{"0", 0, true},
		{"-5", 0, true},
	}

	for _, tc := range cases {
		got, err := ParseSnowflake(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Errorf("ParseSnowflake(%q): expected error, got %d", tc.in, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseSnowflake(%q): unexpected error: %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseSnowflake(%q): expected %d, got %d", tc.in, tc.want, got)
		}
	}
}

func TestSnowflakeTime_KnownID(t *testing.T) {
	got, err := SnowflakeTime("175928847299117063")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := time.Date(2016, time.April, 30, 11, 18, 25, int(796*time.Millisecond), time.UTC)
	if !got.Equal(want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestSnowflakeTime_EpochBoundary(t *testing.T) {
	// 1<<22 carrega timestamp 1: um milissegundo depois da epoch da plataforma
	got, err := SnowflakeTime("4194304")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := time.UnixMilli(discordEpochMs + 1).UTC()
	if !got.Equal(want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestSnowflakeTime_InvalidID(t *testing.T) {
	if _, err := SnowflakeTime("not-a-number"); err == nil {
		t.Error("expected error for non-numeric id")
	}
}
