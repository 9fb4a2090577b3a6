package checkpoint

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestStore_MemberListRoundTrip(t *testing.T) {
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if store.HasMemberList("111") {
		t.Error("expected no member list before export")
	}

	ids := []string{"100", "200", "300"}
	if err := store.WriteMemberList("111", ids); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !store.HasMemberList("111") {
		t.Error("expected member list after export")
	}

	got, err := store.ReadMemberList("111")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(got, ids) {
		t.Errorf("expected %v, got %v", ids, got)
	}
}

func TestStore_ReadMemberListSkipsBlankLines(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	raw := "100\n\n  \n200\n"
	if err := os.WriteFile(filepath.Join(dir, "111.txt"), []byte(raw), 0o644); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := store.ReadMemberList("111")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"100", "200"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestProcessedLog_AppendAndReload(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	log, err := store.OpenProcessedLog()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if log.Contains("100") {
		t.Error("expected empty log")
	}
	if err := log.Append("100"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := log.Append("200"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// append repetido não duplica
	if err := log.Append("100"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if log.Len() != 2 {
		t.Errorf("expected 2 ids, got %d", log.Len())
	}
	if err := log.Close(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// reabrir carrega o set de volta, simulando um run interrompido
	log, err = store.OpenProcessedLog()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer log.Close()

	if !log.Contains("100") || !log.Contains("200") {
		t.Error("expected ids to survive reload")
	}
	if log.Contains("300") {
		t.Error("unexpected id in reloaded log")
	}
	if log.Len() != 2 {
		t.Errorf("expected 2 ids after reload, got %d", log.Len())
	}
}
