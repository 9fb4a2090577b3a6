// Package checkpoint persiste o estado mínimo do scan em arquivos texto:
// a lista de membros por guild e o log append-only de IDs processados.
//
// "Processado" aqui significa "notificado": perfis que não dispararam
// notificação NÃO entram no log e serão re-buscados em runs futuros.
// Política intencional, herdada do comportamento original.
package checkpoint

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const processedFileName = "processed_ids.txt"

// Store gerencia os arquivos de estado dentro de um diretório.
type Store struct {
	dir string
}

func NewStore(dir string) (*Store, error) {
	if dir == "" {
		dir = "files"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed_to_create_state_dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

func (s *Store) memberFile(guildID string) string {
	return filepath.Join(s.dir, guildID+".txt")
}

func (s *Store) processedFile() string {
	return filepath.Join(s.dir, processedFileName)
}

// HasMemberList reporta se a lista de membros da guild já foi exportada.
func (s *Store) HasMemberList(guildID string) bool {
	info, err := os.Stat(s.memberFile(guildID))
	return err == nil && info.Size() > 0
}

// WriteMemberList grava a lista de IDs, um por linha, substituindo a
// exportação anterior.
func (s *Store) WriteMemberList(guildID string, memberIDs []string) error {
	data := strings.Join(memberIDs, "\n")
	if err := os.WriteFile(s.memberFile(guildID), []byte(data), 0o644); err != nil {
		return fmt.Errorf("failed_to_write_member_list: %w", err)
	}
	return nil
}

// ReadMemberList lê a lista inteira antes do scan começar, ignorando
// linhas vazias.
func (s *Store) ReadMemberList(guildID string) ([]string, error) {
	f, err := os.Open(s.memberFile(guildID))
	if err != nil {
		return nil, fmt.Errorf("failed_to_read_member_list: %w", err)
	}
	defer f.Close()

	var ids []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		id := strings.TrimSpace(scanner.Text())
		if id != "" {
			ids = append(ids, id)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed_to_scan_member_list: %w", err)
	}
	return ids, nil
}

// ProcessedLog é o log append-only de IDs notificados. Lido inteiro uma vez
// no início do scan; depois disso só recebe appends, nunca é reescrito.
type ProcessedLog struct {
	file *os.File
	set  map[string]bool
}

// OpenProcessedLog abre (ou cria) o log e carrega o set de membership.
func (s *Store) OpenProcessedLog() (*ProcessedLog, error) {
	path := s.processedFile()

	set := make(map[string]bool)
	if data, err := os.ReadFile(path); err == nil {
		for _, line := range strings.Split(string(data), "\n") {
			id := strings.TrimSpace(line)
			if id != "" {
				set[id] = true
			}
		}
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed_to_open_processed_log: %w", err)
	}

	return &ProcessedLog{file: f, set: set}, nil
}

// Contains reporta se o ID já foi notificado em algum run.
func (pl *ProcessedLog) Contains(id string) bool {
	return pl.set[id]
}

// Append registra o ID no log e no set em memória.
func (pl *ProcessedLog) Append(id string) error {
	if pl.set[id] {
		return nil
	}
	if _, err := pl.file.WriteString(id + "\n"); err != nil {
		return fmt.Errorf("failed_to_append_processed_id: %w", err)
	}
	pl.set[id] = true
	return nil
}

// Len devolve quantos IDs já foram notificados.
func (pl *ProcessedLog) Len() int {
	return len(pl.set)
}

func (pl *ProcessedLog) Close() error {
	return pl.file.Close()
}
