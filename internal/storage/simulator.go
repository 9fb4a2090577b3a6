package storage

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// Simulator implementa ArchiveClient sem bucket configurado: gera URLs
// determinísticas sem tocar a rede, útil em dev e nos testes.
type Simulator struct {
	bucket   string
	endpoint string
}

func NewSimulator(bucket, endpoint string) *Simulator {
	return &Simulator{
		bucket:   strings.TrimSpace(bucket),
		endpoint: strings.TrimSpace(endpoint),
	}
}

func (r *Simulator) ArchiveAvatar(userID, avatarHash string) (string, error) {
	if userID == "" || avatarHash == "" {
		return "", fmt.Errorf("missing user or avatar hash")
	}

	sum := sha256.Sum256([]byte(userID + ":" + avatarHash))
	key := hex.EncodeToString(sum[:])

	ep := r.endpoint
	if ep == "" {
		ep = "https://r2.example.invalid"
	}
	bucket := r.bucket
	if bucket == "" {
		bucket = "badge-radar"
	}

	return fmt.Sprintf("%s/%s/avatars/%s.png", strings.TrimRight(ep, "/"), bucket, key), nil
}
