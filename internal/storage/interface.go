package storage

// ArchiveClient guarda uma cópia do avatar de um perfil raro no momento do
// match (avatares somem quando o usuário troca). Retorna a URL pública.
type ArchiveClient interface {
	ArchiveAvatar(userID, avatarHash string) (string, error)
}
