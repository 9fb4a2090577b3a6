package models

import (
	"encoding/json"
	"time"
)

// RawProfile é o payload bruto do endpoint /users/{id}/profile, imutável após o fetch
type RawProfile struct {
	User              RawUser            `json:"user"`
	UserProfile       RawUserProfile     `json:"user_profile"`
	Badges            []BadgeEntry       `json:"badges"`
	PremiumType       int                `json:"premium_type"`
	PremiumSince      *time.Time         `json:"premium_since"`
	PremiumGuildSince *time.Time         `json:"premium_guild_since"`
	LegacyUsername    string             `json:"legacy_username"`
	ConnectedAccounts []ConnectedAccount `json:"connected_accounts"`
}

type RawUser struct {
	ID            string `json:"id"`
	Username      string `json:"username"`
	Discriminator string `json:"discriminator"`
	GlobalName    string `json:"global_name"`
	Avatar        string `json:"avatar"`
	Bio           string `json:"bio"`
	Bot           bool   `json:"bot"`
}

type RawUserProfile struct {
	Banner string `json:"banner"`
	Bio    string `json:"bio"`
}

type ConnectedAccount struct {
	Type     string `json:"type"`
	ID       string `json:"id"`
	Name     string `json:"name"`
	Verified bool   `json:"verified"`
}

// BadgeEntry aceita os dois formatos que o endpoint de profile devolve:
// um código simples ("staff") ou um objeto {id, description, icon}.
// Entradas que não são nenhum dos dois ficam com ID vazio e são descartadas
// na normalização.
type BadgeEntry struct {
	ID          string
	Description string
	Icon        string
}

func (b *BadgeEntry) UnmarshalJSON(data []byte) error {
	var bare string
	if err := json.Unmarshal(data, &bare); err == nil {
		b.ID = bare
		return nil
	}

	var detailed struct {
		ID          string `json:"id"`
		Description string `json:"description"`
		Icon        string `json:"icon"`
	}
	if err := json.Unmarshal(data, &detailed); err == nil {
		b.ID = detailed.ID
		b.Description = detailed.Description
		b.Icon = detailed.Icon
		return nil
	}

	// formato desconhecido: não aborta o decode do profile inteiro
	*b = BadgeEntry{}
	return nil
}

// BoostInfo descreve o nível de boost ativo e a próxima transição.
// NextLevel/NextDate ficam no sentinela MaxLevelReached no nível 9.
type BoostInfo struct {
	Level     string     `json:"level"`
	Date      time.Time  `json:"date"`
	NextLevel string     `json:"next_level"`
	NextDate  *time.Time `json:"next_date"`
}

// MaxLevelReached é o sentinela usado quando não existe próximo nível de boost.
const MaxLevelReached = "MaxLevelReached"

// CanonicalProfile é o registro derivado de um RawProfile + flags,
// dono é o scan loop durante uma iteração
type CanonicalProfile struct {
	UserID            string             `json:"user_id"`
	Username          string             `json:"username"`
	Discriminator     string             `json:"discriminator"`
	GlobalName        string             `json:"global_name"`
	LegacyUsername    string             `json:"legacy_username,omitempty"`
	Bio               string             `json:"bio,omitempty"`
	Avatar            string             `json:"avatar,omitempty"`
	Banner            string             `json:"banner,omitempty"`
	Badges            []string           `json:"badges"`
	PremiumType       string             `json:"premium_type,omitempty"`
	PremiumSince      *time.Time         `json:"premium_since,omitempty"`
	Boost             *BoostInfo         `json:"boost,omitempty"`
	ConnectedAccounts []ConnectedAccount `json:"connected_accounts,omitempty"`
	IsBot             bool               `json:"is_bot"`
	CreatedAt         time.Time          `json:"created_at"`
}
