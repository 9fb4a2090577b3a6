// Package profile monta o registro canônico de um membro a partir do payload
// bruto de profile e da enumeração de flags. Transformação pura: nenhum I/O.
package profile

import (
	"time"

	"badge-radar/internal/badge"
	"badge-radar/internal/discord"
	"badge-radar/internal/models"
)

func premiumLabel(premiumType int) string {
	switch premiumType {
	case 1:
		return "NitroClassic"
	case 2:
		return "Nitro"
	case 3:
		return "NitroBasic"
	default:
		return ""
	}
}

// Assemble combina RawProfile + flags em um CanonicalProfile: calcula o
// boost ativo, normaliza as badges das duas fontes, rotula o premium type e
// decodifica a data de criação do snowflake.
func Assemble(raw *models.RawProfile, flags []string, now time.Time) *models.CanonicalProfile {
	if raw == nil {
		return nil
	}

	boost := badge.BoostInfoAt(raw.PremiumGuildSince, now)
	badges := badge.Normalize(flags, raw.Badges, raw.PremiumType, boost)

	bio := raw.User.Bio
	if bio == "" {
		bio = raw.UserProfile.Bio
	}

	p := &models.CanonicalProfile{
		UserID:         raw.User.ID,
		Username:       raw.User.Username,
		Discriminator:  raw.User.Discriminator,
		GlobalName:     raw.User.GlobalName,
		LegacyUsername: raw.LegacyUsername,
		Bio:            bio,
		Avatar:         raw.User.Avatar,
		Banner:         raw.UserProfile.Banner,
		Badges:         badges,
		PremiumType:    premiumLabel(raw.PremiumType),
		PremiumSince:   raw.PremiumSince,
		Boost:          boost,
		IsBot:          raw.User.Bot,
	}

	if len(raw.ConnectedAccounts) > 0 {
		p.ConnectedAccounts = raw.ConnectedAccounts
	}

	if createdAt, err := discord.SnowflakeTime(raw.User.ID); err == nil {
		p.CreatedAt = createdAt
	}

	return p
}
