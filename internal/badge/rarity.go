package badge

import (
	"fmt"
	"strconv"
	"strings"

	"badge-radar/internal/models"
)

// StrictRareBadges é a allow-list base do classificador.
var StrictRareBadges = []string{
	"Staff",
	"Partner",
	"CertifiedModerator",
	"Hypesquad",
	"Developer",
	"PremiumEarlySupporter",
	"EarlySupporter",
	"early_supporter",
	"BugHunterLevel1",
	"BugHunterLevel2",
}

// NotifyRareBadges é o conjunto mais largo que dispara notificação no scan.
// Não é o mesmo conjunto do classificador estrito: inclui níveis de boost 3+
// e os tiers altos de tenure. Os dois conjuntos são mantidos separados de
// propósito.
var NotifyRareBadges = []string{
	"BoostLevel3",
	"BoostLevel4",
	"BoostLevel5",
	"BoostLevel6",
	"BoostLevel7",
	"BoostLevel8",
	"BoostLevel9",
	"PremiumEarlySupporter",
	"BugHunterLevel1",
	"BugHunterLevel2",
	"Hypesquad",
	"VerifiedDeveloper",
	"Partner",
	"CertifiedModerator",
	"Staff",
	"premium_tenure_24_month_v2",
	"premium_tenure_36_month_v2",
	"premium_tenure_60_month_v2",
	"premium_tenure_72_month_v2",
}

// rareTenureBadges são os tiers de tenure a partir de 12 meses.
var rareTenureBadges = []string{
	"premium_tenure_12_month_v2",
	"premium_tenure_24_month_v2",
	"premium_tenure_36_month_v2",
	"premium_tenure_48_month_v2",
	"premium_tenure_60_month_v2",
}

// RareUsername reporta usernames de exatamente 2 ou 3 caracteres.
func RareUsername(username string) bool {
	n := len(username)
	return n == 2 || n == 3
}

// RareBoost reporta níveis de boost com sufixo numérico >= 3.
func RareBoost(level string) bool {
	suffix, ok := strings.CutPrefix(level, "BoostLevel")
	if !ok {
		return false
	}
	n, err := strconv.Atoi(suffix)
	if err != nil {
		return false
	}
	return n >= 3
}

// RareBadges reporta se a sequência canônica intersecta o conjunto dado.
func RareBadges(badges, rareSet []string) bool {
	return len(intersect(badges, rareSet)) > 0
}

// RareTenure reporta tenure igual ou acima do tier de 12 meses.
func RareTenure(badges []string) bool {
	return RareBadges(badges, rareTenureBadges)
}

// IsRare é o veredito estrito: username OU boost OU badge da allow-list base.
func IsRare(p *models.CanonicalProfile) bool {
	if p == nil {
		return false
	}
	if RareUsername(p.Username) {
		return true
	}
	if p.Boost != nil && RareBoost(p.Boost.Level) {
		return true
	}
	return RareBadges(p.Badges, StrictRareBadges)
}

// ShouldNotify é o veredito do scan loop, um superconjunto do estrito:
// usa o conjunto largo de badges e o predicado de tenure.
func ShouldNotify(p *models.CanonicalProfile) bool {
	if p == nil {
		return false
	}
	if RareUsername(p.Username) {
		return true
	}
	if p.Boost != nil && RareBoost(p.Boost.Level) {
		return true
	}
	return RareTenure(p.Badges) || RareBadges(p.Badges, NotifyRareBadges)
}

// Reasons descreve os critérios satisfeitos, um por predicado, na ordem
// username, boost, badges.
func Reasons(p *models.CanonicalProfile) []string {
	if p == nil {
		return nil
	}

	var reasons []string

	if RareUsername(p.Username) {
		reasons = append(reasons, fmt.Sprintf("rare username (%d chars)", len(p.Username)))
	}

	if p.Boost != nil && RareBoost(p.Boost.Level) {
		reasons = append(reasons, "boost "+p.Boost.Level)
	}

	if matches := intersect(p.Badges, StrictRareBadges); len(matches) > 0 {
		reasons = append(reasons, "rare badges: "+strings.Join(matches, ", "))
	}

	return reasons
}

func intersect(badges, rareSet []string) []string {
	var out []string
	for _, b := range badges {
		for _, r := range rareSet {
			if b == r {
				out = append(out, b)
				break
			}
		}
	}
	return out
}
