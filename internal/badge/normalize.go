package badge

import (
	"sort"
	"strings"

	"badge-radar/internal/models"
)

// aliasTable mapeia códigos internos da API de profile para os nomes canônicos.
// Códigos de tenure mantêm o ID original (o mapeamento de emoji depende disso).
// Códigos fora da tabela passam adiante sem alteração, de propósito: badges
// novas da plataforma continuam aparecendo mesmo sem mapeamento.
var aliasTable = map[string]string{
	"staff":                    "Staff",
	"partner":                  "Partner",
	"certified_moderator":      "CertifiedModerator",
	"hypesquad":                "Hypesquad",
	"hypesquad_balance":        "HypeSquadOnlineHouse1",
	"hypesquad_bravery":        "HypeSquadOnlineHouse2",
	"hypesquad_brilliance":     "HypeSquadOnlineHouse3",
	"bug_hunter_level_1":       "BugHunterLevel1",
	"bug_hunter_level_2":       "BugHunterLevel2",
	"active_developer":         "ActiveDeveloper",
	"verified_developer":       "VerifiedDeveloper",
	"premium_early_supporter":  "PremiumEarlySupporter",

	"premium_tenure_1_month_v2":  "premium_tenure_1_month_v2",
	"premium_tenure_3_month_v2":  "premium_tenure_3_month_v2",
	"premium_tenure_6_month_v2":  "premium_tenure_6_month_v2",
	"premium_tenure_12_month_v2": "premium_tenure_12_month_v2",
	"premium_tenure_24_month_v2": "premium_tenure_24_month_v2",
	"premium_tenure_36_month_v2": "premium_tenure_36_month_v2",
	"premium_tenure_48_month_v2": "premium_tenure_48_month_v2",
	"premium_tenure_60_month_v2": "premium_tenure_60_month_v2",
	"premium_tenure_72_month_v2": "premium_tenure_72_month_v2",

	"quest":                    "Quest",
	"quest_completed":          "Quest",
	"orb":                      "Orb",
	"username":                 "Username",
	"legacy_username":          "Username",
	"guild_booster_lvl1":       "BoostLevel1",
	"guild_booster_lvl2":       "BoostLevel2",
	"guild_booster_lvl3":       "BoostLevel3",
	"guild_booster_lvl4":       "BoostLevel4",
	"guild_booster_lvl5":       "BoostLevel5",
	"guild_booster_lvl6":       "BoostLevel6",
	"guild_booster_lvl7":       "BoostLevel7",
	"guild_booster_lvl8":       "BoostLevel8",
	"guild_booster_lvl9":       "BoostLevel9",
}

// displayOrder é a lista de prioridade para ordenação das badges.
// Badges fora da lista ordenam depois de todas as conhecidas, preservando
// a ordem relativa de entrada.
var displayOrder = []string{
	"2c",
	"3c",
	"Nitro",
	"premium_tenure_1_month_v2",
	"premium_tenure_3_month_v2",
	"premium_tenure_6_month_v2",
	"premium_tenure_12_month_v2",
	"premium_tenure_24_month_v2",
	"premium_tenure_36_month_v2",
	"premium_tenure_48_month_v2",
	"premium_tenure_60_month_v2",
	"premium_tenure_72_month_v2",
	"BoostLevel1",
	"BoostLevel2",
	"BoostLevel3",
	"BoostLevel4",
	"BoostLevel5",
	"BoostLevel6",
	"BoostLevel7",
	"BoostLevel8",
	"BoostLevel9",
	"Staff",
	"Partner",
	"CertifiedModerator",
	"Hypesquad",
	"HypeSquadOnlineHouse1",
	"HypeSquadOnlineHouse2",
	"HypeSquadOnlineHouse3",
	"BugHunterLevel1",
	"BugHunterLevel2",
	"ActiveDeveloper",
	"VerifiedDeveloper",
	"PremiumEarlySupporter",
	"Username",
	"Quest",
	"Orb",
}

var displayIndex = buildDisplayIndex()

func buildDisplayIndex() map[string]int {
	idx := make(map[string]int, len(displayOrder))
	for i, name := range displayOrder {
		idx[name] = i
	}
	return idx
}

// SortCanonical ordena badges pela lista de prioridade (sort estável:
// desconhecidas mantêm a ordem relativa de entrada, depois das conhecidas).
func SortCanonical(badges []string) {
	sort.SliceStable(badges, func(i, j int) bool {
		return displayRank(badges[i]) < displayRank(badges[j])
	})
}

func displayRank(name string) int {
	if i, ok := displayIndex[name]; ok {
		return i
	}
	return len(displayOrder)
}

// HasTenureBadge reporta se alguma badge é de premium tenure.
func HasTenureBadge(badges []string) bool {
	for _, b := range badges {
		if strings.HasPrefix(b, "premium_tenure_") {
			return true
		}
	}
	return false
}

// Normalize reconcilia as duas fontes de badges (enumeração de flags do
// cliente e payload do profile) em uma sequência canônica, deduplicada e
// ordenada. premiumType e boost entram nas regras condicionais do final:
// Nitro genérico só aparece sem tenure específico, e o nível de boost ativo
// sempre aparece na sequência.
func Normalize(flags []string, entries []models.BadgeEntry, premiumType int, boost *models.BoostInfo) []string {
	all := make([]string, 0, len(flags)+len(entries)+2)
	seen := make(map[string]bool, len(flags)+len(entries)+2)

	add := func(name string) {
		if name == "" || seen[name] {
			return
		}
		seen[name] = true
		all = append(all, name)
	}

	for _, flag := range flags {
		add(rewrite(flag))
	}

	for _, entry := range entries {
		id := entry.ID
		if id == "" {
			// entrada malformada, descartada em silêncio
			continue
		}
		mapped, ok := aliasTable[strings.ToLower(id)]
		if !ok {
			mapped = id
		}
		add(rewrite(mapped))
	}

	// specific-supersedes-generic: tenure específico elimina o Nitro genérico
	if HasTenureBadge(all) {
		all = remove(all, "Nitro")
		delete(seen, "Nitro")
	}

	if premiumType != 0 && !HasTenureBadge(all) {
		add("Nitro")
	}

	if boost != nil && boost.Level != "" {
		add(boost.Level)
	}

	SortCanonical(all)
	return all
}

// rewrite aplica as reescritas pós-união: quest_completed colapsa na
// conquista base e guild_booster_lvlN vira BoostLevelN.
func rewrite(name string) string {
	if name == "quest_completed" {
		return "Quest"
	}
	if level, ok := strings.CutPrefix(name, "guild_booster_lvl"); ok {
		return "BoostLevel" + level
	}
	return name
}

func remove(badges []string, name string) []string {
	out := badges[:0]
	for _, b := range badges {
		if b != name {
			out = append(out, b)
		}
	}
	return out
}
