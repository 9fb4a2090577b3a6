package notify

// badgeEmojis mapeia nome canônico (e alguns códigos crus que ainda podem
// vazar do passthrough) para o emoji custom usado no embed.
var badgeEmojis = map[string]string{
	"2c":          "<:2c:1462561755476525167>",
	"3c":          "<:3c:1462561791996592250>",
	"BoostLevel1": "<:discordboost1:1462546187751002205>",
	"BoostLevel2": "<:discordboost2:1462546229161623758>",
	"BoostLevel3": "<:discordboost3:1462546258030755981>",
	"BoostLevel4": "<:discordboost4:1462546284647809290>",
	"BoostLevel5": "<:discordboost5:1462546311587827763>",
	"BoostLevel6": "<:discordboost6:1462546341304729662>",
	"BoostLevel7": "<:discordboost7:1462546372057235778>",
	"BoostLevel8": "<:discordboost8:1462546396589592839>",
	"BoostLevel9": "<:discordboost9:1462546423450042569>",

	"premium_tenure_1_month_v2":  "<:bronze:1462546149079519313>",
	"premium_tenure_3_month_v2":  "<:silver:1462546147401793722>",
	"premium_tenure_6_month_v2":  "<:gold:1462546140321939517>",
	"premium_tenure_12_month_v2": "<:platinum:1462546142972874894>",
	"premium_tenure_24_month_v2": "<:diamond:1462546150354845851>",
	"premium_tenure_36_month_v2": "<:emerald:1462546138631639112>",
	"premium_tenure_60_month_v2": "<:ruby:1462546145220755690>",
	"premium_tenure_72_month_v2": "<:opal:1462546141731098695>",

	"HypeSquadOnlineHouse1": "<:hypesquadbalance:1462545536501416040>",
	"HypeSquadOnlineHouse2": "<:hypesquadbravery:1462545566935290058>",
	"HypeSquadOnlineHouse3": "<:hypesquadbrilliance:1462545593791549460>",
	"PremiumEarlySupporter": "<:discordearlysupporter:1462545300710232216>",
	"VerifiedDeveloper":     "<:discordbotdev:1462545206158033027>",
	"ActiveDeveloper":       "<:activedev:1147277422337720462>",
	"Hypesquad":             "<:hypesquadevents:1462545625026527355>",
	"Nitro":                 "<:discordnitro:1462545376946159678>",
	"Staff":                 "<:discordstaff:1462545486044074218>",
	"CertifiedModerator":    "<:discordmod:1462545336131129535>",
	"BugHunterLevel1":       "<:discordbughunter1:1462545246930866475>",
	"BugHunterLevel2":       "<:discordbughunter2:1462544674865807645>",
	"Partner":               "<:discordpartner:1462545451403313152>",
	"Username":              "<:username:1462545054282420378>",
	"Orb":                   "<:orb:1462545655934488746>",
	"Quest":                 "<:quest:1462545052680323144>",
	"quest_completed":       "<:quest:1462545052680323144>",

	"guild_booster_lvl1": "<:discordboost1:1462546187751002205>",
	"guild_booster_lvl2": "<:discordboost2:1462546229161623758>",
	"guild_booster_lvl3": "<:discordboost3:1462546258030755981>",
	"guild_booster_lvl4": "<:discordboost4:1462546284647809290>",
	"guild_booster_lvl5": "<:discordboost5:1462546311587827763>",
	"guild_booster_lvl6": "<:discordboost6:1462546341304729662>",
	"guild_booster_lvl7": "<:discordboost7:1462546372057235778>",
	"guild_booster_lvl8": "<:discordboost8:1462546396589592839>",
	"guild_booster_lvl9": "<:discordboost9:1462546423450042569>",
}

// Emoji devolve o emoji de uma badge canônica, ou vazio se não mapeada.
func Emoji(name string) string {
	return badgeEmojis[name]
}
