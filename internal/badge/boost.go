package badge

import (
	"time"

	"badge-radar/internal/models"
)

// boostBand define uma faixa de meses [Min, Max) que corresponde a um nível de boost.
// Max == 0 marca a faixa aberta do nível máximo.
type boostBand struct {
	Level string
	Min   int
	Max   int
}

var boostBands = []boostBand{
	{Level: "BoostLevel1", Min: 0, Max: 2},
	{Level: "BoostLevel2", Min: 2, Max: 3},
	{Level: "BoostLevel3", Min: 3, Max: 6},
	{Level: "BoostLevel4", Min: 6, Max: 9},
	{Level: "BoostLevel5", Min: 9, Max: 12},
	{Level: "BoostLevel6", Min: 12, Max: 15},
	{Level: "BoostLevel7", Min: 15, Max: 18},
	{Level: "BoostLevel8", Min: 18, Max: 24},
	{Level: "BoostLevel9", Min: 24, Max: 0},
}

// MonthsBetween calcula a diferença em meses inteiros entre duas datas usando
// componentes de calendário (ano/mês/dia), não divisão de segundos.
// Se start > end as datas são trocadas e inverse=true; o valor volta negado.
func MonthsBetween(start, end time.Time) (months int, inverse bool) {
	if start.After(end) {
		start, end = end, start
		inverse = true
	}

	years := end.Year() - start.Year()
	monthsDiff := int(end.Month()) - int(start.Month())
	daysDiff := end.Day() - start.Day()

	correction := 0
	if daysDiff < 0 {
		correction = -1
	}

	months = years*12 + monthsDiff + correction
	if inverse {
		months = -months
	}
	return months, inverse
}

// BoostInfoAt computa o nível de boost para um início de boost em relação a now.
// Retorna nil quando não há boost ativo (start nulo ou no futuro).
func BoostInfoAt(start *time.Time, now time.Time) *models.BoostInfo {
	if start == nil {
		return nil
	}

	months, inverse := MonthsBetween(*start, now)
	if inverse || months < 0 {
		return nil
	}

	for i, band := range boostBands {
		if months < band.Min {
			continue
		}
		if band.Max != 0 && months >= band.Max {
			continue
		}

		info := &models.BoostInfo{
			Level: band.Level,
			Date:  *start,
		}

		if i+1 < len(boostBands) {
			info.NextLevel = boostBands[i+1].Level
			// a transição acontece quando a diferença alcança o limite
			// superior da faixa atual
			nextDate := start.AddDate(0, band.Max, 0)
			info.NextDate = &nextDate
		} else {
			info.NextLevel = models.MaxLevelReached
			info.NextDate = nil
		}

		return info
	}

	return nil
}
