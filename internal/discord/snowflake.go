package discord

import (
	"errors"
	"strconv"
	"time"
)

// discordEpochMs é o offset da epoch da plataforma (2015-01-01T00:00:00Z).
const discordEpochMs = 1420070400000

func ParseSnowflake(s string) (uint64, error) {
	if s == "" {
		return 0, errors.New("empty snowflake")
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, errors.New("snowflake must be numeric")
		}
	}
	id, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, errors.New("invalid snowflake")
	}
	if id == 0 {
		return 0, errors.New("snowflake must be > 0")
	}
	return id, nil
}

// SnowflakeTime recupera o timestamp de criação embutido no ID, sem chamada
// de rede: 42 bits altos são milissegundos desde a epoch da plataforma.
// IDs que não parseiam como uint64 caem num cálculo aproximado por float.
func SnowflakeTime(s string) (time.Time, error) {
	id, err := ParseSnowflake(s)
	if err == nil {
		ms := int64(id>>22) + discordEpochMs
		return time.UnixMilli(ms).UTC(), nil
	}

	f, ferr := strconv.ParseFloat(s, 64)
	if ferr != nil || f <= 0 {
		return time.Time{}, err
	}
	ms := int64(f/4194304) + discordEpochMs
	return time.UnixMilli(ms).UTC(), nil
}
