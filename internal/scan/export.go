package scan

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"badge-radar/internal/checkpoint"
	"badge-radar/internal/discord"
)

// ExportMembers enumera os membros da guild pelo gateway e grava a lista
// (somente não-bots) no arquivo de membros. Export existente é reutilizado;
// apagar o arquivo força uma nova enumeração.
func ExportMembers(ctx context.Context, logger *slog.Logger, gw *discord.GatewayClient, store *checkpoint.Store, guildID string, queryDelay time.Duration) error {
	if store.HasMemberList(guildID) {
		logger.Info("member_list_exists", "guild_id", guildID)
		return nil
	}

	members, err := gw.CollectMembers(ctx, guildID, queryDelay)
	if err != nil {
		return fmt.Errorf("member_collection_failed: %w", err)
	}

	ids := make([]string, 0, len(members))
	bots := 0
	for _, m := range members {
		if m.Bot {
			bots++
			continue
		}
		ids = append(ids, m.ID)
	}

	if err := store.WriteMemberList(guildID, ids); err != nil {
		return err
	}

	logger.Info("member_list_saved",
		"guild_id", guildID,
		"members", len(ids),
		"bots_filtered", bots,
	)
	return nil
}
