package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"badge-radar/internal/api"
	"badge-radar/internal/checkpoint"
	"badge-radar/internal/config"
	"badge-radar/internal/db"
	"badge-radar/internal/discord"
	"badge-radar/internal/logging"
	"badge-radar/internal/notify"
	"badge-radar/internal/redis"
	"badge-radar/internal/scan"
	"badge-radar/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logging.PrintBanner()

	logger := logging.New(cfg.LogLevel)
	logger.Info("starting_scanner", "service", "badge-radar", "guild_id", cfg.GuildID)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// shutdown limpo: primeiro sinal cancela o scan, segundo mata o processo
	stop := make(chan os.Signal, 2)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-stop
		logger.Info("shutdown_requested")
		cancel()
		<-stop
		logger.Warn("forced_exit")
		os.Exit(1)
	}()

	var proxy *discord.ProxyConfig
	if cfg.UseProxy {
		proxy = &cfg.Proxy
		logger.Info("using_proxy", "host", cfg.Proxy.Host, "port", cfg.Proxy.Port)
	}
	httpClient := discord.NewHTTPClient(proxy)

	fetcher := discord.NewProfileFetcher(logger, httpClient, cfg.Token)
	if err := fetcher.CheckToken(ctx); err != nil {
		logger.Error("token_check_failed", "error", err)
		os.Exit(1)
	}
	logger.Info("token_valid")

	// backends opcionais
	var dbConn *db.DB
	if cfg.DBDSN != "" {
		for i := 0; i < 5; i++ {
			dbConn, err = db.New(ctx, cfg.DBDSN)
			if err == nil {
				break
			}
			logger.Warn("db_connect_retry", "attempt", i+1, "error", err)
			time.Sleep(2 * time.Second)
		}
		if err != nil {
			logger.Error("db_connect_failed", "error", err)
			os.Exit(1)
		}
		defer dbConn.Close()

		if err := dbConn.EnsureSchema(ctx); err != nil {
			logger.Error("schema_init_failed", "error", err)
			os.Exit(1)
		}
	}

	var redisClient *redis.Client
	if cfg.RedisDSN != "" {
		redisClient, err = redis.New(cfg.RedisDSN)
		if err != nil {
			logger.Error("redis_connect_failed", "error", err)
			os.Exit(1)
		}
		defer redisClient.Close()
	}

	var avatars storage.ArchiveClient
	if cfg.R2Endpoint != "" && cfg.R2Bucket != "" {
		var r2Keys map[string]string
		if err := json.Unmarshal([]byte(cfg.R2KeysRaw), &r2Keys); err == nil {
			s3Client, err := storage.NewS3Client(storage.S3Config{
				Endpoint:        cfg.R2Endpoint,
				AccessKeyID:     r2Keys["access_key_id"],
				SecretAccessKey: r2Keys["secret_access_key"],
				Bucket:          cfg.R2Bucket,
				PublicURL:       r2Keys["public_url"],
				Region:          "auto",
			})
			if err == nil {
				avatars = s3Client
				logger.Info("using_s3_storage", "endpoint", cfg.R2Endpoint)
			}
		}
	}
	if avatars == nil {
		avatars = storage.NewSimulator(cfg.R2Bucket, cfg.R2Endpoint)
		logger.Info("using_storage_simulator")
	}

	store, err := checkpoint.NewStore(cfg.MemberFileDir)
	if err != nil {
		logger.Error("checkpoint_dir_failed", "error", err)
		os.Exit(1)
	}

	// uma única sessão de gateway cobre o export da lista de membros e os
	// metadados do guild pro invite
	invite := discord.ServerInvite{GuildID: cfg.GuildID}
	gw := discord.NewGatewayClient(logger, cfg.Token)
	if err := gw.Connect(ctx); err != nil {
		if !store.HasMemberList(cfg.GuildID) {
			logger.Error("gateway_connect_failed", "error", err)
			os.Exit(1)
		}
		// lista já existe em disco; seguir sem invite
		logger.Warn("gateway_connect_failed", "error", err)
	} else {
		if err := scan.ExportMembers(ctx, logger, gw, store, cfg.GuildID, time.Second); err != nil {
			_ = gw.Close()
			logger.Error("member_export_failed", "error", err)
			os.Exit(1)
		}
		if guild, ok := gw.Guild(cfg.GuildID); ok {
			invite = discord.NewInviteSource(logger, httpClient, cfg.Token).Resolve(ctx, guild)
		}
		_ = gw.Close()
	}

	memberIDs, err := store.ReadMemberList(cfg.GuildID)
	if err != nil {
		logger.Error("member_list_read_failed", "error", err)
		os.Exit(1)
	}
	logger.Info("member_list_loaded", "count", len(memberIDs))

	processedLog, err := store.OpenProcessedLog()
	if err != nil {
		logger.Error("processed_log_open_failed", "error", err)
		os.Exit(1)
	}
	defer processedLog.Close()
	logger.Info("processed_log_loaded", "count", processedLog.Len())

	// reidrata o checkpoint local a partir do espelho redis (arquivo perdido
	// ou primeiro run desta máquina)
	if redisClient != nil {
		if ids, err := redisClient.NotifiedIDs(ctx); err != nil {
			logger.Warn("mirror_read_failed", "error", err)
		} else {
			restored := 0
			for _, id := range ids {
				if !processedLog.Contains(id) {
					if err := processedLog.Append(id); err == nil {
						restored++
					}
				}
			}
			if restored > 0 {
				logger.Info("processed_log_restored_from_mirror", "count", restored)
			}
		}
	}

	flagSource := discord.NewFlagSource(logger, httpClient, cfg.Token)
	sender := notify.NewWebhookSender(logger, httpClient, cfg.WebhookURL)
	recorder := scan.NewRecorder(logger, dbConn, avatars, redisClient)

	scanner := scan.NewScanner(logger, fetcher, flagSource, sender, recorder, processedLog, invite, scan.Options{
		Delay:               time.Duration(cfg.UserCheckDelayMs) * time.Millisecond,
		RateLimitMaxRetries: cfg.RateLimitMaxRetries,
	})

	// API de status em paralelo ao scan
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: api.NewServer(logger, scanner, recorder, dbConn, redisClient).Handler(),
	}
	go func() {
		logger.Info("http_listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http_server_failed", "error", err)
		}
	}()

	progress, err := scanner.Run(ctx, cfg.GuildID, memberIDs)
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("scan_failed", "error", err)
	}
	logger.Info("scan_finished",
		"scanned", progress.Scanned,
		"notified", progress.Notified,
		"skipped", progress.Skipped,
		"failed", progress.Failed,
		"rate_limit_hits", progress.RateLimitHits,
	)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http_shutdown_error", "error", err)
	}

	logger.Info("scanner_stopped")
}
