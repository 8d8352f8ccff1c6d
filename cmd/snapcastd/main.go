// SPDX-License-Identifier: MIT

// Command snapcastd runs the SnapCast server: upload credential issuance,
// metadata commits and listings over HTTP.
package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/MartinJindu/SnapCast/internal/api"
	"github.com/MartinJindu/SnapCast/internal/auth"
	"github.com/MartinJindu/SnapCast/internal/bunny"
	"github.com/MartinJindu/SnapCast/internal/cache"
	"github.com/MartinJindu/SnapCast/internal/config"
	"github.com/MartinJindu/SnapCast/internal/log"
	"github.com/MartinJindu/SnapCast/internal/protect"
	"github.com/MartinJindu/SnapCast/internal/store"
	"github.com/MartinJindu/SnapCast/internal/videos"
	"golang.org/x/sync/errgroup"
)

func main() {
	log.Configure(log.Config{Service: "snapcastd"})
	logger := log.WithComponent("main")

	configPath := flag.String("config", "", "optional YAML config file overlaying the environment")
	flag.Parse()

	cfg := config.FromEnv()
	if *configPath != "" {
		if err := config.LoadFile(*configPath, &cfg); err != nil {
			logger.Fatal().Err(err).Msg("failed to load config file")
		}
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid configuration")
	}

	if err := run(cfg); err != nil {
		logger.Fatal().Err(err).Msg("server exited with error")
	}
}

func run(cfg config.Config) error {
	logger := log.WithComponent("main")

	st, err := store.NewStore(cfg.DBPath)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	var listingCache cache.Cache
	if cfg.RedisAddr != "" {
		rc, err := cache.NewRedisCache(cache.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		}, log.WithComponent("cache"))
		if err != nil {
			return err
		}
		defer func() { _ = rc.Close() }()
		listingCache = rc
	} else {
		logger.Info().Msg("no redis address configured, using in-memory listing cache")
		listingCache = cache.NewMemoryCache(time.Minute)
	}

	stream := bunny.NewStreamClient(cfg.Stream.BaseURL, cfg.Stream.EmbedBaseURL, cfg.Stream.LibraryID, cfg.Stream.AccessKey)
	storage := bunny.NewStorageClient(cfg.Storage.BaseURL, cfg.Storage.CDNBaseURL, cfg.Storage.AccessKey)
	gate := protect.NewFixedWindow(cfg.CommitWindow, cfg.CommitMaxPerWindow)
	svc := videos.NewService(st, stream, storage, gate, listingCache, cfg.ListCacheTTL)
	resolver := auth.NewStaticResolver(cfg.SessionTokens)

	server := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           api.NewServer(cfg, svc, resolver).Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info().Str("addr", cfg.ListenAddr).Msg("snapcast server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		logger.Info().Msg("shutting down")
		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
