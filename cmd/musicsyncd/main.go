package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/wantzavod/musicsync/internal/catalog"
	"github.com/wantzavod/musicsync/internal/config"
	"github.com/wantzavod/musicsync/internal/covers"
	"github.com/wantzavod/musicsync/internal/httpx"
	"github.com/wantzavod/musicsync/internal/imagegen"
	"github.com/wantzavod/musicsync/internal/scanner"
	"github.com/wantzavod/musicsync/internal/server"
	"github.com/wantzavod/musicsync/internal/syncer"
	"github.com/wantzavod/musicsync/internal/telegram"
)

func main() {
	configFlag := flag.String("config", "", "Path to config file")
	flag.Parse()

	var cfg *config.Config
	var err error
	if *configFlag != "" {
		cfg, err = config.LoadFile(*configFlag)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	log := newLogger(cfg.Logging)

	httpc := httpx.NewClient()
	store := catalog.NewFileStore(cfg.Storage.CatalogPath, cfg.Telegram.ChannelUsername, log)
	tg := telegram.NewClient(cfg.Telegram.BotToken, log)

	scfg := scanner.DefaultConfig(cfg.Telegram.ChannelUsername, cfg.Telegram.ProbeChatID)
	scfg.FirstRunBound = cfg.Sync.FirstRunBound
	scfg.IncrementalBound = cfg.Sync.IncrementalBound
	scfg.StepDelay = cfg.Sync.StepDelay
	scfg.CheckpointEvery = cfg.Sync.CheckpointEvery
	sc := scanner.New(scfg, tg, store, log)

	var orch *covers.Orchestrator
	if cfg.ImageGenEnabled() {
		gen := imagegen.NewClient(cfg.ImageGen.APIKey, httpc, imagegen.WithModel(cfg.ImageGen.Model))
		ocfg := covers.DefaultConfig(cfg.Storage.CoversDir)
		ocfg.PollInterval = cfg.Sync.PollInterval
		ocfg.MaxPollRounds = cfg.Sync.MaxPollRounds
		ocfg.MaxCoverBytes = cfg.Storage.MaxCoverBytes
		orch = covers.New(ocfg, gen, httpc, log)
	} else {
		log.Warn().Msg("image generation API key not set, cover pipeline disabled")
	}

	sy := syncer.New(store, sc, orch, log)
	srv := server.New(cfg, store, sy, tg, httpc, log)

	addr := net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port))
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("addr", addr).Str("channel", cfg.Telegram.ChannelUsername).Msg("listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		log.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("server exited")
		os.Exit(1)
	}
}

func newLogger(cfg config.LoggingConfig) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}

	var log zerolog.Logger
	if cfg.Format == "console" {
		log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr})
	} else {
		log = zerolog.New(os.Stderr)
	}
	return log.Level(level).With().Timestamp().Logger()
}
