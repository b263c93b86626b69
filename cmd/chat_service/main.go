package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"sarathi/internal/agent"
	"sarathi/internal/chat_service/api"
	"sarathi/internal/config"
	"sarathi/internal/crawler"
	"sarathi/internal/database/sqlite"
	"sarathi/internal/embedding"
	"sarathi/internal/feed"
	"sarathi/internal/knowledge"
	"sarathi/internal/knowledge/index"
	"sarathi/internal/llm"
	"sarathi/internal/session"
	"sarathi/internal/tools"
	"sarathi/pkg/logger"
)

const crawlTimeout = 15 * time.Second

func main() {
	configPath := flag.String("config", "config.yaml", "path to the configuration file")
	flag.Parse()

	// Load optional .env before the config so ${VAR}-style secrets resolve.
	_ = godotenv.Load()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	logger.Init(logger.ParseLevel(cfg.LogLevel))
	log := logger.New("chat_service")

	if err := cfg.Validate(); err != nil {
		log.WithError(err).Fatal("invalid configuration")
	}

	db, err := sqlite.GetDB(cfg.Database.Path)
	if err != nil {
		log.WithError(err).Fatal("failed to open store")
	}
	defer sqlite.Close()

	embedder, err := embedding.NewClient(cfg.Embedding)
	if err != nil {
		log.WithError(err).Fatal("failed to build embedding client")
	}
	ix := index.New(embedder, cfg.Embedding.Dimension, logger.New("index"))
	store := feed.New(db, ix, cfg.Retrieval.ChunkSize, cfg.Retrieval.ChunkOverlap, cfg.Feed.BatchMax, logger.New("feed"))
	sessions := session.NewManager(db, cfg.SessionTTL(), logger.New("session"))

	var model llm.LLM
	if cfg.LLM.Enabled {
		model, err = llm.NewClient(cfg.LLM)
		if err != nil {
			log.WithError(err).Fatal("failed to build llm client")
		}
	}
	engine := knowledge.NewEngine(store, ix, model, cfg, logger.New("knowledge"))
	dispatcher := agent.NewDispatcher(tools.NewClient())
	chatAgent := agent.New(sessions, engine, dispatcher, cfg.Chat.EnabledIntents, cfg.Session.HistoryWindow, logger.New("agent"))

	// Expired sessions are reclaimed on a schedule, not per request.
	scheduler := cron.New()
	if _, err := scheduler.AddFunc(cfg.Session.SweepSchedule, func() {
		reclaimed, err := sessions.Sweep(context.Background())
		if err != nil {
			log.WithError(err).Error("session sweep failed")
			return
		}
		if reclaimed > 0 {
			log.WithField("reclaimed", reclaimed).Info("session sweep completed")
		}
	}); err != nil {
		log.WithError(err).Fatal("invalid sweep schedule")
	}
	scheduler.Start()
	defer scheduler.Stop()

	server := api.NewServer(chatAgent, store, crawler.New(crawlTimeout), logger.New("api"))
	httpServer := &http.Server{
		Addr:    cfg.Server.Address,
		Handler: server.Router(),
	}

	go func() {
		log.WithField("address", cfg.Server.Address).Info("chat service listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("http server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("forced shutdown")
	}
	log.Info("chat service stopped")
}
