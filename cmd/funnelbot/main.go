package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"funnel-bot/internal/bot"
	"funnel-bot/internal/config"
	"funnel-bot/internal/funnel"
	"funnel-bot/internal/invite"
	"funnel-bot/internal/storage"
	"funnel-bot/internal/telegram"
	"funnel-bot/internal/webhook"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	if cfg.UsingDefaultSecret() {
		logger.Warn("using the default webhook secret; set WEBHOOK_SECRET in production")
	}

	var store storage.Store
	if cfg.DBPath != "" {
		db, err := storage.OpenSQLite(cfg.DBPath)
		if err != nil {
			log.Fatalf("open store: %v", err)
		}
		defer db.Close()
		store = db
	} else {
		store = storage.NewMemory()
	}

	api, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		log.Fatalf("telegram: %v", err)
	}
	logger.Info("authorized", "bot", api.Self.UserName)

	client := telegram.NewClient(api)
	tracker := funnel.NewTracker(store)
	links := invite.NewIssuer(client, cfg.ChannelID)
	handlers := bot.NewHandlers(client, tracker, links, cfg.ChannelID, cfg.AffiliateLink, logger)
	dispatcher := webhook.NewDispatcher(handlers, cfg.HandlerTimeout, logger)
	server := webhook.NewServer(cfg.WebhookSecret, dispatcher)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.PublicURL != "" {
		hook := strings.TrimRight(cfg.PublicURL, "/") + "/webhook/" + cfg.WebhookSecret
		wh, err := tgbotapi.NewWebhook(hook)
		if err != nil {
			log.Fatalf("webhook url: %v", err)
		}
		if _, err := api.Request(wh); err != nil {
			log.Fatalf("register webhook: %v", err)
		}
		logger.Info("webhook registered", "url", cfg.PublicURL)
	} else {
		// Polling mode keeps local runs working without a public URL.
		if _, err := api.Request(tgbotapi.DeleteWebhookConfig{}); err != nil {
			log.Fatalf("delete webhook: %v", err)
		}
		go bot.Poll(ctx, api, dispatcher)
		logger.Info("long polling for updates")
	}

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           server.Router(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      cfg.HandlerTimeout + 5*time.Second,
	}
	go func() {
		logger.Info("listening", "addr", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("serve: %v", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", "err", err)
	}
}
