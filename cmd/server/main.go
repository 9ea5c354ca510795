package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"cakewatch/config"
	"cakewatch/internal/extract"
	"cakewatch/internal/handler"
	"cakewatch/internal/httpserver"
	"cakewatch/internal/ledger"
	"cakewatch/internal/mailbox"
	"cakewatch/internal/notify"
	"cakewatch/internal/watcher"
	"cakewatch/pkg/logbuf"
	"cakewatch/pkg/logger"
)

func main() {
	// 1. Load config
	cfg := config.Load()

	// 2. Logger, teed into the ring served by /api/status
	logs := logbuf.New(logbuf.DefaultCapacity)
	zlog := logger.New(logs)
	defer zlog.Sync()

	if cfg.API.Key == "" {
		zlog.Fatal("API_KEY is required")
	}

	// 3. Extraction rules
	rules := extract.Default()
	if cfg.Watch.RulesFile != "" {
		var err error
		rules, err = extract.Load(cfg.Watch.RulesFile)
		if err != nil {
			zlog.Fatal("failed to load rules file", zap.Error(err))
		}
	}

	// 4. Ledger
	ld := ledger.New()

	// 5. Notification channels
	var channels []notify.Channel
	if cfg.Telegram.BotToken != "" && cfg.Telegram.ChatID != "" {
		channels = append(channels, notify.NewTelegram(cfg.Telegram.BotToken, cfg.Telegram.ChatID))
	} else {
		zlog.Info("Telegram notifications disabled, bot token or chat ID missing")
	}
	if cfg.MQ.URL != "" {
		publisher, err := notify.NewAMQP(cfg.MQ.URL, cfg.MQ.Exchange, cfg.MQ.RoutingKey)
		if err != nil {
			zlog.Fatal("failed to init AMQP publisher", zap.Error(err))
		}
		defer publisher.Close()
		channels = append(channels, publisher)
	}

	// 6. Mailbox watcher
	source := mailbox.New(mailbox.Config{
		Host:     cfg.IMAP.Host,
		Port:     cfg.IMAP.Port,
		Username: cfg.IMAP.Username,
		Password: cfg.IMAP.Password,
		TLS:      cfg.IMAP.TLS,
		Mailbox:  cfg.IMAP.Mailbox,
	}, zlog)

	w := watcher.New(source, ld, rules, channels, watcher.Config{
		Sender:   cfg.Watch.Sender,
		Subject:  cfg.Watch.Subject,
		Interval: time.Duration(cfg.Watch.IntervalSeconds) * time.Second,
	}, zlog)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.IMAP.Username != "" {
		go w.Run(ctx)
	} else {
		zlog.Warn("Email checking disabled, IMAP credentials missing")
	}

	// 7. Handlers
	waiter := &ledger.Waiter{Ledger: ld}
	apiHandler := handler.NewAPIHandler(ld, waiter, zlog)
	statusHandler := handler.NewStatusHandler(w, logs)

	// 8. Router
	router := httpserver.NewRouter(apiHandler, statusHandler, cfg.API.Key)

	// 9. Run server
	zlog.Info("Starting server", zap.String("port", cfg.Server.Port))
	if err := router.Run(cfg.Server.Port); err != nil {
		zlog.Fatal("server start failed", zap.Error(err))
	}
}
