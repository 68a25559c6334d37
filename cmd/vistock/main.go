package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/yorkjong/vistock-sub000/internal/collector"
	"github.com/yorkjong/vistock-sub000/internal/config"
	"github.com/yorkjong/vistock-sub000/internal/model"
	"github.com/yorkjong/vistock-sub000/internal/notifier"
	"github.com/yorkjong/vistock-sub000/internal/ranking"
	"github.com/yorkjong/vistock-sub000/internal/recorder"
	"github.com/yorkjong/vistock-sub000/internal/scheduler"
)

func main() {
	_ = godotenv.Load()

	logger, err := newLogger()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()
	logger.Info("vistock starting")

	// Load config
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal("config validation", zap.Error(err))
	}

	// Init fetcher
	var fetcher collector.Fetcher
	switch cfg.Collector.Source {
	case "rest":
		fetcher = collector.NewRESTFetcher(cfg.DataSource.BaseURL, cfg.DataSource.APIKey, cfg.Proxy)
	case "mock":
		fetcher = &collector.MockFetcher{Price: 100}
	default:
		fetcher = collector.NewYahooFetcher(cfg.Proxy, cfg.Collector.RateLimit)
	}
	logger.Info("data source", zap.String("name", fetcher.Name()))

	if ttl, err := time.ParseDuration(cfg.Collector.CacheTTL); err == nil && ttl > 0 {
		fetcher = collector.NewCachedFetcher(fetcher, ttl)
	}

	bulk := collector.NewBulkFetcher(fetcher, cfg.Collector.Workers, logger)
	engine := ranking.NewEngine(bulk, logger)

	// Init recorder
	var rec recorder.Recorder
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath, logger)
		if err != nil {
			logger.Warn("init sqlite recorder failed, using noop", zap.Error(err))
			rec = recorder.NewNoopRecorder()
		} else {
			rec = sr
			defer sr.Close()
		}
	} else {
		rec = recorder.NewNoopRecorder()
	}

	// Init Telegram notifier (optional)
	var tn *notifier.TelegramNotifier
	if cfg.Telegram.BotToken != "" {
		tn = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy, logger)
	}

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	params := ranking.Params{
		Benchmark:    cfg.Ranking.Benchmark,
		Period:       cfg.Ranking.Period,
		Interval:     model.Interval(cfg.Ranking.Interval),
		RatingMethod: model.RatingMethod(cfg.Ranking.RatingMethod),
		MA:           model.MAType(cfg.Ranking.MA),
		Window:       cfg.Ranking.Window,
		MinBars:      cfg.Ranking.MinBars,
	}

	// Init scheduler
	sched := scheduler.NewScheduler(ctx, engine, rec, tn,
		cfg.Ranking.Symbols, cfg.Ranking.Formula, params, cfg.Telegram.TopN, logger)
	if err := sched.Register(cfg.Schedule.RankingCron); err != nil {
		logger.Fatal("register cron task", zap.Error(err))
	}
	sched.Start()
	defer sched.Stop()

	// Start Telegram polling
	if tn != nil {
		go tn.StartPolling(ctx, sched.HandleCommand)
		logger.Info("telegram polling started")
	}

	// Optional: run immediately on start
	if os.Getenv("RUN_ON_START") == "true" {
		logger.Info("RUN_ON_START enabled, executing ranking task now")
		go sched.RunNow()
	}

	logger.Info("vistock is running")

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.Info("shutdown signal received, stopping")
	cancel()
	logger.Info("vistock stopped")
}

func newLogger() (*zap.Logger, error) {
	if os.Getenv("LOG_LEVEL") == "debug" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
