package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/allenshen-svg/fund-assistant/internal/calendar"
	"github.com/allenshen-svg/fund-assistant/internal/collector"
	"github.com/allenshen-svg/fund-assistant/internal/config"
	"github.com/allenshen-svg/fund-assistant/internal/heat"
	"github.com/allenshen-svg/fund-assistant/internal/holdings"
	"github.com/allenshen-svg/fund-assistant/internal/notifier"
	"github.com/allenshen-svg/fund-assistant/internal/planner"
	"github.com/allenshen-svg/fund-assistant/internal/recorder"
	"github.com/allenshen-svg/fund-assistant/internal/scheduler"
	"github.com/allenshen-svg/fund-assistant/internal/tracker"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func newLogger(level string) (*zap.Logger, error) {
	if level == "debug" {
		return zap.NewDevelopment()
	}
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	return cfg.Build()
}

func main() {
	// .env is optional; real environment variables take precedence.
	_ = godotenv.Load()

	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("[FATAL] load config: %v", err)
	}

	logger, err := newLogger(cfg.Log.Level)
	if err != nil {
		log.Fatalf("[FATAL] init logger: %v", err)
	}
	defer logger.Sync()
	logger.Info("fund advisor starting", zap.String("config", cfgPath))

	if err := cfg.Validate(); err != nil {
		logger.Fatal("config validation", zap.Error(err))
	}

	loc, err := cfg.Location()
	if err != nil {
		logger.Fatal("load timezone", zap.Error(err))
	}
	holidays := cfg.Calendar.Holidays
	if len(holidays) == 0 {
		holidays = calendar.DefaultHolidays
	}
	cal, err := calendar.New(holidays, cfg.Calendar.Workdays, loc)
	if err != nil {
		logger.Fatal("init calendar", zap.Error(err))
	}

	// Init fetcher
	var fetcher collector.Fetcher
	if cfg.DataSource.Fetcher == "mock" {
		fetcher = &collector.MockFetcher{BaseNAV: 1, Step: 0.001}
	} else {
		fetcher = collector.NewEastMoneyFetcher(cfg.Proxy, logger.Named("eastmoney"))
	}
	logger.Info("data source", zap.String("fetcher", fetcher.Name()))
	col := collector.NewCollector(fetcher, cfg.DataSource.HistoryDays, cfg.DataSource.Concurrency, logger.Named("collector"))

	heatSrc := heat.NewSource(cfg.Heat.Source,
		&http.Client{Timeout: time.Duration(cfg.Heat.TimeoutSec) * time.Second},
		logger.Named("heat"))

	hm, err := holdings.NewManager(cfg.Holdings.File, cfg.Holdings.Defaults)
	if err != nil {
		logger.Fatal("init holdings", zap.Error(err))
	}

	// Init tracker store
	var store tracker.Store
	if cfg.Tracker.Store == config.StoreSQLite {
		ss, err := tracker.NewSQLiteStore(cfg.Tracker.Path)
		if err != nil {
			logger.Fatal("init tracker store", zap.Error(err))
		}
		defer ss.Close()
		store = ss
	} else {
		store = tracker.NewJSONFileStore(cfg.Tracker.Path)
	}
	tr := tracker.New(store, cal, cfg.Tracker.Capacity, logger.Named("tracker"))

	tn := notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy, logger.Named("telegram"))

	// Init recorder
	var rec recorder.Recorder
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath, logger.Named("recorder"))
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

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	opts := planner.DefaultOptions()
	opts.Strategy = cfg.StrategyConfig()

	sched := scheduler.NewScheduler(ctx, col, heatSrc, hm, tr, cal, tn, rec, opts, logger.Named("scheduler"))
	if err := sched.RegisterAll(cfg.Schedule.ReportCron, cfg.Schedule.VerifyCron); err != nil {
		logger.Fatal("register cron tasks", zap.Error(err))
	}
	sched.Start()
	defer sched.Stop()

	go tn.StartPolling(ctx, sched.HandleCommand)
	logger.Info("telegram polling started")

	if os.Getenv("RUN_ON_START") == "true" {
		logger.Info("RUN_ON_START enabled, executing report now")
		go sched.RunReportNow()
	}

	logger.Info("fund advisor is running",
		zap.String("report_cron", cfg.Schedule.ReportCron),
		zap.String("verify_cron", cfg.Schedule.VerifyCron))

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.Info("shutdown signal received, stopping")
	cancel()
}
