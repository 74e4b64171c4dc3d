package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"MiningPulse/internal/analysis"
	"MiningPulse/internal/api"
	"MiningPulse/internal/cache"
	"MiningPulse/internal/collector"
	"MiningPulse/internal/config"
	"MiningPulse/internal/loader"
	"MiningPulse/internal/logger"
	"MiningPulse/internal/metrics"
	"MiningPulse/internal/notifier"
	"MiningPulse/internal/recorder"
	"MiningPulse/internal/scheduler"

	"github.com/rs/zerolog"
)

func main() {
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		bootLog := zerolog.New(os.Stderr).With().Timestamp().Logger()
		bootLog.Fatal().Err(err).Str("path", cfgPath).Msg("load config")
	}

	log, err := logger.New(cfg.Log.Logger())
	if err != nil {
		bootLog := zerolog.New(os.Stderr).With().Timestamp().Logger()
		bootLog.Fatal().Err(err).Msg("init logger")
	}
	log.Info().Str("config", cfgPath).Int("instruments", len(cfg.Instruments)).Msg("MiningPulse starting")

	req, err := cfg.AnalysisRequest()
	if err != nil {
		log.Fatal().Err(err).Msg("default analysis request")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	m := metrics.New()
	store := loader.NewStore(cfg.Instruments, log)
	engine := analysis.NewEngine(store, analysis.WithMetrics(m), analysis.WithLogger(log))

	quoteCache, closeCache := newQuoteCache(ctx, cfg, log)
	defer closeCache()

	// Interface values stay untyped nil when a feature is off.
	var (
		quotes   scheduler.QuoteSource
		provider api.QuoteProvider
		sender   scheduler.Sender
		telegram *notifier.TelegramNotifier
	)
	if fetcher := newFetcher(cfg); fetcher != nil {
		svc := collector.NewQuoteService(fetcher, quoteCache,
			collector.WithTTL(cfg.Quotes.TTL),
			collector.WithSuffix(cfg.Quotes.Suffix),
			collector.WithConcurrency(cfg.Quotes.Concurrency),
			collector.WithMetrics(m),
			collector.WithLogger(log),
		)
		quotes, provider = svc, svc
		log.Info().Str("source", fetcher.Name()).Dur("ttl", cfg.Quotes.TTL).Msg("live quotes enabled")
	} else {
		log.Info().Msg("live quotes disabled")
	}

	if cfg.Telegram.Enabled() {
		telegram = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy, log)
		sender = telegram
	} else {
		log.Info().Msg("telegram not configured, reports are logged only")
	}

	rec := newRecorder(cfg, log)
	defer rec.Close()

	sched := scheduler.NewScheduler(ctx, engine, quotes, sender, rec, m, req, log)
	if err := sched.RegisterAll(cfg.Schedule.QuotesCron, cfg.Schedule.DailyCron, cfg.Schedule.WeeklyCron); err != nil {
		log.Fatal().Err(err).Msg("register cron tasks")
	}
	sched.Start()
	defer sched.Stop()

	if telegram != nil {
		go telegram.StartPolling(ctx, sched.HandleCommand)
		log.Info().Msg("telegram polling started")
	}

	handler := api.NewHandler(engine, provider, log)
	server := api.NewServer(handler, m, log,
		api.WithAddr(cfg.Server.Addr),
		api.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
	)
	if err := server.Start(); err != nil {
		log.Fatal().Err(err).Msg("start http server")
	}

	if os.Getenv("RUN_ON_START") == "true" {
		log.Info().Msg("RUN_ON_START enabled, executing daily report now")
		go func() {
			if err := sched.RunNow(scheduler.JobDailyReport); err != nil {
				log.Error().Err(err).Msg("startup report failed")
			}
		}()
	}

	log.Info().Str("addr", cfg.Server.Addr).Msg("MiningPulse is running. Press Ctrl+C to stop.")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Info().Msg("shutdown signal received, stopping...")
	cancel()
	shutdownCtx, done := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout+time.Second)
	defer done()
	if err := server.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown")
	}
	log.Info().Msg("MiningPulse stopped")
}

// newFetcher returns nil when live quotes are disabled.
func newFetcher(cfg *config.Config) collector.Fetcher {
	switch cfg.Quotes.Source {
	case "rest":
		return collector.NewRESTFetcher(cfg.Quotes.BaseURL, cfg.Quotes.APIKey, cfg.Proxy)
	case "mock":
		return &collector.MockFetcher{Price: 2500}
	case "none":
		return nil
	}
	return collector.NewYahooFetcher(cfg.Proxy, cfg.Quotes.RatePerSecond)
}

// newQuoteCache prefers redis when configured and reachable, otherwise memory.
func newQuoteCache(ctx context.Context, cfg *config.Config, log zerolog.Logger) (cache.BytesCache, func()) {
	if cfg.Cache.Backend != "redis" {
		return cache.NewTTLCache(), func() {}
	}
	rc := cache.NewRedisCache(cfg.Cache.Redis)
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := rc.Ping(pingCtx); err != nil {
		log.Warn().Err(err).Str("addr", cfg.Cache.Redis.Addr).Msg("redis unreachable, using in-memory quote cache")
		_ = rc.Close()
		return cache.NewTTLCache(), func() {}
	}
	log.Info().Str("addr", cfg.Cache.Redis.Addr).Msg("quote cache on redis")
	return rc, func() { _ = rc.Close() }
}

func newRecorder(cfg *config.Config, log zerolog.Logger) recorder.Recorder {
	if cfg.Database.SQLitePath == "" {
		return recorder.NewNoopRecorder()
	}
	sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath, log)
	if err != nil {
		log.Warn().Err(err).Msg("init sqlite recorder failed, using noop")
		return recorder.NewNoopRecorder()
	}
	return sr
}
