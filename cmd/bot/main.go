package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Nixiestone/smcbot/config"
	"github.com/Nixiestone/smcbot/internal/bot"
	"github.com/Nixiestone/smcbot/internal/database"
	"github.com/Nixiestone/smcbot/internal/market"
	"github.com/Nixiestone/smcbot/internal/ml"
	"github.com/Nixiestone/smcbot/internal/provider"
	sig "github.com/Nixiestone/smcbot/internal/signal"
	"github.com/Nixiestone/smcbot/internal/telegram"
	"github.com/Nixiestone/smcbot/models"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("loading configuration failed")
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client := provider.NewClient(provider.ClientOptions{
		BaseURL:        cfg.ProviderBaseURL,
		APIKey:         cfg.ProviderAPIKey,
		RequestTimeout: time.Duration(cfg.RequestTimeout) * time.Second,
	})

	db, err := database.New(database.ConnectionParams{
		Host:     cfg.DBHost,
		Port:     cfg.DBPort,
		User:     cfg.DBUser,
		Password: cfg.DBPassword,
		DBName:   cfg.DBName,
		SSLMode:  cfg.DBSSLMode,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("connecting to database failed")
	}
	defer db.Close()

	engine := ml.NewEngine(cfg.MLTrainingThreshold)
	if samples, err := db.TrainingSamples(ctx); err != nil {
		log.Warn().Err(err).Msg("loading training ledger failed, starting with rule-based scorer")
	} else {
		engine.Retrain(samples)
	}

	manager := sig.NewManager(cfg, client, engine, db)
	builder := market.NewBuilder(client, cfg)

	var notifier models.Notifier
	if cfg.TelegramToken != "" {
		tg, err := telegram.New(cfg.TelegramToken, cfg.TelegramAdminID, db,
			func(ctx context.Context) (models.WinRateStats, int) {
				stats, err := db.GetWinRate(ctx)
				if err != nil {
					log.Error().Err(err).Msg("loading win rate failed")
					stats = manager.WinRate()
				}
				return stats, manager.ActiveCount()
			})
		if err != nil {
			log.Fatal().Err(err).Msg("starting telegram bot failed")
		}
		go tg.Run(ctx)
		notifier = tg
	} else {
		log.Warn().Msg("TELEGRAM_BOT_TOKEN not set, signals will only be logged")
	}

	runner := bot.NewRunner(cfg, builder, manager, engine, db, notifier)
	if err := runner.Run(ctx); err != nil && ctx.Err() == nil {
		log.Fatal().Err(err).Msg("runner stopped unexpectedly")
	}

	log.Info().Msg("shutdown complete")
}
