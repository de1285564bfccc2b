package main

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/coalwatch/coalwatch/internal/alert"
	"github.com/coalwatch/coalwatch/internal/blob"
	"github.com/coalwatch/coalwatch/internal/config"
	"github.com/coalwatch/coalwatch/internal/database"
	"github.com/coalwatch/coalwatch/internal/domain"
	httpHandlers "github.com/coalwatch/coalwatch/internal/http"
	"github.com/coalwatch/coalwatch/internal/openelec"
	"github.com/coalwatch/coalwatch/internal/pipeline"
	"github.com/coalwatch/coalwatch/internal/repository"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	if err := config.Load(); err != nil {
		log.Fatal().Err(err).Msg("config load failed")
	}

	ctx := context.Background()
	times := domain.NewTimebase(config.NetworkTZOffsetHours(), config.UpstreamTSLocal())

	store, err := blob.NewStore(ctx, config.AWSRegion(), config.S3Bucket())
	if err != nil {
		log.Fatal().Err(err).Msg("blob store init failed")
	}

	client := openelec.New(config.UpstreamAPIURL(), config.UpstreamAPIKey(), times)

	var alerts pipeline.Alerter
	if config.UseSNSAlerts() {
		notifier, err := alert.NewNotifier(ctx, config.AWSRegion(), config.SNSTopicArn())
		if err != nil {
			log.Fatal().Err(err).Msg("sns init failed")
		}
		alerts = notifier
	}

	var history pipeline.RunRecorder
	var historySource httpHandlers.HistorySource
	if config.UseRunHistory() {
		db, err := database.Connect()
		if err != nil {
			log.Fatal().Err(err).Msg("db connect failed")
		}
		defer db.Close()
		repos := repository.New(db)
		if err := repos.EnsureSchema(ctx); err != nil {
			log.Fatal().Err(err).Msg("run history schema failed")
		}
		history = repos
		historySource = repos
	}

	resolver := pipeline.NewResolver(client, times)
	reconciler := pipeline.NewReconciler(resolver, alerts, times)
	publisher := pipeline.NewPublisher(store, config.SnapshotKey())
	refresher := pipeline.NewRefresher(client, reconciler, publisher, history, times)
	snapshots := pipeline.NewSnapshotReader(store, config.SnapshotKey())

	app := fiber.New()
	httpHandlers.Register(app, &httpHandlers.Handlers{
		Refresher: refresher,
		Snapshots: snapshots,
		History:   historySource,
		Secret:    config.RefreshSecret(),
		Times:     times,
	})

	addr := config.APIAddr()
	log.Info().Str("addr", addr).Msg("api listening")
	log.Fatal().Err(app.Listen(addr)).Msg("server exit")
}
