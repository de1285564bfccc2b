package main

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/coalwatch/coalwatch/internal/alert"
	"github.com/coalwatch/coalwatch/internal/blob"
	"github.com/coalwatch/coalwatch/internal/config"
	"github.com/coalwatch/coalwatch/internal/database"
	"github.com/coalwatch/coalwatch/internal/domain"
	"github.com/coalwatch/coalwatch/internal/openelec"
	"github.com/coalwatch/coalwatch/internal/pipeline"
	"github.com/coalwatch/coalwatch/internal/repository"
)

// The refresher runs the snapshot pipeline once and exits non-zero on
// failure, so an external scheduler can retry on its own cadence. With
// REFRESH_INTERVAL set it instead loops serially, logging failures and
// keeping the previous snapshot live.
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
	}

	resolver := pipeline.NewResolver(client, times)
	reconciler := pipeline.NewReconciler(resolver, alerts, times)
	publisher := pipeline.NewPublisher(store, config.SnapshotKey())
	refresher := pipeline.NewRefresher(client, reconciler, publisher, history, times)

	interval := config.RefreshInterval()
	if interval <= 0 {
		if _, err := refresher.Run(ctx); err != nil {
			log.Fatal().Err(err).Msg("refresh failed")
		}
		return
	}

	log.Info().Dur("interval", interval).Msg("refresher running")
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		if _, err := refresher.Run(ctx); err != nil {
			log.Error().Err(err).Msg("refresh failed")
		}
		<-ticker.C
	}
}
