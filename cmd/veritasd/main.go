package main

import (
	"context"

	"veritas/internal/app"
	"veritas/internal/config"
	httpinfra "veritas/internal/infra/http"
	"veritas/internal/logging"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	cfg := config.FromEnv()
	log := logging.New(cfg.LogLevel, cfg.LogFormat)

	a, err := app.New(context.Background(), cfg, log, app.Options{
		Online:      true,
		WithMetrics: true,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to init pipeline")
	}
	defer a.Close()

	// Stage progress goes to the structured log.
	events, cancel := a.Progress.Subscribe(128)
	defer cancel()
	go func() {
		for ev := range events {
			log.Debug().
				Str("submission_id", ev.SubmissionID).
				Str("stage", string(ev.Stage)).
				Str("state", string(ev.State)).
				Msg("stage progress")
		}
	}()

	srv := httpinfra.NewServer(cfg, httpinfra.ServerDeps{
		Intake:         a.Intake,
		CoSigner:       a.CoSigner,
		Records:        a.Records,
		Reports:        a.Reports,
		Conn:           a.Conn,
		RateLimiter:    a.Limiter,
		MetricsHandler: promhttp.HandlerFor(a.Registry, promhttp.HandlerOpts{}),
		QueueDepth:     a.Metrics.SetQueueDepth,
	}, log)
	if err := srv.Run(); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}
