// Package app wires configuration, adapters and use cases into a running
// pipeline. Both the service and the CLI build on it.
package app

import (
	"context"
	"fmt"

	"veritas/internal/config"
	"veritas/internal/domain"
	"veritas/internal/infra/capability"
	"veritas/internal/infra/db"
	"veritas/internal/infra/metrics"
	"veritas/internal/infra/policymod"
	"veritas/internal/infra/queue"
	"veritas/internal/infra/ratelimit"
	"veritas/internal/infra/recordmem"
	"veritas/internal/usecase"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
)

type Options struct {
	// MemoryQueue replaces the sqlite queue with a process-local one.
	MemoryQueue bool
	// Online is the initial connectivity state.
	Online bool
	// WithMetrics registers Prometheus collectors.
	WithMetrics bool
}

type App struct {
	Cfg config.Config
	Log zerolog.Logger

	Capabilities *capability.Set
	Orchestrator *usecase.Orchestrator
	Intake       *usecase.Intake
	CoSigner     *usecase.CoSigner
	Conn         *usecase.ConnectivityState
	Progress     *usecase.ProgressBus

	Records domain.ProofRecordRepository
	Reports domain.VerificationReportRepository
	Queue   domain.OfflineQueueStore
	Limiter domain.RateLimiter

	Metrics  *metrics.Metrics
	Registry *prometheus.Registry

	queueCloser func() error
}

func New(ctx context.Context, cfg config.Config, log zerolog.Logger, opts Options) (*App, error) {
	a := &App{Cfg: cfg, Log: log}

	var policy capability.ModerationPolicy
	if cfg.ModerationBundlePath != "" {
		engine, err := policymod.NewEngineFromBundlePath(ctx, cfg.ModerationBundlePath)
		if err != nil {
			log.Warn().Err(err).Str("path", cfg.ModerationBundlePath).Msg("moderation bundle unusable, falling back to keyword scan")
		} else {
			policy = engine
		}
	}
	a.Capabilities = capability.NewSet(cfg, policy, log)

	if err := a.initRepositories(cfg, log); err != nil {
		return nil, err
	}
	if err := a.initQueue(cfg, opts); err != nil {
		return nil, err
	}
	a.initLimiter(cfg, log)

	var observer usecase.StageObserver
	if opts.WithMetrics {
		a.Registry = prometheus.NewRegistry()
		a.Metrics = metrics.New(a.Registry)
		observer = a.Metrics
	}

	a.Progress = usecase.NewProgressBus()
	a.Orchestrator = usecase.NewOrchestrator(
		gateways(a.Capabilities),
		a.Records,
		a.Reports,
		a.Progress,
		observer,
		cfg.TranslateTarget,
		log,
	)
	a.Conn = usecase.NewConnectivityState(opts.Online)
	a.Conn.OnRestored(a.Capabilities.ResetQuotas)
	a.Intake = usecase.NewIntake(a.Orchestrator, a.Queue, a.Conn, log)
	a.CoSigner = usecase.NewCoSigner(a.Reports)
	return a, nil
}

func (a *App) Close() error {
	if a.queueCloser != nil {
		return a.queueCloser()
	}
	return nil
}

func (a *App) initRepositories(cfg config.Config, log zerolog.Logger) error {
	store, err := db.NewStore(cfg, log)
	if err != nil {
		return fmt.Errorf("init store: %w", err)
	}
	if store.Available() {
		if err := store.Migrate(); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		a.Records = db.NewProofRecordRepository(store.DB)
		a.Reports = db.NewVerificationReportRepository(store.DB)
		return nil
	}
	a.Records = recordmem.NewProofRecordRepository()
	a.Reports = recordmem.NewVerificationReportRepository()
	return nil
}

func (a *App) initQueue(cfg config.Config, opts Options) error {
	if opts.MemoryQueue {
		a.Queue = queue.NewMemoryStore()
		return nil
	}
	store, err := queue.OpenSQLiteStore(cfg.QueueDBPath)
	if err != nil {
		return fmt.Errorf("open offline queue: %w", err)
	}
	a.Queue = store
	a.queueCloser = store.Close
	return nil
}

func (a *App) initLimiter(cfg config.Config, log zerolog.Logger) {
	if cfg.RedisAddr != "" {
		limiter, err := ratelimit.NewRedisLimiter(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, nil)
		if err == nil {
			a.Limiter = limiter
			return
		}
		log.Warn().Err(err).Msg("redis limiter unavailable, using in-memory limiter")
	}
	a.Limiter = ratelimit.NewMemoryLimiter(cfg.RateLimitMaxKeys, nil)
}

func gateways(set *capability.Set) usecase.Gateways {
	return usecase.Gateways{
		Moderation:    set.Moderation,
		Hashing:       set.Hashing,
		Transcription: set.Transcription,
		Analysis:      set.Analysis,
		Storage:       set.Storage,
		Anchor:        set.Anchor,
		Deepfake:      set.Deepfake,
		ImageCheck:    set.ImageCheck,
		Narration:     set.Narration,
		Translation:   set.Translation,
	}
}
