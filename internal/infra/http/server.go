// Package http exposes the verification pipeline over a JSON API.
package http

import (
	"net/http"
	"strconv"
	"time"

	"veritas/internal/config"
	"veritas/internal/domain"
	"veritas/internal/usecase"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

type Server struct {
	cfg config.Config
	r   *gin.Engine
	log zerolog.Logger

	intake   *usecase.Intake
	cosigner *usecase.CoSigner
	records  domain.ProofRecordRepository
	reports  domain.VerificationReportRepository
	conn     *usecase.ConnectivityState

	rateLimiter       domain.RateLimiter
	rateLimitRequests int
	rateLimitWindow   time.Duration

	metricsHandler http.Handler
	queueDepth     func(int)
}

type ServerDeps struct {
	Intake   *usecase.Intake
	CoSigner *usecase.CoSigner
	Records  domain.ProofRecordRepository
	Reports  domain.VerificationReportRepository
	Conn     *usecase.ConnectivityState

	RateLimiter domain.RateLimiter

	// MetricsHandler serves GET /metrics when set.
	MetricsHandler http.Handler
	// QueueDepth receives the pending count whenever it is observed.
	QueueDepth func(int)
}

func NewServer(cfg config.Config, deps ServerDeps, log zerolog.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	s := &Server{
		cfg:               cfg,
		r:                 r,
		log:               log.With().Str("component", "http").Logger(),
		intake:            deps.Intake,
		cosigner:          deps.CoSigner,
		records:           deps.Records,
		reports:           deps.Reports,
		conn:              deps.Conn,
		rateLimiter:       deps.RateLimiter,
		rateLimitRequests: cfg.RateLimitRequests,
		rateLimitWindow:   time.Duration(cfg.RateLimitWindowSeconds) * time.Second,
		metricsHandler:    deps.MetricsHandler,
		queueDepth:        deps.QueueDepth,
	}
	if s.rateLimitWindow <= 0 {
		s.rateLimitWindow = time.Minute
	}
	s.routes()
	return s
}

func (s *Server) Handler() http.Handler { return s.r }

func (s *Server) Run() error {
	s.log.Info().Str("addr", s.cfg.HTTPAddr).Msg("http server listening")
	return s.r.Run(s.cfg.HTTPAddr)
}

func (s *Server) routes() {
	s.r.GET("/healthz", s.handleHealth)
	if s.metricsHandler != nil {
		s.r.GET("/metrics", gin.WrapH(s.metricsHandler))
	}

	v1 := s.r.Group("/v1")
	v1.POST("/submissions", s.handleSubmit)
	v1.POST("/submissions/offline", s.handleEnqueue)
	v1.GET("/submissions/:id/report", s.handleGetReport)
	v1.GET("/submissions/:id/record", s.handleGetRecord)
	v1.POST("/reports/:id/cosignatures", s.handleCoSign)
	v1.GET("/queue/stats", s.handleQueueStats)
	v1.POST("/connectivity", s.handleConnectivity)
}

// enforceRateLimit applies the fixed-window limit per client and route.
// With no limiter configured every request passes.
func (s *Server) enforceRateLimit(c *gin.Context, routeID string) bool {
	if s.rateLimiter == nil || s.rateLimitRequests <= 0 {
		return true
	}
	key := "client:" + c.ClientIP() + ":route:" + routeID
	decision, err := s.rateLimiter.Allow(c.Request.Context(), key, s.rateLimitRequests, s.rateLimitWindow)
	if err != nil {
		s.log.Warn().Err(err).Msg("rate limiter unavailable, failing open")
		return true
	}
	writeRateLimitHeaders(c, decision)
	if !decision.Allowed {
		writeErrorCode(c, http.StatusTooManyRequests, "RATE_LIMITED", "rate limit exceeded")
		return false
	}
	return true
}

func writeRateLimitHeaders(c *gin.Context, decision domain.RateLimitDecision) {
	if decision.Limit > 0 {
		c.Header("RateLimit-Limit", strconv.Itoa(decision.Limit))
	}
	if decision.Remaining >= 0 {
		c.Header("RateLimit-Remaining", strconv.Itoa(decision.Remaining))
	}
	if !decision.ResetAt.IsZero() {
		c.Header("RateLimit-Reset", strconv.FormatInt(decision.ResetAt.Unix(), 10))
		if !decision.Allowed {
			retryAfter := int64(time.Until(decision.ResetAt).Seconds())
			if retryAfter < 0 {
				retryAfter = 0
			}
			c.Header("Retry-After", strconv.FormatInt(retryAfter, 10))
		}
	}
}
