// Package capability exposes each external dependency through a uniform
// gateway: a bounded-timeout real call when the dependency is configured,
// and deterministic degraded synthesis when it is not, when it fails, or
// when its quota circuit breaker is open.
package capability

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"veritas/internal/domain"

	"github.com/rs/zerolog"
)

const (
	failureKindQuota     = "quota"
	failureKindTransient = "transient"
	failureKindTerminal  = "terminal"
)

type callError struct {
	kind   string
	status int
	err    error
}

func (e *callError) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s failure: %v", e.kind, e.err)
	}
	return fmt.Sprintf("%s failure: status %d", e.kind, e.status)
}

func (e *callError) Unwrap() error { return e.err }

// client is the shared gateway base. The quota flag is the per-gateway
// circuit breaker: once set, invoke short-circuits to mock synthesis
// without touching the network until ResetQuota.
type client struct {
	name     string
	endpoint string
	apiKey   string
	timeout  time.Duration
	http     *http.Client
	quota    atomic.Bool
	log      zerolog.Logger
}

func newClient(name, endpoint, apiKey string, timeout time.Duration, log zerolog.Logger) *client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &client{
		name:     name,
		endpoint: strings.TrimRight(endpoint, "/"),
		apiKey:   apiKey,
		timeout:  timeout,
		http:     &http.Client{Timeout: timeout},
		log:      log.With().Str("capability", name).Logger(),
	}
}

func (c *client) Available() bool {
	return c != nil && c.endpoint != ""
}

func (c *client) QuotaExceeded() bool {
	return c != nil && c.quota.Load()
}

func (c *client) ResetQuota() {
	if c != nil {
		c.quota.Store(false)
	}
}

// invoke attempts the real call with one retry on transient failure, then
// falls back to mock synthesis. It never returns an error to the caller:
// the only failure surfaced upward is carried inside the result.
func invoke[I, O any](ctx context.Context, c *client, path string, input I, mock func(I) O) domain.CapabilityResult[O] {
	if !c.Available() || c.QuotaExceeded() {
		return domain.MockedResult(mock(input), nil)
	}
	out, err := call[O](ctx, c, path, input)
	if err == nil {
		return domain.RealResult(out)
	}
	var ce *callError
	if errors.As(err, &ce) && ce.kind == failureKindTransient {
		out, err = call[O](ctx, c, path, input)
		if err == nil {
			return domain.RealResult(out)
		}
	}
	if errors.As(err, &ce) && ce.kind == failureKindQuota {
		c.quota.Store(true)
		c.log.Warn().Int("status", ce.status).Msg("quota exceeded, opening circuit breaker")
	} else {
		c.log.Warn().Err(err).Msg("real call failed, degrading to mocked output")
	}
	return domain.MockedResult(mock(input), err)
}

func call[O any](ctx context.Context, c *client, path string, input any) (O, error) {
	var zero O
	body, err := json.Marshal(input)
	if err != nil {
		return zero, &callError{kind: failureKindTerminal, err: err}
	}
	cctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	req, err := http.NewRequestWithContext(cctx, http.MethodPost, c.endpoint+path, bytes.NewReader(body))
	if err != nil {
		return zero, &callError{kind: failureKindTerminal, err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return zero, &callError{kind: failureKindTransient, err: err}
	}
	defer resp.Body.Close()
	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return zero, &callError{kind: failureKindTransient, err: err}
	}
	switch {
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode == http.StatusPaymentRequired:
		return zero, &callError{kind: failureKindQuota, status: resp.StatusCode}
	case resp.StatusCode >= http.StatusInternalServerError:
		return zero, &callError{kind: failureKindTransient, status: resp.StatusCode}
	case resp.StatusCode != http.StatusOK:
		return zero, &callError{kind: failureKindTerminal, status: resp.StatusCode}
	}
	var out O
	if err := json.Unmarshal(payload, &out); err != nil {
		return zero, &callError{kind: failureKindTerminal, err: err}
	}
	return out, nil
}

// mockSeed derives the deterministic basis for every synthesized output.
func mockSeed(payload []byte) [32]byte {
	return sha256.Sum256(payload)
}

// seedRange maps one seed byte onto [lo, hi].
func seedRange(seed [32]byte, idx, lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + int(seed[idx%len(seed)])%(hi-lo+1)
}
