// CivicMesh - Civic Issue Intelligence and Real-Time Alerting
// Copyright 2026 Civic Mind contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/civic-mind/civicmesh

package synthesis

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/civic-mind/civicmesh/internal/logging"
	"github.com/civic-mind/civicmesh/internal/metrics"
	"github.com/civic-mind/civicmesh/internal/models"
)

const (
	maxSummaryLen        = 100
	maxRecommendationLen = 80
	defaultConfidence    = 75
)

// ErrMalformedSummary marks a summarizer draft that is missing required
// fields. It routes the call onto the fallback path.
var ErrMalformedSummary = errors.New("synthesis: summarizer returned malformed draft")

// ErrNoSummarizer is returned when synthesis runs without a backend; every
// cluster then takes the fallback path.
var ErrNoSummarizer = errors.New("synthesis: no summarizer configured")

// Summary is the raw draft a summarizer produces for one cluster.
type Summary struct {
	Summary        string
	Recommendation string
	Severity       models.Severity
	// Confidence is the summarizer's self-assessed confidence in [0, 100].
	// nil means the summarizer did not report one.
	Confidence *int
	Model      string
}

// Summarizer synthesizes a draft for a cluster. Implementations are
// expected to honor ctx cancellation: the orchestrator imposes a deadline
// so a slow backend cannot stall the batch.
type Summarizer interface {
	Summarize(ctx context.Context, cluster *models.Cluster) (*Summary, error)
}

// Config controls the orchestrator's breaker and timeout policy.
type Config struct {
	// Timeout bounds each individual summarizer call.
	Timeout time.Duration

	// FailureThreshold is the consecutive-failure count that opens the
	// breaker.
	FailureThreshold uint32

	// RecoveryTimeout is how long the breaker stays open before allowing a
	// half-open probe.
	RecoveryTimeout time.Duration

	// MonitoringPeriod is the rolling window over which closed-state
	// failure counts are reset.
	MonitoringPeriod time.Duration

	// RateLimit caps summarizer calls per second. Zero means unlimited.
	RateLimit float64
}

// DefaultConfig mirrors the production defaults: five consecutive failures
// open the breaker, which recovers after thirty seconds.
func DefaultConfig() Config {
	return Config{
		Timeout:          10 * time.Second,
		FailureThreshold: 5,
		RecoveryTimeout:  30 * time.Second,
		MonitoringPeriod: time.Minute,
	}
}

// Orchestrator coordinates summarizer calls for the pipeline. A single
// instance is shared across concurrent synthesis calls; the breaker
// serializes its own state transitions.
type Orchestrator struct {
	summarizer Summarizer
	breaker    *gobreaker.CircuitBreaker[*Summary]
	limiter    *rate.Limiter
	timeout    time.Duration
	now        func() time.Time
}

// NewOrchestrator creates an orchestrator around the given summarizer.
func NewOrchestrator(summarizer Summarizer, cfg Config) *Orchestrator {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultConfig().Timeout
	}
	if cfg.FailureThreshold == 0 {
		cfg.FailureThreshold = DefaultConfig().FailureThreshold
	}
	if cfg.RecoveryTimeout <= 0 {
		cfg.RecoveryTimeout = DefaultConfig().RecoveryTimeout
	}

	settings := gobreaker.Settings{
		Name:        "summarizer",
		MaxRequests: 1,
		Interval:    cfg.MonitoringPeriod,
		Timeout:     cfg.RecoveryTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("circuit breaker state change")
			publishBreakerState(to)
		},
	}

	var limiter *rate.Limiter
	if cfg.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), 1)
	}

	return &Orchestrator{
		summarizer: summarizer,
		breaker:    gobreaker.NewCircuitBreaker[*Summary](settings),
		limiter:    limiter,
		timeout:    cfg.Timeout,
		now:        time.Now,
	}
}

// BreakerState returns the breaker state as a string, for health reporting.
func (o *Orchestrator) BreakerState() string {
	return o.breaker.State().String()
}

// Synthesize produces an alert for the cluster. It never returns an error:
// the worst case is a lower-confidence deterministic fallback. Processing
// time is measured end to end, fallback path included.
func (o *Orchestrator) Synthesize(ctx context.Context, cluster *models.Cluster) *models.Alert {
	start := o.now()

	draft, err := o.callSummarizer(ctx, cluster)
	if err == nil {
		err = validateDraft(draft)
	}

	var alert *models.Alert
	if err != nil {
		reason := fallbackReason(err)
		metrics.SynthesisFallbacks.WithLabelValues(reason).Inc()
		logging.Warn().
			Err(err).
			Str("cluster", cluster.ID).
			Str("reason", reason).
			Msg("synthesis fell back to deterministic alert")
		alert = fallbackAlert(cluster, reason, o.now().UTC())
	} else {
		alert = o.buildAlert(cluster, draft)
	}

	elapsed := o.now().Sub(start)
	alert.Metadata.ProcessingTime = elapsed
	metrics.RecordSynthesis(elapsed, alert.Metadata.FallbackUsed)
	publishBreakerState(o.breaker.State())

	logging.Info().
		Str("cluster", cluster.ID).
		Str("alert", alert.ID).
		Bool("fallback", alert.Metadata.FallbackUsed).
		Int("confidence", alert.Confidence).
		Dur("elapsed", elapsed).
		Msg("cluster synthesized")
	return alert
}

// callSummarizer runs the summarizer behind the rate limiter and breaker
// with a per-call deadline. No directory lock is held here; the call may
// block on network I/O.
func (o *Orchestrator) callSummarizer(ctx context.Context, cluster *models.Cluster) (*Summary, error) {
	if o.summarizer == nil {
		return nil, ErrNoSummarizer
	}

	if o.limiter != nil {
		if err := o.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	return o.breaker.Execute(func() (*Summary, error) {
		callCtx, cancel := context.WithTimeout(ctx, o.timeout)
		defer cancel()
		return o.summarizer.Summarize(callCtx, cluster)
	})
}

// buildAlert validates and normalizes a successful draft into an alert.
func (o *Orchestrator) buildAlert(cluster *models.Cluster, draft *Summary) *models.Alert {
	severity := draft.Severity
	if !severity.Valid() {
		logging.Warn().
			Str("cluster", cluster.ID).
			Str("severity", string(draft.Severity)).
			Msg("invalid severity from summarizer, coercing to MEDIUM")
		severity = models.SeverityMedium
	}

	confidence := defaultConfidence
	if draft.Confidence != nil {
		confidence = clamp(*draft.Confidence, 0, 100)
	}

	model := draft.Model
	if model == "" {
		model = "unknown"
	}

	return &models.Alert{
		ID:             uuid.New().String(),
		Summary:        truncate(draft.Summary, maxSummaryLen),
		Recommendation: truncate(draft.Recommendation, maxRecommendationLen),
		Severity:       severity,
		Confidence:     confidence,
		Location:       cluster.Center,
		EventIDs:       cluster.EventIDs(),
		Timestamp:      o.now().UTC(),
		Metadata: models.SynthesisMetadata{
			Model:        model,
			FallbackUsed: false,
		},
	}
}

func validateDraft(draft *Summary) error {
	if draft == nil || draft.Summary == "" || draft.Recommendation == "" {
		return ErrMalformedSummary
	}
	return nil
}

func fallbackReason(err error) string {
	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return "breaker_open"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, ErrMalformedSummary):
		return "malformed"
	default:
		return "error"
	}
}

func publishBreakerState(state gobreaker.State) {
	var v float64
	switch state {
	case gobreaker.StateClosed:
		v = 0
	case gobreaker.StateHalfOpen:
		v = 1
	case gobreaker.StateOpen:
		v = 2
	}
	metrics.BreakerState.Set(v)
}

// truncate shortens s to at most max characters, terminating with an
// ellipsis when anything was cut. Counting runes rather than bytes keeps
// multi-byte text valid UTF-8 after the cut.
func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	if max <= 3 {
		return string(r[:max])
	}
	return string(r[:max-3]) + "..."
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
