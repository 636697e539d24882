// CivicMesh - Civic Issue Intelligence and Real-Time Alerting
// Copyright 2026 Civic Mind contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/civic-mind/civicmesh

package synthesis

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/civic-mind/civicmesh/internal/models"
)

// fakeSummarizer returns a scripted draft or error for every call.
type fakeSummarizer struct {
	draft *Summary
	err   error
	calls int
}

func (f *fakeSummarizer) Summarize(_ context.Context, _ *models.Cluster) (*Summary, error) {
	f.calls++
	return f.draft, f.err
}

func testCluster() *models.Cluster {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	return &models.Cluster{
		ID: "cluster-1",
		Events: []models.Event{
			{ID: "e1", Category: "pothole", Severity: models.SeverityHigh, Timestamp: now},
			{ID: "e2", Category: "pothole", Severity: models.SeverityLow, Timestamp: now},
			{ID: "e3", Category: "pothole", Severity: models.SeverityLow, Timestamp: now},
		},
		Center:     models.Location{Latitude: 37.7749, Longitude: -122.4194, Area: "Mission"},
		Radius:     500,
		Severity:   models.SeverityHigh,
		Categories: []models.Category{"pothole"},
	}
}

func intPtr(v int) *int { return &v }

func TestSynthesize_SuccessfulDraft(t *testing.T) {
	f := &fakeSummarizer{draft: &Summary{
		Summary:        "Three pothole reports on Main St",
		Recommendation: "Dispatch a road crew",
		Severity:       models.SeverityHigh,
		Confidence:     intPtr(90),
		Model:          "test-model",
	}}
	o := NewOrchestrator(f, DefaultConfig())

	alert := o.Synthesize(context.Background(), testCluster())

	if alert.Metadata.FallbackUsed {
		t.Error("successful draft must not be marked as fallback")
	}
	if alert.Summary != "Three pothole reports on Main St" {
		t.Errorf("Summary = %q", alert.Summary)
	}
	if alert.Confidence != 90 {
		t.Errorf("Confidence = %d, want 90", alert.Confidence)
	}
	if alert.Severity != models.SeverityHigh {
		t.Errorf("Severity = %v", alert.Severity)
	}
	if alert.Metadata.Model != "test-model" {
		t.Errorf("Model = %q", alert.Metadata.Model)
	}
	if len(alert.EventIDs) != 3 {
		t.Errorf("EventIDs = %v, want the cluster's three events", alert.EventIDs)
	}
	if alert.ID == "" {
		t.Error("alert must be assigned an id")
	}
}

func TestSynthesize_FallbackOnError(t *testing.T) {
	f := &fakeSummarizer{err: errors.New("backend unavailable")}
	o := NewOrchestrator(f, DefaultConfig())

	alert := o.Synthesize(context.Background(), testCluster())

	if !alert.Metadata.FallbackUsed {
		t.Fatal("summarizer error must take the fallback path")
	}
	if alert.Confidence != fallbackConfidence {
		t.Errorf("Confidence = %d, want %d", alert.Confidence, fallbackConfidence)
	}
	if alert.Severity != models.SeverityHigh {
		t.Errorf("fallback severity = %v, want the cluster severity", alert.Severity)
	}
	if alert.Metadata.Model != "fallback" {
		t.Errorf("Model = %q, want fallback", alert.Metadata.Model)
	}
	if !strings.Contains(alert.Summary, "pothole") {
		t.Errorf("fallback summary %q should name the category", alert.Summary)
	}
	if !strings.Contains(alert.Summary, "3 events") {
		t.Errorf("fallback summary %q should carry the event count", alert.Summary)
	}
}

func TestSynthesize_MalformedDraft(t *testing.T) {
	tests := []struct {
		name  string
		draft *Summary
	}{
		{"nil draft", nil},
		{"missing summary", &Summary{Recommendation: "do something"}},
		{"missing recommendation", &Summary{Summary: "something happened"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := NewOrchestrator(&fakeSummarizer{draft: tt.draft}, DefaultConfig())
			alert := o.Synthesize(context.Background(), testCluster())

			if !alert.Metadata.FallbackUsed {
				t.Fatal("malformed draft must take the fallback path")
			}
			if alert.Confidence != malformedConfidence {
				t.Errorf("Confidence = %d, want %d", alert.Confidence, malformedConfidence)
			}
		})
	}
}

func TestSynthesize_NilSummarizer(t *testing.T) {
	o := NewOrchestrator(nil, DefaultConfig())
	alert := o.Synthesize(context.Background(), testCluster())

	if !alert.Metadata.FallbackUsed {
		t.Error("nil summarizer must take the fallback path")
	}
	if alert.Confidence != fallbackConfidence {
		t.Errorf("Confidence = %d, want %d", alert.Confidence, fallbackConfidence)
	}
}

func TestSynthesize_SummaryTruncation(t *testing.T) {
	longSummary := strings.Repeat("a", 150)
	longRec := strings.Repeat("b", 120)
	f := &fakeSummarizer{draft: &Summary{
		Summary:        longSummary,
		Recommendation: longRec,
		Severity:       models.SeverityLow,
	}}
	o := NewOrchestrator(f, DefaultConfig())

	alert := o.Synthesize(context.Background(), testCluster())

	if len(alert.Summary) != maxSummaryLen {
		t.Errorf("len(Summary) = %d, want %d", len(alert.Summary), maxSummaryLen)
	}
	if !strings.HasSuffix(alert.Summary, "...") {
		t.Errorf("truncated summary must end with ellipsis: %q", alert.Summary)
	}
	if len(alert.Recommendation) != maxRecommendationLen {
		t.Errorf("len(Recommendation) = %d, want %d", len(alert.Recommendation), maxRecommendationLen)
	}
	if !strings.HasSuffix(alert.Recommendation, "...") {
		t.Errorf("truncated recommendation must end with ellipsis: %q", alert.Recommendation)
	}
}

func TestSynthesize_ConfidenceNormalization(t *testing.T) {
	tests := []struct {
		name       string
		confidence *int
		want       int
	}{
		{"missing defaults to 75", nil, defaultConfidence},
		{"above range clamps to 100", intPtr(150), 100},
		{"below range clamps to 0", intPtr(-10), 0},
		{"in range passes through", intPtr(42), 42},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &fakeSummarizer{draft: &Summary{
				Summary:        "s",
				Recommendation: "r",
				Severity:       models.SeverityLow,
				Confidence:     tt.confidence,
			}}
			o := NewOrchestrator(f, DefaultConfig())
			alert := o.Synthesize(context.Background(), testCluster())
			if alert.Confidence != tt.want {
				t.Errorf("Confidence = %d, want %d", alert.Confidence, tt.want)
			}
		})
	}
}

func TestSynthesize_InvalidSeverityCoerced(t *testing.T) {
	f := &fakeSummarizer{draft: &Summary{
		Summary:        "s",
		Recommendation: "r",
		Severity:       models.Severity("CATASTROPHIC"),
	}}
	o := NewOrchestrator(f, DefaultConfig())

	alert := o.Synthesize(context.Background(), testCluster())
	if alert.Severity != models.SeverityMedium {
		t.Errorf("Severity = %v, want MEDIUM for an unknown draft severity", alert.Severity)
	}
	if alert.Metadata.FallbackUsed {
		t.Error("invalid severity is normalized, not a fallback")
	}
}

func TestSynthesize_BreakerOpensAfterConsecutiveFailures(t *testing.T) {
	f := &fakeSummarizer{err: errors.New("backend down")}
	cfg := DefaultConfig()
	cfg.FailureThreshold = 3
	o := NewOrchestrator(f, cfg)

	cluster := testCluster()
	for i := 0; i < 5; i++ {
		alert := o.Synthesize(context.Background(), cluster)
		if !alert.Metadata.FallbackUsed {
			t.Fatalf("call %d: expected fallback", i)
		}
	}

	if o.BreakerState() != "open" {
		t.Errorf("BreakerState() = %q, want open after 3 consecutive failures", o.BreakerState())
	}
	// The open breaker short-circuits: the backend stops being called.
	if f.calls != 3 {
		t.Errorf("summarizer called %d times, want 3 before the breaker opened", f.calls)
	}
}

func TestSynthesize_UnknownModelLabel(t *testing.T) {
	f := &fakeSummarizer{draft: &Summary{
		Summary:        "s",
		Recommendation: "r",
		Severity:       models.SeverityLow,
	}}
	o := NewOrchestrator(f, DefaultConfig())

	alert := o.Synthesize(context.Background(), testCluster())
	if alert.Metadata.Model != "unknown" {
		t.Errorf("Model = %q, want unknown when the draft names none", alert.Metadata.Model)
	}
}

func TestFallbackSummary_MultipleCategories(t *testing.T) {
	cluster := testCluster()
	cluster.Categories = []models.Category{"pothole", "streetlight"}

	got := fallbackSummary(cluster)
	if !strings.HasPrefix(got, "Multiple issues reported:") {
		t.Errorf("fallbackSummary() = %q", got)
	}
	if !strings.Contains(got, "pothole") || !strings.Contains(got, "streetlight") {
		t.Errorf("fallbackSummary() = %q, should list every category", got)
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		name string
		in   string
		max  int
		want string
	}{
		{"short passes through", "hello", 10, "hello"},
		{"exact length passes through", "hello", 5, "hello"},
		{"truncated with ellipsis", "hello world", 8, "hello..."},
		{"tiny max keeps no ellipsis", "hello", 2, "he"},
		{"multi-byte runes counted as one", "señal de tráfico rota", 9, "señal ..."},
		{"cut lands between runes", "日本語のテキスト", 5, "日本..."},
		{"tiny max on multi-byte input", "日本語", 2, "日本"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := truncate(tt.in, tt.max)
			if got != tt.want {
				t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
			}
			if !utf8.ValidString(got) {
				t.Errorf("truncate(%q, %d) produced invalid UTF-8: %q", tt.in, tt.max, got)
			}
		})
	}
}

func TestStaticSummarizer(t *testing.T) {
	s := NewStaticSummarizer()
	draft, err := s.Summarize(context.Background(), testCluster())
	if err != nil {
		t.Fatalf("Summarize() error = %v", err)
	}
	if draft.Summary == "" || draft.Recommendation == "" {
		t.Errorf("static draft incomplete: %+v", draft)
	}
	if draft.Severity != models.SeverityHigh {
		t.Errorf("Severity = %v, want the cluster severity", draft.Severity)
	}
	if draft.Confidence == nil || *draft.Confidence != 85 {
		t.Errorf("Confidence = %v, want 85", draft.Confidence)
	}
	if !strings.Contains(draft.Summary, "Mission") {
		t.Errorf("Summary = %q, should mention the cluster area", draft.Summary)
	}
}
