// Package insight is the stateful shell around the pure engine: it loads
// the stored matrix, runs the analysis, caches the current report and fans
// out refresh notifications.
package insight

import (
	"context"
	"fmt"
	"sync"

	"github.com/minsuk/revpulse/internal/engine"
	"github.com/minsuk/revpulse/pkg/logger"
)

// MatrixSource loads the current revenue matrix
type MatrixSource interface {
	LoadMatrix(ctx context.Context) (*engine.Matrix, error)
}

// SnapshotStore persists computed reports; may be nil-like no-op in tests
type SnapshotStore interface {
	SaveSnapshot(ctx context.Context, report *engine.Report) error
}

// Service computes and caches the current report. The engine itself holds
// no state between calls; this service is the only place a report lives.
type Service struct {
	source    MatrixSource
	snapshots SnapshotStore
	logger    *logger.Logger

	mu        sync.RWMutex
	report    *engine.Report
	listeners []func(*engine.Report)
}

// New creates the insight service. snapshots may be nil to skip persistence.
func New(source MatrixSource, snapshots SnapshotStore, log *logger.Logger) *Service {
	return &Service{
		source:    source,
		snapshots: snapshots,
		logger:    log,
	}
}

// OnRefresh registers a callback invoked after every successful refresh.
// Callbacks run synchronously on the refreshing goroutine; keep them cheap.
func (s *Service) OnRefresh(fn func(*engine.Report)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// Refresh reloads the matrix, recomputes the report and caches it
func (s *Service) Refresh(ctx context.Context) (*engine.Report, error) {
	matrix, err := s.source.LoadMatrix(ctx)
	if err != nil {
		return nil, fmt.Errorf("load matrix: %w", err)
	}

	report := engine.Analyze(matrix)

	if s.snapshots != nil {
		// A failed snapshot write must not fail the refresh
		if err := s.snapshots.SaveSnapshot(ctx, report); err != nil {
			s.logger.WithError(err).Warn("Failed to persist report snapshot")
		}
	}

	s.mu.Lock()
	s.report = report
	listeners := make([]func(*engine.Report), len(s.listeners))
	copy(listeners, s.listeners)
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(report)
	}

	s.logger.WithFields(map[string]interface{}{
		"months":    len(report.Months),
		"customers": len(report.Customers),
		"cohorts":   len(report.Cohorts),
		"issues":    len(report.Issues),
	}).Info("Report refreshed")

	return report, nil
}

// Report returns the cached report, computing it on first use
func (s *Service) Report(ctx context.Context) (*engine.Report, error) {
	s.mu.RLock()
	report := s.report
	s.mu.RUnlock()

	if report != nil {
		return report, nil
	}

	return s.Refresh(ctx)
}
