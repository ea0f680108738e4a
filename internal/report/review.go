package report

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"animalrescue/pkg/types"

	"github.com/sirupsen/logrus"
)

type ReportLister interface {
	ListReports(ctx context.Context) ([]*types.Report, error)
}

// ReviewStore caches the full report set for reviewers. A failed fetch keeps
// the previous set.
type ReviewStore struct {
	reports ReportLister
	logger  logrus.FieldLogger

	mu     sync.Mutex
	cached []types.Report
	loaded bool
}

func NewReviewStore(reports ReportLister, logger logrus.FieldLogger) *ReviewStore {
	return &ReviewStore{reports: reports, logger: logger}
}

// List fetches every report, newest first, and replaces the cached set.
func (s *ReviewStore) List(ctx context.Context) ([]*types.Report, error) {
	if err := s.Refresh(ctx); err != nil {
		return nil, err
	}

	return s.Snapshot(), nil
}

// Refresh replaces the cached set wholesale.
func (s *ReviewStore) Refresh(ctx context.Context) error {
	fetched, err := s.reports.ListReports(ctx)
	if err != nil {
		s.logger.WithError(err).Error("failed to fetch reports")
		return fmt.Errorf("%w: %w", types.ErrFetchFailed, err)
	}

	next := make([]types.Report, 0, len(fetched))
	for _, r := range fetched {
		if r == nil {
			continue
		}
		next = append(next, *r)
	}
	sort.SliceStable(next, func(i, j int) bool {
		return next[i].CreatedAt.After(next[j].CreatedAt)
	})

	s.mu.Lock()
	s.cached = next
	s.loaded = true
	s.mu.Unlock()

	return nil
}

// Snapshot returns a copy of the cached set without fetching.
func (s *ReviewStore) Snapshot() []*types.Report {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*types.Report, len(s.cached))
	for i := range s.cached {
		r := s.cached[i]
		out[i] = &r
	}
	return out
}

// Loaded reports whether any fetch has succeeded yet.
func (s *ReviewStore) Loaded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.loaded
}
