package report

import (
	"context"
	"errors"
	"fmt"
	"time"

	"animalrescue/pkg/types"

	"github.com/sirupsen/logrus"
)

// SessionReader is the identity gate as seen by the workflow.
type SessionReader interface {
	Session() *types.Session
}

type ReportDecider interface {
	Report(ctx context.Context, id string) (*types.Report, error)
	DecideReport(ctx context.Context, id string, decision types.ReportDecision) (bool, error)
}

type Refresher interface {
	Refresh(ctx context.Context) error
}

// Workflow applies reviewer decisions to pending reports.
type Workflow struct {
	sessions SessionReader
	reports  ReportDecider
	reviews  Refresher
	logger   logrus.FieldLogger
	now      func() time.Time
}

func NewWorkflow(sessions SessionReader, reports ReportDecider, reviews Refresher, logger logrus.FieldLogger) *Workflow {
	return &Workflow{
		sessions: sessions,
		reports:  reports,
		reviews:  reviews,
		logger:   logger,
		now:      time.Now,
	}
}

// Decide moves a pending report to outcome on behalf of the signed in
// reviewer. Only pending reports can be decided and only accepted or declined
// are valid outcomes.
func (w *Workflow) Decide(ctx context.Context, reportID string, outcome types.ReportStatus) error {
	session := w.sessions.Session()
	if session == nil {
		return types.ErrUnauthorized
	}

	if !types.ReportStatusPending.CanTransitionTo(outcome) {
		return fmt.Errorf("%w: %q is not a decision", types.ErrInvalidTransition, outcome)
	}

	logger := w.logger.WithFields(logrus.Fields{
		"report_id":   reportID,
		"reviewer_id": session.ReviewerID,
		"outcome":     outcome,
	})

	current, err := w.reports.Report(ctx, reportID)
	if err != nil {
		return fmt.Errorf("%w: %w", types.ErrDecisionFailed, err)
	}

	if current.Status.Terminal() {
		logger.WithField("status", current.Status).Info("report already decided")
		return fmt.Errorf("%w: report %s is already %s", types.ErrInvalidTransition, reportID, current.Status)
	}
	if !current.Status.CanTransitionTo(outcome) {
		return fmt.Errorf("%w: %s to %s", types.ErrInvalidTransition, current.Status, outcome)
	}

	updatedAt := w.now().UTC()
	if !updatedAt.After(current.CreatedAt) {
		updatedAt = current.CreatedAt.Add(time.Microsecond)
	}

	ok, err := w.reports.DecideReport(ctx, reportID, types.ReportDecision{
		Status:    outcome,
		NgoID:     session.ReviewerID,
		UpdatedAt: updatedAt,
	})
	if err != nil {
		logger.WithError(err).Error("failed to record decision")
		return fmt.Errorf("%w: %w", types.ErrDecisionFailed, err)
	}
	if !ok {
		logger.Warn("report was decided by another reviewer")
		return fmt.Errorf("%w: report %s is no longer pending", types.ErrInvalidTransition, reportID)
	}

	logger.Info("report decided")

	if err := w.reviews.Refresh(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.WithError(err).Warn("failed to refresh reports after decision")
	}

	return nil
}
