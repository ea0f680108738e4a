package report

import (
	"context"
	"errors"
	"testing"
	"time"

	"animalrescue/pkg/types"

	"github.com/sirupsen/logrus/hooks/test"
)

var reviewer = &types.Session{ReviewerID: "ngo-1", Email: "ngo@example.org"}

func pendingReport(id string, created time.Time) types.Report {
	return types.Report{
		ID:          id,
		Description: "injured dog",
		Status:      types.ReportStatusPending,
		CreatedAt:   created,
	}
}

func newWorkflow(t *testing.T, session *types.Session, reports *memoryReports) (*Workflow, *ReviewStore) {
	t.Helper()
	logger, _ := test.NewNullLogger()
	reviews := NewReviewStore(reports, logger)
	return NewWorkflow(staticSessions{session: session}, reports, reviews, logger), reviews
}

func TestWorkflowDecideAccept(t *testing.T) {
	reports := newMemoryReports()
	created := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	reports.add(pendingReport("r1", created))

	w, reviews := newWorkflow(t, reviewer, reports)

	if err := w.Decide(context.Background(), "r1", types.ReportStatusAccepted); err != nil {
		t.Fatalf("Decide() error = %v", err)
	}

	got := reports.get("r1")
	if got.Status != types.ReportStatusAccepted {
		t.Errorf("Status = %s, want accepted", got.Status)
	}
	if got.NgoID == nil || *got.NgoID != "ngo-1" {
		t.Errorf("NgoID = %v, want ngo-1", got.NgoID)
	}
	if got.UpdatedAt == nil || !got.UpdatedAt.After(got.CreatedAt) {
		t.Errorf("UpdatedAt = %v, want after %v", got.UpdatedAt, got.CreatedAt)
	}
	if snap := reviews.Snapshot(); len(snap) != 1 || snap[0].Status != types.ReportStatusAccepted {
		t.Errorf("review store not refreshed: %+v", snap)
	}
}

func TestWorkflowUpdatedAtAfterCreatedWithSkewedClock(t *testing.T) {
	reports := newMemoryReports()
	created := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	reports.add(pendingReport("r1", created))

	w, _ := newWorkflow(t, reviewer, reports)
	w.now = func() time.Time { return created.Add(-time.Minute) }

	if err := w.Decide(context.Background(), "r1", types.ReportStatusDeclined); err != nil {
		t.Fatalf("Decide() error = %v", err)
	}
	if got := reports.get("r1"); !got.UpdatedAt.After(got.CreatedAt) {
		t.Errorf("UpdatedAt %v not after CreatedAt %v", got.UpdatedAt, got.CreatedAt)
	}
}

func TestWorkflowDecideTerminal(t *testing.T) {
	for _, status := range []types.ReportStatus{types.ReportStatusAccepted, types.ReportStatusDeclined} {
		for _, outcome := range []types.ReportStatus{types.ReportStatusAccepted, types.ReportStatusDeclined} {
			t.Run(string(status)+"->"+string(outcome), func(t *testing.T) {
				reports := newMemoryReports()
				r := pendingReport("r1", time.Now().Add(-time.Hour))
				r.Status = status
				reports.add(r)

				w, _ := newWorkflow(t, reviewer, reports)
				err := w.Decide(context.Background(), "r1", outcome)
				if !errors.Is(err, types.ErrInvalidTransition) {
					t.Fatalf("Decide() error = %v, want ErrInvalidTransition", err)
				}

				got := reports.get("r1")
				if got.Status != status || got.NgoID != nil || got.UpdatedAt != nil {
					t.Errorf("record changed: %+v", got)
				}
				if reports.writes != 0 {
					t.Errorf("%d writes, want 0", reports.writes)
				}
			})
		}
	}
}

func TestWorkflowDecideUnauthorized(t *testing.T) {
	reports := newMemoryReports()
	reports.add(pendingReport("r1", time.Now().Add(-time.Hour)))

	w, _ := newWorkflow(t, nil, reports)
	err := w.Decide(context.Background(), "r1", types.ReportStatusAccepted)
	if !errors.Is(err, types.ErrUnauthorized) {
		t.Fatalf("Decide() error = %v, want ErrUnauthorized", err)
	}
	if reports.reads != 0 || reports.writes != 0 || reports.lists != 0 {
		t.Errorf("unauthorized decide touched the store: reads=%d writes=%d lists=%d", reports.reads, reports.writes, reports.lists)
	}
}

func TestWorkflowDecideInvalidOutcome(t *testing.T) {
	reports := newMemoryReports()
	reports.add(pendingReport("r1", time.Now().Add(-time.Hour)))
	w, _ := newWorkflow(t, reviewer, reports)

	for _, outcome := range []types.ReportStatus{types.ReportStatusPending, "escalated", ""} {
		if err := w.Decide(context.Background(), "r1", outcome); !errors.Is(err, types.ErrInvalidTransition) {
			t.Errorf("Decide(%q) error = %v, want ErrInvalidTransition", outcome, err)
		}
	}
	if reports.writes != 0 {
		t.Error("invalid outcome was written")
	}
}

func TestWorkflowDecideMissingReport(t *testing.T) {
	w, _ := newWorkflow(t, reviewer, newMemoryReports())

	err := w.Decide(context.Background(), "nope", types.ReportStatusAccepted)
	if !errors.Is(err, types.ErrDecisionFailed) || !errors.Is(err, types.ErrReportNotFound) {
		t.Fatalf("Decide() error = %v, want ErrDecisionFailed wrapping ErrReportNotFound", err)
	}
}

func TestWorkflowDecideWriteFailure(t *testing.T) {
	reports := newMemoryReports()
	reports.add(pendingReport("r1", time.Now().Add(-time.Hour)))
	reports.decideErr = errBoom
	w, _ := newWorkflow(t, reviewer, reports)

	err := w.Decide(context.Background(), "r1", types.ReportStatusAccepted)
	if !errors.Is(err, types.ErrDecisionFailed) || !errors.Is(err, errBoom) {
		t.Fatalf("Decide() error = %v, want ErrDecisionFailed", err)
	}
}

// lostRace reads the report as pending but another reviewer decides it
// before the conditional update runs.
type lostRace struct {
	*memoryReports
}

func (l lostRace) Report(ctx context.Context, id string) (*types.Report, error) {
	r, err := l.memoryReports.Report(ctx, id)
	if err != nil {
		return nil, err
	}
	_, _ = l.memoryReports.DecideReport(ctx, id, types.ReportDecision{
		Status:    types.ReportStatusDeclined,
		NgoID:     "ngo-2",
		UpdatedAt: time.Now(),
	})
	return r, nil
}

func TestWorkflowDecideConcurrentReviewer(t *testing.T) {
	logger, _ := test.NewNullLogger()
	reports := newMemoryReports()
	reports.add(pendingReport("r1", time.Now().Add(-time.Hour)))
	w := NewWorkflow(staticSessions{session: reviewer}, lostRace{reports}, NewReviewStore(reports, logger), logger)

	err := w.Decide(context.Background(), "r1", types.ReportStatusAccepted)
	if !errors.Is(err, types.ErrInvalidTransition) {
		t.Fatalf("Decide() error = %v, want ErrInvalidTransition", err)
	}
	if got := reports.get("r1"); *got.NgoID != "ngo-2" || got.Status != types.ReportStatusDeclined {
		t.Errorf("first decision was overwritten: %+v", got)
	}
}

func TestWorkflowRefreshFailureIsNotReturned(t *testing.T) {
	reports := newMemoryReports()
	reports.add(pendingReport("r1", time.Now().Add(-time.Hour)))
	reports.listErr = errBoom
	w, _ := newWorkflow(t, reviewer, reports)

	if err := w.Decide(context.Background(), "r1", types.ReportStatusAccepted); err != nil {
		t.Fatalf("Decide() error = %v", err)
	}
}

func TestSubmitThenReview(t *testing.T) {
	logger, _ := test.NewNullLogger()
	storage := newMemoryStorage()
	reports := newMemoryReports()
	reviews := NewReviewStore(reports, logger)

	before, err := reviews.List(context.Background())
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}

	c := newComposer(t)
	c.SetDescription("injured dog")
	c.SetImage(testImage())
	c.Location().Select(types.Coordinate{Latitude: 12.9716, Longitude: 77.5946})

	if _, err := c.Submit(context.Background(), NewSubmitter(storage, reports, logger)); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	after, err := reviews.List(context.Background())
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(after) != len(before)+1 {
		t.Fatalf("review store has %d reports, want %d", len(after), len(before)+1)
	}

	r := after[0]
	coord, ok := r.Coordinate()
	if r.Status != types.ReportStatusPending || r.Description != "injured dog" || !ok ||
		coord != (types.Coordinate{Latitude: 12.9716, Longitude: 77.5946}) {
		t.Errorf("unexpected report %+v", r)
	}

	name := r.ImageURL[len("https://storage.test/animal-images/"):]
	if _, ok := storage.objects[name]; !ok {
		t.Errorf("image_url %q does not resolve to an uploaded object", r.ImageURL)
	}
}
