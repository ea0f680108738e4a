package report

import (
	"context"
	"sync"
	"time"

	"animalrescue/internal/capture"
	"animalrescue/pkg/types"

	"github.com/sirupsen/logrus"
)

const (
	DefaultDraftTTL   = 30 * time.Minute
	DefaultDraftLimit = 500
)

// Drafts keeps composers alive between requests, keyed by a token the report
// form carries. A draft survives a failed submission with its photo, and
// remembers the report it became so a resubmitted form cannot create a
// second one.
type Drafts struct {
	ttl    time.Duration
	limit  int
	logger logrus.FieldLogger
	now    func() time.Time

	mu      sync.Mutex
	entries map[string]*draftEntry
}

type draftEntry struct {
	composer   *Composer
	report     *types.Report
	submitting bool
	touched    time.Time
}

func NewDrafts(ttl time.Duration, limit int, logger logrus.FieldLogger) *Drafts {
	if ttl <= 0 {
		ttl = DefaultDraftTTL
	}
	if limit <= 0 {
		limit = DefaultDraftLimit
	}

	return &Drafts{
		ttl:     ttl,
		limit:   limit,
		logger:  logger,
		now:     time.Now,
		entries: make(map[string]*draftEntry),
	}
}

// Open returns the composer held under token, starting an empty one when the
// token is unknown or expired. submitted is the report the draft already
// became, or nil.
func (d *Drafts) Open(token string) (composer *Composer, submitted *types.Report) {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := d.now()
	d.sweep(now)

	e, ok := d.entries[token]
	if !ok {
		d.makeRoom()
		e = &draftEntry{composer: NewComposer(capture.NewLocator(d.logger))}
		d.entries[token] = e
	}
	e.touched = now

	if e.report != nil {
		r := *e.report
		return e.composer, &r
	}
	return e.composer, nil
}

// Submit submits the draft held under token. A draft that is already being
// submitted returns ErrSubmissionInFlight; one that already became a report
// returns that report with ErrDraftSubmitted.
func (d *Drafts) Submit(ctx context.Context, token string, submitter ReportSubmitter) (*types.Report, error) {
	d.mu.Lock()
	e, ok := d.entries[token]
	if !ok {
		d.mu.Unlock()
		return nil, types.ErrDraftIncomplete
	}
	if e.report != nil {
		r := *e.report
		d.mu.Unlock()
		return &r, types.ErrDraftSubmitted
	}
	if e.submitting {
		d.mu.Unlock()
		return nil, types.ErrSubmissionInFlight
	}
	e.submitting = true
	d.mu.Unlock()

	report, err := e.composer.Submit(ctx, submitter)

	d.mu.Lock()
	e.submitting = false
	e.touched = d.now()
	if err == nil {
		r := *report
		e.report = &r
	}
	d.mu.Unlock()

	return report, err
}

func (d *Drafts) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()

	return len(d.entries)
}

func (d *Drafts) sweep(now time.Time) {
	for token, e := range d.entries {
		if !e.submitting && now.Sub(e.touched) > d.ttl {
			delete(d.entries, token)
		}
	}
}

// makeRoom evicts the least recently used idle draft once the limit is hit.
func (d *Drafts) makeRoom() {
	if len(d.entries) < d.limit {
		return
	}

	var oldest string
	var oldestAt time.Time
	for token, e := range d.entries {
		if e.submitting {
			continue
		}
		if oldest == "" || e.touched.Before(oldestAt) {
			oldest, oldestAt = token, e.touched
		}
	}

	if oldest != "" {
		delete(d.entries, oldest)
		d.logger.WithField("drafts", len(d.entries)).Debug("evicted report draft")
	}
}
