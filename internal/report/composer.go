package report

import (
	"context"
	"strings"
	"sync"

	"animalrescue/internal/capture"
	"animalrescue/pkg/types"
)

// ReportSubmitter is satisfied by *Submitter.
type ReportSubmitter interface {
	Submit(ctx context.Context, draft Draft) (*types.Report, error)
}

// Composer is the in-progress report a reporter is filling in.
type Composer struct {
	locator *capture.Locator

	mu          sync.Mutex
	description string
	image       *capture.Image
	submitting  bool
}

func NewComposer(locator *capture.Locator) *Composer {
	return &Composer{locator: locator}
}

func (c *Composer) SetDescription(description string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.description = description
}

func (c *Composer) SetImage(img *capture.Image) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.image = img
}

// Location is the coordinate slot this draft reads from.
func (c *Composer) Location() *capture.Locator {
	return c.locator
}

// Draft returns a snapshot of the current fields.
func (c *Composer) Draft() Draft {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.draft()
}

// CanSubmit is true when description, image and coordinate are all present
// and no submission is running.
func (c *Composer) CanSubmit() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return !c.submitting && c.draft().Validate() == nil
}

// Submit hands the draft to submitter. The fields are cleared only if the
// submission succeeds.
func (c *Composer) Submit(ctx context.Context, submitter ReportSubmitter) (*types.Report, error) {
	c.mu.Lock()
	if c.submitting {
		c.mu.Unlock()
		return nil, types.ErrSubmissionInFlight
	}
	draft := c.draft()
	if err := draft.Validate(); err != nil {
		c.mu.Unlock()
		return nil, err
	}
	c.submitting = true
	c.mu.Unlock()

	report, err := submitter.Submit(ctx, draft)

	c.mu.Lock()
	c.submitting = false
	if err == nil {
		c.description = ""
		c.image = nil
	}
	c.mu.Unlock()

	if err != nil {
		return nil, err
	}

	c.locator.Clear()
	return report, nil
}

func (c *Composer) draft() Draft {
	d := Draft{
		Description: strings.TrimSpace(c.description),
		Image:       c.image,
	}
	if coord, ok := c.locator.Coordinate(); ok {
		d.Coordinate = &coord
	}
	return d
}
