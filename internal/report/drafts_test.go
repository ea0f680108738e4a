package report

import (
	"context"
	"errors"
	"testing"
	"time"

	"animalrescue/pkg/types"

	"github.com/sirupsen/logrus/hooks/test"
)

func newDrafts(t *testing.T) *Drafts {
	t.Helper()
	logger, _ := test.NewNullLogger()
	return NewDrafts(time.Minute, 3, logger)
}

func fill(c *Composer) {
	c.SetDescription("injured dog")
	c.SetImage(testImage())
	c.Location().Select(types.Coordinate{Latitude: 12.9716, Longitude: 77.5946})
}

func TestDraftsOpenReturnsSameComposer(t *testing.T) {
	d := newDrafts(t)

	a, _ := d.Open("token-a")
	again, _ := d.Open("token-a")
	b, _ := d.Open("token-b")

	if a != again {
		t.Error("same token opened two composers")
	}
	if a == b {
		t.Error("different tokens share a composer")
	}
}

func TestDraftsSubmitOnce(t *testing.T) {
	d := newDrafts(t)
	sub := &stubSubmitter{}

	c, _ := d.Open("token-a")
	fill(c)

	first, err := d.Submit(context.Background(), "token-a", sub)
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	c, submitted := d.Open("token-a")
	if submitted == nil || submitted.ID != first.ID {
		t.Fatalf("Open() after submit = %+v", submitted)
	}

	// a resubmitted form refills the composer
	fill(c)
	again, err := d.Submit(context.Background(), "token-a", sub)
	if !errors.Is(err, types.ErrDraftSubmitted) || again == nil || again.ID != first.ID {
		t.Fatalf("second Submit() = %+v, %v", again, err)
	}
	if len(sub.drafts) != 1 {
		t.Errorf("submitter called %d times, want 1", len(sub.drafts))
	}
}

func TestDraftsSubmitInFlight(t *testing.T) {
	d := newDrafts(t)
	c, _ := d.Open("token-a")
	fill(c)

	sub := &blockingSubmitter{started: make(chan struct{}), release: make(chan struct{})}
	done := make(chan error, 1)
	go func() {
		_, err := d.Submit(context.Background(), "token-a", sub)
		done <- err
	}()
	<-sub.started

	if _, err := d.Submit(context.Background(), "token-a", &stubSubmitter{}); !errors.Is(err, types.ErrSubmissionInFlight) {
		t.Errorf("concurrent Submit() error = %v, want ErrSubmissionInFlight", err)
	}

	close(sub.release)
	if err := <-done; err != nil {
		t.Fatalf("first Submit() error = %v", err)
	}
}

func TestDraftsKeepPhotoAfterFailure(t *testing.T) {
	d := newDrafts(t)
	c, _ := d.Open("token-a")
	fill(c)

	if _, err := d.Submit(context.Background(), "token-a", &stubSubmitter{err: errBoom}); !errors.Is(err, errBoom) {
		t.Fatalf("Submit() error = %v", err)
	}

	c, submitted := d.Open("token-a")
	if submitted != nil {
		t.Fatal("failed draft marked as submitted")
	}
	if c.Draft().Image.Empty() {
		t.Fatal("photo dropped after a failed submit")
	}

	if _, err := d.Submit(context.Background(), "token-a", &stubSubmitter{}); err != nil {
		t.Errorf("retry error = %v", err)
	}
}

func TestDraftsExpire(t *testing.T) {
	d := newDrafts(t)
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	d.now = func() time.Time { return now }

	a, _ := d.Open("token-a")
	fill(a)

	now = now.Add(2 * time.Minute)
	fresh, _ := d.Open("token-a")
	if fresh == a {
		t.Error("expired draft was reused")
	}
	if fresh.CanSubmit() {
		t.Error("expired draft kept its fields")
	}
}

func TestDraftsEvictLeastRecentlyUsed(t *testing.T) {
	d := newDrafts(t)
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	d.now = func() time.Time { return now }

	for _, token := range []string{"a", "b", "c"} {
		d.Open(token)
		now = now.Add(time.Second)
	}
	a, _ := d.Open("a")
	now = now.Add(time.Second)

	d.Open("d")
	if d.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", d.Len())
	}
	if again, _ := d.Open("a"); again != a {
		t.Error("recently used draft was evicted")
	}
}

func TestDraftsSubmitUnknownToken(t *testing.T) {
	d := newDrafts(t)
	if _, err := d.Submit(context.Background(), "missing", &stubSubmitter{}); !errors.Is(err, types.ErrDraftIncomplete) {
		t.Errorf("Submit() error = %v", err)
	}
}
