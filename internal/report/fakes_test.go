package report

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"animalrescue/internal/capture"
	"animalrescue/pkg/types"
)

type memoryStorage struct {
	mu        sync.Mutex
	objects   map[string][]byte
	uploadErr error
}

func newMemoryStorage() *memoryStorage {
	return &memoryStorage{objects: make(map[string][]byte)}
}

func (m *memoryStorage) Upload(ctx context.Context, name string, data []byte, contentType string) error {
	if m.uploadErr != nil {
		return m.uploadErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.objects[name]; ok {
		return fmt.Errorf("object %s already exists", name)
	}
	m.objects[name] = data
	return nil
}

func (m *memoryStorage) PublicURL(name string) string {
	return "https://storage.test/animal-images/" + name
}

// memoryReports implements the repository interfaces over a map.
type memoryReports struct {
	mu        sync.Mutex
	reports   map[string]*types.Report
	seq       int
	createErr error
	listErr   error
	decideErr error
	lists     int
	writes    int
	reads     int
}

func newMemoryReports() *memoryReports {
	return &memoryReports{reports: make(map[string]*types.Report)}
}

func (m *memoryReports) add(r types.Report) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reports[r.ID] = &r
}

func (m *memoryReports) get(id string) types.Report {
	m.mu.Lock()
	defer m.mu.Unlock()
	return *m.reports[id]
}

func (m *memoryReports) CreateReport(ctx context.Context, report *types.Report) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	report.ID = fmt.Sprintf("r%d", m.seq)
	report.CreatedAt = time.Now().UTC()
	c := *report
	m.reports[report.ID] = &c
	m.writes++
	return nil
}

func (m *memoryReports) ListReports(ctx context.Context) ([]*types.Report, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lists++
	if m.listErr != nil {
		return nil, m.listErr
	}
	out := make([]*types.Report, 0, len(m.reports))
	for _, r := range m.reports {
		c := *r
		out = append(out, &c)
	}
	return out, nil
}

func (m *memoryReports) Report(ctx context.Context, id string) (*types.Report, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reads++
	r, ok := m.reports[id]
	if !ok {
		return nil, types.ErrReportNotFound
	}
	c := *r
	return &c, nil
}

func (m *memoryReports) DecideReport(ctx context.Context, id string, decision types.ReportDecision) (bool, error) {
	if m.decideErr != nil {
		return false, m.decideErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.reports[id]
	if !ok || r.Status != types.ReportStatusPending {
		return false, nil
	}
	r.Status = decision.Status
	ngo := decision.NgoID
	r.NgoID = &ngo
	at := decision.UpdatedAt
	r.UpdatedAt = &at
	m.writes++
	return true, nil
}

type staticSessions struct {
	session *types.Session
}

func (s staticSessions) Session() *types.Session {
	return s.session
}

type stubSubmitter struct {
	err    error
	drafts []Draft
}

func (s *stubSubmitter) Submit(ctx context.Context, draft Draft) (*types.Report, error) {
	s.drafts = append(s.drafts, draft)
	if s.err != nil {
		return nil, s.err
	}
	return &types.Report{ID: "r1", Description: draft.Description, Status: types.ReportStatusPending}, nil
}

var errBoom = errors.New("boom")

func testImage() *capture.Image {
	return &capture.Image{Data: []byte{0xff, 0xd8, 0xff}, ContentType: capture.ContentType}
}
