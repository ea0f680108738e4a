package report

import (
	"context"
	"fmt"
	"strings"
	"time"

	"animalrescue/internal/capture"
	"animalrescue/internal/utils"
	"animalrescue/pkg/types"

	"github.com/sirupsen/logrus"
)

// ObjectStorage is the bucket report photos are uploaded to.
type ObjectStorage interface {
	Upload(ctx context.Context, name string, data []byte, contentType string) error
	PublicURL(name string) string
}

type ReportCreator interface {
	CreateReport(ctx context.Context, report *types.Report) error
}

// Draft is a report that has not been submitted yet. Image and Coordinate are
// nil until captured.
type Draft struct {
	Description string
	Image       *capture.Image
	Coordinate  *types.Coordinate
}

// Validate checks the draft has everything a report needs.
func (d Draft) Validate() error {
	var missing []string
	if strings.TrimSpace(d.Description) == "" {
		missing = append(missing, "description")
	}
	if d.Image.Empty() {
		missing = append(missing, "image")
	}
	if d.Coordinate == nil {
		missing = append(missing, "location")
	} else if !d.Coordinate.Valid() {
		missing = append(missing, "valid location")
	}

	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", types.ErrDraftIncomplete, strings.Join(missing, ", "))
	}

	return nil
}

// Submitter turns a draft into a stored report: upload the photo, resolve its
// public address, then insert the record. A failed insert leaves the uploaded
// object in place.
type Submitter struct {
	storage ObjectStorage
	reports ReportCreator
	logger  logrus.FieldLogger
	now     func() time.Time
}

func NewSubmitter(storage ObjectStorage, reports ReportCreator, logger logrus.FieldLogger) *Submitter {
	return &Submitter{
		storage: storage,
		reports: reports,
		logger:  logger,
		now:     time.Now,
	}
}

func (s *Submitter) Submit(ctx context.Context, draft Draft) (*types.Report, error) {
	if err := draft.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", types.ErrSubmissionFailed, err)
	}

	name := ObjectName(s.now())
	contentType := draft.Image.ContentType
	if contentType == "" {
		contentType = capture.ContentType
	}

	if err := s.storage.Upload(ctx, name, draft.Image.Data, contentType); err != nil {
		return nil, fmt.Errorf("%w: upload image: %w", types.ErrSubmissionFailed, err)
	}

	imageURL := s.storage.PublicURL(name)
	if imageURL == "" {
		s.logger.WithField("object_name", name).Warn("uploaded image has no public address, leaving orphaned object")
		return nil, fmt.Errorf("%w: no public address for %s", types.ErrSubmissionFailed, name)
	}

	report := &types.Report{
		Description: strings.TrimSpace(draft.Description),
		Latitude:    utils.Float64Ptr(draft.Coordinate.Latitude),
		Longitude:   utils.Float64Ptr(draft.Coordinate.Longitude),
		ImageURL:    imageURL,
		Status:      types.ReportStatusPending,
	}

	if err := s.reports.CreateReport(ctx, report); err != nil {
		s.logger.WithError(err).WithField("object_name", name).Warn("report insert failed, leaving orphaned object")
		return nil, fmt.Errorf("%w: create report: %w", types.ErrSubmissionFailed, err)
	}

	s.logger.WithFields(logrus.Fields{
		"report_id":   report.ID,
		"object_name": name,
	}).Info("report submitted")

	return report, nil
}

// ObjectName is the storage key for a photo uploaded at t.
func ObjectName(t time.Time) string {
	return fmt.Sprintf("%d%s", t.UnixMilli(), capture.Extension)
}
