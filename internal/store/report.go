package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"animalrescue/internal/utils"
	"animalrescue/pkg/types"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgxpool"
)

const reportTableName = "reports"

var reportColumns = utils.StructTagValues(types.Report{})

type ReportRepository struct {
	pool *pgxpool.Pool
}

func NewReportRepository(pool *pgxpool.Pool) *ReportRepository {
	return &ReportRepository{pool: pool}
}

// CreateReport assigns the report an ID and creation time and inserts it.
// Status defaults to pending.
func (r *ReportRepository) CreateReport(ctx context.Context, report *types.Report) error {
	report.ID = utils.ReportID()
	report.CreatedAt = time.Now().UTC()
	if report.Status == "" {
		report.Status = types.ReportStatusPending
	}

	query, args, err := insertReportQuery(report)
	if err != nil {
		return fmt.Errorf("failed to generate insert report query: %w", err)
	}

	_, err = r.pool.Exec(ctx, query, args...)
	return utils.ErrorWrapOrNil(err, "failed to create report")
}

func (r *ReportRepository) Report(ctx context.Context, reportID string) (*types.Report, error) {
	query, args, err := psql().
		Select(reportColumns...).
		From(reportTableName).
		Where(sq.Eq{"id": reportID}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate report query: %w", err)
	}

	var report = new(types.Report)
	err = pgxscan.Get(ctx, r.pool, report, query, args...)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, types.ErrReportNotFound
		}
		return nil, fmt.Errorf("failed to fetch report %s: %w", reportID, err)
	}

	return report, nil
}

// ListReports returns every report, newest first.
func (r *ReportRepository) ListReports(ctx context.Context) ([]*types.Report, error) {
	query, args, err := listReportsQuery()
	if err != nil {
		return nil, fmt.Errorf("failed to generate list reports query: %w", err)
	}

	var reports = make([]*types.Report, 0)
	err = pgxscan.Select(ctx, r.pool, &reports, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}

	return reports, nil
}

// DecideReport writes the review fields of a report that is still pending.
// It reports false when no pending report with that ID exists, which covers
// both an unknown ID and a report another reviewer already decided.
func (r *ReportRepository) DecideReport(ctx context.Context, reportID string, decision types.ReportDecision) (bool, error) {
	query, args, err := decideReportQuery(reportID, decision)
	if err != nil {
		return false, fmt.Errorf("failed to generate decide report query for report %s: %w", reportID, err)
	}

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("failed to update report %s: %w", reportID, err)
	}

	return tag.RowsAffected() == 1, nil
}

func insertReportQuery(report *types.Report) (string, []any, error) {
	return psql().
		Insert(reportTableName).
		Columns(reportColumns...).
		Values(
			report.ID,
			strings.TrimSpace(report.Description),
			report.Latitude,
			report.Longitude,
			report.ImageURL,
			report.Status,
			report.NgoID,
			report.CreatedAt,
			report.UpdatedAt,
		).
		ToSql()
}

func listReportsQuery() (string, []any, error) {
	return psql().
		Select(reportColumns...).
		From(reportTableName).
		OrderBy("created_at DESC").
		ToSql()
}

func decideReportQuery(reportID string, decision types.ReportDecision) (string, []any, error) {
	return psql().
		Update(reportTableName).
		Set("status", decision.Status).
		Set("ngo_id", decision.NgoID).
		Set("updated_at", decision.UpdatedAt).
		Where(sq.Eq{"id": reportID}).
		Where(sq.Eq{"status": types.ReportStatusPending}).
		ToSql()
}
