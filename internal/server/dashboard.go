package server

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"animalrescue/internal/report"
	"animalrescue/internal/utils"
	"animalrescue/pkg/types"
)

func (s *Service) handleDashboard(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	data := &types.DashboardPageData{
		BasePageData: types.BasePageData{
			Title:  "NGO Dashboard",
			Notice: r.URL.Query().Get("notice"),
			Error:  r.URL.Query().Get("error"),
		},
	}

	reports, err := s.reviews.List(ctx)
	if err != nil {
		if !errors.Is(err, types.ErrFetchFailed) {
			s.internalServerError(w, err)
			return
		}

		s.captureError(err)
		reports = s.reviews.Snapshot()
		data.Error = "Could not load the latest reports. Showing what we have."
		if !s.reviews.Loaded() {
			data.Error = "Could not load reports. Please try again shortly."
		}
	}

	data.Reports = make([]types.DashboardReportCard, 0, len(reports))
	for _, rep := range reports {
		data.Reports = append(data.Reports, dashboardCard(rep))
	}

	if err := s.renderTemplate(w, r, "page.dashboard", data); err != nil {
		s.logger.WithError(err).Error("failed to render dashboard")
		s.internalServerError(w, err)
		return
	}
}

func (s *Service) handlePostDecision(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	reportID := strings.TrimSpace(r.PathValue("id"))
	outcome := types.ReportStatus(strings.TrimSpace(r.FormValue("outcome")))

	gate := gateFromContext(ctx)
	if gate == nil {
		s.redirectToLogin(w, r)
		return
	}

	if !utils.IsReportID(reportID) {
		http.NotFound(w, r)
		return
	}

	workflow := report.NewWorkflow(gate, s.reports, s.reviews, s.logger)

	err := workflow.Decide(ctx, reportID, outcome)
	switch {
	case err == nil:
		s.redirectWithNotice(w, r, "/ngo/dashboard", "Report "+strings.ToLower(outcome.Label())+".")
	case errors.Is(err, types.ErrUnauthorized):
		s.redirectToLogin(w, r)
	case errors.Is(err, types.ErrInvalidTransition):
		s.redirectWithError(w, r, "/ngo/dashboard", "That report can no longer be changed.")
	case errors.Is(err, types.ErrReportNotFound):
		http.NotFound(w, r)
	default:
		s.logger.WithError(err).WithField("report_id", reportID).Error("failed to record decision")
		s.captureError(err)
		s.redirectWithError(w, r, "/ngo/dashboard", "Could not save your decision. Please try again.")
	}
}

func dashboardCard(r *types.Report) types.DashboardReportCard {
	card := types.DashboardReportCard{
		ID:          r.ID,
		Description: r.Description,
		ImageURL:    r.ImageURL,
		Location:    "Unknown location",
		Status:      r.Status,
		StatusLabel: r.Status.Label(),
		CanDecide:   r.Status == types.ReportStatusPending,
	}

	if coord, ok := r.Coordinate(); ok {
		card.HasLocation = true
		card.Latitude = coord.Latitude
		card.Longitude = coord.Longitude
		card.Location = coord.String()
	}

	return card
}
