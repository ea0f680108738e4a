package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"animalrescue/internal/capture"
	"animalrescue/internal/utils"
	"animalrescue/pkg/types"

	"github.com/sirupsen/logrus"
)

const maxPhotoBytes = 10 << 20

const reportSubmittedNotice = "Report submitted. Thank you for helping!"

type reportForm struct {
	Description string `form:"description"`
	Latitude    string `form:"latitude"`
	Longitude   string `form:"longitude"`
	GeoMethod   string `form:"geo_method"`
	DraftToken  string `form:"draft_token"`
}

func (s *Service) handleGetReport(w http.ResponseWriter, r *http.Request) {
	data := &types.ReportPageData{
		BasePageData: types.BasePageData{
			Title:  "Report an Animal",
			Notice: r.URL.Query().Get("notice"),
		},
		GeoMethod:  string(capture.MethodAuto),
		DraftToken: utils.DraftToken(),
	}

	if err := s.renderTemplate(w, r, "page.report", data); err != nil {
		s.logger.WithError(err).Error("failed to render report page")
		s.internalServerError(w, err)
		return
	}
}

// handlePostReport feeds the form into the draft named by its token. The
// draft outlives a failed attempt, so a retry may omit the photo, and a form
// posted again after it went through does not create a second report.
func (s *Service) handlePostReport(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxPhotoBytes+1<<20)
	if err := r.ParseMultipartForm(maxPhotoBytes); err != nil {
		s.logger.WithError(err).Warn("failed to parse report form")
		http.Error(w, "invalid form payload", http.StatusBadRequest)
		return
	}

	var input reportForm
	if err := decoder.Decode(&input, r.PostForm); err != nil {
		s.logger.WithError(err).Error("failed to decode report form")
		http.Error(w, "invalid form payload", http.StatusBadRequest)
		return
	}

	token := strings.TrimSpace(input.DraftToken)
	if !utils.IsDraftToken(token) {
		token = utils.DraftToken()
	}

	data := &types.ReportPageData{
		BasePageData: types.BasePageData{Title: "Report an Animal"},
		Description:  input.Description,
		Latitude:     input.Latitude,
		Longitude:    input.Longitude,
		GeoMethod:    input.GeoMethod,
		DraftToken:   token,
		FieldErrors:  map[string]string{},
	}

	composer, submitted := s.drafts.Open(token)
	if submitted != nil {
		s.logger.WithField("report_id", submitted.ID).Info("ignoring repeated report form")
		s.redirectWithNotice(w, r, "/report", reportSubmittedNotice)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	composer.SetDescription(input.Description)

	photo, err := s.readPhoto(r)
	switch {
	case err != nil:
		data.FieldErrors["photo"] = "We could not read that photo. Please take another one."
	case photo != nil:
		composer.SetImage(photo)
	}

	locator := composer.Location()
	s.locate(ctx, locator, input)

	draft := composer.Draft()
	data.HasPhoto = !draft.Image.Empty()
	if draft.Coordinate != nil {
		data.Latitude = strconv.FormatFloat(draft.Coordinate.Latitude, 'f', 6, 64)
		data.Longitude = strconv.FormatFloat(draft.Coordinate.Longitude, 'f', 6, 64)
	}

	if strings.TrimSpace(draft.Description) == "" {
		data.FieldErrors["description"] = "Describe the animal and its condition."
	}
	if draft.Image.Empty() && data.FieldErrors["photo"] == "" {
		data.FieldErrors["photo"] = "Add a photo of the animal."
	}
	if draft.Coordinate == nil {
		data.FieldErrors["location"] = "Share your location or pick the spot on the map."
	}

	if len(data.FieldErrors) > 0 {
		data.Error = "Please complete the highlighted fields."
		s.renderWithStatus(w, r, http.StatusUnprocessableEntity, "page.report", data)
		return
	}

	created, err := s.drafts.Submit(ctx, token, s.submitter)
	switch {
	case err == nil:
		s.logger.WithFields(logrus.Fields{
			"report_id": created.ID,
			"method":    locator.Method(),
		}).Info("report received")
		s.redirectWithNotice(w, r, "/report", reportSubmittedNotice)
	case errors.Is(err, types.ErrDraftSubmitted):
		s.redirectWithNotice(w, r, "/report", reportSubmittedNotice)
	case errors.Is(err, types.ErrSubmissionInFlight):
		s.redirectWithNotice(w, r, "/report", "Your report is already being sent.")
	default:
		s.logger.WithError(err).Error("failed to submit report")
		if errors.Is(err, types.ErrSubmissionFailed) {
			s.captureError(err)
		}

		data.Error = "We could not send your report. Please try again."
		s.renderWithStatus(w, r, http.StatusBadGateway, "page.report", data)
	}
}

func (s *Service) readPhoto(r *http.Request) (*capture.Image, error) {
	file, _, err := r.FormFile("photo")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, nil
		}
		return nil, err
	}
	defer file.Close()

	return capture.FromReader(file)
}

// locate writes the browser supplied coordinate through the locator using
// the method the browser reported.
func (s *Service) locate(ctx context.Context, locator *capture.Locator, input reportForm) {
	coord, ok := parseCoordinate(input.Latitude, input.Longitude)
	if !ok {
		return
	}

	source := capture.GeoSourceFunc(func(context.Context) (types.Coordinate, error) {
		return coord, nil
	})

	switch capture.ParseMethod(input.GeoMethod) {
	case capture.MethodDevice:
		locator.LocateDevice(ctx, source)
	case capture.MethodAuto:
		locator.AutoLocate(ctx, source)
	default:
		locator.Select(coord)
	}
}

func parseCoordinate(lat, lng string) (types.Coordinate, bool) {
	latitude, err := strconv.ParseFloat(strings.TrimSpace(lat), 64)
	if err != nil {
		return types.Coordinate{}, false
	}
	longitude, err := strconv.ParseFloat(strings.TrimSpace(lng), 64)
	if err != nil {
		return types.Coordinate{}, false
	}

	return types.Coordinate{Latitude: latitude, Longitude: longitude}, true
}
