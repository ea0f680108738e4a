package server

import (
	"net/http"
	"strings"

	"animalrescue/pkg/types"

	"github.com/getsentry/sentry-go"
)

func (s *Service) renderTemplate(w http.ResponseWriter, r *http.Request, templateName string, data any) error {
	session, _ := r.Context().Value(contextKeySession).(*types.Session)
	organization, _ := r.Context().Value(contextKeyOrganization).(string)

	if setter, ok := data.(types.NavbarDataSetter); ok {
		navbar := types.NavbarData{
			IsDashboard:  strings.HasPrefix(r.URL.Path, "/ngo/dashboard"),
			Organization: organization,
		}
		if session != nil {
			navbar.IsAuthenticated = true
			navbar.UserID = session.ReviewerID
			navbar.UserEmail = session.Email
		}
		setter.SetNavbarData(navbar)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	return s.templates.ExecuteTemplate(w, templateName, data)
}

func (s *Service) renderWithStatus(w http.ResponseWriter, r *http.Request, status int, templateName string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := s.renderTemplate(w, r, templateName, data); err != nil {
		s.logger.WithError(err).WithField("template", templateName).Error("failed to render template")
	}
}

func (s *Service) internalServerError(w http.ResponseWriter, err error) {
	s.captureError(err)
	http.Error(w, "internal server error", http.StatusInternalServerError)
}

// captureError forwards err to Sentry. Without a DSN this is a no-op.
func (s *Service) captureError(err error) {
	if err != nil {
		sentry.CaptureException(err)
	}
}
