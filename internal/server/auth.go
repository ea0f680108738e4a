package server

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"animalrescue/internal"
	"animalrescue/internal/identity"
	"animalrescue/pkg/types"
)

func (s *Service) handleGetLogin(w http.ResponseWriter, r *http.Request) {
	if session, _ := r.Context().Value(contextKeySession).(*types.Session); session != nil {
		s.logger.Info("reviewer is already logged in, redirecting to dashboard")
		http.Redirect(w, r, "/ngo/dashboard", http.StatusSeeOther)
		return
	}

	data := &types.LoginPageData{
		BasePageData: types.BasePageData{Title: "NGO Sign In"},
	}
	if r.URL.Query().Get("confirmed") == "true" {
		data.Notice = "Your account is confirmed. Please sign in."
	}

	if err := s.renderTemplate(w, r, "page.login", data); err != nil {
		s.logger.WithError(err).Error("failed to render login page")
		s.internalServerError(w, err)
		return
	}
}

func (s *Service) handlePostLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	email := strings.TrimSpace(r.FormValue("email"))
	password := r.FormValue("password")

	data := &types.LoginPageData{
		BasePageData: types.BasePageData{Title: "NGO Sign In"},
		Email:        email,
	}

	provider := identity.NewCognitoProvider(s.cognito, s.verifier, s.config.CognitoClientID, s.logger)
	session, err := provider.SignIn(ctx, email, password)
	if err != nil {
		status := http.StatusUnauthorized
		data.Error = "Invalid email or password."
		if !errors.Is(err, types.ErrUnauthorized) {
			s.logger.WithError(err).Error("failed to sign in reviewer")
			s.captureError(err)
			status = http.StatusBadGateway
			data.Error = "Unable to sign in right now. Please try again."
		}

		s.renderWithStatus(w, r, status, "page.login", data)
		return
	}

	if err := s.setSessionCookies(w, session, provider.RefreshToken()); err != nil {
		s.logger.WithError(err).Error("failed to encrypt session tokens")
		s.internalServerError(w, err)
		return
	}

	// Check to see if this login attempt was the result of an unauthed redirect
	if redirectCookie, err := r.Cookie(internal.COOKIE_REDIRECT_NAME); err == nil {
		s.clearRedirectCookie(w)
		if path := redirectCookie.Value; strings.HasPrefix(path, "/") && !strings.HasPrefix(path, "//") {
			http.Redirect(w, r, path, http.StatusSeeOther)
			return
		}
	}

	http.Redirect(w, r, "/ngo/dashboard", http.StatusSeeOther)
}

func (s *Service) handlePostLogout(w http.ResponseWriter, r *http.Request) {
	if gate := gateFromContext(r.Context()); gate != nil {
		if err := gate.SignOut(r.Context()); err != nil {
			s.logger.WithError(err).Warn("failed to revoke reviewer tokens")
		}
	}

	s.clearAccessTokenCookie(w)
	s.clearRefreshTokenCookie(w)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// setSessionCookies stores the access token, and the refresh token when one
// is given, in encrypted cookies.
func (s *Service) setSessionCookies(w http.ResponseWriter, session *types.Session, refreshToken string) error {
	encryptedToken, err := s.cookie.Encode(internal.COOKIE_ACCESS_TOKEN_NAME, session.AccessToken)
	if err != nil {
		return err
	}

	maxAge := s.config.SessionMaxAgeSec
	if !session.ExpiresAt.IsZero() {
		maxAge = int(time.Until(session.ExpiresAt).Seconds())
	}
	s.setAccessTokenCookie(w, encryptedToken, maxAge)

	if refreshToken == "" {
		return nil
	}

	encryptedRefresh, err := s.cookie.Encode(internal.COOKIE_REFRESH_TOKEN_NAME, refreshToken)
	if err != nil {
		return err
	}
	s.setRefreshTokenCookie(w, encryptedRefresh, s.config.RefreshMaxAgeSec)

	return nil
}
