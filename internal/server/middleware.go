package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"animalrescue/internal"
	"animalrescue/internal/identity"
	"animalrescue/pkg/types"

	"github.com/sirupsen/logrus"
)

// Context key types to avoid collisions
type contextKey string

const (
	contextKeySession      contextKey = "session"
	contextKeyOrganization contextKey = "organization"
	contextKeyGate         contextKey = "gate"
)

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (s *Service) LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(rw, r)

		s.logger.WithFields(logrus.Fields{
			"method":      r.Method,
			"path":        r.URL.Path,
			"status":      rw.statusCode,
			"duration_ms": time.Since(started).Milliseconds(),
		}).Info("http request")
	})
}

// LoadSession puts the reviewer session on the context when the request
// carries a valid access token cookie, or a refresh token cookie that can be
// traded for a new one. It never rejects a request.
func (s *Service) LoadSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session, err := s.sessionFromRequest(r)
		if err != nil {
			hadAccessToken := !errors.Is(err, http.ErrNoCookie)

			session, err = s.refreshSession(w, r)
			if err != nil {
				if hadAccessToken {
					s.logger.WithError(err).Debug("discarding invalid access token cookie")
					s.clearAccessTokenCookie(w)
				}
				if errors.Is(err, types.ErrUnauthorized) {
					s.logger.WithError(err).Debug("discarding rejected refresh token cookie")
					s.clearRefreshTokenCookie(w)
				} else if !errors.Is(err, http.ErrNoCookie) {
					s.logger.WithError(err).Warn("failed to refresh reviewer session")
				}
				next.ServeHTTP(w, r)
				return
			}
		}

		ctx := context.WithValue(r.Context(), contextKeySession, session)

		profile, err := s.profiles.Profile(ctx, session.ReviewerID)
		switch {
		case err == nil:
			ctx = context.WithValue(ctx, contextKeyOrganization, profile.Organization)
		case !errors.Is(err, types.ErrProfileNotFound):
			s.logger.WithError(err).WithField("reviewer_id", session.ReviewerID).Warn("failed to load reviewer profile")
		}

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAuth redirects to sign in unless LoadSession found a session. For
// authenticated requests it attaches an identity gate fed by the verified
// token, released when the request ends.
func (s *Service) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session, ok := r.Context().Value(contextKeySession).(*types.Session)
		if !ok || session == nil {
			s.logger.WithField("path", r.URL.Path).Debug("no reviewer session, redirecting to login")

			if r.Method == http.MethodGet {
				s.setRedirectCookie(w, r.URL.Path, time.Minute*5)
			}
			http.Redirect(w, r, "/ngo/login", http.StatusSeeOther)
			return
		}

		logger := s.logger.WithField("reviewer_id", session.ReviewerID)

		provider := identity.NewTokenProvider(session, s.cognito, logger)
		defer provider.Close()

		gate := identity.NewGate(provider, logger)
		if err := gate.Start(r.Context()); err != nil {
			s.internalServerError(w, err)
			return
		}
		defer gate.Close()

		ctx := context.WithValue(r.Context(), contextKeyGate, gate)

		logger.Debug("authenticated reviewer")

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Service) StripTrailingSlash(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path

		// Only strip if path is not root and has trailing slash
		if path != "/" && strings.HasSuffix(path, "/") {
			newURL := *r.URL
			newURL.Path = strings.TrimSuffix(path, "/")

			http.Redirect(w, r, newURL.String(), http.StatusMovedPermanently)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Service) sessionFromRequest(r *http.Request) (*types.Session, error) {
	cookie, err := r.Cookie(internal.COOKIE_ACCESS_TOKEN_NAME)
	if err != nil {
		return nil, err
	}

	var accessToken string
	if err := s.cookie.Decode(internal.COOKIE_ACCESS_TOKEN_NAME, cookie.Value, &accessToken); err != nil {
		return nil, err
	}

	return s.verifier.Verify(r.Context(), accessToken)
}

// refreshSession trades the refresh token cookie for a new access token and
// re-issues the access token cookie. A refresh token that cannot be decoded
// or is refused by Cognito comes back as ErrUnauthorized.
func (s *Service) refreshSession(w http.ResponseWriter, r *http.Request) (*types.Session, error) {
	cookie, err := r.Cookie(internal.COOKIE_REFRESH_TOKEN_NAME)
	if err != nil {
		return nil, err
	}

	var refreshToken string
	if err := s.cookie.Decode(internal.COOKIE_REFRESH_TOKEN_NAME, cookie.Value, &refreshToken); err != nil {
		return nil, fmt.Errorf("%w: %w", types.ErrUnauthorized, err)
	}

	provider := identity.NewCognitoProvider(s.cognito, s.verifier, s.config.CognitoClientID, s.logger)
	provider.Resume(refreshToken)

	session, err := provider.Refresh(r.Context())
	if err != nil {
		return nil, err
	}

	if err := s.setSessionCookies(w, session, ""); err != nil {
		return nil, err
	}

	s.logger.WithField("reviewer_id", session.ReviewerID).Info("refreshed reviewer session")

	return session, nil
}

func gateFromContext(ctx context.Context) *identity.Gate {
	gate, _ := ctx.Value(contextKeyGate).(*identity.Gate)
	return gate
}
