package server

import (
	"context"
	"embed"
	"encoding/base64"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"strings"
	"time"

	"animalrescue/internal/identity"
	"animalrescue/internal/report"
	"animalrescue/pkg/types"

	"github.com/alexedwards/flow"
	sentryhttp "github.com/getsentry/sentry-go/http"
	"github.com/go-playground/form/v4"
	"github.com/gorilla/securecookie"
	"github.com/sirupsen/logrus"
)

//go:embed templates static
var uiFS embed.FS
var decoder = form.NewDecoder()

// ReportStore is the record store for reports.
type ReportStore interface {
	report.ReportCreator
	report.ReportLister
	report.ReportDecider
}

type ProfileStore interface {
	Profile(ctx context.Context, id string) (*types.Profile, error)
	UpsertProfile(ctx context.Context, profile *types.Profile) error
}

// Deps are the collaborators the HTTP shell is wired to.
type Deps struct {
	Reports  ReportStore
	Profiles ProfileStore
	Storage  report.ObjectStorage
	Cognito  identity.CognitoAPI
	Verifier identity.TokenVerifier
}

type Service struct {
	logger    *logrus.Logger
	config    *types.Config
	templates *template.Template
	cookie    *securecookie.SecureCookie

	reports   ReportStore
	profiles  ProfileStore
	cognito   identity.CognitoAPI
	verifier  identity.TokenVerifier
	submitter *report.Submitter
	drafts    *report.Drafts
	reviews   *report.ReviewStore

	handler http.Handler
	server  *http.Server
}

func New(config *types.Config, logger *logrus.Logger, deps Deps) (*Service, error) {
	mux := flow.New()

	hashKey, err := base64.StdEncoding.DecodeString(config.CookieHashKey)
	if err != nil {
		return nil, fmt.Errorf("decode cookie hash key: %w", err)
	}
	blockKey, err := base64.StdEncoding.DecodeString(config.CookieBlockKey)
	if err != nil {
		return nil, fmt.Errorf("decode cookie block key: %w", err)
	}

	s := &Service{
		logger: logger,
		config: config,
		cookie: securecookie.New(hashKey, blockKey),

		reports:   deps.Reports,
		profiles:  deps.Profiles,
		cognito:   deps.Cognito,
		verifier:  deps.Verifier,
		submitter: report.NewSubmitter(deps.Storage, deps.Reports, logger),
		drafts:    report.NewDrafts(config.ReportDraftTTL, config.ReportDraftLimit, logger),
		reviews:   report.NewReviewStore(deps.Reports, logger),
	}

	templates, err := loadTemplates()
	if err != nil {
		return nil, err
	}
	s.templates = templates

	s.buildRouter(mux)

	// trailing slashes are stripped before routing so unmatched paths redirect
	s.handler = sentryhttp.New(sentryhttp.Options{Repanic: true}).Handle(s.StripTrailingSlash(mux))
	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", config.ServerPort),
		Handler:           s.handler,
		ReadTimeout:       time.Duration(config.ReadTimeoutSec) * time.Second,
		ReadHeaderTimeout: time.Duration(config.ReadTimeoutSec) * time.Second,
		WriteTimeout:      time.Duration(config.WriteTimeoutSec) * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	return s, nil
}

func (s *Service) Start() error {
	return s.server.ListenAndServe()
}

func (s *Service) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// ServeHTTP lets the service be mounted directly, mostly for tests.
func (s *Service) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

func (s *Service) buildRouter(r *flow.Mux) {
	r.Use(s.LoggingMiddleware)
	r.Use(s.LoadSession)

	r.HandleFunc("/", s.handleHome, http.MethodGet)
	r.HandleFunc("/first-aid", s.handleFirstAid, http.MethodGet)
	r.HandleFunc("/healthz", s.handleHealth, http.MethodGet)

	r.HandleFunc("/report", s.handleGetReport, http.MethodGet)
	r.HandleFunc("/report", s.handlePostReport, http.MethodPost)

	r.HandleFunc("/ngo/login", s.handleGetLogin, http.MethodGet)
	r.HandleFunc("/ngo/login", s.handlePostLogin, http.MethodPost)
	r.HandleFunc("/ngo/register", s.handleGetRegister, http.MethodGet)
	r.HandleFunc("/ngo/register", s.handlePostRegister, http.MethodPost)
	r.HandleFunc("/ngo/register/confirm", s.handleGetRegisterConfirm, http.MethodGet)
	r.HandleFunc("/ngo/register/confirm", s.handlePostRegisterConfirm, http.MethodPost)

	r.Group(func(r *flow.Mux) {
		r.Use(s.RequireAuth)

		r.HandleFunc("/ngo/dashboard", s.handleDashboard, http.MethodGet)
		r.HandleFunc("/ngo/reports/:id/decision", s.handlePostDecision, http.MethodPost)
		r.HandleFunc("/ngo/logout", s.handlePostLogout, http.MethodPost)
	})

	staticRoot, err := fs.Sub(uiFS, "static")
	if err != nil {
		s.logger.WithError(err).Fatal("failed to mount static assets")
	}
	r.Handle("/static/...", http.StripPrefix("/static/", http.FileServer(http.FS(staticRoot))), http.MethodGet)
}

func loadTemplates() (*template.Template, error) {
	funcMap := template.FuncMap{
		"deref": func(s *string) string {
			if s == nil {
				return ""
			}
			return *s
		},
		"fieldError": func(errs map[string]string, field string) string {
			return errs[field]
		},
		"lower": strings.ToLower,
	}

	t := template.New("").Funcs(funcMap)
	err := fs.WalkDir(uiFS, "templates", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".html") {
			return nil
		}

		data, err := fs.ReadFile(uiFS, path)
		if err != nil {
			return fmt.Errorf("read template %s: %w", path, err)
		}

		if _, err := t.Parse(string(data)); err != nil {
			return fmt.Errorf("parse template %s: %w", path, err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return t, nil
}
