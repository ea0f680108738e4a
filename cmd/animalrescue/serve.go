package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"animalrescue/internal/db"
	"animalrescue/internal/identity"
	"animalrescue/internal/server"
	"animalrescue/internal/store"

	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	"github.com/getsentry/sentry-go"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

var serveCommand = &cli.Command{
	Name:   "serve",
	Usage:  "Start the HTTP server",
	Action: serve,
}

func serve(cCtx *cli.Context) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	config, err := loadConfig(cCtx)
	if err != nil {
		return err
	}

	if config.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              config.SentryDSN,
			EnableTracing:    true,
			TracesSampleRate: 0.2,
			Environment:      config.Environment,
		}); err != nil {
			logger.WithError(err).Error("sentry init failed")
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	awsConfig, err := loadAWSConfig(ctx)
	if err != nil {
		return err
	}

	objects, err := newObjectStorage(config, awsConfig, logger)
	if err != nil {
		return err
	}

	pool, err := db.Connect(ctx, config)
	if err != nil {
		return err
	}
	defer pool.Close()

	jwkCache, _, err := identity.NewJWKSCache(ctx, config.CognitoIssuerURL)
	if err != nil {
		return err
	}

	srv, err := server.New(config, logger, server.Deps{
		Reports:  store.NewReportRepository(pool),
		Profiles: store.NewProfileRepository(pool),
		Storage:  objects,
		Cognito:  cognitoidentityprovider.NewFromConfig(awsConfig),
		Verifier: identity.NewJWKSVerifier(jwkCache, config.CognitoIssuerURL, config.CognitoClientID),
	})
	if err != nil {
		return err
	}

	go func() {
		logger.WithField("port", config.ServerPort).Infof("server starting http://localhost:%d", config.ServerPort)
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("server failed")
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return srv.Stop(shutdownCtx)
}
