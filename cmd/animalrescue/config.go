package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"animalrescue/internal/report"
	"animalrescue/internal/storage"
	"animalrescue/pkg/types"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

func loadConfig(cCtx *cli.Context) (*types.Config, error) {
	if file := cCtx.String("env-file"); file != "" {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", file, err)
		}
	}

	c := new(types.Config)
	if err := envconfig.Process(cCtx.String("env-prefix"), c); err != nil {
		return nil, fmt.Errorf("process environment config: %w", err)
	}

	if c.DatabaseURL == "" {
		return nil, fmt.Errorf("set DATABASE_URL")
	}

	return c, nil
}

func loadAWSConfig(ctx context.Context) (aws.Config, error) {
	config, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return aws.Config{}, fmt.Errorf("failed to load aws config: %w", err)
	}

	return config, nil
}

// objectStore is the photo bucket as the CLI sees it: the submission path
// plus removal of orphaned uploads.
type objectStore interface {
	report.ObjectStorage
	Delete(ctx context.Context, name string) error
}

// newObjectStorage picks the photo bucket implementation from STORAGE_BACKEND.
func newObjectStorage(c *types.Config, awsConfig aws.Config, logger logrus.FieldLogger) (objectStore, error) {
	switch c.StorageBackend {
	case "", "supabase":
		if c.SupabaseURL == "" || c.SupabaseServiceKey == "" {
			return nil, fmt.Errorf("set SUPABASE_URL and SUPABASE_SERVICE_KEY")
		}
		logger.WithField("bucket", c.StorageBucketName).Info("using supabase storage")
		return storage.NewSupabaseStorage(c.SupabaseURL, c.SupabaseServiceKey, c.StorageBucketName), nil
	case "s3":
		if c.S3PublicBaseURL == "" {
			return nil, fmt.Errorf("set S3_PUBLIC_BASE_URL")
		}
		logger.WithField("bucket", c.StorageBucketName).Info("using s3 storage")
		return storage.NewS3Storage(s3.NewFromConfig(awsConfig), c.StorageBucketName, c.S3PublicBaseURL), nil
	}

	return nil, fmt.Errorf("unknown STORAGE_BACKEND %q", c.StorageBackend)
}

func cliLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	return logger
}
