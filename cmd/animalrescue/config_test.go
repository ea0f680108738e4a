package main

import (
	"testing"

	"animalrescue/internal/storage"
	"animalrescue/pkg/types"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/sirupsen/logrus/hooks/test"
)

func TestNewObjectStorage(t *testing.T) {
	logger, _ := test.NewNullLogger()

	tests := []struct {
		name    string
		config  types.Config
		wantErr bool
		check   func(t *testing.T, got any)
	}{
		{
			name:   "supabase",
			config: types.Config{StorageBackend: "supabase", SupabaseURL: "https://x.supabase.co", SupabaseServiceKey: "key", StorageBucketName: "animal-images"},
			check: func(t *testing.T, got any) {
				if _, ok := got.(*storage.SupabaseStorage); !ok {
					t.Errorf("got %T, want *storage.SupabaseStorage", got)
				}
			},
		},
		{
			name:    "supabase without credentials",
			config:  types.Config{StorageBackend: "supabase"},
			wantErr: true,
		},
		{
			name:   "s3",
			config: types.Config{StorageBackend: "s3", StorageBucketName: "animal-images", S3PublicBaseURL: "https://cdn.example.org"},
			check: func(t *testing.T, got any) {
				if _, ok := got.(*storage.S3Storage); !ok {
					t.Errorf("got %T, want *storage.S3Storage", got)
				}
			},
		},
		{
			name:    "s3 without public url",
			config:  types.Config{StorageBackend: "s3"},
			wantErr: true,
		},
		{
			name:    "unknown backend",
			config:  types.Config{StorageBackend: "ftp"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := newObjectStorage(&tt.config, aws.Config{Region: "us-east-1"}, logger)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected an error")
				}
				return
			}
			if err != nil {
				t.Fatalf("newObjectStorage: %v", err)
			}
			tt.check(t, got)
		})
	}
}
