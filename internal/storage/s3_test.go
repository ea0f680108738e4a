package storage

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

type fakeS3 struct {
	put    *s3.PutObjectInput
	body   []byte
	putErr error
	del    *s3.DeleteObjectInput
}

func (f *fakeS3) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.put = params
	f.body, _ = io.ReadAll(params.Body)
	if f.putErr != nil {
		return nil, f.putErr
	}
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	f.del = params
	return &s3.DeleteObjectOutput{}, nil
}

func TestS3StorageUpload(t *testing.T) {
	client := &fakeS3{}
	s := NewS3Storage(client, "animal-images", "https://cdn.example.test/")

	if err := s.Upload(context.Background(), "1.jpg", []byte("img"), "image/jpeg"); err != nil {
		t.Fatalf("Upload() error = %v", err)
	}

	if aws.ToString(client.put.Bucket) != "animal-images" || aws.ToString(client.put.Key) != "1.jpg" {
		t.Errorf("unexpected target %s/%s", aws.ToString(client.put.Bucket), aws.ToString(client.put.Key))
	}
	if aws.ToString(client.put.ContentType) != "image/jpeg" {
		t.Errorf("content type = %q", aws.ToString(client.put.ContentType))
	}
	if string(client.body) != "img" {
		t.Errorf("body = %q", client.body)
	}

	if got := s.PublicURL("1.jpg"); got != "https://cdn.example.test/1.jpg" {
		t.Errorf("PublicURL() = %q", got)
	}
}

func TestS3StorageUploadError(t *testing.T) {
	cause := errors.New("access denied")
	s := NewS3Storage(&fakeS3{putErr: cause}, "animal-images", "https://cdn.example.test")

	err := s.Upload(context.Background(), "1.jpg", []byte("img"), "image/jpeg")
	if !errors.Is(err, cause) {
		t.Fatalf("Upload() error = %v, want wrapped %v", err, cause)
	}
}
