package fsxs3

import (
	"bytes"
	"context"
	"fmt"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3API is the subset of the S3 client used here.
type S3API interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3FileSystem implements fsx.FileSystem on one bucket, optionally under a key prefix.
type S3FileSystem struct {
	client S3API
	bucket string
	prefix string
}

func NewS3FileSystem(client S3API, bucket, prefix string) *S3FileSystem {
	return &S3FileSystem{client: client, bucket: bucket, prefix: prefix}
}

func (fs *S3FileSystem) WriteFile(ctx context.Context, name string, data []byte, contentType string) error {
	_, err := fs.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(fs.bucket),
		Key:         aws.String(fs.key(name)),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("s3 put %s: %w", name, err)
	}
	return nil
}

// DeleteFile is idempotent; S3 reports success for missing keys.
func (fs *S3FileSystem) DeleteFile(ctx context.Context, name string) error {
	_, err := fs.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(fs.bucket),
		Key:    aws.String(fs.key(name)),
	})
	if err != nil {
		return fmt.Errorf("s3 delete %s: %w", name, err)
	}
	return nil
}

func (fs *S3FileSystem) key(name string) string {
	if fs.prefix == "" {
		return name
	}
	return path.Join(fs.prefix, name)
}
