package fsx

import (
	"context"
	"net/http"
	"strings"

	"github.com/Abraxas-365/staffhub/pkg/errx"
)

// BucketKind names a logical storage area. Only user assets exist today.
type BucketKind string

const BucketUser BucketKind = "user"

// FileSystem is the storage backend behind a bucket kind. Assets are
// written once and removed on rollback; nothing reads them back here.
type FileSystem interface {
	WriteFile(ctx context.Context, path string, data []byte, contentType string) error
	DeleteFile(ctx context.Context, path string) error
}

var ErrRegistry = errx.NewRegistry("FSX")

var (
	CodeUnknownBucket = ErrRegistry.Register("UNKNOWN_BUCKET", errx.TypeInternal, http.StatusInternalServerError, "Bucket does not exist")
	CodeUploadFailed  = ErrRegistry.Register("UPLOAD_FAILED", errx.TypeInternal, http.StatusInternalServerError, "File upload failed")
	CodeDeleteFailed  = ErrRegistry.Register("DELETE_FAILED", errx.TypeInternal, http.StatusInternalServerError, "File delete failed")
)

type bucket struct {
	fs      FileSystem
	baseURL string
}

// Uploader routes uploads to the file system registered for each bucket kind
// and builds the public URL of stored objects.
type Uploader struct {
	buckets map[BucketKind]bucket
}

func NewUploader() *Uploader {
	return &Uploader{buckets: make(map[BucketKind]bucket)}
}

// Mount registers fs for kind; baseURL prefixes object names in URL.
func (u *Uploader) Mount(kind BucketKind, fs FileSystem, baseURL string) *Uploader {
	u.buckets[kind] = bucket{fs: fs, baseURL: baseURL}
	return u
}

// Upload stores data under name in the bucket of kind.
func (u *Uploader) Upload(ctx context.Context, kind BucketKind, data []byte, name, mimeType string) error {
	b, ok := u.buckets[kind]
	if !ok {
		return ErrRegistry.New(CodeUnknownBucket).WithDetail("bucket", string(kind))
	}
	if err := b.fs.WriteFile(ctx, name, data, mimeType); err != nil {
		return ErrRegistry.NewWithCause(CodeUploadFailed, err).WithDetail("name", name)
	}
	return nil
}

// Remove deletes name from the bucket of kind. Missing objects are not an error.
func (u *Uploader) Remove(ctx context.Context, kind BucketKind, name string) error {
	b, ok := u.buckets[kind]
	if !ok {
		return ErrRegistry.New(CodeUnknownBucket).WithDetail("bucket", string(kind))
	}
	if err := b.fs.DeleteFile(ctx, name); err != nil {
		return ErrRegistry.NewWithCause(CodeDeleteFailed, err).WithDetail("name", name)
	}
	return nil
}

// URL returns the public location of name in kind.
func (u *Uploader) URL(kind BucketKind, name string) string {
	b := u.buckets[kind]
	if b.baseURL == "" {
		return name
	}
	return strings.TrimRight(b.baseURL, "/") + "/" + strings.TrimLeft(name, "/")
}
