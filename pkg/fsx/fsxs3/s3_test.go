package fsxs3_test

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/Abraxas-365/staffhub/pkg/fsx/fsxs3"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

type fakeS3 struct {
	objects map[string][]byte
	types   map[string]string
	putErr  error
	deletes int
}

func newFakeS3() *fakeS3 {
	return &fakeS3{objects: map[string][]byte{}, types: map[string]string{}}
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.putErr != nil {
		return nil, f.putErr
	}
	data, _ := io.ReadAll(in.Body)
	f.objects[aws.ToString(in.Key)] = data
	f.types[aws.ToString(in.Key)] = aws.ToString(in.ContentType)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) DeleteObject(_ context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	f.deletes++
	delete(f.objects, aws.ToString(in.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func TestWriteAndDeleteUnderPrefix(t *testing.T) {
	ctx := context.Background()
	fake := newFakeS3()
	fs := fsxs3.NewS3FileSystem(fake, "users", "qr")

	if err := fs.WriteFile(ctx, "e1.png", []byte("img"), "image/png"); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	if got := string(fake.objects["qr/e1.png"]); got != "img" {
		t.Errorf("object qr/e1.png = %q, want %q", got, "img")
	}
	if fake.types["qr/e1.png"] != "image/png" {
		t.Errorf("content type = %q, want image/png", fake.types["qr/e1.png"])
	}

	if err := fs.DeleteFile(ctx, "e1.png"); err != nil {
		t.Fatalf("DeleteFile() error = %v", err)
	}
	if _, ok := fake.objects["qr/e1.png"]; ok {
		t.Error("object should be gone after DeleteFile")
	}
	if err := fs.DeleteFile(ctx, "e1.png"); err != nil {
		t.Errorf("DeleteFile() of a missing key error = %v, want nil", err)
	}
	if fake.deletes != 2 {
		t.Errorf("DeleteObject calls = %d, want 2", fake.deletes)
	}
}

func TestWriteWithoutPrefix(t *testing.T) {
	fake := newFakeS3()
	fs := fsxs3.NewS3FileSystem(fake, "users", "")
	if err := fs.WriteFile(context.Background(), "e2.png", []byte("x"), "image/png"); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	if _, ok := fake.objects["e2.png"]; !ok {
		t.Error("object should be stored at the bare name")
	}
}

func TestWriteFailureWrapsCause(t *testing.T) {
	cause := errors.New("access denied")
	fake := newFakeS3()
	fake.putErr = cause
	err := fsxs3.NewS3FileSystem(fake, "users", "").WriteFile(context.Background(), "e3.png", nil, "image/png")
	if !errors.Is(err, cause) {
		t.Errorf("WriteFile() error = %v, want wrapped %v", err, cause)
	}
}
