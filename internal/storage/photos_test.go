package storage

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/hcardin/mesada/internal/config"
)

type fakeS3 struct {
	putKey  string
	putBody []byte
	putType string
	err     error
}

func (f *fakeS3) PutObject(ctx context.Context, input *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.putKey = *input.Key
	f.putType = *input.ContentType
	body, _ := io.ReadAll(input.Body)
	f.putBody = body
	return &s3.PutObjectOutput{}, nil
}

func testUploader(fake *fakeS3) *Uploader {
	u := NewUploader(config.S3Config{
		Endpoint:  "https://storage.example.com",
		Bucket:    "user-photos",
		Region:    "auto",
		AccessKey: "key",
		SecretKey: "secret",
	})
	u.client = fake
	u.now = func() time.Time { return time.Unix(1700000000, 0) }
	return u
}

func TestUploadKeyAndURL(t *testing.T) {
	fake := &fakeS3{}
	u := testUploader(fake)

	url, err := u.Upload(context.Background(), 42, []byte("jpeg-bytes"), "Foto do João.JPG")
	if err != nil {
		t.Fatalf("upload: %v", err)
	}

	wantKey := "users/user_42_1700000000.jpg"
	if fake.putKey != wantKey {
		t.Errorf("key = %q, want %q", fake.putKey, wantKey)
	}
	if fake.putType != "image/jpeg" {
		t.Errorf("content type = %q, want image/jpeg", fake.putType)
	}
	if string(fake.putBody) != "jpeg-bytes" {
		t.Errorf("body = %q", fake.putBody)
	}
	wantURL := "https://storage.example.com/user-photos/" + wantKey
	if url != wantURL {
		t.Errorf("url = %q, want %q", url, wantURL)
	}
}

func TestUploadDefaultsExtension(t *testing.T) {
	fake := &fakeS3{}
	u := testUploader(fake)

	if _, err := u.Upload(context.Background(), 7, []byte("x"), "noext"); err != nil {
		t.Fatalf("upload: %v", err)
	}
	if fake.putKey != "users/user_7_1700000000.jpg" {
		t.Errorf("key = %q", fake.putKey)
	}
}

func TestUploadPropagatesErrors(t *testing.T) {
	fake := &fakeS3{err: errors.New("access denied")}
	u := testUploader(fake)

	if _, err := u.Upload(context.Background(), 1, []byte("x"), "a.png"); err == nil {
		t.Fatal("expected upload error")
	}
}

func TestUploadDisabled(t *testing.T) {
	u := NewUploader(config.S3Config{})
	if u.Enabled() {
		t.Fatal("expected disabled uploader")
	}
	if _, err := u.Upload(context.Background(), 1, []byte("x"), "a.png"); err == nil {
		t.Fatal("expected error from disabled uploader")
	}
}

func TestPublicURLOverride(t *testing.T) {
	u := NewUploader(config.S3Config{
		Bucket:    "user-photos",
		AccessKey: "k",
		SecretKey: "s",
		PublicURL: "https://cdn.example.com/",
	})
	if got := u.publicURL("users/x.jpg"); got != "https://cdn.example.com/users/x.jpg" {
		t.Errorf("publicURL = %q", got)
	}
}

func TestSafeFilename(t *testing.T) {
	if got := safeFilename("Foto do João!.jpg"); got != "Foto_do_Joo.jpg" {
		t.Errorf("safeFilename = %q", got)
	}
}
