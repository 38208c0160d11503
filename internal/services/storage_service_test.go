package services

import (
	"io"
	"strings"
	"testing"
	"time"
)

func TestUploadAndOpen(t *testing.T) {
	setupTest(t)
	storage := NewStorageService()

	path, err := storage.Upload(BucketProductImages, "creator-1/cover.png", strings.NewReader("pngbytes"))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if path != "creator-1/cover.png" {
		t.Fatalf("expected normalized path creator-1/cover.png, got %q", path)
	}

	file, err := storage.Open(BucketProductImages, path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != "pngbytes" {
		t.Fatalf("expected stored content, got %q", data)
	}
}

func TestUploadRejectsUnknownBucket(t *testing.T) {
	setupTest(t)
	storage := NewStorageService()

	if _, err := storage.Upload("secrets", "x", strings.NewReader("x")); err == nil {
		t.Fatal("expected error for unknown bucket")
	}
	if _, err := storage.Upload(BucketProductFiles, "", strings.NewReader("x")); err == nil {
		t.Fatal("expected error for empty object path")
	}
}

func TestPublicBuckets(t *testing.T) {
	if !IsPublicBucket(BucketProductImages) || !IsPublicBucket(BucketStoreLogos) {
		t.Fatal("image and logo buckets must be public")
	}
	if IsPublicBucket(BucketProductFiles) {
		t.Fatal("product files bucket must not be public")
	}
}

func TestSignedURLRoundTrip(t *testing.T) {
	setupTest(t)
	storage := NewStorageService()

	url, err := storage.CreateSignedURL(BucketProductFiles, "creator-1/icons.zip", time.Hour)
	if err != nil {
		t.Fatalf("create signed URL: %v", err)
	}
	token := url[strings.Index(url, "token=")+len("token="):]

	if err := storage.VerifySignedToken(token, BucketProductFiles, "creator-1/icons.zip"); err != nil {
		t.Fatalf("token should verify for its object: %v", err)
	}
	if err := storage.VerifySignedToken(token, BucketProductFiles, "creator-1/other.zip"); err == nil {
		t.Fatal("token must not verify for a different object")
	}
	if err := storage.VerifySignedToken(token, BucketProductImages, "creator-1/icons.zip"); err == nil {
		t.Fatal("token must not verify for a different bucket")
	}
}

func TestSignedURLExpires(t *testing.T) {
	setupTest(t)
	storage := NewStorageService()

	url, err := storage.CreateSignedURL(BucketProductFiles, "creator-1/icons.zip", -time.Minute)
	if err != nil {
		t.Fatalf("create signed URL: %v", err)
	}
	token := url[strings.Index(url, "token=")+len("token="):]

	if err := storage.VerifySignedToken(token, BucketProductFiles, "creator-1/icons.zip"); err == nil {
		t.Fatal("expired token must be rejected")
	}
}

func TestSignedURLRejectsForeignSignature(t *testing.T) {
	setupTest(t)
	storage := NewStorageService()

	url, err := storage.CreateSignedURL(BucketProductFiles, "creator-1/icons.zip", time.Hour)
	if err != nil {
		t.Fatalf("create signed URL: %v", err)
	}
	token := url[strings.Index(url, "token=")+len("token="):]

	other := &StorageService{root: storage.root, baseURL: storage.baseURL, secret: []byte("other-secret")}
	if err := other.VerifySignedToken(token, BucketProductFiles, "creator-1/icons.zip"); err == nil {
		t.Fatal("token signed with a different secret must be rejected")
	}
}
