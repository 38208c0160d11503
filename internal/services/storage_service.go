package services

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Fatumayattani/lumi-hub/internal/config"

	"github.com/golang-jwt/jwt/v5"
)

// Storage buckets. Product files are private and only reachable through
// a signed URL; the other two buckets are public.
const (
	BucketProductImages = "product-images"
	BucketProductFiles  = "product-files"
	BucketStoreLogos    = "store-logos"
)

// StorageService is a disk-backed object store with public and
// signed-URL retrieval
type StorageService struct {
	root    string
	baseURL string
	secret  []byte
}

// NewStorageService creates a new storage service instance
func NewStorageService() *StorageService {
	return &StorageService{
		root:    config.AppConfig.StorageRoot,
		baseURL: config.AppConfig.BaseURL,
		secret:  []byte(config.AppConfig.StorageURLSecret),
	}
}

// IsPublicBucket reports whether objects in the bucket are served without a token
func IsPublicBucket(bucket string) bool {
	return bucket == BucketProductImages || bucket == BucketStoreLogos
}

func validBucket(bucket string) bool {
	return bucket == BucketProductImages || bucket == BucketProductFiles || bucket == BucketStoreLogos
}

// objectFile resolves an object path inside the storage root,
// rejecting traversal outside the bucket
func (s *StorageService) objectFile(bucket, objectPath string) (string, error) {
	if !validBucket(bucket) {
		return "", fmt.Errorf("unknown bucket: %s", bucket)
	}
	cleaned := filepath.ToSlash(filepath.Clean("/" + objectPath))
	if cleaned == "/" || strings.Contains(cleaned, "..") {
		return "", fmt.Errorf("invalid object path: %s", objectPath)
	}
	return filepath.Join(s.root, bucket, filepath.FromSlash(cleaned)), nil
}

// Upload stores an object and returns its path within the bucket
func (s *StorageService) Upload(bucket, objectPath string, r io.Reader) (string, error) {
	file, err := s.objectFile(bucket, objectPath)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(file), 0o755); err != nil {
		return "", fmt.Errorf("failed to create storage directory: %w", err)
	}
	out, err := os.Create(file)
	if err != nil {
		return "", fmt.Errorf("failed to create object: %w", err)
	}
	defer out.Close()
	if _, err := io.Copy(out, r); err != nil {
		return "", fmt.Errorf("failed to write object: %w", err)
	}
	return strings.TrimPrefix(filepath.ToSlash(filepath.Clean("/"+objectPath)), "/"), nil
}

// Open opens a stored object for reading
func (s *StorageService) Open(bucket, objectPath string) (*os.File, error) {
	file, err := s.objectFile(bucket, objectPath)
	if err != nil {
		return nil, err
	}
	return os.Open(file)
}

// PublicURL returns the stable URL of an object in a public bucket
func (s *StorageService) PublicURL(bucket, objectPath string) string {
	return fmt.Sprintf("%s/storage/o/%s/%s", s.baseURL, bucket, objectPath)
}

// signedURLClaims is the capability carried by a signed URL token
type signedURLClaims struct {
	Bucket string `json:"bucket"`
	Path   string `json:"path"`
	jwt.RegisteredClaims
}

// CreateSignedURL issues a time-limited retrieval URL for a private object.
// Issuing a new URL does not invalidate prior unexpired ones.
func (s *StorageService) CreateSignedURL(bucket, objectPath string, ttl time.Duration) (string, error) {
	if _, err := s.objectFile(bucket, objectPath); err != nil {
		return "", err
	}

	now := time.Now()
	claims := signedURLClaims{
		Bucket: bucket,
		Path:   objectPath,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign URL: %w", err)
	}
	return fmt.Sprintf("%s/storage/signed/%s/%s?token=%s", s.baseURL, bucket, objectPath, token), nil
}

// VerifySignedToken validates a signed URL token for the given object.
// Expired or mismatched tokens are rejected.
func (s *StorageService) VerifySignedToken(token, bucket, objectPath string) error {
	claims := &signedURLClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return fmt.Errorf("invalid download token: %w", err)
	}
	if !parsed.Valid || claims.Bucket != bucket || claims.Path != objectPath {
		return fmt.Errorf("download token does not match object")
	}
	return nil
}
