package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/Fatumayattani/lumi-hub/internal/config"
	"github.com/Fatumayattani/lumi-hub/internal/models"
)

// ErrDownloadUnavailable is returned when a product has no stored file
var ErrDownloadUnavailable = fmt.Errorf("download not available")

// DownloadService issues time-limited download links for verified buyers
type DownloadService struct {
	access  *AccessService
	storage *StorageService
	ttl     time.Duration
}

// NewDownloadService creates a new download service
func NewDownloadService(access *AccessService, storage *StorageService) *DownloadService {
	return &DownloadService{
		access:  access,
		storage: storage,
		ttl:     time.Duration(config.AppConfig.DownloadTTL) * time.Second,
	}
}

// ObjectPathFromFileURL derives the storage object path from a stored file
// reference: the final two URL segments, user_id/filename
func ObjectPathFromFileURL(fileURL string) (string, error) {
	parts := strings.Split(strings.TrimSuffix(fileURL, "/"), "/")
	if len(parts) < 2 || parts[len(parts)-1] == "" || parts[len(parts)-2] == "" {
		return "", fmt.Errorf("malformed file reference")
	}
	return parts[len(parts)-2] + "/" + parts[len(parts)-1], nil
}

// IssueDownload verifies the buyer's entitlement and returns a signed
// retrieval URL for the product file. The URL expires after the configured
// TTL; issuing another one leaves earlier unexpired URLs valid.
func (s *DownloadService) IssueDownload(userID string, product *models.Product) (string, error) {
	if err := s.access.VerifyAccess(userID, product); err != nil {
		return "", err
	}
	if product.FileURL == "" {
		return "", ErrDownloadUnavailable
	}

	objectPath, err := ObjectPathFromFileURL(product.FileURL)
	if err != nil {
		return "", ErrDownloadUnavailable
	}

	signedURL, err := s.storage.CreateSignedURL(BucketProductFiles, objectPath, s.ttl)
	if err != nil {
		return "", fmt.Errorf("failed to generate download link: %w", err)
	}
	return signedURL, nil
}
