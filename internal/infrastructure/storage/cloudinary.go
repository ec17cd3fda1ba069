// internal/infrastructure/storage/cloudinary.go
package storage

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/google/uuid"
)

// CloudinaryStore uploads documents to Cloudinary
type CloudinaryStore struct {
	cld    *cloudinary.Cloudinary
	folder string
}

// NewCloudinaryStore creates a store from a cloudinary:// URL
func NewCloudinaryStore(cloudinaryURL, folder string) (*CloudinaryStore, error) {
	if cloudinaryURL == "" {
		return nil, fmt.Errorf("cloudinary URL is required")
	}

	cld, err := cloudinary.NewFromURL(cloudinaryURL)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Cloudinary: %w", err)
	}

	return &CloudinaryStore{cld: cld, folder: folder}, nil
}

// StoreDocument uploads the document privately and returns its secure URL
func (c *CloudinaryStore) StoreDocument(ctx context.Context, filename string, r io.Reader) (string, error) {
	if _, err := ValidateDocumentName(filename); err != nil {
		return "", err
	}

	base := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	overwrite := false

	result, err := c.cld.Upload.Upload(ctx, io.LimitReader(r, MaxDocumentSize), uploader.UploadParams{
		PublicID:     fmt.Sprintf("%s_%s", base, uuid.New().String()),
		Folder:       c.folder,
		Overwrite:    &overwrite,
		ResourceType: "auto",
		Type:         "private",
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload document: %w", err)
	}
	if result.Error.Message != "" {
		return "", fmt.Errorf("failed to upload document: %s", result.Error.Message)
	}

	if result.SecureURL != "" {
		return result.SecureURL, nil
	}
	return strings.Replace(result.URL, "http://", "https://", 1), nil
}
