// internal/infrastructure/storage/documents.go
package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/hackerz/marketplace/internal/config"
)

// MaxDocumentSize bounds identity document uploads
const MaxDocumentSize = 10 << 20

var allowedDocumentExtensions = map[string]bool{
	".pdf":  true,
	".jpg":  true,
	".jpeg": true,
	".png":  true,
}

// DocumentStore keeps vendor identity documents and returns a reference
// (relative path or URL) to persist on the vendor record.
type DocumentStore interface {
	StoreDocument(ctx context.Context, filename string, r io.Reader) (string, error)
}

// NewDocumentStore picks the configured document backend
func NewDocumentStore(cfg *config.Config) (DocumentStore, error) {
	switch cfg.Storage.DocumentProvider {
	case "cloudinary":
		return NewCloudinaryStore(cfg.Storage.CloudinaryURL, cfg.Storage.CloudinaryFolder)
	case "local", "":
		return NewLocalDocuments(NewLocal(cfg.Storage.MediaRoot)), nil
	default:
		return nil, fmt.Errorf("unsupported document provider: %s", cfg.Storage.DocumentProvider)
	}
}

// ValidateDocumentName checks the extension of an uploaded document
func ValidateDocumentName(filename string) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if !allowedDocumentExtensions[ext] {
		return "", fmt.Errorf("file type %s is not allowed", ext)
	}
	return ext, nil
}

// LocalDocuments stores documents on the local media root
type LocalDocuments struct {
	files *Local
}

func NewLocalDocuments(files *Local) *LocalDocuments {
	return &LocalDocuments{files: files}
}

func (d *LocalDocuments) StoreDocument(ctx context.Context, filename string, r io.Reader) (string, error) {
	ext, err := ValidateDocumentName(filename)
	if err != nil {
		return "", err
	}

	relPath := path.Join("vendors", "documents", uuid.New().String()+ext)
	return d.files.Put(ctx, relPath, io.LimitReader(r, MaxDocumentSize))
}
