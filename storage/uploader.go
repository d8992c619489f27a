package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
)

var (
	ErrUploadsDisabled     = errors.New("file uploads are not configured")
	ErrUnsupportedFileType = errors.New("unsupported file type")
)

type UploadResult struct {
	Key      string
	Location string
	ETag     string
}

type FileUploader interface {
	Upload(ctx context.Context, key string, contentType string, reader io.Reader) (*UploadResult, error)

	Delete(ctx context.Context, key string) error

	GetPublicURL(key string) string
}

var imageExtensions = map[string]string{
	"image/png":     ".png",
	"image/jpeg":    ".jpg",
	"image/webp":    ".webp",
	"image/svg+xml": ".svg",
}

// ObjectKey builds a unique key such as "teams/12/logo-<uuid>.png".
func ObjectKey(entity string, id int, kind string, contentType string) (string, error) {
	ext, ok := imageExtensions[strings.ToLower(contentType)]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFileType, contentType)
	}
	name := fmt.Sprintf("%s-%s%s", kind, uuid.NewString(), ext)
	return path.Join(entity, fmt.Sprint(id), name), nil
}

type disabledUploader struct{}

// NewDisabledUploader is used when object storage credentials are absent.
// Uploads fail with ErrUploadsDisabled; deletes are no-ops.
func NewDisabledUploader() FileUploader {
	return disabledUploader{}
}

func (disabledUploader) Upload(context.Context, string, string, io.Reader) (*UploadResult, error) {
	return nil, ErrUploadsDisabled
}

func (disabledUploader) Delete(context.Context, string) error { return nil }

func (disabledUploader) GetPublicURL(string) string { return "" }
