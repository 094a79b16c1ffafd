package store

import (
	"context"
	"os"
	"path/filepath"

	"github.com/kazerbreaker/murdero-image-studio/internal/log"
)

type UploadParams struct {
	Name        string
	Data        []byte
	ContentType string
	Metadata    map[string]string
}

type Uploader interface {
	Upload(context.Context, UploadParams) error
}

// FileUploader archives into a local directory.
type FileUploader struct {
	Dir string
}

func (u *FileUploader) Upload(ctx context.Context, params UploadParams) error {
	log.FromContextOrDiscard(ctx).WithGroup("file").Info("writing", "dir", u.Dir, "file", params.Name)
	if err := os.MkdirAll(u.Dir, 0o750); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(u.Dir, filepath.Base(params.Name)), params.Data, 0o600)
}

// NopUploader is used when no archive is configured.
type NopUploader struct{}

func (NopUploader) Upload(context.Context, UploadParams) error { return nil }
