package storage

import (
	"context"
	"io"
)

type Uploader interface {
	Upload(ctx context.Context, objectName string, contentType string, r io.Reader) (storedPath string, err error)
}

type Downloader interface {
	Download(ctx context.Context, objectName string, maxBytes int64) ([]byte, error)
}

// ObjectStore holds resume PDFs when a bucket is configured.
type ObjectStore interface {
	Uploader
	Downloader
}
