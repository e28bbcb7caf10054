// Package archive keeps a copy of every uploaded statement PDF in a GCS
// bucket. It is optional plumbing: with no bucket configured nothing is
// stored, and a failed archive write never fails the upload.
package archive

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
)

// Archiver writes statement PDFs to one bucket. It assumes Application
// Default Credentials are configured.
type Archiver struct {
	bucket string
}

// New returns an Archiver for the bucket, or nil when bucket is empty so
// callers can treat archiving as disabled.
func New(bucket string) *Archiver {
	if bucket == "" {
		return nil
	}
	return &Archiver{bucket: bucket}
}

// Save stores the PDF under a date-partitioned object name and returns the
// gs:// URI.
func (a *Archiver) Save(ctx context.Context, filename string, data []byte) (string, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return "", fmt.Errorf("create storage client: %w", err)
	}
	defer client.Close()

	objectName := fmt.Sprintf("statements/%s/%s-%s",
		time.Now().Format("2006/01/02"), uuid.NewString(), filename)

	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	w := client.Bucket(a.bucket).Object(objectName).NewWriter(ctx)
	w.ContentType = "application/pdf"

	if _, err := io.Copy(w, bytes.NewReader(data)); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("copy to GCS writer: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("finalize upload: %w", err)
	}

	return fmt.Sprintf("gs://%s/%s", a.bucket, objectName), nil
}
