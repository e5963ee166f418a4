package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path"
	"strings"
	"time"

	"tversky-reconcile/core/reconcile"
	"tversky-reconcile/core/storage"

	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
)

// Archiver stores run reports as JSON objects.
type Archiver struct {
	client storage.Client
	bucket string
	prefix string
	log    *zap.Logger
}

// NewArchiver creates an Archiver writing to bucket.
func NewArchiver(client storage.Client, bucket string, cfg Config, log *zap.Logger) *Archiver {
	if log == nil {
		log = zap.NewNop()
	}
	return &Archiver{
		client: client,
		bucket: bucket,
		prefix: strings.Trim(cfg.Prefix, "/"),
		log:    log,
	}
}

// Key returns the object key of a report: <prefix>/<hit>/<started>-<run>.json.
func (a *Archiver) Key(report *reconcile.Report) string {
	hit := report.HITID
	if hit == "" {
		hit = "unresolved"
	}
	name := fmt.Sprintf("%s-%s.json", report.Started.UTC().Format(time.RFC3339), report.RunID)
	return path.Join(a.prefix, hit, name)
}

// Archive uploads the report, creating the bucket when missing.
func (a *Archiver) Archive(ctx context.Context, report *reconcile.Report) (string, error) {
	if report == nil {
		return "", fmt.Errorf("no report to archive")
	}

	exists, err := a.client.BucketExists(ctx, a.bucket)
	if err != nil {
		return "", fmt.Errorf("failed to check bucket %s: %w", a.bucket, err)
	}
	if !exists {
		if err := a.client.MakeBucket(ctx, a.bucket, minio.MakeBucketOptions{}); err != nil {
			return "", fmt.Errorf("failed to create bucket %s: %w", a.bucket, err)
		}
		a.log.Info("Created archive bucket", zap.String("bucket", a.bucket))
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal report: %w", err)
	}

	key := a.Key(report)
	_, err = a.client.PutObject(ctx, a.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: "application/json",
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload report %s: %w", key, err)
	}

	a.log.Info("Archived run report", zap.String("bucket", a.bucket), zap.String("key", key))
	return key, nil
}
