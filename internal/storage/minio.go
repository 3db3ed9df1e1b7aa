// Package storage exports shareable analysis reports to S3-compatible
// object storage.
package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/bennettabowman-ui/conkord/internal/config"
	"github.com/bennettabowman-ui/conkord/internal/domain"
)

// shareLinkTTL bounds how long a presigned report link stays valid.
const shareLinkTTL = 7 * 24 * time.Hour

// ReportStore uploads report JSON and mints share links.
type ReportStore struct {
	client *minio.Client
	bucket string
}

// New creates a report store against S3-compatible storage.
func New(cfg config.StorageConfig) (*ReportStore, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("creating storage client: %w", err)
	}

	return &ReportStore{
		client: client,
		bucket: cfg.Bucket,
	}, nil
}

// EnsureBucket creates the report bucket if it doesn't exist.
func (s *ReportStore) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("checking bucket existence: %w", err)
	}

	if !exists {
		if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("creating bucket: %w", err)
		}
	}

	return nil
}

// ShareReport uploads an analysis report and returns a presigned link.
func (s *ReportStore) ShareReport(ctx context.Context, analysis *domain.Analysis) (string, error) {
	data, err := json.Marshal(analysis.Result)
	if err != nil {
		return "", fmt.Errorf("marshaling report: %w", err)
	}

	key := fmt.Sprintf("reports/%s.json", analysis.ID)

	_, err = s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: "application/json",
	})
	if err != nil {
		return "", fmt.Errorf("uploading report: %w", err)
	}

	url, err := s.client.PresignedGetObject(ctx, s.bucket, key, shareLinkTTL, nil)
	if err != nil {
		return "", fmt.Errorf("generating share link: %w", err)
	}

	return url.String(), nil
}

// GetReport downloads a previously shared report.
func (s *ReportStore) GetReport(ctx context.Context, analysisID string) (*domain.AnalysisResult, error) {
	key := fmt.Sprintf("reports/%s.json", analysisID)

	obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("getting report: %w", err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, fmt.Errorf("reading report: %w", err)
	}

	var result domain.AnalysisResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("parsing report: %w", err)
	}

	return &result, nil
}

// DeleteReport removes a shared report.
func (s *ReportStore) DeleteReport(ctx context.Context, analysisID string) error {
	key := fmt.Sprintf("reports/%s.json", analysisID)
	return s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{})
}
