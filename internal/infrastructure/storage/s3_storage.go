// Package storage provides object storage backends for generated PDFs.
package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	infraconfig "github.com/billydoc/backend/internal/infrastructure/config"
	"github.com/billydoc/backend/internal/infrastructure/printing"
	"go.uber.org/zap"
)

const contentTypePDF = "application/pdf"

// Ensure S3PDFStorage implements PDFStorage
var _ printing.PDFStorage = (*S3PDFStorage)(nil)

// S3PDFStorage stores generated PDFs in an S3 bucket.
// It is compatible with any S3-compatible storage (AWS S3, RustFS, MinIO, etc.)
type S3PDFStorage struct {
	client            *s3.Client
	presignClient     *s3.PresignClient
	bucket            string
	prefix            string
	maxFileSize       int64
	presignExpiration time.Duration
	logger            *zap.Logger
}

// S3PDFStorageOption is a functional option for configuring S3PDFStorage
type S3PDFStorageOption func(*S3PDFStorage)

// WithLogger sets a custom logger for S3PDFStorage
func WithLogger(logger *zap.Logger) S3PDFStorageOption {
	return func(s *S3PDFStorage) {
		s.logger = logger
	}
}

// WithPresignExpiration sets a custom presign expiration duration
func WithPresignExpiration(d time.Duration) S3PDFStorageOption {
	return func(s *S3PDFStorage) {
		s.presignExpiration = d
	}
}

// NewS3PDFStorage creates a new S3PDFStorage from configuration
func NewS3PDFStorage(cfg *infraconfig.StorageConfig, opts ...S3PDFStorageOption) (*S3PDFStorage, error) {
	if cfg == nil {
		return nil, errors.New("storage configuration is required")
	}
	if cfg.Bucket == "" {
		return nil, errors.New("storage bucket is required")
	}
	if cfg.AccessKey == "" {
		return nil, errors.New("storage access key is required")
	}
	if cfg.SecretKey == "" {
		return nil, errors.New("storage secret key is required")
	}

	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = "http://localhost:9000"
	}
	if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
		if cfg.UseSSL {
			endpoint = "https://" + endpoint
		} else {
			endpoint = "http://" + endpoint
		}
	}
	if _, err := url.Parse(endpoint); err != nil {
		return nil, fmt.Errorf("invalid storage endpoint: %w", err)
	}

	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}

	awsCfg, err := config.LoadDefaultConfig(context.Background(),
		config.WithRegion(region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKey,
			cfg.SecretKey,
			"",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS config: %w", err)
	}

	// S3-compatible servers often reject the SDK's default trailing checksums
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.UsePathStyle
		o.BaseEndpoint = aws.String(endpoint)
		o.RequestChecksumCalculation = aws.RequestChecksumCalculationWhenRequired
		o.ResponseChecksumValidation = aws.ResponseChecksumValidationWhenRequired
	})

	storage := &S3PDFStorage{
		client:            client,
		presignClient:     s3.NewPresignClient(client),
		bucket:            cfg.Bucket,
		prefix:            strings.Trim(cfg.Prefix, "/"),
		maxFileSize:       cfg.MaxFileSize,
		presignExpiration: cfg.PresignExpiration,
		logger:            zap.NewNop(),
	}
	for _, opt := range opts {
		opt(storage)
	}
	if storage.presignExpiration == 0 {
		storage.presignExpiration = 15 * time.Minute
	}
	if storage.maxFileSize == 0 {
		storage.maxFileSize = printing.DefaultMaxFileSize
	}

	return storage, nil
}

// EnsureBucket creates the bucket if it doesn't exist.
// Call this during application startup to ensure the bucket is ready.
func (s *S3PDFStorage) EnsureBucket(ctx context.Context) error {
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(s.bucket),
	})
	if err == nil {
		return nil
	}

	var notFound *types.NotFound
	var noSuchBucket *types.NoSuchBucket
	if !errors.As(err, &notFound) && !errors.As(err, &noSuchBucket) {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}

	s.logger.Info("Creating storage bucket", zap.String("bucket", s.bucket))
	_, err = s.client.CreateBucket(ctx, &s3.CreateBucketInput{
		Bucket: aws.String(s.bucket),
	})
	if err != nil {
		// Lost a creation race
		var alreadyOwned *types.BucketAlreadyOwnedByYou
		if errors.As(err, &alreadyOwned) {
			return nil
		}
		return fmt.Errorf("failed to create bucket: %w", err)
	}

	s.logger.Info("Storage bucket created successfully", zap.String("bucket", s.bucket))
	return nil
}

// objectKey prepends the configured prefix
func (s *S3PDFStorage) objectKey(key string) string {
	if s.prefix == "" {
		return key
	}
	return path.Join(s.prefix, key)
}

// Store uploads the PDF under {prefix}/{yyyy}/{mm}/{id}.pdf
func (s *S3PDFStorage) Store(ctx context.Context, req *printing.StoreRequest) (*printing.StoreResult, error) {
	if req == nil {
		return nil, printing.NewRenderError(printing.ErrCodeStorageFailed, "store request is nil", nil)
	}
	if len(req.PDFData) == 0 {
		return nil, printing.NewRenderError(printing.ErrCodeStorageFailed, "PDF data is empty", nil)
	}
	if int64(len(req.PDFData)) > s.maxFileSize {
		return nil, printing.NewRenderError(printing.ErrCodeFileTooLarge,
			fmt.Sprintf("PDF is %d bytes, limit is %d", len(req.PDFData), s.maxFileSize), nil)
	}

	createdAt := req.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	key := printing.ObjectKey(req.DocumentID, createdAt)

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(s.objectKey(key)),
		Body:          bytes.NewReader(req.PDFData),
		ContentType:   aws.String(contentTypePDF),
		ContentLength: aws.Int64(int64(len(req.PDFData))),
	})
	if err != nil {
		return nil, printing.NewRenderError(printing.ErrCodeStorageFailed, "failed to upload PDF", err)
	}

	downloadURL, _, err := s.GenerateDownloadURL(ctx, key, 0)
	if err != nil {
		// The object is stored; a missing URL only affects the response
		s.logger.Warn("failed to presign download URL", zap.String("key", key), zap.Error(err))
	}

	s.logger.Info("PDF stored",
		zap.String("bucket", s.bucket),
		zap.String("key", s.objectKey(key)),
		zap.Int("size", len(req.PDFData)))

	return &printing.StoreResult{
		Key:  key,
		URL:  downloadURL,
		Size: int64(len(req.PDFData)),
	}, nil
}

// Get streams a stored PDF
func (s *S3PDFStorage) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	if key == "" {
		return nil, printing.NewRenderError(printing.ErrCodeStorageFailed, "storage key is required", nil)
	}

	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.objectKey(key)),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, printing.NewRenderError(printing.ErrCodeNotFound, "PDF not found", err)
		}
		return nil, printing.NewRenderError(printing.ErrCodeStorageFailed, "failed to download PDF", err)
	}
	return out.Body, nil
}

// Delete removes an object. S3 reports success for missing keys.
func (s *S3PDFStorage) Delete(ctx context.Context, key string) error {
	if key == "" {
		return printing.NewRenderError(printing.ErrCodeStorageFailed, "storage key is required", nil)
	}

	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.objectKey(key)),
	})
	if err != nil {
		return printing.NewRenderError(printing.ErrCodeStorageFailed, "failed to delete PDF", err)
	}
	return nil
}

// CleanupOlderThan deletes every PDF under the prefix last modified before now-age
func (s *S3PDFStorage) CleanupOlderThan(ctx context.Context, age time.Duration) (int, error) {
	cutoff := time.Now().Add(-age)
	deleted := 0

	input := &s3.ListObjectsV2Input{Bucket: aws.String(s.bucket)}
	if s.prefix != "" {
		input.Prefix = aws.String(s.prefix + "/")
	}

	paginator := s3.NewListObjectsV2Paginator(s.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return deleted, printing.NewRenderError(printing.ErrCodeStorageFailed, "failed to list PDFs", err)
		}
		for _, obj := range page.Contents {
			key := aws.ToString(obj.Key)
			if !strings.HasSuffix(key, ".pdf") || obj.LastModified == nil || !obj.LastModified.Before(cutoff) {
				continue
			}
			if _, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
				Bucket: aws.String(s.bucket),
				Key:    obj.Key,
			}); err != nil {
				s.logger.Warn("failed to delete old PDF", zap.String("key", key), zap.Error(err))
				continue
			}
			deleted++
		}
	}

	s.logger.Info("cleanup completed",
		zap.Int("deleted", deleted),
		zap.Duration("age", age))
	return deleted, nil
}

// Ping checks the bucket is reachable
func (s *S3PDFStorage) Ping(ctx context.Context) error {
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(s.bucket),
	})
	if err != nil {
		return fmt.Errorf("storage bucket %s: %w", s.bucket, err)
	}
	return nil
}

// GenerateDownloadURL generates a presigned URL for downloading a PDF.
// A non-positive expiresIn uses the configured presign expiration.
func (s *S3PDFStorage) GenerateDownloadURL(
	ctx context.Context,
	key string,
	expiresIn time.Duration,
) (string, time.Time, error) {
	if key == "" {
		return "", time.Time{}, errors.New("storage key is required")
	}
	if expiresIn <= 0 {
		expiresIn = s.presignExpiration
	}

	presignReq, err := s.presignClient.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.objectKey(key)),
	}, s3.WithPresignExpires(expiresIn))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to generate download URL: %w", err)
	}

	return presignReq.URL, time.Now().Add(expiresIn), nil
}

// ObjectExists checks if a PDF exists in storage
func (s *S3PDFStorage) ObjectExists(ctx context.Context, key string) (bool, error) {
	if key == "" {
		return false, errors.New("storage key is required")
	}

	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.objectKey(key)),
	})
	if err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check object existence: %w", err)
	}
	return true, nil
}

// GetBucket returns the bucket name
func (s *S3PDFStorage) GetBucket() string {
	return s.bucket
}

func isNotFound(err error) bool {
	var notFound *types.NotFound
	var noSuchKey *types.NoSuchKey
	if errors.As(err, &notFound) || errors.As(err, &noSuchKey) {
		return true
	}
	// Some S3-compatible services return the code without a typed error
	return strings.Contains(err.Error(), "NotFound") || strings.Contains(err.Error(), "NoSuchKey")
}
