package printing

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultMaxFileSize caps a stored PDF
const DefaultMaxFileSize int64 = 10 << 20

// PDFStorage defines the interface for storing and retrieving PDF files
type PDFStorage interface {
	// Store saves a PDF file and returns its key
	Store(ctx context.Context, req *StoreRequest) (*StoreResult, error)
	// Get retrieves a PDF file by its key
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	// Delete removes a PDF file. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// CleanupOlderThan removes files older than the specified duration
	CleanupOlderThan(ctx context.Context, age time.Duration) (int, error)
	// Ping checks the backend is reachable
	Ping(ctx context.Context) error
}

// StoreRequest contains the parameters for storing a PDF
type StoreRequest struct {
	DocumentID uuid.UUID
	// CreatedAt selects the year/month folder
	CreatedAt time.Time
	PDFData   []byte
}

// StoreResult contains the result of storing a PDF
type StoreResult struct {
	// Key is the storage path relative to the storage root
	Key string
	// URL is where the PDF can be fetched, when the backend exposes one
	URL  string
	Size int64
}

// ObjectKey builds "{yyyy}/{mm}/{id}.pdf"
func ObjectKey(id uuid.UUID, createdAt time.Time) string {
	return path.Join(
		fmt.Sprintf("%04d", createdAt.Year()),
		fmt.Sprintf("%02d", int(createdAt.Month())),
		id.String()+".pdf",
	)
}

func validateStoreRequest(req *StoreRequest, maxSize int64) error {
	if req == nil {
		return NewRenderError(ErrCodeStorageFailed, "store request is nil", nil)
	}
	if req.DocumentID == uuid.Nil {
		return NewRenderError(ErrCodeStorageFailed, "document ID is required", nil)
	}
	if len(req.PDFData) == 0 {
		return NewRenderError(ErrCodeStorageFailed, "PDF data is empty", nil)
	}
	if maxSize > 0 && int64(len(req.PDFData)) > maxSize {
		return NewRenderError(ErrCodeFileTooLarge,
			fmt.Sprintf("PDF is %d bytes, limit is %d", len(req.PDFData), maxSize), nil)
	}
	return nil
}

// FileSystemStorageConfig contains configuration for file system storage
type FileSystemStorageConfig struct {
	// BasePath is the root directory for PDF storage
	BasePath string
	// BaseURL is the URL prefix for accessing PDFs
	BaseURL     string
	MaxFileSize int64
	Logger      *zap.Logger
}

// FileSystemStorage stores PDFs on the local file system
type FileSystemStorage struct {
	config *FileSystemStorageConfig
	logger *zap.Logger
}

// NewFileSystemStorage creates a new file system based PDF storage
func NewFileSystemStorage(config *FileSystemStorageConfig) (*FileSystemStorage, error) {
	if config == nil {
		config = &FileSystemStorageConfig{}
	}
	if config.BasePath == "" {
		config.BasePath = "output"
	}
	if config.BaseURL == "" {
		config.BaseURL = "/api/v1/documents/files"
	}
	if config.MaxFileSize == 0 {
		config.MaxFileSize = DefaultMaxFileSize
	}

	if err := os.MkdirAll(config.BasePath, 0o755); err != nil {
		return nil, NewRenderError(ErrCodeStorageFailed,
			fmt.Sprintf("failed to create storage directory: %s", config.BasePath), err)
	}

	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &FileSystemStorage{
		config: config,
		logger: logger.Named("fs_storage"),
	}, nil
}

// Store writes the PDF to {base}/{yyyy}/{mm}/{id}.pdf. The file is written to
// a temporary name first and renamed so readers never see a partial PDF.
func (s *FileSystemStorage) Store(ctx context.Context, req *StoreRequest) (*StoreResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, NewRenderError(ErrCodeStorageFailed, "operation cancelled", err)
	}
	if err := validateStoreRequest(req, s.config.MaxFileSize); err != nil {
		return nil, err
	}

	createdAt := req.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	key := ObjectKey(req.DocumentID, createdAt)
	fullPath := filepath.Join(s.config.BasePath, filepath.FromSlash(key))

	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return nil, NewRenderError(ErrCodeStorageFailed, "failed to create directory", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(fullPath), ".pdf-*")
	if err != nil {
		return nil, NewRenderError(ErrCodeStorageFailed, "failed to create temp file", err)
	}
	if _, err := tmp.Write(req.PDFData); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return nil, NewRenderError(ErrCodeStorageFailed, "failed to write PDF file", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return nil, NewRenderError(ErrCodeStorageFailed, "failed to write PDF file", err)
	}
	if err := os.Rename(tmp.Name(), fullPath); err != nil {
		_ = os.Remove(tmp.Name())
		return nil, NewRenderError(ErrCodeStorageFailed, "failed to move PDF file into place", err)
	}

	url := s.GetURL(key)
	s.logger.Info("PDF stored",
		zap.String("path", fullPath),
		zap.Int("size", len(req.PDFData)),
		zap.String("url", url))

	return &StoreResult{
		Key:  key,
		URL:  url,
		Size: int64(len(req.PDFData)),
	}, nil
}

// resolve maps a key onto a path under BasePath, refusing anything that escapes it
func (s *FileSystemStorage) resolve(key string) (string, error) {
	cleanPath := filepath.Clean(key)
	if key == "" || filepath.IsAbs(cleanPath) || containsDotDot(key) {
		s.logger.Warn("blocked potentially malicious path",
			zap.String("path", key),
			zap.String("cleanPath", cleanPath))
		return "", NewRenderError(ErrCodeStorageFailed, "invalid path", nil)
	}

	fullPath := filepath.Join(s.config.BasePath, cleanPath)

	absBase, err := filepath.Abs(s.config.BasePath)
	if err != nil {
		return "", NewRenderError(ErrCodeStorageFailed, "failed to resolve base path", err)
	}
	absPath, err := filepath.Abs(fullPath)
	if err != nil {
		return "", NewRenderError(ErrCodeStorageFailed, "failed to resolve file path", err)
	}
	if !strings.HasPrefix(absPath, absBase+string(filepath.Separator)) {
		s.logger.Warn("path escape attempt blocked",
			zap.String("path", key),
			zap.String("absPath", absPath),
			zap.String("absBase", absBase))
		return "", NewRenderError(ErrCodeStorageFailed, "invalid path", nil)
	}
	return fullPath, nil
}

// Get opens a stored PDF
func (s *FileSystemStorage) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, NewRenderError(ErrCodeStorageFailed, "operation cancelled", err)
	}

	fullPath, err := s.resolve(key)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, NewRenderError(ErrCodeNotFound, "PDF not found", err)
		}
		return nil, NewRenderError(ErrCodeStorageFailed, "failed to open PDF file", err)
	}
	return file, nil
}

// Delete removes a PDF file
func (s *FileSystemStorage) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return NewRenderError(ErrCodeStorageFailed, "operation cancelled", err)
	}

	fullPath, err := s.resolve(key)
	if err != nil {
		return err
	}

	if err := os.Remove(fullPath); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return NewRenderError(ErrCodeStorageFailed, "failed to delete PDF file", err)
	}

	s.logger.Info("PDF deleted", zap.String("path", key))
	return nil
}

// CleanupOlderThan removes files older than the specified duration
func (s *FileSystemStorage) CleanupOlderThan(ctx context.Context, age time.Duration) (int, error) {
	cutoff := time.Now().Add(-age)
	deletedCount := 0

	err := filepath.Walk(s.config.BasePath, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if info.IsDir() || filepath.Ext(path) != ".pdf" {
			return nil
		}
		if info.ModTime().Before(cutoff) {
			if err := os.Remove(path); err == nil {
				deletedCount++
				s.logger.Debug("deleted old PDF", zap.String("path", path))
			}
		}
		return nil
	})

	if err != nil && err != context.Canceled && err != context.DeadlineExceeded {
		return deletedCount, NewRenderError(ErrCodeStorageFailed, "cleanup walk failed", err)
	}

	s.logger.Info("cleanup completed",
		zap.Int("deleted", deletedCount),
		zap.Duration("age", age))

	return deletedCount, nil
}

// Ping checks the base directory is still writable
func (s *FileSystemStorage) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f, err := os.CreateTemp(s.config.BasePath, ".ping-*")
	if err != nil {
		return NewRenderError(ErrCodeStorageFailed, "storage directory is not writable", err)
	}
	name := f.Name()
	_ = f.Close()
	return os.Remove(name)
}

// GetURL returns the accessible URL for a stored PDF
func (s *FileSystemStorage) GetURL(key string) string {
	cleanPath := filepath.ToSlash(filepath.Clean(key))
	return fmt.Sprintf("%s/%s", strings.TrimRight(s.config.BaseURL, "/"), cleanPath)
}

// containsDotDot checks if a path contains ".." components
func containsDotDot(path string) bool {
	// Split on both separators before any normalization
	parts := strings.FieldsFunc(path, func(r rune) bool {
		return r == '/' || r == '\\' || r == filepath.Separator
	})
	return slices.Contains(parts, "..")
}

// Ensure FileSystemStorage implements PDFStorage
var _ PDFStorage = (*FileSystemStorage)(nil)
