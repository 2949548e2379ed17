package document

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// DefaultCounterWidth is the zero padded width of counter suffixes
const DefaultCounterWidth = 6

// CounterSource hands out per type monotonically increasing counters.
// State lives in memory; Seed resumes it after a restart.
type CounterSource struct {
	width    int
	counters map[DocumentType]*atomic.Uint64
}

// NewCounterSource creates a counter source. width <= 0 uses DefaultCounterWidth.
func NewCounterSource(width int) *CounterSource {
	if width <= 0 {
		width = DefaultCounterWidth
	}
	counters := make(map[DocumentType]*atomic.Uint64, len(AllDocumentTypes()))
	for _, t := range AllDocumentTypes() {
		counters[t] = new(atomic.Uint64)
	}
	return &CounterSource{width: width, counters: counters}
}

// Seed raises the last issued value of docType to value, so the next call
// returns at least value+1. A lower value is ignored.
func (s *CounterSource) Seed(docType DocumentType, value uint64) {
	c, ok := s.counters[docType]
	if !ok {
		return
	}
	for {
		current := c.Load()
		if current >= value || c.CompareAndSwap(current, value) {
			return
		}
	}
}

// Next implements SequenceSource
func (s *CounterSource) Next(_ context.Context, docType DocumentType) (string, error) {
	c, ok := s.counters[docType]
	if !ok {
		return "", &InvalidDocumentTypeError{Value: docType.String()}
	}
	return fmt.Sprintf("%0*d", s.width, c.Add(1)), nil
}

const (
	DefaultUUIDSuffixLength = 12
	minUUIDSuffixLength     = 8
	maxUUIDSuffixLength     = 32
)

// UUIDSource derives suffixes from random UUIDs, upper case hex without dashes
type UUIDSource struct {
	length int
	newID  func() uuid.UUID
}

// NewUUIDSource creates a UUID source. length is clamped to [8, 32]; 0 uses the default.
func NewUUIDSource(length int) *UUIDSource {
	switch {
	case length == 0:
		length = DefaultUUIDSuffixLength
	case length < minUUIDSuffixLength:
		length = minUUIDSuffixLength
	case length > maxUUIDSuffixLength:
		length = maxUUIDSuffixLength
	}
	return &UUIDSource{length: length, newID: uuid.New}
}

// Next implements SequenceSource
func (s *UUIDSource) Next(_ context.Context, docType DocumentType) (string, error) {
	if !docType.IsValid() {
		return "", &InvalidDocumentTypeError{Value: docType.String()}
	}
	hex := strings.ReplaceAll(s.newID().String(), "-", "")
	return strings.ToUpper(hex[:s.length]), nil
}

const monthLayout = "200601"

// DatedSource prefixes the suffix of another source with the issue month (YYYYMM)
type DatedSource struct {
	inner SequenceSource
	now   func() time.Time
}

// NewDatedSource wraps inner. now may be nil.
func NewDatedSource(inner SequenceSource, now func() time.Time) *DatedSource {
	if now == nil {
		now = time.Now
	}
	return &DatedSource{inner: inner, now: now}
}

// Next implements SequenceSource
func (s *DatedSource) Next(ctx context.Context, docType DocumentType) (string, error) {
	suffix, err := s.inner.Next(ctx, docType)
	if err != nil {
		return "", err
	}
	return s.now().Format(monthLayout) + suffix, nil
}
