package document

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	suffixPattern = regexp.MustCompile(`^[A-Za-z0-9]+$`)
	numberPattern = regexp.MustCompile(`^(QT|INV|REC)-([A-Za-z0-9]+)$`)
)

// SequenceSource yields the unique suffix for the next number of a type.
// Implementations must be safe for concurrent use.
type SequenceSource interface {
	Next(ctx context.Context, docType DocumentType) (string, error)
}

// SequenceSourceFunc adapts a function to SequenceSource
type SequenceSourceFunc func(ctx context.Context, docType DocumentType) (string, error)

// Next calls f
func (f SequenceSourceFunc) Next(ctx context.Context, docType DocumentType) (string, error) {
	return f(ctx, docType)
}

// NumberGenerator formats document numbers as PREFIX-SUFFIX
type NumberGenerator struct {
	source SequenceSource
}

// NewNumberGenerator creates a generator backed by source
func NewNumberGenerator(source SequenceSource) *NumberGenerator {
	return &NumberGenerator{source: source}
}

// Generate returns the next document number for docType
func (g *NumberGenerator) Generate(ctx context.Context, docType DocumentType) (string, error) {
	prefix := docType.Prefix()
	if prefix == "" {
		return "", &InvalidDocumentTypeError{Value: docType.String()}
	}

	suffix, err := g.source.Next(ctx, docType)
	if err != nil {
		return "", fmt.Errorf("next sequence for %s: %w", docType, err)
	}
	if !suffixPattern.MatchString(suffix) {
		return "", &InvalidSequenceError{Suffix: suffix}
	}

	return prefix + "-" + suffix, nil
}

// IsValidNumber reports whether s is a well formed document number
func IsValidNumber(s string) bool {
	return numberPattern.MatchString(s)
}

// TypeOfNumber returns the document type encoded in a document number
func TypeOfNumber(number string) (DocumentType, error) {
	m := numberPattern.FindStringSubmatch(strings.TrimSpace(number))
	if m == nil {
		return "", &InvalidDocumentTypeError{Value: number}
	}
	for _, t := range AllDocumentTypes() {
		if t.Prefix() == m[1] {
			return t, nil
		}
	}
	return "", &InvalidDocumentTypeError{Value: number}
}

// CounterOf returns the counter a counter-backed source encoded in number.
// dated numbers carry a YYYYMM prefix ahead of the counter.
func CounterOf(number string, dated bool) (DocumentType, uint64, error) {
	docType, err := TypeOfNumber(number)
	if err != nil {
		return "", 0, err
	}
	suffix := strings.TrimSpace(number)[len(docType.Prefix())+1:]
	if dated {
		if len(suffix) <= len(monthLayout) {
			return "", 0, &InvalidSequenceError{Suffix: suffix}
		}
		suffix = suffix[len(monthLayout):]
	}
	n, err := strconv.ParseUint(suffix, 10, 64)
	if err != nil {
		return "", 0, &InvalidSequenceError{Suffix: suffix}
	}
	return docType, n, nil
}
