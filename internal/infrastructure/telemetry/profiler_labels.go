package telemetry

import (
	"context"
	"maps"
	"runtime/pprof"
	"sort"
	"strings"

	"github.com/grafana/pyroscope-go"
)

// Profiling label keys.
const (
	ProfilingLabelRoute        = "route"
	ProfilingLabelMethod       = "method"
	ProfilingLabelOperation    = "operation"
	ProfilingLabelDocumentType = "document_type"
	ProfilingLabelStage        = "stage"
	ProfilingLabelEngine       = "engine"
)

// MaxLabelValueLength caps label values so a bad caller cannot blow up
// the profile label set.
const MaxLabelValueLength = 128

// HighCardinalityLabels are never attached to profiles.
//
// Do not modify at runtime.
var HighCardinalityLabels = map[string]bool{
	"request_id":      true,
	"trace_id":        true,
	"span_id":         true,
	"document_id":     true,
	"document_number": true,
	"idempotency_key": true,
}

// WithProfilingLabels runs fn with pyroscope labels attached to the
// goroutine. The labels map is copied before use.
func WithProfilingLabels(ctx context.Context, labels map[string]string, fn func(context.Context)) {
	pairs := sanitizeLabels(maps.Clone(labels))
	if len(pairs) == 0 {
		fn(ctx)
		return
	}
	pyroscope.TagWrapper(ctx, pyroscope.Labels(pairs...), fn)
}

// WithPprofLabels is WithProfilingLabels on the bare runtime/pprof API,
// for binaries that do not start the pyroscope agent.
func WithPprofLabels(ctx context.Context, labels map[string]string, fn func(context.Context)) {
	pairs := sanitizeLabels(maps.Clone(labels))
	if len(pairs) == 0 {
		fn(ctx)
		return
	}
	pprof.Do(ctx, pprof.Labels(pairs...), fn)
}

// ProfilingScope accumulates labels before running a region.
type ProfilingScope struct {
	labels map[string]string
}

// NewProfilingScope starts a scope from an initial label set.
func NewProfilingScope(labels map[string]string) *ProfilingScope {
	scope := &ProfilingScope{labels: make(map[string]string, len(labels)+2)}
	maps.Copy(scope.labels, labels)
	return scope
}

func (s *ProfilingScope) WithLabel(key, value string) *ProfilingScope {
	s.labels[key] = value
	return s
}

func (s *ProfilingScope) WithOperation(operation string) *ProfilingScope {
	return s.WithLabel(ProfilingLabelOperation, operation)
}

func (s *ProfilingScope) WithDocumentType(docType string) *ProfilingScope {
	return s.WithLabel(ProfilingLabelDocumentType, docType)
}

func (s *ProfilingScope) WithStage(stage string) *ProfilingScope {
	return s.WithLabel(ProfilingLabelStage, stage)
}

func (s *ProfilingScope) WithEngine(engine string) *ProfilingScope {
	return s.WithLabel(ProfilingLabelEngine, engine)
}

// Labels returns a copy of the accumulated labels.
func (s *ProfilingScope) Labels() map[string]string {
	return maps.Clone(s.labels)
}

// Run executes fn with the accumulated labels.
func (s *ProfilingScope) Run(ctx context.Context, fn func(context.Context)) {
	WithProfilingLabels(ctx, s.labels, fn)
}

// sanitizeLabels drops empty and high-cardinality entries, truncates long
// values and returns key/value pairs sorted by key.
func sanitizeLabels(labels map[string]string) []string {
	if len(labels) == 0 {
		return nil
	}

	keys := make([]string, 0, len(labels))
	for k := range labels {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(labels)*2)
	for _, key := range keys {
		value := labels[key]
		if key == "" || value == "" {
			continue
		}
		clean := sanitizeLabelKey(key)
		if clean == "" || HighCardinalityLabels[clean] {
			continue
		}
		if len(value) > MaxLabelValueLength {
			value = value[:MaxLabelValueLength]
		}
		pairs = append(pairs, clean, value)
	}
	return pairs
}

// sanitizeLabelKey lowercases the key and keeps only [a-z0-9_].
func sanitizeLabelKey(key string) string {
	key = strings.ToLower(key)
	key = strings.NewReplacer(" ", "_", "-", "_").Replace(key)

	var b strings.Builder
	b.Grow(len(key))
	for i := 0; i < len(key); i++ {
		c := key[i]
		if (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9') || c == '_' {
			b.WriteByte(c)
		}
	}
	return b.String()
}

// HTTPRequestLabels builds the label set used by the HTTP middleware.
func HTTPRequestLabels(route, method string) map[string]string {
	labels := make(map[string]string, 2)
	if route != "" {
		labels[ProfilingLabelRoute] = route
	}
	if method != "" {
		labels[ProfilingLabelMethod] = method
	}
	return labels
}

// DocumentLabels builds the label set for one pipeline stage of a document.
func DocumentLabels(docType, stage string) map[string]string {
	labels := make(map[string]string, 2)
	if docType != "" {
		labels[ProfilingLabelDocumentType] = docType
	}
	if stage != "" {
		labels[ProfilingLabelStage] = stage
	}
	return labels
}
