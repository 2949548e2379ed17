package printing

import (
	"bytes"
	"context"
	"embed"
	"html/template"
	"io/fs"
	"maps"
	"os"
	"strings"
	"time"

	"github.com/billydoc/backend/internal/domain/document"
	"github.com/billydoc/backend/internal/domain/shared/thai"
	"github.com/billydoc/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

//go:embed templates/*.html
var templateFS embed.FS

const layoutFile = "layout.html"

// TemplateEngine renders documents to HTML with html/template. One template
// set is parsed per document type: the shared layout plus the type's file.
type TemplateEngine struct {
	funcMap template.FuncMap
	source  fs.FS
	sets    map[document.DocumentType]*template.Template
}

// TemplateEngineOption configures the template engine
type TemplateEngineOption func(*TemplateEngine)

// WithTemplatesDir reads templates from dir instead of the embedded set.
// An empty dir keeps the embedded templates.
func WithTemplatesDir(dir string) TemplateEngineOption {
	return func(e *TemplateEngine) {
		if dir != "" {
			e.source = os.DirFS(dir)
		}
	}
}

// WithFuncs adds or overrides template functions
func WithFuncs(funcs template.FuncMap) TemplateEngineOption {
	return func(e *TemplateEngine) {
		maps.Copy(e.funcMap, funcs)
	}
}

// NewTemplateEngine parses the templates for every document type
func NewTemplateEngine(opts ...TemplateEngineOption) (*TemplateEngine, error) {
	sub, err := fs.Sub(templateFS, "templates")
	if err != nil {
		return nil, err
	}
	e := &TemplateEngine{
		funcMap: defaultFuncMap(),
		source:  sub,
		sets:    make(map[document.DocumentType]*template.Template, 3),
	}
	for _, opt := range opts {
		opt(e)
	}

	for _, docType := range document.AllDocumentTypes() {
		name := TemplateName(docType)
		tmpl, err := template.New(name).Funcs(e.funcMap).ParseFS(e.source, layoutFile, name)
		if err != nil {
			return nil, NewRenderError(ErrCodeTemplateNotFound, "failed to parse template "+name, err)
		}
		e.sets[docType] = tmpl
	}
	return e, nil
}

// TemplateName returns the file name of a document type's template
func TemplateName(docType document.DocumentType) string {
	return string(docType) + ".html"
}

// Render renders the view with the template of its document type
func (e *TemplateEngine) Render(ctx context.Context, view *View) (string, error) {
	if view == nil {
		return "", NewRenderError(ErrCodeInvalidHTML, "view is nil", nil)
	}
	tmpl, ok := e.sets[view.Type]
	if !ok {
		return "", NewRenderError(ErrCodeTemplateNotFound, "no template for document type "+string(view.Type), nil)
	}
	if err := ctx.Err(); err != nil {
		return "", NewRenderError(ErrCodeRenderTimeout, "template rendering cancelled", err)
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, TemplateName(view.Type), view); err != nil {
		return "", NewRenderError(ErrCodeRenderFailed, "failed to execute template", err)
	}
	return buf.String(), nil
}

// RenderString renders an ad-hoc template string with the engine's functions
func (e *TemplateEngine) RenderString(ctx context.Context, name, content string, data any) (string, error) {
	if content == "" {
		return "", NewRenderError(ErrCodeInvalidHTML, "template content is empty", nil)
	}
	tmpl, err := template.New(name).Funcs(e.funcMap).Parse(content)
	if err != nil {
		return "", NewRenderError(ErrCodeInvalidHTML, "failed to parse template", err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", NewRenderError(ErrCodeRenderFailed, "failed to execute template", err)
	}
	return buf.String(), nil
}

// Templates lists the loaded template names
func (e *TemplateEngine) Templates() []string {
	names := make([]string, 0, len(e.sets))
	for _, docType := range document.AllDocumentTypes() {
		if _, ok := e.sets[docType]; ok {
			names = append(names, TemplateName(docType))
		}
	}
	return names
}

func defaultFuncMap() template.FuncMap {
	return template.FuncMap{
		"formatMoney":    formatMoney,
		"formatMoneyRaw": formatMoneyRaw,
		"formatQuantity": formatQuantity,
		"formatPercent":  formatPercent,
		"bahtText":       bahtText,
		"thaiDate":       thaiDate,
		"formatDate":     formatDate,
		"term":           thai.BusinessTerm,
		"upper":          strings.ToUpper,
		"lower":          strings.ToLower,
		"title":          englishTitle.String,
		"trim":           strings.TrimSpace,
		"truncate":       truncate,
		"default":        defaultFunc,
		"add":            func(a, b int) int { return a + b },
	}
}

// =============================================================================
// Template Functions
// =============================================================================

// formatMoney formats a value as baht with symbol
// Example: 117700 -> "฿117,700.00"
func formatMoney(v any) string {
	return valueobject.NewTHB(toDecimal(v)).Format()
}

// formatMoneyRaw formats a value with thousand separators only
// Example: 117700 -> "117,700.00"
func formatMoneyRaw(v any) string {
	return valueobject.NewTHB(toDecimal(v)).Grouped()
}

// formatQuantity drops trailing zeros: 12.50 -> "12.5"
func formatQuantity(v any) string {
	return toDecimal(v).String()
}

// formatPercent formats a fraction as percentage with the given precision
// Example: 0.07 -> "7%"
func formatPercent(v any, precision int) string {
	return toDecimal(v).Mul(decimal.NewFromInt(100)).StringFixed(int32(precision)) + "%"
}

// bahtText spells the amount in Thai words; negative input renders empty
func bahtText(v any) string {
	s, err := thai.BahtText(toDecimal(v))
	if err != nil {
		return ""
	}
	return s
}

func thaiDate(v any) string {
	t := toTime(v)
	if t.IsZero() {
		return ""
	}
	return thai.FormatDate(t)
}

func formatDate(v any) string {
	t := toTime(v)
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}

// truncate cuts s to max runes, appending "..."
func truncate(s string, max int) string {
	const suffix = "..."
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	if max <= len(suffix) {
		return string(runes[:max])
	}
	return string(runes[:max-len(suffix)]) + suffix
}

func defaultFunc(val, def any) any {
	switch v := val.(type) {
	case nil:
		return def
	case string:
		if strings.TrimSpace(v) == "" {
			return def
		}
	case template.URL:
		if v == "" {
			return def
		}
	}
	return val
}

func toDecimal(v any) decimal.Decimal {
	switch val := v.(type) {
	case decimal.Decimal:
		return val
	case *decimal.Decimal:
		if val == nil {
			return decimal.Zero
		}
		return *val
	case int:
		return decimal.NewFromInt(int64(val))
	case int64:
		return decimal.NewFromInt(val)
	case float64:
		return decimal.NewFromFloat(val)
	case string:
		d, err := decimal.NewFromString(val)
		if err != nil {
			return decimal.Zero
		}
		return d
	default:
		return decimal.Zero
	}
}

func toTime(v any) time.Time {
	switch val := v.(type) {
	case time.Time:
		return val
	case *time.Time:
		if val == nil {
			return time.Time{}
		}
		return *val
	case string:
		for _, f := range []string{time.RFC3339, "2006-01-02"} {
			if t, err := time.Parse(f, val); err == nil {
				return t
			}
		}
	}
	return time.Time{}
}
