// Package document orchestrates document generation: assembly, rendering,
// storage, persistence and lifecycle events.
package document

import (
	"context"
	"fmt"
	"time"

	"github.com/billydoc/backend/internal/domain/document"
	"github.com/billydoc/backend/internal/domain/printing"
	"github.com/billydoc/backend/internal/domain/shared"
	"github.com/billydoc/backend/internal/domain/shared/thai"
	infra "github.com/billydoc/backend/internal/infrastructure/printing"
	"github.com/billydoc/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const idempotencyKeyPrefix = "generate:"

// ErrNoPDF is returned when a document record has no stored file
var ErrNoPDF = shared.NewDomainError("NO_PDF", "Document has no PDF")

// HTMLRenderer turns a view into HTML for HTML based PDF engines
type HTMLRenderer interface {
	Render(ctx context.Context, view *infra.View) (string, error)
}

// ImageLoader resolves the company images named in a document
type ImageLoader interface {
	LoadImages(headerLogo, footerLogo, signature string) (infra.Images, error)
}

// Metrics receives the outcomes the service observes directly.
// Successful generations and render failures are counted from events.
type Metrics interface {
	RecordReplay(ctx context.Context, docType string)
	RecordRender(ctx context.Context, engine string, d time.Duration)
	RecordFailure(ctx context.Context, docType, stage string)
}

// Settings are the document defaults taken from configuration
type Settings struct {
	DefaultTaxRate decimal.Decimal
	MaxAmount      decimal.Decimal
	Company        document.Company
	Page           printing.PageSetup
	RenderTimeout  time.Duration
	IdempotencyTTL time.Duration
	// DownloadPath is prefixed to "/{id}/pdf" to build download links
	DownloadPath string
}

// Dependencies are the collaborators of Service. Templates, Images, Events,
// Idempotency and Metrics are optional.
type Dependencies struct {
	Assembler   *document.Assembler
	Repository  document.Repository
	Renderer    infra.PDFRenderer
	Storage     infra.PDFStorage
	Templates   HTMLRenderer
	Images      ImageLoader
	Events      shared.EventPublisher
	Idempotency shared.IdempotencyStore
	Metrics     Metrics
}

// Service handles document operations
type Service struct {
	deps     Dependencies
	settings Settings
	logger   *zap.Logger
}

// NewService creates a Service
func NewService(deps Dependencies, settings Settings, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if settings.IdempotencyTTL <= 0 {
		settings.IdempotencyTTL = shared.DefaultIdempotencyConfig().TTL
	}
	if settings.DownloadPath == "" {
		settings.DownloadPath = "/api/v1/documents"
	}
	if settings.Page == (printing.PageSetup{}) {
		settings.Page = printing.DefaultPageSetup()
	}
	return &Service{deps: deps, settings: settings, logger: logger}
}

// =============================================================================
// Generation
// =============================================================================

// Generate assembles, renders, stores and records a document.
// With an idempotency key, a repeated request returns the first result.
func (s *Service) Generate(ctx context.Context, req GenerateRequest) (resp *DocumentResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "DocumentService", "Generate",
		telemetry.WithAttribute(telemetry.SpanAttrDocumentType, req.DocumentType),
		telemetry.WithAttribute(telemetry.SpanAttrItemCount, len(req.Items)),
	)
	defer func() {
		if err != nil {
			telemetry.RecordError(span, err)
		}
		span.End()
	}()

	if key := req.IdempotencyKey; key != "" && s.deps.Idempotency != nil {
		telemetry.SetAttribute(span, telemetry.SpanAttrIdempotencyKey, key)
		replay, claimed, err := s.claim(ctx, key, req.DocumentType)
		if err != nil || replay != nil {
			return replay, err
		}
		if claimed {
			defer func() {
				s.settle(ctx, key, resp, err)
			}()
		}
	}

	resp, err = s.generate(ctx, req)
	if err == nil {
		telemetry.AnnotateDocument(span, telemetry.DocumentSpan{
			ID:        resp.ID,
			Number:    resp.DocumentNo,
			Total:     resp.Total,
			TaxAmount: resp.TaxAmount,
		})
	}
	return resp, err
}

// claim reserves key. It returns the earlier response for a completed key.
// claimed is false when the store could not be reached.
func (s *Service) claim(ctx context.Context, key, docType string) (*DocumentResponse, bool, error) {
	claimed, existing, err := s.deps.Idempotency.Claim(ctx, idempotencyKeyPrefix+key, s.settings.IdempotencyTTL)
	if err != nil {
		s.logger.Warn("Idempotency store unavailable, generating without deduplication",
			zap.String("idempotency_key", key), zap.Error(err))
		return nil, false, nil
	}
	if claimed {
		return nil, true, nil
	}
	if !existing.Completed {
		return nil, false, shared.ErrIdempotencyKeyInFlight
	}

	id, err := uuid.Parse(existing.Result)
	if err != nil {
		return nil, false, fmt.Errorf("idempotency key %s holds invalid result %q: %w", key, existing.Result, err)
	}
	replay, err := s.Get(ctx, id)
	if err != nil {
		return nil, false, fmt.Errorf("replay idempotent request: %w", err)
	}
	replay.Replayed = true
	if s.deps.Metrics != nil {
		s.deps.Metrics.RecordReplay(ctx, docType)
	}
	s.logger.Info("Idempotent replay", zap.String("idempotency_key", key), zap.String("document_no", replay.DocumentNo))
	return replay, false, nil
}

// settle completes the key on success and releases it on failure
func (s *Service) settle(ctx context.Context, key string, resp *DocumentResponse, err error) {
	full := idempotencyKeyPrefix + key
	if err != nil || resp == nil {
		if rerr := s.deps.Idempotency.Release(ctx, full); rerr != nil {
			s.logger.Warn("Failed to release idempotency key", zap.String("idempotency_key", key), zap.Error(rerr))
		}
		return
	}
	if cerr := s.deps.Idempotency.Complete(ctx, full, resp.ID, s.settings.IdempotencyTTL); cerr != nil {
		s.logger.Warn("Failed to complete idempotency key", zap.String("idempotency_key", key), zap.Error(cerr))
	}
}

func (s *Service) generate(ctx context.Context, req GenerateRequest) (*DocumentResponse, error) {
	doc, err := s.deps.Assembler.Assemble(ctx, s.assembleRequest(req))
	if err != nil {
		stage := telemetry.StageValidate
		if st, ok := document.StageOf(err); ok && st == document.StageNumbering {
			stage = telemetry.StageNumber
		}
		s.recordFailure(ctx, req.DocumentType, stage)
		return nil, err
	}
	log := s.logger.With(
		zap.String("document_id", doc.ID().String()),
		zap.String("document_no", doc.Number()),
		zap.String("document_type", string(doc.Type())),
	)

	pdf, err := s.render(ctx, doc)
	if err != nil {
		log.Error("PDF rendering failed", zap.Error(err))
		s.saveFailed(ctx, doc, log)
		s.publish(ctx, document.NewRenderFailedEvent(doc, err.Error()))
		return nil, fmt.Errorf("render %s: %w", doc.Number(), err)
	}

	stored, err := s.deps.Storage.Store(ctx, &infra.StoreRequest{
		DocumentID: doc.ID(),
		CreatedAt:  doc.CreatedAt(),
		PDFData:    pdf.PDFData,
	})
	if err != nil {
		log.Error("PDF storage failed", zap.Error(err))
		s.recordFailure(ctx, string(doc.Type()), telemetry.StageStore)
		s.saveFailed(ctx, doc, log)
		return nil, fmt.Errorf("store %s: %w", doc.Number(), err)
	}

	record := document.NewRecord(doc, stored.Key, stored.Size)
	if err := s.deps.Repository.Save(ctx, record); err != nil {
		s.recordFailure(ctx, string(doc.Type()), telemetry.StagePersist)
		if derr := s.deps.Storage.Delete(ctx, stored.Key); derr != nil {
			log.Warn("Failed to remove orphaned PDF", zap.String("file_key", stored.Key), zap.Error(derr))
		}
		return nil, fmt.Errorf("save %s: %w", doc.Number(), err)
	}

	s.publish(ctx, document.NewGeneratedEvent(doc, stored.Key, stored.Size))
	log.Info("Document generated",
		zap.String("total", doc.Total().StringFixed(document.TaxPlaces)),
		zap.String("file_key", stored.Key),
		zap.Int("pages", pdf.PageCount),
	)
	return s.toResponse(record, false), nil
}

func (s *Service) assembleRequest(req GenerateRequest) document.AssembleRequest {
	rate := s.settings.DefaultTaxRate
	if req.TaxRate != nil {
		rate = *req.TaxRate
	}
	return document.AssembleRequest{
		DocumentType: req.DocumentType,
		Customer: document.Customer{
			Name:    req.CustomerName,
			Email:   req.CustomerEmail,
			Address: req.CustomerAddress,
			TaxID:   req.CustomerTaxID,
			Phone:   req.CustomerPhone,
		},
		Items:    toRawItems(req.Items),
		TaxRate:  rate,
		Company:  s.settings.Company,
		Language: document.Language(req.Language),
		Note:     req.Note,
	}
}

// render builds the view and runs the PDF engine under profiling labels
func (s *Service) render(ctx context.Context, doc *document.Document) (*infra.RenderResult, error) {
	ctx, span := telemetry.StartSpan(ctx, "DocumentService.render",
		telemetry.WithAttribute(telemetry.SpanAttrEngine, s.deps.Renderer.Name()),
	)
	defer span.End()

	var images infra.Images
	if s.deps.Images != nil {
		company := doc.Company()
		loaded, err := s.deps.Images.LoadImages(company.HeaderLogo, company.FooterLogo, company.Signature)
		if err != nil {
			telemetry.RecordError(span, err)
			return nil, fmt.Errorf("load images: %w", err)
		}
		images = loaded
	}

	view, err := infra.NewView(doc, images)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	req := &infra.RenderRequest{
		View:    view,
		Page:    s.settings.Page,
		Title:   view.Title + " " + view.Number,
		Timeout: s.settings.RenderTimeout,
	}
	if s.deps.Templates != nil {
		html, err := s.deps.Templates.Render(ctx, view)
		if err != nil {
			telemetry.RecordError(span, err)
			return nil, err
		}
		req.HTML = html
	}

	var (
		result    *infra.RenderResult
		renderErr error
	)
	start := time.Now()
	telemetry.NewProfilingScope(nil).
		WithOperation("generate").
		WithDocumentType(string(doc.Type())).
		WithStage(telemetry.StageRender).
		WithEngine(s.deps.Renderer.Name()).
		Run(ctx, func(ctx context.Context) {
			result, renderErr = s.deps.Renderer.Render(ctx, req)
		})
	if s.deps.Metrics != nil {
		s.deps.Metrics.RecordRender(ctx, s.deps.Renderer.Name(), time.Since(start))
	}
	if renderErr != nil {
		telemetry.RecordError(span, renderErr)
		return nil, renderErr
	}
	telemetry.SetAttribute(span, telemetry.SpanAttrFileSize, len(result.PDFData))
	return result, nil
}

func (s *Service) saveFailed(ctx context.Context, doc *document.Document, log *zap.Logger) {
	record := document.NewRecord(doc, "", 0)
	record.Status = document.StatusFailed
	if err := s.deps.Repository.Save(ctx, record); err != nil {
		log.Warn("Failed to record failed document", zap.Error(err))
	}
}

func (s *Service) publish(ctx context.Context, events ...shared.DomainEvent) {
	if s.deps.Events == nil {
		return
	}
	if err := s.deps.Events.Publish(ctx, events...); err != nil {
		s.logger.Warn("Failed to publish document events", zap.Error(err))
	}
}

func (s *Service) recordFailure(ctx context.Context, docType, stage string) {
	if s.deps.Metrics != nil {
		s.deps.Metrics.RecordFailure(ctx, docType, stage)
	}
}

// =============================================================================
// Calculation
// =============================================================================

// Calculate validates items and previews totals without drawing a number
func (s *Service) Calculate(ctx context.Context, req CalculateRequest) (*CalculateResponse, error) {
	rate := s.settings.DefaultTaxRate
	if req.TaxRate != nil {
		rate = *req.TaxRate
	}
	if len(req.Items) == 0 {
		return nil, &document.EmptyItemListError{}
	}

	raw := toRawItems(req.Items)
	items := make([]document.LineItem, len(raw))
	for i, r := range raw {
		item, err := document.ValidateLineItem(i, r)
		if err != nil {
			return nil, err
		}
		items[i] = item
	}

	totals, err := document.CalculateTotals(items, rate)
	if err != nil {
		return nil, err
	}
	if s.settings.MaxAmount.IsPositive() && totals.Total.GreaterThan(s.settings.MaxAmount) {
		return nil, &document.AmountLimitError{Total: totals.Total, Max: s.settings.MaxAmount}
	}
	words, err := thai.BahtText(totals.Total)
	if err != nil {
		return nil, fmt.Errorf("amount in words: %w", err)
	}

	return &CalculateResponse{
		Items:         toItemResponses(raw),
		Subtotal:      totals.Subtotal.StringFixed(document.TaxPlaces),
		TaxRate:       rate.String(),
		TaxAmount:     totals.TaxAmount.StringFixed(document.TaxPlaces),
		Total:         totals.Total.StringFixed(document.TaxPlaces),
		AmountInWords: words,
	}, nil
}

// =============================================================================
// Queries
// =============================================================================

// Get returns a document with its items
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*DocumentResponse, error) {
	record, err := s.deps.Repository.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.verify(record); err != nil {
		return nil, err
	}
	return s.toResponse(record, true), nil
}

// GetByNumber returns a document by its document number
func (s *Service) GetByNumber(ctx context.Context, number string) (*DocumentResponse, error) {
	docType, err := document.TypeOfNumber(number)
	if err != nil {
		return nil, shared.ErrNotFound
	}
	record, err := s.deps.Repository.FindByNumber(ctx, number)
	if err != nil {
		return nil, err
	}
	if record.Type != docType {
		return nil, shared.ErrNotFound
	}
	if err := s.verify(record); err != nil {
		return nil, err
	}
	return s.toResponse(record, true), nil
}

// GetPDF opens the stored PDF of a document
func (s *Service) GetPDF(ctx context.Context, id uuid.UUID) (*PDFFile, error) {
	record, err := s.deps.Repository.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if record.Status != document.StatusGenerated || record.FileKey == "" {
		return nil, ErrNoPDF
	}
	if err := s.verify(record); err != nil {
		return nil, err
	}

	content, err := s.deps.Storage.Get(ctx, record.FileKey)
	if err != nil {
		if infra.IsRenderErrorCode(err, infra.ErrCodeNotFound) {
			return nil, ErrNoPDF
		}
		return nil, fmt.Errorf("open %s: %w", record.FileKey, err)
	}
	return &PDFFile{
		FileName: record.Number + ".pdf",
		Size:     record.FileSize,
		Content:  content,
	}, nil
}

// verify rebuilds the stored document, rejecting records whose totals no
// longer follow from their items
func (s *Service) verify(record *document.Record) error {
	if _, err := document.Restore(record.Snapshot); err != nil {
		s.logger.Error("Stored document failed verification",
			zap.String("document_no", record.Number),
			zap.Error(err),
		)
		return err
	}
	return nil
}

// List returns one page of documents, newest first by default
func (s *Service) List(ctx context.Context, req ListRequest) (*ListResponse, error) {
	filter := shared.DefaultFilter()
	if req.Page > 0 {
		filter.Page = req.Page
	}
	if req.PageSize > 0 {
		filter.PageSize = req.PageSize
	}
	if req.OrderBy != "" {
		filter.OrderBy = req.OrderBy
	}
	if req.OrderDir != "" {
		filter.OrderDir = req.OrderDir
	}
	filter.Search = req.Search
	if req.Status != "" {
		filter.Filters["status"] = req.Status
	}

	listFilter := document.ListFilter{Filter: filter}
	if req.DocumentType != "" {
		docType, err := document.ParseDocumentType(req.DocumentType)
		if err != nil {
			return nil, err
		}
		listFilter.DocumentType = docType
	}

	records, total, err := s.deps.Repository.List(ctx, listFilter)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}

	items := make([]DocumentResponse, len(records))
	for i := range records {
		items[i] = *s.toResponse(&records[i], false)
	}
	page := shared.NewPaginated(items, total, filter.Page, filter.PageSize)
	return &ListResponse{
		Items:      page.Items,
		Total:      page.Total,
		Page:       page.Page,
		PageSize:   page.PageSize,
		TotalPages: page.TotalPages,
	}, nil
}

var typeTitle = cases.Title(language.English)

// DocumentTypes returns the supported document types
func (s *Service) DocumentTypes() []DocumentTypeResponse {
	types := document.AllDocumentTypes()
	out := make([]DocumentTypeResponse, len(types))
	for i, t := range types {
		out[i] = DocumentTypeResponse{
			Code:     string(t),
			Prefix:   t.Prefix(),
			Name:     typeTitle.String(string(t)),
			NameThai: t.DisplayName(),
		}
	}
	return out
}

func (s *Service) toResponse(r *document.Record, detailed bool) *DocumentResponse {
	resp := &DocumentResponse{
		ID:           r.ID.String(),
		DocumentNo:   r.Number,
		DocumentType: string(r.Type),
		Status:       string(r.Status),
		Language:     string(r.Language),
		Subtotal:     r.Subtotal.StringFixed(document.TaxPlaces),
		TaxRate:      r.TaxRate.String(),
		TaxAmount:    r.TaxAmount.StringFixed(document.TaxPlaces),
		Total:        r.Total.StringFixed(document.TaxPlaces),
		FileSize:     r.FileSize,
		CreatedAt:    r.CreatedAt,
	}
	if r.Status == document.StatusGenerated {
		resp.DownloadURL = fmt.Sprintf("%s/%s/pdf", s.settings.DownloadPath, r.ID)
	}
	if detailed {
		resp.Customer = &CustomerResponse{
			Name:    r.Customer.Name,
			Email:   r.Customer.Email,
			Address: r.Customer.Address,
			TaxID:   r.Customer.TaxID,
			Phone:   r.Customer.Phone,
		}
		resp.Items = toItemResponses(r.Items)
		resp.Note = r.Note
	}
	return resp
}
