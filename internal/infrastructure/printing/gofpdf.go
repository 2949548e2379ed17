package printing

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/billydoc/backend/internal/domain/printing"
	"github.com/jung-kurt/gofpdf"
	"go.uber.org/zap"
)

const (
	fpdfFamily     = "doc"
	fpdfCoreFamily = "Helvetica"
	fpdfLineHeight = 6.0
)

// GofpdfConfig contains configuration for the gofpdf renderer
type GofpdfConfig struct {
	// FontPath is a UTF-8 TrueType font with Thai glyphs (e.g. Sarabun).
	// Without it the core Helvetica font is used and only Latin text prints.
	FontPath string
	// BoldFontPath is optional; the regular face is reused when empty
	BoldFontPath string
	Logger       *zap.Logger
}

// GofpdfRenderer lays the document out directly with gofpdf. It needs no
// browser and ignores RenderRequest.HTML.
type GofpdfRenderer struct {
	regular []byte
	bold    []byte
	logger  *zap.Logger
}

// NewGofpdfRenderer loads the configured fonts
func NewGofpdfRenderer(config *GofpdfConfig) (*GofpdfRenderer, error) {
	if config == nil {
		config = &GofpdfConfig{}
	}
	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &GofpdfRenderer{logger: logger.Named("gofpdf")}

	if config.FontPath == "" {
		r.logger.Warn("no UTF-8 font configured, Thai text will not print")
		return r, nil
	}

	var err error
	if r.regular, err = os.ReadFile(config.FontPath); err != nil {
		return nil, NewRenderError(ErrCodeFontNotFound, "failed to read font "+config.FontPath, err)
	}
	r.bold = r.regular
	if config.BoldFontPath != "" {
		if r.bold, err = os.ReadFile(config.BoldFontPath); err != nil {
			return nil, NewRenderError(ErrCodeFontNotFound, "failed to read font "+config.BoldFontPath, err)
		}
	}
	return r, nil
}

// Name identifies the engine
func (r *GofpdfRenderer) Name() string {
	return "gofpdf"
}

// Close is a no-op
func (r *GofpdfRenderer) Close() error {
	return nil
}

// Render draws req.View onto a new PDF
func (r *GofpdfRenderer) Render(ctx context.Context, req *RenderRequest) (*RenderResult, error) {
	if req == nil || req.View == nil {
		return nil, NewRenderError(ErrCodeInvalidHTML, "render request has no document view", nil)
	}
	if err := validatePage(req.Page); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, NewRenderError(ErrCodeRenderTimeout, "PDF rendering was cancelled", err)
	}

	start := time.Now()
	pdf, family, tr := r.newDocument(req.Page)
	title := req.Title
	if title == "" {
		title = req.View.Title + " " + req.View.Number
	}
	pdf.SetTitle(tr(title), true)

	l := &fpdfLayout{pdf: pdf, family: family, tr: tr, view: req.View}
	l.draw()

	if err := pdf.Error(); err != nil {
		return nil, NewRenderError(ErrCodeRenderFailed, "gofpdf layout failed", err)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, NewRenderError(ErrCodeRenderFailed, "gofpdf output failed", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, NewRenderError(ErrCodeRenderTimeout, "PDF rendering was cancelled", err)
	}

	return &RenderResult{
		PDFData:        buf.Bytes(),
		PageCount:      pdf.PageCount(),
		RenderDuration: time.Since(start),
	}, nil
}

func (r *GofpdfRenderer) newDocument(page printing.PageSetup) (*gofpdf.Fpdf, string, func(string) string) {
	orientation := "P"
	if page.Orientation == printing.OrientationLandscape {
		orientation = "L"
	}
	width, height := page.PaperSize.Dimensions()
	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		OrientationStr: orientation,
		UnitStr:        "mm",
		Size:           gofpdf.SizeType{Wd: float64(width), Ht: float64(height)},
	})

	margins := page.Margins
	if margins.IsZero() {
		margins = printing.DefaultMargins()
	}
	pdf.SetMargins(float64(margins.Left), float64(margins.Top), float64(margins.Right))
	pdf.SetAutoPageBreak(true, float64(margins.Bottom))

	if r.regular == nil {
		pdf.SetFont(fpdfCoreFamily, "", 10)
		return pdf, fpdfCoreFamily, pdf.UnicodeTranslatorFromDescriptor("")
	}

	pdf.AddUTF8FontFromBytes(fpdfFamily, "", r.regular)
	pdf.AddUTF8FontFromBytes(fpdfFamily, "B", r.bold)
	pdf.SetFont(fpdfFamily, "", 10)
	return pdf, fpdfFamily, func(s string) string { return s }
}

// fpdfLayout draws one document
type fpdfLayout struct {
	pdf    *gofpdf.Fpdf
	family string
	tr     func(string) string
	view   *View
}

func (l *fpdfLayout) font(style string, size float64) {
	l.pdf.SetFont(l.family, style, size)
}

// wrap breaks text into lines no wider than w. Thai has no spaces between
// words, so a line without a space is broken at the last fitting rune.
func (l *fpdfLayout) wrap(text string, w float64) []string {
	var lines []string
	for _, para := range strings.Split(text, "\n") {
		runes := []rune(para)
		start, lastSpace := 0, -1
		for i := 0; i < len(runes); i++ {
			if runes[i] == ' ' {
				lastSpace = i
			}
			if l.pdf.GetStringWidth(string(runes[start:i+1])) <= w {
				continue
			}
			end := i
			if lastSpace > start {
				end = lastSpace
			}
			if end == start {
				end = start + 1
			}
			lines = append(lines, strings.TrimSpace(string(runes[start:end])))
			start, lastSpace = end, -1
			for start < len(runes) && runes[start] == ' ' {
				start++
			}
			i = start - 1
		}
		lines = append(lines, string(runes[start:]))
	}
	return lines
}

func (l *fpdfLayout) contentWidth() float64 {
	w, _ := l.pdf.GetPageSize()
	left, _, right, _ := l.pdf.GetMargins()
	return w - left - right
}

func (l *fpdfLayout) draw() {
	l.pdf.AddPage()
	l.header()
	l.customer()
	l.items()
	l.totals()
	l.closing()
}

func (l *fpdfLayout) image(asset *Asset, w float64) {
	if asset == nil {
		return
	}
	opts := gofpdf.ImageOptions{ImageType: asset.ImageType(), ReadDpi: true}
	l.pdf.RegisterImageOptionsReader(asset.Name, opts, bytes.NewReader(asset.Data))
	l.pdf.ImageOptions(asset.Name, l.pdf.GetX(), l.pdf.GetY(), w, 0, true, opts, 0, "")
}

func (l *fpdfLayout) header() {
	v := l.view
	width := l.contentWidth()
	half := width / 2
	left, top, _, _ := l.pdf.GetMargins()

	l.image(v.Images.HeaderLogo, 30)

	l.font("B", 14)
	l.pdf.CellFormat(half, 8, l.tr(v.Company.Name), "", 1, "L", false, 0, "")
	l.font("", 10)
	for _, line := range []string{
		v.Company.Address1,
		v.Company.Address2,
		v.Label("telephone") + ": " + v.Company.Tel,
		v.Label("tax_id") + ": " + v.Company.TaxID,
	} {
		l.pdf.CellFormat(half, 5, l.tr(line), "", 1, "L", false, 0, "")
	}
	bottom := l.pdf.GetY()

	l.pdf.SetXY(left+half, top)
	l.font("B", 18)
	l.pdf.CellFormat(half, 10, l.tr(v.Title), "", 2, "R", false, 0, "")
	l.font("", 10)
	l.pdf.CellFormat(half, 5, l.tr(v.Label("number")+": "+v.Number), "", 2, "R", false, 0, "")
	l.pdf.CellFormat(half, 5, l.tr(v.Label("date")+": "+v.IssuedDate()), "", 2, "R", false, 0, "")

	l.pdf.SetXY(left, max(bottom, l.pdf.GetY())+2)
	l.pdf.Line(left, l.pdf.GetY(), left+width, l.pdf.GetY())
	l.pdf.Ln(4)
}

func (l *fpdfLayout) customer() {
	v := l.view
	width := l.contentWidth()

	l.font("B", 11)
	l.pdf.CellFormat(width, fpdfLineHeight, l.tr(v.Label("customer")), "", 1, "L", false, 0, "")
	l.font("", 10)
	lines := []string{v.Customer.Name, v.Customer.Address, v.Label("email") + ": " + v.Customer.Email}
	if v.Customer.Phone != "" {
		lines = append(lines, v.Label("telephone")+": "+v.Customer.Phone)
	}
	if v.Customer.TaxID != "" {
		lines = append(lines, v.Label("tax_id")+": "+v.Customer.TaxID)
	}
	for _, line := range lines {
		l.pdf.MultiCell(width, 5, l.tr(line), "", "L", false)
	}
	l.pdf.Ln(4)
}

func (l *fpdfLayout) columns() (no, desc, qty, price, amount float64) {
	no, qty, price, amount = 10, 20, 32, 32
	desc = l.contentWidth() - no - qty - price - amount
	return
}

func (l *fpdfLayout) itemHeader() {
	no, desc, qty, price, amount := l.columns()
	v := l.view
	l.font("B", 10)
	l.pdf.SetFillColor(235, 235, 235)
	l.pdf.CellFormat(no, 7, "#", "1", 0, "C", true, 0, "")
	l.pdf.CellFormat(desc, 7, l.tr(v.Label("description")), "1", 0, "C", true, 0, "")
	l.pdf.CellFormat(qty, 7, l.tr(v.Label("quantity")), "1", 0, "C", true, 0, "")
	l.pdf.CellFormat(price, 7, l.tr(v.Label("unit_price")), "1", 0, "C", true, 0, "")
	l.pdf.CellFormat(amount, 7, l.tr(v.Label("amount")), "1", 1, "C", true, 0, "")
	l.font("", 10)
}

func (l *fpdfLayout) items() {
	no, desc, qty, price, amount := l.columns()
	_, pageHeight := l.pdf.GetPageSize()
	_, _, _, bottomMargin := l.pdf.GetMargins()

	l.itemHeader()
	for _, it := range l.view.Items {
		lines := l.wrap(it.Description, desc-2)
		h := float64(len(lines)) * 5
		if l.pdf.GetY()+h > pageHeight-bottomMargin {
			l.pdf.AddPage()
			l.itemHeader()
		}

		x, y := l.pdf.GetXY()
		l.pdf.CellFormat(no, h, strconv.Itoa(it.No), "1", 0, "C", false, 0, "")
		l.pdf.MultiCell(desc, 5, l.tr(strings.Join(lines, "\n")), "1", "L", false)
		l.pdf.SetXY(x+no+desc, y)
		l.pdf.CellFormat(qty, h, formatQuantity(it.Quantity), "1", 0, "R", false, 0, "")
		l.pdf.CellFormat(price, h, formatMoneyRaw(it.UnitPrice), "1", 0, "R", false, 0, "")
		l.pdf.CellFormat(amount, h, formatMoneyRaw(it.Amount), "1", 1, "R", false, 0, "")
	}
	l.pdf.Ln(2)
}

func (l *fpdfLayout) totals() {
	v := l.view
	width := l.contentWidth()
	labelW, valueW := 45.0, 35.0
	indent := width - labelW - valueW
	left, _, _, _ := l.pdf.GetMargins()

	rows := []struct {
		label, value string
		bold         bool
	}{
		{v.Label("subtotal"), formatMoneyRaw(v.Subtotal), false},
		{v.Label("vat") + " " + v.TaxPercent(), formatMoneyRaw(v.TaxAmount), false},
		{v.Label("total"), formatMoneyRaw(v.Total), true},
	}
	for _, row := range rows {
		style := ""
		if row.bold {
			style = "B"
		}
		l.font(style, 10)
		l.pdf.SetX(left + indent)
		l.pdf.CellFormat(labelW, fpdfLineHeight, l.tr(row.label), "", 0, "L", false, 0, "")
		l.pdf.CellFormat(valueW, fpdfLineHeight, row.value, "", 1, "R", false, 0, "")
	}

	l.font("B", 10)
	l.pdf.MultiCell(width, fpdfLineHeight, l.tr("("+v.AmountInWords+")"), "", "L", false)
	l.font("", 10)
	l.pdf.Ln(2)
}

func (l *fpdfLayout) closing() {
	v := l.view
	width := l.contentWidth()
	left, _, _, _ := l.pdf.GetMargins()

	if v.Note != "" {
		l.pdf.MultiCell(width, 5, l.tr(fmt.Sprintf("%s: %s", v.Label("note"), v.Note)), "", "L", false)
		l.pdf.Ln(2)
	}
	if terms := v.Terms(); terms != "" {
		l.pdf.MultiCell(width, 5, l.tr(terms), "", "L", false)
	}

	l.pdf.Ln(12)
	l.pdf.SetX(left + width - 60)
	l.image(v.Images.Signature, 40)
	l.pdf.SetX(left + width - 60)
	l.pdf.CellFormat(60, 5, "______________________", "", 2, "C", false, 0, "")
	l.pdf.CellFormat(60, 5, l.tr(v.Label("signature")), "", 1, "C", false, 0, "")

	if v.Images.FooterLogo != nil {
		l.pdf.Ln(6)
		l.pdf.SetX(left + width/2 - 15)
		l.image(v.Images.FooterLogo, 30)
	}
}

// Ensure GofpdfRenderer implements PDFRenderer
var _ PDFRenderer = (*GofpdfRenderer)(nil)
