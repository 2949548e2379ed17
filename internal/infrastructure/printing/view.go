package printing

import (
	"fmt"
	"strings"
	"time"

	"github.com/billydoc/backend/internal/domain/document"
	"github.com/billydoc/backend/internal/domain/shared/thai"
	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ItemView is one rendered line of the item table
type ItemView struct {
	No          int
	Description string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
	Amount      decimal.Decimal
}

// Images holds the optional pictures printed on a document
type Images struct {
	HeaderLogo *Asset
	FooterLogo *Asset
	Signature  *Asset
}

// View is everything a template or layout engine needs to print a document
type View struct {
	Type          document.DocumentType
	Language      document.Language
	Title         string
	Number        string
	IssuedAt      time.Time
	Customer      document.Customer
	Company       document.Company
	Items         []ItemView
	Subtotal      decimal.Decimal
	TaxRate       decimal.Decimal
	TaxAmount     decimal.Decimal
	Total         decimal.Decimal
	AmountInWords string
	Note          string
	Images        Images
}

var englishTitle = cases.Title(language.English)

// NewView projects an assembled document for printing
func NewView(doc *document.Document, images Images) (*View, error) {
	if doc == nil {
		return nil, NewRenderError(ErrCodeRenderFailed, "document is nil", nil)
	}
	words, err := thai.BahtText(doc.Total())
	if err != nil {
		return nil, NewRenderError(ErrCodeRenderFailed, "amount in words", err)
	}

	items := doc.Items()
	rows := make([]ItemView, len(items))
	for i, it := range items {
		rows[i] = ItemView{
			No:          i + 1,
			Description: it.Description(),
			Quantity:    it.Quantity(),
			UnitPrice:   it.UnitPrice(),
			Amount:      it.LineTotal(),
		}
	}

	v := &View{
		Type:          doc.Type(),
		Language:      doc.Language(),
		Number:        doc.Number(),
		IssuedAt:      doc.CreatedAt(),
		Customer:      doc.Customer(),
		Company:       doc.Company(),
		Items:         rows,
		Subtotal:      doc.Subtotal(),
		TaxRate:       doc.TaxRate(),
		TaxAmount:     doc.TaxAmount(),
		Total:         doc.Total(),
		AmountInWords: words,
		Note:          doc.Note(),
		Images:        images,
	}
	v.Title = v.Label(string(doc.Type()))
	return v, nil
}

// Label returns a caption in the document language. Thai captions come from
// the business glossary; English captions are the title-cased key.
func (v *View) Label(key string) string {
	if v.Language == document.LanguageEnglish {
		return englishTitle.String(strings.ReplaceAll(key, "_", " "))
	}
	return thai.BusinessTerm(key)
}

// IssuedDate formats the issue date for the document language
func (v *View) IssuedDate() string {
	if v.Language == document.LanguageEnglish {
		return v.IssuedAt.Format("2 January 2006")
	}
	return thai.FormatDate(v.IssuedAt)
}

// TaxPercent renders the rate as a percentage, e.g. "7%"
func (v *View) TaxPercent() string {
	return fmt.Sprintf("%s%%", v.TaxRate.Mul(decimal.NewFromInt(100)).String())
}

// Terms is the closing paragraph that differs per document type
func (v *View) Terms() string {
	en := v.Language == document.LanguageEnglish
	switch v.Type {
	case document.DocumentTypeQuotation:
		if en {
			return "This quotation is valid for 30 days from the date above."
		}
		return "ใบเสนอราคานี้มีอายุ 30 วันนับจากวันที่ระบุข้างต้น"
	case document.DocumentTypeInvoice:
		return fmt.Sprintf("%s: %s %s %s", v.Label("payment"), v.Label("bank"), v.Label("account"), v.Company.BankAccount)
	case document.DocumentTypeReceipt:
		if en {
			return "Payment received in full. Thank you."
		}
		return "ได้รับเงินครบถ้วนแล้ว ขอบคุณที่ใช้บริการ"
	}
	return ""
}

// FileName is the suggested download name
func (v *View) FileName() string {
	return v.Number + ".pdf"
}
