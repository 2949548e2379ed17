package document

import "strings"

// DocumentType represents the kind of business document being issued
type DocumentType string

const (
	DocumentTypeQuotation DocumentType = "quotation" // ใบเสนอราคา
	DocumentTypeInvoice   DocumentType = "invoice"   // ใบแจ้งหนี้
	DocumentTypeReceipt   DocumentType = "receipt"   // ใบเสร็จรับเงิน
)

// IsValid checks if the DocumentType is a valid value
func (d DocumentType) IsValid() bool {
	switch d {
	case DocumentTypeQuotation, DocumentTypeInvoice, DocumentTypeReceipt:
		return true
	}
	return false
}

// String returns the string representation of DocumentType
func (d DocumentType) String() string {
	return string(d)
}

// Prefix returns the document number prefix, or "" for unknown types
func (d DocumentType) Prefix() string {
	switch d {
	case DocumentTypeQuotation:
		return "QT"
	case DocumentTypeInvoice:
		return "INV"
	case DocumentTypeReceipt:
		return "REC"
	default:
		return ""
	}
}

// DisplayName returns the Thai display name for DocumentType
func (d DocumentType) DisplayName() string {
	switch d {
	case DocumentTypeQuotation:
		return "ใบเสนอราคา"
	case DocumentTypeInvoice:
		return "ใบแจ้งหนี้"
	case DocumentTypeReceipt:
		return "ใบเสร็จรับเงิน"
	default:
		return string(d)
	}
}

// AllDocumentTypes returns all valid DocumentType values
func AllDocumentTypes() []DocumentType {
	return []DocumentType{DocumentTypeQuotation, DocumentTypeInvoice, DocumentTypeReceipt}
}

// ParseDocumentType resolves a raw type name. Matching ignores case and
// surrounding space; anything outside the closed set is rejected.
func ParseDocumentType(s string) (DocumentType, error) {
	d := DocumentType(strings.ToLower(strings.TrimSpace(s)))
	if !d.IsValid() {
		return "", &InvalidDocumentTypeError{Value: s}
	}
	return d, nil
}

// Language is the language a document is printed in
type Language string

const (
	LanguageThai    Language = "th"
	LanguageEnglish Language = "en"
)

// DefaultLanguage is used when a request does not name one
const DefaultLanguage = LanguageThai

// IsValid checks if the Language is a valid value
func (l Language) IsValid() bool {
	return l == LanguageThai || l == LanguageEnglish
}

// String returns the string representation of Language
func (l Language) String() string {
	return string(l)
}
