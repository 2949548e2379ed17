package models

import (
	"time"

	"github.com/billydoc/backend/internal/domain/document"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CompanySnapshot is the issuer block stored as JSON on each document row
type CompanySnapshot struct {
	Name        string `json:"name"`
	Address1    string `json:"address1,omitempty"`
	Address2    string `json:"address2,omitempty"`
	Tel         string `json:"tel,omitempty"`
	TaxID       string `json:"tax_id,omitempty"`
	BankAccount string `json:"bank_account,omitempty"`
	HeaderLogo  string `json:"header_logo,omitempty"`
	FooterLogo  string `json:"footer_logo,omitempty"`
	Signature   string `json:"signature,omitempty"`
}

// DocumentModel is the GORM model for the documents table
type DocumentModel struct {
	ID              uuid.UUID           `gorm:"primaryKey"`
	DocumentType    string              `gorm:"column:document_type;type:varchar(20);not null;index"`
	DocumentNo      string              `gorm:"column:document_no;type:varchar(64);not null;uniqueIndex"`
	CustomerName    string              `gorm:"column:customer_name;type:varchar(255);not null"`
	CustomerEmail   string              `gorm:"column:customer_email;type:varchar(255);not null"`
	CustomerAddress string              `gorm:"column:customer_address;type:text;not null"`
	CustomerTaxID   string              `gorm:"column:customer_tax_id;type:varchar(13)"`
	CustomerPhone   string              `gorm:"column:customer_phone;type:varchar(20)"`
	Company         CompanySnapshot     `gorm:"column:company;type:text;serializer:json"`
	Subtotal        decimal.Decimal     `gorm:"type:numeric;not null"`
	TaxAmount       decimal.Decimal     `gorm:"column:tax_amount;type:numeric;not null"`
	Total           decimal.Decimal     `gorm:"type:numeric;not null"`
	TaxRate         decimal.Decimal     `gorm:"column:tax_rate;type:numeric;not null"`
	Language        string              `gorm:"type:varchar(5);not null;default:'th'"`
	Note            string              `gorm:"type:text"`
	Status          string              `gorm:"type:varchar(20);not null;default:'generated'"`
	FileKey         string              `gorm:"column:file_key;type:varchar(255)"`
	FileSize        int64               `gorm:"column:file_size;not null;default:0"`
	Items           []DocumentItemModel `gorm:"foreignKey:DocumentID;constraint:OnDelete:CASCADE"`
	CreatedAt       time.Time           `gorm:"not null"`
	UpdatedAt       time.Time           `gorm:"not null"`
}

// TableName returns the table name for DocumentModel
func (DocumentModel) TableName() string {
	return "documents"
}

// DocumentItemModel is the GORM model for the document_items table
type DocumentItemModel struct {
	DocumentID  uuid.UUID       `gorm:"column:document_id;primaryKey"`
	Position    int             `gorm:"primaryKey;autoIncrement:false"`
	Description string          `gorm:"type:text;not null"`
	Quantity    decimal.Decimal `gorm:"type:numeric;not null"`
	UnitPrice   decimal.Decimal `gorm:"column:unit_price;type:numeric;not null"`
}

// TableName returns the table name for DocumentItemModel
func (DocumentItemModel) TableName() string {
	return "document_items"
}

// ToDomain converts DocumentModel to a domain Record
func (m *DocumentModel) ToDomain() *document.Record {
	items := make([]document.RawLineItem, len(m.Items))
	for i, it := range m.Items {
		items[i] = document.RawLineItem{
			Description: it.Description,
			Quantity:    it.Quantity.String(),
			Price:       it.UnitPrice.String(),
		}
	}

	return &document.Record{
		Snapshot: document.Snapshot{
			ID:     m.ID,
			Type:   document.DocumentType(m.DocumentType),
			Number: m.DocumentNo,
			Customer: document.Customer{
				Name:    m.CustomerName,
				Email:   m.CustomerEmail,
				Address: m.CustomerAddress,
				TaxID:   m.CustomerTaxID,
				Phone:   m.CustomerPhone,
			},
			Company: document.Company{
				Name:        m.Company.Name,
				Address1:    m.Company.Address1,
				Address2:    m.Company.Address2,
				Tel:         m.Company.Tel,
				TaxID:       m.Company.TaxID,
				BankAccount: m.Company.BankAccount,
				HeaderLogo:  m.Company.HeaderLogo,
				FooterLogo:  m.Company.FooterLogo,
				Signature:   m.Company.Signature,
			},
			Items:     items,
			Subtotal:  m.Subtotal,
			TaxAmount: m.TaxAmount,
			Total:     m.Total,
			TaxRate:   m.TaxRate,
			Language:  document.Language(m.Language),
			Note:      m.Note,
			CreatedAt: m.CreatedAt,
		},
		Status:   document.Status(m.Status),
		FileKey:  m.FileKey,
		FileSize: m.FileSize,
	}
}

// DocumentModelFromDomain creates a DocumentModel from a domain Record.
// Item amounts were validated on assembly, so a parse failure means the
// record did not come from the assembler.
func DocumentModelFromDomain(r *document.Record) (*DocumentModel, error) {
	items := make([]DocumentItemModel, len(r.Items))
	for i, it := range r.Items {
		qty, err := decimal.NewFromString(it.Quantity)
		if err != nil {
			return nil, &document.InvalidLineItemError{Index: i, Field: document.FieldQuantity, Reason: err.Error()}
		}
		price, err := decimal.NewFromString(it.Price)
		if err != nil {
			return nil, &document.InvalidLineItemError{Index: i, Field: document.FieldPrice, Reason: err.Error()}
		}
		items[i] = DocumentItemModel{
			DocumentID:  r.ID,
			Position:    i,
			Description: it.Description,
			Quantity:    qty,
			UnitPrice:   price,
		}
	}

	c := r.Company
	return &DocumentModel{
		ID:              r.ID,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.CreatedAt,
		DocumentType:    r.Type.String(),
		DocumentNo:      r.Number,
		CustomerName:    r.Customer.Name,
		CustomerEmail:   r.Customer.Email,
		CustomerAddress: r.Customer.Address,
		CustomerTaxID:   r.Customer.TaxID,
		CustomerPhone:   r.Customer.Phone,
		Company: CompanySnapshot{
			Name:        c.Name,
			Address1:    c.Address1,
			Address2:    c.Address2,
			Tel:         c.Tel,
			TaxID:       c.TaxID,
			BankAccount: c.BankAccount,
			HeaderLogo:  c.HeaderLogo,
			FooterLogo:  c.FooterLogo,
			Signature:   c.Signature,
		},
		Subtotal:  r.Subtotal,
		TaxAmount: r.TaxAmount,
		Total:     r.Total,
		TaxRate:   r.TaxRate,
		Language:  r.Language.String(),
		Note:      r.Note,
		Status:    string(r.Status),
		FileKey:   r.FileKey,
		FileSize:  r.FileSize,
		Items:     items,
	}, nil
}
