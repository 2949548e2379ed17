package models

import "time"

// DocumentSequenceModel holds the last issued counter per document type
type DocumentSequenceModel struct {
	DocumentType string    `gorm:"column:document_type;type:varchar(20);primaryKey"`
	LastValue    int64     `gorm:"column:last_value;not null;default:0"`
	UpdatedAt    time.Time `gorm:"not null"`
}

// TableName returns the table name for DocumentSequenceModel
func (DocumentSequenceModel) TableName() string {
	return "document_sequences"
}
