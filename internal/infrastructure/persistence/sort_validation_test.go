package persistence

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm/clause"
)

func TestDocumentOrder(t *testing.T) {
	tests := []struct {
		name      string
		column    string
		direction string
		want      string
		desc      bool
	}{
		{"defaults to newest first", "", "", "created_at", true},
		{"allowed column ascending", "total", "asc", "total", false},
		{"case and spaces are normalized", "  Document_No ", " ASC ", "document_no", false},
		{"explicit desc", "tax_amount", "desc", "tax_amount", true},
		{"unknown direction sorts descending", "subtotal", "sideways", "subtotal", true},
		{"unknown column falls back", "customer_email", "asc", "created_at", false},
		{"injection falls back", "total; DROP TABLE documents;--", "asc", "created_at", false},
		{"injection in direction is ignored", "total", "ASC; DROP TABLE documents;--", "total", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := documentOrder(tt.column, tt.direction)
			assert.Equal(t, clause.OrderByColumn{Column: clause.Column{Name: tt.want}, Desc: tt.desc}, got)
		})
	}
}

func TestSortOrder_CustomWhitelist(t *testing.T) {
	allowed := map[string]struct{}{"doc_type": {}}

	got := SortOrder("doc_type", "asc", allowed, "value")
	assert.Equal(t, "doc_type", got.Column.Name)
	assert.False(t, got.Desc)

	got = SortOrder("created_at", "asc", allowed, "value")
	assert.Equal(t, "value", got.Column.Name)
}
