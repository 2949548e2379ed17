package persistence

import (
	"strings"

	"gorm.io/gorm/clause"
)

const defaultDocumentSort = "created_at"

// documentSortColumns are the documents columns a list may be ordered by
var documentSortColumns = map[string]struct{}{
	"created_at":    {},
	"updated_at":    {},
	"document_no":   {},
	"document_type": {},
	"customer_name": {},
	"status":        {},
	"subtotal":      {},
	"tax_amount":    {},
	"total":         {},
}

// SortOrder builds an ORDER BY for column and direction. Columns outside
// allowed fall back to fallback; anything but "asc" sorts descending.
func SortOrder(column, direction string, allowed map[string]struct{}, fallback string) clause.OrderByColumn {
	column = strings.ToLower(strings.TrimSpace(column))
	if _, ok := allowed[column]; !ok {
		column = fallback
	}
	return clause.OrderByColumn{
		Column: clause.Column{Name: column},
		Desc:   !strings.EqualFold(strings.TrimSpace(direction), "asc"),
	}
}

// documentOrder orders document lists, newest first by default
func documentOrder(column, direction string) clause.OrderByColumn {
	return SortOrder(column, direction, documentSortColumns, defaultDocumentSort)
}
