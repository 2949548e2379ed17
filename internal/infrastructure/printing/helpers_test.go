package printing

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/billydoc/backend/internal/domain/document"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

var (
	testNow = time.Date(2025, time.January, 31, 10, 0, 0, 0, time.UTC)
	testID  = uuid.MustParse("5f1c7a52-6f7e-4a0e-9d1b-3b2f0e7c9a11")
)

func testCompany() document.Company {
	return document.Company{
		Name:        "บริษัท บิลลี่ จำกัด",
		Address1:    "123 ถนนสุขุมวิท",
		Address2:    "กรุงเทพฯ 10110",
		Tel:         "02-123-4567",
		TaxID:       "1101700207030",
		BankAccount: "123-4-56789-0",
	}
}

// testDocument assembles the two-line invoice scenario (or its equivalent for docType)
func testDocument(t *testing.T, docType document.DocumentType, lang document.Language) *document.Document {
	t.Helper()
	a := document.NewAssembler(
		document.NewNumberGenerator(document.NewCounterSource(0)),
		document.WithClock(func() time.Time { return testNow }),
		document.WithIDGenerator(func() uuid.UUID { return testID }),
	)
	doc, err := a.Assemble(context.Background(), document.AssembleRequest{
		DocumentType: string(docType),
		Customer: document.Customer{
			Name:    "ACME Trading",
			Email:   "ap@acme.example",
			Address: "99 Rama 9 Road, Bangkok",
		},
		Items: []document.RawLineItem{
			{Description: "Website development", Quantity: "1", Price: "50000"},
			{Description: "Monthly maintenance", Quantity: "12", Price: "5000"},
		},
		TaxRate:  decimal.RequireFromString("0.07"),
		Company:  testCompany(),
		Language: lang,
		Note:     "Thank you",
	})
	require.NoError(t, err)
	return doc
}

func testView(t *testing.T, docType document.DocumentType, lang document.Language) *View {
	t.Helper()
	v, err := NewView(testDocument(t, docType, lang), Images{})
	require.NoError(t, err)
	return v
}

// writePNG writes a tiny PNG into dir and returns its bytes
func writePNG(t *testing.T, dir, name string) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for x := range 4 {
		for y := range 4 {
			img.Set(x, y, color.RGBA{R: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), buf.Bytes(), 0o600))
	return buf.Bytes()
}
