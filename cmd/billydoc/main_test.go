package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	documentapp "github.com/billydoc/backend/internal/application/document"
	"github.com/billydoc/backend/internal/domain/document"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	a := newApp()
	a.Writer = &out
	a.ErrWriter = &out
	err := a.Run(append([]string{"billydoc"}, args...))
	return out.String(), err
}

func TestParseItems(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		want    []documentapp.ItemInput
		wantErr bool
	}{
		{
			name: "trims fields",
			args: []string{" Website development | 1 | 50000 ", "Maintenance|12|5000"},
			want: []documentapp.ItemInput{
				{Description: "Website development", Qty: json.Number("1"), Price: json.Number("50000")},
				{Description: "Maintenance", Qty: json.Number("12"), Price: json.Number("5000")},
			},
		},
		{name: "missing price", args: []string{"Consulting|1"}, wantErr: true},
		{name: "extra field", args: []string{"a|1|2|3"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseItems(tt.args)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTotalsCommand(t *testing.T) {
	tests := []struct {
		name  string
		args  []string
		tax   string
		total string
	}{
		{
			name:  "two lines",
			args:  []string{"-i", "Website development|1|50000", "-i", "Maintenance|12|5000"},
			tax:   "7700.00",
			total: "117700.00",
		},
		{name: "single line", args: []string{"-i", "Mobile app|1|75000"}, tax: "5250.00", total: "80250.00"},
		{name: "consulting", args: []string{"-i", "Consulting|1|30000"}, tax: "2100.00", total: "32100.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := run(t, append([]string{"totals"}, tt.args...)...)
			require.NoError(t, err)
			assert.Contains(t, out, tt.tax)
			assert.Contains(t, out, tt.total)
			assert.Contains(t, out, "บาทถ้วน")
		})
	}
}

func TestTotalsCommand_Errors(t *testing.T) {
	_, err := run(t, "totals", "-i", "Consulting|0|30000")
	var itemErr *document.InvalidLineItemError
	assert.ErrorAs(t, err, &itemErr)

	_, err = run(t, "totals", "-i", "Consulting|1|30000", "--tax-rate", "abc")
	assert.ErrorContains(t, err, "invalid tax rate")

	_, err = run(t, "totals", "-i", "Consulting|1|30000", "--tax-rate", "1.5")
	var rateErr *document.InvalidTaxRateError
	assert.ErrorAs(t, err, &rateErr)

	_, err = run(t, "totals")
	assert.Error(t, err)
}

func TestMigrateCommands(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(`
[database]
driver = "sqlite"
path = "`+filepath.ToSlash(filepath.Join(dir, "billy.db"))+`"
`), 0o600))

	_, err := run(t, "--config", cfgPath, "migrate", "up")
	require.NoError(t, err)

	out, err := run(t, "--config", cfgPath, "migrate", "version")
	require.NoError(t, err)
	assert.Contains(t, out, "version 2 (dirty: false)")

	out, err = run(t, "migrate", "list", "--dialect", "postgres")
	require.NoError(t, err)
	assert.Contains(t, out, "000001_create_documents")

	_, err = run(t, "--config", cfgPath, "migrate", "step", "x")
	assert.ErrorContains(t, err, "invalid step count")
}

func TestMigrateCreate(t *testing.T) {
	dir := t.TempDir()
	out, err := run(t, "migrate", "create", "--dir", dir, "add_notes", "Add notes column")
	require.NoError(t, err)
	assert.Contains(t, out, "000001_add_notes.up.sql")

	_, err = run(t, "migrate", "create", "--dir", dir)
	assert.ErrorContains(t, err, "migration name required")
}

func TestGenerateCommand_RequiresFlags(t *testing.T) {
	_, err := run(t, "generate", "--type", "invoice")
	assert.Error(t, err)
}

func TestGenerateCommand_ValidatesRequest(t *testing.T) {
	base := []string{
		"generate",
		"--customer-name", "ACME Trading",
		"--customer-address", "99 Rama 9 Road, Bangkok",
		"-i", "Consulting|1|30000",
	}
	tests := []struct {
		name  string
		args  []string
		field string
	}{
		{"bad email", []string{"--type", "invoice", "--customer-email", "not-an-email"}, "customer_email"},
		{"unknown type", []string{"--type", "credit_note", "--customer-email", "ap@acme.example"}, "document_type"},
		{"bad language", []string{"--type", "invoice", "--customer-email", "ap@acme.example", "--lang", "fr"}, "language"},
		{"short tax id", []string{"--type", "invoice", "--customer-email", "ap@acme.example", "--customer-tax-id", "123"}, "customer_tax_id"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// an unreadable config proves validation runs before anything is opened
			args := append([]string{"--config", filepath.Join(t.TempDir(), "missing.toml")}, base...)
			_, err := run(t, append(args, tt.args...)...)

			var verrs validator.ValidationErrors
			require.ErrorAs(t, err, &verrs)
			assert.ErrorContains(t, err, tt.field)
		})
	}
}

func TestTotalsCommand_ConfiguredRate(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(`
[document]
default_tax_rate = "0"
`), 0o600))

	out, err := run(t, "--config", cfgPath, "totals", "-i", "Consulting|1|30000")
	require.NoError(t, err)
	assert.Contains(t, out, "0.00")
	assert.NotContains(t, out, "2100.00")
	assert.Contains(t, out, "30000.00")
}
