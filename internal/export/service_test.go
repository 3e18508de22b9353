package export

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/docstack/invoice-extractor/internal/history"
)

func TestExportRunsXLSX(t *testing.T) {
	store, err := history.Open(filepath.Join(t.TempDir(), "runs.db"), nil)
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	ctx := context.Background()
	require.NoError(t, store.Record(ctx, history.Run{
		SourcePath: "/invoices/acme.pdf",
		Model:      "llama3.2",
		Strategy:   "synonym",
		Status:     history.StatusOK,
		FieldsJSON: `{"invoice_number":"INV-001","invoice_date":"2026-03-01","customer_name":"Acme","total_amount":100.5,"tax_amount":null,"currency":"USD"}`,
		CreatedAt:  time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC),
	}))
	require.NoError(t, store.Record(ctx, history.Run{
		SourcePath: "/invoices/broken.pdf",
		Model:      "llama3.2",
		Strategy:   "exact",
		Status:     "MALFORMED_OUTPUT",
		ErrorText:  "model response is not recoverable as JSON",
		CreatedAt:  time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC),
	}))

	svc := NewService(store, nil)
	data, err := svc.ExportRunsXLSX(ctx, 0)
	require.NoError(t, err)
	require.NotEmpty(t, data)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows("Runs")
	require.NoError(t, err)
	require.Len(t, rows, 3, "header + two runs")

	require.Equal(t, "Extracted At", rows[0][0])
	require.Equal(t, "Invoice Number", rows[0][5])

	// newest first: the failed run comes before the successful one
	require.Equal(t, "/invoices/broken.pdf", rows[1][1])
	require.Equal(t, "MALFORMED_OUTPUT", rows[1][4])

	require.Equal(t, "/invoices/acme.pdf", rows[2][1])
	require.Equal(t, "INV-001", rows[2][5])
	require.Equal(t, "Acme", rows[2][7])
	require.Equal(t, "USD", rows[2][9])
}

func TestDecodeInvoiceColumns_BadOrCustomJSON(t *testing.T) {
	require.Zero(t, decodeInvoiceColumns(""))
	require.Zero(t, decodeInvoiceColumns("not json"))

	cols := decodeInvoiceColumns(`{"po_number":"PO-9"}`)
	require.Empty(t, cols.InvoiceNumber)
	require.Nil(t, cols.Total)
}
