package export

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/docstack/invoice-extractor/internal/history"
	"github.com/docstack/invoice-extractor/internal/llm"
)

// Service is a tiny façade over the history store that produces XLSX bytes
// for exports.
type Service struct {
	store  *history.Store
	logger *slog.Logger
}

func NewService(store *history.Store, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, logger: logger}
}

const sheet = "Runs"

// ExportRunsXLSX returns an XLSX workbook (as bytes) for the most recent
// runs. limit <= 0 exports everything.
func (s *Service) ExportRunsXLSX(ctx context.Context, limit int) ([]byte, error) {
	start := time.Now()

	runs, err := s.store.List(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}

	f := excelize.NewFile()
	if index, _ := f.GetSheetIndex(sheet); index == -1 {
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, err
		}
	}
	activeIndex, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(activeIndex)

	headers := []string{
		"Extracted At",
		"Source File",
		"Model",
		"Strategy",
		"Status",
		"Invoice Number",
		"Invoice Date",
		"Customer",
		"Total",
		"Currency",
		"Fields JSON",
		"Error",
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	row := 2
	for _, r := range runs {
		inv := decodeInvoiceColumns(r.FieldsJSON)
		values := []any{
			r.CreatedAt.UTC().Format(time.RFC3339),
			r.SourcePath,
			r.Model,
			r.Strategy,
			r.Status,
			inv.InvoiceNumber,
			inv.InvoiceDate,
			inv.Customer,
			inv.Total,
			inv.Currency,
			r.FieldsJSON,
			r.ErrorText,
		}
		for i, v := range values {
			cell, _ := excelize.CoordinatesToCellName(i+1, row)
			_ = f.SetCellValue(sheet, cell, v)
		}
		row++
	}

	// remove the default sheet if it isn't ours
	if sheet != "Sheet1" {
		_ = f.DeleteSheet("Sheet1")
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}

	s.logger.Info("export.runs.ok", "rows", len(runs), "bytes", buf.Len(), "elapsed_ms", time.Since(start).Milliseconds())
	return buf.Bytes(), nil
}

type invoiceColumns struct {
	InvoiceNumber string
	InvoiceDate   string
	Customer      string
	Total         any
	Currency      string
}

// decodeInvoiceColumns pulls the well-known invoice keys out of a stored
// fields document. Runs with custom schemas just leave these columns blank.
func decodeInvoiceColumns(fieldsJSON string) invoiceColumns {
	var out invoiceColumns
	if fieldsJSON == "" {
		return out
	}
	var fields llm.Fields
	if err := json.Unmarshal([]byte(fieldsJSON), &fields); err != nil {
		return out
	}
	if s, ok := fields[llm.KeyInvoiceNumber].(string); ok {
		out.InvoiceNumber = s
	}
	if s, ok := fields[llm.KeyInvoiceDate].(string); ok {
		out.InvoiceDate = s
	}
	if s, ok := fields[llm.KeyCustomerName].(string); ok {
		out.Customer = s
	}
	if v, ok := fields[llm.KeyTotalAmount]; ok && v != nil {
		out.Total = v
	}
	if s, ok := fields[llm.KeyCurrency].(string); ok {
		out.Currency = s
	}
	return out
}
