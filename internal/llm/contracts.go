package llm

import "context"

// ChatClient sends one prompt to a chat-completion endpoint and returns the
// assistant's raw text. Implementations make exactly one non-streaming call.
type ChatClient interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Fields is the validated extraction result: one entry per schema key,
// valued as a string, a number (float64 from JSON decoding), or nil.
type Fields map[string]any

// InvoiceFields is the typed shape of the default invoice schema, for
// callers that prefer struct access over the generic map.
type InvoiceFields struct {
	InvoiceNumber *string  `json:"invoice_number"`
	InvoiceDate   *string  `json:"invoice_date"`
	CustomerName  *string  `json:"customer_name"`
	TotalAmount   *float64 `json:"total_amount"`
	TaxAmount     *float64 `json:"tax_amount"`
	Currency      *string  `json:"currency"`
}

// DecodeInvoice maps a Fields record onto InvoiceFields. Unknown keys are
// ignored; numeric fields given as strings are left nil rather than coerced.
func DecodeInvoice(f Fields) InvoiceFields {
	var out InvoiceFields
	out.InvoiceNumber = stringPtr(f[KeyInvoiceNumber])
	out.InvoiceDate = stringPtr(f[KeyInvoiceDate])
	out.CustomerName = stringPtr(f[KeyCustomerName])
	out.TotalAmount = numberPtr(f[KeyTotalAmount])
	out.TaxAmount = numberPtr(f[KeyTaxAmount])
	out.Currency = stringPtr(f[KeyCurrency])
	return out
}

func stringPtr(v any) *string {
	if s, ok := v.(string); ok {
		return &s
	}
	return nil
}

func numberPtr(v any) *float64 {
	if n, ok := v.(float64); ok {
		return &n
	}
	return nil
}
