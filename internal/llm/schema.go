package llm

// Default invoice schema keys.
const (
	KeyInvoiceNumber = "invoice_number"
	KeyInvoiceDate   = "invoice_date"
	KeyCustomerName  = "customer_name"
	KeyTotalAmount   = "total_amount"
	KeyTaxAmount     = "tax_amount"
	KeyCurrency      = "currency"
)

// Field is one required output key plus optional label synonyms. Synonyms
// only steer the prompt; they are never used for programmatic matching.
type Field struct {
	Key      string
	Synonyms []string
}

// FieldSchema is the ordered set of keys an extraction must produce.
type FieldSchema struct {
	Fields []Field
}

// SchemaFromKeys builds a schema with the given keys and no synonym hints.
func SchemaFromKeys(keys []string) FieldSchema {
	fields := make([]Field, 0, len(keys))
	for _, k := range keys {
		fields = append(fields, Field{Key: k})
	}
	return FieldSchema{Fields: fields}
}

// DefaultInvoiceSchema returns the standard invoice key set with the label
// synonyms observed across vendors.
func DefaultInvoiceSchema() FieldSchema {
	return FieldSchema{Fields: []Field{
		{Key: KeyInvoiceNumber, Synonyms: []string{"Invoice No", "INV No", "Bill No", "Invoice ID", "INV ID", "Reference No", "Ref#"}},
		{Key: KeyInvoiceDate, Synonyms: []string{"Date", "Invoice Date", "Bill Date", "Issue Date"}},
		{Key: KeyCustomerName, Synonyms: []string{"Customer", "Client", "Buyer", "Billed To", "Sold To"}},
		{Key: KeyTotalAmount, Synonyms: []string{"Total", "Amount Due", "Grand Total", "Total Payable", "Cost", "Final Amount"}},
		{Key: KeyTaxAmount, Synonyms: []string{"GST", "VAT", "TAX Value", "Tax Amount"}},
		{Key: KeyCurrency, Synonyms: []string{"Currency", "INR", "USD", "$ or ₹ symbol in front of a number"}},
	}}
}

// Keys returns the schema keys in declaration order.
func (s FieldSchema) Keys() []string {
	keys := make([]string, 0, len(s.Fields))
	for _, f := range s.Fields {
		keys = append(keys, f.Key)
	}
	return keys
}

// KeySet returns the keys as a membership set.
func (s FieldSchema) KeySet() map[string]struct{} {
	set := make(map[string]struct{}, len(s.Fields))
	for _, f := range s.Fields {
		set[f.Key] = struct{}{}
	}
	return set
}

// Len reports the number of schema keys.
func (s FieldSchema) Len() int {
	return len(s.Fields)
}

// BuildFieldJSONSchema returns a JSON-Schema (draft 2020-12 subset) as a
// generic map: every schema key required, each valued as string, number, or
// null, nothing else allowed.
func BuildFieldJSONSchema(s FieldSchema) map[string]any {
	props := make(map[string]any, s.Len())
	for _, f := range s.Fields {
		props[f.Key] = map[string]any{"type": []string{"string", "number", "null"}}
	}
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties":           props,
		"required":             s.Keys(),
	}
}
