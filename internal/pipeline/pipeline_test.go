package pipeline

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/docstack/invoice-extractor/internal/common"
	"github.com/docstack/invoice-extractor/internal/extract"
	"github.com/docstack/invoice-extractor/internal/llm"
)

type fakeExtractor struct {
	text  string
	pages int
	err   error
	calls int
}

func (f *fakeExtractor) Extract(ctx context.Context, path string) (extract.TextExtractionResult, error) {
	f.calls++
	if f.err != nil {
		return extract.TextExtractionResult{}, f.err
	}
	return extract.TextExtractionResult{Text: f.text, Pages: f.pages}, nil
}

type fakeClient struct {
	response string
	err      error
	calls    int
	prompts  []string
}

func (f *fakeClient) Complete(ctx context.Context, prompt string) (string, error) {
	f.calls++
	f.prompts = append(f.prompts, prompt)
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

func testSchema() llm.FieldSchema {
	return llm.SchemaFromKeys([]string{
		llm.KeyInvoiceNumber, llm.KeyInvoiceDate, llm.KeyCustomerName,
		llm.KeyTotalAmount, llm.KeyCurrency,
	})
}

func TestRun_HappyPath(t *testing.T) {
	ex := &fakeExtractor{text: "INVOICE INV-001\nAcme\nTotal 100.50 USD", pages: 1}
	cl := &fakeClient{response: `{"invoice_number": "INV-001", "invoice_date": null, "customer_name": "Acme", "total_amount": 100.5, "currency": "USD"}`}

	p := New(nil, Config{Strategy: llm.StrategyExactField}, ex, cl, testSchema())
	fields, err := p.Run(context.Background(), "invoice.pdf")
	require.NoError(t, err)

	require.Equal(t, llm.Fields{
		"invoice_number": "INV-001",
		"invoice_date":   nil,
		"customer_name":  "Acme",
		"total_amount":   100.5,
		"currency":       "USD",
	}, fields)
	require.Equal(t, 1, ex.calls)
	require.Equal(t, 1, cl.calls)

	// the document text reaches the model verbatim
	require.Contains(t, cl.prompts[0], "Total 100.50 USD")
}

func TestRun_MissingFileFailsBeforeAnyNetworkCall(t *testing.T) {
	cl := &fakeClient{response: `{}`}
	p := New(nil, Config{}, extract.NewPDFExtractor(nil), cl, testSchema())

	_, err := p.Run(context.Background(), filepath.Join(t.TempDir(), "invoice.pdf"))
	require.Error(t, err)
	require.True(t, common.IsCode(err, common.CodeNotFound))
	require.Zero(t, cl.calls, "no network call may happen for a missing file")
}

func TestRun_EmptyDocumentStillReachesTheModel(t *testing.T) {
	ex := &fakeExtractor{text: "", pages: 0}
	cl := &fakeClient{response: `{"invoice_number": null, "invoice_date": null, "customer_name": null, "total_amount": null, "currency": null}`}

	p := New(nil, Config{}, ex, cl, testSchema())
	fields, err := p.Run(context.Background(), "empty.pdf")
	require.NoError(t, err)
	require.Equal(t, 1, cl.calls)
	for _, key := range testSchema().Keys() {
		require.Nil(t, fields[key])
	}
}

func TestRun_ClientErrorPropagatesUnchanged(t *testing.T) {
	want := common.TransportError("chat request failed", nil)
	ex := &fakeExtractor{text: "body", pages: 1}
	cl := &fakeClient{err: want}

	p := New(nil, Config{}, ex, cl, testSchema())
	_, err := p.Run(context.Background(), "x.pdf")
	require.ErrorIs(t, err, want)
}

func TestRun_MalformedResponsePropagates(t *testing.T) {
	ex := &fakeExtractor{text: "body", pages: 1}
	cl := &fakeClient{response: "no json here"}

	p := New(nil, Config{}, ex, cl, testSchema())
	_, err := p.Run(context.Background(), "x.pdf")
	require.True(t, common.IsCode(err, common.CodeMalformedOutput))
}

func TestRun_StrictModeRejectsExtraKeys(t *testing.T) {
	ex := &fakeExtractor{text: "body", pages: 1}
	cl := &fakeClient{response: `{"invoice_number": "1", "invoice_date": null, "customer_name": null, "total_amount": null, "currency": null, "surprise": "hi"}`}

	p := New(nil, Config{Strict: true}, ex, cl, testSchema())
	_, err := p.Run(context.Background(), "x.pdf")
	require.True(t, common.IsCode(err, common.CodeSchemaMismatch))
}

func TestRun_RepeatedRunsAreIndependent(t *testing.T) {
	ex := &fakeExtractor{text: "body", pages: 1}
	cl := &fakeClient{response: `{"invoice_number": "1", "invoice_date": null, "customer_name": null, "total_amount": null, "currency": null}`}

	p := New(nil, Config{}, ex, cl, testSchema())
	_, err := p.Run(context.Background(), "x.pdf")
	require.NoError(t, err)
	_, err = p.Run(context.Background(), "x.pdf")
	require.NoError(t, err)

	// no caching: every run re-extracts and re-invokes the model
	require.Equal(t, 2, ex.calls)
	require.Equal(t, 2, cl.calls)
}

func TestRun_HooksObserveEveryStage(t *testing.T) {
	type event struct {
		stage Stage
		ok    bool
	}
	var events []event
	hook := func(ctx context.Context, stage Stage, err error, elapsed time.Duration) {
		events = append(events, event{stage: stage, ok: err == nil})
	}

	ex := &fakeExtractor{text: "body", pages: 1}
	cl := &fakeClient{response: `{"invoice_number": "1", "invoice_date": null, "customer_name": null, "total_amount": null, "currency": null}`}

	p := New(nil, Config{Hooks: []Hook{hook}}, ex, cl, testSchema())
	_, err := p.Run(context.Background(), "x.pdf")
	require.NoError(t, err)

	require.Equal(t, []event{
		{StageExtract, true},
		{StagePrompt, true},
		{StageComplete, true},
		{StageParse, true},
	}, events)
}

func TestRun_HooksSeeFailedStageAndRunStops(t *testing.T) {
	var seen []Stage
	hook := func(ctx context.Context, stage Stage, err error, elapsed time.Duration) {
		seen = append(seen, stage)
	}

	ex := &fakeExtractor{err: common.CorruptDocumentError("x.pdf", nil)}
	cl := &fakeClient{}

	p := New(nil, Config{Hooks: []Hook{hook}}, ex, cl, testSchema())
	_, err := p.Run(context.Background(), "x.pdf")
	require.True(t, common.IsCode(err, common.CodeCorruptDocument))
	require.Equal(t, []Stage{StageExtract}, seen)
	require.Zero(t, cl.calls)
}

func TestRun_SynonymStrategyShapesPrompt(t *testing.T) {
	ex := &fakeExtractor{text: "body", pages: 1}
	cl := &fakeClient{response: `{"invoice_number": null, "invoice_date": null, "customer_name": null, "total_amount": null, "tax_amount": null, "currency": null}`}

	p := New(nil, Config{Strategy: llm.StrategySynonymGuided}, ex, cl, llm.DefaultInvoiceSchema())
	_, err := p.Run(context.Background(), "x.pdf")
	require.NoError(t, err)
	require.True(t, strings.Contains(cl.prompts[0], "Grand Total"))
}
