package llm

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/docstack/invoice-extractor/internal/common"
)

// ParseOptions controls key-set enforcement.
type ParseOptions struct {
	// Strict rejects responses containing keys outside the schema instead
	// of dropping them.
	Strict bool
	Logger *slog.Logger
}

// ParseFields turns the model's raw response text into a Fields record whose
// key set equals the schema exactly.
//
// A strict JSON parse is attempted first; if that fails, the substring from
// the first '{' to the last '}' is retried, which recovers JSON that the
// model wrapped in prose despite instructions. Missing keys are filled with
// null (the prompt explicitly permits null for unclear fields); extra keys
// are dropped with a warning, or rejected in strict mode.
func ParseFields(raw string, schema FieldSchema, opts ParseOptions) (Fields, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if schema.Len() == 0 {
		return nil, common.InvalidInputError("field schema has no keys")
	}

	obj, err := decodeObject(raw)
	if err != nil {
		return nil, common.MalformedOutputError(raw, err)
	}

	allowed := schema.KeySet()
	var extras []string
	for k := range obj {
		if _, ok := allowed[k]; !ok {
			extras = append(extras, k)
		}
	}
	if len(extras) > 0 {
		sort.Strings(extras)
		if opts.Strict {
			return nil, common.SchemaMismatchError(
				fmt.Sprintf("response contains keys outside the schema: %s", strings.Join(extras, ", ")),
				raw, nil)
		}
		logger.Warn("llm.parse.extra_keys_dropped", "keys", extras)
	}

	fields := make(Fields, schema.Len())
	for _, key := range schema.Keys() {
		if v, ok := obj[key]; ok {
			fields[key] = v
		} else {
			fields[key] = nil
		}
	}

	// Structural guarantee: exact key set, values string/number/null only.
	// No coercion happens above, so a boolean or nested value fails here.
	if err := ValidateAgainstSchema(schema, fields); err != nil {
		return nil, common.SchemaMismatchError("response values do not fit the schema", raw, err)
	}
	return fields, nil
}

// decodeObject parses raw as a JSON object, falling back to the outermost
// brace-delimited substring. Best effort: not guaranteed to rescue every
// prose-wrapped response.
func decodeObject(raw string) (map[string]any, error) {
	trimmed := strings.TrimSpace(raw)

	var obj map[string]any
	strictErr := json.Unmarshal([]byte(trimmed), &obj)
	if strictErr == nil {
		if obj == nil {
			// a bare "null" parses but enforces nothing
			strictErr = fmt.Errorf("response is not a JSON object")
		} else {
			return obj, nil
		}
	}

	start := strings.Index(trimmed, "{")
	end := strings.LastIndex(trimmed, "}")
	if start < 0 || end <= start {
		return nil, strictErr
	}
	var recovered map[string]any
	if err := json.Unmarshal([]byte(trimmed[start:end+1]), &recovered); err != nil || recovered == nil {
		return nil, strictErr
	}
	return recovered, nil
}
