package llm

import (
	"fmt"
	"strings"

	"github.com/docstack/invoice-extractor/internal/common"
)

// PromptStrategy selects how the field schema is presented to the model.
type PromptStrategy string

const (
	// StrategyExactField lists the fixed key set and trusts the model's
	// general knowledge of invoice terminology.
	StrategyExactField PromptStrategy = "exact"

	// StrategySynonymGuided additionally lists, per key, label synonyms
	// observed across vendors and asks for semantic mapping.
	StrategySynonymGuided PromptStrategy = "synonym"
)

// SystemPrompt is the fixed system instruction sent with every request.
const SystemPrompt = "You extract structured data and respond ONLY with JSON."

// BuildPrompt renders the user message for one extraction. The document text
// is embedded verbatim inside a fenced section so the model cannot confuse
// instructions with document content. Pure: no I/O, deterministic for a
// given input.
func BuildPrompt(text string, schema FieldSchema, strategy PromptStrategy) (string, error) {
	if schema.Len() == 0 {
		return "", common.InvalidInputError("field schema has no keys")
	}

	var b strings.Builder
	switch strategy {
	case StrategySynonymGuided:
		writeSynonymGuided(&b, schema)
	case StrategyExactField:
		writeExactField(&b, schema)
	default:
		return "", common.InvalidInputError(fmt.Sprintf("unknown prompt strategy: %q", strategy))
	}

	b.WriteString("\nDOCUMENT CONTENT:\n\"\"\"\n")
	b.WriteString(text)
	b.WriteString("\n\"\"\"\n")
	return b.String(), nil
}

func writeExactField(b *strings.Builder, schema FieldSchema) {
	b.WriteString("You are an information extraction assistant.\n\n")
	b.WriteString("You will be given the text content of a PDF document (such as an invoice, form, or statement).\n")
	b.WriteString("Your task is to extract the following key fields and return a STRICT JSON object only, with no extra text:\n\n")
	b.WriteString("Required keys:\n")
	for _, f := range schema.Fields {
		fmt.Fprintf(b, "- %q\n", f.Key)
	}
	b.WriteString("\nRules:\n")
	b.WriteString("- If a field is missing or not clearly available, set its value to null.\n")
	b.WriteString("- Do NOT include any additional keys.\n")
	b.WriteString("- Do NOT add explanations.\n")
	b.WriteString("- Output must be valid JSON only.\n")
}

func writeSynonymGuided(b *strings.Builder, schema FieldSchema) {
	b.WriteString("You are an expert invoice document extraction assistant.\n")
	b.WriteString("Invoices come from different vendors and fields may appear with different label names, abbreviations, or synonyms.\n\n")
	b.WriteString("Your task is to extract the required standardized fields below.\n")
	b.WriteString("Map semantically similar terms to the correct JSON key even if the wording differs.\n\n")
	b.WriteString("Standard JSON Keys & Example Synonyms:\n\n")
	for i, f := range schema.Fields {
		if len(f.Synonyms) > 0 {
			fmt.Fprintf(b, "%d. %q → %s\n", i+1, f.Key, strings.Join(f.Synonyms, ", "))
		} else {
			fmt.Fprintf(b, "%d. %q\n", i+1, f.Key)
		}
	}
	b.WriteString("\nOUTPUT RULES:\n")
	b.WriteString("- Output MUST be ONLY a valid JSON object containing the keys above.\n")
	b.WriteString("- If a value is missing or unclear, return null.\n")
	b.WriteString("- Do NOT include any explanation text outside JSON.\n")
	b.WriteString("- Extract values based on semantic meaning, not keyword matching.\n")
}
