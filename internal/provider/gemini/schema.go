package gemini

import (
	"github.com/google/generative-ai-go/genai"

	"github.com/seremi5/expense-management/constants"
)

// toGenaiSchema converts a JSON-Schema map (the provider.Schema definition)
// into the genai structured-output schema. Only the subset Gemini accepts
// is carried over; validation keywords like "pattern" stay local.
func toGenaiSchema(def map[string]any) *genai.Schema {
	if def == nil {
		return nil
	}
	s := &genai.Schema{}
	if t, ok := def["type"].(string); ok {
		s.Type = mapType(t)
	}
	if d, ok := def["description"].(string); ok {
		s.Description = d
	}
	if enum, ok := def["enum"].([]string); ok {
		s.Enum = enum
	} else if enumAny, ok := def["enum"].([]any); ok {
		for _, e := range enumAny {
			if str, ok := e.(string); ok {
				s.Enum = append(s.Enum, str)
			}
		}
	}
	if props, ok := def["properties"].(map[string]any); ok {
		s.Properties = make(map[string]*genai.Schema, len(props))
		for name, sub := range props {
			if subMap, ok := sub.(map[string]any); ok {
				s.Properties[name] = toGenaiSchema(subMap)
			}
		}
	}
	if items, ok := def["items"].(map[string]any); ok {
		s.Items = toGenaiSchema(items)
	}
	if req, ok := def["required"].([]string); ok {
		s.Required = req
	} else if reqAny, ok := def["required"].([]any); ok {
		for _, r := range reqAny {
			if str, ok := r.(string); ok {
				s.Required = append(s.Required, str)
			}
		}
	}
	return s
}

func mapType(t string) genai.Type {
	switch t {
	case "string":
		return genai.TypeString
	case "number":
		return genai.TypeNumber
	case "integer":
		return genai.TypeInteger
	case "boolean":
		return genai.TypeBoolean
	case "array":
		return genai.TypeArray
	case "object":
		return genai.TypeObject
	}
	return genai.TypeUnspecified
}

// buildPrompt returns the extraction instruction for a document kind.
// The response schema constrains the shape; the prompt sets conventions.
func buildPrompt(kind constants.DocumentKind) string {
	common := "Return ONLY JSON matching the response schema. " +
		"Use ISO-8601 dates (YYYY-MM-DD). Amounts are plain numbers without currency symbols. " +
		"Never output null; omit fields that are not present in the document."
	switch kind {
	case constants.KindInvoice:
		return "You are an invoice parser. Extract the invoice fields from the attached document, " +
			"including every visible line item with its total including tax. " + common
	case constants.KindReceipt:
		return "You are a receipt parser. Extract the merchant, date, and the final amount paid " +
			"from the attached receipt. " + common
	default:
		return "You are a business-document parser. Extract the vendor, date, and amount totals " +
			"from the attached document. " + common
	}
}
