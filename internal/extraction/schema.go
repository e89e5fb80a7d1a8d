package extraction

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/seremi5/expense-management/constants"
	"github.com/seremi5/expense-management/internal/provider"
)

// Schemas are JSON-Schema (draft 2020-12 subset) as generic maps. They are
// handed to the provider as structured-output constraints and used locally
// to reject malformed responses before parsing.

func BuildInvoiceJSONSchema() map[string]any {
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"invoice_number": map[string]any{"type": "string"},
			"vendor_name":    map[string]any{"type": "string"},
			"invoice_date":   map[string]any{"type": "string"},
			"currency_code":  map[string]any{"type": "string", "minLength": 3, "maxLength": 3},
			"subtotal":       amountProp(),
			"vat_amount":     amountProp(),
			"total_inc_vat":  amountProp(),
			"line_items": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type":                 "object",
					"additionalProperties": false,
					"properties": map[string]any{
						"description":   map[string]any{"type": "string"},
						"quantity":      amountProp(),
						"unit_price":    amountProp(),
						"total_inc_vat": amountProp(),
					},
				},
			},
		},
	}
}

func BuildReceiptJSONSchema() map[string]any {
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"merchant_name":  map[string]any{"type": "string"},
			"date":           map[string]any{"type": "string"},
			"amount":         amountProp(),
			"tax_amount":     amountProp(),
			"currency_code":  map[string]any{"type": "string", "minLength": 3, "maxLength": 3},
			"payment_method": map[string]any{"type": "string"},
		},
	}
}

func BuildUnifiedJSONSchema() map[string]any {
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"document_type": map[string]any{"type": "string"},
			"vendor_name":   map[string]any{"type": "string"},
			"document_date": map[string]any{"type": "string"},
			"currency_code": map[string]any{"type": "string", "minLength": 3, "maxLength": 3},
			"subtotal":      amountProp(),
			"tax_amount":    amountProp(),
			"total_amount":  amountProp(),
		},
	}
}

func amountProp() map[string]any {
	return map[string]any{"type": "number"}
}

// SchemaFor returns the provider-facing schema for a document kind.
func SchemaFor(kind constants.DocumentKind) provider.Schema {
	switch kind {
	case constants.KindInvoice:
		return provider.Schema{Name: "invoice", Definition: BuildInvoiceJSONSchema()}
	case constants.KindReceipt:
		return provider.Schema{Name: "receipt", Definition: BuildReceiptJSONSchema()}
	default:
		return provider.Schema{Name: "document", Definition: BuildUnifiedJSONSchema()}
	}
}

// ValidateJSONAgainstSchema validates "data" against "schemaMap".
func ValidateJSONAgainstSchema(schemaMap map[string]any, data []byte) error {
	b, err := json.Marshal(schemaMap)
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", bytes.NewReader(b)); err != nil {
		return fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("schema.json")
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal data: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("json does not match schema: %w", err)
	}
	return nil
}
