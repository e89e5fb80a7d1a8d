package extraction

import (
	"encoding/json"
	"fmt"
	"log/slog"
)

// Parsing turns a raw provider response into a typed document shape.
// Any failure here is a pipeline failure: malformed provider output is
// never downgraded to a validation warning.

func ParseInvoice(raw []byte, log *slog.Logger) (*Invoice, error) {
	var inv Invoice
	if err := parseInto(raw, BuildInvoiceJSONSchema(), &inv, log); err != nil {
		return nil, fmt.Errorf("parse invoice: %w", err)
	}
	return &inv, nil
}

func ParseReceipt(raw []byte, log *slog.Logger) (*Receipt, error) {
	var rec Receipt
	if err := parseInto(raw, BuildReceiptJSONSchema(), &rec, log); err != nil {
		return nil, fmt.Errorf("parse receipt: %w", err)
	}
	return &rec, nil
}

func ParseUnified(raw []byte, log *slog.Logger) (*UnifiedDocument, error) {
	var doc UnifiedDocument
	if err := parseInto(raw, BuildUnifiedJSONSchema(), &doc, log); err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}
	return &doc, nil
}

func parseInto(raw []byte, schema map[string]any, out any, log *slog.Logger) error {
	if log == nil {
		log = slog.Default()
	}
	cleaned, touched, err := NormalizeDocumentJSON(raw)
	if err != nil {
		return err
	}
	if len(touched) > 0 {
		log.Warn("extraction.parse.normalized", "touched", touched)
	}
	if err := ValidateJSONAgainstSchema(schema, cleaned); err != nil {
		return fmt.Errorf("schema validation failed: %w", err)
	}
	if err := json.Unmarshal(cleaned, out); err != nil {
		return fmt.Errorf("unmarshal fields: %w", err)
	}
	return nil
}
