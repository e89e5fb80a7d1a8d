package extraction

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

var amountKeys = map[string]struct{}{
	"subtotal": {}, "vat_amount": {}, "total_inc_vat": {},
	"amount": {}, "tax_amount": {}, "total_amount": {},
	"quantity": {}, "unit_price": {},
}

// stripCodeFences removes a leading/trailing markdown fence some models
// wrap around JSON output despite the response MIME type.
func stripCodeFences(raw []byte) []byte {
	s := strings.TrimSpace(string(raw))
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}
	return []byte(strings.TrimSpace(s))
}

// NormalizeDocumentJSON
// - Drops nulls and empty-string optionals
// - Coerces quoted numbers to numbers for amount-ish fields
// - Trims string values
// Returns the cleaned document plus the list of touched keys.
func NormalizeDocumentJSON(raw []byte) ([]byte, []string, error) {
	var m map[string]any
	if err := json.Unmarshal(stripCodeFences(raw), &m); err != nil {
		return nil, nil, fmt.Errorf("sanitize: decode: %w", err)
	}

	var touched []string
	normalizeObject(m, &touched)

	out, err := json.Marshal(m)
	if err != nil {
		return nil, touched, fmt.Errorf("sanitize: encode: %w", err)
	}
	return out, touched, nil
}

func normalizeObject(m map[string]any, touched *[]string) {
	for k, v := range m {
		switch t := v.(type) {
		case nil:
			delete(m, k)
			*touched = append(*touched, k+"(null)")
		case string:
			s := strings.TrimSpace(t)
			if s == "" || strings.EqualFold(s, "null") {
				delete(m, k)
				*touched = append(*touched, k+"(empty)")
				continue
			}
			if _, isAmount := amountKeys[k]; isAmount {
				cleaned := strings.ReplaceAll(s, ",", "")
				if f, err := strconv.ParseFloat(cleaned, 64); err == nil {
					m[k] = f
					*touched = append(*touched, k+"(coerced)")
					continue
				}
				delete(m, k)
				*touched = append(*touched, k+"(unparseable)")
				continue
			}
			m[k] = s
		case map[string]any:
			normalizeObject(t, touched)
		case []any:
			for _, el := range t {
				if obj, ok := el.(map[string]any); ok {
					normalizeObject(obj, touched)
				}
			}
		}
	}
}
