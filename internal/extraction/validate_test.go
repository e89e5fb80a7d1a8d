package extraction

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateInvoiceExactReconciliationProducesNoWarning(t *testing.T) {
	inv := &Invoice{
		InvoiceNumber: "INV-100",
		InvoiceDate:   "2025-04-01",
		Subtotal:      amount(100.00),
		VATAmount:     amount(21.00),
		Total:         amount(121.00),
	}
	rep := ValidateInvoice(inv)
	assert.Empty(t, rep.Errors)
	assert.Empty(t, rep.Warnings)
}

func TestValidateInvoiceReconciliationTolerance(t *testing.T) {
	cases := []struct {
		name     string
		total    float64
		wantWarn bool
	}{
		{"exact", 121.00, false},
		{"within one unit", 121.90, false},
		{"just over one unit", 122.10, true},
		{"far off", 150.00, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			inv := &Invoice{
				InvoiceNumber: "INV-1",
				Subtotal:      amount(100.00),
				VATAmount:     amount(21.00),
				Total:         amount(tc.total),
			}
			rep := ValidateInvoice(inv)
			if tc.wantWarn {
				require.Len(t, rep.Warnings, 1)
				assert.Contains(t, rep.Warnings[0], "does not match total")
			} else {
				assert.Empty(t, rep.Warnings)
			}
		})
	}
}

func TestValidateInvoiceMissingFieldsAreWarnings(t *testing.T) {
	rep := ValidateInvoice(&Invoice{})
	assert.Empty(t, rep.Errors)
	assert.Len(t, rep.Warnings, 2) // invoice number, total
}

func TestValidateInvoiceNegativeTotalIsError(t *testing.T) {
	rep := ValidateInvoice(&Invoice{InvoiceNumber: "X", Total: amount(-10)})
	require.Len(t, rep.Errors, 1)
	assert.Contains(t, rep.Errors[0], "must not be negative")
}

func TestValidateInvoiceLineItemSum(t *testing.T) {
	items := []LineItem{
		{Description: "widgets", TotalIncludingTax: amount(40.00)},
		{Description: "gadgets", TotalIncludingTax: amount(35.50)},
		{Description: "shipping", TotalIncludingTax: amount(24.50)},
	}
	inv := &Invoice{InvoiceNumber: "INV-2", Total: amount(100.00), LineItems: items}
	rep := ValidateInvoice(inv)
	assert.Empty(t, rep.Warnings, "exact line item sum yields no warning")

	// Perturb one item beyond the per-line tolerance (3 items -> 3.0).
	items[1].TotalIncludingTax = amount(35.50 + 3.5)
	rep = ValidateInvoice(inv)
	require.Len(t, rep.Warnings, 1)
	assert.Contains(t, rep.Warnings[0], "line items sum")
}

func TestValidateInvoiceDateMustBeStrictYMD(t *testing.T) {
	for _, bad := range []string{"2025-13-40", "01/02/2025", "2025-04-01T10:00:00Z"} {
		inv := &Invoice{InvoiceNumber: "X", Total: amount(1), InvoiceDate: bad}
		rep := ValidateInvoice(inv)
		require.Len(t, rep.Errors, 1, "date %q", bad)
		assert.Contains(t, rep.Errors[0], "YYYY-MM-DD")
	}
}

func TestValidateReceiptMissingAndNegativeAmount(t *testing.T) {
	rep := ValidateReceipt(&Receipt{})
	require.Len(t, rep.Errors, 1)
	assert.Contains(t, rep.Errors[0], "missing")

	rep = ValidateReceipt(&Receipt{Amount: amount(-5), Date: "2025-13-40"})
	require.Len(t, rep.Errors, 2)
	assert.Contains(t, rep.Errors[0], "negative")
	assert.Contains(t, rep.Errors[1], "not a valid date")
}

func TestValidateReceiptAcceptsBroaderISODates(t *testing.T) {
	for _, good := range []string{"2025-04-01", "2025-04-01T10:30:00Z", "2025-04-01T10:30:00"} {
		rep := ValidateReceipt(&Receipt{Amount: amount(12.5), Date: good})
		assert.Empty(t, rep.Errors, "date %q", good)
	}
}

func TestValidateUnifiedMirrorsInvoiceAmountRules(t *testing.T) {
	rep := ValidateUnified(&UnifiedDocument{})
	assert.Empty(t, rep.Errors)
	assert.Len(t, rep.Warnings, 1) // missing total is advisory

	rep = ValidateUnified(&UnifiedDocument{TotalAmount: amount(-1)})
	require.Len(t, rep.Errors, 1)

	rep = ValidateUnified(&UnifiedDocument{
		Subtotal:    amount(50),
		TaxAmount:   amount(5),
		TotalAmount: amount(60),
	})
	require.Len(t, rep.Warnings, 1)
	assert.Contains(t, rep.Warnings[0], "does not match total")
}

func TestValidateUnifiedDateUsesFlexibleParsing(t *testing.T) {
	rep := ValidateUnified(&UnifiedDocument{TotalAmount: amount(10), DocumentDate: "2025-04-01T08:00:00Z"})
	assert.Empty(t, rep.Errors)

	rep = ValidateUnified(&UnifiedDocument{TotalAmount: amount(10), DocumentDate: "not-a-date"})
	require.Len(t, rep.Errors, 1)
}
