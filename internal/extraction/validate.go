package extraction

import (
	"fmt"
	"math"
	"time"
)

// Report carries validation findings for a parsed document. Errors block
// downstream approval; warnings are advisory. A report never stops the
// pipeline from returning a successful envelope.
type Report struct {
	Errors   []string
	Warnings []string
}

func (r *Report) errorf(format string, args ...any) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

func (r *Report) warnf(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// reconcileTolerance is the absolute margin, in currency minor units,
// absorbed when cross-checking subtotal + tax against the total.
const reconcileTolerance = 1.0

// ValidateInvoice checks invoice amounts, line items, and date.
func ValidateInvoice(inv *Invoice) Report {
	var rep Report
	if inv.InvoiceNumber == "" {
		rep.warnf("invoice number is missing")
	}
	if inv.Total == nil {
		rep.warnf("total amount is missing")
	} else if *inv.Total < 0 {
		rep.errorf("total amount %.2f must not be negative", *inv.Total)
	}

	checkAmountReconciliation(&rep, inv.Subtotal, inv.VATAmount, inv.Total)

	if len(inv.LineItems) > 0 && inv.Total != nil {
		sum := 0.0
		for _, li := range inv.LineItems {
			if li.TotalIncludingTax != nil {
				sum += *li.TotalIncludingTax
			}
		}
		// One unit of tolerance per line item absorbs per-line rounding.
		tol := float64(len(inv.LineItems))
		if diff := math.Abs(sum - *inv.Total); diff > tol {
			rep.warnf("line items sum %.2f does not match total %.2f (difference %.2f exceeds tolerance %.0f)",
				sum, *inv.Total, diff, tol)
		}
	}

	if inv.InvoiceDate != "" {
		if _, err := parseStrictDate(inv.InvoiceDate); err != nil {
			rep.errorf("invoice date %q is not a valid YYYY-MM-DD date", inv.InvoiceDate)
		}
	}
	return rep
}

// ValidateReceipt checks the receipt amount and date. A receipt without a
// total is not useful, so a missing amount is an error rather than a warning.
func ValidateReceipt(rec *Receipt) Report {
	var rep Report
	if rec.Amount == nil {
		rep.errorf("amount is missing")
	} else if *rec.Amount < 0 {
		rep.errorf("amount %.2f must not be negative", *rec.Amount)
	}
	if rec.Date != "" {
		if _, err := parseFlexibleDate(rec.Date); err != nil {
			rep.errorf("date %q is not a valid date", rec.Date)
		}
	}
	return rep
}

// ValidateUnified applies the invoice amount rules with the receipt date
// rules to the generic document shape.
func ValidateUnified(doc *UnifiedDocument) Report {
	var rep Report
	if doc.TotalAmount == nil {
		rep.warnf("total amount is missing")
	} else if *doc.TotalAmount < 0 {
		rep.errorf("total amount %.2f must not be negative", *doc.TotalAmount)
	}

	checkAmountReconciliation(&rep, doc.Subtotal, doc.TaxAmount, doc.TotalAmount)

	if doc.DocumentDate != "" {
		if _, err := parseFlexibleDate(doc.DocumentDate); err != nil {
			rep.errorf("date %q is not a valid date", doc.DocumentDate)
		}
	}
	return rep
}

// checkAmountReconciliation warns when subtotal + tax drifts from total by
// more than the currency minor-unit tolerance. All three must be present;
// absolute tolerance, never floating-point equality.
func checkAmountReconciliation(rep *Report, subtotal, tax, total *float64) {
	if subtotal == nil || tax == nil || total == nil {
		return
	}
	if diff := math.Abs(*subtotal + *tax - *total); diff > reconcileTolerance {
		rep.warnf("subtotal %.2f plus tax %.2f does not match total %.2f (difference %.2f)",
			*subtotal, *tax, *total, diff)
	}
}

// parseStrictDate accepts calendar dates in YYYY-MM-DD form only.
func parseStrictDate(s string) (time.Time, error) {
	return time.ParseInLocation("2006-01-02", s, time.UTC)
}

// flexibleDateLayouts is the broader ISO-8601 acceptance used for receipts
// and unified documents, where providers return timestamps more often.
var flexibleDateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

func parseFlexibleDate(s string) (time.Time, error) {
	var lastErr error
	for _, layout := range flexibleDateLayouts {
		t, err := time.ParseInLocation(layout, s, time.UTC)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}
