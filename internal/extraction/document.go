package extraction

import "github.com/seremi5/expense-management/constants"

// LineItem is one row on an invoice. Amounts are pointers so a missing
// value is distinguishable from zero.
type LineItem struct {
	Description       string   `json:"description,omitempty"`
	Quantity          *float64 `json:"quantity,omitempty"`
	UnitPrice         *float64 `json:"unit_price,omitempty"`
	TotalIncludingTax *float64 `json:"total_inc_vat,omitempty"`
}

// Invoice is the typed payload for kind "invoice".
type Invoice struct {
	InvoiceNumber string     `json:"invoice_number,omitempty"`
	VendorName    string     `json:"vendor_name,omitempty"`
	InvoiceDate   string     `json:"invoice_date,omitempty"` // YYYY-MM-DD
	CurrencyCode  string     `json:"currency_code,omitempty"`
	Subtotal      *float64   `json:"subtotal,omitempty"`
	VATAmount     *float64   `json:"vat_amount,omitempty"`
	Total         *float64   `json:"total_inc_vat,omitempty"`
	LineItems     []LineItem `json:"line_items,omitempty"`
}

func (Invoice) Kind() constants.DocumentKind { return constants.KindInvoice }

// Receipt is the typed payload for kind "receipt".
type Receipt struct {
	MerchantName  string   `json:"merchant_name,omitempty"`
	Date          string   `json:"date,omitempty"`
	Amount        *float64 `json:"amount,omitempty"`
	TaxAmount     *float64 `json:"tax_amount,omitempty"`
	CurrencyCode  string   `json:"currency_code,omitempty"`
	PaymentMethod string   `json:"payment_method,omitempty"`
}

func (Receipt) Kind() constants.DocumentKind { return constants.KindReceipt }

// UnifiedDocument is the typed payload for kind "document": the invoice
// shape with single generic amount fields and no line-item breakdown.
type UnifiedDocument struct {
	DocumentType string   `json:"document_type,omitempty"`
	VendorName   string   `json:"vendor_name,omitempty"`
	DocumentDate string   `json:"document_date,omitempty"`
	CurrencyCode string   `json:"currency_code,omitempty"`
	Subtotal     *float64 `json:"subtotal,omitempty"`
	TaxAmount    *float64 `json:"tax_amount,omitempty"`
	TotalAmount  *float64 `json:"total_amount,omitempty"`
}

func (UnifiedDocument) Kind() constants.DocumentKind { return constants.KindDocument }

func amount(v float64) *float64 { return &v }
