package filecheck

import (
	"bytes"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// validatePDF decodes the PDF structure with pdfcpu and enforces page count,
// encryption, and first-page dimension limits.
func (v *Validator) validatePDF(meta Metadata, data []byte) (Metadata, error) {
	meta.Format = "pdf"

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	ctx, err := api.ReadValidateAndOptimize(bytes.NewReader(data), conf)
	if err != nil {
		v.log.Warn("filecheck.pdf.decode_failed", "error", err)
		return meta, classifyPDFError(err)
	}

	meta.PageCount = ctx.PageCount
	if ctx.Encrypt != nil {
		return meta, invalidf("document is encrypted; password-protected PDFs are not supported")
	}
	if v.limits.MaxPDFPages > 0 && ctx.PageCount > v.limits.MaxPDFPages {
		return meta, invalidf("document has %d pages; maximum allowed is %d", ctx.PageCount, v.limits.MaxPDFPages)
	}

	dims, err := ctx.PageDims()
	if err != nil || len(dims) == 0 {
		v.log.Warn("filecheck.pdf.dims_unreadable", "error", err)
		return meta, invalidf("document could not be read; page geometry is missing")
	}
	meta.Width = int(dims[0].Width)
	meta.Height = int(dims[0].Height)
	if meta.Width < v.limits.MinWidth || meta.Height < v.limits.MinHeight {
		return meta, invalidf("document resolution %dx%d is below the minimum of %dx%d",
			meta.Width, meta.Height, v.limits.MinWidth, v.limits.MinHeight)
	}
	return meta, nil
}

// classifyPDFError maps pdfcpu decode failures to user-facing categories:
// structural corruption vs encryption vs a generic unreadable message.
func classifyPDFError(err error) error {
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "password") || strings.Contains(msg, "encrypt"):
		return invalidf("document is encrypted; password-protected PDFs are not supported")
	case strings.Contains(msg, "xref") || strings.Contains(msg, "trailer") || strings.Contains(msg, "corrupt"):
		return invalidf("document is structurally invalid and cannot be processed")
	default:
		return invalidf("document could not be read; it may be damaged or not a valid PDF")
	}
}
