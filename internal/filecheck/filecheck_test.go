package filecheck

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testValidator() *Validator {
	return NewValidator(Limits{
		MaxFileSize: 5 * 1024 * 1024,
		MaxPDFPages: 10,
		MinWidth:    200,
		MinHeight:   200,
	}, nil)
}

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.Gray{Y: uint8((x + y) % 256)})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestValidateRejectsUnsupportedMIMEType(t *testing.T) {
	v := testValidator()
	_, err := v.Validate("text/plain", 10, []byte("hello"))
	require.Error(t, err)
	var ife *InvalidFileError
	require.ErrorAs(t, err, &ife)
	assert.Contains(t, ife.Reason, "unsupported file type")
	assert.Contains(t, ife.Reason, "application/pdf", "rejection names the allowed types")
}

func TestValidateRejectsOversizedFile(t *testing.T) {
	v := testValidator()
	_, err := v.Validate("image/png", 6*1024*1024, nil)
	require.Error(t, err)
	assert.Equal(t, "file size exceeds limit of 5MB", err.Error())
}

func TestValidateAcceptsWellFormedPNG(t *testing.T) {
	v := testValidator()
	data := encodePNG(t, 300, 250)

	meta, err := v.Validate("image/png", int64(len(data)), data)
	require.NoError(t, err)
	assert.Equal(t, "png", meta.Format)
	assert.Equal(t, 300, meta.Width)
	assert.Equal(t, 250, meta.Height)
	assert.Zero(t, meta.PageCount)
}

func TestValidateRejectsUndersizedImage(t *testing.T) {
	v := testValidator()
	data := encodePNG(t, 100, 100)

	_, err := v.Validate("image/png", int64(len(data)), data)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "100x100 is below the minimum of 200x200")
}

func TestValidateRejectsCorruptImageBytes(t *testing.T) {
	v := testValidator()
	_, err := v.Validate("image/jpeg", 20, []byte("definitely not a jpeg"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "could not be read")
}

func TestValidateAcceptsSinglePagePDF(t *testing.T) {
	v := testValidator()
	data := buildPDF(1, "Invoice INV-42 total 121.00")

	meta, err := v.Validate("application/pdf", int64(len(data)), data)
	require.NoError(t, err)
	assert.Equal(t, "pdf", meta.Format)
	assert.Equal(t, 1, meta.PageCount)
	assert.Equal(t, 612, meta.Width)
	assert.Equal(t, 792, meta.Height)
}

func TestValidateRejectsPDFOverPageLimit(t *testing.T) {
	v := testValidator()
	data := buildPDF(12, "page filler")

	meta, err := v.Validate("application/pdf", int64(len(data)), data)
	require.Error(t, err)
	assert.Equal(t, "document has 12 pages; maximum allowed is 10", err.Error())
	assert.Equal(t, 12, meta.PageCount, "metadata still reports what was derived")
}

func TestValidateRejectsGarbagePDFBytes(t *testing.T) {
	v := testValidator()
	_, err := v.Validate("application/pdf", 24, []byte("%PDF-1.4 nothing here"))
	require.Error(t, err)
	var ife *InvalidFileError
	assert.ErrorAs(t, err, &ife)
}

func TestClassifyPDFError(t *testing.T) {
	cases := []struct {
		msg  string
		want string
	}{
		{"pdfcpu: this file is password protected", "encrypted"},
		{"pdfcpu: encryptDict not found", "encrypted"},
		{"pdfcpu: xref table missing", "structurally invalid"},
		{"pdfcpu: corrupt trailer dict", "structurally invalid"},
		{"unexpected EOF", "could not be read"},
	}
	for _, tc := range cases {
		err := classifyPDFError(fmt.Errorf("%s", tc.msg))
		assert.Contains(t, err.Error(), tc.want, "input %q", tc.msg)
	}
}

// buildPDF writes a valid n-page PDF with correct xref offsets. Object
// layout: catalog, page tree, n page objects, one shared content stream,
// one font.
func buildPDF(pages int, text string) []byte {
	escaped := strings.NewReplacer(`\`, `\\`, "(", `\(`, ")", `\)`).Replace(text)
	stream := "BT\n/F1 12 Tf\n72 720 Td\n(" + escaped + ") Tj\nET"

	contentObj := 3 + pages
	fontObj := 4 + pages

	var kids []string
	for i := 0; i < pages; i++ {
		kids = append(kids, strconv.Itoa(3+i)+" 0 R")
	}

	var b strings.Builder
	offsets := make([]int, fontObj+1)

	b.WriteString("%PDF-1.4\n")

	offsets[1] = b.Len()
	b.WriteString("1 0 obj\n<< /Type /Catalog /Pages 2 0 R >>\nendobj\n")

	offsets[2] = b.Len()
	fmt.Fprintf(&b, "2 0 obj\n<< /Type /Pages /Kids [%s] /Count %d >>\nendobj\n",
		strings.Join(kids, " "), pages)

	for i := 0; i < pages; i++ {
		offsets[3+i] = b.Len()
		fmt.Fprintf(&b, "%d 0 obj\n<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Contents %d 0 R /Resources << /Font << /F1 %d 0 R >> >> >>\nendobj\n",
			3+i, contentObj, fontObj)
	}

	offsets[contentObj] = b.Len()
	fmt.Fprintf(&b, "%d 0 obj\n<< /Length %d >>\nstream\n%s\nendstream\nendobj\n",
		contentObj, len(stream), stream)

	offsets[fontObj] = b.Len()
	fmt.Fprintf(&b, "%d 0 obj\n<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>\nendobj\n", fontObj)

	xrefOffset := b.Len()
	fmt.Fprintf(&b, "xref\n0 %d\n", fontObj+1)
	b.WriteString("0000000000 65535 f \n")
	for i := 1; i <= fontObj; i++ {
		fmt.Fprintf(&b, "%010d 00000 n \n", offsets[i])
	}
	fmt.Fprintf(&b, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n",
		fontObj+1, xrefOffset)

	return []byte(b.String())
}
