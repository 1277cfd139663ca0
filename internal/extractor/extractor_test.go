package extractor

import (
	"archive/zip"
	"bytes"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

const wordNS = `xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main" xmlns:mc="http://schemas.openxmlformats.org/markup-compatibility/2006"`

func buildDOCX(t *testing.T, body string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	f, err := zw.Create("word/document.xml")
	if err != nil {
		t.Fatal(err)
	}
	doc := `<?xml version="1.0" encoding="UTF-8" standalone="yes"?><w:document ` + wordNS + `><w:body>` + body + `</w:body></w:document>`
	if _, err := f.Write([]byte(doc)); err != nil {
		t.Fatal(err)
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func mustRegistry(t *testing.T, formats ...string) *Registry {
	t.Helper()
	r, err := New(formats...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return r
}

func TestExtractDOCX(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{
			name: "heading and merged bold runs",
			body: `<w:p><w:pPr><w:pStyle w:val="Heading1"/></w:pPr><w:r><w:t>Background</w:t></w:r></w:p>` +
				`<w:p><w:r><w:t xml:space="preserve">Total is </w:t></w:r>` +
				`<w:r><w:rPr><w:b/></w:rPr><w:t xml:space="preserve">$1,200 </w:t></w:r>` +
				`<w:r><w:rPr><w:b/></w:rPr><w:t>USD</w:t></w:r></w:p>`,
			want: "# Background\nTotal is **$1,200 USD**",
		},
		{
			name: "emphasis notation",
			body: `<w:p>` +
				`<w:r><w:rPr><w:i/></w:rPr><w:t>italic</w:t></w:r><w:r><w:t xml:space="preserve"> </w:t></w:r>` +
				`<w:r><w:rPr><w:b/><w:i/></w:rPr><w:t>both</w:t></w:r><w:r><w:t xml:space="preserve"> </w:t></w:r>` +
				`<w:r><w:rPr><w:strike/></w:rPr><w:t>gone</w:t></w:r><w:r><w:t xml:space="preserve"> </w:t></w:r>` +
				`<w:r><w:rPr><w:rStyle w:val="InlineCode"/></w:rPr><w:t>x := 1</w:t></w:r><w:r><w:t xml:space="preserve"> </w:t></w:r>` +
				`<w:r><w:rPr><w:rFonts w:ascii="Courier New" w:hAnsi="Courier New"/></w:rPr><w:t>mono</w:t></w:r><w:r><w:t xml:space="preserve"> </w:t></w:r>` +
				`<w:r><w:rPr><w:b w:val="0"/></w:rPr><w:t>plain</w:t></w:r>` +
				`</w:p>`,
			want: "*italic* ***both*** ~~gone~~ `x := 1` `mono` plain",
		},
		{
			name: "spacing and casing are preserved",
			body: `<w:p><w:r><w:t xml:space="preserve">  teh  QUICK   brown </w:t></w:r></w:p>` +
				`<w:p><w:r><w:t>a</w:t><w:tab/><w:t>b</w:t></w:r></w:p>`,
			want: "  teh  QUICK   brown \na\tb",
		},
		{
			name: "table becomes markdown table",
			body: `<w:p><w:r><w:t>Table 1: Costs</w:t></w:r></w:p>` +
				`<w:tbl>` +
				`<w:tr><w:tc><w:p><w:r><w:t>Item</w:t></w:r></w:p></w:tc><w:tc><w:p><w:r><w:t>Cost</w:t></w:r></w:p></w:tc></w:tr>` +
				`<w:tr><w:tc><w:p><w:r><w:t>Pump</w:t></w:r></w:p></w:tc><w:tc><w:p><w:r><w:rPr><w:b/></w:rPr><w:t>10.00</w:t></w:r></w:p></w:tc></w:tr>` +
				`</w:tbl>`,
			want: "Table 1: Costs\n| Item | Cost |\n| --- | --- |\n| Pump | **10.00** |",
		},
		{
			name: "sections are joined with a single space",
			body: `<w:p><w:r><w:t>First</w:t></w:r></w:p>` +
				`<w:p><w:pPr><w:sectPr/></w:pPr><w:r><w:t>End one</w:t></w:r></w:p>` +
				`<w:p><w:r><w:t>Second</w:t></w:r></w:p>` +
				`<w:sectPr/>`,
			want: "First\nEnd one Second",
		},
		{
			name: "fallback content is not duplicated",
			body: `<w:p><w:r><w:t>Shape:</w:t></w:r><w:r><mc:AlternateContent>` +
				`<mc:Choice><w:p><w:r><w:t>boxed</w:t></w:r></w:p></mc:Choice>` +
				`<mc:Fallback><w:p><w:r><w:t>boxed</w:t></w:r></w:p></mc:Fallback>` +
				`</mc:AlternateContent></w:r></w:p>`,
			want: "Shape:\nboxed",
		},
		{
			name: "text box lines follow their anchor paragraph",
			body: `<w:p><w:r><w:t>Before</w:t></w:r></w:p>` +
				`<w:p><w:r><w:t>Figure 2</w:t></w:r><w:r><w:pict><w:txbxContent>` +
				`<w:p><w:r><w:t>box one</w:t></w:r></w:p><w:p><w:r><w:t>box two</w:t></w:r></w:p>` +
				`</w:txbxContent></w:pict></w:r><w:r><w:t xml:space="preserve"> caption</w:t></w:r></w:p>` +
				`<w:p><w:r><w:t>After</w:t></w:r></w:p>`,
			want: "Before\nFigure 2 caption\nbox one\nbox two\nAfter",
		},
	}

	r := mustRegistry(t, "docx")
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.Extract(buildDOCX(t, tt.body), "report.docx")
			if err != nil {
				t.Fatalf("Extract: %v", err)
			}
			if got != tt.want {
				t.Errorf("Extract() =\n%q\nwant\n%q", got, tt.want)
			}
		})
	}
}

func TestExtractIsIdempotent(t *testing.T) {
	r := mustRegistry(t, "docx", "txt")
	data := buildDOCX(t, `<w:p><w:r><w:rPr><w:b/></w:rPr><w:t>Report dated 2024-05-01</w:t></w:r></w:p>`)

	first, err := r.Extract(data, "a.docx")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	second, err := r.Extract(data, "a.docx")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if first != second {
		t.Fatalf("extraction not idempotent: %q vs %q", first, second)
	}
}

func TestExtractErrors(t *testing.T) {
	r := mustRegistry(t, "docx")

	if _, err := r.Extract(buildDOCX(t, `<w:p/><w:p><w:r><w:t xml:space="preserve">  </w:t></w:r></w:p>`), "empty.docx"); !errors.Is(err, ErrNoText) {
		t.Errorf("empty document: err = %v, want ErrNoText", err)
	}
	if _, err := r.Extract([]byte("%PDF-1.4"), "report.pdf"); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("disabled format: err = %v, want ErrUnsupportedFormat", err)
	}
	if _, err := r.Extract([]byte("not a zip"), "broken.docx"); err == nil {
		t.Errorf("expected error for corrupt docx")
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	if _, err := zw.Create("word/styles.xml"); err != nil {
		t.Fatal(err)
	}
	zw.Close()
	if _, err := r.Extract(buf.Bytes(), "nodoc.docx"); err == nil {
		t.Errorf("expected error when document.xml is missing")
	}
}

func TestExtractTXT(t *testing.T) {
	r := mustRegistry(t, "txt")

	tests := []struct {
		name string
		data []byte
		want string
	}{
		{name: "utf8 spacing kept", data: []byte("Report  dated\r\n 2024-05-01 "), want: "Report  dated\r\n 2024-05-01 "},
		{name: "bom stripped", data: append([]byte{0xEF, 0xBB, 0xBF}, "Total: 10"...), want: "Total: 10"},
		{name: "utf16le", data: []byte{0xFF, 0xFE, 'O', 0, 'K', 0}, want: "OK"},
		{name: "windows-1252", data: []byte{'c', 'a', 'f', 0xE9}, want: "café"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.Extract(tt.data, "notes.txt")
			if err != nil {
				t.Fatalf("Extract: %v", err)
			}
			if got != tt.want {
				t.Errorf("Extract() = %q, want %q", got, tt.want)
			}
		})
	}

	if _, err := r.Extract([]byte{0x00, 0x01, 0x02, 0x03, 0x04}, "bin.txt"); err == nil {
		t.Errorf("expected binary content to be rejected")
	}
}

func TestExtractPDFInvalid(t *testing.T) {
	r := mustRegistry(t, "pdf")
	if _, err := r.Extract([]byte("definitely not a pdf"), "report.pdf"); err == nil {
		t.Fatal("expected error for invalid PDF")
	}
}

func TestRegistry(t *testing.T) {
	if _, err := New("doc"); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("New(doc) err = %v", err)
	}
	if _, err := New(); err == nil {
		t.Errorf("New() should require a format")
	}

	r := mustRegistry(t, "DOCX", "pdf")
	if diff := cmp.Diff([]string{"docx", "pdf"}, r.Formats()); diff != "" {
		t.Errorf("Formats mismatch (-want +got):\n%s", diff)
	}
	if !r.Supports("Report.DOCX") || r.Supports("notes.txt") {
		t.Errorf("Supports reports wrong extensions")
	}
	if got := r.ContentType("a.pdf"); got != "application/pdf" {
		t.Errorf("ContentType = %q", got)
	}
}
