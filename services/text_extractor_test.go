package services

import (
	"archive/zip"
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/sahilchouksey/scholarhub/utils/apperr"
)

func buildDocx(t *testing.T, documentXML string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	if err != nil {
		t.Fatalf("create docx entry: %v", err)
	}
	if _, err := w.Write([]byte(documentXML)); err != nil {
		t.Fatalf("write docx entry: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close docx: %v", err)
	}
	return buf.Bytes()
}

func TestExtractTextPlain(t *testing.T) {
	x := NewTextExtractor(nil)
	got, err := x.ExtractText("notes.TXT", []byte("\xef\xbb\xbfLimits\r\nand continuity\n"))
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if got != "Limits\nand continuity" {
		t.Fatalf("got %q", got)
	}
}

func TestExtractTextMarkdown(t *testing.T) {
	src := "# Limits\n\nA **limit** describes [behaviour](http://x.test) near a point.\n\n" +
		"```go\nfmt.Println(1)\n```\n\n- first\n- second\n"

	got, err := NewTextExtractor(nil).ExtractText("notes.md", []byte(src))
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	for _, want := range []string{"Limits", "A limit describes behaviour near a point.", "fmt.Println(1)", "first", "second"} {
		if !strings.Contains(got, want) {
			t.Errorf("missing %q in %q", want, got)
		}
	}
	for _, markup := range []string{"#", "**", "](", "```"} {
		if strings.Contains(got, markup) {
			t.Errorf("markup %q leaked into %q", markup, got)
		}
	}
}

func TestExtractTextDocx(t *testing.T) {
	doc := `<?xml version="1.0" encoding="UTF-8"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
<w:body>
<w:p><w:r><w:t>Calc</w:t></w:r><w:r><w:t xml:space="preserve"> Notes</w:t></w:r></w:p>
<w:p><w:r><w:t>Second</w:t><w:tab/><w:t>paragraph</w:t></w:r></w:p>
</w:body>
</w:document>`

	got, err := NewTextExtractor(nil).ExtractText("notes.docx", buildDocx(t, doc))
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if got != "Calc Notes\nSecond\tparagraph" {
		t.Fatalf("got %q", got)
	}
}

func TestExtractTextHTML(t *testing.T) {
	src := `<html><head><title>x</title><style>p{}</style></head>
<body><h1>Limits</h1><p>Approach   a point.</p><script>alert(1)</script></body></html>`

	got, err := NewTextExtractor(nil).ExtractText("page.html", []byte(src))
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if !strings.Contains(got, "Limits") || !strings.Contains(got, "Approach a point.") {
		t.Fatalf("got %q", got)
	}
	if strings.Contains(got, "alert") || strings.Contains(got, "p{}") {
		t.Fatalf("script or style leaked: %q", got)
	}
}

func TestExtractTextUnsupportedFormat(t *testing.T) {
	_, err := NewTextExtractor(nil).ExtractText("slides.pptx", []byte("data"))
	var unsupported *apperr.UnsupportedFormatError
	if !errors.As(err, &unsupported) || unsupported.Format != ".pptx" {
		t.Fatalf("expected UnsupportedFormatError, got %v", err)
	}
}

func TestExtractTextRejectsBrokenDocuments(t *testing.T) {
	x := NewTextExtractor(nil)
	var verr *apperr.ValidationError

	if _, err := x.ExtractText("notes.docx", []byte("not a zip")); !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError for corrupt docx, got %v", err)
	}
	if _, err := x.ExtractText("notes.txt", nil); !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError for empty file, got %v", err)
	}
	if _, err := x.ExtractText("notes.md", []byte("   \n\n")); !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError for blank document, got %v", err)
	}
}

func TestTrimPDFTrailer(t *testing.T) {
	in := []byte("%PDF-1.4 body %%EOF\n<html>garbage</html>")
	if got := string(trimPDFTrailer(in)); got != "%PDF-1.4 body %%EOF\n" {
		t.Fatalf("got %q", got)
	}
}
