package services

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
	"github.com/sahilchouksey/scholarhub/utils/apperr"
	"github.com/sahilchouksey/scholarhub/utils/logger"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
	"golang.org/x/net/html"
)

// MaxDocumentSize caps the bytes accepted for text extraction
const MaxDocumentSize = 20 << 20

var blankLines = regexp.MustCompile(`\n{3,}`)

// TextExtractor turns an uploaded document into plain text. Supported:
// .txt, .md/.markdown, .docx, .pdf and .html/.htm.
type TextExtractor struct {
	log *logger.Logger
}

// NewTextExtractor creates a new text extractor
func NewTextExtractor(log *logger.Logger) *TextExtractor {
	if log == nil {
		log = logger.Nop()
	}
	return &TextExtractor{log: log}
}

// SupportedFormat reports whether filename has an extension ExtractText reads
func SupportedFormat(filename string) bool {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".txt", ".md", ".markdown", ".docx", ".pdf", ".html", ".htm":
		return true
	}
	return false
}

// ExtractText dispatches on the file extension. Unknown extensions fail
// with apperr.UnsupportedFormatError, unreadable documents with a
// ValidationError on "file".
func (e *TextExtractor) ExtractText(filename string, content []byte) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if !SupportedFormat(filename) {
		return "", &apperr.UnsupportedFormatError{Format: ext}
	}
	if len(content) == 0 {
		return "", apperr.Validation("file", "file is empty")
	}
	if len(content) > MaxDocumentSize {
		return "", apperr.Validation("file", fmt.Sprintf("file exceeds %d MB", MaxDocumentSize>>20))
	}

	var (
		out string
		err error
	)
	switch ext {
	case ".txt":
		out = plainText(content)
	case ".md", ".markdown":
		out = markdownText(content)
	case ".docx":
		out, err = docxText(content)
	case ".pdf":
		out, err = e.pdfText(content)
	case ".html", ".htm":
		out, err = htmlText(content)
	}
	if err != nil {
		e.log.Warn("text extraction failed", "file", filename, "error", err)
		return "", apperr.Validation("file", "could not read "+ext+" document")
	}

	out = strings.TrimSpace(blankLines.ReplaceAllString(out, "\n\n"))
	if out == "" {
		return "", apperr.Validation("file", "document contains no text")
	}

	e.log.Debug("text extracted", "file", filename, "chars", utf8.RuneCountInString(out))
	return out, nil
}

func plainText(content []byte) string {
	content = bytes.TrimPrefix(content, []byte("\xef\xbb\xbf"))
	return strings.ToValidUTF8(strings.ReplaceAll(string(content), "\r\n", "\n"), "")
}

// markdownText walks the goldmark AST and keeps the readable text of every
// block, including code, without markup.
func markdownText(content []byte) string {
	src := []byte(plainText(content))
	doc := goldmark.New().Parser().Parse(text.NewReader(src))

	var b strings.Builder
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			if n.Type() == ast.TypeBlock && n.Kind() != ast.KindDocument {
				b.WriteString("\n")
			}
			return ast.WalkContinue, nil
		}

		switch node := n.(type) {
		case *ast.Text:
			b.Write(node.Segment.Value(src))
			if node.HardLineBreak() {
				b.WriteString("\n")
			} else if node.SoftLineBreak() {
				b.WriteString(" ")
			}
		case *ast.String:
			b.Write(node.Value)
		case *ast.AutoLink:
			b.Write(node.Label(src))
		case *ast.FencedCodeBlock, *ast.CodeBlock:
			lines := n.Lines()
			for i := 0; i < lines.Len(); i++ {
				seg := lines.At(i)
				b.Write(seg.Value(src))
			}
			b.WriteString("\n")
			return ast.WalkSkipChildren, nil
		case *ast.HTMLBlock, *ast.RawHTML:
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	return b.String()
}

// docxText reads the paragraphs of word/document.xml
func docxText(content []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("open docx archive: %w", err)
	}

	var body *zip.File
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			body = f
			break
		}
	}
	if body == nil {
		return "", errors.New("docx archive has no word/document.xml")
	}

	rc, err := body.Open()
	if err != nil {
		return "", fmt.Errorf("open document.xml: %w", err)
	}
	defer rc.Close()

	var (
		b      strings.Builder
		inText bool
	)
	dec := xml.NewDecoder(io.LimitReader(rc, MaxDocumentSize*4))
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("parse document.xml: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				inText = true
			case "tab":
				b.WriteString("\t")
			case "br", "cr":
				b.WriteString("\n")
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				b.WriteString("\n")
			}
		case xml.CharData:
			if inText {
				b.Write(t)
			}
		}
	}
	return b.String(), nil
}

func (e *TextExtractor) pdfText(content []byte) (string, error) {
	content = trimPDFTrailer(content)

	reader, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("parse pdf: %w", err)
	}
	if reader.NumPage() == 0 {
		return "", errors.New("pdf has no pages")
	}

	var b strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			e.log.Warn("pdf page unreadable", "page", i, "error", err)
			continue
		}
		b.WriteString(pageText)
		b.WriteString("\n\n")
	}
	return b.String(), nil
}

// trimPDFTrailer drops bytes appended after the last %%EOF marker, which
// web downloads often carry and which break the xref lookup.
func trimPDFTrailer(content []byte) []byte {
	if !bytes.HasPrefix(content, []byte("%PDF-")) {
		return content
	}
	marker := []byte("%%EOF")
	last := bytes.LastIndex(content, marker)
	if last == -1 {
		return content
	}
	end := last + len(marker)
	for end < len(content) && (content[end] == '\n' || content[end] == '\r') {
		end++
	}
	return content[:end]
}

var htmlBlockTags = map[string]bool{
	"p": true, "div": true, "br": true, "li": true, "tr": true, "section": true,
	"article": true, "h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"pre": true, "blockquote": true, "table": true, "ul": true, "ol": true,
}

func htmlText(content []byte) (string, error) {
	doc, err := html.Parse(bytes.NewReader(content))
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}

	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript", "head":
				return
			}
		}
		if n.Type == html.TextNode {
			b.WriteString(collapseSpaces(n.Data))
			b.WriteString(" ")
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
		if n.Type == html.ElementNode && htmlBlockTags[n.Data] {
			b.WriteString("\n")
		}
	}
	walk(doc)

	lines := strings.Split(b.String(), "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	return strings.Join(lines, "\n"), nil
}
