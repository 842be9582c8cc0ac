package services

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
)

type DocumentExtractor interface {
	// Extract converts raw CV bytes into normalized plain text. The format is
	// inferred from the filename extension. The bytes are not retained.
	Extract(data []byte, filename string) (*DocumentContent, error)
}

type DocumentContent struct {
	Text      string
	PageCount int
}

type documentExtractor struct {
	minTextLength int
}

func NewDocumentExtractor(minTextLength int) DocumentExtractor {
	if minTextLength <= 0 {
		minTextLength = 100
	}
	return &documentExtractor{minTextLength: minTextLength}
}

// Extract implements DocumentExtractor.
func (d *documentExtractor) Extract(data []byte, filename string) (*DocumentContent, error) {
	if len(data) == 0 {
		return nil, newDocumentParseError(fmt.Errorf("document is empty"))
	}

	var (
		content *DocumentContent
		err     error
	)

	switch ext := strings.ToLower(filepath.Ext(filename)); ext {
	case ".pdf":
		content, err = extractPDF(data)
	case ".docx", ".doc":
		content, err = extractDOCX(data)
	default:
		return nil, newDocumentParseError(fmt.Errorf("unsupported file type: %s", ext))
	}
	if err != nil {
		return nil, newDocumentParseError(err)
	}

	content.Text = normalizeText(content.Text)

	// Too little text is a strong signal of a scanned or image-only document.
	if len(content.Text) < d.minTextLength {
		return nil, newDocumentParseError(fmt.Errorf(
			"extracted only %d characters (minimum %d); document may be scanned or image-based",
			len(content.Text), d.minTextLength,
		))
	}

	return content, nil
}

func extractPDF(data []byte) (*DocumentContent, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}

	var textBuilder strings.Builder
	totalPage := reader.NumPage()

	for pageIndex := 1; pageIndex <= totalPage; pageIndex++ {
		page := reader.Page(pageIndex)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			// Skip unreadable pages but keep going
			continue
		}

		if pageIndex > 1 {
			textBuilder.WriteString(fmt.Sprintf("\n--- Page %d ---\n", pageIndex))
		}
		textBuilder.WriteString(text)
		textBuilder.WriteString("\n\n")
	}

	text := textBuilder.String()
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("no text content found in PDF")
	}

	return &DocumentContent{Text: text, PageCount: totalPage}, nil
}

// docx structure of word/document.xml
type docxDocument struct {
	Body struct {
		Paragraphs []docxParagraph `xml:"p"`
	} `xml:"body"`
}

type docxParagraph struct {
	Runs []docxRun `xml:"r"`
}

type docxRun struct {
	Text []docxText `xml:"t"`
}

type docxText struct {
	Content string `xml:",chardata"`
}

func extractDOCX(data []byte) (*DocumentContent, error) {
	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to open DOCX: %w", err)
	}

	var raw []byte
	for _, file := range reader.File {
		if file.Name != "word/document.xml" {
			continue
		}

		rc, err := file.Open()
		if err != nil {
			return nil, fmt.Errorf("failed to read DOCX body: %w", err)
		}
		raw, err = io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to read DOCX body: %w", err)
		}
		break
	}

	if raw == nil {
		return nil, fmt.Errorf("DOCX archive has no word/document.xml")
	}

	var doc docxDocument
	if err := xml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse DOCX body: %w", err)
	}

	var textBuilder strings.Builder
	for _, para := range doc.Body.Paragraphs {
		var line strings.Builder
		for _, run := range para.Runs {
			for _, t := range run.Text {
				line.WriteString(t.Content)
			}
		}
		if strings.TrimSpace(line.String()) == "" {
			continue
		}
		textBuilder.WriteString(line.String())
		textBuilder.WriteString("\n\n")
	}

	text := textBuilder.String()
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("no text content found in DOCX")
	}

	// DOCX carries no page geometry; estimate at ~500 words per page
	wordCount := len(strings.Fields(text))
	estimatedPages := wordCount / 500
	if estimatedPages < 1 {
		estimatedPages = 1
	}

	return &DocumentContent{Text: text, PageCount: estimatedPages}, nil
}

// normalizeText collapses boilerplate whitespace while keeping paragraph
// breaks intact.
func normalizeText(text string) string {
	lines := strings.Split(text, "\n")
	var cleaned []string
	blankRun := 0

	for _, line := range lines {
		line = strings.TrimRight(line, " \t\r")
		if strings.TrimSpace(line) == "" {
			blankRun++
			// A single blank line marks a paragraph break; longer runs collapse
			if blankRun == 1 {
				cleaned = append(cleaned, "")
			}
			continue
		}
		blankRun = 0
		cleaned = append(cleaned, strings.TrimLeft(line, " \t"))
	}

	return strings.TrimSpace(strings.Join(cleaned, "\n"))
}
