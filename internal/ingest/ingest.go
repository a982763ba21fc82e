package ingest

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"
	"github.com/tealeg/xlsx"
	"github.com/tmc/langchaingo/textsplitter"

	"studyassistant/internal/models"
)

const (
	DefaultChunkSize    = 1000
	DefaultChunkOverlap = 100
)

// Page is the extracted text of one source page. Formats without page
// structure produce a single page.
type Page struct {
	Number int
	Text   string
}

// Result holds the chunk sequence and the concatenated document text.
type Result struct {
	Chunks   []models.Chunk
	FullText string
}

// ExtractPages extracts plain text from raw file bytes, dispatching on the
// file extension. A file that cannot be parsed yields an error that is
// surfaced to the caller as-is, never retried.
func ExtractPages(filename string, data []byte) ([]Page, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return extractPDF(data)
	case ".docx":
		return extractDOCX(data)
	case ".xlsx":
		return extractXLSX(data)
	case ".txt", ".md":
		return []Page{{Number: 1, Text: string(data)}}, nil
	default:
		return nil, fmt.Errorf("unsupported file format: %s", filepath.Ext(filename))
	}
}

// Process extracts text page by page and splits it into overlapping chunks.
// Chunking is pure: the same bytes and splitter settings always produce the
// same chunk sequence.
func Process(filename string, data []byte, chunkSize, chunkOverlap int) (*Result, error) {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if chunkOverlap < 0 || chunkOverlap >= chunkSize {
		chunkOverlap = DefaultChunkOverlap
	}

	pages, err := ExtractPages(filename, data)
	if err != nil {
		return nil, err
	}

	splitter := textsplitter.NewRecursiveCharacter(
		textsplitter.WithChunkSize(chunkSize),
		textsplitter.WithChunkOverlap(chunkOverlap),
	)

	var full strings.Builder
	var chunks []models.Chunk
	for _, page := range pages {
		if full.Len() > 0 {
			full.WriteString("\n")
		}
		full.WriteString(page.Text)

		if strings.TrimSpace(page.Text) == "" {
			continue
		}
		parts, err := splitter.SplitText(page.Text)
		if err != nil {
			return nil, fmt.Errorf("split page %d: %w", page.Number, err)
		}
		for _, part := range parts {
			if strings.TrimSpace(part) == "" {
				continue
			}
			chunks = append(chunks, models.Chunk{
				ID:      uuid.New().String(),
				Content: part,
				Page:    page.Number,
			})
		}
	}

	return &Result{Chunks: chunks, FullText: full.String()}, nil
}

func extractPDF(data []byte) ([]Page, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("parse pdf: %w", err)
	}

	var pages []Page
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return nil, fmt.Errorf("extract pdf page %d: %w", i, err)
		}
		pages = append(pages, Page{Number: i, Text: text})
	}
	return pages, nil
}

func extractDOCX(data []byte) ([]Page, error) {
	r, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("parse docx: %w", err)
	}
	defer r.Close()

	content := r.Editable().GetContent()
	return []Page{{Number: 1, Text: stripDocxTags(content)}}, nil
}

// stripDocxTags drops the WordprocessingML markup that GetContent leaves in,
// keeping only the text runs.
func stripDocxTags(content string) string {
	var text strings.Builder
	inTag := false
	for _, r := range content {
		switch {
		case r == '<':
			inTag = true
		case r == '>':
			inTag = false
		case !inTag:
			text.WriteRune(r)
		}
	}
	return text.String()
}

func extractXLSX(data []byte) ([]Page, error) {
	f, err := xlsx.OpenBinary(data)
	if err != nil {
		return nil, fmt.Errorf("parse xlsx: %w", err)
	}

	var pages []Page
	for sheetNum, sheet := range f.Sheets {
		var text strings.Builder
		text.WriteString(fmt.Sprintf("Sheet: %s\n", sheet.Name))
		for _, row := range sheet.Rows {
			for _, cell := range row.Cells {
				text.WriteString(cell.String() + "\t")
			}
			text.WriteString("\n")
		}
		pages = append(pages, Page{Number: sheetNum + 1, Text: text.String()})
	}
	return pages, nil
}
