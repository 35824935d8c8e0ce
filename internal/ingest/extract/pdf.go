// Package extract validates uploaded documents and pulls the text the AI
// evaluator works on.
package extract

import (
	"bytes"
	"errors"
	"fmt"
	"os"
)

// ErrInvalidDocument marks a file that is not a readable PDF.
var ErrInvalidDocument = errors.New("invalid document")

// PDFExtractor validates PDF files and extracts their text.
type PDFExtractor struct{}

// NewPDF creates a PDF extractor.
func NewPDF() *PDFExtractor {
	return &PDFExtractor{}
}

// Validate checks the file exists, is non-empty, and carries a PDF header.
func (e *PDFExtractor) Validate(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	if info.Size() == 0 {
		return fmt.Errorf("%w: file is empty", ErrInvalidDocument)
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	defer f.Close()

	header := make([]byte, 8)
	n, _ := f.Read(header)
	if !bytes.HasPrefix(header[:n], []byte("%PDF")) {
		return fmt.Errorf("%w: not a PDF file", ErrInvalidDocument)
	}
	return nil
}

// ExtractText validates the document and returns its raw content for
// evaluation. Extraction is byte-level; layout-aware parsing stays out of
// scope of this collaborator.
func (e *PDFExtractor) ExtractText(path string) (string, error) {
	if err := e.Validate(path); err != nil {
		return "", err
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	return string(b), nil
}

// ChunkText splits text into overlapping windows sized for the evaluator's
// context limit.
func ChunkText(text string, chunkSize, overlap int) []string {
	if text == "" {
		return nil
	}
	if chunkSize <= 0 {
		chunkSize = 4000
	}
	if overlap < 0 || overlap >= chunkSize {
		overlap = 0
	}
	if len(text) <= chunkSize {
		return []string{text}
	}

	chunks := make([]string, 0, len(text)/chunkSize+1)
	start := 0
	for start < len(text) {
		end := start + chunkSize
		if end > len(text) {
			end = len(text)
		}
		chunks = append(chunks, text[start:end])
		if end == len(text) {
			break
		}
		start = end - overlap
	}
	return chunks
}
