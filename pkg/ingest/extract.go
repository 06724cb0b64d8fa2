// Package ingest turns files and web pages into embedded chunks in the
// similarity index.
package ingest

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/xhad/buddy/internal/models"
	"github.com/xhad/buddy/pkg/retrieval"
	"github.com/xhad/buddy/pkg/scraper"
)

var (
	// ErrUnsupportedFormat is returned for file types without an extractor.
	ErrUnsupportedFormat = errors.New("unsupported file format")
	// ErrNoText is returned when a source yields no text to index.
	ErrNoText = errors.New("no text extracted")
)

// SupportedExtensions lists the file types ExtractFile understands.
var SupportedExtensions = []string{".pdf", ".html", ".htm", ".txt", ".md"}

// ExtractFile reads the text of a local file, choosing the extractor by
// extension.
func ExtractFile(path string) (models.Document, error) {
	name := filepath.Base(path)
	doc := models.Document{
		Title:    name,
		Metadata: map[string]interface{}{retrieval.MetaFileName: name},
	}

	var err error
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".pdf":
		doc.Content, err = extractPDF(path)
	case ".html", ".htm":
		doc.Content, err = extractHTML(path)
	case ".txt", ".md":
		var data []byte
		data, err = os.ReadFile(path)
		doc.Content = string(data)
	default:
		return models.Document{}, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	if err != nil {
		return models.Document{}, fmt.Errorf("extract %s: %w", name, err)
	}

	if strings.TrimSpace(doc.Content) == "" {
		return models.Document{}, fmt.Errorf("extract %s: %w", name, ErrNoText)
	}
	return doc, nil
}

func extractPDF(path string) (string, error) {
	f, rdr, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	b, err := rdr.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("read pdf text: %w", err)
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, b); err != nil {
		return "", fmt.Errorf("read pdf buffer: %w", err)
	}
	return buf.String(), nil
}

func extractHTML(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	_, content, err := scraper.ParseHTML(f)
	return content, err
}
