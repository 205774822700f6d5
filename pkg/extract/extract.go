package extract

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Text pulls plain text out of an uploaded file based on its
// extension. Plain text and markdown pass through; HTML is stripped
// of markup. Binary formats are rejected here, before the ingestion
// pipeline ever sees them.
func Text(filename string, r io.Reader) (string, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".html", ".htm":
		return htmlText(r)
	case ".txt", ".md", "":
		data, err := io.ReadAll(r)
		if err != nil {
			return "", fmt.Errorf("read upload: %w", err)
		}
		return string(data), nil
	default:
		return "", fmt.Errorf("unsupported file type: %s", filepath.Ext(filename))
	}
}

func htmlText(r io.Reader) (string, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}

	doc.Find("script, style, noscript").Remove()

	content := doc.Find("body").Text()
	if strings.TrimSpace(content) == "" {
		content = doc.Text()
	}
	return cleanContent(content), nil
}

func cleanContent(content string) string {
	// Collapse runs of whitespace left behind by removed markup.
	return strings.Join(strings.Fields(content), " ")
}
