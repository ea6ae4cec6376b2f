package out

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"os"
	"strings"

	"bookplus/internal/modules/content/domain"
	contentout "bookplus/internal/modules/content/port/out"
	"bookplus/internal/platform/markdown"
	"bookplus/internal/platform/textstat"

	readability "github.com/go-shiori/go-readability"
	"rsc.io/pdf"
)

// FileDocumentLoader splits local book files into units: paragraphs for
// markdown and text, readable blocks for html, pages for pdf.
type FileDocumentLoader struct{}

func NewFileDocumentLoader() contentout.DocumentLoader {
	return &FileDocumentLoader{}
}

func (l *FileDocumentLoader) Load(ctx context.Context, book domain.BookRef) (domain.Document, error) {
	var (
		units []string
		title string
		err   error
	)
	switch strings.ToLower(book.Format) {
	case "markdown":
		units, err = l.loadMarkdown(book.FilePath)
	case "text":
		units, err = l.loadText(book.FilePath)
	case "html":
		units, title, err = l.loadHTML(book.FilePath)
	case "pdf":
		units, err = l.loadPDF(ctx, book.FilePath)
	default:
		return domain.Document{}, fmt.Errorf("unsupported book format %q", book.Format)
	}
	if err != nil {
		return domain.Document{}, err
	}
	if title == "" {
		title = book.Title
	}
	return domain.Document{BookID: book.ID, Title: title, Units: units}, nil
}

func (l *FileDocumentLoader) loadMarkdown(path string) ([]string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read markdown: %w", err)
	}
	_, body, err := markdown.SplitFrontmatter(string(b))
	if err != nil {
		body = string(b)
	}
	return textstat.Paragraphs(body), nil
}

func (l *FileDocumentLoader) loadText(path string) ([]string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read text: %w", err)
	}
	return textstat.Paragraphs(string(b)), nil
}

func (l *FileDocumentLoader) loadHTML(path string) ([]string, string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("read html: %w", err)
	}
	article, err := readability.FromReader(bytes.NewReader(b), &url.URL{Scheme: "file", Path: path})
	if err != nil {
		return nil, "", fmt.Errorf("extract html article: %w", err)
	}
	units := make([]string, 0)
	for _, line := range strings.Split(article.TextContent, "\n") {
		if line = strings.Join(strings.Fields(line), " "); line != "" {
			units = append(units, line)
		}
	}
	return units, strings.TrimSpace(article.Title), nil
}

func (l *FileDocumentLoader) loadPDF(ctx context.Context, path string) ([]string, error) {
	doc, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	total := doc.NumPage()
	units := make([]string, 0, total)
	for number := 1; number <= total; number++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		page := doc.Page(number)
		if page.V.IsNull() {
			continue
		}
		content := page.Content()
		parts := make([]string, 0, len(content.Text))
		for _, text := range content.Text {
			if strings.TrimSpace(text.S) == "" {
				continue
			}
			parts = append(parts, text.S)
		}
		if text := strings.Join(strings.Fields(strings.Join(parts, " ")), " "); text != "" {
			units = append(units, text)
		}
	}
	return units, nil
}
