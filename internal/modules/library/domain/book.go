package domain

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

type Format string

const (
	FormatMarkdown Format = "markdown"
	FormatText     Format = "text"
	FormatPDF      Format = "pdf"
	FormatHTML     Format = "html"
)

const SchemaVersion = 1

func (f Format) Validate() error {
	switch f {
	case FormatMarkdown, FormatText, FormatPDF, FormatHTML:
		return nil
	default:
		return fmt.Errorf("unsupported book format %q", string(f))
	}
}

// FormatFromPath infers the format from the file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown":
		return FormatMarkdown, nil
	case ".txt", ".text":
		return FormatText, nil
	case ".pdf":
		return FormatPDF, nil
	case ".html", ".htm", ".xhtml":
		return FormatHTML, nil
	default:
		return "", fmt.Errorf("cannot infer book format from %q", filepath.Base(path))
	}
}

type Book struct {
	ID            string
	Title         string
	Author        string
	Description   string
	ISBN          string
	PublishedYear int
	FilePath      string
	Format        Format
	NotePath      string
	Slug          string
	AddedAt       time.Time
	UpdatedAt     time.Time
	LastSessionID string
}

func (b Book) HasContent() bool {
	return strings.TrimSpace(b.FilePath) != ""
}

func (b Book) Validate() error {
	if strings.TrimSpace(b.ID) == "" {
		return fmt.Errorf("id is required")
	}
	if strings.TrimSpace(b.Title) == "" {
		return fmt.Errorf("title is required")
	}
	if strings.TrimSpace(b.Author) == "" {
		return fmt.Errorf("author is required")
	}
	if strings.TrimSpace(b.Slug) == "" {
		return fmt.Errorf("slug is required")
	}
	if b.PublishedYear < 0 || b.PublishedYear > 9999 {
		return fmt.Errorf("published year %d is out of range", b.PublishedYear)
	}
	if err := ValidateISBN(b.ISBN); err != nil {
		return err
	}
	if b.HasContent() {
		return b.Format.Validate()
	}
	if b.Format != "" {
		return fmt.Errorf("format %q set without a content file", b.Format)
	}
	return nil
}

// ValidateISBN accepts an empty value or ISBN-10/13 digits with optional
// hyphens or spaces.
func ValidateISBN(isbn string) error {
	if isbn == "" {
		return nil
	}
	digits := strings.Map(func(r rune) rune {
		if r == '-' || r == ' ' {
			return -1
		}
		return r
	}, isbn)
	switch len(digits) {
	case 10:
		for i, r := range digits {
			if r >= '0' && r <= '9' {
				continue
			}
			if i == 9 && (r == 'X' || r == 'x') {
				continue
			}
			return fmt.Errorf("invalid isbn %q", isbn)
		}
		return nil
	case 13:
		for _, r := range digits {
			if r < '0' || r > '9' {
				return fmt.Errorf("invalid isbn %q", isbn)
			}
		}
		return nil
	default:
		return fmt.Errorf("invalid isbn %q", isbn)
	}
}

type BookDocument struct {
	Book Book
	Body string
}
