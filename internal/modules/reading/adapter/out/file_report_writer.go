package out

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"bookplus/internal/modules/reading/domain"
	readingout "bookplus/internal/modules/reading/port/out"
)

// FileReportWriter stores exported reports as <dir>/<sessionId>.json.
type FileReportWriter struct {
	dir string
}

func NewFileReportWriter(dir string) readingout.ReportWriter {
	return &FileReportWriter{dir: dir}
}

func (w *FileReportWriter) Write(_ context.Context, report domain.Report) (string, error) {
	name := strings.TrimSpace(report.SessionID)
	if name == "" || strings.ContainsAny(name, `/\`) {
		return "", fmt.Errorf("invalid report session id %q", report.SessionID)
	}
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return "", fmt.Errorf("create reports dir: %w", err)
	}
	raw, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode report: %w", err)
	}
	path := filepath.Join(w.dir, name+".json")
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, append(raw, '\n'), 0o644); err != nil {
		return "", fmt.Errorf("write report: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return "", fmt.Errorf("replace report: %w", err)
	}
	return path, nil
}
