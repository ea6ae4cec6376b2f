package out

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"bookplus/internal/modules/session/domain"
	sessionout "bookplus/internal/modules/session/port/out"
	"bookplus/internal/platform/markdown"
	"bookplus/internal/platform/slug"
)

// VaultSessionStore writes one markdown note per ended session under
// sessions/YYYY/MM/DD.
type VaultSessionStore struct {
	vaultPath string
}

func NewVaultSessionStore(vaultPath string) sessionout.SessionStore {
	return &VaultSessionStore{vaultPath: vaultPath}
}

func (s *VaultSessionStore) Save(_ context.Context, session domain.Session) (string, error) {
	date := session.StartedAt
	dir := filepath.Join(s.vaultPath, "sessions", date.Format("2006"), date.Format("01"), date.Format("02"))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create session dir: %w", err)
	}
	name := fmt.Sprintf("%s-%s.md", date.Format("150405"), slug.Make(session.BookTitle))
	path := filepath.Join(dir, name)

	meta := map[string]any{
		"schema_version":   domain.SchemaVersion,
		"id":               session.ID,
		"book_id":          session.BookID,
		"started_at":       session.StartedAt.Format(time.RFC3339),
		"ended_at":         session.EndedAt.Format(time.RFC3339),
		"duration_minutes": session.DurationMin,
		"outcome":          string(session.Outcome),
		"total_sections":   session.Totals.TotalSections,
		"avg_dwell_time":   session.Totals.AvgDwellTime,
		"avg_wpm":          session.Totals.AvgWPM,
	}
	if session.ReportPath != "" {
		meta["report_path"] = session.ReportPath
	}
	body := fmt.Sprintf("# Session %s\n\n- Book: [[%s]]\n- Duration: %d minutes\n- Sections read: %d\n- Average speed: %.0f wpm\n",
		session.ID, session.BookTitle, session.DurationMin, session.Totals.TotalSections, session.Totals.AvgWPM)
	rendered, err := markdown.RenderFrontmatter(meta, body)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, []byte(rendered), 0o644); err != nil {
		return "", fmt.Errorf("write session note: %w", err)
	}
	return path, nil
}
