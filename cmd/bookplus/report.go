package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"bookplus/internal/modules/reading/domain"
)

func newReportCmd(vaultPath *string) *cobra.Command {
	report := &cobra.Command{Use: "report", Short: "Reading analytics reports"}
	report.AddCommand(&cobra.Command{
		Use:   "show <session-id>",
		Short: "Print a session's exported report, or its last snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, cleanup, err := loadApp(*vaultPath, false)
			if err != nil {
				return err
			}
			defer cleanup()

			p := message.NewPrinter(language.English)
			r, err := readReport(filepath.Join(app.Config.ReportsDir, args[0]+".json"))
			switch {
			case err == nil:
				printReport(p, cmd.OutOrStdout(), r)
				return nil
			case !errors.Is(err, fs.ErrNotExist):
				return err
			}

			snap, err := app.ReadingCLI.Snapshot(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("no report or snapshot for session %s: %w", args[0], err)
			}
			printSnapshot(p, cmd.OutOrStdout(), snap.Snapshot)
			return nil
		},
	})
	return report
}

func readReport(path string) (domain.Report, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return domain.Report{}, err
	}
	var r domain.Report
	if err := json.Unmarshal(raw, &r); err != nil {
		return domain.Report{}, fmt.Errorf("decode report %s: %w", path, err)
	}
	return r, nil
}

func printReport(p *message.Printer, w io.Writer, r domain.Report) {
	_, _ = p.Fprintf(w, "session %s", r.SessionID)
	if r.BookID != "" {
		_, _ = p.Fprintf(w, " book %s", r.BookID)
	}
	_, _ = p.Fprintf(w, "\nexported %s after %s\n", r.Timestamp, millis(r.SessionDuration))
	_, _ = p.Fprintf(w, "sections %d  avg dwell %s  avg %.0f wpm\n",
		r.Summary.TotalSections, millis(int64(r.Summary.AvgDwellTime)), r.Summary.AvgWPM)
	_, _ = p.Fprintf(w, "scroll events %d  avg speed %.2f lines/ms\n",
		r.ScrollAnalytics.TotalScrollEvents, r.ScrollAnalytics.AvgScrollSpeed)
	for _, s := range r.SectionAnalytics {
		_, _ = p.Fprintf(w, "  #%d\t%d words\t%s\t%d wpm\t%s",
			s.ParagraphIndex, s.WordCount, millis(s.ViewportDwellTime), s.WPM, s.Classification)
		if s.ContentType != "" {
			_, _ = p.Fprintf(w, "\t%s", s.ContentType)
		}
		_, _ = p.Fprintln(w)
	}
}

func printSnapshot(p *message.Printer, w io.Writer, s domain.Snapshot) {
	_, _ = p.Fprintf(w, "session %s (snapshot, no exported report)\n", s.SessionID)
	if s.LastUpdate > 0 {
		_, _ = p.Fprintf(w, "updated %s\n", time.UnixMilli(s.LastUpdate).UTC().Format(time.RFC3339))
	}
	_, _ = p.Fprintf(w, "sections %d  avg dwell %s  avg %.0f wpm\n", s.TotalSections, millis(int64(s.AvgDwellTime)), s.AvgWPM)
	_, _ = p.Fprintf(w, "recent scroll events %d\n", len(s.RecentScrollEvents))
}

// millis formats a millisecond count as a rounded duration.
func millis(ms int64) string {
	return (time.Duration(ms) * time.Millisecond).Round(100 * time.Millisecond).String()
}
