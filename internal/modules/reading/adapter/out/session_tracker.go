package out

import (
	"context"

	"bookplus/internal/modules/reading/domain"
	readingout "bookplus/internal/modules/reading/port/out"
	sessiondto "bookplus/internal/modules/session/dto"
	sessionin "bookplus/internal/modules/session/port/in"
)

// SessionTracker mirrors the reading lifecycle into the session module. A
// session left behind by a crashed run is closed as abandoned on the next
// start.
type SessionTracker struct {
	sessions sessionin.Usecase
}

func NewSessionTracker(sessions sessionin.Usecase) readingout.SessionTracker {
	return &SessionTracker{sessions: sessions}
}

func (t *SessionTracker) Start(ctx context.Context, bookID, bookTitle string) (readingout.StartedSession, error) {
	out, err := t.sessions.Start(ctx, sessiondto.StartInput{BookID: bookID, BookTitle: bookTitle, ReplaceStale: true})
	if err != nil {
		return readingout.StartedSession{}, err
	}
	return readingout.StartedSession{ID: out.SessionID, StartedAt: out.StartedAt}, nil
}

func (t *SessionTracker) End(ctx context.Context, sessionID string, summary domain.Summary, reportPath string) error {
	_, err := t.sessions.End(ctx, sessiondto.EndInput{
		SessionID:     sessionID,
		TotalSections: summary.TotalSections,
		AvgDwellTime:  summary.AvgDwellTime,
		AvgWPM:        summary.AvgWPM,
		ReportPath:    reportPath,
	})
	return err
}
