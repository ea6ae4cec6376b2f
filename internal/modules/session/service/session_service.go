package service

import (
	"context"
	"fmt"
	"strings"

	"bookplus/internal/modules/session/domain"
	sessionout "bookplus/internal/modules/session/port/out"
	"bookplus/internal/platform/clock"
	apperrors "bookplus/internal/platform/errors"
	"bookplus/internal/platform/id"
)

type SessionService struct {
	clock clock.Clock
	idGen id.Generator
	store sessionout.SessionStore
}

func NewSessionService(clock clock.Clock, idGen id.Generator, store sessionout.SessionStore) *SessionService {
	return &SessionService{clock: clock, idGen: idGen, store: store}
}

func (s *SessionService) Start(_ context.Context, bookID, bookTitle string) (domain.ActiveSession, error) {
	if strings.TrimSpace(bookID) == "" {
		return domain.ActiveSession{}, fmt.Errorf("book id is required: %w", apperrors.ErrInvalidInput)
	}
	return domain.ActiveSession{
		SessionID: s.idGen.New(),
		BookID:    bookID,
		BookTitle: bookTitle,
		StartedAt: s.clock.Now(),
	}, nil
}

func (s *SessionService) End(ctx context.Context, active domain.ActiveSession, outcome domain.Outcome, totals domain.Totals, reportPath string) (domain.Session, string, error) {
	endedAt := s.clock.Now()
	duration := int(endedAt.Sub(active.StartedAt).Minutes())
	if duration < 0 {
		duration = 0
	}
	session := domain.Session{
		ID:          active.SessionID,
		BookID:      active.BookID,
		BookTitle:   active.BookTitle,
		StartedAt:   active.StartedAt,
		EndedAt:     endedAt,
		DurationMin: duration,
		Outcome:     outcome,
		Totals:      totals,
		ReportPath:  reportPath,
	}
	path, err := s.store.Save(ctx, session)
	if err != nil {
		return domain.Session{}, "", err
	}
	return session, path, nil
}
