package usecase

import (
	"context"
	"errors"
	"fmt"

	librarydto "bookplus/internal/modules/library/dto"
	libraryin "bookplus/internal/modules/library/port/in"
	"bookplus/internal/modules/session/domain"
	sessiondto "bookplus/internal/modules/session/dto"
	sessionin "bookplus/internal/modules/session/port/in"
	sessionout "bookplus/internal/modules/session/port/out"
	"bookplus/internal/modules/session/service"
	apperrors "bookplus/internal/platform/errors"
)

type Interactor struct {
	svc         *service.SessionService
	library     libraryin.Usecase
	activeStore sessionout.ActiveSessionStore
}

func NewInteractor(svc *service.SessionService, library libraryin.Usecase, activeStore sessionout.ActiveSessionStore) sessionin.Usecase {
	return &Interactor{svc: svc, library: library, activeStore: activeStore}
}

func (i *Interactor) Start(ctx context.Context, input sessiondto.StartInput) (sessiondto.StartOutput, error) {
	if i.activeStore != nil {
		existing, err := i.activeStore.LoadActive(ctx)
		switch {
		case err == nil && !input.ReplaceStale:
			return sessiondto.StartOutput{}, apperrors.ErrActiveSessionExists
		case err == nil:
			if _, err := i.finish(ctx, existing, domain.OutcomeAbandoned, domain.Totals{}, ""); err != nil {
				return sessiondto.StartOutput{}, fmt.Errorf("abandon stale session: %w", err)
			}
		case !errors.Is(err, apperrors.ErrNoActiveSession):
			return sessiondto.StartOutput{}, err
		}
	}

	bookTitle := input.BookTitle
	if bookTitle == "" && i.library != nil {
		book, err := i.library.GetBook(ctx, input.BookID)
		if err != nil {
			return sessiondto.StartOutput{}, err
		}
		bookTitle = book.Title
	}

	active, err := i.svc.Start(ctx, input.BookID, bookTitle)
	if err != nil {
		return sessiondto.StartOutput{}, err
	}
	if i.activeStore != nil {
		if err := i.activeStore.SaveActive(ctx, active); err != nil {
			return sessiondto.StartOutput{}, err
		}
	}
	return sessiondto.StartOutput{SessionID: active.SessionID, BookID: active.BookID, StartedAt: active.StartedAt}, nil
}

func (i *Interactor) End(ctx context.Context, input sessiondto.EndInput) (sessiondto.EndOutput, error) {
	outcome, err := domain.ParseOutcome(input.Outcome)
	if err != nil {
		return sessiondto.EndOutput{}, fmt.Errorf("%w: %v", apperrors.ErrInvalidInput, err)
	}
	if input.TotalSections < 0 || input.AvgDwellTime < 0 || input.AvgWPM < 0 {
		return sessiondto.EndOutput{}, fmt.Errorf("session totals must be non-negative: %w", apperrors.ErrInvalidInput)
	}
	if i.activeStore == nil {
		return sessiondto.EndOutput{}, apperrors.ErrNoActiveSession
	}

	active, err := i.activeStore.LoadActive(ctx)
	if err != nil {
		return sessiondto.EndOutput{}, err
	}
	if input.SessionID != "" && input.SessionID != active.SessionID {
		return sessiondto.EndOutput{}, fmt.Errorf("session id mismatch: %w", apperrors.ErrInvalidInput)
	}
	totals := domain.Totals{TotalSections: input.TotalSections, AvgDwellTime: input.AvgDwellTime, AvgWPM: input.AvgWPM}
	return i.finish(ctx, active, outcome, totals, input.ReportPath)
}

// finish writes the session note, stamps the book and clears the marker.
// A book deleted mid-session does not block ending it.
func (i *Interactor) finish(ctx context.Context, active domain.ActiveSession, outcome domain.Outcome, totals domain.Totals, reportPath string) (sessiondto.EndOutput, error) {
	if i.library == nil {
		return sessiondto.EndOutput{}, fmt.Errorf("library usecase is not configured")
	}
	session, path, err := i.svc.End(ctx, active, outcome, totals, reportPath)
	if err != nil {
		return sessiondto.EndOutput{}, err
	}
	_, err = i.library.RecordSession(ctx, librarydto.RecordSessionInput{BookID: active.BookID, SessionID: active.SessionID})
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return sessiondto.EndOutput{}, err
	}
	if err := i.activeStore.ClearActive(ctx); err != nil {
		return sessiondto.EndOutput{}, err
	}
	return sessiondto.EndOutput{
		SessionID:     session.ID,
		BookID:        session.BookID,
		Path:          path,
		Outcome:       string(session.Outcome),
		DurationMin:   session.DurationMin,
		TotalSections: session.Totals.TotalSections,
		AvgDwellTime:  session.Totals.AvgDwellTime,
		AvgWPM:        session.Totals.AvgWPM,
	}, nil
}

func (i *Interactor) GetActive(ctx context.Context) (sessiondto.ActiveSessionOutput, error) {
	if i.activeStore == nil {
		return sessiondto.ActiveSessionOutput{}, apperrors.ErrNoActiveSession
	}
	active, err := i.activeStore.LoadActive(ctx)
	if err != nil {
		return sessiondto.ActiveSessionOutput{}, err
	}
	return sessiondto.ActiveSessionOutput{
		SessionID: active.SessionID,
		BookID:    active.BookID,
		BookTitle: active.BookTitle,
		StartedAt: active.StartedAt,
	}, nil
}
