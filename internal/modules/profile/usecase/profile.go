package usecase

import (
	"context"

	"bookplus/internal/modules/profile/domain"
	"bookplus/internal/modules/profile/dto"
	profilein "bookplus/internal/modules/profile/port/in"
	"bookplus/internal/modules/profile/service"
)

type Interactor struct {
	svc *service.ProfileService
}

func NewInteractor(svc *service.ProfileService) profilein.Usecase {
	return &Interactor{svc: svc}
}

func (i *Interactor) RecordPattern(ctx context.Context, input dto.PatternInput) error {
	return i.svc.RecordPattern(ctx, domain.ReadingPattern{
		UserKey:          input.UserKey,
		ContentType:      input.ContentType,
		WPM:              input.WPM,
		DwellTimeSeconds: input.DwellTimeSeconds,
	})
}

func (i *Interactor) ListPatterns(ctx context.Context, userKey string, limit int) ([]dto.PatternOutput, error) {
	patterns, err := i.svc.ListPatterns(ctx, userKey, limit)
	if err != nil {
		return nil, err
	}
	out := make([]dto.PatternOutput, 0, len(patterns))
	for _, p := range patterns {
		out = append(out, dto.PatternOutput{
			ContentType:      p.ContentType,
			WPM:              p.WPM,
			DwellTimeSeconds: p.DwellTimeSeconds,
			RecordedAt:       p.RecordedAt,
		})
	}
	return out, nil
}

func (i *Interactor) Baseline(ctx context.Context, userKey string) (dto.BaselineOutput, error) {
	baseline, err := i.svc.Baseline(ctx, userKey)
	if err != nil {
		return dto.BaselineOutput{}, err
	}
	return toBaselineOutput(baseline), nil
}

func (i *Interactor) SetBaseline(ctx context.Context, input dto.BaselineInput) (dto.BaselineOutput, error) {
	baseline, err := i.svc.SetBaseline(ctx, domain.Baseline{
		UserKey:   input.UserKey,
		NormalWPM: input.NormalWPM,
		SkimWPM:   input.SkimWPM,
	})
	if err != nil {
		return dto.BaselineOutput{}, err
	}
	return toBaselineOutput(baseline), nil
}

func (i *Interactor) LearnBaseline(ctx context.Context, userKey string) (dto.LearnOutput, error) {
	baseline, samples, learned, err := i.svc.LearnBaseline(ctx, userKey)
	if err != nil {
		return dto.LearnOutput{}, err
	}
	return dto.LearnOutput{Learned: learned, Samples: samples, Baseline: toBaselineOutput(baseline)}, nil
}

func toBaselineOutput(baseline domain.Baseline) dto.BaselineOutput {
	return dto.BaselineOutput{NormalWPM: baseline.NormalWPM, SkimWPM: baseline.SkimWPM}
}
