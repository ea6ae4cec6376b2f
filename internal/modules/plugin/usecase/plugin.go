package usecase

import (
	"context"

	"bookplus/internal/modules/plugin/dto"
	pluginin "bookplus/internal/modules/plugin/port/in"
	"bookplus/internal/modules/plugin/service"
)

type Interactor struct {
	svc *service.PluginService
}

func NewInteractor(svc *service.PluginService) pluginin.Usecase {
	return &Interactor{svc: svc}
}

func (i *Interactor) List(ctx context.Context) ([]dto.PluginInfo, error) {
	return i.svc.List(ctx)
}

func (i *Interactor) Doctor(ctx context.Context) ([]dto.DoctorResult, error) {
	return i.svc.Doctor(ctx)
}

func (i *Interactor) Analyze(ctx context.Context, input dto.AnalyzeInput) (dto.AnalyzeOutput, error) {
	return i.svc.Analyze(ctx, input)
}

func (i *Interactor) Adapt(ctx context.Context, input dto.AdaptInput) (dto.AdaptOutput, error) {
	return i.svc.Adapt(ctx, input)
}
