package in

import (
	"context"

	"bookplus/internal/modules/plugin/dto"
	pluginin "bookplus/internal/modules/plugin/port/in"
)

type CLIHandler struct {
	usecase pluginin.Usecase
}

func NewCLIHandler(usecase pluginin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) List(ctx context.Context) ([]dto.PluginInfo, error) {
	return h.usecase.List(ctx)
}

func (h CLIHandler) Doctor(ctx context.Context) ([]dto.DoctorResult, error) {
	return h.usecase.Doctor(ctx)
}

// Analyze runs a plugin over ad hoc text, for checking a plugin from the
// command line.
func (h CLIHandler) Analyze(ctx context.Context, pluginName, text string) (dto.AnalyzeOutput, error) {
	return h.usecase.Analyze(ctx, dto.AnalyzeInput{PluginName: pluginName, Text: text})
}

func (h CLIHandler) Adapt(ctx context.Context, pluginName, text, version string) (dto.AdaptOutput, error) {
	return h.usecase.Adapt(ctx, dto.AdaptInput{PluginName: pluginName, Text: text, Version: version})
}
