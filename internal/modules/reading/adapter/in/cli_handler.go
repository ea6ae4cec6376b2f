package in

import (
	"context"

	"bookplus/internal/modules/reading/dto"
	readingin "bookplus/internal/modules/reading/port/in"
)

type CLIHandler struct {
	usecase readingin.Usecase
}

func NewCLIHandler(usecase readingin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) Snapshot(ctx context.Context, sessionID string) (dto.SnapshotOutput, error) {
	return h.usecase.LoadSnapshot(ctx, sessionID)
}
