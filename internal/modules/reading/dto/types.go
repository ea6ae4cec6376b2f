package dto

import "bookplus/internal/modules/reading/domain"

type OpenInput struct {
	BookID    string
	BookTitle string
}

type CloseOutput struct {
	SessionID  string
	ReportPath string
	Summary    domain.Summary
}

type ExportOutput struct {
	Path   string
	Report domain.Report
}

type SnapshotOutput struct {
	Key      string
	Snapshot domain.Snapshot
}
