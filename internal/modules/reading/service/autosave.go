package service

import (
	"context"
	"encoding/json"
	"fmt"

	"bookplus/internal/modules/reading/domain"
	readingout "bookplus/internal/modules/reading/port/out"
)

// Autosaver writes the periodic snapshot of a session.
type Autosaver struct {
	ledger     *TimingLedger
	units      *UnitStore
	classifier *Classifier
	exporter   *Exporter
	store      readingout.SnapshotStore
	telemetry  readingout.Telemetry
}

func NewAutosaver(ledger *TimingLedger, units *UnitStore, classifier *Classifier, exporter *Exporter, store readingout.SnapshotStore, telemetry readingout.Telemetry) *Autosaver {
	return &Autosaver{
		ledger:     ledger,
		units:      units,
		classifier: classifier,
		exporter:   exporter,
		store:      store,
		telemetry:  telemetryOrNop(telemetry),
	}
}

func (a *Autosaver) Snapshot() domain.Snapshot {
	return a.exporter.BuildSnapshot(a.ledger.Session(), a.units.Snapshot(), a.classifier.Baseline())
}

// SaveOnce writes a snapshot when the session has at least one section and
// reports whether it wrote.
func (a *Autosaver) SaveOnce(ctx context.Context) (bool, error) {
	if a.store == nil {
		return false, nil
	}
	session := a.ledger.Session()
	if len(session.Sections) == 0 {
		return false, nil
	}
	snapshot := a.exporter.BuildSnapshot(session, a.units.Snapshot(), a.classifier.Baseline())
	payload, err := json.Marshal(snapshot)
	if err != nil {
		return false, fmt.Errorf("encode snapshot: %w", err)
	}
	if err := a.store.Put(ctx, domain.SnapshotKey(session.ID), payload); err != nil {
		return false, fmt.Errorf("write snapshot: %w", err)
	}
	a.telemetry.SnapshotWritten()
	return true, nil
}
