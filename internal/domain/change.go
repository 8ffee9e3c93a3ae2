package domain

import (
	"time"

	"github.com/google/uuid"
)

// ChangeKind names what happened to a station record.
type ChangeKind string

const (
	ChangeMappingRegistered ChangeKind = "mapping.registered"
	ChangeSeriesSaved       ChangeKind = "series.saved"
	ChangeRawMetadataSaved  ChangeKind = "raw_metadata.saved"
	ChangeMetadataSaved     ChangeKind = "metadata.saved"
)

// ChangeEvent announces a successful write to the dataset.
type ChangeEvent struct {
	ID           string     `json:"id"`
	Kind         ChangeKind `json:"kind"`
	GaugeID      NutsID     `json:"gauge_id"`
	ProviderID   string     `json:"provider_id,omitempty"`
	Rows         int        `json:"rows,omitempty"`
	ExtraColumns []string   `json:"extra_columns,omitempty"`
	OccurredAt   time.Time  `json:"occurred_at"`
}

// NewChangeEvent stamps a change with a fresh ID and the package clock.
func NewChangeEvent(kind ChangeKind, gaugeID NutsID, providerID string) ChangeEvent {
	return ChangeEvent{
		ID:         uuid.NewString(),
		Kind:       kind,
		GaugeID:    gaugeID,
		ProviderID: providerID,
		OccurredAt: Now(),
	}
}

// StationInput points at the raw provider files of one station awaiting
// import.
type StationInput struct {
	Region          Region
	ProviderID      string
	DataPath        string
	RawMetadataPath string // empty when the provider shipped no metadata file
}
