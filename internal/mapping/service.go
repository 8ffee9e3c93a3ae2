// Package mapping maintains the provider ID to NUTS ID mapping.
//
// The CSV store is the source of truth. The JSON store is a mirror that is
// regenerated in full, sorted by NUTS ID, on every registration. Both files
// are replaced by rename, CSV first; Open re-syncs a mirror left behind by an
// interrupted write. The service assumes a single writer process.
package mapping

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"

	"github.com/couchcryptid/camels-de1h/internal/csvio"
	"github.com/couchcryptid/camels-de1h/internal/domain"
	"github.com/couchcryptid/camels-de1h/internal/layout"
	"github.com/couchcryptid/camels-de1h/internal/observability"
	"github.com/couchcryptid/camels-de1h/internal/storage"
)

// Service answers lookups from memory and persists registrations to both
// stores.
type Service struct {
	csvPath  string
	jsonPath string
	logger   *slog.Logger
	metrics  *observability.Metrics

	entries    []domain.MappingEntry // sorted by NutsID
	byProvider map[string]domain.NutsID
	byNuts     map[domain.NutsID]string
}

// Open loads the mapping below l.OutputDir. A missing CSV store is an empty
// mapping.
func Open(l layout.Layout, logger *slog.Logger, metrics *observability.Metrics) (*Service, error) {
	s := &Service{
		csvPath:  l.MappingCSV(),
		jsonPath: l.MappingJSON(),
		logger:   logger,
		metrics:  metrics,
	}

	var entries []domain.MappingEntry
	err := storage.Read(s.csvPath, func(r io.Reader) error {
		var err error
		entries, err = csvio.ReadMapping(r)
		return err
	})
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("load nuts mapping: %w", err)
	}

	entries = sortEntries(entries)
	if err := validateEntries(entries); err != nil {
		return nil, fmt.Errorf("load nuts mapping %s: %w", s.csvPath, err)
	}
	s.apply(entries)

	if len(entries) > 0 {
		if err := s.syncMirror(); err != nil {
			return nil, err
		}
	}

	logger.Debug("nuts mapping loaded", "entries", len(entries), "path", s.csvPath)
	return s, nil
}

// Lookup returns the NUTS ID mapped to providerID.
func (s *Service) Lookup(providerID string) (domain.NutsID, error) {
	id, ok := s.byProvider[strings.TrimSpace(providerID)]
	if !ok {
		return "", fmt.Errorf("provider id %q not in mapping: %w", providerID, domain.ErrNotFound)
	}
	return id, nil
}

// Resolve returns the NUTS ID for identifier, which may be either a NUTS ID
// or a provider ID.
func (s *Service) Resolve(identifier string) (domain.NutsID, error) {
	if strings.TrimSpace(identifier) == "" {
		return "", fmt.Errorf("empty station identifier: %w", domain.ErrInvalidArgument)
	}
	res := s.Classify(identifier)
	if res.As == NotFound {
		return "", fmt.Errorf("%q is neither a known NUTS ID nor a mapped provider ID: %w", identifier, domain.ErrNotFound)
	}
	return res.NutsID, nil
}

// Classify resolves identifier without failing. NUTS IDs are matched first.
func (s *Service) Classify(identifier string) Resolution {
	identifier = strings.TrimSpace(identifier)
	if providerID, ok := s.byNuts[domain.NutsID(identifier)]; ok {
		return Resolution{As: FoundAsNuts, NutsID: domain.NutsID(identifier), ProviderID: providerID}
	}
	if id, ok := s.byProvider[identifier]; ok {
		return Resolution{As: FoundAsProvider, NutsID: id, ProviderID: identifier}
	}
	return Resolution{As: NotFound}
}

// Register allocates the next NUTS ID of region for providerID and persists
// it. A failed call leaves both stores and the in-memory mapping unchanged.
func (s *Service) Register(providerID string, region domain.Region) (domain.NutsID, error) {
	providerID = strings.TrimSpace(providerID)
	if providerID == "" {
		return "", fmt.Errorf("register: empty provider id: %w", domain.ErrInvalidArgument)
	}
	if !region.Valid() {
		return "", fmt.Errorf("register %s: region %q is not a known NUTS code: %w", providerID, region, domain.ErrInvalidArgument)
	}
	if existing, ok := s.byProvider[providerID]; ok {
		return "", fmt.Errorf("register %s: already mapped to %s: %w", providerID, existing, domain.ErrConflict)
	}

	ids := make([]domain.NutsID, len(s.entries))
	for i, e := range s.entries {
		ids[i] = e.NutsID
	}
	id, err := domain.NextNutsID(region, ids)
	if err != nil {
		return "", fmt.Errorf("register %s: %w", providerID, err)
	}

	next := sortEntries(append(slices.Clone(s.entries), domain.MappingEntry{ProviderID: providerID, NutsID: id}))
	if err := s.persist(next); err != nil {
		return "", fmt.Errorf("register %s: %w", providerID, err)
	}
	s.apply(next)

	s.metrics.MappingRegistrations.WithLabelValues(string(region)).Inc()
	s.logger.Info("registered provider id", "provider_id", providerID, "nuts_id", id, "region", region)
	return id, nil
}

// LookupOrRegister returns the NUTS ID of providerID, registering it in
// region when addMissing is set. created reports whether a new entry was
// made.
func (s *Service) LookupOrRegister(providerID string, region domain.Region, addMissing bool) (id domain.NutsID, created bool, err error) {
	id, err = s.Lookup(providerID)
	if err == nil || !addMissing || !errors.Is(err, domain.ErrNotFound) {
		return id, false, err
	}
	id, err = s.Register(providerID, region)
	return id, err == nil, err
}

// Entries returns a copy of the mapping sorted by NUTS ID.
func (s *Service) Entries() []domain.MappingEntry { return slices.Clone(s.entries) }

// ReadMirror reads the JSON store from disk.
func (s *Service) ReadMirror() ([]domain.MappingEntry, error) {
	var entries []domain.MappingEntry
	err := storage.Read(s.jsonPath, func(r io.Reader) error {
		return json.NewDecoder(r).Decode(&entries)
	})
	if err != nil {
		return nil, fmt.Errorf("read nuts mapping mirror: %w", err)
	}
	return entries, nil
}

// CheckReadiness reports whether the mapping is usable. The service is
// ready as soon as Open has returned.
func (s *Service) CheckReadiness(_ context.Context) error {
	if s.byProvider == nil {
		return errors.New("nuts mapping not loaded")
	}
	return nil
}

// persist writes both stores. The CSV rename is the commit point; if the
// mirror cannot be replaced afterwards the CSV is rolled back.
func (s *Service) persist(entries []domain.MappingEntry) error {
	csvFile, err := storage.Stage(s.csvPath, func(w io.Writer) error {
		return csvio.WriteMapping(w, entries)
	})
	if err != nil {
		return err
	}
	defer csvFile.Discard()

	jsonFile, err := storage.Stage(s.jsonPath, func(w io.Writer) error {
		return writeMirror(w, entries)
	})
	if err != nil {
		return err
	}
	defer jsonFile.Discard()

	if err := csvFile.Commit(); err != nil {
		return err
	}
	if err := jsonFile.Commit(); err != nil {
		rollback := storage.WriteAtomic(s.csvPath, func(w io.Writer) error {
			return csvio.WriteMapping(w, s.entries)
		})
		return errors.Join(err, rollback)
	}
	return nil
}

// syncMirror regenerates the JSON store when it is missing or differs from
// the CSV store.
func (s *Service) syncMirror() error {
	mirror, err := s.ReadMirror()
	if err == nil && slices.Equal(mirror, s.entries) {
		return nil
	}
	s.logger.Warn("nuts mapping mirror out of sync, regenerating", "path", s.jsonPath, "error", err)
	if err := storage.WriteAtomic(s.jsonPath, func(w io.Writer) error {
		return writeMirror(w, s.entries)
	}); err != nil {
		return fmt.Errorf("regenerate nuts mapping mirror: %w", err)
	}
	return nil
}

func (s *Service) apply(entries []domain.MappingEntry) {
	s.entries = entries
	s.byProvider = make(map[string]domain.NutsID, len(entries))
	s.byNuts = make(map[domain.NutsID]string, len(entries))
	for _, e := range entries {
		s.byProvider[e.ProviderID] = e.NutsID
		s.byNuts[e.NutsID] = e.ProviderID
	}
	s.metrics.MappingEntries.Set(float64(len(entries)))
}

func writeMirror(w io.Writer, entries []domain.MappingEntry) error {
	if entries == nil {
		entries = []domain.MappingEntry{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "    ")
	return enc.Encode(entries)
}

func sortEntries(entries []domain.MappingEntry) []domain.MappingEntry {
	slices.SortFunc(entries, func(a, b domain.MappingEntry) int {
		return strings.Compare(string(a.NutsID), string(b.NutsID))
	})
	return entries
}

func validateEntries(entries []domain.MappingEntry) error {
	providers := make(map[string]bool, len(entries))
	for i, e := range entries {
		if providers[e.ProviderID] {
			return fmt.Errorf("provider id %q mapped twice: %w", e.ProviderID, domain.ErrConflict)
		}
		providers[e.ProviderID] = true
		if i > 0 && entries[i-1].NutsID == e.NutsID {
			return fmt.Errorf("nuts id %s allocated twice: %w", e.NutsID, domain.ErrConflict)
		}
	}
	return nil
}
