package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/couchcryptid/camels-de1h/internal/domain"
	"github.com/couchcryptid/camels-de1h/internal/layout"
)

const rawMetadataSuffix = "_meta.csv"

// DirExtractor lists the raw provider files below the input directory.
// Every {provider_id}.csv in a region's folder is one station; an adjacent
// {provider_id}_meta.csv is its raw metadata.
type DirExtractor struct {
	layout  layout.Layout
	regions []domain.Region

	scanned bool
	pending []domain.StationInput
}

// NewDirExtractor scans the given regions, or all of them when none are
// given.
func NewDirExtractor(l layout.Layout, regions ...domain.Region) *DirExtractor {
	if len(regions) == 0 {
		regions = domain.Regions()
	}
	return &DirExtractor{layout: l, regions: regions}
}

// ExtractBatch returns the next batchSize inputs. The input directory is
// scanned on the first call.
func (e *DirExtractor) ExtractBatch(ctx context.Context, batchSize int) ([]domain.StationInput, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !e.scanned {
		pending, err := e.scan()
		if err != nil {
			return nil, err
		}
		e.pending, e.scanned = pending, true
	}

	n := min(batchSize, len(e.pending))
	batch := e.pending[:n:n]
	e.pending = e.pending[n:]
	return batch, nil
}

func (e *DirExtractor) scan() ([]domain.StationInput, error) {
	var out []domain.StationInput
	for _, r := range e.regions {
		dir, err := e.layout.InputPath(r)
		if err != nil {
			return nil, err
		}
		entries, err := os.ReadDir(dir)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", dir, err)
		}

		names := make(map[string]bool, len(entries))
		for _, de := range entries {
			if de.Type().IsRegular() {
				names[de.Name()] = true
			}
		}

		var region []domain.StationInput
		for name := range names {
			if !strings.HasSuffix(name, ".csv") || strings.HasSuffix(name, rawMetadataSuffix) {
				continue
			}
			provider := strings.TrimSuffix(name, ".csv")
			in := domain.StationInput{
				Region:     r,
				ProviderID: provider,
				DataPath:   filepath.Join(dir, name),
			}
			if meta := provider + rawMetadataSuffix; names[meta] {
				in.RawMetadataPath = filepath.Join(dir, meta)
			}
			region = append(region, in)
		}
		slices.SortFunc(region, func(a, b domain.StationInput) int {
			return strings.Compare(a.ProviderID, b.ProviderID)
		})
		out = append(out, region...)
	}
	return out, nil
}
