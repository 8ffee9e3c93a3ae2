// Package layout resolves dataset paths below the input and output
// directories.
package layout

import (
	"fmt"
	"path/filepath"

	"github.com/couchcryptid/camels-de1h/internal/domain"
)

const (
	rawInputDir = "Q_and_W"
	metadataDir = "metadata"
)

// Layout roots every dataset path.
type Layout struct {
	InputDir  string
	OutputDir string
}

// New returns a Layout for the given directories.
func New(inputDir, outputDir string) Layout {
	return Layout{InputDir: inputDir, OutputDir: outputDir}
}

// InputPath returns the folder holding raw provider files of a region.
func (l Layout) InputPath(r domain.Region) (string, error) {
	if !r.Valid() {
		return "", fmt.Errorf("no input path for region %q: %w", r, domain.ErrInvalidArgument)
	}
	return filepath.Join(l.InputDir, rawInputDir, r.Folder()), nil
}

// OutputPath returns the output root for "", the region folder for a
// region code, and the station folder for an eight-character NUTS ID.
func (l Layout) OutputPath(id string) (string, error) {
	switch {
	case id == "":
		return l.OutputDir, nil
	case domain.Region(id).Valid():
		return filepath.Join(l.OutputDir, id), nil
	}
	nuts, err := domain.ParseNutsID(id)
	if err != nil {
		return "", fmt.Errorf("output path for %q: %w", id, err)
	}
	return l.StationDir(nuts), nil
}

// StationDir is {OUTPUT}/{region}/{id}.
func (l Layout) StationDir(id domain.NutsID) string {
	return filepath.Join(l.OutputDir, string(id.Region()), string(id))
}

func (l Layout) DataFile(id domain.NutsID) string {
	return filepath.Join(l.StationDir(id), string(id)+"_data.csv")
}

func (l Layout) MetadataFile(id domain.NutsID) string {
	return filepath.Join(l.StationDir(id), string(id)+"_metadata.csv")
}

func (l Layout) RawMetadataFile(id domain.NutsID) string {
	return filepath.Join(l.StationDir(id), string(id)+"_raw_metadata.csv")
}

// MetadataDir holds the dataset-wide tables.
func (l Layout) MetadataDir() string { return filepath.Join(l.OutputDir, metadataDir) }

func (l Layout) MetadataIndexFile() string { return filepath.Join(l.MetadataDir(), "metadata1h.csv") }

func (l Layout) MappingCSV() string { return filepath.Join(l.MetadataDir(), "nuts_mapping.csv") }

func (l Layout) MappingJSON() string { return filepath.Join(l.MetadataDir(), "nuts_mapping.json") }
