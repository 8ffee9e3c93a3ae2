package domain

import (
	"fmt"
	"slices"
	"strings"
)

// Region is the three-character NUTS-1 code of a German federal state.
type Region string

// regionFolders maps each known region to the folder holding its raw
// provider files below the input directory.
var regionFolders = map[Region]string{
	"DE1": "BW_Baden_Wuerttemberg",
	"DE2": "BY_Bayern",
	"DE4": "BR_Brandenburg",
	"DE7": "HE_Hessen",
	"DE8": "MP_Mecklenburg_Vorpommern",
	"DE9": "NiS_Niedersachsen",
	"DEA": "NRW_Nordrhein_Westfalen",
	"DEB": "RLP_Rheinland_Pfalz",
	"DEC": "SL_Saarland",
	"DED": "SN_Sachsen",
	"DEE": "SA_Sachsen_Anhalt",
	"DEF": "SH_Schleswig_Holstein",
	"DEG": "TH_Thueringen",
}

// Regions returns all known region codes in ascending order.
func Regions() []Region {
	out := make([]Region, 0, len(regionFolders))
	for r := range regionFolders {
		out = append(out, r)
	}
	slices.Sort(out)
	return out
}

// ParseRegion validates a region code. Surrounding whitespace is ignored and
// the code is matched case-insensitively.
func ParseRegion(s string) (Region, error) {
	r := Region(strings.ToUpper(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", fmt.Errorf("region %q is not a known NUTS code: %w", s, ErrInvalidArgument)
	}
	return r, nil
}

// Valid reports whether r is one of the known region codes.
func (r Region) Valid() bool {
	_, ok := regionFolders[r]
	return ok
}

// Folder returns the input folder name of the region, or "" if unknown.
func (r Region) Folder() string { return regionFolders[r] }

func (r Region) String() string { return string(r) }
