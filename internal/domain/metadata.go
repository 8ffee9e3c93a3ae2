package domain

// MetadataColumns is the fixed column order of station metadata files and
// of the global metadata index.
var MetadataColumns = []string{
	"gauge_id",
	"provider_id",
	"gauge_name",
	"water_body_name",
	"federal_state",
	"lon",
	"lat",
	"easting",
	"northing",
	"elev_metadata",
	"area_metadata",
	"part_of_camelsp",
}

// Metadata is the flat per-station metadata record. Every field is
// nullable so that partial records can be saved.
type Metadata struct {
	GaugeID       *string  `json:"gauge_id"`
	ProviderID    *string  `json:"provider_id"`
	GaugeName     *string  `json:"gauge_name"`
	WaterBodyName *string  `json:"water_body_name"`
	FederalState  *string  `json:"federal_state"`
	Lon           *float64 `json:"lon"`             // EPSG:4326
	Lat           *float64 `json:"lat"`             // EPSG:4326
	Easting       *float64 `json:"easting"`         // EPSG:3035
	Northing      *float64 `json:"northing"`        // EPSG:3035
	ElevMetadata  *float64 `json:"elev_metadata"`   // m a.s.l.
	AreaMetadata  *float64 `json:"area_metadata"`   // km²
	PartOfCamelsp *bool    `json:"part_of_camelsp"` // station is part of the daily CAMELS-DE preprocessing
}

// Key returns the gauge ID the record is indexed by, or "" when unset.
func (m Metadata) Key() string {
	if m.GaugeID == nil {
		return ""
	}
	return *m.GaugeID
}

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T { return &v }
