package main

import (
	"encoding/json"
	"errors"

	"github.com/spf13/cobra"

	"github.com/couchcryptid/camels-de1h/internal/csvio"
	"github.com/couchcryptid/camels-de1h/internal/domain"
)

func newMetadataCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "metadata",
		Short: "Read and write station metadata",
	}
	cmd.AddCommand(newMetadataGetCmd(a), newMetadataSetCmd(a), newMetadataListCmd(a))
	return cmd
}

func newMetadataGetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get IDENTIFIER",
		Short: "Print a station's metadata as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := a.stations.Open(args[0])
			if err != nil {
				return err
			}
			md, err := st.LoadMetadata()
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(md)
		},
	}
}

func newMetadataListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Print the global metadata index as CSV",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rows, err := a.stations.Index().All()
			if err != nil {
				return err
			}
			return csvio.WriteMetadata(cmd.OutOrStdout(), rows, true)
		},
	}
}

// metadataFlags holds one flag per metadata column. Unset flags leave the
// field null.
type metadataFlags struct {
	providerID, gaugeName, waterBody, federalState string
	lon, lat, easting, northing, elev, area        float64
	partOfCamelsp                                  bool
	merge                                          bool
}

func newMetadataSetCmd(a *app) *cobra.Command {
	var f metadataFlags
	cmd := &cobra.Command{
		Use:   "set IDENTIFIER",
		Short: "Save a station's metadata and update the global index",
		Long: "Set replaces the station's metadata record with the given fields; unset\n" +
			"fields are saved as empty. With --merge the flags are applied on top of the\n" +
			"saved record instead.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := a.stations.Open(args[0])
			if err != nil {
				return err
			}

			var md domain.Metadata
			if f.merge {
				md, err = st.LoadMetadata()
				if err != nil && !errors.Is(err, domain.ErrNotFound) {
					return err
				}
			}
			applyMetadataFlags(cmd, &f, &md)
			return st.SaveMetadata(md)
		},
	}

	fl := cmd.Flags()
	fl.StringVar(&f.providerID, "provider-id", "", "provider's station ID")
	fl.StringVar(&f.gaugeName, "gauge-name", "", "gauge name")
	fl.StringVar(&f.waterBody, "water-body-name", "", "river or water body")
	fl.StringVar(&f.federalState, "federal-state", "", "federal state")
	fl.Float64Var(&f.lon, "lon", 0, "longitude, EPSG:4326")
	fl.Float64Var(&f.lat, "lat", 0, "latitude, EPSG:4326")
	fl.Float64Var(&f.easting, "easting", 0, "easting, EPSG:3035")
	fl.Float64Var(&f.northing, "northing", 0, "northing, EPSG:3035")
	fl.Float64Var(&f.elev, "elev", 0, "gauge elevation in m a.s.l.")
	fl.Float64Var(&f.area, "area", 0, "catchment area in km²")
	fl.BoolVar(&f.partOfCamelsp, "part-of-camelsp", false, "station is part of the daily CAMELS-DE preprocessing")
	fl.BoolVar(&f.merge, "merge", false, "keep saved fields that are not given as flags")
	return cmd
}

func applyMetadataFlags(cmd *cobra.Command, f *metadataFlags, md *domain.Metadata) {
	changed := cmd.Flags().Changed
	setString := func(name string, v string, dst **string) {
		if changed(name) {
			*dst = domain.Ptr(v)
		}
	}
	setFloat := func(name string, v float64, dst **float64) {
		if changed(name) {
			*dst = domain.Ptr(v)
		}
	}

	setString("provider-id", f.providerID, &md.ProviderID)
	setString("gauge-name", f.gaugeName, &md.GaugeName)
	setString("water-body-name", f.waterBody, &md.WaterBodyName)
	setString("federal-state", f.federalState, &md.FederalState)
	setFloat("lon", f.lon, &md.Lon)
	setFloat("lat", f.lat, &md.Lat)
	setFloat("easting", f.easting, &md.Easting)
	setFloat("northing", f.northing, &md.Northing)
	setFloat("elev", f.elev, &md.ElevMetadata)
	setFloat("area", f.area, &md.AreaMetadata)
	if changed("part-of-camelsp") {
		md.PartOfCamelsp = domain.Ptr(f.partOfCamelsp)
	}
}
