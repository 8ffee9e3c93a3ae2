// Package domain models the CAMELS-DE hourly station dataset.
//
// # Identifiers
//
// Every station carries two identifiers:
//
//	provider ID  the ID used by the federal state authority that delivers the
//	             data, e.g. "2386" or "0000579070". Not unique across states.
//	NUTS ID      the dataset-wide gauge ID, e.g. "DE110000" ... "DEG12340".
//
// A NUTS ID is eight characters: the three-character NUTS-1 code of the
// federal state followed by a five-digit, zero-padded sequence number.
// Sequences start at 01000 in every state and grow in steps of 10, so the
// first three stations registered in Bavaria are DE201000, DE201010 and
// DE201020.
//
// # Series
//
// A station series is an hourly record with exactly two value columns:
//
//	discharge_vol_obs  observed discharge in m³/s
//	water_level_obs    observed water level in cm
//
// Either value may be missing. Timestamps are UTC, strictly increasing and
// exactly one hour apart; a series with gaps must be padded with empty rows
// before it is saved.
//
// # Metadata
//
// Station metadata is a single flat row with a fixed column order (see
// MetadataColumns). Coordinates are given twice: lon/lat in EPSG:4326 and
// easting/northing in EPSG:3035. Elevation is in m a.s.l., area in km².
package domain
