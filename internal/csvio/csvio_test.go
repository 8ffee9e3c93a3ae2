package csvio

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/couchcryptid/camels-de1h/internal/domain"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testGauge domain.NutsID = "DE101000"

func TestParseTimestamp(t *testing.T) {
	want := time.Date(2020, 1, 1, 5, 0, 0, 0, time.UTC)

	for _, s := range []string{
		"2020-01-01 05:00:00+00:00",
		"2020-01-01T05:00:00Z",
		"2020-01-01 05:00:00Z",
		"2020-01-01T05:00:00+00:00",
	} {
		t.Run(s, func(t *testing.T) {
			got, err := ParseTimestamp(s)
			require.NoError(t, err)
			assert.True(t, want.Equal(got))
			assert.Same(t, time.UTC, got.Location())
		})
	}

	t.Run("offset keeps zone", func(t *testing.T) {
		got, err := ParseTimestamp("2020-01-01 06:00:00+01:00")
		require.NoError(t, err)
		assert.True(t, want.Equal(got))
		assert.NotSame(t, time.UTC, got.Location())
	})

	t.Run("naive is not UTC", func(t *testing.T) {
		got, err := ParseTimestamp("2020-01-01 05:00:00")
		require.NoError(t, err)
		assert.NotSame(t, time.UTC, got.Location())
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := ParseTimestamp("yesterday")
		require.Error(t, err)
	})
}

func TestFormatTimestamp(t *testing.T) {
	ts := time.Date(2020, 1, 1, 5, 0, 0, 0, time.UTC)
	assert.Equal(t, "2020-01-01 05:00:00+00:00", FormatTimestamp(ts))
}

func TestReadFrame(t *testing.T) {
	in := "date,water_level_obs,remark\n" +
		"2020-01-01 00:00:00+00:00,120.5,ok\n" +
		"2020-01-01 01:00:00+00:00,,\n"

	f, err := ReadFrame(strings.NewReader(in))
	require.NoError(t, err)
	assert.True(t, f.DateIndexed)
	assert.Equal(t, 2, f.Len())
	assert.Equal(t, []string{"water_level_obs", "remark"}, f.ColumnNames())

	wl, ok := f.Column(domain.ColumnWaterLevelObs)
	require.True(t, ok)
	require.NotNil(t, wl.Values[0])
	assert.Equal(t, 120.5, *wl.Values[0])
	assert.Nil(t, wl.Values[1])

	remark, _ := f.Column("remark")
	assert.Equal(t, []*float64{nil, nil}, remark.Values)
}

func TestReadFrame_Errors(t *testing.T) {
	tests := map[string]string{
		"empty":          "",
		"no date":        "time,water_level_obs\n2020-01-01,1\n",
		"bad date":       "date,water_level_obs\nsoon,1\n",
		"bad recognized": "date,discharge_vol_obs\n2020-01-01 00:00:00+00:00,abc\n",
	}
	for name, in := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ReadFrame(strings.NewReader(in))
			require.ErrorIs(t, err, domain.ErrInvalidArgument)
		})
	}
}

func TestSeriesRoundTrip(t *testing.T) {
	start := time.Date(2021, 6, 1, 22, 0, 0, 0, time.UTC)
	s := domain.Series{GaugeID: testGauge, Observations: []domain.Observation{
		{Date: start, DischargeVolObs: domain.Ptr(0.1), WaterLevelObs: domain.Ptr(87.0)},
		{Date: start.Add(time.Hour), DischargeVolObs: domain.Ptr(1.0 / 3.0)},
		{Date: start.Add(2 * time.Hour), WaterLevelObs: domain.Ptr(1e-7)},
	}}

	var buf bytes.Buffer
	require.NoError(t, WriteSeries(&buf, s))
	assert.True(t, strings.HasPrefix(buf.String(), "date,discharge_vol_obs,water_level_obs\n2021-06-01 22:00:00+00:00,0.1,87\n"))

	got, err := ReadSeries(&buf, testGauge)
	require.NoError(t, err)
	if diff := cmp.Diff(s, got); diff != "" {
		t.Errorf("series mismatch (-want +got):\n%s", diff)
	}
}

func TestMetadataRoundTrip(t *testing.T) {
	rows := []domain.Metadata{
		{
			GaugeID:       domain.Ptr("DE101000"),
			ProviderID:    domain.Ptr("00376"),
			GaugeName:     domain.Ptr("Plochingen"),
			WaterBodyName: domain.Ptr("Neckar"),
			FederalState:  domain.Ptr("Baden-Württemberg"),
			Lon:           domain.Ptr(9.41),
			Lat:           domain.Ptr(48.71),
			Easting:       domain.Ptr(4235000.5),
			Northing:      domain.Ptr(2853000.25),
			ElevMetadata:  domain.Ptr(246.2),
			AreaMetadata:  domain.Ptr(3995.0),
			PartOfCamelsp: domain.Ptr(true),
		},
		{GaugeID: domain.Ptr("DE101010"), PartOfCamelsp: domain.Ptr(false)},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteMetadata(&buf, rows, true))
	assert.True(t, strings.HasPrefix(buf.String(), strings.Join(domain.MetadataColumns, ",")+"\n"))
	assert.Contains(t, buf.String(), "DE101010,,,,,,,,,,,False\n")

	got, err := ReadMetadata(&buf)
	require.NoError(t, err)
	if diff := cmp.Diff(rows, got); diff != "" {
		t.Errorf("metadata mismatch (-want +got):\n%s", diff)
	}
}

func TestReadMetadata_ReorderedColumns(t *testing.T) {
	in := "provider_id,gauge_id,part_of_camelsp\n123,DE201000,True\n"
	got, err := ReadMetadata(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "DE201000", got[0].Key())
	assert.Equal(t, "123", *got[0].ProviderID)
	assert.True(t, *got[0].PartOfCamelsp)
	assert.Nil(t, got[0].Lat)
}

func TestMappingRoundTrip(t *testing.T) {
	entries := []domain.MappingEntry{
		{ProviderID: "0042", NutsID: "DE101000"},
		{ProviderID: "x-7", NutsID: "DE201000"},
	}
	var buf bytes.Buffer
	require.NoError(t, WriteMapping(&buf, entries))
	assert.Equal(t, "provider_id,nuts_id\n0042,DE101000\nx-7,DE201000\n", buf.String())

	got, err := ReadMapping(&buf)
	require.NoError(t, err)
	assert.Equal(t, entries, got)
}

func TestReadMapping_BadID(t *testing.T) {
	_, err := ReadMapping(strings.NewReader("provider_id,nuts_id\n1,XX\n"))
	require.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestTableRoundTrip(t *testing.T) {
	in := "Messstelle,Wert\nPlochingen,\"1,5\"\n"
	tbl, err := ReadTable(strings.NewReader(in))
	require.NoError(t, err)
	assert.Equal(t, []string{"Messstelle", "Wert"}, tbl.Header)
	assert.Equal(t, [][]string{{"Plochingen", "1,5"}}, tbl.Rows)

	var buf bytes.Buffer
	require.NoError(t, WriteTable(&buf, tbl))
	assert.Equal(t, in, buf.String())
}
