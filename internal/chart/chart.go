// Package chart renders station series as interactive line charts.
package chart

import (
	"fmt"
	"strings"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/couchcryptid/camels-de1h/internal/domain"
)

// Kind selects which observations to draw.
type Kind string

const (
	KindDischarge  Kind = "discharge"
	KindWaterLevel Kind = "water_level"
	KindBoth       Kind = "both"
)

const (
	dischargeColor  = "#1f77b4"
	waterLevelColor = "#ff7f0e"

	dischargeAxis  = "Discharge [m³/s]"
	waterLevelAxis = "Water Level [cm]"

	xLayout = "2006-01-02 15:04"
)

// ParseKind accepts the three kind names and the short aliases q and w,
// case-insensitively.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "discharge", "q":
		return KindDischarge, nil
	case "water_level", "w":
		return KindWaterLevel, nil
	case "both":
		return KindBoth, nil
	}
	return "", fmt.Errorf("chart kind %q: must be one of discharge, water_level, both: %w", s, domain.ErrInvalidArgument)
}

// Build draws s. With KindBoth the water level goes on a secondary y axis.
func Build(s domain.Series, kind Kind) (*charts.Line, error) {
	if kind != KindDischarge && kind != KindWaterLevel && kind != KindBoth {
		return nil, fmt.Errorf("chart kind %q: %w", kind, domain.ErrInvalidArgument)
	}

	dates := make([]string, len(s.Observations))
	discharge := make([]opts.LineData, len(s.Observations))
	level := make([]opts.LineData, len(s.Observations))
	for i, o := range s.Observations {
		dates[i] = o.Date.UTC().Format(xLayout)
		discharge[i] = lineValue(o.DischargeVolObs)
		level[i] = lineValue(o.WaterLevelObs)
	}

	primaryAxis := dischargeAxis
	if kind == KindWaterLevel {
		primaryAxis = waterLevelAxis
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: fmt.Sprintf("Station %s", s.GaugeID),
			Width:     "1000px",
			Height:    "500px",
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    fmt.Sprintf("Station %s: %s", s.GaugeID, title(kind)),
			Subtitle: "generated " + domain.Now().Format("2006-01-02 15:04 MST"),
			Left:     "center",
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Right: "1%", Top: "8%"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Date", Type: "category"}),
		charts.WithYAxisOpts(opts.YAxis{Name: primaryAxis}),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "slider", Start: 0, End: 100}),
	)
	line.SetXAxis(dates)

	if kind == KindDischarge || kind == KindBoth {
		line.AddSeries("Discharge", discharge,
			charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(false)}),
			charts.WithLineStyleOpts(opts.LineStyle{Color: dischargeColor, Width: 1.5}),
		)
	}

	if kind == KindWaterLevel || kind == KindBoth {
		axis := 0
		if kind == KindBoth {
			line.ExtendYAxis(opts.YAxis{Name: waterLevelAxis})
			axis = 1
		}
		line.AddSeries("Water Level", level,
			charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(false), YAxisIndex: axis}),
			charts.WithLineStyleOpts(opts.LineStyle{Color: waterLevelColor, Width: 1.5}),
		)
	}

	return line, nil
}

func title(kind Kind) string {
	switch kind {
	case KindDischarge:
		return "Discharge"
	case KindWaterLevel:
		return "Water Level"
	default:
		return "Discharge & Water Level"
	}
}

// lineValue maps a missing observation to a gap in the line.
func lineValue(v *float64) opts.LineData {
	if v == nil {
		return opts.LineData{Value: "-"}
	}
	return opts.LineData{Value: *v}
}
