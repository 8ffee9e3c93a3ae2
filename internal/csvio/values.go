package csvio

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// timestampLayout matches what pandas writes for a UTC index.
const timestampLayout = "2006-01-02 15:04:05-07:00"

var (
	zonedLayouts = []string{
		"2006-01-02 15:04:05Z07:00",
		time.RFC3339Nano,
		"2006-01-02 15:04Z07:00",
		"2006-01-02T15:04Z07:00",
	}
	naiveLayouts = []string{
		"2006-01-02 15:04:05",
		"2006-01-02T15:04:05",
		"2006-01-02 15:04",
		"2006-01-02T15:04",
		"2006-01-02",
	}
)

// FormatTimestamp renders t in UTC with an explicit +00:00 offset.
func FormatTimestamp(t time.Time) string { return t.UTC().Format(timestampLayout) }

// ParseTimestamp parses a timestamp with or without an offset. Zero-offset
// timestamps come back in time.UTC; timestamps without an offset are read as
// local wall-clock time and so never count as UTC.
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range zonedLayouts {
		t, err := time.Parse(layout, s)
		if err != nil {
			continue
		}
		if _, offset := t.Zone(); offset == 0 {
			t = t.UTC()
		}
		return t, nil
	}
	for _, layout := range naiveLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}

// FormatFloat renders a nullable float; nil and NaN become an empty cell.
func FormatFloat(v *float64) string {
	if v == nil || math.IsNaN(*v) {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

// ParseFloat parses a nullable float. Empty cells and NaN spellings are null.
func ParseFloat(s string) (*float64, error) {
	s = strings.TrimSpace(s)
	if isNull(s) {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, err
	}
	if math.IsNaN(v) {
		return nil, nil
	}
	return &v, nil
}

func formatString(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

func parseString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func formatBool(v *bool) string {
	switch {
	case v == nil:
		return ""
	case *v:
		return "True"
	default:
		return "False"
	}
}

func parseBool(s string) (*bool, error) {
	s = strings.TrimSpace(s)
	if isNull(s) {
		return nil, nil
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func isNull(s string) bool {
	switch strings.ToLower(s) {
	case "", "nan", "na", "null", "none":
		return true
	}
	return false
}
