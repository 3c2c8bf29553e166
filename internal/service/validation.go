package service

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/meteora/weather-history/internal/geo"
)

// ValidationError reports invalid input, keyed by JSON field name
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// fieldErrors collects field problems and yields nil when there are none
type fieldErrors map[string]string

func (f fieldErrors) add(field, msg string) {
	if _, exists := f[field]; !exists {
		f[field] = msg
	}
}

func (f fieldErrors) err() error {
	if len(f) == 0 {
		return nil
	}
	return &ValidationError{Fields: f}
}

var dateLayouts = []string{"2006-01-02", time.RFC3339Nano}

// parseDate accepts a calendar date or an RFC 3339 timestamp and returns UTC
func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q", s)
}

func checkDate(errs fieldErrors, field, value string) time.Time {
	if strings.TrimSpace(value) == "" {
		errs.add(field, "is required")
		return time.Time{}
	}
	t, err := parseDate(value)
	if err != nil {
		errs.add(field, "must be a date (YYYY-MM-DD) or RFC 3339 timestamp")
	}
	return t
}

func checkRange(errs fieldErrors, start, end time.Time) {
	if start.IsZero() || end.IsZero() {
		return
	}
	if start.After(end) {
		errs.add("dateEnd", "must not be before dateStart")
	}
}

// checkCoordinates validates an optional coordinate pair and reports whether one was given
func checkCoordinates(errs fieldErrors, lat, lon *float64) bool {
	if lat == nil && lon == nil {
		return false
	}
	if lat == nil {
		errs.add("latitude", "is required with longitude")
		return false
	}
	if lon == nil {
		errs.add("longitude", "is required with latitude")
		return false
	}
	if !geo.ValidCoordinates(*lat, 0) {
		errs.add("latitude", "must be between -90 and 90")
		return false
	}
	if !geo.ValidCoordinates(0, *lon) {
		errs.add("longitude", "must be between -180 and 180")
		return false
	}
	return true
}

func normalizeNotes(notes *string) *string {
	if notes == nil || strings.TrimSpace(*notes) == "" {
		return nil
	}
	n := *notes
	return &n
}
