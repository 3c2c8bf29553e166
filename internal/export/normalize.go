package export

import (
	"strconv"
	"time"

	"github.com/meteora/weather-history/internal/model"
)

// FlatRow is the denormalized shape shared by every tabular export.
// Lat and Lon are empty when the record carries no location.
type FlatRow struct {
	ID        string    `json:"id"`
	Location  string    `json:"location"`
	Lat       string    `json:"lat"`
	Lon       string    `json:"lon"`
	DateStart time.Time `json:"dateStart"`
	DateEnd   time.Time `json:"dateEnd"`
	Provider  string    `json:"provider"`
	FetchedAt time.Time `json:"fetchedAt"`
}

// Columns lists the FlatRow keys in export order.
var Columns = []string{"id", "location", "lat", "lon", "dateStart", "dateEnd", "provider", "fetchedAt"}

// Normalize flattens a request with its location into a FlatRow.
func Normalize(r model.WeatherRequest) FlatRow {
	row := FlatRow{
		ID:        r.ID,
		DateStart: r.DateStart,
		DateEnd:   r.DateEnd,
		Provider:  r.Provider,
		FetchedAt: r.FetchedAt,
	}
	if r.Location != nil {
		row.Location = r.Location.Name
		row.Lat = strconv.FormatFloat(r.Location.Latitude, 'f', -1, 64)
		row.Lon = strconv.FormatFloat(r.Location.Longitude, 'f', -1, 64)
	}
	return row
}

// NormalizeAll preserves input order.
func NormalizeAll(records []model.WeatherRequest) []FlatRow {
	rows := make([]FlatRow, len(records))
	for i, r := range records {
		rows[i] = Normalize(r)
	}
	return rows
}

// values returns the row in Columns order with timestamps in their sortable form.
func (r FlatRow) values() []string {
	return []string{
		r.ID,
		r.Location,
		r.Lat,
		r.Lon,
		formatTimestamp(r.DateStart),
		formatTimestamp(r.DateEnd),
		r.Provider,
		formatTimestamp(r.FetchedAt),
	}
}

func formatTimestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}
