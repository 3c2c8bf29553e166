package model

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// DefaultProvider is the weather provider recorded on every request
const DefaultProvider = "open-meteo"

// LocationSource describes how a location was resolved
type LocationSource string

const (
	SourceCoordinateLiteral LocationSource = "coordinate-literal"
	SourceForwardGeocode    LocationSource = "forward-geocode"
	SourceReverseGeocode    LocationSource = "reverse-geocode"
)

// Location is a resolved place, shared by every request that resolved to it
type Location struct {
	ID        string         `json:"id" db:"id"`
	UserInput string         `json:"userInput" db:"user_input"`
	Name      string         `json:"name" db:"name"`
	Latitude  float64        `json:"latitude" db:"latitude"`
	Longitude float64        `json:"longitude" db:"longitude"`
	Source    LocationSource `json:"source" db:"source"`
	CreatedAt time.Time      `json:"createdAt" db:"created_at"`
}

// WeatherSnapshot is the stored provider payload of one fetch
type WeatherSnapshot struct {
	ID         string    `json:"id" db:"id"`
	RawPayload Payload   `json:"rawPayload" db:"raw_payload"`
	CapturedAt time.Time `json:"capturedAt" db:"captured_at"`
}

// WeatherRequest is one entry of the query history
type WeatherRequest struct {
	ID         string    `json:"id" db:"id"`
	LocationID string    `json:"locationId" db:"location_id"`
	DateStart  time.Time `json:"dateStart" db:"date_start"`
	DateEnd    time.Time `json:"dateEnd" db:"date_end"`
	Provider   string    `json:"provider" db:"provider"`
	SnapshotID string    `json:"snapshotId" db:"snapshot_id"`
	Notes      *string   `json:"notes" db:"notes"`
	CreatedAt  time.Time `json:"createdAt" db:"created_at"`
	FetchedAt  time.Time `json:"fetchedAt" db:"fetched_at"`

	Location *Location        `json:"location,omitempty" db:"-"`
	Snapshot *WeatherSnapshot `json:"snapshot,omitempty" db:"-"`
}

// ResolvedLocation is the outcome of resolving user input, before persistence
type ResolvedLocation struct {
	Name      string         `json:"name"`
	Latitude  float64        `json:"latitude"`
	Longitude float64        `json:"longitude"`
	Source    LocationSource `json:"source"`
}

// Payload is a raw JSON document stored as TEXT (sqlite) or JSONB (postgres)
type Payload []byte

// Value implements driver.Valuer
func (p Payload) Value() (driver.Value, error) {
	if len(p) == 0 {
		return "null", nil
	}
	return string(p), nil
}

// Scan implements sql.Scanner
func (p *Payload) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*p = nil
	case []byte:
		*p = append(Payload(nil), v...)
	case string:
		*p = Payload(v)
	default:
		return fmt.Errorf("unsupported payload type %T", src)
	}
	return nil
}

// MarshalJSON emits the payload as embedded JSON
func (p Payload) MarshalJSON() ([]byte, error) {
	if len(bytes.TrimSpace(p)) == 0 {
		return []byte("null"), nil
	}
	return p, nil
}

// UnmarshalJSON keeps a copy of the raw document
func (p *Payload) UnmarshalJSON(data []byte) error {
	*p = append((*p)[:0], data...)
	return nil
}

// NewPayload encodes v as a Payload
func NewPayload(v any) (Payload, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return Payload(b), nil
}
