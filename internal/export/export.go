// Package export renders weather request history as downloadable documents.
package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/language"

	"github.com/meteora/weather-history/internal/model"
)

// Format is a supported export format.
type Format string

const (
	FormatJSON     Format = "json"
	FormatCSV      Format = "csv"
	FormatXML      Format = "xml"
	FormatMarkdown Format = "md"
	FormatPDF      Format = "pdf"
)

// Formats lists every supported format.
var Formats = []Format{FormatJSON, FormatCSV, FormatXML, FormatMarkdown, FormatPDF}

// ErrUnsupportedFormat is returned for formats outside Formats.
var ErrUnsupportedFormat = errors.New("unsupported export format")

// ParseFormat validates s. An empty string selects JSON.
func ParseFormat(s string) (Format, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return FormatJSON, nil
	}
	for _, f := range Formats {
		if string(f) == s {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
}

// Document is a rendered export.
type Document struct {
	Body        []byte
	ContentType string
	Filename    string
}

// Options controls human-readable formatting in the md and pdf formats.
type Options struct {
	Locale   language.Tag
	Location *time.Location
}

func (o Options) location() *time.Location {
	if o.Location == nil {
		return time.UTC
	}
	return o.Location
}

// Render produces a document for records in the given order.
func Render(records []model.WeatherRequest, format Format, opts Options) (*Document, error) {
	var (
		body []byte
		err  error
	)

	switch format {
	case FormatJSON:
		body, err = renderJSON(records)
	case FormatCSV:
		body, err = renderCSV(NormalizeAll(records))
	case FormatXML:
		body, err = renderXML(NormalizeAll(records))
	case FormatMarkdown:
		body = renderMarkdown(NormalizeAll(records), opts)
	case FormatPDF:
		body, err = renderPDF(NormalizeAll(records), opts)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to render %s export: %w", format, err)
	}

	return &Document{
		Body:        body,
		ContentType: contentType(format),
		Filename:    "export." + string(format),
	}, nil
}

func contentType(f Format) string {
	switch f {
	case FormatCSV:
		return "text/csv; charset=utf-8"
	case FormatXML:
		return "application/xml; charset=utf-8"
	case FormatMarkdown:
		return "text/markdown; charset=utf-8"
	case FormatPDF:
		return "application/pdf"
	default:
		return "application/json; charset=utf-8"
	}
}

func renderJSON(records []model.WeatherRequest) ([]byte, error) {
	if records == nil {
		records = []model.WeatherRequest{}
	}
	return json.MarshalIndent(records, "", "  ")
}

const utf8BOM = "\ufeff"

func renderCSV(rows []FlatRow) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(utf8BOM)

	w := csv.NewWriter(&buf)
	if err := w.Write(Columns); err != nil {
		return nil, err
	}
	for _, row := range rows {
		if err := w.Write(row.values()); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

type xmlDocument struct {
	XMLName xml.Name `xml:"requests"`
	Rows    []xmlRow `xml:"request"`
}

type xmlRow struct {
	ID        string `xml:"id"`
	Location  string `xml:"location"`
	Lat       string `xml:"lat"`
	Lon       string `xml:"lon"`
	DateStart string `xml:"dateStart"`
	DateEnd   string `xml:"dateEnd"`
	Provider  string `xml:"provider"`
	FetchedAt string `xml:"fetchedAt"`
}

func renderXML(rows []FlatRow) ([]byte, error) {
	doc := xmlDocument{Rows: make([]xmlRow, 0, len(rows))}
	for _, row := range rows {
		v := row.values()
		doc.Rows = append(doc.Rows, xmlRow{
			ID:        v[0],
			Location:  v[1],
			Lat:       v[2],
			Lon:       v[3],
			DateStart: v[4],
			DateEnd:   v[5],
			Provider:  v[6],
			FetchedAt: v[7],
		})
	}

	out, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), out...), nil
}
