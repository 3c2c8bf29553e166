package export

import (
	"fmt"
	"strings"
)

const markdownTitle = "# Weather Requests"

func renderMarkdown(rows []FlatRow, opts Options) []byte {
	var b strings.Builder
	b.WriteString(markdownTitle)
	b.WriteString("\n")

	for i, row := range rows {
		b.WriteString("\n")
		for j, line := range entryLines(i, row, opts, "→") {
			if j == 0 {
				fmt.Fprintf(&b, "- **%s**\n", line)
				continue
			}
			fmt.Fprintf(&b, "  - %s\n", line)
		}
	}
	return []byte(b.String())
}

// entryLines returns the heading followed by the detail lines shared by md and pdf.
func entryLines(i int, row FlatRow, opts Options, arrow string) []string {
	layout := layoutFor(opts.Locale)
	coords := "n/a"
	if row.Lat != "" || row.Lon != "" {
		coords = row.Lat + ", " + row.Lon
	}

	return []string{
		fmt.Sprintf("#%d – %s", i+1, row.Location),
		fmt.Sprintf("Range: %s %s %s",
			layout.formatDate(row.DateStart.UTC()), arrow, layout.formatDate(row.DateEnd.UTC())),
		"Coords: " + coords,
		"Provider: " + row.Provider,
		"Fetched: " + layout.formatDateTime(row.FetchedAt.In(opts.location())),
	}
}
