package seeder

import (
	"archive/zip"
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/meteora/weather-history/internal/model"
)

const defaultBatchSize = 50

// Parser reads request history files. Each line holds one request as
// tab separated fields: location input, start date, end date and optional notes.
// Lines starting with # are comments.
type Parser struct {
	batchSize int
}

// ParseResult counts what a parse produced
type ParseResult struct {
	Parsed  int
	Skipped int
}

// NewParser creates a new parser instance
func NewParser(batchSize int) *Parser {
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	return &Parser{batchSize: batchSize}
}

// ParseFile streams path in batches to callback. Zip archives are read
// from their first .tsv or .txt entry.
func (p *Parser) ParseFile(path string, callback func(batch []model.CreateRequestInput) error) (ParseResult, error) {
	if strings.EqualFold(filepath.Ext(path), ".zip") {
		return p.parseFromZip(path, callback)
	}

	file, err := os.Open(path)
	if err != nil {
		return ParseResult{}, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer file.Close()

	return p.ParseReader(file, callback)
}

func (p *Parser) parseFromZip(path string, callback func(batch []model.CreateRequestInput) error) (ParseResult, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return ParseResult{}, fmt.Errorf("failed to open zip: %w", err)
	}
	defer r.Close()

	for _, f := range r.File {
		ext := strings.ToLower(filepath.Ext(f.Name))
		if ext != ".tsv" && ext != ".txt" {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return ParseResult{}, fmt.Errorf("failed to open %s in zip: %w", f.Name, err)
		}
		defer rc.Close()
		return p.ParseReader(rc, callback)
	}

	return ParseResult{}, fmt.Errorf("no history file found in %s", path)
}

// ParseReader streams reader in batches to callback. Malformed lines are skipped.
func (p *Parser) ParseReader(reader io.Reader, callback func(batch []model.CreateRequestInput) error) (ParseResult, error) {
	var result ParseResult
	scanner := bufio.NewScanner(reader)
	batch := make([]model.CreateRequestInput, 0, p.batchSize)

	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" || strings.HasPrefix(line, "#") {
			continue
		}

		in, ok := parseLine(line)
		if !ok {
			result.Skipped++
			continue
		}
		batch = append(batch, in)
		result.Parsed++

		if len(batch) >= p.batchSize {
			if err := callback(batch); err != nil {
				return result, err
			}
			batch = make([]model.CreateRequestInput, 0, p.batchSize)
		}
	}

	if err := scanner.Err(); err != nil {
		return result, fmt.Errorf("failed to read history file: %w", err)
	}

	if len(batch) > 0 {
		if err := callback(batch); err != nil {
			return result, err
		}
	}

	return result, nil
}

func parseLine(line string) (model.CreateRequestInput, bool) {
	parts := strings.Split(line, "\t")
	if len(parts) < 3 {
		return model.CreateRequestInput{}, false
	}

	in := model.CreateRequestInput{
		Input:     strings.TrimSpace(parts[0]),
		DateStart: strings.TrimSpace(parts[1]),
		DateEnd:   strings.TrimSpace(parts[2]),
	}
	if in.Input == "" || in.DateStart == "" || in.DateEnd == "" {
		return model.CreateRequestInput{}, false
	}
	if len(parts) > 3 {
		if notes := strings.TrimSpace(strings.Join(parts[3:], " ")); notes != "" {
			in.Notes = &notes
		}
	}
	return in, true
}
