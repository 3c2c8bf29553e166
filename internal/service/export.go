package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/meteora/weather-history/internal/export"
	"github.com/meteora/weather-history/internal/model"
)

// ExportRequests renders the selected requests, or the most recent ones when
// ids is empty, newest first. The format is checked before any read.
func (s *Service) ExportRequests(ctx context.Context, format string, ids []string, opts export.Options) (*export.Document, error) {
	f, err := export.ParseFormat(format)
	if err != nil {
		return nil, err
	}

	var records []model.WeatherRequest
	if len(ids) > 0 {
		records, err = s.requests.ListByIDs(ctx, ids, s.exportLimit)
	} else {
		records, err = s.requests.List(ctx, s.exportLimit)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load requests for export: %w", err)
	}

	doc, err := export.Render(records, f, opts)
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.ExportsRendered.WithLabelValues(string(f)).Inc()
		s.metrics.ExportRows.Observe(float64(len(records)))
	}
	s.logger.Debug("Export rendered",
		zap.String("format", string(f)),
		zap.Int("rows", len(records)),
		zap.Int("bytes", len(doc.Body)),
	)

	return doc, nil
}
