package seeder

import (
	"context"

	"go.uber.org/zap"

	"github.com/meteora/weather-history/internal/model"
)

// RequestCreator stores one weather request
type RequestCreator interface {
	CreateRequest(ctx context.Context, in model.CreateRequestInput) (*model.WeatherRequest, error)
}

// Summary reports the outcome of an import
type Summary struct {
	Created int
	Failed  int
	Skipped int
}

// Importer replays a history file through the request lifecycle
type Importer struct {
	parser  *Parser
	creator RequestCreator
	logger  *zap.Logger
}

// NewImporter creates a new importer
func NewImporter(parser *Parser, creator RequestCreator, logger *zap.Logger) *Importer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Importer{parser: parser, creator: creator, logger: logger}
}

// Import creates a request for every line of path. Records that fail to
// resolve or fetch are logged and counted; only a cancelled context stops
// the import early.
func (i *Importer) Import(ctx context.Context, path string) (Summary, error) {
	var summary Summary

	result, err := i.parser.ParseFile(path, func(batch []model.CreateRequestInput) error {
		for _, in := range batch {
			if err := ctx.Err(); err != nil {
				return err
			}
			if _, err := i.creator.CreateRequest(ctx, in); err != nil {
				summary.Failed++
				i.logger.Warn("Failed to import request",
					zap.String("input", in.Input),
					zap.String("date_start", in.DateStart),
					zap.Error(err),
				)
				continue
			}
			summary.Created++
		}
		i.logger.Debug("Imported batch", zap.Int("size", len(batch)), zap.Int("created", summary.Created))
		return nil
	})
	summary.Skipped = result.Skipped
	if err != nil {
		return summary, err
	}

	i.logger.Info("History import finished",
		zap.Int("created", summary.Created),
		zap.Int("failed", summary.Failed),
		zap.Int("skipped", summary.Skipped),
	)
	return summary, nil
}
