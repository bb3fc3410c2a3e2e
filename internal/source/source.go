// Package source reads the fixed export files the ingestion pipeline is fed
// from, either from a local directory or from an S3-compatible object store.
package source

import (
	"context"

	"go.uber.org/zap"

	"github.com/KatherineCox/anvil-portal/internal/metrics"
	"github.com/KatherineCox/anvil-portal/internal/tsv"
)

// Store fetches one named export file. A file that does not exist reports
// found=false with a nil error; every other failure is an error.
type Store interface {
	Fetch(ctx context.Context, name string) (data []byte, found bool, err error)
	Ping(ctx context.Context) error
}

// Files reads export files through a Store and applies the degrade-gracefully
// policy for absent files: log a diagnostic naming the file and treat it as
// empty data.
type Files struct {
	store   Store
	logger  *zap.Logger
	metrics *metrics.Metrics
}

func NewFiles(store Store, logger *zap.Logger, metrics *metrics.Metrics) *Files {
	return &Files{
		store:   store,
		logger:  logger,
		metrics: metrics,
	}
}

// Lines fetches a file and splits it into logical lines. An absent file
// yields an empty sequence, not an error; downstream joins then see empty
// data for it.
func (f *Files) Lines(ctx context.Context, name string) ([]string, error) {
	data, found, err := f.store.Fetch(ctx, name)
	if err != nil {
		return nil, err
	}
	if !found {
		f.logger.Warn("Export file missing, continuing with empty data", zap.String("file", name))
		f.metrics.RecordMissingFile(name)
		return nil, nil
	}

	return tsv.SplitLines(string(data)), nil
}
