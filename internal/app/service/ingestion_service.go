package service

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/mrops-br/sales-ingestion-api/internal/app/dto"
	"github.com/mrops-br/sales-ingestion-api/internal/app/ingest"
	"github.com/mrops-br/sales-ingestion-api/internal/domain"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// IngestionLock serializes ingestion runs that share a store
type IngestionLock interface {
	Lock(ctx context.Context) (release func(), err error)
}

// IngestionService exposes the ingestion entry points: the startup file
// load, the on-demand file reload and batch submissions.
type IngestionService struct {
	runner  *BatchRunner
	datPath string
	lock    IngestionLock
	tracer  trace.Tracer
	logger  *slog.Logger
}

// NewIngestionService creates a new ingestion service
func NewIngestionService(
	runner *BatchRunner,
	datPath string,
	lock IngestionLock,
	tracer trace.Tracer,
	logger *slog.Logger,
) *IngestionService {
	return &IngestionService{
		runner:  runner,
		datPath: datPath,
		lock:    lock,
		tracer:  tracer,
		logger:  logger,
	}
}

// LoadOnStartup ingests the configured file if it exists. Failures are only
// logged: a missing or unreadable file never prevents the process from starting.
func (s *IngestionService) LoadOnStartup(ctx context.Context) {
	path := s.datPath
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	s.logger.InfoContext(ctx, "Sales file configured", slog.String("path", path))

	if _, err := os.Stat(s.datPath); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			s.logger.WarnContext(ctx, "Sales file not found, skipping startup ingestion",
				slog.String("path", path),
			)
			return
		}
		s.logger.WarnContext(ctx, "Sales file not accessible, skipping startup ingestion",
			slog.String("path", path),
			slog.String("error", err.Error()),
		)
		return
	}

	result, err := s.Reload(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "Startup ingestion failed",
			slog.String("path", path),
			slog.String("error", err.Error()),
		)
		return
	}

	s.logger.InfoContext(ctx, "Startup ingestion finished",
		slog.String("run_id", result.RunID.String()),
		slog.Int("total_success", result.TotalSuccess),
		slog.Int("total_errors", result.TotalErrors),
	)
}

// Reload ingests the configured file again. The call fails as a whole only
// when the file itself cannot be opened or read.
func (s *IngestionService) Reload(ctx context.Context) (*domain.BatchResult, error) {
	ctx, span := s.tracer.Start(ctx, "IngestionService.Reload")
	defer span.End()

	span.SetAttributes(attribute.String("ingestion.file", s.datPath))

	release, err := s.lock.Lock(ctx)
	if err != nil {
		return nil, s.fail(ctx, span, fmt.Errorf("acquire ingestion lock: %w", err))
	}
	defer release()

	f, err := os.Open(s.datPath)
	if err != nil {
		return nil, s.fail(ctx, span, fmt.Errorf("open sales file: %w", err))
	}
	defer f.Close()

	result, err := s.runner.Run(ctx, ingest.NewFileSource(f))
	if err != nil {
		return nil, s.fail(ctx, span, err)
	}

	span.SetStatus(codes.Ok, "Reload completed")
	return result, nil
}

// SubmitBatch ingests already structured items from a batch submission
func (s *IngestionService) SubmitBatch(ctx context.Context, items []dto.SaleItemRequest) (*domain.BatchResult, error) {
	ctx, span := s.tracer.Start(ctx, "IngestionService.SubmitBatch")
	defer span.End()

	span.SetAttributes(attribute.Int("ingestion.items", len(items)))

	release, err := s.lock.Lock(ctx)
	if err != nil {
		return nil, s.fail(ctx, span, fmt.Errorf("acquire ingestion lock: %w", err))
	}
	defer release()

	result, err := s.runner.Run(ctx, ingest.NewRequestSource(items))
	if err != nil {
		return nil, s.fail(ctx, span, err)
	}

	span.SetStatus(codes.Ok, "Batch completed")
	return result, nil
}

func (s *IngestionService) fail(ctx context.Context, span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	s.logger.ErrorContext(ctx, "Ingestion failed", slog.String("error", err.Error()))
	return err
}
