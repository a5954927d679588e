package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/mrops-br/sales-ingestion-api/internal/app/ingest"
	"github.com/mrops-br/sales-ingestion-api/internal/domain"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// BatchRunner drives the items of a source through resolution,
// materialization and persistence, one at a time and in source order.
type BatchRunner struct {
	resolver         *EntityResolver
	materializer     *Materializer
	sales            domain.SaleRepository
	tracer           trace.Tracer
	logger           *slog.Logger
	recordsProcessed metric.Int64Counter
	runDuration      metric.Float64Histogram
}

// NewBatchRunner creates a new batch runner
func NewBatchRunner(
	resolver *EntityResolver,
	materializer *Materializer,
	sales domain.SaleRepository,
	tracer trace.Tracer,
	meter metric.Meter,
	logger *slog.Logger,
) *BatchRunner {
	recordsProcessed, _ := meter.Int64Counter(
		"ingestion.records.processed",
		metric.WithDescription("Total number of sale records processed"),
	)

	runDuration, _ := meter.Float64Histogram(
		"ingestion.run.duration",
		metric.WithDescription("Duration of an ingestion run in milliseconds"),
		metric.WithUnit("ms"),
	)

	return &BatchRunner{
		resolver:         resolver,
		materializer:     materializer,
		sales:            sales,
		tracer:           tracer,
		logger:           logger,
		recordsProcessed: recordsProcessed,
		runDuration:      runDuration,
	}
}

// Run processes every item of src. A failing item is recorded in the result
// and never stops the run; only a failure of the source itself is returned
// as an error, in which case there is no result.
func (r *BatchRunner) Run(ctx context.Context, src ingest.Source) (*domain.BatchResult, error) {
	result := domain.NewBatchResult(src.Kind())

	ctx, span := r.tracer.Start(ctx, "BatchRunner.Run")
	defer span.End()

	span.SetAttributes(
		attribute.String("ingestion.run_id", result.RunID.String()),
		attribute.String("ingestion.source", string(result.Source)),
	)

	logger := r.logger.With(
		slog.String("run_id", result.RunID.String()),
		slog.String("source", string(result.Source)),
	)
	logger.InfoContext(ctx, "Ingestion run started")

	for {
		item, err := src.Next(ctx)
		if err == io.EOF {
			break
		}
		if err != nil {
			err = fmt.Errorf("read %s source: %w", result.Source, err)
			span.RecordError(err)
			span.SetStatus(codes.Error, "Source failed")
			logger.ErrorContext(ctx, "Ingestion run aborted",
				slog.String("error", err.Error()),
				slog.Int("processed", result.TotalProcessed),
			)
			return nil, err
		}

		sale, err := r.process(ctx, item)
		if err != nil {
			description := fmt.Sprintf("%s (product ID: %s, customer ID: %s): %v",
				item.Ref, item.ProductID, item.CustomerID, err)
			result.RecordFailure(description)
			r.count(ctx, result.Source, "failure")
			logger.WarnContext(ctx, "Failed to ingest record",
				slog.String("ref", item.Ref),
				slog.String("product_id", item.ProductID),
				slog.String("customer_id", item.CustomerID),
				slog.String("error", err.Error()),
			)
			continue
		}

		result.RecordSuccess(sale)
		r.count(ctx, result.Source, "success")
	}

	result.Finish()

	r.runDuration.Record(ctx, float64(result.Duration().Milliseconds()),
		metric.WithAttributes(attribute.String("source", string(result.Source))),
	)

	span.SetAttributes(
		attribute.Int("ingestion.total_processed", result.TotalProcessed),
		attribute.Int("ingestion.total_success", result.TotalSuccess),
		attribute.Int("ingestion.total_errors", result.TotalErrors),
	)
	span.SetStatus(codes.Ok, "Ingestion run completed")

	logger.InfoContext(ctx, "Ingestion run completed",
		slog.Int("total_processed", result.TotalProcessed),
		slog.Int("total_success", result.TotalSuccess),
		slog.Int("total_errors", result.TotalErrors),
		slog.Duration("duration", result.Duration()),
	)

	return result, nil
}

func (r *BatchRunner) process(ctx context.Context, item *ingest.Item) (*domain.Sale, error) {
	if item.Err != nil {
		return nil, item.Err
	}
	rec := item.Record

	product, err := r.resolver.ResolveProduct(ctx, rec.ProductID, rec.ProductName, rec.ProductPrice)
	if err != nil {
		return nil, err
	}

	customer, err := r.resolver.ResolveCustomer(ctx, rec.CustomerID, rec.CustomerName)
	if err != nil {
		return nil, err
	}

	sale := r.materializer.Materialize(ctx, rec, product, customer)
	if err := r.sales.Create(ctx, sale); err != nil {
		return nil, fmt.Errorf("save sale: %w", err)
	}

	return sale, nil
}

func (r *BatchRunner) count(ctx context.Context, source domain.BatchSource, outcome string) {
	r.recordsProcessed.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("source", string(source)),
			attribute.String("result", outcome),
		),
	)
}

