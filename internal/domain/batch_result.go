package domain

import (
	"time"

	"github.com/google/uuid"
)

// BatchSource identifies where the records of an ingestion run came from
type BatchSource string

const (
	BatchSourceFile    BatchSource = "file"
	BatchSourceRequest BatchSource = "request"
)

const BatchCompletedMessage = "processing completed"

// BatchResult is the outcome of one ingestion run.
// TotalProcessed is always TotalSuccess + TotalErrors.
type BatchResult struct {
	RunID          uuid.UUID
	Source         BatchSource
	Message        string
	TotalProcessed int
	TotalSuccess   int
	TotalErrors    int
	Errors         []string
	Sales          []*Sale
	StartedAt      time.Time
	FinishedAt     time.Time
}

// NewBatchResult starts an empty result for a new run
func NewBatchResult(source BatchSource) *BatchResult {
	return &BatchResult{
		RunID:     uuid.New(),
		Source:    source,
		Errors:    []string{},
		Sales:     []*Sale{},
		StartedAt: time.Now().UTC(),
	}
}

// RecordSuccess counts a persisted sale
func (r *BatchResult) RecordSuccess(sale *Sale) {
	r.TotalProcessed++
	r.TotalSuccess++
	r.Sales = append(r.Sales, sale)
}

// RecordFailure counts a failed record and keeps its description
func (r *BatchResult) RecordFailure(description string) {
	r.TotalProcessed++
	r.TotalErrors++
	r.Errors = append(r.Errors, description)
}

// Finish stamps the result as complete
func (r *BatchResult) Finish() {
	r.Message = BatchCompletedMessage
	r.FinishedAt = time.Now().UTC()
}

// CreatedSales returns only the sales persisted by the run
func (r *BatchResult) CreatedSales() []*Sale {
	return r.Sales
}

// Duration reports how long the run took
func (r *BatchResult) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}
