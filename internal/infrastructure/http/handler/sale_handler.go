package handler

import (
	"encoding/json"
	"errors"
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/mrops-br/sales-ingestion-api/internal/app/dto"
	"github.com/mrops-br/sales-ingestion-api/internal/app/service"
	"github.com/mrops-br/sales-ingestion-api/internal/infrastructure/http/response"
)

// SaleHandler handles HTTP requests for sales ingestion
type SaleHandler struct {
	ingestion *service.IngestionService
	queries   *service.SaleQueryService
	logger    *slog.Logger
}

// NewSaleHandler creates a new sale handler
func NewSaleHandler(ingestion *service.IngestionService, queries *service.SaleQueryService, logger *slog.Logger) *SaleHandler {
	return &SaleHandler{
		ingestion: ingestion,
		queries:   queries,
		logger:    logger,
	}
}

// SubmitBatch handles POST /sales
func (h *SaleHandler) SubmitBatch(w http.ResponseWriter, r *http.Request) {
	var items []dto.SaleItemRequest
	if err := json.NewDecoder(r.Body).Decode(&items); err != nil {
		h.logger.ErrorContext(r.Context(), "Failed to decode request body",
			slog.String("error", err.Error()),
		)
		response.Error(w, r, http.StatusBadRequest, err)
		return
	}

	result, err := h.ingestion.SubmitBatch(r.Context(), items)
	if err != nil {
		response.Error(w, r, http.StatusInternalServerError, err)
		return
	}

	response.JSON(w, http.StatusOK, dto.ToBatchResultResponse(result, false))
}

// Reload handles POST /sales/reload
func (h *SaleHandler) Reload(w http.ResponseWriter, r *http.Request) {
	result, err := h.ingestion.Reload(r.Context())
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			response.Error(w, r, http.StatusNotFound, err)
		} else {
			response.Error(w, r, http.StatusInternalServerError, err)
		}
		return
	}

	response.JSON(w, http.StatusOK, dto.ToBatchResultResponse(result, true))
}

// ListSales handles GET /sales
func (h *SaleHandler) ListSales(w http.ResponseWriter, r *http.Request) {
	sales, err := h.queries.ListSales(r.Context())
	if err != nil {
		response.Error(w, r, http.StatusInternalServerError, err)
		return
	}

	response.JSON(w, http.StatusOK, sales)
}
