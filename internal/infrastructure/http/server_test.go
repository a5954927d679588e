package http_test

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/mrops-br/sales-ingestion-api/internal/app/service"
	"github.com/mrops-br/sales-ingestion-api/internal/infrastructure/config"
	server "github.com/mrops-br/sales-ingestion-api/internal/infrastructure/http"
	"github.com/mrops-br/sales-ingestion-api/internal/infrastructure/http/handler"
	"github.com/mrops-br/sales-ingestion-api/internal/infrastructure/lock"
	"github.com/mrops-br/sales-ingestion-api/internal/infrastructure/repository/memory"
	"github.com/mrops-br/sales-ingestion-api/internal/infrastructure/telemetry"
)

func newTestServer(t *testing.T, cfg config.ServerConfig) http.Handler {
	t.Helper()

	telem := &telemetry.Telemetry{
		TracerProvider: sdktrace.NewTracerProvider(),
		MeterProvider:  sdkmetric.NewMeterProvider(),
		Logger:         slog.New(slog.DiscardHandler),
	}
	tracer := telem.TracerProvider.Tracer("test")
	meter := telem.MeterProvider.Meter("test")
	logger := telem.Logger

	products := memory.NewProductRepository(tracer, logger)
	customers := memory.NewCustomerRepository(tracer, logger)
	sales := memory.NewSaleRepository(tracer, logger)

	resolver := service.NewEntityResolver(products, customers, tracer, meter, logger)
	runner := service.NewBatchRunner(resolver, service.NewMaterializer(time.Now, logger), sales, tracer, meter, logger)
	ingestion := service.NewIngestionService(runner, filepath.Join(t.TempDir(), "missing.dat"), lock.NewLocal(), tracer, logger)
	queries := service.NewSaleQueryService(sales, tracer, logger)

	h := handler.NewSaleHandler(ingestion, queries, logger)
	return server.NewServer(&cfg, h, logger, telem).Handler()
}

func TestServer_Health(t *testing.T) {
	srv := newTestServer(t, config.ServerConfig{CORSAllowedOrigins: []string{"*"}})

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
}

func TestServer_Routes(t *testing.T) {
	srv := newTestServer(t, config.ServerConfig{CORSAllowedOrigins: []string{"*"}})

	tests := []struct {
		method string
		path   string
		want   int
	}{
		{http.MethodGet, "/sales", http.StatusOK},
		{http.MethodPost, "/sales/reload", http.StatusNotFound},
		{http.MethodGet, "/sales/reload", http.StatusMethodNotAllowed},
		{http.MethodDelete, "/sales", http.StatusMethodNotAllowed},
		{http.MethodGet, "/products", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			srv.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestServer_ReloadRateLimited(t *testing.T) {
	srv := newTestServer(t, config.ServerConfig{
		CORSAllowedOrigins: []string{"*"},
		ReloadRatePerSec:   0.001,
		ReloadBurst:        2,
	})

	codes := make([]int, 0, 3)
	for range 3 {
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/sales/reload", nil))
		codes = append(codes, rec.Code)
	}

	assert.Equal(t, []int{http.StatusNotFound, http.StatusNotFound, http.StatusTooManyRequests}, codes)

	// other routes share no bucket with reload
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/sales", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestServer_CORS(t *testing.T) {
	srv := newTestServer(t, config.ServerConfig{CORSAllowedOrigins: []string{"https://dashboard.example.com"}})

	req := httptest.NewRequest(http.MethodOptions, "/sales", nil)
	req.Header.Set("Origin", "https://dashboard.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	require.Less(t, rec.Code, 300)
	assert.Equal(t, "https://dashboard.example.com", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/sales", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}
