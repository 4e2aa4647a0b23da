// Package handler implements the HTTP handlers for the overtime API.
// All handlers are methods on Server; Routes mounts them on a chi router.
// Methods are split into files by resource but share the same Server struct.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/pkordes/trip-overtime/internal/domain"
)

// OvertimeServicer defines the operations the handlers depend on.
// Defining the interface here, in the consumer package, lets handler tests
// inject a mock without touching ingestion or the database.
type OvertimeServicer interface {
	Overtime(ctx context.Context, up domain.Upload, r domain.DateRange) (domain.OvertimeReport, error)
	Summary(ctx context.Context, up domain.Upload) (domain.MileageSummary, error)
	GetReport(ctx context.Context, id uuid.UUID) (domain.OvertimeReport, error)
	ListReports(ctx context.Context, p domain.PaginationParams) ([]domain.ReportSummary, int64, error)
}

// Server holds the dependencies shared by every handler.
type Server struct {
	svc     OvertimeServicer
	openapi []byte
	log     *slog.Logger
}

// NewServer constructs the Server. openapi is served verbatim at
// GET /openapi.yaml.
func NewServer(svc OvertimeServicer, openapi []byte, log *slog.Logger) *Server {
	return &Server{svc: svc, openapi: openapi, log: log}
}

// Routes returns a router with every API route mounted. Cross-cutting
// middleware is applied by the caller.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/healthz", s.GetHealth)
	r.Get("/openapi.yaml", s.GetOpenAPI)
	r.Post("/overtime", s.PostOvertime)
	r.Post("/summary", s.PostSummary)
	r.Get("/reports", s.ListReports)
	r.Get("/reports/{id}", s.GetReport)
	return r
}

// GetOpenAPI handles GET /openapi.yaml.
func (s *Server) GetOpenAPI(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/yaml")
	_, _ = w.Write(s.openapi)
}
