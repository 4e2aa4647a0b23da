package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/pkordes/trip-overtime/internal/domain"
	"github.com/pkordes/trip-overtime/internal/export"
)

// ReportSummaryJSON is one entry of GET /reports.
type ReportSummaryJSON struct {
	ID          uuid.UUID `json:"id"`
	FileName    string    `json:"file_name"`
	ContentHash string    `json:"content_hash"`
	TotalHours  float64   `json:"total_hours"`
	Days        int       `json:"days"`
	CreatedAt   time.Time `json:"created_at"`
}

// Pagination describes the page returned by a list endpoint.
type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
}

// ReportListResponse is the body of GET /reports.
type ReportListResponse struct {
	Data       []ReportSummaryJSON `json:"data"`
	Pagination Pagination          `json:"pagination"`
}

// ListReports handles GET /reports.
// Supports ?page= and ?limit= query parameters (defaults: page=1, limit=20, max=100).
func (s *Server) ListReports(w http.ResponseWriter, r *http.Request) {
	page, err := queryInt(r, "page")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	limit, err := queryInt(r, "limit")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	params := domain.NewPaginationParams(page, limit)
	items, total, err := s.svc.ListReports(r.Context(), params)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	data := make([]ReportSummaryJSON, len(items))
	for i, it := range items {
		data[i] = ReportSummaryJSON{
			ID:          it.ID,
			FileName:    it.FileName,
			ContentHash: it.ContentHash,
			TotalHours:  it.TotalHours,
			Days:        it.Days,
			CreatedAt:   it.CreatedAt,
		}
	}
	writeJSON(w, http.StatusOK, ReportListResponse{
		Data: data,
		Pagination: Pagination{
			Page:  params.Page,
			Limit: params.Limit,
			Total: int(total),
		},
	})
}

// GetReport handles GET /reports/{id}?format=.
func (s *Server) GetReport(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, fmt.Errorf("%w: id must be a UUID", errBadRequest))
		return
	}
	format, err := export.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	report, err := s.svc.GetReport(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.renderOvertime(w, r, format, report)
}

// queryInt reads an optional positive integer query parameter.
func queryInt(r *http.Request, name string) (*int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return nil, fmt.Errorf("%w: %s must be a positive integer", domain.ErrValidation, name)
	}
	return &n, nil
}
