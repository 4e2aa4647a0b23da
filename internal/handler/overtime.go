package handler

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/pkordes/trip-overtime/internal/domain"
	"github.com/pkordes/trip-overtime/internal/export"
)

// uploadField is the multipart form field carrying the trip log.
const uploadField = "file"

// PostOvertime handles POST /overtime?from=&to=&format=.
// The trip log is sent as multipart field "file".
func (s *Server) PostOvertime(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	format, err := export.ParseFormat(q.Get("format"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	dr, err := domain.ParseRange(q.Get("from"), q.Get("to"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	up, err := readUpload(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	report, err := s.svc.Overtime(r.Context(), up, dr)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.renderOvertime(w, r, format, report)
}

// PostSummary handles POST /summary?format=.
func (s *Server) PostSummary(w http.ResponseWriter, r *http.Request) {
	format, err := export.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	up, err := readUpload(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	summary, err := s.svc.Summary(r.Context(), up)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if format == export.JSON {
		writeJSON(w, http.StatusOK, export.SummaryJSON(summary))
		return
	}

	var buf bytes.Buffer
	if err := export.WriteSummary(&buf, format, summary); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeFile(w, format, downloadName(summary.FileName, "summary", format), &buf)
}

// renderOvertime writes report as JSON or as a CSV/XLSX download.
func (s *Server) renderOvertime(w http.ResponseWriter, r *http.Request, format export.Format, report domain.OvertimeReport) {
	if format == export.JSON {
		writeJSON(w, http.StatusOK, export.OvertimeJSON(report))
		return
	}

	var buf bytes.Buffer
	if err := export.WriteOvertime(&buf, format, report); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeFile(w, format, downloadName(report.FileName, "overtime", format), &buf)
}

// readUpload pulls the trip log out of the multipart body.
func readUpload(r *http.Request) (domain.Upload, error) {
	file, hdr, err := r.FormFile(uploadField)
	if err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			return domain.Upload{}, err
		case errors.Is(err, http.ErrMissingFile):
			return domain.Upload{}, fmt.Errorf("%w: multipart field %q is required", errBadRequest, uploadField)
		default:
			return domain.Upload{}, fmt.Errorf("%w: expected a multipart/form-data upload", errBadRequest)
		}
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return domain.Upload{}, err
	}
	return domain.Upload{Name: filepath.Base(hdr.Filename), Data: data}, nil
}

// writeFile sends body as an attachment.
func writeFile(w http.ResponseWriter, format export.Format, name string, body *bytes.Buffer) {
	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.WriteHeader(http.StatusOK)
	_, _ = body.WriteTo(w)
}

// downloadName derives "march-overtime.csv" from "march.xlsx".
func downloadName(source, kind string, format export.Format) string {
	base := strings.TrimSuffix(source, filepath.Ext(source))
	if base == "" {
		base = "trips"
	}
	return base + "-" + kind + "." + format.Extension()
}
