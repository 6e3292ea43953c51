package web

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"time"

	"github.com/JonMunkholm/leadintake/internal/core"
)

// handleCreateLead handles POST /api/leads.
func (s *Server) handleCreateLead(w http.ResponseWriter, r *http.Request) {
	var raw core.RawLead
	if err := decodeJSON(w, r, &raw); err != nil {
		s.respondError(w, r, err)
		return
	}

	lead, err := s.service.CreateLead(r.Context(), actorFrom(r), raw)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	w.Header().Set("Location", "/api/leads/"+lead.ID.String())
	writeJSONStatus(w, http.StatusCreated, toLeadResponse(*lead))
}

// handleListLeads handles GET /api/leads?q=&city=&propertyType=&status=&timeline=&page=.
func (s *Server) handleListLeads(w http.ResponseWriter, r *http.Request) {
	page, err := s.service.ListLeads(r.Context(), parseLeadFilter(r), parseIntParam(r, "page", 1))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, toLeadPageResponse(page))
}

// handleGetLead handles GET /api/leads/{id}.
func (s *Server) handleGetLead(w http.ResponseWriter, r *http.Request) {
	id, err := parseLeadID(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	lead, err := s.service.GetLead(r.Context(), id)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, toLeadResponse(*lead))
}

// handleUpdateLead handles PUT /api/leads/{id}. The body carries the version
// token the client last saw together with the fields to change.
func (s *Server) handleUpdateLead(w http.ResponseWriter, r *http.Request) {
	id, err := parseLeadID(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	var req updateLeadRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}

	version, err := core.ParseVersion(req.Version)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	lead, err := s.service.UpdateLead(r.Context(), id, actorFrom(r), version, req.Changes)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, toLeadResponse(*lead))
}

// handleLeadHistory handles GET /api/leads/{id}/history?limit=.
func (s *Server) handleLeadHistory(w http.ResponseWriter, r *http.Request) {
	id, err := parseLeadID(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	entries, err := s.service.LeadHistory(r.Context(), id, parseIntParam(r, "limit", 0))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, map[string]any{"items": entries})
}

// handleDownloadTemplate handles GET /api/leads/template.
func (s *Server) handleDownloadTemplate(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := core.WriteCSVTemplate(&buf); err != nil {
		s.respondError(w, r, err)
		return
	}
	writeCSV(w, "leads_template.csv", buf.Bytes())
}

// handleExportLeads handles GET /api/leads/export with the list filters.
// Every matching lead is exported, not just one page.
func (s *Server) handleExportLeads(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := s.service.ExportCSV(r.Context(), &buf, parseLeadFilter(r)); err != nil {
		s.respondError(w, r, err)
		return
	}
	filename := fmt.Sprintf("leads_%s.csv", time.Now().UTC().Format("20060102_150405"))
	writeCSV(w, filename, buf.Bytes())
}

// handleImportLeads handles POST /api/leads/import. The CSV arrives either
// as the "file" part of a multipart form or as the raw request body.
//
// Row-level problems do not fail the request: the response lists them next
// to the inserted count. A file over the row cap is rejected whole, and the
// response still carries the import result explaining why.
func (s *Server) handleImportLeads(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.opts.MaxImportBytes)

	file, err := s.importBody(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	defer file.Close()

	result, err := s.service.ImportCSV(r.Context(), actorFrom(r), file)
	if err != nil {
		s.respondErrorWith(w, r, err, ErrorResponse{Result: result})
		return
	}
	writeJSON(w, result)
}

func (s *Server) importBody(r *http.Request) (io.ReadCloser, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		return r.Body, nil
	}

	if err := r.ParseMultipartForm(s.opts.MaxImportBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", errNoFile, err)
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errNoFile, err)
	}
	return file, nil
}

func writeCSV(w http.ResponseWriter, filename string, data []byte) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
