package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/JonMunkholm/leadintake/internal/core"
)

// errBadRequestBody marks a JSON body that could not be decoded.
var errBadRequestBody = errors.New("malformed request body")

// parseIntParam parses a positive integer query parameter with a default.
func parseIntParam(r *http.Request, name string, defaultVal int) int {
	val := r.URL.Query().Get(name)
	if val == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(val)
	if err != nil || i < 1 {
		return defaultVal
	}
	return i
}

// parseLeadFilter reads the list and export query parameters.
func parseLeadFilter(r *http.Request) core.LeadFilter {
	q := r.URL.Query()
	return core.LeadFilter{
		Search:       q.Get("q"),
		City:         q.Get("city"),
		PropertyType: q.Get("propertyType"),
		Status:       q.Get("status"),
		Timeline:     q.Get("timeline"),
	}
}

// parseLeadID reads the {id} route parameter. A value that is not a UUID
// cannot name a lead, so it is reported as not found.
func parseLeadID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return uuid.Nil, fmt.Errorf("lead id %q: %w", chi.URLParam(r, "id"), core.ErrLeadNotFound)
	}
	return id, nil
}

// decodeJSON reads a size-capped JSON body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	body := http.MaxBytesReader(w, r.Body, maxJSONBytes)
	if err := json.NewDecoder(body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return err
		}
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: empty body", errBadRequestBody)
		}
		return fmt.Errorf("%w: %v", errBadRequestBody, err)
	}
	return nil
}

// writeJSON encodes v as a 200 JSON response.
func writeJSON(w http.ResponseWriter, v any) {
	writeJSONStatus(w, http.StatusOK, v)
}

// writeJSONStatus encodes v as JSON with the given status. Encoding errors
// are logged since the headers are already sent.
func writeJSONStatus(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode error", "error", err)
	}
}

// leadResponse is a lead as the API returns it: the stored fields plus the
// version token a client echoes back on update and a display budget.
type leadResponse struct {
	core.Lead
	Version       string `json:"version"`
	BudgetDisplay string `json:"budgetDisplay"`
}

func toLeadResponse(l core.Lead) leadResponse {
	return leadResponse{
		Lead:          l,
		Version:       l.Version(),
		BudgetDisplay: core.FormatBudget(l.BudgetMin, l.BudgetMax),
	}
}

// leadPageResponse is one page of the lead listing.
type leadPageResponse struct {
	Items      []leadResponse `json:"items"`
	Page       int            `json:"page"`
	PageSize   int            `json:"pageSize"`
	Total      int            `json:"total"`
	TotalPages int            `json:"totalPages"`
}

func toLeadPageResponse(p core.LeadPage) leadPageResponse {
	items := make([]leadResponse, len(p.Items))
	for i, l := range p.Items {
		items[i] = toLeadResponse(l)
	}
	return leadPageResponse{
		Items:      items,
		Page:       p.Page,
		PageSize:   p.PageSize,
		Total:      p.Total,
		TotalPages: p.TotalPages,
	}
}

// updateLeadRequest is the PUT /api/leads/{id} body.
type updateLeadRequest struct {
	Version string         `json:"version"`
	Changes core.LeadPatch `json:"changes"`
}
