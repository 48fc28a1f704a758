package web

import (
	"net/http"

	"github.com/JonMunkholm/gridmap/internal/core"
	"github.com/JonMunkholm/gridmap/internal/grid"
	"github.com/go-chi/chi/v5"
)

// templateRequest is the body for creating or updating a template. Headers
// default to the first row of grid when omitted.
type templateRequest struct {
	Name       string         `json:"name"`
	Mappings   []core.Mapping `json:"mappings"`
	CSVHeaders []string       `json:"csvHeaders,omitempty"`
	Grid       grid.Grid      `json:"grid,omitempty"`
}

func (req templateRequest) headers() []string {
	if len(req.CSVHeaders) > 0 {
		return req.CSVHeaders
	}
	return grid.New(req.Grid).Header()
}

// gridRequest carries the grid a template is matched or applied against.
type gridRequest struct {
	Grid       grid.Grid `json:"grid"`
	CSVHeaders []string  `json:"csvHeaders,omitempty"`
}

// handleListTemplates returns all saved templates.
func (s *Server) handleListTemplates(w http.ResponseWriter, r *http.Request) {
	templates, err := s.service.Templates().List(r.Context())
	if err != nil {
		respondErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"templates": templates})
}

// handleCreateTemplate saves a new template.
func (s *Server) handleCreateTemplate(w http.ResponseWriter, r *http.Request) {
	var req templateRequest
	if err := decodeJSON(r, &req); err != nil {
		respondErr(w, r, err)
		return
	}

	t, err := s.service.Templates().Create(r.Context(), req.Name, req.Mappings, req.headers())
	if err != nil {
		respondErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

// handleGetTemplate returns one template.
func (s *Server) handleGetTemplate(w http.ResponseWriter, r *http.Request) {
	t, err := s.service.Templates().Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// handleUpdateTemplate replaces a template's name, mappings and headers.
func (s *Server) handleUpdateTemplate(w http.ResponseWriter, r *http.Request) {
	var req templateRequest
	if err := decodeJSON(r, &req); err != nil {
		respondErr(w, r, err)
		return
	}

	t, err := s.service.Templates().Update(r.Context(), chi.URLParam(r, "id"), req.Name, req.Mappings, req.headers())
	if err != nil {
		respondErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// handleDeleteTemplate removes a template.
func (s *Server) handleDeleteTemplate(w http.ResponseWriter, r *http.Request) {
	if err := s.service.Templates().Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondErr(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleMatchTemplates ranks saved templates against the grid's header row.
func (s *Server) handleMatchTemplates(w http.ResponseWriter, r *http.Request) {
	var req gridRequest
	if err := decodeJSON(r, &req); err != nil {
		respondErr(w, r, err)
		return
	}

	var (
		matches []core.TemplateMatch
		err     error
	)
	if len(req.CSVHeaders) > 0 {
		matches, err = s.service.Templates().Match(r.Context(), req.CSVHeaders)
	} else {
		matches, err = s.service.MatchTemplates(r.Context(), grid.New(req.Grid))
	}
	if err != nil {
		respondErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"matches": matches})
}

// handleApplyTemplate binds a template's mappings to the request grid.
func (s *Server) handleApplyTemplate(w http.ResponseWriter, r *http.Request) {
	var req gridRequest
	if err := decodeJSON(r, &req); err != nil {
		respondErr(w, r, err)
		return
	}

	mappings, err := s.service.ApplyTemplate(r.Context(), chi.URLParam(r, "id"), grid.New(req.Grid))
	if err != nil {
		respondErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"mappings": mappings})
}
