package web

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/JonMunkholm/gridmap/internal/core"
	"github.com/JonMunkholm/gridmap/internal/grid"
	"github.com/JonMunkholm/gridmap/internal/textfix"
)

// multipartOverhead is the allowance for form boundaries and fields on top
// of the configured file size.
const multipartOverhead = 1 << 20

// engineRequest is the body of every engine endpoint.
type engineRequest struct {
	Grid     grid.Grid      `json:"grid"`
	Mappings []core.Mapping `json:"mappings"`
	Limit    int            `json:"limit,omitempty"`
}

// bound returns the request mappings over the request grid. Mappings sent
// as bounds only (no selected cells) are bound to the grid.
func (req engineRequest) bound() ([]core.Mapping, grid.Grid) {
	g := grid.New(req.Grid)
	mappings := make([]core.Mapping, len(req.Mappings))
	for i, m := range req.Mappings {
		if len(m.Region.Cells) == 0 {
			m = m.Rebind(g)
		}
		mappings[i] = m
	}
	return mappings, g
}

type gridResponse struct {
	Rows   int       `json:"rows"`
	Cols   int       `json:"cols"`
	Grid   grid.Grid `json:"grid"`
	Header []string  `json:"header"`
}

type generateResponse struct {
	Count  int          `json:"count"`
	Tuples []core.Tuple `json:"tuples"`
}

type applyRequest struct {
	Grid         grid.Grid         `json:"grid"`
	Replacements map[string]string `json:"replacements"`
}

// handleHealth reports liveness.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleStatus reports engine capacity and template availability.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"limiter":   s.service.LimiterStatus(),
		"templates": s.service.Templates().Available(),
	})
}

// handleUploadGrid parses an uploaded CSV into a grid.
func (s *Server) handleUploadGrid(w http.ResponseWriter, r *http.Request) {
	maxSize := s.cfg.Engine.MaxFileSize
	r.Body = http.MaxBytesReader(w, r.Body, maxSize+multipartOverhead)

	file, _, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			respondErr(w, r, fmt.Errorf("%w: exceeds %d bytes", grid.ErrFileTooLarge, maxSize))
		case errors.Is(err, http.ErrMissingFile):
			respondErr(w, r, errNoFile)
		default:
			respondErr(w, r, fmt.Errorf("%w: %v", errInvalidBody, err))
		}
		return
	}
	defer file.Close()

	charset := strings.TrimSpace(r.FormValue("charset"))
	if charset == "" {
		charset = s.cfg.Engine.Charset
	}

	g, err := grid.Read(file, grid.ReadOptions{MaxSize: maxSize, Charset: charset})
	if err != nil {
		respondErr(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, gridResponse{
		Rows:   g.Rows(),
		Cols:   g.Cols(),
		Grid:   g,
		Header: g.Header(),
	})
}

// handleValidate checks a mapping set. When a grid is sent, bounds-only
// mappings are bound to it first, as for generate.
func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	var req engineRequest
	if err := decodeJSON(r, &req); err != nil {
		respondErr(w, r, err)
		return
	}

	mappings := req.Mappings
	if len(req.Grid) > 0 {
		mappings, _ = req.bound()
	}
	result, err := s.service.Validate(r.Context(), mappings)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// handlePreview returns summary counts and sample tuples.
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	var req engineRequest
	if err := decodeJSON(r, &req); err != nil {
		respondErr(w, r, err)
		return
	}

	mappings, g := req.bound()
	result, err := s.service.Preview(r.Context(), mappings, g, req.Limit)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// handleGenerate returns every tuple of the mapping set.
func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req engineRequest
	if err := decodeJSON(r, &req); err != nil {
		respondErr(w, r, err)
		return
	}

	mappings, g := req.bound()
	tuples, err := s.service.Generate(r.Context(), mappings, g)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	if tuples == nil {
		tuples = []core.Tuple{}
	}
	writeJSON(w, http.StatusOK, generateResponse{Count: len(tuples), Tuples: tuples})
}

// handleScanEncoding reports encoding issues in the mapped dimension cells.
func (s *Server) handleScanEncoding(w http.ResponseWriter, r *http.Request) {
	var req engineRequest
	if err := decodeJSON(r, &req); err != nil {
		respondErr(w, r, err)
		return
	}

	mappings, g := req.bound()
	var issues []textfix.Issue
	err := s.service.Run(r.Context(), func() error {
		issues = s.auditor.Scan(g, mappings)
		return nil
	})
	if err != nil {
		respondErr(w, r, err)
		return
	}
	if issues == nil {
		issues = []textfix.Issue{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"issues": issues})
}

// handleApplyEncoding applies replacements to every grid cell.
func (s *Server) handleApplyEncoding(w http.ResponseWriter, r *http.Request) {
	var req applyRequest
	if err := decodeJSON(r, &req); err != nil {
		respondErr(w, r, err)
		return
	}

	var fixed grid.Grid
	err := s.service.Run(r.Context(), func() error {
		fixed = textfix.Apply(grid.New(req.Grid), req.Replacements)
		return nil
	})
	if err != nil {
		respondErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"grid": fixed})
}
