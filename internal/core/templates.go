package core

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/JonMunkholm/gridmap/internal/grid"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
)

// TemplateMatchThreshold is the minimum score for a template to be considered a match.
const TemplateMatchThreshold = 0.7

// pgUniqueViolation is the SQLSTATE for unique_violation.
const pgUniqueViolation = "23505"

const templateSchema = `
CREATE TABLE IF NOT EXISTS mapping_templates (
	id          UUID PRIMARY KEY,
	name        TEXT NOT NULL,
	mappings    JSONB NOT NULL,
	csv_headers JSONB NOT NULL DEFAULT '[]',
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
	CONSTRAINT mapping_templates_name_unique UNIQUE (name)
)`

const templateColumns = `id, name, mappings, csv_headers, created_at, updated_at`

// MappingTemplate is a saved mapping set, reusable on grids with the same layout.
type MappingTemplate struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Mappings   []Mapping `json:"mappings"`
	CSVHeaders []string  `json:"csvHeaders"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// Bind returns the template's mappings re-bound to g.
func (t *MappingTemplate) Bind(g grid.Grid) []Mapping {
	out := make([]Mapping, len(t.Mappings))
	for i, m := range t.Mappings {
		out[i] = m.Rebind(g)
	}
	return out
}

// TemplateMatch represents a template that matches CSV headers.
type TemplateMatch struct {
	Template   MappingTemplate `json:"template"`
	MatchScore float64         `json:"matchScore"`
}

// TemplateStore persists mapping templates in PostgreSQL.
// A nil db makes every method return ErrTemplatesUnavailable.
type TemplateStore struct {
	db DBTX
}

// NewTemplateStore creates a store over db. db may be nil.
func NewTemplateStore(db DBTX) *TemplateStore {
	return &TemplateStore{db: db}
}

// Available reports whether the store is backed by a database.
func (s *TemplateStore) Available() bool {
	return s != nil && s.db != nil
}

// EnsureSchema creates the templates table if it does not exist.
func (s *TemplateStore) EnsureSchema(ctx context.Context) error {
	if !s.Available() {
		return ErrTemplatesUnavailable
	}
	if _, err := s.db.Exec(ctx, templateSchema); err != nil {
		return fmt.Errorf("create templates table: %w", err)
	}
	return nil
}

// Create saves a new template.
func (s *TemplateStore) Create(ctx context.Context, name string, mappings []Mapping, csvHeaders []string) (*MappingTemplate, error) {
	if !s.Available() {
		return nil, ErrTemplatesUnavailable
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrTemplateNameRequired
	}

	mappingsJSON, headersJSON, err := marshalTemplate(mappings, csvHeaders)
	if err != nil {
		return nil, err
	}

	id := uuid.New()
	row := s.db.QueryRow(ctx,
		`INSERT INTO mapping_templates (id, name, mappings, csv_headers)
		VALUES ($1, $2, $3, $4)
		RETURNING `+templateColumns,
		pgtype.UUID{Bytes: id, Valid: true}, name, mappingsJSON, headersJSON)

	t, err := scanTemplate(row)
	if err != nil {
		return nil, templateError("create", name, err)
	}

	slog.Debug("template created", "id", t.ID, "name", t.Name, "mappings", len(t.Mappings))
	return t, nil
}

// Get retrieves a template by ID.
func (s *TemplateStore) Get(ctx context.Context, id string) (*MappingTemplate, error) {
	if !s.Available() {
		return nil, ErrTemplatesUnavailable
	}
	uid, err := parseTemplateID(id)
	if err != nil {
		return nil, err
	}

	row := s.db.QueryRow(ctx,
		`SELECT `+templateColumns+` FROM mapping_templates WHERE id = $1`, uid)
	t, err := scanTemplate(row)
	if err != nil {
		return nil, templateError("get", id, err)
	}
	return t, nil
}

// List returns every template ordered by name.
func (s *TemplateStore) List(ctx context.Context) ([]MappingTemplate, error) {
	if !s.Available() {
		return nil, ErrTemplatesUnavailable
	}

	rows, err := s.db.Query(ctx, `SELECT `+templateColumns+` FROM mapping_templates ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	defer rows.Close()

	templates := make([]MappingTemplate, 0)
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			slog.Warn("skipping unreadable template", "error", err)
			continue
		}
		templates = append(templates, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}

	return templates, nil
}

// Update replaces a template's name, mappings and headers.
func (s *TemplateStore) Update(ctx context.Context, id, name string, mappings []Mapping, csvHeaders []string) (*MappingTemplate, error) {
	if !s.Available() {
		return nil, ErrTemplatesUnavailable
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrTemplateNameRequired
	}
	uid, err := parseTemplateID(id)
	if err != nil {
		return nil, err
	}

	mappingsJSON, headersJSON, err := marshalTemplate(mappings, csvHeaders)
	if err != nil {
		return nil, err
	}

	row := s.db.QueryRow(ctx,
		`UPDATE mapping_templates
		SET name = $2, mappings = $3, csv_headers = $4, updated_at = now()
		WHERE id = $1
		RETURNING `+templateColumns,
		uid, name, mappingsJSON, headersJSON)

	t, err := scanTemplate(row)
	if err != nil {
		return nil, templateError("update", id, err)
	}
	return t, nil
}

// Delete removes a template.
func (s *TemplateStore) Delete(ctx context.Context, id string) error {
	if !s.Available() {
		return ErrTemplatesUnavailable
	}
	uid, err := parseTemplateID(id)
	if err != nil {
		return err
	}

	tag, err := s.db.Exec(ctx, `DELETE FROM mapping_templates WHERE id = $1`, uid)
	if err != nil {
		return fmt.Errorf("delete template: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", ErrTemplateNotFound, id)
	}
	return nil
}

// Match finds templates whose headers match csvHeaders, best first.
func (s *TemplateStore) Match(ctx context.Context, csvHeaders []string) ([]TemplateMatch, error) {
	templates, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	return rankTemplates(templates, csvHeaders), nil
}

// rankTemplates scores templates against csvHeaders and keeps those at or
// above TemplateMatchThreshold, sorted by score descending.
func rankTemplates(templates []MappingTemplate, csvHeaders []string) []TemplateMatch {
	matches := make([]TemplateMatch, 0)
	for _, t := range templates {
		score := matchTemplateHeaders(csvHeaders, t.CSVHeaders)
		if score >= TemplateMatchThreshold {
			matches = append(matches, TemplateMatch{
				Template:   t,
				MatchScore: score,
			})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].MatchScore > matches[j].MatchScore
	})

	return matches
}

// matchTemplateHeaders calculates how well CSV headers match template headers.
func matchTemplateHeaders(csvHeaders, templateHeaders []string) float64 {
	if len(templateHeaders) == 0 {
		return 0
	}

	csvSet := make(map[string]bool)
	for _, h := range csvHeaders {
		csvSet[strings.ToLower(strings.TrimSpace(h))] = true
	}

	matched := 0
	for _, h := range templateHeaders {
		if csvSet[strings.ToLower(strings.TrimSpace(h))] {
			matched++
		}
	}

	return float64(matched) / float64(len(templateHeaders))
}

func parseTemplateID(id string) (pgtype.UUID, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return pgtype.UUID{}, fmt.Errorf("%w: invalid template ID %q", ErrTemplateNotFound, id)
	}
	return pgtype.UUID{Bytes: uid, Valid: true}, nil
}

func marshalTemplate(mappings []Mapping, csvHeaders []string) ([]byte, []byte, error) {
	if mappings == nil {
		mappings = []Mapping{}
	}
	if csvHeaders == nil {
		csvHeaders = []string{}
	}

	mappingsJSON, err := json.Marshal(mappings)
	if err != nil {
		return nil, nil, fmt.Errorf("marshal mappings: %w", err)
	}
	headersJSON, err := json.Marshal(csvHeaders)
	if err != nil {
		return nil, nil, fmt.Errorf("marshal headers: %w", err)
	}
	return mappingsJSON, headersJSON, nil
}

// templateError maps driver errors to the package's template sentinels.
func templateError(op, ref string, err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%w: %s", ErrTemplateNotFound, ref)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return fmt.Errorf("%w: %s", ErrTemplateExists, ref)
	}
	return fmt.Errorf("%s template: %w", op, err)
}

// scanTemplate reads one row in templateColumns order.
func scanTemplate(row pgx.Row) (*MappingTemplate, error) {
	var (
		id           pgtype.UUID
		t            MappingTemplate
		mappingsJSON []byte
		headersJSON  []byte
	)
	if err := row.Scan(&id, &t.Name, &mappingsJSON, &headersJSON, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}

	if id.Valid {
		t.ID = uuid.UUID(id.Bytes).String()
	}
	if err := json.Unmarshal(mappingsJSON, &t.Mappings); err != nil {
		return nil, fmt.Errorf("unmarshal mappings: %w", err)
	}
	if err := json.Unmarshal(headersJSON, &t.CSVHeaders); err != nil {
		return nil, fmt.Errorf("unmarshal headers: %w", err)
	}
	return &t, nil
}
