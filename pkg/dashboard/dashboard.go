// Package dashboard composes the row cache, a backing store and the query
// engine into the operations the API exposes: occupancy counts per category,
// category search, single-field updates and the full record listing.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/sw33tLie/roomdesk/pkg/cache"
	"github.com/sw33tLie/roomdesk/pkg/query"
	"github.com/sw33tLie/roomdesk/pkg/records"
	"github.com/sw33tLie/roomdesk/pkg/source"
)

var (
	// ErrForbidden is returned when a caller tries to edit a non-editable field.
	ErrForbidden = errors.New("forbidden")
	// ErrUnknownCategory is returned for category ids outside the registry.
	ErrUnknownCategory = errors.New("unknown category")
)

// Category is one fixed data range of the backing store.
type Category struct {
	ID      string
	Label   string
	Variant records.Variant
	Sheet   string // empty means the first sheet
	Range   string
}

// EditPolicy names the single editable column of a category. When
// RequireField is set, the caller must name that column explicitly.
type EditPolicy struct {
	Column       string
	RequireField bool
}

// DefaultCategories returns the NBOT and BA categories.
func DefaultCategories() []Category {
	return []Category{
		{ID: "nbot", Label: "NBOT", Variant: records.VariantDefault, Sheet: "", Range: "A2:K"},
		{ID: "ba", Label: "BA", Variant: records.VariantBA, Sheet: "BA", Range: "B2:M"},
	}
}

// DefaultPolicies returns the edit policy of each default category: the
// reason column in both layouts.
func DefaultPolicies() map[string]EditPolicy {
	return map[string]EditPolicy{
		"nbot": {Column: "K", RequireField: true},
		"ba":   {Column: "M"},
	}
}

// Summary is the occupancy of one category, recomputed on every call.
type Summary struct {
	ID        string `json:"room_id"`
	Label     string `json:"label"`
	Occupancy int    `json:"occupancy"`
}

// Auditor records accepted writes. *storage.DB implements it.
type Auditor interface {
	LogWrite(ctx context.Context, category, sheet, rowRef, column, value string) error
}

type Config struct {
	Source     source.Source
	Cache      *cache.Cache
	Categories []Category            // defaults to DefaultCategories()
	Policies   map[string]EditPolicy // defaults to DefaultPolicies()
	Auditor    Auditor               // optional
	Log        source.Logger         // optional
}

// Service is safe for concurrent use; all shared state lives in the cache.
type Service struct {
	src        source.Source
	cache      *cache.Cache
	categories []Category
	byID       map[string]Category
	policies   map[string]EditPolicy
	auditor    Auditor
	log        source.Logger
}

func New(cfg Config) (*Service, error) {
	if cfg.Source == nil {
		return nil, errors.New("dashboard: source is required")
	}
	if cfg.Cache == nil {
		cfg.Cache = cache.New(cache.DefaultTTL)
	}
	if len(cfg.Categories) == 0 {
		cfg.Categories = DefaultCategories()
	}
	if cfg.Policies == nil {
		cfg.Policies = DefaultPolicies()
	}
	if cfg.Log == nil {
		cfg.Log = source.NopLogger{}
	}

	byID := make(map[string]Category, len(cfg.Categories))
	for _, c := range cfg.Categories {
		if _, dup := byID[c.ID]; dup {
			return nil, fmt.Errorf("dashboard: duplicate category %q", c.ID)
		}
		if _, err := source.ParseRange(c.Range); err != nil {
			return nil, fmt.Errorf("dashboard: category %q: %w", c.ID, err)
		}
		byID[c.ID] = c
	}

	return &Service{
		src:        cfg.Source,
		cache:      cfg.Cache,
		categories: cfg.Categories,
		byID:       byID,
		policies:   cfg.Policies,
		auditor:    cfg.Auditor,
		log:        cfg.Log,
	}, nil
}

// Categories returns the configured categories in display order.
func (s *Service) Categories() []Category {
	out := make([]Category, len(s.categories))
	copy(out, s.categories)
	return out
}

// Category looks up a category by id.
func (s *Service) Category(id string) (Category, error) {
	c, ok := s.byID[id]
	if !ok {
		return Category{}, fmt.Errorf("%w: %q", ErrUnknownCategory, id)
	}
	return c, nil
}

// InitDashboard counts the complete rows of every category. Categories are
// fetched concurrently; any failure fails the whole call.
func (s *Service) InitDashboard(ctx context.Context) ([]Summary, error) {
	summaries := make([]Summary, len(s.categories))
	errs := make([]error, len(s.categories))

	var wg sync.WaitGroup
	for i, c := range s.categories {
		wg.Add(1)
		go func(i int, c Category) {
			defer wg.Done()
			rows, err := s.rows(ctx, c)
			if err != nil {
				errs[i] = err
				return
			}
			summaries[i] = Summary{ID: c.ID, Label: c.Label, Occupancy: records.CountComplete(c.Variant, rows)}
		}(i, c)
	}
	wg.Wait()

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return summaries, nil
}

// EnterCategory searches the records of one category.
func (s *Service) EnterCategory(ctx context.Context, id string, q query.Query) (query.Result, error) {
	recs, err := s.ListAllRecords(ctx, id)
	if err != nil {
		return query.Result{}, err
	}
	res := query.Search(recs, q)
	s.log.Debugf("[%s] search %q date=%v status=%s: %d matches", id, q.Text, !q.DateFilter.IsZero(), q.Status, res.TotalRecords)
	return res, nil
}

// ListAllRecords returns every normalized record of a category, unfiltered.
func (s *Service) ListAllRecords(ctx context.Context, id string) ([]records.Record, error) {
	c, err := s.Category(id)
	if err != nil {
		return nil, err
	}
	rows, err := s.rows(ctx, c)
	if err != nil {
		return nil, err
	}
	return records.Normalize(c.Variant, rows), nil
}

// UpdateField writes value into the editable column of row rowRef. field is
// the column the caller believes it is editing; it is checked only when the
// category's policy requires it. A Forbidden update never reaches the store.
// Every accepted write invalidates the category's cache entry, whether or not
// rowRef still points at the row the caller saw.
func (s *Service) UpdateField(ctx context.Context, id, rowRef, field, value string) error {
	c, err := s.Category(id)
	if err != nil {
		return err
	}
	policy, ok := s.policies[id]
	if !ok || policy.Column == "" {
		return fmt.Errorf("%w: category %q has no editable field", ErrForbidden, id)
	}
	if policy.RequireField && !strings.EqualFold(strings.TrimSpace(field), policy.Column) {
		return fmt.Errorf("%w: edit only allowed on column %s for %s", ErrForbidden, policy.Column, c.Label)
	}

	if err := s.src.WriteCell(ctx, c.Sheet, rowRef, policy.Column, value); err != nil {
		return err
	}
	s.cache.Invalidate(c.ID)
	s.log.Infof("Audit: [%s] Row %s updated to %q", c.ID, rowRef, value)

	if s.auditor != nil {
		if err := s.auditor.LogWrite(ctx, c.ID, c.Sheet, rowRef, policy.Column, value); err != nil {
			s.log.Warnf("Could not record audit entry for [%s] row %s: %v", c.ID, rowRef, err)
		}
	}
	return nil
}

// Invalidate drops the cached rows of a category.
func (s *Service) Invalidate(id string) {
	s.cache.Invalidate(id)
}

func (s *Service) rows(ctx context.Context, c Category) ([]records.RawRow, error) {
	rows, hit, err := s.cache.Fetch(ctx, c.ID, func(ctx context.Context) ([]records.RawRow, error) {
		return s.src.FetchRows(ctx, c.Sheet, c.Range)
	})
	if err != nil {
		s.log.Warnf("Could not fetch rows for %s: %v", c.ID, err)
		return nil, err
	}
	if hit {
		s.log.Debugf("Cache hit for %s (%d rows)", c.ID, len(rows))
	} else {
		s.log.Debugf("Cache miss for %s, fetched %d rows", c.ID, len(rows))
	}
	return rows, nil
}
