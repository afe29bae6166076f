package query

import (
	"context"
	"log/slog"

	"github.com/salmonumbrella/folio-cli/internal/api"
	"github.com/salmonumbrella/folio-cli/internal/resource"
	"github.com/salmonumbrella/folio-cli/internal/table"
)

// Backend is the part of the API client the service needs. *api.Client
// satisfies it.
type Backend interface {
	List(ctx context.Context, path string, opts api.ListOptions) (*api.Page, error)
	Get(ctx context.Context, path, id string) (table.Row, error)
	Create(ctx context.Context, path string, body map[string]any) (table.Row, error)
	Update(ctx context.Context, path, id string, body map[string]any) (table.Row, error)
	Delete(ctx context.Context, path, id string) error
}

// Service reads resources through the cache and drops a resource's cached
// pages after every successful write to it.
type Service struct {
	backend Backend
	cache   *Cache
}

// NewService returns a service over b. A nil cache disables caching.
func NewService(b Backend, c *Cache) *Service {
	return &Service{backend: b, cache: c}
}

// Normalize fills the page size from the resource and drops options the
// resource does not support. Local resources are always fetched whole.
func Normalize(res *resource.Resource, opts api.ListOptions) api.ListOptions {
	if res.Paging == table.ModeLocal {
		opts.Page, opts.PerPage = 0, 0
	} else {
		opts.Page = max(opts.Page, 1)
		if opts.PerPage <= 0 {
			opts.PerPage = res.PerPage
		}
	}
	if !res.Searchable {
		opts.Search = ""
	}
	return opts
}

// List returns one page of res.
func (s *Service) List(ctx context.Context, res *resource.Resource, opts api.ListOptions) (*api.Page, error) {
	opts = Normalize(res, opts)
	fetch := func(ctx context.Context) (*api.Page, error) {
		return s.backend.List(ctx, res.Path, opts)
	}
	if s.cache == nil {
		return fetch(ctx)
	}
	key := Key{Resource: res.Name, Page: opts.Page, PerPage: opts.PerPage, Search: opts.Search}
	return s.cache.Fetch(ctx, key, fetch)
}

// All follows pages until the last one and returns every row.
func (s *Service) All(ctx context.Context, res *resource.Resource, opts api.ListOptions) ([]table.Row, error) {
	opts.Page = 1
	var rows []table.Row
	for {
		page, err := s.List(ctx, res, opts)
		if err != nil {
			return nil, err
		}
		rows = append(rows, page.Data...)
		if res.Paging == table.ModeLocal || !page.Enveloped || len(page.Data) == 0 || opts.Page >= page.Meta.TotalPages {
			if rows == nil {
				rows = []table.Row{}
			}
			return rows, nil
		}
		opts.Page++
	}
}

func (s *Service) Get(ctx context.Context, res *resource.Resource, id string) (table.Row, error) {
	return s.backend.Get(ctx, res.Path, id)
}

func (s *Service) Create(ctx context.Context, res *resource.Resource, body map[string]any) (table.Row, error) {
	row, err := s.backend.Create(ctx, res.Path, body)
	if err != nil {
		return nil, err
	}
	s.invalidate(res)
	return row, nil
}

func (s *Service) Update(ctx context.Context, res *resource.Resource, id string, body map[string]any) (table.Row, error) {
	row, err := s.backend.Update(ctx, res.Path, id, body)
	if err != nil {
		return nil, err
	}
	s.invalidate(res)
	return row, nil
}

func (s *Service) Delete(ctx context.Context, res *resource.Resource, id string) error {
	if err := s.backend.Delete(ctx, res.Path, id); err != nil {
		return err
	}
	s.invalidate(res)
	return nil
}

func (s *Service) invalidate(res *resource.Resource) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(res.Name); err != nil {
		slog.Warn("failed to invalidate cache", "resource", res.Name, "error", err)
	}
}
