package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/salmonumbrella/folio-cli/internal/auth"
	ctxerrors "github.com/salmonumbrella/folio-cli/internal/errors"
	"github.com/salmonumbrella/folio-cli/internal/table"
)

// ListOptions selects one page of a collection. Zero values are omitted
// from the query string.
type ListOptions struct {
	Page    int
	PerPage int
	Search  string
}

func (o ListOptions) values() url.Values {
	q := url.Values{}
	if o.Page > 0 {
		q.Set("page", strconv.Itoa(o.Page))
	}
	if o.PerPage > 0 {
		q.Set("perPage", strconv.Itoa(o.PerPage))
	}
	if s := strings.TrimSpace(o.Search); s != "" {
		q.Set("search", s)
	}
	return q
}

// Meta is the pagination block of an enveloped list response.
type Meta struct {
	TotalCount int  `json:"totalCount"`
	Page       int  `json:"page"`
	TotalPages int  `json:"totalPages"`
	NextPage   *int `json:"nextPage"`
	PrevPage   *int `json:"prevPage"`
	PerPage    int  `json:"perPage,omitempty"`
}

// Page is one page of rows. Enveloped is false when the API returned a
// bare array, meaning every row arrived at once and paging is local.
type Page struct {
	Data      []table.Row `json:"data"`
	Meta      Meta        `json:"meta"`
	Enveloped bool        `json:"-"`
}

// listEnvelope covers both list shapes the API uses:
// {data, meta:{totalCount,...}} and {data, total, itemsPerPage}.
type listEnvelope struct {
	Data         *[]table.Row `json:"data"`
	Meta         *Meta        `json:"meta"`
	Total        *int         `json:"total"`
	ItemsPerPage int          `json:"itemsPerPage"`
	Page         int          `json:"page"`
}

func decodePage(data []byte, opts ListOptions) (*Page, error) {
	trimmed := bytes.TrimSpace(data)
	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.UseNumber()

	if len(trimmed) > 0 && trimmed[0] == '[' {
		var rows []table.Row
		if err := dec.Decode(&rows); err != nil {
			return nil, fmt.Errorf("failed to decode list: %w", err)
		}
		return &Page{
			Data: nonNil(rows),
			Meta: Meta{TotalCount: len(rows), Page: 1, TotalPages: min(1, len(rows))},
		}, nil
	}

	var env listEnvelope
	if err := dec.Decode(&env); err != nil {
		return nil, fmt.Errorf("failed to decode list: %w", err)
	}
	if env.Data == nil {
		return nil, errors.New("unexpected list response: missing \"data\"")
	}

	page := &Page{Data: nonNil(*env.Data), Enveloped: true}
	switch {
	case env.Meta != nil:
		page.Meta = *env.Meta
	case env.Total != nil:
		page.Meta = Meta{TotalCount: *env.Total, Page: env.Page, PerPage: env.ItemsPerPage}
	default:
		page.Meta = Meta{TotalCount: len(page.Data)}
	}

	if page.Meta.Page <= 0 {
		page.Meta.Page = max(opts.Page, 1)
	}
	if page.Meta.PerPage <= 0 {
		page.Meta.PerPage = opts.PerPage
	}
	if page.Meta.TotalPages <= 0 && page.Meta.PerPage > 0 {
		page.Meta.TotalPages = table.PageCount(page.Meta.TotalCount, page.Meta.PerPage)
	}
	return page, nil
}

func nonNil(rows []table.Row) []table.Row {
	if rows == nil {
		return []table.Row{}
	}
	return rows
}

func recordPath(path, id string) string {
	return strings.TrimRight(path, "/") + "/" + url.PathEscape(id)
}

// List fetches one page of the collection at path (e.g. "/skill").
func (c *Client) List(ctx context.Context, path string, opts ListOptions) (*Page, error) {
	data, err := c.do(ctx, request{method: http.MethodGet, path: path, query: opts.values()})
	if err != nil {
		return nil, err
	}
	return decodePage(data, opts)
}

// ListAll follows pages until the last one and returns every row.
func (c *Client) ListAll(ctx context.Context, path string, opts ListOptions) ([]table.Row, error) {
	if opts.Page <= 0 {
		opts.Page = 1
	}
	var all []table.Row
	for {
		page, err := c.List(ctx, path, opts)
		if err != nil {
			return nil, err
		}
		all = append(all, page.Data...)
		if !page.Enveloped || len(page.Data) == 0 || opts.Page >= page.Meta.TotalPages {
			return nonNil(all), nil
		}
		opts.Page++
	}
}

// Get fetches one record.
func (c *Client) Get(ctx context.Context, path, id string) (table.Row, error) {
	var row table.Row
	if err := c.doJSON(ctx, request{method: http.MethodGet, path: recordPath(path, id)}, &row); err != nil {
		return nil, err
	}
	return row, nil
}

// Create posts a new record and returns what the API stored.
func (c *Client) Create(ctx context.Context, path string, body map[string]any) (table.Row, error) {
	var row table.Row
	if err := c.doJSON(ctx, request{method: http.MethodPost, path: path, body: body}, &row); err != nil {
		return nil, err
	}
	return row, nil
}

// Update patches a record.
func (c *Client) Update(ctx context.Context, path, id string, body map[string]any) (table.Row, error) {
	var row table.Row
	if err := c.doJSON(ctx, request{method: http.MethodPatch, path: recordPath(path, id), body: body}, &row); err != nil {
		return nil, err
	}
	return row, nil
}

// Delete removes a record.
func (c *Client) Delete(ctx context.Context, path, id string) error {
	_, err := c.do(ctx, request{method: http.MethodDelete, path: recordPath(path, id)})
	return err
}

// GetFirst reads a singleton page from <path>/first.
func (c *Client) GetFirst(ctx context.Context, path string) (table.Row, error) {
	var row table.Row
	if err := c.doJSON(ctx, request{method: http.MethodGet, path: strings.TrimRight(path, "/") + "/first"}, &row); err != nil {
		return nil, err
	}
	return row, nil
}

// Upsert writes a singleton page through POST <path>/upsert.
func (c *Client) Upsert(ctx context.Context, path string, body map[string]any) (table.Row, error) {
	var row table.Row
	if err := c.doJSON(ctx, request{method: http.MethodPost, path: strings.TrimRight(path, "/") + "/upsert", body: body}, &row); err != nil {
		return nil, err
	}
	return row, nil
}

type loginResponse struct {
	User  auth.User `json:"user"`
	Token string    `json:"token"`
}

// Login exchanges credentials for a session. The session is returned,
// not stored.
func (c *Client) Login(ctx context.Context, email, password string) (*auth.Session, error) {
	var resp loginResponse
	err := c.doJSON(ctx, request{
		method: http.MethodPost,
		path:   "/auth/login",
		body:   map[string]string{"email": email, "password": password},
		public: true,
	}, &resp)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && (apiErr.StatusCode == http.StatusUnauthorized || apiErr.StatusCode == http.StatusBadRequest) {
			return nil, &ctxerrors.AuthError{
				Reason:     "invalid email or password",
				Suggestion: "Check your credentials and run 'folio auth login' again",
				Err:        err,
			}
		}
		return nil, err
	}
	if resp.Token == "" {
		return nil, errors.New("login response did not include a token")
	}
	return &auth.Session{
		User:      resp.User,
		Token:     resp.Token,
		CreatedAt: time.Now(),
		APIURL:    c.baseURL,
	}, nil
}

// User is an administrator account as returned by /users/{id}.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name,omitempty"`
	AvatarURL string    `json:"avatarUrl,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// UserUpdate carries the settings form. Nil fields are left unchanged.
type UserUpdate struct {
	Name     *string `json:"name,omitempty"`
	Email    *string `json:"email,omitempty"`
	Password *string `json:"password,omitempty"`
}

// GetUser fetches an account.
func (c *Client) GetUser(ctx context.Context, id string) (*User, error) {
	var u User
	if err := c.doJSON(ctx, request{method: http.MethodGet, path: recordPath("/users", id)}, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// UpdateUser patches an account.
func (c *Client) UpdateUser(ctx context.Context, id string, upd UserUpdate) (*User, error) {
	var u User
	if err := c.doJSON(ctx, request{method: http.MethodPatch, path: recordPath("/users", id), body: upd}, &u); err != nil {
		return nil, err
	}
	return &u, nil
}
