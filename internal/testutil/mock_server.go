// Package testutil provides a fake portfolio API for command and client tests.
package testutil

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
)

// Request is a request the mock server received. Query keeps the first
// value of each parameter.
type Request struct {
	Method string
	Path   string
	Query  map[string]string
	Header http.Header
	Body   []byte
}

// MockServer answers registered routes ("METHOD /path") and replies to
// anything else with the API's 404 body. Every request is recorded.
type MockServer struct {
	server *httptest.Server

	mu       sync.RWMutex
	routes   map[string]http.HandlerFunc
	received []Request
}

// apiError is the error body the API returns.
type apiError struct {
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
	Error      string `json:"error,omitempty"`
}

type pageMeta struct {
	TotalCount int  `json:"totalCount"`
	Page       int  `json:"page"`
	TotalPages int  `json:"totalPages"`
	NextPage   *int `json:"nextPage"`
	PrevPage   *int `json:"prevPage"`
}

func NewMockServer() *MockServer {
	ms := &MockServer{routes: map[string]http.HandlerFunc{}}
	ms.server = httptest.NewServer(ms)
	return ms
}

func (ms *MockServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	query := map[string]string{}
	for k, v := range r.URL.Query() {
		query[k] = v[0]
	}

	ms.mu.Lock()
	ms.received = append(ms.received, Request{
		Method: r.Method,
		Path:   r.URL.Path,
		Query:  query,
		Header: r.Header.Clone(),
		Body:   body,
	})
	route := ms.routes[r.Method+" "+r.URL.Path]
	ms.mu.Unlock()

	if route == nil {
		writeJSON(w, http.StatusNotFound, apiError{
			StatusCode: http.StatusNotFound,
			Message:    fmt.Sprintf("Cannot %s %s", r.Method, r.URL.Path),
			Error:      "Not Found",
		})
		return
	}
	route(w, r)
}

func (ms *MockServer) URL() string { return ms.server.URL }

func (ms *MockServer) Close() { ms.server.Close() }

// Handle registers h for method and path, replacing any earlier handler.
func (ms *MockServer) Handle(method, path string, h http.HandlerFunc) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.routes[method+" "+path] = h
}

// HandleJSON replies with status and response encoded as JSON.
func (ms *MockServer) HandleJSON(method, path string, status int, response any) {
	ms.Handle(method, path, func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, status, response)
	})
}

// HandleError replies with an API error body carrying message.
func (ms *MockServer) HandleError(method, path string, status int, message string) {
	ms.HandleJSON(method, path, status, apiError{
		StatusCode: status,
		Message:    message,
		Error:      http.StatusText(status),
	})
}

// HandleRateLimit replies 429 with a Retry-After of retryAfter seconds.
func (ms *MockServer) HandleRateLimit(method, path string, retryAfter int) {
	ms.Handle(method, path, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
		writeJSON(w, http.StatusTooManyRequests, apiError{
			StatusCode: http.StatusTooManyRequests,
			Message:    "Too Many Requests",
		})
	})
}

// HandlePages serves GET path as a {data, meta} collection. The page and
// perPage parameters pick the slice (perPage defaults to size) and search
// keeps rows whose "name" contains it, ignoring case.
func (ms *MockServer) HandlePages(path string, rows []map[string]any, size int) {
	ms.Handle(http.MethodGet, path, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		page := max(atoiOr(q.Get("page"), 1), 1)
		perPage := atoiOr(q.Get("perPage"), size)
		if perPage < 1 {
			perPage = size
		}

		matched := rows
		if term := strings.ToLower(q.Get("search")); term != "" {
			matched = nil
			for _, row := range rows {
				name, _ := row["name"].(string)
				if strings.Contains(strings.ToLower(name), term) {
					matched = append(matched, row)
				}
			}
		}

		meta := pageMeta{
			TotalCount: len(matched),
			Page:       page,
			TotalPages: (len(matched) + perPage - 1) / perPage,
		}
		if page < meta.TotalPages {
			next := page + 1
			meta.NextPage = &next
		}
		if page > 1 {
			prev := page - 1
			meta.PrevPage = &prev
		}

		from := min((page-1)*perPage, len(matched))
		to := min(from+perPage, len(matched))
		data := append([]map[string]any{}, matched[from:to]...)
		writeJSON(w, http.StatusOK, map[string]any{"data": data, "meta": meta})
	})
}

// Requests returns every request received so far, oldest first.
func (ms *MockServer) Requests() []Request {
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	return append([]Request(nil), ms.received...)
}

// LastRequest returns the newest request, or false before any arrived.
func (ms *MockServer) LastRequest() (Request, bool) {
	reqs := ms.Requests()
	if len(reqs) == 0 {
		return Request{}, false
	}
	return reqs[len(reqs)-1], true
}

func atoiOr(s string, fallback int) int {
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	return fallback
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
