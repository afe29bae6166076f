// Package query caches list pages fetched from the API.
package query

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/peterbourgon/diskv/v3"
	"golang.org/x/sync/singleflight"

	"github.com/salmonumbrella/folio-cli/internal/api"
	"github.com/salmonumbrella/folio-cli/internal/table"
)

// Key identifies one cached list page.
type Key struct {
	Resource string
	Page     int
	PerPage  int
	Search   string
}

// String returns "<resource>/<digest>", the diskv key of the page.
func (k Key) String() string {
	sum := md5.Sum([]byte(strconv.Itoa(k.Page) + "|" + strconv.Itoa(k.PerPage) + "|" + strings.TrimSpace(k.Search)))
	return fmt.Sprintf("%s/%x", k.Resource, sum[:8])
}

// Fetcher loads a page from the API on a cache miss.
type Fetcher func(ctx context.Context) (*api.Page, error)

// Options configures a Cache.
type Options struct {
	Dir      string
	TTL      time.Duration
	Disabled bool
	// Now defaults to time.Now.
	Now func() time.Time
}

// Cache serves list pages from disk until they are older than the TTL.
// Concurrent fetches of the same key share one request.
type Cache struct {
	d        *diskv.Diskv
	ttl      time.Duration
	disabled bool
	now      func() time.Time
	group    singleflight.Group
}

type entry struct {
	StoredAt  time.Time   `json:"storedAt"`
	Data      []table.Row `json:"data"`
	Meta      api.Meta    `json:"meta"`
	Enveloped bool        `json:"enveloped"`
}

// New returns a cache rooted at opts.Dir.
func New(opts Options) *Cache {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Cache{
		d: diskv.New(diskv.Options{
			BasePath:          opts.Dir,
			AdvancedTransform: keyToPath,
			InverseTransform:  pathToKey,
			CacheSizeMax:      1024 * 1024,
			PathPerm:          0o700,
			FilePerm:          0o600,
		}),
		ttl:      opts.TTL,
		disabled: opts.Disabled || opts.TTL <= 0,
		now:      now,
	}
}

func keyToPath(s string) *diskv.PathKey {
	i := strings.LastIndex(s, "/")
	if i < 0 {
		return &diskv.PathKey{FileName: s}
	}
	return &diskv.PathKey{Path: []string{s[:i]}, FileName: s[i+1:]}
}

func pathToKey(pk *diskv.PathKey) string {
	if len(pk.Path) == 0 {
		return pk.FileName
	}
	return strings.Join(pk.Path, "/") + "/" + pk.FileName
}

// Enabled reports whether pages are read from and written to disk.
func (c *Cache) Enabled() bool {
	return !c.disabled
}

// Fetch returns the cached page for key or calls fetch and stores the
// result. Failed fetches are never cached. Concurrent callers for one key
// share a single fetch, which runs detached from any one caller's
// cancellation; a canceled caller stops waiting and gets ctx.Err().
func (c *Cache) Fetch(ctx context.Context, key Key, fetch Fetcher) (*api.Page, error) {
	id := key.String()

	if !c.disabled {
		if page, ok := c.read(id); ok {
			slog.Debug("cache hit", "key", id)
			return page, nil
		}
	}

	shared := context.WithoutCancel(ctx)
	ch := c.group.DoChan(id, func() (any, error) {
		page, err := fetch(shared)
		if err != nil {
			return nil, err
		}
		if !c.disabled {
			if werr := c.write(id, page); werr != nil {
				slog.Warn("failed to write cache entry", "key", id, "error", werr)
			}
		}
		return page, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		if res.Shared {
			slog.Debug("shared in-flight fetch", "key", id)
		}
		return res.Val.(*api.Page), nil
	}
}

func (c *Cache) read(id string) (*api.Page, bool) {
	data, err := c.d.Read(id)
	if err != nil {
		return nil, false
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var e entry
	if err := dec.Decode(&e); err != nil {
		slog.Debug("dropping unreadable cache entry", "key", id, "error", err)
		_ = c.d.Erase(id)
		return nil, false
	}
	if c.now().Sub(e.StoredAt) > c.ttl {
		_ = c.d.Erase(id)
		return nil, false
	}
	if e.Data == nil {
		e.Data = []table.Row{}
	}
	return &api.Page{Data: e.Data, Meta: e.Meta, Enveloped: e.Enveloped}, true
}

func (c *Cache) write(id string, page *api.Page) error {
	data, err := json.Marshal(entry{
		StoredAt:  c.now(),
		Data:      page.Data,
		Meta:      page.Meta,
		Enveloped: page.Enveloped,
	})
	if err != nil {
		return err
	}
	return c.d.Write(id, data)
}

// Invalidate drops every cached page of resource.
func (c *Cache) Invalidate(resource string) error {
	var ids []string
	for id := range c.d.KeysPrefix(resource+"/", nil) {
		ids = append(ids, id)
	}

	var errs []error
	for _, id := range ids {
		if err := c.d.Erase(id); err != nil && !os.IsNotExist(err) {
			errs = append(errs, err)
		}
	}
	if len(errs) == 0 {
		slog.Debug("cache invalidated", "resource", resource)
	}
	return errors.Join(errs...)
}

// Len counts the cached pages, expired or not.
func (c *Cache) Len() int {
	n := 0
	for range c.d.Keys(nil) {
		n++
	}
	return n
}

// Clear removes the whole cache directory.
func (c *Cache) Clear() error {
	return c.d.EraseAll()
}
