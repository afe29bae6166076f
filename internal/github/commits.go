// Package github lists the commits of the site's source repository.
package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/salmonumbrella/folio-cli/internal/api"
	ctxerrors "github.com/salmonumbrella/folio-cli/internal/errors"
	"github.com/salmonumbrella/folio-cli/internal/table"
)

// DefaultPerPage matches the dashboard feed.
const DefaultPerPage = 5

// APIVersion is sent as X-GitHub-Api-Version.
const APIVersion = "2022-11-28"

// Repo is an owner/name pair.
type Repo struct {
	Owner string
	Name  string
}

// ParseRepo accepts "owner/name" and tolerates a github.com URL.
func ParseRepo(s string) (Repo, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, ".git")
	if u, err := url.Parse(s); err == nil && u.Host != "" {
		s = u.Path
	}
	s = strings.Trim(s, "/")
	owner, name, ok := strings.Cut(s, "/")
	if !ok || owner == "" || name == "" || strings.Contains(name, "/") {
		return Repo{}, ctxerrors.NewUserError(
			fmt.Sprintf("invalid repository %q", s),
			"Use owner/name, e.g. folio config set github.repo ana/portfolio",
		)
	}
	return Repo{Owner: owner, Name: name}, nil
}

func (r Repo) String() string { return r.Owner + "/" + r.Name }

// Commit is the subset of a GitHub commit object the feed shows.
type Commit struct {
	SHA     string `json:"sha"`
	HTMLURL string `json:"html_url"`
	Commit  struct {
		Message string `json:"message"`
		Author  struct {
			Name string    `json:"name"`
			Date time.Time `json:"date"`
		} `json:"author"`
	} `json:"commit"`
	// nil when the author email has no GitHub account
	Author *struct {
		Login     string `json:"login"`
		AvatarURL string `json:"avatar_url"`
	} `json:"author"`
}

// Title is the first line of the commit message.
func (c Commit) Title() string {
	title, _, _ := strings.Cut(c.Commit.Message, "\n")
	return strings.TrimSpace(title)
}

// Row flattens the commit for the table and the JSON output.
func (c Commit) Row() table.Row {
	short := c.SHA
	if len(short) > 7 {
		short = short[:7]
	}
	row := table.Row{
		"id":      short,
		"sha":     c.SHA,
		"message": c.Title(),
		"author":  c.Commit.Author.Name,
		"date":    c.Commit.Author.Date.Format(time.RFC3339),
		"url":     c.HTMLURL,
	}
	if c.Author != nil {
		row["login"] = c.Author.Login
		row["avatar"] = c.Author.AvatarURL
	}
	return row
}

// Page is one page of commits. GitHub sends no total, so a full page
// implies a next one.
type Page struct {
	Commits []Commit
	Page    int
	PerPage int
}

// HasNext reports whether the page came back full.
func (p *Page) HasNext() bool {
	return p.PerPage > 0 && len(p.Commits) >= p.PerPage
}

// Total is the smallest row count consistent with what has been seen:
// the rows before this page, this page, and one more when it was full.
func (p *Page) Total() int {
	n := (p.Page-1)*p.PerPage + len(p.Commits)
	if p.HasNext() {
		n++
	}
	return n
}

// Rows returns the commits as table rows.
func (p *Page) Rows() []table.Row {
	rows := make([]table.Row, len(p.Commits))
	for i, c := range p.Commits {
		rows[i] = c.Row()
	}
	return rows
}

// Client reads commits through the shared API client, so retries, the
// debug trace and rate limit tracking apply.
type Client struct {
	api *api.Client
}

// NewClient wraps c. A token, when set, is sent as a bearer token.
func NewClient(c *api.Client, token string) *Client {
	if token != "" {
		c.WithToken(token)
	}
	c.WithHeader("Accept", "application/vnd.github+json").
		WithHeader("X-GitHub-Api-Version", APIVersion)
	return &Client{api: c}
}

// ListOptions selects the page and branch.
type ListOptions struct {
	Page    int
	PerPage int
	// Branch or sha to start from; the default branch when empty.
	Branch string
}

// Commits lists one page of commits, newest first.
func (c *Client) Commits(ctx context.Context, repo Repo, opts ListOptions) (*Page, error) {
	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.PerPage < 1 {
		opts.PerPage = DefaultPerPage
	}
	q := url.Values{
		"page":     {strconv.Itoa(opts.Page)},
		"per_page": {strconv.Itoa(opts.PerPage)},
	}
	if opts.Branch != "" {
		q.Set("sha", opts.Branch)
	}

	path := "/repos/" + url.PathEscape(repo.Owner) + "/" + url.PathEscape(repo.Name) + "/commits"
	var commits []Commit
	if err := c.api.GetJSON(ctx, path, q, &commits); err != nil {
		return nil, c.explain(err, repo)
	}
	return &Page{Commits: commits, Page: opts.Page, PerPage: opts.PerPage}, nil
}

// explain maps GitHub failures onto the CLI's error kinds.
func (c *Client) explain(err error, repo Repo) error {
	var apiErr *api.APIError
	if !errors.As(err, &apiErr) {
		return err
	}
	switch apiErr.StatusCode {
	case http.StatusUnauthorized:
		return &ctxerrors.AuthError{
			Reason:     "GitHub rejected the token",
			Suggestion: "Check github.token or FOLIO_GITHUB_TOKEN",
			Err:        err,
		}
	case http.StatusForbidden:
		// an exhausted quota is a 403 on GitHub, not a 429
		if q, ok := c.api.Quota(); ok && q.Limit > 0 && q.Remaining == 0 {
			return fmt.Errorf("%w: %w", err, &ctxerrors.RateLimitError{RetryAfter: max(time.Until(q.ResetAt), 0)})
		}
	case http.StatusNotFound, http.StatusConflict:
		// 409 is an empty repository
		return ctxerrors.WrapUserError(err, fmt.Sprintf("repository %s not found", repo),
			"Check github.repo, and set github.token for a private repository")
	}
	return err
}
