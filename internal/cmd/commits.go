package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/salmonumbrella/folio-cli/internal/api"
	"github.com/salmonumbrella/folio-cli/internal/debug"
	clierrors "github.com/salmonumbrella/folio-cli/internal/errors"
	"github.com/salmonumbrella/folio-cli/internal/github"
	"github.com/salmonumbrella/folio-cli/internal/validate"
)

func newCommitsCmd() *cobra.Command {
	var (
		page    int
		perPage int
		repo    string
		branch  string
	)

	cmd := &cobra.Command{
		Use:   "commits",
		Short: "List recent commits of the site repository",
		Long: `List recent commits of the site repository, newest first.

The repository comes from --repo, FOLIO_GITHUB_REPO or github.repo. A token
from FOLIO_GITHUB_TOKEN or github.token is sent when set; private
repositories need one.`,
		Example: `  folio config set github.repo ana/portfolio
  folio commits
  folio commits --page 2 --branch master`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := validate.Page(page); err != nil {
				return clierrors.WrapUserError(err, "invalid --page", "Pages start at 1")
			}
			if err := validate.PerPage(perPage); err != nil {
				return clierrors.WrapUserError(err, "invalid --per-page", "Use a value between 1 and 100")
			}

			cfg := ConfigFromContext(ctx)
			if repo == "" {
				repo = cfg.GitHubRepo()
			}
			if repo == "" {
				return clierrors.NewUserError("no repository configured",
					"Run 'folio config set github.repo owner/name' or pass --repo")
			}
			r, err := github.ParseRepo(repo)
			if err != nil {
				return err
			}
			if branch == "" {
				branch = cfg.GitHub.Branch
			}

			p, err := githubFromContext(ctx).Commits(ctx, r, github.ListOptions{Page: page, PerPage: perPage, Branch: branch})
			if err != nil {
				return fmt.Errorf("failed to list commits of %s: %w", r, err)
			}
			return printRows(ctx, github.NewTable(p, github.FeedOptions{Locale: LocaleFromContext(ctx)}))
		},
	}

	cmd.Flags().IntVar(&page, "page", 1, "Page to show")
	cmd.Flags().IntVar(&perPage, "per-page", github.DefaultPerPage, "Commits per page")
	cmd.Flags().StringVar(&repo, "repo", "", "Repository as owner/name")
	cmd.Flags().StringVar(&branch, "branch", "", "Branch or sha to list from (default branch when empty)")
	flagAlias(cmd.Flags(), "per-page", "limit")
	return cmd
}

// githubFromContext builds a GitHub client. It never carries the folio
// session.
func githubFromContext(ctx context.Context) *github.Client {
	cfg := ConfigFromContext(ctx)
	client := api.NewClient(cfg.GitHubAPIURL(), nil).
		WithUserAgent("folio-cli/" + VersionFromContext(ctx)).
		EnableCircuitBreaker()
	if debug.IsDebug(ctx) {
		client.WithDebugOutput(stderrFromContext(ctx))
	}
	return github.NewClient(client, cfg.GitHubToken())
}
