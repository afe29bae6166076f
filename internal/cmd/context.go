package cmd

import (
	"context"

	"golang.org/x/text/language"

	"github.com/salmonumbrella/folio-cli/internal/api"
	"github.com/salmonumbrella/folio-cli/internal/auth"
	"github.com/salmonumbrella/folio-cli/internal/config"
	"github.com/salmonumbrella/folio-cli/internal/debug"
	"github.com/salmonumbrella/folio-cli/internal/query"
	"github.com/salmonumbrella/folio-cli/internal/resource"
)

type (
	errorFormatKey struct{}
	configKey      struct{}
	registryKey    struct{}
	localeKey      struct{}
	noCacheKey     struct{}
	versionKey     struct{}
	openerKey      struct{}
)

// WithErrorFormat stores the error format in the context.
func WithErrorFormat(ctx context.Context, format string) context.Context {
	return context.WithValue(ctx, errorFormatKey{}, format)
}

// ErrorFormatFromContext retrieves the error format from context.
func ErrorFormatFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(errorFormatKey{}).(string); ok {
		return v
	}
	return ""
}

// WithConfig stores loaded CLI config in context for downstream helpers.
func WithConfig(ctx context.Context, cfg *config.Config) context.Context {
	return context.WithValue(ctx, configKey{}, cfg)
}

// ConfigFromContext retrieves CLI config from context. It never returns nil.
func ConfigFromContext(ctx context.Context) *config.Config {
	if v, ok := ctx.Value(configKey{}).(*config.Config); ok && v != nil {
		return v
	}
	return &config.Config{}
}

// WithRegistry stores the resource registry, with config overrides applied.
func WithRegistry(ctx context.Context, r *resource.Registry) context.Context {
	return context.WithValue(ctx, registryKey{}, r)
}

// RegistryFromContext returns the registry, or the built-in one.
func RegistryFromContext(ctx context.Context) *resource.Registry {
	if v, ok := ctx.Value(registryKey{}).(*resource.Registry); ok && v != nil {
		return v
	}
	return resource.NewRegistry()
}

// WithLocale stores the locale used for labels and dates.
func WithLocale(ctx context.Context, tag language.Tag) context.Context {
	return context.WithValue(ctx, localeKey{}, tag)
}

// LocaleFromContext returns the locale, English by default.
func LocaleFromContext(ctx context.Context) language.Tag {
	if v, ok := ctx.Value(localeKey{}).(language.Tag); ok {
		return v
	}
	return language.English
}

// WithNoCache records --no-cache.
func WithNoCache(ctx context.Context, noCache bool) context.Context {
	return context.WithValue(ctx, noCacheKey{}, noCache)
}

// NoCacheFromContext reports whether --no-cache was given.
func NoCacheFromContext(ctx context.Context) bool {
	v, _ := ctx.Value(noCacheKey{}).(bool)
	return v
}

// WithVersion stores the CLI version.
func WithVersion(ctx context.Context, version string) context.Context {
	return context.WithValue(ctx, versionKey{}, version)
}

// VersionFromContext returns the CLI version, "dev" when unset.
func VersionFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(versionKey{}).(string); ok && v != "" {
		return v
	}
	return "dev"
}

// WithOpener stores the function used to open URLs.
func WithOpener(ctx context.Context, open func(string) error) context.Context {
	return context.WithValue(ctx, openerKey{}, open)
}

// OpenerFromContext returns the URL opener, or the system browser.
func OpenerFromContext(ctx context.Context) func(string) error {
	if v, ok := ctx.Value(openerKey{}).(func(string) error); ok && v != nil {
		return v
	}
	return openBrowser
}

// clientFromContext builds an API client for the configured base URL. The
// token is read from the session store on every request.
func clientFromContext(ctx context.Context) *api.Client {
	cfg := ConfigFromContext(ctx)
	client := api.NewClient(cfg.GetAPIURL(), auth.StoreFromContext(ctx)).
		WithUserAgent("folio-cli/" + VersionFromContext(ctx)).
		EnableCircuitBreaker()
	if debug.IsDebug(ctx) {
		client.WithDebugOutput(stderrFromContext(ctx))
	}
	return client
}

// cacheFromContext opens the list cache. It is disabled by config or
// --no-cache.
func cacheFromContext(ctx context.Context) *query.Cache {
	cfg := ConfigFromContext(ctx)
	return query.New(query.Options{
		Dir:      cfg.CacheDir(),
		TTL:      cfg.CacheTTL(),
		Disabled: cfg.Cache.Disabled || NoCacheFromContext(ctx),
	})
}

// serviceFromContext returns the cached data service over a fresh client.
func serviceFromContext(ctx context.Context) (*query.Service, *api.Client) {
	client := clientFromContext(ctx)
	return query.NewService(client, cacheFromContext(ctx)), client
}
