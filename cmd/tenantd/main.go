// Command tenantd runs the tenant session service: tenant-resolving reverse
// proxyable API surface with CSRF protection and an internal admin API for
// the tenant catalog.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"

	"github.com/Symple44/TopSteel-sub029/modules/tenantadmin"
	"github.com/Symple44/TopSteel-sub029/pkg/config"
	"github.com/Symple44/TopSteel-sub029/pkg/csrf"
	"github.com/Symple44/TopSteel-sub029/pkg/environment"
	"github.com/Symple44/TopSteel-sub029/pkg/httpserver"
	"github.com/Symple44/TopSteel-sub029/pkg/logger"
	"github.com/Symple44/TopSteel-sub029/pkg/pg"
	"github.com/Symple44/TopSteel-sub029/pkg/redis"
	"github.com/Symple44/TopSteel-sub029/pkg/requestid"
	"github.com/Symple44/TopSteel-sub029/pkg/tenant"
)

type appConfig struct {
	ServiceName string `env:"SERVICE_NAME" envDefault:"tenantd"`
	CSRFStore   string `env:"CSRF_STORE" envDefault:"memory"` // "memory" or "redis"
}

func main() {
	if err := run(context.Background()); err != nil {
		slog.Error("tenantd exited", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	var (
		appCfg    appConfig
		envCfg    environment.Config
		serverCfg httpserver.Config
		pgCfg     pg.Config
		tenantCfg tenant.Config
		csrfCfg   csrf.Config
	)
	config.MustLoad(&appCfg)
	config.MustLoad(&envCfg)
	config.MustLoad(&serverCfg)
	config.MustLoad(&pgCfg)
	config.MustLoad(&tenantCfg)
	if err := config.Load(&csrfCfg); err != nil {
		return fmt.Errorf("load csrf config: %w", err)
	}

	env := envCfg.Current()
	log := logger.New(
		logger.WithEnvironment(env, appCfg.ServiceName),
		logger.WithContextExtractors(
			requestid.LoggerExtractor(),
			tenant.LoggerExtractor(),
		),
	)

	registry := tenant.NewRegistry()
	if tenantCfg.CatalogPath != "" {
		if err := registry.LoadFile(tenantCfg.CatalogPath); err != nil {
			return fmt.Errorf("load tenant catalog: %w", err)
		}
	}
	if n := registry.LoadEnv(); n > 0 {
		log.Info("tenants registered from environment", "count", n)
	}

	pool := tenant.NewPool(registry, pgCfg, tenant.WithPoolLogger(log))

	csrfOpts := []csrf.Option{
		csrf.WithEnvironment(env),
		csrf.WithLogger(log),
	}
	if appCfg.CSRFStore == "redis" {
		var redisCfg redis.Config
		config.MustLoad(&redisCfg)

		client, err := redis.Connect(ctx, redisCfg)
		if err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		defer func() { _ = client.Close() }()

		csrfOpts = append(csrfOpts, csrf.WithStore(
			csrf.NewRedisStore(client, csrfCfg.SessionTTL, csrfCfg.MaxTokensPerSession)))
	}
	guard, err := csrf.New(csrfCfg, csrfOpts...)
	if err != nil {
		return fmt.Errorf("create csrf service: %w", err)
	}

	r := chi.NewRouter()
	r.Use(requestid.Middleware)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	// Internal catalog administration. Deploy behind operator auth.
	r.Mount("/admin/tenants", tenantadmin.New(pool,
		tenantadmin.WithLogger(log),
		tenantadmin.WithURLTemplate(tenantCfg.URLTemplate),
	).Handle())

	// Tenant-scoped API surface.
	r.Group(func(api chi.Router) {
		api.Use(tenant.Middleware(tenant.NewDefaultResolver(), registry,
			tenant.WithMiddlewareLogger(log),
		))
		api.Use(guard.Protect)

		api.Get("/csrf/token", guard.TokenHandler().ServeHTTP)
		api.Get("/whoami", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprintf(w, `{"tenant_id":%q}`, tenant.MustTenantID(r.Context()))
		})
	})

	srv := httpserver.New(serverCfg,
		httpserver.WithLogger(log),
		httpserver.WithStopHook(func(ctx context.Context) {
			_ = guard.Close()
			_ = pool.Close(ctx)
		}),
	)
	return srv.Run(ctx, r)
}
