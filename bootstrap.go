package curator

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/viant/curator/internal/logging"
	"github.com/viant/curator/policy"
	"github.com/viant/curator/service/catalog"
	fscatalog "github.com/viant/curator/service/catalog/fs"
	"github.com/viant/curator/service/catalog/postgres"
	"github.com/viant/curator/service/dao"
	"github.com/viant/curator/service/dao/store"
	"github.com/viant/curator/service/notifier"
	"github.com/viant/curator/service/verifier/anthropic"
	"github.com/viant/curator/tracing"
)

const serviceName = "curator"

// NewFromConfig builds a service and its adapters from cfg. Call Close to
// release the store, the catalog connection and the notifier.
func NewFromConfig(ctx context.Context, cfg *Config, logger zerolog.Logger, options ...Option) (srv *Service, err error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err = cfg.Validate(); err != nil {
		return nil, err
	}
	var closers []func(ctx context.Context) error
	defer func() {
		if err != nil {
			for i := len(closers) - 1; i >= 0; i-- {
				_ = closers[i](ctx)
			}
		}
	}()
	if cfg.Tracing.Enabled {
		if err = tracing.Init(serviceName, Version, cfg.Tracing.File); err != nil {
			return nil, fmt.Errorf("failed to init tracing: %w", err)
		}
		closers = append(closers, tracing.Shutdown)
	}

	records, closeStore, err := newStore(ctx, cfg.Store)
	if err != nil {
		return nil, err
	}
	closers = append(closers, closeStore)

	topics, closeCatalog, err := newCatalog(ctx, cfg.Catalog)
	if err != nil {
		return nil, err
	}
	closers = append(closers, closeCatalog)

	proposalPolicy, err := policy.FromConfig(&cfg.Policy)
	if err != nil {
		return nil, err
	}

	base := []Option{
		WithStore(records),
		WithCatalog(topics),
		WithClient(anthropic.New(cfg.Verifier.Config)),
		WithVerifierTimeout(cfg.Verifier.Timeout),
		WithPolicy(proposalPolicy),
		WithTickDelay(cfg.Runner.TickDelay),
		WithTickRetryDelay(cfg.Runner.RetryDelay),
		WithTickPollInterval(cfg.Runner.PollInterval),
		WithSchedulePollInterval(cfg.Runner.SchedulePollInterval),
		WithReviewConcurrency(cfg.Runner.ReviewConcurrency),
		WithLogger(logger),
	}
	if n := newNotifier(cfg.Notifier, logger); n != nil {
		if cfg.Notifier.Async {
			async := notifier.NewAsync(n, logging.Component(logger, "notifier"))
			closers = append(closers, async.Close)
			n = async
		}
		base = append(base, WithNotifier(n))
	}
	for _, closer := range closers {
		base = append(base, WithCloser(closer))
	}
	return New(append(base, options...)...)
}

func newStore(ctx context.Context, cfg StoreConfig) (dao.Service, func(ctx context.Context) error, error) {
	noop := func(context.Context) error { return nil }
	switch cfg.Kind {
	case StoreFS:
		ret, err := store.NewFSStore(ctx, cfg.URL)
		return ret, noop, err
	case StoreSQLite:
		ret, err := store.NewSQLiteStore(ctx, cfg.Path)
		if err != nil {
			return nil, nil, err
		}
		return ret, func(context.Context) error { return ret.Close() }, nil
	}
	return store.NewMemoryStore(), noop, nil
}

func newCatalog(ctx context.Context, cfg CatalogConfig) (catalog.Service, func(ctx context.Context) error, error) {
	if cfg.Kind != CatalogPostgres {
		ret, err := fscatalog.New(cfg.URL)
		return ret, func(context.Context) error { return nil }, err
	}
	pool, err := pgxpool.New(ctx, cfg.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect catalog database: %w", err)
	}
	closer := func(context.Context) error { pool.Close(); return nil }
	ret := postgres.New(pool)
	if cfg.EnsureSchema {
		if err = ret.EnsureSchema(ctx); err != nil {
			pool.Close()
			return nil, nil, err
		}
	}
	return ret, closer, nil
}

func newNotifier(cfg NotifierConfig, logger zerolog.Logger) notifier.Notifier {
	switch cfg.Kind {
	case NotifierCommand:
		return notifier.NewCommand(cfg.Command, cfg.Timeout)
	case NotifierLog:
		return notifier.NewLog(logging.Component(logger, "notifier"))
	}
	return nil
}
