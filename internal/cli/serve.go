package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/matzehuels/pathlattice/pkg/cache"
	"github.com/matzehuels/pathlattice/pkg/errors"
	"github.com/matzehuels/pathlattice/pkg/observability"
	"github.com/matzehuels/pathlattice/pkg/pipeline"
	"github.com/matzehuels/pathlattice/pkg/server"
	"github.com/matzehuels/pathlattice/pkg/store"
)

// serveFlags holds the command-line flags for the serve command.
type serveFlags struct {
	addr       string
	redisURL   string // result cache; in-memory LRU when empty
	cacheSize  int
	mongoURI   string // lattice store; file store when empty
	mongoDB    string
	storeDir   string
	memory     bool // keep lattices in memory only
	ttl        time.Duration
	noMetrics  bool
	maxBodyMiB int64
}

// serveCommand creates the serve command for running the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	flags := serveFlags{
		addr:       ":8080",
		cacheSize:  cache.DefaultMemoryEntries,
		ttl:        store.DefaultTTL,
		maxBodyMiB: server.DefaultMaxBodyBytes >> 20,
	}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve lattices over HTTP",
		Long: `Serve the lattice HTTP API.

Uploaded lattices are kept in a file store by default, or in MongoDB with
--mongo. Query results are cached in memory, or in Redis with --redis.
Prometheus metrics are exposed on /metrics.`,
		Example: `  pathlattice serve --addr :9000
  pathlattice serve --redis redis://localhost:6379/0 --mongo mongodb://localhost:27017`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), flags)
		},
	}

	cmd.Flags().StringVar(&flags.addr, "addr", flags.addr, "listen address")
	cmd.Flags().StringVar(&flags.redisURL, "redis", "", "Redis URL for the result cache (redis:// or rediss://)")
	cmd.Flags().IntVar(&flags.cacheSize, "cache-size", flags.cacheSize, "in-memory result cache entries")
	cmd.Flags().StringVar(&flags.mongoURI, "mongo", "", "MongoDB URI for the lattice store")
	cmd.Flags().StringVar(&flags.mongoDB, "mongo-database", "", "MongoDB database (default: pathlattice)")
	cmd.Flags().StringVar(&flags.storeDir, "store-dir", "", "file store directory (default: ~/.local/share/pathlattice/lattices)")
	cmd.Flags().BoolVar(&flags.memory, "memory", false, "keep uploaded lattices in memory only")
	cmd.Flags().DurationVar(&flags.ttl, "ttl", flags.ttl, "lifetime of uploaded lattices (negative: never expire)")
	cmd.Flags().BoolVar(&flags.noMetrics, "no-metrics", false, "disable the /metrics endpoint")
	cmd.Flags().Int64Var(&flags.maxBodyMiB, "max-body", flags.maxBodyMiB, "maximum upload size in MiB")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, flags serveFlags) error {
	logger := loggerFromContext(ctx)

	resultCache, err := openResultCache(ctx, flags)
	if err != nil {
		return err
	}
	runner := pipeline.NewRunner(resultCache, cache.NewScopedKeyer(nil, "api:"), logger)
	defer runner.Close()

	st, backend, err := openStore(ctx, flags)
	if err != nil {
		return err
	}
	defer st.Close()

	cfg := server.Config{
		Store:        st,
		Runner:       runner,
		Logger:       logger,
		TTL:          flags.ttl,
		MaxBodyBytes: flags.maxBodyMiB << 20,
	}
	if !flags.noMetrics {
		reg := prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		hooks := observability.NewPrometheusHooks(reg)
		observability.SetPipelineHooks(hooks)
		observability.SetCacheHooks(hooks)
		observability.SetHTTPHooks(hooks)
		defer observability.Reset()
		cfg.Gatherer = reg
	}

	srv, err := server.New(cfg)
	if err != nil {
		return err
	}

	printSuccess("Serving on %s", flags.addr)
	printKeyValue("store", backend)
	if flags.redisURL != "" {
		printKeyValue("cache", "redis")
	} else {
		printKeyValue("cache", fmt.Sprintf("memory (%d entries)", flags.cacheSize))
	}
	logger.Debug("server config", "ttl", flags.ttl, "max_body", cfg.MaxBodyBytes, "metrics", !flags.noMetrics)

	return srv.ListenAndServe(ctx, flags.addr)
}

// openResultCache connects the cache the server's runner keeps results in.
func openResultCache(ctx context.Context, flags serveFlags) (cache.Cache, error) {
	if flags.redisURL == "" {
		return cache.NewMemoryCache(flags.cacheSize)
	}
	if err := errors.ValidateURL(flags.redisURL, "redis", "rediss"); err != nil {
		return nil, err
	}
	ro, err := redis.ParseURL(flags.redisURL)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse redis URL")
	}
	return cache.NewRedisCache(ctx, cache.RedisConfig{
		Addr:     ro.Addr,
		Password: ro.Password,
		DB:       ro.DB,
		Prefix:   appName + ":",
	})
}

// openStore opens the lattice store and names its backend for display.
func openStore(ctx context.Context, flags serveFlags) (store.Store, string, error) {
	switch {
	case flags.mongoURI != "":
		if err := errors.ValidateURL(flags.mongoURI, "mongodb", "mongodb+srv"); err != nil {
			return nil, "", err
		}
		connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		st, err := store.NewMongoStore(connectCtx, store.MongoConfig{URI: flags.mongoURI, Database: flags.mongoDB})
		if err != nil {
			return nil, "", err
		}
		return st, "mongodb", nil
	case flags.memory:
		return store.NewMemoryStore(), "memory", nil
	default:
		st, err := store.NewFileStore(flags.storeDir)
		if err != nil {
			return nil, "", err
		}
		return st, "file " + st.Path(), nil
	}
}
