package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/augment/internal/api"
	"github.com/matzehuels/augment/pkg/cache"
	"github.com/matzehuels/augment/pkg/pipeline"
	"github.com/matzehuels/augment/pkg/store"
)

// Environment variables read by serve when the matching flag is not given.
const (
	envAddr      = "AUGMENT_ADDR"
	envRedisAddr = "AUGMENT_REDIS_ADDR"
	envMongoURI  = "AUGMENT_MONGO_URI"
)

// serveCommand creates the serve command running the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr        string
		redisAddr   string
		redisPrefix string
		mongoURI    string
		mongoDB     string
		noCache     bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the augmentation API over HTTP",
		Long: `Serve the augmentation API over HTTP.

Without --redis the local file cache is used; without --mongo records are
kept in the local record directory.`,
		Example: `  augment serve --addr :8080
  AUGMENT_REDIS_ADDR=redis://cache:6379/0 AUGMENT_MONGO_URI=mongodb://db:27017 augment serve`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)

			var cc cache.Cache
			switch {
			case noCache:
				cc = cache.NewNullCache()
			case redisAddr != "":
				rc, err := cache.NewRedisCache(ctx, redisAddr, cache.WithKeyPrefix(redisPrefix))
				if err != nil {
					return err
				}
				logger.Info("using redis cache", "addr", redisAddr)
				cc = rc
			default:
				fc, err := newCache(false)
				if err != nil {
					return err
				}
				cc = fc
			}

			var st store.Store
			if mongoURI != "" {
				ms, err := store.NewMongoStore(ctx, store.MongoConfig{URI: mongoURI, Database: mongoDB})
				if err != nil {
					_ = cc.Close()
					return err
				}
				logger.Info("using mongo record store", "database", mongoDB)
				st = ms
			} else {
				fs, err := newRecordStore()
				if err != nil {
					_ = cc.Close()
					return err
				}
				st = fs
			}

			runner := pipeline.NewRunner(cc, nil, logger)
			runner.Store = st
			defer runner.Close()

			return api.New(runner, logger).ListenAndServe(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", getEnv(envAddr, ":8080"), "listen address (env "+envAddr+")")
	cmd.Flags().StringVar(&redisAddr, "redis", getEnv(envRedisAddr, ""), "redis address or URL for the shared cache (env "+envRedisAddr+")")
	cmd.Flags().StringVar(&redisPrefix, "redis-prefix", appName+":", "key prefix in redis")
	cmd.Flags().StringVar(&mongoURI, "mongo", getEnv(envMongoURI, ""), "MongoDB URI for the record store (env "+envMongoURI+")")
	cmd.Flags().StringVar(&mongoDB, "mongo-db", appName, "MongoDB database name")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}
