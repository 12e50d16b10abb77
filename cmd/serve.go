package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/vetworks/vetmatch/internal/ingest"
	"github.com/vetworks/vetmatch/internal/logger"
	"github.com/vetworks/vetmatch/internal/matching"
	"github.com/vetworks/vetmatch/internal/scheduler"
	"github.com/vetworks/vetmatch/internal/scraper"
	"github.com/vetworks/vetmatch/internal/secrets"
	"github.com/vetworks/vetmatch/internal/server"
	"github.com/vetworks/vetmatch/internal/store"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const (
	defaultPort        = 8080
	defaultIntervalHrs = 6
	shutdownTimeout    = 10 * time.Second
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the vetmatch API server with the periodic scrape-and-match scheduler",
	Run: func(cmd *cobra.Command, _ []string) {
		serve(cmd)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().IntP("port", "p", 0, "listen port (overrides server.port from the config)")
}

func serve(cmd *cobra.Command) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Info("starting the vetmatch server", zap.String("version", version))

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(config, "", "  ")
	logger.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	if config == nil {
		logger.Fatal("config is required")
	}

	if config.Scrape == nil || config.Scrape.Command == "" {
		logger.Fatal("scraper command is required under scrape.command to populate the job feed")
	}

	st, rdb, cleanup := connect(ctx, config, logger)
	defer cleanup()

	matcher := matching.New(config.weights())
	runner := scraper.NewRunner(config.Scrape.Command, config.Scrape.Args, config.Scrape.MaxJobs, logger)

	interval := config.Scrape.IntervalHours
	if interval <= 0 {
		interval = defaultIntervalHrs
	}

	sched := scheduler.New(st, rdb, runner, prepareFilters(config), matcher, config.limit(), interval, logger)
	if err := sched.Start(ctx); err != nil {
		logger.Fatal("starting scheduler", zap.Error(err))
	}
	defer sched.Stop()

	port := defaultPort
	if config.Server != nil && config.Server.Port > 0 {
		port = config.Server.Port
	}
	if flagPort, err := cmd.Flags().GetInt("port"); err == nil && flagPort > 0 {
		port = flagPort
	}

	mux := http.NewServeMux()
	server.NewHandler(st, matcher, rdb, logger).RegisterRoutes(mux)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", zap.String("addr", srv.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("http server failed", zap.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown", zap.Error(err))
	}
}

// connect builds the postgres-backed store and the optional redis client.
// The returned cleanup closes both.
func connect(ctx context.Context, config *Config, logger *zap.Logger) (*store.Store, *redis.Client, func()) {
	databaseURL, err := resolveDatabaseURL(config)
	if err != nil {
		logger.Fatal(
			"loading database url",
			zap.Error(err),
			zap.String("hint", "set VETMATCH_DATABASE_URL_FILE environment variable or the 'database-url-file' key in the configuration file"),
		)
	}

	pool, err := store.NewPostgresPool(ctx, databaseURL)
	if err != nil {
		logger.Fatal("connecting to postgres", zap.Error(err))
	}

	var rdb *redis.Client
	if config.RedisURL != "" {
		rdb, err = store.NewRedisClient(ctx, config.RedisURL)
		if err != nil {
			logger.Fatal("connecting to redis", zap.Error(err))
		}
	} else {
		logger.Warn("redis-url is not configured, event publication disabled")
	}

	cleanup := func() {
		pool.Close()
		if rdb != nil {
			rdb.Close()
		}
	}

	return store.New(pool), rdb, cleanup
}

func resolveDatabaseURL(config *Config) (string, error) {
	if config == nil {
		return "", errors.New("config is required")
	}

	urlFile := strings.TrimSpace(config.DatabaseURLFile)
	if urlFile == "" {
		urlFile = strings.TrimSpace(viper.GetString("database-url-file"))
	}

	if urlFile == "" {
		return "", errors.New("database url file is not configured")
	}

	return secrets.DatabaseURL(urlFile)
}

func prepareFilters(config *Config) []ingest.Filter {
	var redFlags []string
	if config.Scrape != nil {
		redFlags = config.Scrape.RedFlags
	}

	return []ingest.Filter{
		ingest.NewExpired(),
		ingest.NewVeteranKeyword(),
		ingest.NewRedFlag(redFlags),
	}
}
