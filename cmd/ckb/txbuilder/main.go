package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jessevdk/go-flags"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/nervosnetwork/mercury-sub000/internal/ckb/chain"
	"github.com/nervosnetwork/mercury-sub000/internal/ckb/model"
	"github.com/nervosnetwork/mercury-sub000/internal/ckb/repository/clickhouse"
	"github.com/nervosnetwork/mercury-sub000/internal/ckb/service/audit"
	"github.com/nervosnetwork/mercury-sub000/internal/ckb/service/txbuilder"
	"github.com/nervosnetwork/mercury-sub000/internal/metrics"
	"github.com/nervosnetwork/mercury-sub000/pkg/workerpool"
)

type config struct {
	ClickhouseDSN string `long:"clickhouse-dsn" env:"MERCURY_CLICKHOUSE_DSN" description:"ClickHouse DSN" required:"true"`
	Network       string `long:"network" env:"MERCURY_NETWORK" description:"mainnet or testnet" default:"mainnet"`

	RedisAddr     string `long:"redis-addr" env:"MERCURY_REDIS_ADDR" description:"Redis address holding the pending out-point set; empty disables exclusion"`
	RedisPassword string `long:"redis-password" env:"MERCURY_REDIS_PASSWORD" description:"Redis password"`
	RedisDB       int    `long:"redis-db" env:"MERCURY_REDIS_DB" description:"Redis database" default:"0"`
	ExclusionKey  string `long:"exclusion-key" env:"MERCURY_EXCLUSION_KEY" description:"Redis set of out-points spent by unconfirmed transactions" default:"mercury:pool:outpoints"`

	ScriptsFile      string `long:"scripts-file" env:"MERCURY_SCRIPTS_FILE" description:"JSON file overriding the built-in script table"`
	FeeRate          uint64 `long:"fee-rate" env:"MERCURY_FEE_RATE" description:"default fee rate in shannons per KB" default:"1000"`
	ChequeTimeout    uint64 `long:"cheque-timeout" env:"MERCURY_CHEQUE_TIMEOUT" description:"epochs before a cheque sender may reclaim" default:"6"`
	CellbaseMaturity uint64 `long:"cellbase-maturity" env:"MERCURY_CELLBASE_MATURITY" description:"epochs before a cellbase output is spendable" default:"4"`

	RefreshInterval  time.Duration `long:"refresh-interval" env:"MERCURY_REFRESH_INTERVAL" description:"snapshot refresh interval" default:"3s"`
	HeaderCacheLife  time.Duration `long:"header-cache-life" env:"MERCURY_HEADER_CACHE_LIFE" description:"header cache entry lifetime" default:"10m"`
	AuditBatchSize   int           `long:"audit-batch-size" env:"MERCURY_AUDIT_BATCH_SIZE" description:"build records per insert" default:"500"`
	AuditFlushPeriod time.Duration `long:"audit-flush-period" env:"MERCURY_AUDIT_FLUSH_PERIOD" description:"maximum wait before build records are written" default:"10s"`

	RequestFile string `long:"request-file" env:"MERCURY_REQUEST_FILE" description:"JSON file with one request or an array of requests" required:"true"`
	OutputFile  string `long:"output-file" env:"MERCURY_OUTPUT_FILE" description:"where to write results; stdout when empty"`
	Workers     int    `long:"workers" env:"MERCURY_WORKERS" description:"requests built concurrently" default:"4"`

	MetricsAddr string `long:"metrics-addr" env:"MERCURY_METRICS_ADDR" description:"address serving /metrics; empty disables it"`
	LogFile     string `long:"log-file" env:"MERCURY_LOG_FILE" description:"rotate JSON logs into this file instead of the console"`
}

func main() {
	cfg := config{}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if _, err := flags.ParseArgs(&cfg, os.Args); err != nil {
		var ferr *flags.Error
		if errors.As(err, &ferr) && ferr.Type == flags.ErrHelp {
			return
		}
		fmt.Fprintf(os.Stderr, "failed to parse flags: %v\n", err)
		os.Exit(2)
	}

	logger, err := newLogger(cfg.LogFile)
	if err != nil {
		panic("can't initialize zap logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync()
	}()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal("txbuilder failed", zap.Error(err))
	}
}

func run(ctx context.Context, cfg config, logger *zap.Logger) error {
	network := model.Network(cfg.Network)
	if network != model.Mainnet && network != model.Testnet {
		return fmt.Errorf("unknown network %q", cfg.Network)
	}

	requests, err := loadRequests(cfg.RequestFile)
	if err != nil {
		return err
	}

	repo, err := clickhouse.NewRepository(cfg.ClickhouseDSN, network, metrics.NewClickhouseRepository())
	if err != nil {
		return fmt.Errorf("init repository: %w", err)
	}
	store, err := chain.NewCachedHeaderStore(ctx, repo, cfg.HeaderCacheLife, logger)
	if err != nil {
		return err
	}
	defer func() {
		_ = store.Close()
	}()

	scripts, err := chain.LoadScriptRegistry(network, cfg.ScriptsFile)
	if err != nil {
		return err
	}

	var exclusion chain.ExclusionSource
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer func() {
			_ = client.Close()
		}()
		exclusion = chain.NewRedisExclusionSource(client, cfg.ExclusionKey)
	}

	snapshots := &chain.SnapshotStore{}
	refresher, err := chain.NewSnapshotRefresher(store, exclusion, snapshots,
		metrics.NewSnapshotRefresher(network), cfg.RefreshInterval, logger)
	if err != nil {
		return err
	}
	if err := refresher.Refresh(ctx); err != nil {
		return fmt.Errorf("initial snapshot: %w", err)
	}

	builder, err := txbuilder.NewBuilder(store, scripts, metrics.NewTxBuilder(network), txbuilder.Config{
		Network:          network,
		FeeRate:          cfg.FeeRate,
		ChequeTimeout:    cfg.ChequeTimeout,
		CellbaseMaturity: cfg.CellbaseMaturity,
	}, logger)
	if err != nil {
		return err
	}

	recorder, err := audit.NewRecorder(repo, network, logger, cfg.AuditBatchSize, cfg.AuditFlushPeriod)
	if err != nil {
		return err
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	recorder.Start(runCtx)
	defer recorder.Stop()

	go func() {
		if err := refresher.Run(runCtx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("snapshot refresher stopped", zap.Error(err))
		}
	}()

	if cfg.MetricsAddr != "" {
		srv := serveMetrics(cfg.MetricsAddr, logger)
		defer func() {
			shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
			defer done()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	logger.Info("building transactions",
		zap.String("network", string(network)),
		zap.Int("requests", len(requests)),
		zap.Int("workers", cfg.Workers),
	)

	results, err := workerpool.Map(runCtx, cfg.Workers, requests, func(ctx context.Context, req txbuilder.Request) (result, error) {
		completion, err := buildRequest(ctx, builder, snapshots, req)
		if err != nil {
			logger.Warn("build failed", zap.String("id", req.ID), zap.String("operation", req.Operation), zap.Error(err))
			return failed(req, err), nil
		}
		if err := recorder.Record(ctx, req.Operation, completion); err != nil {
			logger.Warn("build record dropped", zap.String("id", req.ID), zap.Error(err))
		}
		return result{ID: req.ID, Operation: req.Operation, Completion: completion}, nil
	})
	if err != nil {
		return err
	}

	return writeResults(cfg.OutputFile, results)
}

func serveMetrics(addr string, logger *zap.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", zap.Error(err))
		}
	}()
	return srv
}
