package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"krc20-indexer/connector/tidb"
	"krc20-indexer/handlers"
	"krc20-indexer/loader"
	"krc20-indexer/logger"
	"krc20-indexer/utils"
)

// Config is the indexer configuration file. Command line flags override it.
type Config struct {
	Network      string        `toml:"network"`
	Workers      int           `toml:"workers"`
	DedupeWindow time.Duration `toml:"dedupe_window"`
	LogLevel     string        `toml:"log_level"`
	LogFile      string        `toml:"log_file"`
	MetricsAddr  string        `toml:"metrics_addr"`
	TiDB         tidb.Config   `toml:"tidb"`
}

func defaultConfig() Config {
	return Config{
		Network:      "kaspatest",
		Workers:      4,
		DedupeWindow: time.Hour,
		LogLevel:     "info",
	}
}

var (
	configFile   string
	blocksFile   string
	outputFile   string
	jsonOutput   string
	dryRun       bool
	flagConfig   = defaultConfig()
	flagDBConfig string
)

var rootCmd = &cobra.Command{
	Use:   "krc20-indexer",
	Short: "Index KRC-20 operations inscribed in kaspa transactions",
	RunE:  run,
}

func init() {
	flags := rootCmd.Flags()
	flags.StringVar(&configFile, "config", "", "indexer configuration file (toml)")
	flags.StringVar(&flagDBConfig, "db-config", "", "database configuration file (toml or json), overrides [tidb] of --config")
	flags.StringVar(&blocksFile, "blocks", "", "the filename of input blocks, one RPC block as JSON per line")
	flags.StringVar(&outputFile, "output", "./data/krc20.output.txt", "the filename of the text report")
	flags.StringVar(&jsonOutput, "json-output", "", "the filename of the JSON operation list, skipped when empty")
	flags.BoolVar(&dryRun, "dry-run", false, "do not touch the database")
	flags.StringVar(&flagConfig.Network, "network", flagConfig.Network, "network prefix or name: kaspa, kaspatest, kaspasim, kaspadev")
	flags.IntVar(&flagConfig.Workers, "workers", flagConfig.Workers, "goroutines used to extract operations of a block")
	flags.DurationVar(&flagConfig.DedupeWindow, "dedupe-window", flagConfig.DedupeWindow, "how long a processed block hash is remembered")
	flags.StringVar(&flagConfig.LogLevel, "log-level", flagConfig.LogLevel, "log level")
	flags.StringVar(&flagConfig.LogFile, "log-file", "", "also write logs to this file")
	flags.StringVar(&flagConfig.MetricsAddr, "metrics-addr", "", "serve prometheus metrics on this address")
	_ = rootCmd.MarkFlagRequired("blocks")
}

// loadConfig merges the configuration file, the flags that were set and the
// tidb_* environment variables, in increasing precedence.
func loadConfig(cmd *cobra.Command) (*Config, error) {
	config := defaultConfig()
	if configFile != "" {
		if _, err := toml.DecodeFile(configFile, &config); err != nil {
			return nil, err
		}
	}

	flags := cmd.Flags()
	if flags.Changed("network") {
		config.Network = flagConfig.Network
	}
	if flags.Changed("workers") {
		config.Workers = flagConfig.Workers
	}
	if flags.Changed("dedupe-window") {
		config.DedupeWindow = flagConfig.DedupeWindow
	}
	if flags.Changed("log-level") {
		config.LogLevel = flagConfig.LogLevel
	}
	if flags.Changed("log-file") {
		config.LogFile = flagConfig.LogFile
	}
	if flags.Changed("metrics-addr") {
		config.MetricsAddr = flagConfig.MetricsAddr
	}

	if flagDBConfig != "" {
		dbConfig, err := tidb.GetConfigFromFile(flagDBConfig)
		if err != nil {
			return nil, err
		}
		config.TiDB = *dbConfig
	}
	config.TiDB.ApplyEnv()
	return &config, nil
}

func run(cmd *cobra.Command, args []string) error {
	config, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := logger.Configure(config.LogLevel, config.LogFile); err != nil {
		return err
	}

	var logger = logger.GetLogger()

	logger.Info("start index")

	prefix, err := utils.ParsePrefix(config.Network)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	registry := prometheus.NewRegistry()
	metrics := handlers.NewMetrics(registry)
	if config.MetricsAddr != "" {
		server := &http.Server{
			Addr:    config.MetricsAddr,
			Handler: promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		}
		go func() {
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Errorf("metrics server stopped, %s", err)
			}
		}()
		defer server.Close()
	}

	if !dryRun {
		db, err := tidb.GetDBInstance(&config.TiDB)
		if err != nil {
			logger.Fatalf("connect db failed, %s", err)
		}
		if err := loader.GetMaxDaaScoreFromDB(db); err != nil {
			logger.Fatalf("load resume point failed, %s", err)
		}
		logger.Infof("resume after daa score %d", loader.GetMaxDaaScore())
	}

	blocks, err := loader.LoadBlockData(blocksFile)
	if err != nil {
		logger.Fatalf("invalid input, %s", err)
	}

	processor := handlers.NewProcessor(prefix, config.Workers, config.DedupeWindow, metrics)
	records, err := processor.ProcessBlocks(ctx, blocks)
	if err != nil {
		logger.Fatalf("process error, %s", err)
	}

	logger.Infof("successed, %d blocks processed", len(records))

	if err := loader.DumpTickerInfo(outputFile, records); err != nil {
		logger.Errorf("write report failed, %s", err)
	}
	if jsonOutput != "" {
		if err := loader.DumpOperationList(jsonOutput, records); err != nil {
			logger.Errorf("write operation list failed, %s", err)
		}
	}

	if dryRun {
		return nil
	}

	tokenActivities, err := loader.ConvertBlockRecordsToTokenActivities(records)
	if err != nil {
		return err
	}
	tokenDeploys := loader.ConvertBlockRecordsToTokenDeploys(records)
	blockBatches := loader.ConvertBlockRecordsToBlockBatches(records)

	db, err := tidb.GetDBInstance(&config.TiDB)
	if err != nil {
		return err
	}
	return tidb.ProcessUpsert(db, tokenActivities, tokenDeploys, blockBatches)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		logger.GetLogger().Fatal(err)
	}
}
