// Package main provides the arena server binary: the realtime world engine
// behind a WebSocket endpoint.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"go.uber.org/zap"

	"github.com/arcadeworks/arena/internal/arena"
	"github.com/arcadeworks/arena/internal/config"
	"github.com/arcadeworks/arena/internal/game/dice"
	"github.com/arcadeworks/arena/internal/game/world"
	"github.com/arcadeworks/arena/internal/observability"
	"github.com/arcadeworks/arena/internal/records"
	"github.com/arcadeworks/arena/internal/server"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	noDB := flag.Bool("no-db", false, "run with in-memory player records instead of PostgreSQL")
	flag.Parse()

	ctx := context.Background()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	logger.Info("starting arena server", zap.String("addr", cfg.Server.Addr()))

	var store records.Store
	if *noDB {
		logger.Warn("running without database, player records are not durable")
		store = records.NewMemStore()
	} else {
		dbStart := time.Now()
		pool, err := records.NewPool(ctx, cfg.Database)
		if err != nil {
			logger.Fatal("connecting to database", zap.Error(err))
		}
		defer pool.Close()
		logger.Info("database connected",
			zap.String("host", cfg.Database.Host),
			zap.Duration("elapsed", time.Since(dbStart)),
		)
		store = records.NewPgStore(pool)
	}

	tuning := world.DefaultTuning()
	if cfg.Game.TuningFile != "" {
		tuning, err = world.LoadTuning(cfg.Game.TuningFile)
		if err != nil {
			logger.Fatal("loading tuning", zap.Error(err))
		}
		logger.Info("tuning loaded", zap.String("file", cfg.Game.TuningFile))
	}
	if cfg.Game.DuelRequestTTL > 0 {
		tuning.RequestTTL = world.Duration(cfg.Game.DuelRequestTTL)
	}

	cryptoSrc := dice.NewCryptoSource()
	roller := dice.NewRoller(cryptoSrc, logger)

	auth := records.NewStaticAuth()
	dispatcher := arena.NewDispatcher(logger)

	w, err := world.New(logger, roller, cryptoSrc, store, auth, dispatcher, tuning)
	if err != nil {
		logger.Fatal("creating world", zap.Error(err))
	}

	lifecycle := server.NewLifecycle(logger)
	lifecycle.Add("arena-server", arena.NewServer(logger, cfg.Server, w, dispatcher, auth))
	if cfg.Game.TickInterval > 0 {
		lifecycle.Add("simulation-tick", arena.NewTickManager(cfg.Game.TickInterval, w.AdvanceSimulation, logger))
	}

	logger.Info("arena server ready", zap.Duration("startup", time.Since(start)))

	if err := lifecycle.Run(ctx); err != nil {
		logger.Fatal("lifecycle failed", zap.Error(err))
	}
}
