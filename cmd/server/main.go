package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"kalita/internal/api"
	"kalita/internal/config"
	"kalita/internal/dsl"
	"kalita/internal/entry"
	"kalita/internal/lang"
	"kalita/internal/logx"
	"kalita/internal/pg"
	"kalita/internal/schema"
	"kalita/internal/store"
)

func main() {
	config.Flags(pflag.CommandLine)
	pflag.Parse()

	cfg, err := config.Load(pflag.CommandLine)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	log, err := logx.New(cfg.LogLevel, cfg.LogDev)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if err := run(context.Background(), cfg, log); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}

func run(ctx context.Context, cfg config.Config, log *zap.Logger) error {
	// 1. DSL: сущности и инфолисты
	model, err := dsl.LoadAll(cfg.DSLDir)
	if err != nil {
		return fmt.Errorf("load DSL: %w", err)
	}
	log.Info("DSL loaded",
		zap.String("dir", cfg.DSLDir),
		zap.Int("entities", len(model.Entities)),
		zap.Int("infolists", len(model.Infolists)))

	issues := schema.LintAll(model)
	for _, it := range issues {
		log.Warn("infolist lint",
			zap.String("infolist", it.Infolist),
			zap.Int("line", it.Line),
			zap.String("code", it.Code),
			zap.String("severity", it.Severity),
			zap.String("message", it.Message))
	}
	if schema.HasErrors(issues) {
		return errors.New("infolist definitions have blocking issues")
	}

	// 2. каталоги переводов (необязательны)
	catalogs, err := lang.LoadDir(cfg.LangDir)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		log.Warn("no translation catalogs", zap.String("dir", cfg.LangDir))
		catalogs = lang.Catalogs{}
	case err != nil:
		return fmt.Errorf("load catalogs: %w", err)
	}

	srv := &api.Server{
		Registry: api.NewRegistry(model, catalogs),
		Log:      log,
		AssetURL: entry.AssetBase(cfg.AssetURL),
		DSLDir:   cfg.DSLDir,
		LangDir:  cfg.LangDir,
	}

	// 3. хранилище: Postgres, если задан dbUrl, иначе память
	if cfg.DBURL == "" {
		log.Info("using in-memory store")
		srv.Store = store.NewMemory()
	} else {
		db, err := pg.Open(ctx, cfg.DBURL)
		if err != nil {
			return fmt.Errorf("open postgres: %w", err)
		}
		defer db.Close()

		if err := migrate(ctx, db, model, cfg.AutoMigrate, log); err != nil {
			return err
		}
		pgStore := pg.NewStore(db, model.Entities)
		srv.Store = pgStore
		srv.OnReload = func(ctx context.Context, m *dsl.Model) error {
			if err := migrate(ctx, db, m, cfg.AutoMigrate, log); err != nil {
				return err
			}
			pgStore.SetEntities(m.Entities)
			return nil
		}
		log.Info("using postgres store", zap.Bool("autoMigrate", cfg.AutoMigrate))
	}

	// 4. REST API
	log.Info("starting kalita", zap.String("port", cfg.Port))
	return api.RunServer(":"+cfg.Port, srv)
}

func migrate(ctx context.Context, db *sql.DB, model *dsl.Model, enabled bool, log *zap.Logger) error {
	if !enabled {
		return nil
	}
	ddl, err := pg.GenerateDDL(model.Entities)
	if err != nil {
		return fmt.Errorf("generate DDL: %w", err)
	}
	if err := pg.ApplyDDL(ctx, db, ddl, log); err != nil {
		return err
	}
	log.Info("DDL applied", zap.Int("entities", len(model.Entities)))
	return nil
}
