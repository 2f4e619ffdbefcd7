package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"
	"golang.org/x/sync/errgroup"

	"github.com/Spok95/absence-bot/internal/bot"
	"github.com/Spok95/absence-bot/internal/config"
	"github.com/Spok95/absence-bot/internal/dialog"
	"github.com/Spok95/absence-bot/internal/export"
	"github.com/Spok95/absence-bot/internal/flow"
	"github.com/Spok95/absence-bot/internal/infra/db"
	httpx "github.com/Spok95/absence-bot/internal/infra/http"
	"github.com/Spok95/absence-bot/internal/infra/logger"
	"github.com/Spok95/absence-bot/internal/infra/telegram"
	"github.com/Spok95/absence-bot/internal/jobs"
	"github.com/Spok95/absence-bot/internal/storage"
	"github.com/Spok95/absence-bot/internal/storage/sqlite"
	"github.com/Spok95/absence-bot/migrations"
)

func runMigrations(ctx context.Context, dsn string) error {
	sqlDB, err := goose.OpenDBWithDriver("postgres", dsn)
	if err != nil {
		return err
	}
	defer func() { _ = sqlDB.Close() }()
	return migrations.Up(ctx, sqlDB, goose.DialectPostgres)
}

type backend struct {
	store  storage.Store
	states dialog.Store
	ping   httpx.PingFunc
	close  func()
}

func openBackend(ctx context.Context, cfg config.Config, log *slog.Logger) (*backend, error) {
	if cfg.Database.Driver == "sqlite" {
		sdb, err := sqlite.Open(ctx, cfg.Database.DSN)
		if err != nil {
			return nil, err
		}
		log.Info("sqlite opened", "path", cfg.Database.DSN)
		// состояние диалогов для sqlite держим в памяти
		return &backend{
			store:  sdb.Store(),
			states: dialog.NewMemoryStore(),
			ping:   sdb.Ping,
			close:  func() { _ = sdb.Close() },
		}, nil
	}

	if err := runMigrations(ctx, cfg.Database.DSN); err != nil {
		return nil, fmt.Errorf("migrations: %w", err)
	}
	log.Info("migrations applied")

	// воркеры плюс запас под /ready и фоновые задачи
	pool, err := db.Connect(ctx, cfg.Database.DSN, int32(cfg.Telegram.Workers+2))
	if err != nil {
		return nil, err
	}
	log.Info("db connected")

	var states dialog.Store = dialog.NewMemoryStore()
	if cfg.Dialog.Store == "postgres" {
		states = dialog.NewRepo(pool)
	}
	return &backend{
		store:  storage.NewPostgres(pool),
		states: states,
		ping:   pool.Ping,
		close:  pool.Close,
	}, nil
}

func renderers(cfg config.Config) map[export.Format]export.Renderer {
	return map[export.Format]export.Renderer{
		export.XLSX: export.XLSXRenderer{},
		export.PDF:  export.PDFRenderer{FontPath: cfg.Export.PDFFont},
	}
}

func main() {
	path := os.Getenv("APP_CONFIG")
	if path == "" {
		path = "config/example.yaml"
	}
	cfg, err := config.Load(path)
	if err != nil {
		panic(err)
	}

	log := logger.New(cfg.App.Env)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	be, err := openBackend(ctx, cfg, log)
	if err != nil {
		log.Error("storage init failed", "driver", cfg.Database.Driver, "err", err)
		return
	}
	defer be.close()
	store := be.store

	api, err := telegram.NewAPI(cfg.Telegram.Token, cfg.Telegram.ProxyURL, cfg.Telegram.RequestTimeout, cfg.Telegram.Debug)
	if err != nil {
		log.Error("telegram init failed", "err", err)
		return
	}
	log.Info("authorized", "bot", api.Self.UserName)

	gw := bot.NewGateway(api, log)
	exporter := export.NewService(cfg.Export.Dir, store.Reports, renderers(cfg))
	engine := flow.New(store, be.states, gw, exporter, log, flow.Options{
		OwnerID:       cfg.Telegram.OwnerID,
		FeedbackLimit: cfg.Feedback.DailyLimit,
		StateTTL:      cfg.Dialog.TTL,
	})
	b := bot.New(api, gw, log, engine, bot.Options{
		Workers:     cfg.Telegram.Workers,
		PollTimeout: cfg.Telegram.PollTimeout,
	})

	loc, _ := time.LoadLocation(cfg.App.Timezone)
	reset, err := jobs.NewFeedbackReset(store.Users, log, loc, cfg.Feedback.ResetAt)
	if err != nil {
		log.Error("feedback reset init failed", "err", err)
		return
	}

	srv := httpx.New(cfg.HTTP.Addr, cfg.Metrics.Enabled, be.ping)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("HTTP server started", "addr", cfg.HTTP.Addr)
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	g.Go(func() error { return reset.Run(gctx) })
	g.Go(func() error {
		log.Info("polling started", "workers", cfg.Telegram.Workers)
		return b.Run(gctx)
	})

	if err := g.Wait(); err != nil {
		log.Error("stopped with error", "err", err)
	}
	log.Info("graceful shutdown complete")
}
