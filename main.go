package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/disgoorg/disgo/bot"
	"github.com/disgoorg/disgo/handler"
	"github.com/sergawain/gawain/gawain"
	"github.com/sergawain/gawain/gawain/commands"
	"github.com/sergawain/gawain/gawain/commands/admin"
	"github.com/sergawain/gawain/gawain/commands/board"
	"github.com/sergawain/gawain/gawain/commands/system"
	"github.com/sergawain/gawain/gawain/commands/users"
	"github.com/sergawain/gawain/gawain/database"
	"github.com/sergawain/gawain/gawain/handlers"
	"github.com/sergawain/gawain/gawain/logger"
	"github.com/sergawain/gawain/gawain/ops"
	"github.com/sergawain/gawain/internal/domain/crafting"
	"github.com/sergawain/gawain/internal/gateways/database/repositories"
	"golang.org/x/sync/errgroup"
)

var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	slog.SetDefault(slog.New(logger.NewHandler(slog.LevelInfo)))

	shouldSyncCommands := flag.Bool("sync-commands", false, "Whether to sync commands to discord")
	path := flag.String("config", "config.toml", "path to config")
	flag.Parse()

	cfg, err := gawain.LoadConfig(*path)
	if err != nil {
		slog.Error("Failed to load configuration", slog.String("type", "sys"), slog.Any("error", err))
		os.Exit(-1)
	}
	setupLogger(cfg.Log)

	slog.Info("Starting Gawain",
		slog.String("type", "sys"),
		slog.String("version", version),
		slog.String("commit", commit))

	dbStartTime := time.Now()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	db, err := database.New(ctx, cfg.DB)
	if err != nil {
		cancel()
		slog.Error("Database connection failed",
			slog.String("type", "db"),
			slog.Any("error", err),
			slog.Duration("attempted_for", time.Since(dbStartTime)))
		os.Exit(-1)
	}
	if err = db.InitializeSchema(ctx); err != nil {
		cancel()
		db.Close()
		slog.Error("Failed to initialize database schema",
			slog.String("type", "db"),
			slog.Any("error", err))
		os.Exit(-1)
	}
	cancel()
	defer db.Close()

	slog.Info("Database ready",
		slog.String("type", "db"),
		slog.String("database", cfg.DB.Database),
		slog.Duration("took", time.Since(dbStartTime)))

	b := gawain.New(*cfg, version, commit)
	b.DB = db
	b.Crafting = crafting.NewService(repositories.NewStore(db.BunDB()))

	directory, err := handlers.NewDirectory()
	if err != nil {
		slog.Error("Failed to create guild directory", slog.String("type", "sys"), slog.Any("error", err))
		os.Exit(-1)
	}

	h := handler.New()
	h.Command("/version", handlers.WrapWithLogging("version", system.VersionHandler(b)))
	board.NewHandler(b, directory).Register(h)
	users.Register(b, directory, h)
	admin.Register(b, directory, h)

	if err = b.SetupBot(h, bot.NewListenerFunc(b.OnReady)); err != nil {
		slog.Error("Failed to setup bot",
			slog.String("type", "sys"),
			slog.Any("error", err),
			slog.String("error_details", fmt.Sprintf("%+v", err)))
		os.Exit(-1)
	}

	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		b.Client.Close(ctx)
	}()

	if *shouldSyncCommands {
		slog.Info("Syncing commands",
			slog.String("type", "sys"),
			slog.Any("guild_ids", cfg.Bot.DevGuilds))
		if err = handler.SyncCommands(b.Client, commands.Commands, cfg.Bot.DevGuilds); err != nil {
			slog.Error("Failed to sync commands",
				slog.String("type", "sys"),
				slog.Any("error", err))
		}
	}

	runCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(runCtx)
	if cfg.Ops.Addr != "" {
		server := ops.NewServer(cfg.Ops.Addr, db, version)
		g.Go(func() error { return server.Run(gctx) })
	}
	g.Go(func() error {
		openCtx, cancel := context.WithTimeout(gctx, 10*time.Second)
		defer cancel()
		if err := b.Client.OpenGateway(openCtx); err != nil {
			return fmt.Errorf("failed to open gateway: %w", err)
		}
		slog.Info("Bot is running. Press CTRL-C to exit.", slog.String("type", "sys"))
		<-gctx.Done()
		return nil
	})

	if err = g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("Shutting down after error", slog.String("type", "sys"), slog.Any("error", err))
		os.Exit(-1)
	}
	slog.Info("Shutting down bot...", slog.String("type", "sys"))
}

func setupLogger(cfg gawain.LogConfig) {
	if cfg.Format == "json" {
		slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level:     cfg.Level,
			AddSource: cfg.AddSource,
		})))
		return
	}
	slog.SetDefault(slog.New(logger.NewHandler(cfg.Level)))
}
