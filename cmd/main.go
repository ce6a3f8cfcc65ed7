package main

import (
	"context"
	"log/slog"
	"os"

	"parkly/cmd/bootstrap"
	"parkly/internal/handler/middleware"
	"parkly/internal/infra/db"
	"parkly/internal/pkg/config"
	"parkly/internal/usecase/commands"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/fx"
)

func init() {
	// Fail safe: never expose debug output through a config mistake
	gin.SetMode(gin.ReleaseMode)

	if mode := os.Getenv("GIN_MODE"); mode != "" {
		gin.SetMode(mode)
	}
}

// @title           parkly
// @version         1.0
// @description     Weekly parking slot booking service

// @BasePath  /api
// @schemes http https
// @in header

// prepareStorage applies the schema and reverses any overrides that
// expired while the service was down, before traffic is accepted.
func prepareStorage(lc fx.Lifecycle, pool *pgxpool.Pool, restorations commands.RestorationCommands, logger *slog.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := db.InitSchema(ctx, pool); err != nil {
				return err
			}

			result, err := restorations.RestoreExpired(ctx)
			if err != nil {
				return err
			}
			if result.Processed > 0 {
				logger.Info("startup restoration sweep",
					"processed", result.Processed,
					"restored", result.Restored,
					"freed", result.Freed)
			}
			return nil
		},
	})
}

func startServer(lc fx.Lifecycle, engine *gin.Engine, cfg config.Config, logger *slog.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			gin.EnableJsonDecoderDisallowUnknownFields()
			listenAddr := ":" + cfg.Server.Port
			logger.Info("🚀 starting server", "address", listenAddr, "mode", gin.Mode())
			go func() {
				if err := engine.Run(listenAddr); err != nil {
					logger.Error("failed to start server", "error", err)
				}
			}()
			return nil
		},
		OnStop: func(_ context.Context) error {
			logger.Info("🛑 stopping server")
			return nil
		},
	})
}

func main() {
	app := fx.New(
		bootstrap.Module,
		fx.Provide(
			func(cfg config.Config) *slog.Logger {
				logger := middleware.NewLogger(cfg.Log)
				return logger.GetSlogLogger()
			},
			func() *gin.Engine {
				return gin.New()
			},
		),
		fx.Invoke(
			prepareStorage,
			startServer,
		),
	)

	if err := app.Start(context.Background()); err != nil {
		slog.Error("failed to start application", "error", err)
		os.Exit(1)
	}

	<-app.Done()

	if err := app.Stop(context.Background()); err != nil {
		slog.Error("failed to stop application", "error", err)
	}

	slog.Info("application stopped")
}
