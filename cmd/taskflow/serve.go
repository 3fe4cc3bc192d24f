package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/taskflow-dev/taskflow/db"
	"github.com/taskflow-dev/taskflow/internal/auth"
	"github.com/taskflow-dev/taskflow/internal/handlers"
	"github.com/taskflow-dev/taskflow/internal/health"
	"github.com/taskflow-dev/taskflow/internal/realtime"
	"github.com/taskflow-dev/taskflow/internal/repository"
	"github.com/taskflow-dev/taskflow/internal/router"
	"github.com/taskflow-dev/taskflow/internal/services/activity"
	"github.com/taskflow-dev/taskflow/internal/services/membership"
	"github.com/taskflow-dev/taskflow/internal/services/project"
	"github.com/taskflow-dev/taskflow/internal/services/task"
	"github.com/taskflow-dev/taskflow/internal/services/user"
	"github.com/taskflow-dev/taskflow/internal/services/webhook"
	"github.com/taskflow-dev/taskflow/internal/telemetry"
	"github.com/taskflow-dev/taskflow/internal/types"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Run: func(cmd *cobra.Command, args []string) {
		conf := loadConfig()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		shutdownTelemetry, err := telemetry.NewProvider(ctx, conf.ServiceName, conf.OTLPEndpoint, conf.TraceStdout)
		if err != nil {
			slog.Error("Unable to start telemetry", slog.Any("error", err))
			os.Exit(1)
		}
		defer shutdownTelemetry()

		gdb := openDatabase(conf)
		if err := db.MigrateDatabase(gdb); err != nil {
			slog.Error("Failed to migrate database", slog.Any("error", err))
			os.Exit(1)
		}

		issuer, err := auth.NewIssuer(conf.JWTSecret, conf.JWTTTL)
		if err != nil {
			slog.Error("Failed to configure tokens", slog.Any("error", err))
			os.Exit(1)
		}

		origins := types.AllowedOrigins(conf.ClientURL, conf.AllowedOrigins)

		store := repository.New(gdb)
		hub := realtime.NewHub(origins)
		recorder := activity.NewRecorder(store, hub)
		ledger := membership.NewLedger(store, recorder)
		users := user.NewService(store, issuer)

		h := handlers.New(
			users,
			ledger,
			project.NewService(store, ledger.Policy(), recorder),
			task.NewService(store, ledger.Policy(), recorder, webhook.NewNotifier(nil)),
			hub,
			handlers.CookieConfig{Domain: conf.CookieDomain, MaxAge: issuer.TTL()},
		)

		engine := router.NewRouter(h, issuer, users, health.NewDatabase(gdb, 0), origins)

		srv := &http.Server{
			Addr:              ":" + conf.Port,
			Handler:           otelhttp.NewHandler(engine, "taskflow"),
			ReadHeaderTimeout: 10 * time.Second,
		}

		go func() {
			slog.Info("Server listening", slog.String("addr", srv.Addr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				slog.Error("Failed to start server", slog.Any("error", err))
				stop()
			}
		}()

		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("Server shutdown failed", slog.Any("error", err))
		}
		slog.Info("Server stopped")
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
