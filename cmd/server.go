package cmd

import (
	"context"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"

	"github.com/cmis/automation-backend/api"
	"github.com/cmis/automation-backend/infra"
	"github.com/cmis/automation-backend/repositories"
	"github.com/cmis/automation-backend/usecases"
	"github.com/cmis/automation-backend/utils"
)

func RunServer() error {
	apiConfig := api.Configuration{
		Env:            utils.GetEnv("ENV", "development"),
		Port:           utils.GetEnv("PORT", "8080"),
		RequestTimeout: time.Duration(utils.GetEnv("REQUEST_TIMEOUT_SECOND", 30)) * time.Second,
	}
	pgConfig := infra.PgConfig{
		ConnectionString:   utils.GetEnv("PG_CONNECTION_STRING", ""),
		Database:           "automation",
		Hostname:           utils.GetEnv("PG_HOSTNAME", ""),
		Password:           utils.GetEnv("PG_PASSWORD", ""),
		Port:               utils.GetEnv("PG_PORT", "5432"),
		User:               utils.GetEnv("PG_USER", ""),
		MaxPoolConnections: utils.GetEnv("PG_MAX_POOL_SIZE", infra.DEFAULT_MAX_CONNECTIONS),
		SslMode:            utils.GetEnv("PG_SSL_MODE", "prefer"),
	}
	platformBaseUrl := utils.GetEnv("PLATFORM_GATEWAY_URL", "")

	logger := utils.NewLogger(utils.GetEnv("LOGGING_FORMAT", "text"))
	ctx := utils.StoreLoggerInContext(context.Background(), logger)

	pool, err := infra.NewPostgresConnectionPool(ctx, pgConfig.GetConnectionString(),
		pgConfig.MaxPoolConnections)
	if err != nil {
		return err
	}

	// Insert-only river client: the API enqueues jobs but never runs them.
	riverClient, err := river.NewClient(riverpgxv5.New(pool), &river.Config{})
	if err != nil {
		return err
	}

	repos := repositories.NewRepositories(pool, repositories.WithRiverClient(riverClient))

	ucOpts := []usecases.Option{
		usecases.WithAppName("automation-backend"),
		usecases.WithApiVersion(apiVersion),
	}
	if platformBaseUrl != "" {
		ucOpts = append(ucOpts,
			usecases.WithPlatformRepository(repositories.NewPlatformRepositoryHTTP(platformBaseUrl)))
	}
	uc := usecases.NewUsecases(repos, ucOpts...)

	router := api.InitRouterMiddlewares(ctx, apiConfig)
	server := api.NewServer(router, apiConfig, uc)

	notify, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.InfoContext(ctx, "starting server", slog.String("port", apiConfig.Port))
		err := server.ListenAndServe()
		if !errors.Is(err, http.ErrServerClosed) {
			logger.ErrorContext(ctx, "error while serving the app", "error", err)
		}
		logger.InfoContext(ctx, "server returned")
	}()

	<-notify.Done()
	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "error while shutting down the server")
	}
	return nil
}
