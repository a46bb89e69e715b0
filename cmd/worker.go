package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/jackc/pgx/v5"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"
	"github.com/riverqueue/river/rivertype"

	"github.com/cmis/automation-backend/infra"
	"github.com/cmis/automation-backend/repositories"
	"github.com/cmis/automation-backend/usecases"
	"github.com/cmis/automation-backend/usecases/worker_jobs"
	"github.com/cmis/automation-backend/utils"
)

func RunWorker() error {
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
	cycleInterval := time.Duration(utils.GetEnv("AUTOMATION_CYCLE_INTERVAL_MINUTE", 5)) * time.Minute

	logger := utils.NewLogger(utils.GetEnv("LOGGING_FORMAT", "text"))
	ctx := utils.StoreLoggerInContext(context.Background(), logger)

	pool, err := infra.NewPostgresConnectionPool(ctx, pgConfig.GetConnectionString(),
		pgConfig.MaxPoolConnections)
	if err != nil {
		return err
	}

	// First an insert-only client for the repositories, then the real one with
	// the queue list. River uses the same client type for inserting and
	// running jobs, and we need working repositories to list the org queues.
	riverClient, err := river.NewClient(riverpgxv5.New(pool), &river.Config{})
	if err != nil {
		return err
	}

	repos := repositories.NewRepositories(pool, repositories.WithRiverClient(riverClient))

	workers := river.NewWorkers()
	queues, err := usecases.QueuesFromOrgs(ctx, repos.OrganizationRepository, repos.ExecutorGetter)
	if err != nil {
		return err
	}
	riverClient, err = river.NewClient(riverpgxv5.New(pool), &river.Config{
		FetchPollInterval: 100 * time.Millisecond,
		Queues:            queues,

		// Must be larger than the time one automation cycle can take.
		RescueStuckJobsAfter: 5 * time.Minute,
		WorkerMiddleware: []rivertype.WorkerMiddleware{
			worker_jobs.NewLoggerMiddleware(logger),
			worker_jobs.NewRecovererMiddleware(),
		},
		Workers: workers,
	})
	if err != nil {
		return err
	}
	repos.TaskQueueRepository = repositories.NewTaskQueueRepository(riverClient)

	ucOpts := []usecases.Option{
		usecases.WithAppName("automation-backend"),
		usecases.WithApiVersion(apiVersion),
	}
	if platformBaseUrl != "" {
		ucOpts = append(ucOpts,
			usecases.WithPlatformRepository(repositories.NewPlatformRepositoryHTTP(platformBaseUrl)))
	}
	uc := usecases.NewUsecases(repos, ucOpts...)

	river.AddWorker(workers, worker_jobs.NewAutomationCycleWorker(uc.NewAutomationCycleUsecase()))
	river.AddWorker(workers, worker_jobs.NewRuleNotificationWorker())

	if err := riverClient.Start(ctx); err != nil {
		return err
	}

	scheduler := uc.NewAutomationScheduler(cycleInterval)
	go scheduler.Run(ctx)

	sigintOrTerm := make(chan os.Signal, 1)
	signal.Notify(sigintOrTerm, syscall.SIGINT, syscall.SIGTERM)

	go cleanStop(ctx, sigintOrTerm, riverClient)

	<-riverClient.Stopped()
	logger.InfoContext(ctx, "River client stopped")

	return nil
}

// cleanStop waits for SIGINT/SIGTERM, then soft-stops the river client so
// running jobs get a chance to finish. A second signal, or the soft-stop
// timeout, escalates to a hard stop that cancels active jobs.
func cleanStop(ctx context.Context, sigintOrTerm chan os.Signal, riverClient *river.Client[pgx.Tx]) {
	logger := utils.LoggerFromContext(ctx)
	<-sigintOrTerm
	logger.InfoContext(ctx, "Received SIGINT/SIGTERM; initiating soft stop (try to wait for jobs to finish)")

	softStopCtx, softStopCtxCancel := context.WithTimeout(ctx, 10*time.Second)
	defer softStopCtxCancel()

	go func() {
		select {
		case <-sigintOrTerm:
			logger.InfoContext(ctx, "Received SIGINT/SIGTERM again; initiating hard stop (cancel everything)")
			softStopCtxCancel()
		case <-softStopCtx.Done():
			logger.InfoContext(ctx, "Soft stop timeout; initiating hard stop (cancel everything)")
		}
	}()

	err := riverClient.Stop(softStopCtx)
	if err != nil && !errors.Is(err, context.DeadlineExceeded) && !errors.Is(err, context.Canceled) {
		logger.ErrorContext(ctx, "Soft stop failed", "error", err)
		return
	}
	if err == nil {
		logger.InfoContext(ctx, "Soft stop succeeded")
		return
	}

	hardStopCtx, hardStopCtxCancel := context.WithTimeout(ctx, 10*time.Second)
	defer hardStopCtxCancel()

	err = riverClient.StopAndCancel(hardStopCtx)
	if err != nil && errors.Is(err, context.DeadlineExceeded) {
		logger.InfoContext(ctx, "Hard stop timeout; ignoring stop procedure and exiting unsafely")
		return
	}
	if err != nil {
		logger.ErrorContext(ctx, "Hard stop failed", "error", err)
	}
}
