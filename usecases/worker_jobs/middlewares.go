package worker_jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/riverqueue/river"
	"github.com/riverqueue/river/rivertype"

	"github.com/cmis/automation-backend/utils"
)

// LoggerMiddleware scopes the process logger to the job and stores it in the
// context so workers and everything below them log with job attributes.
type LoggerMiddleware struct {
	river.MiddlewareDefaults
	l *slog.Logger
}

func NewLoggerMiddleware(l *slog.Logger) *LoggerMiddleware {
	return &LoggerMiddleware{l: l}
}

func (m LoggerMiddleware) Work(ctx context.Context, job *rivertype.JobRow, doInner func(context.Context) error) error {
	logger := m.l.With(
		"job_id", job.ID,
		"job_kind", job.Kind,
		"job_attempt", job.Attempt,
		"queue", job.Queue,
	)
	start := time.Now()
	logger.InfoContext(ctx, fmt.Sprintf("Starting %s job n°%d - attempt %d", job.Kind, job.ID, job.Attempt))

	ctx = utils.StoreLoggerInContext(ctx, logger)
	if err := doInner(ctx); err != nil {
		logger.ErrorContext(ctx, fmt.Sprintf("%s job n°%d failed after %s", job.Kind, job.ID, time.Since(start)),
			"error", err.Error())
		return err
	}

	logger.InfoContext(ctx, fmt.Sprintf("%s job n°%d succeeded after %s", job.Kind, job.ID, time.Since(start)))
	return nil
}

// RecovererMiddleware turns a panicking job into a failed job instead of a
// dead worker process.
type RecovererMiddleware struct {
	river.MiddlewareDefaults
}

func NewRecovererMiddleware() *RecovererMiddleware {
	return &RecovererMiddleware{}
}

func (m RecovererMiddleware) Work(ctx context.Context, job *rivertype.JobRow, doInner func(context.Context) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return doInner(ctx)
}
