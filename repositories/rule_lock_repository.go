package repositories

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RuleLockRepository serializes rule executions across concurrently running
// automation cycles through Postgres advisory locks.
type RuleLockRepository interface {
	TryLockRule(ctx context.Context, ruleId uuid.UUID) (RuleLock, bool, error)
}

// RuleLock releases the advisory lock. Session locks are bound to the
// connection they were taken on, so the lock pins a pool connection until
// released.
type RuleLock interface {
	Release(ctx context.Context) error
}

type RuleLockRepositoryPostgresql struct {
	pool *pgxpool.Pool
}

func NewRuleLockRepositoryPostgresql(pool *pgxpool.Pool) *RuleLockRepositoryPostgresql {
	return &RuleLockRepositoryPostgresql{pool: pool}
}

func (repo *RuleLockRepositoryPostgresql) TryLockRule(
	ctx context.Context,
	ruleId uuid.UUID,
) (RuleLock, bool, error) {
	conn, err := repo.pool.Acquire(ctx)
	if err != nil {
		return nil, false, errors.Wrap(err, "error acquiring connection for rule lock")
	}

	var acquired bool
	err = conn.QueryRow(ctx,
		"SELECT pg_try_advisory_lock(hashtextextended($1, 0))",
		ruleId.String(),
	).Scan(&acquired)
	if err != nil {
		conn.Release()
		return nil, false, errors.Wrap(err, "error taking rule advisory lock")
	}
	if !acquired {
		conn.Release()
		return nil, false, nil
	}

	return &ruleLock{conn: conn, ruleId: ruleId}, true, nil
}

type ruleLock struct {
	conn   *pgxpool.Conn
	ruleId uuid.UUID
}

func (l *ruleLock) Release(ctx context.Context) error {
	defer l.conn.Release()

	var released bool
	err := l.conn.QueryRow(ctx,
		"SELECT pg_advisory_unlock(hashtextextended($1, 0))",
		l.ruleId.String(),
	).Scan(&released)
	if err != nil {
		return errors.Wrap(err, "error releasing rule advisory lock")
	}
	if !released {
		return errors.Newf("advisory lock for rule %s was not held", l.ruleId)
	}
	return nil
}
