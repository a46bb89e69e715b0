package executor_factory

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"

	"github.com/cmis/automation-backend/repositories"
)

// ExecutorFactoryStub routes every query to a pgxmock pool, transactions
// included. Tests set expectations on Mock.
type ExecutorFactoryStub struct {
	Mock pgxmock.PgxPoolIface
}

func NewExecutorFactoryStub() ExecutorFactoryStub {
	pool, _ := pgxmock.NewPool()

	return ExecutorFactoryStub{
		Mock: pool,
	}
}

func (stub ExecutorFactoryStub) NewExecutor() repositories.Executor {
	return PgExecutorStub{stub.Mock}
}

func (stub ExecutorFactoryStub) Transaction(
	ctx context.Context,
	fn func(tx repositories.Transaction) error,
) error {
	return fn(PgExecutorStub{stub.Mock})
}

type PgExecutorStub struct {
	pgxmock.PgxPoolIface
}

func (stub PgExecutorStub) RawTx() pgx.Tx {
	return nil
}
