package repositories

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/cockroachdb/errors"
	"github.com/jackc/pgx/v5"

	"github.com/cmis/automation-backend/models"
)

func NewQueryBuilder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// ExecBuilder builds and executes a statement that returns no rows.
func ExecBuilder(ctx context.Context, exec Executor, builder squirrel.Sqlizer) error {
	sql, args, err := builder.ToSql()
	if err != nil {
		return errors.Wrap(err, "can't build sql query")
	}

	_, err = exec.Exec(ctx, sql, args...)
	if IsUniqueViolationError(err) {
		return errors.Wrap(models.ConflictError, err.Error())
	}
	return errors.Wrap(err, "error executing sql query")
}

// SqlToListOfModels executes the query and maps every row through the adapter.
func SqlToListOfModels[DBModel, Model any](
	ctx context.Context,
	exec Executor,
	query squirrel.Sqlizer,
	adapter func(dbModel DBModel) (Model, error),
) ([]Model, error) {
	sql, args, err := query.ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "can't build sql query")
	}

	rows, err := exec.Query(ctx, sql, args...)
	if err != nil {
		return nil, errors.Wrap(err, "error executing sql query")
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (Model, error) {
		dbModel, err := pgx.RowToStructByName[DBModel](row)
		if err != nil {
			var zeroModel Model
			return zeroModel, errors.Wrap(err, fmt.Sprintf("error scanning row to struct %T", dbModel))
		}
		return adapter(dbModel)
	})
}

// SqlToOptionalModel executes the query and maps the single row through the
// adapter, returning nil when the query matches nothing.
func SqlToOptionalModel[DBModel, Model any](
	ctx context.Context,
	exec Executor,
	query squirrel.Sqlizer,
	adapter func(dbModel DBModel) (Model, error),
) (*Model, error) {
	modelsList, err := SqlToListOfModels(ctx, exec, query, adapter)
	if err != nil {
		return nil, err
	}

	switch len(modelsList) {
	case 0:
		return nil, nil
	case 1:
		return &modelsList[0], nil
	default:
		return nil, errors.Newf("expected 0 or 1 row, got %d", len(modelsList))
	}
}

// SqlToModel is SqlToOptionalModel returning a NotFoundError when the query
// matches nothing.
func SqlToModel[DBModel, Model any](
	ctx context.Context,
	exec Executor,
	query squirrel.Sqlizer,
	adapter func(dbModel DBModel) (Model, error),
) (Model, error) {
	model, err := SqlToOptionalModel(ctx, exec, query, adapter)
	var zeroModel Model
	if err != nil {
		return zeroModel, err
	}
	if model == nil {
		return zeroModel, errors.Wrap(models.NotFoundError, fmt.Sprintf("found no object of type %T", zeroModel))
	}
	return *model, nil
}
