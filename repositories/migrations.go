package repositories

import (
	"context"
	"database/sql"
	"embed"

	"github.com/cockroachdb/errors"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/cmis/automation-backend/infra"
	"github.com/cmis/automation-backend/utils"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

type Migrater struct {
	pgConfig infra.PgConfig
}

func NewMigrater(pgConfig infra.PgConfig) *Migrater {
	return &Migrater{pgConfig: pgConfig}
}

func (m *Migrater) Run(ctx context.Context) error {
	db, err := sql.Open("pgx", m.pgConfig.GetConnectionString())
	if err != nil {
		return errors.Wrap(err, "unable to connect to database")
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return errors.Wrap(err, "unable to ping database")
	}

	logger := utils.LoggerFromContext(ctx)
	logger.InfoContext(ctx, "Starting database migrations")

	goose.SetBaseFS(embedMigrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	if err := goose.Up(db, "migrations"); err != nil {
		return errors.Wrap(err, "unable to run migrations")
	}

	logger.InfoContext(ctx, "Database migrations done")
	return nil
}
