package storepg

import (
	"context"
	"database/sql"
	"embed"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	errs "github.com/sessionworks/go-session-server/internal/errors"
)

//go:embed migrations/*.sql
var migrations embed.FS

// RunMigrations applies the embedded schema migrations against the database
// at dsn. It opens its own database/sql connection because goose does not
// speak pgxpool.
func RunMigrations(ctx context.Context, dsn string) error {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return errs.Wrapf(err, "storepg.RunMigrations open")
	}
	defer db.Close()

	goose.SetBaseFS(migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return errs.Wrapf(err, "storepg.RunMigrations dialect")
	}

	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		return errs.Wrapf(err, "storepg.RunMigrations up")
	}
	return nil
}
