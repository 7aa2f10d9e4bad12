package migrations

import (
	"context"
	_ "embed"
	"strings"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect"
	"github.com/uptrace/bun/migrate"
)

//go:embed sqlite_tables.sql
var sqliteTablesSQL string

//go:embed postgres_tables.sql
var postgresTablesSQL string

// Migrations holds the schema for every supported dialect.
var Migrations = migrate.NewMigrations()

func init() {
	Migrations.MustRegister(
		func(ctx context.Context, db *bun.DB) error {
			script := sqliteTablesSQL
			if db.Dialect().Name() == dialect.PG {
				script = postgresTablesSQL
			}
			return execScript(ctx, db, script)
		},
		func(ctx context.Context, db *bun.DB) error {
			for _, table := range []string{"quiz_results", "questions", "users"} {
				if _, err := db.ExecContext(ctx, "DROP TABLE IF EXISTS "+table); err != nil {
					return err
				}
			}
			return nil
		},
	)
}

// execScript runs the statements of script one at a time; not every driver accepts batches.
func execScript(ctx context.Context, db *bun.DB, script string) error {
	for _, stmt := range strings.Split(script, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
