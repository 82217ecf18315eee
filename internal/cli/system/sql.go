package system

import (
	"database/sql"

	"github.com/julianstephens/habitual/internal/cli"
	"github.com/julianstephens/habitual/internal/migration"
)

// sqlStore is implemented by the SQL-backed document stores.
type sqlStore interface {
	GetDB() *sql.DB
	Dialect() migration.Dialect
}

// migrationRunner returns a runner for the context's store, or nil when the
// store has no schema.
func migrationRunner(ctx *cli.Context) *migration.Runner {
	s, ok := ctx.Docs.(sqlStore)
	if !ok || s.GetDB() == nil {
		return nil
	}
	return migration.NewRunner(s.GetDB(), s.Dialect())
}
