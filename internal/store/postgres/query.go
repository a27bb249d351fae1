package postgres

import (
	"context"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/wolfeidau/teamhub/internal/store"
)

// psql builds statements with $n placeholders for pgx.
var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// execer is satisfied by both *pgxpool.Pool and pgx.Tx.
type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// paginate applies page to q. A non-positive limit leaves the query unbounded.
func paginate(q sq.SelectBuilder, page store.Page) sq.SelectBuilder {
	if page.Skip > 0 {
		q = q.Offset(uint64(page.Skip))
	}
	if page.Limit > 0 {
		q = q.Limit(uint64(page.Limit))
	}
	return q
}

// limitArg maps a non-positive limit to NULL, which Postgres treats as LIMIT ALL.
func limitArg(page store.Page) *int {
	if page.Limit <= 0 {
		return nil
	}
	return &page.Limit
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern builds an ILIKE pattern matching s literally anywhere in the
// value. Backslash is the default LIKE escape character in Postgres.
func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}

func stringPtr[T ~string](v *T) *string {
	if v == nil {
		return nil
	}
	s := string(*v)
	return &s
}
