package core

import (
	"context"
	"database/sql"
	"strings"

	"github.com/jmoiron/sqlx"
)

type (
	// DBExecutor is satisfied by both *sqlx.DB and *sqlx.Tx.
	DBExecutor interface {
		sqlx.ExtContext
	}

	DB interface {
		DBExecutor

		BeginTxx(context.Context, *sql.TxOptions) (*sqlx.Tx, error)
	}
)

type DBOrdering struct {
	Field     string
	Ascending bool
}

func (ord DBOrdering) String() string {
	direction := "DESC"
	if ord.Ascending {
		direction = "ASC"
	}
	return ord.Field + " " + direction
}

// OrderBy renders orderings restricted to the allowed fields; unknown fields are skipped.
func OrderBy(orderings []DBOrdering, allowed ...string) string {
	list := make([]string, 0, len(orderings))
	for _, ord := range orderings {
		for _, fld := range allowed {
			if ord.Field == fld {
				list = append(list, ord.String())
				break
			}
		}
	}
	return strings.Join(list, ", ")
}
