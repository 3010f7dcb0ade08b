// Package sqlxrepos implements the core repositories on PostgreSQL via sqlx.
package sqlxrepos

import (
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/trezcool/kitabu/core"
)

// extContext returns the executor for a query: the service-provided one
// (a transaction) when present, the repository's pool otherwise.
func extContext(db *sqlx.DB, svcExec []core.DBExecutor) sqlx.ExtContext {
	if len(svcExec) > 0 {
		if ext, ok := svcExec[0].(sqlx.ExtContext); ok {
			return ext
		}
	}
	return db
}

// whereClause joins conds with AND, or returns "" when there are none.
func whereClause(conds []string) string {
	if len(conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(conds, " AND ")
}

// orderClause renders an ORDER BY from orderings, defaulting to def.
func orderClause(ordering []core.DBOrdering, def string) string {
	if len(ordering) == 0 {
		if def == "" {
			return ""
		}
		return " ORDER BY " + def
	}
	parts := make([]string, 0, len(ordering))
	for _, ord := range ordering {
		parts = append(parts, ord.String())
	}
	return " ORDER BY " + strings.Join(parts, ", ")
}

// joinSets renders the SET clause body from "col = $n" fragments.
func joinSets(sets []string) string {
	return strings.Join(sets, ", ")
}

// inParams renders ($n,$n+1,...) for len(ids) params starting at start.
func inParams(start, n int) string {
	params := make([]string, 0, n)
	for i := 0; i < n; i++ {
		params = append(params, fmt.Sprintf("$%d", start+i))
	}
	return "(" + strings.Join(params, ",") + ")"
}
