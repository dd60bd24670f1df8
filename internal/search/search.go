// Package search applies the dashboards' case-insensitive substring filter
// in SQL.
package search

import (
	"fmt"
	"strings"

	"gorm.io/gorm"
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// Pattern turns a search term into a LIKE pattern matching any string that
// contains it. Wildcards in the term match literally.
func Pattern(term string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(strings.TrimSpace(term))) + "%"
}

// Apply narrows db to rows where any of columns contains term, ignoring case.
// A blank term leaves db untouched. Columns are trusted identifiers.
func Apply(db *gorm.DB, term string, columns ...string) *gorm.DB {
	if strings.TrimSpace(term) == "" || len(columns) == 0 {
		return db
	}
	pattern := Pattern(term)
	clauses := make([]string, len(columns))
	args := make([]interface{}, len(columns))
	for i, col := range columns {
		clauses[i] = fmt.Sprintf(`LOWER(%s) LIKE ? ESCAPE '\'`, col)
		args[i] = pattern
	}
	return db.Where("("+strings.Join(clauses, " OR ")+")", args...)
}
