package postgres

import (
	"database/sql"
	"strings"
)

func nullString(value string) sql.NullString {
	if value == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: value, Valid: true}
}

func nullInt64(value int64) sql.NullInt64 {
	return sql.NullInt64{Int64: value, Valid: true}
}

// isResultFormatMismatch detects the pgbouncer transaction-pooling error
// raised when binary results of a prepared statement leak across sessions.
func isResultFormatMismatch(err error) bool {
	if err == nil {
		return false
	}
	text := strings.ToLower(err.Error())
	return strings.Contains(text, "bind message has") &&
		strings.Contains(text, "result formats") &&
		strings.Contains(text, "query has")
}
