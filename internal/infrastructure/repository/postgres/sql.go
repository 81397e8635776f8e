package postgres

import (
	"database/sql"
	"strconv"
	"strings"
)

func isNotFound(err error) bool {
	return err == sql.ErrNoRows
}

// Pooled connections behind pgbouncer in transaction mode can race the
// unnamed prepared statement, surfacing 08P01 bind mismatches or 26000
// statement-missing errors. Callers retry with a single array parameter
// or literal values when these fire.
func isBindParameterMismatch(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "bind message supplies") || strings.Contains(msg, "08P01")
}

func isUnnamedPreparedStatementMissing(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	if strings.Contains(msg, "unnamed prepared statement does not exist") {
		return true
	}
	return strings.Contains(msg, "prepared statement") && strings.Contains(msg, "26000")
}

func quoteLiteral(value string) string {
	return "'" + strings.ReplaceAll(value, "'", "''") + "'"
}

func nullStringToInt64(value sql.NullString) int64 {
	if !value.Valid {
		return 0
	}
	parsed, err := strconv.ParseInt(strings.TrimSpace(value.String), 10, 64)
	if err != nil {
		return 0
	}
	return parsed
}
