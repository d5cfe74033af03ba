package app

import (
	"strconv"
	"strings"
)

const maxTracedQueryLength = 512

// formatDBQueryForTrace flattens whitespace and reduces a multi-row insert to
// its first VALUES tuple plus a row count.
func formatDBQueryForTrace(query string) string {
	normalized := strings.Join(strings.Fields(query), " ")
	if normalized == "" {
		return normalized
	}

	normalized = collapseValueRows(normalized)
	if len(normalized) <= maxTracedQueryLength {
		return normalized
	}
	return normalized[:maxTracedQueryLength] + "..."
}

func collapseValueRows(query string) string {
	const marker = " VALUES "
	idx := strings.Index(query, marker)
	if idx < 0 {
		return query
	}
	head, rest := query[:idx+len(marker)], query[idx+len(marker):]

	rows, firstEnd, pos := 0, 0, 0
	for strings.HasPrefix(rest[pos:], "(") {
		end := strings.IndexByte(rest[pos:], ')')
		if end < 0 {
			break
		}
		pos += end + 1
		rows++
		if rows == 1 {
			firstEnd = pos
		}
		if !strings.HasPrefix(rest[pos:], ", (") {
			break
		}
		pos += len(", ")
	}
	if rows <= 1 {
		return query
	}
	return head + rest[:firstEnd] + " /* +" + strconv.Itoa(rows-1) + " rows */" + rest[pos:]
}
