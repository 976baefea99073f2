package repository

import "strings"

// likeEscaper escapes the LIKE metacharacters so a user's filter text is matched literally.
// Queries using the pattern must declare ESCAPE '\'.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// ContainsPattern returns a LIKE pattern matching any value that contains q.
// An empty q yields "" so callers can short-circuit the predicate.
func ContainsPattern(q string) string {
	q = strings.TrimSpace(q)
	if q == "" {
		return ""
	}
	return "%" + likeEscaper.Replace(q) + "%"
}
