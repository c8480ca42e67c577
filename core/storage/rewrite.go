package storage

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Rewrite translates a SQLite-flavoured query into the active backend's
// dialect. Every repository writes SQL using `?` placeholders and the two
// SQLite date idioms the domain needs; on SQLite this is the
// identity function, on Postgres it rewrites both.
func (a *Adapter) Rewrite(query string) string {
	if a.Backend == SQLite {
		return query
	}
	q := rewriteDateFuncs(query, a.Loc)
	return rewritePlaceholders(q)
}

// rewritePlaceholders turns positional `?` markers into Postgres's `$1, $2,
//...` markers, left to right, skipping `?` inside single-quoted string
// literals so a literal question mark in data never gets counted.
func rewritePlaceholders(query string) string {
	var b strings.Builder
	n := 0
	inString := false
	for i := 0; i < len(query); i++ {
		c := query[i]
		switch {
		case c == '\'':
			inString = !inString
			b.WriteByte(c)
		case c == '?' && !inString:
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

var (
	// DATE(col, 'localtime') -> (col AT TIME ZONE 'TZ')::date
	dateLocaltimeRe = regexp.MustCompile(`(?i)DATE\(\s*([a-zA-Z0-9_.]+)\s*,\s*'localtime'\s*\)`)
	// DATE('now', 'localtime') -> CURRENT_DATE (server tz assumed == TZ)
	dateNowLocaltimeRe = regexp.MustCompile(`(?i)DATE\(\s*'now'\s*,\s*'localtime'\s*\)`)
	// DATE(col) with no modifier -> col::date
	datePlainRe = regexp.MustCompile(`(?i)DATE\(\s*([a-zA-Z0-9_.]+)\s*\)`)
)

// rewriteDateFuncs translates the SQLite date-function idioms used
// throughout tenant/ and delivery/ queries into their Postgres equivalents.
// loc's IANA name is substituted into the AT TIME ZONE clause so "today" is
// computed against the configured TIME_ZONE rather than the database
// server's own zone.
func rewriteDateFuncs(query string, loc *time.Location) string {
	tz := "UTC"
	if loc != nil {
		tz = loc.String()
	}
	query = dateNowLocaltimeRe.ReplaceAllString(query, "CURRENT_DATE")
	query = dateLocaltimeRe.ReplaceAllString(query, "($1 AT TIME ZONE '"+tz+"')::date")
	query = datePlainRe.ReplaceAllString(query, "($1)::date")
	return query
}
