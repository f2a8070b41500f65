package querysql

import (
	"errors"
	"fmt"
	"strings"
)

// Errors returned by Parse and Bind.
var (
	// ErrArgCount is returned when the number of arguments passed to Bind
	// differs from the number of placeholders in the template.
	ErrArgCount = errors.New("argument count does not match placeholder count")

	// ErrUnsupportedPlaceholder is returned for numbered (?1) or named
	// (:name, @name, $name) placeholders. Only anonymous ? markers are
	// accepted, bound strictly left to right.
	ErrUnsupportedPlaceholder = errors.New("unsupported placeholder")

	// ErrUnterminated is returned when a quoted literal, quoted identifier
	// or block comment is never closed.
	ErrUnterminated = errors.New("unterminated quoted section")
)

// Template is a SQL statement skeleton with positional ? placeholders.
//
// Values are NEVER interpolated into the SQL text. Bind pairs the template
// with its ordered arguments and the driver binds them natively.
type Template struct {
	sql          string
	placeholders int
}

// Statement is a bound template ready for ExecContext/QueryContext.
type Statement struct {
	SQL  string
	Args []any
}

// Parse scans sql and counts its positional placeholders.
// Markers inside single-quoted literals, double-quoted identifiers and
// comments are not placeholders.
func Parse(sql string) (Template, error) {
	n, err := countPlaceholders(sql)
	if err != nil {
		return Template{}, err
	}
	return Template{sql: sql, placeholders: n}, nil
}

// MustParse is like Parse but panics on error.
// Intended for package-level statement constants.
func MustParse(sql string) Template {
	t, err := Parse(sql)
	if err != nil {
		panic(fmt.Sprintf("querysql: %v", err))
	}
	return t
}

// SQL returns the template text.
func (t Template) SQL() string {
	return t.sql
}

// Placeholders returns the number of ? markers in the template.
func (t Template) Placeholders() int {
	return t.placeholders
}

// Bind pairs the template with exactly one argument per placeholder.
// The first argument binds to the first placeholder, and so on.
func (t Template) Bind(args ...string) (Statement, error) {
	if len(args) != t.placeholders {
		return Statement{}, fmt.Errorf("%w: template has %d placeholders, got %d arguments",
			ErrArgCount, t.placeholders, len(args))
	}

	params := make([]any, len(args))
	for i, a := range args {
		params[i] = a
	}
	return Statement{SQL: t.sql, Args: params}, nil
}

// String renders the statement for debug logs. The output is not valid SQL.
func (s Statement) String() string {
	if len(s.Args) == 0 {
		return s.SQL
	}
	return fmt.Sprintf("%s %q", s.SQL, s.Args)
}

// QuoteIdent quotes a table or column name as a SQL identifier.
func QuoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// countPlaceholders walks the statement once, skipping quoted sections
// and comments.
func countPlaceholders(sql string) (int, error) {
	count := 0
	for i := 0; i < len(sql); i++ {
		c := sql[i]
		switch {
		case c == '\'' || c == '"':
			end := strings.IndexByte(sql[i+1:], c)
			if end < 0 {
				return 0, fmt.Errorf("%w: %c at offset %d", ErrUnterminated, c, i)
			}
			// A doubled quote closes and reopens, so the loop handles '' naturally.
			i += end + 1
		case c == '-' && i+1 < len(sql) && sql[i+1] == '-':
			end := strings.IndexByte(sql[i:], '\n')
			if end < 0 {
				return count, nil
			}
			i += end
		case c == '/' && i+1 < len(sql) && sql[i+1] == '*':
			end := strings.Index(sql[i+2:], "*/")
			if end < 0 {
				return 0, fmt.Errorf("%w: comment at offset %d", ErrUnterminated, i)
			}
			i += end + 3
		case c == '?':
			if i+1 < len(sql) && isDigit(sql[i+1]) {
				return 0, fmt.Errorf("%w: numbered marker at offset %d", ErrUnsupportedPlaceholder, i)
			}
			count++
		case c == ':' || c == '@' || c == '$':
			if i+1 < len(sql) && isIdentStart(sql[i+1]) && (i == 0 || !isIdentPart(sql[i-1])) {
				return 0, fmt.Errorf("%w: named marker at offset %d", ErrUnsupportedPlaceholder, i)
			}
		}
	}
	return count, nil
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || isDigit(c)
}
