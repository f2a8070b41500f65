package querysql

import "strings"

// LikeEscapeClause is appended after a LIKE operand so that EscapeLike output
// is interpreted literally.
const LikeEscapeClause = `ESCAPE '\'`

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// EscapeLike escapes the LIKE wildcards % and _ and the escape character itself.
func EscapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// PrefixPattern returns a LIKE pattern matching values that start with prefix.
func PrefixPattern(prefix string) string {
	return EscapeLike(prefix) + "%"
}

// ContainsPattern returns a LIKE pattern matching values that contain substr.
func ContainsPattern(substr string) string {
	return "%" + EscapeLike(substr) + "%"
}
