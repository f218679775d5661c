package query

import (
	"strconv"
	"strings"

	tok "github.com/shibukawa/sqlshard/tokenizer"
)

func normalizeSQLDriverName(driver string) string {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "postgres", "postgresql", "pgx":
		return "pgx"
	case "mysql", "mariadb":
		return "mysql"
	case "sqlite", "sqlite3":
		return "sqlite3"
	default:
		return strings.ToLower(strings.TrimSpace(driver))
	}
}

// DialectFromDriver guesses the SQL dialect spoken by a driver.
func DialectFromDriver(driver string) (tok.Dialect, error) {
	switch normalizeSQLDriverName(driver) {
	case "pgx":
		return tok.PostgreSQL, nil
	case "sqlite3":
		return tok.SQLite, nil
	default:
		return tok.ParseDialect(driver)
	}
}

// IsDangerousQuery reports whether sql is an UPDATE or DELETE without a top-level WHERE clause.
func IsDangerousQuery(sql string, dialect tok.Dialect) bool {
	tokens, err := tok.NewSqlTokenizer(sql, dialect, tok.TokenizerOptions{SkipWhitespace: true, SkipComments: true}).AllTokens()
	if err != nil || len(tokens) == 0 {
		return false
	}

	if tokens[0].Type != tok.UPDATE && tokens[0].Type != tok.DELETE {
		return false
	}

	depth := 0

	for _, token := range tokens {
		switch token.Type {
		case tok.OPENED_PARENS:
			depth++
		case tok.CLOSED_PARENS:
			depth--
		case tok.WHERE:
			if depth == 0 {
				return false
			}
		}
	}

	return true
}

// Rebind numbers the ? placeholders of sql as $1, $2, ... for drivers that only accept
// positional parameters. Placeholders that are already positional are left untouched.
func Rebind(sql string) string {
	tokens, err := tok.NewSqlTokenizer(sql, tok.PostgreSQL).AllTokens()
	if err != nil {
		return sql
	}

	var (
		b     strings.Builder
		last  int
		index int
	)

	for _, token := range tokens {
		if token.Type != tok.QUESTION || token.Value != "?" {
			continue
		}

		index++

		b.WriteString(sql[last:token.Position.Offset])
		b.WriteString("$" + strconv.Itoa(index))
		last = token.End()
	}

	if index == 0 {
		return sql
	}

	b.WriteString(sql[last:])

	return b.String()
}

// CountParameters returns how many arguments sql binds: one per ? placeholder plus the
// highest $N reference, since positional placeholders may repeat.
func CountParameters(sql string, dialect tok.Dialect) int {
	tokens, err := tok.NewSqlTokenizer(sql, dialect, tok.TokenizerOptions{SkipWhitespace: true, SkipComments: true}).AllTokens()
	if err != nil {
		return 0
	}

	questions := 0
	positional := 0

	for _, token := range tokens {
		if token.Type != tok.QUESTION {
			continue
		}

		if token.Value == "?" {
			questions++
			continue
		}

		if n, err := strconv.Atoi(token.Value[1:]); err == nil && n > positional {
			positional = n
		}
	}

	return questions + positional
}
