package tokenizer

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownDialect is returned by ParseDialect for unsupported names.
var ErrUnknownDialect = errors.New("unknown SQL dialect")

// Dialect selects the identifier quoting rules of the tokenizer.
type Dialect int

const (
	MySQL Dialect = iota
	PostgreSQL
	SQLServer
	SQLite
)

// ParseDialect converts a configuration name into a Dialect.
func ParseDialect(name string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "mysql", "mariadb", "":
		return MySQL, nil
	case "postgres", "postgresql", "pgx":
		return PostgreSQL, nil
	case "sqlserver", "mssql":
		return SQLServer, nil
	case "sqlite", "sqlite3":
		return SQLite, nil
	default:
		return MySQL, fmt.Errorf("%w: %s", ErrUnknownDialect, name)
	}
}

func (d Dialect) String() string {
	switch d {
	case MySQL:
		return "mysql"
	case PostgreSQL:
		return "postgres"
	case SQLServer:
		return "sqlserver"
	case SQLite:
		return "sqlite"
	default:
		return "unknown"
	}
}

// identifierClose returns the closing delimiter when open starts a quoted identifier.
func (d Dialect) identifierClose(open rune) (rune, bool) {
	switch open {
	case '`':
		return '`', d == MySQL || d == SQLite
	case '[':
		return ']', d == SQLServer || d == SQLite
	case '"':
		return '"', d != MySQL
	}

	return 0, false
}

// keywords maps upper-case words to their token types. Anything else is an IDENTIFIER.
var keywords = map[string]TokenType{
	"SELECT":        SELECT,
	"INSERT":        INSERT,
	"UPDATE":        UPDATE,
	"DELETE":        DELETE,
	"FROM":          FROM,
	"WHERE":         WHERE,
	"INTO":          INTO,
	"SET":           SET,
	"VALUES":        VALUES,
	"WITH":          WITH,
	"AS":            AS,
	"DISTINCT":      DISTINCT,
	"ALL":           ALL,
	"UNION":         UNION,
	"GROUP":         GROUP,
	"ORDER":         ORDER,
	"BY":            BY,
	"HAVING":        HAVING,
	"LIMIT":         LIMIT,
	"OFFSET":        OFFSET,
	"FOR":           FOR,
	"JOIN":          JOIN,
	"LEFT":          LEFT,
	"RIGHT":         RIGHT,
	"FULL":          FULL,
	"OUTER":         OUTER,
	"INNER":         INNER,
	"CROSS":         CROSS,
	"APPLY":         APPLY,
	"STRAIGHT_JOIN": STRAIGHT_JOIN,
	"NATURAL":       NATURAL,
	"ON":            ON,
	"USING":         USING,
	"AND":           AND,
	"OR":            OR,
	"NOT":           NOT,
	"IN":            IN,
	"IS":            IS,
	"NULL":          NULL,
	"LIKE":          LIKE,
	"BETWEEN":       BETWEEN,
	"EXISTS":        EXISTS,
	"LOW_PRIORITY":  LOW_PRIORITY,
	"QUICK":         QUICK,
	"IGNORE":        IGNORE,
}

// LookupKeyword returns the keyword type of word, or IDENTIFIER.
func LookupKeyword(word string) TokenType {
	if tt, ok := keywords[strings.ToUpper(word)]; ok {
		return tt
	}

	return IDENTIFIER
}
