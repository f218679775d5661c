package tokenizer

import "errors"

// Sentinel errors
var (
	ErrUnterminatedString     = errors.New("unterminated string literal")
	ErrUnterminatedIdentifier = errors.New("unterminated quoted identifier")
	ErrUnterminatedComment    = errors.New("unterminated block comment")
	ErrInvalidNumber          = errors.New("invalid number format")
)

// TokenType represents the type of a token
type TokenType int

const (
	// Basic tokens
	EOF TokenType = iota
	WHITESPACE
	IDENTIFIER    // identifiers, including quoted ones (`t`, [t], "t")
	STRING        // string literals ('text')
	NUMBER        // numeric literals
	OPENED_PARENS // (
	CLOSED_PARENS // )
	COMMA         // ,
	SEMICOLON     // ;
	DOT           // .
	QUESTION      // ? placeholder

	// SQL operators
	EQUAL         // =
	NOT_EQUAL     // <>, !=
	LESS_THAN     // <
	GREATER_THAN  // >
	LESS_EQUAL    // <=
	GREATER_EQUAL // >=
	PLUS          // +
	MINUS         // -
	MULTIPLY      // *
	DIVIDE        // /
	MODULO        // %

	// Statement keywords
	SELECT
	INSERT
	UPDATE
	DELETE
	FROM
	WHERE
	INTO
	SET
	VALUES
	WITH
	AS
	DISTINCT
	ALL
	UNION
	GROUP
	ORDER
	BY
	HAVING
	LIMIT
	OFFSET
	FOR

	// Join keywords
	JOIN
	LEFT
	RIGHT
	FULL
	OUTER
	INNER
	CROSS
	APPLY
	STRAIGHT_JOIN
	NATURAL
	ON
	USING

	// Logical operators and conditional expressions
	AND
	OR
	NOT
	IN
	IS
	NULL
	LIKE
	BETWEEN
	EXISTS

	// MySQL modifiers
	LOW_PRIORITY
	QUICK
	IGNORE

	// Comments
	LINE_COMMENT  // -- line comment
	BLOCK_COMMENT // /* block comment */

	// Others
	OTHER
)

var tokenTypeNames = [...]string{
	EOF:           "EOF",
	WHITESPACE:    "WHITESPACE",
	IDENTIFIER:    "IDENTIFIER",
	STRING:        "STRING",
	NUMBER:        "NUMBER",
	OPENED_PARENS: "OPENED_PARENS",
	CLOSED_PARENS: "CLOSED_PARENS",
	COMMA:         "COMMA",
	SEMICOLON:     "SEMICOLON",
	DOT:           "DOT",
	QUESTION:      "QUESTION",
	EQUAL:         "EQUAL",
	NOT_EQUAL:     "NOT_EQUAL",
	LESS_THAN:     "LESS_THAN",
	GREATER_THAN:  "GREATER_THAN",
	LESS_EQUAL:    "LESS_EQUAL",
	GREATER_EQUAL: "GREATER_EQUAL",
	PLUS:          "PLUS",
	MINUS:         "MINUS",
	MULTIPLY:      "MULTIPLY",
	DIVIDE:        "DIVIDE",
	MODULO:        "MODULO",
	SELECT:        "SELECT",
	INSERT:        "INSERT",
	UPDATE:        "UPDATE",
	DELETE:        "DELETE",
	FROM:          "FROM",
	WHERE:         "WHERE",
	INTO:          "INTO",
	SET:           "SET",
	VALUES:        "VALUES",
	WITH:          "WITH",
	AS:            "AS",
	DISTINCT:      "DISTINCT",
	ALL:           "ALL",
	UNION:         "UNION",
	GROUP:         "GROUP",
	ORDER:         "ORDER",
	BY:            "BY",
	HAVING:        "HAVING",
	LIMIT:         "LIMIT",
	OFFSET:        "OFFSET",
	FOR:           "FOR",
	JOIN:          "JOIN",
	LEFT:          "LEFT",
	RIGHT:         "RIGHT",
	FULL:          "FULL",
	OUTER:         "OUTER",
	INNER:         "INNER",
	CROSS:         "CROSS",
	APPLY:         "APPLY",
	STRAIGHT_JOIN: "STRAIGHT_JOIN",
	NATURAL:       "NATURAL",
	ON:            "ON",
	USING:         "USING",
	AND:           "AND",
	OR:            "OR",
	NOT:           "NOT",
	IN:            "IN",
	IS:            "IS",
	NULL:          "NULL",
	LIKE:          "LIKE",
	BETWEEN:       "BETWEEN",
	EXISTS:        "EXISTS",
	LOW_PRIORITY:  "LOW_PRIORITY",
	QUICK:         "QUICK",
	IGNORE:        "IGNORE",
	LINE_COMMENT:  "LINE_COMMENT",
	BLOCK_COMMENT: "BLOCK_COMMENT",
	OTHER:         "OTHER",
}

// String returns the string representation of TokenType
func (t TokenType) String() string {
	if t >= 0 && int(t) < len(tokenTypeNames) && tokenTypeNames[t] != "" {
		return tokenTypeNames[t]
	}

	return "UNKNOWN"
}

// IsKeyword reports whether the type is a reserved keyword.
func (t TokenType) IsKeyword() bool {
	return t >= SELECT && t <= IGNORE
}

// IsSymbol reports whether the type is punctuation or an operator.
func (t TokenType) IsSymbol() bool {
	return t >= OPENED_PARENS && t <= MODULO
}

// Position represents a position in the source code
type Position struct {
	Line   int
	Column int
	Offset int // byte offset into the source
}

// Token represents a token. Value is the literal exactly as written in the source.
type Token struct {
	Type     TokenType
	Value    string
	Position Position
}

// End returns the byte offset just past the token.
func (t Token) End() int {
	return t.Position.Offset + len(t.Value)
}

// String returns the string representation of Token
func (t Token) String() string {
	return t.Type.String() + ": " + t.Value
}
