package tokenizer

import (
	"testing"

	"github.com/alecthomas/assert/v2"
)

func tokenTypes(t *testing.T, sql string, dialect Dialect, options ...TokenizerOptions) []TokenType {
	t.Helper()

	tokens, err := NewSqlTokenizer(sql, dialect, options...).AllTokens()
	assert.NoError(t, err)

	types := make([]TokenType, 0, len(tokens))
	for _, token := range tokens {
		types = append(types, token.Type)
	}

	return types
}

func TestTokenIterator(t *testing.T) {
	sql := "SELECT id, name FROM users WHERE active = ?;"

	expected := []TokenType{
		SELECT, WHITESPACE, IDENTIFIER, COMMA, WHITESPACE, IDENTIFIER, WHITESPACE,
		FROM, WHITESPACE, IDENTIFIER, WHITESPACE, WHERE, WHITESPACE, IDENTIFIER,
		WHITESPACE, EQUAL, WHITESPACE, QUESTION, SEMICOLON, EOF,
	}

	assert.Equal(t, expected, tokenTypes(t, sql, MySQL))
}

func TestTokenIteratorWithOptions(t *testing.T) {
	sql := "SELECT id FROM users -- comment\nWHERE /* block */ id = 1;"

	expected := []TokenType{
		SELECT, IDENTIFIER, FROM, IDENTIFIER, WHERE, IDENTIFIER, EQUAL, NUMBER, SEMICOLON, EOF,
	}

	assert.Equal(t, expected, tokenTypes(t, sql, MySQL, TokenizerOptions{SkipWhitespace: true, SkipComments: true}))
}

func TestIteratorEarlyTermination(t *testing.T) {
	tokenizer := NewSqlTokenizer("SELECT id, name FROM users", MySQL)

	count := 0
	for _, err := range tokenizer.Tokens() {
		assert.NoError(t, err)

		count++
		if count >= 3 {
			break
		}
	}

	assert.Equal(t, 3, count)
}

func TestJoinKeywords(t *testing.T) {
	sql := "left Right FULL outer INNER cross APPLY straight_join JOIN on USING natural"

	expected := []TokenType{
		LEFT, RIGHT, FULL, OUTER, INNER, CROSS, APPLY, STRAIGHT_JOIN, JOIN, ON, USING, NATURAL, EOF,
	}

	assert.Equal(t, expected, tokenTypes(t, sql, MySQL, TokenizerOptions{SkipWhitespace: true}))
}

func TestLiteralPreservesCase(t *testing.T) {
	tokens, err := NewSqlTokenizer("select * from T_Order", MySQL, TokenizerOptions{SkipWhitespace: true}).AllTokens()
	assert.NoError(t, err)

	assert.Equal(t, "select", tokens[0].Value)
	assert.Equal(t, SELECT, tokens[0].Type)
	assert.Equal(t, "T_Order", tokens[3].Value)
	assert.Equal(t, IDENTIFIER, tokens[3].Type)
}

func TestPositions(t *testing.T) {
	sql := "SELECT *\nFROM  t_order o"
	tokens, err := NewSqlTokenizer(sql, MySQL, TokenizerOptions{SkipWhitespace: true}).AllTokens()
	assert.NoError(t, err)

	order := tokens[3]
	assert.Equal(t, "t_order", order.Value)
	assert.Equal(t, Position{Line: 2, Column: 7, Offset: 15}, order.Position)
	assert.Equal(t, 22, order.End())
	assert.Equal(t, "t_order", sql[order.Position.Offset:order.End()])

	eof := tokens[len(tokens)-1]
	assert.Equal(t, EOF, eof.Type)
	assert.Equal(t, len(sql), eof.Position.Offset)
}

func TestMultiByteOffsets(t *testing.T) {
	sql := "SELECT 'ユーザー' FROM t_user"
	tokens, err := NewSqlTokenizer(sql, MySQL, TokenizerOptions{SkipWhitespace: true}).AllTokens()
	assert.NoError(t, err)

	user := tokens[3]
	assert.Equal(t, "t_user", user.Value)
	assert.Equal(t, "t_user", sql[user.Position.Offset:user.End()])
	assert.Equal(t, 20, user.Position.Column)
}

func TestQuotedIdentifiers(t *testing.T) {
	tests := []struct {
		name     string
		dialect  Dialect
		input    string
		expected Token
	}{
		{
			name:     "mysql backtick",
			dialect:  MySQL,
			input:    "`t_order`",
			expected: Token{Type: IDENTIFIER, Value: "`t_order`", Position: Position{Line: 1, Column: 1}},
		},
		{
			name:     "sqlserver bracket",
			dialect:  SQLServer,
			input:    "[t_order]",
			expected: Token{Type: IDENTIFIER, Value: "[t_order]", Position: Position{Line: 1, Column: 1}},
		},
		{
			name:     "postgres double quote",
			dialect:  PostgreSQL,
			input:    `"t_order"`,
			expected: Token{Type: IDENTIFIER, Value: `"t_order"`, Position: Position{Line: 1, Column: 1}},
		},
		{
			name:     "mysql double quote is a string",
			dialect:  MySQL,
			input:    `"t_order"`,
			expected: Token{Type: STRING, Value: `"t_order"`, Position: Position{Line: 1, Column: 1}},
		},
		{
			name:     "postgres positional placeholder",
			dialect:  PostgreSQL,
			input:    "$12 ",
			expected: Token{Type: QUESTION, Value: "$12", Position: Position{Line: 1, Column: 1}},
		},
		{
			name:     "quoted keyword stays an identifier",
			dialect:  MySQL,
			input:    "`join`",
			expected: Token{Type: IDENTIFIER, Value: "`join`", Position: Position{Line: 1, Column: 1}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens, err := NewSqlTokenizer(tt.input, tt.dialect).AllTokens()
			assert.NoError(t, err)
			assert.Equal(t, tt.expected, tokens[0])
		})
	}
}

func TestStrings(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"simple", "'abc'"},
		{"doubled quote", "'it''s'"},
		{"backslash escape", `'a\'b'`},
		{"empty", "''"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens, err := NewSqlTokenizer(tt.input, MySQL).AllTokens()
			assert.NoError(t, err)
			assert.Equal(t, 2, len(tokens))
			assert.Equal(t, STRING, tokens[0].Type)
			assert.Equal(t, tt.input, tokens[0].Value)
		})
	}
}

func TestOperators(t *testing.T) {
	expected := []TokenType{
		EQUAL, NOT_EQUAL, NOT_EQUAL, LESS_THAN, GREATER_THAN, LESS_EQUAL, GREATER_EQUAL,
		PLUS, MINUS, MULTIPLY, DIVIDE, MODULO, DOT, QUESTION, EOF,
	}

	assert.Equal(t, expected, tokenTypes(t, "= <> != < > <= >= + - * / % . ?", MySQL, TokenizerOptions{SkipWhitespace: true}))
}

func TestNumbers(t *testing.T) {
	for _, input := range []string{"1", "123", "1.5", ".5", "1e10", "2.5E-3"} {
		t.Run(input, func(t *testing.T) {
			tokens, err := NewSqlTokenizer(input, MySQL).AllTokens()
			assert.NoError(t, err)
			assert.Equal(t, NUMBER, tokens[0].Type)
			assert.Equal(t, input, tokens[0].Value)
		})
	}
}

func TestComments(t *testing.T) {
	assert.Equal(t, []TokenType{LINE_COMMENT, WHITESPACE, IDENTIFIER, EOF}, tokenTypes(t, "-- c\nx", MySQL))
	assert.Equal(t, []TokenType{LINE_COMMENT, WHITESPACE, IDENTIFIER, EOF}, tokenTypes(t, "# c\nx", MySQL))
	assert.Equal(t, []TokenType{BLOCK_COMMENT, IDENTIFIER, EOF}, tokenTypes(t, "/* c */x", PostgreSQL))
}

func TestTokenizerErrors(t *testing.T) {
	tests := []struct {
		name     string
		dialect  Dialect
		input    string
		expected error
	}{
		{"unterminated string", MySQL, "'abc", ErrUnterminatedString},
		{"unterminated backtick", MySQL, "`abc", ErrUnterminatedIdentifier},
		{"unterminated bracket", SQLServer, "[abc", ErrUnterminatedIdentifier},
		{"unterminated comment", MySQL, "/* abc", ErrUnterminatedComment},
		{"invalid exponent", MySQL, "1e+", ErrInvalidNumber},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewSqlTokenizer(tt.input, tt.dialect).AllTokens()
			assert.IsError(t, err, tt.expected)
		})
	}
}

func TestParseDialect(t *testing.T) {
	tests := []struct {
		input    string
		expected Dialect
	}{
		{"mysql", MySQL},
		{"", MySQL},
		{"PostgreSQL", PostgreSQL},
		{"pgx", PostgreSQL},
		{"mssql", SQLServer},
		{"sqlite3", SQLite},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			dialect, err := ParseDialect(tt.input)
			assert.NoError(t, err)
			assert.Equal(t, tt.expected, dialect)
		})
	}

	_, err := ParseDialect("oracle")
	assert.IsError(t, err, ErrUnknownDialect)
}
