package tokenizer

import (
	"fmt"
	"iter"
	"unicode"
	"unicode/utf8"
)

// TokenIterator uses Go 1.24 iterator pattern
type TokenIterator iter.Seq2[Token, error]

// SqlTokenizer is a tokenizer that returns an iterator
type SqlTokenizer struct {
	input   string
	dialect Dialect
	options TokenizerOptions
}

// TokenizerOptions are options for the tokenizer
type TokenizerOptions struct {
	SkipWhitespace bool
	SkipComments   bool
}

// NewSqlTokenizer creates a new SqlTokenizer
func NewSqlTokenizer(input string, dialect Dialect, options ...TokenizerOptions) *SqlTokenizer {
	var opts TokenizerOptions
	if len(options) > 0 {
		opts = options[0]
	}

	return &SqlTokenizer{
		input:   input,
		dialect: dialect,
		options: opts,
	}
}

// Tokens returns an iterator of tokens. Iteration stops after EOF or the first error.
func (t *SqlTokenizer) Tokens() TokenIterator {
	return func(yield func(Token, error) bool) {
		tokenizer := &tokenizer{
			input:   t.input,
			line:    1,
			column:  1,
			dialect: t.dialect,
		}

		tokenizer.readChar()

		for {
			token, err := tokenizer.nextToken()
			if err != nil {
				yield(Token{}, err)
				return
			}

			if token.Type == EOF {
				yield(token, nil)
				return
			}

			// Filtering based on options
			if t.options.SkipWhitespace && token.Type == WHITESPACE {
				continue
			}

			if t.options.SkipComments && (token.Type == LINE_COMMENT || token.Type == BLOCK_COMMENT) {
				continue
			}

			if !yield(token, nil) {
				return
			}
		}
	}
}

// AllTokens gets all tokens as a slice. The last element is always EOF on success.
func (t *SqlTokenizer) AllTokens() ([]Token, error) {
	tokens := make([]Token, 0, 64)

	for token, err := range t.Tokens() {
		if err != nil {
			return nil, err
		}

		tokens = append(tokens, token)
	}

	return tokens, nil
}

// Internal tokenizer implementation
type tokenizer struct {
	input   string
	offset  int // byte offset of current
	width   int // byte width of current
	line    int
	column  int
	current rune
	started bool
	dialect Dialect
}

// nextToken gets the next token
func (t *tokenizer) nextToken() (Token, error) {
	start := t.position()

	switch t.current {
	case 0:
		if t.offset >= len(t.input) {
			return Token{Type: EOF, Position: start}, nil
		}

		return t.readOther(), nil
	case ' ', '\t', '\r', '\n', '\f', '\v':
		return t.readWhitespace(), nil
	case '(':
		return t.single(OPENED_PARENS), nil
	case ')':
		return t.single(CLOSED_PARENS), nil
	case ',':
		return t.single(COMMA), nil
	case ';':
		return t.single(SEMICOLON), nil
	case '.':
		if isDigit(t.peekChar()) {
			return t.readNumber()
		}

		return t.single(DOT), nil
	case '?':
		return t.single(QUESTION), nil
	case '$':
		if t.dialect == PostgreSQL && isDigit(t.peekChar()) {
			return t.readPositionalParameter(), nil
		}

		return t.readOther(), nil
	case '\'':
		return t.readString('\'')
	case '"', '`', '[':
		if closing, ok := t.dialect.identifierClose(t.current); ok {
			return t.readQuotedIdentifier(closing)
		}

		if t.current == '"' {
			return t.readString('"')
		}

		return t.readOther(), nil
	case '-':
		if t.peekChar() == '-' {
			return t.readLineComment(), nil
		}

		return t.single(MINUS), nil
	case '#':
		if t.dialect == MySQL {
			return t.readLineComment(), nil
		}

		return t.readOther(), nil
	case '/':
		if t.peekChar() == '*' {
			return t.readBlockComment()
		}

		return t.single(DIVIDE), nil
	case '=':
		return t.single(EQUAL), nil
	case '<':
		switch t.peekChar() {
		case '=':
			return t.double(LESS_EQUAL), nil
		case '>':
			return t.double(NOT_EQUAL), nil
		}

		return t.single(LESS_THAN), nil
	case '>':
		if t.peekChar() == '=' {
			return t.double(GREATER_EQUAL), nil
		}

		return t.single(GREATER_THAN), nil
	case '!':
		if t.peekChar() == '=' {
			return t.double(NOT_EQUAL), nil
		}

		return t.readOther(), nil
	case '+':
		return t.single(PLUS), nil
	case '*':
		return t.single(MULTIPLY), nil
	case '%':
		return t.single(MODULO), nil
	}

	switch {
	case unicode.IsLetter(t.current) || t.current == '_':
		return t.readWord(), nil
	case isDigit(t.current):
		return t.readNumber()
	default:
		return t.readOther(), nil
	}
}

// readChar advances to the next rune
func (t *tokenizer) readChar() {
	if t.started {
		t.offset += t.width

		if t.current == '\n' {
			t.line++
			t.column = 1
		} else {
			t.column++
		}
	}

	t.started = true

	if t.offset >= len(t.input) {
		t.current = 0
		t.width = 0

		return
	}

	t.current, t.width = utf8.DecodeRuneInString(t.input[t.offset:])
}

// peekChar looks ahead at the next character
func (t *tokenizer) peekChar() rune {
	next := t.offset + t.width
	if next >= len(t.input) {
		return 0
	}

	r, _ := utf8.DecodeRuneInString(t.input[next:])

	return r
}

func (t *tokenizer) position() Position {
	return Position{Line: t.line, Column: t.column, Offset: t.offset}
}

// token builds a token spanning from start to the current offset
func (t *tokenizer) token(tokenType TokenType, start Position) Token {
	return Token{
		Type:     tokenType,
		Value:    t.input[start.Offset:t.offset],
		Position: start,
	}
}

func (t *tokenizer) single(tokenType TokenType) Token {
	start := t.position()
	t.readChar()

	return t.token(tokenType, start)
}

func (t *tokenizer) double(tokenType TokenType) Token {
	start := t.position()
	t.readChar()
	t.readChar()

	return t.token(tokenType, start)
}

// readPositionalParameter reads a PostgreSQL $N placeholder as a QUESTION token
func (t *tokenizer) readPositionalParameter() Token {
	start := t.position()
	t.readChar()

	for isDigit(t.current) {
		t.readChar()
	}

	return t.token(QUESTION, start)
}

// readWhitespace reads whitespace characters
func (t *tokenizer) readWhitespace() Token {
	start := t.position()

	for t.current != 0 && unicode.IsSpace(t.current) {
		t.readChar()
	}

	return t.token(WHITESPACE, start)
}

// readWord reads words (identifiers and keywords)
func (t *tokenizer) readWord() Token {
	start := t.position()

	for unicode.IsLetter(t.current) || unicode.IsDigit(t.current) || t.current == '_' || t.current == '$' {
		t.readChar()
	}

	token := t.token(IDENTIFIER, start)
	token.Type = LookupKeyword(token.Value)

	return token
}

// readString reads string literals. A doubled delimiter or a backslash escapes the delimiter.
func (t *tokenizer) readString(delimiter rune) (Token, error) {
	start := t.position()
	t.readChar()

	for {
		switch t.current {
		case 0:
			if t.offset >= len(t.input) {
				return Token{}, fmt.Errorf("%w: %c at line %d, column %d", ErrUnterminatedString, delimiter, start.Line, start.Column)
			}
		case '\\':
			t.readChar()
		case delimiter:
			t.readChar()

			if t.current != delimiter {
				return t.token(STRING, start), nil
			}
		}

		t.readChar()
	}
}

// readQuotedIdentifier reads `name`, [name] or "name"; the token keeps its delimiters.
func (t *tokenizer) readQuotedIdentifier(closing rune) (Token, error) {
	start := t.position()
	t.readChar()

	for t.current != closing {
		if t.current == 0 && t.offset >= len(t.input) {
			return Token{}, fmt.Errorf("%w: %c at line %d, column %d", ErrUnterminatedIdentifier, closing, start.Line, start.Column)
		}

		t.readChar()
	}

	t.readChar()

	return t.token(IDENTIFIER, start), nil
}

// readNumber reads numeric literals
func (t *tokenizer) readNumber() (Token, error) {
	start := t.position()

	// Integer part
	for isDigit(t.current) {
		t.readChar()
	}

	// Decimal point
	if t.current == '.' && isDigit(t.peekChar()) {
		t.readChar()

		for isDigit(t.current) {
			t.readChar()
		}
	}

	// Exponential part
	if t.current == 'e' || t.current == 'E' {
		t.readChar()

		if t.current == '+' || t.current == '-' {
			t.readChar()
		}

		if !isDigit(t.current) {
			return Token{}, fmt.Errorf("%w: invalid exponent at line %d, column %d", ErrInvalidNumber, start.Line, start.Column)
		}

		for isDigit(t.current) {
			t.readChar()
		}
	}

	return t.token(NUMBER, start), nil
}

// readLineComment reads line comments
func (t *tokenizer) readLineComment() Token {
	start := t.position()

	for t.current != '\n' && t.offset < len(t.input) {
		t.readChar()
	}

	return t.token(LINE_COMMENT, start)
}

// readBlockComment reads block comments
func (t *tokenizer) readBlockComment() (Token, error) {
	start := t.position()

	// '/*'
	t.readChar()
	t.readChar()

	for t.offset < len(t.input) {
		if t.current == '*' && t.peekChar() == '/' {
			t.readChar()
			t.readChar()

			return t.token(BLOCK_COMMENT, start), nil
		}

		t.readChar()
	}

	return Token{}, fmt.Errorf("%w at line %d, column %d", ErrUnterminatedComment, start.Line, start.Column)
}

// readOther reads a single unrecognized character
func (t *tokenizer) readOther() Token {
	return t.single(OTHER)
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}
