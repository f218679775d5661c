// Package lexer provides a positioned, peekable token stream over a single SQL statement.
package lexer

import (
	"errors"
	"fmt"
	"slices"

	tok "github.com/shibukawa/sqlshard/tokenizer"
)

// ErrSyntaxMismatch is returned when an expected token is absent.
var ErrSyntaxMismatch = errors.New("syntax mismatch")

// ParameterCounter receives a notification for every ? placeholder skipped by the engine.
type ParameterCounter interface {
	IncreaseParametersIndex()
}

// Engine walks the significant tokens (no whitespace or comments) of one statement.
type Engine struct {
	input  string
	tokens []tok.Token
	pos    int
}

// New tokenizes sql with the given dialect.
func New(sql string, dialect tok.Dialect) (*Engine, error) {
	tokens, err := tok.NewSqlTokenizer(sql, dialect, tok.TokenizerOptions{
		SkipWhitespace: true,
		SkipComments:   true,
	}).AllTokens()
	if err != nil {
		return nil, err
	}

	return &Engine{input: sql, tokens: tokens}, nil
}

// Input returns the original SQL text.
func (e *Engine) Input() string {
	return e.input
}

// Current returns the token at the current position. Past the end it keeps returning EOF.
func (e *Engine) Current() tok.Token {
	return e.tokens[e.pos]
}

// Next advances by one token. It never moves past EOF.
func (e *Engine) Next() {
	if e.pos < len(e.tokens)-1 {
		e.pos++
	}
}

// IsEnd reports whether the current token is EOF.
func (e *Engine) IsEnd() bool {
	return e.Current().Type == tok.EOF
}

// EqualAny reports whether the current token has one of the types. It does not consume.
func (e *Engine) EqualAny(types ...tok.TokenType) bool {
	return slices.Contains(types, e.Current().Type)
}

// SkipIfEqual consumes the current token iff it has one of the types.
func (e *Engine) SkipIfEqual(types ...tok.TokenType) bool {
	if e.EqualAny(types...) {
		e.Next()
		return true
	}

	return false
}

// SkipAll consumes tokens while they have one of the types.
func (e *Engine) SkipAll(types ...tok.TokenType) {
	for e.EqualAny(types...) && !e.IsEnd() {
		e.Next()
	}
}

// Accept consumes a token of the expected type or fails with ErrSyntaxMismatch.
func (e *Engine) Accept(expected tok.TokenType) error {
	if e.EqualAny(expected) {
		e.Next()
		return nil
	}

	current := e.Current()

	return fmt.Errorf("%w: expected %s but found %s '%s' at offset %d",
		ErrSyntaxMismatch, expected, current.Type, current.Value, current.Position.Offset)
}

// SkipParentheses consumes a balanced (...) span starting at the current token and returns
// the skipped source text. Placeholders inside the span are reported to counter.
// When the current token is not '(' nothing is consumed.
func (e *Engine) SkipParentheses(counter ParameterCounter) (string, error) {
	if !e.EqualAny(tok.OPENED_PARENS) {
		return "", nil
	}

	begin := e.Current().Position.Offset
	depth := 0

	for {
		current := e.Current()

		switch current.Type {
		case tok.EOF:
			return "", fmt.Errorf("%w: expected %s but found EOF at offset %d",
				ErrSyntaxMismatch, tok.CLOSED_PARENS, current.Position.Offset)
		case tok.QUESTION:
			if counter != nil {
				counter.IncreaseParametersIndex()
			}
		case tok.OPENED_PARENS:
			depth++
		case tok.CLOSED_PARENS:
			depth--
		}

		e.Next()

		if depth == 0 {
			return e.input[begin:current.End()], nil
		}
	}
}

// Mark returns the current position for a later Reset.
func (e *Engine) Mark() int {
	return e.pos
}

// Reset moves back (or forward) to a position obtained from Mark.
func (e *Engine) Reset(mark int) {
	e.pos = max(0, min(mark, len(e.tokens)-1))
}

// Clone returns an independent engine over the same token stream, positioned at the start.
func (e *Engine) Clone() *Engine {
	return &Engine{input: e.input, tokens: e.tokens}
}
