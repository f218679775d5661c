package parser

import (
	"fmt"

	"github.com/shibukawa/sqlshard/lexer"
	tok "github.com/shibukawa/sqlshard/tokenizer"
)

// ExpressionKind classifies a parsed operand.
type ExpressionKind int

const (
	// IgnoreExpression is anything the router does not need to understand
	// (function calls, arithmetic, parenthesized groups).
	IgnoreExpression ExpressionKind = iota
	PlaceholderExpression
	TextExpression
	NumberExpression
	IdentifierExpression
	PropertyExpression
)

func (k ExpressionKind) String() string {
	switch k {
	case PlaceholderExpression:
		return "placeholder"
	case TextExpression:
		return "text"
	case NumberExpression:
		return "number"
	case IdentifierExpression:
		return "identifier"
	case PropertyExpression:
		return "property"
	default:
		return "ignore"
	}
}

// MarshalText renders the kind by name.
func (k ExpressionKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Expression is one operand of a condition.
type Expression struct {
	Kind  ExpressionKind `json:"kind" yaml:"kind"`
	Text  string         `json:"text,omitempty" yaml:"text,omitempty"`
	Owner string         `json:"owner,omitempty" yaml:"owner,omitempty"`
}

var arithmeticOperators = []tok.TokenType{tok.PLUS, tok.MINUS, tok.MULTIPLY, tok.DIVIDE, tok.MODULO}

// ExpressionParser parses a single operand of a comparison.
type ExpressionParser struct {
	engine *lexer.Engine
}

// NewExpressionParser creates an ExpressionParser reading from engine.
func NewExpressionParser(engine *lexer.Engine) *ExpressionParser {
	return &ExpressionParser{engine: engine}
}

// Parse consumes one operand. An `owner.column` reference whose owner is a table already
// registered in stmt gets a rewrite token at the owner's position. Placeholders are counted
// in stmt.ParametersIndex.
func (p *ExpressionParser) Parse(stmt *Statement) (Expression, error) {
	current := p.engine.Current()

	if current.Type == tok.OPENED_PARENS {
		if err := p.parenthesized(stmt); err != nil {
			return Expression{}, err
		}

		return p.skipComposite(stmt, Expression{Kind: IgnoreExpression})
	}

	result := p.primary(stmt, current)
	p.engine.Next()

	switch {
	case current.Type == tok.IDENTIFIER && p.engine.SkipIfEqual(tok.DOT):
		property := p.engine.Current()
		p.engine.Next()

		owner := ExactValue(current.Value)
		if stmt.HasTable(owner) {
			stmt.Tokens = append(stmt.Tokens, TableToken{Offset: current.Position.Offset, Literal: current.Value})
		}

		result = Expression{Kind: PropertyExpression, Owner: owner, Text: ExactValue(property.Value)}
	case p.engine.EqualAny(tok.OPENED_PARENS):
		if err := p.parenthesized(stmt); err != nil {
			return Expression{}, err
		}

		result = Expression{Kind: IgnoreExpression, Text: current.Value}
	}

	return p.skipComposite(stmt, result)
}

// parenthesized consumes a (...) group, feeding every operand inside it back through Parse
// so that qualified columns in grouped conditions and function arguments are recorded too.
func (p *ExpressionParser) parenthesized(stmt *Statement) error {
	p.engine.Next()

	for {
		current := p.engine.Current()

		switch current.Type {
		case tok.CLOSED_PARENS:
			p.engine.Next()
			return nil
		case tok.EOF:
			return p.engine.Accept(tok.CLOSED_PARENS)
		case tok.SELECT:
			return fmt.Errorf("%w at offset %d", ErrSubquery, current.Position.Offset)
		case tok.OPENED_PARENS, tok.IDENTIFIER, tok.QUESTION:
			if _, err := p.Parse(stmt); err != nil {
				return err
			}
		default:
			p.engine.Next()
		}
	}
}

func (p *ExpressionParser) primary(stmt *Statement, current tok.Token) Expression {
	switch current.Type {
	case tok.QUESTION:
		stmt.IncreaseParametersIndex()
		return Expression{Kind: PlaceholderExpression, Text: current.Value}
	case tok.STRING:
		return Expression{Kind: TextExpression, Text: current.Value[1 : len(current.Value)-1]}
	case tok.NUMBER:
		return Expression{Kind: NumberExpression, Text: current.Value}
	case tok.IDENTIFIER:
		return Expression{Kind: IdentifierExpression, Text: ExactValue(current.Value)}
	default:
		return Expression{Kind: IgnoreExpression, Text: current.Value}
	}
}

// skipComposite consumes a trailing arithmetic tail; the whole operand is then ignored.
func (p *ExpressionParser) skipComposite(stmt *Statement, result Expression) (Expression, error) {
	if !p.engine.SkipIfEqual(arithmeticOperators...) {
		return result, nil
	}

	if _, err := p.Parse(stmt); err != nil {
		return Expression{}, err
	}

	return Expression{Kind: IgnoreExpression}, nil
}
