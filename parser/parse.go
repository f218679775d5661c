package parser

import (
	"fmt"

	"github.com/shibukawa/sqlshard/lexer"
	tok "github.com/shibukawa/sqlshard/tokenizer"
)

// Parse tokenizes sql and collects its table references and rewrite tokens.
func Parse(sql string, dialect tok.Dialect, rule RuleIndex) (*Statement, error) {
	engine, err := lexer.New(sql, dialect)
	if err != nil {
		return nil, err
	}

	return ParseEngine(engine, rule)
}

// ParseEngine parses the statement at the engine's current position.
func ParseEngine(engine *lexer.Engine, rule RuleIndex) (*Statement, error) {
	p := NewTableParser(rule, engine)
	stmt := &Statement{}

	var err error

	switch {
	case engine.SkipIfEqual(tok.SELECT):
		stmt.Type = SelectStatement
		err = p.parseSelect(stmt)
	case engine.SkipIfEqual(tok.INSERT):
		stmt.Type = InsertStatement
		engine.SkipAll(tok.LOW_PRIORITY, tok.IGNORE)
		engine.SkipIfEqual(tok.INTO)
		err = p.parseWrite(stmt)
	case engine.SkipIfEqual(tok.UPDATE):
		stmt.Type = UpdateStatement
		engine.SkipAll(tok.LOW_PRIORITY, tok.IGNORE)
		err = p.parseWrite(stmt)
	case engine.SkipIfEqual(tok.DELETE):
		stmt.Type = DeleteStatement
		engine.SkipAll(tok.LOW_PRIORITY, tok.QUICK, tok.IGNORE)
		engine.SkipIfEqual(tok.FROM)
		err = p.parseWrite(stmt)
	default:
		current := engine.Current()
		return nil, fmt.Errorf("%w: '%s' at offset %d", ErrUnsupportedStatement, current.Value, current.Position.Offset)
	}

	if err != nil {
		return nil, err
	}

	return stmt, nil
}

func (p *TableParser) parseWrite(stmt *Statement) error {
	if err := p.ParseSingleTable(stmt); err != nil {
		return err
	}

	return p.scanExpressions(stmt)
}

// parseSelect parses the FROM clause first so that owner-qualified columns of the select
// list can be matched against the registered tables afterwards.
func (p *TableParser) parseSelect(stmt *Statement) error {
	selectList := p.engine.Mark()

	for !p.engine.IsEnd() && !p.engine.EqualAny(tok.FROM) {
		if p.engine.EqualAny(tok.OPENED_PARENS) {
			if _, err := p.engine.SkipParentheses(nil); err != nil {
				return err
			}

			continue
		}

		p.engine.Next()
	}

	if p.engine.SkipIfEqual(tok.FROM) {
		if _, err := p.ParseTableFactor(stmt); err != nil {
			return err
		}

		if err := p.ParseJoinTable(stmt); err != nil {
			return err
		}
	}

	rest := p.engine.Mark()
	p.engine.Reset(selectList)

	if err := p.scanExpressions(stmt, tok.FROM); err != nil {
		return err
	}

	p.engine.Reset(rest)

	return p.scanExpressions(stmt)
}

// scanExpressions feeds every operand up to one of the stop tokens through the expression
// parser so qualified columns and placeholders are recorded. A second SELECT would carry table
// references that are never registered, so compound and nested queries are rejected.
func (p *TableParser) scanExpressions(stmt *Statement, stops ...tok.TokenType) error {
	for !p.engine.IsEnd() && !p.engine.EqualAny(stops...) {
		current := p.engine.Current()

		switch current.Type {
		case tok.UNION:
			return fmt.Errorf("%w at offset %d", ErrCompoundSelect, current.Position.Offset)
		case tok.SELECT:
			return fmt.Errorf("%w at offset %d", ErrSubquery, current.Position.Offset)
		case tok.IDENTIFIER, tok.QUESTION, tok.OPENED_PARENS:
		default:
			p.engine.Next()
			continue
		}

		if _, err := p.expression.Parse(stmt); err != nil {
			return err
		}
	}

	return nil
}
