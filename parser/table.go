package parser

import (
	"github.com/shibukawa/sqlshard/lexer"
	"github.com/shibukawa/sqlshard/sharding"
	tok "github.com/shibukawa/sqlshard/tokenizer"
)

// RuleIndex answers whether a table takes part in sharding.
type RuleIndex interface {
	TryFindTableRule(logicTable string) (*sharding.TableRule, bool)
	FindBindingTableRule(logicTable string) (*sharding.BindingTableRule, bool)
}

// joinForm is one row of the join operator alternation table.
type joinForm struct {
	// keywords starts the form when the current token is any of them.
	keywords []tok.TokenType
	// optional may follow keywords.
	optional []tok.TokenType
	// required must follow; its absence is a syntax error.
	required []tok.TokenType
	// speculative must follow for the form to match. keywords stay consumed when it does not.
	speculative []tok.TokenType
}

// joinForms is tried in order; the first form whose keywords match decides the result.
var joinForms = []joinForm{
	{keywords: []tok.TokenType{tok.LEFT, tok.RIGHT, tok.FULL}, optional: []tok.TokenType{tok.OUTER}, required: []tok.TokenType{tok.JOIN}},
	{keywords: []tok.TokenType{tok.INNER}, required: []tok.TokenType{tok.JOIN}},
	{keywords: []tok.TokenType{tok.JOIN, tok.COMMA, tok.STRAIGHT_JOIN}},
	{keywords: []tok.TokenType{tok.CROSS}, speculative: []tok.TokenType{tok.JOIN, tok.APPLY}},
	{keywords: []tok.TokenType{tok.OUTER}, speculative: []tok.TokenType{tok.APPLY}},
}

// TableParser parses the table references of a FROM/join clause, or the single target table of a
// write statement, into a Statement.
type TableParser struct {
	rule       RuleIndex
	engine     *lexer.Engine
	alias      *AliasParser
	expression *ExpressionParser
}

// NewTableParser creates a TableParser reading from engine.
func NewTableParser(rule RuleIndex, engine *lexer.Engine) *TableParser {
	return &TableParser{
		rule:       rule,
		engine:     engine,
		alias:      NewAliasParser(engine),
		expression: NewExpressionParser(engine),
	}
}

// ParseSingleTable parses exactly one table reference, optionally wrapped in parentheses, and
// registers it unconditionally.
func (p *TableParser) ParseSingleTable(stmt *Statement) error {
	hasParentheses := false

	if p.engine.SkipIfEqual(tok.OPENED_PARENS) {
		if p.engine.EqualAny(tok.SELECT) {
			return ErrSubqueryTableSource
		}

		hasParentheses = true
	}

	token, err := p.tableToken()
	if err != nil {
		return err
	}

	// For `a.b` the table keeps the first literal; b is skipped.
	if p.engine.SkipIfEqual(tok.DOT) {
		p.engine.Next()
	}

	if hasParentheses {
		if err := p.engine.Accept(tok.CLOSED_PARENS); err != nil {
			return err
		}
	}

	table := Table{Name: ExactValue(token.Literal), Alias: p.alias.Parse()}

	joined, err := p.SkipJoin()
	if err != nil {
		return err
	}

	if joined {
		return ErrMultipleTables
	}

	stmt.addTable(token, table)

	return nil
}

// SkipJoin consumes one join operator (LEFT/RIGHT/FULL [OUTER] JOIN, INNER JOIN, JOIN, comma,
// STRAIGHT_JOIN, CROSS JOIN, CROSS APPLY, OUTER APPLY) and reports whether it found one.
// A CROSS or OUTER not followed by its partner keyword is consumed anyway.
func (p *TableParser) SkipJoin() (bool, error) {
	for _, form := range joinForms {
		if !p.engine.SkipIfEqual(form.keywords...) {
			continue
		}

		if len(form.optional) > 0 {
			p.engine.SkipIfEqual(form.optional...)
		}

		for _, required := range form.required {
			if err := p.engine.Accept(required); err != nil {
				return false, err
			}
		}

		if len(form.speculative) > 0 {
			return p.engine.SkipIfEqual(form.speculative...), nil
		}

		return true, nil
	}

	return false, nil
}

// ParseTableFactor parses one table reference of a FROM/join list. The table is registered
// only when the rule index knows it; otherwise it is consumed silently. The parsed table is
// returned either way.
func (p *TableParser) ParseTableFactor(stmt *Statement) (Table, error) {
	p.engine.SkipAll(tok.AS)

	token, err := p.tableToken()
	if err != nil {
		return Table{}, err
	}

	if p.engine.EqualAny(tok.DOT) {
		return Table{}, ErrSchemaQualifiedTable
	}

	table := Table{Name: ExactValue(token.Literal), Alias: p.alias.Parse()}

	if p.isSharded(table.Name) {
		stmt.addTable(token, table)
	}

	return table, nil
}

// ParseJoinTable consumes the chain of joins following a table factor. A nested chain is
// parsed before the condition of the enclosing join, so for `a JOIN b JOIN c ON x ON y`
// x belongs to c and y to b.
func (p *TableParser) ParseJoinTable(stmt *Statement) error {
	joined, err := p.SkipJoin()
	if err != nil || !joined {
		return err
	}

	if p.engine.EqualAny(tok.OPENED_PARENS) {
		return ErrSubqueryJoinTarget
	}

	table, err := p.ParseTableFactor(stmt)
	if err != nil {
		return err
	}

	if err := p.ParseJoinTable(stmt); err != nil {
		return err
	}

	if err := p.parseJoinCondition(stmt, table); err != nil {
		return err
	}

	return p.ParseJoinTable(stmt)
}

func (p *TableParser) parseJoinCondition(stmt *Statement, table Table) error {
	if p.engine.SkipIfEqual(tok.ON) {
		for {
			left, err := p.expression.Parse(stmt)
			if err != nil {
				return err
			}

			if err := p.engine.Accept(tok.EQUAL); err != nil {
				return err
			}

			right, err := p.expression.Parse(stmt)
			if err != nil {
				return err
			}

			stmt.Conditions = append(stmt.Conditions, JoinCondition{Table: table.Name, Left: left, Right: right})

			if !p.engine.SkipIfEqual(tok.AND) {
				return nil
			}
		}
	}

	if p.engine.SkipIfEqual(tok.USING) {
		_, err := p.engine.SkipParentheses(stmt)
		return err
	}

	return nil
}

// tableToken captures the current token as a table literal and advances past it.
func (p *TableParser) tableToken() (TableToken, error) {
	current := p.engine.Current()
	if current.Type == tok.EOF {
		return TableToken{}, p.engine.Accept(tok.IDENTIFIER)
	}

	p.engine.Next()

	return TableToken{Offset: current.End() - len(current.Value), Literal: current.Value}, nil
}

func (p *TableParser) isSharded(name string) bool {
	if _, ok := p.rule.TryFindTableRule(name); ok {
		return true
	}

	_, ok := p.rule.FindBindingTableRule(name)

	return ok
}
