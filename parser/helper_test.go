package parser

import (
	"testing"

	"github.com/shibukawa/sqlshard/lexer"
	"github.com/shibukawa/sqlshard/sharding"
	tok "github.com/shibukawa/sqlshard/tokenizer"
	"github.com/stretchr/testify/require"
)

func newRule(t *testing.T, tables ...string) *sharding.Rule {
	t.Helper()

	cfg := sharding.Config{DataSources: []string{"ds"}, DefaultDataSource: "ds"}
	for _, table := range tables {
		cfg.Tables = append(cfg.Tables, sharding.TableRuleConfig{LogicTable: table})
	}

	rule, err := sharding.NewRule(cfg)
	require.NoError(t, err)

	return rule
}

func newTableParser(t *testing.T, sql string, rule RuleIndex) (*TableParser, *lexer.Engine) {
	t.Helper()

	engine, err := lexer.New(sql, tok.MySQL)
	require.NoError(t, err)

	return NewTableParser(rule, engine), engine
}

// literals returns the literal of every token, checking each against the SQL text.
func literals(t *testing.T, sql string, tokens []TableToken) []string {
	t.Helper()

	result := make([]string, 0, len(tokens))
	for _, token := range tokens {
		require.Equal(t, token.Literal, sql[token.Offset:token.End()])
		result = append(result, token.Literal)
	}

	return result
}

type bindingOnlyRule struct {
	table string
}

func (r bindingOnlyRule) TryFindTableRule(string) (*sharding.TableRule, bool) {
	return nil, false
}

func (r bindingOnlyRule) FindBindingTableRule(name string) (*sharding.BindingTableRule, bool) {
	if name != r.table {
		return nil, false
	}

	return &sharding.BindingTableRule{}, true
}
