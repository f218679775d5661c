package rewrite

import (
	"testing"

	"github.com/alecthomas/assert/v2"
	"github.com/shibukawa/sqlshard/parser"
	"github.com/shibukawa/sqlshard/sharding"
	tok "github.com/shibukawa/sqlshard/tokenizer"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, sql string, dialect tok.Dialect) *parser.Statement {
	t.Helper()

	rule, err := sharding.NewRule(sharding.Config{
		DataSources: []string{"ds"},
		Tables: []sharding.TableRuleConfig{
			{LogicTable: "t_order"},
			{LogicTable: "t_order_item"},
		},
	})
	require.NoError(t, err)

	stmt, err := parser.Parse(sql, dialect, rule)
	require.NoError(t, err)

	return stmt
}

func TestRewrite(t *testing.T) {
	mapping := NewTableMapping()
	mapping.Set("t_order", "t_order_1")
	mapping.Set("T_ORDER_ITEM", "t_order_item_1")

	tests := []struct {
		name     string
		dialect  tok.Dialect
		sql      string
		expected string
	}{
		{
			name:     "join with qualified columns",
			dialect:  tok.MySQL,
			sql:      "SELECT t_order.id FROM t_order JOIN t_order_item i ON t_order.id = i.order_id WHERE t_order.user_id = ?",
			expected: "SELECT t_order_1.id FROM t_order_1 JOIN t_order_item_1 i ON t_order_1.id = i.order_id WHERE t_order_1.user_id = ?",
		},
		{
			name:     "backticks are preserved",
			dialect:  tok.MySQL,
			sql:      "UPDATE `t_order` SET status = ?",
			expected: "UPDATE `t_order_1` SET status = ?",
		},
		{
			name:     "brackets are preserved",
			dialect:  tok.SQLServer,
			sql:      "DELETE FROM [t_order] WHERE id = 1",
			expected: "DELETE FROM [t_order_1] WHERE id = 1",
		},
		{
			name:     "unmapped tables are left alone",
			dialect:  tok.PostgreSQL,
			sql:      `UPDATE "t_user" SET name = 'x'`,
			expected: `UPDATE "t_user" SET name = 'x'`,
		},
		{
			name:     "multi-byte text around tokens",
			dialect:  tok.MySQL,
			sql:      "SELECT 'ユーザー' FROM t_order WHERE t_order.name = '注文'",
			expected: "SELECT 'ユーザー' FROM t_order_1 WHERE t_order_1.name = '注文'",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stmt := parse(t, tt.sql, tt.dialect)

			actual, err := Rewrite(tt.sql, stmt.Tokens, mapping)
			assert.NoError(t, err)
			assert.Equal(t, tt.expected, actual)
		})
	}
}

func TestRewriteRejectsStaleTokens(t *testing.T) {
	mapping := NewTableMapping()
	mapping.Set("t_order", "t_order_0")

	_, err := Rewrite("SELECT * FROM t_x", []parser.TableToken{{Offset: 14, Literal: "t_order"}}, mapping)
	assert.IsError(t, err, ErrTokenMismatch)

	_, err = Rewrite("SELECT * FROM t_order", []parser.TableToken{{Offset: 14, Literal: "t_orders"}}, mapping)
	assert.IsError(t, err, ErrTokenMismatch)
}

func TestRewriteIgnoresDuplicateTokens(t *testing.T) {
	mapping := NewTableMapping()
	mapping.Set("t_order", "t_order_0")

	tokens := []parser.TableToken{{Offset: 14, Literal: "t_order"}, {Offset: 14, Literal: "t_order"}}

	actual, err := Rewrite("SELECT * FROM t_order", tokens, mapping)
	assert.NoError(t, err)
	assert.Equal(t, "SELECT * FROM t_order_0", actual)
}
