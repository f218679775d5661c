// Package routing turns a parsed statement into the SQL to execute on each data source.
package routing

import (
	"errors"
	"fmt"

	"github.com/shibukawa/sqlshard/parser"
	"github.com/shibukawa/sqlshard/rewrite"
	"github.com/shibukawa/sqlshard/sharding"
	tok "github.com/shibukawa/sqlshard/tokenizer"
)

// Sentinel errors
var (
	ErrNoRoute        = errors.New("no route: statement touches no sharded table and no default data source is configured")
	ErrCartesianRoute = errors.New("cartesian routing is not supported")
)

// RouteUnit is one SQL statement bound to one data source.
type RouteUnit struct {
	DataSource string `json:"data_source" yaml:"data_source"`
	SQL        string `json:"sql" yaml:"sql"`
}

// Router resolves statements against a sharding rule.
type Router struct {
	rule    *sharding.Rule
	dialect tok.Dialect
}

// NewRouter creates a router for rule. dialect is used by RouteSQL.
func NewRouter(rule *sharding.Rule, dialect tok.Dialect) *Router {
	return &Router{rule: rule, dialect: dialect}
}

// Route returns one unit per data node of the first sharded table in stmt.
// Other sharded tables must be bound to it and are routed to the node with the same index.
func (r *Router) Route(sql string, stmt *parser.Statement) ([]RouteUnit, error) {
	var rules []*sharding.TableRule

	for _, name := range stmt.TableNames() {
		if tableRule, ok := r.rule.TryFindTableRule(name); ok {
			rules = append(rules, tableRule)
		}
	}

	if len(rules) == 0 {
		if r.rule.DefaultDataSource == "" {
			return nil, ErrNoRoute
		}

		return []RouteUnit{{DataSource: r.rule.DefaultDataSource, SQL: sql}}, nil
	}

	primary := rules[0]
	for _, other := range rules[1:] {
		if !r.rule.IsBound(primary.LogicTable, other.LogicTable) ||
			len(other.ActualDataNodes) != len(primary.ActualDataNodes) {
			return nil, fmt.Errorf("%w: '%s' and '%s' are not bound", ErrCartesianRoute, primary.LogicTable, other.LogicTable)
		}
	}

	units := make([]RouteUnit, 0, len(primary.ActualDataNodes))

	for i, node := range primary.ActualDataNodes {
		mapping := rewrite.NewTableMapping()
		mapping.Set(primary.LogicTable, node.Table)

		for _, other := range rules[1:] {
			otherNode := other.ActualDataNodes[i]
			if otherNode.DataSource != node.DataSource {
				return nil, fmt.Errorf("%w: '%s' is on '%s' while '%s' is on '%s'",
					ErrCartesianRoute, otherNode, otherNode.DataSource, node, node.DataSource)
			}

			mapping.Set(other.LogicTable, otherNode.Table)
		}

		rewritten, err := rewrite.Rewrite(sql, stmt.Tokens, mapping)
		if err != nil {
			return nil, err
		}

		units = append(units, RouteUnit{DataSource: node.DataSource, SQL: rewritten})
	}

	return units, nil
}

// RouteSQL parses sql and routes it in one step.
func (r *Router) RouteSQL(sql string) (*parser.Statement, []RouteUnit, error) {
	stmt, err := parser.Parse(sql, r.dialect, r.rule)
	if err != nil {
		return nil, nil, err
	}

	units, err := r.Route(sql, stmt)
	if err != nil {
		return stmt, nil, err
	}

	return stmt, units, nil
}
