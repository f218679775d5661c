// Package sharding holds the routing metadata consulted by the parser and the router:
// which logic tables are sharded, where their actual data nodes live, and which tables
// are bound together (sharded identically).
package sharding

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors
var (
	ErrInvalidDataNode         = errors.New("invalid data node")
	ErrInvalidInlineExpression = errors.New("invalid inline expression")
	ErrUnknownDataSource       = errors.New("data node refers to unknown data source")
	ErrDuplicateTableRule      = errors.New("duplicate table rule")
	ErrBindingTableWithoutRule = errors.New("binding table has no table rule")
	ErrNoDataSource            = errors.New("no data source available for table rule")
)

// Config is the declarative form of a Rule.
type Config struct {
	// DataSources lists every known data source name.
	DataSources       []string
	DefaultDataSource string
	Tables            []TableRuleConfig
	BindingTables     [][]string
}

// TableRuleConfig declares one sharded logic table.
type TableRuleConfig struct {
	LogicTable string
	// ActualDataNodes is an inline expression such as "ds_${0..1}.t_order_${0..1}".
	// Empty means the logic table itself on every data source.
	ActualDataNodes string
}

// DataNode is one physical table on one data source.
type DataNode struct {
	DataSource string
	Table      string
}

func (n DataNode) String() string {
	return n.DataSource + "." + n.Table
}

// ParseDataNode parses "data_source.table".
func ParseDataNode(s string) (DataNode, error) {
	dataSource, table, ok := strings.Cut(s, ".")
	if !ok || dataSource == "" || table == "" || strings.Contains(table, ".") {
		return DataNode{}, fmt.Errorf("%w: '%s' (expected data_source.table)", ErrInvalidDataNode, s)
	}

	return DataNode{DataSource: dataSource, Table: table}, nil
}

// TableRule is the sharding rule of one logic table.
type TableRule struct {
	LogicTable      string
	ActualDataNodes []DataNode
}

// BindingTableRule groups logic tables that share sharding so they can be co-routed.
type BindingTableRule struct {
	TableRules []*TableRule
}

// HasLogicTable reports whether the group contains the logic table (case-insensitive).
func (b *BindingTableRule) HasLogicTable(logicTable string) bool {
	for _, rule := range b.TableRules {
		if strings.EqualFold(rule.LogicTable, logicTable) {
			return true
		}
	}

	return false
}

// LogicTables returns the names of the bound tables.
func (b *BindingTableRule) LogicTables() []string {
	names := make([]string, 0, len(b.TableRules))
	for _, rule := range b.TableRules {
		names = append(names, rule.LogicTable)
	}

	return names
}

// Rule is the sharding rule index.
type Rule struct {
	DefaultDataSource string

	dataSources       []string
	tableRules        []*TableRule
	bindingTableRules []*BindingTableRule
}

// NewRule validates cfg and builds the index.
func NewRule(cfg Config) (*Rule, error) {
	rule := &Rule{
		DefaultDataSource: cfg.DefaultDataSource,
		dataSources:       cfg.DataSources,
	}

	known := make(map[string]bool, len(cfg.DataSources))
	for _, name := range cfg.DataSources {
		known[name] = true
	}

	if cfg.DefaultDataSource != "" && len(known) > 0 && !known[cfg.DefaultDataSource] {
		return nil, fmt.Errorf("%w: default data source '%s'", ErrUnknownDataSource, cfg.DefaultDataSource)
	}

	for _, tableCfg := range cfg.Tables {
		if _, exists := rule.TryFindTableRule(tableCfg.LogicTable); exists {
			return nil, fmt.Errorf("%w: '%s'", ErrDuplicateTableRule, tableCfg.LogicTable)
		}

		tableRule, err := newTableRule(tableCfg, cfg.DataSources, known)
		if err != nil {
			return nil, err
		}

		rule.tableRules = append(rule.tableRules, tableRule)
	}

	for _, group := range cfg.BindingTables {
		binding := &BindingTableRule{}

		for _, logicTable := range group {
			tableRule, ok := rule.TryFindTableRule(logicTable)
			if !ok {
				return nil, fmt.Errorf("%w: '%s'", ErrBindingTableWithoutRule, logicTable)
			}

			binding.TableRules = append(binding.TableRules, tableRule)
		}

		rule.bindingTableRules = append(rule.bindingTableRules, binding)
	}

	return rule, nil
}

func newTableRule(cfg TableRuleConfig, dataSources []string, known map[string]bool) (*TableRule, error) {
	result := &TableRule{LogicTable: cfg.LogicTable}

	if strings.TrimSpace(cfg.ActualDataNodes) == "" {
		if len(dataSources) == 0 {
			return nil, fmt.Errorf("%w: '%s'", ErrNoDataSource, cfg.LogicTable)
		}

		for _, dataSource := range dataSources {
			result.ActualDataNodes = append(result.ActualDataNodes, DataNode{DataSource: dataSource, Table: cfg.LogicTable})
		}

		return result, nil
	}

	expanded, err := ExpandInline(cfg.ActualDataNodes)
	if err != nil {
		return nil, fmt.Errorf("table '%s': %w", cfg.LogicTable, err)
	}

	for _, s := range expanded {
		node, err := ParseDataNode(s)
		if err != nil {
			return nil, fmt.Errorf("table '%s': %w", cfg.LogicTable, err)
		}

		if len(known) > 0 && !known[node.DataSource] {
			return nil, fmt.Errorf("table '%s': %w: '%s'", cfg.LogicTable, ErrUnknownDataSource, node.DataSource)
		}

		result.ActualDataNodes = append(result.ActualDataNodes, node)
	}

	return result, nil
}

// TryFindTableRule looks up the rule of a logic table (case-insensitive).
func (r *Rule) TryFindTableRule(logicTable string) (*TableRule, bool) {
	for _, rule := range r.tableRules {
		if strings.EqualFold(rule.LogicTable, logicTable) {
			return rule, true
		}
	}

	return nil, false
}

// FindBindingTableRule returns the binding group containing the logic table.
func (r *Rule) FindBindingTableRule(logicTable string) (*BindingTableRule, bool) {
	for _, binding := range r.bindingTableRules {
		if binding.HasLogicTable(logicTable) {
			return binding, true
		}
	}

	return nil, false
}

// IsBound reports whether both logic tables belong to the same binding group.
func (r *Rule) IsBound(a, b string) bool {
	if strings.EqualFold(a, b) {
		return true
	}

	binding, ok := r.FindBindingTableRule(a)

	return ok && binding.HasLogicTable(b)
}

// TableRules returns every table rule in declaration order.
func (r *Rule) TableRules() []*TableRule {
	return r.tableRules
}

// DataSources returns the configured data source names.
func (r *Rule) DataSources() []string {
	return r.dataSources
}
