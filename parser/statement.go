package parser

import (
	"slices"
	"strings"
)

// StatementType is the kind of statement Parse recognized.
type StatementType int

const (
	SelectStatement StatementType = iota
	InsertStatement
	UpdateStatement
	DeleteStatement
)

func (t StatementType) String() string {
	switch t {
	case SelectStatement:
		return "SELECT"
	case InsertStatement:
		return "INSERT"
	case UpdateStatement:
		return "UPDATE"
	case DeleteStatement:
		return "DELETE"
	default:
		return "UNKNOWN"
	}
}

// Table is one table reference. Self-joins produce one entry per reference.
type Table struct {
	Name  string           `json:"name" yaml:"name"`
	Alias Optional[string] `json:"alias" yaml:"alias"`
}

// TableToken marks a table-name span of the original SQL text for the rewrite stage.
type TableToken struct {
	// Offset is the 0-based byte offset of Literal in the SQL text.
	Offset int `json:"offset" yaml:"offset"`
	// Literal is the table name exactly as written, quotes included.
	Literal string `json:"literal" yaml:"literal"`
}

// TableName returns the literal without identifier quotes.
func (t TableToken) TableName() string {
	return ExactValue(t.Literal)
}

// End returns the offset just past the literal.
func (t TableToken) End() int {
	return t.Offset + len(t.Literal)
}

// JoinCondition is one `left = right` pair of an ON clause, attributed to the table
// parsed at the join level that consumed it.
type JoinCondition struct {
	Table string     `json:"table" yaml:"table"`
	Left  Expression `json:"left" yaml:"left"`
	Right Expression `json:"right" yaml:"right"`
}

// Statement accumulates what the parser discovers in one SQL statement. It is created by the
// caller, passed to every parse operation, and read by the rewrite and routing stages afterwards.
type Statement struct {
	Type            StatementType   `json:"-" yaml:"-"`
	Tables          []Table         `json:"tables" yaml:"tables"`
	Tokens          []TableToken    `json:"tokens" yaml:"tokens"`
	Conditions      []JoinCondition `json:"conditions,omitempty" yaml:"conditions,omitempty"`
	ParametersIndex int             `json:"parameters" yaml:"parameters"`
}

// IncreaseParametersIndex counts one more ? placeholder.
func (s *Statement) IncreaseParametersIndex() {
	s.ParametersIndex++
}

// addTable commits a fully validated table together with its rewrite token.
func (s *Statement) addTable(token TableToken, table Table) {
	s.Tokens = append(s.Tokens, token)
	s.Tables = append(s.Tables, table)
}

// TableNames returns the distinct table names in order of first appearance.
func (s *Statement) TableNames() []string {
	names := make([]string, 0, len(s.Tables))
	for _, table := range s.Tables {
		if !slices.ContainsFunc(names, func(name string) bool { return strings.EqualFold(name, table.Name) }) {
			names = append(names, table.Name)
		}
	}

	return names
}

// HasTable reports whether a table with the given name was registered.
func (s *Statement) HasTable(name string) bool {
	return slices.ContainsFunc(s.Tables, func(table Table) bool {
		return strings.EqualFold(table.Name, name)
	})
}

// FindTable resolves a name or alias to the first matching table.
func (s *Statement) FindTable(nameOrAlias string) (Table, bool) {
	for _, table := range s.Tables {
		if alias, ok := table.Alias.Get(); ok && strings.EqualFold(alias, nameOrAlias) {
			return table, true
		}
	}

	for _, table := range s.Tables {
		if strings.EqualFold(table.Name, nameOrAlias) {
			return table, true
		}
	}

	return Table{}, false
}

// ExactValue strips identifier and string quotes: `t`, [t], "t" and 't' all become t.
func ExactValue(literal string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '`', '[', ']', '"', '\'':
			return -1
		}

		return r
	}, literal)
}
