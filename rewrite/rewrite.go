// Package rewrite splices actual table names into SQL text at the offsets recorded by the parser.
package rewrite

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/shibukawa/sqlshard/parser"
)

// ErrTokenMismatch is returned when a token does not match the SQL text it claims to cover.
var ErrTokenMismatch = errors.New("table token does not match SQL text")

// TableMapping maps logic table names to actual table names. Lookups ignore case.
type TableMapping map[string]string

// NewTableMapping returns an empty mapping.
func NewTableMapping() TableMapping {
	return make(TableMapping)
}

// Set registers the actual table for a logic table.
func (m TableMapping) Set(logicTable, actualTable string) {
	m[strings.ToLower(logicTable)] = actualTable
}

// Lookup returns the actual table for a logic table.
func (m TableMapping) Lookup(logicTable string) (string, bool) {
	actual, ok := m[strings.ToLower(logicTable)]
	return actual, ok
}

// Rewrite replaces every token whose table is in mapping. Tokens may be given in any order;
// identifier quotes of the original literal are kept around the replacement.
func Rewrite(sql string, tokens []parser.TableToken, mapping TableMapping) (string, error) {
	sorted := slices.Clone(tokens)
	slices.SortStableFunc(sorted, func(a, b parser.TableToken) int {
		return cmp.Compare(a.Offset, b.Offset)
	})

	var builder strings.Builder

	builder.Grow(len(sql))

	last := 0

	for i, token := range sorted {
		if i > 0 && token.Offset == sorted[i-1].Offset {
			continue
		}

		if token.Offset < last || token.End() > len(sql) || sql[token.Offset:token.End()] != token.Literal {
			return "", fmt.Errorf("%w: '%s' at offset %d", ErrTokenMismatch, token.Literal, token.Offset)
		}

		actual, ok := mapping.Lookup(token.TableName())
		if !ok {
			continue
		}

		builder.WriteString(sql[last:token.Offset])
		builder.WriteString(requote(token.Literal, actual))
		last = token.End()
	}

	builder.WriteString(sql[last:])

	return builder.String(), nil
}

func requote(literal, actual string) string {
	if len(literal) < 2 {
		return actual
	}

	first, end := literal[0], literal[len(literal)-1]

	switch {
	case first == '`' && end == '`', first == '"' && end == '"':
		return string(first) + actual + string(end)
	case first == '[' && end == ']':
		return "[" + actual + "]"
	}

	return actual
}
