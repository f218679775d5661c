package parser

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedConstruct is returned for grammar this parser deliberately rejects.
	ErrUnsupportedConstruct = errors.New("unsupported construct")
	// ErrUnsupportedStatement is returned by Parse for statements other than SELECT/INSERT/UPDATE/DELETE.
	ErrUnsupportedStatement = errors.New("unsupported statement")
)

// Sentinel errors for each rejected construct.
var (
	ErrSubqueryTableSource  = fmt.Errorf("%w: subquery as table source is not supported", ErrUnsupportedConstruct)
	ErrMultipleTables       = fmt.Errorf("%w: multiple tables are not supported here", ErrUnsupportedConstruct)
	ErrSchemaQualifiedTable = fmt.Errorf("%w: schema-qualified table names are not supported", ErrUnsupportedConstruct)
	ErrSubqueryJoinTarget   = fmt.Errorf("%w: subquery as join target is not supported", ErrUnsupportedConstruct)
	ErrSubquery             = fmt.Errorf("%w: subquery is not supported", ErrUnsupportedConstruct)
	ErrCompoundSelect       = fmt.Errorf("%w: UNION is not supported", ErrUnsupportedConstruct)
)
