package main

import "errors"

// Sentinel errors for command operations
var (
	ErrEmptySQL           = errors.New("no SQL statement given")
	ErrSQLSourceConflict  = errors.New("SQL argument and --file are mutually exclusive")
	ErrParameterCount     = errors.New("number of --arg values does not match the placeholders")
	ErrInvalidParseFormat = errors.New("invalid parse output format")
)
