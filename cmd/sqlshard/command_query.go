package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/fatih/color"

	"github.com/shibukawa/sqlshard/parser"
	"github.com/shibukawa/sqlshard/query"
)

// QueryCmd represents the query command
type QueryCmd struct {
	SQLInput

	Arg                   []string `long:"arg" short:"a" help:"Placeholder value, repeated in placeholder order"`
	Format                string   `long:"format" help:"Output format (table, json, csv, yaml); defaults to query.default_format"`
	ExecuteDangerousQuery bool     `long:"execute-dangerous-query" help:"Execute DELETE/UPDATE queries without WHERE clause (dangerous!)"`
	DryRun                bool     `long:"dry-run" help:"Show routed SQL without executing"`
}

// Run executes the query command
func (q *QueryCmd) Run(ctx *Context) error {
	sql, err := q.read(ctx)
	if err != nil {
		return err
	}

	env, err := loadShardingEnv(ctx)
	if err != nil {
		return err
	}

	format := q.Format
	if format == "" {
		format = env.config.Query.DefaultFormat
	}

	if !query.IsValidOutputFormat(format) {
		return fmt.Errorf("%w: %s", query.ErrInvalidOutputFormat, format)
	}

	stmt, units, err := env.router.RouteSQL(sql)
	if err != nil {
		return err
	}

	if expected := query.CountParameters(sql, env.dialect); len(q.Arg) != expected {
		return fmt.Errorf("%w: %d given, %d expected", ErrParameterCount, len(q.Arg), expected)
	}

	if query.IsDangerousQuery(sql, env.dialect) && !q.ExecuteDangerousQuery && !env.config.Query.ExecuteDangerousQuery {
		return fmt.Errorf("%w: query contains DELETE/UPDATE without WHERE clause. Use --execute-dangerous-query flag to execute anyway", query.ErrDangerousQuery)
	}

	if q.DryRun || ctx.Verbose {
		printUnits(ctx, units)

		if q.DryRun {
			return nil
		}
	}

	args := make([]any, len(q.Arg))
	for i, value := range q.Arg {
		args[i] = parseArg(value)
	}

	executor, err := query.Open(env.config.QueryDataSources(), env.config.Query.Timeout)
	if err != nil {
		return err
	}
	defer executor.Close()

	var result *query.QueryResult

	if stmt.Type == parser.SelectStatement {
		result, err = executor.Query(context.Background(), units, args...)
	} else {
		result, err = executor.Exec(context.Background(), units, args...)
	}

	if err != nil {
		return err
	}

	if ctx.Quiet {
		return nil
	}

	if err := query.NewFormatter(query.OutputFormat(strings.ToLower(format))).Write(result, ctx.Stdout); err != nil {
		return err
	}

	if ctx.Verbose {
		color.New(color.FgGreen).Fprintf(ctx.Stdout, "Executed on %d route units in %v\n", len(units), result.Duration)
	}

	return nil
}
