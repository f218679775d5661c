package main

import (
	"encoding/json"
	"fmt"

	"github.com/goccy/go-yaml"

	"github.com/shibukawa/sqlshard/parser"
	"github.com/shibukawa/sqlshard/rewrite"
)

// RewriteCmd represents the rewrite command
type RewriteCmd struct {
	SQLInput

	Table map[string]string `short:"t" help:"Logic to actual table mapping (logic=actual)" required:""`
}

// Run executes the rewrite command
func (cmd *RewriteCmd) Run(ctx *Context) error {
	sql, err := cmd.read(ctx)
	if err != nil {
		return err
	}

	env, err := loadShardingEnv(ctx)
	if err != nil {
		return err
	}

	stmt, err := parser.Parse(sql, env.dialect, env.rule)
	if err != nil {
		return err
	}

	mapping := rewrite.NewTableMapping()
	for logic, actual := range cmd.Table {
		mapping.Set(logic, actual)
	}

	rewritten, err := rewrite.Rewrite(sql, stmt.Tokens, mapping)
	if err != nil {
		return err
	}

	fmt.Fprintln(ctx.Stdout, rewritten)

	return nil
}

// RouteCmd represents the route command
type RouteCmd struct {
	SQLInput

	Format string `help:"Output format (sql, json, yaml)" default:"sql" enum:"sql,json,yaml"`
}

// Run executes the route command
func (cmd *RouteCmd) Run(ctx *Context) error {
	sql, err := cmd.read(ctx)
	if err != nil {
		return err
	}

	env, err := loadShardingEnv(ctx)
	if err != nil {
		return err
	}

	_, units, err := env.router.RouteSQL(sql)
	if err != nil {
		return err
	}

	switch cmd.Format {
	case "json":
		encoder := json.NewEncoder(ctx.Stdout)
		encoder.SetIndent("", "  ")

		return encoder.Encode(units)
	case "yaml":
		data, err := yaml.Marshal(units)
		if err != nil {
			return fmt.Errorf("failed to marshal route units to YAML: %w", err)
		}

		_, err = ctx.Stdout.Write(data)

		return err
	default:
		printUnits(ctx, units)
		return nil
	}
}
