package main

import (
	"encoding/json"
	"fmt"

	"github.com/fatih/color"
	"github.com/goccy/go-yaml"

	"github.com/shibukawa/sqlshard/parser"
)

// ParseCmd represents the parse command
type ParseCmd struct {
	SQLInput

	Format string `help:"Output format (text, json, yaml)" default:"text" enum:"text,json,yaml"`
}

type parseReport struct {
	Type       string                 `json:"type" yaml:"type"`
	Tables     []parser.Table         `json:"tables" yaml:"tables"`
	Tokens     []parser.TableToken    `json:"tokens" yaml:"tokens"`
	Conditions []parser.JoinCondition `json:"conditions,omitempty" yaml:"conditions,omitempty"`
	Parameters int                    `json:"parameters" yaml:"parameters"`
}

// Run executes the parse command
func (cmd *ParseCmd) Run(ctx *Context) error {
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

	report := parseReport{
		Type:       stmt.Type.String(),
		Tables:     stmt.Tables,
		Tokens:     stmt.Tokens,
		Conditions: stmt.Conditions,
		Parameters: stmt.ParametersIndex,
	}

	switch cmd.Format {
	case "json":
		encoder := json.NewEncoder(ctx.Stdout)
		encoder.SetIndent("", "  ")

		return encoder.Encode(report)
	case "yaml":
		data, err := yaml.Marshal(report)
		if err != nil {
			return fmt.Errorf("failed to marshal statement to YAML: %w", err)
		}

		_, err = ctx.Stdout.Write(data)

		return err
	case "text":
		printStatement(ctx, stmt)
		return nil
	default:
		return fmt.Errorf("%w: %s", ErrInvalidParseFormat, cmd.Format)
	}
}

func printStatement(ctx *Context, stmt *parser.Statement) {
	heading := color.New(color.FgGreen, color.Bold)
	w := ctx.Stdout

	heading.Fprintf(w, "%s statement, %d parameters\n", stmt.Type, stmt.ParametersIndex)

	heading.Fprintln(w, "Tables:")

	for _, table := range stmt.Tables {
		if alias, ok := table.Alias.Get(); ok {
			fmt.Fprintf(w, "  %s AS %s\n", table.Name, alias)
		} else {
			fmt.Fprintf(w, "  %s\n", table.Name)
		}
	}

	heading.Fprintln(w, "Tokens:")

	for _, token := range stmt.Tokens {
		fmt.Fprintf(w, "  %d-%d %s\n", token.Offset, token.End(), token.Literal)
	}

	if len(stmt.Conditions) > 0 {
		heading.Fprintln(w, "Join conditions:")

		for _, cond := range stmt.Conditions {
			fmt.Fprintf(w, "  %s: %s = %s\n", cond.Table, expressionText(cond.Left), expressionText(cond.Right))
		}
	}
}

func expressionText(expr parser.Expression) string {
	switch {
	case expr.Owner != "":
		return expr.Owner + "." + expr.Text
	case expr.Text != "":
		return expr.Text
	default:
		return "<" + expr.Kind.String() + ">"
	}
}
