package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/fatih/color"

	"github.com/shibukawa/sqlshard"
	"github.com/shibukawa/sqlshard/routing"
	"github.com/shibukawa/sqlshard/sharding"
	tok "github.com/shibukawa/sqlshard/tokenizer"
)

// SQLInput selects where the statement comes from
type SQLInput struct {
	SQL  string `arg:"" optional:"" help:"SQL statement (read from stdin when omitted)"`
	File string `short:"f" help:"Read the SQL statement from a file" type:"existingfile"`
}

// read returns the statement with surrounding whitespace and a trailing semicolon removed
func (in *SQLInput) read(ctx *Context) (string, error) {
	var sql string

	switch {
	case in.SQL != "" && in.File != "":
		return "", ErrSQLSourceConflict
	case in.SQL != "":
		sql = in.SQL
	case in.File != "":
		data, err := os.ReadFile(in.File)
		if err != nil {
			return "", fmt.Errorf("failed to read SQL file: %w", err)
		}

		sql = string(data)
	default:
		data, err := io.ReadAll(ctx.Stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read SQL from stdin: %w", err)
		}

		sql = string(data)
	}

	sql = strings.TrimSuffix(strings.TrimSpace(sql), ";")
	if strings.TrimSpace(sql) == "" {
		return "", ErrEmptySQL
	}

	return sql, nil
}

// shardingEnv is what every command needs from the configuration
type shardingEnv struct {
	config  *sqlshard.Config
	dialect tok.Dialect
	rule    *sharding.Rule
	router  *routing.Router
}

func loadShardingEnv(ctx *Context) (*shardingEnv, error) {
	config, err := sqlshard.LoadConfig(ctx.Config)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	dialect, err := config.TokenizerDialect()
	if err != nil {
		return nil, err
	}

	rule, err := config.ShardingRule()
	if err != nil {
		return nil, err
	}

	if ctx.Verbose {
		color.New(color.FgBlue).Fprintf(ctx.Stdout, "Config: %s (dialect %s, %d data sources, %d sharded tables)\n",
			ctx.Config, dialect, len(config.DataSources), len(rule.TableRules()))
	}

	return &shardingEnv{
		config:  config,
		dialect: dialect,
		rule:    rule,
		router:  routing.NewRouter(rule, dialect),
	}, nil
}

// parseArg converts a command line value to an int64, float64, nil or string argument
func parseArg(value string) any {
	if strings.EqualFold(value, "null") {
		return nil
	}

	if i, err := strconv.ParseInt(value, 10, 64); err == nil {
		return i
	}

	if f, err := strconv.ParseFloat(value, 64); err == nil {
		return f
	}

	return value
}

func printUnits(ctx *Context, units []routing.RouteUnit) {
	label := color.New(color.FgCyan)

	for _, unit := range units {
		if !ctx.Quiet {
			label.Fprintf(ctx.Stdout, "-- %s\n", unit.DataSource)
		}

		fmt.Fprintf(ctx.Stdout, "%s;\n", unit.SQL)
	}
}
