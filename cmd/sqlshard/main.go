package main

import (
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/kong"
)

// Context represents the global context for commands
type Context struct {
	Config  string
	Verbose bool
	Quiet   bool

	Stdin  io.Reader
	Stdout io.Writer
}

var CLI struct {
	Config  string     `help:"Configuration file path" default:"sqlshard.yaml"`
	Verbose bool       `help:"Enable verbose output" short:"v"`
	Quiet   bool       `help:"Suppress output" short:"q"`
	Parse   ParseCmd   `cmd:"" help:"Show the tables, rewrite tokens and join conditions found in a statement"`
	Rewrite RewriteCmd `cmd:"" help:"Rewrite logic table names to actual table names"`
	Route   RouteCmd   `cmd:"" help:"Show the SQL sent to each data source"`
	Query   QueryCmd   `cmd:"" help:"Execute a statement on every routed data source"`
	Version VersionCmd `cmd:"" help:"Show version information"`
}

// VersionCmd represents the version command
type VersionCmd struct{}

// Run executes the version command
func (cmd *VersionCmd) Run(ctx *Context) error {
	fmt.Fprintln(ctx.Stdout, "sqlshard v0.1.0")
	return nil
}

func main() {
	ctx := kong.Parse(&CLI)

	appCtx := &Context{
		Config:  CLI.Config,
		Verbose: CLI.Verbose,
		Quiet:   CLI.Quiet,
		Stdin:   os.Stdin,
		Stdout:  os.Stdout,
	}

	err := ctx.Run(appCtx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
