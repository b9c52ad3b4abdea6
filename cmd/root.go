// Package cmd implements the CLI command structure for karen.
package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/nibzard/karen-go/internal/config"
)

// Version is set via ldflags at build time.
var Version = "dev"

// Standard streams, replaced in tests.
var (
	stdin  io.Reader = os.Stdin
	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
)

// Run executes the karen CLI.
func Run(ctx context.Context, args []string) error {
	// Create a flag set for global options
	fs := flag.NewFlagSet("karen", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		printUsage(fs, stderr)
	}
	help := fs.Bool("help", false, "Show help")
	fs.BoolVar(help, "h", false, "Show help")
	showVersion := fs.Bool("version", false, "Show version")
	fs.BoolVar(showVersion, "v", false, "Show version")

	// Global flags
	cws, err := config.LoadWithSources(fs, args)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	cfg := cws.Config
	if *help {
		printUsage(fs, stdout)
		return nil
	}
	if *showVersion {
		return versionCommand()
	}

	// No subcommand means an interactive chat session.
	subcommand := "chat"
	remainingArgs := fs.Args()
	if len(remainingArgs) > 0 && !strings.HasPrefix(remainingArgs[0], "-") {
		subcommand = remainingArgs[0]
		remainingArgs = remainingArgs[1:]
	}

	switch subcommand {
	case "chat":
		return chatCommand(ctx, cfg, remainingArgs)
	case "tui":
		return tuiCommand(ctx, cfg, remainingArgs)
	case "exec":
		return execCommand(ctx, cfg, remainingArgs)
	case "list", "ls":
		return listCommand(ctx, cfg, remainingArgs)
	case "config":
		return configCommand(cws, remainingArgs)
	case "history":
		return historyCommand(cfg, remainingArgs)
	case "doctor":
		return doctorCommand(ctx, cfg, remainingArgs)
	case "init":
		return initCommand(cfg, remainingArgs)
	case "version":
		return versionCommand()
	case "help":
		printUsage(fs, stdout)
		return nil
	default:
		fmt.Fprintf(stderr, "Unknown command: %s\n", subcommand)
		printUsage(fs, stderr)
		return fmt.Errorf("unknown command: %s", subcommand)
	}
}

func versionCommand() error {
	fmt.Fprintf(stdout, "karen version %s\n", Version)
	return nil
}

func printUsage(fs *flag.FlagSet, w io.Writer) {
	fmt.Fprintln(w, "Karen - a task tracker with an attitude")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  karen [options] [command]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  chat          Interactive session on stdin/stdout (default command)")
	fmt.Fprintln(w, "  tui           Interactive terminal UI")
	fmt.Fprintln(w, "  exec <line>   Run a single command line and exit")
	fmt.Fprintln(w, "  list          Print the task list")
	fmt.Fprintln(w, "  config        Print the effective configuration")
	fmt.Fprintln(w, "  history       Show the latest session log")
	fmt.Fprintln(w, "  doctor        Check configuration and stored tasks")
	fmt.Fprintln(w, "  init          Write a starter karen.toml and an empty task file")
	fmt.Fprintln(w, "  version       Show version information")
	fmt.Fprintln(w, "  help          Show this help message")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Session commands:")
	fmt.Fprintln(w, "  list | find <keyword> | clear | bye")
	fmt.Fprintln(w, "  todo <description>")
	fmt.Fprintln(w, "  deadline <description> /by dd/mm/yyyy")
	fmt.Fprintln(w, "  event <description> /at dd/mm/yyyy")
	fmt.Fprintln(w, "  mark <n> | unmark <n> | delete <n>")
	fmt.Fprintln(w, "  update <n> [description] [/by|/at dd/mm/yyyy]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Global Options:")
	fs.SetOutput(w)
	fs.PrintDefaults()
	fmt.Fprintln(w)
	fmt.Fprintln(w, "History Options (use with 'history' command):")
	fmt.Fprintln(w, "  -n int")
	fmt.Fprintln(w, "        Number of events to show (0 = all)")
	fmt.Fprintln(w, "  -sessions")
	fmt.Fprintln(w, "        List session logs instead of showing one")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Config Options (use with 'config' command):")
	fmt.Fprintln(w, "  -sources")
	fmt.Fprintln(w, "        Show where each value came from")
}
