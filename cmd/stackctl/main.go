// Package main provides the stackctl binary, the operator control surface
// for the compose stack.
//
// Usage:
//
//	stackctl [-mode dev|prod] [-config file] <command> [service] [args...]
//
// The command names a relay to the container runtime, the backend package
// manager, or the database client. The optional service scopes the command
// to one service of the active topology; remaining args pass through to
// the relayed tool verbatim.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/opsrelay/stackctl/internal/core/command"
	"github.com/opsrelay/stackctl/internal/core/topology"
	"github.com/opsrelay/stackctl/internal/shell/docker"
	"github.com/opsrelay/stackctl/internal/shell/health"
	"github.com/opsrelay/stackctl/internal/shell/prompt"
	"github.com/opsrelay/stackctl/internal/shell/relay"
)

// Version information (set by build)
var (
	Version   = "dev"
	BuildTime = "unknown"
)

// =============================================================================
// Exit Codes
// =============================================================================

const (
	ExitSuccess     = 0
	ExitFailure     = 1
	ExitUsageError  = 2
	ExitConfigError = 3
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "", "Path to config file")
	mode := flag.String("mode", "", "Deployment mode: prod selects the production topology, anything else development")
	showVersion := flag.Bool("version", false, "Print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("stackctl %s (built %s)\n", Version, BuildTime)
		return ExitSuccess
	}

	cfg, err := LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		return ExitConfigError
	}

	logger := SetupLogger(cfg)
	dispatcher := newDispatcher(cfg, logger)

	args := flag.Args()
	if len(args) == 0 {
		printUsage(os.Stderr, dispatcher)
		return ExitUsageError
	}
	if args[0] == "help" {
		printUsage(os.Stdout, dispatcher)
		return ExitSuccess
	}

	name := args[0]
	target, extra := splitTarget(args[1:])

	err = dispatcher.Dispatch(context.Background(), name, *mode, target, extra)
	return exitStatus(err, dispatcher)
}

// newDispatcher wires the dispatcher to its real boundaries.
func newDispatcher(cfg *Config, logger *slog.Logger) *command.Dispatcher {
	return command.NewDispatcher(command.Dispatcher{
		Topology: topology.Topology{
			DevFile:  cfg.Compose.DevFile,
			ProdFile: cfg.Compose.ProdFile,
		},
		EnvFile: cfg.EnvFile,
		Compose: cfg.Compose.CommandParts(),
		Backend: command.BackendTools{
			Dir:     cfg.Backend.Dir,
			Tool:    cfg.Backend.Tool,
			Service: cfg.Backend.Service,
		},
		Database: command.DatabaseTools{
			Service:  cfg.Database.Service,
			Client:   cfg.Database.Client,
			DumpTool: cfg.Database.DumpTool,
			AuthDB:   cfg.Database.AuthDB,
			DumpDir:  cfg.Database.DumpDir,
		},
		Relay:   &relay.ExecRelay{Log: logger},
		Confirm: prompt.TerminalConfirmer{},
		Health: &health.Verifier{
			Host:   cfg.Health.Host,
			Client: &http.Client{Timeout: cfg.Health.Timeout},
			Log:    logger,
		},
		Engine:  docker.Prober{},
		Inspect: fileInspector{},
		Out:     os.Stdout,
		Log:     logger,
	})
}

// splitTarget peels an optional leading service name off the remaining
// args; anything starting with "-" (and everything after a service name)
// passes through to the relayed tool untouched.
func splitTarget(rest []string) (string, []string) {
	if len(rest) > 0 && !strings.HasPrefix(rest[0], "-") {
		return rest[0], rest[1:]
	}
	return "", rest
}

// exitStatus reports the dispatch result to the operator and derives the
// process exit code.
func exitStatus(err error, dispatcher *command.Dispatcher) int {
	if err == nil {
		return ExitSuccess
	}

	var usageErr *command.UsageError
	if errors.As(err, &usageErr) {
		fmt.Fprintf(os.Stderr, "usage error: %v\n", usageErr)
		printUsage(os.Stderr, dispatcher)
		return ExitUsageError
	}

	var cfgErr *command.ConfigError
	if errors.As(err, &cfgErr) {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", cfgErr)
		return ExitConfigError
	}

	// A declined confirmation aborts silently; the operator just said no.
	if errors.Is(err, command.ErrConfirmationDeclined) {
		return ExitFailure
	}

	fmt.Fprintf(os.Stderr, "%v\n", err)
	return relay.ExitCode(err)
}

// printUsage lists the command table.
func printUsage(w io.Writer, dispatcher *command.Dispatcher) {
	fmt.Fprintln(w, "usage: stackctl [-mode dev|prod] [-config file] <command> [service] [args...]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "commands:")

	commands := dispatcher.Commands()
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, name := range command.Names(commands) {
		fmt.Fprintf(tw, "  %s\t%s\n", name, commands[name].Summary)
	}
	tw.Flush()
}
