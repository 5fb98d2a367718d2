package command

import (
	"context"
	"sort"

	"github.com/opsrelay/stackctl/internal/core/envfile"
	"github.com/opsrelay/stackctl/internal/core/topology"
)

// Action performs the single relay (or probe) for a command.
type Action func(ctx context.Context, d *Dispatcher, inv Invocation) error

// Descriptor is one entry of the command table: the per-command defaults
// and preconditions plus the relay action. The table is fixed at
// construction and never mutated.
type Descriptor struct {
	Name    string
	Summary string

	ForceMode     string // pins the mode selector ("" = operator's choice)
	ForceTarget   string // pins the target service ("" = operator's choice)
	RequireTarget bool

	Creds   []envfile.Field // fields that must be non-empty before the action runs
	Confirm string          // prompt label; non-empty gates the action
	Warning string          // printed before prompting

	Run Action
}

// allCreds is the precondition for the guarded database actions.
var allCreds = envfile.AllFields()

// dbShellCreds is what an interactive client session authenticates with.
var dbShellCreds = []envfile.Field{envfile.FieldUser, envfile.FieldPassword, envfile.FieldDatabase}

// buildTable assembles the descriptor table. backendService is the
// topology name of the backend, used by the shell alias.
func buildTable(backendService string) map[string]Descriptor {
	table := map[string]Descriptor{
		// Lifecycle
		"up": {
			Summary: "start all services (or one) detached",
			Run:     actionUp,
		},
		"down": {
			Summary: "stop all services (or one); extra flags pass through, e.g. -v",
			Run:     actionDown,
		},
		"build": {
			Summary: "build images for all services (or one)",
			Run:     actionBuild,
		},
		"restart": {
			Summary: "restart all services (or one)",
			Run:     actionRestart,
		},

		// Introspection
		"ps": {
			Summary: "show service status",
			Run:     actionPs,
		},
		"logs": {
			Summary: "follow log output for all services (or one)",
			Run:     actionLogs,
		},

		// Access
		"sh": {
			Summary:       "open a shell in one named service",
			RequireTarget: true,
			Run:           actionShell,
		},
		"db": {
			Summary: "open an interactive database client session",
			Creds:   dbShellCreds,
			Run:     actionDBShell,
		},

		// Guarded destructive actions
		"db-reset": {
			Summary: "DROP the entire database (asks for confirmation)",
			Creds:   allCreds,
			Warning: "WARNING: this drops the entire database. There is no undo.",
			Confirm: "Really drop the database? (y/N)",
			Run:     actionDBReset,
		},
		"db-backup": {
			Summary: "archive the database to a timestamped backup",
			Creds:   allCreds,
			Run:     actionDBBackup,
		},

		// Backend package manager (no mode/target/credential resolution)
		"install": {
			Summary: "install backend dependencies",
			Run:     backendAction("install"),
		},
		"compile": {
			Summary: "compile the backend",
			Run:     backendAction("run", "build"),
		},
		"typecheck": {
			Summary: "type-check the backend",
			Run:     backendAction("run", "typecheck"),
		},
		"watch": {
			Summary: "run the backend in watch mode",
			Run:     backendAction("run", "dev"),
		},

		// Verification and inspection
		"health": {
			Summary: "probe the edge and upstream health endpoints",
			Creds:   []envfile.Field{envfile.FieldPort},
			Run:     actionHealth,
		},
		"services": {
			Summary: "list the services the active topology defines",
			Run:     actionServices,
		},
		"doctor": {
			Summary: "check that the container engine is reachable",
			Run:     actionDoctor,
		},
	}

	// Aliases: pure shorthand that pins mode and/or target, then delegates.
	table["backend-sh"] = Descriptor{
		Summary:     "shell into the backend service",
		ForceMode:   topology.ModeDevelopment,
		ForceTarget: backendService,
		Run:         actionShell,
	}
	table["prod-up"] = Descriptor{
		Summary:   "start the production topology",
		ForceMode: topology.ModeProduction,
		Run:       actionUp,
	}
	table["prod-down"] = Descriptor{
		Summary:   "stop the production topology",
		ForceMode: topology.ModeProduction,
		Run:       actionDown,
	}
	table["prod-ps"] = Descriptor{
		Summary:   "show production service status",
		ForceMode: topology.ModeProduction,
		Run:       actionPs,
	}
	table["prod-logs"] = Descriptor{
		Summary:   "follow production logs",
		ForceMode: topology.ModeProduction,
		Run:       actionLogs,
	}

	for name, desc := range table {
		desc.Name = name
		table[name] = desc
	}

	return table
}

// Names returns the command names in sorted order, for help output.
func Names(table map[string]Descriptor) []string {
	names := make([]string, 0, len(table))
	for name := range table {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
