// Package command maps operator command names to relay invocations of the
// container runtime, the backend package manager, and the database client.
//
// The command surface is a static descriptor table: each entry fixes which
// topology and target defaults apply, whether credentials or interactive
// confirmation are required, and the relay to perform. The dispatcher
// resolves those inputs and executes exactly one relay per invocation.
package command

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/opsrelay/stackctl/internal/core/envfile"
	"github.com/opsrelay/stackctl/internal/core/topology"
)

// =============================================================================
// Boundary Interfaces
// =============================================================================

// RunSpec describes a single external tool invocation.
type RunSpec struct {
	Name string   // binary to run
	Args []string // arguments, in final order
	Dir  string   // working directory ("" = inherit)
}

// Relay executes external tools. Implementations block until the tool
// exits and return its failure (including exit status) unmodified.
type Relay interface {
	Run(ctx context.Context, spec RunSpec) error
}

// Confirmer blocks on an interactive yes/no question. Only an exact,
// case-sensitive "y" answer counts as affirmative.
type Confirmer interface {
	Confirm(label string) (bool, error)
}

// HealthVerifier checks stack reachability through the edge proxy.
type HealthVerifier interface {
	Verify(ctx context.Context, port int) error
}

// EngineInfo describes the container engine answering a probe.
type EngineInfo struct {
	Version    string
	APIVersion string
	OS         string
}

// EngineProber tests the connection to the container engine.
type EngineProber interface {
	Ping(ctx context.Context) (EngineInfo, error)
}

// ServiceSummary is one service of a topology file, for operator listings.
type ServiceSummary struct {
	Name  string
	Image string
	Ports []string
}

// TopologyInspector loads a topology file and reports its service set.
type TopologyInspector interface {
	Services(path string) ([]ServiceSummary, error)
}

// =============================================================================
// Dispatcher
// =============================================================================

// BackendTools locates the backend project and its package manager.
type BackendTools struct {
	Dir     string // project subdirectory, e.g. "backend"
	Tool    string // package manager binary, e.g. "npm"
	Service string // service name in the topology, for shell aliases
}

// DatabaseTools names the database service and its client binaries.
type DatabaseTools struct {
	Service  string // compose service running the database
	Client   string // interactive client binary, e.g. "mongosh"
	DumpTool string // archive producer, e.g. "mongodump"
	AuthDB   string // fixed authentication database, e.g. "admin"
	DumpDir  string // directory (inside the container) backups land in
}

// Dispatcher resolves operator invocations against the descriptor table
// and relays them. All side effects go through the boundary interfaces so
// the dispatch and guard logic is testable without external tools.
type Dispatcher struct {
	Topology topology.Topology
	EnvFile  string
	Compose  []string // compose command prefix, e.g. {"docker", "compose"}
	Backend  BackendTools
	Database DatabaseTools

	Relay   Relay
	Confirm Confirmer
	Health  HealthVerifier
	Engine  EngineProber
	Inspect TopologyInspector

	Out io.Writer
	Log *slog.Logger
	Now func() time.Time

	commands map[string]Descriptor
}

// Invocation carries the fully resolved inputs handed to an action.
type Invocation struct {
	Command string
	Mode    string // canonical token after resolution
	File    string // resolved topology reference
	Target  string // "" = all services
	Extra   []string
	Creds   envfile.Credentials
}

// NewDispatcher finishes construction by building the command table.
func NewDispatcher(d Dispatcher) *Dispatcher {
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.Log == nil {
		d.Log = slog.Default()
	}
	d.commands = buildTable(d.Backend.Service)
	return &d
}

// Commands returns the descriptor table, for help output.
func (d *Dispatcher) Commands() map[string]Descriptor {
	return d.commands
}

// Dispatch looks up the command, applies descriptor overrides, enforces
// preconditions, and runs the action. The mode is resolved once here and
// never changes for the rest of the invocation.
func (d *Dispatcher) Dispatch(ctx context.Context, name, mode, target string, extra []string) error {
	desc, ok := d.commands[name]
	if !ok {
		return &UsageError{Command: name, Message: ErrUnknownCommand.Error()}
	}

	if desc.ForceMode != "" {
		mode = desc.ForceMode
	}
	if desc.ForceTarget != "" {
		target = desc.ForceTarget
	}
	if desc.RequireTarget && target == "" {
		return &UsageError{Command: name, Message: "a target service is required, e.g. `stackctl " + name + " backend`"}
	}

	inv := Invocation{
		Command: name,
		Mode:    topology.Normalize(mode),
		File:    d.Topology.Resolve(mode),
		Target:  target,
		Extra:   extra,
	}

	if len(desc.Creds) > 0 {
		creds, err := envfile.Read(d.EnvFile)
		if err != nil {
			return fmt.Errorf("reading %s: %w", d.EnvFile, err)
		}
		if missing := creds.Missing(desc.Creds...); len(missing) > 0 {
			return &ConfigError{Missing: missing}
		}
		inv.Creds = creds
	}

	if desc.Confirm != "" {
		if desc.Warning != "" {
			fmt.Fprintln(d.Out, desc.Warning)
		}
		ok, err := d.Confirm.Confirm(desc.Confirm)
		if err != nil {
			return fmt.Errorf("confirmation prompt: %w", err)
		}
		if !ok {
			return ErrConfirmationDeclined
		}
	}

	d.Log.Debug("dispatching",
		"command", name,
		"mode", inv.Mode,
		"file", inv.File,
		"target", inv.Target,
	)

	return desc.Run(ctx, d, inv)
}
