package command

import (
	"context"
	"fmt"
	"path"
	"strconv"
	"strings"
	"time"
)

// =============================================================================
// Compose Relays
// =============================================================================

// composeSpec builds the single compose invocation for a lifecycle or
// introspection command: sub-action first, then pass-through flags, then
// the target service last.
func (d *Dispatcher) composeSpec(inv Invocation, sub ...string) RunSpec {
	args := append([]string{}, d.Compose[1:]...)
	args = append(args, "-f", inv.File)
	args = append(args, sub...)
	args = append(args, inv.Extra...)
	if inv.Target != "" {
		args = append(args, inv.Target)
	}
	return RunSpec{Name: d.Compose[0], Args: args}
}

// execSpec builds a compose exec invocation: the service comes right after
// "exec", followed by the command to run inside it.
func (d *Dispatcher) execSpec(inv Invocation, service string, interactive bool, cmd ...string) RunSpec {
	args := append([]string{}, d.Compose[1:]...)
	args = append(args, "-f", inv.File, "exec")
	if !interactive {
		args = append(args, "-T")
	}
	args = append(args, service)
	args = append(args, cmd...)
	return RunSpec{Name: d.Compose[0], Args: args}
}

func actionUp(ctx context.Context, d *Dispatcher, inv Invocation) error {
	return d.Relay.Run(ctx, d.composeSpec(inv, "up", "-d"))
}

func actionDown(ctx context.Context, d *Dispatcher, inv Invocation) error {
	return d.Relay.Run(ctx, d.composeSpec(inv, "down"))
}

func actionBuild(ctx context.Context, d *Dispatcher, inv Invocation) error {
	return d.Relay.Run(ctx, d.composeSpec(inv, "build"))
}

func actionRestart(ctx context.Context, d *Dispatcher, inv Invocation) error {
	return d.Relay.Run(ctx, d.composeSpec(inv, "restart"))
}

func actionPs(ctx context.Context, d *Dispatcher, inv Invocation) error {
	return d.Relay.Run(ctx, d.composeSpec(inv, "ps"))
}

func actionLogs(ctx context.Context, d *Dispatcher, inv Invocation) error {
	return d.Relay.Run(ctx, d.composeSpec(inv, "logs", "-f"))
}

func actionShell(ctx context.Context, d *Dispatcher, inv Invocation) error {
	return d.Relay.Run(ctx, d.execSpec(inv, inv.Target, true, "sh"))
}

// =============================================================================
// Database Relays
// =============================================================================

// clientArgs is the authenticated invocation of the database client,
// always against the fixed authentication database.
func (d *Dispatcher) clientArgs(inv Invocation) []string {
	return []string{
		d.Database.Client,
		"-u", inv.Creds.User,
		"-p", inv.Creds.Password,
		"--authenticationDatabase", d.Database.AuthDB,
		inv.Creds.Database,
	}
}

func actionDBShell(ctx context.Context, d *Dispatcher, inv Invocation) error {
	return d.Relay.Run(ctx, d.execSpec(inv, d.Database.Service, true, d.clientArgs(inv)...))
}

func actionDBReset(ctx context.Context, d *Dispatcher, inv Invocation) error {
	cmd := append(d.clientArgs(inv), "--eval", "db.dropDatabase()")
	return d.Relay.Run(ctx, d.execSpec(inv, d.Database.Service, false, cmd...))
}

func actionDBBackup(ctx context.Context, d *Dispatcher, inv Invocation) error {
	archive := path.Join(d.Database.DumpDir, BackupFilename(d.Now()))
	cmd := []string{
		d.Database.DumpTool,
		"--username", inv.Creds.User,
		"--password", inv.Creds.Password,
		"--authenticationDatabase", d.Database.AuthDB,
		"--db", inv.Creds.Database,
		"--archive=" + archive,
	}
	if err := d.Relay.Run(ctx, d.execSpec(inv, d.Database.Service, false, cmd...)); err != nil {
		return err
	}
	fmt.Fprintf(d.Out, "backup written to %s\n", archive)
	return nil
}

// BackupFilename names an archive after its creation second, so repeated
// backups never collide and sort chronologically by name.
func BackupFilename(t time.Time) string {
	return "backup-" + t.Format("20060102-150405") + ".archive"
}

// =============================================================================
// Backend Package Manager Relays
// =============================================================================

// backendAction relays the package manager verbatim inside the backend
// directory. No mode, target, or credential resolution applies.
func backendAction(args ...string) Action {
	return func(ctx context.Context, d *Dispatcher, _ Invocation) error {
		return d.Relay.Run(ctx, RunSpec{
			Name: d.Backend.Tool,
			Args: args,
			Dir:  d.Backend.Dir,
		})
	}
}

// =============================================================================
// Verification and Inspection
// =============================================================================

func actionHealth(ctx context.Context, d *Dispatcher, inv Invocation) error {
	port, err := strconv.Atoi(inv.Creds.Port)
	if err != nil {
		return &ConfigError{Message: fmt.Sprintf("port %q is not numeric", inv.Creds.Port)}
	}
	if err := d.Health.Verify(ctx, port); err != nil {
		return err
	}
	fmt.Fprintln(d.Out, "all health checks passed")
	return nil
}

func actionServices(ctx context.Context, d *Dispatcher, inv Invocation) error {
	services, err := d.Inspect.Services(inv.File)
	if err != nil {
		return fmt.Errorf("loading %s: %w", inv.File, err)
	}
	fmt.Fprintf(d.Out, "%s (%s):\n", inv.File, inv.Mode)
	for _, svc := range services {
		line := "  " + svc.Name
		if svc.Image != "" {
			line += "  " + svc.Image
		}
		if len(svc.Ports) > 0 {
			line += "  [" + strings.Join(svc.Ports, " ") + "]"
		}
		fmt.Fprintln(d.Out, line)
	}
	return nil
}

func actionDoctor(ctx context.Context, d *Dispatcher, _ Invocation) error {
	info, err := d.Engine.Ping(ctx)
	if err != nil {
		return fmt.Errorf("container engine unreachable: %w", err)
	}
	fmt.Fprintf(d.Out, "engine ok: version %s (api %s, %s)\n", info.Version, info.APIVersion, info.OS)
	return nil
}
