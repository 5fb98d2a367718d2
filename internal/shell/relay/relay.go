// Package relay executes external tools on behalf of the dispatcher.
//
// The operator's terminal is wired straight through to the child process,
// so interactive sessions (shells, log streaming, database clients) and
// their signal handling belong entirely to the tool being relayed to.
package relay

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/exec"
	"strings"

	"github.com/opsrelay/stackctl/internal/core/command"
)

// ExecRelay runs tools as foreground child processes.
type ExecRelay struct {
	Log *slog.Logger
}

// Run blocks until the tool exits. The returned error carries the tool's
// exit status unmodified.
func (r *ExecRelay) Run(ctx context.Context, spec command.RunSpec) error {
	r.Log.Debug("relaying",
		"cmd", spec.Name+" "+strings.Join(spec.Args, " "),
		"dir", spec.Dir,
	)

	cmd := exec.CommandContext(ctx, spec.Name, spec.Args...)
	cmd.Dir = spec.Dir
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	return cmd.Run()
}

// ExitCode derives the process exit status for a dispatch result: the
// relayed tool's own code when it ran and failed, 1 for anything else.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return 1
}
