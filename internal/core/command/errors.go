package command

import (
	"errors"
	"fmt"
	"strings"

	"github.com/opsrelay/stackctl/internal/core/envfile"
)

// =============================================================================
// Error Types
// =============================================================================

var (
	// ErrUnknownCommand is returned for command names not in the table.
	ErrUnknownCommand = errors.New("unknown command")

	// ErrConfirmationDeclined is returned when the operator does not
	// affirmatively confirm a guarded action. The action is aborted with
	// no relay attempted.
	ErrConfirmationDeclined = errors.New("confirmation declined")
)

// UsageError reports an invocation the dispatcher refuses to relay,
// such as a shell command without a target service.
type UsageError struct {
	Command string
	Message string
}

func (e *UsageError) Error() string {
	if e.Command != "" {
		return fmt.Sprintf("%s: %s", e.Command, e.Message)
	}
	return e.Message
}

// ConfigError reports a missing or invalid configuration value required
// by the action, typically a credential absent from the env file.
type ConfigError struct {
	Missing []envfile.Field
	Message string
}

func (e *ConfigError) Error() string {
	if len(e.Missing) > 0 {
		names := make([]string, 0, len(e.Missing))
		for _, f := range e.Missing {
			names = append(names, string(f))
		}
		return fmt.Sprintf("missing required credential value(s): %s", strings.Join(names, ", "))
	}
	return e.Message
}
