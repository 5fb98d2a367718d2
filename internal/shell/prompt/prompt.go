// Package prompt asks the operator for confirmation on the terminal.
package prompt

import (
	"errors"

	"github.com/manifoldco/promptui"
)

// TerminalConfirmer blocks on standard input with no timeout; the
// operator controls how long the question stays open.
type TerminalConfirmer struct{}

// Confirm asks the question and reports whether the operator answered
// with exactly "y". Any other answer, an interrupt, or EOF declines.
func (TerminalConfirmer) Confirm(label string) (bool, error) {
	p := promptui.Prompt{Label: label}
	answer, err := p.Run()
	if err != nil {
		if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) {
			return false, nil
		}
		return false, err
	}
	return answer == "y", nil
}
