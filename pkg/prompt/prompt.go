// Package prompt implements the single interactive point of develdirs:
// reducing multiple candidate paths to one via user selection. The
// chooser is injected into the resolver so tests can script the
// interaction instead of reading a terminal.
package prompt

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/pterm/pterm"

	"github.com/arthur-debert/develdirs/pkg/errors"
)

// Chooser reduces a candidate list to a single choice and answers
// yes/no questions. All interaction happens on the diagnostic channel;
// stdout stays reserved for the resolved path.
type Chooser interface {
	// Choose returns the selected entry from choices. A single choice is
	// returned without interaction; otherwise the (sorted) choices are
	// presented as a 1-based list and one line of input is read. Invalid
	// or out-of-range input is an error, there is no retry.
	Choose(message string, choices []string) (string, error)

	// Confirm asks a yes/no question, defaulting to no.
	Confirm(message string) (bool, error)
}

// Console is the terminal Chooser, prompting on Err and reading from In.
type Console struct {
	In  io.Reader
	Err io.Writer

	reader *bufio.Reader
}

// NewConsole creates a Console reading stdin and prompting on stderr.
func NewConsole() *Console {
	return &Console{In: os.Stdin, Err: os.Stderr}
}

// Choose implements Chooser.
func (c *Console) Choose(message string, choices []string) (string, error) {
	if len(choices) == 0 {
		return "", errors.New(errors.ErrInternal, "no choices to present")
	}
	if len(choices) == 1 {
		return choices[0], nil
	}

	sorted := make([]string, len(choices))
	copy(sorted, choices)
	sort.Strings(sorted)

	fmt.Fprintln(c.Err, c.emphasize(message))
	for i, s := range sorted {
		fmt.Fprintf(c.Err, "  [%d] %s\n", i+1, s)
	}
	fmt.Fprint(c.Err, "Which one did you mean? ")

	line, err := c.readLine()
	if err != nil {
		return "", errors.Wrap(err, errors.ErrInvalidChoice, "could not read choice")
	}
	line = strings.TrimSpace(line)
	chosen, err := strconv.Atoi(line)
	if err != nil || chosen < 1 || chosen > len(sorted) {
		return "", errors.Newf(errors.ErrInvalidChoice, "invalid choice: %s", line)
	}
	return sorted[chosen-1], nil
}

// Confirm implements Chooser.
func (c *Console) Confirm(message string) (bool, error) {
	fmt.Fprintf(c.Err, "%s [y/N] ", c.emphasize(message))
	line, err := c.readLine()
	if err != nil {
		if err == io.EOF {
			return false, nil
		}
		return false, errors.Wrap(err, errors.ErrInvalidChoice, "could not read answer")
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes", nil
}

// Ask prompts for a free-form line, returning def when the answer is empty.
func (c *Console) Ask(message, def string) (string, error) {
	fmt.Fprintf(c.Err, "%s ", message)
	line, err := c.readLine()
	if err != nil && err != io.EOF {
		return "", errors.Wrap(err, errors.ErrInvalidChoice, "could not read answer")
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return def, nil
	}
	return line, nil
}

func (c *Console) readLine() (string, error) {
	if c.reader == nil {
		c.reader = bufio.NewReader(c.In)
	}
	line, err := c.reader.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return line, nil
}

// emphasize applies bold styling when prompting a real terminal
func (c *Console) emphasize(s string) string {
	f, ok := c.Err.(*os.File)
	if !ok {
		return s
	}
	if !isatty.IsTerminal(f.Fd()) && !isatty.IsCygwinTerminal(f.Fd()) {
		return s
	}
	return pterm.Bold.Sprint(s)
}

// IsInteractive reports whether stdin is attached to a terminal.
func IsInteractive() bool {
	return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
}
