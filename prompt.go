package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// Prompter asks the operator questions on a line-oriented terminal.
type Prompter struct {
	in  *bufio.Reader
	out io.Writer

	// fd is the terminal file descriptor used for secret input, -1 when in is not a terminal.
	fd int
	// assumeDefaults answers every Ask that has a default without reading input.
	assumeDefaults bool
}

func NewPrompter(in io.Reader, out io.Writer, assumeDefaults bool) *Prompter {
	fd := -1
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fd = int(f.Fd())
	}
	return &Prompter{
		in:             bufio.NewReader(in),
		out:            out,
		fd:             fd,
		assumeDefaults: assumeDefaults,
	}
}

func (p *Prompter) readLine() (string, error) {
	line, err := p.in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// Ask prints label, with def in parentheses when set, and returns the trimmed answer or def.
func (p *Prompter) Ask(label, def string) (string, error) {
	if p.assumeDefaults && def != "" {
		return def, nil
	}

	if def != "" {
		fmt.Fprintf(p.out, "%s (default: %s): ", label, def)
	} else {
		fmt.Fprintf(p.out, "%s: ", label)
	}

	answer, err := p.readLine()
	if err != nil {
		return "", err
	}
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return def, nil
	}
	return answer, nil
}

// Confirm asks a yes/no question where anything but n or no counts as yes.
func (p *Prompter) Confirm(label string) (bool, error) {
	fmt.Fprintf(p.out, "%s (Y/n): ", label)

	answer, err := p.readLine()
	if err != nil {
		return false, err
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "n", "no":
		return false, nil
	}
	return true, nil
}

// Secret reads a line without echo when attached to a terminal.
func (p *Prompter) Secret(label string) (string, error) {
	fmt.Fprintf(p.out, "%s: ", label)

	if p.fd < 0 {
		return p.readLine()
	}

	b, err := term.ReadPassword(p.fd)
	fmt.Fprintln(p.out)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
