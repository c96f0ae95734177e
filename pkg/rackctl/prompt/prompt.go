// Package prompt asks the operator for device records on a line-oriented
// terminal. Passwords are read without echo through golang.org/x/term when
// the input is a terminal, and as plain lines otherwise so that scripted
// input and tests work.
package prompt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/term"
)

// ErrCancelled is returned when input ends before a question is answered.
// Nothing collected up to that point is applied.
var ErrCancelled = errors.New("prompt cancelled")

// Prompter asks questions on out and reads answers from in.
type Prompter struct {
	in  *bufio.Reader
	out io.Writer

	// fd is the terminal file descriptor of in, or -1.
	fd int
}

// New returns a Prompter. When in is a terminal, passwords are read without
// echo.
func New(in io.Reader, out io.Writer) *Prompter {
	fd := -1
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fd = int(f.Fd())
	}
	return &Prompter{in: bufio.NewReader(in), out: out, fd: fd}
}

// Input asks for a line of text. An empty answer selects def when def is not
// empty. validate may be nil; a rejected answer is reported and the question
// repeated.
func (p *Prompter) Input(label, def string, validate func(string) error) (string, error) {
	for {
		if def != "" {
			fmt.Fprintf(p.out, "%s [%s]: ", label, def)
		} else {
			fmt.Fprintf(p.out, "%s: ", label)
		}
		line, err := p.readLine()
		if err != nil {
			return "", err
		}
		if line == "" {
			line = def
		}
		if line == "" {
			fmt.Fprintln(p.out, "  a value is required")
			continue
		}
		if validate != nil {
			if err := validate(line); err != nil {
				fmt.Fprintf(p.out, "  %v\n", err)
				continue
			}
		}
		return line, nil
	}
}

// Int asks for a positive integer. def <= 0 means no default.
func (p *Prompter) Int(label string, def int) (int, error) {
	d := ""
	if def > 0 {
		d = strconv.Itoa(def)
	}
	var n int
	_, err := p.Input(label, d, func(s string) error {
		v, err := strconv.Atoi(s)
		if err != nil || v <= 0 {
			return fmt.Errorf("%q is not a positive integer", s)
		}
		n = v
		return nil
	})
	return n, err
}

// Select lists items and returns the index chosen by number or by name
// (case-insensitive). def is the index used for an empty answer; a negative
// def forces an explicit choice.
func (p *Prompter) Select(label string, items []string, def int) (int, error) {
	if len(items) == 0 {
		return 0, fmt.Errorf("select %s: no items", label)
	}
	fmt.Fprintf(p.out, "%s:\n", label)
	for i, it := range items {
		fmt.Fprintf(p.out, "  %d) %s\n", i+1, it)
	}
	d := ""
	if def >= 0 && def < len(items) {
		d = strconv.Itoa(def + 1)
	}
	choice := -1
	_, err := p.Input("Choice", d, func(s string) error {
		if n, err := strconv.Atoi(s); err == nil && n >= 1 && n <= len(items) {
			choice = n - 1
			return nil
		}
		for i, it := range items {
			if strings.EqualFold(s, it) {
				choice = i
				return nil
			}
		}
		return fmt.Errorf("choose 1-%d", len(items))
	})
	return choice, err
}

// Confirm asks a yes/no question.
func (p *Prompter) Confirm(label string, def bool) (bool, error) {
	d := "n"
	if def {
		d = "y"
	}
	var yes bool
	_, err := p.Input(label+" (y/n)", d, func(s string) error {
		switch strings.ToLower(s) {
		case "y", "yes":
			yes = true
		case "n", "no":
			yes = false
		default:
			return fmt.Errorf("answer y or n")
		}
		return nil
	})
	return yes, err
}

// Password asks for a non-empty secret. With confirm set it is asked twice
// and both answers must match.
func (p *Prompter) Password(label string, confirm bool) (string, error) {
	for {
		first, err := p.secret(label)
		if err != nil {
			return "", err
		}
		if first == "" {
			fmt.Fprintln(p.out, "  a value is required")
			continue
		}
		if !confirm {
			return first, nil
		}
		second, err := p.secret("Confirm " + label)
		if err != nil {
			return "", err
		}
		if first != second {
			fmt.Fprintln(p.out, "  passwords do not match")
			continue
		}
		return first, nil
	}
}

func (p *Prompter) secret(label string) (string, error) {
	fmt.Fprintf(p.out, "%s: ", label)
	if p.fd < 0 {
		return p.readLine()
	}
	b, err := term.ReadPassword(p.fd)
	fmt.Fprintln(p.out)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return string(b), nil
}

func (p *Prompter) readLine() (string, error) {
	line, err := p.in.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && line != "" {
			return strings.TrimSpace(line), nil
		}
		if errors.Is(err, io.EOF) {
			fmt.Fprintln(p.out)
			return "", ErrCancelled
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}
