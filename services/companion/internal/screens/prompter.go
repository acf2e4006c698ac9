package screens

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// ErrQuit is returned by the prompter when the user types "quit".
var ErrQuit = errors.New("quit")

// Prompter reads one line per prompt. Secrets are read without echo when the
// input is a terminal.
type Prompter struct {
	in  *bufio.Reader
	out io.Writer
	fd  int
	tty bool
}

// NewPrompter wraps in and out. When in is a terminal, Secret disables echo.
func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	p := &Prompter{in: bufio.NewReader(in), out: out, fd: -1}
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		p.fd = int(f.Fd())
		p.tty = true
	}
	return p
}

// Line prints label and returns the trimmed reply. A final line without a
// newline is returned before io.EOF.
func (p *Prompter) Line(label string) (string, error) {
	line, err := p.raw(label)
	if err != nil {
		return "", err
	}
	line = strings.TrimSpace(line)
	if strings.EqualFold(line, "quit") {
		return "", ErrQuit
	}
	return line, nil
}

// raw reads one line without the line ending.
func (p *Prompter) raw(label string) (string, error) {
	if label != "" {
		fmt.Fprint(p.out, label)
	}
	line, err := p.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// Secret reads a password exactly as typed. "quit" is a valid password here.
func (p *Prompter) Secret(label string) (string, error) {
	if !p.tty {
		return p.raw(label)
	}
	fmt.Fprint(p.out, label)
	b, err := term.ReadPassword(p.fd)
	fmt.Fprintln(p.out)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
