package shell

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/kballard/go-shellquote"
	"github.com/mattn/go-isatty"
)

// Executor runs one command line, already split into arguments.
type Executor func(ctx context.Context, args []string, stdout, stderr io.Writer) error

// Options configures a Shell. Nil streams default to the process streams.
type Options struct {
	In     io.Reader
	Out    io.Writer
	Err    io.Writer
	Prompt string
	// Interactive forces the line editor on or off. When nil it is used only
	// if In is a terminal.
	Interactive *bool
	// Name is the command the shell itself was started as; running it again
	// from inside the shell is refused.
	Name string
}

// Shell is the read-execute loop.
type Shell struct {
	exec    Executor
	in      io.Reader
	out     io.Writer
	errOut  io.Writer
	prompt  string
	name    string
	history []string
	reader  lineReader
}

type lineReader interface {
	ReadLine(prompt string, history []string) (string, error)
}

var (
	promptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// New returns a shell that runs lines with exec.
func New(exec Executor, opts Options) *Shell {
	s := &Shell{
		exec:   exec,
		in:     opts.In,
		out:    opts.Out,
		errOut: opts.Err,
		prompt: opts.Prompt,
		name:   opts.Name,
	}
	if s.in == nil {
		s.in = os.Stdin
	}
	if s.out == nil {
		s.out = os.Stdout
	}
	if s.errOut == nil {
		s.errOut = os.Stderr
	}
	if s.prompt == "" {
		s.prompt = "cv> "
	}
	if s.name == "" {
		s.name = "cli"
	}

	interactive := isTerminal(s.in)
	if opts.Interactive != nil {
		interactive = *opts.Interactive
	}
	if interactive {
		s.reader = &teaReader{in: s.in, out: s.out}
	} else {
		s.reader = &plainReader{scanner: bufio.NewScanner(s.in)}
	}
	return s
}

// Run reads and executes lines until exit, quit, end of input, or ctx is
// done.
func (s *Shell) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		line, err := s.reader.ReadLine(promptStyle.Render(s.prompt), s.history)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("reading input: %w", err)
		}
		if s.processInput(ctx, line) {
			fmt.Fprintln(s.out, mutedStyle.Render("Goodbye!"))
			return nil
		}
	}
}

// History returns the lines entered so far.
func (s *Shell) History() []string {
	return append([]string(nil), s.history...)
}

// processInput runs one line and reports whether the shell should exit.
func (s *Shell) processInput(ctx context.Context, line string) bool {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return false
	}
	s.history = append(s.history, line)

	args, err := shellquote.Split(line)
	if err != nil {
		s.printError(fmt.Errorf("parsing input: %w", err))
		return false
	}
	if len(args) == 0 {
		return false
	}

	switch args[0] {
	case "exit", "quit":
		return true
	case "cv":
		args = args[1:]
		if len(args) == 0 {
			return false
		}
	}
	if args[0] == s.name {
		s.printError(fmt.Errorf("%s: already running an interactive shell", s.name))
		return false
	}

	if err := s.exec(ctx, args, s.out, s.errOut); err != nil {
		s.printError(err)
	}
	return false
}

func (s *Shell) printError(err error) {
	fmt.Fprintln(s.errOut, errorStyle.Render("Error: "+err.Error()))
}

func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// plainReader reads newline separated input without echoing a prompt.
type plainReader struct {
	scanner *bufio.Scanner
}

func (r *plainReader) ReadLine(string, []string) (string, error) {
	if !r.scanner.Scan() {
		if err := r.scanner.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return r.scanner.Text(), nil
}
