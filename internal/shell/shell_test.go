package shell

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

type recorder struct {
	calls [][]string
}

func (r *recorder) exec(_ context.Context, args []string, stdout, _ io.Writer) error {
	r.calls = append(r.calls, args)
	if args[0] == "fail" {
		return errors.New("command failed")
	}
	fmt.Fprintf(stdout, "ran %s\n", strings.Join(args, " "))
	return nil
}

func newTestShell(input string) (*Shell, *recorder, *bytes.Buffer, *bytes.Buffer) {
	rec := &recorder{}
	var out, errOut bytes.Buffer
	plain := false
	s := New(rec.exec, Options{
		In:          strings.NewReader(input),
		Out:         &out,
		Err:         &errOut,
		Interactive: &plain,
	})
	return s, rec, &out, &errOut
}

func TestRunExecutesLines(t *testing.T) {
	s, rec, out, _ := newTestShell("ext:list -L\n\n# comment\napi Extension.get key='my ext'\n")
	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	want := [][]string{
		{"ext:list", "-L"},
		{"api", "Extension.get", "key=my ext"},
	}
	if !reflect.DeepEqual(rec.calls, want) {
		t.Errorf("calls = %q, want %q", rec.calls, want)
	}
	if !strings.Contains(out.String(), "ran ext:list -L") {
		t.Errorf("output = %q", out.String())
	}
	if got := s.History(); len(got) != 2 {
		t.Errorf("History() = %q", got)
	}
}

func TestRunStopsAtExit(t *testing.T) {
	for _, word := range []string{"exit", "quit"} {
		s, rec, out, _ := newTestShell("version\n" + word + "\nversion\n")
		if err := s.Run(context.Background()); err != nil {
			t.Fatalf("Run() error = %v", err)
		}
		if len(rec.calls) != 1 {
			t.Errorf("%s: %d commands ran, want 1", word, len(rec.calls))
		}
		if !strings.Contains(out.String(), "Goodbye!") {
			t.Errorf("%s: missing farewell in %q", word, out.String())
		}
	}
}

func TestRunContinuesAfterErrors(t *testing.T) {
	s, rec, _, errOut := newTestShell("fail\nbad 'quote\ncli\ncv cli\nversion\n")
	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	want := [][]string{{"fail"}, {"version"}}
	if !reflect.DeepEqual(rec.calls, want) {
		t.Errorf("calls = %q, want %q", rec.calls, want)
	}
	msgs := errOut.String()
	for _, want := range []string{"command failed", "parsing input", "already running an interactive shell"} {
		if !strings.Contains(msgs, want) {
			t.Errorf("stderr missing %q:\n%s", want, msgs)
		}
	}
}

func TestRunStripsProgramName(t *testing.T) {
	s, rec, _, _ := newTestShell("cv ext:list\ncv\n")
	if err := s.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(rec.calls, [][]string{{"ext:list"}}) {
		t.Errorf("calls = %q", rec.calls)
	}
}

func TestRunHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s, rec, _, _ := newTestShell("version\n")
	if err := s.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Run() error = %v, want context.Canceled", err)
	}
	if len(rec.calls) != 0 {
		t.Errorf("commands ran after cancellation: %q", rec.calls)
	}
}

func TestLineModelHistory(t *testing.T) {
	var m tea.Model = newLineModel("> ", []string{"first", "second"})

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyUp})
	if got := m.(lineModel).input.Value(); got != "second" {
		t.Errorf("after up = %q, want second", got)
	}
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyUp})
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyUp})
	if got := m.(lineModel).input.Value(); got != "first" {
		t.Errorf("after up x3 = %q, want first", got)
	}
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	if got := m.(lineModel).input.Value(); got != "" {
		t.Errorf("after down x2 = %q, want empty", got)
	}

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("ext:list")})
	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	lm := m.(lineModel)
	if !lm.done || lm.value != "ext:list" {
		t.Errorf("after enter = %+v", lm)
	}
	if cmd == nil {
		t.Error("enter did not quit the editor")
	}
}

func TestLineModelEOF(t *testing.T) {
	var m tea.Model = newLineModel("> ", nil)
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyCtrlD})
	if !m.(lineModel).eof {
		t.Error("ctrl+d on an empty line did not signal end of input")
	}
}
