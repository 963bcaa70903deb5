package shell

import (
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// teaReader reads each line with a short-lived Bubble Tea program so that
// commands run with the terminal in its normal state.
type teaReader struct {
	in  io.Reader
	out io.Writer
}

func (r *teaReader) ReadLine(prompt string, history []string) (string, error) {
	p := tea.NewProgram(newLineModel(prompt, history), tea.WithInput(r.in), tea.WithOutput(r.out))
	final, err := p.Run()
	if err != nil {
		return "", err
	}
	m, ok := final.(lineModel)
	if !ok {
		return "", fmt.Errorf("unexpected line editor state %T", final)
	}
	if m.eof {
		return "", io.EOF
	}
	return m.value, nil
}

// lineModel is a single prompt line with history recall.
type lineModel struct {
	input   textinput.Model
	history []string
	histIdx int
	value   string
	done    bool
	eof     bool
}

func newLineModel(prompt string, history []string) lineModel {
	ti := textinput.New()
	ti.Prompt = prompt
	ti.Focus()
	ti.CharLimit = 4096
	ti.Width = 100
	return lineModel{input: ti, history: history, histIdx: -1}
}

func (m lineModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m lineModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.Type {
		case tea.KeyCtrlC:
			m.input.SetValue("")
			m.done = true
			return m, tea.Quit

		case tea.KeyCtrlD:
			if m.input.Value() == "" {
				m.eof = true
				m.done = true
				return m, tea.Quit
			}

		case tea.KeyUp:
			if m.histIdx < len(m.history)-1 {
				m.histIdx++
				m.input.SetValue(m.history[len(m.history)-1-m.histIdx])
				m.input.CursorEnd()
			}
			return m, nil

		case tea.KeyDown:
			if m.histIdx > 0 {
				m.histIdx--
				m.input.SetValue(m.history[len(m.history)-1-m.histIdx])
				m.input.CursorEnd()
			} else if m.histIdx == 0 {
				m.histIdx = -1
				m.input.SetValue("")
			}
			return m, nil

		case tea.KeyEnter:
			m.value = m.input.Value()
			m.done = true
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m lineModel) View() string {
	if m.done {
		// Leave the submitted line on screen.
		return m.input.Prompt + m.value + "\n"
	}
	return m.input.View()
}
