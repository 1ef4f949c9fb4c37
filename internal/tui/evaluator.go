package tui

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/san-kum/mandelscope/internal/config"
	"github.com/san-kum/mandelscope/internal/console"
	"github.com/san-kum/mandelscope/internal/fractal"
)

const maxHistory = 8

type field int

const (
	fieldA field = iota
	fieldB
	fieldIterations
	numFields
)

var fieldNames = [numFields]string{"a", "b", "iterations"}

// Model is the interactive evaluator: three editable fields and the answer for
// their current values.
type Model struct {
	eval fractal.Evaluator
	req  console.Request

	cursor  field
	editing bool
	editBuf string
	err     error

	last    *console.Response
	history []console.Response
}

func NewEvaluator(eval fractal.Evaluator, start console.Request) Model {
	if start.Iterations < 1 {
		start.Iterations = 1
	}
	m := Model{eval: eval, req: start}
	m.evaluate()
	return m
}

// FromConfig starts at the origin with the configured policy, divergence test and
// iteration budget.
func FromConfig(cfg *config.Config) (Model, error) {
	eval, err := cfg.Evaluator()
	if err != nil {
		return Model{}, err
	}
	return NewEvaluator(eval, console.Request{Iterations: cfg.MaxIterations}), nil
}

// Run blocks until the user quits and returns the final model.
func Run(m Model, opts ...tea.ProgramOption) (Model, error) {
	final, err := tea.NewProgram(m, opts...).Run()
	if err != nil {
		return m, err
	}
	return final.(Model), nil
}

func (m Model) Init() tea.Cmd { return nil }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if m.editing {
			return m.editKey(msg)
		}
		return m.selectKey(msg)
	}
	return m, nil
}

func (m Model) selectKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j", "tab":
		if m.cursor < numFields-1 {
			m.cursor++
		}
	case "enter", " ":
		m.editing = true
		m.editBuf = m.value(m.cursor)
		m.err = nil
	case "left", "h":
		m.nudge(-1)
	case "right", "l":
		m.nudge(1)
	}
	return m, nil
}

func (m Model) editKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "enter":
		if err := m.set(m.cursor, m.editBuf); err != nil {
			// Stay on the field until it holds a valid value.
			m.err = err
			return m, nil
		}
		m.editing = false
		m.editBuf = ""
		m.err = nil
		m.evaluate()
	case "esc":
		m.editing = false
		m.editBuf = ""
		m.err = nil
	case "backspace":
		if len(m.editBuf) > 0 {
			m.editBuf = m.editBuf[:len(m.editBuf)-1]
		}
	default:
		if msg.Type == tea.KeyRunes {
			for _, r := range msg.Runes {
				if (r >= '0' && r <= '9') || strings.ContainsRune(".-+eE", r) {
					m.editBuf += string(r)
				}
			}
		}
	}
	return m, nil
}

func (m Model) value(f field) string {
	switch f {
	case fieldA:
		return strconv.FormatFloat(m.req.A, 'g', -1, 64)
	case fieldB:
		return strconv.FormatFloat(m.req.B, 'g', -1, 64)
	}
	return strconv.Itoa(m.req.Iterations)
}

func (m *Model) set(f field, text string) error {
	switch f {
	case fieldA, fieldB:
		v, err := console.ParseCoordinate(text)
		if err != nil {
			return err
		}
		if f == fieldA {
			m.req.A = v
		} else {
			m.req.B = v
		}
	case fieldIterations:
		n, err := console.ParseIterations(text)
		if err != nil {
			return err
		}
		m.req.Iterations = n
	}
	return nil
}

// nudge steps coordinates by 0.1 and the iteration count by 1.
func (m *Model) nudge(dir int) {
	switch m.cursor {
	case fieldA:
		m.req.A += 0.1 * float64(dir)
	case fieldB:
		m.req.B += 0.1 * float64(dir)
	case fieldIterations:
		if m.req.Iterations+dir < 1 {
			return
		}
		m.req.Iterations += dir
	}
	m.evaluate()
}

func (m *Model) evaluate() {
	resp, err := console.Evaluate(m.eval, m.req)
	if err != nil {
		m.err = err
		return
	}
	m.last = &resp
	m.history = append([]console.Response{resp}, m.history...)
	if len(m.history) > maxHistory {
		m.history = m.history[:maxHistory]
	}
}

// Request returns the values currently in the fields.
func (m Model) Request() console.Request { return m.req }

// Last returns the most recent answer, or nil before the first one.
func (m Model) Last() *console.Response { return m.last }

// History returns recent answers, newest first.
func (m Model) History() []console.Response { return m.history }

func (m Model) Err() error { return m.err }

func (m Model) View() string {
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(dimmer.Render("    ╺━━━━━━━━━━━━━━━━━━━━━━━━╸") + "\n")
	b.WriteString("       " + cyan.Render("m a n d e l s c o p e") + "\n")
	b.WriteString(dimmer.Render("    ╺━━━━━━━━━━━━━━━━━━━━━━━━╸") + "\n\n")

	for f := fieldA; f < numFields; f++ {
		val := fmt.Sprintf("%12s", m.value(f))
		if m.editing && f == m.cursor {
			val = fmt.Sprintf("%12s", m.editBuf+"▋")
		}
		if f == m.cursor {
			b.WriteString("      " + cyan.Render("▸ ") + white.Render(fmt.Sprintf("%-12s", fieldNames[f])) + magenta.Render(val) + "\n")
		} else {
			b.WriteString("        " + dim.Render(fmt.Sprintf("%-12s", fieldNames[f])) + dim.Render(val) + "\n")
		}
	}
	b.WriteString("\n")

	if m.err != nil {
		b.WriteString("      " + red.Render(m.err.Error()) + "\n\n")
	}

	if m.last != nil {
		c := m.last.Color
		b.WriteString("      " + swatch(c.Hex(), 6) + "  " + white.Render(c.String()) + "  " + dim.Render(c.Hex()) + "\n")
		b.WriteString("      " + green.Render(m.last.Outcome.String()) + "\n\n")
	}

	if len(m.history) > 1 {
		b.WriteString(dim.Render("      recent") + "\n")
		for _, r := range m.history[1:] {
			b.WriteString("      " + swatch(r.Color.Hex(), 2) + " " +
				dimmer.Render(fmt.Sprintf("(%g, %g) x%d  %s", r.A, r.B, r.Iterations, r.Outcome)) + "\n")
		}
		b.WriteString("\n")
	}

	b.WriteString(dim.Render("      ↑↓ select  ←→ adjust  enter edit  q quit") + "\n")
	return b.String()
}
