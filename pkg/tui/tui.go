// Package tui is the public embedding surface for the filter builder. Hosts
// that already run a Bubble Tea program embed a Widget directly; everything
// else can call Run, which wraps the widget in a minimal standalone program
// and returns the committed expression list when the user leaves.
package tui

import (
	"errors"
	"io"
	"os"
	"strconv"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"golang.org/x/term"

	"github.com/oakwood-commons/filtx/internal/ui"
	"github.com/oakwood-commons/filtx/pkg/filter"
)

// defaultFallbackTermWidth is used when terminal size cannot be detected.
const defaultFallbackTermWidth = 120

// DetectTerminalSize returns the best-effort terminal width and height by
// probing stdout, stderr, and stdin, then falling back to the COLUMNS
// environment variable. If detection fails completely, returns generous
// defaults (120, 24) to avoid overly narrow output in CI or non-TTY
// environments.
//
// This is useful for hosts that want auto-sizing behavior:
//
//	width, _ := tui.DetectTerminalSize()
//	widget.SetWidth(width)
//
// Run performs the same detection when Config.Width is zero.
func DetectTerminalSize() (width int, height int) {
	fds := []uintptr{os.Stdout.Fd(), os.Stderr.Fd(), os.Stdin.Fd()}
	for _, fd := range fds {
		if w, h, err := term.GetSize(int(fd)); err == nil && (w > 0 || h > 0) {
			return w, h
		}
	}
	if col := os.Getenv("COLUMNS"); col != "" {
		if w, err := strconv.Atoi(col); err == nil && w > 0 {
			return w, 0
		}
	}
	return defaultFallbackTermWidth, 24
}

// New builds a Widget from the config without starting a program. Use this
// when embedding the widget in an existing Bubble Tea model; call Run instead
// for a standalone filter prompt.
func New(cfg Config) (Widget, error) {
	if cfg.Schema == nil {
		return Widget{}, errors.New("tui: config requires a schema")
	}
	opts, err := cfg.options()
	if err != nil {
		return Widget{}, err
	}
	return ui.New(cfg.Schema, opts...), nil
}

// Run starts a standalone Bubble Tea program around the filter widget and
// blocks until the user leaves it (ctrl+d or esc with nothing in progress).
// It returns the expression list committed at exit. Extra ProgramOptions
// (e.g., custom IO) can be provided to mirror tea.NewProgram.
func Run(cfg Config, opts ...tea.ProgramOption) ([]filter.Expression, error) {
	w, err := New(cfg)
	if err != nil {
		return nil, err
	}

	runW := cfg.Width
	runH := cfg.Height
	if runW <= 0 {
		runW, _ = DetectTerminalSize()
	}
	w.SetWidth(runW)
	if cfg.Width > 0 || cfg.Height > 0 {
		if runH <= 0 {
			runH = 24
		}
		opts = append(opts, tea.WithWindowSize(runW, runH))
	}

	root := &program{widget: w, hideHelp: cfg.HideHelp, noColor: cfg.NoColor}
	prog := tea.NewProgram(root, opts...)
	final, err := prog.Run()
	if err != nil {
		return nil, err
	}
	if fm, ok := final.(*program); ok && fm != nil {
		return fm.widget.Value(), nil
	}
	return root.widget.Value(), nil
}

// RenderSnapshot renders the widget once, non-interactively, and returns the
// frame as a string. Useful for showing the current filter row in
// non-interactive output.
func RenderSnapshot(cfg Config) (string, error) {
	w, err := New(cfg)
	if err != nil {
		return "", err
	}
	width := cfg.Width
	if width <= 0 {
		width, _ = DetectTerminalSize()
	}
	w.SetWidth(width)
	return w.View(), nil
}

// WithIO returns tea.ProgramOptions to set custom input/output.
func WithIO(in io.Reader, out io.Writer) []tea.ProgramOption {
	opts := []tea.ProgramOption{}
	if in != nil {
		opts = append(opts, tea.WithInput(in))
	}
	if out != nil {
		opts = append(opts, tea.WithOutput(out))
	}
	return opts
}

// program is the root model behind Run. It owns nothing but the widget, the
// quit keys, and a one-line key hint.
type program struct {
	widget   Widget
	hideHelp bool
	noColor  bool
	quitting bool
}

func (p *program) Init() tea.Cmd {
	return tea.Batch(p.widget.Init(), p.widget.Focus())
}

func (p *program) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		p.widget.SetWidth(msg.Width)
		return p, nil
	case tea.KeyPressMsg:
		switch msg.String() {
		case "ctrl+c", "ctrl+d":
			p.quitting = true
			return p, tea.Quit
		case "esc":
			// The widget unwinds drafts, selection, and editors itself;
			// esc only quits once there is nothing left to unwind.
			if p.widget.Idle() {
				p.quitting = true
				return p, tea.Quit
			}
		}
	}
	var cmd tea.Cmd
	p.widget, cmd = p.widget.Update(msg)
	return p, cmd
}

func (p *program) View() tea.View {
	if p.quitting {
		return tea.NewView("")
	}
	view := p.widget.View()
	if !p.hideHelp {
		view += "\n" + p.helpLine()
	}
	return tea.NewView(view)
}

func (p *program) helpLine() string {
	hint := "enter: accept | esc: back | ctrl+d: done"
	if p.noColor {
		return hint
	}
	return lipgloss.NewStyle().Faint(true).Render(hint)
}
