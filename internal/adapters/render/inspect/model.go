package inspect

import (
	"errors"
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"
)

var (
	ErrUnexpectedRenderModel = errors.New("unexpected final bubbletea model type")
	ErrInvalidWidth          = errors.New("preview width must not be negative")
)

// summaryRenderedMsg carries the finished view, or the reason it could not be built.
type summaryRenderedMsg struct {
	output string
	err    error
}

type model struct {
	summary Summary
	opts    RenderOptions
	styles  styles
	output  string
	err     error
}

func newModel(summary Summary, opts RenderOptions) model {
	return model{
		summary: summary,
		opts:    opts,
		styles:  newStyles(),
	}
}

func (m model) Init() tea.Cmd {
	return renderSummary(m.summary, m.opts, m.styles)
}

func renderSummary(summary Summary, opts RenderOptions, s styles) tea.Cmd {
	return func() tea.Msg {
		if opts.MaxWidth < 0 {
			return summaryRenderedMsg{err: fmt.Errorf("%w: %d", ErrInvalidWidth, opts.MaxWidth)}
		}
		return summaryRenderedMsg{output: renderView(summary, opts, s)}
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case summaryRenderedMsg:
		m.output = msg.output
		m.err = msg.err
		return m, tea.Quit
	default:
		return m, nil
	}
}

func (m model) View() string {
	return m.output
}

func Render(summary Summary, opts RenderOptions) (string, error) {
	p := tea.NewProgram(
		newModel(summary, opts),
		tea.WithInput(nil),
		tea.WithOutput(io.Discard),
	)

	finalModel, err := p.Run()
	if err != nil {
		return "", err
	}

	rendered, ok := finalModel.(model)
	if !ok {
		return "", ErrUnexpectedRenderModel
	}
	if rendered.err != nil {
		return "", rendered.err
	}

	return rendered.View(), nil
}
