package tui

import (
	"context"
	"fmt"

	"filecat/internal/config"
	"filecat/internal/organize"
	"filecat/internal/tui/common"
	"filecat/internal/tui/components"
	"filecat/internal/tui/messages"
	"filecat/internal/tui/styles"
	"filecat/internal/tui/views"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
)

type keyMap struct {
	Quit key.Binding
	Up   key.Binding
	Down key.Binding
}

func (k keyMap) ShortHelp() []key.Binding  { return []key.Binding{k.Up, k.Down, k.Quit} }
func (k keyMap) FullHelp() [][]key.Binding { return [][]key.Binding{k.ShortHelp()} }

var keys = keyMap{
	Quit: key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q", "quit")),
	Up:   key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("↑/k", "scroll up")),
	Down: key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("↓/j", "scroll down")),
}

// Model shows the progress and outcome of one pipeline run
type Model struct {
	root     string
	theme    styles.Theme
	status   *components.StatusBar
	viewport viewport.Model
	help     help.Model

	phase   common.Phase
	stage   organize.Stage
	scanned int
	result  *organize.Result
	err     error

	// Cancels the run when the user quits early
	cancel context.CancelFunc
}

var _ common.ModelReader = (*Model)(nil)

// New creates a model for a run over root
func New(root string, theme config.ThemeConfig) *Model {
	t := styles.NewTheme(theme)
	status := components.NewStatusBar(t.Status)
	status.SetLoading(true)
	status.SetText(organize.StageScanning.String() + "…")

	return &Model{
		root:     root,
		theme:    t,
		status:   status,
		viewport: viewport.New(80, 15),
		help:     help.New(),
		phase:    common.Running,
		stage:    organize.StageScanning,
	}
}

// SetCancel registers the function called when the user quits mid-run
func (m *Model) SetCancel(cancel context.CancelFunc) {
	m.cancel = cancel
}

// Init implements tea.Model
func (m *Model) Init() tea.Cmd {
	return m.status.Tick
}

// Update implements tea.Model
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if key.Matches(msg, keys.Quit) {
			if m.phase == common.Running && m.cancel != nil {
				m.cancel()
			}
			return m, tea.Quit
		}
		if m.phase != common.Running {
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}

	case tea.WindowSizeMsg:
		m.viewport.Width = msg.Width - 8
		m.viewport.Height = msg.Height / 2
		m.help.Width = msg.Width

	case messages.StageMsg:
		m.stage = msg.Stage
		m.status.SetText(msg.Stage.String() + "…")

	case messages.ProgressMsg:
		m.scanned = msg.Scanned

	case messages.DoneMsg:
		m.phase = common.Finished
		m.stage = organize.StageDone
		m.result = msg.Result
		m.status.SetLoading(false)
		if msg.Result != nil {
			m.viewport.SetContent(msg.Result.Narrative)
		}

	case messages.ErrMsg:
		m.phase = common.Failed
		m.err = msg.Err
		m.result = msg.Result
		m.status.SetLoading(false)

	default:
		return m, m.status.Update(msg)
	}
	return m, nil
}

// View implements tea.Model
func (m *Model) View() string {
	return views.RenderMainView(m, m.theme)
}

// Getters
func (m *Model) Root() string             { return m.root }
func (m *Model) Phase() common.Phase      { return m.phase }
func (m *Model) Stage() organize.Stage    { return m.stage }
func (m *Model) Scanned() int             { return m.scanned }
func (m *Model) Result() *organize.Result { return m.result }
func (m *Model) Err() error               { return m.err }
func (m *Model) StatusView() string       { return m.status.View() }
func (m *Model) HelpView() string         { return m.help.View(keys) }

// NarrativeView returns the scrollable narrative, or "" when there is none
func (m *Model) NarrativeView() string {
	if m.result == nil || m.result.Narrative == "" {
		return ""
	}
	return m.viewport.View()
}

// progressEvery throttles scan progress messages
const progressEvery = 50

// Run drives engine over root while showing the model. It returns the
// run's own outcome; quitting early cancels the run.
func Run(ctx context.Context, engine organize.Organizer, root string, theme config.ThemeConfig, opts ...tea.ProgramOption) (*organize.Result, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	m := New(root, theme)
	m.SetCancel(cancel)
	p := tea.NewProgram(m, opts...)

	engine.OnStage(func(s organize.Stage) { p.Send(messages.StageMsg{Stage: s}) })
	engine.OnProgress(func(n int, _ string) {
		if n%progressEvery == 0 {
			p.Send(messages.ProgressMsg{Scanned: n})
		}
	})

	type outcome struct {
		result *organize.Result
		err    error
	}
	done := make(chan outcome, 1)
	go func() {
		result, err := engine.Run(ctx, root)
		if err != nil {
			p.Send(messages.ErrMsg{Err: err, Result: result})
		} else {
			p.Send(messages.DoneMsg{Result: result})
		}
		done <- outcome{result, err}
	}()

	if _, err := p.Run(); err != nil {
		cancel()
		<-done
		return nil, fmt.Errorf("progress view failed: %w", err)
	}

	cancel()
	out := <-done
	return out.result, out.err
}
