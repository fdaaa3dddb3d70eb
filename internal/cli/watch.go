package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/example/routecard/internal/core/operation"
	"github.com/example/routecard/internal/models"
	"github.com/example/routecard/internal/ports/primary"
	"github.com/example/routecard/internal/wire"
)

var (
	watchTitleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	watchMutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	watchErrorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Bold(true)
	watchOKStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	watchSelStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("230")).Background(lipgloss.Color("62")).Bold(true)
	watchRunStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	watchPausedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("177"))
)

type watchKeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Start  key.Binding
	Pause  key.Binding
	Resume key.Binding
	Stop   key.Binding
	Reload key.Binding
	Quit   key.Binding
}

func (k watchKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Start, k.Pause, k.Resume, k.Stop, k.Reload, k.Quit}
}

func (k watchKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Up, k.Down}, {k.Start, k.Pause, k.Resume, k.Stop}, {k.Reload, k.Quit}}
}

var watchKeys = watchKeyMap{
	Up:     key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:   key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	Start:  key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "start")),
	Pause:  key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "pause")),
	Resume: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "resume")),
	Stop:   key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "stop")),
	Reload: key.NewBinding(key.WithKeys("R"), key.WithHelp("R", "reload")),
	Quit:   key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

type watchTickMsg time.Time

type cardsLoadedMsg struct {
	views []*primary.CardView
	err   error
}

type actionDoneMsg struct {
	result *primary.ActionResult
	err    error
}

type watchModel struct {
	ctx     context.Context
	service primary.CardService
	filters primary.CardFilters
	clock   func() time.Time

	views    []*primary.CardView
	selected int
	now      time.Time
	message  string
	failed   bool
	help     help.Model
	width    int
}

func newWatchModel(ctx context.Context, service primary.CardService, filters primary.CardFilters, clock func() time.Time) watchModel {
	return watchModel{
		ctx:     ctx,
		service: service,
		filters: filters,
		clock:   clock,
		now:     clock(),
		help:    help.New(),
	}
}

// WatchCmd returns the watch command
func WatchCmd() *cobra.Command {
	var group string

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Live board of live cards and their running operations",
		Long: `Open a live board of live cards. Elapsed time of running operations
ticks every second; the selected card's current operation can be started,
paused, resumed or stopped from the keyboard.

Examples:
  routecard watch
  routecard watch --group <group-id>`,
		RunE: func(cmd *cobra.Command, args []string) error {
			m := newWatchModel(commandContext(cmd), wire.CardService(),
				primary.CardFilters{GroupID: group, IncludeChildren: group != ""}, time.Now)
			p := tea.NewProgram(m, tea.WithAltScreen())
			_, err := p.Run()
			return err
		},
	}

	cmd.Flags().StringVarP(&group, "group", "g", "", "Show the children of one group")
	return cmd
}

func (m watchModel) Init() tea.Cmd {
	return tea.Batch(m.loadCards(), watchTick())
}

func watchTick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg { return watchTickMsg(t) })
}

func (m watchModel) loadCards() tea.Cmd {
	return func() tea.Msg {
		views, err := m.service.ListCards(m.ctx, m.filters)
		return cardsLoadedMsg{views: views, err: err}
	}
}

func (m watchModel) act(action operation.Action) tea.Cmd {
	view := m.selectedView()
	if view == nil || view.Current == nil {
		return nil
	}
	cardID, opID := view.Card.ID, view.Current.ID
	return func() tea.Msg {
		result, err := m.service.ApplyOperationAction(m.ctx, primary.OperationActionRequest{
			CardRef: cardID,
			OpRef:   opID,
			Action:  string(action),
		})
		return actionDoneMsg{result: result, err: err}
	}
}

func (m watchModel) selectedView() *primary.CardView {
	if m.selected < 0 || m.selected >= len(m.views) {
		return nil
	}
	return m.views[m.selected]
}

func (m watchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		return m, nil
	case watchTickMsg:
		m.now = m.clock()
		return m, watchTick()
	case cardsLoadedMsg:
		if msg.err != nil {
			m.message, m.failed = msg.err.Error(), true
			return m, nil
		}
		m.views = msg.views
		if m.selected >= len(m.views) {
			m.selected = len(m.views) - 1
		}
		if m.selected < 0 {
			m.selected = 0
		}
		return m, nil
	case actionDoneMsg:
		switch {
		case msg.err != nil:
			m.message, m.failed = msg.err.Error(), true
		case !msg.result.Applied:
			m.message, m.failed = msg.result.Reason, true
		default:
			m.message = fmt.Sprintf("%s: %s → %s", msg.result.Operation.OpName, msg.result.PrevStatus, msg.result.NewStatus)
			m.failed = false
		}
		m.now = m.clock()
		return m, m.loadCards()
	case tea.KeyMsg:
		return m.updateKeys(msg)
	}
	return m, nil
}

func (m watchModel) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, watchKeys.Quit):
		return m, tea.Quit
	case key.Matches(msg, watchKeys.Up):
		if m.selected > 0 {
			m.selected--
		}
	case key.Matches(msg, watchKeys.Down):
		if m.selected < len(m.views)-1 {
			m.selected++
		}
	case key.Matches(msg, watchKeys.Start):
		return m, m.act(operation.ActionStart)
	case key.Matches(msg, watchKeys.Pause):
		return m, m.act(operation.ActionPause)
	case key.Matches(msg, watchKeys.Resume):
		return m, m.act(operation.ActionResume)
	case key.Matches(msg, watchKeys.Stop):
		return m, m.act(operation.ActionStop)
	case key.Matches(msg, watchKeys.Reload):
		m.message = ""
		return m, m.loadCards()
	}
	return m, nil
}

func (m watchModel) View() string {
	var b strings.Builder
	b.WriteString(watchTitleStyle.Render("Route cards"))
	b.WriteString(watchMutedStyle.Render("  " + m.now.Format("15:04:05")))
	b.WriteString("\n")
	if status := m.service.SyncStatus(); status.Degraded {
		b.WriteString(watchErrorStyle.Render("⚠ Changes are not saved: " + status.LastError))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	if len(m.views) == 0 {
		b.WriteString(watchMutedStyle.Render("No cards found."))
		b.WriteString("\n")
	}
	for i, v := range m.views {
		line := m.renderRow(v)
		if i == m.selected {
			line = watchSelStyle.Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if m.message != "" {
		if m.failed {
			b.WriteString(watchErrorStyle.Render(m.message))
		} else {
			b.WriteString(watchOKStyle.Render(m.message))
		}
		b.WriteString("\n")
	}
	b.WriteString(m.help.View(watchKeys))
	return b.String()
}

func (m watchModel) renderRow(v *primary.CardView) string {
	name := v.Card.Name
	if name == "" {
		name = v.Card.Barcode
	}
	row := fmt.Sprintf("%-14s %-24s %-12s", v.Card.Barcode, truncate(name, 24), v.ProcessState)
	op := v.Current
	if op == nil {
		return row
	}
	elapsed := operation.FormatHMS(operation.ElapsedSeconds(op, m.now))
	step := fmt.Sprintf(" %s %s %s", truncate(op.OpName, 20), op.Status, elapsed)
	switch op.Status {
	case models.StatusInProgress:
		step = watchRunStyle.Render(step)
	case models.StatusPaused:
		step = watchPausedStyle.Render(step)
	}
	return row + step
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
