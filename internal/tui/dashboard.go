// Package tui is the live terminal dashboard: who is clocked in, where, and
// for how long today.
package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Abcdabansu666/TimeSheet/internal/model"
	"github.com/Abcdabansu666/TimeSheet/internal/syncer"
	"github.com/Abcdabansu666/TimeSheet/internal/timecalc"
	"github.com/Abcdabansu666/TimeSheet/internal/tracker"
)

// StatusSource reports the background write queue.
type StatusSource interface {
	Status() syncer.Status
}

type mode int

const (
	modeList mode = iota
	modeJob
)

type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Dashboard is the bubbletea model. Rows are rebuilt from the tracker on
// every tick, so pushes from the watcher show up within a second.
type Dashboard struct {
	tracker *tracker.Tracker
	sync    StatusSource
	width   int
	height  int

	table   table.Model
	input   textinput.Model
	mode    mode
	people  []string
	message string
	err     error
}

// NewDashboard returns a dashboard over t. sync may be nil.
func NewDashboard(t *tracker.Tracker, sync StatusSource) *Dashboard {
	tbl := table.New(
		table.WithColumns([]table.Column{
			{Title: "Person", Width: 20},
			{Title: "Status", Width: 8},
			{Title: "Job", Width: 22},
			{Title: "Since", Width: 9},
			{Title: "Today", Width: 9},
		}),
		table.WithFocused(true),
		table.WithHeight(12),
	)
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57"))
	tbl.SetStyles(s)

	ti := textinput.New()
	ti.Placeholder = "Job (blank for default)"
	ti.CharLimit = 100
	ti.Width = 40

	d := &Dashboard{tracker: t, sync: sync, table: tbl, input: ti}
	d.refresh()
	return d
}

func (d *Dashboard) Init() tea.Cmd {
	return tick()
}

func (d *Dashboard) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		d.refresh()
		return d, tick()

	case tea.WindowSizeMsg:
		d.width = msg.Width
		d.height = msg.Height
		if h := msg.Height - 10; h > 3 {
			d.table.SetHeight(h)
		}
		return d, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return d, tea.Quit
		}
		if d.mode == modeJob {
			return d, d.handleJobKey(msg)
		}
		return d, d.handleListKey(msg)
	}

	if d.mode == modeJob {
		var cmd tea.Cmd
		d.input, cmd = d.input.Update(msg)
		return d, cmd
	}
	return d, nil
}

func (d *Dashboard) handleListKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "q", "esc":
		return tea.Quit
	case "i":
		person := d.selected()
		if person == "" {
			return nil
		}
		d.mode = modeJob
		d.input.SetValue("")
		d.table.Blur()
		return d.input.Focus()
	case "o":
		person := d.selected()
		if person == "" {
			return nil
		}
		d.err = nil
		if e, ok := d.tracker.ClockOut(person); ok {
			d.message = fmt.Sprintf("%s clocked out after %s", person, timecalc.MinutesToHoursString(e.DurationMins))
		} else {
			d.message = person + " is not clocked in"
		}
		d.refresh()
		return nil
	case "r":
		d.refresh()
		return nil
	}

	var cmd tea.Cmd
	d.table, cmd = d.table.Update(msg)
	return cmd
}

func (d *Dashboard) handleJobKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		d.leaveJobMode()
		return nil
	case "enter":
		person := d.selected()
		job := d.input.Value()
		d.leaveJobMode()
		s, err := d.tracker.ClockIn(person, job)
		if err != nil {
			d.err = err
			d.message = ""
		} else {
			d.err = nil
			d.message = fmt.Sprintf("%s clocked in on %s", s.PersonName, s.JobName)
		}
		d.refresh()
		return nil
	}
	var cmd tea.Cmd
	d.input, cmd = d.input.Update(msg)
	return cmd
}

func (d *Dashboard) leaveJobMode() {
	d.mode = modeList
	d.input.Blur()
	d.table.Focus()
}

func (d *Dashboard) selected() string {
	i := d.table.Cursor()
	if i < 0 || i >= len(d.people) {
		return ""
	}
	return d.people[i]
}

// refresh rebuilds the rows from the registered people plus anyone holding
// a session without being registered.
func (d *Dashboard) refresh() {
	sessions := d.tracker.Sessions()
	names := d.tracker.People()
	for name := range sessions {
		names = append(names, name)
	}
	d.people = model.SortedNames(names)

	zone := d.tracker.Zone()
	rows := make([]table.Row, 0, len(d.people))
	for _, p := range d.people {
		today := timecalc.FormatDurationHHMMSS(d.tracker.LiveElapsed(p))
		if s, ok := sessions[p]; ok {
			rows = append(rows, table.Row{p, "IN", s.JobName, timecalc.To12Hour(zone.TimeOfDay(s.StartTime)), today})
		} else {
			rows = append(rows, table.Row{p, "out", "", "", today})
		}
	}
	d.table.SetRows(rows)
	if c := d.table.Cursor(); c >= len(rows) && len(rows) > 0 {
		d.table.SetCursor(len(rows) - 1)
	}
}

func (d *Dashboard) View() string {
	var b strings.Builder

	zone := d.tracker.Zone()
	b.WriteString(titleStyle.Render("TIMESHEET"))
	b.WriteString("\n")
	b.WriteString(subtitleStyle.Render(zone.Now().Format("Mon Jan 2 2006  ") + timecalc.To12Hour(zone.CurrentTimeOfDay())))
	b.WriteString("\n\n")

	if len(d.people) == 0 {
		b.WriteString(subtitleStyle.Render("No people yet. Add one with `timesheet people add <name>`."))
		b.WriteString("\n")
	} else {
		b.WriteString(boxStyle.Render(d.table.View()))
		b.WriteString("\n")
	}

	if d.mode == modeJob {
		b.WriteString(fmt.Sprintf("\nClock in %s on: %s\n", d.selected(), d.input.View()))
	}
	if d.err != nil {
		b.WriteString(errorStyle.Render("Error: " + d.err.Error()))
		b.WriteString("\n")
	} else if d.message != "" {
		b.WriteString(activeStyle.Render(d.message))
		b.WriteString("\n")
	}
	if line := d.syncLine(); line != "" {
		b.WriteString(line)
		b.WriteString("\n")
	}

	help := "[i] Clock in  [o] Clock out  [r] Refresh  [q] Quit"
	if d.mode == modeJob {
		help = "[enter] Confirm  [esc] Cancel"
	}
	b.WriteString(helpStyle.Render(help))

	return lipgloss.NewStyle().Width(d.width).Render(b.String())
}

func (d *Dashboard) syncLine() string {
	if d.sync == nil {
		return ""
	}
	st := d.sync.Status()
	switch {
	case st.Unsynced > 0:
		return warningStyle.Render(fmt.Sprintf("%d change(s) failed to save: %s", st.Unsynced, st.LastError))
	case st.Pending > 0:
		return subtitleStyle.Render(fmt.Sprintf("Saving %d change(s)...", st.Pending))
	}
	return ""
}

// Run starts the dashboard in the alternate screen and blocks until it quits.
func Run(t *tracker.Tracker, sync StatusSource) error {
	p := tea.NewProgram(NewDashboard(t, sync), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
