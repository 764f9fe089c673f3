package main

import (
	"context"
	"flag"
	"path/filepath"
	"strconv"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	core "github.com/td0m/rememo/internal/app"
	"github.com/td0m/rememo/internal/config"
	"github.com/td0m/rememo/internal/ui"
	"github.com/td0m/rememo/pkg/notify"
	"github.com/td0m/rememo/pkg/task"
	"github.com/td0m/rememo/pkg/timeinput"
)

func check(err error) {
	if err != nil {
		panic(err)
	}
}

var (
	configPath = flag.String("config", "", "Config file, merged over the global and project ones")
)

func main() {
	flag.Parse()

	cfg, err := config.Load(*configPath)
	check(err)
	// the terminal belongs to the ui
	if cfg.LogFile == "" {
		cfg.LogFile = filepath.Join(cfg.DataDir, "tui.log")
	}
	rememo, err := core.Open(cfg)
	check(err)
	defer rememo.Close()

	a := newApp(context.Background(), rememo)

	p := tea.NewProgram(a)
	p.EnableMouseAllMotion()
	defer p.DisableMouseAllMotion()
	p.EnterAltScreen()
	defer p.ExitAltScreen()

	check(p.Start())
}

const (
	headerHeight = 3
	footerHeight = 1
)

const (
	tabToday = iota
	tabTasks
	tabHistory
)

type mode int

const (
	modeNormal mode = iota
	modeName
	modeTimes
	modeRefill
)

type tickMsg time.Time

type app struct {
	ctx    context.Context
	rememo *core.App

	mode   mode
	loaded bool

	viewport  viewport.Model
	nameinput textinput.Model
	timeinput timeinput.Model
	tabs      ui.Tabs

	cursor  int
	tasks   []task.Task
	visible []task.Task
	today   []task.EffortHistory
	history []task.EffortHistory
	filter  task.EffortFilter
	names   map[task.ID]string

	// task being added or edited, editing is false while adding
	draft   task.Task
	editing bool

	status    string
	delivered *notify.Delivery
}

func newApp(ctx context.Context, rememo *core.App) *app {
	i := textinput.NewModel()
	i.Focus()
	i.Prompt = ""
	i.Width = 40

	return &app{
		ctx:       ctx,
		rememo:    rememo,
		nameinput: i,
		timeinput: timeinput.NewModel(),
		viewport:  viewport.Model{},
		tabs:      ui.NewTabs([]string{"Today", "Tasks", "History"}),
	}
}

// Init is the first function that will be called. It returns an optional
// initial command. To not perform an initial command return nil.
func (m *app) Init() tea.Cmd {
	m.rememo.Scheduler.RegisterDeviceToken(m.ctx)
	return m.tick()
}

func (m *app) tick() tea.Cmd {
	return tea.Tick(m.rememo.Config.Notifications.PollInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Update is called when a message is received. Use it to inspect messages
// and, in response, update the model and/or send a command.
func (m *app) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var (
		cmd tea.Cmd
	)
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		verticalMargins := headerHeight + footerHeight
		m.viewport.Width = msg.Width
		m.viewport.Height = msg.Height - verticalMargins
		m.tabs.Width = msg.Width

		if !m.loaded {
			m.reload()
		}
		m.loaded = true
		m.setCursor(m.cursor) // make sure cursor is visible
	case tickMsg:
		m.fire()
		cmd = m.tick()
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC:
			return m, tea.Quit
		case tea.KeyEsc:
			m.mode = modeNormal
		default:
			cmd = m.keyUpdate(msg)
		}
	}
	m.render()
	return m, cmd
}

// handle keys differently based on the current mode
func (m *app) keyUpdate(msg tea.KeyMsg) tea.Cmd {
	var cmd tea.Cmd
	switch m.mode {
	case modeName:
		if msg.Type == tea.KeyEnter {
			m.draft.Name = m.nameinput.Value()
			if m.editing {
				m.save()
				m.mode = modeNormal
			} else {
				m.editTimes()
			}
			return nil
		}
		m.nameinput, cmd = m.nameinput.Update(msg)
		m.nameinput.Width = len(m.nameinput.Value()) + 1
	case modeTimes:
		if msg.Type == tea.KeyEnter {
			if !m.timeinput.Valid() && !m.timeinput.Empty() {
				return nil
			}
			m.draft.Times = []string{}
			if !m.timeinput.Empty() {
				m.draft.Times = m.timeinput.Value()
			}
			m.save()
			m.mode = modeNormal
			return nil
		}
		m.timeinput, cmd = m.timeinput.Update(msg)
	case modeRefill:
		if msg.Type == tea.KeyEnter {
			if n, err := strconv.Atoi(m.nameinput.Value()); err == nil {
				m.report(m.rememo.Refill(m.ctx, m.draft.ID, n))
				m.reload()
			}
			m.mode = modeNormal
			return nil
		}
		m.nameinput, cmd = m.nameinput.Update(msg)
		m.nameinput.Width = len(m.nameinput.Value()) + 1
	case modeNormal:
		m.status = ""
		switch msg.String() {
		case "g":
			m.setCursor(0)
		case "G":
			m.setCursor(len(m.visible))
		case "ctrl+d":
			m.setCursor(m.cursor + 10)
		case "ctrl+u":
			m.setCursor(m.cursor - 10)
		case "alt+1":
			m.setTab(tabToday)
		case "alt+2":
			m.setTab(tabTasks)
		case "alt+3":
			m.setTab(tabHistory)
		case "tab", "shift+tab":
			m.tabs, cmd = m.tabs.Update(msg)
			m.setTab(m.tabs.Value())
		case "j":
			m.setCursor(m.cursor + 1)
		case "k":
			m.setCursor(m.cursor - 1)
		case "v":
			if m.tabs.Value() == tabHistory {
				m.filter = m.filter.Next()
			}
		case "x", "enter":
			m.effort(true)
		case "s":
			m.effort(false)
		case "t":
			if t, ok := m.atCursor(); ok {
				_, err := m.rememo.ToggleCompleted(m.ctx, t.ID)
				m.fail(err)
				m.reload()
			}
		case "r":
			if t, ok := m.atCursor(); ok {
				m.report(m.rememo.ToggleReminders(m.ctx, t.ID))
				m.reload()
			}
		case "i":
			if t, ok := m.atCursor(); ok {
				m.edit(t)
			}
		case "T":
			if t, ok := m.atCursor(); ok {
				m.draft, m.editing = t, true
				m.editTimes()
			}
		case "f":
			if t, ok := m.atCursor(); ok {
				m.draft = t
				m.mode = modeRefill
				m.nameinput.SetValue("")
				m.nameinput.Width = 1
			}
		case tea.KeyDelete.String():
			if t, ok := m.atCursor(); ok {
				m.fail(m.rememo.DeleteTask(m.ctx, t.ID))
				m.reload()
				m.setCursor(m.cursor) // make sure cursor is visible
			}
		case "o":
			m.draft = task.Task{
				StartDate:       m.rememo.Now(),
				Color:           ui.RandomColor(),
				ReminderEnabled: true,
			}
			m.editing = false
			m.mode = modeName
			m.nameinput.SetValue("")
			m.nameinput.Width = 1
		}
	}
	return cmd
}

func (m *app) edit(t task.Task) {
	m.draft, m.editing = t, true
	m.mode = modeName
	m.nameinput.SetValue(t.Name)
	m.nameinput.Width = len(m.nameinput.Value()) + 1
	m.nameinput.SetCursor(len(t.Name))
}

func (m *app) editTimes() {
	m.mode = modeTimes
	m.timeinput = timeinput.NewModel()
	if len(m.draft.Times) > 0 {
		m.timeinput.SetValue(m.draft.Times)
	}
}

// save stores the draft, adding it when it is new
func (m *app) save() {
	if m.editing {
		_, err := m.rememo.UpdateTask(m.ctx, m.draft)
		m.fail(err)
	} else {
		t, o, err := m.rememo.AddTask(m.ctx, m.draft)
		m.fail(err)
		if err == nil && !o.OK() {
			m.status = "some reminders of " + t.Name + " could not be scheduled"
		}
	}
	m.reload()
}

func (m *app) effort(completed bool) {
	t, ok := m.atCursor()
	if !ok {
		return
	}
	_, err := m.rememo.RecordEffort(m.ctx, t.ID, completed)
	m.fail(err)
	m.reload()
}

// fire delivers due notifications, the latest one shows in the status line
func (m *app) fire() {
	ds, err := m.rememo.Platform.Fire(m.ctx, m.rememo.Now())
	if err != nil {
		m.rememo.Log.Error("fire notifications: %v", err)
		return
	}
	for i := range ds {
		m.rememo.Log.Info("delivered %s", ds[i].ID)
		m.delivered = &ds[i]
	}
}

func (m *app) fail(err error) {
	if err != nil {
		m.status = err.Error()
		m.rememo.Log.Error("%v", err)
	}
}

func (m *app) report(_ task.Task, err error) {
	m.fail(err)
}

func (m *app) setTab(i int) {
	m.tabs.Set(i)
	m.updateVisible()
	m.setCursor(0)
}

// reload reads everything the views show from the store
func (m *app) reload() {
	var err error
	m.tasks, err = m.rememo.Store.ListTasks(m.ctx)
	check(err)
	m.today, err = m.rememo.Store.ListTodaysHistory(m.ctx)
	check(err)
	m.history, err = m.rememo.Store.ListHistory(m.ctx)
	check(err)

	m.names = make(map[task.ID]string, len(m.tasks))
	for _, t := range m.tasks {
		m.names[t.ID] = t.Name
	}
	p := task.ProgressOn(m.rememo.Now(), m.tasks, m.today)
	m.tabs.Info = formatProgress(p)
	m.updateVisible()
}

func (m *app) updateVisible() {
	m.visible = m.visible[:0]
	switch m.tabs.Value() {
	case tabToday:
		now := m.rememo.Now()
		for _, t := range m.tasks {
			if t.Started(now) {
				m.visible = append(m.visible, t)
			}
		}
	case tabTasks:
		m.visible = append(m.visible, m.tasks...)
	}
}

func (m *app) render() {
	if m.tabs.Value() == tabHistory {
		m.viewport.SetContent(m.viewHistory())
		return
	}
	m.viewport.SetContent(m.viewTasks())
}

func (m *app) setCursor(value int) {
	size := len(m.visible)
	m.cursor = clamp(value, 0, max(size-1, 0))

	// for when no tasks
	if size == 0 {
		return
	}

	if m.cursor >= m.viewport.YOffset+m.viewport.Height {
		m.viewport.YOffset = m.cursor - m.viewport.Height + 1
	}
	if m.cursor < m.viewport.YOffset {
		m.viewport.YOffset = m.cursor
	}
}

func clamp(v, low, high int) int {
	return min(high, max(low, v))
}

func (m app) atCursor() (task.Task, bool) {
	// if no items visible
	if m.cursor >= len(m.visible) {
		return task.Task{}, false
	}
	return m.visible[m.cursor], true
}
