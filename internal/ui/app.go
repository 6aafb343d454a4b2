package ui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/shopfront/internal/bus"
	"github.com/five82/shopfront/internal/cart"
	"github.com/five82/shopfront/internal/catalog"
	"github.com/five82/shopfront/internal/checkout"
	"github.com/five82/shopfront/internal/orders"
	"github.com/five82/shopfront/internal/prefs"
	"github.com/five82/shopfront/internal/profile"
	"github.com/five82/shopfront/internal/sched"
	"github.com/five82/shopfront/internal/shop"
)

// Route is a top-level view.
type Route int

const (
	RouteCatalog Route = iota
	RouteCart
	RouteProfile
	RouteHistory
	RouteDiagnostics
)

var routeNames = []string{"catalog", "cart", "profile", "history", "diagnostics"}

func (r Route) String() string {
	if r < 0 || int(r) >= len(routeNames) {
		return "unknown"
	}
	return routeNames[r]
}

// ParseRoute maps a route name to a Route. Empty selects the catalog.
func ParseRoute(name string) (Route, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return RouteCatalog, nil
	}
	for i, n := range routeNames {
		if n == name {
			return Route(i), nil
		}
	}
	return RouteCatalog, fmt.Errorf("unknown route %q (want one of %s)", name, strings.Join(routeNames, ", "))
}

// Options configures the UI.
type Options struct {
	Context   context.Context
	Bus       *bus.Bus
	Scheduler sched.Scheduler
	// Clock, when set, is pointed at the running program so that timer
	// callbacks run on the update loop. It is also the default Scheduler.
	Clock    *sched.Realtime
	Catalog  *catalog.Engine
	Cart     *cart.Service
	Checkout *checkout.Workflow
	Profile  *profile.Service
	Orders   *orders.Service
	Prefs    *prefs.Service
	Feedback time.Duration
	LogFile  string
	Route    Route
	Logger   *slog.Logger
	// OnStart runs once the program is wired, just before it takes the
	// terminal.
	OnStart func()
}

// NoticeThemeFailed is shown when the theme preference cannot be saved.
const NoticeThemeFailed = "Could not save the theme"

// callbackMsg carries a scheduler callback onto the update loop.
type callbackMsg func()

type catalogLoadedMsg struct {
	res catalog.Result
	err error
}

type logTickMsg struct{}

// shared is written by bus handlers and scheduler callbacks. Both run on the
// update loop; Model copies see it through one pointer.
type shared struct {
	sched      sched.Scheduler
	theme      string
	notice     string
	noticeTask *sched.Task
	location   string
	detail     *shop.Product
	navigate   *Route
	unsubs     []func()
}

// say shows msg in the footer for NoticeTTL.
func (s *shared) say(msg string) {
	s.noticeTask.Cancel()
	s.noticeTask = nil
	s.notice = msg
	if msg == "" || s.sched == nil {
		return
	}
	s.noticeTask = s.sched.AfterFunc(NoticeTTL, func() {
		s.notice = ""
		s.noticeTask = nil
	})
}

// Model is the root application state for Bubble Tea.
type Model struct {
	ctx    context.Context
	opts   Options
	keys   keyMap
	st     *shared
	toggle *cart.Toggle
	logger *slog.Logger

	// UI state
	width    int
	height   int
	ready    bool
	route    Route
	showHelp bool
	modal    Modal

	// Catalog state
	cursor     int
	searching  bool
	search     textinput.Model
	suggestion int

	// Cart state
	cartCursor int

	// Profile state
	form profileForm

	// History state
	history viewport.Model

	// Diagnostics state
	logs     viewport.Model
	logLevel slog.Level
	logState logState
}

// New creates a new Bubble Tea model and subscribes it to the bus.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	if opts.Scheduler == nil && opts.Clock != nil {
		opts.Scheduler = opts.Clock
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	st := &shared{sched: opts.Scheduler, theme: opts.Prefs.Theme()}
	st.unsubs = append(st.unsubs,
		bus.Subscribe(opts.Bus, shop.ThemeChanged, func(name string) {
			st.theme = prefs.Normalize(name)
		}),
		bus.Subscribe(opts.Bus, shop.OpenProductDetail, func(p shop.Product) {
			st.detail = &p
		}),
	)

	opts.Checkout.SetListener(checkout.ListenerFuncs{
		OnNotice: st.say,
		OnNavigate: func(r checkout.Route) {
			route := RouteCatalog
			switch r {
			case checkout.RouteProfile:
				route = RouteProfile
			case checkout.RouteHistory:
				route = RouteHistory
			}
			st.navigate = &route
		},
	})

	st.location = opts.Catalog.Query().Encode()
	opts.Catalog.SetLocation(catalog.LocationFunc(func(q string) {
		st.location = q
	}))

	m := Model{
		ctx:        ctx,
		opts:       opts,
		keys:       DefaultKeyMap(),
		st:         st,
		toggle:     cart.NewToggle(opts.Cart, opts.Bus, opts.Scheduler, opts.Feedback, st.say),
		logger:     logger,
		route:      opts.Route,
		search:     newSearchInput(),
		suggestion: -1,
		form:       newProfileForm(),
		history:    viewport.New(0, 0),
		logs:       viewport.New(0, 0),
		logLevel:   slog.LevelInfo,
	}
	m.search.SetValue(opts.Catalog.Input())
	m.form.load(opts.Profile.Load())
	m.switchTo(opts.Route)
	return m
}

// Close releases bus subscriptions and pending timers.
func (m Model) Close() {
	for _, unsub := range m.st.unsubs {
		unsub()
	}
	m.st.unsubs = nil
	m.st.noticeTask.Cancel()
	m.toggle.Close()
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.loadCatalog(), logTickCmd())
}

// loadCatalog enters the loading state and fetches off the update loop.
func (m Model) loadCatalog() tea.Cmd {
	engine := m.opts.Catalog
	ctx := m.ctx
	engine.BeginLoad()
	return func() tea.Msg {
		res, err := engine.Fetch(ctx)
		return catalogLoadedMsg{res: res, err: err}
	}
}

func logTickCmd() tea.Cmd {
	return tea.Tick(LogRefreshInterval, func(time.Time) tea.Msg {
		return logTickMsg{}
	})
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.resize()

	case tea.KeyMsg:
		m, cmd = m.handleKey(msg)

	case callbackMsg:
		msg()

	case catalogLoadedMsg:
		m.opts.Catalog.Apply(msg.res, msg.err)

	case logTickMsg:
		if m.route == RouteDiagnostics && m.logState.follow {
			m.refreshLogs()
		}
		cmd = logTickCmd()
	}

	m.absorb()
	return m, cmd
}

// absorb applies requests that bus handlers and callbacks left in shared.
func (m *Model) absorb() {
	if r := m.st.navigate; r != nil {
		m.st.navigate = nil
		m.modal = nil
		m.switchTo(*r)
		if *r == RouteProfile && !m.opts.Profile.Complete() {
			m.form.begin()
		}
	}
	if p := m.st.detail; p != nil {
		m.st.detail = nil
		m.toggle.Bind(*p)
		m.modal = detailModal{product: *p, toggle: m.toggle}
	}
	m.cursor = clamp(m.cursor, len(m.opts.Catalog.Visible()))
	m.cartCursor = clamp(m.cartCursor, m.opts.Cart.Count())
	if m.route == RouteHistory {
		m.refreshHistory()
	}
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	theme := m.theme()

	if m.showHelp {
		return m.renderHelp()
	}
	if m.modal != nil {
		return m.modal.View(theme, m.width, m.height)
	}

	return m.renderMain()
}

func (m Model) theme() Theme {
	return GetTheme(m.st.theme)
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	if m.showHelp {
		// Any key closes help
		m.showHelp = false
		return m, nil
	}

	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	if m.modal != nil {
		next, cmd, closed := m.modal.Update(msg, m.keys)
		if closed {
			m.modal = nil
		} else {
			m.modal = next
		}
		return m, cmd
	}

	// Text inputs own the keyboard while focused.
	if m.searching {
		return m.handleSearchKey(msg)
	}
	if m.route == RouteProfile && m.form.editing {
		return m.handleProfileKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil

	case key.Matches(msg, m.keys.ToggleTheme):
		if _, err := m.opts.Prefs.Toggle(); err != nil {
			m.logger.Warn("theme toggle failed", "error", err)
			m.st.say(NoticeThemeFailed)
		}
		if m.route == RouteDiagnostics {
			m.refreshLogs()
		}
		return m, nil

	case key.Matches(msg, m.keys.Tab):
		m.switchTo(Route((int(m.route) + 1) % len(routeNames)))
		return m, nil

	case key.Matches(msg, m.keys.ShiftTab):
		m.switchTo(Route((int(m.route) + len(routeNames) - 1) % len(routeNames)))
		return m, nil

	case key.Matches(msg, m.keys.Escape):
		m.switchTo(RouteCatalog)
		return m, nil
	}

	switch m.route {
	case RouteCatalog:
		return m.handleCatalogKey(msg)
	case RouteCart:
		return m.handleCartKey(msg)
	case RouteProfile:
		return m.handleProfileKey(msg)
	case RouteHistory:
		var cmd tea.Cmd
		m.history, cmd = m.history.Update(msg)
		return m, cmd
	case RouteDiagnostics:
		return m.handleDiagnosticsKey(msg)
	}
	return m, nil
}

// switchTo changes the active view.
func (m *Model) switchTo(r Route) {
	if m.route == RouteProfile && r != RouteProfile {
		m.form.end()
	}
	m.route = r
	switch r {
	case RouteProfile:
		if !m.form.editing {
			m.form.load(m.opts.Profile.Load())
		}
	case RouteHistory:
		m.refreshHistory()
		m.history.GotoTop()
	case RouteDiagnostics:
		m.logState.follow = true
		m.refreshLogs()
	}
}

// resize recomputes component sizes from the terminal size.
func (m *Model) resize() {
	body := m.bodyHeight()
	m.history.Width = m.width
	m.history.Height = body
	m.logs.Width = m.width
	m.logs.Height = body - 1
	m.search.Width = max(10, min(m.width-12, 48))
	switch m.route {
	case RouteHistory:
		m.refreshHistory()
	case RouteDiagnostics:
		m.refreshLogs()
	}
}

// bodyHeight is the height between the header and the footer.
func (m Model) bodyHeight() int {
	return max(1, m.height-2)
}

// Run starts the TUI and blocks until it exits or ctx is done.
func Run(opts Options) error {
	parent := opts.Context
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithCancel(parent)
	defer cancel()
	opts.Context = ctx

	m := New(opts)
	defer m.Close()

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	if opts.Clock != nil {
		opts.Clock.SetPost(func(f func()) { p.Send(callbackMsg(f)) })
		// Callbacks that fire after the program ends have no loop to run on.
		defer opts.Clock.SetPost(func(func()) {})
	}
	if opts.OnStart != nil {
		opts.OnStart()
	}

	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && parent.Err() != nil {
		return nil
	}
	return err
}
