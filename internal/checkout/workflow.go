package checkout

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/five82/shopfront/internal/cart"
	"github.com/five82/shopfront/internal/metrics"
	"github.com/five82/shopfront/internal/orders"
	"github.com/five82/shopfront/internal/profile"
	"github.com/five82/shopfront/internal/sched"
	"github.com/five82/shopfront/internal/shop"
	"github.com/five82/shopfront/internal/telemetry"
)

// DefaultDelay is the simulated order placement latency.
const DefaultDelay = 1500 * time.Millisecond

// Errors returned by Start.
var (
	ErrEmptyCart  = errors.New("cart is empty")
	ErrInProgress = errors.New("checkout already in progress")
)

// Listener receives the workflow's UI side effects.
type Listener interface {
	CheckoutChanged(View)
	Notice(string)
	Navigate(Route)
}

// ListenerFuncs adapts plain functions to Listener. Nil fields are skipped.
type ListenerFuncs struct {
	OnChange   func(View)
	OnNotice   func(string)
	OnNavigate func(Route)
}

func (f ListenerFuncs) CheckoutChanged(v View) {
	if f.OnChange != nil {
		f.OnChange(v)
	}
}

func (f ListenerFuncs) Notice(msg string) {
	if f.OnNotice != nil {
		f.OnNotice(msg)
	}
}

func (f ListenerFuncs) Navigate(r Route) {
	if f.OnNavigate != nil {
		f.OnNavigate(r)
	}
}

// Session is one checkout attempt. It lives only in memory.
type Session struct {
	ID        string
	State     State
	StartedAt time.Time
	OrderID   string

	task *sched.Task
	span trace.Span
}

// Deps are the collaborators of a Workflow.
type Deps struct {
	Cart      *cart.Service
	Orders    *orders.Service
	Profile   *profile.Service
	Scheduler sched.Scheduler
	Delay     time.Duration
	Logger    *slog.Logger
	Metrics   *metrics.Metrics
	Listener  Listener
}

// Workflow is the checkout state machine. It is driven from a single
// logical thread: Start, Cancel and the timer callback must not run
// concurrently.
type Workflow struct {
	deps    Deps
	logger  *slog.Logger
	session *Session
}

// New returns an idle workflow.
func New(deps Deps) *Workflow {
	if deps.Delay <= 0 {
		deps.Delay = DefaultDelay
	}
	if deps.Listener == nil {
		deps.Listener = ListenerFuncs{}
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Workflow{deps: deps, logger: logger}
}

// SetListener replaces the listener.
func (w *Workflow) SetListener(l Listener) {
	if l == nil {
		l = ListenerFuncs{}
	}
	w.deps.Listener = l
}

// State returns processing while a session is in flight and idle otherwise.
func (w *Workflow) State() State {
	if w.session != nil && w.session.State == StateProcessing {
		return StateProcessing
	}
	return StateIdle
}

// Session returns a copy of the latest session, if any.
func (w *Workflow) Session() (Session, bool) {
	if w.session == nil {
		return Session{}, false
	}
	s := *w.session
	s.task = nil
	s.span = nil
	return s, true
}

// Start begins a checkout. A missing or incomplete profile sends the user to
// the profile view and returns OutcomeAwaitingLogin without arming anything.
func (w *Workflow) Start(ctx context.Context) (Outcome, error) {
	if w.State() == StateProcessing {
		return "", ErrInProgress
	}
	if w.deps.Cart.Count() == 0 {
		return "", ErrEmptyCart
	}
	if !w.deps.Profile.Complete() {
		w.logger.Info("checkout needs profile")
		w.deps.Metrics.CheckoutOutcome(string(OutcomeAwaitingLogin))
		w.deps.Listener.Navigate(RouteProfile)
		return OutcomeAwaitingLogin, nil
	}

	id := uuid.NewString()
	_, span := telemetry.Tracer().Start(ctx, "checkout.session",
		trace.WithAttributes(
			attribute.String("checkout.session_id", id),
			attribute.Int("checkout.items", w.deps.Cart.Count()),
		),
	)
	session := &Session{
		ID:        id,
		State:     StateProcessing,
		StartedAt: w.deps.Scheduler.Now(),
		span:      span,
	}
	w.session = session
	session.task = w.deps.Scheduler.AfterFunc(w.deps.Delay, func() { w.complete(session) })

	w.logger.Info("checkout started", "session_id", id, "delay", w.deps.Delay)
	w.changed()
	return OutcomeProcessing, nil
}

// Cancel revokes the in-flight session. It is a no-op returning false when
// nothing is processing.
func (w *Workflow) Cancel() bool {
	s := w.session
	if s == nil || s.State != StateProcessing {
		return false
	}
	s.task.Cancel()
	w.finish(s, StateCancelled, "cancelled", nil)
	w.logger.Info("checkout cancelled", "session_id", s.ID)
	w.changed()
	return true
}

func (w *Workflow) complete(s *Session) {
	if w.session != s || s.State != StateProcessing {
		return
	}

	p, ok := w.deps.Profile.Load()
	if !ok || !p.Complete() {
		w.abort(s, NoticeLoginRequired, errors.New("profile incomplete at completion"))
		return
	}

	items := w.deps.Cart.List()
	order, err := shop.NewOrder(w.deps.Scheduler.Now(), items, p)
	if errors.Is(err, shop.ErrEmptyOrder) {
		w.abort(s, NoticeEmptyCart, err)
		return
	}
	if err != nil {
		w.abort(s, NoticeOrderFailed, err)
		return
	}

	stored, err := w.deps.Orders.Prepend(order)
	if err != nil {
		w.abort(s, NoticeOrderFailed, err)
		return
	}
	if err := w.deps.Cart.Clear(); err != nil {
		// The order is already recorded; leave the items for the user to
		// clear rather than losing the order.
		w.logger.Error("clear cart after checkout", "session_id", s.ID, "error", err)
		w.deps.Listener.Notice(fmt.Sprintf("Order %s placed, but the cart could not be cleared", stored.ID))
	}

	s.OrderID = stored.ID
	if s.span != nil {
		s.span.SetAttributes(
			attribute.String("checkout.order_id", stored.ID),
			attribute.Float64("checkout.total", float64(stored.Amount())),
		)
	}
	w.finish(s, StateCompleted, "completed", nil)
	w.logger.Info("checkout completed", "session_id", s.ID, "order_id", stored.ID, "total", float64(stored.Amount()))
	w.changed()
	w.deps.Listener.Navigate(RouteHistory)
}

func (w *Workflow) abort(s *Session, notice string, cause error) {
	w.finish(s, StateCancelled, "aborted", cause)
	w.logger.Warn("checkout aborted", "session_id", s.ID, "reason", cause)
	w.deps.Listener.Notice(notice)
	w.changed()
}

func (w *Workflow) finish(s *Session, state State, outcome string, cause error) {
	s.State = state
	s.task = nil
	w.deps.Metrics.CheckoutOutcome(outcome)
	if s.span != nil {
		s.span.SetAttributes(attribute.String("checkout.outcome", outcome))
		if cause != nil {
			s.span.SetStatus(codes.Error, cause.Error())
		}
		s.span.End()
		s.span = nil
	}
}

// View derives the checkout controls from the store and the session.
func (w *Workflow) View() View {
	if w.State() == StateProcessing {
		return View{Disabled: true, CancelVisible: true, Label: LabelProcessing}
	}
	if w.deps.Cart.Count() == 0 {
		return View{Hidden: true, Label: LabelPlaceOrder}
	}
	if !w.deps.Profile.Complete() {
		return View{Label: LabelLogin, ToProfile: true}
	}
	return View{Label: LabelPlaceOrder}
}

func (w *Workflow) changed() {
	w.deps.Listener.CheckoutChanged(w.View())
}
