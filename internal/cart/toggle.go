package cart

import (
	"time"

	"github.com/five82/shopfront/internal/bus"
	"github.com/five82/shopfront/internal/sched"
	"github.com/five82/shopfront/internal/shop"
)

// DefaultFeedback is how long the toggle stays disabled after activation.
const DefaultFeedback = 2 * time.Second

// Toggle labels and notices.
const (
	LabelAdd     = "Add to cart"
	LabelRemove  = "Remove from cart"
	LabelAdded   = "Added"
	LabelRemoved = "Removed"

	NoticeAdded     = "Great choice!"
	NoticeRemoved   = "Looking for something better?"
	NoticeSaveError = "Could not update the cart"
)

// ToggleView is what the add/remove button should render.
type ToggleView struct {
	Label    string
	Disabled bool
}

// Toggle is the add/remove-from-cart control for one product at a time. It
// disables itself for the feedback window after each activation so a second
// activation cannot race the first.
type Toggle struct {
	cart     *Service
	sched    sched.Scheduler
	feedback time.Duration
	notify   func(string)
	onChange func(ToggleView)

	product *shop.Product
	view    ToggleView
	task    *sched.Task
	unsub   func()
}

// NewToggle returns an unbound toggle that follows cart-changed on b.
// notify receives the transient notices; it may be nil.
func NewToggle(svc *Service, b *bus.Bus, s sched.Scheduler, feedback time.Duration, notify func(string)) *Toggle {
	if feedback <= 0 {
		feedback = DefaultFeedback
	}
	t := &Toggle{
		cart:     svc,
		sched:    s,
		feedback: feedback,
		notify:   notify,
		view:     ToggleView{Label: LabelAdd, Disabled: true},
	}
	t.unsub = bus.Subscribe(b, shop.CartChanged, t.onCartChanged)
	return t
}

// OnChange registers the render callback.
func (t *Toggle) OnChange(fn func(ToggleView)) {
	t.onChange = fn
}

// Bind points the toggle at p, dropping any pending feedback.
func (t *Toggle) Bind(p shop.Product) {
	t.task.Cancel()
	t.task = nil
	t.product = &p
	t.set(ToggleView{Label: t.restingLabel()})
}

// Product returns the bound product.
func (t *Toggle) Product() (shop.Product, bool) {
	if t.product == nil {
		return shop.Product{}, false
	}
	return *t.product, true
}

// View returns the current render state.
func (t *Toggle) View() ToggleView {
	return t.view
}

// Activate adds or removes the bound product. It returns false when the
// toggle is unbound or still in its feedback window.
func (t *Toggle) Activate() bool {
	if t.product == nil || t.view.Disabled {
		return false
	}
	p := *t.product
	inCart := t.cart.Contains(p.ID)

	if inCart {
		t.set(ToggleView{Label: LabelRemoved, Disabled: true})
		if err := t.cart.Remove(p.ID); err != nil {
			return t.failed()
		}
		t.say(NoticeRemoved)
	} else {
		t.set(ToggleView{Label: LabelAdded, Disabled: true})
		if err := t.cart.Add(p); err != nil {
			return t.failed()
		}
		t.say(NoticeAdded)
	}

	t.task = t.sched.AfterFunc(t.feedback, func() {
		t.task = nil
		t.set(ToggleView{Label: t.restingLabel()})
	})
	return true
}

// Close unsubscribes from the bus and cancels pending feedback.
func (t *Toggle) Close() {
	t.task.Cancel()
	t.task = nil
	if t.unsub != nil {
		t.unsub()
	}
}

func (t *Toggle) failed() bool {
	t.say(NoticeSaveError)
	t.set(ToggleView{Label: t.restingLabel()})
	return true
}

func (t *Toggle) onCartChanged(shop.CartChange) {
	if t.product == nil || t.view.Disabled {
		return
	}
	t.set(ToggleView{Label: t.restingLabel()})
}

func (t *Toggle) restingLabel() string {
	if t.product != nil && t.cart.Contains(t.product.ID) {
		return LabelRemove
	}
	return LabelAdd
}

func (t *Toggle) set(v ToggleView) {
	t.view = v
	if t.onChange != nil {
		t.onChange(v)
	}
}

func (t *Toggle) say(msg string) {
	if t.notify != nil {
		t.notify(msg)
	}
}
