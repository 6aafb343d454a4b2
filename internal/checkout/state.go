package checkout

// State is the lifecycle state of a checkout session.
type State string

const (
	StateIdle       State = "idle"
	StateProcessing State = "processing"
	StateCompleted  State = "completed"
	StateCancelled  State = "cancelled"
)

func (s State) String() string {
	return string(s)
}

// IsTerminal reports whether a session in this state is finished.
func (s State) IsTerminal() bool {
	switch s {
	case StateCompleted, StateCancelled:
		return true
	default:
		return false
	}
}

// Outcome is the immediate result of Start.
type Outcome string

const (
	// OutcomeProcessing means a session started and its timer is armed.
	OutcomeProcessing Outcome = "processing"
	// OutcomeAwaitingLogin means the profile is missing or incomplete; the
	// caller was sent to the profile view and nothing was armed.
	OutcomeAwaitingLogin Outcome = "awaiting-login"
)

// Route names a view the workflow asks the UI to show.
type Route string

const (
	RouteProfile Route = "profile"
	RouteHistory Route = "history"
)

// Button labels and notices.
const (
	LabelPlaceOrder = "Place order"
	LabelProcessing = "Processing..."
	LabelLogin      = "Login to place an order"
	LabelCancel     = "Cancel"

	NoticeLoginRequired = "Please log in to place an order"
	NoticeEmptyCart     = "Cart is empty"
	NoticeOrderFailed   = "Could not save the order"
)

// View is the render state of the checkout controls.
type View struct {
	// Hidden is true when the cart is empty.
	Hidden        bool
	Disabled      bool
	CancelVisible bool
	Label         string
	// ToProfile is true when activating the button should open the profile
	// view instead of starting a session.
	ToProfile bool
}
