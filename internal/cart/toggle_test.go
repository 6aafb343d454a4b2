package cart

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/five82/shopfront/internal/kv"
	"github.com/five82/shopfront/internal/sched"
	"github.com/five82/shopfront/internal/shop"
)

var epoch = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func newToggle(t *testing.T, h *harness) (*Toggle, *sched.Virtual, *[]string) {
	t.Helper()
	clock := sched.NewVirtual(epoch)
	var notices []string
	tg := NewToggle(h.svc, h.bus, clock, DefaultFeedback, func(msg string) { notices = append(notices, msg) })
	t.Cleanup(tg.Close)
	return tg, clock, &notices
}

func TestToggle_UnboundDoesNothing(t *testing.T) {
	h := newHarness(t)
	tg, _, _ := newToggle(t, h)

	assert.False(t, tg.Activate())
	assert.Zero(t, h.svc.Count())
}

func TestToggle_AddThenFeedbackThenRemove(t *testing.T) {
	h := newHarness(t)
	tg, clock, notices := newToggle(t, h)
	p := product("1", 10)

	tg.Bind(p)
	assert.Equal(t, ToggleView{Label: LabelAdd}, tg.View())

	require.True(t, tg.Activate())
	assert.Equal(t, ToggleView{Label: LabelAdded, Disabled: true}, tg.View())
	assert.True(t, h.svc.Contains("1"))
	assert.Equal(t, []string{NoticeAdded}, *notices)

	assert.False(t, tg.Activate(), "second activation inside the feedback window must be ignored")
	assert.Equal(t, 1, h.svc.Count())

	clock.Advance(DefaultFeedback)
	assert.Equal(t, ToggleView{Label: LabelRemove}, tg.View())

	require.True(t, tg.Activate())
	assert.Equal(t, ToggleView{Label: LabelRemoved, Disabled: true}, tg.View())
	assert.False(t, h.svc.Contains("1"))

	clock.Advance(DefaultFeedback)
	assert.Equal(t, ToggleView{Label: LabelAdd}, tg.View())
	assert.Equal(t, []string{NoticeAdded, NoticeRemoved}, *notices)
}

func TestToggle_RapidActivationsStayInSync(t *testing.T) {
	h := newHarness(t)
	tg, clock, _ := newToggle(t, h)
	tg.Bind(product("1", 10))

	for i := 0; i < 5; i++ {
		tg.Activate()
		clock.Advance(100 * time.Millisecond)
	}
	clock.Advance(DefaultFeedback)

	inCart := h.svc.Contains("1")
	want := LabelAdd
	if inCart {
		want = LabelRemove
	}
	assert.True(t, inCart, "only the first activation may take effect")
	assert.Equal(t, want, tg.View().Label)
}

func TestToggle_FollowsForeignCartChanges(t *testing.T) {
	h := newHarness(t)
	tg, _, _ := newToggle(t, h)
	tg.Bind(product("1", 10))

	require.NoError(t, h.svc.Add(product("1", 10)))
	assert.Equal(t, LabelRemove, tg.View().Label)

	require.NoError(t, h.svc.Clear())
	assert.Equal(t, LabelAdd, tg.View().Label)
}

func TestToggle_RebindCancelsFeedback(t *testing.T) {
	h := newHarness(t)
	tg, clock, _ := newToggle(t, h)
	tg.Bind(product("1", 10))
	require.True(t, tg.Activate())

	tg.Bind(product("2", 20))
	assert.Equal(t, ToggleView{Label: LabelAdd}, tg.View())

	clock.Advance(DefaultFeedback)
	got, ok := tg.Product()
	require.True(t, ok)
	assert.Equal(t, shop.ID("2"), got.ID)
	assert.Equal(t, ToggleView{Label: LabelAdd}, tg.View(), "stale feedback must not relabel the new product")
}

func TestToggle_CloseUnsubscribes(t *testing.T) {
	h := newHarness(t)
	before := h.bus.Len(shop.CartChanged.Name())
	clock := sched.NewVirtual(epoch)
	tg := NewToggle(h.svc, h.bus, clock, 0, nil)
	assert.Equal(t, before+1, h.bus.Len(shop.CartChanged.Name()))

	tg.Bind(product("1", 1))
	tg.Activate()
	tg.Close()
	tg.Close()

	assert.Equal(t, before, h.bus.Len(shop.CartChanged.Name()))
	assert.Zero(t, clock.Pending())
}

func TestToggle_SaveFailureReenables(t *testing.T) {
	h := newHarness(t)
	h.svc = NewService(kv.NewStore(brokenBackend{Backend: h.backend}), h.bus, nil, nil)
	tg, clock, notices := newToggle(t, h)
	tg.Bind(product("1", 10))

	assert.True(t, tg.Activate())
	assert.Equal(t, ToggleView{Label: LabelAdd}, tg.View())
	assert.Equal(t, []string{NoticeSaveError}, *notices)
	assert.Zero(t, clock.Pending())
}
