package bus

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	numbers = NewTopic[int]("numbers")
	words   = NewTopic[string]("words")
)

func TestPublish_RunsHandlersInSubscriptionOrder(t *testing.T) {
	b := New()
	var got []string

	Subscribe(b, numbers, func(n int) { got = append(got, "first") })
	Subscribe(b, numbers, func(n int) { got = append(got, "second") })
	Subscribe(b, words, func(string) { got = append(got, "other topic") })

	Publish(b, numbers, 1)

	assert.Equal(t, []string{"first", "second"}, got)
}

func TestPublish_IsSynchronous(t *testing.T) {
	b := New()
	seen := 0
	Subscribe(b, numbers, func(n int) { seen = n })

	Publish(b, numbers, 42)

	require.Equal(t, 42, seen, "handler must have run before Publish returned")
}

func TestSubscribe_LateSubscriberMissesEarlierPublish(t *testing.T) {
	b := New()
	Publish(b, numbers, 1)

	calls := 0
	Subscribe(b, numbers, func(int) { calls++ })

	assert.Zero(t, calls)
	Publish(b, numbers, 2)
	assert.Equal(t, 1, calls)
}

func TestSubscribe_DuringDispatchDoesNotSeeCurrentPublish(t *testing.T) {
	b := New()
	lateCalls := 0
	Subscribe(b, numbers, func(int) {
		Subscribe(b, numbers, func(int) { lateCalls++ })
	})

	Publish(b, numbers, 1)
	assert.Zero(t, lateCalls)

	Publish(b, numbers, 2)
	assert.Equal(t, 1, lateCalls)
}

func TestUnsubscribe_DuringDispatchSkipsPendingHandler(t *testing.T) {
	b := New()
	var unsubscribeSecond func()
	secondCalls := 0

	Subscribe(b, numbers, func(int) { unsubscribeSecond() })
	unsubscribeSecond = Subscribe(b, numbers, func(int) { secondCalls++ })

	Publish(b, numbers, 1)

	assert.Zero(t, secondCalls)
	assert.Equal(t, 1, b.Len(numbers.Name()))
}

func TestUnsubscribe_IsIdempotent(t *testing.T) {
	b := New()
	calls := 0
	unsubscribe := Subscribe(b, numbers, func(int) { calls++ })
	keep := Subscribe(b, numbers, func(int) {})
	defer keep()

	unsubscribe()
	unsubscribe()

	Publish(b, numbers, 1)
	assert.Zero(t, calls)
	assert.Equal(t, 1, b.Len(numbers.Name()))
}

func TestHandlerInvokedOncePerPublish(t *testing.T) {
	b := New()
	calls := 0
	Subscribe(b, words, func(string) { calls++ })

	Publish(b, words, "a")
	Publish(b, words, "b")
	Publish(b, words, "c")

	assert.Equal(t, 3, calls)
}

func TestNilBusIsInert(t *testing.T) {
	var b *Bus
	unsubscribe := Subscribe(b, numbers, func(int) { t.Fatal("handler on nil bus") })
	Publish(b, numbers, 1)
	unsubscribe()
}
