package notifier

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoopbackNotifierFanout(t *testing.T) {
	n := NewLoopbackNotifier()
	ctx := context.Background()

	slotCalls, bookingCalls := 0, 0
	_, err := n.Subscribe(ctx, func() { slotCalls++ }, func() { bookingCalls++ })
	require.NoError(t, err)

	require.NoError(t, n.SlotsChanged(ctx))
	require.NoError(t, n.SlotsChanged(ctx))
	require.NoError(t, n.BookingsChanged(ctx))

	assert.Equal(t, 2, slotCalls)
	assert.Equal(t, 1, bookingCalls)
}

func TestLoopbackNotifierUnsubscribe(t *testing.T) {
	n := NewLoopbackNotifier()
	ctx := context.Background()

	calls := 0
	unsubscribe, err := n.Subscribe(ctx, func() { calls++ }, func() {})
	require.NoError(t, err)

	// A second observer keeps receiving after the first leaves.
	otherCalls := 0
	_, err = n.Subscribe(ctx, func() { otherCalls++ }, func() {})
	require.NoError(t, err)

	unsubscribe()
	require.NoError(t, n.SlotsChanged(ctx))

	assert.Zero(t, calls)
	assert.Equal(t, 1, otherCalls)
}
