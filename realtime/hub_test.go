package realtime

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEmitDeliversToSubscriber(t *testing.T) {
	hub := NewHub()
	channel := NotificationChannel(1)

	sub := hub.Subscribe(channel)
	defer hub.Unsubscribe(channel, sub)

	hub.Emit(channel, map[string]interface{}{
		"type":    "payment_approved",
		"message": "Your payment was approved",
	})

	select {
	case raw := <-sub.Messages:
		var event map[string]interface{}
		require.NoError(t, json.Unmarshal(raw, &event))
		require.Equal(t, "payment_approved", event["type"])
	default:
		t.Fatal("expected a message on the channel")
	}
}

func TestEmitWithoutSubscribersIsNoOp(t *testing.T) {
	hub := NewHub()

	// Must not panic or block.
	hub.Emit(ProgressChannel(1, 2), map[string]interface{}{"type": "progress_update"})
}

func TestEmitOnlyReachesMatchingChannel(t *testing.T) {
	hub := NewHub()

	mine := hub.Subscribe(ProgressChannel(1, 2))
	other := hub.Subscribe(ProgressChannel(1, 3))
	defer hub.Unsubscribe(ProgressChannel(1, 2), mine)
	defer hub.Unsubscribe(ProgressChannel(1, 3), other)

	hub.Emit(ProgressChannel(1, 2), map[string]interface{}{"type": "progress_update"})

	require.Len(t, mine.Messages, 1)
	require.Len(t, other.Messages, 0)
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	hub := NewHub()
	channel := NotificationChannel(5)

	sub := hub.Subscribe(channel)
	hub.Unsubscribe(channel, sub)

	_, open := <-sub.Messages
	require.False(t, open)

	// Emitting after unsubscribe must not reach the closed channel.
	hub.Emit(channel, map[string]interface{}{"type": "noop"})
}

func TestSlowSubscriberDropsMessages(t *testing.T) {
	hub := NewHub()
	channel := NotificationChannel(9)

	sub := hub.Subscribe(channel)
	defer hub.Unsubscribe(channel, sub)

	for i := 0; i < cap(sub.Messages)+5; i++ {
		hub.Emit(channel, map[string]interface{}{"type": "noop", "seq": i})
	}

	// The buffer caps out and the extras are dropped, never blocking.
	require.Len(t, sub.Messages, cap(sub.Messages))
}
