package pubsub

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBroker_PublishReachesSubscribers(t *testing.T) {
	broker := NewBroker()
	defer broker.Close()

	ch1, unsub1 := broker.Subscribe(TopicSettingsChanged)
	defer unsub1()
	ch2, unsub2 := broker.Subscribe(TopicSettingsChanged)
	defer unsub2()

	broker.Publish(TopicSettingsChanged, "new-settings")

	for _, ch := range []<-chan Message{ch1, ch2} {
		select {
		case msg := <-ch:
			assert.Equal(t, TopicSettingsChanged, msg.Topic)
			assert.Equal(t, "new-settings", msg.Payload)
		case <-time.After(time.Second):
			t.Fatal("expected message was not delivered")
		}
	}
}

func TestBroker_TopicsAreIsolated(t *testing.T) {
	broker := NewBroker()
	defer broker.Close()

	ch, unsub := broker.Subscribe(TopicCapabilitiesChanged)
	defer unsub()

	broker.Publish(TopicSettingsChanged, "settings-only")

	select {
	case msg := <-ch:
		t.Fatalf("unexpected message on capabilities topic: %+v", msg)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestBroker_UnsubscribeStopsDelivery(t *testing.T) {
	broker := NewBroker()
	defer broker.Close()

	ch, unsub := broker.Subscribe(TopicSettingsChanged)
	unsub()

	// Channel is closed on unsubscribe
	_, open := <-ch
	assert.False(t, open)

	// Publishing after unsubscribe must not panic
	broker.Publish(TopicSettingsChanged, "ignored")
}

func TestBroker_SlowSubscriberDoesNotBlockPublish(t *testing.T) {
	broker := NewBroker()
	defer broker.Close()

	ch, unsub := broker.Subscribe(TopicSettingsChanged)
	defer unsub()

	// Overflow the subscriber buffer; extra messages are dropped
	for i := 0; i < 100; i++ {
		broker.Publish(TopicSettingsChanged, i)
	}

	received := 0
	for {
		select {
		case <-ch:
			received++
		default:
			require.LessOrEqual(t, received, 16)
			assert.Positive(t, received)
			return
		}
	}
}

func TestBroker_CloseIsIdempotent(t *testing.T) {
	broker := NewBroker()

	ch, _ := broker.Subscribe(TopicSettingsChanged)

	broker.Close()
	broker.Close()

	_, open := <-ch
	assert.False(t, open)
}
