package broadcast

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func recvEvent(t *testing.T, ch <-chan Event) Event {
	t.Helper()
	select {
	case ev, ok := <-ch:
		require.True(t, ok, "channel closed before delivery")
		return ev
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
		return Event{}
	}
}

func TestBroadcastDeliversToTopicSubscribers(t *testing.T) {
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a := hub.Subscribe(ctx, []string{"story:s1"}, nil)
	b := hub.Subscribe(ctx, []string{"story:s1", "post:p1"}, nil)
	other := hub.Subscribe(ctx, []string{"story:s2"}, nil)

	hub.Broadcast(Event{Topic: "story:s1", Kind: "story.clap", SubjectKey: "s1", ActorKey: "u1"})

	ev := recvEvent(t, a)
	assert.Equal(t, "story.clap", ev.Kind)
	assert.False(t, ev.At.IsZero())
	assert.Equal(t, "story.clap", recvEvent(t, b).Kind)

	select {
	case ev := <-other:
		t.Fatalf("unrelated subscriber got %+v", ev)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestFilterSuppressesPerSubscriber(t *testing.T) {
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	self := "u1"
	mine := hub.Subscribe(ctx, []string{"post:p1"}, func(ev Event) (Event, bool) {
		return ev, ev.ActorKey != self
	})
	theirs := hub.Subscribe(ctx, []string{"post:p1"}, nil)

	hub.Broadcast(Event{Topic: "post:p1", Kind: "post.clap", ActorKey: "u1"})
	hub.Broadcast(Event{Topic: "post:p1", Kind: "post.comment", ActorKey: "u2"})

	// The self-suppressing subscriber only sees the second event.
	assert.Equal(t, "post.comment", recvEvent(t, mine).Kind)
	assert.Equal(t, "post.clap", recvEvent(t, theirs).Kind)
	assert.Equal(t, "post.comment", recvEvent(t, theirs).Kind)
}

func TestFullMailboxDropsOldest(t *testing.T) {
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch := hub.Subscribe(ctx, []string{"story:s1"}, nil)

	for i := 0; i < MailboxSize+1; i++ {
		hub.Broadcast(Event{Topic: "story:s1", Kind: "story.clap", SubjectKey: string(rune('a' + i%26))})
	}

	// The first event was dropped to admit the newest; the queue holds
	// exactly MailboxSize events.
	count := 0
	for {
		select {
		case <-ch:
			count++
		case <-time.After(50 * time.Millisecond):
			assert.Equal(t, MailboxSize, count)
			return
		}
	}
}

func TestBroadcastSurvivesConcurrentUnsubscribe(t *testing.T) {
	hub := NewHub()

	var cancels []context.CancelFunc
	for i := 0; i < 200; i++ {
		ctx, cancel := context.WithCancel(context.Background())
		cancels = append(cancels, cancel)
		ch := hub.Subscribe(ctx, []string{"story:s1"}, nil)
		go func() {
			for range ch {
			}
		}()
	}

	// Tear every subscription down while broadcasts are in flight. A
	// producer must stay isolated from subscriber lifecycle.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for _, cancel := range cancels {
			cancel()
		}
	}()
	for i := 0; i < 500; i++ {
		hub.Broadcast(Event{Topic: "story:s1", Kind: "story.clap", SubjectKey: "s1"})
	}
	<-done

	assert.Eventually(t, func() bool {
		return hub.SubscriberCount("story:s1") == 0
	}, time.Second, 10*time.Millisecond)
}

func TestCancelDeregistersAndClosesMailbox(t *testing.T) {
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())

	ch := hub.Subscribe(ctx, []string{"story:s1"}, nil)
	require.Equal(t, 1, hub.SubscriberCount("story:s1"))

	cancel()

	select {
	case _, ok := <-ch:
		assert.False(t, ok, "mailbox should be closed")
	case <-time.After(time.Second):
		t.Fatal("mailbox not closed after cancel")
	}
	assert.Eventually(t, func() bool {
		return hub.SubscriberCount("story:s1") == 0
	}, time.Second, 10*time.Millisecond)
}
