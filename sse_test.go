package main

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/goleak"
	"go.uber.org/zap"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		goleak.IgnoreTopFunction("net/http.(*persistConn).readLoop"),
		goleak.IgnoreTopFunction("net/http.(*persistConn).writeLoop"),
	)
}

func receive(t *testing.T, sub *subscriber) string {
	t.Helper()
	select {
	case msg := <-sub.ch:
		return msg
	case <-time.After(100 * time.Millisecond):
		t.Fatalf("subscriber on %s did not receive message", sub.topic)
		return ""
	}
}

func TestBroadcasterSubscribeUnsubscribe(t *testing.T) {
	b := NewBroadcaster(zap.NewNop())

	s1 := b.Subscribe("game1")
	s2 := b.Subscribe("game1")
	s3 := b.Subscribe("game2")

	if n := b.SubscriberCount("game1"); n != 2 {
		t.Fatalf("expected 2 subscribers for game1, got %d", n)
	}
	if n := b.SubscriberCount("game2"); n != 1 {
		t.Fatalf("expected 1 subscriber for game2, got %d", n)
	}

	b.Unsubscribe(s1)
	if n := b.SubscriberCount("game1"); n != 1 {
		t.Fatalf("expected 1 subscriber for game1 after unsubscribe, got %d", n)
	}
	if _, ok := <-s1.ch; ok {
		t.Fatal("channel should be closed after unsubscribe")
	}

	b.Unsubscribe(s2)
	b.Unsubscribe(s3)
	if b.SubscriberCount("game1") != 0 || b.SubscriberCount("game2") != 0 {
		t.Fatal("expected 0 subscribers after full unsubscribe")
	}
}

func TestBroadcasterDoubleUnsubscribe(t *testing.T) {
	b := NewBroadcaster(zap.NewNop())
	s := b.Subscribe("game1")
	b.Unsubscribe(s)
	b.Unsubscribe(s) // must not panic on the closed channel
}

func TestBroadcast(t *testing.T) {
	b := NewBroadcaster(zap.NewNop())

	s1 := b.Subscribe("game1")
	s2 := b.Subscribe("game1")
	s3 := b.Subscribe("game2")
	defer b.Unsubscribe(s1)
	defer b.Unsubscribe(s2)
	defer b.Unsubscribe(s3)

	b.Broadcast("game1", "hello")

	if msg := receive(t, s1); msg != "hello" {
		t.Fatalf("s1 expected 'hello', got %q", msg)
	}
	if msg := receive(t, s2); msg != "hello" {
		t.Fatalf("s2 expected 'hello', got %q", msg)
	}

	select {
	case <-s3.ch:
		t.Fatal("s3 should not receive game1 message")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestPublishAddsType(t *testing.T) {
	b := NewBroadcaster(zap.NewNop())
	s := b.Subscribe("trivia1")
	defer b.Unsubscribe(s)

	b.Publish("trivia1", "trivia_answer", map[string]any{"score": 2, "type": "ignored"})

	var evt map[string]any
	if err := json.Unmarshal([]byte(receive(t, s)), &evt); err != nil {
		t.Fatalf("decode event: %v", err)
	}
	if evt["type"] != "trivia_answer" {
		t.Fatalf("expected type trivia_answer, got %v", evt["type"])
	}
	if evt["score"] != float64(2) {
		t.Fatalf("expected score 2, got %v", evt["score"])
	}
}

func TestPublishUnencodable(t *testing.T) {
	b := NewBroadcaster(zap.NewNop())
	s := b.Subscribe("game1")
	defer b.Unsubscribe(s)

	b.Publish("game1", "bad", map[string]any{"ch": make(chan int)})

	select {
	case msg := <-s.ch:
		t.Fatalf("unexpected message %q", msg)
	default:
	}
}

func TestBroadcastSkipsFullChannel(t *testing.T) {
	b := NewBroadcaster(zap.NewNop())
	s := b.Subscribe("game1")
	defer b.Unsubscribe(s)

	for range sseChannelBuffer {
		b.Broadcast("game1", "fill")
	}

	// This should not block.
	b.Broadcast("game1", "overflow")

	if len(s.ch) != sseChannelBuffer {
		t.Fatalf("expected a full buffer of %d, got %d", sseChannelBuffer, len(s.ch))
	}
}

func TestServeSSESubscribesBeforeInitial(t *testing.T) {
	b := NewBroadcaster(zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	req := httptest.NewRequest("GET", "/api/games/game1/events", nil).WithContext(ctx)
	w := httptest.NewRecorder()

	subscribed := -1
	b.ServeSSE(w, req, "game1", func() string {
		subscribed = b.SubscriberCount("game1")
		return `{"type":"game_state"}`
	})

	if subscribed != 1 {
		t.Fatalf("initial event built with %d subscribers, want 1", subscribed)
	}
	if !strings.Contains(w.Body.String(), `data: {"type":"game_state"}`) {
		t.Fatalf("initial event not sent: %q", w.Body.String())
	}
	if n := b.SubscriberCount("game1"); n != 0 {
		t.Fatalf("expected subscriber removed after disconnect, got %d", n)
	}
}

func TestBroadcasterConcurrent(t *testing.T) {
	b := NewBroadcaster(zap.NewNop())
	var wg sync.WaitGroup

	for i := range 50 {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			topic := "game1"
			if i%2 == 0 {
				topic = "trivia1"
			}
			s := b.Subscribe(topic)
			b.Publish(topic, "cursor", nil)
			b.SubscriberCount(topic)
			b.Unsubscribe(s)
		}(i)
	}
	wg.Wait()

	if b.SubscriberCount("game1") != 0 || b.SubscriberCount("trivia1") != 0 {
		t.Fatal("expected 0 subscribers after concurrent test")
	}
}
