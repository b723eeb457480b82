package cache

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestMemorySessionsLatestWins(t *testing.T) {
	ctx := context.Background()
	s := NewMemorySessions()

	if _, err := s.Get(ctx, "login:student:11"); !errors.Is(err, ErrNoSession) {
		t.Fatalf("empty store err = %v", err)
	}

	_ = s.Put(ctx, "login:student:11", "first", time.Hour)
	_ = s.Put(ctx, "login:student:11", "second", time.Hour)

	got, err := s.Get(ctx, "login:student:11")
	if err != nil || got != "second" {
		t.Fatalf("Get = %q, %v; want second", got, err)
	}

	_ = s.Delete(ctx, "login:student:11")
	if _, err := s.Get(ctx, "login:student:11"); !errors.Is(err, ErrNoSession) {
		t.Errorf("after delete err = %v", err)
	}
}

func TestMemorySessionsExpire(t *testing.T) {
	ctx := context.Background()
	s := NewMemorySessions()
	now := time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	_ = s.Put(ctx, "k", "jti", time.Minute)
	now = now.Add(59 * time.Second)
	if _, err := s.Get(ctx, "k"); err != nil {
		t.Fatalf("before expiry: %v", err)
	}
	now = now.Add(time.Second)
	if _, err := s.Get(ctx, "k"); !errors.Is(err, ErrNoSession) {
		t.Errorf("at expiry err = %v, want ErrNoSession", err)
	}
}

func TestMemoryBrokerFanOut(t *testing.T) {
	ctx := context.Background()
	b := NewMemoryBroker()

	a, _ := b.Subscribe(ctx, "class:DMS:live")
	c, _ := b.Subscribe(ctx, "class:DMS:live")
	other, _ := b.Subscribe(ctx, "class:TOC:live")
	defer a.Close()
	defer c.Close()
	defer other.Close()

	if err := b.Publish(ctx, "class:DMS:live", []byte("hello")); err != nil {
		t.Fatal(err)
	}

	for i, sub := range []Subscription{a, c} {
		select {
		case msg := <-sub.Messages():
			if string(msg) != "hello" {
				t.Errorf("sub %d got %q", i, msg)
			}
		case <-time.After(time.Second):
			t.Fatalf("sub %d received nothing", i)
		}
	}

	select {
	case msg := <-other.Messages():
		t.Errorf("other channel received %q", msg)
	default:
	}
}

func TestMemoryBrokerDropsWhenFull(t *testing.T) {
	ctx := context.Background()
	b := NewMemoryBroker()
	sub, _ := b.Subscribe(ctx, "ch")
	defer sub.Close()

	for i := 0; i < subscriberBuffer+5; i++ {
		if err := b.Publish(ctx, "ch", []byte("x")); err != nil {
			t.Fatal(err)
		}
	}
	if got := len(sub.Messages()); got != subscriberBuffer {
		t.Errorf("buffered = %d, want %d", got, subscriberBuffer)
	}
}

func TestMemoryBrokerCloseStopsDelivery(t *testing.T) {
	ctx := context.Background()
	b := NewMemoryBroker()
	sub, _ := b.Subscribe(ctx, "ch")

	_ = sub.Close()
	_ = sub.Close()

	if _, ok := <-sub.Messages(); ok {
		t.Error("channel still open after Close")
	}
	if err := b.Publish(ctx, "ch", []byte("late")); err != nil {
		t.Errorf("publish after close: %v", err)
	}
}
