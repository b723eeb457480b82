package cache

import (
	"context"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
)

// subscriberBuffer is the number of undelivered messages held per subscriber
// before new ones are dropped.
const subscriberBuffer = 16

// Broker fans messages out to every subscriber of a channel.
type Broker interface {
	Publish(ctx context.Context, channel string, payload []byte) error
	Subscribe(ctx context.Context, channel string) (Subscription, error)
}

// Subscription delivers payloads until Close is called.
type Subscription interface {
	Messages() <-chan []byte
	Close() error
}

// RedisBroker uses Redis Pub/Sub so events reach subscribers on every node.
type RedisBroker struct {
	rdb *redis.Client
}

// NewRedisBroker creates a Pub/Sub broker.
func NewRedisBroker(rdb *redis.Client) *RedisBroker {
	return &RedisBroker{rdb: rdb}
}

func (b *RedisBroker) Publish(ctx context.Context, channel string, payload []byte) error {
	if err := b.rdb.Publish(ctx, channel, payload).Err(); err != nil {
		return fmt.Errorf("publish %s: %w", channel, err)
	}
	return nil
}

func (b *RedisBroker) Subscribe(ctx context.Context, channel string) (Subscription, error) {
	ps := b.rdb.Subscribe(ctx, channel)
	// Wait for the subscription confirmation so no publish is missed.
	if _, err := ps.Receive(ctx); err != nil {
		ps.Close()
		return nil, fmt.Errorf("subscribe %s: %w", channel, err)
	}

	sub := &redisSubscription{ps: ps, out: make(chan []byte, subscriberBuffer)}
	go sub.pump()
	return sub, nil
}

type redisSubscription struct {
	ps  *redis.PubSub
	out chan []byte
}

func (s *redisSubscription) pump() {
	defer close(s.out)
	for msg := range s.ps.Channel() {
		select {
		case s.out <- []byte(msg.Payload):
		default:
		}
	}
}

func (s *redisSubscription) Messages() <-chan []byte { return s.out }

func (s *redisSubscription) Close() error { return s.ps.Close() }

// MemoryBroker is an in-process Broker. Slow subscribers lose messages instead
// of blocking publishers.
type MemoryBroker struct {
	mu     sync.RWMutex
	nextID int
	subs   map[string]map[int]chan []byte
}

// NewMemoryBroker creates an empty broker.
func NewMemoryBroker() *MemoryBroker {
	return &MemoryBroker{subs: make(map[string]map[int]chan []byte)}
}

func (b *MemoryBroker) Publish(_ context.Context, channel string, payload []byte) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, ch := range b.subs[channel] {
		msg := append([]byte(nil), payload...)
		select {
		case ch <- msg:
		default:
		}
	}
	return nil
}

func (b *MemoryBroker) Subscribe(_ context.Context, channel string) (Subscription, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	ch := make(chan []byte, subscriberBuffer)
	if b.subs[channel] == nil {
		b.subs[channel] = make(map[int]chan []byte)
	}
	b.subs[channel][id] = ch

	return &memorySubscription{broker: b, channel: channel, id: id, ch: ch}, nil
}

func (b *MemoryBroker) unsubscribe(channel string, id int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	ch, ok := b.subs[channel][id]
	if !ok {
		return
	}
	delete(b.subs[channel], id)
	if len(b.subs[channel]) == 0 {
		delete(b.subs, channel)
	}
	close(ch)
}

type memorySubscription struct {
	broker  *MemoryBroker
	channel string
	id      int
	ch      chan []byte
	once    sync.Once
}

func (s *memorySubscription) Messages() <-chan []byte { return s.ch }

func (s *memorySubscription) Close() error {
	s.once.Do(func() { s.broker.unsubscribe(s.channel, s.id) })
	return nil
}
