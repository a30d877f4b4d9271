package eventpublisher

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/iho/walletledger/internal/domain"
)

func TestRedisPublisherPublishesJSON(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	sub := client.Subscribe(ctx, "walletledger.events")
	defer sub.Close()
	if _, err := sub.Receive(ctx); err != nil {
		t.Fatalf("subscribe failed: %v", err)
	}

	p := NewRedisPublisher(client, "walletledger.events")
	err := p.Publish(ctx, &domain.OutboxEvent{
		ID:            "evt-1",
		EventType:     domain.EventTypeEntryReversed,
		AggregateType: "entry",
		AggregateID:   "e1",
		Payload:       map[string]any{"amount": "10"},
	})
	if err != nil {
		t.Fatalf("publish failed: %v", err)
	}

	msg, err := sub.ReceiveMessage(ctx)
	if err != nil {
		t.Fatalf("receive failed: %v", err)
	}

	var got Message
	if err := json.Unmarshal([]byte(msg.Payload), &got); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if got.ID != "evt-1" || got.EventType != domain.EventTypeEntryReversed || got.Payload["amount"] != "10" {
		t.Fatalf("unexpected message %+v", got)
	}
}

func TestRedisPublisherServerDown(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	defer client.Close()
	mr.Close()

	err := NewRedisPublisher(client, "ch").Publish(context.Background(), &domain.OutboxEvent{ID: "evt-1"})
	if err == nil {
		t.Fatal("expected publish error")
	}
}
