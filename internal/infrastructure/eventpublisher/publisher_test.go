package eventpublisher

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/walletledger/internal/domain"
	"github.com/iho/walletledger/internal/usecase"
)

func TestProcessBatchPublishesAndMarks(t *testing.T) {
	repo := &stubOutboxRepo{
		events: []*domain.OutboxEvent{{ID: "evt-1", EventType: domain.EventTypeEntryPosted}},
	}
	pub := &stubPublisher{}
	ep := newTestPublisher(repo, pub)

	n, err := ep.ProcessBatch(context.Background())
	if err != nil {
		t.Fatalf("ProcessBatch failed: %v", err)
	}

	if n != 1 || len(pub.published) != 1 {
		t.Fatalf("expected one published event, got %d", len(pub.published))
	}
	if len(repo.marked) != 1 || repo.marked[0] != "evt-1" {
		t.Fatalf("expected event to be marked published, got %#v", repo.marked)
	}
}

func TestProcessBatchStopsAtFirstFailure(t *testing.T) {
	repo := &stubOutboxRepo{
		events: []*domain.OutboxEvent{
			{ID: "evt-1", EventType: "type"},
			{ID: "evt-2", EventType: "type"},
			{ID: "evt-3", EventType: "type"},
		},
	}
	pub := &stubPublisher{
		errorsByID: map[string]error{"evt-2": errors.New("fail")},
	}
	ep := newTestPublisher(repo, pub)

	n, err := ep.ProcessBatch(context.Background())
	if err != nil {
		t.Fatalf("ProcessBatch returned error: %v", err)
	}

	if n != 1 || len(pub.published) != 1 || pub.published[0].ID != "evt-1" {
		t.Fatalf("expected only evt-1 to be published, got %#v", pub.published)
	}
	if len(repo.marked) != 1 || repo.marked[0] != "evt-1" {
		t.Fatalf("expected only evt-1 to be marked, got %#v", repo.marked)
	}
}

func TestProcessBatchRepositoryError(t *testing.T) {
	repo := &stubOutboxRepo{fetchErr: errors.New("db down")}
	ep := newTestPublisher(repo, &stubPublisher{})

	if _, err := ep.ProcessBatch(context.Background()); err == nil {
		t.Fatal("expected fetch error")
	}
}

func TestPurgeRespectsRetention(t *testing.T) {
	repo := &stubOutboxRepo{}
	ep := newTestPublisher(repo, &stubPublisher{})
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	ep.now = func() time.Time { return now }
	ep.retention = 24 * time.Hour

	if err := ep.purge(context.Background()); err != nil {
		t.Fatalf("purge failed: %v", err)
	}
	if err := ep.purge(context.Background()); err != nil {
		t.Fatalf("purge failed: %v", err)
	}

	if len(repo.purged) != 1 {
		t.Fatalf("expected one purge within the hour, got %d", len(repo.purged))
	}
	if !repo.purged[0].Equal(now.Add(-24 * time.Hour)) {
		t.Fatalf("unexpected cutoff %v", repo.purged[0])
	}
}

func TestStartStopsOnContextCancellation(t *testing.T) {
	repo := &stubOutboxRepo{}
	pub := &stubPublisher{}
	ep := newTestPublisher(repo, pub)
	ep.interval = 10 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- ep.Start(ctx)
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context canceled, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("publisher did not stop after cancel")
	}
}

func TestLogPublisher(t *testing.T) {
	p := NewLogPublisher(zerolog.Nop())
	if err := p.Publish(context.Background(), &domain.OutboxEvent{ID: "evt-1"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func newTestPublisher(repo *stubOutboxRepo, pub *stubPublisher) *EventPublisher {
	return NewEventPublisher(Config{
		OutboxRepo: repo,
		Publisher:  pub,
		Logger:     zerolog.Nop(),
		BatchSize:  10,
		Interval:   5 * time.Millisecond,
	})
}

type stubOutboxRepo struct {
	mu       sync.Mutex
	events   []*domain.OutboxEvent
	marked   []string
	purged   []time.Time
	fetchErr error
}

func (s *stubOutboxRepo) Create(ctx context.Context, tx usecase.Transaction, event *domain.OutboxEvent) error {
	return nil
}

func (s *stubOutboxRepo) GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fetchErr != nil {
		return nil, s.fetchErr
	}
	if len(s.events) <= limit {
		return append([]*domain.OutboxEvent(nil), s.events...), nil
	}
	return append([]*domain.OutboxEvent(nil), s.events[:limit]...), nil
}

func (s *stubOutboxRepo) MarkPublished(ctx context.Context, id string, publishedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.marked = append(s.marked, id)
	return nil
}

func (s *stubOutboxRepo) DeletePublished(ctx context.Context, before time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.purged = append(s.purged, before)
	return nil
}

type stubPublisher struct {
	published  []*domain.OutboxEvent
	errorsByID map[string]error
}

func (s *stubPublisher) Publish(ctx context.Context, event *domain.OutboxEvent) error {
	if err := s.errorsByID[event.ID]; err != nil {
		return err
	}
	s.published = append(s.published, event)
	return nil
}
