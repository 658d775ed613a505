package events

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/FGPE-Erasmus/lightweight-fgpe-server/internal/progression"
)

func testEvent() *progression.SolvedEvent {
	return &progression.SolvedEvent{
		ID:         uuid.New(),
		PlayerID:   1,
		GameID:     2,
		ExerciseID: 3,
		RewardIDs:  []int64{10},
		Unlocked:   true,
		SolvedAt:   time.Now(),
	}
}

func TestPublisherPublishSolved(t *testing.T) {
	var gotQueue string
	var gotData any
	pub := newPublisher(func(_ context.Context, queue string, data any) error {
		gotQueue = queue
		gotData = data
		return nil
	}, nil)

	ev := testEvent()
	if err := pub.PublishSolved(context.Background(), ev); err != nil {
		t.Fatalf("publish: %v", err)
	}

	if gotQueue != SolvedQueueName {
		t.Errorf("queue = %q, want %q", gotQueue, SolvedQueueName)
	}
	if gotData != ev {
		t.Errorf("published payload = %v, want the event", gotData)
	}
}

func TestPublisherRetriesTransientFailure(t *testing.T) {
	attempts := 0
	pub := newPublisher(func(context.Context, string, any) error {
		attempts++
		if attempts < 2 {
			return errors.New("transient")
		}
		return nil
	}, nil)

	if err := pub.PublishSolved(context.Background(), testEvent()); err != nil {
		t.Fatalf("publish should succeed on retry, got %v", err)
	}
	if attempts != 2 {
		t.Errorf("attempts = %d, want 2", attempts)
	}
}

func TestPublisherPropagatesPersistentFailure(t *testing.T) {
	pub := newPublisher(func(context.Context, string, any) error {
		return errors.New("broker down")
	}, nil)

	if err := pub.PublishSolved(context.Background(), testEvent()); err == nil {
		t.Fatal("publish should fail when every attempt fails")
	}
}
