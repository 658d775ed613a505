//go:build integration

package events_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/rabbitmq"

	"github.com/FGPE-Erasmus/lightweight-fgpe-server/internal/events"
	"github.com/FGPE-Erasmus/lightweight-fgpe-server/internal/progression"
)

func setupRabbitMQ(t *testing.T) string {
	t.Helper()
	ctx := context.Background()

	container, err := rabbitmq.Run(ctx, "rabbitmq:3.12-management")
	if err != nil {
		t.Fatalf("failed to start RabbitMQ container: %v", err)
	}
	t.Cleanup(func() {
		if err := testcontainers.TerminateContainer(container); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	amqpURL, err := container.AmqpURL(ctx)
	if err != nil {
		t.Fatalf("failed to get AMQP URL: %v", err)
	}
	return amqpURL
}

func TestIntegration_Connection_ConnectAndClose(t *testing.T) {
	amqpURL := setupRabbitMQ(t)

	conn, err := events.NewConnection(amqpURL)
	if err != nil {
		t.Fatalf("failed to create connection: %v", err)
	}

	if !conn.IsConnected() {
		t.Error("expected connection to be active")
	}

	if err := conn.Close(); err != nil {
		t.Errorf("failed to close connection: %v", err)
	}
}

func TestIntegration_Connection_InvalidURL(t *testing.T) {
	if _, err := events.NewConnection("amqp://invalid:5672"); err == nil {
		t.Error("expected error for invalid URL")
	}
}

func TestIntegration_Publisher_PublishSolved(t *testing.T) {
	amqpURL := setupRabbitMQ(t)

	conn, err := events.NewConnection(amqpURL)
	if err != nil {
		t.Fatalf("failed to create connection: %v", err)
	}
	defer conn.Close()

	pub := events.NewPublisher(conn, nil)

	ev := &progression.SolvedEvent{
		ID:         uuid.New(),
		PlayerID:   1,
		GameID:     2,
		ExerciseID: 3,
		RewardIDs:  []int64{10, 11},
		Unlocked:   true,
		SolvedAt:   time.Now(),
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := pub.PublishSolved(ctx, ev); err != nil {
		t.Fatalf("publish: %v", err)
	}

	// Consume the message back and verify the payload round-trips.
	msgs, err := conn.Channel().Consume(events.SolvedQueueName, "", true, false, false, false, nil)
	if err != nil {
		t.Fatalf("consume: %v", err)
	}

	select {
	case msg := <-msgs:
		var got progression.SolvedEvent
		if err := json.Unmarshal(msg.Body, &got); err != nil {
			t.Fatalf("unmarshal delivered event: %v", err)
		}
		if got.ID != ev.ID || got.PlayerID != ev.PlayerID || got.ExerciseID != ev.ExerciseID {
			t.Errorf("delivered event = %+v, want %+v", got, ev)
		}
		if len(got.RewardIDs) != 2 {
			t.Errorf("reward ids = %v, want both", got.RewardIDs)
		}
	case <-ctx.Done():
		t.Fatal("timed out waiting for the published event")
	}
}
