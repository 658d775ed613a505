package events

import (
	"context"
	"log/slog"
	"time"

	"github.com/felixgeelhaar/fortify/circuitbreaker"
	"github.com/felixgeelhaar/fortify/retry"

	"github.com/FGPE-Erasmus/lightweight-fgpe-server/internal/progression"
)

// publishFunc is the transport hook behind the publisher.
type publishFunc func(ctx context.Context, queue string, data any) error

// Publisher publishes progression events over RabbitMQ, wrapped with retry
// and a circuit breaker so a flapping broker does not stall submission
// processing.
type Publisher struct {
	publish        publishFunc
	circuitBreaker circuitbreaker.CircuitBreaker[struct{}]
	retrier        retry.Retry[struct{}]
	logger         *slog.Logger
}

// NewPublisher creates a publisher over an open connection.
func NewPublisher(conn *Connection, logger *slog.Logger) *Publisher {
	return newPublisher(conn.PublishJSON, logger)
}

func newPublisher(publish publishFunc, logger *slog.Logger) *Publisher {
	if logger == nil {
		logger = slog.Default()
	}

	p := &Publisher{publish: publish, logger: logger}

	p.circuitBreaker = circuitbreaker.New[struct{}](circuitbreaker.Config{
		MaxRequests: 2,
		Interval:    10 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts circuitbreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(from, to circuitbreaker.State) {
			p.logger.Warn("event publisher circuit breaker state change",
				"from", from.String(),
				"to", to.String())
		},
	})

	p.retrier = retry.New[struct{}](retry.Config{
		MaxAttempts:   3,
		InitialDelay:  500 * time.Millisecond,
		MaxDelay:      5 * time.Second,
		Multiplier:    2.0,
		BackoffPolicy: retry.BackoffExponential,
		Jitter:        true,
	})

	return p
}

// PublishSolved publishes a solved event to the progression queue.
func (p *Publisher) PublishSolved(ctx context.Context, event *progression.SolvedEvent) error {
	_, err := p.circuitBreaker.Execute(ctx, func(ctx context.Context) (struct{}, error) {
		return p.retrier.Do(ctx, func(ctx context.Context) (struct{}, error) {
			return struct{}{}, p.publish(ctx, SolvedQueueName, event)
		})
	})
	if err != nil {
		return err
	}

	p.logger.Info("published solved event",
		"event_id", event.ID,
		"player_id", event.PlayerID,
		"game_id", event.GameID,
		"exercise_id", event.ExerciseID,
	)
	return nil
}

var _ progression.EventPublisher = (*Publisher)(nil)
