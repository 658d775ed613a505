package progression

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// SolvedEvent announces a committed first-correct submission together with
// the side effects it produced. It is published after the transaction
// commits; delivery is best-effort and never affects the submission result.
type SolvedEvent struct {
	ID         uuid.UUID `json:"id"`
	PlayerID   int64     `json:"player_id"`
	GameID     int64     `json:"game_id"`
	ExerciseID int64     `json:"exercise_id"`
	RewardIDs  []int64   `json:"reward_ids,omitempty"`
	Unlocked   bool      `json:"unlocked"`
	SolvedAt   time.Time `json:"solved_at"`
}

// EventPublisher delivers progression events to external consumers.
type EventPublisher interface {
	PublishSolved(ctx context.Context, ev *SolvedEvent) error
}
