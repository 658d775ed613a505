// Package progression implements the gamification engine: submission
// processing with first-correct detection, the exercise visibility
// resolver, the unlock ledger, and the player-facing lifecycle operations
// around them. All state lives in a domain.Store; the package holds no
// mutable state of its own.
package progression

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/FGPE-Erasmus/lightweight-fgpe-server/internal/domain"
)

// Service exposes the engine's operations. Construct with NewService; the
// event publisher is optional and set separately.
type Service struct {
	store  domain.Store
	events EventPublisher // optional: announces committed first-correct solutions
}

// NewService creates a progression service over a store.
func NewService(store domain.Store) *Service {
	return &Service{store: store}
}

// SetEventPublisher sets the optional publisher notified after a
// first-correct submission commits.
func (s *Service) SetEventPublisher(p EventPublisher) {
	s.events = p
}

// AvailableGames returns the IDs of games that are public and active.
func (s *Service) AvailableGames(ctx context.Context) ([]int64, error) {
	ids, err := s.store.Games().ListAvailable(ctx)
	if err != nil {
		return nil, fmt.Errorf("list available games: %w", err)
	}
	return ids, nil
}

// UnlockExercise permanently bypasses the hidden/locked computation of one
// exercise for one player. Unlocking an already-unlocked pair is a no-op.
func (s *Service) UnlockExercise(ctx context.Context, playerID, exerciseID int64) error {
	if err := s.store.Unlocks().Insert(ctx, playerID, exerciseID, time.Now()); err != nil {
		return fmt.Errorf("unlock exercise %d for player %d: %w", exerciseID, playerID, err)
	}

	slog.Info("exercise unlocked",
		"player_id", playerID,
		"exercise_id", exerciseID,
	)
	return nil
}
