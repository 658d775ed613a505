package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/FGPE-Erasmus/lightweight-fgpe-server/internal/domain"
)

// RewardStore reads the reward catalog and accumulates grants.
type RewardStore struct {
	s *Store
}

// ValidPeriod returns the reward's validity duration. A NULL period is a
// catalog configuration error, not an infinite validity.
func (r *RewardStore) ValidPeriod(ctx context.Context, rewardID int64) (time.Duration, error) {
	var secs sql.NullInt64
	err := r.s.q().QueryRow(ctx,
		"SELECT valid_period_secs FROM rewards WHERE id = $1", rewardID).Scan(&secs)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, domain.ErrRewardNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("read reward period: %w", err)
	}
	if !secs.Valid {
		return 0, domain.ErrRewardMisconfigured
	}
	return time.Duration(secs.Int64) * time.Second, nil
}

// Grant upserts the (player, reward, game) accumulator.
func (r *RewardStore) Grant(ctx context.Context, playerID, rewardID, gameID int64, obtainedAt, expiresAt time.Time) error {
	_, err := r.s.q().Exec(ctx, `
		INSERT INTO player_rewards (player_id, reward_id, game_id, count, used_count, obtained_at, expires_at)
		VALUES ($1, $2, $3, 1, 0, $4, $5)
		ON CONFLICT (player_id, reward_id, game_id)
		DO UPDATE SET count = player_rewards.count + 1, expires_at = EXCLUDED.expires_at`,
		playerID, rewardID, gameID, obtainedAt, expiresAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("grant reward: %w", err)
	}
	return nil
}

// Get returns the accumulator row.
func (r *RewardStore) Get(ctx context.Context, playerID, rewardID, gameID int64) (*domain.PlayerReward, error) {
	pr := &domain.PlayerReward{}
	err := r.s.q().QueryRow(ctx, `
		SELECT id, player_id, reward_id, game_id, count, used_count, obtained_at, expires_at
		FROM player_rewards
		WHERE player_id = $1 AND reward_id = $2 AND game_id = $3`,
		playerID, rewardID, gameID).
		Scan(&pr.ID, &pr.PlayerID, &pr.RewardID, &pr.GameID, &pr.Count,
			&pr.UsedCount, &pr.ObtainedAt, &pr.ExpiresAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrRewardNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read player reward: %w", err)
	}
	return pr, nil
}

// UnlockStore is the idempotent player-exercise unlock ledger.
type UnlockStore struct {
	s *Store
}

// Insert records an unlock, doing nothing if one already exists.
func (u *UnlockStore) Insert(ctx context.Context, playerID, exerciseID int64, unlockedAt time.Time) error {
	_, err := u.s.q().Exec(ctx, `
		INSERT INTO player_unlocks (player_id, exercise_id, unlocked_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (player_id, exercise_id) DO NOTHING`,
		playerID, exerciseID, unlockedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("insert unlock: %w", err)
	}
	return nil
}

// Exists reports whether the player holds an unlock for the exercise.
func (u *UnlockStore) Exists(ctx context.Context, playerID, exerciseID int64) (bool, error) {
	var exists bool
	err := u.s.q().QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM player_unlocks WHERE player_id = $1 AND exercise_id = $2)",
		playerID, exerciseID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check unlock exists: %w", err)
	}
	return exists, nil
}
