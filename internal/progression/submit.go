package progression

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/FGPE-Erasmus/lightweight-fgpe-server/internal/domain"
)

// SubmitSolutionRequest carries one solution attempt. Metrics,
// ResultDescription and EarnedRewards are stored verbatim; EarnedRewards is
// additionally parsed as a list of claimed reward IDs when the attempt
// turns out to be first-correct.
type SubmitSolutionRequest struct {
	PlayerID          int64
	ExerciseID        int64
	GameID            int64
	Client            string
	SubmittedCode     string
	Metrics           json.RawMessage
	Result            float64
	ResultDescription json.RawMessage
	Feedback          string
	EarnedRewards     json.RawMessage
	EnteredAt         time.Time
}

// SubmitSolution processes a solution attempt inside a single transaction.
// It appends the submission, and only when the attempt is the first correct
// one for its (player, exercise, game) triple does it increment the
// registration's progress counter, grant the claimed rewards, and record
// an unlock when the game's lock policy makes one meaningful.
//
// The returned bool reports whether the attempt was first-correct. A false
// return is a normal outcome, not an error. On any error no write is kept:
// the submission row and its side effects commit together or not at all.
func (s *Service) SubmitSolution(ctx context.Context, req SubmitSolutionRequest) (bool, error) {
	tx, err := s.store.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("begin submission transaction: %w", err)
	}
	defer tx.Rollback()

	registered, err := tx.Registrations().Exists(ctx, req.PlayerID, req.GameID)
	if err != nil {
		return false, fmt.Errorf("check registration: %w", err)
	}
	if !registered {
		return false, fmt.Errorf("player %d in game %d: %w", req.PlayerID, req.GameID, domain.ErrRegistrationNotFound)
	}

	// First-correct is decided once, against state visible at transaction
	// start, and closed over for the rest of the transaction.
	wasSolved, err := tx.Submissions().HasCorrect(ctx, req.PlayerID, req.ExerciseID, req.GameID)
	if err != nil {
		return false, fmt.Errorf("check prior solutions: %w", err)
	}
	firstCorrect := req.Result > 0 && !wasSolved

	now := time.Now()
	sub := &domain.Submission{
		ExerciseID:        req.ExerciseID,
		GameID:            req.GameID,
		PlayerID:          req.PlayerID,
		Client:            req.Client,
		SubmittedCode:     req.SubmittedCode,
		Metrics:           req.Metrics,
		Result:            req.Result,
		ResultDescription: req.ResultDescription,
		FirstSolution:     firstCorrect,
		Feedback:          req.Feedback,
		EarnedRewards:     req.EarnedRewards,
		EnteredAt:         req.EnteredAt,
		SubmittedAt:       now,
	}
	if err := tx.Submissions().Insert(ctx, sub); err != nil {
		return false, fmt.Errorf("insert submission: %w", err)
	}

	var granted []int64
	var unlocked bool
	if firstCorrect {
		affected, err := tx.Registrations().IncrementProgress(ctx, req.PlayerID, req.GameID)
		if err != nil {
			return false, fmt.Errorf("increment progress: %w", err)
		}
		if affected != 1 {
			return false, fmt.Errorf("progress update affected %d rows, expected 1: %w", affected, domain.ErrInternal)
		}

		granted, err = s.grantClaimedRewards(ctx, tx, req, now)
		if err != nil {
			return false, err
		}

		policy, err := tx.Games().LockPolicy(ctx, req.GameID)
		if err != nil {
			return false, fmt.Errorf("read lock policy: %w", err)
		}
		if policy.ModuleLock > 0 || policy.ExerciseLock {
			if err := tx.Unlocks().Insert(ctx, req.PlayerID, req.ExerciseID, now); err != nil {
				return false, fmt.Errorf("record unlock: %w", err)
			}
			unlocked = true
		}
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit submission: %w", err)
	}

	slog.Info("submission processed",
		"player_id", req.PlayerID,
		"exercise_id", req.ExerciseID,
		"game_id", req.GameID,
		"first_correct", firstCorrect,
	)

	if firstCorrect && s.events != nil {
		ev := &SolvedEvent{
			ID:         uuid.New(),
			PlayerID:   req.PlayerID,
			GameID:     req.GameID,
			ExerciseID: req.ExerciseID,
			RewardIDs:  granted,
			Unlocked:   unlocked,
			SolvedAt:   now,
		}
		if err := s.events.PublishSolved(ctx, ev); err != nil {
			slog.Warn("failed to publish solved event",
				"event_id", ev.ID,
				"player_id", req.PlayerID,
				"exercise_id", req.ExerciseID,
				"error", err,
			)
		}
	}

	return firstCorrect, nil
}

// grantClaimedRewards folds over the claimed-rewards payload. Malformed
// entries are logged and skipped; a missing reward or one without a
// validity period aborts the submission as a whole.
func (s *Service) grantClaimedRewards(ctx context.Context, tx domain.Store, req SubmitSolutionRequest, now time.Time) ([]int64, error) {
	claims, err := domain.ParseRewardClaims(req.EarnedRewards)
	if err != nil {
		slog.Warn("ignoring claimed rewards payload",
			"player_id", req.PlayerID,
			"game_id", req.GameID,
			"error", err,
		)
		return nil, nil
	}

	var granted []int64
	for _, claim := range claims {
		if claim.Malformed() {
			slog.Warn("skipping malformed reward claim",
				"player_id", req.PlayerID,
				"game_id", req.GameID,
				"raw", string(claim.Raw),
			)
			continue
		}

		period, err := tx.Rewards().ValidPeriod(ctx, claim.ID)
		if err != nil {
			return nil, fmt.Errorf("reward %d: %w", claim.ID, err)
		}
		if err := tx.Rewards().Grant(ctx, req.PlayerID, claim.ID, req.GameID, now, now.Add(period)); err != nil {
			return nil, fmt.Errorf("grant reward %d: %w", claim.ID, err)
		}
		granted = append(granted, claim.ID)
	}
	return granted, nil
}
