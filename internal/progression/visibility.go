package progression

import (
	"context"
	"fmt"

	"github.com/FGPE-Erasmus/lightweight-fgpe-server/internal/domain"
)

// ExerciseVisibility derives the hidden/locked state of an exercise for a
// player in a game. It is a pure read over live state: nothing is cached
// and nothing is written, so the answer may be recomputed at any time.
//
// An explicit unlock clears both hidden and locked regardless of any other
// condition. The module gate and the sequential gate are independent;
// either alone can lock.
func (s *Service) ExerciseVisibility(ctx context.Context, exerciseID, gameID, playerID int64) (domain.Visibility, error) {
	ex, err := s.store.Exercises().Get(ctx, exerciseID)
	if err != nil {
		return domain.Visibility{}, fmt.Errorf("load exercise %d: %w", exerciseID, err)
	}
	return s.resolveVisibility(ctx, ex, gameID, playerID)
}

func (s *Service) resolveVisibility(ctx context.Context, ex *domain.Exercise, gameID, playerID int64) (domain.Visibility, error) {
	policy, err := s.store.Games().LockPolicy(ctx, gameID)
	if err != nil {
		return domain.Visibility{}, fmt.Errorf("load lock policy for game %d: %w", gameID, err)
	}

	hasUnlock, err := s.store.Unlocks().Exists(ctx, playerID, ex.ID)
	if err != nil {
		return domain.Visibility{}, fmt.Errorf("check unlock: %w", err)
	}

	locked, err := s.lockedByPolicy(ctx, ex, policy, gameID, playerID)
	if err != nil {
		return domain.Visibility{}, err
	}

	return domain.Visibility{
		Hidden: ex.Hidden && !hasUnlock,
		Locked: locked && !hasUnlock,
	}, nil
}

// lockedByPolicy evaluates the authoring flag, the module gate and the
// sequential gate, in that order, stopping at the first rule that locks.
func (s *Service) lockedByPolicy(ctx context.Context, ex *domain.Exercise, policy domain.LockPolicy, gameID, playerID int64) (bool, error) {
	if ex.Locked {
		return true, nil
	}

	if policy.ModuleLock > 0 {
		total, err := s.store.Exercises().CountInModule(ctx, ex.ModuleID)
		if err != nil {
			return false, fmt.Errorf("count module exercises: %w", err)
		}
		if total > 0 {
			solved, err := s.store.Submissions().SolvedInModule(ctx, playerID, gameID, ex.ModuleID)
			if err != nil {
				return false, fmt.Errorf("count solved in module: %w", err)
			}
			// Reaching the threshold exactly unlocks: the boundary is
			// inclusive toward unlocking.
			if float64(solved)/float64(total) < policy.ModuleLock {
				return true, nil
			}
		}
	}

	if policy.ExerciseLock && ex.Order > 1 {
		prevID, ok, err := s.store.Exercises().IDByOrder(ctx, ex.ModuleID, ex.Order-1)
		if err != nil {
			return false, fmt.Errorf("find predecessor exercise: %w", err)
		}
		if ok {
			prevSolved, err := s.store.Submissions().HasCorrect(ctx, playerID, prevID, gameID)
			if err != nil {
				return false, fmt.Errorf("check predecessor solved: %w", err)
			}
			if !prevSolved {
				return true, nil
			}
		}
	}

	return false, nil
}

// ExerciseData returns the full exercise payload with hidden/locked
// resolved for the player's game context.
func (s *Service) ExerciseData(ctx context.Context, exerciseID, gameID, playerID int64) (*domain.ExerciseData, error) {
	ex, err := s.store.Exercises().Get(ctx, exerciseID)
	if err != nil {
		return nil, fmt.Errorf("load exercise %d: %w", exerciseID, err)
	}

	vis, err := s.resolveVisibility(ctx, ex, gameID, playerID)
	if err != nil {
		return nil, err
	}

	return &domain.ExerciseData{
		Order:          ex.Order,
		Title:          ex.Title,
		Description:    ex.Description,
		InitCode:       ex.InitCode,
		PreCode:        ex.PreCode,
		PostCode:       ex.PostCode,
		TestCode:       ex.TestCode,
		CheckSource:    ex.CheckSource,
		Mode:           ex.Mode,
		ModeParameters: ex.ModeParameters,
		Difficulty:     ex.Difficulty,
		Hidden:         vis.Hidden,
		Locked:         vis.Locked,
	}, nil
}
