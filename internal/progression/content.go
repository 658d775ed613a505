package progression

import (
	"context"
	"fmt"

	"github.com/FGPE-Erasmus/lightweight-fgpe-server/internal/domain"
)

// CourseData returns the gamification rules of a game's course and its
// module IDs in the requested language.
func (s *Service) CourseData(ctx context.Context, gameID int64, language string) (*domain.CourseData, error) {
	data, err := s.store.Games().CourseData(ctx, gameID, language)
	if err != nil {
		return nil, fmt.Errorf("load course data for game %d: %w", gameID, err)
	}
	return data, nil
}

// ModuleData returns a module's metadata plus the IDs of its exercises
// matching the language pair.
func (s *Service) ModuleData(ctx context.Context, moduleID int64, language, programmingLanguage string) (*domain.ModuleData, error) {
	data, err := s.store.Exercises().ModuleData(ctx, moduleID, language, programmingLanguage)
	if err != nil {
		return nil, fmt.Errorf("load module data for module %d: %w", moduleID, err)
	}
	return data, nil
}

// LastSolution returns the player's most relevant submission for an
// exercise: the latest correct one, falling back to the latest overall.
// Returns nil when the player never submitted anything for the exercise.
func (s *Service) LastSolution(ctx context.Context, playerID, exerciseID int64) (*domain.Solution, error) {
	exists, err := s.store.Players().Exists(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("check player: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("player %d: %w", playerID, domain.ErrPlayerNotFound)
	}

	exerciseExists, err := s.store.Exercises().Exists(ctx, exerciseID)
	if err != nil {
		return nil, fmt.Errorf("check exercise: %w", err)
	}
	if !exerciseExists {
		return nil, fmt.Errorf("exercise %d: %w", exerciseID, domain.ErrExerciseNotFound)
	}

	sol, err := s.store.Submissions().Last(ctx, playerID, exerciseID, true)
	if err != nil {
		return nil, fmt.Errorf("load last correct solution: %w", err)
	}
	if sol != nil {
		return sol, nil
	}

	sol, err = s.store.Submissions().Last(ctx, playerID, exerciseID, false)
	if err != nil {
		return nil, fmt.Errorf("load last solution: %w", err)
	}
	return sol, nil
}
