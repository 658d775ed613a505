package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/FGPE-Erasmus/lightweight-fgpe-server/internal/domain"
)

// PlayerStore reads player rows.
type PlayerStore struct {
	s *Store
}

// Exists reports whether a player row exists.
func (p *PlayerStore) Exists(ctx context.Context, playerID int64) (bool, error) {
	var exists bool
	err := p.s.q().QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM players WHERE id = $1)", playerID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check player exists: %w", err)
	}
	return exists, nil
}

// GameStore reads game and course configuration.
type GameStore struct {
	s *Store
}

// ListAvailable returns the IDs of public, active games.
func (g *GameStore) ListAvailable(ctx context.Context) ([]int64, error) {
	rows, err := g.s.q().Query(ctx,
		"SELECT id FROM games WHERE public AND active ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("list available games: %w", err)
	}
	defer rows.Close()
	return scanIDs(rows)
}

// LockPolicy returns the game's gating configuration.
func (g *GameStore) LockPolicy(ctx context.Context, gameID int64) (domain.LockPolicy, error) {
	var p domain.LockPolicy
	err := g.s.q().QueryRow(ctx,
		"SELECT module_lock, exercise_lock FROM games WHERE id = $1", gameID).
		Scan(&p.ModuleLock, &p.ExerciseLock)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.LockPolicy{}, domain.ErrGameNotFound
	}
	if err != nil {
		return domain.LockPolicy{}, fmt.Errorf("read lock policy: %w", err)
	}
	return p, nil
}

// CourseData returns the course gamification rules behind a game plus the
// course's module IDs in the given language.
func (g *GameStore) CourseData(ctx context.Context, gameID int64, language string) (*domain.CourseData, error) {
	var courseID int64
	data := &domain.CourseData{}
	err := g.s.q().QueryRow(ctx, `
		SELECT c.id, c.gamification_rule_conditions, c.gamification_complex_rules, c.gamification_rule_results
		FROM games g
		JOIN courses c ON g.course_id = c.id
		WHERE g.id = $1`, gameID).
		Scan(&courseID, &data.GamificationRuleConditions, &data.GamificationComplexRules, &data.GamificationRuleResults)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrGameNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read course data: %w", err)
	}

	rows, err := g.s.q().Query(ctx,
		`SELECT id FROM modules WHERE course_id = $1 AND language = $2 ORDER BY "order"`,
		courseID, language)
	if err != nil {
		return nil, fmt.Errorf("list course modules: %w", err)
	}
	defer rows.Close()

	data.ModuleIDs, err = scanIDs(rows)
	if err != nil {
		return nil, err
	}
	return data, nil
}

// AllowedLanguages returns the comma-separated course languages behind the
// player's registration, split into entries.
func (g *GameStore) AllowedLanguages(ctx context.Context, playerID, gameID int64) ([]string, error) {
	var languages string
	err := g.s.q().QueryRow(ctx, `
		SELECT c.languages
		FROM player_registrations pr
		JOIN games g ON pr.game_id = g.id
		JOIN courses c ON g.course_id = c.id
		WHERE pr.player_id = $1 AND pr.game_id = $2`, playerID, gameID).
		Scan(&languages)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrRegistrationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read allowed languages: %w", err)
	}
	return strings.Split(languages, ","), nil
}

// ExerciseStore reads authored exercises and module groupings.
type ExerciseStore struct {
	s *Store
}

// Get returns the full exercise row.
func (e *ExerciseStore) Get(ctx context.Context, exerciseID int64) (*domain.Exercise, error) {
	ex := &domain.Exercise{}
	var modeParameters []byte
	err := e.s.q().QueryRow(ctx, `
		SELECT id, module_id, "order", title, description, language, programming_language,
			init_code, pre_code, post_code, test_code, check_source,
			hidden, locked, mode, mode_parameters, difficulty, created_at, updated_at
		FROM exercises WHERE id = $1`, exerciseID).
		Scan(&ex.ID, &ex.ModuleID, &ex.Order, &ex.Title, &ex.Description,
			&ex.Language, &ex.ProgrammingLanguage,
			&ex.InitCode, &ex.PreCode, &ex.PostCode, &ex.TestCode, &ex.CheckSource,
			&ex.Hidden, &ex.Locked, &ex.Mode, &modeParameters, &ex.Difficulty,
			&ex.CreatedAt, &ex.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrExerciseNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read exercise: %w", err)
	}
	ex.ModeParameters = modeParameters
	return ex, nil
}

// Exists reports whether an exercise row exists.
func (e *ExerciseStore) Exists(ctx context.Context, exerciseID int64) (bool, error) {
	var exists bool
	err := e.s.q().QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM exercises WHERE id = $1)", exerciseID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check exercise exists: %w", err)
	}
	return exists, nil
}

// ModuleData returns a module's metadata and the IDs of its exercises
// matching the language pair.
func (e *ExerciseStore) ModuleData(ctx context.Context, moduleID int64, language, programmingLanguage string) (*domain.ModuleData, error) {
	data := &domain.ModuleData{}
	err := e.s.q().QueryRow(ctx,
		`SELECT "order", title, description, start_date, end_date FROM modules WHERE id = $1`,
		moduleID).
		Scan(&data.Order, &data.Title, &data.Description, &data.StartDate, &data.EndDate)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrModuleNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read module: %w", err)
	}

	rows, err := e.s.q().Query(ctx,
		`SELECT id FROM exercises
		WHERE module_id = $1 AND language = $2 AND programming_language = $3
		ORDER BY "order"`,
		moduleID, language, programmingLanguage)
	if err != nil {
		return nil, fmt.Errorf("list module exercises: %w", err)
	}
	defer rows.Close()

	data.ExerciseIDs, err = scanIDs(rows)
	if err != nil {
		return nil, err
	}
	return data, nil
}

// CountInModule returns the total number of exercises in a module.
func (e *ExerciseStore) CountInModule(ctx context.Context, moduleID int64) (int64, error) {
	var count int64
	err := e.s.q().QueryRow(ctx,
		"SELECT COUNT(*) FROM exercises WHERE module_id = $1", moduleID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count module exercises: %w", err)
	}
	return count, nil
}

// IDByOrder returns the module's exercise at the given order, if any.
func (e *ExerciseStore) IDByOrder(ctx context.Context, moduleID int64, order int) (int64, bool, error) {
	var id int64
	err := e.s.q().QueryRow(ctx,
		`SELECT id FROM exercises WHERE module_id = $1 AND "order" = $2 LIMIT 1`,
		moduleID, order).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("find exercise by order: %w", err)
	}
	return id, true, nil
}

// scanIDs drains a single-column int64 result set.
func scanIDs(rows pgx.Rows) ([]int64, error) {
	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ids: %w", err)
	}
	return ids, nil
}
