package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/FGPE-Erasmus/lightweight-fgpe-server/internal/domain"
)

// RegistrationStore reads and mutates player registrations.
type RegistrationStore struct {
	s *Store
}

// Create inserts a registration and returns its ID.
func (r *RegistrationStore) Create(ctx context.Context, reg *domain.PlayerRegistration) (int64, error) {
	res, err := r.s.q().ExecContext(ctx, `
		INSERT INTO player_registrations (player_id, game_id, language, progress, game_state, saved_at, joined_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		reg.PlayerID, reg.GameID, reg.Language, reg.Progress, jsonOrDefault(reg.GameState, "{}"), reg.SavedAt, reg.JoinedAt)
	if err != nil {
		switch {
		case isUniqueViolation(err):
			return 0, domain.ErrAlreadyRegistered
		case isForeignKeyViolation(err):
			return 0, domain.ErrNotFound
		}
		return 0, fmt.Errorf("insert registration: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("registration id: %w", err)
	}
	reg.ID = id
	return id, nil
}

// Exists reports whether the player is registered in the game.
func (r *RegistrationStore) Exists(ctx context.Context, playerID, gameID int64) (bool, error) {
	var exists bool
	err := r.s.q().QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM player_registrations WHERE player_id = ? AND game_id = ?)",
		playerID, gameID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check registration exists: %w", err)
	}
	return exists, nil
}

// IncrementProgress adds one to the registration's progress counter.
func (r *RegistrationStore) IncrementProgress(ctx context.Context, playerID, gameID int64) (int64, error) {
	res, err := r.s.q().ExecContext(ctx,
		"UPDATE player_registrations SET progress = progress + 1 WHERE player_id = ? AND game_id = ?",
		playerID, gameID)
	if err != nil {
		return 0, fmt.Errorf("increment progress: %w", err)
	}
	return res.RowsAffected()
}

// SaveState overwrites the game-state blob and saved_at marker.
func (r *RegistrationStore) SaveState(ctx context.Context, registrationID int64, state json.RawMessage, savedAt time.Time) (int64, error) {
	res, err := r.s.q().ExecContext(ctx,
		"UPDATE player_registrations SET game_state = ?, saved_at = ? WHERE id = ?",
		jsonOrDefault(state, "{}"), savedAt, registrationID)
	if err != nil {
		return 0, fmt.Errorf("save game state: %w", err)
	}
	return res.RowsAffected()
}

// State returns the saved game-state blob.
func (r *RegistrationStore) State(ctx context.Context, registrationID int64) (json.RawMessage, error) {
	var state []byte
	err := r.s.q().QueryRowContext(ctx,
		"SELECT game_state FROM player_registrations WHERE id = ?", registrationID).Scan(&state)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrRegistrationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read game state: %w", err)
	}
	return state, nil
}

// MarkLeft sets left_at on the player's active registration.
func (r *RegistrationStore) MarkLeft(ctx context.Context, playerID, gameID int64, leftAt time.Time) (int64, error) {
	res, err := r.s.q().ExecContext(ctx,
		"UPDATE player_registrations SET left_at = ? WHERE player_id = ? AND game_id = ? AND left_at IS NULL",
		leftAt, playerID, gameID)
	if err != nil {
		return 0, fmt.Errorf("mark registration left: %w", err)
	}
	return res.RowsAffected()
}

// SetLanguage updates the registration's language.
func (r *RegistrationStore) SetLanguage(ctx context.Context, playerID, gameID int64, language string) (int64, error) {
	res, err := r.s.q().ExecContext(ctx,
		"UPDATE player_registrations SET language = ? WHERE player_id = ? AND game_id = ?",
		language, playerID, gameID)
	if err != nil {
		return 0, fmt.Errorf("set registration language: %w", err)
	}
	return res.RowsAffected()
}

// IDsByPlayer lists the player's registration IDs.
func (r *RegistrationStore) IDsByPlayer(ctx context.Context, playerID int64, onlyActive bool) ([]int64, error) {
	query := "SELECT id FROM player_registrations WHERE player_id = ? ORDER BY id"
	if onlyActive {
		query = `
			SELECT pr.id FROM player_registrations pr
			JOIN games g ON pr.game_id = g.id
			WHERE pr.player_id = ? AND pr.left_at IS NULL AND g.active = 1
			ORDER BY pr.id`
	}

	rows, err := r.s.q().QueryContext(ctx, query, playerID)
	if err != nil {
		return nil, fmt.Errorf("list registrations: %w", err)
	}
	defer rows.Close()
	return scanIDs(rows)
}

// Metadata returns the registration/game join.
func (r *RegistrationStore) Metadata(ctx context.Context, registrationID int64) (*domain.GameMetadata, error) {
	meta := &domain.GameMetadata{}
	err := r.s.q().QueryRowContext(ctx, `
		SELECT pr.id, pr.progress, pr.joined_at, pr.left_at, pr.language,
			g.id, g.title, g.active, g.description, g.programming_language,
			g.total_exercises, g.start_date, g.end_date
		FROM player_registrations pr
		JOIN games g ON pr.game_id = g.id
		WHERE pr.id = ?`, registrationID).
		Scan(&meta.RegistrationID, &meta.Progress, &meta.JoinedAt, &meta.LeftAt, &meta.Language,
			&meta.GameID, &meta.GameTitle, &meta.GameActive, &meta.GameDescription,
			&meta.GameProgrammingLanguage, &meta.GameTotalExercises,
			&meta.GameStartDate, &meta.GameEndDate)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrRegistrationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read game metadata: %w", err)
	}
	return meta, nil
}

// SubmissionStore appends and aggregates the immutable submission log.
type SubmissionStore struct {
	s *Store
}

// Insert appends a submission and fills in its ID.
func (sb *SubmissionStore) Insert(ctx context.Context, sub *domain.Submission) error {
	res, err := sb.s.q().ExecContext(ctx, `
		INSERT INTO submissions (exercise_id, game_id, player_id, client, submitted_code,
			metrics, result, result_description, first_solution, feedback, earned_rewards,
			entered_at, submitted_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sub.ExerciseID, sub.GameID, sub.PlayerID, sub.Client, sub.SubmittedCode,
		jsonOrDefault(sub.Metrics, "{}"), sub.Result, jsonOrDefault(sub.ResultDescription, "{}"),
		sub.FirstSolution, sub.Feedback, jsonOrDefault(sub.EarnedRewards, "[]"),
		sub.EnteredAt, sub.SubmittedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("insert submission: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("submission id: %w", err)
	}
	sub.ID = id
	return nil
}

// HasCorrect reports whether the player already has a correct submission
// for the exercise in the game.
func (sb *SubmissionStore) HasCorrect(ctx context.Context, playerID, exerciseID, gameID int64) (bool, error) {
	var exists bool
	err := sb.s.q().QueryRowContext(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM submissions
			WHERE player_id = ? AND exercise_id = ? AND game_id = ? AND result > 0
		)`, playerID, exerciseID, gameID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check prior correct submission: %w", err)
	}
	return exists, nil
}

// SolvedInModule counts the distinct exercises of a module the player has
// solved in the game.
func (sb *SubmissionStore) SolvedInModule(ctx context.Context, playerID, gameID, moduleID int64) (int64, error) {
	var count int64
	err := sb.s.q().QueryRowContext(ctx, `
		SELECT COUNT(DISTINCT s.exercise_id)
		FROM submissions s
		JOIN exercises e ON s.exercise_id = e.id
		WHERE s.player_id = ? AND s.game_id = ? AND s.result > 0 AND e.module_id = ?`,
		playerID, gameID, moduleID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count solved in module: %w", err)
	}
	return count, nil
}

// Last returns the player's most recent submission for the exercise,
// optionally restricted to correct ones. Returns nil when none exist.
func (sb *SubmissionStore) Last(ctx context.Context, playerID, exerciseID int64, onlyCorrect bool) (*domain.Solution, error) {
	query := `
		SELECT submitted_code, metrics, result, result_description, feedback, submitted_at
		FROM submissions
		WHERE player_id = ? AND exercise_id = ?`
	if onlyCorrect {
		query += " AND result > 0"
	}
	query += " ORDER BY submitted_at DESC, id DESC LIMIT 1"

	sol := &domain.Solution{}
	var metrics, description []byte
	err := sb.s.q().QueryRowContext(ctx, query, playerID, exerciseID).
		Scan(&sol.SubmittedCode, &metrics, &sol.Result, &description, &sol.Feedback, &sol.SubmittedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read last submission: %w", err)
	}
	sol.Metrics = metrics
	sol.ResultDescription = description
	return sol, nil
}

// jsonOrDefault renders a raw JSON value for storage, substituting a
// default for empty payloads so NOT NULL columns stay well-formed.
func jsonOrDefault(raw json.RawMessage, def string) string {
	if len(raw) == 0 {
		return def
	}
	return string(raw)
}
