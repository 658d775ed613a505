package domain

import (
	"context"
	"encoding/json"
	"time"
)

// Store is the unit-of-work contract the progression engine runs against.
// A Store obtained from a backend's Open is bound to the connection pool;
// Begin returns a copy bound to a single transaction with isolation strong
// enough to serialize concurrent read-then-write sequences on the same
// rows. Commit and Rollback are no-ops outside a transaction.
type Store interface {
	Begin(ctx context.Context) (Store, error)
	Commit() error
	Rollback() error

	Players() PlayerStore
	Games() GameStore
	Exercises() ExerciseStore
	Registrations() RegistrationStore
	Submissions() SubmissionStore
	Rewards() RewardStore
	Unlocks() UnlockStore
}

// PlayerStore reads player rows. Players are managed by out-of-scope
// account tooling; the engine only checks existence.
type PlayerStore interface {
	Exists(ctx context.Context, playerID int64) (bool, error)
}

// GameStore reads game and course configuration.
type GameStore interface {
	// ListAvailable returns the IDs of games that are public and active.
	ListAvailable(ctx context.Context) ([]int64, error)

	// LockPolicy returns the game's gating configuration.
	// Returns ErrGameNotFound if the game row is missing.
	LockPolicy(ctx context.Context, gameID int64) (LockPolicy, error)

	// CourseData returns the gamification rules of the game's course plus
	// the IDs of its modules in the given language.
	CourseData(ctx context.Context, gameID int64, language string) (*CourseData, error)

	// AllowedLanguages returns the natural languages permitted by the
	// course behind the player's registration in the game.
	// Returns ErrRegistrationNotFound if no such registration exists.
	AllowedLanguages(ctx context.Context, playerID, gameID int64) ([]string, error)
}

// ExerciseStore reads authored exercises.
type ExerciseStore interface {
	// Get returns the full exercise row, or ErrExerciseNotFound.
	Get(ctx context.Context, exerciseID int64) (*Exercise, error)

	Exists(ctx context.Context, exerciseID int64) (bool, error)

	// ModuleData returns a module's metadata and the IDs of its exercises
	// matching the language pair, or ErrModuleNotFound.
	ModuleData(ctx context.Context, moduleID int64, language, programmingLanguage string) (*ModuleData, error)

	// CountInModule returns the total number of exercises in a module,
	// regardless of language.
	CountInModule(ctx context.Context, moduleID int64) (int64, error)

	// IDByOrder returns the ID of the module's exercise at the given
	// order, or ok=false when no such exercise exists.
	IDByOrder(ctx context.Context, moduleID int64, order int) (int64, bool, error)
}

// RegistrationStore reads and mutates player registrations.
type RegistrationStore interface {
	// Create inserts a registration and returns its ID. A unique violation
	// maps to ErrAlreadyRegistered, a foreign-key violation to
	// ErrNotFound (player or game missing).
	Create(ctx context.Context, reg *PlayerRegistration) (int64, error)

	Exists(ctx context.Context, playerID, gameID int64) (bool, error)

	// IncrementProgress adds one to the registration's progress counter
	// and returns the number of rows affected.
	IncrementProgress(ctx context.Context, playerID, gameID int64) (int64, error)

	// SaveState overwrites the opaque game-state blob and the saved_at
	// marker, returning rows affected.
	SaveState(ctx context.Context, registrationID int64, state json.RawMessage, savedAt time.Time) (int64, error)

	// State returns the saved game-state blob, or ErrRegistrationNotFound.
	State(ctx context.Context, registrationID int64) (json.RawMessage, error)

	// MarkLeft soft-leaves the player's active registration in a game,
	// returning rows affected (0 when already left or never joined).
	MarkLeft(ctx context.Context, playerID, gameID int64, leftAt time.Time) (int64, error)

	// SetLanguage updates the registration's language, returning rows
	// affected.
	SetLanguage(ctx context.Context, playerID, gameID int64, language string) (int64, error)

	// IDsByPlayer lists the player's registration IDs, optionally limited
	// to registrations not left whose game is active.
	IDsByPlayer(ctx context.Context, playerID int64, onlyActive bool) ([]int64, error)

	// Metadata returns the registration/game join, or
	// ErrRegistrationNotFound.
	Metadata(ctx context.Context, registrationID int64) (*GameMetadata, error)
}

// SubmissionStore appends and aggregates the immutable submission log.
type SubmissionStore interface {
	// Insert appends a submission. A foreign-key violation maps to
	// ErrNotFound (player, game or exercise deleted concurrently).
	Insert(ctx context.Context, sub *Submission) error

	// HasCorrect reports whether the player already has a submission with
	// result > 0 for the exercise in the game.
	HasCorrect(ctx context.Context, playerID, exerciseID, gameID int64) (bool, error)

	// SolvedInModule counts the distinct exercises of a module the player
	// has solved (result > 0) in the game.
	SolvedInModule(ctx context.Context, playerID, gameID, moduleID int64) (int64, error)

	// Last returns the player's most recent submission for the exercise,
	// optionally restricted to correct ones. Returns nil when none exist.
	Last(ctx context.Context, playerID, exerciseID int64, onlyCorrect bool) (*Solution, error)
}

// RewardStore reads the reward catalog and accumulates grants.
type RewardStore interface {
	// ValidPeriod returns the reward's validity duration. Returns
	// ErrRewardNotFound for a missing row and ErrRewardMisconfigured for
	// a NULL period.
	ValidPeriod(ctx context.Context, rewardID int64) (time.Duration, error)

	// Grant upserts the (player, reward, game) accumulator: insert with
	// count=1, or increment count and refresh expires_at.
	Grant(ctx context.Context, playerID, rewardID, gameID int64, obtainedAt, expiresAt time.Time) error

	// Get returns the accumulator row, or ErrRewardNotFound.
	Get(ctx context.Context, playerID, rewardID, gameID int64) (*PlayerReward, error)
}

// UnlockStore is the idempotent player-exercise unlock ledger.
type UnlockStore interface {
	// Insert records an unlock, doing nothing if one already exists. A
	// foreign-key violation maps to ErrNotFound.
	Insert(ctx context.Context, playerID, exerciseID int64, unlockedAt time.Time) error

	Exists(ctx context.Context, playerID, exerciseID int64) (bool, error)
}
