package domain

import "errors"

// -----------------------------------------------------------------------------
// Domain Errors
// These errors represent domain-level failures and are used by storage
// backends and the progression service to communicate error conditions.
// -----------------------------------------------------------------------------

// Entity lookup errors
var (
	ErrPlayerNotFound       = errors.New("player not found")
	ErrGameNotFound         = errors.New("game not found")
	ErrExerciseNotFound     = errors.New("exercise not found")
	ErrModuleNotFound       = errors.New("module not found")
	ErrRewardNotFound       = errors.New("reward not found")
	ErrRegistrationNotFound = errors.New("player registration not found")
)

// Registration errors
var (
	ErrAlreadyRegistered    = errors.New("player already registered in game")
	ErrLanguageNotAllowed   = errors.New("language not allowed by course")
)

// Configuration errors
var (
	// ErrRewardMisconfigured reports a reward whose validity period is
	// missing. This is a data error, not "never expires".
	ErrRewardMisconfigured = errors.New("reward has no validity period configured")
)

// General errors
var (
	ErrNotFound = errors.New("not found")
	ErrInternal = errors.New("internal inconsistency")
)
